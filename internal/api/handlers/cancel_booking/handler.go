package cancel_booking

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/quickcaremd/QCMD-BookingEngine/internal/api/handlers"
	"github.com/quickcaremd/QCMD-BookingEngine/internal/service/bookings"
)

const (
	msgInvalidBookingID   = "некорректный ID бронирования"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgNotFound           = "бронирование не найдено"
	msgAlreadyResolved    = "бронирование уже в финальном статусе"
	msgSlotBusy           = "слот обрабатывается, повторите запрос"
	msgSlotHalted         = "слот заблокирован до сверки, обратитесь к оператору"
	msgInvalidActor       = "некорректный инициатор отмены, ожидается patient или provider"
)

type Handler struct {
	service BookingService
	logger  Logger
}

func NewHandler(service BookingService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle PATCH /api/v1/bookings/{bookingId}/cancel
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	bookingID, err := uuid.Parse(vars["bookingId"])
	if err != nil {
		h.logger.Warn("PATCH /bookings/{id}/cancel - Invalid booking ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBookingID)
		return
	}

	var req CancelBookingRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PATCH /bookings/{id}/cancel - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	err = h.service.Cancel(r.Context(), req.ToServiceRequest(bookingID))
	if err != nil {
		switch {
		case errors.Is(err, bookings.ErrBookingNotFound):
			h.logger.Warn("PATCH /bookings/{id}/cancel - Booking not found: booking_id=%s", bookingID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, bookings.ErrBookingAlreadyResolved):
			h.logger.Warn("PATCH /bookings/{id}/cancel - Already resolved: booking_id=%s", bookingID)
			handlers.RespondError(w, http.StatusConflict, msgAlreadyResolved)

		case errors.Is(err, bookings.ErrBusy):
			h.logger.Warn("PATCH /bookings/{id}/cancel - Slot busy: booking_id=%s", bookingID)
			handlers.RespondError(w, http.StatusServiceUnavailable, msgSlotBusy)

		case errors.Is(err, bookings.ErrSlotHalted), errors.Is(err, bookings.ErrInvariantViolation):
			h.logger.Error("PATCH /bookings/{id}/cancel - Slot halted: booking_id=%s, error=%v", bookingID, err)
			handlers.RespondError(w, http.StatusServiceUnavailable, msgSlotHalted)

		case errors.Is(err, bookings.ErrInvalidInput):
			h.logger.Warn("PATCH /bookings/{id}/cancel - Invalid actor: booking_id=%s, actor=%q",
				bookingID, req.Actor)
			handlers.RespondBadRequest(w, msgInvalidActor)

		default:
			h.logger.Error("PATCH /bookings/{id}/cancel - Failed to cancel booking: booking_id=%s, error=%v",
				bookingID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PATCH /bookings/{id}/cancel - Booking cancelled successfully: booking_id=%s, actor=%s",
		bookingID, req.Actor)
	handlers.RespondJSON(w, http.StatusOK, nil)
}
