package confirm_booking

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/quickcaremd/QCMD-BookingEngine/internal/api/handlers"
	confirmBooking "github.com/quickcaremd/QCMD-BookingEngine/internal/usecase/confirm_booking"
)

const (
	msgInvalidBookingID = "некорректный ID бронирования"
	msgNotFound         = "бронирование не найдено"
	msgExpired          = "срок удержания брони истек"
	msgAlreadyResolved  = "бронирование уже в финальном статусе"
	msgSlotBusy         = "слот обрабатывается, повторите запрос"
	msgSlotHalted       = "слот заблокирован до сверки, обратитесь к оператору"
)

type Handler struct {
	useCase ConfirmBookingUseCase
	logger  Logger
}

func NewHandler(useCase ConfirmBookingUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/bookings/{bookingId}/confirm
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	bookingID, err := uuid.Parse(vars["bookingId"])
	if err != nil {
		h.logger.Warn("POST /bookings/{id}/confirm - Invalid booking ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBookingID)
		return
	}

	booking, err := h.useCase.Execute(r.Context(), bookingID)
	if err != nil {
		switch {
		case errors.Is(err, confirmBooking.ErrBookingNotFound):
			h.logger.Warn("POST /bookings/{id}/confirm - Booking not found: booking_id=%s", bookingID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, confirmBooking.ErrBookingExpired):
			h.logger.Warn("POST /bookings/{id}/confirm - Hold expired: booking_id=%s", bookingID)
			handlers.RespondError(w, http.StatusConflict, msgExpired)

		case errors.Is(err, confirmBooking.ErrBookingAlreadyResolved):
			h.logger.Warn("POST /bookings/{id}/confirm - Already resolved: booking_id=%s", bookingID)
			handlers.RespondError(w, http.StatusConflict, msgAlreadyResolved)

		case errors.Is(err, confirmBooking.ErrBusy):
			h.logger.Warn("POST /bookings/{id}/confirm - Slot busy: booking_id=%s", bookingID)
			handlers.RespondError(w, http.StatusServiceUnavailable, msgSlotBusy)

		case errors.Is(err, confirmBooking.ErrSlotHalted), errors.Is(err, confirmBooking.ErrInvariantViolation):
			h.logger.Error("POST /bookings/{id}/confirm - Slot halted: booking_id=%s, error=%v", bookingID, err)
			handlers.RespondError(w, http.StatusServiceUnavailable, msgSlotHalted)

		default:
			h.logger.Error("POST /bookings/{id}/confirm - Failed to confirm booking: booking_id=%s, error=%v",
				bookingID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /bookings/{id}/confirm - Booking confirmed successfully: booking_id=%s", bookingID)
	handlers.RespondJSON(w, http.StatusOK, FromDomainBooking(booking))
}
