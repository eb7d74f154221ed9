package get_booking

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/quickcaremd/QCMD-BookingEngine/internal/api/handlers"
	"github.com/quickcaremd/QCMD-BookingEngine/internal/service/bookings"
)

const (
	msgInvalidBookingID = "некорректный ID бронирования"
	msgNotFound         = "бронирование не найдено"
	msgLedgerCorrupted  = "история бронирования повреждена, обратитесь к оператору"
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

// Handle GET /api/v1/bookings/{bookingId}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	bookingID, ok := h.parseBookingID(w, r, "GET /bookings/{id}")
	if !ok {
		return
	}

	booking, err := h.service.GetByID(r.Context(), bookingID)
	if err != nil {
		h.respondReadError(w, err, bookingID, "GET /bookings/{id}")
		return
	}

	h.logger.Info("GET /bookings/{id} - Booking retrieved successfully: booking_id=%s", bookingID)
	handlers.RespondJSON(w, http.StatusOK, FromServiceBooking(booking))
}

// HandleHistory GET /api/v1/bookings/{bookingId}/history
func (h *Handler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	bookingID, ok := h.parseBookingID(w, r, "GET /bookings/{id}/history")
	if !ok {
		return
	}

	entries, err := h.service.GetHistory(r.Context(), bookingID)
	if err != nil {
		h.respondReadError(w, err, bookingID, "GET /bookings/{id}/history")
		return
	}

	h.logger.Info("GET /bookings/{id}/history - History retrieved: booking_id=%s, entries=%d",
		bookingID, len(entries))
	handlers.RespondJSON(w, http.StatusOK, FromServiceHistory(bookingID.String(), entries))
}

func (h *Handler) parseBookingID(w http.ResponseWriter, r *http.Request, op string) (uuid.UUID, bool) {
	vars := mux.Vars(r)
	bookingID, err := uuid.Parse(vars["bookingId"])
	if err != nil {
		h.logger.Warn("%s - Invalid booking ID: %v", op, err)
		handlers.RespondBadRequest(w, msgInvalidBookingID)
		return uuid.Nil, false
	}
	return bookingID, true
}

func (h *Handler) respondReadError(w http.ResponseWriter, err error, bookingID uuid.UUID, op string) {
	switch {
	case errors.Is(err, bookings.ErrBookingNotFound):
		h.logger.Warn("%s - Booking not found: booking_id=%s", op, bookingID)
		handlers.RespondNotFound(w, msgNotFound)

	case errors.Is(err, bookings.ErrInvariantViolation):
		h.logger.Error("%s - Ledger corrupted: booking_id=%s, error=%v", op, bookingID, err)
		handlers.RespondError(w, http.StatusInternalServerError, msgLedgerCorrupted)

	default:
		h.logger.Error("%s - Failed to read booking: booking_id=%s, error=%v", op, bookingID, err)
		handlers.RespondInternalError(w)
	}
}
