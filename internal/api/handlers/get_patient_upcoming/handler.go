package get_patient_upcoming

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/quickcaremd/QCMD-BookingEngine/internal/api/handlers"
	"github.com/quickcaremd/QCMD-BookingEngine/internal/api/middleware"
	"github.com/quickcaremd/QCMD-BookingEngine/internal/service/bookings"
)

const (
	msgInvalidPatientID = "некорректный ID пациента"
	msgMissingUserID    = "отсутствует ID пользователя"
	msgForbidden        = "доступ запрещен"
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

// Handle GET /api/v1/patients/{patientId}/bookings/upcoming
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	patientID, err := strconv.ParseInt(vars["patientId"], 10, 64)
	if err != nil {
		h.logger.Warn("GET /patients/{id}/bookings/upcoming - Invalid patient ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidPatientID)
		return
	}

	// Пациент может смотреть только свои бронирования
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("GET /patients/{id}/bookings/upcoming - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}
	if userID != patientID {
		h.logger.Warn("GET /patients/{id}/bookings/upcoming - Access denied: patient_id=%d, user_id=%d",
			patientID, userID)
		handlers.RespondForbidden(w, msgForbidden)
		return
	}

	result, err := h.service.PatientUpcoming(r.Context(), patientID)
	if err != nil {
		switch {
		case errors.Is(err, bookings.ErrInvalidInput):
			h.logger.Warn("GET /patients/{id}/bookings/upcoming - Invalid input: patient_id=%d, error=%v",
				patientID, err)
			handlers.RespondBadRequest(w, msgInvalidPatientID)

		default:
			h.logger.Error("GET /patients/{id}/bookings/upcoming - Failed to list bookings: patient_id=%d, error=%v",
				patientID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /patients/{id}/bookings/upcoming - Bookings listed: patient_id=%d, count=%d",
		patientID, len(result.Bookings))
	handlers.RespondJSON(w, http.StatusOK, FromServiceResponse(patientID, result))
}
