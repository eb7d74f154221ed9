package get_provider_schedule

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/quickcaremd/QCMD-BookingEngine/internal/api/handlers"
	"github.com/quickcaremd/QCMD-BookingEngine/internal/domain"
	"github.com/quickcaremd/QCMD-BookingEngine/internal/service/schedule"
)

const (
	msgInvalidProviderID = "некорректный ID провайдера"
	msgMissingRange      = "параметры from и to обязательны"
	msgInvalidDate       = "некорректный формат даты, ожидается YYYY-MM-DD"
	msgProviderNotFound  = "провайдер не найден"
	msgInvalidInput      = "некорректные параметры запроса"
	msgScheduleCorrupted = "расписание провайдера повреждено, обратитесь к оператору"
)

type Handler struct {
	service ScheduleService
	logger  Logger
}

func NewHandler(service ScheduleService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/providers/{providerId}/schedule
// Query params: from (required, YYYY-MM-DD), to (required, YYYY-MM-DD, не включая)
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	providerID, err := strconv.ParseInt(vars["providerId"], 10, 64)
	if err != nil {
		h.logger.Warn("GET /providers/{id}/schedule - Invalid provider ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidProviderID)
		return
	}

	fromStr := r.URL.Query().Get("from")
	toStr := r.URL.Query().Get("to")
	if fromStr == "" || toStr == "" {
		h.logger.Warn("GET /providers/{id}/schedule - Missing range: provider_id=%d", providerID)
		handlers.RespondBadRequest(w, msgMissingRange)
		return
	}

	from, err := time.Parse(domain.DateFormat, fromStr)
	if err != nil {
		h.logger.Warn("GET /providers/{id}/schedule - Invalid from date: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}
	to, err := time.Parse(domain.DateFormat, toStr)
	if err != nil {
		h.logger.Warn("GET /providers/{id}/schedule - Invalid to date: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}

	result, err := h.service.ProviderSchedule(r.Context(), providerID, domain.DateRange{From: from, To: to})
	if err != nil {
		switch {
		case errors.Is(err, schedule.ErrProviderNotFound):
			h.logger.Warn("GET /providers/{id}/schedule - Provider not found: provider_id=%d", providerID)
			handlers.RespondNotFound(w, msgProviderNotFound)

		case errors.Is(err, schedule.ErrInvalidInput):
			h.logger.Warn("GET /providers/{id}/schedule - Invalid input: provider_id=%d, error=%v",
				providerID, err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		case errors.Is(err, schedule.ErrInvariantViolation):
			h.logger.Error("GET /providers/{id}/schedule - Schedule corrupted: provider_id=%d, error=%v",
				providerID, err)
			handlers.RespondError(w, http.StatusInternalServerError, msgScheduleCorrupted)

		default:
			h.logger.Error("GET /providers/{id}/schedule - Failed to build schedule: provider_id=%d, error=%v",
				providerID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /providers/{id}/schedule - Schedule built successfully: provider_id=%d, windows=%d",
		providerID, len(result.Windows))
	handlers.RespondJSON(w, http.StatusOK, FromServiceResponse(result))
}
