package get_free_slots

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/quickcaremd/QCMD-BookingEngine/internal/api/handlers"
	listFreeSlots "github.com/quickcaremd/QCMD-BookingEngine/internal/usecase/list_free_slots"
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
	useCase ListFreeSlotsUseCase
	logger  Logger
}

func NewHandler(useCase ListFreeSlotsUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle GET /api/v1/providers/{providerId}/free-slots
// Query params: from (required, YYYY-MM-DD), to (required, YYYY-MM-DD, не включая)
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	providerID, err := strconv.ParseInt(vars["providerId"], 10, 64)
	if err != nil {
		h.logger.Warn("GET /providers/{id}/free-slots - Invalid provider ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidProviderID)
		return
	}

	fromStr := r.URL.Query().Get("from")
	toStr := r.URL.Query().Get("to")
	if fromStr == "" || toStr == "" {
		h.logger.Warn("GET /providers/{id}/free-slots - Missing range: provider_id=%d", providerID)
		handlers.RespondBadRequest(w, msgMissingRange)
		return
	}

	useCaseReq, err := ToUseCaseRequest(providerID, fromStr, toStr)
	if err != nil {
		h.logger.Warn("GET /providers/{id}/free-slots - Invalid date format: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		switch {
		case errors.Is(err, listFreeSlots.ErrProviderNotFound):
			h.logger.Warn("GET /providers/{id}/free-slots - Provider not found: provider_id=%d", providerID)
			handlers.RespondNotFound(w, msgProviderNotFound)

		case errors.Is(err, listFreeSlots.ErrInvalidInput):
			h.logger.Warn("GET /providers/{id}/free-slots - Invalid input: provider_id=%d, error=%v",
				providerID, err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		case errors.Is(err, listFreeSlots.ErrInvariantViolation):
			h.logger.Error("GET /providers/{id}/free-slots - Schedule corrupted: provider_id=%d, error=%v",
				providerID, err)
			handlers.RespondError(w, http.StatusInternalServerError, msgScheduleCorrupted)

		default:
			h.logger.Error("GET /providers/{id}/free-slots - Failed to list slots: provider_id=%d, error=%v",
				providerID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /providers/{id}/free-slots - Slots listed successfully: provider_id=%d, slots=%d",
		providerID, len(result.Slots))
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
