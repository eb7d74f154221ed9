package reset_provider_locks

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/quickcaremd/QCMD-BookingEngine/internal/api/handlers"
	"github.com/quickcaremd/QCMD-BookingEngine/internal/service/bookings"
)

const (
	msgInvalidProviderID = "некорректный ID провайдера"
)

// ResetLocksResponse HTTP response model
type ResetLocksResponse struct {
	ProviderID int64 `json:"providerId"`
	ResetKeys  int   `json:"resetKeys"`
}

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

// Handle POST /api/v1/providers/{providerId}/locks/reset
// Операторский эндпоинт: снимает остановку с ключей провайдера
// после ручной сверки ledger.
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	providerID, err := strconv.ParseInt(vars["providerId"], 10, 64)
	if err != nil {
		h.logger.Warn("POST /providers/{id}/locks/reset - Invalid provider ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidProviderID)
		return
	}

	count, err := h.service.ResetProviderLocks(providerID)
	if err != nil {
		switch {
		case errors.Is(err, bookings.ErrInvalidInput):
			h.logger.Warn("POST /providers/{id}/locks/reset - Invalid input: provider_id=%d, error=%v",
				providerID, err)
			handlers.RespondBadRequest(w, msgInvalidProviderID)

		default:
			h.logger.Error("POST /providers/{id}/locks/reset - Failed to reset locks: provider_id=%d, error=%v",
				providerID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /providers/{id}/locks/reset - Locks reset: provider_id=%d, keys=%d", providerID, count)
	handlers.RespondJSON(w, http.StatusOK, ResetLocksResponse{ProviderID: providerID, ResetKeys: count})
}
