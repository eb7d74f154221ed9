package request_booking

import (
	"errors"
	"net/http"

	"github.com/quickcaremd/QCMD-BookingEngine/internal/api/handlers"
	"github.com/quickcaremd/QCMD-BookingEngine/internal/api/middleware"
	requestBooking "github.com/quickcaremd/QCMD-BookingEngine/internal/usecase/request_booking"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidDateTime    = "некорректный формат даты или времени слота, ожидается YYYY-MM-DD и HH:MM"
	msgMissingUserID      = "отсутствует ID пользователя"
	msgProviderNotFound   = "провайдер не найден"
	msgInvalidSlot        = "слот не входит в расписание провайдера"
	msgSlotUnavailable    = "слот полностью занят"
	msgSlotBusy           = "слот обрабатывается, повторите запрос"
	msgSlotHalted         = "слот заблокирован до сверки, обратитесь к оператору"
	msgInvalidInput       = "некорректные данные запроса"
)

type Handler struct {
	useCase RequestBookingUseCase
	logger  Logger
}

func NewHandler(useCase RequestBookingUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/bookings
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	var req RequestBookingRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /bookings - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	// Получаем patientID из контекста (через middleware Auth)
	patientID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("POST /bookings - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	// Конвертируем HTTP запрос в модель use case (с парсингом даты и времени)
	useCaseReq, err := req.ToUseCaseRequest(patientID)
	if err != nil {
		h.logger.Warn("POST /bookings - Failed to parse request: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDateTime)
		return
	}

	// Вызываем use case
	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		switch {
		case errors.Is(err, requestBooking.ErrProviderNotFound):
			h.logger.Warn("POST /bookings - Provider not found: provider_id=%d", req.ProviderID)
			handlers.RespondNotFound(w, msgProviderNotFound)

		case errors.Is(err, requestBooking.ErrInvalidSlot):
			h.logger.Warn("POST /bookings - Invalid slot: provider_id=%d, patient_id=%d, slot=%s %s",
				req.ProviderID, patientID, req.SlotDate, req.StartTime)
			handlers.RespondBadRequest(w, msgInvalidSlot)

		case errors.Is(err, requestBooking.ErrSlotUnavailable):
			h.logger.Warn("POST /bookings - Slot unavailable: provider_id=%d, patient_id=%d, slot=%s %s",
				req.ProviderID, patientID, req.SlotDate, req.StartTime)
			handlers.RespondError(w, http.StatusConflict, msgSlotUnavailable)

		case errors.Is(err, requestBooking.ErrBusy):
			h.logger.Warn("POST /bookings - Slot busy: provider_id=%d, patient_id=%d", req.ProviderID, patientID)
			handlers.RespondError(w, http.StatusServiceUnavailable, msgSlotBusy)

		case errors.Is(err, requestBooking.ErrSlotHalted), errors.Is(err, requestBooking.ErrInvariantViolation):
			h.logger.Error("POST /bookings - Slot halted: provider_id=%d, patient_id=%d, error=%v",
				req.ProviderID, patientID, err)
			handlers.RespondError(w, http.StatusServiceUnavailable, msgSlotHalted)

		case errors.Is(err, requestBooking.ErrInvalidInput):
			h.logger.Warn("POST /bookings - Invalid input: provider_id=%d, patient_id=%d, error=%v",
				req.ProviderID, patientID, err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		default:
			h.logger.Error("POST /bookings - Failed to request booking: provider_id=%d, patient_id=%d, error=%v",
				req.ProviderID, patientID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	response := FromUseCaseResponse(result)

	h.logger.Info("POST /bookings - Booking requested successfully: booking_id=%s, provider_id=%d, patient_id=%d",
		result.BookingID, req.ProviderID, patientID)
	handlers.RespondJSON(w, http.StatusCreated, response)
}
