package request_booking

import (
	"time"

	"github.com/quickcaremd/QCMD-BookingEngine/internal/domain"
	requestBooking "github.com/quickcaremd/QCMD-BookingEngine/internal/usecase/request_booking"
	"github.com/quickcaremd/QCMD-BookingEngine/pkg/types"
)

// RequestBookingRequest HTTP request model
type RequestBookingRequest struct {
	ProviderID int64  `json:"providerId"`
	SlotDate   string `json:"slotDate"`  // "2026-09-15"
	StartTime  string `json:"startTime"` // "10:00"
	EndTime    string `json:"endTime"`   // "10:30"
}

// BookingResponse HTTP response model
type BookingResponse struct {
	BookingID    string `json:"bookingId"`
	ProviderID   int64  `json:"providerId"`
	PatientID    int64  `json:"patientId"`
	SlotStart    string `json:"slotStart"`
	SlotEnd      string `json:"slotEnd"`
	Status       string `json:"status"`
	HoldDeadline string `json:"holdDeadline"`
	CreatedAt    string `json:"createdAt"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
// (с парсингом даты и границ слота)
func (r *RequestBookingRequest) ToUseCaseRequest(patientID int64) (*requestBooking.Request, error) {
	slotDate, err := time.Parse(domain.DateFormat, r.SlotDate)
	if err != nil {
		return nil, err
	}

	startTime, err := types.NewTimeStringFromString(r.StartTime)
	if err != nil {
		return nil, err
	}
	endTime, err := types.NewTimeStringFromString(r.EndTime)
	if err != nil {
		return nil, err
	}

	slotStart, err := startTime.At(slotDate)
	if err != nil {
		return nil, err
	}
	slotEnd, err := endTime.At(slotDate)
	if err != nil {
		return nil, err
	}

	return &requestBooking.Request{
		ProviderID: r.ProviderID,
		PatientID:  patientID,
		SlotStart:  slotStart,
		SlotEnd:    slotEnd,
	}, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *requestBooking.Response) *BookingResponse {
	return &BookingResponse{
		BookingID:    resp.BookingID.String(),
		ProviderID:   resp.ProviderID,
		PatientID:    resp.PatientID,
		SlotStart:    resp.SlotStart.Format(time.RFC3339),
		SlotEnd:      resp.SlotEnd.Format(time.RFC3339),
		Status:       resp.Status,
		HoldDeadline: resp.HoldDeadline.Format(time.RFC3339),
		CreatedAt:    resp.CreatedAt.Format(time.RFC3339),
	}
}
