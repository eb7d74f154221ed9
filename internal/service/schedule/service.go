package schedule

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/quickcaremd/QCMD-BookingEngine/internal/domain"
	availabilityRepo "github.com/quickcaremd/QCMD-BookingEngine/internal/infra/storage/availability"
	"github.com/quickcaremd/QCMD-BookingEngine/internal/service/schedule/models"
	"github.com/quickcaremd/QCMD-BookingEngine/internal/service/slotindex"
)

// Service read-only сервис отображения расписания провайдера.
// Никаких побочных эффектов: композиция Availability Store и ledger.
type Service struct {
	availability AvailabilityRepository
	ledger       LedgerRepository
	slotDuration time.Duration
	timeProvider TimeProvider
	logger       Logger
}

// NewService создает новый экземпляр сервиса расписаний
func NewService(
	availability AvailabilityRepository,
	ledger LedgerRepository,
	slotDuration time.Duration,
	logger Logger,
) *Service {
	return &Service{
		availability: availability,
		ledger:       ledger,
		slotDuration: slotDuration,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// ProviderSchedule возвращает окна доступности провайдера с занятостью
// каждого слота (включая занятые - для отображения расписания целиком)
func (s *Service) ProviderSchedule(ctx context.Context, providerID int64, rng domain.DateRange) (*models.ProviderScheduleResponse, error) {
	if providerID <= 0 {
		return nil, fmt.Errorf("%w: providerID must be positive", ErrInvalidInput)
	}
	if !rng.IsEmpty() && len(rng.Days()) > domain.MaxScheduleRangeDays {
		return nil, fmt.Errorf("%w: range must not exceed %d days", ErrInvalidInput, domain.MaxScheduleRangeDays)
	}

	s.logger.Info("ProviderSchedule: provider=%d, range=%s..%s",
		providerID, rng.From.Format(domain.DateFormat), rng.To.Format(domain.DateFormat))

	provider, err := s.availability.GetProvider(ctx, providerID)
	if err != nil {
		if errors.Is(err, availabilityRepo.ErrProviderNotFound) {
			s.logger.Warn("ProviderSchedule: provider id=%d not found", providerID)
			return nil, ErrProviderNotFound
		}
		s.logger.Error("ProviderSchedule: failed to get provider id=%d: %v", providerID, err)
		return nil, fmt.Errorf("%w: failed to get provider: %v", ErrInternal, err)
	}

	response := &models.ProviderScheduleResponse{
		ProviderID:   provider.ID,
		ProviderName: provider.DisplayName,
		Range:        rng,
		Windows:      []models.WindowResponse{},
	}

	if rng.IsEmpty() {
		return response, nil
	}

	windows, err := s.availability.GetWindows(ctx, providerID, rng)
	if err != nil {
		if errors.Is(err, availabilityRepo.ErrWindowsOverlap) {
			s.logger.Error("ProviderSchedule: overlapping windows for provider id=%d: %v", providerID, err)
			return nil, fmt.Errorf("%w: %v", ErrInvariantViolation, err)
		}
		s.logger.Error("ProviderSchedule: failed to get windows: %v", err)
		return nil, fmt.Errorf("%w: failed to get windows: %v", ErrInternal, err)
	}

	if len(windows) == 0 {
		return response, nil
	}

	bookings, err := s.ledger.ReadActiveForSlot(ctx, providerID, windows[0].Start, windows[len(windows)-1].End)
	if err != nil {
		s.logger.Error("ProviderSchedule: failed to read active bookings: %v", err)
		return nil, fmt.Errorf("%w: failed to read active bookings: %v", ErrInternal, err)
	}

	now := s.timeProvider.Now()
	for _, window := range windows {
		slots := slotindex.Apply(slotindex.Tile([]domain.AvailabilityWindow{window}, s.slotDuration), bookings, now)

		windowResp := models.WindowResponse{
			Start:    window.Start,
			End:      window.End,
			Capacity: window.Capacity,
			Slots:    make([]models.SlotResponse, 0, len(slots)),
		}
		for _, slot := range slots {
			windowResp.Slots = append(windowResp.Slots, models.SlotResponse{
				Start:          slot.Start,
				End:            slot.End,
				Occupancy:      slot.Occupancy,
				Capacity:       slot.Capacity,
				AvailableSpots: slot.AvailableSpots(),
			})
		}
		response.Windows = append(response.Windows, windowResp)
	}

	s.logger.Info("ProviderSchedule: %d windows for provider=%d", len(response.Windows), providerID)
	return response, nil
}
