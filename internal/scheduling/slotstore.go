package scheduling

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultBookingWindowDays bounds how far ahead ListAvailable looks when
// the caller does not say.
const DefaultBookingWindowDays = 30

// SlotStore owns the catalog of bookable slots and answers availability
// queries. Occupancy itself is driven by the booking engine.
type SlotStore struct {
	repo Repository
	log  *zap.Logger
}

func NewSlotStore(repo Repository, log *zap.Logger) *SlotStore {
	return &SlotStore{repo: repo, log: log}
}

// CreateSlot registers a new bookable slot for a doctor. The date must be
// a future-or-today weekday and the start time must sit on the 15-minute
// grid inside the operating window.
func (s *SlotStore) CreateSlot(ctx context.Context, doctorID, hospitalID uuid.UUID, date time.Time, timeOfDay TimeOfDay) (uuid.UUID, error) {
	date = DateOnly(date)

	if date.Before(Today()) {
		return uuid.Nil, ErrPastDate
	}
	if IsWeekend(date) {
		return uuid.Nil, ErrWeekendDate
	}
	if !timeOfDay.Bookable() {
		return uuid.Nil, ErrOutsideOperatingHours
	}

	slot := &Slot{
		ID:         uuid.New(),
		DoctorID:   doctorID,
		HospitalID: hospitalID,
		Date:       date,
		TimeOfDay:  timeOfDay,
	}
	if err := s.repo.CreateSlot(ctx, slot); err != nil {
		return uuid.Nil, err
	}

	s.log.Info("slot created",
		zap.String("slot_id", slot.ID.String()),
		zap.String("doctor_id", doctorID.String()),
		zap.String("date", date.Format("2006-01-02")),
		zap.String("time", timeOfDay.String()),
	)
	return slot.ID, nil
}

// DeleteSlot removes a free slot. Occupied slots cannot be deleted, which
// keeps appointments from ever referencing a missing slot.
func (s *SlotStore) DeleteSlot(ctx context.Context, slotID uuid.UUID) error {
	if err := s.repo.DeleteFreeSlot(ctx, slotID); err != nil {
		return err
	}
	s.log.Info("slot deleted", zap.String("slot_id", slotID.String()))
	return nil
}

// ListAvailable returns the doctor's free slots within the next withinDays
// days, ordered by date then time. hospitalID narrows to one facility;
// withinDays <= 0 falls back to the default window.
func (s *SlotStore) ListAvailable(ctx context.Context, doctorID uuid.UUID, hospitalID *uuid.UUID, withinDays int) ([]Slot, error) {
	if withinDays <= 0 {
		withinDays = DefaultBookingWindowDays
	}
	from := Today()
	to := from.AddDate(0, 0, withinDays)

	slots, err := s.repo.ListAvailableSlots(ctx, doctorID, hospitalID, from, to)
	if err != nil {
		return nil, fmt.Errorf("list available slots: %w", err)
	}
	return slots, nil
}
