package scheduling

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/MuTuOz/HospitalManagementSystem-sub000/internal/notify"
	redisclient "github.com/MuTuOz/HospitalManagementSystem-sub000/internal/redis"
)

const (
	AuditActionCancel     = "cancel"
	AuditActionReactivate = "reactivate"
)

// BookingEngine drives the appointment lifecycle for a slot:
//
//	(none) --Book--> scheduled --Cancel--> cancelled --Reactivate--> scheduled
//	                 scheduled --Complete--> completed (terminal)
//
// All transitions touching a slot's occupancy run under the per-slot lock,
// and every status write is conditional on the prior status, so no two
// patients can hold an active appointment for the same slot.
type BookingEngine struct {
	repo     Repository
	locker   redisclient.Locker
	notifier notify.Notifier
	audit    *AuditTrail
	log      *zap.Logger
}

func NewBookingEngine(repo Repository, locker redisclient.Locker, notifier notify.Notifier, audit *AuditTrail, log *zap.Logger) *BookingEngine {
	return &BookingEngine{
		repo:     repo,
		locker:   locker,
		notifier: notifier,
		audit:    audit,
		log:      log,
	}
}

// Book reserves a slot for a patient. If the slot retains a cancelled
// appointment it is reused, keeping one appointment identity per slot
// across cancel/rebook cycles; otherwise a new scheduled appointment is
// inserted. The booking-confirmed notification is fire and forget.
func (e *BookingEngine) Book(ctx context.Context, patientID, doctorID, slotID, hospitalID uuid.UUID, notes string) (uuid.UUID, error) {
	if _, err := e.repo.GetSlotByID(ctx, slotID); err != nil {
		return uuid.Nil, err
	}

	var booked *Appointment

	err := e.locker.WithSlotLock(ctx, slotID, func(lockCtx context.Context) error {
		// Re-check inside the critical section.
		_, err := e.repo.GetActiveAppointmentForSlot(lockCtx, slotID)
		if err == nil {
			return ErrSlotAlreadyBooked
		}
		if !errors.Is(err, ErrAppointmentNotFound) {
			return fmt.Errorf("check active appointment: %w", err)
		}

		cancelled, err := e.repo.GetCancelledAppointmentForSlot(lockCtx, slotID)
		switch {
		case err == nil:
			appt, err := e.repo.RebookCancelledAppointment(lockCtx, cancelled.ID, patientID, notes)
			if err != nil {
				if errors.Is(err, ErrAppointmentNotFound) {
					return ErrSlotAlreadyBooked
				}
				return fmt.Errorf("rebook cancelled appointment: %w", err)
			}
			booked = appt

		case errors.Is(err, ErrAppointmentNotFound):
			appt := &Appointment{
				ID:         uuid.New(),
				SlotID:     slotID,
				DoctorID:   doctorID,
				PatientID:  patientID,
				HospitalID: hospitalID,
				Notes:      notes,
			}
			if err := e.repo.CreateScheduledAppointment(lockCtx, appt); err != nil {
				return err
			}
			booked = appt

		default:
			return fmt.Errorf("check cancelled appointment: %w", err)
		}

		if err := e.repo.SetSlotOccupied(lockCtx, slotID, true); err != nil {
			return fmt.Errorf("mark slot occupied: %w", err)
		}
		return nil
	})

	if err != nil {
		if errors.Is(err, redisclient.ErrLockNotAcquired) {
			return uuid.Nil, ErrSlotBeingBooked
		}
		return uuid.Nil, err
	}

	e.log.Info("appointment booked",
		zap.String("appointment_id", booked.ID.String()),
		zap.String("slot_id", slotID.String()),
		zap.String("patient_id", patientID.String()),
	)
	e.sendBookingNotifications(ctx, booked)

	return booked.ID, nil
}

// Cancel moves a scheduled appointment to cancelled and frees its slot.
// Cancelling an already cancelled appointment is a no-op success;
// completed appointments are immutable.
func (e *BookingEngine) Cancel(ctx context.Context, appointmentID, cancelledBy uuid.UUID) error {
	appt, err := e.repo.GetAppointmentByID(ctx, appointmentID)
	if err != nil {
		return err
	}

	switch appt.Status {
	case StatusCompleted:
		return ErrAlreadyCompleted
	case StatusCancelled:
		return nil
	}

	err = e.locker.WithSlotLock(ctx, appt.SlotID, func(lockCtx context.Context) error {
		if _, err := e.repo.UpdateAppointmentStatus(lockCtx, appt.ID, StatusScheduled, StatusCancelled); err != nil {
			if errors.Is(err, ErrAppointmentNotFound) {
				// Status changed between the read and the write.
				cur, gerr := e.repo.GetAppointmentByID(lockCtx, appt.ID)
				if gerr != nil {
					return gerr
				}
				if cur.Status == StatusCancelled {
					return nil
				}
				return ErrAlreadyCompleted
			}
			return fmt.Errorf("cancel appointment: %w", err)
		}
		if err := e.repo.SetSlotOccupied(lockCtx, appt.SlotID, false); err != nil {
			return fmt.Errorf("free slot: %w", err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, redisclient.ErrLockNotAcquired) {
			return ErrSlotBeingBooked
		}
		return err
	}

	e.log.Info("appointment cancelled",
		zap.String("appointment_id", appt.ID.String()),
		zap.String("cancelled_by", cancelledBy.String()),
	)
	e.audit.Append(cancelledBy, AuditActionCancel, appt.ID)
	return nil
}

// Reactivate restores a cancelled appointment to scheduled, re-claiming
// its slot. Fails if another patient has booked the freed slot or the
// slot's date has already passed (same-day reactivation is allowed).
func (e *BookingEngine) Reactivate(ctx context.Context, appointmentID, reactivatedBy uuid.UUID) error {
	appt, err := e.repo.GetAppointmentByID(ctx, appointmentID)
	if err != nil {
		return err
	}
	if appt.Status != StatusCancelled {
		return ErrAppointmentNotFound
	}

	err = e.locker.WithSlotLock(ctx, appt.SlotID, func(lockCtx context.Context) error {
		slot, err := e.repo.GetSlotByID(lockCtx, appt.SlotID)
		if err != nil {
			return err
		}
		if slot.Occupied {
			return ErrSlotNoLongerAvailable
		}
		if slot.Date.Before(Today()) {
			return ErrSlotDateInPast
		}

		if _, err := e.repo.UpdateAppointmentStatus(lockCtx, appt.ID, StatusCancelled, StatusScheduled); err != nil {
			if errors.Is(err, ErrAppointmentNotFound) {
				return ErrSlotNoLongerAvailable
			}
			return fmt.Errorf("reactivate appointment: %w", err)
		}
		if err := e.repo.SetSlotOccupied(lockCtx, appt.SlotID, true); err != nil {
			return fmt.Errorf("re-occupy slot: %w", err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, redisclient.ErrLockNotAcquired) {
			return ErrSlotBeingBooked
		}
		return err
	}

	e.log.Info("appointment reactivated",
		zap.String("appointment_id", appt.ID.String()),
		zap.String("reactivated_by", reactivatedBy.String()),
	)
	e.audit.Append(reactivatedBy, AuditActionReactivate, appt.ID)
	return nil
}

// sendBookingNotifications addresses both parties. Missing directory rows
// or delivery failures only produce log lines.
func (e *BookingEngine) sendBookingNotifications(ctx context.Context, appt *Appointment) {
	subject := "Appointment confirmed"
	body := fmt.Sprintf("Your appointment %s has been booked.", appt.ID)

	if p, err := e.repo.GetPatientByID(ctx, appt.PatientID); err == nil && p.Email != nil {
		if err := e.notifier.Notify(ctx, *p.Email, subject, body); err != nil {
			e.log.Warn("patient notification failed", zap.Error(err))
		}
	}
	if d, err := e.repo.GetDoctorByID(ctx, appt.DoctorID); err == nil && d.Email != nil {
		if err := e.notifier.Notify(ctx, *d.Email, subject, body); err != nil {
			e.log.Warn("doctor notification failed", zap.Error(err))
		}
	}
}
