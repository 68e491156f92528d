package scheduling

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/MuTuOz/HospitalManagementSystem-sub000/internal/records"
)

// CompletionWorkflow closes out scheduled appointments. Completion is the
// terminal transition; completed appointments are immutable.
type CompletionWorkflow struct {
	repo    Repository
	records records.Creator
	log     *zap.Logger

	// onRecordFailure is a metrics hook; nil-safe.
	onRecordFailure func()
}

func NewCompletionWorkflow(repo Repository, creator records.Creator, log *zap.Logger, onRecordFailure func()) *CompletionWorkflow {
	return &CompletionWorkflow{
		repo:            repo,
		records:         creator,
		log:             log,
		onRecordFailure: onRecordFailure,
	}
}

// Complete transitions a scheduled appointment to completed and persists
// the clinical outcome. The medical-record creation request is best
// effort: its failure never fails the completion.
func (w *CompletionWorkflow) Complete(ctx context.Context, appointmentID uuid.UUID, diagnosis, prescription, notes, testResults string) error {
	appt, err := w.repo.GetAppointmentByID(ctx, appointmentID)
	if err != nil {
		return err
	}
	if appt.Status != StatusScheduled {
		return ErrNotScheduled
	}

	completed, err := w.repo.CompleteAppointment(ctx, appointmentID, diagnosis, prescription, notes)
	if err != nil {
		if errors.Is(err, ErrAppointmentNotFound) {
			// Status moved between the read and the conditional write.
			return ErrNotScheduled
		}
		return fmt.Errorf("complete appointment: %w", err)
	}

	w.log.Info("appointment completed",
		zap.String("appointment_id", completed.ID.String()),
		zap.String("doctor_id", completed.DoctorID.String()),
	)

	req := records.CreateRequest{
		PatientID:     completed.PatientID,
		DoctorID:      completed.DoctorID,
		AppointmentID: completed.ID,
		HospitalID:    completed.HospitalID,
		TestResults:   testResults,
		Medications:   prescription,
		Notes:         fmt.Sprintf("Visit notes: %s. Diagnosis: %s.", notes, diagnosis),
	}
	if err := w.records.CreateRecord(ctx, req); err != nil {
		w.log.Error("medical record creation failed",
			zap.String("appointment_id", completed.ID.String()),
			zap.Error(err),
		)
		if w.onRecordFailure != nil {
			w.onRecordFailure()
		}
	}

	return nil
}

// SweepPastDue flips every scheduled appointment whose slot date has
// passed to completed, without clinical data. Run opportunistically or
// from the sweep worker. Returns how many appointments were swept.
func (w *CompletionWorkflow) SweepPastDue(ctx context.Context) (int, error) {
	pastDue, err := w.repo.FindPastDueScheduled(ctx, Today())
	if err != nil {
		return 0, fmt.Errorf("find past due appointments: %w", err)
	}

	swept := 0
	for _, appt := range pastDue {
		_, err := w.repo.UpdateAppointmentStatus(ctx, appt.ID, StatusScheduled, StatusCompleted)
		if err != nil {
			if errors.Is(err, ErrAppointmentNotFound) {
				continue
			}
			w.log.Error("failed to sweep appointment",
				zap.String("appointment_id", appt.ID.String()),
				zap.Error(err),
			)
			continue
		}
		swept++
	}

	if swept > 0 {
		w.log.Info("past-due sweep complete", zap.Int("swept", swept))
	}
	return swept, nil
}
