package scheduling

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/MuTuOz/HospitalManagementSystem-sub000/internal/records"
)

type capturingCreator struct {
	requests []records.CreateRequest
	fail     bool
}

func (c *capturingCreator) CreateRecord(_ context.Context, req records.CreateRequest) error {
	if c.fail {
		return errors.New("records service down")
	}
	c.requests = append(c.requests, req)
	return nil
}

func newTestWorkflow(creator records.Creator, onRecordFailure func()) (*CompletionWorkflow, *MemoryRepository) {
	repo := NewMemoryRepository()
	return NewCompletionWorkflow(repo, creator, zap.NewNop(), onRecordFailure), repo
}

func stageScheduled(t *testing.T, repo *MemoryRepository, slotDate func() Slot) Appointment {
	t.Helper()
	slot := slotDate()
	repo.PutSlot(slot)
	appt := Appointment{
		ID:         uuid.New(),
		SlotID:     slot.ID,
		DoctorID:   slot.DoctorID,
		PatientID:  uuid.New(),
		HospitalID: slot.HospitalID,
		Status:     StatusScheduled,
	}
	repo.PutAppointment(appt)
	return appt
}

func futureSlot() Slot {
	return Slot{
		ID:         uuid.New(),
		DoctorID:   uuid.New(),
		HospitalID: uuid.New(),
		Date:       nextWeekday(1),
		TimeOfDay:  9 * 60,
		Occupied:   true,
	}
}

func pastSlot() Slot {
	s := futureSlot()
	s.Date = Today().AddDate(0, 0, -1)
	return s
}

func TestComplete(t *testing.T) {
	ctx := context.Background()
	creator := &capturingCreator{}
	workflow, repo := newTestWorkflow(creator, nil)
	appt := stageScheduled(t, repo, futureSlot)

	err := workflow.Complete(ctx, appt.ID, "flu", "rest and fluids", "mild fever", "negative strep test")
	require.NoError(t, err)

	completed, err := repo.GetAppointmentByID(ctx, appt.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, completed.Status)
	assert.Equal(t, "flu", completed.Diagnosis)
	assert.Equal(t, "rest and fluids", completed.Prescription)
	assert.Equal(t, "mild fever", completed.Notes)

	require.Len(t, creator.requests, 1)
	req := creator.requests[0]
	assert.Equal(t, appt.ID, req.AppointmentID)
	assert.Equal(t, appt.PatientID, req.PatientID)
	assert.Equal(t, "rest and fluids", req.Medications)
	assert.Equal(t, "negative strep test", req.TestResults)

	t.Run("completing twice fails", func(t *testing.T) {
		err := workflow.Complete(ctx, appt.ID, "flu", "", "", "")
		assert.ErrorIs(t, err, ErrNotScheduled)
	})
}

func TestCompleteGuards(t *testing.T) {
	ctx := context.Background()
	workflow, repo := newTestWorkflow(&capturingCreator{}, nil)

	t.Run("missing appointment", func(t *testing.T) {
		err := workflow.Complete(ctx, uuid.New(), "", "", "", "")
		assert.ErrorIs(t, err, ErrAppointmentNotFound)
	})

	t.Run("cancelled appointment", func(t *testing.T) {
		appt := stageScheduled(t, repo, futureSlot)
		appt.Status = StatusCancelled
		repo.PutAppointment(appt)

		err := workflow.Complete(ctx, appt.ID, "", "", "", "")
		assert.ErrorIs(t, err, ErrNotScheduled)
	})
}

func TestCompleteSurvivesRecordFailure(t *testing.T) {
	ctx := context.Background()
	failures := 0
	workflow, repo := newTestWorkflow(&capturingCreator{fail: true}, func() { failures++ })
	appt := stageScheduled(t, repo, futureSlot)

	// Record creation is best effort: completion still succeeds.
	err := workflow.Complete(ctx, appt.ID, "flu", "", "", "")
	require.NoError(t, err)

	completed, err := repo.GetAppointmentByID(ctx, appt.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, completed.Status)
	assert.Equal(t, 1, failures)
}

func TestSweepPastDue(t *testing.T) {
	ctx := context.Background()
	workflow, repo := newTestWorkflow(&capturingCreator{}, nil)

	pastDue := stageScheduled(t, repo, pastSlot)
	upcoming := stageScheduled(t, repo, futureSlot)
	alreadyCancelled := stageScheduled(t, repo, pastSlot)
	alreadyCancelled.Status = StatusCancelled
	repo.PutAppointment(alreadyCancelled)

	swept, err := workflow.SweepPastDue(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, swept)

	a, err := repo.GetAppointmentByID(ctx, pastDue.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, a.Status)
	assert.Empty(t, a.Diagnosis)

	b, err := repo.GetAppointmentByID(ctx, upcoming.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusScheduled, b.Status)

	c, err := repo.GetAppointmentByID(ctx, alreadyCancelled.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, c.Status)

	t.Run("second sweep finds nothing", func(t *testing.T) {
		swept, err := workflow.SweepPastDue(ctx)
		require.NoError(t, err)
		assert.Zero(t, swept)
	})
}
