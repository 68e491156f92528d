package scheduling

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppointmentQuery(t *testing.T) {
	ctx := context.Background()
	engine, repo := newTestEngine(t)
	query := NewAppointmentQuery(repo)

	hospital := Hospital{ID: uuid.New(), Name: "St. Vincent"}
	doctor := Doctor{ID: uuid.New(), HospitalID: hospital.ID, Name: "Dr. Reyes"}
	patient := Patient{ID: uuid.New(), Name: "Ana Kovacs"}
	repo.PutHospital(hospital)
	repo.PutDoctor(doctor)
	repo.PutPatient(patient)

	laterSlot := Slot{
		ID: uuid.New(), DoctorID: doctor.ID, HospitalID: hospital.ID,
		Date: nextWeekday(3), TimeOfDay: 10 * 60,
	}
	earlierSlot := Slot{
		ID: uuid.New(), DoctorID: doctor.ID, HospitalID: hospital.ID,
		Date: nextWeekday(1), TimeOfDay: 14 * 60,
	}
	repo.PutSlot(laterSlot)
	repo.PutSlot(earlierSlot)

	laterID, err := engine.Book(ctx, patient.ID, doctor.ID, laterSlot.ID, hospital.ID, "")
	require.NoError(t, err)
	earlierID, err := engine.Book(ctx, patient.ID, doctor.ID, earlierSlot.ID, hospital.ID, "")
	require.NoError(t, err)

	assertChronological := func(t *testing.T, details []AppointmentDetail) {
		t.Helper()
		require.Len(t, details, 2)
		assert.Equal(t, earlierID, details[0].ID)
		assert.Equal(t, laterID, details[1].ID)
	}

	t.Run("by doctor", func(t *testing.T) {
		details, err := query.ByDoctor(ctx, doctor.ID)
		require.NoError(t, err)
		assertChronological(t, details)
		assert.Equal(t, "Dr. Reyes", details[0].DoctorName)
		assert.Equal(t, "Ana Kovacs", details[0].PatientName)
		assert.Equal(t, "St. Vincent", details[0].HospitalName)
		assert.Equal(t, earlierSlot.Date, details[0].Date)
		assert.Equal(t, earlierSlot.TimeOfDay, details[0].TimeOfDay)
	})

	t.Run("by patient", func(t *testing.T) {
		details, err := query.ByPatient(ctx, patient.ID)
		require.NoError(t, err)
		assertChronological(t, details)
	})

	t.Run("by hospital", func(t *testing.T) {
		details, err := query.ByHospital(ctx, hospital.ID)
		require.NoError(t, err)
		assertChronological(t, details)
	})

	t.Run("unknown doctor yields empty view", func(t *testing.T) {
		details, err := query.ByDoctor(ctx, uuid.New())
		require.NoError(t, err)
		assert.Empty(t, details)
	})

	t.Run("by id", func(t *testing.T) {
		appt, err := query.ByID(ctx, earlierID)
		require.NoError(t, err)
		assert.Equal(t, earlierID, appt.ID)

		_, err = query.ByID(ctx, uuid.New())
		assert.ErrorIs(t, err, ErrAppointmentNotFound)
	})
}
