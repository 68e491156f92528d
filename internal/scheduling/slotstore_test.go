package scheduling

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// nextWeekday returns the first Monday-Friday date at least daysAhead
// days from today.
func nextWeekday(daysAhead int) time.Time {
	d := Today().AddDate(0, 0, daysAhead)
	for IsWeekend(d) {
		d = d.AddDate(0, 0, 1)
	}
	return d
}

// nextSaturday returns the first upcoming Saturday strictly after today.
func nextSaturday() time.Time {
	d := Today().AddDate(0, 0, 1)
	for d.Weekday() != time.Saturday {
		d = d.AddDate(0, 0, 1)
	}
	return d
}

func mustTime(t *testing.T, s string) TimeOfDay {
	t.Helper()
	tod, err := ParseTimeOfDay(s)
	require.NoError(t, err)
	return tod
}

func newTestSlotStore() (*SlotStore, *MemoryRepository) {
	repo := NewMemoryRepository()
	return NewSlotStore(repo, zap.NewNop()), repo
}

func TestCreateSlot(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestSlotStore()
	doctorID := uuid.New()
	hospitalID := uuid.New()
	date := nextWeekday(1)

	slotID, err := store.CreateSlot(ctx, doctorID, hospitalID, date, mustTime(t, "09:00"))
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, slotID)

	available, err := store.ListAvailable(ctx, doctorID, nil, 0)
	require.NoError(t, err)
	require.Len(t, available, 1)
	assert.Equal(t, slotID, available[0].ID)
	assert.False(t, available[0].Occupied)
}

func TestCreateSlotRejections(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestSlotStore()
	doctorID := uuid.New()
	hospitalID := uuid.New()

	t.Run("past date", func(t *testing.T) {
		_, err := store.CreateSlot(ctx, doctorID, hospitalID, Today().AddDate(0, 0, -1), mustTime(t, "09:00"))
		assert.ErrorIs(t, err, ErrPastDate)
	})

	t.Run("weekend date", func(t *testing.T) {
		_, err := store.CreateSlot(ctx, doctorID, hospitalID, nextSaturday(), mustTime(t, "09:00"))
		assert.ErrorIs(t, err, ErrWeekendDate)
	})

	t.Run("before opening", func(t *testing.T) {
		_, err := store.CreateSlot(ctx, doctorID, hospitalID, nextWeekday(1), mustTime(t, "07:45"))
		assert.ErrorIs(t, err, ErrOutsideOperatingHours)
	})

	t.Run("at closing", func(t *testing.T) {
		_, err := store.CreateSlot(ctx, doctorID, hospitalID, nextWeekday(1), mustTime(t, "18:00"))
		assert.ErrorIs(t, err, ErrOutsideOperatingHours)
	})

	t.Run("last start of the day is valid", func(t *testing.T) {
		_, err := store.CreateSlot(ctx, doctorID, hospitalID, nextWeekday(1), mustTime(t, "17:45"))
		assert.NoError(t, err)
	})

	t.Run("duplicate", func(t *testing.T) {
		date := nextWeekday(2)
		_, err := store.CreateSlot(ctx, doctorID, hospitalID, date, mustTime(t, "10:00"))
		require.NoError(t, err)
		_, err = store.CreateSlot(ctx, doctorID, hospitalID, date, mustTime(t, "10:00"))
		assert.ErrorIs(t, err, ErrDuplicateSlot)
	})
}

func TestDeleteSlot(t *testing.T) {
	ctx := context.Background()
	store, repo := newTestSlotStore()
	doctorID := uuid.New()

	slotID, err := store.CreateSlot(ctx, doctorID, uuid.New(), nextWeekday(1), mustTime(t, "11:00"))
	require.NoError(t, err)

	t.Run("occupied slot cannot be deleted", func(t *testing.T) {
		require.NoError(t, repo.SetSlotOccupied(ctx, slotID, true))
		assert.ErrorIs(t, store.DeleteSlot(ctx, slotID), ErrSlotOccupied)
	})

	t.Run("free slot deletes", func(t *testing.T) {
		require.NoError(t, repo.SetSlotOccupied(ctx, slotID, false))
		require.NoError(t, store.DeleteSlot(ctx, slotID))
		_, err := repo.GetSlotByID(ctx, slotID)
		assert.ErrorIs(t, err, ErrSlotNotFound)
	})

	t.Run("missing slot", func(t *testing.T) {
		assert.ErrorIs(t, store.DeleteSlot(ctx, uuid.New()), ErrSlotNotFound)
	})
}

func TestListAvailable(t *testing.T) {
	ctx := context.Background()
	store, repo := newTestSlotStore()
	doctorID := uuid.New()
	hospitalA := uuid.New()
	hospitalB := uuid.New()

	day1 := nextWeekday(1)
	day2 := nextWeekday(3)

	late, err := store.CreateSlot(ctx, doctorID, hospitalA, day1, mustTime(t, "14:00"))
	require.NoError(t, err)
	early, err := store.CreateSlot(ctx, doctorID, hospitalA, day1, mustTime(t, "09:00"))
	require.NoError(t, err)
	otherHospital, err := store.CreateSlot(ctx, doctorID, hospitalB, day2, mustTime(t, "09:00"))
	require.NoError(t, err)
	taken, err := store.CreateSlot(ctx, doctorID, hospitalA, day2, mustTime(t, "10:00"))
	require.NoError(t, err)
	require.NoError(t, repo.SetSlotOccupied(ctx, taken, true))

	t.Run("ordered by date then time, occupied excluded", func(t *testing.T) {
		available, err := store.ListAvailable(ctx, doctorID, nil, 0)
		require.NoError(t, err)
		require.Len(t, available, 3)
		assert.Equal(t, []uuid.UUID{early, late, otherHospital},
			[]uuid.UUID{available[0].ID, available[1].ID, available[2].ID})
	})

	t.Run("hospital filter", func(t *testing.T) {
		available, err := store.ListAvailable(ctx, doctorID, &hospitalB, 0)
		require.NoError(t, err)
		require.Len(t, available, 1)
		assert.Equal(t, otherHospital, available[0].ID)
	})

	t.Run("window bound", func(t *testing.T) {
		// A slot beyond the window stays invisible.
		repo.PutSlot(Slot{
			ID:         uuid.New(),
			DoctorID:   doctorID,
			HospitalID: hospitalA,
			Date:       Today().AddDate(0, 0, 60),
			TimeOfDay:  mustTime(t, "09:00"),
		})
		available, err := store.ListAvailable(ctx, doctorID, nil, 30)
		require.NoError(t, err)
		assert.Len(t, available, 3)
	})
}
