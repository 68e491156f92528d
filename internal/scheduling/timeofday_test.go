package scheduling

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimeOfDay(t *testing.T) {
	tod, err := ParseTimeOfDay("09:15")
	require.NoError(t, err)
	assert.Equal(t, TimeOfDay(9*60+15), tod)
	assert.Equal(t, "09:15", tod.String())

	_, err = ParseTimeOfDay("25:00")
	assert.Error(t, err)

	_, err = ParseTimeOfDay("nine")
	assert.Error(t, err)
}

func TestTimeOfDayBookable(t *testing.T) {
	cases := []struct {
		in       string
		bookable bool
	}{
		{"07:45", false}, // before opening
		{"08:00", true},  // first slot of the day
		{"12:30", true},
		{"17:45", true},  // last valid start before closing
		{"18:00", false}, // closing is end-exclusive
		{"09:10", false}, // off the 15-minute grid
	}

	for _, tc := range cases {
		tod, err := ParseTimeOfDay(tc.in)
		require.NoError(t, err)
		assert.Equal(t, tc.bookable, tod.Bookable(), "time %s", tc.in)
	}
}

func TestDateHelpers(t *testing.T) {
	d := DateOnly(time.Date(2025, 3, 10, 14, 35, 12, 0, time.UTC))
	assert.Equal(t, time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), d)

	assert.False(t, IsWeekend(time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC))) // Monday
	assert.True(t, IsWeekend(time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC))) // Saturday
	assert.True(t, IsWeekend(time.Date(2025, 3, 16, 0, 0, 0, 0, time.UTC))) // Sunday
}
