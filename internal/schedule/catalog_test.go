package schedule

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func moscow(t *testing.T) *time.Location {
	t.Helper()
	return time.FixedZone("MSK", 3*60*60)
}

func TestWeekWindow_StartsOnNextWednesday(t *testing.T) {
	loc := moscow(t)

	tests := []struct {
		name      string
		now       time.Time
		wantStart string
	}{
		{"monday", time.Date(2026, 10, 12, 9, 0, 0, 0, loc), "14.10.2026"},
		{"tuesday late evening", time.Date(2026, 10, 13, 23, 59, 0, 0, loc), "14.10.2026"},
		{"wednesday jumps a full week", time.Date(2026, 10, 14, 8, 0, 0, 0, loc), "21.10.2026"},
		{"thursday", time.Date(2026, 10, 15, 12, 0, 0, 0, loc), "21.10.2026"},
		{"saturday", time.Date(2026, 10, 17, 12, 0, 0, 0, loc), "21.10.2026"},
		{"sunday", time.Date(2026, 10, 18, 12, 0, 0, 0, loc), "21.10.2026"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			days := WeekWindow(tt.now)
			require.Len(t, days, DaysInWindow)
			assert.Equal(t, tt.wantStart, days[0].DateText())
			assert.Equal(t, time.Wednesday, days[0].Date.Weekday())
			assert.Equal(t, time.Sunday, days[4].Date.Weekday())
			for i, d := range days {
				assert.Equal(t, i, d.Offset)
			}
		})
	}
}

func TestSlotsForDay(t *testing.T) {
	slots := SlotsForDay(2)

	require.Len(t, slots, 9)
	assert.Equal(t, TimeSlot{ID: "day2_1300", Time: "13:00"}, slots[0])
	assert.Equal(t, TimeSlot{ID: "day2_2100", Time: "21:00"}, slots[8])
}

func TestAllSlotLabels(t *testing.T) {
	now := time.Date(2026, 10, 17, 12, 0, 0, 0, moscow(t))

	labels := AllSlotLabels(now)

	assert.Len(t, labels, 45)
	assert.Equal(t, "Ср 21.10.2026 13:00", labels["day0_1300"])
	assert.Equal(t, "Вс 25.10.2026 21:00", labels["day4_2100"])
}

func TestSlotIDRoundTrip(t *testing.T) {
	now := time.Date(2026, 10, 17, 12, 0, 0, 0, moscow(t))
	labels := AllSlotLabels(now)
	days := WeekWindow(now)

	for day := 0; day < DaysInWindow; day++ {
		for hour := FirstHour; hour <= LastHour; hour++ {
			id := SlotID(day, hour)
			label, ok := labels[id]
			require.True(t, ok, id)

			assert.True(t, strings.HasPrefix(label, days[day].Name+" "), label)
			assert.Contains(t, label, time.Date(2000, 1, 1, hour, 0, 0, 0, time.UTC).Format("15:04"))

			gotDay, gotHour, err := ParseSlotID(id)
			require.NoError(t, err)
			assert.Equal(t, day, gotDay)
			assert.Equal(t, hour, gotHour)
		}
	}
}

func TestParseSlotID_Invalid(t *testing.T) {
	for _, id := range []string{"", "day5_1300", "day0_1200", "day0_2200", "day0_1330", "manual_abc", "dayx_1300"} {
		_, _, err := ParseSlotID(id)
		assert.Error(t, err, id)
	}
}

func TestSlotAt(t *testing.T) {
	loc := moscow(t)
	now := time.Date(2026, 10, 17, 12, 0, 0, 0, loc)

	slot, ok := SlotAt(now, time.Date(2026, 10, 23, 18, 0, 0, 0, loc))
	require.True(t, ok)
	assert.Equal(t, "day2_1800", slot.ID)
	assert.Equal(t, "Пт 23.10.2026 18:00", slot.Label)

	_, ok = SlotAt(now, time.Date(2026, 10, 23, 10, 0, 0, 0, loc))
	assert.False(t, ok, "hour outside the grid")

	_, ok = SlotAt(now, time.Date(2026, 10, 27, 18, 0, 0, 0, loc))
	assert.False(t, ok, "date outside the window")
}

func TestParseLabelTime(t *testing.T) {
	loc := moscow(t)

	got, ok := ParseLabelTime("Ср 21.10.2026 13:00", loc)
	require.True(t, ok)
	assert.Equal(t, time.Date(2026, 10, 21, 13, 0, 0, 0, loc), got)

	_, ok = ParseLabelTime("когда-нибудь", loc)
	assert.False(t, ok)
}

func TestManualLabel(t *testing.T) {
	loc := moscow(t)
	assert.Equal(t, "Пн 02.11.2026 10:00", ManualLabel(time.Date(2026, 11, 2, 10, 0, 0, 0, loc)))
}
