package keyboard

import (
	"testing"
	"time"

	"github.com/UrikezZ/52HZSchoolBot/internal/model"
	"github.com/UrikezZ/52HZSchoolBot/internal/schedule"
	"github.com/UrikezZ/52HZSchoolBot/internal/service"
	"github.com/go-telegram/bot/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var msk = time.FixedZone("MSK", 3*3600)

func texts(kb *models.InlineKeyboardMarkup) []string {
	var out []string
	for _, row := range kb.InlineKeyboard {
		for _, btn := range row {
			out = append(out, btn.Text)
		}
	}
	return out
}

func TestData(t *testing.T) {
	assert.Equal(t, "lc:42:day0_1300", Data(CancelLesson, int64(42), "day0_1300"))
	assert.Equal(t, "t_st:7", Data(StudentCard, 7))

	id, err := ParseID("t_st:7", StudentCard)
	require.NoError(t, err)
	assert.Equal(t, int64(7), id)

	_, err = ParseID("t_st:x", StudentCard)
	assert.Error(t, err)

	id, slot, err := ParseIDAndSlot("rv_t:42:day3_2100", ReviewToggle)
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
	assert.Equal(t, "day3_2100", slot)

	_, _, err = ParseIDAndSlot("rv_t:42", ReviewToggle)
	assert.Error(t, err)
}

func TestCallbackDataFitsTelegramLimit(t *testing.T) {
	longest := Data(CancelLesson, int64(9_999_999_999), model.ManualSlotPrefix+"123e4567-e89b-12d3-a456-426614174000")
	assert.LessOrEqual(t, len(longest), 64)
}

func TestGrid(t *testing.T) {
	buttons := []models.InlineKeyboardButton{Button("1", "a"), Button("2", "b"), Button("3", "c"), Button("4", "d")}
	kb := NewBuilder().Grid(buttons, 3).Build()

	require.Len(t, kb.InlineKeyboard, 2)
	assert.Len(t, kb.InlineKeyboard[0], 3)
	assert.Len(t, kb.InlineKeyboard[1], 1)
}

func TestBookingHoursHidesTakenAndMarksSelected(t *testing.T) {
	now := time.Date(2026, 10, 17, 12, 0, 0, 0, msk)
	day := schedule.WeekWindow(now)[0]
	taken := map[string]int64{"day0_1300": 5}
	req := &model.AvailabilityRequest{StudentID: 1, SelectedSlots: []string{"day0_1400"}}

	all := texts(BookingHours(day, taken, req))

	assert.NotContains(t, all, "◻️ 13:00")
	assert.NotContains(t, all, "✅ 13:00")
	assert.Contains(t, all, "✅ 14:00")
	assert.Contains(t, all, "◻️ 21:00")
	assert.Contains(t, all, "▶️")
	assert.NotContains(t, all, "◀️")
}

func TestReviewMarks(t *testing.T) {
	candidates := []service.Candidate{
		{SlotID: "day0_1300", Label: "Ср 21.10.2026 13:00"},
		{SlotID: "day1_1500", Label: "Чт 22.10.2026 15:00"},
	}
	kb := Review(1, candidates, func(id string) bool { return id == "day1_1500" })

	require.Len(t, kb.InlineKeyboard, 3)
	assert.Equal(t, "◻️ Ср 21.10.2026 13:00", kb.InlineKeyboard[0][0].Text)
	assert.Equal(t, "✅ Чт 22.10.2026 15:00", kb.InlineKeyboard[1][0].Text)
	assert.Equal(t, "rv_t:1:day1_1500", kb.InlineKeyboard[1][0].CallbackData)
	assert.Equal(t, "rv_ok:1", kb.InlineKeyboard[2][0].CallbackData)
	assert.Equal(t, "rv_no:1", kb.InlineKeyboard[2][1].CallbackData)
}
