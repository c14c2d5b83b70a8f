package common

import (
	"bytes"
	"image/png"
	"testing"
	"time"

	"github.com/UrikezZ/52HZSchoolBot/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var msk = time.FixedZone("MSK", 3*3600)

func TestBuildWeekGrid(t *testing.T) {
	now := time.Date(2026, 10, 17, 12, 0, 0, 0, msk)
	taken := map[string]int64{"day0_1300": 1, "day1_1400": 9}
	names := map[int64]string{1: "Анна"}
	requests := []*model.AvailabilityRequest{
		{StudentID: 2, SelectedSlots: []string{"day0_1300", "day2_1500"}},
		{StudentID: 3, SelectedSlots: []string{"day2_1500"}},
	}

	grid := BuildWeekGrid(now, taken, names, requests)

	require.Len(t, grid.Days, 5)
	assert.Len(t, grid.Cells, 45)
	assert.Equal(t, WeekCell{Status: CellTaken, Caption: "Анна"}, grid.Cells["day0_1300"])
	assert.Equal(t, WeekCell{Status: CellTaken, Caption: "ID 9"}, grid.Cells["day1_1400"])
	assert.Equal(t, WeekCell{Status: CellRequested, Caption: "заявок: 2"}, grid.Cells["day2_1500"])
	assert.Equal(t, CellFree, grid.Cells["day4_2100"].Status)
}

func TestGenerateWeekImageProducesPNG(t *testing.T) {
	now := time.Date(2026, 10, 17, 12, 0, 0, 0, msk)
	grid := BuildWeekGrid(now, map[string]int64{"day0_1300": 1}, map[int64]string{1: "Очень длинное имя ученика"}, nil)

	data, err := GenerateWeekImage(grid, now)
	require.NoError(t, err)

	cfg, err := png.DecodeConfig(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, imageWidth, cfg.Width)
	assert.Equal(t, imageHeight, cfg.Height)
}

func TestGenerateWeekImageRejectsEmptyGrid(t *testing.T) {
	_, err := GenerateWeekImage(WeekGrid{}, time.Now())
	assert.Error(t, err)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "Анна", truncate("Анна", 16))
	assert.Equal(t, "Алекс…", truncate("Александра", 6))
}
