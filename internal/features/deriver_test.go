package features

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/euromillions/internal/models"
)

func TestDistinctTicketRows(t *testing.T) {
	tests := []struct {
		main     []int
		expected int
	}{
		{[]int{1, 2, 3, 4, 5}, 1},
		{[]int{1, 9, 17, 25, 33}, 5},
		{[]int{8, 9, 48, 49, 50}, 4},
		{[]int{8, 16, 24, 32, 40}, 5},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, DistinctTicketRows(tt.main), "%v", tt.main)
	}
}

func TestSevensPatternCount(t *testing.T) {
	assert.Equal(t, 5, SevensPatternCount([]int{7, 17, 27, 37, 47}))
	assert.Equal(t, 0, SevensPatternCount([]int{1, 2, 3, 4, 5}))
	assert.Equal(t, 4, SevensPatternCount([]int{1, 7, 17, 27, 37}))
}

func TestLuckyNumbersCount(t *testing.T) {
	assert.Equal(t, 5, LuckyNumbersCount([]int{1, 3, 7, 9, 13}))
	assert.Equal(t, 0, LuckyNumbersCount([]int{2, 4, 6, 8, 10}))
	assert.Equal(t, 1, LuckyNumbersCount([]int{7, 12}))
}

func TestIsDate(t *testing.T) {
	tests := []struct {
		name     string
		main     []int
		expected bool
	}{
		{"month then day", []int{1, 7, 17, 27, 37}, true},
		{"no month candidate", []int{13, 14, 15, 40, 41}, false},
		{"month but no later day", []int{13, 2, 40, 45, 50}, false},
		{"month value is not reused as day", []int{40, 41, 42, 43, 5}, false},
		{"day found after gap", []int{32, 5, 44, 31, 50}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsDate(tt.main))
		})
	}
}

func TestIsThisYearAndPost2000(t *testing.T) {
	tests := []struct {
		name     string
		main     []int
		year     int
		thisYear bool
		post2000 bool
	}{
		{"exact year", []int{20, 23, 30, 40, 50}, 2023, true, true},
		{"earlier year", []int{20, 22, 30, 40, 50}, 2023, false, true},
		{"no century marker", []int{1, 23, 30, 40, 50}, 2023, false, false},
		{"only later numbers", []int{20, 30, 40, 45, 50}, 2023, false, false},
		{"marker does not count twice", []int{20, 30, 40, 45, 50}, 2020, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.thisYear, IsThisYear(tt.main, tt.year))
			assert.Equal(t, tt.post2000, IsPost2000(tt.main, tt.year))
		})
	}
}

func TestDeriveEndToEndTicket(t *testing.T) {
	ticket, err := models.NewTicket(2023, []int{1, 7, 17, 27, 37}, []int{7, 12})
	require.NoError(t, err)

	fv := Derive(ticket)

	assert.Equal(t, 4, fv.SevensPatternCount)
	assert.Equal(t, 3, fv.LuckyNumbersCount)
	assert.Equal(t, 1, fv.LuckyLuckyNumbersCount)
	assert.True(t, fv.HasLucky)
	assert.True(t, fv.HasLuckyLucky)
	assert.True(t, fv.IsDate)
	assert.False(t, fv.IsThisYear)
	assert.False(t, fv.IsPost2000)
	assert.Equal(t, 4, fv.DistinctTicketRows)
	assert.Equal(t, 89, fv.MainSum)
	assert.Equal(t, 19, fv.LuckySum)
	assert.Equal(t, 108, fv.CombinedSum)
	assert.False(t, fv.Binned())
}

func TestDeriveDoesNotShareTicketSlices(t *testing.T) {
	ticket := models.Ticket{DrawYear: 2023, Main: []int{1, 2, 3, 4, 5}, Lucky: []int{1, 2}}
	fv := Derive(ticket)
	fv.Ticket.Main[0] = 49

	assert.Equal(t, 1, ticket.Main[0])
}

func TestColumnsAndValue(t *testing.T) {
	ticket := models.Ticket{DrawYear: 2023, Main: []int{1, 2, 3, 4, 5}, Lucky: []int{1, 2}}
	fv := Derive(ticket)

	assert.NotContains(t, Columns(false), ColDistinctTicketRows)
	assert.Contains(t, Columns(true), ColDistinctTicketRows)

	v, ok := fv.Value(ColMainSum)
	require.True(t, ok)
	assert.Equal(t, 15.0, v)

	v, ok = fv.Value(ColN5)
	require.True(t, ok)
	assert.Equal(t, 5.0, v)

	_, ok = fv.Value(ColMainSumBin)
	assert.False(t, ok, "bins are unavailable before binning")

	_, ok = fv.Value(ColAvgWin)
	assert.False(t, ok, "avg_win is unavailable before scoring")

	_, ok = fv.Value(ColDrawDay)
	assert.False(t, ok)

	_, ok = fv.Value("no_such_column")
	assert.False(t, ok)
}
