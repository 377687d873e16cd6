package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/euromillions/internal/models"
	"github.com/yourusername/euromillions/internal/scoring"
	"github.com/yourusername/euromillions/internal/service"
)

func resetFlags(t *testing.T, mainText, luckyText string) {
	t.Helper()
	mainNumbers, luckyNumbers, drawYear = mainText, luckyText, 2024
	t.Cleanup(func() { mainNumbers, luckyNumbers = "", "" })
}

func TestReadTicketFromFlags(t *testing.T) {
	resetFlags(t, "45 30 12 1 7", "11,2")

	ticket, err := readTicket(strings.NewReader(""), &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 7, 12, 30, 45}, ticket.Main)
	assert.Equal(t, []int{2, 11}, ticket.Lucky)
	assert.Equal(t, 2024, ticket.DrawYear)
}

func TestReadTicketPrompts(t *testing.T) {
	resetFlags(t, "", "")

	var out bytes.Buffer
	ticket, err := readTicket(strings.NewReader("5 4 3 2 1\n12 1\n"), &out)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3, 4, 5}, ticket.Main)
	assert.Contains(t, out.String(), "main numbers")
	assert.Contains(t, out.String(), "lucky stars")
}

func TestReadTicketRejectsInvalidNumbers(t *testing.T) {
	tests := []struct {
		name  string
		main  string
		lucky string
	}{
		{"duplicate", "1 1 2 3 4", "1 2"},
		{"out of range", "1 2 3 4 51", "1 2"},
		{"lucky out of range", "1 2 3 4 5", "1 13"},
		{"not a number", "1 2 three 4 5", "1 2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetFlags(t, tt.main, tt.lucky)
			_, err := readTicket(strings.NewReader(""), &bytes.Buffer{})
			assert.ErrorIs(t, err, models.ErrInvalidInput)
		})
	}
}

func TestReadTicketMissingInput(t *testing.T) {
	resetFlags(t, "", "")
	_, err := readTicket(strings.NewReader(""), &bytes.Buffer{})
	assert.Error(t, err)
}

func TestPrintEvaluation(t *testing.T) {
	ticket, err := models.NewTicket(2024, []int{1, 7, 17, 27, 37}, []int{7, 12})
	require.NoError(t, err)

	var out bytes.Buffer
	printEvaluation(&out, &models.Evaluation{
		ID:             uuid.New(),
		Ticket:         ticket,
		Verdict:        models.VerdictGood,
		Confidence:     0.75,
		Probabilities:  map[string]float64{"1": 0.75, "0": 0.25},
		ModelVersion:   "26.06.2023",
		PopulationSize: 1650,
	})

	assert.Contains(t, out.String(), "Verdict: GOOD (75.0% confident)")
	assert.Contains(t, out.String(), "0=0.250, 1=0.750")
	assert.Contains(t, out.String(), "against 1650 draws")
}

func TestPrintScoreReport(t *testing.T) {
	var out bytes.Buffer
	printScoreReport(&out, &service.ScoreReport{
		Population: 3,
		Scored:     []scoring.ScoredRecord{{AvgWin: 0.5}, {AvgWin: 1.5}},
		Skipped:    []scoring.RecordError{{Index: 1, Err: models.ErrMissingData}},
	})

	assert.Contains(t, out.String(), "3 draws, 2 scored, 1 skipped")
	assert.Contains(t, out.String(), "min=0.500")
	assert.Contains(t, out.String(), "record 1: no sales or winners data")
}
