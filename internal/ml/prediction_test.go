package ml

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/euromillions/internal/models"
)

func TestBestLabel(t *testing.T) {
	tests := []struct {
		name     string
		probs    []float64
		expected int
	}{
		{"first wins", []float64{0.8, 0.2}, 0},
		{"second wins", []float64{0.3, 0.7}, 1},
		{"tie goes to first", []float64{0.5, 0.5}, 0},
		{"three classes", []float64{0.2, 0.3, 0.5}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := BestLabel(tt.probs)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}

	_, err := BestLabel(nil)
	assert.ErrorIs(t, err, ErrInvalidPrediction)
}

func TestVerdict(t *testing.T) {
	verdict, confidence, err := Verdict(&Prediction{Classes: []string{"0", "1"}, Probabilities: []float64{0.64, 0.36}})
	require.NoError(t, err)
	assert.Equal(t, models.VerdictBad, verdict)
	assert.Equal(t, 0.64, confidence)

	verdict, confidence, err = Verdict(&Prediction{Classes: []string{"0", "1"}, Probabilities: []float64{0.29, 0.71}})
	require.NoError(t, err)
	assert.Equal(t, models.VerdictGood, verdict)
	assert.Equal(t, 0.71, confidence)
}

func TestPredictionValidate(t *testing.T) {
	tests := []struct {
		name string
		p    Prediction
	}{
		{"empty", Prediction{}},
		{"class count mismatch", Prediction{Classes: []string{"0"}, Probabilities: []float64{0.5, 0.5}}},
		{"negative", Prediction{Classes: []string{"0", "1"}, Probabilities: []float64{-0.1, 1.1}}},
		{"does not sum to one", Prediction{Classes: []string{"0", "1"}, Probabilities: []float64{0.5, 0.4}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.p.Validate(), ErrInvalidPrediction)
		})
	}

	ok := Prediction{Classes: []string{"0", "1"}, Probabilities: []float64{0.3, 0.7}}
	assert.NoError(t, ok.Validate())
	assert.Equal(t, map[string]float64{"0": 0.3, "1": 0.7}, ok.ByClass())
}
