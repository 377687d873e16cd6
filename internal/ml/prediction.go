package ml

import (
	"context"
	"fmt"
	"math"

	"github.com/yourusername/euromillions/internal/models"
)

// probabilityTolerance bounds how far class probabilities may sum from 1
const probabilityTolerance = 1e-6

// Classifier is the predict-probability oracle. Values are ordered like
// columns, which must match the names the model was trained on.
type Classifier interface {
	PredictProbability(ctx context.Context, columns []string, values []float64) (*Prediction, error)
	HealthCheck(ctx context.Context) error
}

// Prediction is the class probability distribution for one feature row.
// Probabilities[i] belongs to Classes[i]; class order is the model's.
type Prediction struct {
	Classes       []string  `json:"classes"`
	Probabilities []float64 `json:"probabilities"`
	ModelVersion  string    `json:"model_version"`
}

// ByClass maps class label to probability
func (p *Prediction) ByClass() map[string]float64 {
	out := make(map[string]float64, len(p.Classes))
	for i, c := range p.Classes {
		out[c] = p.Probabilities[i]
	}
	return out
}

// Validate checks the distribution is well formed
func (p *Prediction) Validate() error {
	if len(p.Probabilities) == 0 {
		return fmt.Errorf("%w: no classes", ErrInvalidPrediction)
	}
	if len(p.Classes) != len(p.Probabilities) {
		return fmt.Errorf("%w: %d classes for %d probabilities", ErrInvalidPrediction, len(p.Classes), len(p.Probabilities))
	}

	total := 0.0
	for i, prob := range p.Probabilities {
		if math.IsNaN(prob) || prob < 0 || prob > 1 {
			return fmt.Errorf("%w: probability %v for class %s", ErrInvalidPrediction, prob, p.Classes[i])
		}
		total += prob
	}
	if math.Abs(total-1) > probabilityTolerance {
		return fmt.Errorf("%w: probabilities sum to %v", ErrInvalidPrediction, total)
	}
	return nil
}

func (p *Prediction) clone() *Prediction {
	return &Prediction{
		Classes:       append([]string(nil), p.Classes...),
		Probabilities: append([]float64(nil), p.Probabilities...),
		ModelVersion:  p.ModelVersion,
	}
}

// BestLabel returns the index of the most probable class. Ties go to the
// lowest index.
func BestLabel(probabilities []float64) (int, error) {
	if len(probabilities) == 0 {
		return 0, fmt.Errorf("%w: no classes", ErrInvalidPrediction)
	}
	best := 0
	for i, p := range probabilities[1:] {
		if p > probabilities[best] {
			best = i + 1
		}
	}
	return best, nil
}

// Verdict turns a prediction into BAD (first class) or GOOD (any other
// class) with the winning probability as confidence.
func Verdict(p *Prediction) (string, float64, error) {
	if err := p.Validate(); err != nil {
		return "", 0, err
	}
	idx, err := BestLabel(p.Probabilities)
	if err != nil {
		return "", 0, err
	}
	if idx == 0 {
		return models.VerdictBad, p.Probabilities[idx], nil
	}
	return models.VerdictGood, p.Probabilities[idx], nil
}
