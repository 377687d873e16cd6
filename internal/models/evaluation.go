package models

import (
	"time"

	"github.com/google/uuid"
)

// Verdict labels
const (
	VerdictGood = "GOOD"
	VerdictBad  = "BAD"
)

// Evaluation is the stored outcome of running one ticket through the classifier
type Evaluation struct {
	ID            uuid.UUID          `db:"id" json:"id"`
	Ticket        Ticket             `db:"-" json:"ticket"`
	Verdict       string             `db:"verdict" json:"verdict" validate:"required,oneof=GOOD BAD"`
	Confidence    float64            `db:"confidence" json:"confidence" validate:"gte=0,lte=1"`
	Probabilities map[string]float64 `db:"probabilities" json:"probabilities"`
	Features      map[string]float64 `db:"features" json:"features"`
	ModelVersion  string             `db:"model_version" json:"model_version"`
	// PopulationSize is the number of historical draws the ticket was binned against
	PopulationSize int       `db:"population_size" json:"population_size"`
	EvaluatedAt    time.Time `db:"evaluated_at" json:"evaluated_at"`
}

// IsGood reports whether the classifier recommended the ticket
func (e *Evaluation) IsGood() bool {
	return e.Verdict == VerdictGood
}
