package service

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/euromillions/internal/models"
)

// FirstDrawDate is the date of the first EuroMillions draw
var FirstDrawDate = time.Date(2004, time.February, 13, 0, 0, 0, 0, time.UTC)

// DrawValidator checks ingested draws beyond the ticket rules: the draw
// date must be plausible and a batch must not repeat a draw.
type DrawValidator struct {
	logger *logrus.Entry
	now    func() time.Time
}

// NewDrawValidator creates a new draw validator
func NewDrawValidator(logger *logrus.Logger) *DrawValidator {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &DrawValidator{logger: logger.WithField("component", "draw_validator"), now: time.Now}
}

// ValidateDraw returns every problem found with one draw
func (v *DrawValidator) ValidateDraw(draw models.Ticket) []string {
	var problems []string

	if err := draw.Validate(); err != nil {
		problems = append(problems, err.Error())
	}

	date, dated := draw.DrawDate()
	if dated {
		if date.Day() != *draw.DrawDay {
			problems = append(problems, fmt.Sprintf("draw_day %d does not exist in %s %d", *draw.DrawDay, *draw.DrawMonth, draw.DrawYear))
		}
		if date.Before(FirstDrawDate) {
			problems = append(problems, fmt.Sprintf("draw date %s precedes the first draw", date.Format("2006-01-02")))
		}
		if date.After(v.now().UTC()) {
			problems = append(problems, fmt.Sprintf("draw date %s is in the future", date.Format("2006-01-02")))
		}
		if wd := date.Weekday(); wd != time.Tuesday && wd != time.Friday {
			problems = append(problems, fmt.Sprintf("draws are held on Tuesday or Friday, got %s", wd))
		}
	} else if draw.DrawYear < FirstDrawDate.Year() {
		problems = append(problems, fmt.Sprintf("draw_year %d precedes the first draw", draw.DrawYear))
	}

	return problems
}

// drawKey identifies a draw by date and numbers
func drawKey(draw models.Ticket) string {
	month, day := "", 0
	if draw.DrawMonth != nil {
		month = string(*draw.DrawMonth)
	}
	if draw.DrawDay != nil {
		day = *draw.DrawDay
	}
	return fmt.Sprintf("%d-%s-%d|%v|%v", draw.DrawYear, month, day, draw.Main, draw.Lucky)
}

// Filter splits draws into valid ones and per-index problems. Later
// duplicates of a draw already accepted in the batch are rejected.
func (v *DrawValidator) Filter(draws []models.Ticket) ([]models.Ticket, map[int][]string) {
	valid := make([]models.Ticket, 0, len(draws))
	rejected := make(map[int][]string)
	seen := make(map[string]int, len(draws))

	for i, draw := range draws {
		problems := v.ValidateDraw(draw)
		if len(problems) == 0 {
			key := drawKey(draw)
			if first, ok := seen[key]; ok {
				problems = append(problems, fmt.Sprintf("duplicate of draw %d in the same batch", first))
			} else {
				seen[key] = i
			}
		}

		if len(problems) > 0 {
			rejected[i] = problems
			v.logger.WithFields(logrus.Fields{"index": i, "problems": problems}).Debug("Draw failed validation")
			continue
		}
		valid = append(valid, draw)
	}

	return valid, rejected
}
