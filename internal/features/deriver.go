// Package features derives the hand-crafted ticket features and the
// population-relative bins fed to the ticket classifier.
package features

import (
	"github.com/yourusername/euromillions/internal/models"
)

// numerologyNumbers are the numbers popularly believed to be lucky
var numerologyNumbers = newNumberSet(1, 3, 7, 9, 13, 15, 21, 25, 31, 33, 37, 43, 49)

// sevensPattern are the numbers ending in 7
var sevensPattern = newNumberSet(7, 17, 27, 37, 47)

// ticketRowEdges partition the play slip into its printed rows, right-closed
var ticketRowEdges = []int{0, 8, 16, 24, 32, 40, 48, 50}

const (
	centuryYear    = 2000
	centuryMarker  = 20
	maxMonthNumber = 12
	maxDayNumber   = 31
)

type numberSet map[int]struct{}

func newNumberSet(nums ...int) numberSet {
	s := make(numberSet, len(nums))
	for _, n := range nums {
		s[n] = struct{}{}
	}
	return s
}

func (s numberSet) count(nums []int) int {
	total := 0
	for _, n := range nums {
		if _, ok := s[n]; ok {
			total++
		}
	}
	return total
}

// FeatureVector is a ticket plus its engineered features. Population-relative
// fields (means, bins, AvgWin) only mean something within the population
// they were computed over.
type FeatureVector struct {
	Ticket models.Ticket

	IsDate        bool
	IsThisYear    bool
	IsPost2000    bool
	HasLucky      bool
	HasLuckyLucky bool

	LuckyNumbersCount      int
	LuckyLuckyNumbersCount int
	SevensPatternCount     int
	DistinctTicketRows     int

	MainSum     int
	LuckySum    int
	CombinedSum int

	MainSumAboveMean  bool
	LuckySumAboveMean bool

	MainSumBin     int
	LuckySumBin    int
	CombinedSumBin int

	AvgWin *float64

	binned bool
}

// Binned reports whether population features have been assigned
func (fv FeatureVector) Binned() bool {
	return fv.binned
}

// Derive computes every per-record feature of a ticket. The ticket is copied.
func Derive(t models.Ticket) FeatureVector {
	main := t.Main
	luckyCount := LuckyNumbersCount(main)
	luckyLuckyCount := LuckyNumbersCount(t.Lucky)
	mainSum := Sum(main)
	luckySum := Sum(t.Lucky)

	return FeatureVector{
		Ticket:                 t.Clone(),
		IsDate:                 IsDate(main),
		IsThisYear:             IsThisYear(main, t.DrawYear),
		IsPost2000:             IsPost2000(main, t.DrawYear),
		LuckyNumbersCount:      luckyCount,
		LuckyLuckyNumbersCount: luckyLuckyCount,
		HasLucky:               luckyCount > 0,
		HasLuckyLucky:          luckyLuckyCount > 0,
		SevensPatternCount:     SevensPatternCount(main),
		DistinctTicketRows:     DistinctTicketRows(main),
		MainSum:                mainSum,
		LuckySum:               luckySum,
		CombinedSum:            mainSum + luckySum,
	}
}

// DeriveAll derives features for every ticket in order
func DeriveAll(tickets []models.Ticket) []FeatureVector {
	out := make([]FeatureVector, len(tickets))
	for i, t := range tickets {
		out[i] = Derive(t)
	}
	return out
}

// IsDate reports whether the main numbers, read in ticket order, contain a
// month candidate (<=12) followed later by a day candidate (<=31).
func IsDate(main []int) bool {
	month, day := false, false
	for _, n := range main {
		if !month {
			if n <= maxMonthNumber {
				month = true
			}
		} else if !day {
			if n <= maxDayNumber {
				day = true
			}
		} else {
			break
		}
	}
	return month && day
}

// IsThisYear reports whether the main numbers spell the draw year as 20 and
// year-2000 on two separate numbers.
func IsThisYear(main []int, year int) bool {
	yy := year - centuryYear
	century, short := false, false
	for _, n := range main {
		if n == centuryMarker {
			century = true
		} else if n == yy {
			short = true
		}
	}
	return century && short
}

// IsPost2000 is IsThisYear with any two-digit year up to the draw year.
func IsPost2000(main []int, year int) bool {
	yy := year - centuryYear
	century, short := false, false
	for _, n := range main {
		if n == centuryMarker {
			century = true
		} else if n <= yy {
			short = true
		}
	}
	return century && short
}

// LuckyNumbersCount counts numbers in the numerology set
func LuckyNumbersCount(nums []int) int {
	return numerologyNumbers.count(nums)
}

// SevensPatternCount counts numbers in {7,17,27,37,47}
func SevensPatternCount(nums []int) int {
	return sevensPattern.count(nums)
}

// DistinctTicketRows counts the play-slip rows a player has to mark
func DistinctTicketRows(main []int) int {
	rows := make(map[int]struct{}, len(main))
	for _, n := range main {
		for i := 1; i < len(ticketRowEdges); i++ {
			if n > ticketRowEdges[i-1] && n <= ticketRowEdges[i] {
				rows[i-1] = struct{}{}
				break
			}
		}
	}
	return len(rows)
}

// Sum adds the numbers
func Sum(nums []int) int {
	total := 0
	for _, n := range nums {
		total += n
	}
	return total
}
