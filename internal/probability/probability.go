// Package probability computes exact EuroMillions win probabilities from the
// hypergeometric draw structure: 5 main numbers drawn from 50 and 2 lucky
// numbers drawn from a pool of 11 or 12.
package probability

import (
	"errors"
	"fmt"
	"time"

	"github.com/yourusername/euromillions/internal/models"
)

// Draw structure
const (
	MainPool       = models.MainMax
	MainDrawn      = models.MainCount
	LuckyDrawn     = models.LuckyCount
	SmallLuckyPool = 11
	LargeLuckyPool = 12
)

// LargePoolFrom is the first draw date played with 12 lucky numbers
var LargePoolFrom = time.Date(2016, time.September, 24, 0, 0, 0, 0, time.UTC)

// ErrInvalidArgument indicates an argument outside its declared range
var ErrInvalidArgument = errors.New("invalid argument")

// Binomial returns C(n, k). Negative arguments are rejected; k > n yields 0.
func Binomial(n, k int) (int64, error) {
	if n < 0 || k < 0 {
		return 0, fmt.Errorf("%w: C(%d, %d)", ErrInvalidArgument, n, k)
	}
	if k > n {
		return 0, nil
	}
	if k > n-k {
		k = n - k
	}
	result := int64(1)
	for i := 1; i <= k; i++ {
		// exact at every step: the running product is C(n-k+i, i)
		result = result * int64(n-k+i) / int64(i)
	}
	return result, nil
}

// WinProbability returns the probability of matching exactly nCorrect of the
// drawn main numbers and exactly lCorrect of the drawn lucky numbers.
//
// Arguments outside n∈[0,5], l∈[0,2], pool∈{11,12} fail with ErrInvalidArgument
// rather than returning 0, so caller bugs surface early.
func WinProbability(nCorrect, lCorrect, luckyPool int) (float64, error) {
	if nCorrect < 0 || nCorrect > MainDrawn {
		return 0, fmt.Errorf("%w: n_correct=%d not in [0,%d]", ErrInvalidArgument, nCorrect, MainDrawn)
	}
	if lCorrect < 0 || lCorrect > LuckyDrawn {
		return 0, fmt.Errorf("%w: l_correct=%d not in [0,%d]", ErrInvalidArgument, lCorrect, LuckyDrawn)
	}
	if luckyPool != SmallLuckyPool && luckyPool != LargeLuckyPool {
		return 0, fmt.Errorf("%w: lucky_pool_size=%d not in {%d,%d}", ErrInvalidArgument, luckyPool, SmallLuckyPool, LargeLuckyPool)
	}

	mainHit, err := Binomial(MainDrawn, nCorrect)
	if err != nil {
		return 0, err
	}
	mainMiss, err := Binomial(MainPool-MainDrawn, MainDrawn-nCorrect)
	if err != nil {
		return 0, err
	}
	luckyHit, err := Binomial(LuckyDrawn, lCorrect)
	if err != nil {
		return 0, err
	}
	luckyMiss, err := Binomial(luckyPool-LuckyDrawn, LuckyDrawn-lCorrect)
	if err != nil {
		return 0, err
	}
	mainTotal, err := Binomial(MainPool, MainDrawn)
	if err != nil {
		return 0, err
	}
	luckyTotal, err := Binomial(luckyPool, LuckyDrawn)
	if err != nil {
		return 0, err
	}

	favourable := float64(mainHit*mainMiss) * float64(luckyHit*luckyMiss)
	total := float64(mainTotal) * float64(luckyTotal)
	return favourable / total, nil
}

// LuckyPoolSize returns the lucky-number pool in play on a draw date:
// 12 from 2016-09-24 inclusive, 11 before.
func LuckyPoolSize(drawDate time.Time) int {
	d := time.Date(drawDate.Year(), drawDate.Month(), drawDate.Day(), 0, 0, 0, 0, time.UTC)
	if d.Before(LargePoolFrom) {
		return SmallLuckyPool
	}
	return LargeLuckyPool
}

// LuckyPoolSizeFor resolves the pool for a ticket. Records without a full
// date are placed on 1 January of their draw year.
func LuckyPoolSizeFor(t models.Ticket) int {
	if date, ok := t.DrawDate(); ok {
		return LuckyPoolSize(date)
	}
	return LuckyPoolSize(time.Date(t.DrawYear, time.January, 1, 0, 0, 0, 0, time.UTC))
}
