package features

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// Bin counts observed in deployed models
const (
	DefaultBins     = 6
	FineMainSumBins = 10
)

// edgeAdjust widens the range so the minimum falls inside the first interval
const edgeAdjust = 0.001

var (
	// ErrEmptyPopulation indicates binning or scoring over no records
	ErrEmptyPopulation = errors.New("empty population")

	// ErrInvalidBinCount indicates a non-positive bin count
	ErrInvalidBinCount = errors.New("bin count must be positive")
)

// Edges are the k+1 boundaries of k right-closed intervals (e[i], e[i+1]]
type Edges []float64

// Locate returns the interval holding v, or -1 when v is outside all intervals
func (e Edges) Locate(v float64) int {
	if len(e) < 2 || math.IsNaN(v) || v <= e[0] || v > e[len(e)-1] {
		return -1
	}
	return sort.SearchFloat64s(e[1:], v)
}

// Bins returns the number of intervals
func (e Edges) Bins() int {
	if len(e) < 2 {
		return 0
	}
	return len(e) - 1
}

// BinResult is one binning pass over a population
type BinResult struct {
	Edges Edges
	// Raw is the interval index of each value
	Raw []int
	// Labels ranks the occupied intervals by lower edge, densely from 0
	Labels []int
	// Mapping maps raw interval index to label
	Mapping map[int]int
}

// EqualWidthEdges computes k equal-width intervals spanning [min,max] of
// values. The lower edge is pushed down by 0.1% of the range; a constant
// population is widened by 0.1% of its value on both sides.
func EqualWidthEdges(values []float64, bins int) (Edges, error) {
	if bins <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidBinCount, bins)
	}
	if len(values) == 0 {
		return nil, ErrEmptyPopulation
	}

	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}

	if lo == hi {
		lo -= widen(lo)
		hi += widen(hi)
		return linspace(lo, hi, bins), nil
	}

	edges := linspace(lo, hi, bins)
	edges[0] -= (hi - lo) * edgeAdjust
	return edges, nil
}

func widen(v float64) float64 {
	if v == 0 {
		return edgeAdjust
	}
	return edgeAdjust * math.Abs(v)
}

func linspace(lo, hi float64, bins int) Edges {
	edges := make(Edges, bins+1)
	step := (hi - lo) / float64(bins)
	for i := range edges {
		edges[i] = lo + float64(i)*step
	}
	edges[bins] = hi
	return edges
}

// Cut bins values into k equal-width intervals over their own range and
// label-encodes the occupied intervals.
func Cut(values []float64, bins int) (BinResult, error) {
	edges, err := EqualWidthEdges(values, bins)
	if err != nil {
		return BinResult{}, err
	}

	raw := make([]int, len(values))
	for i, v := range values {
		idx := edges.Locate(v)
		if idx < 0 {
			// only reachable through float rounding at the extremes
			idx = clamp(v, edges)
		}
		raw[i] = idx
	}

	mapping := denseRanks(raw)
	labels := make([]int, len(raw))
	for i, r := range raw {
		labels[i] = mapping[r]
	}

	return BinResult{Edges: edges, Raw: raw, Labels: labels, Mapping: mapping}, nil
}

// CutAppended appends one value to a reference population, recomputes the
// edges over population+1 and returns the new value's label. The population
// slice is not modified.
func CutAppended(population []float64, value float64, bins int) (int, BinResult, error) {
	all := make([]float64, 0, len(population)+1)
	all = append(all, population...)
	all = append(all, value)

	result, err := Cut(all, bins)
	if err != nil {
		return 0, BinResult{}, err
	}
	return result.Labels[len(all)-1], result, nil
}

func clamp(v float64, edges Edges) int {
	if v <= edges[0] {
		return 0
	}
	return edges.Bins() - 1
}

func denseRanks(raw []int) map[int]int {
	seen := make(map[int]struct{}, len(raw))
	occupied := make([]int, 0, len(raw))
	for _, r := range raw {
		if _, ok := seen[r]; ok {
			continue
		}
		seen[r] = struct{}{}
		occupied = append(occupied, r)
	}
	sort.Ints(occupied)

	mapping := make(map[int]int, len(occupied))
	for rank, r := range occupied {
		mapping[r] = rank
	}
	return mapping
}

// BinConfig holds the interval count per binned feature
type BinConfig struct {
	MainSumBins     int
	LuckySumBins    int
	CombinedSumBins int
}

// DefaultBinConfig uses six intervals for every feature
func DefaultBinConfig() BinConfig {
	return BinConfig{
		MainSumBins:     DefaultBins,
		LuckySumBins:    DefaultBins,
		CombinedSumBins: DefaultBins,
	}
}

// Validate checks every bin count is positive
func (c BinConfig) Validate() error {
	for name, bins := range map[string]int{
		ColMainSumBin:     c.MainSumBins,
		ColLuckySumBin:    c.LuckySumBins,
		ColCombinedSumBin: c.CombinedSumBins,
	} {
		if bins <= 0 {
			return fmt.Errorf("%w: %s=%d", ErrInvalidBinCount, name, bins)
		}
	}
	return nil
}

type sums struct {
	main, lucky, combined []float64
}

func collectSums(population []FeatureVector) sums {
	s := sums{
		main:     make([]float64, len(population)),
		lucky:    make([]float64, len(population)),
		combined: make([]float64, len(population)),
	}
	for i, fv := range population {
		s.main[i] = float64(fv.MainSum)
		s.lucky[i] = float64(fv.LuckySum)
		s.combined[i] = float64(fv.CombinedSum)
	}
	return s
}

// BinPopulation assigns the population-relative features (above-mean flags
// and bin labels) to every vector. The input slice is left untouched; a new
// slice is returned.
func BinPopulation(population []FeatureVector, cfg BinConfig) ([]FeatureVector, error) {
	if len(population) == 0 {
		return nil, ErrEmptyPopulation
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := collectSums(population)

	mainBins, err := Cut(s.main, cfg.MainSumBins)
	if err != nil {
		return nil, fmt.Errorf("binning %s: %w", ColMainSum, err)
	}
	luckyBins, err := Cut(s.lucky, cfg.LuckySumBins)
	if err != nil {
		return nil, fmt.Errorf("binning %s: %w", ColLuckySum, err)
	}
	combinedBins, err := Cut(s.combined, cfg.CombinedSumBins)
	if err != nil {
		return nil, fmt.Errorf("binning %s: %w", ColCombinedSum, err)
	}

	mainMean := mean(s.main)
	luckyMean := mean(s.lucky)

	out := make([]FeatureVector, len(population))
	for i, fv := range population {
		fv.MainSumAboveMean = s.main[i] > mainMean
		fv.LuckySumAboveMean = s.lucky[i] > luckyMean
		fv.MainSumBin = mainBins.Labels[i]
		fv.LuckySumBin = luckyBins.Labels[i]
		fv.CombinedSumBin = combinedBins.Labels[i]
		fv.binned = true
		out[i] = fv
	}
	return out, nil
}

// BinAppended assigns the population-relative features to one vector
// appended to a reference population. Edges and means are taken over
// population+1, so the result equals the last vector of BinPopulation over
// the appended slice. The reference population may be empty.
func BinAppended(population []FeatureVector, fv FeatureVector, cfg BinConfig) (FeatureVector, error) {
	if err := cfg.Validate(); err != nil {
		return FeatureVector{}, err
	}

	s := collectSums(population)
	mainSum, luckySum := float64(fv.MainSum), float64(fv.LuckySum)

	mainLabel, _, err := CutAppended(s.main, mainSum, cfg.MainSumBins)
	if err != nil {
		return FeatureVector{}, fmt.Errorf("binning %s: %w", ColMainSum, err)
	}
	luckyLabel, _, err := CutAppended(s.lucky, luckySum, cfg.LuckySumBins)
	if err != nil {
		return FeatureVector{}, fmt.Errorf("binning %s: %w", ColLuckySum, err)
	}
	combinedLabel, _, err := CutAppended(s.combined, float64(fv.CombinedSum), cfg.CombinedSumBins)
	if err != nil {
		return FeatureVector{}, fmt.Errorf("binning %s: %w", ColCombinedSum, err)
	}

	fv.MainSumAboveMean = mainSum > meanWith(s.main, mainSum)
	fv.LuckySumAboveMean = luckySum > meanWith(s.lucky, luckySum)
	fv.MainSumBin = mainLabel
	fv.LuckySumBin = luckyLabel
	fv.CombinedSumBin = combinedLabel
	fv.binned = true
	return fv, nil
}

func mean(values []float64) float64 {
	total := 0.0
	for _, v := range values {
		total += v
	}
	return total / float64(len(values))
}

// meanWith is mean(append(values, v)) without copying values
func meanWith(values []float64, v float64) float64 {
	total := 0.0
	for _, x := range values {
		total += x
	}
	return (total + v) / float64(len(values)+1)
}
