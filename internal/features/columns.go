package features

// Column names shared with the classifier
const (
	ColN1        = "n1"
	ColN2        = "n2"
	ColN3        = "n3"
	ColN4        = "n4"
	ColN5        = "n5"
	ColL1        = "l1"
	ColL2        = "l2"
	ColDrawYear  = "draw_year"
	ColDrawMonth = "draw_month"
	ColDrawDay   = "draw_day"
	ColWinners   = "winners"

	ColIsDate                 = "is_date"
	ColIsPost2000             = "is_post_2000"
	ColIsThisYear             = "is_this_year"
	ColLuckyNumbersCount      = "lucky_numbers_count"
	ColLuckyLuckyNumbersCount = "lucky_lucky_numbers_count"
	ColHasLucky               = "has_lucky"
	ColHasLuckyLucky          = "has_lucky_lucky"
	ColSevensPatternCount     = "sevens_pattern_count"
	ColDistinctTicketRows     = "distinct_ticket_rows"
	ColMainSum                = "main_sum"
	ColLuckySum               = "lucky_sum"
	ColMainSumAboveMean       = "main_sum_above_mean"
	ColLuckySumAboveMean      = "lucky_sum_above_mean"
	ColMainSumBin             = "main_sum_bin"
	ColLuckySumBin            = "lucky_sum_bin"
	ColCombinedSum            = "combined_sum"
	ColCombinedSumBin         = "combined_sum_bin"
	ColAvgWin                 = "avg_win"
)

// DefaultDropColumns are removed by the unwanted-column step unless configured otherwise
var DefaultDropColumns = []string{ColDrawDay, ColDrawMonth, ColDrawYear, ColWinners}

type column struct {
	name  string
	value func(fv *FeatureVector) (float64, bool)
}

// columns maps each column name to its accessor, in table order
var columns = []column{
	{ColDrawDay, func(fv *FeatureVector) (float64, bool) {
		if fv.Ticket.DrawDay == nil {
			return 0, false
		}
		return float64(*fv.Ticket.DrawDay), true
	}},
	{ColDrawMonth, func(fv *FeatureVector) (float64, bool) {
		if fv.Ticket.DrawMonth == nil {
			return 0, false
		}
		return float64(fv.Ticket.DrawMonth.Number()), true
	}},
	{ColDrawYear, func(fv *FeatureVector) (float64, bool) { return float64(fv.Ticket.DrawYear), true }},
	{ColN1, mainAt(0)},
	{ColN2, mainAt(1)},
	{ColN3, mainAt(2)},
	{ColN4, mainAt(3)},
	{ColN5, mainAt(4)},
	{ColL1, luckyAt(0)},
	{ColL2, luckyAt(1)},
	{ColIsDate, func(fv *FeatureVector) (float64, bool) { return boolValue(fv.IsDate), true }},
	{ColIsPost2000, func(fv *FeatureVector) (float64, bool) { return boolValue(fv.IsPost2000), true }},
	{ColIsThisYear, func(fv *FeatureVector) (float64, bool) { return boolValue(fv.IsThisYear), true }},
	{ColLuckyNumbersCount, func(fv *FeatureVector) (float64, bool) { return float64(fv.LuckyNumbersCount), true }},
	{ColLuckyLuckyNumbersCount, func(fv *FeatureVector) (float64, bool) { return float64(fv.LuckyLuckyNumbersCount), true }},
	{ColHasLucky, func(fv *FeatureVector) (float64, bool) { return boolValue(fv.HasLucky), true }},
	{ColHasLuckyLucky, func(fv *FeatureVector) (float64, bool) { return boolValue(fv.HasLuckyLucky), true }},
	{ColSevensPatternCount, func(fv *FeatureVector) (float64, bool) { return float64(fv.SevensPatternCount), true }},
	{ColDistinctTicketRows, func(fv *FeatureVector) (float64, bool) { return float64(fv.DistinctTicketRows), true }},
	{ColMainSum, func(fv *FeatureVector) (float64, bool) { return float64(fv.MainSum), true }},
	{ColLuckySum, func(fv *FeatureVector) (float64, bool) { return float64(fv.LuckySum), true }},
	{ColMainSumAboveMean, populationOnly(func(fv *FeatureVector) float64 { return boolValue(fv.MainSumAboveMean) })},
	{ColLuckySumAboveMean, populationOnly(func(fv *FeatureVector) float64 { return boolValue(fv.LuckySumAboveMean) })},
	{ColMainSumBin, populationOnly(func(fv *FeatureVector) float64 { return float64(fv.MainSumBin) })},
	{ColLuckySumBin, populationOnly(func(fv *FeatureVector) float64 { return float64(fv.LuckySumBin) })},
	{ColCombinedSum, func(fv *FeatureVector) (float64, bool) { return float64(fv.CombinedSum), true }},
	{ColCombinedSumBin, populationOnly(func(fv *FeatureVector) float64 { return float64(fv.CombinedSumBin) })},
	{ColAvgWin, func(fv *FeatureVector) (float64, bool) {
		if fv.AvgWin == nil {
			return 0, false
		}
		return *fv.AvgWin, true
	}},
}

var columnIndex = func() map[string]column {
	idx := make(map[string]column, len(columns))
	for _, c := range columns {
		idx[c.name] = c
	}
	return idx
}()

// Columns lists the column names in table order. The ticket-rows column is
// optional because not every trained model uses it.
func Columns(includeTicketRows bool) []string {
	names := make([]string, 0, len(columns))
	for _, c := range columns {
		if c.name == ColDistinctTicketRows && !includeTicketRows {
			continue
		}
		names = append(names, c.name)
	}
	return names
}

// Value returns a named column. The second result is false for unknown
// columns and for columns not available on this vector (e.g. bins before
// binning, avg_win before scoring).
func (fv *FeatureVector) Value(name string) (float64, bool) {
	c, ok := columnIndex[name]
	if !ok {
		return 0, false
	}
	return c.value(fv)
}

func mainAt(i int) func(fv *FeatureVector) (float64, bool) {
	return func(fv *FeatureVector) (float64, bool) {
		return numberAt(fv.Ticket.Main, i)
	}
}

func luckyAt(i int) func(fv *FeatureVector) (float64, bool) {
	return func(fv *FeatureVector) (float64, bool) {
		return numberAt(fv.Ticket.Lucky, i)
	}
}

func numberAt(nums []int, i int) (float64, bool) {
	if i >= len(nums) {
		return 0, false
	}
	return float64(nums[i]), true
}

func populationOnly(fn func(fv *FeatureVector) float64) func(fv *FeatureVector) (float64, bool) {
	return func(fv *FeatureVector) (float64, bool) {
		if !fv.binned {
			return 0, false
		}
		return fn(fv), true
	}
}

func boolValue(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
