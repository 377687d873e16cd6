package datasource

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/yourusername/euromillions/internal/models"
)

// Draw dataset column headers
const (
	HeaderWeekday = "Day"
	HeaderDay     = "DD"
	HeaderMonth   = "MMM"
	HeaderYear    = "YYYY"
	HeaderSales   = "Sales"
)

var (
	mainHeaders  = []string{"N1", "N2", "N3", "N4", "N5"}
	luckyHeaders = []string{"L1", "L2"}
)

// DrawCSVParser reads the historical draw dataset:
// Day,DD,MMM,YYYY,N1..N5,L1,L2,Sales followed by one winners column per
// prize category ("5+2", "4+1", "3" ...). Unknown columns are ignored.
type DrawCSVParser struct {
	source string
}

// NewDrawCSVParser creates a parser whose rejections are attributed to source
func NewDrawCSVParser(source string) *DrawCSVParser {
	return &DrawCSVParser{source: source}
}

type columnLayout struct {
	day     int
	month   int
	year    int
	sales   int
	main    []int
	lucky   []int
	winners map[int]string
}

// Parse reads every row from r. A malformed header is fatal; malformed rows
// are collected in FetchResult.Rejected and parsing continues.
func (p *DrawCSVParser) Parse(r io.Reader) (*FetchResult, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, NewDataSourceError(p.source, ErrCodeInvalidData, "empty dataset", ErrInvalidData)
		}
		return nil, NewDataSourceError(p.source, ErrCodeInvalidData, "failed to read header", err)
	}

	layout, err := buildLayout(header)
	if err != nil {
		return nil, NewDataSourceError(p.source, ErrCodeInvalidData, err.Error(), ErrInvalidData)
	}

	result := &FetchResult{Source: p.source}
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				result.Rejected = append(result.Rejected, RejectedRow{Line: perr.Line, Err: err})
				continue
			}
			return nil, NewDataSourceError(p.source, ErrCodeInvalidData, "failed to read dataset", err)
		}

		line, _ := reader.FieldPos(0)
		if isBlank(record) {
			continue
		}

		draw, err := layout.parseRow(record)
		if err != nil {
			result.Rejected = append(result.Rejected, RejectedRow{Line: line, Err: err})
			continue
		}
		result.Draws = append(result.Draws, draw)
	}

	return result, nil
}

func buildLayout(header []string) (*columnLayout, error) {
	layout := &columnLayout{day: -1, month: -1, year: -1, sales: -1}
	index := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		index[strings.ToUpper(h)] = i
		if cat, err := models.ParseCategory(h); err == nil {
			if layout.winners == nil {
				layout.winners = make(map[int]string)
			}
			layout.winners[i] = cat.String()
		}
	}

	lookup := func(name string) int {
		if i, ok := index[strings.ToUpper(name)]; ok {
			return i
		}
		return -1
	}

	layout.day = lookup(HeaderDay)
	layout.month = lookup(HeaderMonth)
	layout.year = lookup(HeaderYear)
	layout.sales = lookup(HeaderSales)

	var missing []string
	if layout.year < 0 {
		missing = append(missing, HeaderYear)
	}
	for _, h := range mainHeaders {
		i := lookup(h)
		if i < 0 {
			missing = append(missing, h)
		}
		layout.main = append(layout.main, i)
	}
	for _, h := range luckyHeaders {
		i := lookup(h)
		if i < 0 {
			missing = append(missing, h)
		}
		layout.lucky = append(layout.lucky, i)
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required columns: %s", strings.Join(missing, ", "))
	}
	return layout, nil
}

func (l *columnLayout) parseRow(record []string) (models.Ticket, error) {
	cell := func(i int) string {
		if i < 0 || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	year, err := strconv.Atoi(cell(l.year))
	if err != nil {
		return models.Ticket{}, models.NewValidationError("draw_year", fmt.Sprintf("invalid year %q", cell(l.year)))
	}

	t := models.Ticket{
		DrawYear: year,
		Main:     make([]int, 0, models.MainCount),
		Lucky:    make([]int, 0, models.LuckyCount),
	}

	for _, i := range l.main {
		n, err := strconv.Atoi(cell(i))
		if err != nil {
			return models.Ticket{}, models.NewValidationError("main_numbers", fmt.Sprintf("invalid number %q", cell(i)))
		}
		t.Main = append(t.Main, n)
	}
	for _, i := range l.lucky {
		n, err := strconv.Atoi(cell(i))
		if err != nil {
			return models.Ticket{}, models.NewValidationError("lucky_numbers", fmt.Sprintf("invalid number %q", cell(i)))
		}
		t.Lucky = append(t.Lucky, n)
	}

	if raw := cell(l.month); raw != "" {
		m, err := models.ParseMonth(raw)
		if err != nil {
			return models.Ticket{}, err
		}
		t.DrawMonth = &m
	}
	if raw := cell(l.day); raw != "" {
		d, err := strconv.Atoi(raw)
		if err != nil {
			return models.Ticket{}, models.NewValidationError("draw_day", fmt.Sprintf("invalid day %q", raw))
		}
		t.DrawDay = &d
	}

	if raw := cell(l.sales); raw != "" {
		sales, err := parseAmount(raw)
		if err != nil {
			return models.Ticket{}, models.NewValidationError("sales", fmt.Sprintf("invalid amount %q", raw))
		}
		t.Sales = &sales
	}

	for i, tag := range l.winners {
		raw := cell(i)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(strings.ReplaceAll(raw, ",", ""))
		if err != nil {
			return models.Ticket{}, models.NewValidationError("winners_by_category", fmt.Sprintf("invalid count %q for %s", raw, tag))
		}
		if t.Winners == nil {
			t.Winners = make(map[string]int, len(l.winners))
		}
		t.Winners[tag] = n
	}

	if err := t.Validate(); err != nil {
		return models.Ticket{}, err
	}
	return t, nil
}

// parseAmount accepts plain decimals as well as published figures such as "€123,456,789.00"
func parseAmount(raw string) (decimal.Decimal, error) {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case ',', ' ', '€', '£', '$':
			return -1
		}
		return r
	}, raw)
	return decimal.NewFromString(cleaned)
}

func isBlank(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
