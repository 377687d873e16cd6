package models

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Game structure
const (
	MainCount   = 5
	MainMax     = 50
	LuckyCount  = 2
	LuckyMax    = 12
	MinDrawYear = 1000
	MaxDrawYear = 9999
)

// Month is a three-letter month code as published on draw results
type Month string

// Month codes
const (
	Jan Month = "Jan"
	Feb Month = "Feb"
	Mar Month = "Mar"
	Apr Month = "Apr"
	May Month = "May"
	Jun Month = "Jun"
	Jul Month = "Jul"
	Aug Month = "Aug"
	Sep Month = "Sep"
	Oct Month = "Oct"
	Nov Month = "Nov"
	Dec Month = "Dec"
)

var monthNumbers = map[Month]time.Month{
	Jan: time.January, Feb: time.February, Mar: time.March, Apr: time.April,
	May: time.May, Jun: time.June, Jul: time.July, Aug: time.August,
	Sep: time.September, Oct: time.October, Nov: time.November, Dec: time.December,
}

// ParseMonth parses a month code; only the first three letters are significant
func ParseMonth(s string) (Month, error) {
	s = strings.TrimSpace(s)
	if len(s) < 3 {
		return "", NewValidationError("draw_month", fmt.Sprintf("unknown month %q", s))
	}
	m := Month(strings.ToUpper(s[:1]) + strings.ToLower(s[1:3]))
	if _, ok := monthNumbers[m]; !ok {
		return "", NewValidationError("draw_month", fmt.Sprintf("unknown month %q", s))
	}
	return m, nil
}

// Number returns the calendar month
func (m Month) Number() time.Month {
	return monthNumbers[m]
}

// Valid reports whether m is one of the twelve month codes
func (m Month) Valid() bool {
	_, ok := monthNumbers[m]
	return ok
}

// Category is a prize category: Main correct numbers plus Lucky correct lucky numbers
type Category struct {
	Main  int
	Lucky int
}

// String returns the "N+L" tag
func (c Category) String() string {
	return fmt.Sprintf("%d+%d", c.Main, c.Lucky)
}

// ParseCategory parses "N+L" tags. A bare "N" means N+0.
func ParseCategory(tag string) (Category, error) {
	tag = strings.TrimSpace(tag)
	mainPart, luckyPart, hasLucky := strings.Cut(tag, "+")
	n, err := strconv.Atoi(strings.TrimSpace(mainPart))
	if err != nil {
		return Category{}, fmt.Errorf("invalid category %q: %w", tag, err)
	}
	l := 0
	if hasLucky {
		l, err = strconv.Atoi(strings.TrimSpace(luckyPart))
		if err != nil {
			return Category{}, fmt.Errorf("invalid category %q: %w", tag, err)
		}
	}
	if n < 0 || n > MainCount || l < 0 || l > LuckyCount {
		return Category{}, fmt.Errorf("invalid category %q: out of range", tag)
	}
	return Category{Main: n, Lucky: l}, nil
}

// Ticket is one lottery play or one historical draw.
// A Ticket is never mutated after construction; feature engineering works on copies.
type Ticket struct {
	ID        uuid.UUID        `json:"id,omitempty"`
	DrawYear  int              `json:"draw_year" validate:"gte=1000,lte=9999"`
	DrawMonth *Month           `json:"draw_month,omitempty" validate:"omitempty,month"`
	DrawDay   *int             `json:"draw_day,omitempty" validate:"omitempty,min=1,max=31"`
	Main      []int            `json:"main_numbers" validate:"len=5,unique,dive,min=1,max=50"`
	Lucky     []int            `json:"lucky_numbers" validate:"len=2,unique,dive,min=1,max=12"`
	Sales     *decimal.Decimal `json:"sales,omitempty"`
	Winners   map[string]int   `json:"winners_by_category,omitempty"`
}

var ticketValidator = newTicketValidator()

func newTicketValidator() *validator.Validate {
	v := validator.New()
	if err := v.RegisterValidation("month", func(fl validator.FieldLevel) bool {
		return Month(fl.Field().String()).Valid()
	}); err != nil {
		panic(err)
	}
	return v
}

// NewTicket builds a validated user ticket. Numbers are copied and sorted
// ascending, the same way they are entered on a play slip.
func NewTicket(year int, main, lucky []int) (Ticket, error) {
	t := Ticket{
		DrawYear: year,
		Main:     sortedCopy(main),
		Lucky:    sortedCopy(lucky),
	}
	if err := t.Validate(); err != nil {
		return Ticket{}, err
	}
	return t, nil
}

// Validate checks count, uniqueness and range of the numbers plus the optional draw fields
func (t Ticket) Validate() error {
	if err := ticketValidator.Struct(t); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return describeFieldError(verrs[0])
		}
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if t.Sales != nil && t.Sales.IsNegative() {
		return NewValidationError("sales", "must not be negative")
	}
	for tag, count := range t.Winners {
		if _, err := ParseCategory(tag); err != nil {
			return NewValidationError("winners_by_category", err.Error())
		}
		if count < 0 {
			return NewValidationError("winners_by_category", fmt.Sprintf("negative winner count for %s", tag))
		}
	}
	return nil
}

func describeFieldError(fe validator.FieldError) error {
	field := fe.Field()
	name, _, _ := strings.Cut(fe.StructField(), "[")
	switch name {
	case "Main":
		field = "main_numbers"
	case "Lucky":
		field = "lucky_numbers"
	case "DrawYear":
		field = "draw_year"
	case "DrawMonth":
		field = "draw_month"
	case "DrawDay":
		field = "draw_day"
	}

	switch fe.Tag() {
	case "len":
		return NewValidationError(field, fmt.Sprintf("expected %s numbers, got %v", fe.Param(), reflectLen(fe.Value())))
	case "unique":
		return NewValidationError(field, "numbers must be unique")
	case "min", "max", "gte", "lte":
		return NewValidationError(field, fmt.Sprintf("value %v violates %s=%s", fe.Value(), fe.Tag(), fe.Param()))
	case "month":
		return NewValidationError(field, fmt.Sprintf("unknown month %v", fe.Value()))
	default:
		return NewValidationError(field, fmt.Sprintf("failed %s validation", fe.Tag()))
	}
}

func reflectLen(v interface{}) int {
	if nums, ok := v.([]int); ok {
		return len(nums)
	}
	return 0
}

// Clone returns a deep copy
func (t Ticket) Clone() Ticket {
	out := t
	out.Main = append([]int(nil), t.Main...)
	out.Lucky = append([]int(nil), t.Lucky...)
	if t.DrawMonth != nil {
		m := *t.DrawMonth
		out.DrawMonth = &m
	}
	if t.DrawDay != nil {
		d := *t.DrawDay
		out.DrawDay = &d
	}
	if t.Sales != nil {
		s := *t.Sales
		out.Sales = &s
	}
	if t.Winners != nil {
		out.Winners = make(map[string]int, len(t.Winners))
		for k, v := range t.Winners {
			out.Winners[k] = v
		}
	}
	return out
}

// DrawDate returns the full draw date when month and day are known
func (t Ticket) DrawDate() (time.Time, bool) {
	if t.DrawMonth == nil || t.DrawDay == nil || !t.DrawMonth.Valid() {
		return time.Time{}, false
	}
	return time.Date(t.DrawYear, t.DrawMonth.Number(), *t.DrawDay, 0, 0, 0, 0, time.UTC), true
}

// HasScoringData reports whether sales and winner counts are present
func (t Ticket) HasScoringData() bool {
	return t.Sales != nil && t.Winners != nil
}

// WinnersIn returns the winner count for a category. Categories without
// lucky numbers may be tagged either "N" or "N+0". Absent tags count as zero.
func (t Ticket) WinnersIn(c Category) int {
	if n, ok := t.Winners[c.String()]; ok {
		return n
	}
	if c.Lucky == 0 {
		return t.Winners[strconv.Itoa(c.Main)]
	}
	return 0
}

func sortedCopy(nums []int) []int {
	out := append([]int(nil), nums...)
	sort.Ints(out)
	return out
}
