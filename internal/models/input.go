package models

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseNumbers parses numbers separated by whitespace or commas, e.g. "45 30 12 1 7"
func ParseNumbers(s string) ([]int, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n'
	})
	nums := make([]int, 0, len(fields))
	for _, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil {
			return nil, NewValidationError("numbers", fmt.Sprintf("%q is not a whole number", f))
		}
		nums = append(nums, n)
	}
	return nums, nil
}
