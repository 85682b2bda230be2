package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"
)

// DateLayout is the day/month/year form used for every user-facing date.
const DateLayout = "02/01/2006"

// FormatDate formats t as dd/mm/yyyy.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// ParseDate parses a day/month/year date in the given location.
// Unpadded components ("1/2/2020") are accepted.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	parts := strings.Split(strings.TrimSpace(s), "/")
	if len(parts) != 3 {
		return time.Time{}, fmt.Errorf("invalid date %q: expected dd/mm/yyyy", s)
	}

	var nums [3]int
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
		}
		nums[i] = n
	}
	day, month, year := nums[0], nums[1], nums[2]
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, fmt.Errorf("invalid date %q: out of range", s)
	}

	if loc == nil {
		loc = time.Local
	}
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, loc), nil
}

// FormatDateInput turns raw typed input into the dd/mm/yyyy pattern: only
// digits are kept (at most 8) and slashes are inserted after the day and month.
func FormatDateInput(input string) string {
	digits := make([]rune, 0, 8)
	for _, r := range input {
		if unicode.IsDigit(r) && r < unicode.MaxASCII {
			digits = append(digits, r)
			if len(digits) == 8 {
				break
			}
		}
	}

	var b strings.Builder
	for i, r := range digits {
		if i == 2 || i == 4 {
			b.WriteByte('/')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// NormalizeDate rewrites a date carrying exactly eight digits as dd/mm/yyyy.
// Any other input is returned unchanged.
func NormalizeDate(input string) string {
	var digits strings.Builder
	for _, r := range input {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	d := digits.String()
	if len(d) != 8 {
		return input
	}
	return d[0:2] + "/" + d[2:4] + "/" + d[4:8]
}
