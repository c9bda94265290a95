// Package extract coerces raw spreadsheet cell values into typed, validated
// domain values.
//
// Cells arrive as string, float64 (numeric cells and Excel serial dates),
// time.Time or nil. Every extractor returns the typed value and a bool that is
// false when the cell is missing or does not qualify; callers decide whether
// that rejects the row or simply leaves a field empty.
package extract

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// String returns the trimmed text of a cell. Missing and whitespace-only cells are absent.
func String(v any) (string, bool) {
	var s string
	switch val := v.(type) {
	case nil:
		return "", false
	case string:
		s = val
	case float64:
		s = strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		s = strconv.Itoa(val)
	case int64:
		s = strconv.FormatInt(val, 10)
	case time.Time:
		if val.IsZero() {
			return "", false
		}
		s = val.Format("02/01/2006 15:04")
	default:
		s = fmt.Sprint(val)
	}

	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	return s, true
}

// Digits strips everything but ASCII digits.
func Digits(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func allSameRune(s string) bool {
	for i := 1; i < len(s); i++ {
		if s[i] != s[0] {
			return false
		}
	}
	return true
}
