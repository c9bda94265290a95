package extract

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// Moment is a scheduled instant split the way appointments store it.
type Moment struct {
	Date  time.Time // midnight in the import location
	Clock string    // HH:MM
}

var dateTimeLayouts = []string{
	"02/01/2006 15:04",
	"02/01/2006 15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

var dateLayouts = []string{
	"02/01/2006",
	"2006-01-02",
}

var clockLayouts = []string{
	"15:04",
	"15:04:05",
}

// DateTime parses a combined date-time cell. Strings are tried against
// dateTimeLayouts in order; native times keep their wall clock; numbers are
// Excel serial dates.
func DateTime(v any, loc *time.Location) (Moment, bool) {
	t, ok := toWallClock(v, dateTimeLayouts, loc)
	if !ok {
		return Moment{}, false
	}
	return Moment{Date: midnight(t, loc), Clock: clock(t)}, true
}

// Date parses a date-only cell. Combined date-time values are accepted and
// truncated to midnight.
func Date(v any, loc *time.Location) (time.Time, bool) {
	layouts := append(append([]string{}, dateLayouts...), dateTimeLayouts...)
	t, ok := toWallClock(v, layouts, loc)
	if !ok {
		return time.Time{}, false
	}
	return midnight(t, loc), true
}

// Clock parses a time-of-day cell into HH:MM. Numeric cells are Excel day fractions.
func Clock(v any) (string, bool) {
	switch val := v.(type) {
	case time.Time:
		if val.IsZero() {
			return "", false
		}
		return clock(val), true
	case float64:
		if val < 0 {
			return "", false
		}
		_, frac := math.Modf(val)
		minutes := int(math.Round(frac * 24 * 60))
		if minutes == 24*60 {
			minutes = 0
		}
		return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60), true
	}

	s, ok := String(v)
	if !ok {
		return "", false
	}
	for _, layout := range clockLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return clock(t), true
		}
	}
	return "", false
}

func toWallClock(v any, layouts []string, loc *time.Location) (time.Time, bool) {
	if loc == nil {
		loc = time.UTC
	}
	switch val := v.(type) {
	case time.Time:
		if val.IsZero() {
			return time.Time{}, false
		}
		return val, true
	case float64:
		if val <= 0 {
			return time.Time{}, false
		}
		t, err := excelize.ExcelDateToTime(val, false)
		if err != nil {
			return time.Time{}, false
		}
		return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, loc), true
	}

	s, ok := String(v)
	if !ok {
		return time.Time{}, false
	}
	s = strings.Join(strings.Fields(s), " ")
	for _, layout := range layouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// CalendarDay returns the UTC midnight of t's calendar day in t's own
// location. Stored dates use this form so equal days compare equal.
func CalendarDay(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return midnight(t, time.UTC)
}

func midnight(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

func clock(t time.Time) string {
	return fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute())
}
