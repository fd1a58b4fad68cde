package models

import (
	"math"
	"strings"
	"time"
)

// Spreadsheet day serials count from 1899-12-30 (the 1900 date system
// with its leap-year quirk already folded in).
func serialEpoch() time.Time {
	return time.Date(1899, time.December, 30, 0, 0, 0, 0, time.Local)
}

// Text layouts tried in order; the first that parses to a valid
// calendar date wins, so "13/05/2024" resolves day-first and
// "05/13/2024" falls through to month-first.
var dateLayouts = []string{
	"2006-01-02",
	"02/01/2006",
	"01/02/2006",
	"02-01-2006",
}

// ParseCellDate converts a raw cell into a canonical date, or nil.
// It never errors: date cells pass through, numeric cells are treated
// as day serials, text cells try the known layouts then strict ISO.
// Unparseable input is an unknown date, never a default one.
func ParseCellDate(c Cell) *time.Time {
	switch c.Kind {
	case CellDate:
		t := c.Date
		return &t
	case CellNumber:
		t := SerialToDate(c.Number)
		return &t
	case CellText:
		s := strings.TrimSpace(c.Text)
		if s == "" {
			return nil
		}
		for _, layout := range dateLayouts {
			if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
				return &t
			}
		}
		if t, err := time.Parse(time.RFC3339, s); err == nil {
			t = t.In(time.Local)
			return &t
		}
	}
	return nil
}

// SerialToDate maps a day serial onto a calendar date at local midnight.
// Fractional time-of-day parts are dropped.
func SerialToDate(serial float64) time.Time {
	return serialEpoch().AddDate(0, 0, int(serial))
}

// DateToSerial is the inverse of SerialToDate for whole-day serials.
func DateToSerial(t time.Time) int {
	y, m, d := t.Date()
	day := time.Date(y, m, d, 12, 0, 0, 0, time.UTC)
	ey, em, ed := serialEpoch().Date()
	epoch := time.Date(ey, em, ed, 12, 0, 0, 0, time.UTC)
	return int(math.Round(day.Sub(epoch).Hours() / 24))
}

// FormatDisplayDate renders a canonical date for display fields
// (handling deadline, updated ETA).
func FormatDisplayDate(t time.Time) string {
	return t.Format("Jan 02, 2006")
}

// diffWholeDays is the whole-day difference now-then, truncated toward
// zero. A registration date in the future yields a negative count;
// consumers tolerate that rather than clamping.
func diffWholeDays(now, then time.Time) int {
	return int(now.Sub(then).Hours() / 24)
}
