package dataprocessing

import (
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"github.com/reondaze-a/automated-wave-priority-sorting/pkg/contracts/domain"
)

// DateLayout is the canonical calendar-date format used in summaries.
const DateLayout = "2006-01-02"

// ExcelEpochOffsetDays is the number of days between the spreadsheet epoch
// (1899-12-30, which absorbs the 1900 leap-year bug) and the Unix epoch.
const ExcelEpochOffsetDays = 25569

var (
	ymdPattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	digitsOnly = regexp.MustCompile(`^[+-]?\d+(\.\d+)?$`)
)

// SerialToDate converts a spreadsheet date serial to an instant. The
// fractional part is the time of day; the result is rounded to the
// millisecond and expressed in UTC.
func SerialToDate(serial float64) time.Time {
	ms := math.Round((serial - ExcelEpochOffsetDays) * 86400 * 1000)
	return time.UnixMilli(int64(ms)).UTC()
}

// ParseDateText parses free-text dates the way spreadsheet exports write
// them: ISO forms, month-first slash dates, month names with or without a
// time, and JavaScript Date strings. Values without an explicit offset are
// read in loc. All-digit text is never a date.
func ParseDateText(s string, loc *time.Location) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" || digitsOnly.MatchString(s) {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.Local
	}
	t, err := dateparse.ParseIn(s, loc)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// NormalizeDate renders a ship-date cell as YYYY-MM-DD, or "" when the cell
// holds no recognizable date.
//
// Number cells are spreadsheet serials and keep the calendar date they
// encode. Text is parsed with ParseDateText and reported in loc. Booleans
// and absent cells never match.
func NormalizeDate(c domain.Cell, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	switch c.Kind() {
	case domain.CellNumber:
		serial, ok := c.Number()
		if !ok {
			return ""
		}
		return SerialToDate(serial).Format(DateLayout)
	case domain.CellString:
		t, ok := ParseDateText(c.String(), loc)
		if !ok {
			return ""
		}
		return t.In(loc).Format(DateLayout)
	default:
		return ""
	}
}

// IsCalendarDate reports whether s has the YYYY-MM-DD shape.
func IsCalendarDate(s string) bool {
	return ymdPattern.MatchString(s)
}

// EffectiveTargetDate returns target when it has the YYYY-MM-DD shape and
// otherwise the calendar date of now.
func EffectiveTargetDate(target string, now time.Time) string {
	if IsCalendarDate(target) {
		return target
	}
	return now.Format(DateLayout)
}
