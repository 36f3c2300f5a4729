package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// dateLayout is the serialized form of a Date
const dateLayout = "2006-01-02"

// Date is a calendar date (UTC midnight) with a YYYY-MM-DD wire form
type Date struct {
	time.Time
}

// NewDate returns the calendar date y-m-d
func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// String returns the date as YYYY-MM-DD
func (d Date) String() string {
	return d.Format(dateLayout)
}

// MarshalText implements encoding.TextMarshaler
func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (d *Date) UnmarshalText(text []byte) error {
	t, err := time.Parse(dateLayout, string(text))
	if err != nil {
		return fmt.Errorf("invalid date %q: %w", text, err)
	}
	d.Time = t
	return nil
}

// datePatterns are tried in order; the first match wins
var datePatterns = []*regexp.Regexp{
	regexp.MustCompile(`^(\d{4})/(\d{1,2})/(\d{1,2})$`),
	regexp.MustCompile(`^(\d{4})-(\d{1,2})-(\d{1,2})$`),
	regexp.MustCompile(`^(\d{4})\.(\d{1,2})\.(\d{1,2})$`),
	regexp.MustCompile(`^(\d{4})(\d{2})(\d{2})$`),
}

// ParseDate parses YYYY/M/D, YYYY-M-D, YYYY.M.D or YYYYMMDD.
// Returns false when the token is not a date, including out-of-range values
// such as month 13 or February 30.
func ParseDate(s string) (Date, bool) {
	s = strings.TrimSpace(s)
	for _, pattern := range datePatterns {
		m := pattern.FindStringSubmatch(s)
		if m == nil {
			continue
		}

		year, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		day, _ := strconv.Atoi(m[3])

		d := NewDate(year, time.Month(month), day)
		if d.Year() != year || int(d.Month()) != month || d.Day() != day {
			return Date{}, false
		}
		return d, true
	}
	return Date{}, false
}
