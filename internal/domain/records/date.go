package records

import (
	"encoding/json"
	"strings"
	"time"
)

// dateLayouts are tried in order when parsing dates from upstream exports
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"02.01.2006",
}

// Date is a calendar date that may be absent. The zero value means absent.
type Date struct {
	time.Time
}

// NewDate creates a Date from year, month and day in UTC.
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses s using the supported layouts.
// Empty or unparseable input returns an absent Date.
func ParseDate(s string) Date {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Date{Time: t}
		}
	}
	return Date{}
}

// Valid reports whether the date is present
func (d Date) Valid() bool {
	return !d.IsZero()
}

// UnmarshalJSON accepts strings in any supported layout. Unparseable values
// decode to an absent date instead of failing the whole record.
func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		// null, numbers and other shapes are treated as absent
		*d = Date{}
		return nil
	}
	*d = ParseDate(s)
	return nil
}

// MarshalJSON writes absent dates as null and present dates as YYYY-MM-DD.
func (d Date) MarshalJSON() ([]byte, error) {
	if !d.Valid() {
		return []byte("null"), nil
	}
	return json.Marshal(d.Format("2006-01-02"))
}
