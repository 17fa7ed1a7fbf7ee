package types

import (
	"strconv"
	"time"
)

// ValueKind discriminates the scalar kinds a cell can hold.
type ValueKind uint8

const (
	// KindNull marks an absent or empty cell
	KindNull ValueKind = iota

	// KindNumber marks a numeric cell (stored as float64)
	KindNumber

	// KindText marks a free-text cell
	KindText

	// KindTime marks a cell already resolved to a calendar date
	KindTime
)

// Value is a tagged scalar cell. The ingestion reader produces Null,
// Number, and Text values; Time values appear once a date column has
// been resolved downstream.
type Value struct {
	Kind ValueKind
	num  float64
	str  string
	ts   time.Time
}

// Null returns the null value.
func Null() Value { return Value{Kind: KindNull} }

// Number returns a numeric value.
func Number(f float64) Value { return Value{Kind: KindNumber, num: f} }

// Text returns a text value.
func Text(s string) Value { return Value{Kind: KindText, str: s} }

// Time returns a date value.
func Time(t time.Time) Value { return Value{Kind: KindTime, ts: t} }

// IsNull reports whether the value is null.
func (v Value) IsNull() bool { return v.Kind == KindNull }

// Float returns the numeric interpretation of the value. Text values
// that parse as numbers are accepted; the second result reports
// whether a number was obtained.
func (v Value) Float() (float64, bool) {
	switch v.Kind {
	case KindNumber:
		return v.num, true
	case KindText:
		f, err := strconv.ParseFloat(v.str, 64)
		return f, err == nil
	}
	return 0, false
}

// Text returns the textual form of the value and whether one exists.
// Null values have no textual form.
func (v Value) Text() (string, bool) {
	switch v.Kind {
	case KindText:
		return v.str, true
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64), true
	case KindTime:
		return v.ts.Format("2006-01-02"), true
	}
	return "", false
}

// Time returns the date held by the value and whether one is set.
func (v Value) Time() (time.Time, bool) {
	if v.Kind == KindTime {
		return v.ts, true
	}
	return time.Time{}, false
}

// Native converts the value to the corresponding Go scalar for SQL
// binding and JSON encoding: nil, float64, string, or time.Time.
func (v Value) Native() interface{} {
	switch v.Kind {
	case KindNumber:
		return v.num
	case KindText:
		return v.str
	case KindTime:
		return v.ts
	}
	return nil
}

// dateLayouts are the accepted spellings for date cells, tried in order.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"01/02/2006",
	"2006/01/02",
}

// ParseDate attempts to interpret the value as a calendar date.
// Values that do not look like dates report ok=false.
func (v Value) ParseDate() (time.Time, bool) {
	if v.Kind == KindTime {
		return v.ts, true
	}
	s, ok := v.Text()
	if !ok {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
