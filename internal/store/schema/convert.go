package schema

import (
	"math"
	"time"
)

const millisPerDay = int64(24 * time.Hour / time.Millisecond)

func toMillis(t time.Time) int64 {
	return t.UTC().UnixMilli()
}

func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

// toOptionalMillis maps the zero time to a null column value
func toOptionalMillis(t time.Time) *int64 {
	if t.IsZero() {
		return nil
	}
	ms := toMillis(t)
	return &ms
}

func fromOptionalMillis(ms *int64) time.Time {
	if ms == nil {
		return time.Time{}
	}
	return fromMillis(*ms)
}

// toDate encodes a day as days since the unix epoch
func toDate(t time.Time) int32 {
	return int32(toMillis(t) / millisPerDay)
}

func fromDate(days int32) time.Time {
	return fromMillis(int64(days) * millisPerDay)
}

// nullableFloat maps NaN to a SQL NULL
func nullableFloat(f float64) *float64 {
	if math.IsNaN(f) {
		return nil
	}
	return &f
}

func floatOrNaN(f *float64) float64 {
	if f == nil {
		return math.NaN()
	}
	return *f
}

func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	u := t.UTC()
	return &u
}

func timeOrZero(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return t.UTC()
}
