package campaign

import (
	"time"
)

// DefaultSpan is how long a campaign runs when no span is configured.
const DefaultSpan = 90 * 24 * time.Hour

type Clock interface {
	Now() time.Time
}

type RealClock struct{}

func (RealClock) Now() time.Time {
	return time.Now()
}

// FixedClock always reports the same instant.
type FixedClock time.Time

func (c FixedClock) Now() time.Time {
	return time.Time(c)
}

// Window is the flight of a media buy.
type Window struct {
	Start time.Time
	End   time.Time
}

// ComputeWindow starts the window at the first UTC midnight strictly after now
// and ends it span later. An instant that is already midnight advances a full day.
func ComputeWindow(now time.Time, span time.Duration) Window {
	utc := now.UTC()
	midnight := time.Date(utc.Year(), utc.Month(), utc.Day(), 0, 0, 0, 0, time.UTC)
	start := midnight.AddDate(0, 0, 1)
	return Window{Start: start, End: start.Add(span)}
}

func (w Window) StartTime() string { return FormatTimestamp(w.Start) }

func (w Window) EndTime() string { return FormatTimestamp(w.End) }

func (w Window) Span() time.Duration { return w.End.Sub(w.Start) }

// FormatTimestamp renders t in UTC with a literal Z suffix, never a numeric offset.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// SpanDays converts a day count into a window span.
func SpanDays(days int) time.Duration {
	return time.Duration(days) * 24 * time.Hour
}
