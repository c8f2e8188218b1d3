package geo

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const secondsPerDay = 24 * 60 * 60

// TimeOfDay is seconds since midnight, in [0, 86400).
type TimeOfDay int32

// Clock builds a TimeOfDay, wrapping past midnight.
func Clock(hour, minute, second int) TimeOfDay {
	s := (hour*3600 + minute*60 + second) % secondsPerDay
	if s < 0 {
		s += secondsPerDay
	}
	return TimeOfDay(s)
}

// ParseTimeOfDay reads "HH:MM" or "HH:MM:SS".
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("parse time of day %q: want HH:MM[:SS]", s)
	}
	var v [3]int
	limits := [3]int{24, 60, 60}
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return 0, fmt.Errorf("parse time of day %q: %w", s, err)
		}
		if n < 0 || n >= limits[i] {
			return 0, fmt.Errorf("parse time of day %q: field %d out of range", s, i+1)
		}
		v[i] = n
	}
	return Clock(v[0], v[1], v[2]), nil
}

func (t TimeOfDay) Hour() int   { return int(t) / 3600 }
func (t TimeOfDay) Minute() int { return int(t) / 60 % 60 }
func (t TimeOfDay) Second() int { return int(t) % 60 }

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", t.Hour(), t.Minute(), t.Second())
}

func (t TimeOfDay) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

// Timespan is an interval between two times of day, each with a day offset relative to
// the service day.
type Timespan struct {
	Start       TimeOfDay
	StartOffset int
	End         TimeOfDay
	EndOffset   int
}

var errTimespan = errors.New("invalid timespan")

// NewTimespan validates the offsets and that the end does not precede the start.
func NewTimespan(start TimeOfDay, startOffset int, end TimeOfDay, endOffset int) (Timespan, error) {
	ts := Timespan{Start: start, StartOffset: startOffset, End: end, EndOffset: endOffset}
	if startOffset < 0 || endOffset < startOffset {
		return Timespan{}, fmt.Errorf("%w: offsets %d/%d", errTimespan, startOffset, endOffset)
	}
	if ts.endSeconds() < ts.startSeconds() {
		return Timespan{}, fmt.Errorf("%w: %s ends before it starts", errTimespan, ts)
	}
	return ts, nil
}

// Span is NewTimespan for same-day spans, rolling the end over midnight when it is earlier
// than the start.
func Span(start, end TimeOfDay) Timespan {
	ts := Timespan{Start: start, End: end}
	if end < start {
		ts.EndOffset = 1
	}
	return ts
}

func spanOfSeconds(start, end int64) Timespan {
	return Timespan{
		Start:       TimeOfDay(start % secondsPerDay),
		StartOffset: int(start / secondsPerDay),
		End:         TimeOfDay(end % secondsPerDay),
		EndOffset:   int(end / secondsPerDay),
	}
}

func (t Timespan) startSeconds() int64 {
	return int64(t.Start) + int64(t.StartOffset)*secondsPerDay
}

func (t Timespan) endSeconds() int64 {
	return int64(t.End) + int64(t.EndOffset)*secondsPerDay
}

// Earliest returns whichever span starts first, preferring t on ties.
func (t Timespan) Earliest(other Timespan) Timespan {
	if other.startSeconds() < t.startSeconds() {
		return other
	}
	return t
}

// Latest returns whichever span ends last, preferring t on ties.
func (t Timespan) Latest(other Timespan) Timespan {
	if other.endSeconds() > t.endSeconds() {
		return other
	}
	return t
}

func (t Timespan) Combined(other Timespan) Timespan {
	e, l := t.Earliest(other), t.Latest(other)
	return Timespan{Start: e.Start, StartOffset: e.StartOffset, End: l.End, EndOffset: l.EndOffset}
}

func (t Timespan) Duration() time.Duration {
	return time.Duration(t.endSeconds()-t.startSeconds()) * time.Second
}

func (t Timespan) Overlaps(other Timespan) bool {
	return t.startSeconds() <= other.endSeconds() && other.startSeconds() <= t.endSeconds()
}

// Timespans splits the span into accuracy-aligned slots. The start is floored and the end
// is floored and extended by one slot.
func (t Timespan) Timespans(accuracy time.Duration) []Timespan {
	acc := int64(accuracy / time.Second)
	if acc <= 0 {
		return []Timespan{t}
	}
	start := t.startSeconds() / acc * acc
	end := (t.endSeconds()/acc + 1) * acc
	out := make([]Timespan, 0, (end-start)/acc)
	for s := start; s < end; s += acc {
		out = append(out, spanOfSeconds(s, s+acc))
	}
	return out
}

// Scaled is the single span covering all of Timespans(accuracy).
func (t Timespan) Scaled(accuracy time.Duration) Timespan {
	acc := int64(accuracy / time.Second)
	if acc <= 0 {
		return t
	}
	return spanOfSeconds(t.startSeconds()/acc*acc, (t.endSeconds()/acc+1)*acc)
}

func (t Timespan) String() string {
	return fmt.Sprintf("%s%s-%s%s", t.Start, offsetSuffix(t.StartOffset), t.End, offsetSuffix(t.EndOffset))
}

func offsetSuffix(days int) string {
	if days == 0 {
		return ""
	}
	return fmt.Sprintf("+%d", days)
}
