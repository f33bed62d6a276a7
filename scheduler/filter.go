package scheduler

import (
	"iter"
	"slices"
	"time"
)

// Matches reports whether t satisfies every field of the expression. Within a field
// one accepting rule is enough.
func (e *Expression) Matches(t time.Time) bool {
	for _, s := range e.sets {
		if !s.Accept(t) {
			return false
		}
	}
	return true
}

// Sequence yields every matching minute of [start, end) in chronological order.
// start is truncated to its minute; end is exclusive. Each call to the returned
// sequence starts over.
func (e *Expression) Sequence(start, end time.Time) iter.Seq[time.Time] {
	first := truncateMinute(start)
	return func(yield func(time.Time) bool) {
		for t := first; t.Before(end); t = t.Add(time.Minute) {
			if e.Matches(t) && !yield(t) {
				return
			}
		}
	}
}

func (e *Expression) Count(start, end time.Time) int {
	n := 0
	for range e.Sequence(start, end) {
		n++
	}
	return n
}

func FilterRange(e *Expression, start, end time.Time) []time.Time {
	return slices.Collect(e.Sequence(start, end))
}

// ScheduleBetween parses the five field tokens and filters [start, end) with the result.
func ScheduleBetween(minute, hour, day, month, weekday string, start, end time.Time, policy ErrorPolicy) ([]time.Time, error) {
	e, err := ParseExpression(minute, hour, day, month, weekday, policy)
	if err != nil {
		return nil, err
	}
	return FilterRange(e, start, end), nil
}

func truncateMinute(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), 0, 0, t.Location())
}
