package scheduler

import (
	"fmt"
	"time"
)

// DefaultSearchWindow bounds Next when the caller passes a non-positive window.
const DefaultSearchWindow = 366 * 24 * time.Hour

// Next returns the first matching minute strictly after after, searching at most
// window ahead. The result keeps after's location.
func (e *Expression) Next(after time.Time, window time.Duration) (time.Time, error) {
	if window <= 0 {
		window = DefaultSearchWindow
	}
	start := truncateMinute(after).Add(time.Minute)
	limit := start.Add(window)
	for t := range e.Sequence(start, limit) {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("%w (after %s, window %s)", ErrNoMatch, after.Format(time.RFC3339), window)
}

// NextN returns up to n consecutive matches after after. It stops early, without
// error, once a search window passes with no match and at least one result exists.
func (e *Expression) NextN(after time.Time, n int, window time.Duration) ([]time.Time, error) {
	out := make([]time.Time, 0, max(n, 0))
	cur := after
	for len(out) < n {
		next, err := e.Next(cur, window)
		if err != nil {
			if len(out) > 0 {
				return out, nil
			}
			return nil, err
		}
		out = append(out, next)
		cur = next
	}
	return out, nil
}
