package rule

import (
	"fmt"
	"sync"
	"time"
)

// LastDayOfMonth accepts the final calendar day of every month.
type LastDayOfMonth struct{}

// LastDay is the shared instance handed out by the parser for "L".
var LastDay Rule = LastDayOfMonth{}

func (LastDayOfMonth) Accept(t time.Time) bool {
	return t.AddDate(0, 0, 1).Day() == 1
}

func (LastDayOfMonth) String() string { return "rule.LastDayOfMonth()" }

// NearestWorkday implements "<N>W": the Monday-to-Friday day closest to day N of the
// month, never crossing into a neighbouring month.
//
// The range filter asks about every minute of a day, so the instance remembers the
// last accepted and the last rejected date and answers repeats from there.
type NearestWorkday struct {
	Target int

	mu       sync.Mutex
	accepted dateKey
	rejected dateKey
}

type dateKey struct {
	year  int
	month time.Month
	day   int
	set   bool
}

func keyOf(t time.Time) dateKey {
	y, m, d := t.Date()
	return dateKey{year: y, month: m, day: d, set: true}
}

func NewNearestWorkday(target int) *NearestWorkday {
	return &NearestWorkday{Target: target}
}

func (r *NearestWorkday) Accept(t time.Time) bool {
	key := keyOf(t)

	r.mu.Lock()
	defer r.mu.Unlock()
	if key == r.accepted {
		return true
	}
	if key == r.rejected {
		return false
	}

	ok := r.evaluate(t)
	if ok {
		r.accepted = key
	} else {
		r.rejected = key
	}
	return ok
}

func (r *NearestWorkday) evaluate(t time.Time) bool {
	day := t.Day()
	switch wd := isoWeekday(t); {
	case wd == 6 || wd == 7:
		return false
	case r.Target == day:
		return true
	case wd == 1:
		// Target on the Sunday before, or the 1st falling on a Saturday.
		return r.Target == day-1 || (r.Target == 1 && day == 3)
	case wd == 5:
		if r.Target == day+1 {
			return true
		}
		// Target on the Sunday after, which is also the last day of the month.
		return r.Target == day+2 && t.AddDate(0, 0, 3).Day() == 1
	}
	return false
}

func (r *NearestWorkday) String() string {
	return fmt.Sprintf("rule.NearestWorkday(%d)", r.Target)
}

// LastWeekdayOfMonth implements "<D>L" on the weekday field.
type LastWeekdayOfMonth struct {
	Weekday int
}

func NewLastWeekdayOfMonth(weekday int) LastWeekdayOfMonth {
	if weekday == 0 {
		weekday = 7
	}
	return LastWeekdayOfMonth{Weekday: weekday}
}

func (r LastWeekdayOfMonth) Accept(t time.Time) bool {
	if isoWeekday(t) != r.Weekday {
		return false
	}
	return t.AddDate(0, 0, 7).Month() != t.Month()
}

func (r LastWeekdayOfMonth) String() string {
	return fmt.Sprintf("rule.LastWeekdayOfMonth(%d)", r.Weekday)
}

// NthWeekdayOfMonth implements "<D>#<N>": the N-th occurrence of weekday D in a month.
type NthWeekdayOfMonth struct {
	Weekday int
	Nth     int
}

func NewNthWeekdayOfMonth(weekday, nth int) NthWeekdayOfMonth {
	if weekday == 0 {
		weekday = 7
	}
	return NthWeekdayOfMonth{Weekday: weekday, Nth: nth}
}

func (r NthWeekdayOfMonth) Accept(t time.Time) bool {
	if isoWeekday(t) != r.Weekday {
		return false
	}
	before := t.AddDate(0, 0, -7*r.Nth)
	within := t.AddDate(0, 0, -7*(r.Nth-1))
	return before.Month() != t.Month() && within.Month() == t.Month()
}

func (r NthWeekdayOfMonth) String() string {
	return fmt.Sprintf("rule.NthWeekdayOfMonth(%d, %d)", r.Weekday, r.Nth)
}
