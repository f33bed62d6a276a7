// Package rule holds the calendar predicates a parsed cron field is made of.
//
// A Rule answers one question about a timestamp. A Set groups the rules of a single
// cron field: the field is satisfied when any rule of the set accepts, or always when
// the set is unconstrained.
package rule

import (
	"fmt"
	"strings"
	"time"
)

type Rule interface {
	Accept(t time.Time) bool
	String() string
}

type Field int

const (
	Minute Field = iota
	Hour
	Day
	Month
	Weekday
)

// Fields lists the cron fields in positional order.
var Fields = [5]Field{Minute, Hour, Day, Month, Weekday}

var fieldNames = [...]string{"minute", "hour", "day", "month", "weekday"}

func (f Field) String() string {
	if f < Minute || f > Weekday {
		return fmt.Sprintf("field(%d)", int(f))
	}
	return fieldNames[f]
}

// Bounds returns the inclusive range a literal value of the field may take.
// Weekday admits both 0 and 7 for Sunday.
func (f Field) Bounds() (min, max int) {
	switch f {
	case Minute:
		return 0, 59
	case Hour:
		return 0, 23
	case Day:
		return 1, 31
	case Month:
		return 1, 12
	case Weekday:
		return 0, 7
	}
	return 0, -1
}

// Value extracts the field's calendar component from t. Weekday uses the ISO
// numbering (Monday=1 ... Sunday=7).
func (f Field) Value(t time.Time) int {
	switch f {
	case Minute:
		return t.Minute()
	case Hour:
		return t.Hour()
	case Day:
		return t.Day()
	case Month:
		return int(t.Month())
	case Weekday:
		return isoWeekday(t)
	}
	return -1
}

func ParseFieldName(name string) (Field, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	switch name {
	case "minute", "min":
		return Minute, nil
	case "hour":
		return Hour, nil
	case "day", "dom", "day-of-month":
		return Day, nil
	case "month":
		return Month, nil
	case "weekday", "dow", "day-of-week":
		return Weekday, nil
	}
	return 0, fmt.Errorf("unknown cron field %q", name)
}

func isoWeekday(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}

// Set is the rule collection of one cron field.
// The zero value is an empty constrained set and accepts nothing.
type Set struct {
	rules         []Rule
	unconstrained bool
}

// Any returns the set that places no restriction on its field.
func Any() Set {
	return Set{unconstrained: true}
}

func NewSet(rules ...Rule) Set {
	out := make([]Rule, 0, len(rules))
	for _, r := range rules {
		if r != nil {
			out = append(out, r)
		}
	}
	return Set{rules: out}
}

func (s Set) IsUnconstrained() bool { return s.unconstrained }

// Len is the number of rules; an unconstrained set has none.
func (s Set) Len() int { return len(s.rules) }

// Rules returns a copy of the ordered rules.
func (s Set) Rules() []Rule {
	if len(s.rules) == 0 {
		return nil
	}
	out := make([]Rule, len(s.rules))
	copy(out, s.rules)
	return out
}

func (s Set) Accept(t time.Time) bool {
	if s.unconstrained {
		return true
	}
	for _, r := range s.rules {
		if r.Accept(t) {
			return true
		}
	}
	return false
}

func (s Set) String() string {
	if s.unconstrained {
		return "*"
	}
	parts := make([]string, 0, len(s.rules))
	for _, r := range s.rules {
		parts = append(parts, r.String())
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
