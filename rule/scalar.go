package rule

import (
	"fmt"
	"time"
)

// ScalarMatch accepts timestamps whose Field component equals Value.
// For Weekday a stored 0 stands for Sunday and is compared as 7.
type ScalarMatch struct {
	Field Field
	Value int
}

func NewScalarMatch(f Field, v int) ScalarMatch {
	return ScalarMatch{Field: f, Value: v}
}

func (r ScalarMatch) Accept(t time.Time) bool {
	want := r.Value
	if r.Field == Weekday && want == 0 {
		want = 7
	}
	return r.Field.Value(t) == want
}

func (r ScalarMatch) String() string {
	return fmt.Sprintf("rule.ScalarMatch(%d, %q)", r.Value, r.Field.String())
}
