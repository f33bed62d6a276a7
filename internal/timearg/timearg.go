// Package timearg parses the timestamps accepted on the command line.
package timearg

import (
	"fmt"
	"strings"
	"time"
)

// Layouts are tried in order after RFC 3339. They carry no zone and are read in
// the caller's location.
var Layouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// Parse reads s as RFC 3339, one of Layouts in loc, or "now".
func Parse(s string, now time.Time, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if loc == nil {
		loc = time.Local
	}
	if s == "" {
		return time.Time{}, fmt.Errorf("empty time")
	}
	if strings.EqualFold(s, "now") {
		return now.In(loc), nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	for _, layout := range Layouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid time %q (use RFC3339, \"2006-01-02 15:04:05\", \"2006-01-02 15:04\", \"2006-01-02\" or now)", s)
}
