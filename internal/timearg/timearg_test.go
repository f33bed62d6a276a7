package timearg

import (
	"testing"
	"time"
)

func TestParse(t *testing.T) {
	loc := time.FixedZone("UTC+8", 8*3600)
	now := time.Date(2026, 10, 15, 9, 30, 0, 0, time.UTC)

	cases := []struct {
		in   string
		want time.Time
	}{
		{"now", now.In(loc)},
		{" NOW ", now.In(loc)},
		{"2012-07-20T10:39:20Z", time.Date(2012, 7, 20, 10, 39, 20, 0, time.UTC)},
		{"2012-07-20 10:39:20", time.Date(2012, 7, 20, 10, 39, 20, 0, loc)},
		{"2012-07-20T10:39:20", time.Date(2012, 7, 20, 10, 39, 20, 0, loc)},
		{"2012-07-20 10:39", time.Date(2012, 7, 20, 10, 39, 0, 0, loc)},
		{"2012-07-20", time.Date(2012, 7, 20, 0, 0, 0, 0, loc)},
	}
	for _, tc := range cases {
		got, err := Parse(tc.in, now, loc)
		if err != nil {
			t.Fatalf("Parse(%q): %v", tc.in, err)
		}
		if !got.Equal(tc.want) {
			t.Fatalf("Parse(%q) = %s, want %s", tc.in, got, tc.want)
		}
	}

	for _, bad := range []string{"", "yesterday", "2012-13-01", "20/07/2012"} {
		if _, err := Parse(bad, now, loc); err == nil {
			t.Fatalf("Parse(%q): expected error", bad)
		}
	}
}
