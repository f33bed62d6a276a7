package outputfmt

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"gopkg.in/yaml.v3"
)

type Format string

const (
	Text Format = "text"
	JSON Format = "json"
	YAML Format = "yaml"
)

const DefaultLayout = "2006-01-02 15:04:05"

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return Text, nil
	case Text, JSON, YAML:
		return f, nil
	case "yml":
		return YAML, nil
	}
	return "", fmt.Errorf("invalid output format %q (use text|json|yaml)", s)
}

// WriteTimes renders a timestamp list: one per line for text, a list of
// formatted strings for json and yaml.
func WriteTimes(w io.Writer, f Format, layout string, times []time.Time) error {
	if strings.TrimSpace(layout) == "" {
		layout = DefaultLayout
	}
	formatted := make([]string, 0, len(times))
	for _, t := range times {
		formatted = append(formatted, t.Format(layout))
	}
	if f == Text || f == "" {
		for _, s := range formatted {
			if _, err := fmt.Fprintln(w, s); err != nil {
				return err
			}
		}
		return nil
	}
	return WriteValue(w, f, formatted)
}

// WriteValue renders v as pretty JSON or YAML. Text falls back to fmt's %v.
func WriteValue(w io.Writer, f Format, v any) error {
	switch f {
	case JSON:
		b, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, strings.TrimSpace(string(b)))
		return err
	case YAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	case Text, "":
		_, err := fmt.Fprintln(w, v)
		return err
	}
	return fmt.Errorf("invalid output format %q", string(f))
}

// Summary is a one-line human description of an expansion result.
func Summary(times []time.Time, layout string) string {
	if strings.TrimSpace(layout) == "" {
		layout = DefaultLayout
	}
	n := len(times)
	noun := "matches"
	if n == 1 {
		noun = "match"
	}
	if n == 0 {
		return "0 matches"
	}
	first, last := times[0], times[n-1]
	if n == 1 {
		return fmt.Sprintf("1 match at %s", first.Format(layout))
	}
	span := strings.TrimSpace(humanize.RelTime(first, last, "", ""))
	return fmt.Sprintf("%s %s from %s to %s (%s)", humanize.Comma(int64(n)), noun, first.Format(layout), last.Format(layout), span)
}
