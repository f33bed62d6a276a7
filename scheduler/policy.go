package scheduler

import (
	"fmt"
	"strings"
)

// ErrorPolicy decides what a parser does with a rejected token.
type ErrorPolicy int

const (
	// FailOpen logs the problem and substitutes the most conservative fallback:
	// an empty rule list, or the undecimated base for a malformed step.
	FailOpen ErrorPolicy = iota
	// FailClosed returns the error to the caller.
	FailClosed
)

func (p ErrorPolicy) String() string {
	switch p {
	case FailOpen:
		return "open"
	case FailClosed:
		return "closed"
	}
	return fmt.Sprintf("policy(%d)", int(p))
}

func ParseErrorPolicy(s string) (ErrorPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "open", "fail-open", "lenient":
		return FailOpen, nil
	case "closed", "fail-closed", "strict":
		return FailClosed, nil
	}
	return FailOpen, fmt.Errorf("invalid error policy %q (use open|closed)", s)
}
