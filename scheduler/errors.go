package scheduler

import (
	"errors"
	"fmt"

	"github.com/yinyin/crontimesequence/rule"
)

var (
	// ErrSyntax marks a token that could not be read as the integer it has to be.
	ErrSyntax = errors.New("syntax error")
	// ErrRange marks an integer outside the domain of its field or suffix operand.
	ErrRange = errors.New("value out of range")
	// ErrUnexpected marks any other failure while building a field.
	ErrUnexpected = errors.New("unexpected error")

	ErrNoMatch = errors.New("no matching time within search window")
)

// ParseError describes a rejected token. It unwraps to its Kind (one of ErrSyntax,
// ErrRange, ErrUnexpected) and to the underlying cause.
type ParseError struct {
	Field rule.Field
	Token string
	Kind  error
	Err   error
}

func (e *ParseError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %v (token=%q)", e.Field, e.Kind, e.Token)
	}
	return fmt.Sprintf("%s: %v (token=%q): %v", e.Field, e.Kind, e.Token, e.Err)
}

func (e *ParseError) Unwrap() []error {
	out := make([]error, 0, 2)
	if e.Kind != nil {
		out = append(out, e.Kind)
	}
	if e.Err != nil {
		out = append(out, e.Err)
	}
	return out
}
