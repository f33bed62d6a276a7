package scheduler

import (
	"fmt"
	"strings"

	"github.com/yinyin/crontimesequence/rule"
)

// Expression is a parsed five-field cron rule: one rule.Set per field in the order
// minute, hour, day, month, weekday. It is not modified after construction.
type Expression struct {
	sets [5]rule.Set
}

func NewExpression(minute, hour, day, month, weekday rule.Set) *Expression {
	return &Expression{sets: [5]rule.Set{minute, hour, day, month, weekday}}
}

func (e *Expression) Field(f rule.Field) rule.Set {
	if f < rule.Minute || f > rule.Weekday {
		return rule.Set{}
	}
	return e.sets[f]
}

func (e *Expression) Fields() [5]rule.Set { return e.sets }

func (e *Expression) String() string {
	var b strings.Builder
	for i, f := range rule.Fields {
		if i > 0 {
			b.WriteString(" ")
		}
		b.WriteString(f.String())
		b.WriteString("=")
		b.WriteString(e.sets[f].String())
	}
	return b.String()
}

// ParseExpression builds an Expression from the five field tokens. A field that is
// exactly "*" becomes unconstrained instead of being enumerated.
func (p *Parser) ParseExpression(minute, hour, day, month, weekday string) (*Expression, error) {
	raw := [5]string{minute, hour, day, month, weekday}
	var sets [5]rule.Set
	for i, f := range rule.Fields {
		set, err := p.parseTopLevel(f, raw[i])
		if err != nil {
			return nil, err
		}
		sets[i] = set
	}
	return &Expression{sets: sets}, nil
}

// Parse reads a whitespace-separated five-field line such as "19 */3 * * *".
func (p *Parser) Parse(expr string) (*Expression, error) {
	fields := strings.Fields(strings.TrimSpace(expr))
	if len(fields) != 5 {
		return nil, fmt.Errorf("invalid cron expression (expected 5 fields): %q", expr)
	}
	return p.ParseExpression(fields[0], fields[1], fields[2], fields[3], fields[4])
}

func ParseExpression(minute, hour, day, month, weekday string, policy ErrorPolicy) (*Expression, error) {
	return NewParser(policy, nil).ParseExpression(minute, hour, day, month, weekday)
}

func Parse(expr string, policy ErrorPolicy) (*Expression, error) {
	return NewParser(policy, nil).Parse(expr)
}

func (p *Parser) parseTopLevel(f rule.Field, raw string) (set rule.Set, err error) {
	tok := strings.TrimSpace(raw)
	if tok == "*" {
		return rule.Any(), nil
	}

	defer func() {
		r := recover()
		if r == nil {
			return
		}
		perr := &ParseError{Field: f, Token: tok, Kind: ErrUnexpected, Err: fmt.Errorf("%v", r)}
		p.log.Error("cron_field_unexpected_error",
			"field", f.String(),
			"token", tok,
			"policy", p.policy.String(),
			"error", perr.Err,
		)
		if p.policy == FailClosed {
			set, err = rule.Set{}, perr
			return
		}
		set, err = rule.Any(), nil
	}()

	return p.ParseField(f, tok)
}
