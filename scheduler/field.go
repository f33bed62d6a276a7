package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/yinyin/crontimesequence/rule"
)

// fieldSpec parameterises the shared comma/slash/dash grammar for one cron field.
type fieldSpec struct {
	field rule.Field

	// literal bounds, also the clamp applied to "a-b" ranges
	min, max int
	// what a nested "*" expands to
	wildLo, wildHi int

	// suffix handles field-specific tokens; handled=false falls through to the literal case.
	suffix func(p *Parser, spec *fieldSpec, tok string) (rules []rule.Rule, handled bool, err error)
}

var fieldSpecs = [5]fieldSpec{
	rule.Minute:  {field: rule.Minute, min: 0, max: 59, wildLo: 0, wildHi: 59},
	rule.Hour:    {field: rule.Hour, min: 0, max: 23, wildLo: 0, wildHi: 23},
	rule.Day:     {field: rule.Day, min: 1, max: 31, wildLo: 1, wildHi: 31, suffix: daySuffix},
	rule.Month:   {field: rule.Month, min: 1, max: 12, wildLo: 1, wildHi: 12},
	rule.Weekday: {field: rule.Weekday, min: 0, max: 7, wildLo: 1, wildHi: 7, suffix: weekdaySuffix},
}

func specFor(f rule.Field) (*fieldSpec, error) {
	if f < rule.Minute || f > rule.Weekday {
		return nil, fmt.Errorf("unknown cron field %v", f)
	}
	return &fieldSpecs[f], nil
}

// Parser turns cron field text into rule sets under one error policy.
// It holds no per-parse state and may be shared.
type Parser struct {
	policy ErrorPolicy
	log    *slog.Logger
}

func NewParser(policy ErrorPolicy, log *slog.Logger) *Parser {
	if log == nil {
		log = slog.Default()
	}
	return &Parser{policy: policy, log: log}
}

func (p *Parser) Policy() ErrorPolicy { return p.policy }

// ParseField parses one field token into its ordered rules. A bare "*" expands to
// the field's full range here; only ParseExpression turns it into an unconstrained set.
func (p *Parser) ParseField(f rule.Field, token string) (rule.Set, error) {
	spec, err := specFor(f)
	if err != nil {
		return rule.Set{}, err
	}
	rules, err := p.parse(spec, token)
	if err != nil {
		return rule.Set{}, err
	}
	return rule.NewSet(rules...), nil
}

// ParseFieldRange builds the inclusive range left..right of field f, clamped to the
// field's bounds.
func (p *Parser) ParseFieldRange(f rule.Field, left, right string) (rule.Set, error) {
	spec, err := specFor(f)
	if err != nil {
		return rule.Set{}, err
	}
	rules, err := p.rangeRules(spec, left, right)
	if err != nil {
		return rule.Set{}, err
	}
	return rule.NewSet(rules...), nil
}

func ParseField(f rule.Field, token string, policy ErrorPolicy) (rule.Set, error) {
	return NewParser(policy, nil).ParseField(f, token)
}

func ParseFieldRange(f rule.Field, left, right string, policy ErrorPolicy) (rule.Set, error) {
	return NewParser(policy, nil).ParseFieldRange(f, left, right)
}

func (p *Parser) parse(spec *fieldSpec, tok string) ([]rule.Rule, error) {
	tok = strings.TrimSpace(tok)

	if strings.Contains(tok, ",") {
		var out []rule.Rule
		for _, part := range strings.Split(tok, ",") {
			rules, err := p.parse(spec, part)
			if err != nil {
				return nil, err
			}
			out = append(out, rules...)
		}
		return out, nil
	}

	if strings.Contains(tok, "/") {
		parts := strings.Split(tok, "/")
		base, err := p.parse(spec, parts[0])
		if err != nil {
			return nil, err
		}
		step, err := atoi(parts[1])
		if err != nil {
			return base, p.fail(spec, tok, ErrSyntax, err, "cron_step_invalid")
		}
		if step <= 0 {
			return base, p.fail(spec, tok, ErrRange, fmt.Errorf("step %d must be positive", step), "cron_step_invalid")
		}
		out := make([]rule.Rule, 0, (len(base)+step-1)/step)
		for i := 0; i < len(base); i += step {
			out = append(out, base[i])
		}
		return out, nil
	}

	if strings.Contains(tok, "-") {
		parts := strings.Split(tok, "-")
		return p.rangeRules(spec, parts[0], parts[1])
	}

	return p.single(spec, tok)
}

func (p *Parser) rangeRules(spec *fieldSpec, left, right string) ([]rule.Rule, error) {
	lo, err := atoi(left)
	if err == nil {
		var hi int
		if hi, err = atoi(right); err == nil {
			return spec.expand(lo, hi), nil
		}
	}
	token := strings.TrimSpace(left) + "-" + strings.TrimSpace(right)
	return nil, p.fail(spec, token, ErrSyntax, err, "cron_range_invalid")
}

func (p *Parser) single(spec *fieldSpec, tok string) ([]rule.Rule, error) {
	if tok == "*" {
		return spec.expand(spec.wildLo, spec.wildHi), nil
	}
	if spec.suffix != nil {
		if rules, handled, err := spec.suffix(p, spec, tok); handled {
			return rules, err
		}
	}
	v, err := atoi(tok)
	if err != nil {
		return nil, p.fail(spec, tok, ErrSyntax, err, "cron_value_invalid")
	}
	if v < spec.min || v > spec.max {
		return nil, p.fail(spec, tok, ErrRange, fmt.Errorf("%d not in %d-%d", v, spec.min, spec.max), "cron_value_out_of_range")
	}
	return []rule.Rule{rule.NewScalarMatch(spec.field, v)}, nil
}

// expand emits one scalar rule per value of lo..hi after clamping to the field bounds.
func (spec *fieldSpec) expand(lo, hi int) []rule.Rule {
	if lo < spec.min {
		lo = spec.min
	}
	if hi > spec.max {
		hi = spec.max
	}
	if lo > hi {
		return nil
	}
	out := make([]rule.Rule, 0, hi-lo+1)
	for v := lo; v <= hi; v++ {
		out = append(out, rule.NewScalarMatch(spec.field, v))
	}
	return out
}

func daySuffix(p *Parser, spec *fieldSpec, tok string) ([]rule.Rule, bool, error) {
	if tok == "L" {
		return []rule.Rule{rule.LastDay}, true, nil
	}
	if len(tok) > 1 && strings.HasSuffix(tok, "W") {
		n, err := atoi(tok[:len(tok)-1])
		if err != nil {
			return nil, true, p.fail(spec, tok, ErrSyntax, err, "cron_workday_invalid")
		}
		if n < 1 || n > 31 {
			return nil, true, p.fail(spec, tok, ErrRange, fmt.Errorf("day %d not in 1-31", n), "cron_workday_out_of_range")
		}
		return []rule.Rule{rule.NewNearestWorkday(n)}, true, nil
	}
	return nil, false, nil
}

func weekdaySuffix(p *Parser, spec *fieldSpec, tok string) ([]rule.Rule, bool, error) {
	if len(tok) > 1 && strings.HasSuffix(tok, "L") {
		wd, err := atoi(tok[:len(tok)-1])
		if err != nil {
			return nil, true, p.fail(spec, tok, ErrSyntax, err, "cron_last_weekday_invalid")
		}
		if wd < 0 || wd > 7 {
			return nil, true, p.fail(spec, tok, ErrRange, fmt.Errorf("weekday %d not in 0-7", wd), "cron_last_weekday_out_of_range")
		}
		return []rule.Rule{rule.NewLastWeekdayOfMonth(wd)}, true, nil
	}
	if left, right, ok := strings.Cut(tok, "#"); ok {
		wd, err := atoi(left)
		if err != nil {
			return nil, true, p.fail(spec, tok, ErrSyntax, err, "cron_nth_weekday_invalid")
		}
		nth, err := atoi(right)
		if err != nil {
			return nil, true, p.fail(spec, tok, ErrSyntax, err, "cron_nth_weekday_invalid")
		}
		if wd < 0 || wd > 7 || nth < 1 || nth > 5 {
			return nil, true, p.fail(spec, tok, ErrRange, fmt.Errorf("weekday %d / occurrence %d not in 0-7 / 1-5", wd, nth), "cron_nth_weekday_out_of_range")
		}
		return []rule.Rule{rule.NewNthWeekdayOfMonth(wd, nth)}, true, nil
	}
	return nil, false, nil
}

// fail records a rejected token. It returns the error only under FailClosed, so
// callers can return their fallback alongside it unconditionally.
func (p *Parser) fail(spec *fieldSpec, tok string, kind, cause error, msg string) error {
	perr := &ParseError{Field: spec.field, Token: tok, Kind: kind, Err: cause}
	level := slog.LevelError
	if kind == ErrRange {
		level = slog.LevelWarn
	}
	p.log.Log(context.Background(), level, msg,
		"field", spec.field.String(),
		"token", tok,
		"policy", p.policy.String(),
		"error", cause,
	)
	if p.policy == FailClosed {
		return perr
	}
	return nil
}

func atoi(s string) (int, error) {
	return strconv.Atoi(strings.TrimSpace(s))
}
