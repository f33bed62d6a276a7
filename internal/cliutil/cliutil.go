// Package cliutil holds the argument handling shared by the crontimeseq subcommands.
package cliutil

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/yinyin/crontimesequence/integration"
	"github.com/yinyin/crontimesequence/internal/configutil"
	"github.com/yinyin/crontimesequence/internal/outputfmt"
	"github.com/yinyin/crontimesequence/internal/timearg"
)

// Now is replaced in tests.
var Now = time.Now

const FieldsUsage = "<minute> <hour> <day> <month> <weekday>"

func AddExprFlag(cmd *cobra.Command) {
	cmd.Flags().String("expr", "", "Whole cron line, e.g. \"19 */3 * * *\" (instead of five positional fields).")
}

// ExpressionFields returns the five field tokens from --expr or from the first
// five positional args. rest holds the positional args left over.
func ExpressionFields(cmd *cobra.Command, args []string, extra int) (fields [5]string, rest []string, err error) {
	expr, _ := cmd.Flags().GetString("expr")
	expr = strings.TrimSpace(expr)
	if expr != "" {
		parts := strings.Fields(expr)
		if len(parts) != 5 {
			return fields, nil, fmt.Errorf("invalid --expr (expected 5 fields): %q", expr)
		}
		if len(args) != extra {
			return fields, nil, fmt.Errorf("expected %d positional args with --expr, got %d", extra, len(args))
		}
		copy(fields[:], parts)
		return fields, args, nil
	}
	if len(args) != 5+extra {
		return fields, nil, fmt.Errorf("expected %d positional args (%s) or --expr, got %d", 5+extra, FieldsUsage, len(args))
	}
	copy(fields[:], args[extra:extra+5])
	return fields, args[:extra], nil
}

// Runtime wires the integration layer against the already loaded configuration.
func Runtime() (*integration.Runtime, error) {
	return integration.New(integration.DefaultConfig())
}

// TimeFlag parses a timestamp flag; an empty value yields fallback.
func TimeFlag(cmd *cobra.Command, flag, fallback string) (time.Time, error) {
	raw, _ := cmd.Flags().GetString(flag)
	if strings.TrimSpace(raw) == "" {
		raw = fallback
	}
	if strings.TrimSpace(raw) == "" {
		return time.Time{}, fmt.Errorf("missing --%s", flag)
	}
	t, err := timearg.Parse(raw, Now(), time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("--%s: %w", flag, err)
	}
	return t, nil
}

func AddOutputFlags(cmd *cobra.Command) {
	cmd.Flags().String("format", "", "Output format: text|json|yaml (default from output.format).")
	cmd.Flags().String("layout", "", "Go time layout for printed timestamps (default from output.layout).")
}

func Output(cmd *cobra.Command) (outputfmt.Format, string, error) {
	f, err := outputfmt.ParseFormat(configutil.FlagOrViperString(cmd, "format", "output.format"))
	if err != nil {
		return "", "", err
	}
	layout := configutil.FlagOrViperString(cmd, "layout", "output.layout")
	if strings.TrimSpace(layout) == "" {
		layout = outputfmt.DefaultLayout
	}
	return f, layout, nil
}
