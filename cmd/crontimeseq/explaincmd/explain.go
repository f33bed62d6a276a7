package explaincmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/yinyin/crontimesequence/internal/cliutil"
	"github.com/yinyin/crontimesequence/internal/outputfmt"
	"github.com/yinyin/crontimesequence/rule"
	"github.com/yinyin/crontimesequence/scheduler"
)

type fieldView struct {
	Field         string   `json:"field" yaml:"field"`
	Token         string   `json:"token" yaml:"token"`
	Unconstrained bool     `json:"unconstrained" yaml:"unconstrained"`
	Rules         []string `json:"rules" yaml:"rules"`
}

func New() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "explain " + cliutil.FieldsUsage,
		Short: "Show the rules each field of a cron expression parses into",
		RunE: func(cmd *cobra.Command, args []string) error {
			fields, _, err := cliutil.ExpressionFields(cmd, args, 0)
			if err != nil {
				return err
			}
			format, _, err := cliutil.Output(cmd)
			if err != nil {
				return err
			}
			rt, err := cliutil.Runtime()
			if err != nil {
				return err
			}
			expr, err := rt.ParseFields(fields)
			if err != nil {
				return err
			}

			views := Views(fields, expr)
			if format != outputfmt.Text {
				return outputfmt.WriteValue(cmd.OutOrStdout(), format, views)
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, v := range views {
				desc := "*"
				if !v.Unconstrained {
					desc = fmt.Sprintf("%d rules", len(v.Rules))
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\n", v.Field, v.Token, desc)
				for _, r := range v.Rules {
					fmt.Fprintf(tw, "\t\t%s\n", r)
				}
			}
			return tw.Flush()
		},
	}
	cliutil.AddExprFlag(cmd)
	cliutil.AddOutputFlags(cmd)
	return cmd
}

// Views describes each field of expr next to the token it came from.
func Views(tokens [5]string, expr *scheduler.Expression) []fieldView {
	sets := expr.Fields()
	out := make([]fieldView, 0, len(rule.Fields))
	for _, f := range rule.Fields {
		set := sets[f]
		v := fieldView{
			Field:         f.String(),
			Token:         tokens[f],
			Unconstrained: set.IsUnconstrained(),
			Rules:         []string{},
		}
		for _, r := range set.Rules() {
			v.Rules = append(v.Rules, r.String())
		}
		out = append(out, v)
	}
	return out
}
