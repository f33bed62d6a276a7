package matchcmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/yinyin/crontimesequence/internal/cliutil"
	"github.com/yinyin/crontimesequence/internal/outputfmt"
)

// ErrNoMatch is returned with --exit-code when the time does not match.
var ErrNoMatch = errors.New("time does not match expression")

type result struct {
	At    string `json:"at" yaml:"at"`
	Match bool   `json:"match" yaml:"match"`
}

func New() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "match " + cliutil.FieldsUsage,
		Short: "Report whether a timestamp matches a cron expression",
		RunE: func(cmd *cobra.Command, args []string) error {
			fields, _, err := cliutil.ExpressionFields(cmd, args, 0)
			if err != nil {
				return err
			}
			at, err := cliutil.TimeFlag(cmd, "at", "now")
			if err != nil {
				return err
			}
			format, layout, err := cliutil.Output(cmd)
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

			ok := expr.Matches(at)
			if format == outputfmt.Text {
				if _, err := fmt.Fprintln(cmd.OutOrStdout(), ok); err != nil {
					return err
				}
			} else if err := outputfmt.WriteValue(cmd.OutOrStdout(), format, result{At: at.Format(layout), Match: ok}); err != nil {
				return err
			}

			if exitCode, _ := cmd.Flags().GetBool("exit-code"); exitCode && !ok {
				return ErrNoMatch
			}
			return nil
		},
	}
	cliutil.AddExprFlag(cmd)
	cliutil.AddOutputFlags(cmd)
	cmd.Flags().String("at", "", "Timestamp to test (default now). Seconds are ignored by the minute fields.")
	cmd.Flags().Bool("exit-code", false, "Exit with status 1 when the timestamp does not match.")
	return cmd
}
