package expandcmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/yinyin/crontimesequence/internal/cliutil"
	"github.com/yinyin/crontimesequence/internal/outputfmt"
	"github.com/yinyin/crontimesequence/scheduler"
)

func New() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "expand " + cliutil.FieldsUsage,
		Short: "List every minute in a time range that matches a cron expression",
		Example: `  crontimeseq expand 19 '*/3' '*' '*' '*' --from '2012-07-20 10:39:20' --to '2012-07-22 23:05:27'
  crontimeseq expand --expr '0 9 1W * *' --from 2012-01-01 --to 2013-01-01 --format json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			fields, _, err := cliutil.ExpressionFields(cmd, args, 0)
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
			return RunRange(cmd, expr)
		},
	}
	cliutil.AddExprFlag(cmd)
	cliutil.AddOutputFlags(cmd)
	AddRangeFlags(cmd)
	return cmd
}

// AddRangeFlags registers --from, --to, --limit and --summary.
func AddRangeFlags(cmd *cobra.Command) {
	cmd.Flags().String("from", "", "Range start, inclusive (truncated to the minute).")
	cmd.Flags().String("to", "", "Range end, exclusive.")
	cmd.Flags().Int("limit", 0, "Stop after this many matches (0 = no limit).")
	cmd.Flags().Bool("summary", false, "Print a one-line summary to stderr after the list.")
}

// RunRange reads the range and output flags of cmd and prints the matches of expr.
func RunRange(cmd *cobra.Command, expr *scheduler.Expression) error {
	from, err := cliutil.TimeFlag(cmd, "from", "")
	if err != nil {
		return err
	}
	to, err := cliutil.TimeFlag(cmd, "to", "")
	if err != nil {
		return err
	}
	if !from.Before(to) {
		return fmt.Errorf("--from must be before --to")
	}
	limit, _ := cmd.Flags().GetInt("limit")
	summary, _ := cmd.Flags().GetBool("summary")
	format, layout, err := cliutil.Output(cmd)
	if err != nil {
		return err
	}
	return Write(cmd, expr, from, to, limit, summary, format, layout)
}

// Write expands expr over [from, to) and prints the matches.
func Write(cmd *cobra.Command, expr *scheduler.Expression, from, to time.Time, limit int, summary bool, format outputfmt.Format, layout string) error {
	var out []time.Time
	for t := range expr.Sequence(from, to) {
		out = append(out, t)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	if err := outputfmt.WriteTimes(cmd.OutOrStdout(), format, layout, out); err != nil {
		return err
	}
	if summary {
		_, err := fmt.Fprintln(cmd.ErrOrStderr(), outputfmt.Summary(out, layout))
		return err
	}
	return nil
}
