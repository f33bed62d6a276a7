package nextcmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/yinyin/crontimesequence/internal/cliutil"
	"github.com/yinyin/crontimesequence/internal/outputfmt"
)

func New() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "next " + cliutil.FieldsUsage,
		Short: "Print the next matching minutes after a timestamp",
		RunE: func(cmd *cobra.Command, args []string) error {
			fields, _, err := cliutil.ExpressionFields(cmd, args, 0)
			if err != nil {
				return err
			}
			after, err := cliutil.TimeFlag(cmd, "after", "now")
			if err != nil {
				return err
			}
			count, _ := cmd.Flags().GetInt("count")
			if count <= 0 {
				return fmt.Errorf("--count must be positive")
			}
			format, layout, err := cliutil.Output(cmd)
			if err != nil {
				return err
			}
			rt, err := cliutil.Runtime()
			if err != nil {
				return err
			}
			window := rt.SearchWindow()
			if cmd.Flags().Changed("window") {
				window, _ = cmd.Flags().GetDuration("window")
			}

			expr, err := rt.ParseFields(fields)
			if err != nil {
				return err
			}
			out, err := expr.NextN(after, count, window)
			if err != nil {
				return err
			}
			return outputfmt.WriteTimes(cmd.OutOrStdout(), format, layout, out)
		},
	}
	cliutil.AddExprFlag(cmd)
	cliutil.AddOutputFlags(cmd)
	cmd.Flags().String("after", "", "Search strictly after this timestamp (default now).")
	cmd.Flags().Int("count", 1, "Number of matches to print.")
	cmd.Flags().Duration("window", 0, "How far ahead to search for each match (default from search.window).")
	return cmd
}
