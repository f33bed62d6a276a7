package catalogcmd

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/yinyin/crontimesequence/catalog"
	"github.com/yinyin/crontimesequence/cmd/crontimeseq/expandcmd"
	"github.com/yinyin/crontimesequence/db/models"
	"github.com/yinyin/crontimesequence/internal/cliutil"
	"github.com/yinyin/crontimesequence/internal/outputfmt"
)

type scheduleView struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Expr        string `json:"expr" yaml:"expr"`
	Policy      string `json:"policy" yaml:"policy"`
	Fingerprint string `json:"fingerprint" yaml:"fingerprint"`
	Note        string `json:"note,omitempty" yaml:"note,omitempty"`
	UpdatedAt   string `json:"updated_at_utc" yaml:"updated_at_utc"`
}

func viewOf(rec models.CronSchedule) scheduleView {
	v := scheduleView{
		ID:          rec.ID,
		Name:        rec.Name,
		Expr:        rec.Line(),
		Policy:      rec.Policy,
		Fingerprint: rec.Fingerprint,
		Note:        rec.Note,
	}
	if rec.UpdatedAt != 0 {
		v.UpdatedAt = time.Unix(rec.UpdatedAt, 0).UTC().Format(time.RFC3339)
	}
	return v
}

func New() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Manage named cron expressions stored in the catalog database",
	}
	cmd.AddCommand(newSaveCmd())
	cmd.AddCommand(newListCmd())
	cmd.AddCommand(newShowCmd())
	cmd.AddCommand(newRemoveCmd())
	cmd.AddCommand(newImportCmd())
	cmd.AddCommand(newExpandCmd())
	return cmd
}

// withStore opens the catalog for the duration of fn.
func withStore(ctx context.Context, fn func(*catalog.Store) error) error {
	rt, err := cliutil.Runtime()
	if err != nil {
		return err
	}
	store, cleanup, err := rt.OpenCatalog(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = cleanup()
	}()
	return fn(store)
}

func writeSchedules(cmd *cobra.Command, recs []models.CronSchedule) error {
	format, _, err := cliutil.Output(cmd)
	if err != nil {
		return err
	}
	views := make([]scheduleView, 0, len(recs))
	for _, rec := range recs {
		views = append(views, viewOf(rec))
	}
	if format != outputfmt.Text {
		return outputfmt.WriteValue(cmd.OutOrStdout(), format, views)
	}
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	for _, v := range views {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", v.Name, v.Expr, v.Policy, v.Note)
	}
	return tw.Flush()
}

func newSaveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "save <name> " + cliutil.FieldsUsage,
		Short: "Create or replace a named expression",
		RunE: func(cmd *cobra.Command, args []string) error {
			fields, rest, err := cliutil.ExpressionFields(cmd, args, 1)
			if err != nil {
				return err
			}
			policy, _ := cmd.Flags().GetString("entry-policy")
			note, _ := cmd.Flags().GetString("note")
			entry := catalog.Entry{
				Name:    rest[0],
				Minute:  fields[0],
				Hour:    fields[1],
				Day:     fields[2],
				Month:   fields[3],
				Weekday: fields[4],
				Policy:  policy,
				Note:    note,
			}
			return withStore(cmd.Context(), func(store *catalog.Store) error {
				rec, err := store.Save(cmd.Context(), entry)
				if err != nil {
					return err
				}
				return writeSchedules(cmd, []models.CronSchedule{rec})
			})
		},
	}
	cliutil.AddExprFlag(cmd)
	cliutil.AddOutputFlags(cmd)
	cmd.Flags().String("entry-policy", "open", "Error policy stored with the entry: open|closed.")
	cmd.Flags().String("note", "", "Free-form note.")
	return cmd
}

func newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List catalog expressions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var opts catalog.ListOptions
			opts.Query, _ = cmd.Flags().GetString("query")
			opts.Fingerprint, _ = cmd.Flags().GetString("fingerprint")
			opts.OrderBy, _ = cmd.Flags().GetString("order-by")
			opts.Limit, _ = cmd.Flags().GetInt("limit")
			return withStore(cmd.Context(), func(store *catalog.Store) error {
				recs, err := store.List(cmd.Context(), opts)
				if err != nil {
					return err
				}
				return writeSchedules(cmd, recs)
			})
		},
	}
	cliutil.AddOutputFlags(cmd)
	cmd.Flags().String("query", "", "Substring match on name or note; space-separated keywords must all match.")
	cmd.Flags().String("fingerprint", "", "Only entries with this field fingerprint.")
	cmd.Flags().String("order-by", "name_asc", "Sort order: name_asc|updated_at_desc|created_at_asc.")
	cmd.Flags().Int("limit", 0, "Max results (default 50, max 500).")
	return cmd
}

func newShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <id|name>",
		Short: "Show one catalog expression",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd.Context(), func(store *catalog.Store) error {
				rec, err := store.Get(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return writeSchedules(cmd, []models.CronSchedule{rec})
			})
		},
	}
	cliutil.AddOutputFlags(cmd)
	return cmd
}

func newRemoveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remove <id|name>",
		Short: "Delete a catalog expression",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd.Context(), func(store *catalog.Store) error {
				rec, err := store.Remove(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "removed %s (%s)\n", rec.Name, rec.ID)
				return err
			})
		},
	}
	return cmd
}

func newImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <file.yaml|file.jsonc>",
		Short: "Save every expression listed in a YAML or JSONC file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd.Context(), func(store *catalog.Store) error {
				recs, err := store.ImportFile(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return writeSchedules(cmd, recs)
			})
		},
	}
	cliutil.AddOutputFlags(cmd)
	return cmd
}

func newExpandCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "expand <id|name>",
		Short: "Expand a catalog expression over a time range",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd.Context(), func(store *catalog.Store) error {
				rec, err := store.Get(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				expr, err := store.Expression(rec)
				if err != nil {
					return err
				}
				return expandcmd.RunRange(cmd, expr)
			})
		},
	}
	cliutil.AddOutputFlags(cmd)
	expandcmd.AddRangeFlags(cmd)
	return cmd
}
