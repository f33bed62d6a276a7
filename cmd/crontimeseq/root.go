package main

import (
	"github.com/spf13/cobra"
	"github.com/yinyin/crontimesequence/cmd/crontimeseq/catalogcmd"
	"github.com/yinyin/crontimesequence/cmd/crontimeseq/expandcmd"
	"github.com/yinyin/crontimesequence/cmd/crontimeseq/explaincmd"
	"github.com/yinyin/crontimesequence/cmd/crontimeseq/matchcmd"
	"github.com/yinyin/crontimesequence/cmd/crontimeseq/nextcmd"
	"github.com/yinyin/crontimesequence/integration"
	"github.com/yinyin/crontimesequence/internal/configutil"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crontimeseq",
		Short: "Expand cron expressions into the minutes they match",
		Long: `crontimeseq parses five-field cron expressions (minute hour day month weekday)
and lists, tests or searches the minutes they match.

Beyond the usual "*", lists, ranges and steps it understands "L" (last day of
month), "<N>W" (nearest weekday), "<D>L" (last weekday D) and "<D>#<N>"
(N-th weekday D). Fields may be given positionally or as one --expr line.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			configFile, _ := cmd.Flags().GetString("config")
			integration.ApplyViperDefaults()
			if _, err := configutil.Load(configFile); err != nil {
				return err
			}
			return configutil.BindFlags(cmd.Root(), map[string]string{
				"policy":     "policy",
				"log-level":  "log.level",
				"log-format": "log.format",
				"db-driver":  "db.driver",
				"db-dsn":     "db.dsn",
			})
		},
	}

	pf := cmd.PersistentFlags()
	pf.String("config", "", "Config file (default ./crontimeseq.yaml or ~/.crontimeseq/config.yaml).")
	pf.String("policy", "open", "Parse error policy: open (log and fall back) or closed (fail).")
	pf.String("log-level", "warn", "Log level: debug|info|warn|error.")
	pf.String("log-format", "auto", "Log format: auto|text|json.")
	pf.String("db-driver", "sqlite", "Catalog database driver: sqlite|postgres.")
	pf.String("db-dsn", "", "Catalog database DSN (default ~/.crontimeseq/catalog.sqlite).")

	cmd.AddCommand(expandcmd.New())
	cmd.AddCommand(matchcmd.New())
	cmd.AddCommand(explaincmd.New())
	cmd.AddCommand(nextcmd.New())
	cmd.AddCommand(catalogcmd.New())
	return cmd
}
