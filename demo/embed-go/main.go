package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/yinyin/crontimesequence/catalog"
	"github.com/yinyin/crontimesequence/integration"
)

func main() {
	var (
		expr   = flag.String("expr", "0 9 1W * *", "Cron line to expand.")
		policy = flag.String("policy", "closed", "Parse error policy: open|closed.")
		days   = flag.Int("days", 90, "Expand this many days from now.")
		dsn    = flag.String("catalog", "", "Optional sqlite file; when set the expression is also saved as \"demo\".")
	)
	flag.Parse()

	cfg := integration.DefaultConfig()
	cfg.Set("policy", strings.TrimSpace(*policy))
	cfg.Set("log.level", "info")
	cfg.Set("log.format", "text")
	if strings.TrimSpace(*dsn) != "" {
		cfg.Set("db.dsn", strings.TrimSpace(*dsn))
	}

	rt, err := integration.New(cfg)
	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}

	fields := strings.Fields(*expr)
	if len(fields) != 5 {
		_, _ = fmt.Fprintf(os.Stderr, "expected 5 fields, got %d\n", len(fields))
		os.Exit(1)
	}
	var five [5]string
	copy(five[:], fields)

	start := time.Now()
	times, err := rt.Expand(five, start, start.AddDate(0, 0, *days))
	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}

	out := map[string]any{"expr": *expr, "matches": times}

	if strings.TrimSpace(*dsn) != "" {
		ctx := context.Background()
		store, cleanup, err := rt.OpenCatalog(ctx)
		if err != nil {
			_, _ = fmt.Fprintln(os.Stderr, err.Error())
			os.Exit(1)
		}
		defer func() { _ = cleanup() }()

		entry, err := catalog.EntryFromLine("demo", *expr)
		if err != nil {
			_, _ = fmt.Fprintln(os.Stderr, err.Error())
			os.Exit(1)
		}
		entry.Policy = *policy
		rec, err := store.Save(ctx, entry)
		if err != nil {
			_, _ = fmt.Fprintln(os.Stderr, err.Error())
			os.Exit(1)
		}
		out["catalog_id"] = rec.ID
		out["fingerprint"] = rec.Fingerprint
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(out)
}
