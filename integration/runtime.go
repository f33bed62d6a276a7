package integration

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/yinyin/crontimesequence/catalog"
	"github.com/yinyin/crontimesequence/db"
	"github.com/yinyin/crontimesequence/internal/logutil"
	"github.com/yinyin/crontimesequence/scheduler"
)

// Runtime is the reusable wiring entrypoint for third-party embedding.
type Runtime struct {
	cfg Config
}

func New(cfg Config) (*Runtime, error) {
	if cfg.Overrides == nil {
		cfg.Overrides = map[string]any{}
	}
	ApplyViperDefaults()

	for k, v := range cfg.Overrides {
		key := strings.TrimSpace(k)
		if key == "" {
			continue
		}
		viper.Set(key, v)
	}

	rt := &Runtime{cfg: cfg}
	if _, err := rt.Policy(); err != nil {
		return nil, err
	}
	return rt, nil
}

// ApplyViperDefaults registers the default value of every configuration key.
func ApplyViperDefaults() {
	viper.SetDefault("policy", scheduler.FailOpen.String())

	viper.SetDefault("log.level", "warn")
	viper.SetDefault("log.format", "auto")

	viper.SetDefault("output.format", "text")
	viper.SetDefault("output.layout", "2006-01-02 15:04:05")

	dbDefaults := db.DefaultConfig()
	viper.SetDefault("db.driver", dbDefaults.Driver)
	viper.SetDefault("db.dsn", dbDefaults.DSN)
	viper.SetDefault("db.auto_migrate", dbDefaults.AutoMigrate)
	viper.SetDefault("db.pool.max_open_conns", dbDefaults.Pool.MaxOpenConns)
	viper.SetDefault("db.pool.max_idle_conns", dbDefaults.Pool.MaxIdleConns)
	viper.SetDefault("db.pool.conn_max_lifetime", dbDefaults.Pool.ConnMaxLifetime)
	viper.SetDefault("db.sqlite.busy_timeout_ms", dbDefaults.SQLite.BusyTimeoutMs)
	viper.SetDefault("db.sqlite.wal", dbDefaults.SQLite.WAL)
	viper.SetDefault("db.sqlite.foreign_keys", dbDefaults.SQLite.ForeignKeys)

	viper.SetDefault("search.window", scheduler.DefaultSearchWindow)
}

func (rt *Runtime) Policy() (scheduler.ErrorPolicy, error) {
	return scheduler.ParseErrorPolicy(viper.GetString("policy"))
}

// Logger builds the stderr logger from log.level and log.format.
func (rt *Runtime) Logger() (*slog.Logger, error) {
	return logutil.LoggerFromViper()
}

func (rt *Runtime) Parser() (*scheduler.Parser, error) {
	policy, err := rt.Policy()
	if err != nil {
		return nil, err
	}
	logger, err := rt.Logger()
	if err != nil {
		return nil, err
	}
	return scheduler.NewParser(policy, logger), nil
}

func (rt *Runtime) SearchWindow() time.Duration {
	if w := viper.GetDuration("search.window"); w > 0 {
		return w
	}
	return scheduler.DefaultSearchWindow
}

func (rt *Runtime) ParseLine(line string) (*scheduler.Expression, error) {
	p, err := rt.Parser()
	if err != nil {
		return nil, err
	}
	return p.Parse(line)
}

func (rt *Runtime) ParseFields(fields [5]string) (*scheduler.Expression, error) {
	p, err := rt.Parser()
	if err != nil {
		return nil, err
	}
	return p.ParseExpression(fields[0], fields[1], fields[2], fields[3], fields[4])
}

// Expand parses the five fields and returns every matching minute of [start, end).
func (rt *Runtime) Expand(fields [5]string, start, end time.Time) ([]time.Time, error) {
	e, err := rt.ParseFields(fields)
	if err != nil {
		return nil, err
	}
	return scheduler.FilterRange(e, start, end), nil
}

// DBConfig reads the catalog database settings.
func (rt *Runtime) DBConfig() db.Config {
	cfg := db.DefaultConfig()
	cfg.Driver = strings.TrimSpace(viper.GetString("db.driver"))
	cfg.DSN = strings.TrimSpace(viper.GetString("db.dsn"))
	cfg.AutoMigrate = viper.GetBool("db.auto_migrate")
	cfg.Pool.MaxOpenConns = viper.GetInt("db.pool.max_open_conns")
	cfg.Pool.MaxIdleConns = viper.GetInt("db.pool.max_idle_conns")
	cfg.Pool.ConnMaxLifetime = viper.GetDuration("db.pool.conn_max_lifetime")
	cfg.SQLite.BusyTimeoutMs = viper.GetInt("db.sqlite.busy_timeout_ms")
	cfg.SQLite.WAL = viper.GetBool("db.sqlite.wal")
	cfg.SQLite.ForeignKeys = viper.GetBool("db.sqlite.foreign_keys")
	return cfg
}

// OpenCatalog opens the catalog database. The returned cleanup closes it.
func (rt *Runtime) OpenCatalog(ctx context.Context) (*catalog.Store, func() error, error) {
	logger, err := rt.Logger()
	if err != nil {
		return nil, nil, err
	}
	gdb, err := db.Open(ctx, rt.DBConfig())
	if err != nil {
		return nil, nil, fmt.Errorf("open catalog: %w", err)
	}
	return catalog.NewStore(gdb, logger), func() error { return db.Close(gdb) }, nil
}
