package db

import (
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	HomeDirName     = ".crontimeseq"
	CatalogFileName = "catalog.sqlite"
)

// SQLiteConfig holds the pragmas applied to each sqlite catalog on open.
type SQLiteConfig struct {
	BusyTimeoutMs int
	WAL           bool
	ForeignKeys   bool
}

type PoolConfig struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// Config selects the catalog database. Driver is "sqlite" or "postgres".
type Config struct {
	Driver      string
	DSN         string
	Pool        PoolConfig
	SQLite      SQLiteConfig
	AutoMigrate bool
}

func DefaultConfig() Config {
	return Config{
		Driver: "sqlite",
		DSN:    "",
		Pool: PoolConfig{
			MaxOpenConns:    1,
			MaxIdleConns:    1,
			ConnMaxLifetime: 0,
		},
		SQLite: SQLiteConfig{
			BusyTimeoutMs: 5000,
			WAL:           true,
			ForeignKeys:   true,
		},
		AutoMigrate: true,
	}
}

// ResolveSQLiteDSN returns dsn unchanged when set; otherwise it picks the default
// catalog file location.
func ResolveSQLiteDSN(dsn string) (string, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn != "" {
		return dsn, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	homeDir := filepath.Join(home, HomeDirName)
	homeDB := filepath.Join(homeDir, CatalogFileName)
	localDB := filepath.Clean("./" + CatalogFileName)

	// Precedence:
	// 1) existing $HOME/.crontimeseq/catalog.sqlite
	if _, err := os.Stat(homeDB); err == nil {
		return homeDB, nil
	}
	// 2) existing ./catalog.sqlite
	if _, err := os.Stat(localDB); err == nil {
		return localDB, nil
	}
	// 3) create + use $HOME/.crontimeseq/catalog.sqlite
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		return "", err
	}
	return homeDB, nil
}
