package db

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/yinyin/crontimesequence/db/models"
)

func sqliteConfig(path string) Config {
	cfg := DefaultConfig()
	cfg.DSN = path
	return cfg
}

func TestOpenSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.sqlite")
	gdb, err := Open(context.Background(), sqliteConfig(path))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = Close(gdb) })

	if !gdb.Migrator().HasTable(&models.CronSchedule{}) {
		t.Fatalf("expected cron_schedules table after auto migrate")
	}
}

func TestOpenSQLiteWithoutAutoMigrate(t *testing.T) {
	cfg := sqliteConfig(filepath.Join(t.TempDir(), "catalog.sqlite"))
	cfg.AutoMigrate = false
	gdb, err := Open(context.Background(), cfg)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = Close(gdb) })

	if gdb.Migrator().HasTable(&models.CronSchedule{}) {
		t.Fatalf("table should not exist without auto migrate")
	}
	if err := AutoMigrate(context.Background(), gdb); err != nil {
		t.Fatalf("AutoMigrate: %v", err)
	}
	if !gdb.Migrator().HasTable(&models.CronSchedule{}) {
		t.Fatalf("expected table after AutoMigrate")
	}
}

func TestOpenInvalidDriver(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Driver = "invalid"
	cfg.DSN = "x"
	if _, err := Open(context.Background(), cfg); err == nil {
		t.Fatalf("expected invalid driver error")
	}
}

func TestOpenPostgresRequiresDSN(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Driver = "postgres"
	if _, err := Open(context.Background(), cfg); err == nil {
		t.Fatalf("expected missing dsn error")
	}
}

func TestOpenSQLiteCreatesParentDirectory(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "path", "catalog.sqlite")

	gdb, err := Open(context.Background(), sqliteConfig(dbPath))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = Close(gdb) })

	if _, err := os.Stat(filepath.Dir(dbPath)); err != nil {
		t.Fatalf("expected parent dir to be created: %v", err)
	}
}

func TestSQLiteFilePath(t *testing.T) {
	cases := []struct {
		dsn    string
		want   string
		onDisk bool
	}{
		{"", "", false},
		{":memory:", "", false},
		{"file::memory:?cache=shared", "", false},
		{"file:/tmp/x.db?mode=memory", "", false},
		{"/tmp/a/catalog.sqlite", "/tmp/a/catalog.sqlite", true},
		{"/tmp/a/catalog.sqlite?_pragma=busy_timeout(5000)", "/tmp/a/catalog.sqlite", true},
		{"file:/tmp/b/catalog.sqlite?cache=shared", "/tmp/b/catalog.sqlite", true},
	}
	for _, tc := range cases {
		got, ok := sqliteFilePath(tc.dsn)
		if ok != tc.onDisk || got != tc.want {
			t.Fatalf("sqliteFilePath(%q) = (%q, %v), want (%q, %v)", tc.dsn, got, ok, tc.want, tc.onDisk)
		}
	}
}

func TestResolveSQLiteDSNKeepsExplicitValue(t *testing.T) {
	got, err := ResolveSQLiteDSN("  /tmp/explicit.sqlite ")
	if err != nil {
		t.Fatalf("ResolveSQLiteDSN: %v", err)
	}
	if got != "/tmp/explicit.sqlite" {
		t.Fatalf("got %q", got)
	}
}

func TestResolveSQLiteDSNDefaultsUnderHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Chdir(t.TempDir())

	got, err := ResolveSQLiteDSN("")
	if err != nil {
		t.Fatalf("ResolveSQLiteDSN: %v", err)
	}
	if want := filepath.Join(home, HomeDirName, CatalogFileName); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
	if _, err := os.Stat(filepath.Join(home, HomeDirName)); err != nil {
		t.Fatalf("expected home dir to be created: %v", err)
	}
}
