package configutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func resetViper(t *testing.T) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)
}

func TestLoad_ExplicitFileAndEnv(t *testing.T) {
	resetViper(t)

	path := filepath.Join(t.TempDir(), "conf.yaml")
	if err := os.WriteFile(path, []byte("policy: closed\noutput:\n  format: json\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("CRONTIMESEQ_OUTPUT_FORMAT", "yaml")

	used, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if used != path {
		t.Fatalf("used = %q, want %q", used, path)
	}
	if got := viper.GetString("policy"); got != "closed" {
		t.Fatalf("policy = %q", got)
	}
	if got := viper.GetString("output.format"); got != "yaml" {
		t.Fatalf("output.format = %q, want env override yaml", got)
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	resetViper(t)
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatalf("expected error")
	}
}

func TestLoad_NoDefaultFile(t *testing.T) {
	resetViper(t)
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())

	used, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if used != "" {
		t.Fatalf("used = %q, want none", used)
	}
}

func TestLoad_LocalDefaultFile(t *testing.T) {
	resetViper(t)
	t.Setenv("HOME", t.TempDir())
	dir := t.TempDir()
	t.Chdir(dir)
	if err := os.WriteFile("crontimeseq.yaml", []byte("log:\n  level: debug\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	if _, err := Load(""); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := viper.GetString("log.level"); got != "debug" {
		t.Fatalf("log.level = %q", got)
	}
}

func TestExpandHomePath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	if got := ExpandHomePath("~/x/y.yaml"); got != filepath.Join(home, "x", "y.yaml") {
		t.Fatalf("got %q", got)
	}
	if got := ExpandHomePath("/abs/y.yaml"); got != "/abs/y.yaml" {
		t.Fatalf("got %q", got)
	}
}

func TestFlagOrViperString(t *testing.T) {
	resetViper(t)
	viper.Set("output.format", "json")

	cmd := &cobra.Command{Use: "x"}
	cmd.Flags().String("format", "text", "")
	if got := FlagOrViperString(cmd, "format", "output.format"); got != "json" {
		t.Fatalf("unset flag: got %q, want viper value", got)
	}
	if err := cmd.Flags().Set("format", "yaml"); err != nil {
		t.Fatalf("set flag: %v", err)
	}
	if got := FlagOrViperString(cmd, "format", "output.format"); got != "yaml" {
		t.Fatalf("set flag: got %q, want yaml", got)
	}
}

func TestBindFlags(t *testing.T) {
	resetViper(t)

	cmd := &cobra.Command{Use: "x"}
	cmd.PersistentFlags().String("policy", "open", "")
	if err := BindFlags(cmd, map[string]string{"policy": "policy"}); err != nil {
		t.Fatalf("BindFlags: %v", err)
	}
	if err := cmd.PersistentFlags().Set("policy", "closed"); err != nil {
		t.Fatalf("set flag: %v", err)
	}
	if got := viper.GetString("policy"); got != "closed" {
		t.Fatalf("policy = %q", got)
	}
	if err := BindFlags(cmd, map[string]string{"missing": "x"}); err == nil {
		t.Fatalf("expected unknown flag error")
	}
}
