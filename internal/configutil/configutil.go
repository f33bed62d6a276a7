// Package configutil loads the configuration file and environment into the
// process-global Viper instance and resolves flag-or-config values.
package configutil

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const EnvPrefix = "CRONTIMESEQ"

// Load reads the config file (explicit path, else ./crontimeseq.yaml, else
// ~/.crontimeseq/config.yaml) and enables CRONTIMESEQ_* environment overrides.
// A missing default file is not an error; a missing explicit file is.
// It returns the file actually read, or "".
func Load(configFile string) (string, error) {
	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	configFile = strings.TrimSpace(configFile)
	if configFile != "" {
		viper.SetConfigFile(ExpandHomePath(configFile))
		if err := viper.ReadInConfig(); err != nil {
			return "", fmt.Errorf("read config %s: %w", configFile, err)
		}
		return viper.ConfigFileUsed(), nil
	}

	for _, candidate := range DefaultConfigPaths() {
		if _, err := os.Stat(candidate); err != nil {
			continue
		}
		viper.SetConfigFile(candidate)
		if err := viper.ReadInConfig(); err != nil {
			return "", fmt.Errorf("read config %s: %w", candidate, err)
		}
		return viper.ConfigFileUsed(), nil
	}
	return "", nil
}

func DefaultConfigPaths() []string {
	paths := []string{filepath.Clean("./crontimeseq.yaml")}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".crontimeseq", "config.yaml"))
	}
	return paths
}

func ExpandHomePath(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~"))
}

// BindFlags binds each flag name to its viper key so explicitly set flags win
// over config and env.
func BindFlags(cmd *cobra.Command, bindings map[string]string) error {
	var errs []error
	for flag, key := range bindings {
		f := cmd.Flags().Lookup(flag)
		if f == nil {
			f = cmd.PersistentFlags().Lookup(flag)
		}
		if f == nil {
			errs = append(errs, fmt.Errorf("unknown flag %q", flag))
			continue
		}
		if err := viper.BindPFlag(key, f); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// FlagOrViperString returns the flag value when the user set it, else the viper key.
func FlagOrViperString(cmd *cobra.Command, flag, key string) string {
	if cmd != nil {
		if f := cmd.Flags().Lookup(flag); f != nil && f.Changed {
			return f.Value.String()
		}
	}
	return viper.GetString(key)
}
