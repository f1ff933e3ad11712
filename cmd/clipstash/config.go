package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/clipstash/clipstash/internal/clip"
	"github.com/clipstash/clipstash/internal/config"
	"github.com/clipstash/clipstash/internal/logging"
)

// bindViper wires a command's flags into a viper instance with the standard
// config file search order and CLIPSTASH_* env var prefix.
//
// Precedence (lowest → highest): defaults → config file → CLIPSTASH_* env vars → flags
func bindViper(cmd *cobra.Command, v *viper.Viper) error {
	configFlag, _ := cmd.Flags().GetString("config")
	if configFlag != "" {
		v.SetConfigFile(configFlag)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("toml")
		v.AddConfigPath("/etc/clipstash/")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(fmt.Sprintf("%s/.config/clipstash", home))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("config: %w", err)
		}
	}

	v.SetEnvPrefix("CLIPSTASH")
	v.AutomaticEnv()

	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("binding flags: %w", err)
	}
	return nil
}

// addCommonFlags adds the flags every subcommand carries.
func addCommonFlags(cmd *cobra.Command) {
	cmd.Flags().String("config", "", "path to config file (overrides auto-discovery)")
	cmd.Flags().String("log-format", "auto", "log format: auto|text|json")
	cmd.Flags().String("log-level", "", "log level: debug|info|warn|error (default info)")
}

// setupLogging configures slog from the logging flags. interactiveDebug
// raises the default level to debug on a terminal (for watch, where the
// point of running it in the foreground is to see what it does).
func setupLogging(v *viper.Viper, interactiveDebug bool) {
	level := v.GetString("log-level")
	if level == "" && interactiveDebug && logging.IsTTY(os.Stderr) {
		level = "debug"
	}
	logging.Init(logging.Options{
		Format: v.GetString("log-format"),
		Level:  level,
	})
}

// loadConfig resolves the effective configuration for one invocation.
func loadConfig(v *viper.Viper) (*config.Config, error) {
	cfg, err := config.FromViper(v)
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

// newWriter picks the clipboard write path: the configured external command,
// or the in-process backend when the command list is empty.
func newWriter(cfg *config.Config) (clip.Writer, error) {
	if len(cfg.ClipboardCmd) > 0 {
		return clip.NewCommand(cfg.ClipboardCmd)
	}
	return clip.BackendWriter{Backend: clip.New(cfg.WatchInterval)}, nil
}
