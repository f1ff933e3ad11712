package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/clipstash/clipstash/internal/clip"
	"github.com/clipstash/clipstash/internal/service"
)

func newWatchCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Watch the clipboard and store every change",
		Long: `Polls the system clipboard and feeds every change into the history,
for setups without an external watcher like "wl-paste --watch". Runs until
SIGINT or SIGTERM.`,
		Args:    cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE:    func(_ *cobra.Command, _ []string) error { return runWatch(v) },
	}

	f := cmd.Flags()
	f.Duration("interval", 0, "poll interval (default: watch_interval from config)")
	addCommonFlags(cmd)

	return cmd
}

func runWatch(v *viper.Viper) error {
	setupLogging(v, true)

	cfg, err := loadConfig(v)
	if err != nil {
		return err
	}
	interval := cfg.WatchInterval
	if d := v.GetDuration("interval"); d > 0 {
		interval = d
	}

	svc, err := service.Open(cfg, nil, nil)
	if err != nil {
		return err
	}

	backend := clip.New(interval)
	defer backend.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return svc.Watch(ctx, backend)
}
