package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/clipstash/clipstash/internal/logging"
	"github.com/clipstash/clipstash/internal/service"
)

func newStoreCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "store",
		Short: "Read a clipboard payload from stdin into the history",
		Long: `Reads stdin and records it as the newest history entry.

Meant to be driven by a clipboard watcher:

  wl-paste --watch clipstash store
  wl-paste --watch --type image/png clipstash store --mime image/png

Empty payloads, payloads over max_payload_size and repeats of the current
newest entry are absorbed silently, so the watcher can fire on every change
without special-casing anything.`,
		Args:    cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE:    func(_ *cobra.Command, _ []string) error { return runStore(v) },
	}

	f := cmd.Flags()
	f.String("mime", "text/plain", "MIME type of the data being stored")
	addCommonFlags(cmd)

	return cmd
}

func runStore(v *viper.Viper) error {
	setupLogging(v, false)

	cfg, err := loadConfig(v)
	if err != nil {
		return err
	}
	if logging.IsTTY(os.Stdin) {
		// Nothing piped in; invoked by hand. Do nothing rather than hang.
		slog.Debug("stdin is a terminal, nothing to store")
		return nil
	}

	// One byte over the limit is enough to know the payload is oversized;
	// no point buffering an arbitrarily large stdin.
	payload, err := io.ReadAll(io.LimitReader(os.Stdin, cfg.MaxPayloadSize+1))
	if err != nil {
		return fmt.Errorf("read stdin: %w", err)
	}

	svc, err := service.Open(cfg, nil, nil)
	if err != nil {
		return err
	}
	return svc.Store(v.GetString("mime"), payload)
}
