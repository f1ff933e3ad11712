package main

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/clipstash/clipstash/internal/service"
)

func newGetCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "get POS",
		Short: "Write one history entry to stdout",
		Long: `Writes the payload of the POS-th most recent entry (1 = newest)
byte-exact to stdout. Reading an entry does not move it to the front; use
"clipstash select" for that. To pull an image out of the history:

  clipstash get 3 > screenshot.png`,
		Args:    cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE:    func(_ *cobra.Command, args []string) error { return runGet(v, args[0]) },
	}

	addCommonFlags(cmd)

	return cmd
}

func runGet(v *viper.Viper, posArg string) error {
	setupLogging(v, false)

	pos, err := strconv.Atoi(posArg)
	if err != nil {
		return fmt.Errorf("position %q is not a number", posArg)
	}

	cfg, err := loadConfig(v)
	if err != nil {
		return err
	}
	svc, err := service.Open(cfg, nil, nil)
	if err != nil {
		return err
	}

	mime, payload, err := svc.Get(pos)
	if err != nil {
		return err
	}
	slog.Debug("writing entry", "pos", pos, "mime", mime, "size", len(payload))
	_, err = os.Stdout.Write(payload)
	return err
}
