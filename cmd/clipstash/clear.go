package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/clipstash/clipstash/internal/service"
)

func newClearCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete the history",
		Long: `Deletes every history entry and every stored payload. Favorites
live in the config file and are not touched.

With --blobs-only, keeps the history and only removes stored payloads that
no entry references anymore (leftovers from synced-in indexes or crashes).`,
		Args:    cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE:    func(_ *cobra.Command, _ []string) error { return runClear(v) },
	}

	f := cmd.Flags()
	f.Bool("blobs-only", false, "only sweep unreferenced payloads, keep the history")
	addCommonFlags(cmd)

	return cmd
}

func runClear(v *viper.Viper) error {
	setupLogging(v, false)

	cfg, err := loadConfig(v)
	if err != nil {
		return err
	}
	svc, err := service.Open(cfg, nil, nil)
	if err != nil {
		return err
	}

	if v.GetBool("blobs-only") {
		_, err := svc.Sweep()
		return err
	}
	return svc.Clear()
}
