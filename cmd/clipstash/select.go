package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/clipstash/clipstash/internal/picker"
	"github.com/clipstash/clipstash/internal/service"
)

func newSelectCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "select",
		Short: "Pick an entry with the launcher and copy it to the clipboard",
		Long: `Presents favorites and history through the configured launcher and
copies the chosen entry back to the clipboard. Favorites come first, marked
with a star; history follows most-recent-first. Picking a history entry also
moves it back to the front.

Dismissing the launcher without choosing changes nothing and exits 0, so
this is safe to bind to a key.`,
		Args:    cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE:    func(cmd *cobra.Command, _ []string) error { return runSelect(cmd, v) },
	}

	addCommonFlags(cmd)

	return cmd
}

func runSelect(cmd *cobra.Command, v *viper.Viper) error {
	setupLogging(v, false)

	cfg, err := loadConfig(v)
	if err != nil {
		return err
	}
	p, err := picker.NewLauncher(cfg.Launcher)
	if err != nil {
		return err
	}
	w, err := newWriter(cfg)
	if err != nil {
		return err
	}

	svc, err := service.Open(cfg, p, w)
	if err != nil {
		return err
	}
	return svc.Select(cmd.Context())
}
