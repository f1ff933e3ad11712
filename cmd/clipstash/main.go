// clipstash: personal clipboard history with an external picker.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version is set at build time via -ldflags "-X main.Version=x.y.z".
var Version = "dev"

func main() {
	root := &cobra.Command{
		Use:   "clipstash",
		Short: "Personal clipboard history with an external picker",
		Long: `clipstash keeps a bounded, deduplicated history of everything that
crosses the clipboard and brings entries back through a launcher of your
choice (tofi, dmenu, wofi, ...).

Feed it from a clipboard watcher:

  wl-paste --watch clipstash store

and bind "clipstash select" to a key to pick an entry. History lives in
plain files under the cache directory, so syncing it between machines is a
matter of syncing that directory.

Config file search order (first found wins):
  path supplied via --config
  /etc/clipstash/config.toml
  $HOME/.config/clipstash/config.toml

All flags can be set via CLIPSTASH_<FLAG> env vars or config-file keys.`,
		SilenceUsage: true,
	}

	root.AddCommand(
		newStoreCmd(),
		newSelectCmd(),
		newListCmd(),
		newGetCmd(),
		newClearCmd(),
		newWatchCmd(),
		newExportCmd(),
		newImportCmd(),
		newVersionCmd(),
	)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Printf("clipstash %s\n", Version)
		},
	}
}
