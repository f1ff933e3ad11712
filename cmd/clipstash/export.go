package main

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/clipstash/clipstash/internal/service"
)

func newExportCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Dump the history as JSON lines on stdout",
		Long: `Writes the history most-recent-first as newline-delimited JSON with
base64 payloads, suitable for "clipstash import" on another machine:

  clipstash export | ssh laptop clipstash import`,
		Args:    cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE:    func(_ *cobra.Command, _ []string) error { return runExport(v) },
	}

	addCommonFlags(cmd)

	return cmd
}

func runExport(v *viper.Viper) error {
	setupLogging(v, false)

	cfg, err := loadConfig(v)
	if err != nil {
		return err
	}
	svc, err := service.Open(cfg, nil, nil)
	if err != nil {
		return err
	}
	return svc.Export(os.Stdout)
}

func newImportCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Merge an exported history from stdin",
		Long: `Reads JSON lines produced by "clipstash export" from stdin and folds
them into the history. Entries already present keep the newer recency; the
merged history is re-sorted and trimmed to history_size.

With --replace the current history is dropped first and only the imported
entries remain.`,
		Args:    cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE:    func(_ *cobra.Command, _ []string) error { return runImport(v) },
	}

	f := cmd.Flags()
	f.Bool("replace", false, "replace the history instead of merging")
	addCommonFlags(cmd)

	return cmd
}

func runImport(v *viper.Viper) error {
	setupLogging(v, false)

	cfg, err := loadConfig(v)
	if err != nil {
		return err
	}
	svc, err := service.Open(cfg, nil, nil)
	if err != nil {
		return err
	}
	return svc.Import(os.Stdin, v.GetBool("replace"))
}
