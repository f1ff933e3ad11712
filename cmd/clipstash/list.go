package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/clipstash/clipstash/internal/menu"
	"github.com/clipstash/clipstash/internal/service"
)

func newListCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print the history",
		Long: `Prints the history most-recent-first. Positions are what
"clipstash get" expects.`,
		Args:    cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE:    func(_ *cobra.Command, _ []string) error { return runList(v) },
	}

	f := cmd.Flags()
	f.Bool("json", false, "output raw JSON")
	f.Int("limit", 0, "show at most this many entries (0 = all)")
	addCommonFlags(cmd)

	return cmd
}

func runList(v *viper.Viper) error {
	setupLogging(v, false)

	cfg, err := loadConfig(v)
	if err != nil {
		return err
	}
	svc, err := service.Open(cfg, nil, nil)
	if err != nil {
		return err
	}

	entries := svc.List()
	if limit := v.GetInt("limit"); limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}

	if v.GetBool("json") {
		return printListJSON(entries, cfg.PreviewWidth)
	}
	printList(entries, cfg.PreviewWidth)
	return nil
}

type listRow struct {
	Pos        int       `json:"pos"`
	ID         string    `json:"id"`
	Mime       string    `json:"mime"`
	Size       int       `json:"size"`
	CreatedAt  time.Time `json:"created_at"`
	LastUsedAt time.Time `json:"last_used_at"`
	Preview    string    `json:"preview"`
}

func printListJSON(entries []service.ListEntry, width int) error {
	rows := make([]listRow, len(entries))
	for i, e := range entries {
		rows[i] = listRow{
			Pos:        e.Pos,
			ID:         e.ID,
			Mime:       e.Mime,
			Size:       len(e.Payload),
			CreatedAt:  e.CreatedAt,
			LastUsedAt: e.LastUsedAt,
			Preview:    menu.Preview(e.Payload, width),
		}
	}
	enc, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(enc))
	return nil
}

func printList(entries []service.ListEntry, width int) {
	if len(entries) == 0 {
		fmt.Println("History is empty.")
		return
	}

	now := time.Now()
	tw := tabwriter.NewWriter(os.Stdout, 1, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(tw, "POS\tAGE\tMIME\tSIZE\tPREVIEW\n")
	_, _ = fmt.Fprintf(tw, "---\t---\t----\t----\t-------\n")
	for _, e := range entries {
		preview := menu.Preview(e.Payload, width)
		if preview == "" {
			preview = "-"
		}
		_, _ = fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n",
			e.Pos, menu.Age(e.LastUsedAt, now), e.Mime,
			menu.FmtSize(len(e.Payload)), preview,
		)
	}
	_ = tw.Flush()
}
