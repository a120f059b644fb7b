package main

import (
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var (
	usageExport string
	usageReset  bool

	usageCmd = &cobra.Command{
		Use:   "usage",
		Short: "Show or export per-provider usage counters",
		Example: paragraph("wowquest usage\nwowquest usage --export csv > usage.csv\nwowquest usage --reset"),
		Args:    cobra.NoArgs,
		RunE:    runUsage,
	}
)

func init() {
	usageCmd.Flags().StringVar(&usageExport, "export", "", "export format: csv or json")
	usageCmd.Flags().BoolVar(&usageReset, "reset", false, "clear all usage counters")
}

func runUsage(*cobra.Command, []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if usageReset {
		a.tracker.ResetAll()
		fmt.Println("Usage counters cleared.")
		return nil
	}

	switch usageExport {
	case "csv":
		return a.tracker.ExportCSV(os.Stdout)
	case "json":
		return a.tracker.ExportJSON(os.Stdout)
	case "":
	default:
		return fmt.Errorf("unknown export format %q (want csv or json)", usageExport)
	}

	entries := a.tracker.Entries()
	if len(entries) == 0 {
		fmt.Println("No usage recorded yet.")
		return nil
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Lifetime.Characters > entries[j].Lifetime.Characters
	})

	for _, e := range entries {
		fmt.Printf("%s\n", e.Provider)
		fmt.Printf("  characters:  %s\n", humanize.Comma(e.Lifetime.Characters))
		fmt.Printf("  est. tokens: %s\n", humanize.Comma(e.Lifetime.EstimatedTokens))
		fmt.Printf("  requests:    %s\n", humanize.Comma(e.Lifetime.Requests))
		fmt.Printf("  audio:       %s\n", e.Lifetime.AudioDuration.Round(time.Second))
		if !e.LastUsed.IsZero() {
			fmt.Printf("  last used:   %s\n", humanize.Time(e.LastUsed))
		}
	}
	return nil
}
