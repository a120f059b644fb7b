package main

import (
	"fmt"
	"os"
	"os/signal"
	"sort"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check every provider's credentials",
	Long: paragraph(
		"\nRun a lightweight credential check against every registered provider. One broken provider never blocks validation of the others.",
	),
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		results := a.registry.ValidateAll(ctx)

		ids := make([]string, 0, len(results))
		for id := range results {
			ids = append(ids, id)
		}
		sort.Strings(ids)

		failed := 0
		for _, id := range ids {
			v := results[id]
			switch {
			case v.Valid && v.RemainingChars != nil:
				fmt.Printf("  ✓ %s (%s characters remaining)\n", id, humanize.Comma(*v.RemainingChars))
			case v.Valid:
				fmt.Printf("  ✓ %s\n", id)
			default:
				failed++
				fmt.Printf("  ✗ %s: %s\n", id, v.Message)
			}
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d providers failed validation", failed, len(results))
		}
		return nil
	},
}
