package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

var providerCmd = &cobra.Command{
	Use:   "provider [ID]",
	Short: "Show or change the active TTS provider",
	Long: paragraph(
		fmt.Sprintf("\nWithout arguments, list the registered providers and mark the %s one. With an ID, make that provider the active one.", keyword("active")),
	),
	Example: paragraph("wowquest provider\nwowquest provider elevenlabs"),
	Args:    cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		if len(args) == 1 {
			if err := a.registry.SetActive(args[0]); err != nil {
				return err
			}
			fmt.Printf("Active provider is now %s.\n", args[0])
			return nil
		}

		active := a.store.Config().ActiveProvider
		ids := a.registry.IDs()
		sort.Strings(ids)
		for _, id := range ids {
			marker := " "
			if id == active {
				marker = "*"
			}
			status := "unconfigured"
			if p, ok := a.registry.Get(id); ok {
				if p.IsAvailable() {
					status = "available"
				} else if p.IsConfigured() {
					status = "configured, unavailable"
				}
			}
			fmt.Printf("%s %-12s %s\n", marker, id, status)
		}
		return nil
	},
}
