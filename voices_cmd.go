package main

import (
	"fmt"
	"os"
	"os/signal"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var (
	voicesProvider string

	voicesCmd = &cobra.Command{
		Use:   "voices",
		Short: "List the voices a provider offers",
		Args:  cobra.NoArgs,
		RunE:  runVoices,
	}
)

func init() {
	voicesCmd.Flags().StringVarP(&voicesProvider, "provider", "P", "", "TTS provider id (default: configured active provider)")
}

func runVoices(cmd *cobra.Command, _ []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	provider, ok := a.registry.Get(voicesProvider)
	if !ok {
		return fmt.Errorf("unknown provider %q", voicesProvider)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	voices, err := provider.ListVoices(ctx)
	if err != nil {
		return err
	}
	if len(voices) == 0 {
		fmt.Printf("Provider %q offers no voices.\n", provider.ID())
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tLANGUAGE\tGENDER")
	for _, v := range voices {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", v.ID, v.Name, v.Language, v.Gender)
	}
	return w.Flush()
}
