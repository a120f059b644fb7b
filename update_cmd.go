package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/chriswiese59-rgb/WowQuestTtsTool-sub003/internal/update"
)

var (
	updateCheckOnly bool

	updateCmd = &cobra.Command{
		Use:   "update",
		Short: "Update wowquest to the latest release",
		Long: paragraph(
			"\nCheck the release manifest for a newer version, download and verify the archive, and hand off to the bundled updater.",
		),
		Example: paragraph("wowquest update --check\nwowquest update"),
		Args:    cobra.NoArgs,
		RunE:    runUpdate,
	}
)

func init() {
	updateCmd.Flags().BoolVar(&updateCheckOnly, "check", false, "only check whether an update is available")
}

func runUpdate(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	checker := update.NewChecker(viper.GetString("update.manifest_url"), Version)
	manifest, newer, err := checker.Check(ctx)
	if err != nil {
		return err
	}
	if !newer {
		fmt.Printf("Already up to date (version %s).\n", Version)
		return nil
	}

	fmt.Printf("Version %s is available (running %s).\n", manifest.Version, Version)
	if manifest.Notes != "" {
		fmt.Printf("\n%s\n\n", manifest.Notes)
	}
	if updateCheckOnly {
		return nil
	}

	fmt.Println("Downloading...")
	archive, err := checker.Download(ctx, manifest)
	if err != nil {
		return err
	}
	defer os.Remove(archive) //nolint:errcheck

	stageDir := filepath.Join(os.TempDir(), "wowquest-update-"+manifest.Version)
	if err := update.Extract(archive, stageDir); err != nil {
		return err
	}

	fmt.Println("Verified. Handing off to the updater; wowquest will now exit.")
	if err := update.Launch(stageDir); err != nil {
		return err
	}
	return nil
}
