package main

import (
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/chriswiese59-rgb/WowQuestTtsTool-sub003/internal/quest"
)

var (
	importDSN       string
	importQuestID   int
	importMinLevel  int
	importMaxLevel  int
	importZone      int
	importMainStory bool
	importLimit     int
	importOutput    string

	importCmd = &cobra.Command{
		Use:   "import",
		Short: "Import quest text from a game-server database",
		Long: paragraph(
			fmt.Sprintf("\nImport quest text from a World of Warcraft server's %s table into the local quest store.", keyword("quest_template")),
		),
		Example: paragraph(`wowquest import --dsn "acore:acore@tcp(localhost:3306)/acore_world"` + "\nwowquest import --dsn ... --quest-id 12345"),
		Args:    cobra.NoArgs,
		RunE:    runImport,
	}
)

func init() {
	importCmd.Flags().StringVar(&importDSN, "dsn", "", "world database DSN (user:pass@tcp(host:port)/dbname)")
	importCmd.Flags().IntVar(&importQuestID, "quest-id", 0, "import a single quest")
	importCmd.Flags().IntVar(&importMinLevel, "min-level", 0, "minimum quest level")
	importCmd.Flags().IntVar(&importMaxLevel, "max-level", 0, "maximum quest level")
	importCmd.Flags().IntVar(&importZone, "zone", 0, "only quests from the given zone id (QuestSortID)")
	importCmd.Flags().BoolVar(&importMainStory, "main-story", false, "only storyline quests (negative QuestSortID)")
	importCmd.Flags().IntVar(&importLimit, "limit", 0, "maximum number of quests to import")
	importCmd.Flags().StringVarP(&importOutput, "output", "o", "", "quest JSON file to write (default: the local quest store)")
	_ = importCmd.MarkFlagRequired("dsn")
}

func runImport(cmd *cobra.Command, _ []string) error {
	output := importOutput
	if output == "" {
		output = viper.GetString("quests_file")
	}

	importer, err := quest.Open(importDSN)
	if err != nil {
		return err
	}
	defer importer.Close() //nolint:errcheck

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	if err := importer.Ping(ctx); err != nil {
		return fmt.Errorf("world database is unreachable: %w", err)
	}

	quests, err := importer.Import(ctx, quest.ImportOptions{
		QuestID:       importQuestID,
		MinLevel:      importMinLevel,
		MaxLevel:      importMaxLevel,
		Zone:          importZone,
		MainStoryOnly: importMainStory,
		Limit:         importLimit,
	})
	if err != nil {
		return err
	}
	if len(quests) == 0 {
		fmt.Println("No quests matched.")
		return nil
	}

	if err := quest.Save(output, quests); err != nil {
		return err
	}
	fmt.Printf("Imported %d quests to %s\n", len(quests), output)
	return nil
}
