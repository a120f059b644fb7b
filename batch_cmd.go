package main

import (
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/chriswiese59-rgb/WowQuestTtsTool-sub003/internal/batch"
	"github.com/chriswiese59-rgb/WowQuestTtsTool-sub003/internal/quest"
)

var (
	batchProvider    string
	batchVoice       string
	batchGender      string
	batchQuestIDs    []int
	batchQuestsFile  string
	batchDryRun      bool
	batchNoSkip      bool
	batchDelay       time.Duration
	batchConcurrency int

	batchCmd = &cobra.Command{
		Use:   "batch",
		Short: "Generate audio for imported quests",
		Long: paragraph(
			fmt.Sprintf("\nGenerate audio files for every imported quest that doesn't have one yet, named %s.", keyword("quest_<id>.mp3")),
		),
		Example: paragraph("wowquest batch\nwowquest batch --quest-id 12345 --quest-id 12346\nwowquest batch --dry-run"),
		Args:    cobra.NoArgs,
		RunE:    runBatch,
	}
)

func init() {
	batchCmd.Flags().StringVarP(&batchProvider, "provider", "P", "", "TTS provider id (default: configured active provider)")
	batchCmd.Flags().StringVar(&batchVoice, "voice", "", "voice id or configured profile name for every quest")
	batchCmd.Flags().StringVarP(&batchGender, "gender", "g", "", "voice gender hint (male/female)")
	batchCmd.Flags().IntSliceVar(&batchQuestIDs, "quest-id", nil, "only process the given quest id(s)")
	batchCmd.Flags().StringVar(&batchQuestsFile, "quests", "", "quest JSON file (default: the local quest store)")
	batchCmd.Flags().BoolVar(&batchDryRun, "dry-run", false, "preview which quests would be processed, no API calls")
	batchCmd.Flags().BoolVar(&batchNoSkip, "no-skip-existing", false, "regenerate audio even when it already exists")
	batchCmd.Flags().DurationVar(&batchDelay, "delay", 500*time.Millisecond, "pause between synthesis calls")
	batchCmd.Flags().IntVar(&batchConcurrency, "concurrency", 1, "parallel synthesis calls")
}

func runBatch(cmd *cobra.Command, _ []string) error {
	questsFile := batchQuestsFile
	if questsFile == "" {
		questsFile = viper.GetString("quests_file")
	}
	quests, err := quest.Load(questsFile)
	if err != nil {
		return err
	}
	quests = quest.Filter(quests, batchQuestIDs)
	if len(quests) == 0 {
		fmt.Println("No quests to process.")
		return nil
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	audioStore, err := openAudioStore()
	if err != nil {
		return err
	}

	cfg := a.store.Config()
	gen := batch.NewGenerator(a.manager, audioStore, a.logger)
	opts := batch.Options{
		Provider:     batchProvider,
		VoiceID:      batchVoice,
		Gender:       batchGender,
		Language:     cfg.Language,
		Format:       cfg.Format,
		SkipExisting: !batchNoSkip,
		DryRun:       batchDryRun,
		Delay:        batchDelay,
		Concurrency:  batchConcurrency,
	}

	if batchDryRun {
		planned, skipped := gen.Plan(quests, opts.SkipExisting)
		fmt.Printf("[dry-run] %d quests would be processed (%d skipped, audio exists):\n", len(planned), skipped)
		for i, q := range planned {
			if i == 20 {
				fmt.Printf("  ... and %d more\n", len(planned)-20)
				break
			}
			fmt.Printf("  - quest %d: %s\n", q.ID, q.Title)
		}
		return nil
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	outcome, err := gen.Run(ctx, quests, opts)
	fmt.Printf("Done: %d succeeded, %d failed, %d skipped.\n",
		outcome.Succeeded, outcome.Failed, outcome.Skipped)
	return err
}
