package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/chriswiese59-rgb/WowQuestTtsTool-sub003/tts"
)

var (
	speakProvider string
	speakVoice    string
	speakGender   string
	speakLanguage string
	speakOutput   string
	speakFormat   string

	speakCmd = &cobra.Command{
		Use:   "speak [TEXT]",
		Short: "Synthesize a single piece of text",
		Long: paragraph(
			fmt.Sprintf("\nSynthesize one piece of text into an audio file. Pass the text as an argument, or %s to read it from stdin.", keyword("-")),
		),
		Example: paragraph("wowquest speak \"Magni Bronzebeard awaits you.\" -o magni.mp3\ncat quest.txt | wowquest speak - --provider openai --gender female"),
		Args:    cobra.ExactArgs(1),
		RunE:    runSpeak,
	}
)

func init() {
	speakCmd.Flags().StringVarP(&speakProvider, "provider", "P", "", "TTS provider id (default: configured active provider)")
	speakCmd.Flags().StringVar(&speakVoice, "voice", "", "voice id or configured profile name (epic_narrator, ...)")
	speakCmd.Flags().StringVarP(&speakGender, "gender", "g", "", "voice gender hint (male/female), used when --voice is not set")
	speakCmd.Flags().StringVarP(&speakLanguage, "language", "l", "", "language code (default: configured language)")
	speakCmd.Flags().StringVarP(&speakOutput, "output", "o", "", "output audio file (default: temporary file)")
	speakCmd.Flags().StringVarP(&speakFormat, "format", "f", "", "audio format: mp3, ogg, wav (default: configured format)")
}

func runSpeak(cmd *cobra.Command, args []string) error {
	text := args[0]
	if text == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("reading stdin: %w", err)
		}
		text = string(data)
	}
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("no text to synthesize")
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	cfg := a.store.Config()
	if speakLanguage == "" {
		speakLanguage = cfg.Language
	}
	if speakFormat == "" {
		speakFormat = cfg.Format
	}

	// Ctrl-C aborts the in-flight call or pending backoff.
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	result, err := a.manager.GenerateAudio(ctx, tts.Request{
		Text:       text,
		VoiceID:    speakVoice,
		Gender:     speakGender,
		Language:   speakLanguage,
		OutputPath: speakOutput,
		Format:     speakFormat,
	}, speakProvider)
	if err != nil {
		return err
	}

	fmt.Printf("Wrote %s (%d characters, ~%s of audio, took %s)\n",
		result.AudioPath, result.Characters,
		result.AudioDuration.Round(time.Second),
		result.Elapsed.Round(10*time.Millisecond))
	return nil
}
