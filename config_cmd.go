package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/charmbracelet/x/editor"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const defaultConfig = `# wowquest configuration

# directory for generated quest audio (default: user data dir)
# audio_dir: "~/wow-quest-audio"

# local quest store, written by "wowquest import"
# quests_file: "~/.local/share/wowquest/quests.json"

tts:
  # provider used when a call names none: openai, google, elevenlabs, claude
  active_provider: "elevenlabs"
  # secondary provider tried after the active one fails terminally
  # fallback_provider: "openai"
  fallback_enabled: false
  # retries per provider on transient failures (rate limit, network, 5xx)
  max_retries: 2
  # first backoff delay; doubles per retry
  retry_delay: "1s"
  # record per-provider character/token/request counters
  track_usage: true

  # synthesis defaults
  language: "en-US"
  format: "mp3"

  # voice profiles: reading styles mapped to provider voice ids, usable
  # wherever a voice is accepted (wowquest speak --voice epic_narrator)
  # profiles:
  #   neutral_male: "onyx"
  #   neutral_female: "nova"
  #   epic_narrator: "..."

  openai:
    # api_key: "sk-..."
    model: "tts-1"
    voice: "onyx"
    speed: 1.0

  google:
    # credentials_file: "/path/to/service-account.json"
    voice_name: "en-US-Standard-A"
    speaking_rate: 1.0
    pitch: 0.0
    timeout: "30s"

  elevenlabs:
    # api_key: "..."
    model_id: "eleven_multilingual_v2"
    # voice_id: "..."
    stability: 0.5
    similarity_boost: 0.75

# self-update
update:
  manifest_url: "https://wowquest.app/releases/manifest.json"
`

var configCmd = &cobra.Command{
	Use:     "config",
	Short:   "Edit the wowquest config file",
	Long:    paragraph(fmt.Sprintf("\n%s the wowquest config file. We’ll use EDITOR to determine which editor to use. If the config file doesn't exist, it will be created.", keyword("Edit"))),
	Example: paragraph("wowquest config\nwowquest config --config path/to/wowquest.yml"),
	Args:    cobra.NoArgs,
	RunE: func(*cobra.Command, []string) error {
		if err := ensureConfigFile(); err != nil {
			return err
		}

		c, err := editor.Cmd("wowquest", configFile)
		if err != nil {
			return fmt.Errorf("unable to set config file: %w", err)
		}
		c.Stdin = os.Stdin
		c.Stdout = os.Stdout
		c.Stderr = os.Stderr
		if err := c.Run(); err != nil {
			return fmt.Errorf("unable to run command: %w", err)
		}

		fmt.Println("Wrote config file to:", configFile)
		return nil
	},
}

func ensureConfigFile() error {
	if configFile == "" {
		configFile = viper.GetViper().ConfigFileUsed()
	}
	if err := os.MkdirAll(filepath.Dir(configFile), 0o755); err != nil {
		return fmt.Errorf("could not create configuration directory: %w", err)
	}
	if _, err := os.Stat(configFile); errors.Is(err, fs.ErrNotExist) {
		if err := os.WriteFile(configFile, []byte(defaultConfig), 0o600); err != nil {
			return fmt.Errorf("could not write configuration file: %w", err)
		}
		viper.SetConfigFile(configFile)
		_ = viper.ReadInConfig()
	}
	return nil
}
