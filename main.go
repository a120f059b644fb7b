// Package main provides the entry point for the wowquest CLI application.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	homedir "github.com/mitchellh/go-homedir"
	gap "github.com/muesli/go-app-paths"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/chriswiese59-rgb/WowQuestTtsTool-sub003/internal/store"
	"github.com/chriswiese59-rgb/WowQuestTtsTool-sub003/internal/usage"
	"github.com/chriswiese59-rgb/WowQuestTtsTool-sub003/tts"
	"github.com/chriswiese59-rgb/WowQuestTtsTool-sub003/tts/providers/claude"
	"github.com/chriswiese59-rgb/WowQuestTtsTool-sub003/tts/providers/elevenlabs"
	"github.com/chriswiese59-rgb/WowQuestTtsTool-sub003/tts/providers/google"
	"github.com/chriswiese59-rgb/WowQuestTtsTool-sub003/tts/providers/openai"
)

const appName = "wowquest"

var (
	// Version as provided by goreleaser.
	Version = ""
	// CommitSHA as provided by goreleaser.
	CommitSHA = ""

	configFile string
	debug      bool

	rootCmd = &cobra.Command{
		Use:   "wowquest",
		Short: "Turn World of Warcraft quest text into speech",
		Long: paragraph(
			fmt.Sprintf("\nTurn World of Warcraft quest text into %s, using OpenAI, Google Cloud or ElevenLabs voices.", keyword("speech")),
		),
		SilenceErrors: false,
		SilenceUsage:  true,
		PersistentPreRun: func(*cobra.Command, []string) {
			if debug || viper.GetBool("debug") {
				log.SetLevel(log.DebugLevel)
			}
		},
	}
)

// Styling for help output.
var (
	keywordStyle = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#04B575", Dark: "#ECFD65"})
	paraStyle    = lipgloss.NewStyle().Margin(1, 0, 0, 2)
)

func keyword(s string) string {
	return keywordStyle.Render(s)
}

func paragraph(s string) string {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return s
	}
	return paraStyle.Render(s)
}

// app is the composition root: one configuration store, one registry, one
// usage ledger and one dispatch engine per process, wired here and passed
// down explicitly.
type app struct {
	store    *tts.Store
	registry *tts.Registry
	tracker  *usage.Tracker
	manager  *tts.Manager
	logger   *log.Logger
}

func newApp() (*app, error) {
	cfg, err := tts.LoadConfigFromViper()
	if err != nil {
		return nil, err
	}

	logger := log.Default()
	cfgStore := tts.NewStore(cfg, saveConfig)
	tracker := usage.NewTracker(dataPath("usage.json"), logger)
	registry := tts.NewRegistry(cfgStore, providerFactory, logger)
	manager := tts.NewManager(registry, cfgStore, tracker, tts.NewNotifier(), logger)

	// Pick up config file edits while the process runs; new API keys mean
	// the provider set has to be rebuilt.
	tts.WatchConfigFile(cfgStore, func(tts.Config) { registry.Refresh() }, logger)

	return &app{
		store:    cfgStore,
		registry: registry,
		tracker:  tracker,
		manager:  manager,
		logger:   logger,
	}, nil
}

func (a *app) Close() {
	if err := a.registry.Close(); err != nil {
		a.logger.Warn("Closing providers", "error", err)
	}
	if err := a.tracker.Flush(); err != nil {
		a.logger.Warn("Flushing usage", "error", err)
	}
}

// providerFactory builds the full provider set from configuration. The
// registry calls it again on refresh.
func providerFactory(cfg tts.Config) []tts.Provider {
	return []tts.Provider{
		openai.New(cfg.OpenAI),
		google.New(cfg.Google),
		elevenlabs.New(cfg.ElevenLabs),
		claude.New(cfg.Claude),
	}
}

// saveConfig persists runtime-mutable engine settings back into the
// config file. Provider credentials are only ever edited by the user.
func saveConfig(cfg tts.Config) error {
	viper.Set("tts.active_provider", cfg.ActiveProvider)
	viper.Set("tts.fallback_provider", cfg.FallbackProvider)
	viper.Set("tts.fallback_enabled", cfg.FallbackEnabled)
	viper.Set("tts.max_retries", cfg.MaxRetries)
	viper.Set("tts.retry_delay", cfg.RetryDelay.String())
	viper.Set("tts.track_usage", cfg.TrackUsage)
	if err := viper.WriteConfig(); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

// dataPath resolves a file under the user data directory.
func dataPath(file string) string {
	scope := gap.NewScope(gap.User, appName)
	p, err := scope.DataPath(file)
	if err != nil {
		return file
	}
	return p
}

// audioDir returns the configured audio output directory, tilde-expanded.
func audioDir() string {
	dir := viper.GetString("audio_dir")
	if dir == "" {
		dir = filepath.Join(filepath.Dir(dataPath("audio")), "audio")
	}
	expanded, err := homedir.Expand(dir)
	if err != nil {
		return dir
	}
	return expanded
}

// openAudioStore opens the audio index for the configured output dir.
func openAudioStore() (*store.AudioStore, error) {
	return store.Open(audioDir())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	tryLoadConfigFromDefaultPlaces()
	if len(CommitSHA) >= 7 {
		vt := rootCmd.VersionTemplate()
		rootCmd.SetVersionTemplate(vt[:len(vt)-1] + " (" + CommitSHA[0:7] + ")\n")
	}
	if Version == "" {
		Version = "unknown (built from source)"
	}
	rootCmd.Version = Version
	rootCmd.InitDefaultCompletionCmd()

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", fmt.Sprintf("config file (default %s)", viper.GetViper().ConfigFileUsed()))
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	viper.SetDefault("audio_dir", "")
	viper.SetDefault("quests_file", dataPath("quests.json"))
	viper.SetDefault("update.manifest_url", "https://wowquest.app/releases/manifest.json")

	rootCmd.AddCommand(
		speakCmd,
		batchCmd,
		providerCmd,
		voicesCmd,
		validateCmd,
		usageCmd,
		importCmd,
		updateCmd,
		configCmd,
	)
}

func tryLoadConfigFromDefaultPlaces() {
	scope := gap.NewScope(gap.User, appName)
	dirs, err := scope.ConfigDirs()
	if err != nil {
		fmt.Println("Could not find configuration directory.")
		os.Exit(1)
	}

	if c := os.Getenv("XDG_CONFIG_HOME"); c != "" {
		dirs = append([]string{filepath.Join(c, appName)}, dirs...)
	}
	if c := os.Getenv("WOWQUEST_CONFIG_HOME"); c != "" {
		dirs = append([]string{c}, dirs...)
	}

	for _, v := range dirs {
		viper.AddConfigPath(v)
	}

	viper.SetConfigName(appName)
	viper.SetConfigType("yaml")
	viper.SetEnvPrefix(appName)
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Warn("Could not parse configuration file", "err", err)
		}
	}

	if used := viper.ConfigFileUsed(); used != "" {
		log.Debug("Using configuration file", "path", used)
		return
	}

	configFile = filepath.Join(dirs[0], appName+".yml")
	if err := ensureConfigFile(); err != nil {
		log.Error("Could not create default configuration", "error", err)
	}
}
