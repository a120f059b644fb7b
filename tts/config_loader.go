package tts

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// LoadConfigFromViper loads synthesis configuration from Viper, then applies
// WOWQUEST_* environment overrides on top.
func LoadConfigFromViper() (Config, error) {
	cfg := DefaultConfig()

	if viper.IsSet("tts.active_provider") {
		cfg.ActiveProvider = viper.GetString("tts.active_provider")
	}
	if viper.IsSet("tts.fallback_provider") {
		cfg.FallbackProvider = viper.GetString("tts.fallback_provider")
	}
	if viper.IsSet("tts.fallback_enabled") {
		cfg.FallbackEnabled = viper.GetBool("tts.fallback_enabled")
	}
	if viper.IsSet("tts.max_retries") {
		cfg.MaxRetries = viper.GetInt("tts.max_retries")
	}
	if viper.IsSet("tts.retry_delay") {
		cfg.RetryDelay = viper.GetDuration("tts.retry_delay")
	}
	if viper.IsSet("tts.track_usage") {
		cfg.TrackUsage = viper.GetBool("tts.track_usage")
	}
	if viper.IsSet("tts.language") {
		cfg.Language = viper.GetString("tts.language")
	}
	if viper.IsSet("tts.format") {
		cfg.Format = viper.GetString("tts.format")
	}
	if viper.IsSet("tts.profiles") {
		cfg.Profiles = viper.GetStringMapString("tts.profiles")
	}

	cfg.OpenAI = loadOpenAIConfig()
	cfg.Google = loadGoogleConfig()
	cfg.ElevenLabs = loadElevenLabsConfig()
	if viper.IsSet("tts.claude.api_key") {
		cfg.Claude.APIKey = viper.GetString("tts.claude.api_key")
	}

	// Environment variables beat the config file.
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parsing environment overrides: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid TTS configuration: %w", err)
	}

	return cfg, nil
}

func loadOpenAIConfig() OpenAIConfig {
	cfg := DefaultConfig().OpenAI

	if viper.IsSet("tts.openai.api_key") {
		cfg.APIKey = viper.GetString("tts.openai.api_key")
	}
	if viper.IsSet("tts.openai.model") {
		cfg.Model = viper.GetString("tts.openai.model")
	}
	if viper.IsSet("tts.openai.voice") {
		cfg.Voice = viper.GetString("tts.openai.voice")
	}
	if viper.IsSet("tts.openai.speed") {
		cfg.Speed = viper.GetFloat64("tts.openai.speed")
	}
	return cfg
}

func loadGoogleConfig() GoogleConfig {
	cfg := DefaultConfig().Google

	if viper.IsSet("tts.google.credentials_file") {
		cfg.CredentialsFile = viper.GetString("tts.google.credentials_file")
	}
	if viper.IsSet("tts.google.voice_name") {
		cfg.VoiceName = viper.GetString("tts.google.voice_name")
	}
	if viper.IsSet("tts.google.speaking_rate") {
		cfg.SpeakingRate = viper.GetFloat64("tts.google.speaking_rate")
	}
	if viper.IsSet("tts.google.pitch") {
		cfg.Pitch = viper.GetFloat64("tts.google.pitch")
	}
	if viper.IsSet("tts.google.timeout") {
		cfg.Timeout = viper.GetDuration("tts.google.timeout")
	}
	return cfg
}

func loadElevenLabsConfig() ElevenLabsConfig {
	cfg := DefaultConfig().ElevenLabs

	if viper.IsSet("tts.elevenlabs.api_key") {
		cfg.APIKey = viper.GetString("tts.elevenlabs.api_key")
	}
	if viper.IsSet("tts.elevenlabs.model_id") {
		cfg.ModelID = viper.GetString("tts.elevenlabs.model_id")
	}
	if viper.IsSet("tts.elevenlabs.voice_id") {
		cfg.VoiceID = viper.GetString("tts.elevenlabs.voice_id")
	}
	if viper.IsSet("tts.elevenlabs.stability") {
		cfg.Stability = viper.GetFloat64("tts.elevenlabs.stability")
	}
	if viper.IsSet("tts.elevenlabs.similarity_boost") {
		cfg.SimilarityBoost = viper.GetFloat64("tts.elevenlabs.similarity_boost")
	}
	return cfg
}

// WatchConfigFile reloads the store whenever the config file changes on
// disk, so a running process picks up edits between calls. Invalid edits
// are logged and skipped, keeping the last good configuration active.
func WatchConfigFile(store *Store, onReload func(Config), logger *log.Logger) {
	viper.OnConfigChange(func(fsnotify.Event) {
		cfg, err := LoadConfigFromViper()
		if err != nil {
			logger.Warn("Ignoring config change", "error", err)
			return
		}
		store.Replace(cfg)
		logger.Debug("Configuration reloaded", "active_provider", cfg.ActiveProvider)
		if onReload != nil {
			onReload(cfg)
		}
	})
	viper.WatchConfig()
}
