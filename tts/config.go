package tts

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// Config contains all synthesis configuration options.
type Config struct {
	// Engine settings
	ActiveProvider   string        `yaml:"active_provider" env:"WOWQUEST_ACTIVE_PROVIDER" envDefault:"elevenlabs"`
	FallbackProvider string        `yaml:"fallback_provider" env:"WOWQUEST_FALLBACK_PROVIDER"`
	FallbackEnabled  bool          `yaml:"fallback_enabled" env:"WOWQUEST_FALLBACK_ENABLED" envDefault:"false"`
	MaxRetries       int           `yaml:"max_retries" env:"WOWQUEST_MAX_RETRIES" envDefault:"2"`
	RetryDelay       time.Duration `yaml:"retry_delay" env:"WOWQUEST_RETRY_DELAY" envDefault:"1s"`
	TrackUsage       bool          `yaml:"track_usage" env:"WOWQUEST_TRACK_USAGE" envDefault:"true"`

	// Synthesis defaults
	Language string `yaml:"language" env:"WOWQUEST_LANGUAGE" envDefault:"en-US"`
	Format   string `yaml:"format" env:"WOWQUEST_FORMAT" envDefault:"mp3"`

	// Profiles maps voice profile names (neutral_male, epic_narrator, ...)
	// to provider voice ids, so batch runs can name a reading style instead
	// of a vendor-specific id.
	Profiles map[string]string `yaml:"profiles"`

	// Provider-specific configurations
	OpenAI     OpenAIConfig     `yaml:"openai"`
	Google     GoogleConfig     `yaml:"google"`
	ElevenLabs ElevenLabsConfig `yaml:"elevenlabs"`
	Claude     ClaudeConfig     `yaml:"claude"`
}

// OpenAIConfig contains OpenAI TTS specific settings.
type OpenAIConfig struct {
	APIKey string  `yaml:"api_key" env:"WOWQUEST_OPENAI_API_KEY"`
	Model  string  `yaml:"model" env:"WOWQUEST_OPENAI_MODEL" envDefault:"tts-1"`
	Voice  string  `yaml:"voice" env:"WOWQUEST_OPENAI_VOICE" envDefault:"onyx"`
	Speed  float64 `yaml:"speed" env:"WOWQUEST_OPENAI_SPEED" envDefault:"1.0"`
}

// GoogleConfig contains Google Cloud TTS specific settings.
type GoogleConfig struct {
	CredentialsFile string        `yaml:"credentials_file" env:"WOWQUEST_GOOGLE_CREDENTIALS_FILE"`
	VoiceName       string        `yaml:"voice_name" env:"WOWQUEST_GOOGLE_VOICE_NAME" envDefault:"en-US-Standard-A"`
	SpeakingRate    float64       `yaml:"speaking_rate" env:"WOWQUEST_GOOGLE_SPEAKING_RATE" envDefault:"1.0"`
	Pitch           float64       `yaml:"pitch" env:"WOWQUEST_GOOGLE_PITCH" envDefault:"0.0"`
	Timeout         time.Duration `yaml:"timeout" env:"WOWQUEST_GOOGLE_TIMEOUT" envDefault:"30s"`
}

// ElevenLabsConfig contains ElevenLabs specific settings.
type ElevenLabsConfig struct {
	APIKey          string  `yaml:"api_key" env:"WOWQUEST_ELEVENLABS_API_KEY"`
	ModelID         string  `yaml:"model_id" env:"WOWQUEST_ELEVENLABS_MODEL_ID" envDefault:"eleven_multilingual_v2"`
	VoiceID         string  `yaml:"voice_id" env:"WOWQUEST_ELEVENLABS_VOICE_ID"`
	Stability       float64 `yaml:"stability" env:"WOWQUEST_ELEVENLABS_STABILITY" envDefault:"0.5"`
	SimilarityBoost float64 `yaml:"similarity_boost" env:"WOWQUEST_ELEVENLABS_SIMILARITY_BOOST" envDefault:"0.75"`
}

// ClaudeConfig contains settings for the Claude placeholder provider.
type ClaudeConfig struct {
	APIKey string `yaml:"api_key" env:"WOWQUEST_CLAUDE_API_KEY"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		ActiveProvider:  "elevenlabs",
		FallbackEnabled: false,
		MaxRetries:      2,
		RetryDelay:      time.Second,
		TrackUsage:      true,

		Language: "en-US",
		Format:   "mp3",

		OpenAI: OpenAIConfig{
			Model: "tts-1",
			Voice: "onyx",
			Speed: 1.0,
		},
		Google: GoogleConfig{
			VoiceName:    "en-US-Standard-A",
			SpeakingRate: 1.0,
			Timeout:      30 * time.Second,
		},
		ElevenLabs: ElevenLabsConfig{
			ModelID:         "eleven_multilingual_v2",
			Stability:       0.5,
			SimilarityBoost: 0.75,
		},
	}
}

// ResolveVoice maps a configured voice profile name to its provider voice
// id. Names without a profile entry pass through unchanged, so raw vendor
// voice ids keep working everywhere a profile is accepted.
func (c Config) ResolveVoice(name string) string {
	if name == "" {
		return ""
	}
	if id, ok := c.Profiles[name]; ok && id != "" {
		return id
	}
	return name
}

// Validate checks the configuration for structural problems.
func (c Config) Validate() error {
	if strings.TrimSpace(c.ActiveProvider) == "" {
		return fmt.Errorf("active_provider must not be empty")
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("max_retries must be >= 0, got %d", c.MaxRetries)
	}
	if c.RetryDelay < 0 {
		return fmt.Errorf("retry_delay must be >= 0, got %s", c.RetryDelay)
	}
	if c.OpenAI.Speed < 0.25 || c.OpenAI.Speed > 4.0 {
		return fmt.Errorf("openai.speed must be between 0.25 and 4.0, got %g", c.OpenAI.Speed)
	}
	if c.Google.SpeakingRate < 0.25 || c.Google.SpeakingRate > 4.0 {
		return fmt.Errorf("google.speaking_rate must be between 0.25 and 4.0, got %g", c.Google.SpeakingRate)
	}
	if c.ElevenLabs.Stability < 0 || c.ElevenLabs.Stability > 1 {
		return fmt.Errorf("elevenlabs.stability must be between 0.0 and 1.0, got %g", c.ElevenLabs.Stability)
	}
	return nil
}

// SaveFunc persists a configuration snapshot.
type SaveFunc func(Config) error

// Store holds the current configuration behind a mutex so the engine can
// read fresh values at call time while the CLI or a file watcher replaces
// them between calls. Mutations are persisted through the injected saver.
type Store struct {
	mu    sync.RWMutex
	cfg   Config
	saver SaveFunc
}

// NewStore creates a configuration store. saver may be nil for tests.
func NewStore(cfg Config, saver SaveFunc) *Store {
	return &Store{cfg: cfg, saver: saver}
}

// Config returns a snapshot of the current configuration.
func (s *Store) Config() Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

// Replace swaps in a whole new configuration without persisting it. Used
// by the config-file watcher after an external edit.
func (s *Store) Replace(cfg Config) {
	s.mu.Lock()
	s.cfg = cfg
	s.mu.Unlock()
}

// Update applies fn to the configuration and persists the result.
func (s *Store) Update(fn func(*Config)) error {
	s.mu.Lock()
	fn(&s.cfg)
	cfg := s.cfg
	saver := s.saver
	s.mu.Unlock()

	if saver == nil {
		return nil
	}
	return saver(cfg)
}

// SetActiveProvider persists a new active provider id.
func (s *Store) SetActiveProvider(id string) error {
	return s.Update(func(c *Config) { c.ActiveProvider = id })
}
