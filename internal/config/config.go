// Package config loads the briefcast TOML configuration file and the
// API keys that accompany it. Secrets never live in the TOML file;
// they come from the environment, with .env supported for local use.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

// Environment variables carrying secrets.
const (
	EnvOpenAIKey = "OPENAI_API_KEY"
)

// Config is the full briefcast configuration.
type Config struct {
	Sources  Sources  `toml:"sources"`
	LLM      LLM      `toml:"llm"`
	Speech   Speech   `toml:"speech"`
	Output   Output   `toml:"output"`
	Pipeline Pipeline `toml:"pipeline"`
}

// Sources configures the document fetchers.
type Sources struct {
	Gmail      GmailSource      `toml:"gmail"`
	Calendar   CalendarSource   `toml:"calendar"`
	HackerNews HackerNewsSource `toml:"hackernews"`
}

// GmailSource configures the Gmail attachment fetcher.
type GmailSource struct {
	Enabled              bool     `toml:"enabled"`
	CredentialsFile      string   `toml:"credentials_file"`
	TokenFile            string   `toml:"token_file"`
	SupportedAttachments []string `toml:"supported_attachments"`
	Query                string   `toml:"query"`
	MaxResults           int64    `toml:"max_results"`
}

// CalendarSource configures the Google Calendar fetcher.
type CalendarSource struct {
	Enabled       bool   `toml:"enabled"`
	CalendarID    string `toml:"calendar_id"`
	LookAheadDays int    `toml:"look_ahead_days"`
}

// HackerNewsSource configures the HackerNews feed fetcher.
type HackerNewsSource struct {
	Enabled    bool   `toml:"enabled"`
	FeedURL    string `toml:"feed_url"`
	MinScore   int    `toml:"min_score"`
	MaxStories int    `toml:"max_stories"`
}

// LLM configures the dialogue generation backend.
type LLM struct {
	Model   string `toml:"model"`
	BaseURL string `toml:"base_url"`
}

// Speech configures synthesis: voices, chunking and retry behaviour.
type Speech struct {
	Model             string   `toml:"model"`
	Voices            []string `toml:"voices"`
	DefaultVoice      string   `toml:"default_voice"`
	MaxChunkSize      int      `toml:"max_chunk_size"`
	MaxAttempts       int      `toml:"max_attempts"`
	RequestsPerSecond float64  `toml:"requests_per_second"`
	Burst             int      `toml:"burst"`
}

// Output configures where artifacts and state land on disk.
type Output struct {
	AudioDir       string `toml:"audio_dir"`
	TranscriptDir  string `toml:"transcript_dir"`
	StateDB        string `toml:"state_db"`
	RetentionHours int    `toml:"retention_hours"`
}

// Pipeline configures orchestration.
type Pipeline struct {
	Concurrency   int `toml:"concurrency"`
	LookbackHours int `toml:"lookback_hours"`
}

// Default returns the configuration used when a field is absent from
// the file.
func Default() Config {
	return Config{
		Sources: Sources{
			Gmail: GmailSource{
				CredentialsFile:      "credentials.json",
				TokenFile:            "token.json",
				SupportedAttachments: []string{"application/pdf", "text/plain", "text/html"},
				MaxResults:           50,
			},
			Calendar: CalendarSource{
				CalendarID:    "primary",
				LookAheadDays: 7,
			},
			HackerNews: HackerNewsSource{
				FeedURL:    "https://hnrss.org/frontpage",
				MinScore:   100,
				MaxStories: 5,
			},
		},
		LLM: LLM{
			Model: "gpt-4o-mini",
		},
		Speech: Speech{
			Model:             "tts-1",
			Voices:            []string{"alloy", "onyx", "shimmer"},
			DefaultVoice:      "alloy",
			MaxChunkSize:      4000,
			MaxAttempts:       3,
			RequestsPerSecond: 2.0,
			Burst:             2,
		},
		Output: Output{
			AudioDir:       "podcasts/audio",
			TranscriptDir:  "podcasts/transcripts",
			StateDB:        "podcasts/state.db",
			RetentionHours: 7 * 24,
		},
		Pipeline: Pipeline{
			Concurrency:   4,
			LookbackHours: 24,
		},
	}
}

// Load reads the TOML file at path on top of the defaults and
// validates the result. A missing file is not an error; defaults
// apply.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects configurations the pipeline cannot run with.
func (c *Config) Validate() error {
	if c.Speech.MaxChunkSize <= 0 {
		return fmt.Errorf("speech.max_chunk_size must be positive")
	}
	if c.Speech.MaxAttempts <= 0 {
		return fmt.Errorf("speech.max_attempts must be positive")
	}
	if len(c.Speech.Voices) == 0 {
		return fmt.Errorf("speech.voices must not be empty")
	}
	if c.Pipeline.Concurrency <= 0 {
		return fmt.Errorf("pipeline.concurrency must be positive")
	}
	if c.Sources.Calendar.LookAheadDays < 0 {
		return fmt.Errorf("sources.calendar.look_ahead_days must not be negative")
	}
	return nil
}

// EnabledSources lists the source names switched on in this config.
func (c *Config) EnabledSources() []string {
	var names []string
	if c.Sources.Gmail.Enabled {
		names = append(names, "gmail")
	}
	if c.Sources.Calendar.Enabled {
		names = append(names, "calendar")
	}
	if c.Sources.HackerNews.Enabled {
		names = append(names, "hackernews")
	}
	return names
}

// LoadEnv loads a .env file next to the config file when present and
// returns the OpenAI API key. The environment wins over the file.
func LoadEnv(configPath string) (string, error) {
	envPath := filepath.Join(filepath.Dir(configPath), ".env")
	if _, err := os.Stat(envPath); err == nil {
		// godotenv never overrides variables already set.
		if err := godotenv.Load(envPath); err != nil {
			return "", fmt.Errorf("load %s: %w", envPath, err)
		}
	}

	key := os.Getenv(EnvOpenAIKey)
	if key == "" {
		return "", fmt.Errorf("%s is not set", EnvOpenAIKey)
	}
	return key, nil
}
