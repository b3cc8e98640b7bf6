package shared

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Credentials CredentialsConfig `toml:"credentials"`
	Database    DatabaseConfig    `toml:"database"`
	Server      ServerConfig      `toml:"server"`
	Generation  GenerationConfig  `toml:"generation"`
	Logging     LoggingConfig     `toml:"logging"`
}

// CredentialsConfig contains service-specific credentials.
type CredentialsConfig struct {
	Anthropic AnthropicConfig `toml:"anthropic"`
	Spotify   SpotifyConfig   `toml:"spotify"`
	LastFM    LastFMConfig    `toml:"lastfm"`
}

// AnthropicConfig contains the generation model credentials.
type AnthropicConfig struct {
	APIKey  string `toml:"api_key"`
	BaseURL string `toml:"base_url"`
}

// SpotifyConfig contains Spotify client-credentials used for catalog search.
type SpotifyConfig struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
	Market       string `toml:"market"`
}

// LastFMConfig contains the Last.fm API key used by the similar-artists proxy.
type LastFMConfig struct {
	APIKey string `toml:"api_key"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host           string   `toml:"host"`
	Port           int      `toml:"port"`
	AllowedOrigins []string `toml:"allowed_origins"`
}

// GenerationConfig tunes the generation-and-validation pipeline.
type GenerationConfig struct {
	Model             string  `toml:"model"`
	PlaylistMaxTokens int     `toml:"playlist_max_tokens"`
	BatchMaxTokens    int     `toml:"batch_max_tokens"`
	BatchSize         int     `toml:"batch_size"`
	PacingMS          int     `toml:"pacing_ms"`
	StrictBatches     bool    `toml:"strict_batches"`
	ValidateWorkers   int     `toml:"validate_workers"`
	CatalogRPS        float64 `toml:"catalog_rps"`
	MinSongs          int     `toml:"min_songs"`
	MaxPromptLength   int     `toml:"max_prompt_length"`
	MaxTotal          int     `toml:"max_total"`
}

// Pacing returns the pause between accumulator batches.
func (g GenerationConfig) Pacing() time.Duration {
	return time.Duration(g.PacingMS) * time.Millisecond
}

// LoggingConfig contains logger settings.
type LoggingConfig struct {
	Level string `toml:"level"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks numeric settings for values the pipeline cannot run with.
func (c *Config) Validate() error {
	g := c.Generation
	switch {
	case g.BatchSize <= 0:
		return fmt.Errorf("%w: generation.batch_size must be positive, got %d", ErrInvalidConfig, g.BatchSize)
	case g.PacingMS < 0:
		return fmt.Errorf("%w: generation.pacing_ms must not be negative, got %d", ErrInvalidConfig, g.PacingMS)
	case g.ValidateWorkers <= 0:
		return fmt.Errorf("%w: generation.validate_workers must be positive, got %d", ErrInvalidConfig, g.ValidateWorkers)
	case g.CatalogRPS < 0:
		return fmt.Errorf("%w: generation.catalog_rps must not be negative, got %v", ErrInvalidConfig, g.CatalogRPS)
	case g.MaxTotal <= 0:
		return fmt.Errorf("%w: generation.max_total must be positive, got %d", ErrInvalidConfig, g.MaxTotal)
	case g.MinSongs < 0:
		return fmt.Errorf("%w: generation.min_songs must not be negative, got %d", ErrInvalidConfig, g.MinSongs)
	case c.Server.Port < 0 || c.Server.Port > 65535:
		return fmt.Errorf("%w: server.port out of range: %d", ErrInvalidConfig, c.Server.Port)
	}
	return nil
}

// Addr returns the host:port the HTTP server binds to.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// LoadEnv loads environment variables from the given .env files (default ".env").
//
// Missing files are not an error; variables already present in the environment win.
func LoadEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}

	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", p, err)
		}
	}
	return nil
}

// ApplyEnv overrides credentials and the server port with values from the environment.
//
// ANTHROPIC_API_KEY takes precedence over VITE_CLAUDE_API_KEY.
func (c *Config) ApplyEnv() {
	if v := firstNonEmpty(os.Getenv("ANTHROPIC_API_KEY"), os.Getenv("VITE_CLAUDE_API_KEY")); v != "" {
		c.Credentials.Anthropic.APIKey = v
	}
	if v := os.Getenv("SPOTIFY_CLIENT_ID"); v != "" {
		c.Credentials.Spotify.ClientID = v
	}
	if v := os.Getenv("SPOTIFY_CLIENT_SECRET"); v != "" {
		c.Credentials.Spotify.ClientSecret = v
	}
	if v := os.Getenv("LASTFM_API_KEY"); v != "" {
		c.Credentials.LastFM.APIKey = v
	}
	if v := os.Getenv("HITLINE_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Server.Port = port
		}
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
