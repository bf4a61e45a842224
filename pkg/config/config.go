// Package config loads Stu-Music-Go settings from a TOML file with
// environment variable overrides. The environment names match the ones the
// web server has always read (SPOTIFY_CLIENT_ID, SIGNING_KEY, DATABASE_PATH)
// so existing deployments keep working without a config file.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Server holds HTTP listener settings.
type Server struct {
	Addr       string `toml:"addr"`
	StaticDir  string `toml:"static_dir"`
	SigningKey string `toml:"signing_key"`
}

// Spotify holds application credentials and the OAuth redirect.
type Spotify struct {
	ClientID     string   `toml:"client_id"`
	ClientSecret string   `toml:"client_secret"`
	RedirectURI  string   `toml:"redirect_uri"`
	Scopes       []string `toml:"scopes"`
}

// Anthropic configures the query rewriter.
type Anthropic struct {
	APIKey    string `toml:"api_key"`
	BaseURL   string `toml:"base_url"`
	Model     string `toml:"model"`
	MaxTokens int    `toml:"max_tokens"`
}

// OpenAI configures the prompt planner used by /api/stu.
type OpenAI struct {
	APIKey  string `toml:"api_key"`
	BaseURL string `toml:"base_url"`
	Model   string `toml:"model"`
}

// MCP selects how the search tool server is reached. An empty Command runs
// the server inside the current process.
type MCP struct {
	Command string   `toml:"command"`
	Args    []string `toml:"args"`
}

// Enrich configures the MusicBrainz and AcousticBrainz lookups.
type Enrich struct {
	MusicBrainzURL    string  `toml:"musicbrainz_url"`
	AcousticBrainzURL string  `toml:"acousticbrainz_url"`
	UserAgent         string  `toml:"user_agent"`
	RequestsPerSecond float64 `toml:"requests_per_second"`
	Concurrency       int     `toml:"concurrency"`
	TimeoutSeconds    int     `toml:"timeout_seconds"`
}

// Database points at the SQLite file.
type Database struct {
	Path string `toml:"path"`
}

// Logging controls logrus output.
type Logging struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// MindMap optionally replaces the embedded song fixture.
type MindMap struct {
	Fixture string `toml:"fixture"`
}

// Config is the full application configuration.
type Config struct {
	Server    Server    `toml:"server"`
	Spotify   Spotify   `toml:"spotify"`
	Anthropic Anthropic `toml:"anthropic"`
	OpenAI    OpenAI    `toml:"openai"`
	MCP       MCP       `toml:"mcp"`
	Enrich    Enrich    `toml:"enrich"`
	Database  Database  `toml:"database"`
	Logging   Logging   `toml:"logging"`
	MindMap   MindMap   `toml:"mindmap"`
}

// DefaultConfigPath returns the per-user config location.
func DefaultConfigPath() (string, error) {
	return ExpandPath("~/.config/stu/config.toml")
}

// Load reads the configuration at path, falling back to the default
// locations when path is empty. A missing file is not an error; defaults and
// environment overrides still apply. The resolved path and whether it existed
// are returned for diagnostics.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolved, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}
	if exists {
		file, err := os.Open(resolved)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		if err := toml.NewDecoder(file).Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.applyEnv()
	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}
	return &cfg, resolved, exists, nil
}

// Sample returns the annotated sample configuration.
func Sample() string {
	return sampleConfig
}

// CreateSample writes the sample configuration to path.
func CreateSample(path string) error {
	return os.WriteFile(path, []byte(sampleConfig), 0o600)
}

// ExpandPath expands a leading ~ and makes the result absolute.
func ExpandPath(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", nil
	}
	if path == ":memory:" {
		return path, nil
	}
	if strings.HasPrefix(path, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		path = filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	return filepath.Abs(path)
}

func resolveConfigPath(path string) (string, bool, error) {
	if strings.TrimSpace(path) != "" {
		expanded, err := ExpandPath(path)
		if err != nil {
			return "", false, err
		}
		if _, err := os.Stat(expanded); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}
	projectPath, err := filepath.Abs("stu.toml")
	if err != nil {
		return "", false, err
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}
	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	return defaultPath, false, nil
}

// RequireSpotify reports which Spotify credential is missing, if any.
func (c *Config) RequireSpotify() error {
	var missing []string
	if c.Spotify.ClientID == "" {
		missing = append(missing, "spotify.client_id (SPOTIFY_CLIENT_ID)")
	}
	if c.Spotify.ClientSecret == "" {
		missing = append(missing, "spotify.client_secret (SPOTIFY_CLIENT_SECRET)")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing Spotify credentials: %s", strings.Join(missing, ", "))
	}
	return nil
}
