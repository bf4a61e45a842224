package config

import (
	"fmt"
	"os"
	"strings"
)

// applyEnv overlays environment variables on top of file values. Environment
// always wins so secrets can stay out of the file.
func (c *Config) applyEnv() {
	setFromEnv(&c.Spotify.ClientID, "SPOTIFY_CLIENT_ID")
	setFromEnv(&c.Spotify.ClientSecret, "SPOTIFY_CLIENT_SECRET")
	setFromEnv(&c.Spotify.RedirectURI, "SPOTIFY_REDIRECT_URI")
	setFromEnv(&c.Anthropic.APIKey, "ANTHROPIC_API_KEY")
	setFromEnv(&c.OpenAI.APIKey, "OPENAI_API_KEY")
	setFromEnv(&c.Server.SigningKey, "SIGNING_KEY")
	setFromEnv(&c.Database.Path, "DATABASE_PATH")
	setFromEnv(&c.Logging.Level, "STU_LOG_LEVEL")
	setFromEnv(&c.Enrich.UserAgent, "MB_USER_AGENT")
}

func setFromEnv(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

func (c *Config) normalize() error {
	c.Server.Addr = strings.TrimSpace(c.Server.Addr)
	if c.Server.Addr == "" {
		c.Server.Addr = defaultAddr
	}
	if c.Server.StaticDir != "" {
		dir, err := ExpandPath(c.Server.StaticDir)
		if err != nil {
			return fmt.Errorf("server.static_dir: %w", err)
		}
		c.Server.StaticDir = dir
	}

	if strings.TrimSpace(c.Spotify.RedirectURI) == "" {
		c.Spotify.RedirectURI = defaultRedirectURI
	}
	if len(c.Spotify.Scopes) == 0 {
		c.Spotify.Scopes = append([]string(nil), DefaultScopes...)
	}

	if strings.TrimSpace(c.Anthropic.Model) == "" {
		c.Anthropic.Model = defaultAnthropicModel
	}
	if strings.TrimSpace(c.OpenAI.Model) == "" {
		c.OpenAI.Model = defaultOpenAIModel
	}

	c.Enrich.MusicBrainzURL = strings.TrimRight(strings.TrimSpace(c.Enrich.MusicBrainzURL), "/")
	if c.Enrich.MusicBrainzURL == "" {
		c.Enrich.MusicBrainzURL = defaultMusicBrainzURL
	}
	c.Enrich.AcousticBrainzURL = strings.TrimRight(strings.TrimSpace(c.Enrich.AcousticBrainzURL), "/")
	if c.Enrich.AcousticBrainzURL == "" {
		c.Enrich.AcousticBrainzURL = defaultAcousticBrainzURL
	}
	if strings.TrimSpace(c.Enrich.UserAgent) == "" {
		c.Enrich.UserAgent = defaultUserAgent
	}
	if c.Enrich.TimeoutSeconds <= 0 {
		c.Enrich.TimeoutSeconds = defaultEnrichTimeout
	}

	if c.Database.Path == "" {
		c.Database.Path = defaultDatabasePath
	}
	dbPath, err := ExpandPath(c.Database.Path)
	if err != nil {
		return fmt.Errorf("database.path: %w", err)
	}
	c.Database.Path = dbPath

	if c.MindMap.Fixture != "" {
		fixture, err := ExpandPath(c.MindMap.Fixture)
		if err != nil {
			return fmt.Errorf("mindmap.fixture: %w", err)
		}
		c.MindMap.Fixture = fixture
	}

	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	return nil
}
