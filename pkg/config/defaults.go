package config

const (
	defaultAddr              = ":4000"
	defaultRedirectURI       = "http://localhost:4000/callback"
	defaultAnthropicModel    = "claude-3-7-sonnet-20250219"
	defaultAnthropicMaxToken = 150
	defaultOpenAIModel       = "gpt-4o-mini"
	defaultMusicBrainzURL    = "https://musicbrainz.org"
	defaultAcousticBrainzURL = "https://acousticbrainz.org"
	defaultUserAgent         = "Stu-Music-Go/0.1 (https://github.com/stu-music/stu-music-go)"
	defaultEnrichRate        = 1.0
	defaultEnrichConcurrency = 4
	defaultEnrichTimeout     = 10
	defaultDatabasePath      = "stu.db"
	defaultLogLevel          = "info"
	defaultLogFormat         = "text"
)

// DefaultScopes are requested on login. Playback transfer and playlist
// creation both need a user token carrying these.
var DefaultScopes = []string{
	"streaming",
	"user-read-email",
	"user-read-private",
	"user-read-playback-state",
	"user-modify-playback-state",
	"playlist-modify-private",
}

// Default returns a Config populated with defaults.
func Default() Config {
	return Config{
		Server: Server{Addr: defaultAddr},
		Spotify: Spotify{
			RedirectURI: defaultRedirectURI,
			Scopes:      append([]string(nil), DefaultScopes...),
		},
		Anthropic: Anthropic{
			Model:     defaultAnthropicModel,
			MaxTokens: defaultAnthropicMaxToken,
		},
		OpenAI: OpenAI{Model: defaultOpenAIModel},
		Enrich: Enrich{
			MusicBrainzURL:    defaultMusicBrainzURL,
			AcousticBrainzURL: defaultAcousticBrainzURL,
			UserAgent:         defaultUserAgent,
			RequestsPerSecond: defaultEnrichRate,
			Concurrency:       defaultEnrichConcurrency,
			TimeoutSeconds:    defaultEnrichTimeout,
		},
		Database: Database{Path: defaultDatabasePath},
		Logging: Logging{
			Level:  defaultLogLevel,
			Format: defaultLogFormat,
		},
	}
}
