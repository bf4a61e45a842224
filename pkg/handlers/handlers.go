// Package handlers contains the HTTP API for Stu. Application holds the
// dependencies; Routes wires them to a ServeMux behind the request ID,
// metrics and security header middleware.
package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"

	"Stu-Music-Go/pkg/agent"
	"Stu-Music-Go/pkg/db"
	"Stu-Music-Go/pkg/enrich"
	"Stu-Music-Go/pkg/logging"
	"Stu-Music-Go/pkg/metrics"
	"Stu-Music-Go/pkg/mindmap"
	"Stu-Music-Go/pkg/music"
)

// Catalog is the application-token side of Spotify.
type Catalog interface {
	music.Searcher
	AlbumCover(ctx context.Context, song, artist string) (string, error)
}

// Authenticator is the user-token side of Spotify.
type Authenticator interface {
	AuthURL(state string) string
	Exchange(ctx context.Context, code string) (*oauth2.Token, error)
	TransferPlayback(ctx context.Context, tok *oauth2.Token, deviceID string, play bool) error
}

// Agent runs actions and prompts.
type Agent interface {
	ExecuteAction(ctx context.Context, a agent.Action, tok *oauth2.Token) (any, error)
	RunPrompt(ctx context.Context, prompt string) (*agent.PromptResult, error)
}

// Enricher resolves acoustic features for Spotify tracks.
type Enricher interface {
	Enrich(ctx context.Context, trackIDs []string) ([]enrich.Result, error)
}

// History reads the search log.
type History interface {
	RecentSearches(ctx context.Context, limit int) ([]db.Search, error)
	TopQueriesSince(ctx context.Context, since time.Time, limit int) ([]db.QueryCount, error)
}

var (
	_ Agent    = (*agent.Service)(nil)
	_ Enricher = (*enrich.Enricher)(nil)
	_ History  = (*db.DB)(nil)
)

// Application holds the dependencies used by the handlers. Enricher, History
// and MindMap may be nil; their routes then answer 503.
type Application struct {
	Spotify  Catalog
	Auth     Authenticator
	Agent    Agent
	Enricher Enricher
	History  History
	MindMap  *mindmap.Store
	SignKey  []byte
	Log      logrus.FieldLogger

	// Metrics and Gatherer back the /metrics endpoint. When Gatherer is nil
	// the default registry is exposed.
	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer

	// StaticDir, when set, is served at / for the browser UI.
	StaticDir string
}

// Routes returns the application's HTTP handler.
func (app *Application) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /login", app.Login)
	mux.HandleFunc("POST /api/auth/token", app.TokenExchange)
	mux.HandleFunc("POST /api/music", app.Music)
	mux.HandleFunc("POST /api/agent", app.AgentAction)
	mux.HandleFunc("POST /api/stu", app.Stu)
	mux.HandleFunc("GET /api/album-cover", app.AlbumCover)
	mux.HandleFunc("GET /api/mindmap", app.MindMapList)
	mux.HandleFunc("PATCH /api/mindmap", app.MindMapMove)
	mux.HandleFunc("POST /api/player/transfer", app.TransferPlayback)
	mux.HandleFunc("POST /api/enrich", app.Enrich)
	mux.HandleFunc("GET /api/history", app.SearchHistory)
	mux.HandleFunc("GET /api/history/top", app.TopQueries)
	mux.HandleFunc("GET /health", app.Health)

	gatherer := app.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	mux.Handle("GET /metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	if app.StaticDir != "" {
		mux.Handle("GET /", http.FileServer(http.Dir(app.StaticDir)))
	}

	return RequestID(app.log(), Metrics(app.Metrics, SecurityHeaders(mux)))
}

// Health reports that the process is serving.
func (app *Application) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (app *Application) log() logrus.FieldLogger {
	return logging.OrDiscard(app.Log)
}

// requestLog returns the application logger with the request ID attached.
func (app *Application) requestLog(r *http.Request) logrus.FieldLogger {
	return logging.FromContext(r.Context(), app.Log)
}
