// Package agent executes the structured actions and free-text prompts sent
// by the browser UI. Every request dials its own session to the search tool
// server and closes it when done.
package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"

	"Stu-Music-Go/pkg/db"
	"Stu-Music-Go/pkg/llm"
	"Stu-Music-Go/pkg/logging"
	"Stu-Music-Go/pkg/metrics"
	"Stu-Music-Go/pkg/music"
	"Stu-Music-Go/pkg/tools"
)

// Action names understood by ExecuteAction.
const (
	ActionFindMusic      = "findMusic"
	ActionCreatePlaylist = "createPlaylist"
)

// ErrInvalidParams is returned when an action's params are missing or
// malformed.
var ErrInvalidParams = errors.New("invalid params")

// ErrNoUserToken is the createPlaylist error when no Spotify user token came
// with the request.
var ErrNoUserToken = errors.New("createPlaylist requires a Spotify user token")

// Action is the request envelope for ExecuteAction.
type Action struct {
	Action string          `json:"action"`
	Params json.RawMessage `json:"params"`
}

// FindMusicParams are the params of findMusic.
type FindMusicParams struct {
	Query string `json:"query"`
}

// CreatePlaylistParams are the params of createPlaylist. Tracks may be IDs or
// spotify:track: URIs.
type CreatePlaylistParams struct {
	Name   string   `json:"name"`
	Tracks []string `json:"tracks"`
}

// FindMusicResult is returned by findMusic.
type FindMusicResult struct {
	Tracks []music.Track `json:"tracks"`
}

// PlaylistResult is returned by createPlaylist.
type PlaylistResult struct {
	Success    bool   `json:"success"`
	PlaylistID string `json:"playlistId,omitempty"`
	Error      string `json:"error,omitempty"`
}

// PromptResult is returned by RunPrompt. Response is the first content item
// of the first tool result.
type PromptResult struct {
	Response mcp.Content `json:"response"`
}

// Planner chooses tool calls for a prompt. *llm.Planner satisfies it.
type Planner interface {
	Plan(ctx context.Context, prompt string, tools []*mcp.Tool) (*llm.Plan, error)
}

// PlaylistCreator creates playlists on behalf of a user. *spotify.Auth
// satisfies it.
type PlaylistCreator interface {
	CreatePlaylist(ctx context.Context, tok *oauth2.Token, name string, tracks []string) (string, error)
}

// SearchLog records fan-out runs. *db.DB satisfies it.
type SearchLog interface {
	LogSearch(ctx context.Context, s db.Search) error
}

// Service wires the tool server, the models and Spotify together. Rewriter,
// Planner, Playlists, History and Metrics are optional.
type Service struct {
	Tools     tools.Dialer
	Rewriter  music.QueryRewriter
	Planner   Planner
	Playlists PlaylistCreator
	History   SearchLog
	Metrics   *metrics.Metrics
	Log       logrus.FieldLogger
}

// ExecuteAction dispatches a on its name. tok is the caller's Spotify token
// and may be nil.
func (s *Service) ExecuteAction(ctx context.Context, a Action, tok *oauth2.Token) (any, error) {
	switch a.Action {
	case ActionFindMusic:
		var p FindMusicParams
		if err := json.Unmarshal(a.Params, &p); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidParams, err)
		}
		if strings.TrimSpace(p.Query) == "" {
			return nil, fmt.Errorf("%w: query is required", ErrInvalidParams)
		}
		res, err := s.FindMusic(ctx, p.Query)
		if err != nil {
			return nil, fmt.Errorf("failed to find music: %w", err)
		}
		return FindMusicResult{Tracks: res.Tracks}, nil
	case ActionCreatePlaylist:
		var p CreatePlaylistParams
		if err := json.Unmarshal(a.Params, &p); err != nil {
			return PlaylistResult{Error: fmt.Sprintf("invalid params: %v", err)}, nil
		}
		return s.CreatePlaylist(ctx, p, tok), nil
	}
	return nil, fmt.Errorf("Unknown action: %s", a.Action)
}

// FindMusic runs the fan-out for query against a fresh tool session and
// records the run.
func (s *Service) FindMusic(ctx context.Context, query string) (music.Result, error) {
	log := logging.FromContext(ctx, s.Log).WithField("component", "agent")

	sess, err := s.Tools.Dial(ctx)
	if err != nil {
		return music.Result{Tracks: []music.Track{}}, err
	}
	defer sess.Close()

	res, err := music.FanOut{Rewriter: s.Rewriter, Log: log}.Run(ctx, query, sess)
	if err != nil {
		return res, err
	}
	s.Metrics.ObserveFanOut(len(res.Queries), res.Failed)
	log.WithFields(logrus.Fields{
		"query":   query,
		"queries": len(res.Queries),
		"tracks":  len(res.Tracks),
		"failed":  res.Failed,
	}).Info("fan-out complete")

	if s.History != nil {
		entry := db.Search{
			RequestID:  logging.RequestID(ctx),
			Query:      query,
			Queries:    res.Queries,
			TrackCount: len(res.Tracks),
			Failed:     res.Failed,
		}
		if err := s.History.LogSearch(ctx, entry); err != nil {
			log.WithError(err).Warn("record search")
		}
	}
	return res, nil
}

// CreatePlaylist creates a playlist for the token owner. Failures are
// reported in the result.
func (s *Service) CreatePlaylist(ctx context.Context, p CreatePlaylistParams, tok *oauth2.Token) PlaylistResult {
	switch {
	case tok == nil:
		return PlaylistResult{Error: ErrNoUserToken.Error()}
	case s.Playlists == nil:
		return PlaylistResult{Error: "playlist creation is not configured"}
	case strings.TrimSpace(p.Name) == "":
		return PlaylistResult{Error: "playlist name is required"}
	}
	id, err := s.Playlists.CreatePlaylist(ctx, tok, p.Name, p.Tracks)
	if err != nil {
		logging.FromContext(ctx, s.Log).WithError(err).Error("create playlist")
		return PlaylistResult{PlaylistID: id, Error: err.Error()}
	}
	return PlaylistResult{Success: true, PlaylistID: id}
}

// RunPrompt lets the planner pick tool calls for prompt, runs them in order
// and returns the first content item of the first result. When the model
// answers without calling a tool its text is returned instead.
func (s *Service) RunPrompt(ctx context.Context, prompt string) (*PromptResult, error) {
	if s.Planner == nil {
		return nil, errors.New("prompt planner is not configured")
	}
	log := logging.FromContext(ctx, s.Log).WithField("component", "agent")

	sess, err := s.Tools.Dial(ctx)
	if err != nil {
		return nil, err
	}
	defer sess.Close()

	available, err := sess.ListTools(ctx)
	if err != nil {
		return nil, err
	}
	plan, err := s.Planner.Plan(ctx, prompt, available)
	if err != nil {
		return nil, err
	}
	if len(plan.Calls) == 0 {
		return &PromptResult{Response: &mcp.TextContent{Text: plan.Text}}, nil
	}

	var first *mcp.CallToolResult
	for _, call := range plan.Calls {
		log.WithField("tool", call.Name).Debug("calling tool")
		res, err := sess.CallTool(ctx, call.Name, call.Arguments)
		if err != nil {
			return nil, err
		}
		if first == nil {
			first = res
		}
	}
	if len(first.Content) == 0 {
		return nil, tools.ErrNoText
	}
	return &PromptResult{Response: first.Content[0]}, nil
}
