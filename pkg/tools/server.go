// Package tools exposes the Spotify catalog as a Model Context Protocol
// server with a single "search" tool, and provides the client side used by
// the agent to call it. The server can run in-process over in-memory
// transports or as a separate `stu mcp` process speaking stdio.
package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sirupsen/logrus"

	"Stu-Music-Go/pkg/logging"
	"Stu-Music-Go/pkg/music"
)

const (
	ServerName    = "SpotifyMCP"
	ServerVersion = "0.1.0"

	// SearchTool is the name of the only tool the server registers.
	SearchTool = "search"
)

// SearchInput is the argument object of the search tool.
type SearchInput struct {
	Query string `json:"query"`
	Type  string `json:"type,omitempty"`
	Limit int    `json:"limit,omitempty"`
}

// NewServer returns an MCP server whose search tool is backed by s.
func NewServer(s music.Searcher, log logrus.FieldLogger) *mcp.Server {
	log = logging.OrDiscard(log).WithField("component", "mcp")
	server := mcp.NewServer(&mcp.Implementation{Name: ServerName, Version: ServerVersion}, nil)
	mcp.AddTool(server, &mcp.Tool{
		Name:        SearchTool,
		Description: "Search Spotify for songs, artists, albums, or playlists",
		InputSchema: searchSchema(),
	}, searchHandler(s, log))
	return server
}

func searchHandler(s music.Searcher, log logrus.FieldLogger) mcp.ToolHandlerFor[SearchInput, any] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, in SearchInput) (*mcp.CallToolResult, any, error) {
		log.WithFields(logrus.Fields{"query": in.Query, "type": in.Type}).Info("search tool called")

		results, err := runSearch(ctx, s, in)
		if err != nil {
			log.WithError(err).Error("search tool failed")
			return &mcp.CallToolResult{
				IsError: true,
				Content: []mcp.Content{&mcp.TextContent{Text: fmt.Sprintf("Error searching Spotify: %v", err)}},
			}, nil, nil
		}
		body, err := json.MarshalIndent(results, "", "  ")
		if err != nil {
			return nil, nil, fmt.Errorf("encode search results: %w", err)
		}
		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: string(body)}},
		}, nil, nil
	}
}

func runSearch(ctx context.Context, s music.Searcher, in SearchInput) (*music.SearchResults, error) {
	if in.Query == "" {
		return nil, fmt.Errorf("query is required")
	}
	t, err := music.ParseSearchType(in.Type)
	if err != nil {
		return nil, err
	}
	if in.Limit != 0 && (in.Limit < 1 || in.Limit > music.MaxLimit) {
		return nil, fmt.Errorf("limit must be between 1 and %d", music.MaxLimit)
	}
	return s.Search(ctx, in.Query, t, music.ClampLimit(in.Limit))
}

func searchSchema() *jsonschema.Schema {
	types := make([]any, len(music.SearchTypes))
	for i, t := range music.SearchTypes {
		types[i] = string(t)
	}
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"query": {
				Type:        "string",
				Description: "Search query for songs, artists, albums, or playlists",
			},
			"type": {
				Type:        "string",
				Enum:        types,
				Default:     json.RawMessage(`"track"`),
				Description: "Type of item to search for",
			},
			"limit": {
				Type:        "integer",
				Minimum:     float64Ptr(1),
				Maximum:     float64Ptr(music.MaxLimit),
				Default:     json.RawMessage(fmt.Sprint(music.DefaultLimit)),
				Description: "Maximum number of results to return",
			},
		},
		Required: []string{"query"},
	}
}

func float64Ptr(f float64) *float64 { return &f }

// Serve runs server over stdin/stdout until ctx is cancelled or the client
// disconnects.
func Serve(ctx context.Context, server *mcp.Server) error {
	return server.Run(ctx, &mcp.StdioTransport{})
}
