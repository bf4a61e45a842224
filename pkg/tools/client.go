package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"Stu-Music-Go/pkg/music"
)

const (
	ClientName    = "spotify-search-client"
	ClientVersion = "0.1.0"
)

// Dialer opens a fresh client session for each request.
type Dialer interface {
	Dial(ctx context.Context) (*Session, error)
}

// InProcess dials server over in-memory transports.
func InProcess(server *mcp.Server) Dialer {
	return inProcessDialer{server: server}
}

type inProcessDialer struct {
	server *mcp.Server
}

func (d inProcessDialer) Dial(ctx context.Context) (*Session, error) {
	clientT, serverT := mcp.NewInMemoryTransports()
	ss, err := d.server.Connect(ctx, serverT, nil)
	if err != nil {
		return nil, fmt.Errorf("mcp: start server session: %w", err)
	}
	cs, err := newClient().Connect(ctx, clientT, nil)
	if err != nil {
		ss.Close()
		return nil, fmt.Errorf("mcp: connect: %w", err)
	}
	return &Session{cs: cs, server: ss}, nil
}

// Command dials a tool server started as a subprocess speaking stdio.
func Command(name string, args ...string) Dialer {
	return commandDialer{name: name, args: args}
}

type commandDialer struct {
	name string
	args []string
}

func (d commandDialer) Dial(ctx context.Context) (*Session, error) {
	transport := &mcp.CommandTransport{Command: exec.Command(d.name, d.args...)}
	cs, err := newClient().Connect(ctx, transport, nil)
	if err != nil {
		return nil, fmt.Errorf("mcp: connect to %s: %w", d.name, err)
	}
	return &Session{cs: cs}, nil
}

func newClient() *mcp.Client {
	return mcp.NewClient(&mcp.Implementation{Name: ClientName, Version: ClientVersion}, nil)
}

// Session is one client connection to the tool server.
type Session struct {
	cs     *mcp.ClientSession
	server *mcp.ServerSession
}

var _ music.TrackSearcher = (*Session)(nil)

// Close ends the client session and, for in-process sessions, the server
// side too.
func (s *Session) Close() error {
	err := s.cs.Close()
	if s.server != nil {
		s.server.Close()
	}
	return err
}

// ListTools returns the tools the server advertises.
func (s *Session) ListTools(ctx context.Context) ([]*mcp.Tool, error) {
	res, err := s.cs.ListTools(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("mcp: list tools: %w", err)
	}
	return res.Tools, nil
}

// CallTool invokes name with args, which must marshal to a JSON object.
func (s *Session) CallTool(ctx context.Context, name string, args any) (*mcp.CallToolResult, error) {
	res, err := s.cs.CallTool(ctx, &mcp.CallToolParams{Name: name, Arguments: args})
	if err != nil {
		return nil, fmt.Errorf("mcp: call %s: %w", name, err)
	}
	return res, nil
}

// SearchTracks calls the search tool for tracks and decodes the "tracks"
// list from the first text content item.
func (s *Session) SearchTracks(ctx context.Context, query string) ([]music.Track, error) {
	res, err := s.CallTool(ctx, SearchTool, SearchInput{Query: query, Type: string(music.TypeTrack)})
	if err != nil {
		return nil, err
	}
	text, err := FirstText(res)
	if err != nil {
		return nil, err
	}
	if res.IsError {
		return nil, errors.New(text)
	}
	var payload music.SearchResults
	if err := json.Unmarshal([]byte(text), &payload); err != nil {
		return nil, fmt.Errorf("mcp: parse search result: %w", err)
	}
	return payload.Tracks, nil
}

// ErrNoText is returned when a tool result has no text content.
var ErrNoText = errors.New("mcp: tool result has no text content")

// FirstText returns the text of the first content item.
func FirstText(res *mcp.CallToolResult) (string, error) {
	if res == nil || len(res.Content) == 0 {
		return "", ErrNoText
	}
	tc, ok := res.Content[0].(*mcp.TextContent)
	if !ok {
		return "", ErrNoText
	}
	return tc.Text, nil
}
