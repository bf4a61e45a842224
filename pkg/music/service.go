// Package music defines the flattened catalog shapes returned by every search
// path (the HTTP API, the MCP search tool and the CLI) and the interfaces the
// rest of the application depends on. Spotify's nested JSON is projected into
// these types once, in package spotify, so handlers and tools never touch the
// upstream structures directly.
package music

import (
	"context"
	"fmt"
	"strings"
)

// SearchType selects which catalog objects a search returns.
type SearchType string

const (
	TypeTrack    SearchType = "track"
	TypeAlbum    SearchType = "album"
	TypeArtist   SearchType = "artist"
	TypePlaylist SearchType = "playlist"
)

// Search limits accepted by Spotify.
const (
	DefaultLimit = 10
	MaxLimit     = 50
)

// SearchTypes lists the valid search types in display order.
var SearchTypes = []SearchType{TypeTrack, TypeAlbum, TypeArtist, TypePlaylist}

// ParseSearchType converts s into a SearchType. An empty string means track.
func ParseSearchType(s string) (SearchType, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return TypeTrack, nil
	}
	for _, t := range SearchTypes {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown search type %q", s)
}

// ClampLimit maps n into [1, MaxLimit]; zero or negative selects DefaultLimit.
func ClampLimit(n int) int {
	switch {
	case n <= 0:
		return DefaultLimit
	case n > MaxLimit:
		return MaxLimit
	default:
		return n
	}
}

// Track is a flattened Spotify track. Artist holds every artist name joined
// with ", ".
type Track struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	URI        string `json:"uri"`
	Artist     string `json:"artist"`
	Album      string `json:"album"`
	DurationMS int    `json:"duration_ms"`
	Popularity int    `json:"popularity"`
}

// Album is a flattened Spotify album.
type Album struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	URI         string `json:"uri"`
	Artist      string `json:"artist"`
	ReleaseDate string `json:"release_date"`
	TotalTracks int    `json:"total_tracks,omitempty"`
}

// Artist is a flattened Spotify artist.
type Artist struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	URI        string   `json:"uri"`
	Genres     []string `json:"genres"`
	Popularity int      `json:"popularity"`
}

// Playlist is a flattened Spotify playlist.
type Playlist struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	URI         string `json:"uri"`
	Owner       string `json:"owner"`
	TracksTotal int    `json:"tracks_total"`
}

// SearchResults holds the list matching the requested SearchType. The other
// lists stay nil and are omitted from JSON.
type SearchResults struct {
	Tracks    []Track    `json:"tracks,omitempty"`
	Albums    []Album    `json:"albums,omitempty"`
	Artists   []Artist   `json:"artists,omitempty"`
	Playlists []Playlist `json:"playlists,omitempty"`
}

// Len reports the number of items across all lists.
func (r *SearchResults) Len() int {
	if r == nil {
		return 0
	}
	return len(r.Tracks) + len(r.Albums) + len(r.Artists) + len(r.Playlists)
}

// Searcher queries a catalog. Implementations clamp limit with ClampLimit.
type Searcher interface {
	Search(ctx context.Context, query string, t SearchType, limit int) (*SearchResults, error)
}

// TrackSearcher runs a single track search. The fan-out calls it once per
// rewritten query.
type TrackSearcher interface {
	SearchTracks(ctx context.Context, query string) ([]Track, error)
}

// QueryRewriter turns a free-text request into comma-separated search
// queries.
type QueryRewriter interface {
	Rewrite(ctx context.Context, query string) (string, error)
}
