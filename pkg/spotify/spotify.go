// Package spotify wraps the zmb3 Spotify client and projects its responses
// into the flat shapes defined by package music. Catalog calls use an
// application token from the client credentials flow; user-scoped calls
// (playback transfer, playlist creation) go through Auth with the caller's
// own token.
//
// The wrapped library does not accept a context, so cancellation is checked
// explicitly before each upstream call.
package spotify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/zmb3/spotify"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"Stu-Music-Go/pkg/music"
)

// tokenExpiryDelta refreshes the application token this long before Spotify
// would reject it.
const tokenExpiryDelta = 60 * time.Second

// ErrNoCover is returned by AlbumCover when no track or image matched.
var ErrNoCover = errors.New("no album cover found")

// searcher defines the subset of the spotify.Client used by Client. It allows
// the concrete client to be replaced in tests.
type searcher interface {
	SearchOpt(query string, t spotify.SearchType, opt *spotify.Options) (*spotify.SearchResult, error)
	GetAlbum(id spotify.ID) (*spotify.FullAlbum, error)
	GetTracks(ids ...spotify.ID) ([]*spotify.FullTrack, error)
}

// Client performs catalog lookups with an application token.
type Client struct {
	client searcher
}

var _ music.Searcher = (*Client)(nil)

// NewClient returns a Client authenticating with the client credentials flow.
// No request is made until the first search; the token is then cached and
// renewed shortly before it expires.
func NewClient(ctx context.Context, clientID, clientSecret string) *Client {
	config := &clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     spotify.TokenURL,
	}
	src := oauth2.ReuseTokenSourceWithExpiry(nil, credentialsSource{ctx: ctx, config: config}, tokenExpiryDelta)
	c := spotify.NewClient(oauth2.NewClient(ctx, src))
	return &Client{client: &c}
}

// credentialsSource fetches a fresh token on every call. The reuse wrapper in
// NewClient decides when that is necessary.
type credentialsSource struct {
	ctx    context.Context
	config *clientcredentials.Config
}

func (s credentialsSource) Token() (*oauth2.Token, error) {
	return s.config.Token(s.ctx)
}

// Search implements music.Searcher. Only the list matching t is populated.
func (c *Client) Search(ctx context.Context, query string, t music.SearchType, limit int) (*music.SearchResults, error) {
	st, err := searchType(t)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	n := music.ClampLimit(limit)
	res, err := c.client.SearchOpt(query, st, &spotify.Options{Limit: &n})
	if err != nil {
		return nil, err
	}
	return parseSearchResult(res, t), nil
}

// SearchTracks implements music.TrackSearcher with the default limit.
func (c *Client) SearchTracks(ctx context.Context, query string) ([]music.Track, error) {
	res, err := c.Search(ctx, query, music.TypeTrack, music.DefaultLimit)
	if err != nil {
		return nil, err
	}
	return res.Tracks, nil
}

// AlbumCover finds the best matching track for song and artist and returns
// the URL of its album's medium image (usually 300x300), falling back to the
// first image when only one exists.
func (c *Client) AlbumCover(ctx context.Context, song, artist string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	one := 1
	q := fmt.Sprintf("track:%s artist:%s", song, artist)
	res, err := c.client.SearchOpt(q, spotify.SearchTypeTrack, &spotify.Options{Limit: &one})
	if err != nil {
		return "", err
	}
	if res.Tracks == nil || len(res.Tracks.Tracks) == 0 {
		return "", ErrNoCover
	}

	if err := ctx.Err(); err != nil {
		return "", err
	}
	album, err := c.client.GetAlbum(res.Tracks.Tracks[0].Album.ID)
	if err != nil {
		return "", err
	}
	switch {
	case len(album.Images) > 1:
		return album.Images[1].URL, nil
	case len(album.Images) == 1:
		return album.Images[0].URL, nil
	}
	return "", ErrNoCover
}

// maxTracksPerRequest is Spotify's limit for GET /tracks.
const maxTracksPerRequest = 50

// ISRCs returns the ISRC of each track ID Spotify knows. IDs that are unknown
// or carry no ISRC are absent from the map.
func (c *Client) ISRCs(ctx context.Context, ids ...string) (map[string]string, error) {
	out := make(map[string]string, len(ids))
	for start := 0; start < len(ids); start += maxTracksPerRequest {
		end := start + maxTracksPerRequest
		if end > len(ids) {
			end = len(ids)
		}
		batch := make([]spotify.ID, 0, end-start)
		for _, id := range ids[start:end] {
			batch = append(batch, spotify.ID(TrackID(id)))
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		tracks, err := c.client.GetTracks(batch...)
		if err != nil {
			return nil, err
		}
		for _, t := range tracks {
			if t == nil {
				continue
			}
			if isrc := t.ExternalIDs["isrc"]; isrc != "" {
				out[string(t.ID)] = isrc
			}
		}
	}
	return out, nil
}

// TrackID strips the "spotify:track:" prefix from a URI so either form can
// be passed where an ID is expected.
func TrackID(s string) string {
	return strings.TrimPrefix(strings.TrimSpace(s), "spotify:track:")
}

func searchType(t music.SearchType) (spotify.SearchType, error) {
	switch t {
	case music.TypeTrack, "":
		return spotify.SearchTypeTrack, nil
	case music.TypeAlbum:
		return spotify.SearchTypeAlbum, nil
	case music.TypeArtist:
		return spotify.SearchTypeArtist, nil
	case music.TypePlaylist:
		return spotify.SearchTypePlaylist, nil
	}
	return 0, fmt.Errorf("unknown search type %q", t)
}
