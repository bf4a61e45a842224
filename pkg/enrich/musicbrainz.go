// Package enrich joins Spotify tracks to MusicBrainz recordings by ISRC and
// fetches the AcousticBrainz high-level features of each recording.
//
// MusicBrainz allows one unauthenticated request per second and requires a
// descriptive User-Agent; both are enforced by MusicBrainz. AcousticBrainz no
// longer accepts submissions but still serves its data dump read-only.
package enrich

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

var (
	// ErrNotFound is returned when the upstream has no entry for the key.
	ErrNotFound = errors.New("not found")
	// ErrRateLimited is returned when MusicBrainz answers 503.
	ErrRateLimited = errors.New("rate limited")
)

// Recording is a MusicBrainz recording matched by ISRC.
type Recording struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Length int    `json:"length,omitempty"` // milliseconds
	Artist string `json:"artist,omitempty"`
}

// MusicBrainz is a minimal client for the MusicBrainz web service.
type MusicBrainz struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewMusicBrainz returns a client limited to rps requests per second across
// all goroutines using it.
func NewMusicBrainz(baseURL, userAgent string, rps float64, timeout time.Duration) *MusicBrainz {
	return &MusicBrainz{
		baseURL:    strings.TrimRight(baseURL, "/"),
		userAgent:  userAgent,
		httpClient: &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(rate.Limit(rps), 1),
	}
}

// RecordingsByISRC returns every recording carrying isrc. ErrNotFound is
// returned when MusicBrainz does not know the code.
func (c *MusicBrainz) RecordingsByISRC(ctx context.Context, isrc string) ([]Recording, error) {
	var result struct {
		Recordings []struct {
			ID           string `json:"id"`
			Title        string `json:"title"`
			Length       int    `json:"length"`
			ArtistCredit []struct {
				Name string `json:"name"`
			} `json:"artist-credit"`
		} `json:"recordings"`
	}
	path := "/ws/2/isrc/" + url.PathEscape(isrc) + "?fmt=json&inc=artist-credits"
	if err := c.get(ctx, path, &result); err != nil {
		return nil, err
	}

	recs := make([]Recording, 0, len(result.Recordings))
	for _, r := range result.Recordings {
		names := make([]string, 0, len(r.ArtistCredit))
		for _, a := range r.ArtistCredit {
			names = append(names, a.Name)
		}
		recs = append(recs, Recording{
			ID:     r.ID,
			Title:  r.Title,
			Length: r.Length,
			Artist: strings.Join(names, ", "),
		})
	}
	if len(recs) == 0 {
		return nil, fmt.Errorf("musicbrainz: isrc %s: %w", isrc, ErrNotFound)
	}
	return recs, nil
}

func (c *MusicBrainz) get(ctx context.Context, path string, dst any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("musicbrainz: build request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("musicbrainz: request failed: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return fmt.Errorf("musicbrainz: %s: %w", path, ErrNotFound)
	case http.StatusServiceUnavailable:
		return fmt.Errorf("musicbrainz: %s: %w", path, ErrRateLimited)
	default:
		return fmt.Errorf("musicbrainz: HTTP %d for %s", resp.StatusCode, path)
	}
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("musicbrainz: decode response: %w", err)
	}
	return nil
}
