package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Feature is one high-level classifier output, e.g. "danceability".
type Feature struct {
	Value       string             `json:"value"`
	Probability float64            `json:"probability"`
	All         map[string]float64 `json:"all,omitempty"`
}

// Features maps classifier name to its output.
type Features map[string]Feature

// AcousticBrainz reads high-level features for MusicBrainz recordings.
type AcousticBrainz struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
}

// NewAcousticBrainz returns a client for the AcousticBrainz API at baseURL.
func NewAcousticBrainz(baseURL, userAgent string, timeout time.Duration) *AcousticBrainz {
	return &AcousticBrainz{
		baseURL:    strings.TrimRight(baseURL, "/"),
		userAgent:  userAgent,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// HighLevel returns the high-level features of recording mbid.
func (c *AcousticBrainz) HighLevel(ctx context.Context, mbid string) (Features, error) {
	path := "/api/v1/" + url.PathEscape(mbid) + "/high-level"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("acousticbrainz: build request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("acousticbrainz: request failed: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, fmt.Errorf("acousticbrainz: %s: %w", mbid, ErrNotFound)
	case http.StatusTooManyRequests, http.StatusServiceUnavailable:
		return nil, fmt.Errorf("acousticbrainz: %s: %w", mbid, ErrRateLimited)
	default:
		return nil, fmt.Errorf("acousticbrainz: HTTP %d for %s", resp.StatusCode, path)
	}

	var body struct {
		HighLevel Features `json:"highlevel"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("acousticbrainz: decode response: %w", err)
	}
	if body.HighLevel == nil {
		body.HighLevel = Features{}
	}
	return body.HighLevel, nil
}
