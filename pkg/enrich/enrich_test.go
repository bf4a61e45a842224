package enrich

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

func TestRecordingsByISRC(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/ws/2/isrc/GBAYE0601498" || r.URL.Query().Get("fmt") != "json" {
			t.Errorf("unexpected request %s", r.URL)
		}
		if r.Header.Get("User-Agent") != "stu-test/1.0" {
			t.Errorf("user agent = %q", r.Header.Get("User-Agent"))
		}
		io.WriteString(w, `{"isrc":"GBAYE0601498","recordings":[{"id":"mb-1","title":"Teardrop","length":330000,
			"artist-credit":[{"name":"Massive Attack"},{"name":"Elizabeth Fraser"}]}]}`)
	}))
	defer srv.Close()

	mb := NewMusicBrainz(srv.URL, "stu-test/1.0", 100, time.Second)
	recs, err := mb.RecordingsByISRC(context.Background(), "GBAYE0601498")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(recs) != 1 || recs[0].ID != "mb-1" || recs[0].Artist != "Massive Attack, Elizabeth Fraser" {
		t.Fatalf("unexpected recordings: %+v", recs)
	}
}

func TestMusicBrainzStatusErrors(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{http.StatusNotFound, ErrNotFound},
		{http.StatusServiceUnavailable, ErrRateLimited},
	}
	for _, tt := range tests {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tt.status)
		}))
		_, err := NewMusicBrainz(srv.URL, "ua", 100, time.Second).RecordingsByISRC(context.Background(), "X")
		srv.Close()
		if !errors.Is(err, tt.want) {
			t.Errorf("status %d: got %v, want %v", tt.status, err, tt.want)
		}
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()
	_, err := NewMusicBrainz(srv.URL, "ua", 100, time.Second).RecordingsByISRC(context.Background(), "X")
	if err == nil || errors.Is(err, ErrNotFound) {
		t.Fatalf("expected plain HTTP error, got %v", err)
	}
}

func TestHighLevel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/mb-1/high-level" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		io.WriteString(w, `{"highlevel":{"danceability":{"value":"danceable","probability":0.91,
			"all":{"danceable":0.91,"not_danceable":0.09}}},"metadata":{}}`)
	}))
	defer srv.Close()

	f, err := NewAcousticBrainz(srv.URL, "ua", time.Second).HighLevel(context.Background(), "mb-1")
	if err != nil {
		t.Fatal(err)
	}
	d := f["danceability"]
	if d.Value != "danceable" || d.Probability != 0.91 || d.All["not_danceable"] != 0.09 {
		t.Fatalf("unexpected features: %+v", f)
	}
}

type fakeISRCs map[string]string

func (f fakeISRCs) ISRCs(ctx context.Context, ids ...string) (map[string]string, error) {
	return f, nil
}

type fakeRecordings struct{}

func (fakeRecordings) RecordingsByISRC(ctx context.Context, isrc string) ([]Recording, error) {
	if isrc == "MISSING" {
		return nil, ErrNotFound
	}
	return []Recording{{ID: "mb-" + isrc, Title: "t-" + isrc}}, nil
}

type fakeFeatures struct {
	mu    sync.Mutex
	calls int
}

func (f *fakeFeatures) HighLevel(ctx context.Context, mbid string) (Features, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	return Features{"mood_happy": {Value: "happy", Probability: 0.7}}, nil
}

type memCache struct {
	mu   sync.Mutex
	data map[string]json.RawMessage
}

func (c *memCache) GetFeatures(ctx context.Context, mbid string) (json.RawMessage, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	d, ok := c.data[mbid]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return d, nil
}

func (c *memCache) SaveFeatures(ctx context.Context, mbid string, data json.RawMessage) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[mbid] = data
	return nil
}

// TestEnrichKeepsOrderAndRecordsErrors checks that per-track failures do not
// fail the batch and that results line up with the input.
func TestEnrichKeepsOrderAndRecordsErrors(t *testing.T) {
	features := &fakeFeatures{}
	cache := &memCache{data: map[string]json.RawMessage{}}
	e := &Enricher{
		ISRCs:       fakeISRCs{"a": "A1", "b": "MISSING", "d": "D1"},
		Recordings:  fakeRecordings{},
		Features:    features,
		Cache:       cache,
		Concurrency: 2,
	}

	res, err := e.Enrich(context.Background(), []string{"a", "b", "spotify:track:c", "d"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res) != 4 {
		t.Fatalf("expected 4 results, got %d", len(res))
	}
	if res[0].TrackID != "a" || res[0].MBID != "mb-A1" || res[0].Features["mood_happy"].Value != "happy" {
		t.Errorf("unexpected first result: %+v", res[0])
	}
	if res[1].Error == "" || res[2].Error == "" {
		t.Errorf("expected errors for b and c: %+v %+v", res[1], res[2])
	}
	if res[2].TrackID != "c" {
		t.Errorf("uri prefix not stripped: %q", res[2].TrackID)
	}
	if res[3].MBID != "mb-D1" || res[3].Error != "" {
		t.Errorf("unexpected last result: %+v", res[3])
	}

	again, err := e.Enrich(context.Background(), []string{"a"})
	if err != nil {
		t.Fatal(err)
	}
	if !again[0].Cached || features.calls != 2 {
		t.Errorf("expected cached features, calls=%d result=%+v", features.calls, again[0])
	}
}
