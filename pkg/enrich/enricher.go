package enrich

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"Stu-Music-Go/pkg/logging"
	"Stu-Music-Go/pkg/spotify"
)

// ISRCResolver maps Spotify track IDs to ISRCs. *spotify.Client satisfies it.
type ISRCResolver interface {
	ISRCs(ctx context.Context, ids ...string) (map[string]string, error)
}

var _ ISRCResolver = (*spotify.Client)(nil)

// RecordingFinder looks up MusicBrainz recordings by ISRC.
type RecordingFinder interface {
	RecordingsByISRC(ctx context.Context, isrc string) ([]Recording, error)
}

// FeatureSource fetches high-level features for a recording.
type FeatureSource interface {
	HighLevel(ctx context.Context, mbid string) (Features, error)
}

// Cache stores feature JSON by MBID. *db.DB satisfies it; GetFeatures must
// return sql.ErrNoRows on a miss.
type Cache interface {
	GetFeatures(ctx context.Context, mbid string) (json.RawMessage, error)
	SaveFeatures(ctx context.Context, mbid string, data json.RawMessage) error
}

// Result is the enrichment outcome for one track. Error is set instead of
// failing the whole batch.
type Result struct {
	TrackID  string   `json:"track_id"`
	ISRC     string   `json:"isrc,omitempty"`
	MBID     string   `json:"mbid,omitempty"`
	Title    string   `json:"title,omitempty"`
	Artist   string   `json:"artist,omitempty"`
	Features Features `json:"features,omitempty"`
	Cached   bool     `json:"cached,omitempty"`
	Error    string   `json:"error,omitempty"`
}

// Enricher runs the Spotify → MusicBrainz → AcousticBrainz pipeline.
type Enricher struct {
	ISRCs       ISRCResolver
	Recordings  RecordingFinder
	Features    FeatureSource
	Cache       Cache // optional
	Concurrency int
	Log         logrus.FieldLogger
}

// Enrich resolves every track in trackIDs. The returned slice has one entry
// per input in the same order. An error is returned only when the ISRC lookup
// itself fails or ctx ends.
func (e *Enricher) Enrich(ctx context.Context, trackIDs []string) ([]Result, error) {
	log := logging.OrDiscard(e.Log).WithField("component", "enrich")

	isrcs, err := e.ISRCs.ISRCs(ctx, trackIDs...)
	if err != nil {
		return nil, fmt.Errorf("resolve isrcs: %w", err)
	}

	results := make([]Result, len(trackIDs))
	g, gctx := errgroup.WithContext(ctx)
	limit := e.Concurrency
	if limit <= 0 {
		limit = 1
	}
	g.SetLimit(limit)
	for i, raw := range trackIDs {
		id := spotify.TrackID(raw)
		results[i] = Result{TrackID: id, ISRC: isrcs[id]}
		g.Go(func() error {
			if err := e.enrichOne(gctx, &results[i]); err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				results[i].Error = err.Error()
				log.WithError(err).WithField("track_id", id).Warn("enrichment failed")
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}

func (e *Enricher) enrichOne(ctx context.Context, r *Result) error {
	if r.ISRC == "" {
		return errors.New("spotify: track has no isrc")
	}
	recs, err := e.Recordings.RecordingsByISRC(ctx, r.ISRC)
	if err != nil {
		return err
	}
	rec := recs[0]
	r.MBID, r.Title, r.Artist = rec.ID, rec.Title, rec.Artist

	if f, ok := e.cached(ctx, rec.ID); ok {
		r.Features, r.Cached = f, true
		return nil
	}
	f, err := e.Features.HighLevel(ctx, rec.ID)
	if err != nil {
		return err
	}
	r.Features = f
	if e.Cache != nil {
		if data, err := json.Marshal(f); err == nil {
			if err := e.Cache.SaveFeatures(ctx, rec.ID, data); err != nil {
				logging.OrDiscard(e.Log).WithError(err).WithField("mbid", rec.ID).Warn("cache features")
			}
		}
	}
	return nil
}

func (e *Enricher) cached(ctx context.Context, mbid string) (Features, bool) {
	if e.Cache == nil {
		return nil, false
	}
	data, err := e.Cache.GetFeatures(ctx, mbid)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			logging.OrDiscard(e.Log).WithError(err).WithField("mbid", mbid).Warn("read feature cache")
		}
		return nil, false
	}
	var f Features
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, false
	}
	return f, true
}
