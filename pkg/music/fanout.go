package music

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	"Stu-Music-Go/pkg/logging"
)

// FanOut expands one user query into several searches and concatenates the
// results. Sub-queries run one after another. A failing sub-query is logged
// and skipped; the caller always gets whatever the others produced.
type FanOut struct {
	Rewriter QueryRewriter
	Log      logrus.FieldLogger
}

// Result describes one fan-out run.
type Result struct {
	// Queries are the search terms actually issued.
	Queries []string
	// Tracks is the flattened result in query order. Duplicates are kept.
	Tracks []Track
	// Failed counts sub-queries that produced nothing because of an error.
	Failed int
	// Rewritten is false when the rewriter failed and the original query
	// was used as the only search term.
	Rewritten bool
}

// SplitQueries splits rewriter output on commas, trims each term and drops
// empty ones. No escaping is recognised.
func SplitQueries(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Run rewrites query, searches each resulting term with s and flattens the
// track lists. The only error returned is ctx.Err() when the context ends
// before every term has been searched; the partial result is returned with
// it.
func (f FanOut) Run(ctx context.Context, query string, s TrackSearcher) (Result, error) {
	log := logging.OrDiscard(f.Log).WithField("query", query)

	res := Result{Tracks: []Track{}}
	if f.Rewriter != nil {
		out, err := f.Rewriter.Rewrite(ctx, query)
		if err != nil {
			log.WithError(err).Warn("query rewrite failed, searching original query")
		} else {
			res.Queries = SplitQueries(out)
			res.Rewritten = len(res.Queries) > 0
		}
	}
	if len(res.Queries) == 0 {
		res.Queries = []string{strings.TrimSpace(query)}
	}
	log.WithField("queries", res.Queries).Debug("fan-out queries")

	for _, q := range res.Queries {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		tracks, err := s.SearchTracks(ctx, q)
		if err != nil {
			res.Failed++
			log.WithError(err).WithField("term", q).Warn("sub-search failed")
			continue
		}
		res.Tracks = append(res.Tracks, tracks...)
	}
	return res, nil
}
