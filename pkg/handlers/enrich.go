package handlers

import (
	"net/http"
)

// maxEnrichTracks bounds one request; MusicBrainz allows one call a second.
const maxEnrichTracks = 50

// Enrich returns MusicBrainz and AcousticBrainz data for {tracks:[ids]}.
func (app *Application) Enrich(w http.ResponseWriter, r *http.Request) {
	if app.Enricher == nil {
		respondJSONError(w, http.StatusServiceUnavailable, "enrichment not configured")
		return
	}
	var req struct {
		Tracks []string `json:"tracks"`
	}
	if err := decodeJSON(w, r, &req); err != nil || len(req.Tracks) == 0 {
		respondJSONError(w, http.StatusBadRequest, "tracks is required")
		return
	}
	if len(req.Tracks) > maxEnrichTracks {
		respondJSONError(w, http.StatusBadRequest, "too many tracks")
		return
	}
	res, err := app.Enricher.Enrich(r.Context(), req.Tracks)
	if err != nil {
		app.requestLog(r).WithError(err).Error("enrich tracks")
		respondJSONDetails(w, http.StatusInternalServerError, "Failed to enrich tracks", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"results": res})
}
