package handlers

import (
	"errors"
	"net/http"
	"strings"

	"Stu-Music-Go/pkg/music"
	"Stu-Music-Go/pkg/spotify"
)

// Music runs a direct Spotify track search for {query}.
func (app *Application) Music(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Query string `json:"query"`
	}
	if err := decodeJSON(w, r, &req); err != nil || strings.TrimSpace(req.Query) == "" {
		respondJSONError(w, http.StatusBadRequest, "Query is required")
		return
	}
	res, err := app.Spotify.Search(r.Context(), req.Query, music.TypeTrack, music.DefaultLimit)
	if err != nil {
		app.requestLog(r).WithError(err).WithField("query", req.Query).Error("search for music")
		respondJSONError(w, http.StatusInternalServerError, "Failed to search for music")
		return
	}
	respondJSON(w, http.StatusOK, res)
}

// AlbumCover returns {"url": ...} for the album of the best match for the
// song and artist query parameters.
func (app *Application) AlbumCover(w http.ResponseWriter, r *http.Request) {
	song := strings.TrimSpace(r.URL.Query().Get("song"))
	artist := strings.TrimSpace(r.URL.Query().Get("artist"))
	if song == "" || artist == "" {
		respondJSONError(w, http.StatusBadRequest, "song and artist are required")
		return
	}
	url, err := app.Spotify.AlbumCover(r.Context(), song, artist)
	if errors.Is(err, spotify.ErrNoCover) {
		respondJSONError(w, http.StatusNotFound, "No album cover found")
		return
	}
	if err != nil {
		app.requestLog(r).WithError(err).Error("album cover")
		respondJSONError(w, http.StatusInternalServerError, "Failed to fetch album cover")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"url": url})
}
