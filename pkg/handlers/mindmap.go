package handlers

import (
	"errors"
	"net/http"

	"Stu-Music-Go/pkg/mindmap"
)

// MindMapList returns every song in the mind map.
func (app *Application) MindMapList(w http.ResponseWriter, r *http.Request) {
	if app.MindMap == nil {
		respondJSONError(w, http.StatusServiceUnavailable, "mind map not configured")
		return
	}
	respondJSON(w, http.StatusOK, app.MindMap.List())
}

// MindMapMove updates the edited coordinates of one song.
func (app *Application) MindMapMove(w http.ResponseWriter, r *http.Request) {
	if app.MindMap == nil {
		respondJSONError(w, http.StatusServiceUnavailable, "mind map not configured")
		return
	}
	var req struct {
		SongName     string               `json:"song_name"`
		Artist       string               `json:"artist"`
		Coordinates2 *mindmap.Coordinates `json:"coordinates2"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		respondJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.SongName == "" || req.Artist == "" || req.Coordinates2 == nil {
		respondJSONError(w, http.StatusBadRequest, "song_name, artist and coordinates2 are required")
		return
	}
	song, err := app.MindMap.Move(req.SongName, req.Artist, *req.Coordinates2)
	if errors.Is(err, mindmap.ErrNotFound) {
		respondJSONError(w, http.StatusNotFound, "Song not found")
		return
	}
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "failed to move song")
		return
	}
	respondJSON(w, http.StatusOK, song)
}
