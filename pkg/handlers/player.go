package handlers

import (
	"net/http"

	"Stu-Music-Go/pkg/spotify"
)

// TransferPlayback moves the caller's playback to the browser player device.
func (app *Application) TransferPlayback(w http.ResponseWriter, r *http.Request) {
	tok, ok := spotify.BearerToken(r)
	if !ok {
		respondJSONError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	var req struct {
		DeviceID string `json:"device_id"`
		Play     bool   `json:"play"`
	}
	if err := decodeJSON(w, r, &req); err != nil || req.DeviceID == "" {
		respondJSONError(w, http.StatusBadRequest, "device_id is required")
		return
	}
	if err := app.Auth.TransferPlayback(r.Context(), tok, req.DeviceID, req.Play); err != nil {
		app.requestLog(r).WithError(err).WithField("device_id", req.DeviceID).Error("transfer playback")
		respondJSONDetails(w, http.StatusInternalServerError, "Failed to transfer playback", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
