package handlers

import (
	"errors"
	"net/http"
	"strings"

	"Stu-Music-Go/pkg/agent"
	"Stu-Music-Go/pkg/spotify"
)

const agentFailed = "Agent request failed"

// AgentAction executes an {action, params} envelope. A Bearer token in the
// Authorization header is passed on for actions that act as the user.
func (app *Application) AgentAction(w http.ResponseWriter, r *http.Request) {
	var req agent.Action
	if err := decodeJSON(w, r, &req); err != nil {
		respondJSONDetails(w, http.StatusBadRequest, agentFailed, err)
		return
	}
	if req.Action == "" {
		respondJSONError(w, http.StatusBadRequest, "Missing 'action' field in request")
		return
	}
	if len(req.Params) == 0 || string(req.Params) == "null" {
		respondJSONError(w, http.StatusBadRequest, "Missing 'params' field in request")
		return
	}

	log := app.requestLog(r).WithField("action", req.Action)
	log.Info("agent request")
	tok, _ := spotify.BearerToken(r)
	res, err := app.Agent.ExecuteAction(r.Context(), req, tok)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, agent.ErrInvalidParams) {
			status = http.StatusBadRequest
		}
		log.WithError(err).Error("agent request failed")
		respondJSONDetails(w, status, agentFailed, err)
		return
	}
	respondJSON(w, http.StatusOK, res)
}

// Stu lets the planner answer a free-text {prompt} with tool calls.
func (app *Application) Stu(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Prompt string `json:"prompt"`
	}
	if err := decodeJSON(w, r, &req); err != nil || strings.TrimSpace(req.Prompt) == "" {
		respondJSONError(w, http.StatusBadRequest, "Prompt is required.")
		return
	}
	res, err := app.Agent.RunPrompt(r.Context(), req.Prompt)
	if err != nil {
		app.requestLog(r).WithError(err).Error("stu prompt failed")
		respondJSONDetails(w, http.StatusInternalServerError, agentFailed, err)
		return
	}
	respondJSON(w, http.StatusOK, res)
}
