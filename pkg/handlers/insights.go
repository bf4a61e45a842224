// This file contains endpoints that expose the search log: the most recent
// fan-out runs and the most searched queries over a period.

package handlers

import (
	"net/http"
	"strconv"
	"time"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 200
)

// SearchHistory returns the most recent searches. The 'limit' query
// parameter defaults to 20.
func (app *Application) SearchHistory(w http.ResponseWriter, r *http.Request) {
	if app.History == nil {
		respondJSONError(w, http.StatusServiceUnavailable, "history not configured")
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}
	res, err := app.History.RecentSearches(r.Context(), limit)
	if err != nil {
		app.requestLog(r).WithError(err).Error("load search history")
		respondJSONError(w, http.StatusInternalServerError, "failed to load history")
		return
	}
	respondJSON(w, http.StatusOK, res)
}

// TopQueries returns the most searched queries for a configurable period
// controlled by the 'days' query parameter.
func (app *Application) TopQueries(w http.ResponseWriter, r *http.Request) {
	if app.History == nil {
		respondJSONError(w, http.StatusServiceUnavailable, "history not configured")
		return
	}
	days, _ := strconv.Atoi(r.URL.Query().Get("days"))
	if days <= 0 {
		days = 7
	}
	since := time.Now().AddDate(0, 0, -days)
	res, err := app.History.TopQueriesSince(r.Context(), since, defaultHistoryLimit)
	if err != nil {
		app.requestLog(r).WithError(err).Error("load top queries")
		respondJSONError(w, http.StatusInternalServerError, "failed to load history")
		return
	}
	respondJSON(w, http.StatusOK, res)
}
