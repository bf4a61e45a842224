// This file groups the Spotify authorization endpoints. The browser starts
// the flow at /login, Spotify redirects back to the UI, and the UI posts the
// code to /api/auth/token to receive a user token.

package handlers

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"net/http"
	"strings"

	"Stu-Music-Go/pkg/spotify"
)

const stateCookie = "oauth_state"

// signValue computes an HMAC signature for value and appends it using the
// format value|signature. The signature is base64 URL encoded so it can be
// safely stored in cookies.
func signValue(value string, key []byte) string {
	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(value))
	sig := mac.Sum(nil)
	return value + "|" + base64.RawURLEncoding.EncodeToString(sig)
}

// verifyValue checks the HMAC signature appended to signed. It returns the
// original value and true when the signature matches the provided key.
func verifyValue(signed string, key []byte) (string, bool) {
	value, encoded, ok := strings.Cut(signed, "|")
	if !ok || strings.Contains(encoded, "|") {
		return "", false
	}
	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(value))
	expected := mac.Sum(nil)
	sig, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil || !hmac.Equal(expected, sig) {
		return "", false
	}
	return value, true
}

// Login begins the Spotify OAuth flow and redirects the user to the
// authorization URL with a signed state value stored in a cookie.
func (app *Application) Login(w http.ResponseWriter, r *http.Request) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		respondJSONError(w, http.StatusInternalServerError, "failed to generate state")
		return
	}
	state := base64.RawURLEncoding.EncodeToString(b)
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookie,
		Value:    signValue(state, app.SignKey),
		Path:     "/",
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, app.Auth.AuthURL(state), http.StatusFound)
}

// TokenExchange trades an authorization code for a user token. When the
// client also sends the state it received, it must match the signed cookie
// set by Login. Errors from Spotify's token endpoint are relayed verbatim.
func (app *Application) TokenExchange(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Code  string `json:"code"`
		State string `json:"state"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Authorization code is required")
		return
	}
	if req.Code == "" {
		respondJSONError(w, http.StatusBadRequest, "Authorization code is required")
		return
	}
	if req.State != "" {
		c, err := r.Cookie(stateCookie)
		if err != nil {
			respondJSONError(w, http.StatusBadRequest, "state mismatch")
			return
		}
		if state, ok := verifyValue(c.Value, app.SignKey); !ok || state != req.State {
			respondJSONError(w, http.StatusBadRequest, "state mismatch")
			return
		}
		http.SetCookie(w, &http.Cookie{Name: stateCookie, Path: "/", MaxAge: -1})
	}

	tok, err := app.Auth.Exchange(r.Context(), req.Code)
	if err != nil {
		var te *spotify.TokenError
		if errors.As(err, &te) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(te.Status)
			w.Write(te.Body)
			return
		}
		app.requestLog(r).WithError(err).Error("token exchange")
		respondJSONError(w, http.StatusInternalServerError, "Failed to exchange token")
		return
	}
	respondJSON(w, http.StatusOK, spotify.NewTokenResponse(tok))
}
