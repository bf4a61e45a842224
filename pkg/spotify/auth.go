package spotify

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/zmb3/spotify"
	"golang.org/x/oauth2"
)

// TokenError carries a non-2xx response from the Spotify token endpoint so
// callers can relay it unchanged.
type TokenError struct {
	Status int
	Body   []byte
}

func (e *TokenError) Error() string {
	return fmt.Sprintf("spotify: token endpoint returned HTTP %d", e.Status)
}

// TokenResponse mirrors the JSON Spotify returns for an authorization code
// exchange.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	RefreshToken string `json:"refresh_token,omitempty"`
	ExpiresIn    int    `json:"expires_in"`
	Scope        string `json:"scope,omitempty"`
}

// NewTokenResponse converts an oauth2 token back into Spotify's wire format.
func NewTokenResponse(tok *oauth2.Token) TokenResponse {
	resp := TokenResponse{
		AccessToken:  tok.AccessToken,
		TokenType:    tok.TokenType,
		RefreshToken: tok.RefreshToken,
	}
	switch v := tok.Extra("expires_in").(type) {
	case float64:
		resp.ExpiresIn = int(v)
	case int:
		resp.ExpiresIn = v
	}
	if resp.ExpiresIn == 0 && !tok.Expiry.IsZero() {
		resp.ExpiresIn = int(time.Until(tok.Expiry).Round(time.Second).Seconds())
	}
	if scope, ok := tok.Extra("scope").(string); ok {
		resp.Scope = scope
	}
	return resp
}

// userAPI is the subset of spotify.Client used with a user token.
type userAPI interface {
	CurrentUser() (*spotify.PrivateUser, error)
	CreatePlaylistForUser(userID, playlistName, description string, public bool) (*spotify.FullPlaylist, error)
	AddTracksToPlaylist(playlistID spotify.ID, trackIDs ...spotify.ID) (string, error)
	TransferPlayback(deviceID spotify.ID, play bool) error
}

// Auth drives the authorization code flow and builds user-scoped clients.
type Auth struct {
	config *oauth2.Config

	// newUser builds the client for a user token. Tests replace it.
	newUser func(ctx context.Context, tok *oauth2.Token) userAPI
}

// NewAuth configures the authorization code flow against Spotify's accounts
// service.
func NewAuth(clientID, clientSecret, redirectURL string, scopes []string) *Auth {
	return newAuth(&oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURL,
		Scopes:       scopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:   spotify.AuthURL,
			TokenURL:  spotify.TokenURL,
			AuthStyle: oauth2.AuthStyleInHeader,
		},
	})
}

func newAuth(config *oauth2.Config) *Auth {
	a := &Auth{config: config}
	a.newUser = func(ctx context.Context, tok *oauth2.Token) userAPI {
		c := spotify.NewClient(a.config.Client(ctx, tok))
		return &c
	}
	return a
}

// AuthURL returns the Spotify authorize URL carrying state.
func (a *Auth) AuthURL(state string) string {
	return a.config.AuthCodeURL(state)
}

// Exchange trades an authorization code for a token. A non-2xx answer from
// Spotify is returned as *TokenError.
func (a *Auth) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	tok, err := a.config.Exchange(ctx, code)
	if err != nil {
		var re *oauth2.RetrieveError
		if errors.As(err, &re) && re.Response != nil {
			return nil, &TokenError{Status: re.Response.StatusCode, Body: re.Body}
		}
		return nil, err
	}
	return tok, nil
}

// TransferPlayback moves the user's playback to deviceID. play starts
// playback on the new device immediately.
func (a *Auth) TransferPlayback(ctx context.Context, tok *oauth2.Token, deviceID string, play bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return a.newUser(ctx, tok).TransferPlayback(spotify.ID(deviceID), play)
}

// maxTracksPerAdd is Spotify's limit for POST /playlists/{id}/tracks.
const maxTracksPerAdd = 100

// CreatePlaylist creates a private playlist named name in the token owner's
// library and adds tracks, given as IDs or spotify:track: URIs. The new
// playlist ID is returned.
func (a *Auth) CreatePlaylist(ctx context.Context, tok *oauth2.Token, name string, tracks []string) (string, error) {
	client := a.newUser(ctx, tok)
	if err := ctx.Err(); err != nil {
		return "", err
	}
	user, err := client.CurrentUser()
	if err != nil {
		return "", fmt.Errorf("current user: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return "", err
	}
	pl, err := client.CreatePlaylistForUser(user.ID, name, "Created by Stu", false)
	if err != nil {
		return "", fmt.Errorf("create playlist: %w", err)
	}

	ids := make([]spotify.ID, 0, len(tracks))
	for _, t := range tracks {
		if id := TrackID(t); id != "" {
			ids = append(ids, spotify.ID(id))
		}
	}
	for start := 0; start < len(ids); start += maxTracksPerAdd {
		end := start + maxTracksPerAdd
		if end > len(ids) {
			end = len(ids)
		}
		if err := ctx.Err(); err != nil {
			return string(pl.ID), err
		}
		if _, err := client.AddTracksToPlaylist(pl.ID, ids[start:end]...); err != nil {
			return string(pl.ID), fmt.Errorf("add tracks: %w", err)
		}
	}
	return string(pl.ID), nil
}

// BearerToken extracts an access token from an Authorization header.
func BearerToken(r *http.Request) (*oauth2.Token, bool) {
	h := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(h) <= len(prefix) || !strings.EqualFold(h[:len(prefix)], prefix) {
		return nil, false
	}
	v := strings.TrimSpace(h[len(prefix):])
	if v == "" {
		return nil, false
	}
	return &oauth2.Token{AccessToken: v, TokenType: "Bearer"}, true
}
