// This file defines middleware used to attach common security headers to every
// HTTP response.
package handlers

import "net/http"

// contentSecurityPolicy allows the Web Playback SDK script and Spotify's
// image and API hosts in addition to same-origin content.
const contentSecurityPolicy = "default-src 'self'; " +
	"script-src 'self' https://sdk.scdn.co; " +
	"frame-src https://sdk.scdn.co; " +
	"img-src 'self' data: https://i.scdn.co https://*.spotifycdn.com; " +
	"connect-src 'self' https://api.spotify.com"

// SecurityHeaders sets the Content Security Policy, nosniff and frame
// options before delegating to next. HSTS is added for TLS requests.
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Content-Security-Policy", contentSecurityPolicy)
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "same-origin")
		if r.TLS != nil {
			h.Set("Strict-Transport-Security", "max-age=63072000; includeSubDomains")
		}
		next.ServeHTTP(w, r)
	})
}
