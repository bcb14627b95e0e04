package server

import (
	"net/http"
	"time"

	"github.com/merchantdeck/go-dashboard-auth/session"
)

// SetSessionCookie writes the signed session cookie with secure/strict
// attributes. The cookie expires alongside the server-side record; refresh
// re-mints it.
func (s *Server) SetSessionCookie(w http.ResponseWriter, r *http.Request, value string, expiresAt time.Time) {
	isSecure := getScheme(r) == "https"

	http.SetCookie(w, &http.Cookie{
		Name:     session.CookieName,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   isSecure,
		SameSite: http.SameSiteStrictMode,
		Expires:  expiresAt,
	})
}

// ClearSessionCookie expires the session cookie immediately.
func (s *Server) ClearSessionCookie(w http.ResponseWriter, r *http.Request) {
	isSecure := getScheme(r) == "https"

	http.SetCookie(w, &http.Cookie{
		Name:     session.CookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   isSecure,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   -1,
	})
}

// sessionCookieValue returns the raw cookie value, or "" when absent.
func sessionCookieValue(r *http.Request) string {
	cookie, err := r.Cookie(session.CookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}
