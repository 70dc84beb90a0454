package session

import (
	"net/http"
	"time"

	"github.com/xelth-com/fabtrack/internal/models"
)

// CookieOptions controls how the session id travels to the browser
type CookieOptions struct {
	Name   string
	Secure bool
}

// SetCookie hands the session id to the browser
func SetCookie(w http.ResponseWriter, opts CookieOptions, sess *models.Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     opts.Name,
		Value:    sess.ID,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		HttpOnly: true,
		Secure:   opts.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearCookie expires the session cookie
func ClearCookie(w http.ResponseWriter, opts CookieOptions) {
	http.SetCookie(w, &http.Cookie{
		Name:     opts.Name,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   opts.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// CookieValue reads the session id from the request, "" when absent
func CookieValue(r *http.Request, opts CookieOptions) string {
	c, err := r.Cookie(opts.Name)
	if err != nil {
		return ""
	}
	return c.Value
}
