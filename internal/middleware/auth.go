package middleware

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/xelth-com/fabtrack/internal/api"
	"github.com/xelth-com/fabtrack/internal/models"
	"github.com/xelth-com/fabtrack/internal/session"
)

type contextKey string

const ViewerContextKey contextKey = "viewer"

// Viewer is the signed-in user of the current request
type Viewer struct {
	SessionID string
	Identity  session.Identity
	User      models.User
	// API sends the session's bearer token
	API *api.Client
}

// IsAdmin gates admin-only affordances
func (v *Viewer) IsAdmin() bool {
	return v != nil && v.Identity.IsAdmin()
}

// IsWorker reports a shop-floor viewer
func (v *Viewer) IsWorker() bool {
	return v != nil && v.Identity.Role == models.RoleWorker
}

// ViewerFrom returns the viewer stored by Auth.Require, nil on public routes.
func ViewerFrom(ctx context.Context) *Viewer {
	v, _ := ctx.Value(ViewerContextKey).(*Viewer)
	return v
}

// WithViewer stores the viewer in ctx
func WithViewer(ctx context.Context, v *Viewer) context.Context {
	return context.WithValue(ctx, ViewerContextKey, v)
}

// Auth resolves the session cookie into a Viewer
type Auth struct {
	Sessions *session.Store
	Cookie   session.CookieOptions
	API      *api.Client
	// Loading renders the placeholder page shown while the user record
	// cannot be fetched
	Loading http.HandlerFunc
}

// Require admits requests with a live session whose role is one of roles
// (any role when none are given). Everything else is sent to the login page.
func (a *Auth) Require(roles ...models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			sess, err := a.Sessions.Get(ctx, session.CookieValue(r, a.Cookie))
			if err != nil {
				if !errors.Is(err, session.ErrNoSession) {
					log.Printf("❌ Session lookup failed: %v", err)
				}
				a.toLogin(w, r)
				return
			}

			id, err := session.DecodeToken(sess.Token)
			if err != nil {
				_ = a.Sessions.Delete(ctx, sess.ID)
				a.toLogin(w, r)
				return
			}

			if !allowed(id.Role, roles) {
				http.Redirect(w, r, id.Role.Home(), http.StatusSeeOther)
				return
			}

			client := a.API.WithToken(sess.Token)
			user, err := client.GetUser(ctx, id.UserID)
			if err != nil {
				if api.IsUnauthorized(err) {
					// The API no longer accepts the token
					_ = a.Sessions.Delete(ctx, sess.ID)
					a.toLogin(w, r)
					return
				}
				log.Printf("⚠️  User %s not loaded: %v", id.UserID, err)
				a.Loading(w, r)
				return
			}

			v := &Viewer{SessionID: sess.ID, Identity: id, User: *user, API: client}
			next.ServeHTTP(w, r.WithContext(WithViewer(ctx, v)))
		})
	}
}

// AdminOnly answers 403 to every role but Admin. It must run after Require.
func AdminOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !ViewerFrom(r.Context()).IsAdmin() {
			http.Error(w, "Admin role required", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (a *Auth) toLogin(w http.ResponseWriter, r *http.Request) {
	session.ClearCookie(w, a.Cookie)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func allowed(role models.Role, roles []models.Role) bool {
	if len(roles) == 0 {
		return true
	}
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}
