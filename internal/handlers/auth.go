package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/xelth-com/fabtrack/internal/api"
	"github.com/xelth-com/fabtrack/internal/models"
	"github.com/xelth-com/fabtrack/internal/session"
)

// loginForm keeps what was typed so a failed attempt can be corrected
type loginForm struct {
	Role     models.Role
	Username string
	Roles    []models.Role
}

// loginPage shows the role picker, or sends a signed-in browser home
func (r *Router) loginPage(w http.ResponseWriter, req *http.Request) {
	if sess, err := r.sessions.Get(req.Context(), session.CookieValue(req, r.cookie)); err == nil {
		if id, err := session.DecodeToken(sess.Token); err == nil {
			r.redirect(w, req, id.Role.Home())
			return
		}
	}
	r.render(w, req, http.StatusOK, "login", Page{
		Title: "Sign in",
		Data:  loginForm{Role: models.RoleWorker, Roles: models.Roles},
	})
}

// login exchanges credentials for an API token and opens a session
func (r *Router) login(w http.ResponseWriter, req *http.Request) {
	if err := req.ParseForm(); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}

	form := loginForm{Username: strings.TrimSpace(req.PostForm.Get("username")), Roles: models.Roles}
	fail := func(status int, msg string) {
		r.render(w, req, status, "login", Page{
			Title: "Sign in",
			Flash: []models.FlashMessage{{Level: models.FlashError, Message: msg}},
			Data:  form,
		})
	}

	role, ok := models.ParseRole(req.PostForm.Get("role"))
	if !ok {
		fail(http.StatusBadRequest, "Choose a role")
		return
	}
	form.Role = role

	cred := api.Credentials{
		Role:       role,
		Username:   form.Username,
		Password:   req.PostForm.Get("password"),
		AccessCode: strings.TrimSpace(req.PostForm.Get("accessCode")),
	}
	if role == models.RoleWorker && cred.AccessCode == "" {
		fail(http.StatusBadRequest, "Access code is required")
		return
	}
	if role != models.RoleWorker && (cred.Username == "" || cred.Password == "") {
		fail(http.StatusBadRequest, "Username and password are required")
		return
	}

	token, err := r.api.Login(req.Context(), cred)
	if err != nil {
		status := http.StatusBadGateway
		if api.IsUnauthorized(err) {
			status = http.StatusUnauthorized
		}
		fail(status, api.Message(err))
		return
	}

	sess, id, err := r.sessions.Create(req.Context(), token)
	if err != nil {
		if errors.Is(err, session.ErrBadToken) {
			fail(http.StatusBadGateway, "Login failed: the server issued an unreadable token")
			return
		}
		log.Printf("❌ Session create failed: %v", err)
		fail(http.StatusInternalServerError, "Login failed, try again")
		return
	}

	log.Printf("🔑 %s %s signed in", id.Role, id.UserID)
	session.SetCookie(w, r.cookie, sess)
	r.redirect(w, req, id.Role.Home())
}

// logout drops the session, its drafts and the cookie
func (r *Router) logout(w http.ResponseWriter, req *http.Request) {
	if id := session.CookieValue(req, r.cookie); id != "" {
		if err := r.sessions.Delete(req.Context(), id); err != nil {
			log.Printf("⚠️  Session delete failed: %v", err)
		}
		r.drafts.DropSession(id)
	}
	session.ClearCookie(w, r.cookie)
	r.redirect(w, req, "/")
}
