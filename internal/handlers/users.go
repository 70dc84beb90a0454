package handlers

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/xelth-com/fabtrack/internal/api"
	"github.com/xelth-com/fabtrack/internal/live"
	"github.com/xelth-com/fabtrack/internal/middleware"
	"github.com/xelth-com/fabtrack/internal/models"
	"golang.org/x/sync/errgroup"
)

type userListData struct {
	Role     models.Role
	Roles    []models.Role
	Users    []models.User
	Sections []models.Section
}

// listUsers lists users, optionally by ?role=
func (r *Router) listUsers(w http.ResponseWriter, req *http.Request) {
	v := middleware.ViewerFrom(req.Context())
	role, _ := models.ParseRole(req.URL.Query().Get("role"))
	data := userListData{Role: role, Roles: models.Roles}

	g, ctx := errgroup.WithContext(req.Context())
	g.Go(func() (err error) {
		data.Users, err = v.API.ListUsers(ctx, role)
		return err
	})
	g.Go(func() (err error) {
		data.Sections, err = v.API.Sections().List(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		r.failed(w, req, "Users not loaded", err)
		return
	}

	r.render(w, req, http.StatusOK, "users", Page{
		Title:  "Users",
		Topics: []string{live.TopicUsers},
		Data:   data,
	})
}

type userFormData struct {
	ID         string
	FullName   string
	Role       models.Role
	Username   string
	AccessCode string
	SectionID  string
	PhotoURL   string
	Roles      []models.Role
	Sections   []models.Section
}

func (r *Router) userForm(w http.ResponseWriter, req *http.Request) {
	v := middleware.ViewerFrom(req.Context())
	data := userFormData{ID: mux.Vars(req)["id"], Role: models.RoleWorker, Roles: models.Roles}

	g, ctx := errgroup.WithContext(req.Context())
	g.Go(func() (err error) {
		data.Sections, err = v.API.Sections().List(ctx)
		return err
	})
	if data.ID != "" {
		g.Go(func() error {
			u, err := v.API.GetUser(ctx, data.ID)
			if err != nil {
				return err
			}
			data.FullName = u.FullName
			data.Role = u.Role
			data.Username = u.Username
			data.AccessCode = u.AccessCode
			data.PhotoURL = u.PhotoURL
			if u.Section != nil {
				data.SectionID = u.Section.ID
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		r.failed(w, req, "User not loaded", err)
		return
	}
	r.renderUserForm(w, req, http.StatusOK, data, "")
}

func (r *Router) renderUserForm(w http.ResponseWriter, req *http.Request, status int, data userFormData, errMsg string) {
	p := Page{Title: "New User", Data: data}
	if data.ID != "" {
		p.Title = "Edit User"
	}
	if errMsg != "" {
		p.Flash = []models.FlashMessage{{Level: models.FlashError, Message: errMsg}}
	}
	r.render(w, req, status, "user_form", p)
}

// saveUser creates or updates a user. Credentials depend on the role.
func (r *Router) saveUser(w http.ResponseWriter, req *http.Request) {
	if err := parseForm(req); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}
	v := middleware.ViewerFrom(req.Context())

	role, _ := models.ParseRole(req.FormValue("role"))
	in := api.UserInput{
		FullName:   strings.TrimSpace(req.FormValue("fullName")),
		Role:       role,
		Username:   strings.TrimSpace(req.FormValue("username")),
		Password:   req.FormValue("password"),
		AccessCode: strings.TrimSpace(req.FormValue("accessCode")),
		SectionID:  req.FormValue("section"),
	}
	data := userFormData{
		ID:         mux.Vars(req)["id"],
		FullName:   in.FullName,
		Role:       role,
		Username:   in.Username,
		AccessCode: in.AccessCode,
		SectionID:  in.SectionID,
		Roles:      models.Roles,
	}
	fail := func(status int, msg string) {
		// the section select needs its options back
		if sections, err := v.API.Sections().List(req.Context()); err == nil {
			data.Sections = sections
		}
		r.renderUserForm(w, req, status, data, msg)
	}

	if msg := validateUser(in, data.ID == ""); msg != "" {
		fail(http.StatusUnprocessableEntity, msg)
		return
	}
	photo, err := upload(req, "file")
	if err != nil {
		fail(http.StatusBadRequest, err.Error())
		return
	}

	if data.ID == "" {
		err = v.API.CreateUser(req.Context(), in, photo)
	} else {
		err = v.API.UpdateUser(req.Context(), data.ID, in, photo)
	}
	if err != nil {
		fail(http.StatusBadGateway, "Error saving user: "+api.Message(err))
		return
	}

	r.flash(req, models.FlashSuccess, "User saved.")
	r.hub.Publish(live.TopicUsers)
	r.redirect(w, req, "/admin/user")
}

// validateUser returns the first problem with the input, "" when fine.
// Passwords are only required on create; an empty one keeps the old.
func validateUser(in api.UserInput, creating bool) string {
	switch {
	case in.FullName == "":
		return "Full name is required"
	case in.Role == "":
		return "Choose a role"
	case in.Role == models.RoleWorker && in.AccessCode == "":
		return "Workers need an access code"
	case in.Role == models.RoleWorker && in.SectionID == "":
		return "Workers need a section"
	case in.Role != models.RoleWorker && in.Username == "":
		return "Username is required"
	case in.Role != models.RoleWorker && creating && in.Password == "":
		return "Password is required"
	}
	return ""
}

// assignSection moves a worker to another section from the user list
func (r *Router) assignSection(w http.ResponseWriter, req *http.Request) {
	if err := req.ParseForm(); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}
	v := middleware.ViewerFrom(req.Context())
	sectionID := req.PostForm.Get("section")
	if sectionID == "" {
		r.flash(req, models.FlashError, "Choose a section")
		r.redirect(w, req, "/admin/user")
		return
	}

	if err := v.API.AssignSection(req.Context(), mux.Vars(req)["id"], sectionID); err != nil {
		r.flash(req, models.FlashError, "Error assigning section: "+api.Message(err))
	} else {
		r.flash(req, models.FlashSuccess, "Section assigned.")
		r.hub.Publish(live.TopicUsers)
	}
	r.redirect(w, req, "/admin/user")
}
