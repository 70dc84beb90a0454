package handlers

import (
	"encoding/json"
	"fmt"
	"html/template"
	"log"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/xelth-com/fabtrack/internal/api"
	"github.com/xelth-com/fabtrack/internal/buildinfo"
	"github.com/xelth-com/fabtrack/internal/config"
	"github.com/xelth-com/fabtrack/internal/live"
	"github.com/xelth-com/fabtrack/internal/middleware"
	"github.com/xelth-com/fabtrack/internal/models"
	"github.com/xelth-com/fabtrack/internal/session"
	"github.com/xelth-com/fabtrack/internal/workflow"
	"github.com/xelth-com/fabtrack/web"
)

// Router wraps the mux router and everything the pages need
type Router struct {
	*mux.Router
	cfg      *config.Config
	api      *api.Client
	sessions *session.Store
	drafts   *workflow.Drafts
	hub      *live.Hub
	auth     *middleware.Auth
	cookie   session.CookieOptions
	pages    map[string]*template.Template
}

// NewRouter creates a new HTTP router with all routes
func NewRouter(cfg *config.Config, client *api.Client, sessions *session.Store, drafts *workflow.Drafts, hub *live.Hub) (*Router, error) {
	pages, err := web.Templates(funcs)
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	r := &Router{
		Router:   mux.NewRouter(),
		cfg:      cfg,
		api:      client,
		sessions: sessions,
		drafts:   drafts,
		hub:      hub,
		cookie:   session.CookieOptions{Name: cfg.Session.CookieName, Secure: cfg.Session.Secure},
		pages:    pages,
	}
	r.auth = &middleware.Auth{
		Sessions: sessions,
		Cookie:   r.cookie,
		API:      client,
		Loading:  r.loading,
	}

	r.Use(middleware.Recover, middleware.Logging)

	// Health check endpoint
	r.HandleFunc("/health", r.healthCheck).Methods("GET")

	// Static assets
	r.PathPrefix("/static/").Handler(http.StripPrefix("/static/", http.FileServer(http.FS(web.Static()))))

	// Session routes
	r.HandleFunc("/", r.loginPage).Methods("GET")
	r.HandleFunc("/login", r.login).Methods("POST")
	r.HandleFunc("/logout", r.logout).Methods("POST")
	r.Handle("/ws", r.auth.Require()(http.HandlerFunc(r.serveWs))).Methods("GET")

	// Managers share the admin screens read-only
	staff := r.auth.Require(models.RoleAdmin, models.RoleManager)
	r.Handle("/manager/dashboard", staff(http.HandlerFunc(r.adminDashboard))).Methods("GET")

	admin := r.PathPrefix("/admin").Subrouter()
	admin.Use(staff)
	r.adminRoutes(admin)

	worker := r.PathPrefix("/worker").Subrouter()
	worker.Use(r.auth.Require(models.RoleWorker))
	r.workerRoutes(worker)

	return r, nil
}

func (r *Router) adminRoutes(s *mux.Router) {
	only := func(h http.HandlerFunc) http.Handler { return middleware.AdminOnly(h) }

	s.HandleFunc("/dashboard", r.adminDashboard).Methods("GET")
	s.HandleFunc("/progress", r.progress).Methods("GET")

	// Orders
	s.HandleFunc("/order", r.listOrders).Methods("GET")
	s.Handle("/order/new", only(r.orderForm)).Methods("GET")
	s.Handle("/order", only(r.saveOrder)).Methods("POST")
	s.Handle("/order/{id}/edit", only(r.orderForm)).Methods("GET")
	s.Handle("/order/{id}/labels.pdf", only(r.orderLabels)).Methods("GET")
	s.Handle("/order/{id}", only(r.saveOrder)).Methods("POST")

	// Pieces
	s.HandleFunc("/piece", r.listPieces).Methods("GET")
	s.HandleFunc("/piece/{id}", r.showPiece).Methods("GET")
	s.Handle("/piece/{id}/edit", only(r.pieceForm)).Methods("GET")
	s.Handle("/piece/{id}/label.png", only(r.pieceLabel)).Methods("GET")
	s.Handle("/piece/{id}/resolve", only(r.resolvePiece)).Methods("POST")
	s.Handle("/piece/{id}", only(r.savePiece)).Methods("POST")

	// Sections and legacy stages share one builder
	for _, kind := range []sectionKind{sectionsKind, stagesKind} {
		kind := kind
		s.HandleFunc("/"+kind.name, r.listSections(kind)).Methods("GET")
		s.Handle("/"+kind.name+"/new", only(r.sectionForm(kind))).Methods("GET")
		s.Handle("/"+kind.name, only(r.saveSection(kind))).Methods("POST")
		s.Handle("/"+kind.name+"/{id}/edit", only(r.sectionForm(kind))).Methods("GET")
		s.Handle("/"+kind.name+"/{id}", only(r.saveSection(kind))).Methods("POST")
	}

	// Users
	s.HandleFunc("/user", r.listUsers).Methods("GET")
	s.Handle("/user/new", only(r.userForm)).Methods("GET")
	s.Handle("/user", only(r.saveUser)).Methods("POST")
	s.Handle("/user/{id}/edit", only(r.userForm)).Methods("GET")
	s.Handle("/user/{id}/assign", only(r.assignSection)).Methods("POST")
	s.Handle("/user/{id}", only(r.saveUser)).Methods("POST")

	// Delete confirmation for every listed entity
	for _, d := range deletables {
		d := d
		s.Handle("/"+d.kind+"/{id}/delete", only(r.confirmDelete(d))).Methods("GET")
		s.Handle("/"+d.kind+"/{id}/delete", only(r.doDelete(d))).Methods("POST")
	}
}

func (r *Router) workerRoutes(s *mux.Router) {
	s.HandleFunc("/dashboard", r.workerDashboard).Methods("GET")
	s.HandleFunc("/scan", r.scan).Methods("POST")
	s.HandleFunc("/piece/{id}", r.pieceHistory).Methods("GET")
	s.HandleFunc("/piece/{id}/move", r.movePiece).Methods("POST")
	s.HandleFunc("/piece/{id}/flag", r.flagPiece).Methods("POST")
	s.HandleFunc("/piece/{id}/transition", r.transitionForm).Methods("GET")
	s.HandleFunc("/piece/{id}/transition", r.submitTransition).Methods("POST")
	s.HandleFunc("/order/{orderId}/piece/new", r.transitionForm).Methods("GET")
	s.HandleFunc("/order/{orderId}/piece/new", r.submitTransition).Methods("POST")
}

// healthCheck returns the health status of the server
func (r *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "ok",
		"version": buildinfo.Version,
		"clients": r.hub.Count(),
	})
}

func (r *Router) serveWs(w http.ResponseWriter, req *http.Request) {
	live.ServeWs(r.hub, w, req)
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}
