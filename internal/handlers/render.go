package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/xelth-com/fabtrack/internal/api"
	"github.com/xelth-com/fabtrack/internal/middleware"
	"github.com/xelth-com/fabtrack/internal/models"
	"github.com/xelth-com/fabtrack/internal/workflow"
)

// maxUpload bounds multipart bodies (photos, drawings)
const maxUpload = 32 << 20

// Page is what every template receives
type Page struct {
	Title  string
	Viewer *middleware.Viewer
	Flash  []models.FlashMessage
	// Topics the page reloads on when the live hub invalidates them
	Topics []string
	Data   interface{}
}

var funcs = template.FuncMap{
	"date": func(t interface{}) string {
		switch v := t.(type) {
		case time.Time:
			if v.IsZero() {
				return ""
			}
			return v.Format("2006-01-02")
		case *time.Time:
			if v == nil || v.IsZero() {
				return ""
			}
			return v.Format("2006-01-02")
		}
		return ""
	},
	"datetime": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.Local().Format("2006-01-02 15:04")
	},
	"itemKey": workflow.ItemKey,
	"join":    strings.Join,
	"lower":   strings.ToLower,
}

// render executes a page inside the layout. Pending flash messages of the
// session are shown once and then dropped.
func (r *Router) render(w http.ResponseWriter, req *http.Request, status int, name string, p Page) {
	tmpl, ok := r.pages[name]
	if !ok {
		log.Printf("❌ Unknown page %q", name)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	p.Viewer = middleware.ViewerFrom(req.Context())
	if p.Viewer != nil {
		pending, err := r.sessions.PopFlash(req.Context(), p.Viewer.SessionID)
		if err != nil {
			log.Printf("⚠️  Flash not loaded: %v", err)
		}
		p.Flash = append(pending, p.Flash...)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", p); err != nil {
		log.Printf("❌ Render %s failed: %v", name, err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

// flash queues a message for the next rendered page of this session
func (r *Router) flash(req *http.Request, level models.FlashLevel, msg string) {
	v := middleware.ViewerFrom(req.Context())
	if v == nil {
		return
	}
	if err := r.sessions.AddFlash(req.Context(), v.SessionID, level, msg); err != nil {
		log.Printf("⚠️  Flash not stored: %v", err)
	}
}

func (r *Router) redirect(w http.ResponseWriter, req *http.Request, to string) {
	http.Redirect(w, req, to, http.StatusSeeOther)
}

// failed renders an upstream error. A cancelled request (the browser went
// away) gets no page.
func (r *Router) failed(w http.ResponseWriter, req *http.Request, what string, err error) {
	if errors.Is(err, req.Context().Err()) && req.Context().Err() != nil {
		return
	}
	log.Printf("❌ %s: %v", what, err)
	status := http.StatusBadGateway
	var apiErr *api.Error
	if errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound {
		status = http.StatusNotFound
	}
	r.render(w, req, status, "error", Page{
		Title: what,
		Flash: []models.FlashMessage{{Level: models.FlashError, Message: fmt.Sprintf("%s: %s", what, api.Message(err))}},
	})
}

// loading is shown while the signed-in user's record cannot be fetched
func (r *Router) loading(w http.ResponseWriter, req *http.Request) {
	r.render(w, req, http.StatusServiceUnavailable, "loading", Page{Title: "Loading..."})
}

// upload reads one optional file field of a parsed multipart form
func upload(req *http.Request, field string) (*api.Upload, error) {
	f, fh, err := req.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", field, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", field, err)
	}
	if len(data) == 0 {
		return nil, nil
	}
	return &api.Upload{
		Field:       field,
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

// parseForm accepts both urlencoded and multipart bodies
func parseForm(req *http.Request) error {
	if strings.HasPrefix(req.Header.Get("Content-Type"), "multipart/form-data") {
		return req.ParseMultipartForm(maxUpload)
	}
	return req.ParseForm()
}
