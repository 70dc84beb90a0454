package middleware

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/xelth-com/fabtrack/internal/api"
	"github.com/xelth-com/fabtrack/internal/models"
	"github.com/xelth-com/fabtrack/internal/session"
	"github.com/xelth-com/fabtrack/internal/session/sessiontest"
	"gorm.io/datatypes"
)

var cookie = session.CookieOptions{Name: "fabtrack_session"}

type authFixture struct {
	auth     *Auth
	store    *session.Store
	status   int
	gotAuth  string
	userPath string
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	f := &authFixture{status: http.StatusOK}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.gotAuth = r.Header.Get("Authorization")
		f.userPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(f.status)
		if f.status != http.StatusOK {
			io.WriteString(w, `{"success":false,"message":"nope"}`)
			return
		}
		io.WriteString(w, `{"success":true,"data":{"_id":"u1","fullName":"Ada","role":"Worker","section":{"_id":"s2","number":2,"name":"Welding"}}}`)
	}))
	t.Cleanup(srv.Close)

	db := sessiontest.NewDB(t)
	f.store = session.NewStore(db, time.Hour)
	f.auth = &Auth{
		Sessions: f.store,
		Cookie:   cookie,
		API:      api.NewClient(srv.URL, 5*time.Second),
		Loading: func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
			io.WriteString(w, "Loading...")
		},
	}
	return f
}

func (f *authFixture) login(t *testing.T, role models.Role) string {
	t.Helper()
	sess, _, err := f.store.Create(context.Background(), sessiontest.Token(t, "u1", role))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	return sess.ID
}

func serve(h http.Handler, method, sessionID string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, "/worker/dashboard", nil)
	if sessionID != "" {
		req.AddCookie(&http.Cookie{Name: cookie.Name, Value: sessionID})
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	v := ViewerFrom(r.Context())
	io.WriteString(w, v.User.FullName+"|"+string(v.Identity.Role))
})

func TestRequireNoSession(t *testing.T) {
	f := newAuthFixture(t)
	h := f.auth.Require(models.RoleWorker)(okHandler)

	for _, id := range []string{"", "missing"} {
		rec := serve(h, http.MethodGet, id)
		if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/" {
			t.Errorf("session %q: %d %s", id, rec.Code, rec.Header().Get("Location"))
		}
	}
	if f.userPath != "" {
		t.Error("user fetched without a session")
	}
}

func TestRequireBadToken(t *testing.T) {
	f := newAuthFixture(t)
	db := sessiontest.NewDB(t)
	f.store = session.NewStore(db, time.Hour)
	f.auth.Sessions = f.store
	bad := models.Session{ID: "bad", Token: "junk", Flash: datatypes.JSON("[]"), ExpiresAt: time.Now().Add(time.Hour)}
	if err := db.Create(&bad).Error; err != nil {
		t.Fatalf("insert: %v", err)
	}

	rec := serve(f.auth.Require()(okHandler), http.MethodGet, "bad")
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/" {
		t.Errorf("got %d %s", rec.Code, rec.Header().Get("Location"))
	}
	if _, err := f.store.Get(context.Background(), "bad"); err == nil {
		t.Error("session with undecodable token kept")
	}
}

func TestRequireLoadsUser(t *testing.T) {
	f := newAuthFixture(t)
	id := f.login(t, models.RoleWorker)

	rec := serve(f.auth.Require(models.RoleWorker)(okHandler), http.MethodGet, id)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if rec.Body.String() != "Ada|Worker" {
		t.Errorf("body = %q", rec.Body.String())
	}
	if f.userPath != "/admin/user/u1" || !strings.HasPrefix(f.gotAuth, "Bearer ") {
		t.Errorf("user fetch %s with %q", f.userPath, f.gotAuth)
	}
}

func TestRequireWrongRole(t *testing.T) {
	f := newAuthFixture(t)
	id := f.login(t, models.RoleManager)

	rec := serve(f.auth.Require(models.RoleWorker)(okHandler), http.MethodGet, id)
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/manager/dashboard" {
		t.Errorf("got %d %s", rec.Code, rec.Header().Get("Location"))
	}
}

func TestRequireUserFetchFails(t *testing.T) {
	f := newAuthFixture(t)
	id := f.login(t, models.RoleWorker)

	f.status = http.StatusBadGateway
	rec := serve(f.auth.Require()(okHandler), http.MethodGet, id)
	if rec.Code != http.StatusServiceUnavailable || rec.Body.String() != "Loading..." {
		t.Errorf("got %d %q", rec.Code, rec.Body.String())
	}

	f.status = http.StatusUnauthorized
	rec = serve(f.auth.Require()(okHandler), http.MethodGet, id)
	if rec.Code != http.StatusSeeOther {
		t.Errorf("rejected token: status %d", rec.Code)
	}
	if _, err := f.store.Get(context.Background(), id); err == nil {
		t.Error("session kept after the API rejected its token")
	}
}

func TestAdminOnly(t *testing.T) {
	f := newAuthFixture(t)
	h := f.auth.Require(models.RoleAdmin, models.RoleManager)(AdminOnly(okHandler))

	if rec := serve(h, http.MethodPost, f.login(t, models.RoleManager)); rec.Code != http.StatusForbidden {
		t.Errorf("manager: status %d, want 403", rec.Code)
	}
	if rec := serve(h, http.MethodPost, f.login(t, models.RoleAdmin)); rec.Code != http.StatusOK {
		t.Errorf("admin: status %d, want 200", rec.Code)
	}
}

func TestLoggingKeepsStatus(t *testing.T) {
	h := Logging(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))
	if rec.Code != http.StatusTeapot {
		t.Errorf("status = %d", rec.Code)
	}
}
