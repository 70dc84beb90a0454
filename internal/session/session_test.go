package session_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/xelth-com/fabtrack/internal/models"
	"github.com/xelth-com/fabtrack/internal/session"
	"github.com/xelth-com/fabtrack/internal/session/sessiontest"
)

func TestDecodeToken(t *testing.T) {
	token := sessiontest.Token(t, "u-42", models.RoleWorker)

	id, err := session.DecodeToken(token)
	if err != nil {
		t.Fatalf("DecodeToken: %v", err)
	}
	if id.UserID != "u-42" {
		t.Errorf("UserID = %q, want u-42", id.UserID)
	}
	if id.Role != models.RoleWorker {
		t.Errorf("Role = %q, want Worker", id.Role)
	}
	if id.IsAdmin() {
		t.Error("worker should not be admin")
	}
}

func TestDecodeToken_Rejects(t *testing.T) {
	cases := map[string]string{
		"empty":   "",
		"garbage": "not-a-token",
		"noUser":  "eyJhbGciOiJIUzI1NiJ9.eyJmb28iOiJiYXIifQ.c2ln",
	}
	for name, token := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := session.DecodeToken(token)
			if !errors.Is(err, session.ErrBadToken) {
				t.Errorf("err = %v, want ErrBadToken", err)
			}
		})
	}
}

func TestStore_Lifecycle(t *testing.T) {
	ctx := context.Background()
	store := sessiontest.NewStore(t)
	token := sessiontest.Token(t, "u-1", models.RoleAdmin)

	sess, id, err := store.Create(ctx, token)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if !id.IsAdmin() || sess.UserID != "u-1" {
		t.Errorf("identity = %+v, session = %+v", id, sess)
	}

	got, err := store.Get(ctx, sess.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Token != token {
		t.Error("stored token mismatch")
	}

	if err := store.Delete(ctx, sess.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := store.Get(ctx, sess.ID); !errors.Is(err, session.ErrNoSession) {
		t.Errorf("Get after Delete: err = %v, want ErrNoSession", err)
	}
}

func TestStore_CreateRejectsBadToken(t *testing.T) {
	store := sessiontest.NewStore(t)
	if _, _, err := store.Create(context.Background(), "junk"); !errors.Is(err, session.ErrBadToken) {
		t.Errorf("err = %v, want ErrBadToken", err)
	}
}

func TestStore_Flash(t *testing.T) {
	ctx := context.Background()
	store := sessiontest.NewStore(t)
	sess, _, err := store.Create(ctx, sessiontest.Token(t, "u-1", models.RoleWorker))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := store.AddFlash(ctx, sess.ID, models.FlashSuccess, "saved"); err != nil {
		t.Fatalf("AddFlash: %v", err)
	}
	if err := store.AddFlash(ctx, sess.ID, models.FlashError, "oops"); err != nil {
		t.Fatalf("AddFlash: %v", err)
	}

	msgs, err := store.PopFlash(ctx, sess.ID)
	if err != nil {
		t.Fatalf("PopFlash: %v", err)
	}
	if len(msgs) != 2 || msgs[0].Message != "saved" || msgs[1].Level != models.FlashError {
		t.Fatalf("msgs = %+v", msgs)
	}

	msgs, err = store.PopFlash(ctx, sess.ID)
	if err != nil {
		t.Fatalf("PopFlash: %v", err)
	}
	if len(msgs) != 0 {
		t.Errorf("second PopFlash returned %d messages, want 0", len(msgs))
	}
}

func TestCookieRoundTrip(t *testing.T) {
	opts := session.CookieOptions{Name: "sid"}
	rec := httptest.NewRecorder()
	session.SetCookie(rec, opts, &models.Session{ID: "abc"})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}
	if got := session.CookieValue(req, opts); got != "abc" {
		t.Errorf("CookieValue = %q, want abc", got)
	}
}
