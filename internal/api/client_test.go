package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/xelth-com/fabtrack/internal/models"
)

// recorded captures what the fake API received
type recorded struct {
	method string
	path   string
	query  string
	auth   string
	json   map[string]interface{}
	form   map[string]string
	files  map[string][]byte
}

func fakeAPI(t *testing.T, status int, reply string, got *recorded) *Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got.method = r.Method
		got.path = r.URL.EscapedPath()
		got.query = r.URL.RawQuery
		got.auth = r.Header.Get("Authorization")

		ct := r.Header.Get("Content-Type")
		switch {
		case strings.HasPrefix(ct, "multipart/form-data"):
			if err := r.ParseMultipartForm(1 << 20); err != nil {
				t.Errorf("parse multipart: %v", err)
			}
			got.form = map[string]string{}
			for k, v := range r.MultipartForm.Value {
				got.form[k] = v[0]
			}
			got.files = map[string][]byte{}
			for k, fhs := range r.MultipartForm.File {
				f, _ := fhs[0].Open()
				got.files[k], _ = io.ReadAll(f)
				f.Close()
			}
		case ct == "application/json":
			_ = json.NewDecoder(r.Body).Decode(&got.json)
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		io.WriteString(w, reply)
	}))
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, 5*time.Second).WithToken("tok-123")
}

func TestLogin_Worker(t *testing.T) {
	var got recorded
	c := fakeAPI(t, http.StatusOK, `{"success":true,"token":"jwt-xyz"}`, &got)
	c.Token = ""

	token, err := c.Login(context.Background(), Credentials{Role: models.RoleWorker, AccessCode: "4411", Username: "ignored"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if token != "jwt-xyz" {
		t.Errorf("token = %q", token)
	}
	if got.method != http.MethodPost || got.path != "/login" {
		t.Errorf("request = %s %s", got.method, got.path)
	}
	if got.json["accessCode"] != "4411" || got.json["role"] != "Worker" {
		t.Errorf("body = %v", got.json)
	}
	if _, ok := got.json["username"]; ok {
		t.Error("worker login must not send a username")
	}
	if got.auth != "" {
		t.Errorf("login sent Authorization %q", got.auth)
	}
}

func TestLogin_Failure(t *testing.T) {
	var got recorded
	c := fakeAPI(t, http.StatusOK, `{"success":false,"message":"Wrong password"}`, &got)

	_, err := c.Login(context.Background(), Credentials{Role: models.RoleAdmin, Username: "a", Password: "b"})
	if err == nil {
		t.Fatal("expected error")
	}
	if Message(err) != "Wrong password" {
		t.Errorf("Message = %q", Message(err))
	}
	if !IsUnauthorized(err) {
		t.Error("login failure should be unauthorized")
	}
}

func TestDo_ErrorMessage(t *testing.T) {
	cases := []struct {
		name  string
		reply string
		want  string
	}{
		{"message", `{"message":"Piece not found"}`, "Piece not found"},
		{"error", `{"error":"boom"}`, "boom"},
		{"empty", ``, "Not Found"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var got recorded
			c := fakeAPI(t, http.StatusNotFound, tc.reply, &got)
			_, err := c.GetPiece(context.Background(), "p1")

			var apiErr *Error
			if !errors.As(err, &apiErr) {
				t.Fatalf("err = %v, want *Error", err)
			}
			if apiErr.Status != http.StatusNotFound || apiErr.Message != tc.want {
				t.Errorf("apiErr = %+v, want message %q", apiErr, tc.want)
			}
		})
	}
}

func TestGetUser_SendsBearer(t *testing.T) {
	var got recorded
	c := fakeAPI(t, http.StatusOK, `{"success":true,"data":{"_id":"u1","fullName":"Ana","role":"Worker","section":{"_id":"s2","number":2,"name":"Polishing"}}}`, &got)

	u, err := c.GetUser(context.Background(), "u1")
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if got.auth != "Bearer tok-123" {
		t.Errorf("Authorization = %q", got.auth)
	}
	if got.path != "/admin/user/u1" {
		t.Errorf("path = %q", got.path)
	}
	if u.SectionNumber() != 2 {
		t.Errorf("SectionNumber = %d, want 2", u.SectionNumber())
	}
}

func TestSubmitTransition_ExistingPiece(t *testing.T) {
	var got recorded
	c := fakeAPI(t, http.StatusOK, `{"success":true}`, &got)

	err := c.SubmitTransition(context.Background(), Transition{
		PieceID:       "p1",
		SectionNumber: 2,
		Photo:         Upload{Filename: "edge.jpg", ContentType: "image/jpeg", Data: []byte("jpeg-bytes")},
		Notes:         "minor scratch",
		Flagged:       true,
	})
	if err != nil {
		t.Fatalf("SubmitTransition: %v", err)
	}
	if got.method != http.MethodPut || got.path != "/worker/piece/p1" {
		t.Errorf("request = %s %s", got.method, got.path)
	}
	if got.form["sectionNumber"] != "2" || got.form["notes"] != "minor scratch" || got.form["flagged"] != "true" {
		t.Errorf("form = %v", got.form)
	}
	if string(got.files["file"]) != "jpeg-bytes" {
		t.Errorf("file = %q", got.files["file"])
	}
}

func TestSubmitTransition_NewPieceUnderOrder(t *testing.T) {
	var got recorded
	c := fakeAPI(t, http.StatusCreated, `{"success":true}`, &got)

	err := c.SubmitTransition(context.Background(), Transition{
		OrderID:       "o7",
		SectionNumber: 1,
		Photo:         Upload{Filename: "p.png", Data: []byte("png")},
	})
	if err != nil {
		t.Fatalf("SubmitTransition: %v", err)
	}
	if got.method != http.MethodPost || got.path != "/worker/piece" || got.query != "orderId=o7" {
		t.Errorf("request = %s %s?%s", got.method, got.path, got.query)
	}
	if _, ok := got.form["notes"]; ok {
		t.Error("empty notes should be omitted")
	}
	if _, ok := got.form["flagged"]; ok {
		t.Error("unflagged submission should omit flagged")
	}
}

func TestSubmitTransition_NeedsOneTarget(t *testing.T) {
	c := NewClient("http://unused", time.Second)
	if err := c.SubmitTransition(context.Background(), Transition{}); err == nil {
		t.Error("expected error without target")
	}
	if err := c.SubmitTransition(context.Background(), Transition{OrderID: "o", PieceID: "p"}); err == nil {
		t.Error("expected error with both targets")
	}
}

func TestFlagPiece_SendsNoSection(t *testing.T) {
	var got recorded
	c := fakeAPI(t, http.StatusOK, `{"success":true}`, &got)

	if err := c.FlagPiece(context.Background(), "p9"); err != nil {
		t.Fatalf("FlagPiece: %v", err)
	}
	if got.method != http.MethodPost || got.path != "/worker/piece/flag/p9" {
		t.Errorf("request = %s %s", got.method, got.path)
	}
	if got.form != nil || got.json != nil {
		t.Errorf("flag sent a body: form=%v json=%v", got.form, got.json)
	}
}

func TestWorkerPieceByCode_EscapesCode(t *testing.T) {
	var got recorded
	c := fakeAPI(t, http.StatusOK, `{"success":true,"data":{"_id":"p1","code":"UNIT #1-K-1","number":3}}`, &got)

	p, err := c.WorkerPieceByCode(context.Background(), "UNIT #1-K-1", 3)
	if err != nil {
		t.Fatalf("WorkerPieceByCode: %v", err)
	}
	if got.path != "/worker/piece/UNIT%20%231-K-1/3" {
		t.Errorf("path = %q", got.path)
	}
	if p.Number != 3 {
		t.Errorf("Number = %d", p.Number)
	}
}

func TestWorkerOrders_PiecesCount(t *testing.T) {
	var got recorded
	c := fakeAPI(t, http.StatusOK, `{"success":true,"piecesCount":5,"data":[{"_id":"o1","projectName":"Tower","currentPieces":[{"_id":"p1"}],"inComingPieces":[]}]}`, &got)

	orders, count, err := c.WorkerOrders(context.Background(), 2)
	if err != nil {
		t.Fatalf("WorkerOrders: %v", err)
	}
	if got.query != "sectionNumber=2" {
		t.Errorf("query = %q", got.query)
	}
	if count != 5 || len(orders) != 1 || len(orders[0].CurrentPieces) != 1 {
		t.Errorf("count = %d, orders = %+v", count, orders)
	}
}

func TestProgress_Query(t *testing.T) {
	var got recorded
	c := fakeAPI(t, http.StatusOK, `{"success":true,"data":[]}`, &got)

	if _, err := c.Progress(context.Background(), models.ProgressFilter{Date: "2026-03-01", Worker: "w1"}); err != nil {
		t.Fatalf("Progress: %v", err)
	}
	if got.path != "/admin/piece/progress" || got.query != "date=2026-03-01&worker=w1" {
		t.Errorf("request = %s?%s", got.path, got.query)
	}
}

func TestSections_AndLegacyStages(t *testing.T) {
	var got recorded
	c := fakeAPI(t, http.StatusOK, `{"success":true}`, &got)
	in := SectionInput{Number: 2, Name: "Polishing", Checklist: []models.ChecklistItem{{Description: "Edges", IsMandatory: true}}}

	if err := c.Sections().Create(context.Background(), in); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if got.path != "/admin/section" || got.method != http.MethodPost {
		t.Errorf("request = %s %s", got.method, got.path)
	}
	list, ok := got.json["checklist"].([]interface{})
	if !ok || len(list) != 1 {
		t.Errorf("checklist = %v", got.json["checklist"])
	}

	if err := c.Stages().Delete(context.Background(), "st1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if got.path != "/admin/stage/st1" || got.method != http.MethodDelete {
		t.Errorf("request = %s %s", got.method, got.path)
	}
}

func TestUserInput_RoleFields(t *testing.T) {
	worker := UserInput{FullName: "Ana", Role: models.RoleWorker, AccessCode: "77", SectionID: "s2", Username: "x", Password: "y"}
	got := map[string]string{}
	for _, f := range worker.fields() {
		got[f.Name] = f.Value
	}
	if got["accessCode"] != "77" || got["section"] != "s2" {
		t.Errorf("worker fields = %v", got)
	}
	if _, ok := got["password"]; ok {
		t.Error("worker must not send password")
	}

	admin := UserInput{FullName: "Bo", Role: models.RoleAdmin, Username: "bo", AccessCode: "1"}
	got = map[string]string{}
	for _, f := range admin.fields() {
		got[f.Name] = f.Value
	}
	if got["username"] != "bo" {
		t.Errorf("admin fields = %v", got)
	}
	if _, ok := got["password"]; ok {
		t.Error("blank password should be omitted on edit")
	}
	if _, ok := got["accessCode"]; ok {
		t.Error("admin must not send access code")
	}
}

func TestCreateOrder_Attachments(t *testing.T) {
	var got recorded
	c := fakeAPI(t, http.StatusCreated, `{"success":true}`, &got)

	due := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	err := c.CreateOrder(context.Background(),
		OrderInput{ProjectName: "Tower", CustomerName: "Acme", DueDate: due},
		&Upload{Field: "drawings", Filename: "d.pdf", Data: []byte("pdf")},
		nil,
	)
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}
	if got.form["projectName"] != "Tower" || got.form["dueDate"] != "2026-05-01T00:00:00Z" {
		t.Errorf("form = %v", got.form)
	}
	if string(got.files["files"]) != "pdf" {
		t.Errorf("files = %v", got.files)
	}
}
