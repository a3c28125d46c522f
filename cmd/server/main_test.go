package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/taqdimot/slide-generation-service/internal/config"
	"github.com/taqdimot/slide-generation-service/internal/deck"
)

func setupTestGlobals(t *testing.T) {
	t.Helper()
	cfg = config.Load()
	cfg.AdminUser = "admin"
	cfg.AdminPassword = "secret"
	sess = deck.NewSession()
}

func TestWithMethodRejectsWrongVerb(t *testing.T) {
	setupTestGlobals(t)

	called := false
	h := withMethod("POST", func(w http.ResponseWriter, r *http.Request) { called = true })

	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest("GET", "/upload", nil))

	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d", rec.Code)
	}
	if rec.Header().Get("Allow") != "POST" {
		t.Fatalf("Allow header = %q", rec.Header().Get("Allow"))
	}
	if called {
		t.Fatalf("handler ran despite wrong method")
	}
}

func TestWithAdminAuth(t *testing.T) {
	setupTestGlobals(t)

	h := withAdminAuth(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest("GET", "/metrics", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("unauthenticated status = %d", rec.Code)
	}

	req := httptest.NewRequest("GET", "/metrics", nil)
	req.SetBasicAuth("admin", "wrong")
	rec = httptest.NewRecorder()
	h(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("wrong password status = %d", rec.Code)
	}

	req = httptest.NewRequest("GET", "/metrics", nil)
	req.SetBasicAuth("admin", "secret")
	rec = httptest.NewRecorder()
	h(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("authenticated status = %d", rec.Code)
	}
}

func TestHandlePresentationWithoutDeck(t *testing.T) {
	setupTestGlobals(t)

	rec := httptest.NewRecorder()
	handlePresentation(rec, httptest.NewRequest("GET", "/presentation", nil))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}

	var body map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["code"] != "no_presentation" {
		t.Fatalf("code = %v", body["code"])
	}
}

func TestHandleEditRoutesActions(t *testing.T) {
	setupTestGlobals(t)

	epoch := sess.BeginUpload()
	sess.CompleteGeneration(epoch, deck.Presentation{
		Title: "Deck",
		Slides: []deck.Slide{
			{ID: "a", Title: "One", Content: []string{"x", "y"}, Layout: deck.LayoutBulletList},
		},
	}, "f.docx")

	body := `{"index":0,"action":"set_bullet","line":1,"text":"updated"}`
	req := httptest.NewRequest("POST", "/edit", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handleEdit(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body.String())
	}

	p, _ := sess.Presentation()
	if p.Slides[0].Content[1] != "updated" {
		t.Fatalf("edit not applied: %v", p.Slides[0].Content)
	}
}

func TestHandleEditRejectsUnknownAction(t *testing.T) {
	setupTestGlobals(t)

	req := httptest.NewRequest("POST", "/edit", strings.NewReader(`{"index":0,"action":"repaint"}`))
	rec := httptest.NewRecorder()
	handleEdit(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestParseJSONRejectsTrailingData(t *testing.T) {
	setupTestGlobals(t)

	req := httptest.NewRequest("POST", "/navigate", strings.NewReader(`{"index":1}{"index":2}`))
	if _, err := parseJSON[struct {
		Index int `json:"index"`
	}](req, 1<<20); err == nil {
		t.Fatalf("trailing JSON accepted")
	}
}

func TestGetClientIP(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	r.RemoteAddr = "10.0.0.9:4431"
	if ip := getClientIP(r); ip != "10.0.0.9" {
		t.Fatalf("remote addr ip = %q", ip)
	}

	r.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	if ip := getClientIP(r); ip != "203.0.113.7" {
		t.Fatalf("forwarded ip = %q", ip)
	}
}

func TestSanitizeLogString(t *testing.T) {
	got := sanitizeLogString("/upload\r\nX-Injected: 1")
	if strings.ContainsAny(got, "\r\n") {
		t.Fatalf("newlines survived: %q", got)
	}

	long := strings.Repeat("a", 400)
	if len(sanitizeLogString(long)) > 203 {
		t.Fatalf("long string not truncated")
	}
}
