package handler

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/tictracker/internal/db"
)

func TestAuthRequiredBlocksAnonymousRequests(t *testing.T) {
	api := setupTestAPI(t, Options{AuthRequired: true})
	r, _ := newTestEngine(api)

	w := doJSON(t, r, http.MethodGet, "/api/entries", nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}

	w = doJSON(t, r, http.MethodGet, "/stats?period=30", nil)
	if w.Code != http.StatusFound {
		t.Fatalf("expected redirect, got %d", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "/login?next="+url.QueryEscape("/stats?period=30") {
		t.Fatalf("unexpected redirect %q", loc)
	}
}

func TestLoginGrantsSession(t *testing.T) {
	api := setupTestAPI(t, Options{AuthRequired: true})
	if err := db.SetPassword(api.DB(), "parent", "s3cret-pass"); err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}
	r, _ := newTestEngine(api)

	w := doJSON(t, r, http.MethodPost, "/login", map[string]string{"username": "parent", "password": "wrong"})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for wrong password, got %d", w.Code)
	}

	form := url.Values{"username": {"parent"}, "password": {"s3cret-pass"}, "next": {"/stats"}}
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusFound || w.Header().Get("Location") != "/stats" {
		t.Fatalf("expected redirect to /stats, got %d %q", w.Code, w.Header().Get("Location"))
	}

	req = httptest.NewRequest(http.MethodGet, "/api/entries", nil)
	for _, cookie := range w.Result().Cookies() {
		req.AddCookie(cookie)
	}
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected authenticated request to pass, got %d", w.Code)
	}
}

func TestLoginFormFailureRendersPage(t *testing.T) {
	api := setupTestAPI(t, Options{AuthRequired: true})
	r, render := newTestEngine(api)

	form := url.Values{"username": {"nobody"}, "password": {"x"}}
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
	if render.last == nil || render.last.name != "login.html" {
		t.Fatalf("expected login template to render")
	}
	data := render.last.data.(gin.H)
	if data["error"] != "帳號或密碼錯誤" {
		t.Fatalf("unexpected error %v", data["error"])
	}
}

func TestSafeNext(t *testing.T) {
	cases := map[string]string{
		"":                     "/",
		"/stats":               "/stats",
		"//evil.example":       "/",
		"https://evil.example": "/",
	}
	for input, want := range cases {
		if got := safeNext(input); got != want {
			t.Fatalf("safeNext(%q) = %q, want %q", input, got, want)
		}
	}
}
