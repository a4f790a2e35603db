package handler

import (
	"bytes"
	"image/png"
	"net/http"
	"strings"
	"testing"
)

func TestManifestUsesSiteName(t *testing.T) {
	api := setupTestAPI(t, Options{})
	r, _ := newTestEngine(api)
	doJSON(t, r, http.MethodPut, "/api/settings", map[string]interface{}{"siteName": "小明的抽動日誌"})

	w := doJSON(t, r, http.MethodGet, "/manifest.json", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/manifest+json") {
		t.Fatalf("unexpected content type %q", ct)
	}
	body := decodeBody(t, w)
	if body["name"] != "小明的抽動日誌" || body["lang"] != "zh-TW" {
		t.Fatalf("unexpected manifest %v", body)
	}
	if len(body["icons"].([]interface{})) != 3 {
		t.Fatalf("expected 3 icons, got %v", body["icons"])
	}
}

func TestServiceWorkerCarriesCacheVersion(t *testing.T) {
	api := setupTestAPI(t, Options{CacheVersion: 9})
	r, _ := newTestEngine(api)

	w := doJSON(t, r, http.MethodGet, "/sw.js", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "tic-tracker-cache-v9") {
		t.Fatalf("expected versioned cache name in script")
	}
	if w.Header().Get("Service-Worker-Allowed") != "/" {
		t.Fatalf("expected Service-Worker-Allowed header")
	}
	if !strings.Contains(w.Body.String(), "event.request.mode === 'navigate'") {
		t.Fatalf("expected pages to be fetched network-first")
	}
}

func TestIconEndpoint(t *testing.T) {
	api := setupTestAPI(t, Options{})
	r, _ := newTestEngine(api)

	w := doJSON(t, r, http.MethodGet, "/icons/icon-maskable-192.png", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	img, err := png.Decode(bytes.NewReader(w.Body.Bytes()))
	if err != nil {
		t.Fatalf("expected valid png: %v", err)
	}
	if img.Bounds().Dx() != 192 {
		t.Fatalf("unexpected icon width %d", img.Bounds().Dx())
	}

	for _, name := range []string{"icon-abc.png", "favicon.ico", "icon-4096.png"} {
		if w := doJSON(t, r, http.MethodGet, "/icons/"+name, nil); w.Code != http.StatusNotFound {
			t.Fatalf("expected 404 for %s, got %d", name, w.Code)
		}
	}
}
