package handler

import (
	"net/http"
	"net/url"
	"strings"
	"testing"
)

func seedEntries(t *testing.T, h http.Handler, entries ...map[string]interface{}) {
	t.Helper()
	for _, e := range entries {
		w := doJSON(t, h, http.MethodPost, "/api/entries", e)
		if w.Code != http.StatusCreated {
			t.Fatalf("failed to seed entry %v: %s", e, w.Body.String())
		}
	}
}

func TestGetChartBarTotals(t *testing.T) {
	api := setupTestAPI(t, Options{})
	r, _ := newTestEngine(api)
	seedEntries(t, r,
		map[string]interface{}{"category": "行為", "timestamp": millis(2024, 5, 10, 8, 0), "content": "眨眼, 聳肩"},
		map[string]interface{}{"category": "行為", "timestamp": millis(2024, 5, 9, 8, 0), "content": "眨眼"},
	)

	w := doJSON(t, r, http.MethodGet, "/api/charts?type=bar&period=7&category="+url.QueryEscape("行為"), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	data := decodeBody(t, w)["chart"].(map[string]interface{})
	rows := data["rows"].([]interface{})
	if len(rows) != 7 {
		t.Fatalf("expected 7 day rows, got %d", len(rows))
	}
	last := rows[len(rows)-1].(map[string]interface{})
	if last["date"] != "2024-05-10" || last["total"].(float64) != 2 {
		t.Fatalf("unexpected last row %v", last)
	}
	if data["empty"].(bool) {
		t.Fatalf("chart should not be empty")
	}
}

func TestGetChartRejectsMoodCombo(t *testing.T) {
	api := setupTestAPI(t, Options{})
	r, _ := newTestEngine(api)

	w := doJSON(t, r, http.MethodGet, "/api/charts?type=combo&category="+url.QueryEscape("情緒"), nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if msg := decodeBody(t, w)["error"]; msg != "此類別不支援該圖表" {
		t.Fatalf("unexpected message %v", msg)
	}
}

func TestGetChartRejectsUnknownPeriod(t *testing.T) {
	api := setupTestAPI(t, Options{})
	r, _ := newTestEngine(api)

	w := doJSON(t, r, http.MethodGet, "/api/charts?type=bar&period=5&category="+url.QueryEscape("行為"), nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestGetChartSVG(t *testing.T) {
	api := setupTestAPI(t, Options{})
	r, _ := newTestEngine(api)
	seedEntries(t, r,
		map[string]interface{}{"category": "情緒", "timestamp": millis(2024, 5, 10, 8, 0), "content": "開心 😊"},
	)

	w := doJSON(t, r, http.MethodGet, "/api/charts.svg?category="+url.QueryEscape("情緒"), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "image/svg+xml") {
		t.Fatalf("unexpected content type %q", ct)
	}
	if !strings.Contains(w.Body.String(), "<svg") {
		t.Fatalf("expected svg document, got %q", w.Body.String())
	}
}
