package handler

import (
	"net/http"
	"testing"
)

func TestDailyInfoSetAndGet(t *testing.T) {
	api := setupTestAPI(t, Options{})
	r, _ := newTestEngine(api)

	w := doJSON(t, r, http.MethodGet, "/api/daily-info?date=2024-05-02", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 before any snapshot, got %d", w.Code)
	}

	w = doJSON(t, r, http.MethodPut, "/api/daily-info/2024-05-02", map[string]interface{}{
		"location": "台北市 大安區", "temperature": 26.4, "weatherCode": 61,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	w = doJSON(t, r, http.MethodGet, "/api/daily-info?date=2024-05-02", nil)
	info := decodeBody(t, w)["dailyInfo"].(map[string]interface{})
	if info["location"] != "台北市 大安區" {
		t.Fatalf("unexpected location %v", info["location"])
	}
	weather := info["weather"].(map[string]interface{})
	if weather["description"] != "下雨" || weather["code"].(float64) != 61 {
		t.Fatalf("unexpected weather %v", weather)
	}
}

func TestResolveDailyInfoGeolocationDenied(t *testing.T) {
	api := setupTestAPI(t, Options{})
	r, _ := newTestEngine(api)

	w := doJSON(t, r, http.MethodPost, "/api/daily-info/resolve", map[string]interface{}{
		"geoErrorCode": 1, "geoErrorMessage": "User denied Geolocation",
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}
	if msg := decodeBody(t, w)["error"]; msg != "請開啟定位權限以取得天氣資訊" {
		t.Fatalf("unexpected message %v", msg)
	}
}

func TestResolveDailyInfoPastDateUnavailable(t *testing.T) {
	api := setupTestAPI(t, Options{})
	r, _ := newTestEngine(api)

	w := doJSON(t, r, http.MethodPost, "/api/daily-info/resolve", map[string]interface{}{
		"date": "2001-01-01", "latitude": 25.03, "longitude": 121.56,
	})
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for past date, got %d: %s", w.Code, w.Body.String())
	}
}
