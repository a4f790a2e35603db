package handler

import (
	"fmt"
	"math"
	"net/http"
	"testing"
)

func TestUpdateBasicInfoAppendsHistory(t *testing.T) {
	api := setupTestAPI(t, Options{})
	r, _ := newTestEngine(api)

	w := doJSON(t, r, http.MethodPut, "/api/basic-info", map[string]interface{}{"age": 8, "height": 120, "weight": 24})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	summary := decodeBody(t, w)["basicInfo"].(map[string]interface{})
	if bmi := summary["bmi"].(float64); math.Abs(bmi-16.67) > 0.01 {
		t.Fatalf("unexpected bmi %v", bmi)
	}

	// 数值未变化时不追加历史
	doJSON(t, r, http.MethodPut, "/api/basic-info", map[string]interface{}{"weight": 24})
	w = doJSON(t, r, http.MethodPut, "/api/basic-info", map[string]interface{}{"weight": 25})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	w = doJSON(t, r, http.MethodGet, "/api/basic-info/history", nil)
	history := decodeBody(t, w)["history"].([]interface{})
	if len(history) != 2 {
		t.Fatalf("expected 2 history rows, got %d", len(history))
	}
	latest := history[1].(map[string]interface{})
	if latest["weight"].(float64) != 25 || latest["height"].(float64) != 120 {
		t.Fatalf("expected merged latest record, got %v", latest)
	}
}

func TestBasicInfoHistoryEditAndDelete(t *testing.T) {
	api := setupTestAPI(t, Options{})
	r, _ := newTestEngine(api)

	doJSON(t, r, http.MethodPut, "/api/basic-info", map[string]interface{}{"age": 8, "height": 120, "adding": true})
	w := doJSON(t, r, http.MethodGet, "/api/basic-info/history", nil)
	history := decodeBody(t, w)["history"].([]interface{})
	ts := int64(history[0].(map[string]interface{})["timestamp"].(float64))

	w = doJSON(t, r, http.MethodPut, fmt.Sprintf("/api/basic-info/history/%d", ts), map[string]interface{}{"height": 122})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	record := decodeBody(t, w)["record"].(map[string]interface{})
	if record["height"].(float64) != 122 || record["age"].(float64) != 8 {
		t.Fatalf("unexpected record %v", record)
	}

	if w := doJSON(t, r, http.MethodDelete, fmt.Sprintf("/api/basic-info/history/%d", ts), nil); w.Code != http.StatusOK {
		t.Fatalf("expected delete to succeed, got %d", w.Code)
	}
	if w := doJSON(t, r, http.MethodDelete, fmt.Sprintf("/api/basic-info/history/%d", ts), nil); w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 on second delete, got %d", w.Code)
	}
	if w := doJSON(t, r, http.MethodDelete, "/api/basic-info/history/abc", nil); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed timestamp, got %d", w.Code)
	}
}
