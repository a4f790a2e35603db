package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/tictracker/internal/catalog"
	"github.com/tictracker/internal/service"
)

type fakeAnalyzer struct {
	result service.AnalysisResult
	err    error
	last   service.AnalysisInput
}

func (f *fakeAnalyzer) Analyze(_ context.Context, input service.AnalysisInput) (service.AnalysisResult, error) {
	f.last = input
	return f.result, f.err
}

func TestAnalyzeEntriesRendersMarkdown(t *testing.T) {
	api := setupTestAPI(t, Options{})
	fake := &fakeAnalyzer{result: service.AnalysisResult{
		Markdown:   "## 觀察\n\n- 眨眼在**晚上**較多\n\n<script>alert(1)</script>",
		Provider:   "gemini",
		EntryCount: 6,
	}}
	api.SetAnalyzer(fake)
	r, _ := newTestEngine(api)

	w := doJSON(t, r, http.MethodPost, "/api/analysis", map[string]interface{}{"period": 14, "category": "情緒"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	body := decodeBody(t, w)
	html := body["html"].(string)
	if !strings.Contains(html, "<strong>晚上</strong>") {
		t.Fatalf("expected rendered markdown, got %q", html)
	}
	if strings.Contains(html, "<script>") {
		t.Fatalf("expected script to be sanitized, got %q", html)
	}
	if body["entryCount"].(float64) != 6 {
		t.Fatalf("unexpected entry count %v", body["entryCount"])
	}
	if fake.last.Period != 14 || fake.last.Category != catalog.CategoryMood || !fake.last.Now.Equal(fixedNow) {
		t.Fatalf("unexpected analyzer input %+v", fake.last)
	}
}

func TestAnalyzeEntriesNotEnoughData(t *testing.T) {
	api := setupTestAPI(t, Options{})
	api.SetAnalyzer(&fakeAnalyzer{err: service.ErrNotEnoughEntries})
	r, _ := newTestEngine(api)

	w := doJSON(t, r, http.MethodPost, "/api/analysis", map[string]interface{}{"period": 7})
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", w.Code)
	}
	if msg := decodeBody(t, w)["error"].(string); !strings.Contains(msg, "至少需要 5 筆記錄") {
		t.Fatalf("unexpected message %q", msg)
	}
}

func TestAnalyzeEntriesUpstreamFailure(t *testing.T) {
	api := setupTestAPI(t, Options{})
	api.SetAnalyzer(&fakeAnalyzer{err: errors.New("quota exceeded")})
	r, _ := newTestEngine(api)

	w := doJSON(t, r, http.MethodPost, "/api/analysis?lang=en", map[string]interface{}{"period": 7})
	if w.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", w.Code)
	}
	if msg := decodeBody(t, w)["error"].(string); msg != "AI analysis failed: quota exceeded" {
		t.Fatalf("unexpected message %q", msg)
	}
}
