package handler

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestStreamEventsDeliversChanges(t *testing.T) {
	api := setupTestAPI(t, Options{})
	r, _ := newTestEngine(api)
	server := httptest.NewServer(r)
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, server.URL+"/api/events", nil)
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	resp, err := server.Client().Do(req)
	if err != nil {
		t.Fatalf("failed to open stream: %v", err)
	}
	defer resp.Body.Close()
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/event-stream") {
		t.Fatalf("unexpected content type %q", ct)
	}

	lines := bufio.NewScanner(resp.Body)
	waitFor := func(prefix string) string {
		t.Helper()
		for lines.Scan() {
			if line := lines.Text(); strings.HasPrefix(line, prefix) {
				return line
			}
		}
		t.Fatalf("stream ended before %q: %v", prefix, lines.Err())
		return ""
	}

	waitFor("event:ready")
	if api.Broker().Subscribers() != 1 {
		t.Fatalf("expected one subscriber, got %d", api.Broker().Subscribers())
	}

	if _, err := api.entries.Add(entryInput("行為", "眨眼")); err != nil {
		t.Fatalf("failed to add entry: %v", err)
	}

	waitFor("event:change")
	data := waitFor("data:")
	if !strings.Contains(data, `"slot":"entries"`) || !strings.Contains(data, `"action":"add"`) {
		t.Fatalf("unexpected change payload %q", data)
	}
}
