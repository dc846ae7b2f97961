package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ccollicutt/wareader/pkg/store"
)

const sampleChat = `9/10/22, 10:30 AM - Messages and calls are end-to-end encrypted.
9/10/22, 10:31 AM - Alice: Hello & welcome
9/10/22, 10:32 AM - Bob: <Media omitted>
9/11/22, 9:00 AM - Alice: See you tomorrow
`

type errReader struct{}

func (errReader) Read([]byte) (int, error) { return 0, errors.New("connection reset") }

func newTestServer(t *testing.T, withStore bool) *Server {
	t.Helper()
	opts := Options{}
	if withStore {
		s, err := store.Open(filepath.Join(t.TempDir(), "api.db"), nil)
		if err != nil {
			t.Fatalf("store.Open() error = %v", err)
		}
		t.Cleanup(func() { _ = s.Close() })
		opts.Store = s
	}
	return NewServer(opts)
}

func do(srv *Server, method, target string, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
}

func TestHealthEndpoint(t *testing.T) {
	w := do(newTestServer(t, false), "GET", "/health", "")

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}

	var body map[string]string
	decode(t, w, &body)
	if body["status"] != "ok" {
		t.Errorf("expected status ok, got %q", body["status"])
	}
}

func TestParseEndpoint(t *testing.T) {
	w := do(newTestServer(t, false), "POST", "/api/v1/parse?self=Alice&source=chat.txt", sampleChat)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var body struct {
		Source       string           `json:"source"`
		Self         string           `json:"self"`
		Participants []string         `json:"participants"`
		Records      []map[string]any `json:"records"`
	}
	decode(t, w, &body)

	if body.Source != "chat.txt" || body.Self != "Alice" {
		t.Errorf("source/self = %q/%q", body.Source, body.Self)
	}
	if len(body.Participants) != 2 {
		t.Errorf("participants = %v", body.Participants)
	}
	if len(body.Records) != 4 {
		t.Fatalf("records = %d, want 4", len(body.Records))
	}
	if body.Records[1]["outgoing"] != true {
		t.Errorf("records[1] = %v, want outgoing", body.Records[1])
	}
}

func TestParseEndpoint_SystemNotices(t *testing.T) {
	tests := []struct {
		name    string
		phrases []string
	}{
		{name: "default phrases"},
		{name: "configured phrases", phrases: []string{"left"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := NewServer(Options{SystemPhrases: tt.phrases})
			w := do(srv, "POST", "/api/v1/parse", "9/10/22, 10:30 AM - Alice: hi\nBob left")
			if w.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
			}

			var body struct {
				Records []map[string]any `json:"records"`
			}
			decode(t, w, &body)

			if len(body.Records) != 2 {
				t.Fatalf("records = %v, want 2", body.Records)
			}
			if body.Records[0]["content"] != "hi" {
				t.Errorf("records[0] = %v, want content hi", body.Records[0])
			}
			if body.Records[1]["type"] != "system" || body.Records[1]["content"] != "Bob left" {
				t.Errorf("records[1] = %v, want system notice", body.Records[1])
			}
		})
	}
}

func TestParseEndpoint_EmptyBody(t *testing.T) {
	w := do(newTestServer(t, false), "POST", "/api/v1/parse", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 for an empty export, got %d", w.Code)
	}

	var body map[string]any
	decode(t, w, &body)
	if records, _ := body["records"].([]any); len(records) != 0 {
		t.Errorf("records = %v, want empty", body["records"])
	}
}

func TestParseEndpoint_UnreadableBody(t *testing.T) {
	srv := newTestServer(t, false)
	req := httptest.NewRequest("POST", "/api/v1/parse", errReader{})
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestParseEndpoint_TooLarge(t *testing.T) {
	srv := NewServer(Options{MaxBodyBytes: 64})
	w := do(srv, "POST", "/api/v1/parse", sampleChat)

	if w.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("expected 413, got %d", w.Code)
	}
}

func TestParseEndpoint_Formats(t *testing.T) {
	srv := newTestServer(t, false)

	w := do(srv, "POST", "/api/v1/parse?format=text&source=chat.txt", sampleChat)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "=== chat.txt ===") {
		t.Errorf("text format: %d %q", w.Code, w.Body.String())
	}

	w = do(srv, "POST", "/api/v1/parse?format=markdown", sampleChat)
	if !strings.HasPrefix(w.Header().Get("Content-Type"), "text/markdown") {
		t.Errorf("markdown content type = %q", w.Header().Get("Content-Type"))
	}

	w = do(srv, "POST", "/api/v1/parse?format=xml", sampleChat)
	if w.Code != http.StatusBadRequest {
		t.Errorf("unknown format: expected 400, got %d", w.Code)
	}
}

func TestTranscripts_NoStore(t *testing.T) {
	srv := newTestServer(t, false)

	for _, target := range []string{"/api/v1/transcripts", "/api/v1/transcripts/abc"} {
		if w := do(srv, "GET", target, ""); w.Code != http.StatusServiceUnavailable {
			t.Errorf("GET %s: expected 503, got %d", target, w.Code)
		}
	}
	if w := do(srv, "POST", "/api/v1/parse?save=true", sampleChat); w.Code != http.StatusServiceUnavailable {
		t.Errorf("save without store: expected 503, got %d", w.Code)
	}
}

func TestTranscripts_SaveListGetDelete(t *testing.T) {
	srv := newTestServer(t, true)

	w := do(srv, "POST", "/api/v1/parse?save=true&source=chat.txt", sampleChat)
	if w.Code != http.StatusOK {
		t.Fatalf("save: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var saved struct {
		Metadata struct {
			ID string `json:"id"`
		} `json:"metadata"`
	}
	decode(t, w, &saved)
	id := saved.Metadata.ID
	if id == "" {
		t.Fatal("saved report has no id")
	}

	w = do(srv, "GET", "/api/v1/transcripts", "")
	var list []store.Summary
	decode(t, w, &list)
	if len(list) != 1 || list[0].ID != id || list[0].Messages != 3 {
		t.Errorf("list = %+v", list)
	}

	w = do(srv, "GET", "/api/v1/transcripts/"+id+"?self=Bob", "")
	if w.Code != http.StatusOK {
		t.Fatalf("get: expected 200, got %d", w.Code)
	}
	var got struct {
		Self    string           `json:"self"`
		Records []map[string]any `json:"records"`
	}
	decode(t, w, &got)
	if got.Self != "Bob" || len(got.Records) != 4 {
		t.Errorf("get = %+v", got)
	}
	if got.Records[2]["outgoing"] != true {
		t.Errorf("Bob's record should be outgoing: %v", got.Records[2])
	}

	if w := do(srv, "DELETE", "/api/v1/transcripts/"+id, ""); w.Code != http.StatusNoContent {
		t.Errorf("delete: expected 204, got %d", w.Code)
	}
	if w := do(srv, "GET", "/api/v1/transcripts/"+id, ""); w.Code != http.StatusNotFound {
		t.Errorf("get after delete: expected 404, got %d", w.Code)
	}
}

func TestTranscripts_UnknownID(t *testing.T) {
	srv := newTestServer(t, true)

	if w := do(srv, "GET", "/api/v1/transcripts/does-not-exist", ""); w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
	if w := do(srv, "DELETE", "/api/v1/transcripts/does-not-exist", ""); w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

func TestNotFoundEndpoint(t *testing.T) {
	if w := do(newTestServer(t, false), "GET", "/nonexistent", ""); w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}
