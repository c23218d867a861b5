package cli

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/telemetry-lab/stackdiagrams/pkg/pipeline"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	logger := log.New(io.Discard)
	srv := httptest.NewServer(newServer(pipeline.NewRunner(nil, nil, logger), logger, "").routes())
	t.Cleanup(srv.Close)
	return srv
}

func get(t *testing.T, srv *httptest.Server, path string) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.Get(srv.URL + path)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return resp, body
}

func TestServeRoutes(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		path        string
		status      int
		contentType string
		contains    string
	}{
		{"/healthz", 200, "application/json", `"ok"`},
		{"/api/v1/diagrams", 200, "application/json", `"name": "otlp-flow"`},
		{"/api/v1/diagrams/hld", 200, "application/json", `"name": "hld"`},
		{"/api/v1/diagrams/hld?format=yaml", 200, "application/yaml", "name: hld"},
		{"/api/v1/diagrams/hld?format=toml", 200, "application/toml", `name = "hld"`},
		{"/api/v1/diagrams/hld?format=xml", 400, "application/json", "INVALID_FORMAT"},
		{"/api/v1/diagrams/nope", 404, "application/json", "DIAGRAM_NOT_FOUND"},
		{"/diagrams/hld.dot", 200, "text/vnd.graphviz; charset=utf-8", "digraph"},
		{"/diagrams/otlp-flow.json", 200, "application/json", `"name": "otlp-flow"`},
		{"/diagrams/hld.dot?direction=LR", 200, "text/vnd.graphviz; charset=utf-8", `rankdir="LR"`},
		{"/diagrams/hld.dot?direction=up", 400, "application/json", "INVALID_DIRECTION"},
		{"/diagrams/hld.gif", 400, "application/json", "INVALID_FORMAT"},
		{"/diagrams/hld", 400, "application/json", "INVALID_INPUT"},
		{"/diagrams/nope.svg", 404, "application/json", "DIAGRAM_NOT_FOUND"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, body := get(t, srv, tt.path)
			if resp.StatusCode != tt.status {
				t.Errorf("status = %d, want %d (%s)", resp.StatusCode, tt.status, body)
			}
			if got := resp.Header.Get("Content-Type"); got != tt.contentType {
				t.Errorf("Content-Type = %q, want %q", got, tt.contentType)
			}
			if !strings.Contains(string(body), tt.contains) {
				t.Errorf("body missing %q:\n%s", tt.contains, body)
			}
		})
	}
}

func TestServeRequestID(t *testing.T) {
	srv := newTestServer(t)

	resp, _ := get(t, srv, "/healthz")
	generated := resp.Header.Get(headerRequestID)
	if len(generated) != 36 {
		t.Errorf("generated request ID = %q, want a UUID", generated)
	}

	const id = "9b2f3c1e-4d5a-4b6c-8d7e-0f1a2b3c4d5e"
	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/diagrams/nope.dot", nil)
	req.Header.Set(headerRequestID, id)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if got := resp.Header.Get(headerRequestID); got != id {
		t.Errorf("request ID = %q, want caller's %q", got, id)
	}
	var body map[string]errorBody
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body["error"].RequestID != id {
		t.Errorf("error body request_id = %q, want %q", body["error"].RequestID, id)
	}
}

func TestSplitArtifactName(t *testing.T) {
	tests := []struct {
		file, name, format string
		ok                 bool
	}{
		{"hld.svg", "hld", "svg", true},
		{"otlp-flow.PNG", "otlp-flow", "png", true},
		{"hld.jpeg", "hld", "jpg", true},
		{"my.diagram.pdf", "my.diagram", "pdf", true},
		{"hld", "", "", false},
		{".svg", "", "", false},
		{"hld.", "", "", false},
	}
	for _, tt := range tests {
		name, format, ok := splitArtifactName(tt.file)
		if name != tt.name || format != tt.format || ok != tt.ok {
			t.Errorf("splitArtifactName(%q) = %q, %q, %v; want %q, %q, %v",
				tt.file, name, format, ok, tt.name, tt.format, tt.ok)
		}
	}
}
