package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/dnamaps/arlequin/pkg/pipeline"
)

func testServer(t *testing.T) *Server {
	t.Helper()
	logger := log.NewWithOptions(io.Discard, log.Options{})
	return New(pipeline.NewRunner(nil, nil, logger), logger, ":0")
}

func TestHealthz(t *testing.T) {
	srv := httptest.NewServer(testServer(t).Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("status = %q", body["status"])
	}
}

func TestRenderFigure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pct.csv")
	if err := os.WriteFile(path, []byte("key,pct\nGGGG,42.5\n"), 0o644); err != nil {
		t.Fatalf("write table: %v", err)
	}

	srv := httptest.NewServer(testServer(t).Handler())
	defer srv.Close()

	reqBody, _ := json.Marshal(pipeline.Options{
		Source:  pipeline.SourceCSV,
		Path:    path,
		Kind:    "conformation",
		Name:    "bi",
		Formats: []string{pipeline.FormatSVG},
	})
	resp, err := http.Post(srv.URL+"/api/v1/figures", "application/json", bytes.NewReader(reqBody))
	if err != nil {
		t.Fatalf("POST /api/v1/figures: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		t.Fatalf("status = %d: %s", resp.StatusCode, raw)
	}

	var body struct {
		RunID      string            `json:"run_id"`
		FigureHash string            `json:"figure_hash"`
		Artifacts  map[string][]byte `json:"artifacts"`
		Stats      struct {
			RowCount int `json:"row_count"`
		} `json:"stats"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.RunID == "" || body.FigureHash == "" {
		t.Error("missing run identifiers")
	}
	if body.Stats.RowCount != 1 {
		t.Errorf("row_count = %d, want 1", body.Stats.RowCount)
	}
	if !strings.HasPrefix(string(body.Artifacts["svg"]), "<svg") {
		t.Error("svg artifact missing")
	}
}

func TestRenderFigureErrors(t *testing.T) {
	srv := httptest.NewServer(testServer(t).Handler())
	defer srv.Close()

	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"malformed json", "{", http.StatusBadRequest},
		{"unknown kind", `{"source":"csv","path":"x.csv","kind":"pie"}`, http.StatusBadRequest},
		{"missing table", `{"source":"csv","path":"/definitely/not/here.csv","kind":"conformation"}`, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Post(srv.URL+"/api/v1/figures", "application/json", strings.NewReader(tt.body))
			if err != nil {
				t.Fatalf("POST: %v", err)
			}
			defer resp.Body.Close()
			if resp.StatusCode != tt.status {
				raw, _ := io.ReadAll(resp.Body)
				t.Errorf("status = %d, want %d: %s", resp.StatusCode, tt.status, raw)
			}
		})
	}
}
