package api

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/r3d91ll/relaxplot/pkg/config"
	werrors "github.com/r3d91ll/relaxplot/pkg/errors"
)

func newConfigRouter(path string) *Router {
	rt := NewRouter()
	NewConfigHandler(path).RegisterRoutes(rt)
	return rt
}

func putJSON(h http.Handler, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPut, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestGetConfig_Defaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "relaxplot.yaml")
	rec := getJSON(newConfigRouter(path), "/api/config")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	var resp ConfigResponse
	decodeResponse(t, rec, &resp)

	def := config.Default().Export
	if resp.Path != path {
		t.Errorf("path = %q", resp.Path)
	}
	if resp.Export.ExportType != def.ExportType || resp.Export.Title != def.Title {
		t.Errorf("export = %+v, want defaults", resp.Export)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("GET must not create the file")
	}
}

func TestPutConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "relaxplot.yaml")
	rt := newConfigRouter(path)

	body := `{"export": {"title": "Run 7", "xlabel": "x", "ylabel": "y",
	  "ranges": [0, 500, 0, 30], "exportType": "stat", "colors": [[255, 0, 0]],
	  "includeBars": false, "skipInvalid": true}}`
	rec := putJSON(rt, "/api/config", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("saved config does not load: %v", err)
	}
	if cfg.Export.Title != "Run 7" || cfg.Export.ExportType != "stat" || !cfg.Export.SkipInvalid {
		t.Errorf("saved export = %+v", cfg.Export)
	}
	if cfg.Export.IncludeBars {
		t.Error("includeBars not saved")
	}
	if cfg.Server.Port != config.Default().Server.Port {
		t.Error("server section should be kept")
	}

	rec = getJSON(rt, "/api/config")
	var resp ConfigResponse
	decodeResponse(t, rec, &resp)
	if resp.Export.Title != "Run 7" || len(resp.Export.Colors) != 1 {
		t.Errorf("GET after PUT = %+v", resp.Export)
	}
}

func TestPutConfig_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "relaxplot.yaml")
	rec := putJSON(newConfigRouter(path), "/api/config",
		`{"export": {"exportType": "gnuplot", "ranges": [0, 1, 0, 1]}}`)
	resp := decodeResponse(t, rec, nil)
	if rec.Code != http.StatusBadRequest || resp.Error.Code != werrors.ErrConfigUnknownBackend {
		t.Errorf("got %d %+v", rec.Code, resp.Error)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("an invalid config must not be saved")
	}
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		valid bool
	}{
		{"valid", `{"export": {"exportType": "macro", "ranges": [0, 1, 0, 1]}}`, true},
		{"unknown backend", `{"export": {"exportType": "gnuplot", "ranges": [0, 1, 0, 1]}}`, false},
		{"short ranges", `{"export": {"exportType": "stat", "ranges": [0, 1]}}`, false},
		{"bad color", `{"export": {"exportType": "stat", "ranges": [0, 1, 0, 1], "colors": [[300, 0, 0]]}}`, false},
	}
	rt := newConfigRouter(filepath.Join(t.TempDir(), "relaxplot.yaml"))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postJSON(rt, "/api/config/validate", tt.body)
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d", rec.Code)
			}
			var result ValidationResult
			decodeResponse(t, rec, &result)
			if result.Valid != tt.valid {
				t.Errorf("valid = %v, want %v (%+v)", result.Valid, tt.valid, result.Errors)
			}
			if !tt.valid && len(result.Errors) == 0 {
				t.Error("expected an error entry")
			}
		})
	}
}
