package api

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	werrors "github.com/r3d91ll/relaxplot/pkg/errors"
)

func getJSON(h http.Handler, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func newBackendsRouter(templates string) *Router {
	rt := NewRouter()
	NewBackendsHandler(templates).RegisterRoutes(rt)
	return rt
}

func TestListBackends(t *testing.T) {
	rec := getJSON(newBackendsRouter(""), "/api/backends")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp BackendListResponse
	decodeResponse(t, rec, &resp)

	want := map[string]string{"macro": "ASCII.agr", "stat": "graph.r", "general": "graph.py"}
	if len(resp.Backends) != len(want) {
		t.Fatalf("got %d backends, want %d", len(resp.Backends), len(want))
	}
	for _, b := range resp.Backends {
		if want[b.Name] != b.DefaultFile {
			t.Errorf("%s default file = %q, want %q", b.Name, b.DefaultFile, want[b.Name])
		}
		if b.Inline != (b.Name == "macro") {
			t.Errorf("%s inline = %v", b.Name, b.Inline)
		}
		if len(b.RequiredRoles) == 0 || len(b.Roles) < len(b.RequiredRoles) {
			t.Errorf("%s roles %v required %v", b.Name, b.Roles, b.RequiredRoles)
		}
		if b.TemplateValid != nil {
			t.Errorf("%s: list should not report template validity", b.Name)
		}
	}
}

func TestGetBackend(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"stat", "stat"},
		{"ggplot", "stat"},
		{"agr", "macro"},
		{"matplotlib", "general"},
	}
	rt := newBackendsRouter("")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := getJSON(rt, "/api/backends/"+tt.name)
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d", rec.Code)
			}
			var info BackendInfo
			decodeResponse(t, rec, &info)
			if info.Name != tt.want {
				t.Errorf("name = %q, want %q", info.Name, tt.want)
			}
			if info.TemplateValid == nil || !*info.TemplateValid {
				t.Errorf("builtin template should be valid: %s", info.TemplateError)
			}
		})
	}
}

func TestGetBackend_Unknown(t *testing.T) {
	rec := getJSON(newBackendsRouter(""), "/api/backends/gnuplot")
	resp := decodeResponse(t, rec, nil)
	if rec.Code != http.StatusBadRequest || resp.Error.Code != werrors.ErrConfigUnknownBackend {
		t.Errorf("got %d %+v", rec.Code, resp.Error)
	}
}

func TestGetBackend_TemplateOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "templates.yaml")
	if err := os.WriteFile(path, []byte("general:\n  roles: {}\n"), 0644); err != nil {
		t.Fatal(err)
	}

	rec := getJSON(newBackendsRouter(path), "/api/backends/stat")
	var info BackendInfo
	decodeResponse(t, rec, &info)
	if info.TemplateValid == nil || *info.TemplateValid {
		t.Fatal("a file without a stat section should be reported invalid")
	}
	if info.TemplateError == "" {
		t.Error("expected a template error message")
	}
}
