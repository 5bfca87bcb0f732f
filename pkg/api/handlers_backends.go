package api

import (
	"net/http"

	"github.com/r3d91ll/relaxplot/pkg/chart"
	"github.com/r3d91ll/relaxplot/pkg/template"
)

// BackendsHandler describes the export backends and their template roles.
type BackendsHandler struct {
	// templates is an optional override file checked by GetBackend.
	templates string
}

// NewBackendsHandler creates a BackendsHandler. templatePath may be empty.
func NewBackendsHandler(templatePath string) *BackendsHandler {
	return &BackendsHandler{templates: templatePath}
}

// RegisterRoutes registers the backend API routes on the router.
func (h *BackendsHandler) RegisterRoutes(router *Router) {
	router.GET("/api/backends", h.ListBackends)
	router.GET("/api/backends/:name", h.GetBackend)
}

// -----------------------------------------------------------------------------
// API Response Types
// -----------------------------------------------------------------------------

// BackendListResponse is the JSON response for GET /api/backends.
type BackendListResponse struct {
	Backends []BackendInfo `json:"backends"`
}

// BackendInfo describes one backend.
type BackendInfo struct {
	Name          string   `json:"name"`
	DefaultFile   string   `json:"defaultFile"`
	Inline        bool     `json:"inline"`
	Roles         []string `json:"roles"`
	RequiredRoles []string `json:"requiredRoles"`

	// TemplateValid is set by GetBackend: whether the active template
	// section loads.
	TemplateValid *bool  `json:"templateValid,omitempty"`
	TemplateError string `json:"templateError,omitempty"`
}

func backendInfo(b chart.Backend) BackendInfo {
	return BackendInfo{
		Name:          b.String(),
		DefaultFile:   b.DefaultFile(),
		Inline:        b.Inline(),
		Roles:         roleNames(template.Roles(b)),
		RequiredRoles: roleNames(template.RequiredRoles(b)),
	}
}

func roleNames(roles []template.Role) []string {
	names := make([]string, len(roles))
	for i, r := range roles {
		names[i] = string(r)
	}
	return names
}

// -----------------------------------------------------------------------------
// Handlers
// -----------------------------------------------------------------------------

// ListBackends handles GET /api/backends.
func (h *BackendsHandler) ListBackends(w http.ResponseWriter, r *http.Request) {
	backends := make([]BackendInfo, 0, len(chart.Backends()))
	for _, b := range chart.Backends() {
		backends = append(backends, backendInfo(b))
	}
	WriteJSON(w, http.StatusOK, &BackendListResponse{Backends: backends})
}

// GetBackend handles GET /api/backends/:name. Aliases resolve to the
// canonical backend. The active template is loaded to report whether it
// is usable.
func (h *BackendsHandler) GetBackend(w http.ResponseWriter, r *http.Request) {
	b, err := chart.ParseBackend(PathParam(r, "name"))
	if err != nil {
		WritePlotError(w, err)
		return
	}

	info := backendInfo(b)
	if h.templates != "" {
		_, err = template.LoadFile(h.templates, b, nil)
	} else {
		_, err = template.Builtin(b, nil)
	}
	valid := err == nil
	info.TemplateValid = &valid
	if err != nil {
		info.TemplateError = err.Error()
	}
	WriteJSON(w, http.StatusOK, &info)
}
