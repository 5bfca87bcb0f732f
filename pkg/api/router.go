// Package api provides the HTTP/WebSocket server for relaxplot.
// It exposes REST endpoints for backends, configuration and exports, and a
// WebSocket hub that streams export lifecycle events.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"

	werrors "github.com/r3d91ll/relaxplot/pkg/errors"
)

// HandlerFunc is the function signature for API handlers.
type HandlerFunc func(w http.ResponseWriter, r *http.Request)

// Route represents a registered route with its handler.
type Route struct {
	Method  string
	Pattern string
	Handler HandlerFunc
}

// Router is a simple HTTP router that supports path parameters.
type Router struct {
	routes []Route
	mu     sync.RWMutex

	// NotFound is called when no route matches
	NotFound http.Handler

	// MethodNotAllowed is called when the path matches a route registered
	// for another method.
	MethodNotAllowed http.Handler
}

// NewRouter creates a new Router instance.
func NewRouter() *Router {
	return &Router{
		NotFound: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			WriteError(w, http.StatusNotFound, "not_found", "The requested resource was not found")
		}),
		MethodNotAllowed: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			WriteError(w, http.StatusMethodNotAllowed, "method_not_allowed",
				r.Method+" is not supported for "+r.URL.Path)
		}),
	}
}

// Handle registers a handler for the given method and pattern.
// Patterns support path parameters with :param syntax (e.g., /api/backends/:name).
func (rt *Router) Handle(method, pattern string, handler HandlerFunc) {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	rt.routes = append(rt.routes, Route{
		Method:  method,
		Pattern: pattern,
		Handler: handler,
	})
}

// GET registers a handler for GET requests.
func (rt *Router) GET(pattern string, handler HandlerFunc) {
	rt.Handle(http.MethodGet, pattern, handler)
}

// POST registers a handler for POST requests.
func (rt *Router) POST(pattern string, handler HandlerFunc) {
	rt.Handle(http.MethodPost, pattern, handler)
}

// PUT registers a handler for PUT requests.
func (rt *Router) PUT(pattern string, handler HandlerFunc) {
	rt.Handle(http.MethodPut, pattern, handler)
}

// Routes returns a copy of the registered routes.
func (rt *Router) Routes() []Route {
	rt.mu.RLock()
	defer rt.mu.RUnlock()
	return append([]Route(nil), rt.routes...)
}

// ServeHTTP implements the http.Handler interface.
func (rt *Router) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rt.mu.RLock()
	defer rt.mu.RUnlock()

	pathMatched := false
	for _, route := range rt.routes {
		params, matched := matchPath(route.Pattern, r.URL.Path)
		if !matched {
			continue
		}
		if route.Method != r.Method {
			pathMatched = true
			continue
		}
		if len(params) > 0 {
			r = setPathParams(r, params)
		}
		route.Handler(w, r)
		return
	}

	if pathMatched {
		rt.MethodNotAllowed.ServeHTTP(w, r)
		return
	}
	rt.NotFound.ServeHTTP(w, r)
}

// matchPath matches a URL path against a pattern and extracts path parameters.
// Pattern syntax: /api/backends/:name matches /api/backends/stat with name=stat
func matchPath(pattern, path string) (map[string]string, bool) {
	patternParts := strings.Split(strings.Trim(pattern, "/"), "/")
	pathParts := strings.Split(strings.Trim(path, "/"), "/")

	if len(patternParts) != len(pathParts) {
		return nil, false
	}

	params := make(map[string]string)
	for i, patternPart := range patternParts {
		if strings.HasPrefix(patternPart, ":") {
			params[patternPart[1:]] = pathParts[i]
		} else if patternPart != pathParts[i] {
			return nil, false
		}
	}
	return params, true
}

type contextKey string

const pathParamsKey contextKey = "pathParams"

func setPathParams(r *http.Request, params map[string]string) *http.Request {
	ctx := context.WithValue(r.Context(), pathParamsKey, params)
	return r.WithContext(ctx)
}

// PathParam extracts a path parameter from the request.
func PathParam(r *http.Request, name string) string {
	params, ok := r.Context().Value(pathParamsKey).(map[string]string)
	if !ok {
		return ""
	}
	return params[name]
}

// -----------------------------------------------------------------------------
// Response Helpers
// -----------------------------------------------------------------------------

// APIResponse is the standard response wrapper for API endpoints.
type APIResponse struct {
	Success bool      `json:"success"`
	Data    any       `json:"data,omitempty"`
	Error   *APIError `json:"error,omitempty"`
}

// APIError represents an error response. Structured errors carry their
// context and suggestions through.
type APIError struct {
	Code        string            `json:"code"`
	Message     string            `json:"message"`
	Context     map[string]string `json:"context,omitempty"`
	Suggestions []string          `json:"suggestions,omitempty"`
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	response := APIResponse{
		Success: status >= 200 && status < 300,
		Data:    data,
	}
	// Headers are already sent; an encoding failure cannot be reported.
	_ = json.NewEncoder(w).Encode(response)
}

// WriteError writes a JSON error response.
func WriteError(w http.ResponseWriter, status int, code, message string) {
	writeAPIError(w, status, &APIError{Code: code, Message: message})
}

func writeAPIError(w http.ResponseWriter, status int, apiErr *APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(APIResponse{Error: apiErr})
}

// WritePlotError writes err with the status its code maps to. Errors that
// are not structured become 500 internal errors.
func WritePlotError(w http.ResponseWriter, err error) {
	pe, ok := werrors.AsPlotError(err)
	if !ok {
		WriteError(w, http.StatusInternalServerError, werrors.ErrInternalError, err.Error())
		return
	}
	writeAPIError(w, StatusForError(pe), &APIError{
		Code:        pe.Code,
		Message:     pe.Message,
		Context:     pe.Context,
		Suggestions: pe.Suggestions,
	})
}

// StatusForError maps an error category to an HTTP status.
func StatusForError(pe *werrors.PlotError) int {
	switch pe.Category {
	case werrors.CategoryConfig, werrors.CategoryValidation, werrors.CategoryData,
		werrors.CategoryCommand:
		return http.StatusBadRequest
	case werrors.CategoryLayout, werrors.CategoryTemplate:
		return http.StatusUnprocessableEntity
	case werrors.CategoryExport:
		if pe.Code == werrors.ErrExportInvalidState || pe.Code == werrors.ErrExportWriteFailed {
			return http.StatusInternalServerError
		}
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// ReadJSON reads and decodes a JSON request body into the given target.
func ReadJSON(r *http.Request, target any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(target)
}
