package api

import (
	"net/http"
	"sync"

	"github.com/r3d91ll/relaxplot/pkg/config"
	werrors "github.com/r3d91ll/relaxplot/pkg/errors"
)

// ConfigHandler reads and updates the export defaults in the config file.
type ConfigHandler struct {
	configPath string

	// mu serializes access to the configuration file
	mu sync.RWMutex
}

// NewConfigHandler creates a ConfigHandler for the given config file path.
func NewConfigHandler(configPath string) *ConfigHandler {
	if configPath == "" {
		configPath = config.DefaultConfigPath()
	}
	return &ConfigHandler{configPath: configPath}
}

// ConfigPath returns the configuration file path.
func (h *ConfigHandler) ConfigPath() string {
	return h.configPath
}

// RegisterRoutes registers the configuration API routes on the router.
func (h *ConfigHandler) RegisterRoutes(router *Router) {
	router.GET("/api/config", h.GetConfig)
	router.PUT("/api/config", h.PutConfig)
	router.POST("/api/config/validate", h.ValidateConfig)
}

// -----------------------------------------------------------------------------
// API Types
// -----------------------------------------------------------------------------

// ExportSettings is the JSON form of the export section. It is used for
// both requests and responses.
type ExportSettings struct {
	Title       string    `json:"title"`
	XLabel      string    `json:"xlabel"`
	YLabel      string    `json:"ylabel"`
	Ranges      []float64 `json:"ranges"`
	ExportType  string    `json:"exportType"`
	Colors      [][]int   `json:"colors,omitempty"`
	File        string    `json:"file,omitempty"`
	IncludeBars bool      `json:"includeBars"`
	SkipInvalid bool      `json:"skipInvalid"`
	Manifest    bool      `json:"manifest"`
}

// ConfigResponse is the JSON response for GET and PUT /api/config.
type ConfigResponse struct {
	Path      string         `json:"path"`
	Export    ExportSettings `json:"export"`
	Templates string         `json:"templates,omitempty"`
}

// ConfigRequest is the body of PUT /api/config and POST /api/config/validate.
type ConfigRequest struct {
	Export    ExportSettings `json:"export"`
	Templates string         `json:"templates,omitempty"`
}

// ValidationResult is the JSON response for config validation.
type ValidationResult struct {
	Valid  bool        `json:"valid"`
	Errors []*APIError `json:"errors,omitempty"`
}

// -----------------------------------------------------------------------------
// Handlers
// -----------------------------------------------------------------------------

// GetConfig handles GET /api/config.
func (h *ConfigHandler) GetConfig(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	cfg, err := config.LoadOrDefault(h.configPath)
	if err != nil {
		WritePlotError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, h.response(cfg))
}

// PutConfig handles PUT /api/config. Only the export section and the
// template path change; the rest of the file is kept.
func (h *ConfigHandler) PutConfig(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	var req ConfigRequest
	if err := ReadJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_json",
			"Failed to parse request body: "+err.Error())
		return
	}

	cfg, err := config.LoadOrDefault(h.configPath)
	if err != nil {
		WritePlotError(w, err)
		return
	}
	applyRequest(cfg, &req)
	if err := cfg.Validate(); err != nil {
		WritePlotError(w, err)
		return
	}
	if err := cfg.Save(h.configPath); err != nil {
		WritePlotError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, h.response(cfg))
}

// ValidateConfig handles POST /api/config/validate without saving.
func (h *ConfigHandler) ValidateConfig(w http.ResponseWriter, r *http.Request) {
	var req ConfigRequest
	if err := ReadJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_json",
			"Failed to parse request body: "+err.Error())
		return
	}

	cfg := config.Default()
	applyRequest(cfg, &req)

	result := ValidationResult{Valid: true}
	if err := cfg.Validate(); err != nil {
		result.Valid = false
		apiErr := &APIError{Code: werrors.ErrConfigInvalid, Message: err.Error()}
		if pe, ok := werrors.AsPlotError(err); ok {
			apiErr = &APIError{
				Code:        pe.Code,
				Message:     pe.Message,
				Context:     pe.Context,
				Suggestions: pe.Suggestions,
			}
		}
		result.Errors = append(result.Errors, apiErr)
	}
	WriteJSON(w, http.StatusOK, result)
}

// -----------------------------------------------------------------------------
// Conversion Functions
// -----------------------------------------------------------------------------

func (h *ConfigHandler) response(cfg *config.Config) *ConfigResponse {
	e := cfg.Export
	return &ConfigResponse{
		Path: h.configPath,
		Export: ExportSettings{
			Title:       e.Title,
			XLabel:      e.XLabel,
			YLabel:      e.YLabel,
			Ranges:      e.Ranges,
			ExportType:  e.ExportType,
			Colors:      e.Colors,
			File:        e.File,
			IncludeBars: e.IncludeBars,
			SkipInvalid: e.SkipInvalid,
			Manifest:    e.Manifest,
		},
		Templates: cfg.Templates.Path,
	}
}

func applyRequest(cfg *config.Config, req *ConfigRequest) {
	s := req.Export
	cfg.Export = config.ExportConfig{
		Title:       s.Title,
		XLabel:      s.XLabel,
		YLabel:      s.YLabel,
		Ranges:      s.Ranges,
		ExportType:  s.ExportType,
		Colors:      s.Colors,
		File:        s.File,
		IncludeBars: s.IncludeBars,
		SkipInvalid: s.SkipInvalid,
		Manifest:    s.Manifest,
	}
	cfg.Templates.Path = req.Templates
}
