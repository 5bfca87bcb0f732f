package api

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"gopkg.in/yaml.v3"

	"github.com/r3d91ll/relaxplot/pkg/config"
	"github.com/r3d91ll/relaxplot/pkg/dataset"
	werrors "github.com/r3d91ll/relaxplot/pkg/errors"
	"github.com/r3d91ll/relaxplot/pkg/export"
	"github.com/r3d91ll/relaxplot/pkg/layout"
)

// maxExportBody bounds the request document size.
const maxExportBody = 8 << 20

// ExportHandler renders scripts from request documents.
type ExportHandler struct {
	defaults  config.ExportConfig
	templates string
	events    EventBroadcaster
	logger    *slog.Logger
}

// NewExportHandler creates an ExportHandler. Settings missing from a
// request fall back to cfg.Export; events may be nil.
func NewExportHandler(cfg *config.Config, events EventBroadcaster, logger *slog.Logger) *ExportHandler {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ExportHandler{
		defaults:  cfg.Export,
		templates: cfg.Templates.Path,
		events:    events,
		logger:    logger,
	}
}

// RegisterRoutes registers the export API routes on the router.
func (h *ExportHandler) RegisterRoutes(router *Router) {
	router.POST("/api/export", h.Export)
	router.POST("/api/export/verify", h.Verify)
}

// -----------------------------------------------------------------------------
// API Request Types
// -----------------------------------------------------------------------------

// exportDocument is the request body of POST /api/export:
//
//	{"config": {"title": ..., "exportType": "stat", "ranges": [...], ...},
//	 "residues": [...], "bars": [...]}
//
// config uses the keys of the export section of the configuration file.
// residues and bars use the dataset document layout.
type exportDocument struct {
	Config config.ExportConfig `yaml:"config"`
}

// VerifyRequest is the body of POST /api/export/verify.
type VerifyRequest struct {
	Script string `json:"script"`
	Hash   string `json:"hash"`
}

// -----------------------------------------------------------------------------
// API Response Types
// -----------------------------------------------------------------------------

// ExportResponse is the result of a successful export.
type ExportResponse struct {
	RequestID string      `json:"requestId"`
	ExportID  string      `json:"exportId"`
	Backend   string      `json:"backend"`
	Script    string      `json:"script"`
	Hash      string      `json:"hash"`
	Grid      layout.Grid `json:"grid"`
	BarGrid   layout.Grid `json:"barGrid"`
	Subplots  int         `json:"subplots"`
	Warnings  []string    `json:"warnings"`
}

// VerifyResponse reports whether a script matches a hash.
type VerifyResponse struct {
	Valid bool   `json:"valid"`
	Hash  string `json:"hash"`
}

// -----------------------------------------------------------------------------
// Handlers
// -----------------------------------------------------------------------------

// Export handles POST /api/export. Dropped groups appear as warnings when
// the request sets skip_invalid; otherwise they fail the request.
func (h *ExportHandler) Export(w http.ResponseWriter, r *http.Request) {
	requestID := RequestID(r.Context())
	logger := h.logger.With("request_id", requestID)

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxExportBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			WriteError(w, http.StatusRequestEntityTooLarge, "body_too_large", "Request document is too large")
			return
		}
		WriteError(w, http.StatusBadRequest, "invalid_body", "Failed to read request body")
		return
	}

	doc := exportDocument{Config: h.defaults}
	doc.Config.Ranges = append([]float64(nil), h.defaults.Ranges...)
	if err := yaml.Unmarshal(body, &doc); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_json", "Failed to parse request body: "+err.Error())
		return
	}

	cfg, err := doc.Config.ChartConfig()
	if err != nil {
		h.fail(w, requestID, "", err)
		return
	}
	backend := cfg.Backend.String()

	ds, err := dataset.Decode(body)
	if err != nil {
		h.fail(w, requestID, backend, err)
		return
	}

	if h.events != nil {
		h.events.ExportStarted(&ExportStartedEvent{
			RequestID: requestID,
			Backend:   backend,
			Residues:  len(ds.Residues),
			BarGroups: len(ds.Bars),
		})
	}

	var buf bytes.Buffer
	res, err := export.Run(export.Request{
		Config:   cfg,
		Residues: ds.Residues,
		Bars:     ds.Bars,
		Rejected: ds.Rejected,
	}, &export.WriterSink{W: &buf, Name: "response"}, export.Options{
		SkipInvalid:  doc.Config.SkipInvalid,
		IncludeBars:  doc.Config.IncludeBars,
		TemplateFile: h.templates,
		Logger:       logger,
	})
	if err != nil {
		h.fail(w, requestID, backend, err)
		return
	}

	warnings := make([]string, 0, len(res.Script.Skipped))
	for _, s := range res.Script.Skipped {
		warnings = append(warnings, s.Error())
	}
	resp := &ExportResponse{
		RequestID: requestID,
		ExportID:  res.ID,
		Backend:   backend,
		Script:    buf.String(),
		Hash:      res.Manifest.ScriptHash,
		Grid:      res.Script.Grid,
		BarGrid:   res.Script.BarGrid,
		Subplots:  res.Script.Subplots,
		Warnings:  warnings,
	}

	if h.events != nil {
		h.events.ExportCompleted(&ExportCompletedEvent{
			RequestID: requestID,
			Backend:   backend,
			Hash:      resp.Hash,
			Lines:     len(res.Script.Lines),
			Subplots:  res.Script.Subplots,
			Warnings:  warnings,
		})
	}
	logger.Info("export rendered", "backend", backend, "lines", len(res.Script.Lines), "warnings", len(warnings))
	WriteJSON(w, http.StatusOK, resp)
}

func (h *ExportHandler) fail(w http.ResponseWriter, requestID, backend string, err error) {
	if h.events != nil {
		ev := &ExportFailedEvent{RequestID: requestID, Backend: backend, Message: err.Error()}
		if pe, ok := werrors.AsPlotError(err); ok {
			ev.Code = pe.Code
			ev.Message = pe.Message
		}
		h.events.ExportFailed(ev)
	}
	h.logger.Warn("export rejected", "request_id", requestID, "backend", backend, "error", err)
	WritePlotError(w, err)
}

// Verify handles POST /api/export/verify.
func (h *ExportHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req VerifyRequest
	if err := ReadJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_json", "Failed to parse request body: "+err.Error())
		return
	}
	if req.Hash == "" {
		WritePlotError(w, werrors.ValidationErrorf(werrors.ErrValidationRequired, "hash is required"))
		return
	}
	m := &export.Manifest{ScriptHash: req.Hash}
	WriteJSON(w, http.StatusOK, &VerifyResponse{
		Valid: m.Verify([]byte(req.Script)),
		Hash:  export.HashBytes([]byte(req.Script)),
	})
}
