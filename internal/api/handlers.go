package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/VoidMesh/heightfield/internal/config"
	"github.com/VoidMesh/heightfield/internal/history"
	"github.com/VoidMesh/heightfield/internal/logging"
)

const maxRequestBody = 1 << 20

type Handler struct {
	generator Generator
	preview   Previewer
	runs      RunStore
	preset    config.GenerationConfig
	timeout   time.Duration
	logger    logging.Interface
}

// NewHandler builds the HTTP handlers. Request bodies are decoded over
// preset, and synchronous generations are bounded by timeout. runs may be nil.
func NewHandler(generator Generator, preview Previewer, runs RunStore, preset config.GenerationConfig, timeout time.Duration, logger logging.Interface) *Handler {
	return &Handler{
		generator: generator,
		preview:   preview,
		runs:      runs,
		preset:    preset,
		timeout:   timeout,
		logger:    logger.With("component", "api"),
	}
}

func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().Unix(),
		"service":   "heightfield",
		"version":   "1.0.0",
		"history":   h.runs != nil,
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, response)
}

// CreateHeightmap runs one generation and returns the result. Pass
// ?heights=false to receive only the summary.
func (h *Handler) CreateHeightmap(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.decodeConfig(r)
	if err != nil {
		h.renderError(w, r, http.StatusBadRequest, "invalid request body", err)
		return
	}

	full := true
	if v := r.URL.Query().Get("heights"); v != "" {
		if full, err = strconv.ParseBool(v); err != nil {
			h.renderError(w, r, http.StatusBadRequest, "invalid heights parameter", err)
			return
		}
	}

	ctx := r.Context()
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	result, err := h.generator.Generate(ctx, cfg)
	switch {
	case errors.Is(err, config.ErrInvalidConfig):
		h.renderValidationError(w, r, err)
		return
	case errors.Is(err, context.DeadlineExceeded):
		h.renderError(w, r, http.StatusGatewayTimeout, "generation timed out", err)
		return
	case errors.Is(err, context.Canceled):
		// Client went away.
		return
	case err != nil:
		h.renderError(w, r, http.StatusInternalServerError, "generation failed", err)
		return
	}

	if h.runs != nil {
		if err := h.runs.Record(ctx, result); err != nil {
			h.logger.Error("Failed to record run", "run_id", result.RunID, "error", err)
		}
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, NewHeightmapResponse(result, full))
}

// SubmitPreview queues a preview generation, superseding any in flight.
func (h *Handler) SubmitPreview(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.decodeConfig(r)
	if err != nil {
		h.renderError(w, r, http.StatusBadRequest, "invalid request body", err)
		return
	}

	if err := cfg.Validate(); err != nil {
		h.renderValidationError(w, r, err)
		return
	}

	gen := h.preview.Submit(cfg)
	h.logger.Debug("Preview submitted", "generation", gen, "seed", cfg.Seed)

	render.Status(r, http.StatusAccepted)
	render.JSON(w, r, PreviewResponse{Generation: gen, Status: PreviewPending})
}

// GetPreview reports the latest preview. Heights are included once done.
func (h *Handler) GetPreview(w http.ResponseWriter, r *http.Request) {
	current := h.preview.Generation()
	if current == 0 {
		h.renderError(w, r, http.StatusNotFound, "no preview submitted", nil)
		return
	}

	resp := PreviewResponse{Generation: current, Status: PreviewPending}
	latest, ok := h.preview.Latest()
	if ok && latest.Generation == current {
		if latest.Err != nil {
			resp.Status = PreviewFailed
			resp.Error = latest.Err.Error()
		} else {
			resp.Status = PreviewDone
			resp.Heightmap = NewHeightmapResponse(latest.Result, true)
		}
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, resp)
}

func (h *Handler) ListRuns(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			h.renderError(w, r, http.StatusBadRequest, "invalid limit", err)
			return
		}
		limit = n
	}

	runs, err := h.runs.List(r.Context(), limit)
	if err != nil {
		h.renderError(w, r, http.StatusInternalServerError, "failed to list runs", err)
		return
	}
	if runs == nil {
		runs = []history.Run{}
	}
	total, err := h.runs.Count(r.Context())
	if err != nil {
		h.renderError(w, r, http.StatusInternalServerError, "failed to count runs", err)
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, map[string]interface{}{
		"runs":  runs,
		"count": len(runs),
		"total": total,
	})
}

func (h *Handler) GetRun(w http.ResponseWriter, r *http.Request) {
	runID := chi.URLParam(r, "runID")

	run, err := h.runs.Get(r.Context(), runID)
	if errors.Is(err, history.ErrNotFound) {
		h.renderError(w, r, http.StatusNotFound, "run not found", nil)
		return
	}
	if err != nil {
		h.renderError(w, r, http.StatusInternalServerError, "failed to get run", err)
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, run)
}

// decodeConfig reads a JSON GenerationConfig over a copy of the preset. An
// empty body yields the preset itself; arrays in the body replace the
// preset's arrays whole.
func (h *Handler) decodeConfig(r *http.Request) (config.GenerationConfig, error) {
	cfg := h.preset.Clone()
	if r.Body == nil {
		return cfg, nil
	}

	dec := json.NewDecoder(io.LimitReader(r.Body, maxRequestBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, err
	}
	return cfg, nil
}

func (h *Handler) renderValidationError(w http.ResponseWriter, r *http.Request, err error) {
	errorResponse := ErrorResponse{
		Error:   "invalid generation config",
		Code:    http.StatusUnprocessableEntity,
		Message: err.Error(),
		Fields:  config.Fields(err),
	}

	h.logger.Debug("Rejected generation config", "fields", errorResponse.Fields)
	render.Status(r, http.StatusUnprocessableEntity)
	render.JSON(w, r, errorResponse)
}

func (h *Handler) renderError(w http.ResponseWriter, r *http.Request, status int, message string, err error) {
	errorResponse := ErrorResponse{
		Error:   message,
		Code:    status,
		Message: message,
	}

	if err != nil {
		h.logger.Error("API error", "error", err, "message", message, "status", status)
		// Don't expose internal errors to the client
		if status >= 500 {
			errorResponse.Error = "Internal server error"
		}
	}

	render.Status(r, status)
	render.JSON(w, r, errorResponse)
}
