package api

import (
	"sync"
	"time"

	"github.com/labstack/echo/v4"

	"business-pipeline/internal/pipeline"
)

// PipelineHandler exposes the pipeline over HTTP for triggered runs.
type PipelineHandler struct {
	pipeline *pipeline.Pipeline
	mu       sync.Mutex // one run at a time; the sample file is not shareable
}

// NewPipelineHandler creates a new instance of PipelineHandler.
func NewPipelineHandler(p *pipeline.Pipeline) *PipelineHandler {
	return &PipelineHandler{pipeline: p}
}

// RunPipeline triggers a full pipeline run and reports its outcome.
func (h *PipelineHandler) RunPipeline(c echo.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.pipeline.Run(c.Request().Context()); err != nil {
		return c.JSON(500, map[string]string{"error": err.Error()})
	}

	return c.JSON(200, map[string]interface{}{
		"status": "completed",
		"time":   time.Now().Format(time.RFC3339),
	})
}

// Health reports service liveness.
func (h *PipelineHandler) Health(c echo.Context) error {
	return c.JSON(200, map[string]interface{}{
		"status":  "ok",
		"service": "business-pipeline",
		"time":    time.Now().Format(time.RFC3339),
	})
}
