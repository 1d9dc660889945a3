package handler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/fleveque/market-radar/internal/chart"
	"github.com/fleveque/market-radar/internal/model"
	"github.com/fleveque/market-radar/internal/service"
)

// AnalysisHandler exposes the session to the dashboard: start, retry,
// current view, chart data and a live stream of views.
type AnalysisHandler struct {
	session *service.Session
	logger  *zap.Logger
}

// NewAnalysisHandler creates a new AnalysisHandler.
func NewAnalysisHandler(session *service.Session, logger *zap.Logger) *AnalysisHandler {
	return &AnalysisHandler{
		session: session,
		logger:  logger,
	}
}

type startRequest struct {
	Segment string `json:"segment" binding:"required"`
}

// Start begins a new analysis, replacing any in-flight one.
// Route: POST /api/v1/analysis?wait=true
func (h *AnalysisHandler) Start(c *gin.Context) {
	var req startRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "request body must be {\"segment\": \"...\"}"})
		return
	}

	view, err := h.session.Start(req.Segment)
	if err != nil {
		h.writeError(c, err)
		return
	}
	h.respond(c, view)
}

// Retry re-runs the last requested segment.
// Route: POST /api/v1/analysis/retry?wait=true
func (h *AnalysisHandler) Retry(c *gin.Context) {
	view, err := h.session.Retry()
	if err != nil {
		h.writeError(c, err)
		return
	}
	h.respond(c, view)
}

// Current returns the latest view.
// Route: GET /api/v1/analysis
func (h *AnalysisHandler) Current(c *gin.Context) {
	c.JSON(http.StatusOK, h.session.Current())
}

// Chart returns the market-share series of the current successful analysis.
// Route: GET /api/v1/analysis/chart
func (h *AnalysisHandler) Chart(c *gin.Context) {
	view := h.session.Current()
	if view.State != service.StateSuccess || view.Result == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no successful analysis available"})
		return
	}

	analysis := view.Result.Analysis
	c.JSON(http.StatusOK, gin.H{
		"segment":      analysis.Segment,
		"market_value": analysis.MarketValueLabel(),
		"share":        analysis.ShareSeries(),
	})
}

// ChartImage renders the market-share series of the current successful
// analysis as a PNG pie chart.
// Route: GET /api/v1/analysis/chart.png
func (h *AnalysisHandler) ChartImage(c *gin.Context) {
	view := h.session.Current()
	if view.State != service.StateSuccess || view.Result == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no successful analysis available"})
		return
	}

	img, err := chart.RenderSharePie(&view.Result.Analysis)
	if errors.Is(err, chart.ErrNoPlayers) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		h.logger.Error("rendering share chart", zap.String("segment", view.Segment), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.Data(http.StatusOK, "image/png", img)
}

// Events streams views as server-sent events until the client disconnects.
// Route: GET /api/v1/analysis/events
func (h *AnalysisHandler) Events(c *gin.Context) {
	views, unsubscribe := h.session.Subscribe()
	defer unsubscribe()

	c.Header("Cache-Control", "no-cache")
	c.Stream(func(w io.Writer) bool {
		select {
		case view, ok := <-views:
			if !ok {
				return false
			}
			c.SSEvent(string(view.State), view)
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}

// respond either returns the loading view (202) or, with ?wait=true, blocks
// until the request settles and returns its final view.
func (h *AnalysisHandler) respond(c *gin.Context, view service.View) {
	wait, _ := strconv.ParseBool(c.Query("wait"))
	if !wait {
		c.JSON(http.StatusAccepted, view)
		return
	}

	final, err := h.session.Wait(c.Request.Context(), view.RequestID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(statusFor(final), final)
}

// statusFor maps a settled view to an HTTP status.
func statusFor(view service.View) int {
	if view.State != service.StateError {
		return http.StatusOK
	}
	switch view.Failure {
	case service.FailureGeneration:
		return http.StatusBadGateway
	case service.FailureInvalidJSON, service.FailureSchemaMismatch:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func (h *AnalysisHandler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, model.ErrEmptySegment):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNoPreviousSegment), errors.Is(err, service.ErrSuperseded):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrSessionClosed):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		c.JSON(http.StatusRequestTimeout, gin.H{"error": err.Error()})
	default:
		h.logger.Error("analysis request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
