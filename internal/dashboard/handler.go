package dashboard

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/namwkim/dataviz-storytelling/internal/apperrors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	service  *Service
	uploader Uploader
	logger   *zap.Logger
}

// NewHandler wires the HTTP surface. uploader may be nil when no bucket is
// configured; publishing then answers 503.
func NewHandler(service *Service, uploader Uploader, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{service: service, uploader: uploader, logger: logger}
}

// --------------------------------------------------
// Widget options
// --------------------------------------------------
func (h *Handler) Options(c *gin.Context) {
	opts, err := h.service.Options(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, opts)
}

// --------------------------------------------------
// Full dashboard for the current controls
// --------------------------------------------------
func (h *Handler) Dashboard(c *gin.Context) {
	controls, ok := h.controls(c)
	if !ok {
		return
	}

	d, err := h.service.Render(c.Request.Context(), controls)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

// --------------------------------------------------
// Single panel
// --------------------------------------------------
func (h *Handler) Panel(c *gin.Context) {
	controls, ok := h.controls(c)
	if !ok {
		return
	}

	spec, err := h.service.Panel(c.Request.Context(), controls, Panel(c.Param("panel")))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, spec)
}

// --------------------------------------------------
// Static exports
// --------------------------------------------------
func (h *Handler) TrendSVG(c *gin.Context) {
	h.export(c, "image/svg+xml", h.service.TrendSVG)
}

func (h *Handler) CorrelationSVG(c *gin.Context) {
	h.export(c, "image/svg+xml", h.service.CorrelationSVG)
}

func (h *Handler) BreakdownPNG(c *gin.Context) {
	h.export(c, "image/png", h.service.BreakdownPNG)
}

// --------------------------------------------------
// Admin
// --------------------------------------------------
func (h *Handler) Reload(c *gin.Context) {
	if err := h.service.Reload(c.Request.Context()); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "reloaded"})
}

func (h *Handler) Stats(c *gin.Context) {
	stats, err := h.service.Stats(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *Handler) PublishTrend(c *gin.Context) {
	controls, ok := h.controls(c)
	if !ok {
		return
	}

	snap, err := h.service.PublishTrend(c.Request.Context(), h.uploader, controls)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, snap)
}

// --------------------------------------------------

type exportFunc func(ctx context.Context, w io.Writer, c Controls) error

func (h *Handler) export(c *gin.Context, contentType string, render exportFunc) {
	controls, ok := h.controls(c)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := render(c.Request.Context(), &buf, controls); err != nil {
		h.fail(c, err)
		return
	}
	c.Data(http.StatusOK, contentType, buf.Bytes())
}

func (h *Handler) controls(c *gin.Context) (Controls, bool) {
	var q Query
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query"})
		return Controls{}, false
	}

	controls, err := ParseControls(q)
	if err != nil {
		h.fail(c, err)
		return Controls{}, false
	}
	return controls, true
}

func (h *Handler) fail(c *gin.Context, err error) {
	status := apperrors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		fields := []zap.Field{zap.String("path", c.Request.URL.Path), zap.Error(err)}
		var de *apperrors.DomainError
		if errors.As(err, &de) {
			fields = append(fields, zap.ByteString("stack", de.StackTrace()))
		}
		h.logger.Error("❌ dashboard request failed", fields...)
	}
	c.JSON(status, gin.H{"error": apperrors.Message(err)})
}
