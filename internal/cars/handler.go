package cars

import (
	"net/http"

	"github.com/namwkim/dataviz-storytelling/internal/apperrors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	service *Service
	logger  *zap.Logger
}

func NewHandler(service *Service, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{service: service, logger: logger}
}

// GET /api/cars/options
func (h *Handler) Options(c *gin.Context) {
	opts, err := h.service.Options(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, opts)
}

// GET /api/cars/explore
func (h *Handler) Explore(c *gin.Context) {
	var q Query
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query"})
		return
	}

	f, err := ParseFilter(q)
	if err != nil {
		h.fail(c, err)
		return
	}

	ex, err := h.service.Explore(c.Request.Context(), f)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, ex)
}

// GET /api/cars/overview
func (h *Handler) Overview(c *gin.Context) {
	spec, err := h.service.Overview(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, spec)
}

// GET /api/cars/columns
func (h *Handler) Columns(c *gin.Context) {
	spec, err := h.service.Columns(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, spec)
}

func (h *Handler) fail(c *gin.Context, err error) {
	status := apperrors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("❌ cars request failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
	}
	c.JSON(status, gin.H{"error": apperrors.Message(err)})
}
