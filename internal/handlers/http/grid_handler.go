package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"tilecast/internal/core/domain"
	"tilecast/internal/core/ports"
)

type GridHandler struct {
	calls  ports.CallService
	logger *zap.SugaredLogger
}

func NewGridHandler(calls ports.CallService, logger *zap.SugaredLogger) *GridHandler {
	return &GridHandler{
		calls:  calls,
		logger: logger,
	}
}

func (h *GridHandler) SetupRoutes(router *gin.Engine) {
	api := router.Group("/api/v1")
	{
		api.GET("/calls/:id/grid", h.GetGrid)
		api.POST("/calls/:id/pin/:uid", h.TogglePin)
		api.DELETE("/calls/:id", h.EndCall)
	}
}

// GetGrid returns the latest frame for a call: live when the grid is
// mounted here, the persisted snapshot otherwise.
func (h *GridHandler) GetGrid(c *gin.Context) {
	callID := domain.CallID(c.Param("id"))

	frame, err := h.calls.Frame(c.Request.Context(), callID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "call not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"frame": frame})
}

// TogglePin flips the focus state for a participant and returns the
// reflowed frame. Pinning the local tile is accepted and ignored, matching
// the tile-click behavior.
func (h *GridHandler) TogglePin(c *gin.Context) {
	callID := domain.CallID(c.Param("id"))
	uid := domain.UID(c.Param("uid"))

	frame, err := h.calls.TogglePin(c.Request.Context(), callID, uid)
	if err != nil {
		if errors.Is(err, domain.ErrCallNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "call not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"frame": frame})
}

func (h *GridHandler) EndCall(c *gin.Context) {
	callID := domain.CallID(c.Param("id"))

	if err := h.calls.End(c.Request.Context(), callID); err != nil {
		if errors.Is(err, domain.ErrCallNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "call not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Status(http.StatusNoContent)
}
