package rest

import (
	"net/http"

	"github.com/KevinKickass/OpenIOLink/internal/types"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// GET /api/v1/system/status
func (s *Server) getSystemStatus(c *gin.Context) {
	status := s.lm.GetCurrentStatus()
	c.JSON(http.StatusOK, status)
}

// POST /api/v1/system/reload
func (s *Server) reloadSpecs(c *gin.Context) {
	if err := s.lm.ReloadSpecs(c.Request.Context()); err != nil {
		s.logger.Warn("Spec reload rejected", zap.Error(err))
		c.JSON(http.StatusConflict, types.NewErrorResponse(types.CodeSystemReload, "Failed to reload device specs", err.Error()))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":    "Device specs reloaded",
		"spec_count": s.lm.SpecManager().Registry().Len(),
	})
}
