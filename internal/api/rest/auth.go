package rest

import (
	"errors"
	"net/http"

	"github.com/KevinKickass/OpenIOLink/internal/auth"
	"github.com/KevinKickass/OpenIOLink/internal/types"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type LoginRequest struct {
	Password string `json:"password" binding:"required"`
}

// POST /api/v1/auth/login
func (s *Server) login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.NewErrorResponse(types.CodeAuthRequest, "Invalid request body", err.Error()))
		return
	}

	token, expires, err := s.auth.Login(req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			s.logger.Warn("Login failed", zap.String("client_ip", c.ClientIP()))
			c.JSON(http.StatusUnauthorized, types.NewErrorResponse(types.CodeAuthRequired, "Invalid credentials", nil))
			return
		}
		s.logger.Error("Login error", zap.Error(err))
		c.JSON(http.StatusInternalServerError, types.NewErrorResponse(types.CodeAuthRequired, "Login failed", nil))
		return
	}

	s.logger.Info("Login successful", zap.String("client_ip", c.ClientIP()))
	c.JSON(http.StatusOK, gin.H{
		"access_token": token,
		"token_type":   "Bearer",
		"expires_at":   expires.Unix(),
	})
}
