package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Fraol-M/metta-assistant/internal/middleware"
	"github.com/Fraol-M/metta-assistant/internal/pkg/response"
)

type ProtectedHandler struct{}

func NewProtectedHandler() *ProtectedHandler {
	return &ProtectedHandler{}
}

func (h *ProtectedHandler) AdminOnly(c *gin.Context) {
	response.JSON(c, http.StatusOK, gin.H{
		"message": "Admin only route",
	})
}

func (h *ProtectedHandler) Me(c *gin.Context) {
	userID := c.GetString(middleware.ContextUserIDKey)
	role := c.GetString(middleware.ContextRoleKey)
	response.JSON(c, http.StatusOK, gin.H{
		"user_id": userID,
		"role":    role,
	})
}
