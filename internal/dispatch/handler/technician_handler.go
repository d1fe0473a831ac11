package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mjacobhvac/fieldops/internal/dispatch/service"
	"go.uber.org/zap"
)

// TechnicianHandler serves the technician directory.
type TechnicianHandler struct {
	svc    *service.TechnicianService
	logger *zap.Logger
}

func NewTechnicianHandler(svc *service.TechnicianService, logger *zap.Logger) *TechnicianHandler {
	return &TechnicianHandler{svc: svc, logger: logger}
}

// ListTechnicians returns all technicians with active job counts.
// GET /api/v1/dispatch/technicians
func (h *TechnicianHandler) ListTechnicians(c *gin.Context) {
	techs, err := h.svc.List(c.Request.Context())
	if err != nil {
		h.logger.Error("list technicians failed", zap.Error(err))
		InternalError(c, "Failed to retrieve technicians")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"technicians": techs,
	})
}
