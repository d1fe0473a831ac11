package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mjacobhvac/fieldops/internal/dispatch/repository"
	"github.com/mjacobhvac/fieldops/internal/dispatch/service"
	"go.uber.org/zap"
)

// TechPortalHandler serves technicians their own job list. The JWT uid is the
// technician id.
type TechPortalHandler struct {
	svc    *service.DispatchService
	logger *zap.Logger
}

func NewTechPortalHandler(svc *service.DispatchService, logger *zap.Logger) *TechPortalHandler {
	return &TechPortalHandler{svc: svc, logger: logger}
}

// ListJobs returns the caller's assigned jobs.
// GET /api/v1/tech/jobs?status=&date=
func (h *TechPortalHandler) ListJobs(c *gin.Context) {
	techID := GetUserID(c)
	jobs, err := h.svc.ListBookings(c.Request.Context(), c.Query("status"), c.Query("date"), techID)
	if err != nil {
		if errors.Is(err, service.ErrInvalidDate) {
			BadRequest(c, err.Error())
			return
		}
		h.logger.Error("list tech jobs failed", zap.String("tech_id", techID), zap.Error(err))
		InternalError(c, "Failed to retrieve jobs")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"jobs":    jobs,
		"count":   len(jobs),
	})
}

// UpdateJobStatus lets the assigned technician start or complete a job.
// PUT /api/v1/tech/jobs/:id/status
func (h *TechPortalHandler) UpdateJobStatus(c *gin.Context) {
	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	techID := GetUserID(c)
	booking, err := h.svc.UpdateStatusAsTech(c.Request.Context(), c.Param("id"), techID, req.Status)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidStatus):
			BadRequest(c, "Status must be in_progress or completed")
		case errors.Is(err, repository.ErrNotFound):
			NotFound(c, "Job not found")
		default:
			h.logger.Error("tech status update failed", zap.String("request_id", c.Param("id")), zap.Error(err))
			InternalError(c, "Failed to update status")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Status updated successfully",
		"booking": booking,
	})
}
