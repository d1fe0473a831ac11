package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mjacobhvac/fieldops/internal/dispatch/repository"
	"github.com/mjacobhvac/fieldops/internal/dispatch/service"
	"go.uber.org/zap"
)

// DispatchHandler serves the dispatch board and the assignment engine.
type DispatchHandler struct {
	svc      *service.DispatchService
	statsSvc *service.StatsService
	logger   *zap.Logger
}

func NewDispatchHandler(svc *service.DispatchService, statsSvc *service.StatsService, logger *zap.Logger) *DispatchHandler {
	return &DispatchHandler{svc: svc, statsSvc: statsSvc, logger: logger}
}

// ListBookings returns the dispatch board.
// GET /api/v1/dispatch/bookings?status=&date=&tech_id=
func (h *DispatchHandler) ListBookings(c *gin.Context) {
	bookings, err := h.svc.ListBookings(c.Request.Context(), c.Query("status"), c.Query("date"), c.Query("tech_id"))
	if err != nil {
		if errors.Is(err, service.ErrInvalidDate) {
			BadRequest(c, err.Error())
			return
		}
		h.logger.Error("list bookings failed", zap.Error(err))
		InternalError(c, "Failed to retrieve bookings")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"bookings": bookings,
		"count":    len(bookings),
	})
}

// ExportBookings downloads the (filtered) board as xlsx.
// GET /api/v1/dispatch/bookings/export?status=&date=&tech_id=
func (h *DispatchHandler) ExportBookings(c *gin.Context) {
	f, filename, err := h.svc.ExportBookings(c.Request.Context(), c.Query("status"), c.Query("date"), c.Query("tech_id"))
	if err != nil {
		if errors.Is(err, service.ErrInvalidDate) {
			BadRequest(c, err.Error())
			return
		}
		h.logger.Error("export bookings failed", zap.Error(err))
		InternalError(c, "Failed to export bookings")
		return
	}
	defer f.Close()

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", "attachment; filename=\""+filename+"\"")
	c.Header("Content-Transfer-Encoding", "binary")

	if err := f.Write(c.Writer); err != nil {
		h.logger.Error("write xlsx failed", zap.Error(err))
	}
}

// AssignTechnician binds a technician and schedule to a booking.
// PUT /api/v1/dispatch/bookings/:id/assign
func (h *DispatchHandler) AssignTechnician(c *gin.Context) {
	var req service.AssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	booking, err := h.svc.AssignTechnician(c.Request.Context(), c.Param("id"), req, GetUserID(c))
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			NotFound(c, "Booking not found")
		case errors.Is(err, service.ErrTechnicianNotFound):
			NotFound(c, "Technician not found")
		case errors.Is(err, service.ErrInvalidDate):
			BadRequest(c, err.Error())
		default:
			h.logger.Error("assign technician failed", zap.String("request_id", c.Param("id")), zap.Error(err))
			InternalError(c, "Failed to assign tech")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Tech assigned successfully",
		"booking": booking,
	})
}

// UpdateStatus moves a booking through its lifecycle.
// PUT /api/v1/dispatch/bookings/:id/status
func (h *DispatchHandler) UpdateStatus(c *gin.Context) {
	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	booking, err := h.svc.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status, GetUserID(c))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidStatus):
			BadRequest(c, "Invalid status. Must be one of: pending, scheduled, in_progress, completed, cancelled")
		case errors.Is(err, repository.ErrNotFound):
			NotFound(c, "Booking not found")
		default:
			h.logger.Error("update status failed", zap.String("request_id", c.Param("id")), zap.Error(err))
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

// UpdateDetails applies a partial edit to a booking.
// PUT /api/v1/dispatch/bookings/:id
func (h *DispatchHandler) UpdateDetails(c *gin.Context) {
	var patch service.BookingPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	booking, err := h.svc.UpdateDetails(c.Request.Context(), c.Param("id"), patch, GetUserID(c))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmptyPatch):
			BadRequest(c, "No fields to update")
		case errors.Is(err, service.ErrInvalidDate):
			BadRequest(c, err.Error())
		case errors.Is(err, repository.ErrNotFound):
			NotFound(c, "Booking not found")
		default:
			h.logger.Error("update details failed", zap.String("request_id", c.Param("id")), zap.Error(err))
			InternalError(c, "Failed to update booking")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Booking updated successfully",
		"booking": booking,
	})
}

// GetStats returns the dashboard counters.
// GET /api/v1/dispatch/stats
func (h *DispatchHandler) GetStats(c *gin.Context) {
	stats, err := h.statsSvc.GetStats(c.Request.Context())
	if err != nil {
		h.logger.Error("get stats failed", zap.Error(err))
		InternalError(c, "Failed to retrieve stats")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"stats":   stats,
	})
}
