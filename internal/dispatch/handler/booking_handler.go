package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mjacobhvac/fieldops/internal/dispatch/service"
	"go.uber.org/zap"
)

// BookingHandler serves the public booking form.
type BookingHandler struct {
	svc    *service.BookingService
	logger *zap.Logger
}

func NewBookingHandler(svc *service.BookingService, logger *zap.Logger) *BookingHandler {
	return &BookingHandler{svc: svc, logger: logger}
}

// CreateBooking accepts a public booking submission.
// POST /api/v1/bookings
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	var req service.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Missing required fields: "+err.Error())
		return
	}

	booking, err := h.svc.CreateBooking(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidDate) {
			BadRequest(c, err.Error())
			return
		}
		h.logger.Error("create booking failed", zap.Error(err))
		InternalError(c, "Failed to create booking")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Booking received. We will contact you to confirm.",
		"booking": booking,
	})
}
