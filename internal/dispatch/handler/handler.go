package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mjacobhvac/fieldops/internal/dispatch/service"
	"go.uber.org/zap"
)

// Handlers is the dispatch handler set.
type Handlers struct {
	Booking     *BookingHandler
	Dispatch    *DispatchHandler
	Technician  *TechnicianHandler
	TechPortal  *TechPortalHandler
	ServiceType *ServiceTypeHandler
	SSE         *SSEHandler
}

// NewHandlers wires every handler.
func NewHandlers(
	bookingSvc *service.BookingService,
	dispatchSvc *service.DispatchService,
	techSvc *service.TechnicianService,
	serviceTypeSvc *service.ServiceTypeService,
	statsSvc *service.StatsService,
	logger *zap.Logger,
) *Handlers {
	return &Handlers{
		Booking:     NewBookingHandler(bookingSvc, logger),
		Dispatch:    NewDispatchHandler(dispatchSvc, statsSvc, logger),
		Technician:  NewTechnicianHandler(techSvc, logger),
		TechPortal:  NewTechPortalHandler(dispatchSvc, logger),
		ServiceType: NewServiceTypeHandler(serviceTypeSvc, logger),
		SSE:         NewSSEHandler(),
	}
}

// === response helpers (wire contract: {"success": bool, ...}) ===

func Fail(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{
		"success": false,
		"message": message,
	})
}

func BadRequest(c *gin.Context, message string) {
	Fail(c, http.StatusBadRequest, message)
}

func NotFound(c *gin.Context, message string) {
	Fail(c, http.StatusNotFound, message)
}

func InternalError(c *gin.Context, message string) {
	Fail(c, http.StatusInternalServerError, message)
}

// GetUserID returns the authenticated user id set by the JWT middleware.
func GetUserID(c *gin.Context) string {
	userID, _ := c.Get("user_id")
	if id, ok := userID.(string); ok {
		return id
	}
	return ""
}
