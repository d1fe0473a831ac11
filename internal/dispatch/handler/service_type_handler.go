package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mjacobhvac/fieldops/internal/dispatch/service"
	"go.uber.org/zap"
)

// ServiceTypeHandler serves the public service catalog.
type ServiceTypeHandler struct {
	svc    *service.ServiceTypeService
	logger *zap.Logger
}

func NewServiceTypeHandler(svc *service.ServiceTypeService, logger *zap.Logger) *ServiceTypeHandler {
	return &ServiceTypeHandler{svc: svc, logger: logger}
}

// ListServiceTypes returns the service catalog backing the booking form.
// GET /api/v1/service-types
func (h *ServiceTypeHandler) ListServiceTypes(c *gin.Context) {
	types, err := h.svc.List(c.Request.Context())
	if err != nil {
		h.logger.Error("list service types failed", zap.Error(err))
		InternalError(c, "Failed to retrieve service types")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"service_types": types,
	})
}
