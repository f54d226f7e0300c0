// internal/handlers/admin.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/talentflow/tf-backend/internal/services"
	"github.com/talentflow/tf-backend/internal/utils"
)

type AdminHandler struct {
	expirationService *services.ExpirationService
}

func NewAdminHandler(expirationService *services.ExpirationService) *AdminHandler {
	return &AdminHandler{
		expirationService: expirationService,
	}
}

// POST /admin/sweep-expirations
//
// Manual trigger for the daily sweep. The sweep is idempotent, so running it
// again after the scheduled run is harmless.
func (h *AdminHandler) SweepExpirations(c *gin.Context) {
	result, err := h.expirationService.ProcessExpirations(c.Request.Context())
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, result)
}
