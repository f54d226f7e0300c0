// internal/handlers/document.go
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/talentflow/tf-backend/internal/services"
	"github.com/talentflow/tf-backend/internal/utils"
)

type DocumentHandler struct {
	documentService *services.DocumentService
}

func NewDocumentHandler(documentService *services.DocumentService) *DocumentHandler {
	return &DocumentHandler{
		documentService: documentService,
	}
}

// POST /documents/:id/validate
func (h *DocumentHandler) Validate(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid document ID", nil)
		return
	}

	userIDStr, exists := utils.GetUserIDFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return
	}
	validatedBy, err := uuid.Parse(userIDStr)
	if err != nil {
		utils.BadRequestResponse(c, "Invalid user ID", nil)
		return
	}

	doc, err := h.documentService.ValidateDocument(c.Request.Context(), id, validatedBy)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, doc)
}

type rejectDocumentRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// POST /documents/:id/reject
func (h *DocumentHandler) Reject(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid document ID", nil)
		return
	}

	var req rejectDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "A rejection reason is required", err.Error())
		return
	}

	doc, err := h.documentService.RejectDocument(c.Request.Context(), id, req.Reason)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, doc)
}
