// internal/handlers/third_party.go
package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/talentflow/tf-backend/internal/models"
	"github.com/talentflow/tf-backend/internal/ports"
	"github.com/talentflow/tf-backend/internal/services"
	"github.com/talentflow/tf-backend/internal/utils"
)

type ThirdPartyHandler struct {
	thirdParties    ports.ThirdPartyRepository
	documents       ports.DocumentRepository
	documentService *services.DocumentService
	magicLinks      *services.MagicLinkService
}

func NewThirdPartyHandler(
	thirdParties ports.ThirdPartyRepository,
	documents ports.DocumentRepository,
	documentService *services.DocumentService,
	magicLinks *services.MagicLinkService,
) *ThirdPartyHandler {
	return &ThirdPartyHandler{
		thirdParties:    thirdParties,
		documents:       documents,
		documentService: documentService,
		magicLinks:      magicLinks,
	}
}

// GET /third-parties
func (h *ThirdPartyHandler) List(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	var typ *models.ThirdPartyType
	if t := c.Query("type"); t != "" {
		parsed := models.ThirdPartyType(t)
		typ = &parsed
	}
	var compliance *models.ComplianceStatus
	if s := c.Query("compliance_status"); s != "" {
		parsed := models.ComplianceStatus(s)
		compliance = &parsed
	}

	thirdParties, total, err := h.thirdParties.List(c.Request.Context(), typ, compliance, params.Offset(), params.Limit)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	result := utils.CreatePaginationResult(thirdParties, total, params)
	utils.PaginatedResponse(c, result)
}

// GET /third-parties/:id
func (h *ThirdPartyHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid third party ID", nil)
		return
	}

	tp, err := h.getThirdParty(c, id)
	if err != nil {
		return
	}

	docs, err := h.documents.ListByThirdParty(c.Request.Context(), id, nil)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{
		"third_party": tp,
		"documents":   docs,
	})
}

// GET /third-parties/compliance-summary
func (h *ThirdPartyHandler) ComplianceSummary(c *gin.Context) {
	counts, err := h.thirdParties.CountByCompliance(c.Request.Context())
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{
		"compliant":     counts[models.ComplianceStatusCompliant],
		"expiring_soon": counts[models.ComplianceStatusExpiringSoon],
		"non_compliant": counts[models.ComplianceStatusNonCompliant],
	})
}

// POST /third-parties/:id/request-documents
func (h *ThirdPartyHandler) RequestDocuments(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid third party ID", nil)
		return
	}

	requested, err := h.documentService.RequestDocuments(c.Request.Context(), id)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"requested": requested,
	})
}

// POST /third-parties/:id/send-upload-link
func (h *ThirdPartyHandler) SendUploadLink(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid third party ID", nil)
		return
	}

	tp, err := h.getThirdParty(c, id)
	if err != nil {
		return
	}

	link, err := h.magicLinks.Generate(c.Request.Context(), tp.ID, models.MagicLinkPurposeDocumentUpload, tp.ContactEmail, nil)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"expires_at": link.ExpiresAt,
	})
}

// POST /third-parties/:id/check-compliance
func (h *ThirdPartyHandler) CheckCompliance(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid third party ID", nil)
		return
	}

	status, err := h.documentService.CheckCompliance(c.Request.Context(), id)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"compliance_status": status,
	})
}

// getThirdParty loads a third party and writes the error response itself
// when the lookup fails.
func (h *ThirdPartyHandler) getThirdParty(c *gin.Context, id uuid.UUID) (*models.ThirdParty, error) {
	tp, err := h.thirdParties.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			handleServiceError(c, &services.ThirdPartyNotFoundError{ID: id})
		} else {
			utils.InternalErrorResponse(c, err.Error())
		}
		return nil, err
	}
	return tp, nil
}
