// internal/handlers/portal.go
package handlers

import (
	"io"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/talentflow/tf-backend/internal/config"
	"github.com/talentflow/tf-backend/internal/models"
	"github.com/talentflow/tf-backend/internal/ports"
	"github.com/talentflow/tf-backend/internal/services"
	"github.com/talentflow/tf-backend/internal/utils"
)

// PortalHandler serves the unauthenticated third-party portal. Every endpoint
// re-verifies the magic-link token; there is no session.
type PortalHandler struct {
	cfg             *config.Config
	magicLinks      *services.MagicLinkService
	documentService *services.DocumentService
	contractService *services.ContractService
	documents       ports.DocumentRepository
	contracts       ports.ContractRepository
	storage         ports.ObjectStorage
}

func NewPortalHandler(
	cfg *config.Config,
	magicLinks *services.MagicLinkService,
	documentService *services.DocumentService,
	contractService *services.ContractService,
	documents ports.DocumentRepository,
	contracts ports.ContractRepository,
	storage ports.ObjectStorage,
) *PortalHandler {
	return &PortalHandler{
		cfg:             cfg,
		magicLinks:      magicLinks,
		documentService: documentService,
		contractService: contractService,
		documents:       documents,
		contracts:       contracts,
		storage:         storage,
	}
}

// GET /portal/session?token=...
func (h *PortalHandler) Verify(c *gin.Context) {
	result, err := h.verifyToken(c)
	if err != nil {
		return
	}

	utils.SuccessResponse(c, result)
}

// GET /portal/documents?token=...
func (h *PortalHandler) ListDocuments(c *gin.Context) {
	result, err := h.verifyToken(c)
	if err != nil {
		return
	}

	docs, err := h.documents.ListByThirdParty(c.Request.Context(), result.ThirdParty.ID, nil)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{
		"company_name": result.ThirdParty.CompanyName,
		"documents":    docs,
	})
}

// POST /portal/documents/:id/upload?token=...
func (h *PortalHandler) UploadDocument(c *gin.Context) {
	result, err := h.verifyToken(c)
	if err != nil {
		return
	}
	if result.Purpose != models.MagicLinkPurposeDocumentUpload {
		utils.ForbiddenResponse(c, "This link does not allow document upload")
		return
	}

	documentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid document ID", nil)
		return
	}

	// The link only grants access to the owning third party's documents.
	doc, err := h.documents.GetByID(c.Request.Context(), documentID)
	if err != nil || doc.ThirdPartyID != result.ThirdParty.ID {
		utils.NotFoundResponse(c, "Document not found")
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		utils.BadRequestResponse(c, "A file is required", nil)
		return
	}
	defer file.Close()

	if header.Size > h.cfg.Portal.MaxUploadBytes {
		utils.BadRequestResponse(c, "File exceeds the maximum allowed size", nil)
		return
	}

	content, err := io.ReadAll(file)
	if err != nil {
		utils.InternalErrorResponse(c, "Failed to read uploaded file")
		return
	}

	uploaded, err := h.documentService.UploadDocument(c.Request.Context(), documentID, header.Filename, content, header.Header.Get("Content-Type"))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, uploaded)
}

// GET /portal/contract?token=...
func (h *PortalHandler) GetContract(c *gin.Context) {
	result, err := h.verifyToken(c)
	if err != nil {
		return
	}
	if result.Purpose != models.MagicLinkPurposeContractReview || result.ContractRequestID == nil {
		utils.ForbiddenResponse(c, "This link does not allow contract review")
		return
	}

	contract, err := h.contracts.GetLatestByRequest(c.Request.Context(), *result.ContractRequestID)
	if err != nil {
		utils.NotFoundResponse(c, "No contract available for review")
		return
	}

	draftURL, err := h.storage.GetPresignedURL(c.Request.Context(), contract.S3KeyDraft, 15*time.Minute)
	if err != nil {
		utils.InternalErrorResponse(c, "Failed to prepare the contract document")
		return
	}

	utils.SuccessResponse(c, gin.H{
		"reference": contract.Reference,
		"version":   contract.Version,
		"draft_url": draftURL,
	})
}

type partnerReviewRequest struct {
	Approved bool   `json:"approved"`
	Comments string `json:"comments"`
}

// POST /portal/contract/review?token=...
func (h *PortalHandler) ReviewContract(c *gin.Context) {
	result, err := h.verifyToken(c)
	if err != nil {
		return
	}
	if result.Purpose != models.MagicLinkPurposeContractReview || result.ContractRequestID == nil {
		utils.ForbiddenResponse(c, "This link does not allow contract review")
		return
	}

	var req partnerReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}
	if !req.Approved && req.Comments == "" {
		utils.BadRequestResponse(c, "Comments are required when requesting changes", nil)
		return
	}

	request, err := h.contractService.ProcessPartnerReview(c.Request.Context(), *result.ContractRequestID, req.Approved, req.Comments)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"status": request.Status,
	})
}

// verifyToken checks the token query parameter and writes the error response
// itself on failure.
func (h *PortalHandler) verifyToken(c *gin.Context) (*services.VerifyResult, error) {
	token := c.Query("token")
	if token == "" {
		utils.UnauthorizedResponse(c, "A portal token is required")
		return nil, &services.MagicLinkNotFoundError{}
	}

	result, err := h.magicLinks.Verify(c.Request.Context(), token)
	if err != nil {
		handleServiceError(c, err)
		return nil, err
	}
	return result, nil
}
