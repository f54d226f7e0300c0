// internal/handlers/contract.go
package handlers

import (
	"encoding/json"
	"io"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/talentflow/tf-backend/internal/models"
	"github.com/talentflow/tf-backend/internal/services"
	"github.com/talentflow/tf-backend/internal/utils"
)

type ContractHandler struct {
	contractService *services.ContractService
	yousignService  *services.YouSignService
}

func NewContractHandler(contractService *services.ContractService, yousignService *services.YouSignService) *ContractHandler {
	return &ContractHandler{
		contractService: contractService,
		yousignService:  yousignService,
	}
}

type createRequestRequest struct {
	PositioningID   string `json:"positioning_id" binding:"required"`
	CommercialEmail string `json:"commercial_email" binding:"required,email"`
}

// POST /contract-requests
func (h *ContractHandler) Create(c *gin.Context) {
	var req createRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	request, err := h.contractService.CreateRequest(c.Request.Context(), req.PositioningID, req.CommercialEmail)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, request)
}

// GET /contract-requests
func (h *ContractHandler) List(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	var status *models.ContractRequestStatus
	if s := c.Query("status"); s != "" {
		parsed := models.ContractRequestStatus(s)
		status = &parsed
	}

	requests, total, err := h.contractService.ListRequests(c.Request.Context(), status, params.Offset(), params.Limit)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	result := utils.CreatePaginationResult(requests, total, params)
	utils.PaginatedResponse(c, result)
}

// GET /contract-requests/:id
func (h *ContractHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid contract request ID", nil)
		return
	}

	request, err := h.contractService.GetRequest(c.Request.Context(), id)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, request)
}

type validateCommercialRequest struct {
	Type             models.ThirdPartyType `json:"type" binding:"required"`
	DailyRate        *float64              `json:"daily_rate"`
	StartDate        *time.Time            `json:"start_date"`
	EndDate          *time.Time            `json:"end_date"`
	CommercialEmail  string                `json:"commercial_email" binding:"required,email"`
	CompanyName      string                `json:"company_name"`
	LegalForm        string                `json:"legal_form"`
	Siren            string                `json:"siren"`
	Siret            string                `json:"siret"`
	RegisteredOffice string                `json:"registered_office"`
	Representative   string                `json:"representative"`
	ContactEmail     string                `json:"contact_email"`
}

// POST /contract-requests/:id/validate-commercial
func (h *ContractHandler) ValidateCommercial(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid contract request ID", nil)
		return
	}

	var req validateCommercialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	terms := models.CommercialTerms{
		Type:            req.Type,
		DailyRate:       req.DailyRate,
		StartDate:       req.StartDate,
		EndDate:         req.EndDate,
		CommercialEmail: req.CommercialEmail,
	}

	var details *services.ThirdPartyDetails
	if req.Type != models.ThirdPartyTypeEmployee {
		details = &services.ThirdPartyDetails{
			CompanyName:      req.CompanyName,
			LegalForm:        req.LegalForm,
			Siren:            req.Siren,
			Siret:            req.Siret,
			RegisteredOffice: req.RegisteredOffice,
			Representative:   req.Representative,
			ContactEmail:     req.ContactEmail,
		}
	}

	request, err := h.contractService.ValidateCommercial(c.Request.Context(), id, terms, details)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, request)
}

// POST /contract-requests/:id/start-collection
func (h *ContractHandler) StartDocumentCollection(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid contract request ID", nil)
		return
	}

	request, err := h.contractService.StartDocumentCollection(c.Request.Context(), id)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, request)
}

// PUT /contract-requests/:id/configuration
func (h *ContractHandler) Configure(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid contract request ID", nil)
		return
	}

	var config models.JSONB
	if err := c.ShouldBindJSON(&config); err != nil {
		utils.BadRequestResponse(c, "Invalid configuration body", err.Error())
		return
	}

	request, err := h.contractService.ConfigureContract(c.Request.Context(), id, config)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, request)
}

type overrideRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// POST /contract-requests/:id/compliance-override (admin only)
func (h *ContractHandler) GrantComplianceOverride(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid contract request ID", nil)
		return
	}

	var req overrideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "An override reason is required", err.Error())
		return
	}

	request, err := h.contractService.GrantComplianceOverride(c.Request.Context(), id, req.Reason)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, request)
}

// POST /contract-requests/:id/generate-draft
func (h *ContractHandler) GenerateDraft(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid contract request ID", nil)
		return
	}

	contract, err := h.contractService.GenerateDraft(c.Request.Context(), id)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, contract)
}

// POST /contract-requests/:id/send-to-partner
func (h *ContractHandler) SendToPartner(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid contract request ID", nil)
		return
	}

	request, err := h.contractService.SendDraftToPartner(c.Request.Context(), id)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, request)
}

// POST /contract-requests/:id/send-for-signature
func (h *ContractHandler) SendForSignature(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid contract request ID", nil)
		return
	}

	contract, err := h.contractService.SendForSignature(c.Request.Context(), id)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, contract)
}

// POST /contract-requests/:id/push-to-crm
func (h *ContractHandler) PushToCrm(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid contract request ID", nil)
		return
	}

	request, err := h.contractService.PushToCrm(c.Request.Context(), id)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, request)
}

// POST /contract-requests/:id/cancel
func (h *ContractHandler) Cancel(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid contract request ID", nil)
		return
	}

	request, err := h.contractService.Cancel(c.Request.Context(), id)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, request)
}

type yousignWebhookPayload struct {
	EventName string `json:"event_name"`
	Data      struct {
		SignatureRequest struct {
			ID         string `json:"id"`
			ExternalID string `json:"external_id"`
		} `json:"signature_request"`
		ContractID string `json:"contract_id"`
	} `json:"data"`
}

// POST /webhooks/yousign
func (h *ContractHandler) YouSignWebhook(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		utils.BadRequestResponse(c, "Unable to read webhook body", nil)
		return
	}

	signature := c.GetHeader("X-Yousign-Signature-256")
	if !h.yousignService.VerifyWebhookSignature(body, signature) {
		utils.UnauthorizedResponse(c, "Invalid webhook signature")
		return
	}

	var payload yousignWebhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		utils.BadRequestResponse(c, "Invalid webhook payload", err.Error())
		return
	}

	if payload.EventName != "signature_request.done" {
		// Acknowledge events we do not act on.
		utils.SuccessResponse(c, gin.H{"handled": false})
		return
	}

	contractID, err := uuid.Parse(payload.Data.ContractID)
	if err != nil {
		utils.BadRequestResponse(c, "Webhook payload carries no valid contract ID", nil)
		return
	}

	contract, err := h.contractService.HandleSignatureCompleted(c.Request.Context(), contractID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"handled":  true,
		"contract": contract.ID,
	})
}
