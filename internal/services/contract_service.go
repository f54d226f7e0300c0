// internal/services/contract_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/talentflow/tf-backend/internal/models"
	"github.com/talentflow/tf-backend/internal/ports"
)

// ContractService drives a contract request from commercial validation
// through document collection, drafting, partner review, signature and the
// final CRM push.
type ContractService struct {
	requests     ports.ContractRequestRepository
	contracts    ports.ContractRepository
	thirdParties ports.ThirdPartyRepository
	storage      ports.ObjectStorage
	email        ports.EmailService
	crm          ports.CrmService
	signature    ports.SignatureService
	generator    ports.ContractGenerator
	documents    *DocumentService
	magicLinks   *MagicLinkService
}

func NewContractService(
	requests ports.ContractRequestRepository,
	contracts ports.ContractRepository,
	thirdParties ports.ThirdPartyRepository,
	storage ports.ObjectStorage,
	email ports.EmailService,
	crm ports.CrmService,
	signature ports.SignatureService,
	generator ports.ContractGenerator,
	documents *DocumentService,
	magicLinks *MagicLinkService,
) *ContractService {
	return &ContractService{
		requests:     requests,
		contracts:    contracts,
		thirdParties: thirdParties,
		storage:      storage,
		email:        email,
		crm:          crm,
		signature:    signature,
		generator:    generator,
		documents:    documents,
		magicLinks:   magicLinks,
	}
}

// CreateRequest opens a new pipeline request for a CRM positioning. The
// positioning may only carry one non-cancelled request at a time; the
// repository surfaces violations as ports.ErrPositioningConflict.
func (s *ContractService) CreateRequest(ctx context.Context, positioningID, commercialEmail string) (*models.ContractRequest, error) {
	req := &models.ContractRequest{
		PositioningID:   positioningID,
		Status:          models.ContractStatusPendingCommercialValidation,
		CommercialEmail: commercialEmail,
	}
	if err := s.requests.Save(ctx, req); err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"request_id":     req.ID,
		"positioning_id": positioningID,
	}).Info("Contract request created")

	return req, nil
}

// ThirdPartyDetails identifies the legal entity behind a commercial
// validation. The SIREN is the dedupe key: an existing third party with the
// same SIREN is reused instead of creating a sibling.
type ThirdPartyDetails struct {
	CompanyName      string
	LegalForm        string
	Siren            string
	Siret            string
	RegisteredOffice string
	Representative   string
	ContactEmail     string
}

// ValidateCommercial records the commercial decision on a request. Employee
// hires are redirected to the payroll tool and never touch vigilance or
// contract generation; freelances and subcontractors get a third party
// attached (found by SIREN or created) and move to COMMERCIAL_VALIDATED.
func (s *ContractService) ValidateCommercial(ctx context.Context, requestID uuid.UUID, terms models.CommercialTerms, details *ThirdPartyDetails) (*models.ContractRequest, error) {
	req, err := s.getRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}

	if terms.Type == models.ThirdPartyTypeEmployee {
		if err := req.RedirectToPayfit(terms); err != nil {
			return nil, err
		}
		if err := s.requests.Save(ctx, req); err != nil {
			return nil, err
		}
		logrus.WithField("request_id", req.ID).Info("Contract request redirected to Payfit")
		return req, nil
	}

	if details == nil {
		return nil, errors.New("third party details are required for non-employee requests")
	}
	tp, err := s.findOrCreateThirdParty(ctx, terms.Type, details)
	if err != nil {
		return nil, err
	}

	if err := req.ApplyCommercialTerms(terms); err != nil {
		return nil, err
	}
	req.ThirdPartyID = &tp.ID
	if err := s.requests.Save(ctx, req); err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"request_id":     req.ID,
		"third_party_id": tp.ID,
		"type":           terms.Type,
	}).Info("Contract request commercially validated")

	return req, nil
}

// StartDocumentCollection moves the request into COLLECTING_DOCUMENTS,
// creates the outstanding vigilance document requests and emails the third
// party an upload link.
func (s *ContractService) StartDocumentCollection(ctx context.Context, requestID uuid.UUID) (*models.ContractRequest, error) {
	req, err := s.getRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	tp, err := s.requireThirdParty(ctx, req)
	if err != nil {
		return nil, err
	}

	if err := req.TransitionTo(models.ContractStatusCollectingDocuments); err != nil {
		return nil, err
	}
	if err := s.requests.Save(ctx, req); err != nil {
		return nil, err
	}

	if _, err := s.documents.RequestDocuments(ctx, tp.ID); err != nil {
		return nil, err
	}
	if _, err := s.magicLinks.Generate(ctx, tp.ID, models.MagicLinkPurposeDocumentUpload, tp.ContactEmail, &req.ID); err != nil {
		logrus.WithError(err).WithField("request_id", req.ID).Warn("Failed to send document collection link")
	}

	return req, nil
}

// ConfigureContract stores the free-form contract configuration (payment
// terms, clause toggles, special conditions) and moves the request into
// CONFIGURING_CONTRACT if it is not there already.
func (s *ContractService) ConfigureContract(ctx context.Context, requestID uuid.UUID, config models.JSONB) (*models.ContractRequest, error) {
	req, err := s.getRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}

	if req.Status != models.ContractStatusConfiguringContract {
		if err := req.TransitionTo(models.ContractStatusConfiguringContract); err != nil {
			return nil, err
		}
	}
	req.ContractConfig = config
	if err := s.requests.Save(ctx, req); err != nil {
		return nil, err
	}

	return req, nil
}

// GrantComplianceOverride lets an admin bypass the compliance gate on draft
// generation, with a recorded reason.
func (s *ContractService) GrantComplianceOverride(ctx context.Context, requestID uuid.UUID, reason string) (*models.ContractRequest, error) {
	req, err := s.getRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	req.ComplianceOverride = true
	req.OverrideReason = reason
	if err := s.requests.Save(ctx, req); err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"request_id": req.ID,
		"reason":     reason,
	}).Warn("Compliance override granted")

	return req, nil
}

// GenerateDraft renders a contract draft from the request configuration and
// the article-number map, stores it and moves the request to DRAFT_GENERATED.
// A non-compliant third party blocks generation unless an override was
// granted. Redrafts reuse the reference and bump the version.
func (s *ContractService) GenerateDraft(ctx context.Context, requestID uuid.UUID) (*models.Contract, error) {
	req, err := s.getRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	tp, err := s.requireThirdParty(ctx, req)
	if err != nil {
		return nil, err
	}

	if tp.ComplianceStatus == models.ComplianceStatusNonCompliant && !req.ComplianceOverride {
		return nil, &ComplianceBlockError{ThirdPartyID: tp.ID, Status: tp.ComplianceStatus}
	}

	reference, version, err := s.nextContractVersion(ctx, req)
	if err != nil {
		return nil, err
	}

	opts := ArticleOptionsFromConfig(req.ContractConfig)
	templateCtx := map[string]interface{}{
		"reference":       reference,
		"version":         version,
		"third_party":     tp,
		"daily_rate":      req.DailyRate,
		"start_date":      req.StartDate,
		"end_date":        req.EndDate,
		"config":          map[string]interface{}(req.ContractConfig),
		"article_numbers": ComputeArticleNumbers(opts),
	}
	draft, err := s.generator.GenerateDraft(ctx, templateCtx)
	if err != nil {
		return nil, fmt.Errorf("failed to generate contract draft: %w", err)
	}

	draftKey := fmt.Sprintf("contracts/%s/v%d/draft.pdf", reference, version)
	if err := s.storage.Upload(ctx, draftKey, draft, "application/pdf"); err != nil {
		return nil, fmt.Errorf("failed to store contract draft: %w", err)
	}

	contract := &models.Contract{
		ContractRequestID: req.ID,
		ThirdPartyID:      tp.ID,
		Reference:         reference,
		Version:           version,
		S3KeyDraft:        draftKey,
	}
	if err := s.contracts.Save(ctx, contract); err != nil {
		return nil, err
	}

	if err := req.TransitionTo(models.ContractStatusDraftGenerated); err != nil {
		return nil, err
	}
	if err := s.requests.Save(ctx, req); err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"request_id": req.ID,
		"reference":  reference,
		"version":    version,
	}).Info("Contract draft generated")

	return contract, nil
}

// SendDraftToPartner issues a contract-review link (revoking prior ones),
// emails it to the third party and moves the request to
// DRAFT_SENT_TO_PARTNER.
func (s *ContractService) SendDraftToPartner(ctx context.Context, requestID uuid.UUID) (*models.ContractRequest, error) {
	req, err := s.getRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	tp, err := s.requireThirdParty(ctx, req)
	if err != nil {
		return nil, err
	}

	if err := req.TransitionTo(models.ContractStatusDraftSentToPartner); err != nil {
		return nil, err
	}
	if err := s.requests.Save(ctx, req); err != nil {
		return nil, err
	}

	if _, err := s.magicLinks.Generate(ctx, tp.ID, models.MagicLinkPurposeContractReview, tp.ContactEmail, &req.ID); err != nil {
		logrus.WithError(err).WithField("request_id", req.ID).Warn("Failed to send contract review link")
	}

	return req, nil
}

// ProcessPartnerReview records the partner's verdict on the current draft.
// A rejection loops the request back for reconfiguration, stores the
// comments on the latest contract and notifies the commercial contact.
func (s *ContractService) ProcessPartnerReview(ctx context.Context, requestID uuid.UUID, approved bool, comments string) (*models.ContractRequest, error) {
	req, err := s.getRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}

	if approved {
		if err := req.TransitionTo(models.ContractStatusPartnerApproved); err != nil {
			return nil, err
		}
		if err := s.requests.Save(ctx, req); err != nil {
			return nil, err
		}
		return req, nil
	}

	if err := req.TransitionTo(models.ContractStatusPartnerRequestedChanges); err != nil {
		return nil, err
	}
	if err := s.requests.Save(ctx, req); err != nil {
		return nil, err
	}

	contract, err := s.latestContract(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	contract.PartnerComments = comments
	if err := s.contracts.Save(ctx, contract); err != nil {
		return nil, err
	}

	if req.CommercialEmail != "" {
		if err := s.email.SendContractChangesRequested(req.CommercialEmail, contract, comments); err != nil {
			logrus.WithError(err).WithField("request_id", req.ID).Warn("Failed to send change-request notification")
		}
	}

	return req, nil
}

// SendForSignature opens an e-signature procedure on the latest draft and
// moves the request to SENT_FOR_SIGNATURE. Past this point the request can
// only complete through the signature webhook.
func (s *ContractService) SendForSignature(ctx context.Context, requestID uuid.UUID) (*models.Contract, error) {
	req, err := s.getRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	tp, err := s.requireThirdParty(ctx, req)
	if err != nil {
		return nil, err
	}
	contract, err := s.latestContract(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	draftURL, err := s.storage.GetPresignedURL(ctx, contract.S3KeyDraft, 1*time.Hour)
	if err != nil {
		return nil, fmt.Errorf("failed to presign contract draft: %w", err)
	}
	procedureID, err := s.signature.CreateProcedure(ctx, contract, draftURL, tp.ContactEmail, tp.Representative)
	if err != nil {
		return nil, fmt.Errorf("failed to create signature procedure: %w", err)
	}

	contract.SignatureProcedureID = procedureID
	contract.SignatureStatus = models.SignatureStatusOngoing
	if err := s.contracts.Save(ctx, contract); err != nil {
		return nil, err
	}

	if err := req.TransitionTo(models.ContractStatusSentForSignature); err != nil {
		return nil, err
	}
	if err := s.requests.Save(ctx, req); err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"request_id":   req.ID,
		"contract_id":  contract.ID,
		"procedure_id": procedureID,
	}).Info("Contract sent for signature")

	return contract, nil
}

// HandleSignatureCompleted is the webhook-driven completion: it downloads the
// signed document, stores it under the contract's versioned key, marks the
// contract signed and moves the parent request to SIGNED.
func (s *ContractService) HandleSignatureCompleted(ctx context.Context, contractID uuid.UUID) (*models.Contract, error) {
	contract, err := s.getContract(ctx, contractID)
	if err != nil {
		return nil, err
	}
	if contract.SignatureProcedureID == "" {
		return nil, fmt.Errorf("contract %s has no signature procedure", contract.ID)
	}
	req, err := s.getRequest(ctx, contract.ContractRequestID)
	if err != nil {
		return nil, err
	}

	signed, err := s.signature.GetSignedDocument(ctx, contract.SignatureProcedureID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch signed document: %w", err)
	}
	signedKey := fmt.Sprintf("contracts/%s/v%d/signed.pdf", contract.Reference, contract.Version)
	if err := s.storage.Upload(ctx, signedKey, signed, "application/pdf"); err != nil {
		return nil, fmt.Errorf("failed to store signed document: %w", err)
	}

	contract.MarkSigned(signedKey)
	if err := s.contracts.Save(ctx, contract); err != nil {
		return nil, err
	}

	if err := req.TransitionTo(models.ContractStatusSigned); err != nil {
		return nil, err
	}
	if err := s.requests.Save(ctx, req); err != nil {
		return nil, err
	}

	if req.CommercialEmail != "" {
		if err := s.email.SendContractSigned(req.CommercialEmail, contract); err != nil {
			logrus.WithError(err).WithField("contract_id", contract.ID).Warn("Failed to send signature notification")
		}
	}

	logrus.WithFields(logrus.Fields{
		"contract_id": contract.ID,
		"reference":   contract.Reference,
	}).Info("Contract signed")

	return contract, nil
}

// PushToCrm registers the third party in the CRM (once), creates the
// purchase order when a daily rate is set, and archives the request. Safe to
// retry: the persisted provider id guards the creation step, so a rerun
// after a partial failure resumes where it stopped.
func (s *ContractService) PushToCrm(ctx context.Context, requestID uuid.UUID) (*models.ContractRequest, error) {
	req, err := s.getRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	tp, err := s.requireThirdParty(ctx, req)
	if err != nil {
		return nil, err
	}
	contract, err := s.latestContract(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	if tp.BoondProviderID == "" {
		providerID, err := s.crm.CreateProvider(ctx, tp)
		if err != nil {
			return nil, fmt.Errorf("failed to create CRM provider: %w", err)
		}
		tp.BoondProviderID = providerID
		if err := s.thirdParties.Save(ctx, tp); err != nil {
			return nil, err
		}
	}

	if req.DailyRate != nil && contract.BoondPurchaseOrderID == "" {
		orderID, err := s.crm.CreatePurchaseOrder(ctx, req.PositioningID, tp.BoondProviderID, *req.DailyRate, req.StartDate, req.EndDate)
		if err != nil {
			return nil, fmt.Errorf("failed to create purchase order: %w", err)
		}
		contract.BoondPurchaseOrderID = orderID
		if err := s.contracts.Save(ctx, contract); err != nil {
			return nil, err
		}
	}

	if err := req.TransitionTo(models.ContractStatusArchived); err != nil {
		return nil, err
	}
	if err := s.requests.Save(ctx, req); err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"request_id":  req.ID,
		"provider_id": tp.BoondProviderID,
	}).Info("Contract request pushed to CRM and archived")

	return req, nil
}

// Cancel abandons a request. The transition table decides which states allow
// it; in particular a request already sent for signature cannot be cancelled.
func (s *ContractService) Cancel(ctx context.Context, requestID uuid.UUID) (*models.ContractRequest, error) {
	req, err := s.getRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if err := req.TransitionTo(models.ContractStatusCancelled); err != nil {
		return nil, err
	}
	if err := s.requests.Save(ctx, req); err != nil {
		return nil, err
	}

	logrus.WithField("request_id", req.ID).Info("Contract request cancelled")
	return req, nil
}

// GetRequest exposes a single request for the read side of the API.
func (s *ContractService) GetRequest(ctx context.Context, requestID uuid.UUID) (*models.ContractRequest, error) {
	return s.getRequest(ctx, requestID)
}

// ListRequests exposes the paginated pipeline listing.
func (s *ContractService) ListRequests(ctx context.Context, status *models.ContractRequestStatus, offset, limit int) ([]models.ContractRequest, int64, error) {
	return s.requests.List(ctx, status, offset, limit)
}

func (s *ContractService) findOrCreateThirdParty(ctx context.Context, typ models.ThirdPartyType, details *ThirdPartyDetails) (*models.ThirdParty, error) {
	siren := models.NormalizeSiren(details.Siren)
	if err := models.ValidateSiren(siren); err != nil {
		return nil, err
	}

	tp, err := s.thirdParties.GetBySiren(ctx, siren)
	if err == nil {
		return tp, nil
	}
	if !errors.Is(err, ports.ErrNotFound) {
		return nil, err
	}

	tp = &models.ThirdParty{
		CompanyName:      details.CompanyName,
		LegalForm:        details.LegalForm,
		Siren:            siren,
		Siret:            details.Siret,
		RegisteredOffice: details.RegisteredOffice,
		Representative:   details.Representative,
		ContactEmail:     details.ContactEmail,
		Type:             typ,
		ComplianceStatus: models.ComplianceStatusNonCompliant,
	}
	if err := s.thirdParties.Save(ctx, tp); err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"third_party_id": tp.ID,
		"siren":          siren,
	}).Info("Third party created")

	return tp, nil
}

// nextContractVersion reuses the request's reference on redraft, bumping the
// version; the first draft allocates a fresh sequential reference.
func (s *ContractService) nextContractVersion(ctx context.Context, req *models.ContractRequest) (string, int, error) {
	prev, err := s.contracts.GetLatestByRequest(ctx, req.ID)
	if err == nil {
		return prev.Reference, prev.Version + 1, nil
	}
	if !errors.Is(err, ports.ErrNotFound) {
		return "", 0, err
	}

	reference, err := s.requests.NextReference(ctx)
	if err != nil {
		return "", 0, err
	}
	return reference, 1, nil
}

func (s *ContractService) latestContract(ctx context.Context, requestID uuid.UUID) (*models.Contract, error) {
	contract, err := s.contracts.GetLatestByRequest(ctx, requestID)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return nil, &ContractNotFoundError{ID: requestID}
		}
		return nil, err
	}
	return contract, nil
}

func (s *ContractService) requireThirdParty(ctx context.Context, req *models.ContractRequest) (*models.ThirdParty, error) {
	if req.ThirdPartyID == nil {
		return nil, fmt.Errorf("contract request %s has no third party attached", req.ID)
	}
	tp, err := s.thirdParties.GetByID(ctx, *req.ThirdPartyID)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return nil, &ThirdPartyNotFoundError{ID: *req.ThirdPartyID}
		}
		return nil, err
	}
	return tp, nil
}

func (s *ContractService) getRequest(ctx context.Context, id uuid.UUID) (*models.ContractRequest, error) {
	req, err := s.requests.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return nil, &ContractRequestNotFoundError{ID: id}
		}
		return nil, err
	}
	return req, nil
}

func (s *ContractService) getContract(ctx context.Context, id uuid.UUID) (*models.Contract, error) {
	contract, err := s.contracts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return nil, &ContractNotFoundError{ID: id}
		}
		return nil, err
	}
	return contract, nil
}
