// Package ports defines the interfaces the use-case services depend on.
// Repositories wrap persistence; the remaining ports wrap external systems
// (CRM, e-signature, object storage, email, document generation) so services
// stay testable with fakes.
package ports

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/talentflow/tf-backend/internal/models"
)

// DocumentRepository persists vigilance documents.
type DocumentRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.VigilanceDocument, error)
	Save(ctx context.Context, doc *models.VigilanceDocument) error
	// ListByThirdParty returns all documents of a third party, optionally
	// filtered by status (nil means no filter).
	ListByThirdParty(ctx context.Context, thirdPartyID uuid.UUID, status *models.DocumentStatus) ([]models.VigilanceDocument, error)
	// ListExpiring returns VALIDATED documents whose expiry falls within the
	// horizon but has not passed yet.
	ListExpiring(ctx context.Context, horizon time.Duration) ([]models.VigilanceDocument, error)
	// ListExpired returns VALIDATED documents whose expiry has passed.
	ListExpired(ctx context.Context) ([]models.VigilanceDocument, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// ThirdPartyRepository persists third-party legal entities.
type ThirdPartyRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.ThirdParty, error)
	GetBySiren(ctx context.Context, siren string) (*models.ThirdParty, error)
	Save(ctx context.Context, tp *models.ThirdParty) error
	List(ctx context.Context, typ *models.ThirdPartyType, compliance *models.ComplianceStatus, offset, limit int) ([]models.ThirdParty, int64, error)
	CountByCompliance(ctx context.Context) (map[models.ComplianceStatus]int64, error)
}

// ContractRequestRepository persists contract pipeline requests.
type ContractRequestRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.ContractRequest, error)
	// GetByPositioning returns the active (non-cancelled) request for a CRM
	// positioning, if any.
	GetByPositioning(ctx context.Context, positioningID string) (*models.ContractRequest, error)
	Save(ctx context.Context, req *models.ContractRequest) error
	List(ctx context.Context, status *models.ContractRequestStatus, offset, limit int) ([]models.ContractRequest, int64, error)
	// NextReference allocates the next sequential human-readable contract
	// reference, e.g. "CR-2026-0042".
	NextReference(ctx context.Context) (string, error)
}

// ContractRepository persists generated contracts.
type ContractRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Contract, error)
	// GetLatestByRequest returns the highest-version contract of a request.
	GetLatestByRequest(ctx context.Context, requestID uuid.UUID) (*models.Contract, error)
	Save(ctx context.Context, contract *models.Contract) error
}

// MagicLinkRepository persists portal access tokens.
type MagicLinkRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.MagicLink, error)
	GetByToken(ctx context.Context, token string) (*models.MagicLink, error)
	Save(ctx context.Context, link *models.MagicLink) error
	GetActive(ctx context.Context, thirdPartyID uuid.UUID, purpose models.MagicLinkPurpose) ([]models.MagicLink, error)
	// RevokeAll revokes every active link of a third party, optionally
	// restricted to one purpose. Returns the number of links revoked.
	RevokeAll(ctx context.Context, thirdPartyID uuid.UUID, purpose *models.MagicLinkPurpose) (int, error)
	// RevokeExpired revokes links past their expiry that are not yet flagged.
	RevokeExpired(ctx context.Context, now time.Time) (int, error)
}

// EmailService sends the platform's notification emails. Sends are
// best-effort from the use cases' perspective: failures are logged, never
// propagated.
type EmailService interface {
	SendDocumentCollectionRequest(tp *models.ThirdParty, portalURL string) error
	SendDocumentRejected(tp *models.ThirdParty, doc *models.VigilanceDocument, portalURL string) error
	SendDocumentExpiring(tp *models.ThirdParty, doc *models.VigilanceDocument, daysRemaining int) error
	SendDocumentExpired(tp *models.ThirdParty, doc *models.VigilanceDocument) error
	SendContractReviewRequest(tp *models.ThirdParty, contract *models.Contract, reviewURL string) error
	SendContractChangesRequested(commercialEmail string, contract *models.Contract, comments string) error
	SendContractSigned(commercialEmail string, contract *models.Contract) error
}

// CrmService is the BoondManager integration surface used by the pipeline.
type CrmService interface {
	// CreateProvider registers the third party in the CRM and returns its
	// provider id.
	CreateProvider(ctx context.Context, tp *models.ThirdParty) (string, error)
	// CreatePurchaseOrder creates a purchase order against a positioning and
	// returns its id.
	CreatePurchaseOrder(ctx context.Context, positioningID, providerID string, dailyRate float64, startDate, endDate *time.Time) (string, error)
	// GetPositioning fetches read-only positioning data for display.
	GetPositioning(ctx context.Context, positioningID string) (map[string]interface{}, error)
}

// SignatureService is the e-signature provider (YouSign) surface.
type SignatureService interface {
	CreateProcedure(ctx context.Context, contract *models.Contract, draftURL, signerEmail, signerName string) (string, error)
	GetProcedureStatus(ctx context.Context, procedureID string) (models.SignatureStatus, error)
	GetSignedDocument(ctx context.Context, procedureID string) ([]byte, error)
}

// ObjectStorage stores opaque document bytes under a key.
type ObjectStorage interface {
	Upload(ctx context.Context, key string, content []byte, contentType string) error
	GetPresignedURL(ctx context.Context, key string, expiry time.Duration) (string, error)
	Delete(ctx context.Context, key string) error
}

// ContractGenerator renders a contract draft from a template context,
// including the dynamically computed article-number map.
type ContractGenerator interface {
	GenerateDraft(ctx context.Context, templateCtx map[string]interface{}) ([]byte, error)
}
