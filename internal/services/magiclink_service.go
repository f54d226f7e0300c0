// internal/services/magiclink_service.go
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
	"github.com/talentflow/tf-backend/internal/utils"
)

// DefaultMagicLinkTTL is how long a portal link stays usable.
const DefaultMagicLinkTTL = 7 * 24 * time.Hour

// MagicLinkService issues and verifies the bearer tokens gating portal
// access. Third parties have no accounts: a valid link is the only way in.
type MagicLinkService struct {
	links        ports.MagicLinkRepository
	thirdParties ports.ThirdPartyRepository
	contracts    ports.ContractRepository
	email        ports.EmailService
	portalURL    string
	ttl          time.Duration
}

func NewMagicLinkService(
	links ports.MagicLinkRepository,
	thirdParties ports.ThirdPartyRepository,
	contracts ports.ContractRepository,
	email ports.EmailService,
	portalURL string,
	ttl time.Duration,
) *MagicLinkService {
	if ttl <= 0 {
		ttl = DefaultMagicLinkTTL
	}
	return &MagicLinkService{
		links:        links,
		thirdParties: thirdParties,
		contracts:    contracts,
		email:        email,
		portalURL:    portalURL,
		ttl:          ttl,
	}
}

// VerifyResult is what a successful portal token check yields.
type VerifyResult struct {
	ThirdParty        *models.ThirdParty      `json:"third_party"`
	Purpose           models.MagicLinkPurpose `json:"purpose"`
	ContractRequestID *uuid.UUID              `json:"contract_request_id,omitempty"`
}

// Generate revokes all prior active links of the (third party, purpose) pair,
// issues a fresh one and sends the purpose-specific email.
func (s *MagicLinkService) Generate(ctx context.Context, thirdPartyID uuid.UUID, purpose models.MagicLinkPurpose, email string, contractRequestID *uuid.UUID) (*models.MagicLink, error) {
	tp, err := s.thirdParties.GetByID(ctx, thirdPartyID)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return nil, &ThirdPartyNotFoundError{ID: thirdPartyID}
		}
		return nil, err
	}

	link, err := s.IssueLink(ctx, tp, purpose, email, contractRequestID)
	if err != nil {
		return nil, err
	}

	s.sendLinkEmail(ctx, tp, link, contractRequestID)
	return link, nil
}

// IssueLink creates a link without sending any email, revoking prior active
// links of the same purpose first. Used by callers that embed the link in
// their own notification.
func (s *MagicLinkService) IssueLink(ctx context.Context, tp *models.ThirdParty, purpose models.MagicLinkPurpose, email string, contractRequestID *uuid.UUID) (*models.MagicLink, error) {
	revoked, err := s.links.RevokeAll(ctx, tp.ID, &purpose)
	if err != nil {
		return nil, err
	}
	if revoked > 0 {
		logrus.WithFields(logrus.Fields{
			"third_party_id": tp.ID,
			"purpose":        purpose,
			"revoked":        revoked,
		}).Info("Revoked previous magic links")
	}

	token, err := utils.GenerateMagicLinkToken()
	if err != nil {
		return nil, err
	}

	link := &models.MagicLink{
		ThirdPartyID:      tp.ID,
		Purpose:           purpose,
		Email:             email,
		Token:             token,
		ContractRequestID: contractRequestID,
		ExpiresAt:         time.Now().Add(s.ttl),
	}
	if err := s.links.Save(ctx, link); err != nil {
		return nil, err
	}

	return link, nil
}

// Verify checks a portal token and stamps its first access. NotFound,
// Revoked and Expired are distinct errors so the portal can tell the user
// which one happened.
func (s *MagicLinkService) Verify(ctx context.Context, token string) (*VerifyResult, error) {
	link, err := s.links.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return nil, &MagicLinkNotFoundError{}
		}
		return nil, err
	}

	if link.Revoked {
		return nil, &MagicLinkRevokedError{}
	}
	now := time.Now()
	if !now.Before(link.ExpiresAt) {
		return nil, &MagicLinkExpiredError{}
	}

	link.MarkAccessed(now)
	if err := s.links.Save(ctx, link); err != nil {
		return nil, err
	}

	tp, err := s.thirdParties.GetByID(ctx, link.ThirdPartyID)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return nil, &ThirdPartyNotFoundError{ID: link.ThirdPartyID}
		}
		return nil, err
	}

	return &VerifyResult{
		ThirdParty:        tp,
		Purpose:           link.Purpose,
		ContractRequestID: link.ContractRequestID,
	}, nil
}

// PortalURL builds the portal entry URL for a link.
func (s *MagicLinkService) PortalURL(link *models.MagicLink) string {
	switch link.Purpose {
	case models.MagicLinkPurposeContractReview:
		return fmt.Sprintf("%s/portal/contract?token=%s", s.portalURL, link.Token)
	default:
		return fmt.Sprintf("%s/portal/documents?token=%s", s.portalURL, link.Token)
	}
}

func (s *MagicLinkService) sendLinkEmail(ctx context.Context, tp *models.ThirdParty, link *models.MagicLink, contractRequestID *uuid.UUID) {
	var err error
	switch link.Purpose {
	case models.MagicLinkPurposeDocumentUpload:
		err = s.email.SendDocumentCollectionRequest(tp, s.PortalURL(link))
	case models.MagicLinkPurposeContractReview:
		if contractRequestID == nil {
			return
		}
		contract, cerr := s.contracts.GetLatestByRequest(ctx, *contractRequestID)
		if cerr != nil {
			logrus.WithError(cerr).WithField("contract_request_id", *contractRequestID).Warn("No contract found for review link email")
			return
		}
		err = s.email.SendContractReviewRequest(tp, contract, s.PortalURL(link))
	}

	if err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"third_party_id": tp.ID,
			"purpose":        link.Purpose,
		}).Warn("Failed to send magic link email")
	}
}
