// internal/services/expiration_service.go
package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/talentflow/tf-backend/internal/models"
	"github.com/talentflow/tf-backend/internal/ports"
)

// ExpiringSoonHorizon is how far ahead of expiry the sweep starts warning.
const ExpiringSoonHorizon = 30 * 24 * time.Hour

// SweepResult summarizes one expiration sweep run.
type SweepResult struct {
	Expired              int `json:"expired"`
	ExpiringSoon         int `json:"expiring_soon"`
	AffectedThirdParties int `json:"affected_third_parties"`
}

// ExpirationService is the daily batch that ages validated documents toward
// expiry and keeps compliance projections in step. Each document is processed
// independently so one bad record never aborts the whole run.
type ExpirationService struct {
	docs         ports.DocumentRepository
	thirdParties ports.ThirdPartyRepository
	links        ports.MagicLinkRepository
	email        ports.EmailService
}

func NewExpirationService(
	docs ports.DocumentRepository,
	thirdParties ports.ThirdPartyRepository,
	links ports.MagicLinkRepository,
	email ports.EmailService,
) *ExpirationService {
	return &ExpirationService{
		docs:         docs,
		thirdParties: thirdParties,
		links:        links,
		email:        email,
	}
}

// ProcessExpirations runs one sweep: expires overdue documents, flags the
// ones inside the warning horizon, recomputes compliance for every affected
// third party and revokes stale magic links. Both fetches filter on
// VALIDATED, so re-running the sweep immediately is a no-op.
func (s *ExpirationService) ProcessExpirations(ctx context.Context) (*SweepResult, error) {
	result := &SweepResult{}
	affected := make(map[uuid.UUID]struct{})

	expired, err := s.docs.ListExpired(ctx)
	if err != nil {
		return nil, err
	}
	for i := range expired {
		doc := &expired[i]
		if !s.transitionDocument(ctx, doc, doc.MarkExpired) {
			continue
		}
		result.Expired++
		affected[doc.ThirdPartyID] = struct{}{}
		s.notifyExpired(ctx, doc)
	}

	expiring, err := s.docs.ListExpiring(ctx, ExpiringSoonHorizon)
	if err != nil {
		return nil, err
	}
	for i := range expiring {
		doc := &expiring[i]
		if !s.transitionDocument(ctx, doc, doc.MarkExpiringSoon) {
			continue
		}
		result.ExpiringSoon++
		affected[doc.ThirdPartyID] = struct{}{}
		s.notifyExpiring(ctx, doc)
	}

	for thirdPartyID := range affected {
		if err := s.refreshCompliance(ctx, thirdPartyID); err != nil {
			logrus.WithError(err).WithField("third_party_id", thirdPartyID).Error("Sweep failed to refresh compliance")
		}
	}
	result.AffectedThirdParties = len(affected)

	revoked, err := s.links.RevokeExpired(ctx, time.Now())
	if err != nil {
		logrus.WithError(err).Error("Sweep failed to revoke expired magic links")
	} else if revoked > 0 {
		logrus.WithField("revoked", revoked).Info("Expired magic links revoked")
	}

	logrus.WithFields(logrus.Fields{
		"expired":       result.Expired,
		"expiring_soon": result.ExpiringSoon,
		"third_parties": result.AffectedThirdParties,
	}).Info("Expiration sweep completed")

	return result, nil
}

// transitionDocument applies one mutation and persists it, logging instead of
// propagating so the batch keeps going.
func (s *ExpirationService) transitionDocument(ctx context.Context, doc *models.VigilanceDocument, mutate func() error) bool {
	if err := mutate(); err != nil {
		logrus.WithError(err).WithField("document_id", doc.ID).Warn("Sweep skipped document")
		return false
	}
	if err := s.docs.Save(ctx, doc); err != nil {
		logrus.WithError(err).WithField("document_id", doc.ID).Error("Sweep failed to persist document")
		return false
	}
	return true
}

func (s *ExpirationService) refreshCompliance(ctx context.Context, thirdPartyID uuid.UUID) error {
	tp, err := s.thirdParties.GetByID(ctx, thirdPartyID)
	if err != nil {
		return err
	}
	docs, err := s.docs.ListByThirdParty(ctx, tp.ID, nil)
	if err != nil {
		return err
	}
	if tp.RefreshCompliance(docs) {
		return s.thirdParties.Save(ctx, tp)
	}
	return nil
}

func (s *ExpirationService) notifyExpired(ctx context.Context, doc *models.VigilanceDocument) {
	tp, err := s.thirdParties.GetByID(ctx, doc.ThirdPartyID)
	if err != nil {
		logrus.WithError(err).WithField("document_id", doc.ID).Warn("Sweep could not load third party for expiry notice")
		return
	}
	if err := s.email.SendDocumentExpired(tp, doc); err != nil {
		logrus.WithError(err).WithField("document_id", doc.ID).Warn("Failed to send expiry notification")
	}
}

func (s *ExpirationService) notifyExpiring(ctx context.Context, doc *models.VigilanceDocument) {
	tp, err := s.thirdParties.GetByID(ctx, doc.ThirdPartyID)
	if err != nil {
		logrus.WithError(err).WithField("document_id", doc.ID).Warn("Sweep could not load third party for expiring notice")
		return
	}
	daysRemaining := 0
	if doc.ExpiresAt != nil {
		daysRemaining = int(time.Until(*doc.ExpiresAt).Hours() / 24)
	}
	if err := s.email.SendDocumentExpiring(tp, doc, daysRemaining); err != nil {
		logrus.WithError(err).WithField("document_id", doc.ID).Warn("Failed to send expiring notification")
	}
}
