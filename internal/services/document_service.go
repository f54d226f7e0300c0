// internal/services/document_service.go
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

// DocumentService drives the vigilance document lifecycle: requirement-based
// requesting, portal uploads, staff validation and rejection, and the
// compliance projection refresh that follows every document mutation.
type DocumentService struct {
	docs         ports.DocumentRepository
	thirdParties ports.ThirdPartyRepository
	storage      ports.ObjectStorage
	email        ports.EmailService
	magicLinks   *MagicLinkService
}

func NewDocumentService(
	docs ports.DocumentRepository,
	thirdParties ports.ThirdPartyRepository,
	storage ports.ObjectStorage,
	email ports.EmailService,
	magicLinks *MagicLinkService,
) *DocumentService {
	return &DocumentService{
		docs:         docs,
		thirdParties: thirdParties,
		storage:      storage,
		email:        email,
		magicLinks:   magicLinks,
	}
}

// RequestDocuments creates a REQUESTED document for every catalogue entry of
// the third party's type that has no active document yet. Rejected and
// expired rows are re-requested in place rather than duplicated, so repeated
// calls are idempotent. Returns the documents that were (re)requested.
func (s *DocumentService) RequestDocuments(ctx context.Context, thirdPartyID uuid.UUID) ([]models.VigilanceDocument, error) {
	tp, err := s.getThirdParty(ctx, thirdPartyID)
	if err != nil {
		return nil, err
	}

	requirements := models.RequirementsForType(tp.Type)
	if len(requirements) == 0 {
		return nil, nil
	}

	existing, err := s.docs.ListByThirdParty(ctx, tp.ID, nil)
	if err != nil {
		return nil, err
	}

	latest := make(map[models.DocumentType]*models.VigilanceDocument, len(existing))
	for i := range existing {
		doc := &existing[i]
		current, ok := latest[doc.DocumentType]
		if !ok || !doc.CreatedAt.Before(current.CreatedAt) {
			latest[doc.DocumentType] = doc
		}
	}

	var requested []models.VigilanceDocument
	for _, req := range requirements {
		doc, ok := latest[req.DocumentType]
		if ok && models.IsActiveStatus(doc.Status) {
			continue
		}

		if ok {
			// Rejected or expired: reuse the row for the next cycle.
			if err := doc.Rerequest(); err != nil {
				return nil, err
			}
			if err := s.docs.Save(ctx, doc); err != nil {
				return nil, err
			}
			requested = append(requested, *doc)
			continue
		}

		newDoc := &models.VigilanceDocument{
			ThirdPartyID: tp.ID,
			DocumentType: req.DocumentType,
			Status:       models.DocumentStatusRequested,
		}
		if err := s.docs.Save(ctx, newDoc); err != nil {
			return nil, err
		}
		requested = append(requested, *newDoc)
	}

	if len(requested) > 0 {
		logrus.WithFields(logrus.Fields{
			"third_party_id": tp.ID,
			"requested":      len(requested),
		}).Info("Vigilance documents requested")
	}

	return requested, nil
}

// UploadDocument stores the uploaded file and moves the document to RECEIVED.
func (s *DocumentService) UploadDocument(ctx context.Context, documentID uuid.UUID, fileName string, content []byte, contentType string) (*models.VigilanceDocument, error) {
	doc, err := s.getDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("vigilance/%s/%s/%d_%s", doc.ThirdPartyID, doc.DocumentType, time.Now().Unix(), fileName)
	if err := s.storage.Upload(ctx, key, content, contentType); err != nil {
		return nil, fmt.Errorf("failed to store document: %w", err)
	}

	if err := doc.Receive(fileName, key, int64(len(content))); err != nil {
		return nil, err
	}
	if err := s.docs.Save(ctx, doc); err != nil {
		return nil, err
	}

	return doc, nil
}

// ValidateDocument accepts a received document, computes its expiry from the
// catalogue and refreshes the owner's compliance projection.
func (s *DocumentService) ValidateDocument(ctx context.Context, documentID, validatedBy uuid.UUID) (*models.VigilanceDocument, error) {
	doc, err := s.getDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}
	tp, err := s.getThirdParty(ctx, doc.ThirdPartyID)
	if err != nil {
		return nil, err
	}

	expiresAt := models.ExpiryFor(tp.Type, doc.DocumentType, time.Now())
	if err := doc.Validate(validatedBy, expiresAt); err != nil {
		return nil, err
	}
	if err := s.docs.Save(ctx, doc); err != nil {
		return nil, err
	}

	if _, err := s.refreshCompliance(ctx, tp); err != nil {
		return nil, err
	}

	return doc, nil
}

// RejectDocument refuses a received document, refreshes compliance and
// notifies the third party with the reason and a fresh upload link.
func (s *DocumentService) RejectDocument(ctx context.Context, documentID uuid.UUID, reason string) (*models.VigilanceDocument, error) {
	doc, err := s.getDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}
	tp, err := s.getThirdParty(ctx, doc.ThirdPartyID)
	if err != nil {
		return nil, err
	}

	if err := doc.Reject(reason); err != nil {
		return nil, err
	}
	if err := s.docs.Save(ctx, doc); err != nil {
		return nil, err
	}

	if _, err := s.refreshCompliance(ctx, tp); err != nil {
		return nil, err
	}

	// Best effort: a failed notification must not fail the rejection.
	link, err := s.magicLinks.IssueLink(ctx, tp, models.MagicLinkPurposeDocumentUpload, tp.ContactEmail, nil)
	if err != nil {
		logrus.WithError(err).WithField("third_party_id", tp.ID).Warn("Failed to issue upload link for rejection notice")
	} else if err := s.email.SendDocumentRejected(tp, doc, s.magicLinks.PortalURL(link)); err != nil {
		logrus.WithError(err).WithField("document_id", doc.ID).Warn("Failed to send rejection notification")
	}

	return doc, nil
}

// CheckCompliance recomputes the compliance projection from the current
// document set and persists it if it changed. Safe to call as a repair tool.
func (s *DocumentService) CheckCompliance(ctx context.Context, thirdPartyID uuid.UUID) (models.ComplianceStatus, error) {
	tp, err := s.getThirdParty(ctx, thirdPartyID)
	if err != nil {
		return "", err
	}
	return s.refreshCompliance(ctx, tp)
}

func (s *DocumentService) refreshCompliance(ctx context.Context, tp *models.ThirdParty) (models.ComplianceStatus, error) {
	docs, err := s.docs.ListByThirdParty(ctx, tp.ID, nil)
	if err != nil {
		return "", err
	}

	if tp.RefreshCompliance(docs) {
		if err := s.thirdParties.Save(ctx, tp); err != nil {
			return "", err
		}
		logrus.WithFields(logrus.Fields{
			"third_party_id":    tp.ID,
			"compliance_status": tp.ComplianceStatus,
		}).Info("Compliance status updated")
	}

	return tp.ComplianceStatus, nil
}

func (s *DocumentService) getDocument(ctx context.Context, id uuid.UUID) (*models.VigilanceDocument, error) {
	doc, err := s.docs.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return nil, &DocumentNotFoundError{ID: id}
		}
		return nil, err
	}
	return doc, nil
}

func (s *DocumentService) getThirdParty(ctx context.Context, id uuid.UUID) (*models.ThirdParty, error) {
	tp, err := s.thirdParties.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return nil, &ThirdPartyNotFoundError{ID: id}
		}
		return nil, err
	}
	return tp, nil
}
