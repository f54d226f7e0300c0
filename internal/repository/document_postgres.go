// internal/repository/document_postgres.go
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/talentflow/tf-backend/internal/models"
	"github.com/talentflow/tf-backend/internal/ports"
)

type DocumentRepository struct {
	db *gorm.DB
}

func NewDocumentRepository(db *gorm.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

func (r *DocumentRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.VigilanceDocument, error) {
	var doc models.VigilanceDocument
	if err := r.db.WithContext(ctx).First(&doc, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &doc, nil
}

func (r *DocumentRepository) Save(ctx context.Context, doc *models.VigilanceDocument) error {
	if err := r.db.WithContext(ctx).Save(doc).Error; err != nil {
		return fmt.Errorf("failed to save document: %w", err)
	}
	return nil
}

func (r *DocumentRepository) ListByThirdParty(ctx context.Context, thirdPartyID uuid.UUID, status *models.DocumentStatus) ([]models.VigilanceDocument, error) {
	query := r.db.WithContext(ctx).Where("third_party_id = ?", thirdPartyID)
	if status != nil {
		query = query.Where("status = ?", *status)
	}

	var docs []models.VigilanceDocument
	if err := query.Order("created_at ASC").Find(&docs).Error; err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	return docs, nil
}

func (r *DocumentRepository) ListExpiring(ctx context.Context, horizon time.Duration) ([]models.VigilanceDocument, error) {
	now := time.Now()
	var docs []models.VigilanceDocument
	err := r.db.WithContext(ctx).
		Where("status = ? AND expires_at IS NOT NULL AND expires_at > ? AND expires_at <= ?",
			models.DocumentStatusValidated, now, now.Add(horizon)).
		Find(&docs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list expiring documents: %w", err)
	}
	return docs, nil
}

func (r *DocumentRepository) ListExpired(ctx context.Context) ([]models.VigilanceDocument, error) {
	var docs []models.VigilanceDocument
	err := r.db.WithContext(ctx).
		Where("status = ? AND expires_at IS NOT NULL AND expires_at <= ?",
			models.DocumentStatusValidated, time.Now()).
		Find(&docs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list expired documents: %w", err)
	}
	return docs, nil
}

func (r *DocumentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.db.WithContext(ctx).Delete(&models.VigilanceDocument{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	return nil
}
