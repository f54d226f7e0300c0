// internal/repository/magic_link_postgres.go
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

type MagicLinkRepository struct {
	db *gorm.DB
}

func NewMagicLinkRepository(db *gorm.DB) *MagicLinkRepository {
	return &MagicLinkRepository{db: db}
}

func (r *MagicLinkRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.MagicLink, error) {
	var link models.MagicLink
	if err := r.db.WithContext(ctx).First(&link, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &link, nil
}

func (r *MagicLinkRepository) GetByToken(ctx context.Context, token string) (*models.MagicLink, error) {
	var link models.MagicLink
	if err := r.db.WithContext(ctx).First(&link, "token = ?", token).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &link, nil
}

func (r *MagicLinkRepository) Save(ctx context.Context, link *models.MagicLink) error {
	if err := r.db.WithContext(ctx).Save(link).Error; err != nil {
		return fmt.Errorf("failed to save magic link: %w", err)
	}
	return nil
}

func (r *MagicLinkRepository) GetActive(ctx context.Context, thirdPartyID uuid.UUID, purpose models.MagicLinkPurpose) ([]models.MagicLink, error) {
	var links []models.MagicLink
	err := r.db.WithContext(ctx).
		Where("third_party_id = ? AND purpose = ? AND revoked = ? AND expires_at > ?",
			thirdPartyID, purpose, false, time.Now()).
		Find(&links).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list active magic links: %w", err)
	}
	return links, nil
}

func (r *MagicLinkRepository) RevokeAll(ctx context.Context, thirdPartyID uuid.UUID, purpose *models.MagicLinkPurpose) (int, error) {
	query := r.db.WithContext(ctx).Model(&models.MagicLink{}).
		Where("third_party_id = ? AND revoked = ?", thirdPartyID, false)
	if purpose != nil {
		query = query.Where("purpose = ?", *purpose)
	}

	result := query.Update("revoked", true)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to revoke magic links: %w", result.Error)
	}
	return int(result.RowsAffected), nil
}

func (r *MagicLinkRepository) RevokeExpired(ctx context.Context, now time.Time) (int, error) {
	result := r.db.WithContext(ctx).Model(&models.MagicLink{}).
		Where("revoked = ? AND expires_at <= ?", false, now).
		Update("revoked", true)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to revoke expired magic links: %w", result.Error)
	}
	return int(result.RowsAffected), nil
}
