// internal/repository/third_party_postgres.go
package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/talentflow/tf-backend/internal/models"
	"github.com/talentflow/tf-backend/internal/ports"
)

type ThirdPartyRepository struct {
	db *gorm.DB
}

func NewThirdPartyRepository(db *gorm.DB) *ThirdPartyRepository {
	return &ThirdPartyRepository{db: db}
}

func (r *ThirdPartyRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.ThirdParty, error) {
	var tp models.ThirdParty
	if err := r.db.WithContext(ctx).First(&tp, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &tp, nil
}

func (r *ThirdPartyRepository) GetBySiren(ctx context.Context, siren string) (*models.ThirdParty, error) {
	var tp models.ThirdParty
	if err := r.db.WithContext(ctx).First(&tp, "siren = ?", models.NormalizeSiren(siren)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &tp, nil
}

func (r *ThirdPartyRepository) Save(ctx context.Context, tp *models.ThirdParty) error {
	if err := r.db.WithContext(ctx).Save(tp).Error; err != nil {
		return fmt.Errorf("failed to save third party: %w", err)
	}
	return nil
}

func (r *ThirdPartyRepository) List(ctx context.Context, typ *models.ThirdPartyType, compliance *models.ComplianceStatus, offset, limit int) ([]models.ThirdParty, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.ThirdParty{})
	if typ != nil {
		query = query.Where("type = ?", *typ)
	}
	if compliance != nil {
		query = query.Where("compliance_status = ?", *compliance)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count third parties: %w", err)
	}

	var tps []models.ThirdParty
	if err := query.Order("created_at DESC").Offset(offset).Limit(limit).Find(&tps).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list third parties: %w", err)
	}
	return tps, total, nil
}

func (r *ThirdPartyRepository) CountByCompliance(ctx context.Context) (map[models.ComplianceStatus]int64, error) {
	type row struct {
		ComplianceStatus models.ComplianceStatus
		Count            int64
	}
	var rows []row
	err := r.db.WithContext(ctx).Model(&models.ThirdParty{}).
		Select("compliance_status, COUNT(*) as count").
		Group("compliance_status").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count by compliance: %w", err)
	}

	counts := make(map[models.ComplianceStatus]int64, len(rows))
	for _, r := range rows {
		counts[r.ComplianceStatus] = r.Count
	}
	return counts, nil
}
