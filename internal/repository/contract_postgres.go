// internal/repository/contract_postgres.go
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/talentflow/tf-backend/internal/models"
	"github.com/talentflow/tf-backend/internal/ports"
)

const pqUniqueViolation = "23505"

type ContractRequestRepository struct {
	db *gorm.DB
}

func NewContractRequestRepository(db *gorm.DB) *ContractRequestRepository {
	return &ContractRequestRepository{db: db}
}

func (r *ContractRequestRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.ContractRequest, error) {
	var req models.ContractRequest
	if err := r.db.WithContext(ctx).First(&req, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &req, nil
}

func (r *ContractRequestRepository) GetByPositioning(ctx context.Context, positioningID string) (*models.ContractRequest, error) {
	var req models.ContractRequest
	err := r.db.WithContext(ctx).
		Where("positioning_id = ? AND status <> ?", positioningID, models.ContractStatusCancelled).
		First(&req).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &req, nil
}

func (r *ContractRequestRepository) Save(ctx context.Context, req *models.ContractRequest) error {
	if err := r.db.WithContext(ctx).Save(req).Error; err != nil {
		// The partial unique index on (positioning_id) WHERE status <>
		// 'cancelled' enforces the one-active-request-per-positioning rule.
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == pqUniqueViolation {
			return ports.ErrPositioningConflict
		}
		return fmt.Errorf("failed to save contract request: %w", err)
	}
	return nil
}

func (r *ContractRequestRepository) List(ctx context.Context, status *models.ContractRequestStatus, offset, limit int) ([]models.ContractRequest, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.ContractRequest{})
	if status != nil {
		query = query.Where("status = ?", *status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count contract requests: %w", err)
	}

	var reqs []models.ContractRequest
	if err := query.Order("created_at DESC").Offset(offset).Limit(limit).Find(&reqs).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list contract requests: %w", err)
	}
	return reqs, total, nil
}

func (r *ContractRequestRepository) NextReference(ctx context.Context) (string, error) {
	year := time.Now().Year()
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Contract{}).
		Where("reference LIKE ?", fmt.Sprintf("CR-%d-%%", year)).
		Count(&count).Error
	if err != nil {
		return "", fmt.Errorf("failed to allocate contract reference: %w", err)
	}
	return fmt.Sprintf("CR-%d-%04d", year, count+1), nil
}

type ContractRepository struct {
	db *gorm.DB
}

func NewContractRepository(db *gorm.DB) *ContractRepository {
	return &ContractRepository{db: db}
}

func (r *ContractRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Contract, error) {
	var contract models.Contract
	if err := r.db.WithContext(ctx).First(&contract, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &contract, nil
}

func (r *ContractRepository) GetLatestByRequest(ctx context.Context, requestID uuid.UUID) (*models.Contract, error) {
	var contract models.Contract
	err := r.db.WithContext(ctx).
		Where("contract_request_id = ?", requestID).
		Order("version DESC").
		First(&contract).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &contract, nil
}

func (r *ContractRepository) Save(ctx context.Context, contract *models.Contract) error {
	if err := r.db.WithContext(ctx).Save(contract).Error; err != nil {
		return fmt.Errorf("failed to save contract: %w", err)
	}
	return nil
}
