// internal/repository/memory.go
//
// In-memory repository implementations backing unit tests and local
// development without Postgres. They mirror the semantics of the GORM
// implementations, including the partial-uniqueness rule on positionings.
package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/talentflow/tf-backend/internal/models"
	"github.com/talentflow/tf-backend/internal/ports"
)

type MemoryDocumentRepository struct {
	mu   sync.RWMutex
	docs map[uuid.UUID]models.VigilanceDocument
}

func NewMemoryDocumentRepository() *MemoryDocumentRepository {
	return &MemoryDocumentRepository{docs: make(map[uuid.UUID]models.VigilanceDocument)}
}

func (r *MemoryDocumentRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.VigilanceDocument, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	doc, ok := r.docs[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return &doc, nil
}

func (r *MemoryDocumentRepository) Save(ctx context.Context, doc *models.VigilanceDocument) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stampBase(&doc.BaseModel)
	r.docs[doc.ID] = *doc
	return nil
}

func (r *MemoryDocumentRepository) ListByThirdParty(ctx context.Context, thirdPartyID uuid.UUID, status *models.DocumentStatus) ([]models.VigilanceDocument, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var docs []models.VigilanceDocument
	for _, doc := range r.docs {
		if doc.ThirdPartyID != thirdPartyID {
			continue
		}
		if status != nil && doc.Status != *status {
			continue
		}
		docs = append(docs, doc)
	}
	sortByCreatedAt(docs)
	return docs, nil
}

func (r *MemoryDocumentRepository) ListExpiring(ctx context.Context, horizon time.Duration) ([]models.VigilanceDocument, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	now := time.Now()
	var docs []models.VigilanceDocument
	for _, doc := range r.docs {
		if doc.Status != models.DocumentStatusValidated || doc.ExpiresAt == nil {
			continue
		}
		if doc.ExpiresAt.After(now) && !doc.ExpiresAt.After(now.Add(horizon)) {
			docs = append(docs, doc)
		}
	}
	sortByCreatedAt(docs)
	return docs, nil
}

func (r *MemoryDocumentRepository) ListExpired(ctx context.Context) ([]models.VigilanceDocument, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	now := time.Now()
	var docs []models.VigilanceDocument
	for _, doc := range r.docs {
		if doc.Status != models.DocumentStatusValidated || doc.ExpiresAt == nil {
			continue
		}
		if !doc.ExpiresAt.After(now) {
			docs = append(docs, doc)
		}
	}
	sortByCreatedAt(docs)
	return docs, nil
}

func (r *MemoryDocumentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.docs, id)
	return nil
}

type MemoryThirdPartyRepository struct {
	mu  sync.RWMutex
	tps map[uuid.UUID]models.ThirdParty
}

func NewMemoryThirdPartyRepository() *MemoryThirdPartyRepository {
	return &MemoryThirdPartyRepository{tps: make(map[uuid.UUID]models.ThirdParty)}
}

func (r *MemoryThirdPartyRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.ThirdParty, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tp, ok := r.tps[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return &tp, nil
}

func (r *MemoryThirdPartyRepository) GetBySiren(ctx context.Context, siren string) (*models.ThirdParty, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	siren = models.NormalizeSiren(siren)
	for _, tp := range r.tps {
		if tp.Siren == siren {
			return &tp, nil
		}
	}
	return nil, ports.ErrNotFound
}

func (r *MemoryThirdPartyRepository) Save(ctx context.Context, tp *models.ThirdParty) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stampBase(&tp.BaseModel)
	r.tps[tp.ID] = *tp
	return nil
}

func (r *MemoryThirdPartyRepository) List(ctx context.Context, typ *models.ThirdPartyType, compliance *models.ComplianceStatus, offset, limit int) ([]models.ThirdParty, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var tps []models.ThirdParty
	for _, tp := range r.tps {
		if typ != nil && tp.Type != *typ {
			continue
		}
		if compliance != nil && tp.ComplianceStatus != *compliance {
			continue
		}
		tps = append(tps, tp)
	}
	sort.Slice(tps, func(i, j int) bool { return tps[i].CreatedAt.After(tps[j].CreatedAt) })

	total := int64(len(tps))
	if offset >= len(tps) {
		return nil, total, nil
	}
	end := offset + limit
	if limit <= 0 || end > len(tps) {
		end = len(tps)
	}
	return tps[offset:end], total, nil
}

func (r *MemoryThirdPartyRepository) CountByCompliance(ctx context.Context) (map[models.ComplianceStatus]int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	counts := make(map[models.ComplianceStatus]int64)
	for _, tp := range r.tps {
		counts[tp.ComplianceStatus]++
	}
	return counts, nil
}

type MemoryContractRequestRepository struct {
	mu     sync.RWMutex
	reqs   map[uuid.UUID]models.ContractRequest
	refSeq int
}

func NewMemoryContractRequestRepository() *MemoryContractRequestRepository {
	return &MemoryContractRequestRepository{reqs: make(map[uuid.UUID]models.ContractRequest)}
}

func (r *MemoryContractRequestRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.ContractRequest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	req, ok := r.reqs[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return &req, nil
}

func (r *MemoryContractRequestRepository) GetByPositioning(ctx context.Context, positioningID string) (*models.ContractRequest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, req := range r.reqs {
		if req.PositioningID == positioningID && req.Status != models.ContractStatusCancelled {
			return &req, nil
		}
	}
	return nil, ports.ErrNotFound
}

func (r *MemoryContractRequestRepository) Save(ctx context.Context, req *models.ContractRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if req.Status != models.ContractStatusCancelled {
		for _, existing := range r.reqs {
			if existing.ID != req.ID && existing.PositioningID == req.PositioningID &&
				existing.Status != models.ContractStatusCancelled {
				return ports.ErrPositioningConflict
			}
		}
	}
	stampBase(&req.BaseModel)
	r.reqs[req.ID] = *req
	return nil
}

func (r *MemoryContractRequestRepository) List(ctx context.Context, status *models.ContractRequestStatus, offset, limit int) ([]models.ContractRequest, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var reqs []models.ContractRequest
	for _, req := range r.reqs {
		if status != nil && req.Status != *status {
			continue
		}
		reqs = append(reqs, req)
	}
	sort.Slice(reqs, func(i, j int) bool { return reqs[i].CreatedAt.After(reqs[j].CreatedAt) })

	total := int64(len(reqs))
	if offset >= len(reqs) {
		return nil, total, nil
	}
	end := offset + limit
	if limit <= 0 || end > len(reqs) {
		end = len(reqs)
	}
	return reqs[offset:end], total, nil
}

func (r *MemoryContractRequestRepository) NextReference(ctx context.Context) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.refSeq++
	return fmt.Sprintf("CR-%d-%04d", time.Now().Year(), r.refSeq), nil
}

type MemoryContractRepository struct {
	mu        sync.RWMutex
	contracts map[uuid.UUID]models.Contract
}

func NewMemoryContractRepository() *MemoryContractRepository {
	return &MemoryContractRepository{contracts: make(map[uuid.UUID]models.Contract)}
}

func (r *MemoryContractRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Contract, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	contract, ok := r.contracts[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return &contract, nil
}

func (r *MemoryContractRepository) GetLatestByRequest(ctx context.Context, requestID uuid.UUID) (*models.Contract, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var latest *models.Contract
	for _, contract := range r.contracts {
		if contract.ContractRequestID != requestID {
			continue
		}
		if latest == nil || contract.Version > latest.Version {
			c := contract
			latest = &c
		}
	}
	if latest == nil {
		return nil, ports.ErrNotFound
	}
	return latest, nil
}

func (r *MemoryContractRepository) Save(ctx context.Context, contract *models.Contract) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stampBase(&contract.BaseModel)
	r.contracts[contract.ID] = *contract
	return nil
}

type MemoryMagicLinkRepository struct {
	mu    sync.RWMutex
	links map[uuid.UUID]models.MagicLink
}

func NewMemoryMagicLinkRepository() *MemoryMagicLinkRepository {
	return &MemoryMagicLinkRepository{links: make(map[uuid.UUID]models.MagicLink)}
}

func (r *MemoryMagicLinkRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.MagicLink, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	link, ok := r.links[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return &link, nil
}

func (r *MemoryMagicLinkRepository) GetByToken(ctx context.Context, token string) (*models.MagicLink, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, link := range r.links {
		if link.Token == token {
			return &link, nil
		}
	}
	return nil, ports.ErrNotFound
}

func (r *MemoryMagicLinkRepository) Save(ctx context.Context, link *models.MagicLink) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stampBase(&link.BaseModel)
	r.links[link.ID] = *link
	return nil
}

func (r *MemoryMagicLinkRepository) GetActive(ctx context.Context, thirdPartyID uuid.UUID, purpose models.MagicLinkPurpose) ([]models.MagicLink, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	now := time.Now()
	var links []models.MagicLink
	for _, link := range r.links {
		if link.ThirdPartyID == thirdPartyID && link.Purpose == purpose && link.IsValid(now) {
			links = append(links, link)
		}
	}
	return links, nil
}

func (r *MemoryMagicLinkRepository) RevokeAll(ctx context.Context, thirdPartyID uuid.UUID, purpose *models.MagicLinkPurpose) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	revoked := 0
	for id, link := range r.links {
		if link.ThirdPartyID != thirdPartyID || link.Revoked {
			continue
		}
		if purpose != nil && link.Purpose != *purpose {
			continue
		}
		link.Revoked = true
		r.links[id] = link
		revoked++
	}
	return revoked, nil
}

func (r *MemoryMagicLinkRepository) RevokeExpired(ctx context.Context, now time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	revoked := 0
	for id, link := range r.links {
		if link.Revoked || link.ExpiresAt.After(now) {
			continue
		}
		link.Revoked = true
		r.links[id] = link
		revoked++
	}
	return revoked, nil
}

func stampBase(base *models.BaseModel) {
	now := time.Now()
	if base.ID == uuid.Nil {
		base.ID = uuid.New()
	}
	if base.CreatedAt.IsZero() {
		base.CreatedAt = now
	}
	base.UpdatedAt = now
}

func sortByCreatedAt(docs []models.VigilanceDocument) {
	sort.Slice(docs, func(i, j int) bool { return docs[i].CreatedAt.Before(docs[j].CreatedAt) })
}
