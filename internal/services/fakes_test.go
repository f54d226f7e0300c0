// internal/services/fakes_test.go
//
// Test doubles for the external ports plus a wired-up service fixture backed
// by the in-memory repositories.
package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/talentflow/tf-backend/internal/models"
	"github.com/talentflow/tf-backend/internal/ports"
	"github.com/talentflow/tf-backend/internal/repository"
)

type fakeEmail struct {
	mu sync.Mutex

	collectionURLs   []string
	rejectedDocs     []uuid.UUID
	expiringDays     []int
	expiredDocs      []uuid.UUID
	reviewURLs       []string
	changeComments   []string
	signedRecipients []string

	failAll bool
}

func (f *fakeEmail) fail() error {
	if f.failAll {
		return errors.New("smtp unavailable")
	}
	return nil
}

func (f *fakeEmail) SendDocumentCollectionRequest(tp *models.ThirdParty, portalURL string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.collectionURLs = append(f.collectionURLs, portalURL)
	return f.fail()
}

func (f *fakeEmail) SendDocumentRejected(tp *models.ThirdParty, doc *models.VigilanceDocument, portalURL string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rejectedDocs = append(f.rejectedDocs, doc.ID)
	return f.fail()
}

func (f *fakeEmail) SendDocumentExpiring(tp *models.ThirdParty, doc *models.VigilanceDocument, daysRemaining int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.expiringDays = append(f.expiringDays, daysRemaining)
	return f.fail()
}

func (f *fakeEmail) SendDocumentExpired(tp *models.ThirdParty, doc *models.VigilanceDocument) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.expiredDocs = append(f.expiredDocs, doc.ID)
	return f.fail()
}

func (f *fakeEmail) SendContractReviewRequest(tp *models.ThirdParty, contract *models.Contract, reviewURL string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reviewURLs = append(f.reviewURLs, reviewURL)
	return f.fail()
}

func (f *fakeEmail) SendContractChangesRequested(commercialEmail string, contract *models.Contract, comments string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.changeComments = append(f.changeComments, comments)
	return f.fail()
}

func (f *fakeEmail) SendContractSigned(commercialEmail string, contract *models.Contract) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.signedRecipients = append(f.signedRecipients, commercialEmail)
	return f.fail()
}

type fakeCrm struct {
	providerCalls int
	orderCalls    int

	failCreateOrder bool
}

func (f *fakeCrm) CreateProvider(ctx context.Context, tp *models.ThirdParty) (string, error) {
	f.providerCalls++
	return fmt.Sprintf("boond-provider-%d", f.providerCalls), nil
}

func (f *fakeCrm) CreatePurchaseOrder(ctx context.Context, positioningID, providerID string, dailyRate float64, startDate, endDate *time.Time) (string, error) {
	f.orderCalls++
	if f.failCreateOrder {
		return "", errors.New("boond unavailable")
	}
	return fmt.Sprintf("boond-order-%d", f.orderCalls), nil
}

func (f *fakeCrm) GetPositioning(ctx context.Context, positioningID string) (map[string]interface{}, error) {
	return map[string]interface{}{"id": positioningID}, nil
}

type fakeSignature struct {
	createCalls  int
	lastDraftURL string
}

func (f *fakeSignature) CreateProcedure(ctx context.Context, contract *models.Contract, draftURL, signerEmail, signerName string) (string, error) {
	f.createCalls++
	f.lastDraftURL = draftURL
	return fmt.Sprintf("proc-%d", f.createCalls), nil
}

func (f *fakeSignature) GetProcedureStatus(ctx context.Context, procedureID string) (models.SignatureStatus, error) {
	return models.SignatureStatusOngoing, nil
}

func (f *fakeSignature) GetSignedDocument(ctx context.Context, procedureID string) ([]byte, error) {
	return []byte("signed " + procedureID), nil
}

type fakeStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: make(map[string][]byte)}
}

func (f *fakeStorage) Upload(ctx context.Context, key string, content []byte, contentType string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[key] = content
	return nil
}

func (f *fakeStorage) GetPresignedURL(ctx context.Context, key string, expiry time.Duration) (string, error) {
	return "https://storage.local/" + key, nil
}

func (f *fakeStorage) Delete(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, key)
	return nil
}

type fakeGenerator struct {
	lastCtx map[string]interface{}
}

func (f *fakeGenerator) GenerateDraft(ctx context.Context, templateCtx map[string]interface{}) ([]byte, error) {
	f.lastCtx = templateCtx
	return []byte(fmt.Sprintf("draft %v v%v", templateCtx["reference"], templateCtx["version"])), nil
}

// flakyDocumentRepository fails persistence for one document id so sweep
// isolation can be exercised.
type flakyDocumentRepository struct {
	ports.DocumentRepository
	failID uuid.UUID
}

func (r *flakyDocumentRepository) Save(ctx context.Context, doc *models.VigilanceDocument) error {
	if doc.ID == r.failID {
		return errors.New("storage hiccup")
	}
	return r.DocumentRepository.Save(ctx, doc)
}

// testEnv wires the use-case services against in-memory repositories and the
// fakes above.
type testEnv struct {
	docs         *repository.MemoryDocumentRepository
	thirdParties *repository.MemoryThirdPartyRepository
	requests     *repository.MemoryContractRequestRepository
	contractRepo *repository.MemoryContractRepository
	links        *repository.MemoryMagicLinkRepository

	email     *fakeEmail
	crm       *fakeCrm
	signature *fakeSignature
	storage   *fakeStorage
	generator *fakeGenerator

	magicLinks *MagicLinkService
	documents  *DocumentService
	expiration *ExpirationService
	contracts  *ContractService
}

func newTestEnv() *testEnv {
	env := &testEnv{
		docs:         repository.NewMemoryDocumentRepository(),
		thirdParties: repository.NewMemoryThirdPartyRepository(),
		requests:     repository.NewMemoryContractRequestRepository(),
		contractRepo: repository.NewMemoryContractRepository(),
		links:        repository.NewMemoryMagicLinkRepository(),
		email:        &fakeEmail{},
		crm:          &fakeCrm{},
		signature:    &fakeSignature{},
		storage:      newFakeStorage(),
		generator:    &fakeGenerator{},
	}

	env.magicLinks = NewMagicLinkService(env.links, env.thirdParties, env.contractRepo, env.email, "https://portal.talentflow.fr", DefaultMagicLinkTTL)
	env.documents = NewDocumentService(env.docs, env.thirdParties, env.storage, env.email, env.magicLinks)
	env.expiration = NewExpirationService(env.docs, env.thirdParties, env.links, env.email)
	env.contracts = NewContractService(
		env.requests, env.contractRepo, env.thirdParties,
		env.storage, env.email, env.crm, env.signature, env.generator,
		env.documents, env.magicLinks,
	)

	return env
}

func (env *testEnv) createThirdParty(t *testing.T, typ models.ThirdPartyType) *models.ThirdParty {
	t.Helper()
	tp := &models.ThirdParty{
		CompanyName:      "Acme Conseil",
		Siren:            "732829320",
		ContactEmail:     "contact@acme.fr",
		Representative:   "Jeanne Martin",
		Type:             typ,
		ComplianceStatus: models.ComplianceStatusNonCompliant,
	}
	require.NoError(t, env.thirdParties.Save(context.Background(), tp))
	return tp
}

// validateAllDocuments walks every requested document through upload and
// staff validation.
func (env *testEnv) validateAllDocuments(t *testing.T, thirdPartyID uuid.UUID) {
	t.Helper()
	ctx := context.Background()
	staff := uuid.New()

	docs, err := env.docs.ListByThirdParty(ctx, thirdPartyID, nil)
	require.NoError(t, err)
	for _, doc := range docs {
		if doc.Status != models.DocumentStatusRequested {
			continue
		}
		_, err := env.documents.UploadDocument(ctx, doc.ID, "scan.pdf", []byte("pdf"), "application/pdf")
		require.NoError(t, err)
		_, err = env.documents.ValidateDocument(ctx, doc.ID, staff)
		require.NoError(t, err)
	}
}
