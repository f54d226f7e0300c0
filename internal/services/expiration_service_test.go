// internal/services/expiration_service_test.go
package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talentflow/tf-backend/internal/models"
)

// setupValidatedThirdParty creates a fully validated freelance and returns its
// documents keyed by type.
func setupValidatedThirdParty(t *testing.T, env *testEnv) (*models.ThirdParty, map[models.DocumentType]*models.VigilanceDocument) {
	t.Helper()
	ctx := context.Background()
	tp := env.createThirdParty(t, models.ThirdPartyTypeFreelance)

	_, err := env.documents.RequestDocuments(ctx, tp.ID)
	require.NoError(t, err)
	env.validateAllDocuments(t, tp.ID)

	docs, err := env.docs.ListByThirdParty(ctx, tp.ID, nil)
	require.NoError(t, err)
	byType := make(map[models.DocumentType]*models.VigilanceDocument, len(docs))
	for i := range docs {
		byType[docs[i].DocumentType] = &docs[i]
	}
	return tp, byType
}

func setExpiry(t *testing.T, env *testEnv, doc *models.VigilanceDocument, at time.Time) {
	t.Helper()
	doc.ExpiresAt = &at
	require.NoError(t, env.docs.Save(context.Background(), doc))
}

func TestSweepExpiresAndWarns(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	tp, byType := setupValidatedThirdParty(t, env)

	// One overdue, one inside the warning horizon, the rest far out.
	setExpiry(t, env, byType[models.DocumentTypeKbis], time.Now().Add(-24*time.Hour))
	setExpiry(t, env, byType[models.DocumentTypeUrssaf], time.Now().Add(10*24*time.Hour))

	result, err := env.expiration.ProcessExpirations(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Expired)
	assert.Equal(t, 1, result.ExpiringSoon)
	assert.Equal(t, 1, result.AffectedThirdParties)

	kbis, err := env.docs.GetByID(ctx, byType[models.DocumentTypeKbis].ID)
	require.NoError(t, err)
	assert.Equal(t, models.DocumentStatusExpired, kbis.Status)

	urssaf, err := env.docs.GetByID(ctx, byType[models.DocumentTypeUrssaf].ID)
	require.NoError(t, err)
	assert.Equal(t, models.DocumentStatusExpiringSoon, urssaf.Status)

	// An expired document outweighs an expiring one.
	stored, err := env.thirdParties.GetByID(ctx, tp.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ComplianceStatusNonCompliant, stored.ComplianceStatus)

	// Both notifications went out.
	assert.Len(t, env.email.expiredDocs, 1)
	require.Len(t, env.email.expiringDays, 1)
	assert.InDelta(t, 9, env.email.expiringDays[0], 1)
}

func TestSweepIsIdempotent(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	_, byType := setupValidatedThirdParty(t, env)

	setExpiry(t, env, byType[models.DocumentTypeKbis], time.Now().Add(-time.Hour))
	setExpiry(t, env, byType[models.DocumentTypeFiscal], time.Now().Add(5*24*time.Hour))

	first, err := env.expiration.ProcessExpirations(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Expired)
	assert.Equal(t, 1, first.ExpiringSoon)

	// Both fetches filter on VALIDATED, so a rerun finds nothing to do.
	second, err := env.expiration.ProcessExpirations(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, second.Expired)
	assert.Equal(t, 0, second.ExpiringSoon)
	assert.Equal(t, 0, second.AffectedThirdParties)
	assert.Len(t, env.email.expiredDocs, 1, "no duplicate notifications")
}

func TestSweepExpiringOnlyDegradesCompliance(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	tp, byType := setupValidatedThirdParty(t, env)

	setExpiry(t, env, byType[models.DocumentTypeRCPro], time.Now().Add(10*24*time.Hour))

	result, err := env.expiration.ProcessExpirations(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Expired)
	assert.Equal(t, 1, result.ExpiringSoon)

	stored, err := env.thirdParties.GetByID(ctx, tp.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ComplianceStatusExpiringSoon, stored.ComplianceStatus)
}

func TestSweepRevokesExpiredLinks(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	tp := env.createThirdParty(t, models.ThirdPartyTypeFreelance)

	link, err := env.magicLinks.IssueLink(ctx, tp, models.MagicLinkPurposeDocumentUpload, tp.ContactEmail, nil)
	require.NoError(t, err)
	link.ExpiresAt = time.Now().Add(-time.Hour)
	require.NoError(t, env.links.Save(ctx, link))

	_, err = env.expiration.ProcessExpirations(ctx)
	require.NoError(t, err)

	stored, err := env.links.GetByID(ctx, link.ID)
	require.NoError(t, err)
	assert.True(t, stored.Revoked)
}

func TestSweepIsolatesDocumentFailures(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	_, byType := setupValidatedThirdParty(t, env)

	setExpiry(t, env, byType[models.DocumentTypeKbis], time.Now().Add(-time.Hour))
	setExpiry(t, env, byType[models.DocumentTypeUrssaf], time.Now().Add(-time.Hour))

	// One document refuses to persist; the other must still expire.
	flaky := &flakyDocumentRepository{
		DocumentRepository: env.docs,
		failID:             byType[models.DocumentTypeKbis].ID,
	}
	expiration := NewExpirationService(flaky, env.thirdParties, env.links, env.email)

	result, err := expiration.ProcessExpirations(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Expired)

	urssaf, err := env.docs.GetByID(ctx, byType[models.DocumentTypeUrssaf].ID)
	require.NoError(t, err)
	assert.Equal(t, models.DocumentStatusExpired, urssaf.Status)

	kbis, err := env.docs.GetByID(ctx, byType[models.DocumentTypeKbis].ID)
	require.NoError(t, err)
	assert.Equal(t, models.DocumentStatusValidated, kbis.Status, "failed document left untouched for the next run")
}
