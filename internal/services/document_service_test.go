// internal/services/document_service_test.go
package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talentflow/tf-backend/internal/models"
)

func TestRequestDocumentsCreatesFullCatalogue(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	tp := env.createThirdParty(t, models.ThirdPartyTypeFreelance)

	requested, err := env.documents.RequestDocuments(ctx, tp.ID)
	require.NoError(t, err)
	assert.Len(t, requested, 7)

	types := make(map[models.DocumentType]bool)
	for _, doc := range requested {
		assert.Equal(t, models.DocumentStatusRequested, doc.Status)
		assert.Equal(t, tp.ID, doc.ThirdPartyID)
		types[doc.DocumentType] = true
	}
	assert.Len(t, types, 7, "one document per catalogue entry")

	// Second call is a no-op: everything is already requested.
	again, err := env.documents.RequestDocuments(ctx, tp.ID)
	require.NoError(t, err)
	assert.Empty(t, again)

	all, err := env.docs.ListByThirdParty(ctx, tp.ID, nil)
	require.NoError(t, err)
	assert.Len(t, all, 7)
}

func TestRequestDocumentsSubcontractorExtraEntry(t *testing.T) {
	env := newTestEnv()
	tp := env.createThirdParty(t, models.ThirdPartyTypeSubcontractor)

	requested, err := env.documents.RequestDocuments(context.Background(), tp.ID)
	require.NoError(t, err)
	assert.Len(t, requested, 8)

	var hasForeignWorkers bool
	for _, doc := range requested {
		if doc.DocumentType == models.DocumentTypeForeignWorkers {
			hasForeignWorkers = true
		}
	}
	assert.True(t, hasForeignWorkers)
}

func TestRequestDocumentsEmployeeOutOfScope(t *testing.T) {
	env := newTestEnv()
	tp := env.createThirdParty(t, models.ThirdPartyTypeEmployee)

	requested, err := env.documents.RequestDocuments(context.Background(), tp.ID)
	require.NoError(t, err)
	assert.Empty(t, requested)
}

func TestRequestDocumentsUnknownThirdParty(t *testing.T) {
	env := newTestEnv()

	_, err := env.documents.RequestDocuments(context.Background(), uuid.New())
	var notFound *ThirdPartyNotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestUploadAndValidateFlow(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	tp := env.createThirdParty(t, models.ThirdPartyTypeFreelance)

	requested, err := env.documents.RequestDocuments(ctx, tp.ID)
	require.NoError(t, err)

	var kbis, rib models.VigilanceDocument
	for _, doc := range requested {
		switch doc.DocumentType {
		case models.DocumentTypeKbis:
			kbis = doc
		case models.DocumentTypeRIB:
			rib = doc
		}
	}

	uploaded, err := env.documents.UploadDocument(ctx, kbis.ID, "kbis.pdf", []byte("pdf-bytes"), "application/pdf")
	require.NoError(t, err)
	assert.Equal(t, models.DocumentStatusReceived, uploaded.Status)
	assert.Equal(t, "kbis.pdf", uploaded.FileName)
	assert.Equal(t, int64(9), uploaded.FileSize)
	assert.Contains(t, env.storage.objects, uploaded.S3Key)

	staff := uuid.New()
	validated, err := env.documents.ValidateDocument(ctx, kbis.ID, staff)
	require.NoError(t, err)
	assert.Equal(t, models.DocumentStatusValidated, validated.Status)
	assert.Equal(t, &staff, validated.ValidatedBy)
	// Kbis carries a 3-month validity.
	require.NotNil(t, validated.ExpiresAt)

	// RIB never expires.
	_, err = env.documents.UploadDocument(ctx, rib.ID, "rib.pdf", []byte("pdf"), "application/pdf")
	require.NoError(t, err)
	validated, err = env.documents.ValidateDocument(ctx, rib.ID, staff)
	require.NoError(t, err)
	assert.Nil(t, validated.ExpiresAt)

	// Validating twice is an illegal transition.
	_, err = env.documents.ValidateDocument(ctx, kbis.ID, staff)
	var transitionErr *models.InvalidDocumentTransitionError
	assert.ErrorAs(t, err, &transitionErr)
}

func TestComplianceRefreshAfterFullValidation(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	tp := env.createThirdParty(t, models.ThirdPartyTypeFreelance)

	_, err := env.documents.RequestDocuments(ctx, tp.ID)
	require.NoError(t, err)

	status, err := env.documents.CheckCompliance(ctx, tp.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ComplianceStatusNonCompliant, status)

	env.validateAllDocuments(t, tp.ID)

	stored, err := env.thirdParties.GetByID(ctx, tp.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ComplianceStatusCompliant, stored.ComplianceStatus)
}

func TestRejectDocumentNotifiesAndRerequests(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	tp := env.createThirdParty(t, models.ThirdPartyTypeFreelance)

	requested, err := env.documents.RequestDocuments(ctx, tp.ID)
	require.NoError(t, err)
	doc := requested[0]

	_, err = env.documents.UploadDocument(ctx, doc.ID, "scan.pdf", []byte("pdf"), "application/pdf")
	require.NoError(t, err)

	rejected, err := env.documents.RejectDocument(ctx, doc.ID, "document illisible")
	require.NoError(t, err)
	assert.Equal(t, models.DocumentStatusRejected, rejected.Status)
	assert.Equal(t, "document illisible", rejected.RejectionReason)

	// The partner is told, with a fresh upload link.
	assert.Equal(t, []uuid.UUID{doc.ID}, env.email.rejectedDocs)
	active, err := env.links.GetActive(ctx, tp.ID, models.MagicLinkPurposeDocumentUpload)
	require.NoError(t, err)
	assert.Len(t, active, 1)

	// Re-requesting reuses the rejected row instead of creating a sibling.
	again, err := env.documents.RequestDocuments(ctx, tp.ID)
	require.NoError(t, err)
	require.Len(t, again, 1)
	assert.Equal(t, doc.ID, again[0].ID)
	assert.Equal(t, models.DocumentStatusRequested, again[0].Status)

	all, err := env.docs.ListByThirdParty(ctx, tp.ID, nil)
	require.NoError(t, err)
	assert.Len(t, all, 7)
}

func TestRejectionEmailFailureDoesNotFailRejection(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	tp := env.createThirdParty(t, models.ThirdPartyTypeFreelance)
	env.email.failAll = true

	requested, err := env.documents.RequestDocuments(ctx, tp.ID)
	require.NoError(t, err)
	doc := requested[0]

	_, err = env.documents.UploadDocument(ctx, doc.ID, "scan.pdf", []byte("pdf"), "application/pdf")
	require.NoError(t, err)

	rejected, err := env.documents.RejectDocument(ctx, doc.ID, "mauvais exercice")
	require.NoError(t, err)
	assert.Equal(t, models.DocumentStatusRejected, rejected.Status)
}
