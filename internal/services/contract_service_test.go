// internal/services/contract_service_test.go
package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talentflow/tf-backend/internal/models"
	"github.com/talentflow/tf-backend/internal/ports"
)

func freelanceDetails() *ThirdPartyDetails {
	return &ThirdPartyDetails{
		CompanyName:    "Acme Conseil",
		LegalForm:      "SASU",
		Siren:          "732 829 320",
		Representative: "Jeanne Martin",
		ContactEmail:   "contact@acme.fr",
	}
}

func freelanceTerms() models.CommercialTerms {
	rate := 650.0
	start := time.Now().Add(14 * 24 * time.Hour)
	end := start.Add(180 * 24 * time.Hour)
	return models.CommercialTerms{
		Type:            models.ThirdPartyTypeFreelance,
		DailyRate:       &rate,
		StartDate:       &start,
		EndDate:         &end,
		CommercialEmail: "commercial@talentflow.fr",
	}
}

func TestCreateRequestPositioningConflict(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	first, err := env.contracts.CreateRequest(ctx, "pos-100", "commercial@talentflow.fr")
	require.NoError(t, err)
	assert.Equal(t, models.ContractStatusPendingCommercialValidation, first.Status)

	// A positioning carries at most one non-cancelled request.
	_, err = env.contracts.CreateRequest(ctx, "pos-100", "commercial@talentflow.fr")
	assert.ErrorIs(t, err, ports.ErrPositioningConflict)

	// Cancelling frees the positioning for a new request.
	_, err = env.contracts.Cancel(ctx, first.ID)
	require.NoError(t, err)
	_, err = env.contracts.CreateRequest(ctx, "pos-100", "commercial@talentflow.fr")
	assert.NoError(t, err)
}

func TestValidateCommercialEmployeeRedirectsToPayfit(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	req, err := env.contracts.CreateRequest(ctx, "pos-200", "commercial@talentflow.fr")
	require.NoError(t, err)

	// Employee hires need no third-party details at all.
	updated, err := env.contracts.ValidateCommercial(ctx, req.ID, models.CommercialTerms{
		Type:            models.ThirdPartyTypeEmployee,
		CommercialEmail: "commercial@talentflow.fr",
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, models.ContractStatusRedirectedPayfit, updated.Status)
	assert.Nil(t, updated.ThirdPartyID)

	// Terminal: the pipeline is over for this request.
	_, err = env.contracts.StartDocumentCollection(ctx, req.ID)
	assert.Error(t, err)
}

func TestValidateCommercialCreatesThirdParty(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	req, err := env.contracts.CreateRequest(ctx, "pos-300", "commercial@talentflow.fr")
	require.NoError(t, err)

	updated, err := env.contracts.ValidateCommercial(ctx, req.ID, freelanceTerms(), freelanceDetails())
	require.NoError(t, err)
	assert.Equal(t, models.ContractStatusCommercialValidated, updated.Status)
	require.NotNil(t, updated.ThirdPartyID)

	tp, err := env.thirdParties.GetByID(ctx, *updated.ThirdPartyID)
	require.NoError(t, err)
	assert.Equal(t, "732829320", tp.Siren, "SIREN stored normalized")
	assert.Equal(t, models.ComplianceStatusNonCompliant, tp.ComplianceStatus)
}

func TestValidateCommercialReusesThirdPartyBySiren(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	existing := env.createThirdParty(t, models.ThirdPartyTypeFreelance)

	req, err := env.contracts.CreateRequest(ctx, "pos-310", "commercial@talentflow.fr")
	require.NoError(t, err)

	details := freelanceDetails()
	details.CompanyName = "Different Name SARL"
	updated, err := env.contracts.ValidateCommercial(ctx, req.ID, freelanceTerms(), details)
	require.NoError(t, err)
	require.NotNil(t, updated.ThirdPartyID)
	assert.Equal(t, existing.ID, *updated.ThirdPartyID)
}

func TestValidateCommercialRejectsBadInput(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	req, err := env.contracts.CreateRequest(ctx, "pos-320", "commercial@talentflow.fr")
	require.NoError(t, err)

	// Non-employee validation without details.
	_, err = env.contracts.ValidateCommercial(ctx, req.ID, freelanceTerms(), nil)
	assert.Error(t, err)

	// Bad SIREN checksum.
	details := freelanceDetails()
	details.Siren = "732829321"
	_, err = env.contracts.ValidateCommercial(ctx, req.ID, freelanceTerms(), details)
	var sirenErr *models.InvalidSirenError
	assert.ErrorAs(t, err, &sirenErr)

	// Neither failure moved the request.
	stored, err := env.contracts.GetRequest(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ContractStatusPendingCommercialValidation, stored.Status)
}

// advanceToConfigured walks a fresh request through commercial validation,
// document collection and configuration.
func advanceToConfigured(t *testing.T, env *testEnv, positioningID string, config models.JSONB) *models.ContractRequest {
	t.Helper()
	ctx := context.Background()

	req, err := env.contracts.CreateRequest(ctx, positioningID, "commercial@talentflow.fr")
	require.NoError(t, err)
	_, err = env.contracts.ValidateCommercial(ctx, req.ID, freelanceTerms(), freelanceDetails())
	require.NoError(t, err)
	req, err = env.contracts.StartDocumentCollection(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ContractStatusCollectingDocuments, req.Status)

	env.validateAllDocuments(t, *req.ThirdPartyID)

	req, err = env.contracts.ConfigureContract(ctx, req.ID, config)
	require.NoError(t, err)
	assert.Equal(t, models.ContractStatusConfiguringContract, req.Status)
	return req
}

func TestFullPipeline(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	req := advanceToConfigured(t, env, "pos-400", models.JSONB{
		ArticleConfidentialite: true,
		ArticleResponsabilite:  true,
	})

	// Collection issued the catalogue and an upload link.
	docs, err := env.docs.ListByThirdParty(ctx, *req.ThirdPartyID, nil)
	require.NoError(t, err)
	assert.Len(t, docs, 7)
	assert.NotEmpty(t, env.email.collectionURLs)

	// Draft generation.
	contract, err := env.contracts.GenerateDraft(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, contract.Version)
	assert.NotEmpty(t, contract.Reference)
	assert.Contains(t, env.storage.objects, contract.S3KeyDraft)

	// The template saw the gap-free article numbering.
	numbers, ok := env.generator.lastCtx["article_numbers"].(map[string]int)
	require.True(t, ok)
	assert.Equal(t, 6, numbers[ArticleConfidentialite])
	assert.Equal(t, 7, numbers[ArticleResponsabilite])
	assert.Equal(t, 9, numbers[ArticleDroitApplicable])

	// Partner review round-trip: approved.
	req, err = env.contracts.SendDraftToPartner(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ContractStatusDraftSentToPartner, req.Status)
	assert.NotEmpty(t, env.email.reviewURLs)

	req, err = env.contracts.ProcessPartnerReview(ctx, req.ID, true, "")
	require.NoError(t, err)
	assert.Equal(t, models.ContractStatusPartnerApproved, req.Status)

	// Signature.
	contract, err = env.contracts.SendForSignature(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SignatureStatusOngoing, contract.SignatureStatus)
	assert.NotEmpty(t, contract.SignatureProcedureID)
	assert.Contains(t, env.signature.lastDraftURL, contract.S3KeyDraft)

	req, err = env.contracts.GetRequest(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ContractStatusSentForSignature, req.Status)

	// Webhook completion.
	contract, err = env.contracts.HandleSignatureCompleted(ctx, contract.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SignatureStatusDone, contract.SignatureStatus)
	assert.NotNil(t, contract.SignedAt)
	assert.Contains(t, env.storage.objects, contract.S3KeySigned)
	assert.Equal(t, []string{"commercial@talentflow.fr"}, env.email.signedRecipients)

	// CRM push archives the request.
	req, err = env.contracts.PushToCrm(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ContractStatusArchived, req.Status)

	tp, err := env.thirdParties.GetByID(ctx, *req.ThirdPartyID)
	require.NoError(t, err)
	assert.NotEmpty(t, tp.BoondProviderID)
}

func TestGenerateDraftComplianceGate(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	req, err := env.contracts.CreateRequest(ctx, "pos-500", "commercial@talentflow.fr")
	require.NoError(t, err)
	_, err = env.contracts.ValidateCommercial(ctx, req.ID, freelanceTerms(), freelanceDetails())
	require.NoError(t, err)
	_, err = env.contracts.StartDocumentCollection(ctx, req.ID)
	require.NoError(t, err)
	// Documents are requested but never validated: still non-compliant.
	_, err = env.contracts.ConfigureContract(ctx, req.ID, models.JSONB{})
	require.NoError(t, err)

	_, err = env.contracts.GenerateDraft(ctx, req.ID)
	var blocked *ComplianceBlockError
	require.ErrorAs(t, err, &blocked)
	assert.Equal(t, models.ComplianceStatusNonCompliant, blocked.Status)

	// An admin override opens the gate.
	_, err = env.contracts.GrantComplianceOverride(ctx, req.ID, "mission urgente, Kbis en cours")
	require.NoError(t, err)
	contract, err := env.contracts.GenerateDraft(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, contract.Version)
}

func TestPartnerReviewLoopBumpsVersion(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	req := advanceToConfigured(t, env, "pos-600", models.JSONB{})
	first, err := env.contracts.GenerateDraft(ctx, req.ID)
	require.NoError(t, err)
	_, err = env.contracts.SendDraftToPartner(ctx, req.ID)
	require.NoError(t, err)

	// Partner refuses with comments.
	req, err = env.contracts.ProcessPartnerReview(ctx, req.ID, false, "Revoir l'article 3")
	require.NoError(t, err)
	assert.Equal(t, models.ContractStatusPartnerRequestedChanges, req.Status)
	assert.Equal(t, []string{"Revoir l'article 3"}, env.email.changeComments)

	stored, err := env.contractRepo.GetByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "Revoir l'article 3", stored.PartnerComments)

	// Reconfigure and redraft: same reference, next version.
	_, err = env.contracts.ConfigureContract(ctx, req.ID, models.JSONB{ArticleConfidentialite: true})
	require.NoError(t, err)
	second, err := env.contracts.GenerateDraft(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, first.Reference, second.Reference)
	assert.Equal(t, first.Version+1, second.Version)
}

func TestPushToCrmIsRetrySafe(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	req := advanceToConfigured(t, env, "pos-700", models.JSONB{})
	contract, err := env.contracts.GenerateDraft(ctx, req.ID)
	require.NoError(t, err)
	_, err = env.contracts.SendDraftToPartner(ctx, req.ID)
	require.NoError(t, err)
	_, err = env.contracts.ProcessPartnerReview(ctx, req.ID, true, "")
	require.NoError(t, err)
	_, err = env.contracts.SendForSignature(ctx, req.ID)
	require.NoError(t, err)
	_, err = env.contracts.HandleSignatureCompleted(ctx, contract.ID)
	require.NoError(t, err)

	// First push fails between provider creation and the purchase order.
	env.crm.failCreateOrder = true
	_, err = env.contracts.PushToCrm(ctx, req.ID)
	require.Error(t, err)
	assert.Equal(t, 1, env.crm.providerCalls)

	// The provider id survived the partial failure.
	tp, err := env.thirdParties.GetByID(ctx, *req.ThirdPartyID)
	require.NoError(t, err)
	assert.NotEmpty(t, tp.BoondProviderID)

	// The retry resumes at the purchase order without recreating the provider.
	env.crm.failCreateOrder = false
	archived, err := env.contracts.PushToCrm(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ContractStatusArchived, archived.Status)
	assert.Equal(t, 1, env.crm.providerCalls)

	stored, err := env.contractRepo.GetByID(ctx, contract.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, stored.BoondPurchaseOrderID)
}

func TestCancelRefusedDuringSignature(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	req := advanceToConfigured(t, env, "pos-800", models.JSONB{})
	_, err := env.contracts.GenerateDraft(ctx, req.ID)
	require.NoError(t, err)
	_, err = env.contracts.SendDraftToPartner(ctx, req.ID)
	require.NoError(t, err)
	_, err = env.contracts.ProcessPartnerReview(ctx, req.ID, true, "")
	require.NoError(t, err)
	_, err = env.contracts.SendForSignature(ctx, req.ID)
	require.NoError(t, err)

	_, err = env.contracts.Cancel(ctx, req.ID)
	var statusErr *models.InvalidContractStatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, models.ContractStatusSentForSignature, statusErr.From)
}
