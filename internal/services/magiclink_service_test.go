// internal/services/magiclink_service_test.go
package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talentflow/tf-backend/internal/models"
)

func TestGenerateRevokesPriorLinksOfSamePurpose(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	tp := env.createThirdParty(t, models.ThirdPartyTypeFreelance)

	first, err := env.magicLinks.Generate(ctx, tp.ID, models.MagicLinkPurposeDocumentUpload, tp.ContactEmail, nil)
	require.NoError(t, err)
	review, err := env.magicLinks.Generate(ctx, tp.ID, models.MagicLinkPurposeContractReview, tp.ContactEmail, nil)
	require.NoError(t, err)
	second, err := env.magicLinks.Generate(ctx, tp.ID, models.MagicLinkPurposeDocumentUpload, tp.ContactEmail, nil)
	require.NoError(t, err)

	// Only the newest upload link survives.
	storedFirst, err := env.links.GetByID(ctx, first.ID)
	require.NoError(t, err)
	assert.True(t, storedFirst.Revoked)

	active, err := env.links.GetActive(ctx, tp.ID, models.MagicLinkPurposeDocumentUpload)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, second.ID, active[0].ID)

	// The contract-review link is a different purpose and stays live.
	storedReview, err := env.links.GetByID(ctx, review.ID)
	require.NoError(t, err)
	assert.False(t, storedReview.Revoked)
}

func TestGenerateSendsCollectionEmail(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	tp := env.createThirdParty(t, models.ThirdPartyTypeFreelance)

	link, err := env.magicLinks.Generate(ctx, tp.ID, models.MagicLinkPurposeDocumentUpload, tp.ContactEmail, nil)
	require.NoError(t, err)

	require.Len(t, env.email.collectionURLs, 1)
	assert.Contains(t, env.email.collectionURLs[0], link.Token)
	assert.Contains(t, env.email.collectionURLs[0], "/portal/documents")
}

func TestVerifyHappyPath(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	tp := env.createThirdParty(t, models.ThirdPartyTypeFreelance)

	link, err := env.magicLinks.Generate(ctx, tp.ID, models.MagicLinkPurposeDocumentUpload, tp.ContactEmail, nil)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(link.Token), 64)

	result, err := env.magicLinks.Verify(ctx, link.Token)
	require.NoError(t, err)
	assert.Equal(t, tp.ID, result.ThirdParty.ID)
	assert.Equal(t, models.MagicLinkPurposeDocumentUpload, result.Purpose)
	assert.Nil(t, result.ContractRequestID)
}

func TestVerifyErrorTaxonomy(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	tp := env.createThirdParty(t, models.ThirdPartyTypeFreelance)

	t.Run("unknown token", func(t *testing.T) {
		_, err := env.magicLinks.Verify(ctx, "no-such-token")
		var notFound *MagicLinkNotFoundError
		assert.ErrorAs(t, err, &notFound)
	})

	t.Run("expired link", func(t *testing.T) {
		link, err := env.magicLinks.IssueLink(ctx, tp, models.MagicLinkPurposeDocumentUpload, tp.ContactEmail, nil)
		require.NoError(t, err)
		link.ExpiresAt = time.Now().Add(-time.Minute)
		require.NoError(t, env.links.Save(ctx, link))

		_, err = env.magicLinks.Verify(ctx, link.Token)
		var expired *MagicLinkExpiredError
		assert.ErrorAs(t, err, &expired)
	})

	t.Run("revoked wins over expired", func(t *testing.T) {
		link, err := env.magicLinks.IssueLink(ctx, tp, models.MagicLinkPurposeDocumentUpload, tp.ContactEmail, nil)
		require.NoError(t, err)
		link.Revoked = true
		link.ExpiresAt = time.Now().Add(-time.Minute)
		require.NoError(t, env.links.Save(ctx, link))

		_, err = env.magicLinks.Verify(ctx, link.Token)
		var revoked *MagicLinkRevokedError
		assert.ErrorAs(t, err, &revoked)
	})
}

func TestVerifyStampsFirstAccessOnce(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	tp := env.createThirdParty(t, models.ThirdPartyTypeFreelance)

	link, err := env.magicLinks.IssueLink(ctx, tp, models.MagicLinkPurposeDocumentUpload, tp.ContactEmail, nil)
	require.NoError(t, err)

	_, err = env.magicLinks.Verify(ctx, link.Token)
	require.NoError(t, err)

	stored, err := env.links.GetByID(ctx, link.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.FirstAccessedAt)
	firstAccess := *stored.FirstAccessedAt

	// A later visit keeps the original timestamp.
	_, err = env.magicLinks.Verify(ctx, link.Token)
	require.NoError(t, err)

	stored, err = env.links.GetByID(ctx, link.ID)
	require.NoError(t, err)
	assert.True(t, stored.FirstAccessedAt.Equal(firstAccess))
}

func TestPortalURLByPurpose(t *testing.T) {
	env := newTestEnv()

	upload := &models.MagicLink{Purpose: models.MagicLinkPurposeDocumentUpload, Token: "tok"}
	assert.Equal(t, "https://portal.talentflow.fr/portal/documents?token=tok", env.magicLinks.PortalURL(upload))

	review := &models.MagicLink{Purpose: models.MagicLinkPurposeContractReview, Token: "tok"}
	assert.Equal(t, "https://portal.talentflow.fr/portal/contract?token=tok", env.magicLinks.PortalURL(review))
}
