// internal/models/contract_status_test.go
package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allContractStatuses = []ContractRequestStatus{
	ContractStatusPendingCommercialValidation,
	ContractStatusCommercialValidated,
	ContractStatusRedirectedPayfit,
	ContractStatusCollectingDocuments,
	ContractStatusConfiguringContract,
	ContractStatusDraftGenerated,
	ContractStatusDraftSentToPartner,
	ContractStatusPartnerApproved,
	ContractStatusPartnerRequestedChanges,
	ContractStatusSentForSignature,
	ContractStatusSigned,
	ContractStatusArchived,
	ContractStatusCancelled,
}

func TestContractHappyPath(t *testing.T) {
	path := []ContractRequestStatus{
		ContractStatusPendingCommercialValidation,
		ContractStatusCommercialValidated,
		ContractStatusCollectingDocuments,
		ContractStatusConfiguringContract,
		ContractStatusDraftGenerated,
		ContractStatusDraftSentToPartner,
		ContractStatusPartnerApproved,
		ContractStatusSentForSignature,
		ContractStatusSigned,
		ContractStatusArchived,
	}
	for i := 0; i < len(path)-1; i++ {
		assert.True(t, CanTransitionContract(path[i], path[i+1]), "%s -> %s", path[i], path[i+1])
	}
}

func TestContractTerminalStatuses(t *testing.T) {
	terminals := []ContractRequestStatus{
		ContractStatusArchived,
		ContractStatusCancelled,
		ContractStatusRedirectedPayfit,
	}
	for _, terminal := range terminals {
		for _, to := range allContractStatuses {
			assert.False(t, CanTransitionContract(terminal, to), "%s is terminal, %s must be unreachable", terminal, to)
		}
	}
}

func TestSentForSignatureCannotBeCancelled(t *testing.T) {
	assert.False(t, CanTransitionContract(ContractStatusSentForSignature, ContractStatusCancelled))
	// The only way out of the signature window is the webhook.
	assert.True(t, CanTransitionContract(ContractStatusSentForSignature, ContractStatusSigned))
	for _, to := range allContractStatuses {
		if to == ContractStatusSigned {
			continue
		}
		assert.False(t, CanTransitionContract(ContractStatusSentForSignature, to), "SENT_FOR_SIGNATURE -> %s", to)
	}
}

func TestPartnerRequestedChangesReentersConfiguration(t *testing.T) {
	assert.True(t, CanTransitionContract(ContractStatusPartnerRequestedChanges, ContractStatusConfiguringContract))
	for _, to := range allContractStatuses {
		if to == ContractStatusConfiguringContract {
			continue
		}
		assert.False(t, CanTransitionContract(ContractStatusPartnerRequestedChanges, to), "PARTNER_REQUESTED_CHANGES -> %s", to)
	}
}

func TestPartnerReviewOutcomes(t *testing.T) {
	assert.True(t, CanTransitionContract(ContractStatusDraftSentToPartner, ContractStatusPartnerApproved))
	assert.True(t, CanTransitionContract(ContractStatusDraftSentToPartner, ContractStatusPartnerRequestedChanges))
}

func TestApplyCommercialTermsStampsRequest(t *testing.T) {
	rate := 650.0
	req := &ContractRequest{Status: ContractStatusPendingCommercialValidation}

	err := req.ApplyCommercialTerms(CommercialTerms{
		Type:            ThirdPartyTypeFreelance,
		DailyRate:       &rate,
		CommercialEmail: "commercial@talentflow.fr",
	})
	require.NoError(t, err)
	assert.Equal(t, ContractStatusCommercialValidated, req.Status)
	assert.Equal(t, ThirdPartyTypeFreelance, req.ThirdPartyType)
	assert.Equal(t, &rate, req.DailyRate)
	assert.NotNil(t, req.ValidatedAt)

	// Validating twice is an illegal transition.
	err = req.ApplyCommercialTerms(CommercialTerms{Type: ThirdPartyTypeFreelance})
	var statusErr *InvalidContractStatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, ContractStatusCommercialValidated, statusErr.From)
}

func TestRedirectToPayfitIsTerminal(t *testing.T) {
	req := &ContractRequest{Status: ContractStatusPendingCommercialValidation}

	require.NoError(t, req.RedirectToPayfit(CommercialTerms{
		Type:            ThirdPartyTypeEmployee,
		CommercialEmail: "commercial@talentflow.fr",
	}))
	assert.Equal(t, ContractStatusRedirectedPayfit, req.Status)
	assert.Equal(t, ThirdPartyTypeEmployee, req.ThirdPartyType)

	// Nothing comes after the payroll handoff.
	err := req.TransitionTo(ContractStatusCollectingDocuments)
	var statusErr *InvalidContractStatusError
	require.ErrorAs(t, err, &statusErr)
}

func TestFailedTransitionDoesNotMutate(t *testing.T) {
	req := &ContractRequest{Status: ContractStatusDraftGenerated}
	err := req.TransitionTo(ContractStatusSigned)
	require.Error(t, err)
	assert.Equal(t, ContractStatusDraftGenerated, req.Status)
}
