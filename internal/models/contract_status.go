// internal/models/contract_status.go
package models

import "fmt"

// InvalidContractStatusError is returned when a contract request is asked to
// move to a status that is not reachable from its current one.
type InvalidContractStatusError struct {
	From ContractRequestStatus
	To   ContractRequestStatus
}

func (e *InvalidContractStatusError) Error() string {
	return fmt.Sprintf("invalid contract request transition from %q to %q", e.From, e.To)
}

// contractTransitions is the legal transition table for the contract pipeline.
// ARCHIVED, CANCELLED and REDIRECTED_PAYFIT are terminal. A request already
// sent for signature cannot be cancelled; the signature provider owns that
// window and the only way out is the signature webhook.
var contractTransitions = map[ContractRequestStatus][]ContractRequestStatus{
	ContractStatusPendingCommercialValidation: {
		ContractStatusCommercialValidated,
		ContractStatusRedirectedPayfit,
		ContractStatusCancelled,
	},
	ContractStatusCommercialValidated: {
		ContractStatusCollectingDocuments,
		ContractStatusCancelled,
	},
	ContractStatusCollectingDocuments: {
		ContractStatusConfiguringContract,
		ContractStatusCancelled,
	},
	ContractStatusConfiguringContract: {
		ContractStatusDraftGenerated,
		ContractStatusCancelled,
	},
	ContractStatusDraftGenerated: {
		ContractStatusDraftSentToPartner,
		ContractStatusCancelled,
	},
	ContractStatusDraftSentToPartner: {
		ContractStatusPartnerApproved,
		ContractStatusPartnerRequestedChanges,
		ContractStatusCancelled,
	},
	ContractStatusPartnerRequestedChanges: {
		ContractStatusConfiguringContract,
	},
	ContractStatusPartnerApproved: {
		ContractStatusSentForSignature,
		ContractStatusCancelled,
	},
	ContractStatusSentForSignature: {
		ContractStatusSigned,
	},
	ContractStatusSigned: {
		ContractStatusArchived,
	},
	ContractStatusArchived:         {},
	ContractStatusCancelled:        {},
	ContractStatusRedirectedPayfit: {},
}

// CanTransitionContract reports whether a contract request may move from one
// status to another. Pure lookup, no side effects.
func CanTransitionContract(from, to ContractRequestStatus) bool {
	for _, allowed := range contractTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}
