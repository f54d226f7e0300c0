// internal/models/document_status.go
package models

import "fmt"

// InvalidDocumentTransitionError is returned when a document mutator is asked
// to move a document to a status that is not reachable from its current one.
type InvalidDocumentTransitionError struct {
	From DocumentStatus
	To   DocumentStatus
}

func (e *InvalidDocumentTransitionError) Error() string {
	return fmt.Sprintf("invalid document transition from %q to %q", e.From, e.To)
}

// documentTransitions is the legal transition table for a vigilance document.
// REJECTED and EXPIRED loop back to REQUESTED: a compliance document is never
// terminally dead, it is re-requested for the next vigilance cycle.
var documentTransitions = map[DocumentStatus][]DocumentStatus{
	DocumentStatusRequested:    {DocumentStatusReceived},
	DocumentStatusReceived:     {DocumentStatusValidated, DocumentStatusRejected},
	DocumentStatusValidated:    {DocumentStatusExpiringSoon, DocumentStatusExpired},
	DocumentStatusRejected:     {DocumentStatusRequested},
	DocumentStatusExpiringSoon: {DocumentStatusExpired, DocumentStatusValidated},
	DocumentStatusExpired:      {DocumentStatusRequested},
}

// CanTransitionDocument reports whether a document may move from one status
// to another. Pure lookup, no side effects.
func CanTransitionDocument(from, to DocumentStatus) bool {
	for _, allowed := range documentTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// checkDocumentTransition validates a transition before any mutation happens.
func checkDocumentTransition(from, to DocumentStatus) error {
	if !CanTransitionDocument(from, to) {
		return &InvalidDocumentTransitionError{From: from, To: to}
	}
	return nil
}
