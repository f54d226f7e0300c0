// internal/services/errors.go
package services

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/talentflow/tf-backend/internal/models"
)

// NotFound family. Surfaced as 404 by the transport layer.

type ThirdPartyNotFoundError struct {
	ID uuid.UUID
}

func (e *ThirdPartyNotFoundError) Error() string {
	return fmt.Sprintf("third party %s not found", e.ID)
}

type DocumentNotFoundError struct {
	ID uuid.UUID
}

func (e *DocumentNotFoundError) Error() string {
	return fmt.Sprintf("document %s not found", e.ID)
}

type ContractRequestNotFoundError struct {
	ID uuid.UUID
}

func (e *ContractRequestNotFoundError) Error() string {
	return fmt.Sprintf("contract request %s not found", e.ID)
}

type ContractNotFoundError struct {
	ID uuid.UUID
}

func (e *ContractNotFoundError) Error() string {
	return fmt.Sprintf("contract %s not found", e.ID)
}

// MagicLinkNotFoundError deliberately does not echo the token.
type MagicLinkNotFoundError struct{}

func (e *MagicLinkNotFoundError) Error() string {
	return "magic link not found"
}

// Capability-token family. Distinct from NotFound so the portal can show
// "expired" vs "wrong link" messaging.

type MagicLinkExpiredError struct{}

func (e *MagicLinkExpiredError) Error() string {
	return "magic link has expired"
}

type MagicLinkRevokedError struct{}

func (e *MagicLinkRevokedError) Error() string {
	return "magic link has been revoked"
}

// ComplianceBlockError rejects contract generation while the third party's
// vigilance file is not in order and no override was granted.
type ComplianceBlockError struct {
	ThirdPartyID uuid.UUID
	Status       models.ComplianceStatus
}

func (e *ComplianceBlockError) Error() string {
	return fmt.Sprintf("third party %s is %s: contract generation blocked", e.ThirdPartyID, e.Status)
}
