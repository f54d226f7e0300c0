// internal/models/magic_link.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// MagicLink is a single-purpose, revocable bearer token granting
// unauthenticated portal access for one third party. At most one live link
// exists per (third party, purpose): generation revokes prior ones.
type MagicLink struct {
	BaseModel
	ThirdPartyID      uuid.UUID        `json:"third_party_id" gorm:"type:uuid;not null;index"`
	Purpose           MagicLinkPurpose `json:"purpose" gorm:"type:varchar(20);not null;index"`
	Email             string           `json:"email" gorm:"size:255;not null"`
	Token             string           `json:"-" gorm:"uniqueIndex;size:128;not null"`
	ContractRequestID *uuid.UUID       `json:"contract_request_id" gorm:"type:uuid"`
	ExpiresAt         time.Time        `json:"expires_at" gorm:"not null;index"`
	FirstAccessedAt   *time.Time       `json:"first_accessed_at"`
	Revoked           bool             `json:"revoked" gorm:"default:false;index"`

	// Relationships
	ThirdParty ThirdParty `json:"third_party,omitempty" gorm:"foreignKey:ThirdPartyID"`
}

// IsValid reports whether the link is still usable.
func (l *MagicLink) IsValid(now time.Time) bool {
	return !l.Revoked && now.Before(l.ExpiresAt)
}

// MarkAccessed stamps the first portal visit. Idempotent: later visits keep
// the original timestamp.
func (l *MagicLink) MarkAccessed(now time.Time) {
	if l.FirstAccessedAt == nil {
		l.FirstAccessedAt = &now
	}
}

// Revoke invalidates the link.
func (l *MagicLink) Revoke() {
	l.Revoked = true
}
