// internal/models/contract.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// Contract is a generated document tied to a ContractRequest. It has no state
// machine of its own: it mirrors the parent request's pipeline. Version
// increments on each redraft; the latest version is the one the partner sees.
type Contract struct {
	BaseModel
	ContractRequestID    uuid.UUID       `json:"contract_request_id" gorm:"type:uuid;not null;index"`
	ThirdPartyID         uuid.UUID       `json:"third_party_id" gorm:"type:uuid;not null;index"`
	Reference            string          `json:"reference" gorm:"size:32;not null;index"`
	Version              int             `json:"version" gorm:"default:1"`
	S3KeyDraft           string          `json:"s3_key_draft,omitempty" gorm:"size:512"`
	S3KeySigned          string          `json:"s3_key_signed,omitempty" gorm:"size:512"`
	SignatureProcedureID string          `json:"signature_procedure_id,omitempty" gorm:"size:64"`
	SignatureStatus      SignatureStatus `json:"signature_status,omitempty" gorm:"type:varchar(20)"`
	BoondPurchaseOrderID string          `json:"boond_purchase_order_id,omitempty" gorm:"size:64"`
	PartnerComments      string          `json:"partner_comments,omitempty" gorm:"type:text"`
	SignedAt             *time.Time      `json:"signed_at"`

	// Relationships
	ContractRequest ContractRequest `json:"contract_request,omitempty" gorm:"foreignKey:ContractRequestID"`
	ThirdParty      ThirdParty      `json:"third_party,omitempty" gorm:"foreignKey:ThirdPartyID"`
}

// MarkSigned records the signed document. signed_at and s3_key_signed are set
// together, never independently.
func (c *Contract) MarkSigned(s3KeySigned string) {
	now := time.Now()
	c.S3KeySigned = s3KeySigned
	c.SignatureStatus = SignatureStatusDone
	c.SignedAt = &now
}
