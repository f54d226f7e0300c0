// internal/models/common.go
package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base model with common fields
type BaseModel struct {
	ID        uuid.UUID      `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

// JSONB type for PostgreSQL
type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}

	return json.Unmarshal(bytes, j)
}

// Enums
type ThirdPartyType string

const (
	ThirdPartyTypeFreelance     ThirdPartyType = "freelance"
	ThirdPartyTypeSubcontractor ThirdPartyType = "sous_traitant"
	ThirdPartyTypeEmployee      ThirdPartyType = "salarie"
)

type ComplianceStatus string

const (
	ComplianceStatusCompliant    ComplianceStatus = "compliant"
	ComplianceStatusExpiringSoon ComplianceStatus = "expiring_soon"
	ComplianceStatusNonCompliant ComplianceStatus = "non_compliant"
)

type DocumentStatus string

const (
	DocumentStatusRequested    DocumentStatus = "requested"
	DocumentStatusReceived     DocumentStatus = "received"
	DocumentStatusValidated    DocumentStatus = "validated"
	DocumentStatusRejected     DocumentStatus = "rejected"
	DocumentStatusExpiringSoon DocumentStatus = "expiring_soon"
	DocumentStatusExpired      DocumentStatus = "expired"
)

type DocumentType string

const (
	DocumentTypeKbis           DocumentType = "kbis"
	DocumentTypeUrssaf         DocumentType = "attestation_urssaf"
	DocumentTypeFiscal         DocumentType = "attestation_fiscale"
	DocumentTypeRCPro          DocumentType = "assurance_rc_pro"
	DocumentTypeIDCard         DocumentType = "piece_identite"
	DocumentTypeRIB            DocumentType = "rib"
	DocumentTypeSocialSecurity DocumentType = "attestation_declarations_sociales"
	DocumentTypeForeignWorkers DocumentType = "liste_travailleurs_etrangers"
)

type ContractRequestStatus string

const (
	ContractStatusPendingCommercialValidation ContractRequestStatus = "pending_commercial_validation"
	ContractStatusCommercialValidated         ContractRequestStatus = "commercial_validated"
	ContractStatusRedirectedPayfit            ContractRequestStatus = "redirected_payfit"
	ContractStatusCollectingDocuments         ContractRequestStatus = "collecting_documents"
	ContractStatusConfiguringContract         ContractRequestStatus = "configuring_contract"
	ContractStatusDraftGenerated              ContractRequestStatus = "draft_generated"
	ContractStatusDraftSentToPartner          ContractRequestStatus = "draft_sent_to_partner"
	ContractStatusPartnerApproved             ContractRequestStatus = "partner_approved"
	ContractStatusPartnerRequestedChanges     ContractRequestStatus = "partner_requested_changes"
	ContractStatusSentForSignature            ContractRequestStatus = "sent_for_signature"
	ContractStatusSigned                      ContractRequestStatus = "signed"
	ContractStatusArchived                    ContractRequestStatus = "archived"
	ContractStatusCancelled                   ContractRequestStatus = "cancelled"
)

type MagicLinkPurpose string

const (
	MagicLinkPurposeDocumentUpload MagicLinkPurpose = "document_upload"
	MagicLinkPurposeContractReview MagicLinkPurpose = "contract_review"
)

type SignatureStatus string

const (
	SignatureStatusPending  SignatureStatus = "pending"
	SignatureStatusOngoing  SignatureStatus = "ongoing"
	SignatureStatusDone     SignatureStatus = "done"
	SignatureStatusRefused  SignatureStatus = "refused"
	SignatureStatusCanceled SignatureStatus = "canceled"
)

type StaffRole string

const (
	StaffRoleRecruiter  StaffRole = "recruiter"
	StaffRoleCommercial StaffRole = "commercial"
	StaffRoleAdmin      StaffRole = "admin"
)
