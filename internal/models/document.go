// internal/models/document.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// VigilanceDocument is one compliance document instance for one third party.
// A single row tracks the full vigilance cycle of its document type: when a
// document is rejected or expires, the same row is re-requested rather than
// spawning a sibling, so there is at most one row per (third party, type).
type VigilanceDocument struct {
	BaseModel
	ThirdPartyID    uuid.UUID      `json:"third_party_id" gorm:"type:uuid;not null;index"`
	DocumentType    DocumentType   `json:"document_type" gorm:"type:varchar(50);not null;index"`
	Status          DocumentStatus `json:"status" gorm:"type:varchar(20);default:'requested';index"`
	S3Key           string         `json:"s3_key,omitempty" gorm:"size:512"`
	FileName        string         `json:"file_name,omitempty" gorm:"size:255"`
	FileSize        int64          `json:"file_size,omitempty"`
	UploadedAt      *time.Time     `json:"uploaded_at"`
	ValidatedAt     *time.Time     `json:"validated_at"`
	ValidatedBy     *uuid.UUID     `json:"validated_by" gorm:"type:uuid"`
	RejectedAt      *time.Time     `json:"rejected_at"`
	RejectionReason string         `json:"rejection_reason,omitempty" gorm:"type:text"`
	ExpiresAt       *time.Time     `json:"expires_at" gorm:"index"`
	CheckResults    JSONB          `json:"check_results,omitempty" gorm:"type:jsonb"`

	// Relationships
	ThirdParty ThirdParty `json:"third_party,omitempty" gorm:"foreignKey:ThirdPartyID"`
}

// IsActiveStatus reports whether a status counts toward the "already
// requested" set used by the document-request use case. REJECTED and EXPIRED
// are excluded: those rows are candidates for re-request.
func IsActiveStatus(s DocumentStatus) bool {
	switch s {
	case DocumentStatusRequested, DocumentStatusReceived, DocumentStatusValidated, DocumentStatusExpiringSoon:
		return true
	}
	return false
}

// Receive marks the document uploaded by the third party.
func (d *VigilanceDocument) Receive(fileName, s3Key string, fileSize int64) error {
	if err := checkDocumentTransition(d.Status, DocumentStatusReceived); err != nil {
		return err
	}
	now := time.Now()
	d.Status = DocumentStatusReceived
	d.FileName = fileName
	d.S3Key = s3Key
	d.FileSize = fileSize
	d.UploadedAt = &now
	return nil
}

// Validate marks the document accepted by a staff member. expiresAt is nil
// for document types without a validity period.
func (d *VigilanceDocument) Validate(validatedBy uuid.UUID, expiresAt *time.Time) error {
	if err := checkDocumentTransition(d.Status, DocumentStatusValidated); err != nil {
		return err
	}
	now := time.Now()
	d.Status = DocumentStatusValidated
	d.ValidatedAt = &now
	d.ValidatedBy = &validatedBy
	d.RejectedAt = nil
	d.RejectionReason = ""
	d.ExpiresAt = expiresAt
	return nil
}

// Reject marks the document refused by a staff member with a reason.
func (d *VigilanceDocument) Reject(reason string) error {
	if err := checkDocumentTransition(d.Status, DocumentStatusRejected); err != nil {
		return err
	}
	now := time.Now()
	d.Status = DocumentStatusRejected
	d.RejectedAt = &now
	d.RejectionReason = reason
	return nil
}

// MarkExpiringSoon is applied by the expiration sweep inside the warning
// horizon.
func (d *VigilanceDocument) MarkExpiringSoon() error {
	if err := checkDocumentTransition(d.Status, DocumentStatusExpiringSoon); err != nil {
		return err
	}
	d.Status = DocumentStatusExpiringSoon
	return nil
}

// MarkExpired is applied by the expiration sweep once expires_at has passed.
func (d *VigilanceDocument) MarkExpired() error {
	if err := checkDocumentTransition(d.Status, DocumentStatusExpired); err != nil {
		return err
	}
	d.Status = DocumentStatusExpired
	return nil
}

// Rerequest resets a rejected or expired document back to REQUESTED for the
// next vigilance cycle, clearing the previous upload and review artefacts.
func (d *VigilanceDocument) Rerequest() error {
	if err := checkDocumentTransition(d.Status, DocumentStatusRequested); err != nil {
		return err
	}
	d.Status = DocumentStatusRequested
	d.S3Key = ""
	d.FileName = ""
	d.FileSize = 0
	d.UploadedAt = nil
	d.ValidatedAt = nil
	d.ValidatedBy = nil
	d.ExpiresAt = nil
	d.CheckResults = nil
	return nil
}
