// internal/models/third_party.go
package models

import (
	"fmt"
	"strings"
)

// InvalidSirenError is returned when a SIREN fails format or checksum
// validation.
type InvalidSirenError struct {
	Siren string
}

func (e *InvalidSirenError) Error() string {
	return fmt.Sprintf("invalid SIREN %q", e.Siren)
}

// ThirdParty is a freelance or subcontractor legal entity subject to
// compliance vigilance. ComplianceStatus is a cached projection of the
// document set: it is recomputed through ComputeComplianceStatus after every
// document-affecting use case and must never be set directly by UI actions.
type ThirdParty struct {
	BaseModel
	CompanyName      string           `json:"company_name" gorm:"size:255;not null"`
	LegalForm        string           `json:"legal_form,omitempty" gorm:"size:100"`
	Siren            string           `json:"siren" gorm:"uniqueIndex;size:9;not null"`
	Siret            string           `json:"siret,omitempty" gorm:"size:14"`
	RegisteredOffice string           `json:"registered_office,omitempty" gorm:"size:512"`
	Representative   string           `json:"representative,omitempty" gorm:"size:255"`
	ContactEmail     string           `json:"contact_email" gorm:"size:255;not null"`
	Type             ThirdPartyType   `json:"type" gorm:"type:varchar(20);not null;index"`
	BoondProviderID  string           `json:"boond_provider_id,omitempty" gorm:"size:64"`
	ComplianceStatus ComplianceStatus `json:"compliance_status" gorm:"type:varchar(20);default:'non_compliant';index"`

	// Relationships
	Documents  []VigilanceDocument `json:"documents,omitempty" gorm:"foreignKey:ThirdPartyID"`
	MagicLinks []MagicLink         `json:"magic_links,omitempty" gorm:"foreignKey:ThirdPartyID"`
}

// RefreshCompliance recomputes the cached compliance projection from a
// document snapshot and reports whether the cached value changed. This is the
// only write path for ComplianceStatus.
func (tp *ThirdParty) RefreshCompliance(docs []VigilanceDocument) bool {
	computed := ComputeComplianceStatus(tp.Type, docs)
	if computed == tp.ComplianceStatus {
		return false
	}
	tp.ComplianceStatus = computed
	return true
}

// ValidateSiren checks the 9-digit format and the Luhn checksum used by
// INSEE for SIREN numbers.
func ValidateSiren(siren string) error {
	siren = strings.ReplaceAll(siren, " ", "")
	if len(siren) != 9 {
		return &InvalidSirenError{Siren: siren}
	}

	sum := 0
	for i, r := range siren {
		if r < '0' || r > '9' {
			return &InvalidSirenError{Siren: siren}
		}
		digit := int(r - '0')
		// Luhn: double every second digit starting from position 1 (0-based).
		if i%2 == 1 {
			digit *= 2
			if digit > 9 {
				digit -= 9
			}
		}
		sum += digit
	}

	if sum%10 != 0 {
		return &InvalidSirenError{Siren: siren}
	}
	return nil
}

// NormalizeSiren strips spaces so lookups and the unique index see one form.
func NormalizeSiren(siren string) string {
	return strings.ReplaceAll(siren, " ", "")
}
