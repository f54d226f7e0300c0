// internal/models/requirements.go
package models

import (
	"time"
)

// DocumentRequirement is one entry of the static vigilance catalogue: which
// document type a third-party type must provide, and for how long a validated
// instance stays valid. ValidityMonths == 0 means the document never expires.
type DocumentRequirement struct {
	DocumentType   DocumentType
	ValidityMonths int
	Mandatory      bool
}

var freelanceRequirements = []DocumentRequirement{
	{DocumentType: DocumentTypeKbis, ValidityMonths: 3, Mandatory: true},
	{DocumentType: DocumentTypeUrssaf, ValidityMonths: 6, Mandatory: true},
	{DocumentType: DocumentTypeFiscal, ValidityMonths: 12, Mandatory: true},
	{DocumentType: DocumentTypeRCPro, ValidityMonths: 12, Mandatory: true},
	{DocumentType: DocumentTypeSocialSecurity, ValidityMonths: 6, Mandatory: true},
	{DocumentType: DocumentTypeIDCard, ValidityMonths: 0, Mandatory: true},
	{DocumentType: DocumentTypeRIB, ValidityMonths: 0, Mandatory: true},
}

var subcontractorRequirements = append(append([]DocumentRequirement{}, freelanceRequirements...),
	DocumentRequirement{DocumentType: DocumentTypeForeignWorkers, ValidityMonths: 6, Mandatory: true},
)

// RequirementsForType returns the vigilance catalogue for a third-party type.
// Employees are out of document scope entirely.
func RequirementsForType(t ThirdPartyType) []DocumentRequirement {
	switch t {
	case ThirdPartyTypeFreelance:
		return freelanceRequirements
	case ThirdPartyTypeSubcontractor:
		return subcontractorRequirements
	default:
		return nil
	}
}

// RequirementFor looks up the catalogue entry for one document type.
func RequirementFor(t ThirdPartyType, dt DocumentType) (DocumentRequirement, bool) {
	for _, req := range RequirementsForType(t) {
		if req.DocumentType == dt {
			return req, true
		}
	}
	return DocumentRequirement{}, false
}

// ExpiryFor computes the expiry timestamp of a document validated now.
// Returns nil for types without a validity period (RIB, ID card).
func ExpiryFor(t ThirdPartyType, dt DocumentType, validatedAt time.Time) *time.Time {
	req, ok := RequirementFor(t, dt)
	if !ok || req.ValidityMonths == 0 {
		return nil
	}
	expires := validatedAt.Add(time.Duration(req.ValidityMonths) * 30 * 24 * time.Hour)
	return &expires
}

// ComputeComplianceStatus derives the aggregate compliance status of a third
// party from its document set. Pure function: only the latest document per
// type is considered, and the highest-severity flag wins
// (missing_or_invalid > expiring > compliant).
func ComputeComplianceStatus(t ThirdPartyType, docs []VigilanceDocument) ComplianceStatus {
	requirements := RequirementsForType(t)
	if len(requirements) == 0 {
		return ComplianceStatusCompliant
	}

	latest := latestDocumentPerType(docs)

	var missingOrInvalid, expiring bool
	for _, req := range requirements {
		if !req.Mandatory {
			continue
		}
		doc, ok := latest[req.DocumentType]
		if !ok {
			missingOrInvalid = true
			continue
		}
		switch doc.Status {
		case DocumentStatusValidated:
			// satisfied
		case DocumentStatusExpiringSoon:
			expiring = true
		default:
			// REQUESTED, RECEIVED, REJECTED, EXPIRED all count as not yet
			// compliant: a document pending staff review is not sufficient.
			missingOrInvalid = true
		}
	}

	if missingOrInvalid {
		return ComplianceStatusNonCompliant
	}
	if expiring {
		return ComplianceStatusExpiringSoon
	}
	return ComplianceStatusCompliant
}

func latestDocumentPerType(docs []VigilanceDocument) map[DocumentType]VigilanceDocument {
	latest := make(map[DocumentType]VigilanceDocument, len(docs))
	for _, doc := range docs {
		current, ok := latest[doc.DocumentType]
		if !ok || doc.CreatedAt.After(current.CreatedAt) || doc.CreatedAt.Equal(current.CreatedAt) {
			latest[doc.DocumentType] = doc
		}
	}
	return latest
}
