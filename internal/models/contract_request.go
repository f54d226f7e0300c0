// internal/models/contract_request.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// ContractRequest is one pass through the contract pipeline for a single CRM
// positioning. At most one non-cancelled request may reference a positioning;
// that rule lives in a status-filtered unique index at the persistence
// boundary, not in the state machine.
type ContractRequest struct {
	BaseModel
	PositioningID      string                `json:"positioning_id" gorm:"size:64;not null;index"`
	Status             ContractRequestStatus `json:"status" gorm:"type:varchar(40);default:'pending_commercial_validation';index"`
	ThirdPartyID       *uuid.UUID            `json:"third_party_id" gorm:"type:uuid;index"`
	ThirdPartyType     ThirdPartyType        `json:"third_party_type,omitempty" gorm:"type:varchar(20)"`
	DailyRate          *float64              `json:"daily_rate,omitempty"`
	StartDate          *time.Time            `json:"start_date,omitempty"`
	EndDate            *time.Time            `json:"end_date,omitempty"`
	CommercialEmail    string                `json:"commercial_email,omitempty" gorm:"size:255"`
	ContractConfig     JSONB                 `json:"contract_config,omitempty" gorm:"type:jsonb"`
	ComplianceOverride bool                  `json:"compliance_override" gorm:"default:false"`
	OverrideReason     string                `json:"override_reason,omitempty" gorm:"type:text"`
	ValidatedAt        *time.Time            `json:"validated_at"`

	// Relationships
	ThirdParty *ThirdParty `json:"third_party,omitempty" gorm:"foreignKey:ThirdPartyID"`
	Contracts  []Contract  `json:"contracts,omitempty" gorm:"foreignKey:ContractRequestID"`
}

// TransitionTo validates the move against the pipeline table before mutating.
func (r *ContractRequest) TransitionTo(target ContractRequestStatus) error {
	if !CanTransitionContract(r.Status, target) {
		return &InvalidContractStatusError{From: r.Status, To: target}
	}
	r.Status = target
	return nil
}

// CommercialTerms carries the fields set by commercial validation.
type CommercialTerms struct {
	Type            ThirdPartyType
	DailyRate       *float64
	StartDate       *time.Time
	EndDate         *time.Time
	CommercialEmail string
}

// ApplyCommercialTerms records the commercial data and moves the request to
// COMMERCIAL_VALIDATED. Employee-type requests must go through
// RedirectToPayfit instead.
func (r *ContractRequest) ApplyCommercialTerms(terms CommercialTerms) error {
	if err := r.TransitionTo(ContractStatusCommercialValidated); err != nil {
		return err
	}
	now := time.Now()
	r.ThirdPartyType = terms.Type
	r.DailyRate = terms.DailyRate
	r.StartDate = terms.StartDate
	r.EndDate = terms.EndDate
	r.CommercialEmail = terms.CommercialEmail
	r.ValidatedAt = &now
	return nil
}

// RedirectToPayfit short-circuits the pipeline for employee hires, which are
// handed off to the payroll tool and never touch vigilance or contract
// generation.
func (r *ContractRequest) RedirectToPayfit(terms CommercialTerms) error {
	if err := r.TransitionTo(ContractStatusRedirectedPayfit); err != nil {
		return err
	}
	now := time.Now()
	r.ThirdPartyType = terms.Type
	r.CommercialEmail = terms.CommercialEmail
	r.ValidatedAt = &now
	return nil
}
