package member

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sacco/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// PolicyStatus represents the insurance policy lifecycle state
type PolicyStatus string

const (
	PolicyStatusActive    PolicyStatus = "ACTIVE"
	PolicyStatusLapsed    PolicyStatus = "LAPSED"
	PolicyStatusCancelled PolicyStatus = "CANCELLED"
)

// IsValid checks if the status is a valid PolicyStatus
func (s PolicyStatus) IsValid() bool {
	switch s {
	case PolicyStatusActive, PolicyStatusLapsed, PolicyStatusCancelled:
		return true
	}
	return false
}

// InsurancePolicy is a member's insurance sub-ledger. Deduction
// postings accumulate the premiums paid against it.
type InsurancePolicy struct {
	shared.TenantAggregateRoot
	MemberID       uuid.UUID       `json:"member_id"`
	PolicyNumber   string          `json:"policy_number"`
	MonthlyPremium decimal.Decimal `json:"monthly_premium"`
	PremiumsPaid   decimal.Decimal `json:"premiums_paid"`
	Status         PolicyStatus    `json:"status"`
	LastPremiumAt  *time.Time      `json:"last_premium_at"`
}

// NewInsurancePolicy creates an active policy with no premiums paid
func NewInsurancePolicy(tenantID, memberID uuid.UUID, policyNumber string, premium decimal.Decimal) (*InsurancePolicy, error) {
	if premium.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_POLICY", "Monthly premium must be positive")
	}
	return &InsurancePolicy{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		MemberID:            memberID,
		PolicyNumber:        policyNumber,
		MonthlyPremium:      premium,
		PremiumsPaid:        decimal.Zero,
		Status:              PolicyStatusActive,
	}, nil
}

// IsActive reports whether premiums can still be applied
func (p *InsurancePolicy) IsActive() bool {
	return p.Status == PolicyStatusActive
}

// ApplyPremium accumulates a posted premium payment
func (p *InsurancePolicy) ApplyPremium(amount decimal.Decimal) error {
	if !p.IsActive() {
		return shared.NewDomainError("POLICY_NOT_ACTIVE",
			fmt.Sprintf("Cannot apply premium to policy in %s status", p.Status))
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_AMOUNT", "Premium must be positive")
	}
	now := time.Now()
	p.PremiumsPaid = p.PremiumsPaid.Add(amount)
	p.LastPremiumAt = &now
	p.UpdatedAt = now
	return nil
}
