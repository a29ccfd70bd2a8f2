package member

import (
	"time"

	"github.com/google/uuid"
	"github.com/sacco/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// SavingsStatus represents the lifecycle state of a savings account
type SavingsStatus string

const (
	SavingsStatusActive SavingsStatus = "ACTIVE"
	SavingsStatusClosed SavingsStatus = "CLOSED"
)

// SavingsAccount is one of a member's contribution sub-ledgers. The
// configured monthly contribution lives here, not on the member, so
// each account accrues its own share of a posted deduction. Deduction
// postings only ever credit it.
type SavingsAccount struct {
	shared.TenantAggregateRoot
	MemberID            uuid.UUID       `json:"member_id"`
	AccountNumber       string          `json:"account_number"`
	Balance             decimal.Decimal `json:"balance"`
	MonthlyContribution decimal.Decimal `json:"monthly_contribution"`
	Status              SavingsStatus   `json:"status"`
	LastCreditAt        *time.Time      `json:"last_credit_at"`
}

// NewSavingsAccount creates an active savings account with zero balance
func NewSavingsAccount(tenantID, memberID uuid.UUID, accountNumber string, contribution decimal.Decimal) *SavingsAccount {
	return &SavingsAccount{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		MemberID:            memberID,
		AccountNumber:       accountNumber,
		Balance:             decimal.Zero,
		MonthlyContribution: contribution,
		Status:              SavingsStatusActive,
	}
}

// IsActive reports whether the account can receive postings
func (a *SavingsAccount) IsActive() bool {
	return a.Status == SavingsStatusActive
}

// Credit adds a posted contribution to the balance
func (a *SavingsAccount) Credit(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_AMOUNT", "Credit amount must be positive")
	}
	now := time.Now()
	a.Balance = a.Balance.Add(amount)
	a.LastCreditAt = &now
	a.UpdatedAt = now
	return nil
}
