package member

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sacco/backend/internal/domain/shared"
	"github.com/sacco/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// LoanStatus represents the loan lifecycle state
type LoanStatus string

const (
	LoanStatusActive    LoanStatus = "ACTIVE"
	LoanStatusClosed    LoanStatus = "CLOSED"
	LoanStatusDefaulted LoanStatus = "DEFAULTED"
)

// IsValid checks if the status is a valid LoanStatus
func (s LoanStatus) IsValid() bool {
	switch s {
	case LoanStatusActive, LoanStatusClosed, LoanStatusDefaulted:
		return true
	}
	return false
}

// Loan is a member's loan sub-ledger. Deduction postings reduce the
// outstanding balance by the monthly installment; the loan closes when
// the residual falls within a cent of zero.
type Loan struct {
	shared.TenantAggregateRoot
	MemberID           uuid.UUID       `json:"member_id"`
	LoanNumber         string          `json:"loan_number"`
	PrincipalAmount    decimal.Decimal `json:"principal_amount"`
	OutstandingBalance decimal.Decimal `json:"outstanding_balance"`
	MonthlyInstallment decimal.Decimal `json:"monthly_installment"`
	Status             LoanStatus      `json:"status"`
	ClosedAt           *time.Time      `json:"closed_at"`
}

// NewLoan creates an active loan with the full principal outstanding
func NewLoan(tenantID, memberID uuid.UUID, loanNumber string, principal, installment decimal.Decimal) (*Loan, error) {
	if principal.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_LOAN", "Principal must be positive")
	}
	if installment.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_LOAN", "Monthly installment must be positive")
	}
	return &Loan{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		MemberID:            memberID,
		LoanNumber:          loanNumber,
		PrincipalAmount:     principal,
		OutstandingBalance:  principal,
		MonthlyInstallment:  installment,
		Status:              LoanStatusActive,
	}, nil
}

// IsActive reports whether installments can still be applied
func (l *Loan) IsActive() bool {
	return l.Status == LoanStatusActive
}

// ApplyInstallment reduces the outstanding balance by a posted
// repayment. The loan closes when the residual balance is within a
// cent of zero; the residual is forgiven rather than carried.
func (l *Loan) ApplyInstallment(amount decimal.Decimal) error {
	if !l.IsActive() {
		return shared.NewDomainError("LOAN_NOT_ACTIVE",
			fmt.Sprintf("Cannot apply installment to loan in %s status", l.Status))
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_AMOUNT", "Installment must be positive")
	}
	now := time.Now()
	l.OutstandingBalance = l.OutstandingBalance.Sub(amount)
	if l.OutstandingBalance.LessThanOrEqual(valueobject.CentTolerance) {
		l.OutstandingBalance = decimal.Zero
		l.Status = LoanStatusClosed
		l.ClosedAt = &now
	}
	l.UpdatedAt = now
	return nil
}
