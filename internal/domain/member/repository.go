package member

import (
	"context"

	"github.com/google/uuid"
)

// Repository persists members
type Repository interface {
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Member, error)
	FindByIdentity(ctx context.Context, tenantID uuid.UUID, employeeNumber, nationalID string) (*Member, error)
	Create(ctx context.Context, m *Member) error
}

// SavingsRepository persists savings accounts. A member can hold
// several accounts; listings return them oldest first and never error
// on an empty result.
type SavingsRepository interface {
	ListActiveByMember(ctx context.Context, tenantID, memberID uuid.UUID) ([]*SavingsAccount, error)
	Create(ctx context.Context, a *SavingsAccount) error
	SaveWithLock(ctx context.Context, a *SavingsAccount) error
}

// LoanRepository persists loans
type LoanRepository interface {
	ListActiveByMember(ctx context.Context, tenantID, memberID uuid.UUID) ([]*Loan, error)
	Create(ctx context.Context, l *Loan) error
	SaveWithLock(ctx context.Context, l *Loan) error
}

// PolicyRepository persists insurance policies
type PolicyRepository interface {
	ListActiveByMember(ctx context.Context, tenantID, memberID uuid.UUID) ([]*InsurancePolicy, error)
	Create(ctx context.Context, p *InsurancePolicy) error
	SaveWithLock(ctx context.Context, p *InsurancePolicy) error
}

// TransactionRepository persists member transactions
type TransactionRepository interface {
	Create(ctx context.Context, tx *Transaction) error
	FindByMember(ctx context.Context, tenantID, memberID uuid.UUID) ([]*Transaction, error)
}
