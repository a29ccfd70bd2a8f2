package member

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sacco/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// TransactionType classifies a member ledger transaction
type TransactionType string

const (
	TransactionTypeDeduction          TransactionType = "PAYROLL_DEDUCTION"
	TransactionTypeSuspenseAllocation TransactionType = "SUSPENSE_ALLOCATION"
)

// IsValid checks if the type is a valid TransactionType
func (t TransactionType) IsValid() bool {
	switch t {
	case TransactionTypeDeduction, TransactionTypeSuspenseAllocation:
		return true
	}
	return false
}

// Transaction is the member-level audit record of a posted deduction
// or suspense allocation.
type Transaction struct {
	shared.BaseEntity
	TenantID          uuid.UUID       `json:"tenant_id"`
	MemberID          uuid.UUID       `json:"member_id"`
	TransactionNumber string          `json:"transaction_number"`
	Type              TransactionType `json:"type"`
	Amount            decimal.Decimal `json:"amount"`
	SavingsPortion    decimal.Decimal `json:"savings_portion"`
	LoanPortion       decimal.Decimal `json:"loan_portion"`
	InsurancePortion  decimal.Decimal `json:"insurance_portion"`
	BatchID           *uuid.UUID      `json:"batch_id"`
	ItemID            *uuid.UUID      `json:"item_id"`
	Description       string          `json:"description"`
	PostedAt          time.Time       `json:"posted_at"`
}

// NewTransactionNumber derives the deduction transaction number for a
// member and payroll period, e.g. DED-SC0042-202501.
func NewTransactionNumber(memberNumber string, year, month int) string {
	return fmt.Sprintf("DED-%s-%04d%02d", memberNumber, year, month)
}

// NewDeductionTransaction creates the audit record for one posted
// reconciliation item.
func NewDeductionTransaction(tenantID, memberID uuid.UUID, memberNumber string, year, month int,
	amount, savings, loan, insurance decimal.Decimal, batchID, itemID uuid.UUID) *Transaction {
	return &Transaction{
		BaseEntity:        shared.NewBaseEntity(),
		TenantID:          tenantID,
		MemberID:          memberID,
		TransactionNumber: NewTransactionNumber(memberNumber, year, month),
		Type:              TransactionTypeDeduction,
		Amount:            amount,
		SavingsPortion:    savings,
		LoanPortion:       loan,
		InsurancePortion:  insurance,
		BatchID:           &batchID,
		ItemID:            &itemID,
		Description:       fmt.Sprintf("Payroll deduction for %04d-%02d", year, month),
		PostedAt:          time.Now(),
	}
}
