package deduction

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sacco/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// DeductionRequestStatus represents the lifecycle of a deduction request
type DeductionRequestStatus string

const (
	DeductionRequestStatusDraft      DeductionRequestStatus = "DRAFT"
	DeductionRequestStatusSubmitted  DeductionRequestStatus = "SUBMITTED"
	DeductionRequestStatusProcessing DeductionRequestStatus = "PROCESSING"
	DeductionRequestStatusCompleted  DeductionRequestStatus = "COMPLETED"
	DeductionRequestStatusFailed     DeductionRequestStatus = "FAILED"
)

// IsValid checks if the status is a valid DeductionRequestStatus
func (s DeductionRequestStatus) IsValid() bool {
	switch s {
	case DeductionRequestStatusDraft, DeductionRequestStatusSubmitted,
		DeductionRequestStatusProcessing, DeductionRequestStatusCompleted,
		DeductionRequestStatusFailed:
		return true
	}
	return false
}

// DeductionRequest is the demand-side submission the institution sent
// to the payroll authority. The reconciliation engine only reads it;
// generation is owned by the demand-side subsystem.
type DeductionRequest struct {
	shared.TenantAggregateRoot
	BatchNumber  string                 `json:"batch_number"`
	Month        int                    `json:"month"`
	Year         int                    `json:"year"`
	TotalMembers int                    `json:"total_members"`
	TotalAmount  decimal.Decimal        `json:"total_amount"`
	Status       DeductionRequestStatus `json:"status"`
	SubmittedAt  *time.Time             `json:"submitted_at"`
}

// AllocationBreakdown describes how a requested deduction splits across
// the member sub-ledgers. Stored as JSONB alongside the line item.
type AllocationBreakdown struct {
	Savings       decimal.Decimal `json:"savings"`
	LoanRepayment decimal.Decimal `json:"loan_repayment"`
	Insurance     decimal.Decimal `json:"insurance"`
}

// HasSavings reports whether any amount is allocated to savings
func (b AllocationBreakdown) HasSavings() bool {
	return b.Savings.IsPositive()
}

// HasLoanRepayment reports whether any amount is allocated to loan repayment
func (b AllocationBreakdown) HasLoanRepayment() bool {
	return b.LoanRepayment.IsPositive()
}

// HasInsurance reports whether any amount is allocated to insurance
func (b AllocationBreakdown) HasInsurance() bool {
	return b.Insurance.IsPositive()
}

// Value implements driver.Valuer for JSONB storage
func (b AllocationBreakdown) Value() (driver.Value, error) {
	return json.Marshal(b)
}

// Scan implements sql.Scanner for JSONB retrieval
func (b *AllocationBreakdown) Scan(value interface{}) error {
	if value == nil {
		*b = AllocationBreakdown{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("failed to scan AllocationBreakdown: unsupported type")
	}

	if len(bytes) == 0 {
		*b = AllocationBreakdown{}
		return nil
	}

	return json.Unmarshal(bytes, b)
}

// DeductionItem is one member-level line of a submitted deduction
// request: the amount the institution asked the payroll authority to
// withhold, plus the sub-ledger breakdown. Immutable once submitted.
type DeductionItem struct {
	shared.BaseEntity
	RequestID      uuid.UUID           `json:"request_id"`
	MemberID       uuid.UUID           `json:"member_id"`
	MemberNumber   string              `json:"member_number"`
	NationalID     string              `json:"national_id"`
	EmployeeNumber string              `json:"employee_number"`
	Amount         decimal.Decimal     `json:"amount"`
	Breakdown      AllocationBreakdown `json:"breakdown"`
}

// Matches reports whether a settlement record identifies this line,
// in the matching key priority order: employee number first, national
// ID second. Blank identifiers never match.
func (i *DeductionItem) Matches(rec SettlementRecord) bool {
	return rec.IdentityMatches(i.EmployeeNumber, i.NationalID)
}
