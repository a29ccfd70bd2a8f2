package deduction

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sacco/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// SuspenseStatus represents the resolution state of a suspense entry
type SuspenseStatus string

const (
	SuspenseStatusPending    SuspenseStatus = "PENDING"
	SuspenseStatusAllocated  SuspenseStatus = "ALLOCATED"
	SuspenseStatusRefunded   SuspenseStatus = "REFUNDED"
	SuspenseStatusWrittenOff SuspenseStatus = "WRITTEN_OFF"
)

// IsValid checks if the status is a valid SuspenseStatus
func (s SuspenseStatus) IsValid() bool {
	switch s {
	case SuspenseStatusPending, SuspenseStatusAllocated, SuspenseStatusRefunded, SuspenseStatusWrittenOff:
		return true
	}
	return false
}

// IsResolved reports whether the entry has left the pending state
func (s SuspenseStatus) IsResolved() bool {
	return s != SuspenseStatusPending
}

// SuspenseEntry holds money received from the payroll authority that
// could not be attributed to any requested deduction. It stays pending
// until an officer allocates it to a member, refunds it to the
// employer, or writes it off.
type SuspenseEntry struct {
	shared.TenantAggregateRoot
	Reference       string          `json:"reference"`
	BatchID         uuid.UUID       `json:"batch_id"`
	MemberID        *uuid.UUID      `json:"member_id"`
	Amount          decimal.Decimal `json:"amount"`
	EmployeeNumber  string          `json:"employee_number"`
	NationalID      string          `json:"national_id"`
	SourceReference string          `json:"source_reference"`
	Status          SuspenseStatus  `json:"status"`
	AllocatedTo     *uuid.UUID      `json:"allocated_to"`
	ResolutionNotes string          `json:"resolution_notes"`
	ResolvedAt      *time.Time      `json:"resolved_at"`
}

// NewSuspenseReference derives a suspense reference from the payroll
// period and the creation instant, e.g. SUSP-202501-834712.
func NewSuspenseReference(year, month int, at time.Time) string {
	return fmt.Sprintf("SUSP-%04d%02d-%06d", year, month, at.UnixMilli()%1000000)
}

// NewSuspenseEntry creates a pending suspense entry for an orphan settlement record
func NewSuspenseEntry(tenantID, batchID uuid.UUID, year, month int, rec SettlementRecord) (*SuspenseEntry, error) {
	if rec.DeductedAmount.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Suspense amount must be positive")
	}
	return &SuspenseEntry{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Reference:           NewSuspenseReference(year, month, time.Now()),
		BatchID:             batchID,
		Amount:              rec.DeductedAmount,
		EmployeeNumber:      rec.EmployeeNumber,
		NationalID:          rec.NationalID,
		SourceReference:     rec.MemberNumber,
		Status:              SuspenseStatusPending,
	}, nil
}

// DaysInSuspense counts whole days the entry has been waiting for
// resolution, measured against now for pending entries and against
// the resolution time otherwise.
func (e *SuspenseEntry) DaysInSuspense(now time.Time) int {
	end := now
	if e.ResolvedAt != nil {
		end = *e.ResolvedAt
	}
	d := int(end.Sub(e.CreatedAt).Hours() / 24)
	if d < 0 {
		return 0
	}
	return d
}

// Allocate attributes the suspended money to a member account
func (e *SuspenseEntry) Allocate(memberID uuid.UUID, notes string) error {
	if err := e.ensurePending("allocate"); err != nil {
		return err
	}
	now := time.Now()
	e.Status = SuspenseStatusAllocated
	e.AllocatedTo = &memberID
	e.ResolutionNotes = notes
	e.ResolvedAt = &now
	e.UpdatedAt = now
	return nil
}

// Refund marks the entry as returned to the employer
func (e *SuspenseEntry) Refund(notes string) error {
	if err := e.ensurePending("refund"); err != nil {
		return err
	}
	now := time.Now()
	e.Status = SuspenseStatusRefunded
	e.ResolutionNotes = notes
	e.ResolvedAt = &now
	e.UpdatedAt = now
	return nil
}

// WriteOff closes the entry without recovering the money. A note
// explaining the decision is required.
func (e *SuspenseEntry) WriteOff(notes string) error {
	if notes == "" {
		return shared.NewDomainError("NOTES_REQUIRED", "Write-off requires resolution notes")
	}
	if err := e.ensurePending("write off"); err != nil {
		return err
	}
	now := time.Now()
	e.Status = SuspenseStatusWrittenOff
	e.ResolutionNotes = notes
	e.ResolvedAt = &now
	e.UpdatedAt = now
	return nil
}

func (e *SuspenseEntry) ensurePending(action string) error {
	if e.Status.IsResolved() {
		return shared.NewDomainError("ALREADY_RESOLVED",
			fmt.Sprintf("Cannot %s suspense entry in %s status", action, e.Status))
	}
	return nil
}
