package deduction

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sacco/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ReconciliationStatus represents the lifecycle state of a reconciliation batch
type ReconciliationStatus string

const (
	ReconciliationStatusInProgress ReconciliationStatus = "IN_PROGRESS"
	ReconciliationStatusCompleted  ReconciliationStatus = "COMPLETED"
	ReconciliationStatusPosted     ReconciliationStatus = "POSTED"
)

// IsValid checks if the status is a valid ReconciliationStatus
func (s ReconciliationStatus) IsValid() bool {
	switch s {
	case ReconciliationStatusInProgress, ReconciliationStatusCompleted, ReconciliationStatusPosted:
		return true
	}
	return false
}

// ReconciliationBatch is the aggregate root for one reconciliation run
// of a payroll month. One batch exists per tenant and period; rerunning
// the same period is rejected by the unique batch number.
type ReconciliationBatch struct {
	shared.TenantAggregateRoot
	BatchNumber    string               `json:"batch_number"`
	Month          int                  `json:"month"`
	Year           int                  `json:"year"`
	Status         ReconciliationStatus `json:"status"`
	TotalExpected  decimal.Decimal      `json:"total_expected"`
	TotalActual    decimal.Decimal      `json:"total_actual"`
	TotalVariance  decimal.Decimal      `json:"total_variance"`
	MatchedCount   int                  `json:"matched_count"`
	VarianceCount  int                  `json:"variance_count"`
	MissingCount   int                  `json:"missing_count"`
	OrphanCount    int                  `json:"orphan_count"`
	JournalsPosted bool                 `json:"journals_posted"`
	PostedAt       *time.Time           `json:"posted_at"`
	CompletedAt    *time.Time           `json:"completed_at"`
}

// NewBatchNumber derives the deterministic batch number for a tenant
// and payroll period, e.g. REC-a1b2c3d4-202501.
func NewBatchNumber(tenantID uuid.UUID, year, month int) string {
	short := strings.ReplaceAll(tenantID.String(), "-", "")[:8]
	return fmt.Sprintf("REC-%s-%04d%02d", short, year, month)
}

// NewReconciliationBatch creates a batch in progress for the given period
func NewReconciliationBatch(tenantID uuid.UUID, year, month int) (*ReconciliationBatch, error) {
	if month < 1 || month > 12 {
		return nil, shared.NewDomainError("INVALID_PERIOD", fmt.Sprintf("Month %d is out of range", month))
	}
	if year < 2000 || year > 2100 {
		return nil, shared.NewDomainError("INVALID_PERIOD", fmt.Sprintf("Year %d is out of range", year))
	}
	return &ReconciliationBatch{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		BatchNumber:         NewBatchNumber(tenantID, year, month),
		Month:               month,
		Year:                year,
		Status:              ReconciliationStatusInProgress,
		TotalExpected:       decimal.Zero,
		TotalActual:         decimal.Zero,
		TotalVariance:       decimal.Zero,
	}, nil
}

// ApplySummary records the aggregate counters and totals of a finished
// matching pass and moves the batch to COMPLETED.
func (b *ReconciliationBatch) ApplySummary(s MatchSummary) error {
	if b.Status != ReconciliationStatusInProgress {
		return shared.NewDomainError("INVALID_STATUS_TRANSITION",
			fmt.Sprintf("Cannot complete batch in %s status", b.Status))
	}
	now := time.Now()
	b.TotalExpected = s.TotalExpected
	b.TotalActual = s.TotalActual
	b.TotalVariance = s.TotalVariance
	b.MatchedCount = s.MatchedCount
	b.VarianceCount = s.VarianceCount
	b.MissingCount = s.MissingCount
	b.OrphanCount = s.OrphanCount
	b.Status = ReconciliationStatusCompleted
	b.CompletedAt = &now
	b.UpdatedAt = now
	return nil
}

// MarkJournalsPosted flips the batch-level posted flag after the
// journal poster has worked through every postable item. A batch can
// be posted at most once.
func (b *ReconciliationBatch) MarkJournalsPosted() error {
	if b.JournalsPosted {
		return shared.ErrAlreadyPosted
	}
	if b.Status != ReconciliationStatusCompleted {
		return shared.NewDomainError("INVALID_STATUS_TRANSITION",
			fmt.Sprintf("Cannot post journals for batch in %s status", b.Status))
	}
	now := time.Now()
	b.JournalsPosted = true
	b.Status = ReconciliationStatusPosted
	b.PostedAt = &now
	b.UpdatedAt = now
	return nil
}
