package deduction

import (
	"context"

	"github.com/google/uuid"
	"github.com/sacco/backend/internal/domain/shared"
)

// BatchRepository persists reconciliation batches
type BatchRepository interface {
	// Create inserts a new batch. Returns shared.ErrAlreadyExists when a
	// batch with the same batch number already exists for the tenant.
	Create(ctx context.Context, batch *ReconciliationBatch) error
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*ReconciliationBatch, error)
	FindByBatchNumber(ctx context.Context, tenantID uuid.UUID, batchNumber string) (*ReconciliationBatch, error)
	// SaveWithLock updates the batch using optimistic locking. Returns
	// shared.ErrConcurrencyConflict when the stored version differs.
	SaveWithLock(ctx context.Context, batch *ReconciliationBatch) error
	List(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (*shared.Paginated[*ReconciliationBatch], error)
}

// ItemRepository persists reconciliation items
type ItemRepository interface {
	CreateBatch(ctx context.Context, items []*ReconciliationItem) error
	FindByID(ctx context.Context, id uuid.UUID) (*ReconciliationItem, error)
	FindByBatch(ctx context.Context, batchID uuid.UUID) ([]*ReconciliationItem, error)
	FindPostable(ctx context.Context, batchID uuid.UUID) ([]*ReconciliationItem, error)
	// ClaimForPosting flips the journal-posted flag if and only if it is
	// still unset, returning shared.ErrAlreadyPosted when another worker
	// got there first.
	ClaimForPosting(ctx context.Context, id uuid.UUID) error
	Update(ctx context.Context, item *ReconciliationItem) error
}

// SuspenseRepository persists suspense entries
type SuspenseRepository interface {
	Create(ctx context.Context, entry *SuspenseEntry) error
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*SuspenseEntry, error)
	SaveWithLock(ctx context.Context, entry *SuspenseEntry) error
	List(ctx context.Context, tenantID uuid.UUID, status *SuspenseStatus, filter shared.Filter) (*shared.Paginated[*SuspenseEntry], error)
}

// RequestRepository reads submitted deduction requests and their lines.
// The reconciliation engine never writes request data.
type RequestRepository interface {
	FindByPeriod(ctx context.Context, tenantID uuid.UUID, year, month int) (*DeductionRequest, error)
	FindItems(ctx context.Context, requestID uuid.UUID) ([]DeductionItem, error)
}
