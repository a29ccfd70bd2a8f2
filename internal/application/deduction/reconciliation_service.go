package deduction

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sacco/backend/internal/domain/deduction"
	"github.com/sacco/backend/internal/domain/member"
	"github.com/sacco/backend/internal/domain/shared"
	"github.com/sacco/backend/internal/infrastructure/telemetry"
)

// ReconciliationService runs the monthly reconciliation of a payroll
// settlement file against the submitted deduction request.
type ReconciliationService struct {
	batchRepo    deduction.BatchRepository
	itemRepo     deduction.ItemRepository
	suspenseRepo deduction.SuspenseRepository
	requestRepo  deduction.RequestRepository
	memberRepo   member.Repository
	matcher      *deduction.Matcher
	txManager    shared.TransactionManager
}

// NewReconciliationService creates a new ReconciliationService
func NewReconciliationService(
	batchRepo deduction.BatchRepository,
	itemRepo deduction.ItemRepository,
	suspenseRepo deduction.SuspenseRepository,
	requestRepo deduction.RequestRepository,
	memberRepo member.Repository,
	txManager shared.TransactionManager,
) *ReconciliationService {
	return &ReconciliationService{
		batchRepo:    batchRepo,
		itemRepo:     itemRepo,
		suspenseRepo: suspenseRepo,
		requestRepo:  requestRepo,
		memberRepo:   memberRepo,
		matcher:      deduction.NewMatcher(),
		txManager:    txManager,
	}
}

// ReconcileCommand carries one reconciliation run request
type ReconcileCommand struct {
	TenantID uuid.UUID
	Year     int
	Month    int
	Records  []deduction.SettlementRecord
}

// ReconcileResult is the outcome of one reconciliation run
type ReconcileResult struct {
	Batch           *deduction.ReconciliationBatch  `json:"batch"`
	Items           []*deduction.ReconciliationItem `json:"items"`
	SuspenseEntries []*deduction.SuspenseEntry      `json:"suspense_entries"`
}

// Reconcile matches the settlement records against the period's
// submitted deduction request and persists the batch, its items and
// any suspense entries in one transaction. Running the same period
// twice fails with shared.ErrAlreadyExists.
func (s *ReconciliationService) Reconcile(ctx context.Context, cmd ReconcileCommand) (*ReconcileResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "reconciliation", "run")
	defer span.End()

	telemetry.SetAttributes(span,
		telemetry.SpanAttrTenantID, cmd.TenantID.String(),
		telemetry.SpanAttrPeriod, fmt.Sprintf("%04d-%02d", cmd.Year, cmd.Month),
		telemetry.SpanAttrRowCount, len(cmd.Records),
	)

	if len(cmd.Records) == 0 {
		err := shared.NewDomainError("NO_SETTLEMENT_RECORDS", "Settlement file produced no usable records")
		telemetry.RecordError(span, err)
		return nil, err
	}

	request, err := s.requestRepo.FindByPeriod(ctx, cmd.TenantID, cmd.Year, cmd.Month)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to load deduction request: %w", err)
	}
	if request.Status == deduction.DeductionRequestStatusDraft {
		err := shared.NewDomainError("REQUEST_NOT_SUBMITTED",
			"Deduction request for this period has not been submitted")
		telemetry.RecordError(span, err)
		return nil, err
	}

	requested, err := s.requestRepo.FindItems(ctx, request.ID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to load deduction items: %w", err)
	}

	batch, err := deduction.NewReconciliationBatch(cmd.TenantID, cmd.Year, cmd.Month)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	telemetry.SetAttribute(span, telemetry.SpanAttrBatchNumber, batch.BatchNumber)

	match := s.matcher.Match(batch.ID, requested, cmd.Records)
	if err := batch.ApplySummary(match.Summary); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if err := s.resolveOrphanMembers(ctx, cmd.TenantID, match.Items); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	suspense, err := s.buildSuspenseEntries(batch, match.Items)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	err = s.txManager.WithinTransaction(ctx, func(txCtx context.Context) error {
		if err := s.batchRepo.Create(txCtx, batch); err != nil {
			return err
		}
		if err := s.itemRepo.CreateBatch(txCtx, match.Items); err != nil {
			return err
		}
		for _, entry := range suspense {
			if err := s.suspenseRepo.Create(txCtx, entry); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	telemetry.AddEvent(span, "reconciliation_completed",
		"matched", match.Summary.MatchedCount,
		"variance", match.Summary.VarianceCount,
		"missing", match.Summary.MissingCount,
		"orphan", match.Summary.OrphanCount,
	)

	return &ReconcileResult{
		Batch:           batch,
		Items:           match.Items,
		SuspenseEntries: suspense,
	}, nil
}

// resolveOrphanMembers looks the registry up for each orphan item by
// the identity the settlement record carried. A member who is found is
// linked on the item; an unknown identity simply stays unlinked.
func (s *ReconciliationService) resolveOrphanMembers(ctx context.Context, tenantID uuid.UUID, items []*deduction.ReconciliationItem) error {
	for _, item := range items {
		if item.MatchStatus != deduction.MatchStatusOrphanInMoF || item.MemberID != nil {
			continue
		}
		if item.EmployeeNumber == "" && item.NationalID == "" {
			continue
		}
		m, err := s.memberRepo.FindByIdentity(ctx, tenantID, item.EmployeeNumber, item.NationalID)
		if errors.Is(err, shared.ErrNotFound) {
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to resolve orphan member: %w", err)
		}
		memberID := m.ID
		item.MemberID = &memberID
	}
	return nil
}

// buildSuspenseEntries opens one pending suspense entry per orphan
// item. Zero-amount orphans stay visible as reconciliation items but
// hold no money, so no entry is opened for them.
func (s *ReconciliationService) buildSuspenseEntries(
	batch *deduction.ReconciliationBatch,
	items []*deduction.ReconciliationItem,
) ([]*deduction.SuspenseEntry, error) {
	var entries []*deduction.SuspenseEntry
	for _, item := range items {
		if item.MatchStatus != deduction.MatchStatusOrphanInMoF {
			continue
		}
		if !item.ActualAmount.IsPositive() {
			continue
		}
		entry, err := deduction.NewSuspenseEntry(batch.TenantID, batch.ID, batch.Year, batch.Month,
			deduction.SettlementRecord{
				EmployeeNumber: item.EmployeeNumber,
				NationalID:     item.NationalID,
				MemberNumber:   item.MemberNumber,
				DeductedAmount: item.ActualAmount,
			})
		if err != nil {
			return nil, fmt.Errorf("failed to open suspense entry: %w", err)
		}
		entry.MemberID = item.MemberID
		entries = append(entries, entry)
	}
	return entries, nil
}

// GetReconciliation loads a batch with all its items
func (s *ReconciliationService) GetReconciliation(ctx context.Context, tenantID, batchID uuid.UUID) (*ReconcileResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "reconciliation", "get")
	defer span.End()
	telemetry.SetAttribute(span, telemetry.SpanAttrBatchID, batchID.String())

	batch, err := s.batchRepo.FindByID(ctx, tenantID, batchID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	items, err := s.itemRepo.FindByBatch(ctx, batch.ID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	return &ReconcileResult{Batch: batch, Items: items}, nil
}

// ListReconciliations pages through a tenant's batches
func (s *ReconciliationService) ListReconciliations(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (*shared.Paginated[*deduction.ReconciliationBatch], error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "reconciliation", "list")
	defer span.End()

	result, err := s.batchRepo.List(ctx, tenantID, filter)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	return result, nil
}
