package deduction

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sacco/backend/internal/domain/deduction"
	"github.com/sacco/backend/internal/domain/member"
	"github.com/sacco/backend/internal/domain/shared"
	"github.com/sacco/backend/internal/infrastructure/telemetry"
)

// SuspenseService resolves pending suspense entries
type SuspenseService struct {
	suspenseRepo deduction.SuspenseRepository
	memberRepo   member.Repository
	savingsRepo  member.SavingsRepository
	txnRepo      member.TransactionRepository
	txManager    shared.TransactionManager
}

// NewSuspenseService creates a new SuspenseService
func NewSuspenseService(
	suspenseRepo deduction.SuspenseRepository,
	memberRepo member.Repository,
	savingsRepo member.SavingsRepository,
	txnRepo member.TransactionRepository,
	txManager shared.TransactionManager,
) *SuspenseService {
	return &SuspenseService{
		suspenseRepo: suspenseRepo,
		memberRepo:   memberRepo,
		savingsRepo:  savingsRepo,
		txnRepo:      txnRepo,
		txManager:    txManager,
	}
}

// List pages through a tenant's suspense entries, optionally filtered by status
func (s *SuspenseService) List(ctx context.Context, tenantID uuid.UUID, status *deduction.SuspenseStatus, filter shared.Filter) (*shared.Paginated[*deduction.SuspenseEntry], error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "suspense", "list")
	defer span.End()

	if status != nil && !status.IsValid() {
		err := shared.NewDomainError("INVALID_STATUS", fmt.Sprintf("Unknown suspense status %q", *status))
		telemetry.RecordError(span, err)
		return nil, err
	}
	result, err := s.suspenseRepo.List(ctx, tenantID, status, filter)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	return result, nil
}

// Allocate attributes a pending suspense entry to a member. The
// suspended amount credits the member's savings account and leaves an
// audit transaction, all in one transaction with the status change.
func (s *SuspenseService) Allocate(ctx context.Context, tenantID, entryID, memberID uuid.UUID, notes string) (*deduction.SuspenseEntry, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "suspense", "allocate")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrTenantID, tenantID.String(),
		telemetry.SpanAttrMemberID, memberID.String(),
	)

	entry, err := s.suspenseRepo.FindByID(ctx, tenantID, entryID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	m, err := s.memberRepo.FindByID(ctx, tenantID, memberID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to load member: %w", err)
	}
	if !m.IsActive() {
		err := shared.NewDomainError("MEMBER_NOT_ACTIVE", "Cannot allocate suspense to an inactive member")
		telemetry.RecordError(span, err)
		return nil, err
	}

	if err := entry.Allocate(memberID, notes); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	err = s.txManager.WithinTransaction(ctx, func(txCtx context.Context) error {
		if err := s.suspenseRepo.SaveWithLock(txCtx, entry); err != nil {
			return err
		}
		accounts, err := s.savingsRepo.ListActiveByMember(txCtx, tenantID, memberID)
		if err != nil {
			return fmt.Errorf("failed to load savings accounts: %w", err)
		}
		if len(accounts) == 0 {
			return shared.NewDomainError("NO_SAVINGS_ACCOUNT",
				"Member has no active savings account to receive the allocation")
		}
		// The whole amount lands on the member's oldest active account
		account := accounts[0]
		if err := account.Credit(entry.Amount); err != nil {
			return err
		}
		if err := s.savingsRepo.SaveWithLock(txCtx, account); err != nil {
			return err
		}

		txn := &member.Transaction{
			BaseEntity:        shared.NewBaseEntity(),
			TenantID:          tenantID,
			MemberID:          memberID,
			TransactionNumber: entry.Reference,
			Type:              member.TransactionTypeSuspenseAllocation,
			Amount:            entry.Amount,
			SavingsPortion:    entry.Amount,
			BatchID:           &entry.BatchID,
			Description:       fmt.Sprintf("Suspense allocation %s", entry.Reference),
			PostedAt:          *entry.ResolvedAt,
		}
		return s.txnRepo.Create(txCtx, txn)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	return entry, nil
}

// Refund marks a pending entry as returned to the employer
func (s *SuspenseService) Refund(ctx context.Context, tenantID, entryID uuid.UUID, notes string) (*deduction.SuspenseEntry, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "suspense", "refund")
	defer span.End()

	entry, err := s.suspenseRepo.FindByID(ctx, tenantID, entryID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if err := entry.Refund(notes); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if err := s.suspenseRepo.SaveWithLock(ctx, entry); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	return entry, nil
}

// WriteOff closes a pending entry without recovery
func (s *SuspenseService) WriteOff(ctx context.Context, tenantID, entryID uuid.UUID, notes string) (*deduction.SuspenseEntry, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "suspense", "write_off")
	defer span.End()

	entry, err := s.suspenseRepo.FindByID(ctx, tenantID, entryID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if err := entry.WriteOff(notes); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if err := s.suspenseRepo.SaveWithLock(ctx, entry); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	return entry, nil
}
