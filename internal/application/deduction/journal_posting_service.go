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
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// JournalPostingService posts matched reconciliation items to the
// member sub-ledgers. The originating request line's allocation
// breakdown decides which sub-ledgers an item touches; each touched
// ledger posts its configured amount across every active account.
type JournalPostingService struct {
	batchRepo   deduction.BatchRepository
	itemRepo    deduction.ItemRepository
	requestRepo deduction.RequestRepository
	memberRepo  member.Repository
	savingsRepo member.SavingsRepository
	loanRepo    member.LoanRepository
	policyRepo  member.PolicyRepository
	txnRepo     member.TransactionRepository
	txManager   shared.TransactionManager
	logger      *zap.Logger
}

// NewJournalPostingService creates a new JournalPostingService
func NewJournalPostingService(
	batchRepo deduction.BatchRepository,
	itemRepo deduction.ItemRepository,
	requestRepo deduction.RequestRepository,
	memberRepo member.Repository,
	savingsRepo member.SavingsRepository,
	loanRepo member.LoanRepository,
	policyRepo member.PolicyRepository,
	txnRepo member.TransactionRepository,
	txManager shared.TransactionManager,
	logger *zap.Logger,
) *JournalPostingService {
	return &JournalPostingService{
		batchRepo:   batchRepo,
		itemRepo:    itemRepo,
		requestRepo: requestRepo,
		memberRepo:  memberRepo,
		savingsRepo: savingsRepo,
		loanRepo:    loanRepo,
		policyRepo:  policyRepo,
		txnRepo:     txnRepo,
		txManager:   txManager,
		logger:      logger,
	}
}

// PostingResult summarizes one posting run over a batch
type PostingResult struct {
	BatchID     uuid.UUID `json:"batch_id"`
	BatchNumber string    `json:"batch_number"`
	Posted      int       `json:"posted"`
	Skipped     int       `json:"skipped"`
	Failed      int       `json:"failed"`
	Errors      []string  `json:"errors,omitempty"`
}

// PostJournals works through every postable item of a completed batch.
// Each item posts in its own transaction behind an exclusive claim on
// the journal-posted flag, so a rerun or a concurrent worker never
// posts an item twice. The batch flips to POSTED only when every
// postable item went through.
func (s *JournalPostingService) PostJournals(ctx context.Context, tenantID, batchID uuid.UUID) (*PostingResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "journal_posting", "post_batch")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrTenantID, tenantID.String(),
		telemetry.SpanAttrBatchID, batchID.String(),
	)

	batch, err := s.batchRepo.FindByID(ctx, tenantID, batchID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if batch.JournalsPosted {
		telemetry.RecordError(span, shared.ErrAlreadyPosted)
		return nil, shared.ErrAlreadyPosted
	}
	if batch.Status != deduction.ReconciliationStatusCompleted {
		err := shared.NewDomainError("BATCH_NOT_COMPLETED",
			fmt.Sprintf("Cannot post journals for batch in %s status", batch.Status))
		telemetry.RecordError(span, err)
		return nil, err
	}

	items, err := s.itemRepo.FindPostable(ctx, batch.ID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	var breakdowns map[uuid.UUID]deduction.AllocationBreakdown
	if len(items) > 0 {
		breakdowns, err = s.loadBreakdowns(ctx, batch)
		if err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}
	}

	result := &PostingResult{BatchID: batch.ID, BatchNumber: batch.BatchNumber}
	for _, item := range items {
		if err := s.postItem(ctx, batch, item, breakdowns); err != nil {
			if errors.Is(err, shared.ErrAlreadyPosted) {
				result.Skipped++
				continue
			}
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("item %s: %v", item.ID, err))
			s.logger.Error("journal posting failed for item",
				zap.String("batch_number", batch.BatchNumber),
				zap.String("item_id", item.ID.String()),
				zap.String("member_number", item.MemberNumber),
				zap.Error(err))
			continue
		}
		result.Posted++
	}

	if result.Failed > 0 {
		telemetry.AddEvent(span, "posting_incomplete", "failed", result.Failed)
		return result, shared.NewDomainError("POSTING_INCOMPLETE",
			fmt.Sprintf("%d of %d items failed to post", result.Failed, len(items)))
	}

	if err := batch.MarkJournalsPosted(); err != nil {
		telemetry.RecordError(span, err)
		return result, err
	}
	if err := s.batchRepo.SaveWithLock(ctx, batch); err != nil {
		telemetry.RecordError(span, err)
		return result, err
	}

	s.logger.Info("batch journals posted",
		zap.String("batch_number", batch.BatchNumber),
		zap.Int("posted", result.Posted),
		zap.Int("skipped", result.Skipped))
	return result, nil
}

// loadBreakdowns resolves the batch period's deduction request and
// maps each requested member to the allocation breakdown on their line.
func (s *JournalPostingService) loadBreakdowns(ctx context.Context, batch *deduction.ReconciliationBatch) (map[uuid.UUID]deduction.AllocationBreakdown, error) {
	request, err := s.requestRepo.FindByPeriod(ctx, batch.TenantID, batch.Year, batch.Month)
	if err != nil {
		return nil, fmt.Errorf("failed to load deduction request: %w", err)
	}
	lines, err := s.requestRepo.FindItems(ctx, request.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load deduction items: %w", err)
	}
	breakdowns := make(map[uuid.UUID]deduction.AllocationBreakdown, len(lines))
	for _, line := range lines {
		breakdowns[line.MemberID] = line.Breakdown
	}
	return breakdowns, nil
}

// postItem posts a single item inside its own transaction. The claim
// on the journal-posted flag happens first, so concurrent runs fail
// fast with shared.ErrAlreadyPosted and touch no balances. Which
// sub-ledgers move is decided by the originating request line's
// allocation breakdown.
func (s *JournalPostingService) postItem(
	ctx context.Context,
	batch *deduction.ReconciliationBatch,
	item *deduction.ReconciliationItem,
	breakdowns map[uuid.UUID]deduction.AllocationBreakdown,
) error {
	if item.MemberID == nil {
		return shared.NewDomainError("MEMBER_UNKNOWN", "Item has no member to post against")
	}
	memberID := *item.MemberID
	breakdown, ok := breakdowns[memberID]
	if !ok {
		return shared.NewDomainError("REQUEST_LINE_NOT_FOUND",
			"No requested deduction line found for this member")
	}

	return s.txManager.WithinTransaction(ctx, func(txCtx context.Context) error {
		if err := s.itemRepo.ClaimForPosting(txCtx, item.ID); err != nil {
			return err
		}

		m, err := s.memberRepo.FindByID(txCtx, batch.TenantID, memberID)
		if err != nil {
			return fmt.Errorf("failed to load member: %w", err)
		}

		savingsPosted := decimal.Zero
		if breakdown.HasSavings() {
			accounts, err := s.savingsRepo.ListActiveByMember(txCtx, batch.TenantID, memberID)
			if err != nil {
				return fmt.Errorf("failed to load savings accounts: %w", err)
			}
			for _, account := range accounts {
				if !account.MonthlyContribution.IsPositive() {
					continue
				}
				if err := account.Credit(account.MonthlyContribution); err != nil {
					return err
				}
				if err := s.savingsRepo.SaveWithLock(txCtx, account); err != nil {
					return err
				}
				savingsPosted = savingsPosted.Add(account.MonthlyContribution)
			}
		}

		loanPosted := decimal.Zero
		if breakdown.HasLoanRepayment() {
			loans, err := s.loanRepo.ListActiveByMember(txCtx, batch.TenantID, memberID)
			if err != nil {
				return fmt.Errorf("failed to load loans: %w", err)
			}
			for _, loan := range loans {
				if err := loan.ApplyInstallment(loan.MonthlyInstallment); err != nil {
					return err
				}
				if err := s.loanRepo.SaveWithLock(txCtx, loan); err != nil {
					return err
				}
				loanPosted = loanPosted.Add(loan.MonthlyInstallment)
			}
		}

		premiumPosted := decimal.Zero
		if breakdown.HasInsurance() {
			policies, err := s.policyRepo.ListActiveByMember(txCtx, batch.TenantID, memberID)
			if err != nil {
				return fmt.Errorf("failed to load policies: %w", err)
			}
			for _, policy := range policies {
				if err := policy.ApplyPremium(policy.MonthlyPremium); err != nil {
					return err
				}
				if err := s.policyRepo.SaveWithLock(txCtx, policy); err != nil {
					return err
				}
				premiumPosted = premiumPosted.Add(policy.MonthlyPremium)
			}
		}

		txn := member.NewDeductionTransaction(
			batch.TenantID, memberID, m.MemberNumber, batch.Year, batch.Month,
			item.ActualAmount, savingsPosted, loanPosted, premiumPosted,
			batch.ID, item.ID,
		)
		if err := s.txnRepo.Create(txCtx, txn); err != nil {
			return fmt.Errorf("failed to record member transaction: %w", err)
		}
		return nil
	})
}
