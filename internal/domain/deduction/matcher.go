package deduction

import (
	"strings"

	"github.com/google/uuid"
	"github.com/sacco/backend/internal/domain/shared"
	"github.com/sacco/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// MatchSummary aggregates the counters and totals of one matching pass
type MatchSummary struct {
	TotalExpected decimal.Decimal `json:"total_expected"`
	TotalActual   decimal.Decimal `json:"total_actual"`
	TotalVariance decimal.Decimal `json:"total_variance"`
	MatchedCount  int             `json:"matched_count"`
	VarianceCount int             `json:"variance_count"`
	MissingCount  int             `json:"missing_count"`
	OrphanCount   int             `json:"orphan_count"`
}

// MatchResult holds the classified items of one matching pass. Orphan
// records appear as ORPHAN_IN_MOF items carrying the settlement
// identity, so the caller can open suspense entries for them.
type MatchResult struct {
	Items   []*ReconciliationItem
	Summary MatchSummary
}

// Matcher pairs settlement records with requested deduction lines and
// classifies each pairing. It is a pure domain service: it touches no
// storage and is deterministic for a given input order.
type Matcher struct{}

// NewMatcher creates a Matcher
func NewMatcher() *Matcher {
	return &Matcher{}
}

// Match walks the settlement records in file order, claiming for each
// one the first unconsumed requested line whose identity matches.
// Records with no requested line become orphans; requested lines left
// unconsumed after the pass become missing items.
func (m *Matcher) Match(batchID uuid.UUID, requested []DeductionItem, records []SettlementRecord) MatchResult {
	consumed := make([]bool, len(requested))
	items := make([]*ReconciliationItem, 0, len(requested)+len(records))
	var summary MatchSummary
	summary.TotalExpected = decimal.Zero
	summary.TotalActual = decimal.Zero

	for _, req := range requested {
		summary.TotalExpected = summary.TotalExpected.Add(req.Amount)
	}

	for _, rec := range records {
		summary.TotalActual = summary.TotalActual.Add(rec.DeductedAmount)

		idx := -1
		for j := range requested {
			if !consumed[j] && requested[j].Matches(rec) {
				idx = j
				break
			}
		}
		if idx < 0 {
			items = append(items, newOrphanItem(batchID, rec))
			summary.OrphanCount++
			continue
		}
		consumed[idx] = true
		item := newPairedItem(batchID, requested[idx], rec)
		items = append(items, item)
		if item.MatchStatus == MatchStatusMatched {
			summary.MatchedCount++
		} else {
			summary.VarianceCount++
		}
	}

	for j, req := range requested {
		if consumed[j] {
			continue
		}
		items = append(items, newMissingItem(batchID, req))
		summary.MissingCount++
	}

	// Orphan records count toward the actual total, so the batch-level
	// variance is the signed gap between what was asked for and what
	// the settlement file actually moved.
	summary.TotalVariance = summary.TotalExpected.Sub(summary.TotalActual)

	return MatchResult{Items: items, Summary: summary}
}

func newPairedItem(batchID uuid.UUID, req DeductionItem, rec SettlementRecord) *ReconciliationItem {
	variance := req.Amount.Sub(rec.DeductedAmount)
	memberID := req.MemberID
	item := &ReconciliationItem{
		BaseEntity:      shared.NewBaseEntity(),
		BatchID:         batchID,
		MemberID:        &memberID,
		MemberNumber:    req.MemberNumber,
		NationalID:      req.NationalID,
		EmployeeNumber:  req.EmployeeNumber,
		ExpectedAmount:  req.Amount,
		RequestedAmount: req.Amount,
		ActualAmount:    rec.DeductedAmount,
		Variance:        variance,
	}
	if variance.Abs().LessThan(valueobject.CentTolerance) {
		item.MatchStatus = MatchStatusMatched
		return item
	}
	item.MatchStatus = MatchStatusVariance
	reason := DeriveVarianceReason(rec)
	item.VarianceReason = &reason
	item.Notes = rec.Reason
	item.RequiresManualReview = true
	return item
}

func newOrphanItem(batchID uuid.UUID, rec SettlementRecord) *ReconciliationItem {
	return &ReconciliationItem{
		BaseEntity:           shared.NewBaseEntity(),
		BatchID:              batchID,
		MemberNumber:         rec.MemberNumber,
		NationalID:           rec.NationalID,
		EmployeeNumber:       rec.EmployeeNumber,
		ExpectedAmount:       decimal.Zero,
		RequestedAmount:      decimal.Zero,
		ActualAmount:         rec.DeductedAmount,
		Variance:             rec.DeductedAmount.Neg(),
		MatchStatus:          MatchStatusOrphanInMoF,
		Notes:                "Deducted amount has no matching requested line",
		RequiresManualReview: true,
	}
}

func newMissingItem(batchID uuid.UUID, req DeductionItem) *ReconciliationItem {
	reason := VarianceReasonMemberTerminated
	memberID := req.MemberID
	return &ReconciliationItem{
		BaseEntity:           shared.NewBaseEntity(),
		BatchID:              batchID,
		MemberID:             &memberID,
		MemberNumber:         req.MemberNumber,
		NationalID:           req.NationalID,
		EmployeeNumber:       req.EmployeeNumber,
		ExpectedAmount:       req.Amount,
		RequestedAmount:      req.Amount,
		ActualAmount:         decimal.Zero,
		Variance:             req.Amount,
		MatchStatus:          MatchStatusMissingInMoF,
		VarianceReason:       &reason,
		Notes:                "Requested deduction absent from settlement file",
		RequiresManualReview: true,
	}
}

// DeriveVarianceReason maps the settlement record's failure text to a
// variance reason. Records that settled successfully but at the wrong
// amount are plain amount mismatches.
func DeriveVarianceReason(rec SettlementRecord) VarianceReason {
	if !rec.Failed() {
		return VarianceReasonAmountMismatch
	}
	reason := strings.ToLower(rec.Reason)
	switch {
	case strings.Contains(reason, "insufficient"):
		return VarianceReasonInsufficientFunds
	case strings.Contains(reason, "terminated"):
		return VarianceReasonMemberTerminated
	case strings.Contains(reason, "net pay"):
		return VarianceReasonNetPayTooLow
	default:
		return VarianceReasonOther
	}
}
