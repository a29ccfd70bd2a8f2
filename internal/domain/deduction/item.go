package deduction

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sacco/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// MatchStatus classifies the outcome of pairing a settlement record
// with a requested deduction line.
type MatchStatus string

const (
	// MatchStatusMatched means requested and settled amounts agree within tolerance.
	MatchStatusMatched MatchStatus = "MATCHED"
	// MatchStatusVariance means the pairing exists but the amounts differ.
	MatchStatusVariance MatchStatus = "VARIANCE"
	// MatchStatusMissingInMoF means the line was requested but the payroll
	// authority reported nothing for it.
	MatchStatusMissingInMoF MatchStatus = "MISSING_IN_MOF"
	// MatchStatusOrphanInMoF means money was deducted for someone the
	// institution did not request a deduction for.
	MatchStatusOrphanInMoF MatchStatus = "ORPHAN_IN_MOF"
)

// IsValid checks if the status is a valid MatchStatus
func (s MatchStatus) IsValid() bool {
	switch s {
	case MatchStatusMatched, MatchStatusVariance, MatchStatusMissingInMoF, MatchStatusOrphanInMoF:
		return true
	}
	return false
}

// String returns the string representation of MatchStatus
func (s MatchStatus) String() string {
	return string(s)
}

// VarianceReason explains why settled and requested amounts differ.
type VarianceReason string

const (
	VarianceReasonInsufficientFunds VarianceReason = "INSUFFICIENT_FUNDS"
	VarianceReasonMemberTerminated  VarianceReason = "MEMBER_TERMINATED"
	VarianceReasonNetPayTooLow      VarianceReason = "NET_PAY_TOO_LOW"
	VarianceReasonAmountMismatch    VarianceReason = "AMOUNT_MISMATCH"
	VarianceReasonOther             VarianceReason = "OTHER"
)

// IsValid checks if the reason is a valid VarianceReason
func (r VarianceReason) IsValid() bool {
	switch r {
	case VarianceReasonInsufficientFunds, VarianceReasonMemberTerminated,
		VarianceReasonNetPayTooLow, VarianceReasonAmountMismatch, VarianceReasonOther:
		return true
	}
	return false
}

// ReconciliationItem is one audit row of a reconciliation batch: a
// matched pairing, a variance, an orphan settlement record, or a
// requested line missing from the settlement file. Created once per
// run and immutable afterwards, except for the journal-posted flag.
type ReconciliationItem struct {
	shared.BaseEntity
	BatchID              uuid.UUID       `json:"batch_id"`
	MemberID             *uuid.UUID      `json:"member_id"`
	MemberNumber         string          `json:"member_number"`
	NationalID           string          `json:"national_id"`
	EmployeeNumber       string          `json:"employee_number"`
	ExpectedAmount       decimal.Decimal `json:"expected_amount"`
	RequestedAmount      decimal.Decimal `json:"requested_amount"`
	ActualAmount         decimal.Decimal `json:"actual_amount"`
	Variance             decimal.Decimal `json:"variance"`
	MatchStatus          MatchStatus     `json:"match_status"`
	VarianceReason       *VarianceReason `json:"variance_reason"`
	Notes                string          `json:"notes"`
	RequiresManualReview bool            `json:"requires_manual_review"`
	JournalPosted        bool            `json:"journal_posted"`
	PostedAt             *time.Time      `json:"posted_at"`
}

// IsPostable reports whether the journal poster may pick this item up:
// only matched items that have not been posted yet.
func (i *ReconciliationItem) IsPostable() bool {
	return i.MatchStatus == MatchStatusMatched && !i.JournalPosted
}

// MarkJournalPosted flips the journal-posted flag. It may happen at
// most once, and only for matched items.
func (i *ReconciliationItem) MarkJournalPosted() error {
	if i.MatchStatus != MatchStatusMatched {
		return shared.NewDomainError("NOT_POSTABLE",
			fmt.Sprintf("Cannot post item with %s classification, must be MATCHED", i.MatchStatus))
	}
	if i.JournalPosted {
		return shared.ErrAlreadyPosted
	}
	now := time.Now()
	i.JournalPosted = true
	i.PostedAt = &now
	i.UpdatedAt = now
	return nil
}
