package deduction

import (
	"testing"

	"github.com/google/uuid"
	"github.com/sacco/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestItem(emp, natID string, amount float64) DeductionItem {
	return DeductionItem{
		BaseEntity:     shared.NewBaseEntity(),
		RequestID:      uuid.New(),
		MemberID:       uuid.New(),
		MemberNumber:   "M-" + emp,
		NationalID:     natID,
		EmployeeNumber: emp,
		Amount:         decimal.NewFromFloat(amount),
	}
}

func newTestRecord(emp, natID string, amount float64, status SettlementStatus, reason string) SettlementRecord {
	return SettlementRecord{
		EmployeeNumber: emp,
		NationalID:     natID,
		MemberNumber:   "M-" + emp,
		DeductedAmount: decimal.NewFromFloat(amount),
		Status:         status,
		Reason:         reason,
	}
}

func TestMatcher_Match(t *testing.T) {
	matcher := NewMatcher()
	batchID := uuid.New()

	t.Run("should classify exact amount as matched", func(t *testing.T) {
		requested := []DeductionItem{newTestItem("EMP001", "NID001", 50000)}
		records := []SettlementRecord{newTestRecord("EMP001", "NID001", 50000, SettlementStatusSuccess, "")}

		result := matcher.Match(batchID, requested, records)

		require.Len(t, result.Items, 1)
		item := result.Items[0]
		assert.Equal(t, MatchStatusMatched, item.MatchStatus)
		assert.True(t, item.Variance.IsZero())
		assert.Nil(t, item.VarianceReason)
		assert.False(t, item.RequiresManualReview)
		assert.Equal(t, 1, result.Summary.MatchedCount)
	})

	t.Run("should tolerate sub-cent rounding differences", func(t *testing.T) {
		requested := []DeductionItem{newTestItem("EMP001", "NID001", 50000)}
		records := []SettlementRecord{newTestRecord("EMP001", "NID001", 50000.005, SettlementStatusSuccess, "")}

		result := matcher.Match(batchID, requested, records)

		require.Len(t, result.Items, 1)
		assert.Equal(t, MatchStatusMatched, result.Items[0].MatchStatus)
	})

	t.Run("should classify partial deduction as variance with derived reason", func(t *testing.T) {
		requested := []DeductionItem{newTestItem("EMP002", "NID002", 50000)}
		records := []SettlementRecord{
			newTestRecord("EMP002", "NID002", 30000, SettlementStatusFailed, "Insufficient salary balance"),
		}

		result := matcher.Match(batchID, requested, records)

		require.Len(t, result.Items, 1)
		item := result.Items[0]
		assert.Equal(t, MatchStatusVariance, item.MatchStatus)
		assert.True(t, item.Variance.Equal(decimal.NewFromInt(20000)))
		require.NotNil(t, item.VarianceReason)
		assert.Equal(t, VarianceReasonInsufficientFunds, *item.VarianceReason)
		assert.Equal(t, 1, result.Summary.VarianceCount)
	})

	t.Run("should flag unexplained variance for manual review", func(t *testing.T) {
		requested := []DeductionItem{newTestItem("EMP002", "NID002", 50000)}
		records := []SettlementRecord{
			newTestRecord("EMP002", "NID002", 30000, SettlementStatusFailed, "System error"),
		}

		result := matcher.Match(batchID, requested, records)

		require.Len(t, result.Items, 1)
		item := result.Items[0]
		require.NotNil(t, item.VarianceReason)
		assert.Equal(t, VarianceReasonOther, *item.VarianceReason)
		assert.True(t, item.RequiresManualReview)
	})

	t.Run("should match by national ID when employee numbers differ", func(t *testing.T) {
		requested := []DeductionItem{newTestItem("EMP003", "NID003", 25000)}
		records := []SettlementRecord{newTestRecord("PAYROLL-77", "NID003", 25000, SettlementStatusSuccess, "")}

		result := matcher.Match(batchID, requested, records)

		require.Len(t, result.Items, 1)
		assert.Equal(t, MatchStatusMatched, result.Items[0].MatchStatus)
		assert.Equal(t, "M-EMP003", result.Items[0].MemberNumber)
	})

	t.Run("should open orphan item for unrequested settlement record", func(t *testing.T) {
		requested := []DeductionItem{newTestItem("EMP004", "NID004", 10000)}
		records := []SettlementRecord{
			newTestRecord("EMP004", "NID004", 10000, SettlementStatusSuccess, ""),
			newTestRecord("EMP999", "NID999", 7500, SettlementStatusSuccess, ""),
		}

		result := matcher.Match(batchID, requested, records)

		require.Len(t, result.Items, 2)
		orphan := result.Items[1]
		assert.Equal(t, MatchStatusOrphanInMoF, orphan.MatchStatus)
		assert.True(t, orphan.ActualAmount.Equal(decimal.NewFromInt(7500)))
		assert.True(t, orphan.ExpectedAmount.IsZero())
		assert.Nil(t, orphan.MemberID)
		assert.True(t, orphan.RequiresManualReview)
		assert.Equal(t, 1, result.Summary.OrphanCount)
	})

	t.Run("should classify requested line absent from settlement as missing", func(t *testing.T) {
		requested := []DeductionItem{
			newTestItem("EMP005", "NID005", 10000),
			newTestItem("EMP006", "NID006", 40000),
		}
		records := []SettlementRecord{newTestRecord("EMP005", "NID005", 10000, SettlementStatusSuccess, "")}

		result := matcher.Match(batchID, requested, records)

		require.Len(t, result.Items, 2)
		missing := result.Items[1]
		assert.Equal(t, MatchStatusMissingInMoF, missing.MatchStatus)
		assert.True(t, missing.ActualAmount.IsZero())
		assert.True(t, missing.Variance.Equal(decimal.NewFromInt(40000)))
		require.NotNil(t, missing.VarianceReason)
		assert.Equal(t, VarianceReasonMemberTerminated, *missing.VarianceReason)
		assert.True(t, missing.RequiresManualReview)
		assert.Equal(t, 1, result.Summary.MissingCount)
	})

	t.Run("should consume each requested line at most once", func(t *testing.T) {
		requested := []DeductionItem{newTestItem("EMP007", "NID007", 15000)}
		records := []SettlementRecord{
			newTestRecord("EMP007", "NID007", 15000, SettlementStatusSuccess, ""),
			newTestRecord("EMP007", "NID007", 15000, SettlementStatusSuccess, ""),
		}

		result := matcher.Match(batchID, requested, records)

		require.Len(t, result.Items, 2)
		assert.Equal(t, MatchStatusMatched, result.Items[0].MatchStatus)
		assert.Equal(t, MatchStatusOrphanInMoF, result.Items[1].MatchStatus)
	})

	t.Run("should never match on blank identifiers", func(t *testing.T) {
		requested := []DeductionItem{newTestItem("", "", 5000)}
		records := []SettlementRecord{newTestRecord("", "", 5000, SettlementStatusSuccess, "")}

		result := matcher.Match(batchID, requested, records)

		require.Len(t, result.Items, 2)
		assert.Equal(t, MatchStatusOrphanInMoF, result.Items[0].MatchStatus)
		assert.Equal(t, MatchStatusMissingInMoF, result.Items[1].MatchStatus)
	})

	t.Run("should account for every record and every requested line", func(t *testing.T) {
		requested := []DeductionItem{
			newTestItem("EMP010", "NID010", 50000),
			newTestItem("EMP011", "NID011", 30000),
			newTestItem("EMP012", "NID012", 20000),
		}
		records := []SettlementRecord{
			newTestRecord("EMP010", "NID010", 50000, SettlementStatusSuccess, ""),
			newTestRecord("EMP011", "NID011", 18000, SettlementStatusFailed, "Member terminated"),
			newTestRecord("EMP099", "NID099", 9000, SettlementStatusSuccess, ""),
		}

		result := matcher.Match(batchID, requested, records)

		s := result.Summary
		assert.Len(t, result.Items, s.MatchedCount+s.VarianceCount+s.MissingCount+s.OrphanCount)
		assert.Equal(t, 1, s.MatchedCount)
		assert.Equal(t, 1, s.VarianceCount)
		assert.Equal(t, 1, s.MissingCount)
		assert.Equal(t, 1, s.OrphanCount)
		assert.True(t, s.TotalExpected.Equal(decimal.NewFromInt(100000)))
		assert.True(t, s.TotalActual.Equal(decimal.NewFromInt(77000)))
		assert.True(t, s.TotalVariance.Equal(decimal.NewFromInt(23000)))
	})

	t.Run("should reconcile totals even when orphans inflate the actual", func(t *testing.T) {
		requested := []DeductionItem{
			newTestItem("EMP020", "NID020", 40000),
			newTestItem("EMP021", "NID021", 10000),
		}
		records := []SettlementRecord{
			newTestRecord("EMP020", "NID020", 40000, SettlementStatusSuccess, ""),
			newTestRecord("EMP888", "NID888", 6000, SettlementStatusSuccess, ""),
			newTestRecord("EMP889", "NID889", 2500, SettlementStatusSuccess, ""),
		}

		result := matcher.Match(batchID, requested, records)

		s := result.Summary
		assert.Equal(t, 2, s.OrphanCount)
		assert.Equal(t, 1, s.MissingCount)
		assert.True(t, s.TotalExpected.Sub(s.TotalActual).Equal(s.TotalVariance))
		assert.True(t, s.TotalVariance.Equal(decimal.NewFromInt(1500)))
	})

	t.Run("should flag every variance item for manual review", func(t *testing.T) {
		requested := []DeductionItem{newTestItem("EMP030", "NID030", 60000)}
		records := []SettlementRecord{
			newTestRecord("EMP030", "NID030", 45000, SettlementStatusFailed, "Insufficient funds"),
		}

		result := matcher.Match(batchID, requested, records)

		require.Len(t, result.Items, 1)
		item := result.Items[0]
		require.NotNil(t, item.VarianceReason)
		assert.Equal(t, VarianceReasonInsufficientFunds, *item.VarianceReason)
		assert.True(t, item.RequiresManualReview)
	})
}

func TestDeriveVarianceReason(t *testing.T) {
	tests := []struct {
		name   string
		status SettlementStatus
		reason string
		want   VarianceReason
	}{
		{"successful record is an amount mismatch", SettlementStatusSuccess, "", VarianceReasonAmountMismatch},
		{"insufficient funds", SettlementStatusFailed, "Insufficient funds on payslip", VarianceReasonInsufficientFunds},
		{"member terminated", SettlementStatusFailed, "Employee terminated in March", VarianceReasonMemberTerminated},
		{"net pay too low", SettlementStatusFailed, "Net pay below statutory threshold", VarianceReasonNetPayTooLow},
		{"unknown failure text", SettlementStatusFailed, "Payroll system timeout", VarianceReasonOther},
		{"case insensitive", SettlementStatusFailed, "INSUFFICIENT BALANCE", VarianceReasonInsufficientFunds},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := SettlementRecord{Status: tt.status, Reason: tt.reason}
			assert.Equal(t, tt.want, DeriveVarianceReason(rec))
		})
	}
}
