package deduction

import (
	"strings"

	"github.com/shopspring/decimal"
)

// SettlementStatus is the normalized outcome the payroll authority
// reported for one deduction. The file format treats this as free
// text; only "failed" carries meaning for variance reason derivation.
type SettlementStatus string

const (
	SettlementStatusSuccess SettlementStatus = "success"
	SettlementStatusFailed  SettlementStatus = "failed"
)

// SettlementRecord is one row of the payroll authority's settlement
// file. It is ephemeral: it exists only to drive matching and is never
// persisted on its own.
type SettlementRecord struct {
	EmployeeNumber string
	NationalID     string
	MemberNumber   string
	DeductedAmount decimal.Decimal
	Status         SettlementStatus
	Reason         string
}

// Failed reports whether the payroll authority marked the deduction as failed.
func (r SettlementRecord) Failed() bool {
	return strings.EqualFold(strings.TrimSpace(string(r.Status)), string(SettlementStatusFailed))
}

// HasIdentity reports whether the record carries at least one usable
// identifying number. Rows without any identity can only ever surface
// as orphans.
func (r SettlementRecord) HasIdentity() bool {
	return r.EmployeeNumber != "" || r.NationalID != "" || r.MemberNumber != ""
}

// IdentityMatches reports whether the record identifies the same person
// as the given employee number / national ID pair. Empty values never
// match, so two blank records do not pair with each other.
func (r SettlementRecord) IdentityMatches(employeeNumber, nationalID string) bool {
	if employeeNumber != "" && r.EmployeeNumber == employeeNumber {
		return true
	}
	if nationalID != "" && r.NationalID == nationalID {
		return true
	}
	return false
}
