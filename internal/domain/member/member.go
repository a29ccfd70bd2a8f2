package member

import (
	"github.com/google/uuid"
	"github.com/sacco/backend/internal/domain/shared"
)

// MemberStatus represents the membership lifecycle state
type MemberStatus string

const (
	MemberStatusActive     MemberStatus = "ACTIVE"
	MemberStatusDormant    MemberStatus = "DORMANT"
	MemberStatusTerminated MemberStatus = "TERMINATED"
	MemberStatusExited     MemberStatus = "EXITED"
)

// IsValid checks if the status is a valid MemberStatus
func (s MemberStatus) IsValid() bool {
	switch s {
	case MemberStatusActive, MemberStatusDormant, MemberStatusTerminated, MemberStatusExited:
		return true
	}
	return false
}

// Member is a cooperative member whose payroll deductions the engine
// reconciles and posts.
type Member struct {
	shared.TenantAggregateRoot
	MemberNumber   string       `json:"member_number"`
	NationalID     string       `json:"national_id"`
	EmployeeNumber string       `json:"employee_number"`
	FullName       string       `json:"full_name"`
	PhoneNumber    string       `json:"phone_number"`
	Status         MemberStatus `json:"status"`
}

// NewMember creates an active member
func NewMember(tenantID uuid.UUID, memberNumber, nationalID, employeeNumber, fullName string) (*Member, error) {
	if memberNumber == "" {
		return nil, shared.NewDomainError("INVALID_MEMBER", "Member number is required")
	}
	if nationalID == "" && employeeNumber == "" {
		return nil, shared.NewDomainError("INVALID_MEMBER", "Member needs a national ID or an employee number")
	}
	return &Member{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		MemberNumber:        memberNumber,
		NationalID:          nationalID,
		EmployeeNumber:      employeeNumber,
		FullName:            fullName,
		Status:              MemberStatusActive,
	}, nil
}

// IsActive reports whether the member can receive ledger postings
func (m *Member) IsActive() bool {
	return m.Status == MemberStatusActive
}
