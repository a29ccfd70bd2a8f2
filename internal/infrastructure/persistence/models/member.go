package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/sacco/backend/internal/domain/member"
	"github.com/shopspring/decimal"
)

// MemberModel is the persistence model for members
type MemberModel struct {
	TenantAggregateModel
	MemberNumber   string `gorm:"type:varchar(50);not null;uniqueIndex:idx_member_tenant_number,priority:2"`
	NationalID     string `gorm:"type:varchar(50);index"`
	EmployeeNumber string `gorm:"type:varchar(50);index"`
	FullName       string `gorm:"type:varchar(200);not null"`
	PhoneNumber    string `gorm:"type:varchar(30)"`
	Status         string `gorm:"type:varchar(20);not null;default:'ACTIVE';index"`
}

// TableName returns the table name for GORM
func (MemberModel) TableName() string {
	return "members"
}

// ToDomain converts the model to a domain Member
func (m *MemberModel) ToDomain() *member.Member {
	result := &member.Member{
		MemberNumber:   m.MemberNumber,
		NationalID:     m.NationalID,
		EmployeeNumber: m.EmployeeNumber,
		FullName:       m.FullName,
		PhoneNumber:    m.PhoneNumber,
		Status:         member.MemberStatus(m.Status),
	}
	m.PopulateTenantAggregateRoot(&result.TenantAggregateRoot)
	return result
}

// MemberModelFromDomain converts a domain member to its model
func MemberModelFromDomain(d *member.Member) *MemberModel {
	m := &MemberModel{
		MemberNumber:   d.MemberNumber,
		NationalID:     d.NationalID,
		EmployeeNumber: d.EmployeeNumber,
		FullName:       d.FullName,
		PhoneNumber:    d.PhoneNumber,
		Status:         string(d.Status),
	}
	m.FromDomainTenantAggregateRoot(d.TenantAggregateRoot)
	return m
}

// SavingsAccountModel is the persistence model for savings accounts
type SavingsAccountModel struct {
	TenantAggregateModel
	MemberID            uuid.UUID       `gorm:"type:uuid;not null;index"`
	AccountNumber       string          `gorm:"type:varchar(50);not null;uniqueIndex:idx_savings_tenant_number,priority:2"`
	Balance             decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	MonthlyContribution decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Status              string          `gorm:"type:varchar(20);not null;default:'ACTIVE';index"`
	LastCreditAt        *time.Time
}

// TableName returns the table name for GORM
func (SavingsAccountModel) TableName() string {
	return "savings_accounts"
}

// ToDomain converts the model to a domain SavingsAccount
func (m *SavingsAccountModel) ToDomain() *member.SavingsAccount {
	account := &member.SavingsAccount{
		MemberID:            m.MemberID,
		AccountNumber:       m.AccountNumber,
		Balance:             m.Balance,
		MonthlyContribution: m.MonthlyContribution,
		Status:              member.SavingsStatus(m.Status),
		LastCreditAt:        m.LastCreditAt,
	}
	m.PopulateTenantAggregateRoot(&account.TenantAggregateRoot)
	return account
}

// SavingsAccountModelFromDomain converts a domain account to its model
func SavingsAccountModelFromDomain(a *member.SavingsAccount) *SavingsAccountModel {
	m := &SavingsAccountModel{
		MemberID:            a.MemberID,
		AccountNumber:       a.AccountNumber,
		Balance:             a.Balance,
		MonthlyContribution: a.MonthlyContribution,
		Status:              string(a.Status),
		LastCreditAt:        a.LastCreditAt,
	}
	m.FromDomainTenantAggregateRoot(a.TenantAggregateRoot)
	return m
}

// LoanModel is the persistence model for loans
type LoanModel struct {
	TenantAggregateModel
	MemberID           uuid.UUID       `gorm:"type:uuid;not null;index"`
	LoanNumber         string          `gorm:"type:varchar(50);not null;uniqueIndex:idx_loan_tenant_number,priority:2"`
	PrincipalAmount    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	OutstandingBalance decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	MonthlyInstallment decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Status             string          `gorm:"type:varchar(20);not null;default:'ACTIVE';index"`
	ClosedAt           *time.Time
}

// TableName returns the table name for GORM
func (LoanModel) TableName() string {
	return "loans"
}

// ToDomain converts the model to a domain Loan
func (m *LoanModel) ToDomain() *member.Loan {
	loan := &member.Loan{
		MemberID:           m.MemberID,
		LoanNumber:         m.LoanNumber,
		PrincipalAmount:    m.PrincipalAmount,
		OutstandingBalance: m.OutstandingBalance,
		MonthlyInstallment: m.MonthlyInstallment,
		Status:             member.LoanStatus(m.Status),
		ClosedAt:           m.ClosedAt,
	}
	m.PopulateTenantAggregateRoot(&loan.TenantAggregateRoot)
	return loan
}

// LoanModelFromDomain converts a domain loan to its model
func LoanModelFromDomain(l *member.Loan) *LoanModel {
	m := &LoanModel{
		MemberID:           l.MemberID,
		LoanNumber:         l.LoanNumber,
		PrincipalAmount:    l.PrincipalAmount,
		OutstandingBalance: l.OutstandingBalance,
		MonthlyInstallment: l.MonthlyInstallment,
		Status:             string(l.Status),
		ClosedAt:           l.ClosedAt,
	}
	m.FromDomainTenantAggregateRoot(l.TenantAggregateRoot)
	return m
}

// InsurancePolicyModel is the persistence model for insurance policies
type InsurancePolicyModel struct {
	TenantAggregateModel
	MemberID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	PolicyNumber   string          `gorm:"type:varchar(50);not null;uniqueIndex:idx_policy_tenant_number,priority:2"`
	MonthlyPremium decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	PremiumsPaid   decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Status         string          `gorm:"type:varchar(20);not null;default:'ACTIVE';index"`
	LastPremiumAt  *time.Time
}

// TableName returns the table name for GORM
func (InsurancePolicyModel) TableName() string {
	return "insurance_policies"
}

// ToDomain converts the model to a domain InsurancePolicy
func (m *InsurancePolicyModel) ToDomain() *member.InsurancePolicy {
	policy := &member.InsurancePolicy{
		MemberID:       m.MemberID,
		PolicyNumber:   m.PolicyNumber,
		MonthlyPremium: m.MonthlyPremium,
		PremiumsPaid:   m.PremiumsPaid,
		Status:         member.PolicyStatus(m.Status),
		LastPremiumAt:  m.LastPremiumAt,
	}
	m.PopulateTenantAggregateRoot(&policy.TenantAggregateRoot)
	return policy
}

// InsurancePolicyModelFromDomain converts a domain policy to its model
func InsurancePolicyModelFromDomain(p *member.InsurancePolicy) *InsurancePolicyModel {
	m := &InsurancePolicyModel{
		MemberID:       p.MemberID,
		PolicyNumber:   p.PolicyNumber,
		MonthlyPremium: p.MonthlyPremium,
		PremiumsPaid:   p.PremiumsPaid,
		Status:         string(p.Status),
		LastPremiumAt:  p.LastPremiumAt,
	}
	m.FromDomainTenantAggregateRoot(p.TenantAggregateRoot)
	return m
}

// MemberTransactionModel is the persistence model for member transactions
type MemberTransactionModel struct {
	BaseModel
	TenantID          uuid.UUID       `gorm:"type:uuid;not null;index;uniqueIndex:idx_member_transactions_number,priority:1"`
	MemberID          uuid.UUID       `gorm:"type:uuid;not null;index"`
	TransactionNumber string          `gorm:"type:varchar(60);not null;uniqueIndex:idx_member_transactions_number,priority:2"`
	Type              string          `gorm:"type:varchar(30);not null;index"`
	Amount            decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	SavingsPortion    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	LoanPortion       decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	InsurancePortion  decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	BatchID           *uuid.UUID      `gorm:"type:uuid;index"`
	ItemID            *uuid.UUID      `gorm:"type:uuid;index"`
	Description       string          `gorm:"type:varchar(200)"`
	PostedAt          time.Time       `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (MemberTransactionModel) TableName() string {
	return "member_transactions"
}

// ToDomain converts the model to a domain Transaction
func (m *MemberTransactionModel) ToDomain() *member.Transaction {
	return &member.Transaction{
		BaseEntity:        m.BaseModel.ToDomain(),
		TenantID:          m.TenantID,
		MemberID:          m.MemberID,
		TransactionNumber: m.TransactionNumber,
		Type:              member.TransactionType(m.Type),
		Amount:            m.Amount,
		SavingsPortion:    m.SavingsPortion,
		LoanPortion:       m.LoanPortion,
		InsurancePortion:  m.InsurancePortion,
		BatchID:           m.BatchID,
		ItemID:            m.ItemID,
		Description:       m.Description,
		PostedAt:          m.PostedAt,
	}
}

// MemberTransactionModelFromDomain converts a domain transaction to its model
func MemberTransactionModelFromDomain(t *member.Transaction) *MemberTransactionModel {
	m := &MemberTransactionModel{
		TenantID:          t.TenantID,
		MemberID:          t.MemberID,
		TransactionNumber: t.TransactionNumber,
		Type:              string(t.Type),
		Amount:            t.Amount,
		SavingsPortion:    t.SavingsPortion,
		LoanPortion:       t.LoanPortion,
		InsurancePortion:  t.InsurancePortion,
		BatchID:           t.BatchID,
		ItemID:            t.ItemID,
		Description:       t.Description,
		PostedAt:          t.PostedAt,
	}
	m.FromDomainBaseEntity(t.BaseEntity)
	return m
}
