package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/sacco/backend/internal/domain/deduction"
	"github.com/shopspring/decimal"
)

// ReconciliationBatchModel is the persistence model for reconciliation batches
type ReconciliationBatchModel struct {
	TenantAggregateModel
	BatchNumber    string          `gorm:"type:varchar(50);not null;uniqueIndex:idx_recon_batch_tenant_number,priority:2"`
	Month          int             `gorm:"not null"`
	Year           int             `gorm:"not null"`
	Status         string          `gorm:"type:varchar(20);not null;index"`
	TotalExpected  decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	TotalActual    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	TotalVariance  decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	MatchedCount   int             `gorm:"not null;default:0"`
	VarianceCount  int             `gorm:"not null;default:0"`
	MissingCount   int             `gorm:"not null;default:0"`
	OrphanCount    int             `gorm:"not null;default:0"`
	JournalsPosted bool            `gorm:"not null;default:false"`
	PostedAt       *time.Time
	CompletedAt    *time.Time
}

// TableName returns the table name for GORM
func (ReconciliationBatchModel) TableName() string {
	return "reconciliation_batches"
}

// ToDomain converts the model to a domain ReconciliationBatch
func (m *ReconciliationBatchModel) ToDomain() *deduction.ReconciliationBatch {
	batch := &deduction.ReconciliationBatch{
		BatchNumber:    m.BatchNumber,
		Month:          m.Month,
		Year:           m.Year,
		Status:         deduction.ReconciliationStatus(m.Status),
		TotalExpected:  m.TotalExpected,
		TotalActual:    m.TotalActual,
		TotalVariance:  m.TotalVariance,
		MatchedCount:   m.MatchedCount,
		VarianceCount:  m.VarianceCount,
		MissingCount:   m.MissingCount,
		OrphanCount:    m.OrphanCount,
		JournalsPosted: m.JournalsPosted,
		PostedAt:       m.PostedAt,
		CompletedAt:    m.CompletedAt,
	}
	m.PopulateTenantAggregateRoot(&batch.TenantAggregateRoot)
	return batch
}

// ReconciliationBatchModelFromDomain converts a domain batch to its model
func ReconciliationBatchModelFromDomain(b *deduction.ReconciliationBatch) *ReconciliationBatchModel {
	m := &ReconciliationBatchModel{
		BatchNumber:    b.BatchNumber,
		Month:          b.Month,
		Year:           b.Year,
		Status:         string(b.Status),
		TotalExpected:  b.TotalExpected,
		TotalActual:    b.TotalActual,
		TotalVariance:  b.TotalVariance,
		MatchedCount:   b.MatchedCount,
		VarianceCount:  b.VarianceCount,
		MissingCount:   b.MissingCount,
		OrphanCount:    b.OrphanCount,
		JournalsPosted: b.JournalsPosted,
		PostedAt:       b.PostedAt,
		CompletedAt:    b.CompletedAt,
	}
	m.FromDomainTenantAggregateRoot(b.TenantAggregateRoot)
	return m
}

// ReconciliationItemModel is the persistence model for reconciliation items
type ReconciliationItemModel struct {
	BaseModel
	BatchID              uuid.UUID       `gorm:"type:uuid;not null;index"`
	MemberID             *uuid.UUID      `gorm:"type:uuid;index"`
	MemberNumber         string          `gorm:"type:varchar(50)"`
	NationalID           string          `gorm:"type:varchar(50)"`
	EmployeeNumber       string          `gorm:"type:varchar(50)"`
	ExpectedAmount       decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	RequestedAmount      decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	ActualAmount         decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Variance             decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	MatchStatus          string          `gorm:"type:varchar(20);not null;index"`
	VarianceReason       *string         `gorm:"type:varchar(30)"`
	Notes                string          `gorm:"type:text"`
	RequiresManualReview bool            `gorm:"not null;default:false"`
	JournalPosted        bool            `gorm:"not null;default:false;index"`
	PostedAt             *time.Time
}

// TableName returns the table name for GORM
func (ReconciliationItemModel) TableName() string {
	return "reconciliation_items"
}

// ToDomain converts the model to a domain ReconciliationItem
func (m *ReconciliationItemModel) ToDomain() *deduction.ReconciliationItem {
	item := &deduction.ReconciliationItem{
		BaseEntity:           m.BaseModel.ToDomain(),
		BatchID:              m.BatchID,
		MemberID:             m.MemberID,
		MemberNumber:         m.MemberNumber,
		NationalID:           m.NationalID,
		EmployeeNumber:       m.EmployeeNumber,
		ExpectedAmount:       m.ExpectedAmount,
		RequestedAmount:      m.RequestedAmount,
		ActualAmount:         m.ActualAmount,
		Variance:             m.Variance,
		MatchStatus:          deduction.MatchStatus(m.MatchStatus),
		Notes:                m.Notes,
		RequiresManualReview: m.RequiresManualReview,
		JournalPosted:        m.JournalPosted,
		PostedAt:             m.PostedAt,
	}
	if m.VarianceReason != nil {
		reason := deduction.VarianceReason(*m.VarianceReason)
		item.VarianceReason = &reason
	}
	return item
}

// ReconciliationItemModelFromDomain converts a domain item to its model
func ReconciliationItemModelFromDomain(i *deduction.ReconciliationItem) *ReconciliationItemModel {
	m := &ReconciliationItemModel{
		BatchID:              i.BatchID,
		MemberID:             i.MemberID,
		MemberNumber:         i.MemberNumber,
		NationalID:           i.NationalID,
		EmployeeNumber:       i.EmployeeNumber,
		ExpectedAmount:       i.ExpectedAmount,
		RequestedAmount:      i.RequestedAmount,
		ActualAmount:         i.ActualAmount,
		Variance:             i.Variance,
		MatchStatus:          string(i.MatchStatus),
		Notes:                i.Notes,
		RequiresManualReview: i.RequiresManualReview,
		JournalPosted:        i.JournalPosted,
		PostedAt:             i.PostedAt,
	}
	m.FromDomainBaseEntity(i.BaseEntity)
	if i.VarianceReason != nil {
		reason := string(*i.VarianceReason)
		m.VarianceReason = &reason
	}
	return m
}

// SuspenseEntryModel is the persistence model for suspense entries
type SuspenseEntryModel struct {
	TenantAggregateModel
	Reference       string          `gorm:"type:varchar(50);not null;index"`
	BatchID         uuid.UUID       `gorm:"type:uuid;not null;index"`
	MemberID        *uuid.UUID      `gorm:"type:uuid;index"`
	Amount          decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	EmployeeNumber  string          `gorm:"type:varchar(50)"`
	NationalID      string          `gorm:"type:varchar(50)"`
	SourceReference string          `gorm:"type:varchar(50)"`
	Status          string          `gorm:"type:varchar(20);not null;index"`
	AllocatedTo     *uuid.UUID      `gorm:"type:uuid"`
	ResolutionNotes string          `gorm:"type:text"`
	ResolvedAt      *time.Time
}

// TableName returns the table name for GORM
func (SuspenseEntryModel) TableName() string {
	return "suspense_entries"
}

// ToDomain converts the model to a domain SuspenseEntry
func (m *SuspenseEntryModel) ToDomain() *deduction.SuspenseEntry {
	entry := &deduction.SuspenseEntry{
		Reference:       m.Reference,
		BatchID:         m.BatchID,
		MemberID:        m.MemberID,
		Amount:          m.Amount,
		EmployeeNumber:  m.EmployeeNumber,
		NationalID:      m.NationalID,
		SourceReference: m.SourceReference,
		Status:          deduction.SuspenseStatus(m.Status),
		AllocatedTo:     m.AllocatedTo,
		ResolutionNotes: m.ResolutionNotes,
		ResolvedAt:      m.ResolvedAt,
	}
	m.PopulateTenantAggregateRoot(&entry.TenantAggregateRoot)
	return entry
}

// SuspenseEntryModelFromDomain converts a domain entry to its model
func SuspenseEntryModelFromDomain(e *deduction.SuspenseEntry) *SuspenseEntryModel {
	m := &SuspenseEntryModel{
		Reference:       e.Reference,
		BatchID:         e.BatchID,
		MemberID:        e.MemberID,
		Amount:          e.Amount,
		EmployeeNumber:  e.EmployeeNumber,
		NationalID:      e.NationalID,
		SourceReference: e.SourceReference,
		Status:          string(e.Status),
		AllocatedTo:     e.AllocatedTo,
		ResolutionNotes: e.ResolutionNotes,
		ResolvedAt:      e.ResolvedAt,
	}
	m.FromDomainTenantAggregateRoot(e.TenantAggregateRoot)
	return m
}

// DeductionRequestModel is the persistence model for deduction requests
type DeductionRequestModel struct {
	TenantAggregateModel
	BatchNumber  string          `gorm:"type:varchar(50);not null;index"`
	Month        int             `gorm:"not null;index:idx_request_period,priority:2"`
	Year         int             `gorm:"not null;index:idx_request_period,priority:1"`
	TotalMembers int             `gorm:"not null;default:0"`
	TotalAmount  decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Status       string          `gorm:"type:varchar(20);not null;index"`
	SubmittedAt  *time.Time
}

// TableName returns the table name for GORM
func (DeductionRequestModel) TableName() string {
	return "deduction_requests"
}

// ToDomain converts the model to a domain DeductionRequest
func (m *DeductionRequestModel) ToDomain() *deduction.DeductionRequest {
	request := &deduction.DeductionRequest{
		BatchNumber:  m.BatchNumber,
		Month:        m.Month,
		Year:         m.Year,
		TotalMembers: m.TotalMembers,
		TotalAmount:  m.TotalAmount,
		Status:       deduction.DeductionRequestStatus(m.Status),
		SubmittedAt:  m.SubmittedAt,
	}
	m.PopulateTenantAggregateRoot(&request.TenantAggregateRoot)
	return request
}

// DeductionItemModel is the persistence model for deduction request lines
type DeductionItemModel struct {
	BaseModel
	RequestID      uuid.UUID                     `gorm:"type:uuid;not null;index"`
	MemberID       uuid.UUID                     `gorm:"type:uuid;not null;index"`
	MemberNumber   string                        `gorm:"type:varchar(50);not null"`
	NationalID     string                        `gorm:"type:varchar(50);index"`
	EmployeeNumber string                        `gorm:"type:varchar(50);index"`
	Amount         decimal.Decimal               `gorm:"type:decimal(18,4);not null"`
	Breakdown      deduction.AllocationBreakdown `gorm:"type:jsonb"`
}

// TableName returns the table name for GORM
func (DeductionItemModel) TableName() string {
	return "deduction_items"
}

// ToDomain converts the model to a domain DeductionItem
func (m *DeductionItemModel) ToDomain() deduction.DeductionItem {
	return deduction.DeductionItem{
		BaseEntity:     m.BaseModel.ToDomain(),
		RequestID:      m.RequestID,
		MemberID:       m.MemberID,
		MemberNumber:   m.MemberNumber,
		NationalID:     m.NationalID,
		EmployeeNumber: m.EmployeeNumber,
		Amount:         m.Amount,
		Breakdown:      m.Breakdown,
	}
}
