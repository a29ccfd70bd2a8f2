package handler

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/sacco/backend/internal/domain/deduction"
	"github.com/sacco/backend/internal/domain/member"
	"github.com/sacco/backend/internal/domain/shared"
)

// passthroughTxManager runs the function directly without a real transaction
type passthroughTxManager struct{}

func (passthroughTxManager) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type MockBatchRepository struct {
	mock.Mock
}

func (m *MockBatchRepository) Create(ctx context.Context, batch *deduction.ReconciliationBatch) error {
	return m.Called(ctx, batch).Error(0)
}

func (m *MockBatchRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*deduction.ReconciliationBatch, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*deduction.ReconciliationBatch), args.Error(1)
}

func (m *MockBatchRepository) FindByBatchNumber(ctx context.Context, tenantID uuid.UUID, batchNumber string) (*deduction.ReconciliationBatch, error) {
	args := m.Called(ctx, tenantID, batchNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*deduction.ReconciliationBatch), args.Error(1)
}

func (m *MockBatchRepository) SaveWithLock(ctx context.Context, batch *deduction.ReconciliationBatch) error {
	return m.Called(ctx, batch).Error(0)
}

func (m *MockBatchRepository) List(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (*shared.Paginated[*deduction.ReconciliationBatch], error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.Paginated[*deduction.ReconciliationBatch]), args.Error(1)
}

var _ deduction.BatchRepository = (*MockBatchRepository)(nil)

type MockItemRepository struct {
	mock.Mock
}

func (m *MockItemRepository) CreateBatch(ctx context.Context, items []*deduction.ReconciliationItem) error {
	return m.Called(ctx, items).Error(0)
}

func (m *MockItemRepository) FindByID(ctx context.Context, id uuid.UUID) (*deduction.ReconciliationItem, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*deduction.ReconciliationItem), args.Error(1)
}

func (m *MockItemRepository) FindByBatch(ctx context.Context, batchID uuid.UUID) ([]*deduction.ReconciliationItem, error) {
	args := m.Called(ctx, batchID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*deduction.ReconciliationItem), args.Error(1)
}

func (m *MockItemRepository) FindPostable(ctx context.Context, batchID uuid.UUID) ([]*deduction.ReconciliationItem, error) {
	args := m.Called(ctx, batchID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*deduction.ReconciliationItem), args.Error(1)
}

func (m *MockItemRepository) ClaimForPosting(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockItemRepository) Update(ctx context.Context, item *deduction.ReconciliationItem) error {
	return m.Called(ctx, item).Error(0)
}

var _ deduction.ItemRepository = (*MockItemRepository)(nil)

type MockSuspenseRepository struct {
	mock.Mock
}

func (m *MockSuspenseRepository) Create(ctx context.Context, entry *deduction.SuspenseEntry) error {
	return m.Called(ctx, entry).Error(0)
}

func (m *MockSuspenseRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*deduction.SuspenseEntry, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*deduction.SuspenseEntry), args.Error(1)
}

func (m *MockSuspenseRepository) SaveWithLock(ctx context.Context, entry *deduction.SuspenseEntry) error {
	return m.Called(ctx, entry).Error(0)
}

func (m *MockSuspenseRepository) List(ctx context.Context, tenantID uuid.UUID, status *deduction.SuspenseStatus, filter shared.Filter) (*shared.Paginated[*deduction.SuspenseEntry], error) {
	args := m.Called(ctx, tenantID, status, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.Paginated[*deduction.SuspenseEntry]), args.Error(1)
}

var _ deduction.SuspenseRepository = (*MockSuspenseRepository)(nil)

type MockRequestRepository struct {
	mock.Mock
}

func (m *MockRequestRepository) FindByPeriod(ctx context.Context, tenantID uuid.UUID, year, month int) (*deduction.DeductionRequest, error) {
	args := m.Called(ctx, tenantID, year, month)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*deduction.DeductionRequest), args.Error(1)
}

func (m *MockRequestRepository) FindItems(ctx context.Context, requestID uuid.UUID) ([]deduction.DeductionItem, error) {
	args := m.Called(ctx, requestID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]deduction.DeductionItem), args.Error(1)
}

var _ deduction.RequestRepository = (*MockRequestRepository)(nil)

type MockMemberRepository struct {
	mock.Mock
}

func (m *MockMemberRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*member.Member, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*member.Member), args.Error(1)
}

func (m *MockMemberRepository) FindByIdentity(ctx context.Context, tenantID uuid.UUID, employeeNumber, nationalID string) (*member.Member, error) {
	args := m.Called(ctx, tenantID, employeeNumber, nationalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*member.Member), args.Error(1)
}

func (m *MockMemberRepository) Create(ctx context.Context, mem *member.Member) error {
	return m.Called(ctx, mem).Error(0)
}

var _ member.Repository = (*MockMemberRepository)(nil)

type MockSavingsRepository struct {
	mock.Mock
}

func (m *MockSavingsRepository) ListActiveByMember(ctx context.Context, tenantID, memberID uuid.UUID) ([]*member.SavingsAccount, error) {
	args := m.Called(ctx, tenantID, memberID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*member.SavingsAccount), args.Error(1)
}

func (m *MockSavingsRepository) Create(ctx context.Context, a *member.SavingsAccount) error {
	return m.Called(ctx, a).Error(0)
}

func (m *MockSavingsRepository) SaveWithLock(ctx context.Context, a *member.SavingsAccount) error {
	return m.Called(ctx, a).Error(0)
}

var _ member.SavingsRepository = (*MockSavingsRepository)(nil)

type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) Create(ctx context.Context, tx *member.Transaction) error {
	return m.Called(ctx, tx).Error(0)
}

func (m *MockTransactionRepository) FindByMember(ctx context.Context, tenantID, memberID uuid.UUID) ([]*member.Transaction, error) {
	args := m.Called(ctx, tenantID, memberID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*member.Transaction), args.Error(1)
}

var _ member.TransactionRepository = (*MockTransactionRepository)(nil)
