package deduction

import (
	"context"

	"github.com/google/uuid"
	"github.com/sacco/backend/internal/domain/deduction"
	"github.com/sacco/backend/internal/domain/member"
	"github.com/sacco/backend/internal/domain/shared"
	"github.com/stretchr/testify/mock"
)

// passthroughTxManager runs the function directly without a real transaction
type passthroughTxManager struct{}

func (passthroughTxManager) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type mockBatchRepo struct {
	mock.Mock
}

func (m *mockBatchRepo) Create(ctx context.Context, batch *deduction.ReconciliationBatch) error {
	return m.Called(ctx, batch).Error(0)
}

func (m *mockBatchRepo) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*deduction.ReconciliationBatch, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*deduction.ReconciliationBatch), args.Error(1)
}

func (m *mockBatchRepo) FindByBatchNumber(ctx context.Context, tenantID uuid.UUID, batchNumber string) (*deduction.ReconciliationBatch, error) {
	args := m.Called(ctx, tenantID, batchNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*deduction.ReconciliationBatch), args.Error(1)
}

func (m *mockBatchRepo) SaveWithLock(ctx context.Context, batch *deduction.ReconciliationBatch) error {
	return m.Called(ctx, batch).Error(0)
}

func (m *mockBatchRepo) List(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (*shared.Paginated[*deduction.ReconciliationBatch], error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.Paginated[*deduction.ReconciliationBatch]), args.Error(1)
}

type mockItemRepo struct {
	mock.Mock
}

func (m *mockItemRepo) CreateBatch(ctx context.Context, items []*deduction.ReconciliationItem) error {
	return m.Called(ctx, items).Error(0)
}

func (m *mockItemRepo) FindByID(ctx context.Context, id uuid.UUID) (*deduction.ReconciliationItem, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*deduction.ReconciliationItem), args.Error(1)
}

func (m *mockItemRepo) FindByBatch(ctx context.Context, batchID uuid.UUID) ([]*deduction.ReconciliationItem, error) {
	args := m.Called(ctx, batchID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*deduction.ReconciliationItem), args.Error(1)
}

func (m *mockItemRepo) FindPostable(ctx context.Context, batchID uuid.UUID) ([]*deduction.ReconciliationItem, error) {
	args := m.Called(ctx, batchID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*deduction.ReconciliationItem), args.Error(1)
}

func (m *mockItemRepo) ClaimForPosting(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockItemRepo) Update(ctx context.Context, item *deduction.ReconciliationItem) error {
	return m.Called(ctx, item).Error(0)
}

type mockSuspenseRepo struct {
	mock.Mock
}

func (m *mockSuspenseRepo) Create(ctx context.Context, entry *deduction.SuspenseEntry) error {
	return m.Called(ctx, entry).Error(0)
}

func (m *mockSuspenseRepo) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*deduction.SuspenseEntry, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*deduction.SuspenseEntry), args.Error(1)
}

func (m *mockSuspenseRepo) SaveWithLock(ctx context.Context, entry *deduction.SuspenseEntry) error {
	return m.Called(ctx, entry).Error(0)
}

func (m *mockSuspenseRepo) List(ctx context.Context, tenantID uuid.UUID, status *deduction.SuspenseStatus, filter shared.Filter) (*shared.Paginated[*deduction.SuspenseEntry], error) {
	args := m.Called(ctx, tenantID, status, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.Paginated[*deduction.SuspenseEntry]), args.Error(1)
}

type mockRequestRepo struct {
	mock.Mock
}

func (m *mockRequestRepo) FindByPeriod(ctx context.Context, tenantID uuid.UUID, year, month int) (*deduction.DeductionRequest, error) {
	args := m.Called(ctx, tenantID, year, month)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*deduction.DeductionRequest), args.Error(1)
}

func (m *mockRequestRepo) FindItems(ctx context.Context, requestID uuid.UUID) ([]deduction.DeductionItem, error) {
	args := m.Called(ctx, requestID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]deduction.DeductionItem), args.Error(1)
}

type mockMemberRepo struct {
	mock.Mock
}

func (m *mockMemberRepo) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*member.Member, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*member.Member), args.Error(1)
}

func (m *mockMemberRepo) FindByIdentity(ctx context.Context, tenantID uuid.UUID, employeeNumber, nationalID string) (*member.Member, error) {
	args := m.Called(ctx, tenantID, employeeNumber, nationalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*member.Member), args.Error(1)
}

func (m *mockMemberRepo) Create(ctx context.Context, mem *member.Member) error {
	return m.Called(ctx, mem).Error(0)
}

type mockSavingsRepo struct {
	mock.Mock
}

func (m *mockSavingsRepo) ListActiveByMember(ctx context.Context, tenantID, memberID uuid.UUID) ([]*member.SavingsAccount, error) {
	args := m.Called(ctx, tenantID, memberID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*member.SavingsAccount), args.Error(1)
}

func (m *mockSavingsRepo) Create(ctx context.Context, a *member.SavingsAccount) error {
	return m.Called(ctx, a).Error(0)
}

func (m *mockSavingsRepo) SaveWithLock(ctx context.Context, a *member.SavingsAccount) error {
	return m.Called(ctx, a).Error(0)
}

type mockLoanRepo struct {
	mock.Mock
}

func (m *mockLoanRepo) ListActiveByMember(ctx context.Context, tenantID, memberID uuid.UUID) ([]*member.Loan, error) {
	args := m.Called(ctx, tenantID, memberID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*member.Loan), args.Error(1)
}

func (m *mockLoanRepo) Create(ctx context.Context, l *member.Loan) error {
	return m.Called(ctx, l).Error(0)
}

func (m *mockLoanRepo) SaveWithLock(ctx context.Context, l *member.Loan) error {
	return m.Called(ctx, l).Error(0)
}

type mockPolicyRepo struct {
	mock.Mock
}

func (m *mockPolicyRepo) ListActiveByMember(ctx context.Context, tenantID, memberID uuid.UUID) ([]*member.InsurancePolicy, error) {
	args := m.Called(ctx, tenantID, memberID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*member.InsurancePolicy), args.Error(1)
}

func (m *mockPolicyRepo) Create(ctx context.Context, p *member.InsurancePolicy) error {
	return m.Called(ctx, p).Error(0)
}

func (m *mockPolicyRepo) SaveWithLock(ctx context.Context, p *member.InsurancePolicy) error {
	return m.Called(ctx, p).Error(0)
}

type mockTransactionRepo struct {
	mock.Mock
}

func (m *mockTransactionRepo) Create(ctx context.Context, tx *member.Transaction) error {
	return m.Called(ctx, tx).Error(0)
}

func (m *mockTransactionRepo) FindByMember(ctx context.Context, tenantID, memberID uuid.UUID) ([]*member.Transaction, error) {
	args := m.Called(ctx, tenantID, memberID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*member.Transaction), args.Error(1)
}
