package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sacco/backend/internal/domain/member"
	"github.com/sacco/backend/internal/domain/shared"
	"github.com/sacco/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormMemberRepository implements member.Repository using GORM
type GormMemberRepository struct {
	db *gorm.DB
}

// NewGormMemberRepository creates a new GormMemberRepository
func NewGormMemberRepository(db *gorm.DB) *GormMemberRepository {
	return &GormMemberRepository{db: db}
}

// FindByID finds a member by ID for a tenant
func (r *GormMemberRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*member.Member, error) {
	var model models.MemberModel
	if err := dbFromContext(ctx, r.db).WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIdentity finds a member by employee number first, national ID
// second, mirroring the settlement matching key order.
func (r *GormMemberRepository) FindByIdentity(ctx context.Context, tenantID uuid.UUID, employeeNumber, nationalID string) (*member.Member, error) {
	db := dbFromContext(ctx, r.db).WithContext(ctx)

	if employeeNumber != "" {
		var model models.MemberModel
		err := db.Where("tenant_id = ? AND employee_number = ?", tenantID, employeeNumber).
			First(&model).Error
		if err == nil {
			return model.ToDomain(), nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}
	if nationalID != "" {
		var model models.MemberModel
		err := db.Where("tenant_id = ? AND national_id = ?", tenantID, nationalID).
			First(&model).Error
		if err == nil {
			return model.ToDomain(), nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}
	return nil, shared.ErrNotFound
}

// Create inserts a member
func (r *GormMemberRepository) Create(ctx context.Context, m *member.Member) error {
	model := models.MemberModelFromDomain(m)
	if err := dbFromContext(ctx, r.db).WithContext(ctx).Create(model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return shared.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// GormSavingsRepository implements member.SavingsRepository using GORM
type GormSavingsRepository struct {
	db *gorm.DB
}

// NewGormSavingsRepository creates a new GormSavingsRepository
func NewGormSavingsRepository(db *gorm.DB) *GormSavingsRepository {
	return &GormSavingsRepository{db: db}
}

// ListActiveByMember returns a member's active savings accounts, oldest first
func (r *GormSavingsRepository) ListActiveByMember(ctx context.Context, tenantID, memberID uuid.UUID) ([]*member.SavingsAccount, error) {
	var accountModels []models.SavingsAccountModel
	if err := dbFromContext(ctx, r.db).WithContext(ctx).
		Where("tenant_id = ? AND member_id = ? AND status = ?", tenantID, memberID, member.SavingsStatusActive).
		Order("created_at ASC").
		Find(&accountModels).Error; err != nil {
		return nil, err
	}
	accounts := make([]*member.SavingsAccount, len(accountModels))
	for i := range accountModels {
		accounts[i] = accountModels[i].ToDomain()
	}
	return accounts, nil
}

// Create inserts a savings account
func (r *GormSavingsRepository) Create(ctx context.Context, a *member.SavingsAccount) error {
	model := models.SavingsAccountModelFromDomain(a)
	return dbFromContext(ctx, r.db).WithContext(ctx).Create(model).Error
}

// SaveWithLock updates a savings account with optimistic locking
func (r *GormSavingsRepository) SaveWithLock(ctx context.Context, a *member.SavingsAccount) error {
	a.IncrementVersion()
	model := models.SavingsAccountModelFromDomain(a)
	result := dbFromContext(ctx, r.db).WithContext(ctx).
		Model(model).
		Where("id = ? AND version = ?", a.ID, a.Version-1).
		Select("*").Omit("id", "created_at").
		Updates(model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// GormLoanRepository implements member.LoanRepository using GORM
type GormLoanRepository struct {
	db *gorm.DB
}

// NewGormLoanRepository creates a new GormLoanRepository
func NewGormLoanRepository(db *gorm.DB) *GormLoanRepository {
	return &GormLoanRepository{db: db}
}

// ListActiveByMember returns a member's active loans, oldest first
func (r *GormLoanRepository) ListActiveByMember(ctx context.Context, tenantID, memberID uuid.UUID) ([]*member.Loan, error) {
	var loanModels []models.LoanModel
	if err := dbFromContext(ctx, r.db).WithContext(ctx).
		Where("tenant_id = ? AND member_id = ? AND status = ?", tenantID, memberID, member.LoanStatusActive).
		Order("created_at ASC").
		Find(&loanModels).Error; err != nil {
		return nil, err
	}
	loans := make([]*member.Loan, len(loanModels))
	for i := range loanModels {
		loans[i] = loanModels[i].ToDomain()
	}
	return loans, nil
}

// Create inserts a loan
func (r *GormLoanRepository) Create(ctx context.Context, l *member.Loan) error {
	model := models.LoanModelFromDomain(l)
	return dbFromContext(ctx, r.db).WithContext(ctx).Create(model).Error
}

// SaveWithLock updates a loan with optimistic locking
func (r *GormLoanRepository) SaveWithLock(ctx context.Context, l *member.Loan) error {
	l.IncrementVersion()
	model := models.LoanModelFromDomain(l)
	result := dbFromContext(ctx, r.db).WithContext(ctx).
		Model(model).
		Where("id = ? AND version = ?", l.ID, l.Version-1).
		Select("*").Omit("id", "created_at").
		Updates(model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// GormPolicyRepository implements member.PolicyRepository using GORM
type GormPolicyRepository struct {
	db *gorm.DB
}

// NewGormPolicyRepository creates a new GormPolicyRepository
func NewGormPolicyRepository(db *gorm.DB) *GormPolicyRepository {
	return &GormPolicyRepository{db: db}
}

// ListActiveByMember returns a member's active insurance policies, oldest first
func (r *GormPolicyRepository) ListActiveByMember(ctx context.Context, tenantID, memberID uuid.UUID) ([]*member.InsurancePolicy, error) {
	var policyModels []models.InsurancePolicyModel
	if err := dbFromContext(ctx, r.db).WithContext(ctx).
		Where("tenant_id = ? AND member_id = ? AND status = ?", tenantID, memberID, member.PolicyStatusActive).
		Order("created_at ASC").
		Find(&policyModels).Error; err != nil {
		return nil, err
	}
	policies := make([]*member.InsurancePolicy, len(policyModels))
	for i := range policyModels {
		policies[i] = policyModels[i].ToDomain()
	}
	return policies, nil
}

// Create inserts a policy
func (r *GormPolicyRepository) Create(ctx context.Context, p *member.InsurancePolicy) error {
	model := models.InsurancePolicyModelFromDomain(p)
	return dbFromContext(ctx, r.db).WithContext(ctx).Create(model).Error
}

// SaveWithLock updates a policy with optimistic locking
func (r *GormPolicyRepository) SaveWithLock(ctx context.Context, p *member.InsurancePolicy) error {
	p.IncrementVersion()
	model := models.InsurancePolicyModelFromDomain(p)
	result := dbFromContext(ctx, r.db).WithContext(ctx).
		Model(model).
		Where("id = ? AND version = ?", p.ID, p.Version-1).
		Select("*").Omit("id", "created_at").
		Updates(model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// GormTransactionRepository implements member.TransactionRepository using GORM
type GormTransactionRepository struct {
	db *gorm.DB
}

// NewGormTransactionRepository creates a new GormTransactionRepository
func NewGormTransactionRepository(db *gorm.DB) *GormTransactionRepository {
	return &GormTransactionRepository{db: db}
}

// Create inserts a member transaction. The transaction number is
// unique per tenant, so replaying a posting surfaces as
// shared.ErrAlreadyExists instead of a second ledger entry.
func (r *GormTransactionRepository) Create(ctx context.Context, tx *member.Transaction) error {
	model := models.MemberTransactionModelFromDomain(tx)
	if err := dbFromContext(ctx, r.db).WithContext(ctx).Create(model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return shared.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// FindByMember returns a member's transactions, newest first
func (r *GormTransactionRepository) FindByMember(ctx context.Context, tenantID, memberID uuid.UUID) ([]*member.Transaction, error) {
	var txModels []models.MemberTransactionModel
	if err := dbFromContext(ctx, r.db).WithContext(ctx).
		Where("tenant_id = ? AND member_id = ?", tenantID, memberID).
		Order("posted_at DESC").
		Find(&txModels).Error; err != nil {
		return nil, err
	}
	txs := make([]*member.Transaction, len(txModels))
	for i := range txModels {
		txs[i] = txModels[i].ToDomain()
	}
	return txs, nil
}
