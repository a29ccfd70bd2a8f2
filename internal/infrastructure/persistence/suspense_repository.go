package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sacco/backend/internal/domain/deduction"
	"github.com/sacco/backend/internal/domain/shared"
	"github.com/sacco/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormSuspenseRepository implements deduction.SuspenseRepository using GORM
type GormSuspenseRepository struct {
	db *gorm.DB
}

// NewGormSuspenseRepository creates a new GormSuspenseRepository
func NewGormSuspenseRepository(db *gorm.DB) *GormSuspenseRepository {
	return &GormSuspenseRepository{db: db}
}

// Create inserts a suspense entry
func (r *GormSuspenseRepository) Create(ctx context.Context, entry *deduction.SuspenseEntry) error {
	model := models.SuspenseEntryModelFromDomain(entry)
	return dbFromContext(ctx, r.db).WithContext(ctx).Create(model).Error
}

// FindByID finds a suspense entry by ID for a tenant
func (r *GormSuspenseRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*deduction.SuspenseEntry, error) {
	var model models.SuspenseEntryModel
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

// SaveWithLock updates a suspense entry with optimistic locking
func (r *GormSuspenseRepository) SaveWithLock(ctx context.Context, entry *deduction.SuspenseEntry) error {
	entry.IncrementVersion()
	model := models.SuspenseEntryModelFromDomain(entry)
	result := dbFromContext(ctx, r.db).WithContext(ctx).
		Model(model).
		Where("id = ? AND version = ?", entry.ID, entry.Version-1).
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

// List pages through a tenant's suspense entries, oldest pending first
func (r *GormSuspenseRepository) List(ctx context.Context, tenantID uuid.UUID, status *deduction.SuspenseStatus, filter shared.Filter) (*shared.Paginated[*deduction.SuspenseEntry], error) {
	db := dbFromContext(ctx, r.db).WithContext(ctx)
	query := db.Model(&models.SuspenseEntryModel{}).Where("tenant_id = ?", tenantID)
	if status != nil {
		query = query.Where("status = ?", *status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	var entryModels []models.SuspenseEntryModel
	offset := (filter.Page - 1) * filter.PageSize
	if err := query.
		Order("created_at ASC").
		Offset(offset).Limit(filter.PageSize).
		Find(&entryModels).Error; err != nil {
		return nil, err
	}

	entries := make([]*deduction.SuspenseEntry, len(entryModels))
	for i := range entryModels {
		entries[i] = entryModels[i].ToDomain()
	}
	result := shared.NewPaginated(entries, total, filter.Page, filter.PageSize)
	return &result, nil
}
