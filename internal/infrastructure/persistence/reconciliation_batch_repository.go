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

// GormBatchRepository implements deduction.BatchRepository using GORM
type GormBatchRepository struct {
	db *gorm.DB
}

// NewGormBatchRepository creates a new GormBatchRepository
func NewGormBatchRepository(db *gorm.DB) *GormBatchRepository {
	return &GormBatchRepository{db: db}
}

// Create inserts a new reconciliation batch. The unique index on the
// batch number turns a duplicate period run into shared.ErrAlreadyExists.
func (r *GormBatchRepository) Create(ctx context.Context, batch *deduction.ReconciliationBatch) error {
	model := models.ReconciliationBatchModelFromDomain(batch)
	if err := dbFromContext(ctx, r.db).WithContext(ctx).Create(model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return shared.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// FindByID finds a batch by ID for a tenant
func (r *GormBatchRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*deduction.ReconciliationBatch, error) {
	var model models.ReconciliationBatchModel
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

// FindByBatchNumber finds a batch by its batch number for a tenant
func (r *GormBatchRepository) FindByBatchNumber(ctx context.Context, tenantID uuid.UUID, batchNumber string) (*deduction.ReconciliationBatch, error) {
	var model models.ReconciliationBatchModel
	if err := dbFromContext(ctx, r.db).WithContext(ctx).
		Where("tenant_id = ? AND batch_number = ?", tenantID, batchNumber).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// SaveWithLock updates a batch with optimistic locking
func (r *GormBatchRepository) SaveWithLock(ctx context.Context, batch *deduction.ReconciliationBatch) error {
	batch.IncrementVersion()
	model := models.ReconciliationBatchModelFromDomain(batch)
	result := dbFromContext(ctx, r.db).WithContext(ctx).
		Model(model).
		Where("id = ? AND version = ?", batch.ID, batch.Version-1).
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

// List pages through a tenant's batches, newest first
func (r *GormBatchRepository) List(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (*shared.Paginated[*deduction.ReconciliationBatch], error) {
	db := dbFromContext(ctx, r.db).WithContext(ctx)
	query := db.Model(&models.ReconciliationBatchModel{}).Where("tenant_id = ?", tenantID)

	if year, ok := filter.Filters["year"]; ok {
		query = query.Where("year = ?", year)
	}
	if status, ok := filter.Filters["status"]; ok {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	sortField := ValidateSortField(filter.OrderBy, ReconciliationBatchSortFields, "year")
	sortOrder := ValidateSortOrder(filter.OrderDir)
	orderClause := sortField + " " + sortOrder
	if sortField == "year" {
		orderClause += ", month " + sortOrder
	}

	var batchModels []models.ReconciliationBatchModel
	offset := (filter.Page - 1) * filter.PageSize
	if err := query.
		Order(orderClause).
		Offset(offset).Limit(filter.PageSize).
		Find(&batchModels).Error; err != nil {
		return nil, err
	}

	batches := make([]*deduction.ReconciliationBatch, len(batchModels))
	for i := range batchModels {
		batches[i] = batchModels[i].ToDomain()
	}
	result := shared.NewPaginated(batches, total, filter.Page, filter.PageSize)
	return &result, nil
}
