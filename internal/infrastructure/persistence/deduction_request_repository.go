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

// GormRequestRepository implements deduction.RequestRepository using GORM.
// The reconciliation engine reads requests and their lines, it never
// writes them.
type GormRequestRepository struct {
	db *gorm.DB
}

// NewGormRequestRepository creates a new GormRequestRepository
func NewGormRequestRepository(db *gorm.DB) *GormRequestRepository {
	return &GormRequestRepository{db: db}
}

// FindByPeriod finds the deduction request submitted for a payroll period
func (r *GormRequestRepository) FindByPeriod(ctx context.Context, tenantID uuid.UUID, year, month int) (*deduction.DeductionRequest, error) {
	var model models.DeductionRequestModel
	if err := dbFromContext(ctx, r.db).WithContext(ctx).
		Where("tenant_id = ? AND year = ? AND month = ?", tenantID, year, month).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindItems returns all lines of a deduction request
func (r *GormRequestRepository) FindItems(ctx context.Context, requestID uuid.UUID) ([]deduction.DeductionItem, error) {
	var itemModels []models.DeductionItemModel
	if err := dbFromContext(ctx, r.db).WithContext(ctx).
		Where("request_id = ?", requestID).
		Order("member_number ASC").
		Find(&itemModels).Error; err != nil {
		return nil, err
	}
	items := make([]deduction.DeductionItem, len(itemModels))
	for i := range itemModels {
		items[i] = itemModels[i].ToDomain()
	}
	return items, nil
}
