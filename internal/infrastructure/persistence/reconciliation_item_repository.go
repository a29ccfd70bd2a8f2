package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sacco/backend/internal/domain/deduction"
	"github.com/sacco/backend/internal/domain/shared"
	"github.com/sacco/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormItemRepository implements deduction.ItemRepository using GORM
type GormItemRepository struct {
	db *gorm.DB
}

// NewGormItemRepository creates a new GormItemRepository
func NewGormItemRepository(db *gorm.DB) *GormItemRepository {
	return &GormItemRepository{db: db}
}

// CreateBatch inserts all items of one reconciliation run
func (r *GormItemRepository) CreateBatch(ctx context.Context, items []*deduction.ReconciliationItem) error {
	if len(items) == 0 {
		return nil
	}
	itemModels := make([]*models.ReconciliationItemModel, len(items))
	for i, item := range items {
		itemModels[i] = models.ReconciliationItemModelFromDomain(item)
	}
	return dbFromContext(ctx, r.db).WithContext(ctx).CreateInBatches(itemModels, 500).Error
}

// FindByID finds an item by ID
func (r *GormItemRepository) FindByID(ctx context.Context, id uuid.UUID) (*deduction.ReconciliationItem, error) {
	var model models.ReconciliationItemModel
	if err := dbFromContext(ctx, r.db).WithContext(ctx).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByBatch returns all items of a batch in creation order
func (r *GormItemRepository) FindByBatch(ctx context.Context, batchID uuid.UUID) ([]*deduction.ReconciliationItem, error) {
	var itemModels []models.ReconciliationItemModel
	if err := dbFromContext(ctx, r.db).WithContext(ctx).
		Where("batch_id = ?", batchID).
		Order("created_at ASC").
		Find(&itemModels).Error; err != nil {
		return nil, err
	}
	items := make([]*deduction.ReconciliationItem, len(itemModels))
	for i := range itemModels {
		items[i] = itemModels[i].ToDomain()
	}
	return items, nil
}

// FindPostable returns the matched, not yet posted items of a batch
func (r *GormItemRepository) FindPostable(ctx context.Context, batchID uuid.UUID) ([]*deduction.ReconciliationItem, error) {
	var itemModels []models.ReconciliationItemModel
	if err := dbFromContext(ctx, r.db).WithContext(ctx).
		Where("batch_id = ? AND match_status = ? AND journal_posted = ?",
			batchID, deduction.MatchStatusMatched, false).
		Order("created_at ASC").
		Find(&itemModels).Error; err != nil {
		return nil, err
	}
	items := make([]*deduction.ReconciliationItem, len(itemModels))
	for i := range itemModels {
		items[i] = itemModels[i].ToDomain()
	}
	return items, nil
}

// ClaimForPosting atomically flips the journal-posted flag. The guard
// on the current flag value makes the claim exclusive: whoever loses
// the race gets shared.ErrAlreadyPosted and must not touch balances.
func (r *GormItemRepository) ClaimForPosting(ctx context.Context, id uuid.UUID) error {
	result := dbFromContext(ctx, r.db).WithContext(ctx).
		Model(&models.ReconciliationItemModel{}).
		Where("id = ? AND match_status = ? AND journal_posted = ?",
			id, deduction.MatchStatusMatched, false).
		Updates(map[string]interface{}{
			"journal_posted": true,
			"posted_at":      time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrAlreadyPosted
	}
	return nil
}

// Update saves item mutations such as review notes
func (r *GormItemRepository) Update(ctx context.Context, item *deduction.ReconciliationItem) error {
	model := models.ReconciliationItemModelFromDomain(item)
	result := dbFromContext(ctx, r.db).WithContext(ctx).
		Model(model).
		Where("id = ?", item.ID).
		Select("*").Omit("id", "created_at").
		Updates(model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}
