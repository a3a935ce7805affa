package repository

import (
	"context"
	"errors"
	"time"

	"marketplace/internal/domain/model"
	repo "marketplace/internal/repository"

	"gorm.io/gorm"
)

type ListingGormRepository struct {
	db *gorm.DB
}

func NewListingGormRepository(db *gorm.DB) *ListingGormRepository {
	return &ListingGormRepository{db: db}
}

func (r *ListingGormRepository) Create(ctx context.Context, l model.Listing) error {
	return r.db.WithContext(ctx).Create(&l).Error
}

func (r *ListingGormRepository) FindByID(ctx context.Context, id string) (model.Listing, error) {
	var l model.Listing
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&l).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Listing{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Listing{}, err
	}
	return l, nil
}

func (r *ListingGormRepository) ListBySeller(ctx context.Context, sellerID string) ([]model.Listing, error) {
	var items []model.Listing
	err := r.db.WithContext(ctx).
		Where("seller_id = ?", sellerID).
		Order("created_at desc").
		Find(&items).Error
	if err != nil {
		return []model.Listing{}, err
	}
	return items, nil
}

func (r *ListingGormRepository) List(ctx context.Context, status *model.ListingStatus) ([]model.Listing, error) {
	q := r.db.WithContext(ctx).Model(&model.Listing{})
	if status != nil {
		q = q.Where("status = ?", *status)
	}

	var items []model.Listing
	if err := q.Order("created_at desc").Find(&items).Error; err != nil {
		return []model.Listing{}, err
	}
	return items, nil
}

func (r *ListingGormRepository) UpdateStatus(ctx context.Context, id string, status model.ListingStatus, now time.Time) (model.Listing, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Listing{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": now,
		})

	if res.Error != nil {
		return model.Listing{}, res.Error
	}
	if res.RowsAffected == 0 {
		return model.Listing{}, repo.ErrNotFound
	}
	return r.FindByID(ctx, id)
}

// 条件付きUPDATEで枠を確保（足りないなら false）
func (r *ListingGormRepository) ReservePool(ctx context.Context, id string, qty int64) (bool, error) {
	if qty <= 0 {
		return false, errors.New("invalid quantity")
	}

	res := r.db.WithContext(ctx).
		Model(&model.Listing{}).
		Where("id = ? AND pool_size - pool_current >= ?", id, qty).
		UpdateColumn("pool_current", gorm.Expr("pool_current + ?", qty))

	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *ListingGormRepository) ReleasePool(ctx context.Context, id string, qty int64) error {
	res := r.db.WithContext(ctx).
		Model(&model.Listing{}).
		Where("id = ?", id).
		UpdateColumn("pool_current", gorm.Expr("GREATEST(pool_current - ?, 0)", qty))

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}
