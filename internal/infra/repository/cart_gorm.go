package repository

import (
	"context"
	"errors"
	"time"

	"marketplace/internal/domain/model"
	repo "marketplace/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CartGormRepository struct {
	db *gorm.DB
}

// DI
func NewCartGormRepository(db *gorm.DB) *CartGormRepository {
	return &CartGormRepository{db: db}
}

// user_idの一意制約で、同時に呼ばれても1つだけ作られる
func (r *CartGormRepository) GetOrCreate(ctx context.Context, cart model.Cart) (model.Cart, error) {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoNothing: true,
		}).
		Omit(clause.Associations).
		Create(&cart).Error
	if err != nil {
		return model.Cart{}, err
	}

	return r.FindByUserID(ctx, cart.UserID)
}

// ユーザーのカートを明細付きで取得
func (r *CartGormRepository) FindByUserID(ctx context.Context, userID string) (model.Cart, error) {
	var cart model.Cart

	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at asc").Order("id asc")
		}).
		Where("user_id = ?", userID).
		First(&cart).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Cart{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Cart{}, err
	}
	return cart, nil
}

// 同一明細は数量加算（INSERT ... ON CONFLICT DO UPDATE で1文）
func (r *CartGormRepository) AddItem(ctx context.Context, cartID string, item model.CartItem, now time.Time) error {
	if item.Quantity <= 0 {
		return errors.New("invalid quantity")
	}
	item.CartID = cartID

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "cart_id"}, {Name: "product_id"}, {Name: "is_pool_purchase"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"quantity": gorm.Expr("cart_items.quantity + EXCLUDED.quantity"),
			}),
		}).Create(&item).Error
		if err != nil {
			return err
		}

		return touchCart(tx, cartID, now)
	})
}

// product_idの明細をプール/通常問わず削除
func (r *CartGormRepository) RemoveProduct(ctx context.Context, cartID string, productID string, now time.Time) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("cart_id = ? AND product_id = ?", cartID, productID).
			Delete(&model.CartItem{}).Error; err != nil {
			return err
		}
		return touchCart(tx, cartID, now)
	})
}

// 指定カートの明細を全削除
func (r *CartGormRepository) Clear(ctx context.Context, cartID string, now time.Time) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		//cart_itemsを全削除
		if err := tx.Where("cart_id = ?", cartID).Delete(&model.CartItem{}).Error; err != nil {
			return err
		}
		return touchCart(tx, cartID, now)
	})
}

func touchCart(tx *gorm.DB, cartID string, now time.Time) error {
	res := tx.Model(&model.Cart{}).
		Where("id = ?", cartID).
		Update("updated_at", now)

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}
