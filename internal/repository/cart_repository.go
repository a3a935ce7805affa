package repository

import (
	"context"
	"time"

	"marketplace/internal/domain/model"
)

type CartRepository interface {
	// cart.UserIDのカートを返す。無ければcartをそのまま保存して返す。
	GetOrCreate(ctx context.Context, cart model.Cart) (model.Cart, error)
	FindByUserID(ctx context.Context, userID string) (model.Cart, error)
	// 同じ(product_id, is_pool_purchase)があれば数量を加算、無ければ追加。
	AddItem(ctx context.Context, cartID string, item model.CartItem, now time.Time) error
	// product_idが一致する明細をプール/通常問わず削除
	RemoveProduct(ctx context.Context, cartID string, productID string, now time.Time) error
	Clear(ctx context.Context, cartID string, now time.Time) error
}
