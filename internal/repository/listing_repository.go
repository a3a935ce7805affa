package repository

import (
	"context"
	"time"

	"marketplace/internal/domain/model"
)

type ListingRepository interface {
	Create(ctx context.Context, l model.Listing) error
	FindByID(ctx context.Context, id string) (model.Listing, error)
	ListBySeller(ctx context.Context, sellerID string) ([]model.Listing, error)
	// statusがnilなら全件
	List(ctx context.Context, status *model.ListingStatus) ([]model.Listing, error)
	// 更新後の出品を返す
	UpdateStatus(ctx context.Context, id string, status model.ListingStatus, now time.Time) (model.Listing, error)

	// poolCurrent+qty <= poolSize のときだけ加算。足りなければfalse。
	ReservePool(ctx context.Context, id string, qty int64) (bool, error)
	// キャンセル時にpoolCurrentを戻す（0未満にはしない）
	ReleasePool(ctx context.Context, id string, qty int64) error
}
