package repository

import (
	"context"
	"time"

	"marketplace/internal/domain/model"
)

type OrderRepository interface {
	// 明細ごと保存
	Create(ctx context.Context, order model.Order) error
	FindByID(ctx context.Context, orderID string) (model.Order, error)
	// 作成順（古い順）
	ListByUserID(ctx context.Context, userID string) ([]model.Order, error)
	//管理者用の注文一覧
	ListAll(ctx context.Context) ([]model.Order, error)
	UpdateStatus(ctx context.Context, orderID string, orderStatus model.OrderStatus, paymentStatus model.PaymentStatus, now time.Time) error
}
