package usecase

import (
	"context"
	"errors"
	"strings"

	"marketplace/internal/domain/model"
	repo "marketplace/internal/repository"
	auth "marketplace/internal/usecase/auth_usecase"
)

type AdminOrderUsecase struct {
	tx     repo.TransactionManager
	orders repo.OrderRepository
	idGen  auth.IDGenerator
	clock  auth.Clock
}

func NewAdminOrderUsecase(
	tx repo.TransactionManager,
	orders repo.OrderRepository,
	idGen auth.IDGenerator,
	clock auth.Clock,
) *AdminOrderUsecase {
	return &AdminOrderUsecase{
		tx:     tx,
		orders: orders,
		idGen:  idGen,
		clock:  clock,
	}
}

// 空文字は変更しない
type AdminUpdateOrderStatusInput struct {
	OrderStatus   string
	PaymentStatus string
}

// 注文一覧（全ユーザー）
func (u *AdminOrderUsecase) List(ctx context.Context) ([]model.Order, error) {
	orders, err := u.orders.ListAll(ctx)
	if err != nil {
		return nil, internal(err)
	}
	if orders == nil {
		orders = []model.Order{}
	}
	return orders, nil
}

// ステータス更新（cancelledならプール枠を戻す）
func (u *AdminOrderUsecase) UpdateStatus(ctx context.Context, admin model.User, orderID string, in AdminUpdateOrderStatusInput) (model.Order, error) {
	if err := RequireRole(admin, model.RoleAdmin); err != nil {
		return model.Order{}, err
	}

	nextOrder := model.OrderStatus(strings.TrimSpace(in.OrderStatus))
	nextPayment := model.PaymentStatus(strings.TrimSpace(in.PaymentStatus))
	if nextOrder == "" && nextPayment == "" {
		return model.Order{}, invalidArgument("order_status or payment_status is required")
	}
	if nextOrder != "" && !nextOrder.Valid() {
		return model.Order{}, invalidArgument("invalid order_status")
	}
	if nextPayment != "" && !nextPayment.Valid() {
		return model.Order{}, invalidArgument("invalid payment_status")
	}

	var out model.Order

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if errors.Is(err, repo.ErrNotFound) {
			return notFound("order not found")
		}
		if err != nil {
			return internal(err)
		}

		orderStatus := o.OrderStatus
		if nextOrder != "" && nextOrder != o.OrderStatus {
			// 終端ガード
			if !o.OrderStatus.CanTransitionTo(nextOrder) {
				return invalidArgument("cannot change order status from " + string(o.OrderStatus) + " to " + string(nextOrder))
			}
			orderStatus = nextOrder
		}

		paymentStatus := o.PaymentStatus
		if nextPayment != "" && nextPayment != o.PaymentStatus {
			if !o.PaymentStatus.CanTransitionTo(nextPayment) {
				return invalidArgument("cannot change payment status from " + string(o.PaymentStatus) + " to " + string(nextPayment))
			}
			paymentStatus = nextPayment
		}

		// すでに同じなら何もしない
		if orderStatus == o.OrderStatus && paymentStatus == o.PaymentStatus {
			out = o
			return nil
		}

		// cancelledになるときだけプール枠を戻す
		if orderStatus == model.OrderStatusCancelled && o.OrderStatus != model.OrderStatusCancelled {
			for _, it := range o.Items {
				if !it.IsPoolPurchase {
					continue
				}
				if err := r.Listings().ReleasePool(ctx, it.ProductID, it.Quantity); err != nil && !errors.Is(err, repo.ErrNotFound) {
					return internal(err)
				}
			}
		}

		now := u.clock.Now()
		if err := r.Orders().UpdateStatus(ctx, orderID, orderStatus, paymentStatus, now); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return notFound("order not found")
			}
			return internal(err)
		}

		// 監査ログ（UPDATE_ORDER_STATUS）
		if err := r.AuditLogs().Create(ctx, model.AuditLog{
			ID:           u.idGen.NewID(),
			ActorUserID:  admin.ID,
			Action:       model.AuditActionUpdateOrderStatus,
			ResourceType: model.AuditResourceOrder,
			ResourceID:   orderID,
			BeforeJSON: statusJSON(map[string]string{
				"order_status":   string(o.OrderStatus),
				"payment_status": string(o.PaymentStatus),
			}),
			AfterJSON: statusJSON(map[string]string{
				"order_status":   string(orderStatus),
				"payment_status": string(paymentStatus),
			}),
			CreatedAt: now,
		}); err != nil {
			return internal(err)
		}

		o.OrderStatus = orderStatus
		o.PaymentStatus = paymentStatus
		o.UpdatedAt = now
		out = o
		return nil
	})
	if err != nil {
		return model.Order{}, err
	}
	return out, nil
}
