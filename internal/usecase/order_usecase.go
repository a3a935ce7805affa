package usecase

import (
	"context"
	"errors"
	"strings"

	"marketplace/internal/domain/model"
	repo "marketplace/internal/repository"
	auth "marketplace/internal/usecase/auth_usecase"

	"github.com/shopspring/decimal"
)

type OrderUsecase struct {
	tx     repo.TransactionManager
	orders repo.OrderRepository
	locker IdentityLocker
	idGen  auth.IDGenerator
	clock  auth.Clock
}

func NewOrderUsecase(
	tx repo.TransactionManager,
	orders repo.OrderRepository,
	locker IdentityLocker,
	idGen auth.IDGenerator,
	clock auth.Clock,
) *OrderUsecase {
	return &OrderUsecase{
		tx:     tx,
		orders: orders,
		locker: locker,
		idGen:  idGen,
		clock:  clock,
	}
}

type OrderItemInput struct {
	ProductID      string
	Quantity       int64
	IsPoolPurchase bool
}

type CreateOrderInput struct {
	Items       []OrderItemInput
	TotalAmount decimal.Decimal
}

// 注文作成。価格は出品から取り直してスナップショットにし、合計を照合する。
// 注文の保存とカートのクリアは同じトランザクション。
func (u *OrderUsecase) CreateOrder(ctx context.Context, userID string, in CreateOrderInput) (model.Order, error) {
	if userID == "" {
		return model.Order{}, unauthenticated()
	}
	if len(in.Items) == 0 {
		return model.Order{}, invalidArgument("items must not be empty")
	}
	if in.TotalAmount.IsNegative() {
		return model.Order{}, invalidArgument("invalid total_amount")
	}
	for _, it := range in.Items {
		if strings.TrimSpace(it.ProductID) == "" {
			return model.Order{}, invalidArgument("invalid product_id")
		}
		if !validQuantity(it.Quantity) {
			return model.Order{}, invalidArgument("invalid quantity")
		}
	}

	unlock, err := u.locker.Lock(ctx, cartLockKey(userID))
	if err != nil {
		return model.Order{}, internal(err)
	}
	defer unlock()

	var out model.Order

	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		items := make([]model.OrderItem, 0, len(in.Items))
		total := decimal.Zero

		for i, it := range in.Items {
			productID := strings.TrimSpace(it.ProductID)

			l, err := r.Listings().FindByID(ctx, productID)
			if errors.Is(err, repo.ErrNotFound) {
				return invalidArgument("product not found")
			}
			if err != nil {
				return internal(err)
			}
			if !l.IsPublic() {
				return invalidArgument("product not available")
			}

			// プール枠を確保（足りなければ false）
			if it.IsPoolPurchase {
				ok, err := r.Listings().ReservePool(ctx, l.ID, it.Quantity)
				if err != nil {
					return internal(err)
				}
				if !ok {
					return invalidArgument("pool is full")
				}
			}

			//スナップショット
			line := model.OrderItem{
				ID:             u.idGen.NewID(),
				LineNo:         i + 1,
				ProductID:      l.ID,
				Name:           l.Name,
				UnitPrice:      l.UnitPrice(it.IsPoolPurchase),
				Quantity:       it.Quantity,
				IsPoolPurchase: it.IsPoolPurchase,
			}
			items = append(items, line)
			total = total.Add(line.Subtotal())
		}

		if total.Round(2).GreaterThanOrEqual(maxAmount) {
			return invalidArgument("total_amount too large")
		}

		// 合計の照合（小数2桁）
		if !total.Round(2).Equal(in.TotalAmount.Round(2)) {
			return invalidArgument("total_amount does not match items")
		}

		now := u.clock.Now()
		orderID := u.idGen.NewID()
		for i := range items {
			items[i].OrderID = orderID
		}
		order := model.Order{
			ID:            orderID,
			UserID:        userID,
			Items:         items,
			TotalAmount:   total.Round(2),
			PaymentStatus: model.PaymentStatusPending,
			OrderStatus:   model.OrderStatusProcessing,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if err := r.Orders().Create(ctx, order); err != nil {
			return internal(err)
		}

		// カートを空にする（無ければ何もしない）
		cart, err := r.Carts().FindByUserID(ctx, userID)
		if err == nil {
			if err := r.Carts().Clear(ctx, cart.ID, now); err != nil {
				return internal(err)
			}
		} else if !errors.Is(err, repo.ErrNotFound) {
			return internal(err)
		}

		out = order
		return nil
	})
	if err != nil {
		return model.Order{}, err
	}
	return out, nil
}

// 自分の注文一覧（古い順）
func (u *OrderUsecase) ListOrders(ctx context.Context, userID string) ([]model.Order, error) {
	if userID == "" {
		return nil, unauthenticated()
	}
	orders, err := u.orders.ListByUserID(ctx, userID)
	if err != nil {
		return nil, internal(err)
	}
	if orders == nil {
		orders = []model.Order{}
	}
	return orders, nil
}

// 他人の注文は存在を隠して404
func (u *OrderUsecase) GetOrder(ctx context.Context, userID string, orderID string) (model.Order, error) {
	if userID == "" {
		return model.Order{}, unauthenticated()
	}
	o, err := u.orders.FindByID(ctx, orderID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Order{}, notFound("order not found")
	}
	if err != nil {
		return model.Order{}, internal(err)
	}
	if o.UserID != userID {
		return model.Order{}, notFound("order not found")
	}
	return o, nil
}
