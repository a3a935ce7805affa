package memstore

import (
	"context"
	"time"

	"marketplace/internal/domain/model"
	repo "marketplace/internal/repository"
)

type orderRepository struct {
	s    *Store
	inTx bool
}

func (r *orderRepository) Create(ctx context.Context, order model.Order) error {
	return r.s.run(r.inTx, func(st *state) error {
		for _, o := range st.orders {
			if o.ID == order.ID {
				return repo.ErrDuplicate
			}
		}
		st.orders = append(st.orders, copyOrder(order))
		return nil
	})
}

func (r *orderRepository) FindByID(ctx context.Context, orderID string) (model.Order, error) {
	var out model.Order
	err := r.s.run(r.inTx, func(st *state) error {
		for _, o := range st.orders {
			if o.ID == orderID {
				out = copyOrder(o)
				return nil
			}
		}
		return repo.ErrNotFound
	})
	return out, err
}

func (r *orderRepository) ListByUserID(ctx context.Context, userID string) ([]model.Order, error) {
	out := []model.Order{}
	err := r.s.run(r.inTx, func(st *state) error {
		for _, o := range st.orders {
			if o.UserID == userID {
				out = append(out, copyOrder(o))
			}
		}
		return nil
	})
	return out, err
}

// 新しい順
func (r *orderRepository) ListAll(ctx context.Context) ([]model.Order, error) {
	out := []model.Order{}
	err := r.s.run(r.inTx, func(st *state) error {
		for i := len(st.orders) - 1; i >= 0; i-- {
			out = append(out, copyOrder(st.orders[i]))
		}
		return nil
	})
	return out, err
}

func (r *orderRepository) UpdateStatus(ctx context.Context, orderID string, orderStatus model.OrderStatus, paymentStatus model.PaymentStatus, now time.Time) error {
	return r.s.run(r.inTx, func(st *state) error {
		for i := range st.orders {
			if st.orders[i].ID == orderID {
				st.orders[i].OrderStatus = orderStatus
				st.orders[i].PaymentStatus = paymentStatus
				st.orders[i].UpdatedAt = now
				return nil
			}
		}
		return repo.ErrNotFound
	})
}
