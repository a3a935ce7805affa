package memstore

import (
	"context"
	"time"

	"marketplace/internal/domain/model"
	repo "marketplace/internal/repository"
)

type cartRepository struct {
	s    *Store
	inTx bool
}

func (r *cartRepository) GetOrCreate(ctx context.Context, cart model.Cart) (model.Cart, error) {
	var out model.Cart
	err := r.s.run(r.inTx, func(st *state) error {
		if existing, ok := st.carts[cart.UserID]; ok {
			out = copyCart(existing)
			return nil
		}
		cart.Items = []model.CartItem{}
		st.carts[cart.UserID] = cart
		out = copyCart(cart)
		return nil
	})
	return out, err
}

func (r *cartRepository) FindByUserID(ctx context.Context, userID string) (model.Cart, error) {
	var out model.Cart
	err := r.s.run(r.inTx, func(st *state) error {
		c, ok := st.carts[userID]
		if !ok {
			return repo.ErrNotFound
		}
		out = copyCart(c)
		return nil
	})
	return out, err
}

func (r *cartRepository) AddItem(ctx context.Context, cartID string, item model.CartItem, now time.Time) error {
	return r.update(cartID, now, func(c *model.Cart) {
		if i, ok := c.FindItem(item.ProductID, item.IsPoolPurchase); ok {
			c.Items[i].Quantity += item.Quantity
			return
		}
		item.CartID = cartID
		c.Items = append(c.Items, item)
	})
}

func (r *cartRepository) RemoveProduct(ctx context.Context, cartID string, productID string, now time.Time) error {
	return r.update(cartID, now, func(c *model.Cart) {
		kept := c.Items[:0]
		for _, it := range c.Items {
			if it.ProductID != productID {
				kept = append(kept, it)
			}
		}
		c.Items = kept
	})
}

func (r *cartRepository) Clear(ctx context.Context, cartID string, now time.Time) error {
	return r.update(cartID, now, func(c *model.Cart) {
		c.Items = []model.CartItem{}
	})
}

func (r *cartRepository) update(cartID string, now time.Time, fn func(c *model.Cart)) error {
	return r.s.run(r.inTx, func(st *state) error {
		for userID, c := range st.carts {
			if c.ID != cartID {
				continue
			}
			c = copyCart(c)
			fn(&c)
			c.UpdatedAt = now
			st.carts[userID] = c
			return nil
		}
		return repo.ErrNotFound
	})
}
