package usecase

import (
	"context"
	"errors"
	"strings"

	"marketplace/internal/domain/model"
	repo "marketplace/internal/repository"
	auth "marketplace/internal/usecase/auth_usecase"
)

// CartUsecase は /cart の業務ロジックです。
type CartUsecase struct {
	carts    repo.CartRepository
	listings repo.ListingRepository
	locker   IdentityLocker
	idGen    auth.IDGenerator
	clock    auth.Clock
}

func NewCartUsecase(
	carts repo.CartRepository,
	listings repo.ListingRepository,
	locker IdentityLocker,
	idGen auth.IDGenerator,
	clock auth.Clock,
) *CartUsecase {
	return &CartUsecase{
		carts:    carts,
		listings: listings,
		locker:   locker,
		idGen:    idGen,
		clock:    clock,
	}
}

type AddCartInput struct {
	ProductID      string
	Quantity       int64
	IsPoolPurchase bool
}

// GetCart はカート取得（無ければ空で作る）。
func (u *CartUsecase) GetCart(ctx context.Context, userID string) (model.Cart, error) {
	if userID == "" {
		return model.Cart{}, unauthenticated()
	}
	return u.getOrCreate(ctx, userID)
}

// AddItem はカートに追加（同じ商品・同じ購入方法なら数量加算）。
func (u *CartUsecase) AddItem(ctx context.Context, userID string, in AddCartInput) (model.Cart, error) {
	if userID == "" {
		return model.Cart{}, unauthenticated()
	}
	productID := strings.TrimSpace(in.ProductID)
	if productID == "" {
		return model.Cart{}, invalidArgument("invalid product_id")
	}
	if !validQuantity(in.Quantity) {
		return model.Cart{}, invalidArgument("invalid quantity")
	}

	// 商品チェック（公開のみ）
	l, err := u.listings.FindByID(ctx, productID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Cart{}, invalidArgument("product not found")
	}
	if err != nil {
		return model.Cart{}, internal(err)
	}
	if !l.IsPublic() {
		return model.Cart{}, invalidArgument("product not available")
	}
	if in.IsPoolPurchase && l.PoolSize == 0 {
		return model.Cart{}, invalidArgument("pool purchase not available")
	}

	unlock, err := u.locker.Lock(ctx, cartLockKey(userID))
	if err != nil {
		return model.Cart{}, internal(err)
	}
	defer unlock()

	cart, err := u.getOrCreate(ctx, userID)
	if err != nil {
		return model.Cart{}, err
	}

	// 加算後も上限以内
	if i, ok := cart.FindItem(productID, in.IsPoolPurchase); ok && cart.Items[i].Quantity > MaxItemQuantity-in.Quantity {
		return model.Cart{}, invalidArgument("quantity exceeds limit")
	}

	now := u.clock.Now()
	item := model.CartItem{
		ID:             u.idGen.NewID(),
		CartID:         cart.ID,
		ProductID:      productID,
		Quantity:       in.Quantity,
		IsPoolPurchase: in.IsPoolPurchase,
		CreatedAt:      now,
	}
	if err := u.carts.AddItem(ctx, cart.ID, item, now); err != nil {
		return model.Cart{}, internal(err)
	}

	return u.reload(ctx, userID)
}

// product_idの明細を削除（プール/通常どちらも）。カートが無くても成功。
func (u *CartUsecase) RemoveItem(ctx context.Context, userID string, productID string) (model.Cart, error) {
	if userID == "" {
		return model.Cart{}, unauthenticated()
	}
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return model.Cart{}, invalidArgument("invalid product_id")
	}

	unlock, err := u.locker.Lock(ctx, cartLockKey(userID))
	if err != nil {
		return model.Cart{}, internal(err)
	}
	defer unlock()

	cart, err := u.carts.FindByUserID(ctx, userID)
	if errors.Is(err, repo.ErrNotFound) {
		return emptyCart(userID), nil
	}
	if err != nil {
		return model.Cart{}, internal(err)
	}

	if err := u.carts.RemoveProduct(ctx, cart.ID, productID, u.clock.Now()); err != nil {
		return model.Cart{}, internal(err)
	}
	return u.reload(ctx, userID)
}

// 明細を空にする。何度呼んでも同じ結果。
func (u *CartUsecase) Clear(ctx context.Context, userID string) (model.Cart, error) {
	if userID == "" {
		return model.Cart{}, unauthenticated()
	}

	unlock, err := u.locker.Lock(ctx, cartLockKey(userID))
	if err != nil {
		return model.Cart{}, internal(err)
	}
	defer unlock()

	cart, err := u.carts.FindByUserID(ctx, userID)
	if errors.Is(err, repo.ErrNotFound) {
		return emptyCart(userID), nil
	}
	if err != nil {
		return model.Cart{}, internal(err)
	}

	if err := u.carts.Clear(ctx, cart.ID, u.clock.Now()); err != nil {
		return model.Cart{}, internal(err)
	}
	return u.reload(ctx, userID)
}

func (u *CartUsecase) getOrCreate(ctx context.Context, userID string) (model.Cart, error) {
	now := u.clock.Now()
	cart, err := u.carts.GetOrCreate(ctx, model.Cart{
		ID:        u.idGen.NewID(),
		UserID:    userID,
		Items:     []model.CartItem{},
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return model.Cart{}, internal(err)
	}
	return normalizeCart(cart), nil
}

func (u *CartUsecase) reload(ctx context.Context, userID string) (model.Cart, error) {
	cart, err := u.carts.FindByUserID(ctx, userID)
	if err != nil {
		return model.Cart{}, internal(err)
	}
	return normalizeCart(cart), nil
}

func emptyCart(userID string) model.Cart {
	return model.Cart{UserID: userID, Items: []model.CartItem{}}
}

// JSONでitemsがnullにならないように
func normalizeCart(c model.Cart) model.Cart {
	if c.Items == nil {
		c.Items = []model.CartItem{}
	}
	return c
}
