// Package repotest は各ストア実装に共通のリポジトリ契約テスト。
package repotest

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"marketplace/internal/domain/model"
	repo "marketplace/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type Stores struct {
	Users     repo.UserRepository
	Carts     repo.CartRepository
	Orders    repo.OrderRepository
	Listings  repo.ListingRepository
	AuditLogs repo.AuditLogRepository
	Tx        repo.TransactionManager
}

// 保存先の精度（Mongoはミリ秒）に合わせておく
var base = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func Run(t *testing.T, s Stores) {
	t.Run("Users", func(t *testing.T) { testUsers(t, s) })
	t.Run("Carts", func(t *testing.T) { testCarts(t, s) })
	t.Run("Listings", func(t *testing.T) { testListings(t, s) })
	t.Run("Orders", func(t *testing.T) { testOrders(t, s) })
	t.Run("TxRollback", func(t *testing.T) { testTxRollback(t, s) })
	t.Run("AuditLogs", func(t *testing.T) { testAuditLogs(t, s) })
}

func newID() string { return uuid.NewString() }

func newListing(poolSize int64) model.Listing {
	return model.Listing{
		ID:           newID(),
		SellerID:     newID(),
		Name:         "rice",
		Description:  "5kg",
		Category:     "food",
		Image:        "https://img.example.com/rice.png",
		Images:       []string{"https://img.example.com/rice-2.png"},
		RegularPrice: decimal.RequireFromString("80.00"),
		PerItemPrice: decimal.RequireFromString("60.00"),
		PoolPrice:    decimal.RequireFromString("30.50"),
		PoolSize:     poolSize,
		Status:       model.ListingStatusPending,
		CreatedAt:    base,
		UpdatedAt:    base,
	}
}

func testUsers(t *testing.T, s Stores) {
	ctx := context.Background()
	email := newID() + "@example.com"
	u := &model.User{ID: newID(), Email: email, Name: "A", PasswordHash: "hash", Role: model.RoleBuyer, CreatedAt: base, UpdatedAt: base}
	require.NoError(t, s.Users.Create(ctx, u))

	err := s.Users.Create(ctx, &model.User{ID: newID(), Email: email, Name: "B", PasswordHash: "hash", Role: model.RoleBuyer, CreatedAt: base, UpdatedAt: base})
	assert.True(t, errors.Is(err, repo.ErrDuplicate), "got %v", err)

	got, err := s.Users.FindByEmail(ctx, email)
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, "hash", got.PasswordHash)

	got.Role = model.RoleAdmin
	require.NoError(t, s.Users.Update(ctx, got))
	got, err = s.Users.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, got.Role)

	_, err = s.Users.FindByID(ctx, newID())
	assert.ErrorIs(t, err, repo.ErrNotFound)
}

func testCarts(t *testing.T, s Stores) {
	ctx := context.Background()
	userID := newID()

	_, err := s.Carts.FindByUserID(ctx, userID)
	assert.ErrorIs(t, err, repo.ErrNotFound)

	cart, err := s.Carts.GetOrCreate(ctx, model.Cart{ID: newID(), UserID: userID, CreatedAt: base, UpdatedAt: base})
	require.NoError(t, err)
	again, err := s.Carts.GetOrCreate(ctx, model.Cart{ID: newID(), UserID: userID, CreatedAt: base, UpdatedAt: base})
	require.NoError(t, err)
	assert.Equal(t, cart.ID, again.ID)

	productID := newID()
	add := func(qty int64, pool bool, at time.Time) {
		require.NoError(t, s.Carts.AddItem(ctx, cart.ID, model.CartItem{
			ID: newID(), CartID: cart.ID, ProductID: productID, Quantity: qty, IsPoolPurchase: pool, CreatedAt: at,
		}, at))
	}
	add(1, false, base)
	add(2, false, base.Add(time.Second))
	add(1, true, base.Add(2*time.Second))

	got, err := s.Carts.FindByUserID(ctx, userID)
	require.NoError(t, err)
	require.Len(t, got.Items, 2)
	i, ok := got.FindItem(productID, false)
	require.True(t, ok)
	assert.Equal(t, int64(3), got.Items[i].Quantity)
	i, ok = got.FindItem(productID, true)
	require.True(t, ok)
	assert.Equal(t, int64(1), got.Items[i].Quantity)

	require.NoError(t, s.Carts.RemoveProduct(ctx, cart.ID, productID, base))
	got, err = s.Carts.FindByUserID(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, got.Items)

	add(5, false, base)
	require.NoError(t, s.Carts.Clear(ctx, cart.ID, base))
	require.NoError(t, s.Carts.Clear(ctx, cart.ID, base))
	got, err = s.Carts.FindByUserID(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, got.Items)
}

func testListings(t *testing.T, s Stores) {
	ctx := context.Background()
	l := newListing(3)
	require.NoError(t, s.Listings.Create(ctx, l))

	got, err := s.Listings.FindByID(ctx, l.ID)
	require.NoError(t, err)
	assert.True(t, l.PoolPrice.Equal(got.PoolPrice), got.PoolPrice.String())
	assert.Equal(t, l.Images, got.Images)
	assert.Equal(t, model.ListingStatusPending, got.Status)

	own, err := s.Listings.ListBySeller(ctx, l.SellerID)
	require.NoError(t, err)
	require.Len(t, own, 1)

	updated, err := s.Listings.UpdateStatus(ctx, l.ID, model.ListingStatusApproved, base.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, model.ListingStatusApproved, updated.Status)

	approved := model.ListingStatusApproved
	public, err := s.Listings.List(ctx, &approved)
	require.NoError(t, err)
	found := false
	for _, p := range public {
		found = found || p.ID == l.ID
	}
	assert.True(t, found)

	_, err = s.Listings.UpdateStatus(ctx, newID(), model.ListingStatusApproved, base)
	assert.ErrorIs(t, err, repo.ErrNotFound)

	// プール枠
	ok, err := s.Listings.ReservePool(ctx, l.ID, 2)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = s.Listings.ReservePool(ctx, l.ID, 2)
	require.NoError(t, err)
	assert.False(t, ok)
	ok, err = s.Listings.ReservePool(ctx, l.ID, 1)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, s.Listings.ReleasePool(ctx, l.ID, 10))
	got, err = s.Listings.FindByID(ctx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), got.PoolCurrent)

	// 残り枠を超える数量は溢れずに断る
	big := newListing(math.MaxInt64)
	big.PoolCurrent = 5
	require.NoError(t, s.Listings.Create(ctx, big))
	ok, err = s.Listings.ReservePool(ctx, big.ID, math.MaxInt64)
	require.NoError(t, err)
	assert.False(t, ok)
	got, err = s.Listings.FindByID(ctx, big.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(5), got.PoolCurrent)
}

func newOrder(userID string, at time.Time) model.Order {
	id := newID()
	return model.Order{
		ID:     id,
		UserID: userID,
		Items: []model.OrderItem{
			{ID: newID(), OrderID: id, LineNo: 1, ProductID: newID(), Name: "rice", UnitPrice: decimal.RequireFromString("60.00"), Quantity: 2},
			{ID: newID(), OrderID: id, LineNo: 2, ProductID: newID(), Name: "beans", UnitPrice: decimal.RequireFromString("30.00"), Quantity: 1, IsPoolPurchase: true},
		},
		TotalAmount:   decimal.RequireFromString("150.00"),
		PaymentStatus: model.PaymentStatusPending,
		OrderStatus:   model.OrderStatusProcessing,
		CreatedAt:     at,
		UpdatedAt:     at,
	}
}

func testOrders(t *testing.T, s Stores) {
	ctx := context.Background()
	userID := newID()

	first := newOrder(userID, base)
	second := newOrder(userID, base.Add(time.Minute))
	require.NoError(t, s.Orders.Create(ctx, first))
	require.NoError(t, s.Orders.Create(ctx, second))

	got, err := s.Orders.FindByID(ctx, first.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 2)
	assert.Equal(t, 1, got.Items[0].LineNo)
	assert.Equal(t, "rice", got.Items[0].Name)
	assert.True(t, got.TotalAmount.Equal(decimal.NewFromInt(150)))

	list, err := s.Orders.ListByUserID(ctx, userID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, first.ID, list[0].ID)
	assert.Equal(t, second.ID, list[1].ID)

	require.NoError(t, s.Orders.UpdateStatus(ctx, first.ID, model.OrderStatusShipped, model.PaymentStatusCompleted, base.Add(time.Hour)))
	got, err = s.Orders.FindByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusShipped, got.OrderStatus)
	assert.Equal(t, model.PaymentStatusCompleted, got.PaymentStatus)

	assert.ErrorIs(t, s.Orders.UpdateStatus(ctx, newID(), model.OrderStatusShipped, model.PaymentStatusPending, base), repo.ErrNotFound)
	_, err = s.Orders.FindByID(ctx, newID())
	assert.ErrorIs(t, err, repo.ErrNotFound)
}

func testTxRollback(t *testing.T, s Stores) {
	ctx := context.Background()
	l := newListing(5)
	require.NoError(t, s.Listings.Create(ctx, l))
	o := newOrder(newID(), base)

	boom := errors.New("boom")
	err := s.Tx.WithinTx(ctx, func(r repo.TxRepos) error {
		if _, err := r.Listings().ReservePool(ctx, l.ID, 2); err != nil {
			return err
		}
		if err := r.Orders().Create(ctx, o); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, err := s.Listings.FindByID(ctx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), got.PoolCurrent)
	_, err = s.Orders.FindByID(ctx, o.ID)
	assert.ErrorIs(t, err, repo.ErrNotFound)
}

func testAuditLogs(t *testing.T, s Stores) {
	ctx := context.Background()
	resourceID := newID()
	actor := newID()

	for i := 0; i < 3; i++ {
		require.NoError(t, s.AuditLogs.Create(ctx, model.AuditLog{
			ID:           newID(),
			ActorUserID:  actor,
			Action:       model.AuditActionUpdateOrderStatus,
			ResourceType: model.AuditResourceOrder,
			ResourceID:   resourceID,
			BeforeJSON:   `{}`,
			AfterJSON:    `{}`,
			CreatedAt:    base.Add(time.Duration(i) * time.Minute),
		}))
	}

	logs, err := s.AuditLogs.List(ctx, repo.AuditLogFilter{ResourceID: &resourceID, Limit: 2})
	require.NoError(t, err)
	require.Len(t, logs, 2)
	// 新しい順
	assert.True(t, logs[0].CreatedAt.After(logs[1].CreatedAt))

	from := base.Add(90 * time.Second)
	logs, err = s.AuditLogs.List(ctx, repo.AuditLogFilter{ActorUserID: &actor, CreatedFrom: &from, Limit: 50})
	require.NoError(t, err)
	assert.Len(t, logs, 1)

	logs, err = s.AuditLogs.List(ctx, repo.AuditLogFilter{ResourceID: &resourceID, Limit: 50, Offset: 2})
	require.NoError(t, err)
	assert.Len(t, logs, 1)
}
