package memstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"marketplace/internal/domain/model"
	repo "marketplace/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

func seedListing(t *testing.T, s *Store, id string, poolSize int64) {
	t.Helper()
	require.NoError(t, s.Listings().Create(context.Background(), model.Listing{
		ID:           id,
		SellerID:     "seller",
		Name:         id,
		PerItemPrice: decimal.NewFromInt(10),
		PoolPrice:    decimal.NewFromInt(5),
		PoolSize:     poolSize,
		Status:       model.ListingStatusApproved,
		CreatedAt:    now,
	}))
}

func TestTxManager_RollbackOnError(t *testing.T) {
	s := New()
	ctx := context.Background()
	seedListing(t, s, "l1", 5)

	boom := errors.New("boom")
	err := s.TxManager().WithinTx(ctx, func(r repo.TxRepos) error {
		ok, err := r.Listings().ReservePool(ctx, "l1", 3)
		require.NoError(t, err)
		require.True(t, ok)
		require.NoError(t, r.Orders().Create(ctx, model.Order{ID: "o1", UserID: "u1"}))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	l, err := s.Listings().FindByID(ctx, "l1")
	require.NoError(t, err)
	assert.Equal(t, int64(0), l.PoolCurrent)

	_, err = s.Orders().FindByID(ctx, "o1")
	assert.ErrorIs(t, err, repo.ErrNotFound)
}

func TestTxManager_Commit(t *testing.T) {
	s := New()
	ctx := context.Background()
	seedListing(t, s, "l1", 5)

	err := s.TxManager().WithinTx(ctx, func(r repo.TxRepos) error {
		_, err := r.Listings().ReservePool(ctx, "l1", 5)
		return err
	})
	require.NoError(t, err)

	l, err := s.Listings().FindByID(ctx, "l1")
	require.NoError(t, err)
	assert.Equal(t, int64(5), l.PoolCurrent)
}

func TestListings_ReserveAndReleasePool(t *testing.T) {
	s := New()
	ctx := context.Background()
	seedListing(t, s, "l1", 2)

	ok, err := s.Listings().ReservePool(ctx, "l1", 3)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = s.Listings().ReservePool(ctx, "l1", 2)
	require.NoError(t, err)
	assert.True(t, ok)

	// 0未満にはならない
	require.NoError(t, s.Listings().ReleasePool(ctx, "l1", 5))
	l, err := s.Listings().FindByID(ctx, "l1")
	require.NoError(t, err)
	assert.Equal(t, int64(0), l.PoolCurrent)

	ok, err = s.Listings().ReservePool(ctx, "missing", 1)
	require.NoError(t, err)
	assert.False(t, ok)
}

// 返した値を書き換えてもストアに影響しない
func TestCarts_ReturnsCopies(t *testing.T) {
	s := New()
	ctx := context.Background()

	cart, err := s.Carts().GetOrCreate(ctx, model.Cart{ID: "c1", UserID: "u1"})
	require.NoError(t, err)
	require.NoError(t, s.Carts().AddItem(ctx, cart.ID, model.CartItem{ID: "i1", ProductID: "p1", Quantity: 1}, now))

	got, err := s.Carts().FindByUserID(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	got.Items[0].Quantity = 99

	again, err := s.Carts().FindByUserID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), again.Items[0].Quantity)
	assert.Equal(t, now, again.UpdatedAt)
}

func TestUsers_DuplicateEmail(t *testing.T) {
	s := New()
	ctx := context.Background()

	require.NoError(t, s.Users().Create(ctx, &model.User{ID: "u1", Email: "a@example.com"}))
	err := s.Users().Create(ctx, &model.User{ID: "u2", Email: "a@example.com"})
	assert.ErrorIs(t, err, repo.ErrDuplicate)
}
