package usecase_test

import (
	"context"
	"math"
	"sync"
	"testing"

	"marketplace/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCart_GetCart_CreatesEmpty(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	c1, err := f.carts.GetCart(ctx, f.buyer.ID)
	require.NoError(t, err)
	assert.Equal(t, f.buyer.ID, c1.UserID)
	assert.NotNil(t, c1.Items)
	assert.Empty(t, c1.Items)

	// 2回目も同じカート
	c2, err := f.carts.GetCart(ctx, f.buyer.ID)
	require.NoError(t, err)
	assert.Equal(t, c1.ID, c2.ID)
}

func TestCart_AddItem_MergesSameLine(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	l := f.approvedListing(t, listingInput("rice"))

	_, err := f.carts.AddItem(ctx, f.buyer.ID, usecase.AddCartInput{ProductID: l.ID, Quantity: 1})
	require.NoError(t, err)
	cart, err := f.carts.AddItem(ctx, f.buyer.ID, usecase.AddCartInput{ProductID: l.ID, Quantity: 2})
	require.NoError(t, err)

	require.Len(t, cart.Items, 1)
	assert.Equal(t, int64(3), cart.Items[0].Quantity)
	assert.False(t, cart.Items[0].IsPoolPurchase)
}

// 通常購入とプール購入は別の明細
func TestCart_AddItem_PoolAndRegularAreSeparateLines(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	l := f.approvedListing(t, listingInput("rice"))

	_, err := f.carts.AddItem(ctx, f.buyer.ID, usecase.AddCartInput{ProductID: l.ID, Quantity: 2})
	require.NoError(t, err)
	cart, err := f.carts.AddItem(ctx, f.buyer.ID, usecase.AddCartInput{ProductID: l.ID, Quantity: 1, IsPoolPurchase: true})
	require.NoError(t, err)

	require.Len(t, cart.Items, 2)
	i, ok := cart.FindItem(l.ID, false)
	require.True(t, ok)
	assert.Equal(t, int64(2), cart.Items[i].Quantity)
	i, ok = cart.FindItem(l.ID, true)
	require.True(t, ok)
	assert.Equal(t, int64(1), cart.Items[i].Quantity)
}

func TestCart_AddItem_Rejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	approved := f.approvedListing(t, listingInput("rice"))
	pending := f.pendingListing(t, listingInput("beans"))

	noPool := listingInput("salt")
	noPool.PoolSize = 0
	noPoolListing := f.approvedListing(t, noPool)

	cases := []struct {
		name string
		user string
		in   usecase.AddCartInput
		kind usecase.Kind
	}{
		{"anonymous", "", usecase.AddCartInput{ProductID: approved.ID, Quantity: 1}, usecase.KindUnauthenticated},
		{"empty product", f.buyer.ID, usecase.AddCartInput{ProductID: " ", Quantity: 1}, usecase.KindInvalidArgument},
		{"zero quantity", f.buyer.ID, usecase.AddCartInput{ProductID: approved.ID, Quantity: 0}, usecase.KindInvalidArgument},
		{"unknown product", f.buyer.ID, usecase.AddCartInput{ProductID: "nope", Quantity: 1}, usecase.KindInvalidArgument},
		{"pending product", f.buyer.ID, usecase.AddCartInput{ProductID: pending.ID, Quantity: 1}, usecase.KindInvalidArgument},
		{"no pool", f.buyer.ID, usecase.AddCartInput{ProductID: noPoolListing.ID, Quantity: 1, IsPoolPurchase: true}, usecase.KindInvalidArgument},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.carts.AddItem(ctx, tc.user, tc.in)
			requireKind(t, err, tc.kind)
		})
	}

	cart, err := f.carts.GetCart(ctx, f.buyer.ID)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
}

func TestCart_RemoveItem_RemovesBothModes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	rice := f.approvedListing(t, listingInput("rice"))
	beans := f.approvedListing(t, listingInput("beans"))

	for _, in := range []usecase.AddCartInput{
		{ProductID: rice.ID, Quantity: 1},
		{ProductID: rice.ID, Quantity: 1, IsPoolPurchase: true},
		{ProductID: beans.ID, Quantity: 4},
	} {
		_, err := f.carts.AddItem(ctx, f.buyer.ID, in)
		require.NoError(t, err)
	}

	cart, err := f.carts.RemoveItem(ctx, f.buyer.ID, rice.ID)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, beans.ID, cart.Items[0].ProductID)

	// 無い商品を消しても成功
	cart, err = f.carts.RemoveItem(ctx, f.buyer.ID, "missing")
	require.NoError(t, err)
	assert.Len(t, cart.Items, 1)
}

func TestCart_RemoveItemAndClear_WithoutCart(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cart, err := f.carts.RemoveItem(ctx, f.buyer.ID, "anything")
	require.NoError(t, err)
	assert.Empty(t, cart.Items)

	cart, err = f.carts.Clear(ctx, f.buyer.ID)
	require.NoError(t, err)
	assert.NotNil(t, cart.Items)
	assert.Empty(t, cart.Items)
}

func TestCart_Clear_Idempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	l := f.approvedListing(t, listingInput("rice"))

	_, err := f.carts.AddItem(ctx, f.buyer.ID, usecase.AddCartInput{ProductID: l.ID, Quantity: 2})
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		cart, err := f.carts.Clear(ctx, f.buyer.ID)
		require.NoError(t, err)
		assert.Empty(t, cart.Items)
	}
}

// 同じユーザーの同時追加で数量が失われない
func TestCart_AddItem_ConcurrentAddsAccumulate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	l := f.approvedListing(t, listingInput("rice"))

	const n = 20
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.carts.AddItem(ctx, f.buyer.ID, usecase.AddCartInput{ProductID: l.ID, Quantity: 1})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	cart, err := f.carts.GetCart(ctx, f.buyer.ID)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, int64(n), cart.Items[0].Quantity)
}

func TestCart_CartsAreIsolatedPerUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	l := f.approvedListing(t, listingInput("rice"))

	_, err := f.carts.AddItem(ctx, f.buyer.ID, usecase.AddCartInput{ProductID: l.ID, Quantity: 1})
	require.NoError(t, err)

	other, err := f.carts.GetCart(ctx, f.buyer2.ID)
	require.NoError(t, err)
	assert.Empty(t, other.Items)
}

// 数量は1明細あたり MaxItemQuantity まで。加算で溢れない。
func TestCart_AddItem_QuantityUpperBound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	l := f.approvedListing(t, listingInput("rice"))

	_, err := f.carts.AddItem(ctx, f.buyer.ID, usecase.AddCartInput{ProductID: l.ID, Quantity: math.MaxInt64})
	requireKind(t, err, usecase.KindInvalidArgument)

	cart, err := f.carts.AddItem(ctx, f.buyer.ID, usecase.AddCartInput{ProductID: l.ID, Quantity: usecase.MaxItemQuantity})
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)

	_, err = f.carts.AddItem(ctx, f.buyer.ID, usecase.AddCartInput{ProductID: l.ID, Quantity: 1})
	requireKind(t, err, usecase.KindInvalidArgument)

	cart, err = f.carts.GetCart(ctx, f.buyer.ID)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, usecase.MaxItemQuantity, cart.Items[0].Quantity)

	// 別の購入方法は別枠
	cart, err = f.carts.AddItem(ctx, f.buyer.ID, usecase.AddCartInput{ProductID: l.ID, Quantity: 1, IsPoolPurchase: true})
	require.NoError(t, err)
	assert.Len(t, cart.Items, 2)
}
