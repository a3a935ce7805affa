package usecase_test

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"marketplace/internal/domain/model"
	"marketplace/internal/infra/lock"
	"marketplace/internal/infra/memstore"
	"marketplace/internal/usecase"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// 連番ID
type seqIDGen struct{ n atomic.Int64 }

func (g *seqIDGen) NewID() string {
	return fmt.Sprintf("id-%04d", g.n.Add(1))
}

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type fixture struct {
	store       *memstore.Store
	carts       *usecase.CartUsecase
	orders      *usecase.OrderUsecase
	listings    *usecase.ListingUsecase
	adminOrders *usecase.AdminOrderUsecase
	audits      *usecase.AuditLogUsecase

	buyer  model.User
	buyer2 model.User
	seller model.User
	admin  model.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := memstore.New()
	locker := lock.NewKeyedMutex()
	idGen := &seqIDGen{}
	clock := fixedClock{now: testNow}

	f := &fixture{
		store:       store,
		carts:       usecase.NewCartUsecase(store.Carts(), store.Listings(), locker, idGen, clock),
		orders:      usecase.NewOrderUsecase(store.TxManager(), store.Orders(), locker, idGen, clock),
		listings:    usecase.NewListingUsecase(store.TxManager(), store.Listings(), idGen, clock),
		adminOrders: usecase.NewAdminOrderUsecase(store.TxManager(), store.Orders(), idGen, clock),
		audits:      usecase.NewAuditLogUsecase(store.AuditLogs()),
	}
	f.buyer = f.seedUser(t, "buyer-1", "buyer@example.com", model.RoleBuyer)
	f.buyer2 = f.seedUser(t, "buyer-2", "buyer2@example.com", model.RoleBuyer)
	f.seller = f.seedUser(t, "seller-1", "seller@example.com", model.RoleSeller)
	f.admin = f.seedUser(t, "admin-1", "admin@example.com", model.RoleAdmin)
	return f
}

func (f *fixture) seedUser(t *testing.T, id, email string, role model.Role) model.User {
	t.Helper()
	u := model.User{ID: id, Email: email, Name: id, PasswordHash: "x", Role: role, CreatedAt: testNow, UpdatedAt: testNow}
	require.NoError(t, f.store.Users().Create(context.Background(), &u))
	u.PasswordHash = ""
	return u
}

// perItemPrice 60 / poolPrice 30 / poolSize 10
func listingInput(name string) usecase.CreateListingInput {
	return usecase.CreateListingInput{
		Name:         name,
		Description:  "fresh " + name,
		Category:     "food",
		Image:        "https://img.example.com/" + name + ".png",
		RegularPrice: decimal.NewFromInt(80),
		PerItemPrice: decimal.NewFromInt(60),
		PoolPrice:    decimal.NewFromInt(30),
		PoolSize:     10,
	}
}

func (f *fixture) pendingListing(t *testing.T, in usecase.CreateListingInput) model.Listing {
	t.Helper()
	l, err := f.listings.Create(context.Background(), f.seller, in)
	require.NoError(t, err)
	return l
}

func (f *fixture) approvedListing(t *testing.T, in usecase.CreateListingInput) model.Listing {
	t.Helper()
	l := f.pendingListing(t, in)
	l, err := f.listings.Approve(context.Background(), f.admin, l.ID)
	require.NoError(t, err)
	return l
}

func requireKind(t *testing.T, err error, kind usecase.Kind) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, kind, usecase.KindOf(err), err.Error())
}
