package mongostore

import (
	"testing"

	"marketplace/internal/domain/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tooPrecise = "12345678901234567890123456789012345.67"

func TestListingDoc_RoundTripsPrices(t *testing.T) {
	l := model.Listing{
		ID:           "l1",
		RegularPrice: decimal.RequireFromString("9999999999.99"),
		PerItemPrice: decimal.RequireFromString("60.00"),
		PoolPrice:    decimal.RequireFromString("30.50"),
		PoolSize:     10,
		Status:       model.ListingStatusApproved,
	}

	d, err := newListingDoc(l)
	require.NoError(t, err)
	got := d.toModel()
	assert.True(t, l.RegularPrice.Equal(got.RegularPrice), got.RegularPrice.String())
	assert.True(t, l.PerItemPrice.Equal(got.PerItemPrice))
	assert.True(t, l.PoolPrice.Equal(got.PoolPrice))
}

// Decimal128に入らない金額は0にせずエラー
func TestListingDoc_RejectsUnrepresentablePrice(t *testing.T) {
	l := model.Listing{
		ID:           "l1",
		RegularPrice: decimal.RequireFromString("80"),
		PerItemPrice: decimal.RequireFromString(tooPrecise),
		PoolPrice:    decimal.Zero,
	}

	_, err := newListingDoc(l)
	assert.Error(t, err)
}

func TestOrderDoc_RejectsUnrepresentableAmount(t *testing.T) {
	o := model.Order{
		ID:          "o1",
		TotalAmount: decimal.RequireFromString("60"),
		Items: []model.OrderItem{
			{ProductID: "p1", UnitPrice: decimal.RequireFromString(tooPrecise), Quantity: 1},
		},
	}
	_, err := newOrderDoc(o)
	assert.Error(t, err)

	o.Items[0].UnitPrice = decimal.RequireFromString("60")
	o.TotalAmount = decimal.RequireFromString(tooPrecise)
	_, err = newOrderDoc(o)
	assert.Error(t, err)

	o.TotalAmount = decimal.RequireFromString("60.00")
	d, err := newOrderDoc(o)
	require.NoError(t, err)
	assert.Equal(t, "60.00", d.toModel().TotalAmount.StringFixed(2))
}
