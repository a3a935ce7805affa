package mongostore

import (
	"fmt"
	"time"

	"marketplace/internal/domain/model"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// 金額はDecimal128で保存する
type listingDoc struct {
	ID            string               `bson:"_id"`
	SellerID      string               `bson:"seller_id"`
	Name          string               `bson:"name"`
	NameRw        string               `bson:"nameRw"`
	Description   string               `bson:"description"`
	DescriptionRw string               `bson:"descriptionRw"`
	Category      string               `bson:"category"`
	Image         string               `bson:"image"`
	Images        []string             `bson:"images"`
	RegularPrice  primitive.Decimal128 `bson:"regularPrice"`
	PerItemPrice  primitive.Decimal128 `bson:"perItemPrice"`
	PoolPrice     primitive.Decimal128 `bson:"poolPrice"`
	PoolSize      int64                `bson:"pool_size"`
	PoolCurrent   int64                `bson:"pool_current"`
	Rating        float64              `bson:"rating"`
	Status        string               `bson:"status"`
	CreatedAt     time.Time            `bson:"created_at"`
	UpdatedAt     time.Time            `bson:"updated_at"`
}

type orderItemDoc struct {
	ProductID      string               `bson:"product_id"`
	Name           string               `bson:"name"`
	UnitPrice      primitive.Decimal128 `bson:"unit_price"`
	Quantity       int64                `bson:"quantity"`
	IsPoolPurchase bool                 `bson:"is_pool_purchase"`
}

type orderDoc struct {
	ID            string               `bson:"_id"`
	UserID        string               `bson:"user_id"`
	Items         []orderItemDoc       `bson:"items"`
	TotalAmount   primitive.Decimal128 `bson:"total_amount"`
	PaymentStatus string               `bson:"payment_status"`
	OrderStatus   string               `bson:"order_status"`
	CreatedAt     time.Time            `bson:"created_at"`
	UpdatedAt     time.Time            `bson:"updated_at"`
}

// Decimal128に入らない値はエラー（0にはしない）
func toDecimal128(d decimal.Decimal) (primitive.Decimal128, error) {
	v, err := primitive.ParseDecimal128(d.String())
	if err != nil {
		return primitive.Decimal128{}, fmt.Errorf("amount %s: %w", d.String(), err)
	}
	return v, nil
}

func fromDecimal128(v primitive.Decimal128) decimal.Decimal {
	d, err := decimal.NewFromString(v.String())
	if err != nil {
		return decimal.Zero
	}
	return d
}

func newListingDoc(l model.Listing) (listingDoc, error) {
	regular, err := toDecimal128(l.RegularPrice)
	if err != nil {
		return listingDoc{}, err
	}
	perItem, err := toDecimal128(l.PerItemPrice)
	if err != nil {
		return listingDoc{}, err
	}
	pool, err := toDecimal128(l.PoolPrice)
	if err != nil {
		return listingDoc{}, err
	}
	return listingDoc{
		ID:            l.ID,
		SellerID:      l.SellerID,
		Name:          l.Name,
		NameRw:        l.NameRw,
		Description:   l.Description,
		DescriptionRw: l.DescriptionRw,
		Category:      l.Category,
		Image:         l.Image,
		Images:        l.Images,
		RegularPrice:  regular,
		PerItemPrice:  perItem,
		PoolPrice:     pool,
		PoolSize:      l.PoolSize,
		PoolCurrent:   l.PoolCurrent,
		Rating:        l.Rating,
		Status:        string(l.Status),
		CreatedAt:     l.CreatedAt,
		UpdatedAt:     l.UpdatedAt,
	}, nil
}

func (d listingDoc) toModel() model.Listing {
	images := d.Images
	if images == nil {
		images = []string{}
	}
	return model.Listing{
		ID:            d.ID,
		SellerID:      d.SellerID,
		Name:          d.Name,
		NameRw:        d.NameRw,
		Description:   d.Description,
		DescriptionRw: d.DescriptionRw,
		Category:      d.Category,
		Image:         d.Image,
		Images:        images,
		RegularPrice:  fromDecimal128(d.RegularPrice),
		PerItemPrice:  fromDecimal128(d.PerItemPrice),
		PoolPrice:     fromDecimal128(d.PoolPrice),
		PoolSize:      d.PoolSize,
		PoolCurrent:   d.PoolCurrent,
		Rating:        d.Rating,
		Status:        model.ListingStatus(d.Status),
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
	}
}

func newOrderDoc(o model.Order) (orderDoc, error) {
	items := make([]orderItemDoc, 0, len(o.Items))
	for _, it := range o.Items {
		unit, err := toDecimal128(it.UnitPrice)
		if err != nil {
			return orderDoc{}, err
		}
		items = append(items, orderItemDoc{
			ProductID:      it.ProductID,
			Name:           it.Name,
			UnitPrice:      unit,
			Quantity:       it.Quantity,
			IsPoolPurchase: it.IsPoolPurchase,
		})
	}
	total, err := toDecimal128(o.TotalAmount)
	if err != nil {
		return orderDoc{}, err
	}
	return orderDoc{
		ID:            o.ID,
		UserID:        o.UserID,
		Items:         items,
		TotalAmount:   total,
		PaymentStatus: string(o.PaymentStatus),
		OrderStatus:   string(o.OrderStatus),
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
	}, nil
}

func (d orderDoc) toModel() model.Order {
	items := make([]model.OrderItem, 0, len(d.Items))
	for i, it := range d.Items {
		items = append(items, model.OrderItem{
			OrderID:        d.ID,
			LineNo:         i + 1,
			ProductID:      it.ProductID,
			Name:           it.Name,
			UnitPrice:      fromDecimal128(it.UnitPrice),
			Quantity:       it.Quantity,
			IsPoolPurchase: it.IsPoolPurchase,
		})
	}
	return model.Order{
		ID:            d.ID,
		UserID:        d.UserID,
		Items:         items,
		TotalAmount:   fromDecimal128(d.TotalAmount),
		PaymentStatus: model.PaymentStatus(d.PaymentStatus),
		OrderStatus:   model.OrderStatus(d.OrderStatus),
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
	}
}
