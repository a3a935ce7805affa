package model

import "github.com/shopspring/decimal"

// 注文時点の商品名と単価のスナップショット。
type OrderItem struct {
	ID             string          `gorm:"primaryKey;type:varchar(36)" json:"-"`
	OrderID        string          `gorm:"type:varchar(36);not null;index" json:"-"`
	LineNo         int             `gorm:"not null" json:"-"`
	ProductID      string          `gorm:"type:varchar(64);not null" json:"product_id"`
	Name           string          `gorm:"type:varchar(255);not null" json:"name"`
	UnitPrice      decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"unit_price"`
	Quantity       int64           `gorm:"not null" json:"quantity"`
	IsPoolPurchase bool            `gorm:"not null;default:false" json:"is_pool_purchase"`
}

func (it OrderItem) Subtotal() decimal.Decimal {
	return it.UnitPrice.Mul(decimal.NewFromInt(it.Quantity))
}
