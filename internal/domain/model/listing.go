package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type ListingStatus string

const (
	ListingStatusPending  ListingStatus = "pending"
	ListingStatusApproved ListingStatus = "approved"
	ListingStatusRejected ListingStatus = "rejected"
)

// 出品。approved になるまで公開されない。
type Listing struct {
	ID            string          `gorm:"primaryKey;type:varchar(36)" json:"id"`
	SellerID      string          `gorm:"type:varchar(36);not null;index" json:"seller_id"`
	Name          string          `gorm:"type:varchar(255);not null" json:"name"`
	NameRw        string          `gorm:"type:varchar(255)" json:"nameRw"`
	Description   string          `gorm:"type:text;not null" json:"description"`
	DescriptionRw string          `gorm:"type:text" json:"descriptionRw"`
	Category      string          `gorm:"type:varchar(100);not null;index" json:"category"`
	Image         string          `gorm:"type:text;not null" json:"image"`
	Images        []string        `gorm:"serializer:json" json:"images"`
	RegularPrice  decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"regularPrice"`
	PerItemPrice  decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"perItemPrice"`
	PoolPrice     decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"poolPrice"`
	PoolSize      int64           `gorm:"not null" json:"poolSize"`
	PoolCurrent   int64           `gorm:"not null" json:"poolCurrent"`
	Rating        float64         `gorm:"not null;default:0" json:"rating"`
	Status        ListingStatus   `gorm:"type:varchar(20);not null;index" json:"status"`
	CreatedAt     time.Time       `gorm:"not null;index" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"not null" json:"updated_at"`
}

// プール購入はpoolPrice、通常購入はperItemPrice。
func (l *Listing) UnitPrice(pool bool) decimal.Decimal {
	if pool {
		return l.PoolPrice
	}
	return l.PerItemPrice
}

func (l *Listing) IsPublic() bool {
	return l.Status == ListingStatusApproved
}
