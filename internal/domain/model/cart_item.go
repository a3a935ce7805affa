package model

import "time"

// (cart_id, product_id, is_pool_purchase) で一意。
type CartItem struct {
	ID             string    `gorm:"primaryKey;type:varchar(36)" json:"-" bson:"-"`
	CartID         string    `gorm:"type:varchar(36);not null;uniqueIndex:idx_cart_items_line,priority:1" json:"-" bson:"-"`
	ProductID      string    `gorm:"type:varchar(64);not null;uniqueIndex:idx_cart_items_line,priority:2" json:"product_id" bson:"product_id"`
	IsPoolPurchase bool      `gorm:"not null;default:false;uniqueIndex:idx_cart_items_line,priority:3" json:"is_pool_purchase" bson:"is_pool_purchase"`
	Quantity       int64     `gorm:"not null" json:"quantity" bson:"quantity"`
	CreatedAt      time.Time `gorm:"not null" json:"-" bson:"added_at"`
}
