package model

import "time"

// ユーザーごとに1つ。明細は追加順。
type Cart struct {
	ID        string     `gorm:"primaryKey;type:varchar(36)" json:"id" bson:"_id"`
	UserID    string     `gorm:"type:varchar(36);uniqueIndex;not null" json:"user_id" bson:"user_id"`
	Items     []CartItem `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE" json:"items" bson:"items"`
	CreatedAt time.Time  `gorm:"not null" json:"created_at" bson:"created_at"`
	UpdatedAt time.Time  `gorm:"not null" json:"updated_at" bson:"updated_at"`
}

// 同じ商品でもプール購入と通常購入は別の明細。
func (c *Cart) FindItem(productID string, pool bool) (int, bool) {
	for i, it := range c.Items {
		if it.ProductID == productID && it.IsPoolPurchase == pool {
			return i, true
		}
	}
	return -1, false
}
