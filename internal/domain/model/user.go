package model

import "time"

type Role string

const (
	RoleBuyer  Role = "buyer"
	RoleSeller Role = "seller"
	RoleAdmin  Role = "admin"
)

// 登録で選べるのはbuyer/sellerだけ。adminは起動時のブートストラップでのみ付与する。
func (r Role) Registrable() bool {
	return r == RoleBuyer || r == RoleSeller
}

type User struct {
	ID           string    `gorm:"primaryKey;type:varchar(36)" json:"id" bson:"_id"`
	Email        string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email" bson:"email"`
	Name         string    `gorm:"type:varchar(255);not null" json:"name" bson:"name"`
	PasswordHash string    `gorm:"column:password_hash;not null" json:"-" bson:"password_hash"`
	Role         Role      `gorm:"type:varchar(20);not null;default:'buyer'" json:"account_type" bson:"account_type"`
	CreatedAt    time.Time `gorm:"not null" json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time `gorm:"not null" json:"updated_at" bson:"updated_at"`
}
