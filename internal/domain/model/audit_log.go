package model

import "time"

// 出品審査、注文ステータス更新など。
type AuditAction string

const (
	//出品のステータスを更新した操作。
	AuditActionUpdateListingStatus AuditAction = "UPDATE_LISTING_STATUS"
	//注文ステータスを更新した操作。
	AuditActionUpdateOrderStatus AuditAction = "UPDATE_ORDER_STATUS"
	//ユーザーを管理者に昇格した操作。
	AuditActionGrantAdmin AuditAction = "GRANT_ADMIN"
)

// 何に対する操作か
type AuditResourceType string

const (
	AuditResourceListing AuditResourceType = "listing"
	AuditResourceOrder   AuditResourceType = "order"
	AuditResourceUser    AuditResourceType = "user"
)

// 監査ログ（管理者操作ログ）。
// 「誰が」「何を」「どの対象に」「どう変えたか」を残す。
type AuditLog struct {
	ID string `gorm:"primaryKey;type:varchar(36)" json:"id" bson:"_id"`

	//操作したユーザー（主に管理者）のID。
	ActorUserID string `gorm:"type:varchar(36);not null;index" json:"actor_user_id" bson:"actor_user_id"`

	Action AuditAction `gorm:"type:varchar(50);not null;index" json:"action" bson:"action"`

	ResourceType AuditResourceType `gorm:"type:varchar(50);not null;index" json:"resource_type" bson:"resource_type"`

	ResourceID string `gorm:"type:varchar(64);not null;index" json:"resource_id" bson:"resource_id"`

	//JSON文字列で保存する。
	BeforeJSON string `gorm:"type:text" json:"before_json" bson:"before_json"`
	AfterJSON  string `gorm:"type:text" json:"after_json" bson:"after_json"`

	CreatedAt time.Time `gorm:"not null;index" json:"created_at" bson:"created_at"`
}
