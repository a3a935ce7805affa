package repository

import (
	"context"

	"marketplace/internal/domain/model"
)

// 保存・取得を約束
type UserRepository interface {
	//新規ユーザー作成（emailが既にあればErrDuplicate）
	Create(ctx context.Context, user *model.User) error
	// IDからユーザーを1件取得する。
	FindByID(ctx context.Context, userID string) (*model.User, error)
	//メールからユーザーを一件取得する。emailは正規化済みで渡す。
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	// ユーザー情報の更新（名前・ロールなど）
	Update(ctx context.Context, user *model.User) error
}
