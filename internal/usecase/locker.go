package usecase

import "context"

// ユーザー単位の排他。カート更新と注文作成を直列にする。
type IdentityLocker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}

func cartLockKey(userID string) string {
	return "cart:" + userID
}
