package usecase

import (
	"context"
	"errors"

	"marketplace/internal/domain/model"
	repo "marketplace/internal/repository"
	auth "marketplace/internal/usecase/auth_usecase"
)

// トークンから呼び出し元を特定し、ロールと所有者を判定する。
type AccessGate struct {
	tokens auth.AccessTokenVerifier
	users  repo.UserRepository
}

func NewAccessGate(tokens auth.AccessTokenVerifier, users repo.UserRepository) *AccessGate {
	return &AccessGate{tokens: tokens, users: users}
}

// ユーザーは毎回DBから引き直す（削除やロール変更をすぐ反映する）
func (g *AccessGate) Authenticate(ctx context.Context, rawToken string) (model.User, error) {
	userID, err := g.tokens.Verify(rawToken)
	if err != nil {
		return model.User{}, unauthenticated()
	}

	u, err := g.users.FindByID(ctx, userID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.User{}, unauthenticated()
	}
	if err != nil {
		return model.User{}, internal(err)
	}

	safe := *u
	safe.PasswordHash = ""
	return safe, nil
}

// いずれかのロールならOK
func RequireRole(user model.User, roles ...model.Role) error {
	for _, r := range roles {
		if user.Role == r {
			return nil
		}
	}
	return forbidden("forbidden")
}

// 本人かadminならOK
func RequireOwnerOrAdmin(user model.User, ownerID string) error {
	if user.ID != "" && user.ID == ownerID {
		return nil
	}
	if user.Role == model.RoleAdmin {
		return nil
	}
	return forbidden("forbidden")
}
