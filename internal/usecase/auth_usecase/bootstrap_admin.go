package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"marketplace/internal/domain/model"
	"marketplace/internal/repository"
)

// 起動時に作る管理者
type BootstrapAdminInput struct {
	Email    string
	Password string
	Name     string
}

// 管理者ロールを付与できる唯一の経路。
// 既存ユーザーなら昇格、いなければ作成する。パスワードは既存ユーザーでは変更しない。
type BootstrapAdminUsecase struct {
	userRepo repository.UserRepository
	audits   repository.AuditLogRepository
	hasher   PasswordHasher
	idGen    IDGenerator
	clock    Clock
}

func NewBootstrapAdminUsecase(
	userRepo repository.UserRepository,
	audits repository.AuditLogRepository,
	hasher PasswordHasher,
	idGen IDGenerator,
	clock Clock,
) *BootstrapAdminUsecase {
	return &BootstrapAdminUsecase{
		userRepo: userRepo,
		audits:   audits,
		hasher:   hasher,
		idGen:    idGen,
		clock:    clock,
	}
}

// created は新規作成したときtrue
func (u *BootstrapAdminUsecase) Execute(ctx context.Context, in BootstrapAdminInput) (user model.User, created bool, err error) {
	email := NormalizeEmail(in.Email)
	if !isValidEmailFormat(email) {
		return model.User{}, false, ErrInvalidEmailFormat
	}

	existing, err := u.userRepo.FindByEmail(ctx, email)
	if err == nil {
		if existing.Role != model.RoleAdmin {
			before := existing.Role
			existing.Role = model.RoleAdmin
			existing.UpdatedAt = u.clock.Now()
			if err := u.userRepo.Update(ctx, existing); err != nil {
				return model.User{}, false, err
			}
			if err := u.recordGrant(ctx, existing.ID, before, existing.UpdatedAt); err != nil {
				return model.User{}, false, err
			}
		}
		safe := *existing
		safe.PasswordHash = ""
		return safe, false, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return model.User{}, false, err
	}

	if err := validatePassword(in.Password); err != nil {
		return model.User{}, false, err
	}
	hashed, err := u.hasher.Hash(in.Password)
	if err != nil {
		return model.User{}, false, err
	}

	name := strings.TrimSpace(in.Name)
	if name == "" {
		name = "Administrator"
	}

	now := u.clock.Now()
	admin := &model.User{
		ID:           u.idGen.NewID(),
		Email:        email,
		Name:         name,
		PasswordHash: hashed,
		Role:         model.RoleAdmin,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := u.userRepo.Create(ctx, admin); err != nil {
		return model.User{}, false, err
	}
	if err := u.recordGrant(ctx, admin.ID, "", now); err != nil {
		return model.User{}, false, err
	}

	safe := *admin
	safe.PasswordHash = ""
	return safe, true, nil
}

// GRANT_ADMIN。操作者は本人（起動処理）として残す。
func (u *BootstrapAdminUsecase) recordGrant(ctx context.Context, userID string, before model.Role, now time.Time) error {
	if u.audits == nil {
		return nil
	}
	return u.audits.Create(ctx, model.AuditLog{
		ID:           u.idGen.NewID(),
		ActorUserID:  userID,
		Action:       model.AuditActionGrantAdmin,
		ResourceType: model.AuditResourceUser,
		ResourceID:   userID,
		BeforeJSON:   fmt.Sprintf(`{"account_type":%q}`, before),
		AfterJSON:    fmt.Sprintf(`{"account_type":%q}`, model.RoleAdmin),
		CreatedAt:    now,
	})
}
