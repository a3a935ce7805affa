package auth

import (
	"context"
	"testing"

	"marketplace/internal/domain/model"
	"marketplace/internal/infra/memstore"
	"marketplace/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newBootstrapUC(repo *MockUserRepository) *BootstrapAdminUsecase {
	return NewBootstrapAdminUsecase(repo, nil, newTestHasher(), fixedIDGen{id: "admin-1"}, fixedClock{now: testNow})
}

func TestBootstrapAdmin_CreatesAdmin(t *testing.T) {
	ctx := context.Background()
	repo := new(MockUserRepository)

	repo.On("FindByEmail", ctx, "admin@example.com").Return(nil, repository.ErrNotFound)
	repo.On("Create", ctx, mock.MatchedBy(func(u *model.User) bool {
		return u.Role == model.RoleAdmin && u.Name == "Administrator" && u.PasswordHash != ""
	})).Return(nil)

	user, created, err := newBootstrapUC(repo).Execute(ctx, BootstrapAdminInput{
		Email:    "Admin@Example.com",
		Password: "adm1n-secret",
	})
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "admin-1", user.ID)
	assert.Equal(t, model.RoleAdmin, user.Role)
	assert.Empty(t, user.PasswordHash)
	repo.AssertExpectations(t)
}

func TestBootstrapAdmin_PromotesExistingUser(t *testing.T) {
	ctx := context.Background()
	repo := new(MockUserRepository)

	existing := &model.User{ID: "user-9", Email: "admin@example.com", Role: model.RoleBuyer, PasswordHash: "hash"}
	repo.On("FindByEmail", ctx, "admin@example.com").Return(existing, nil)
	repo.On("Update", ctx, mock.MatchedBy(func(u *model.User) bool {
		return u.ID == "user-9" && u.Role == model.RoleAdmin && u.PasswordHash == "hash"
	})).Return(nil)

	user, created, err := newBootstrapUC(repo).Execute(ctx, BootstrapAdminInput{
		Email:    "admin@example.com",
		Password: "ignored-password",
	})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, model.RoleAdmin, user.Role)
	repo.AssertExpectations(t)
}

func TestBootstrapAdmin_AlreadyAdminIsNoop(t *testing.T) {
	ctx := context.Background()
	repo := new(MockUserRepository)

	repo.On("FindByEmail", ctx, "admin@example.com").
		Return(&model.User{ID: "admin-1", Email: "admin@example.com", Role: model.RoleAdmin}, nil)

	_, created, err := newBootstrapUC(repo).Execute(ctx, BootstrapAdminInput{Email: "admin@example.com"})
	require.NoError(t, err)
	assert.False(t, created)
	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestBootstrapAdmin_InvalidInput(t *testing.T) {
	ctx := context.Background()
	repo := new(MockUserRepository)

	_, _, err := newBootstrapUC(repo).Execute(ctx, BootstrapAdminInput{Email: "nope", Password: "adm1n-secret"})
	assert.ErrorIs(t, err, ErrInvalidEmailFormat)

	repo.On("FindByEmail", ctx, "admin@example.com").Return(nil, repository.ErrNotFound)
	_, _, err = newBootstrapUC(repo).Execute(ctx, BootstrapAdminInput{Email: "admin@example.com", Password: "short"})
	assert.ErrorIs(t, err, ErrPasswordTooShort)
}

func TestBootstrapAdmin_RecordsGrantAudit(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	uc := NewBootstrapAdminUsecase(store.Users(), store.AuditLogs(), newTestHasher(), UUIDGenerator{}, fixedClock{now: testNow})

	user, created, err := uc.Execute(ctx, BootstrapAdminInput{Email: "admin@example.com", Password: "adm1n-secret"})
	require.NoError(t, err)
	require.True(t, created)

	// 2回目は何も記録しない
	_, created, err = uc.Execute(ctx, BootstrapAdminInput{Email: "admin@example.com", Password: "adm1n-secret"})
	require.NoError(t, err)
	assert.False(t, created)

	logs, err := store.AuditLogs().List(ctx, repository.AuditLogFilter{})
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, model.AuditActionGrantAdmin, logs[0].Action)
	assert.Equal(t, model.AuditResourceUser, logs[0].ResourceType)
	assert.Equal(t, user.ID, logs[0].ResourceID)
	assert.JSONEq(t, `{"account_type":"admin"}`, logs[0].AfterJSON)
}
