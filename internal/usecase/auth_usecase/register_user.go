package auth

import (
	"context"
	"errors"
	"net/mail"
	"strings"

	"marketplace/internal/domain/model"
	"marketplace/internal/repository"
)

// パスワード最小長
const MinPasswordLength = 8

var (
	// 入力が不正
	ErrInvalidEmailFormat = errors.New("invalid email format")
	ErrPasswordTooShort   = errors.New("password too short")
	ErrPasswordTooLong    = errors.New("password too long")
	ErrWeakPassword       = errors.New("weak password")
	ErrInvalidName        = errors.New("invalid name")
	ErrInvalidRole        = errors.New("invalid account type")

	// 競合
	ErrEmailAlreadyExists = errors.New("email already exists")
)

// 会員登録の入力
type RegisterUserInput struct {
	Email    string
	Password string
	Name     string
	Role     model.Role
}

// 会員登録の出力（登録後そのままログイン状態にする）
type RegisterUserOutput struct {
	User  model.User
	Token AccessToken
}

// RegisterUserUsecaseは会員登録の処理。
type RegisterUserUsecase struct {
	userRepo repository.UserRepository
	hasher   PasswordHasher
	issuer   AccessTokenIssuer
	idGen    IDGenerator
	clock    Clock
}

// DI
func NewRegisterUserUsecase(
	userRepo repository.UserRepository,
	hasher PasswordHasher,
	issuer AccessTokenIssuer,
	idGen IDGenerator,
	clock Clock,
) *RegisterUserUsecase {
	return &RegisterUserUsecase{
		userRepo: userRepo,
		hasher:   hasher,
		issuer:   issuer,
		idGen:    idGen,
		clock:    clock,
	}
}

// 会員登録実行
func (u *RegisterUserUsecase) Execute(ctx context.Context, in RegisterUserInput) (RegisterUserOutput, error) {
	var out RegisterUserOutput

	email := NormalizeEmail(in.Email)
	if !isValidEmailFormat(email) {
		return out, ErrInvalidEmailFormat
	}
	if err := validatePassword(in.Password); err != nil {
		return out, err
	}

	name := strings.TrimSpace(in.Name)
	if name == "" || len(name) > 100 {
		return out, ErrInvalidName
	}

	// 未指定はbuyer。adminはここでは作れない。
	role := in.Role
	if role == "" {
		role = model.RoleBuyer
	}
	if !role.Registrable() {
		return out, ErrInvalidRole
	}

	// email重複チェック
	existing, err := u.userRepo.FindByEmail(ctx, email)
	if err == nil && existing != nil {
		return out, ErrEmailAlreadyExists
	}
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return out, err
	}

	// パスワードをハッシュ化
	hashed, err := u.hasher.Hash(in.Password)
	if err != nil {
		return out, err
	}

	now := u.clock.Now()
	user := &model.User{
		ID:           u.idGen.NewID(),
		Email:        email,
		Name:         name,
		PasswordHash: hashed,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	// 同時登録はDBの一意制約で弾く
	if err := u.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return out, ErrEmailAlreadyExists
		}
		return out, err
	}

	token, err := issueAccessToken(u.issuer, user.ID, now)
	if err != nil {
		return out, err
	}

	safeUser := *user
	safeUser.PasswordHash = ""

	out.User = safeUser
	out.Token = token
	return out, nil
}

// 前後の空白を落として小文字にする
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// メールチェック
func isValidEmailFormat(email string) bool {
	if email == "" {
		return false
	}
	addr, err := mail.ParseAddress(email)
	if err != nil {
		return false
	}
	// "Name <a@b>" 形式は受け付けない
	return addr.Address == email
}

func validatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	if len(password) > MaxPasswordBytes {
		return ErrPasswordTooLong
	}
	// よくある弱いパスワードの拒否
	if isWeakPassword(password) {
		return ErrWeakPassword
	}
	return nil
}

// パスワードのよくある弱いパスワード
func isWeakPassword(password string) bool {
	normalized := strings.ToLower(strings.TrimSpace(password))

	weak := map[string]struct{}{
		"password":     {},
		"password1":    {},
		"password123":  {},
		"123456789012": {},
		"1234567890":   {},
		"12345678":     {},
		"123456789":    {},
		"qwertyuiop":   {},
		"qwerty123":    {},
		"letmein123":   {},
		"admin123":     {},
		"iloveyou":     {},
	}

	_, ok := weak[normalized]
	return ok
}
