package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"marketplace/internal/domain/model"
	repo "marketplace/internal/repository"
	auth "marketplace/internal/usecase/auth_usecase"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/shopspring/decimal"
)

// 出品と審査。
type ListingUsecase struct {
	tx       repo.TransactionManager
	listings repo.ListingRepository
	idGen    auth.IDGenerator
	clock    auth.Clock
}

func NewListingUsecase(
	tx repo.TransactionManager,
	listings repo.ListingRepository,
	idGen auth.IDGenerator,
	clock auth.Clock,
) *ListingUsecase {
	return &ListingUsecase{
		tx:       tx,
		listings: listings,
		idGen:    idGen,
		clock:    clock,
	}
}

type CreateListingInput struct {
	Name          string          `json:"name"`
	NameRw        string          `json:"nameRw"`
	Description   string          `json:"description"`
	DescriptionRw string          `json:"descriptionRw"`
	Category      string          `json:"category"`
	Image         string          `json:"image"`
	Images        []string        `json:"images"`
	RegularPrice  decimal.Decimal `json:"regularPrice"`
	PerItemPrice  decimal.Decimal `json:"perItemPrice"`
	PoolPrice     decimal.Decimal `json:"poolPrice"`
	PoolSize      int64           `json:"poolSize"`
	PoolCurrent   int64           `json:"poolCurrent"`
	Rating        float64         `json:"rating"`
}

// 0以上、numeric(12,2)に収まる金額
var priceRule = validation.By(func(value interface{}) error {
	d, ok := value.(decimal.Decimal)
	if !ok {
		return errors.New("must be a number")
	}
	if d.IsNegative() {
		return errors.New("must be no less than 0")
	}
	if d.Round(2).GreaterThanOrEqual(maxAmount) {
		return errors.New("must be less than 10000000000")
	}
	return nil
})

func (in CreateListingInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Name, validation.Required, validation.Length(1, 255)),
		validation.Field(&in.NameRw, validation.Length(0, 255)),
		validation.Field(&in.Description, validation.Required),
		validation.Field(&in.Category, validation.Required, validation.Length(1, 100)),
		validation.Field(&in.Image, validation.Required),
		validation.Field(&in.RegularPrice, priceRule),
		validation.Field(&in.PerItemPrice, priceRule),
		validation.Field(&in.PoolPrice, priceRule),
		validation.Field(&in.PoolSize, validation.Min(int64(0)), validation.Max(MaxPoolSize)),
		validation.Field(&in.PoolCurrent, validation.Min(int64(0)), validation.Max(in.PoolSize)),
		validation.Field(&in.Rating, validation.Min(0.0), validation.Max(5.0)),
	)
}

// sellerのみ。必ずpendingで作る。
func (u *ListingUsecase) Create(ctx context.Context, caller model.User, in CreateListingInput) (model.Listing, error) {
	if err := RequireRole(caller, model.RoleSeller); err != nil {
		return model.Listing{}, forbidden("only sellers can create products")
	}

	in.Name = strings.TrimSpace(in.Name)
	in.Category = strings.TrimSpace(in.Category)
	if err := in.Validate(); err != nil {
		return model.Listing{}, invalidArgument(err.Error())
	}

	images := make([]string, 0, len(in.Images))
	for _, img := range in.Images {
		if s := strings.TrimSpace(img); s != "" {
			images = append(images, s)
		}
	}

	now := u.clock.Now()
	l := model.Listing{
		ID:            u.idGen.NewID(),
		SellerID:      caller.ID,
		Name:          in.Name,
		NameRw:        strings.TrimSpace(in.NameRw),
		Description:   in.Description,
		DescriptionRw: in.DescriptionRw,
		Category:      in.Category,
		Image:         strings.TrimSpace(in.Image),
		Images:        images,
		RegularPrice:  in.RegularPrice.Round(2),
		PerItemPrice:  in.PerItemPrice.Round(2),
		PoolPrice:     in.PoolPrice.Round(2),
		PoolSize:      in.PoolSize,
		PoolCurrent:   in.PoolCurrent,
		Rating:        in.Rating,
		Status:        model.ListingStatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := u.listings.Create(ctx, l); err != nil {
		return model.Listing{}, internal(err)
	}
	return l, nil
}

// 自分の出品（全ステータス）
func (u *ListingUsecase) ListOwn(ctx context.Context, caller model.User) ([]model.Listing, error) {
	if caller.ID == "" {
		return nil, unauthenticated()
	}
	items, err := u.listings.ListBySeller(ctx, caller.ID)
	if err != nil {
		return nil, internal(err)
	}
	return nonNilListings(items), nil
}

// 公開カタログ（approvedのみ）
func (u *ListingUsecase) ListPublic(ctx context.Context) ([]model.Listing, error) {
	return u.listByStatus(ctx, model.ListingStatusApproved)
}

func (u *ListingUsecase) ListPending(ctx context.Context) ([]model.Listing, error) {
	return u.listByStatus(ctx, model.ListingStatusPending)
}

func (u *ListingUsecase) ListAll(ctx context.Context) ([]model.Listing, error) {
	items, err := u.listings.List(ctx, nil)
	if err != nil {
		return nil, internal(err)
	}
	return nonNilListings(items), nil
}

// approved以外は出品者本人かadminだけが見られる。それ以外には存在を隠す。
// callerは未ログインならnil。
func (u *ListingUsecase) GetByID(ctx context.Context, caller *model.User, id string) (model.Listing, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return model.Listing{}, notFound("product not found")
	}

	l, err := u.listings.FindByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Listing{}, notFound("product not found")
	}
	if err != nil {
		return model.Listing{}, internal(err)
	}

	if l.IsPublic() {
		return l, nil
	}
	if caller != nil && RequireOwnerOrAdmin(*caller, l.SellerID) == nil {
		return l, nil
	}
	return model.Listing{}, notFound("product not found")
}

func (u *ListingUsecase) Approve(ctx context.Context, admin model.User, id string) (model.Listing, error) {
	return u.moderate(ctx, admin, id, model.ListingStatusApproved)
}

func (u *ListingUsecase) Reject(ctx context.Context, admin model.User, id string) (model.Listing, error) {
	return u.moderate(ctx, admin, id, model.ListingStatusRejected)
}

// approved/rejectedへの遷移は現在の状態によらず行う。pendingには戻さない。
func (u *ListingUsecase) moderate(ctx context.Context, admin model.User, id string, status model.ListingStatus) (model.Listing, error) {
	if err := RequireRole(admin, model.RoleAdmin); err != nil {
		return model.Listing{}, err
	}

	var out model.Listing
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		before, err := r.Listings().FindByID(ctx, id)
		if errors.Is(err, repo.ErrNotFound) {
			return notFound("product not found")
		}
		if err != nil {
			return internal(err)
		}

		now := u.clock.Now()
		updated, err := r.Listings().UpdateStatus(ctx, id, status, now)
		if errors.Is(err, repo.ErrNotFound) {
			return notFound("product not found")
		}
		if err != nil {
			return internal(err)
		}

		// 監査ログ（UPDATE_LISTING_STATUS）
		if err := r.AuditLogs().Create(ctx, model.AuditLog{
			ID:           u.idGen.NewID(),
			ActorUserID:  admin.ID,
			Action:       model.AuditActionUpdateListingStatus,
			ResourceType: model.AuditResourceListing,
			ResourceID:   id,
			BeforeJSON:   statusJSON(map[string]string{"status": string(before.Status)}),
			AfterJSON:    statusJSON(map[string]string{"status": string(updated.Status)}),
			CreatedAt:    now,
		}); err != nil {
			return internal(err)
		}

		out = updated
		return nil
	})
	if err != nil {
		return model.Listing{}, err
	}
	return out, nil
}

func (u *ListingUsecase) listByStatus(ctx context.Context, status model.ListingStatus) ([]model.Listing, error) {
	items, err := u.listings.List(ctx, &status)
	if err != nil {
		return nil, internal(err)
	}
	return nonNilListings(items), nil
}

func nonNilListings(items []model.Listing) []model.Listing {
	if items == nil {
		return []model.Listing{}
	}
	return items
}

func statusJSON(v map[string]string) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "{}"
	}
	return string(b)
}
