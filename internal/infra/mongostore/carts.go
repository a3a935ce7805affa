package mongostore

import (
	"context"
	"errors"
	"time"

	"marketplace/internal/domain/model"
	repo "marketplace/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type cartRepository struct {
	coll *mongo.Collection
	sc   mongo.SessionContext
}

// upsert + $setOnInsert で1つだけ作る
func (r *cartRepository) GetOrCreate(ctx context.Context, cart model.Cart) (model.Cart, error) {
	ctx = sessionCtx(ctx, r.sc)

	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var out model.Cart
	err := r.coll.FindOneAndUpdate(ctx,
		bson.M{"user_id": cart.UserID},
		bson.M{"$setOnInsert": bson.M{
			"_id":        cart.ID,
			"items":      bson.A{},
			"created_at": cart.CreatedAt,
			"updated_at": cart.UpdatedAt,
		}},
		opts,
	).Decode(&out)

	// 同時upsertで一意制約に当たったら既存を読む
	if mongo.IsDuplicateKeyError(err) {
		return r.FindByUserID(ctx, cart.UserID)
	}
	if err != nil {
		return model.Cart{}, mapErr(err)
	}
	return withCartIDs(out), nil
}

func (r *cartRepository) FindByUserID(ctx context.Context, userID string) (model.Cart, error) {
	ctx = sessionCtx(ctx, r.sc)

	var out model.Cart
	if err := r.coll.FindOne(ctx, bson.M{"user_id": userID}).Decode(&out); err != nil {
		return model.Cart{}, mapErr(err)
	}
	return withCartIDs(out), nil
}

// 既存明細は $inc、無ければ $push。どちらも条件付きなので競合したらやり直す。
func (r *cartRepository) AddItem(ctx context.Context, cartID string, item model.CartItem, now time.Time) error {
	ctx = sessionCtx(ctx, r.sc)
	if item.Quantity <= 0 {
		return errors.New("invalid quantity")
	}

	match := bson.M{"product_id": item.ProductID, "is_pool_purchase": item.IsPoolPurchase}

	for attempt := 0; attempt < 3; attempt++ {
		res, err := r.coll.UpdateOne(ctx,
			bson.M{"_id": cartID, "items": bson.M{"$elemMatch": match}},
			bson.M{
				"$inc": bson.M{"items.$.quantity": item.Quantity},
				"$set": bson.M{"updated_at": now},
			},
		)
		if err != nil {
			return mapErr(err)
		}
		if res.MatchedCount == 1 {
			return nil
		}

		res, err = r.coll.UpdateOne(ctx,
			bson.M{"_id": cartID, "items": bson.M{"$not": bson.M{"$elemMatch": match}}},
			bson.M{
				"$push": bson.M{"items": item},
				"$set":  bson.M{"updated_at": now},
			},
		)
		if err != nil {
			return mapErr(err)
		}
		if res.MatchedCount == 1 {
			return nil
		}

		n, err := r.coll.CountDocuments(ctx, bson.M{"_id": cartID})
		if err != nil {
			return mapErr(err)
		}
		if n == 0 {
			return repo.ErrNotFound
		}
	}
	return errors.New("cart item upsert conflict")
}

func (r *cartRepository) RemoveProduct(ctx context.Context, cartID string, productID string, now time.Time) error {
	ctx = sessionCtx(ctx, r.sc)

	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": cartID},
		bson.M{
			"$pull": bson.M{"items": bson.M{"product_id": productID}},
			"$set":  bson.M{"updated_at": now},
		},
	)
	if err != nil {
		return mapErr(err)
	}
	if res.MatchedCount == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *cartRepository) Clear(ctx context.Context, cartID string, now time.Time) error {
	ctx = sessionCtx(ctx, r.sc)

	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": cartID},
		bson.M{"$set": bson.M{"items": bson.A{}, "updated_at": now}},
	)
	if err != nil {
		return mapErr(err)
	}
	if res.MatchedCount == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// 明細は埋め込みなのでCartIDを補う
func withCartIDs(c model.Cart) model.Cart {
	if c.Items == nil {
		c.Items = []model.CartItem{}
	}
	for i := range c.Items {
		c.Items[i].CartID = c.ID
	}
	return c
}
