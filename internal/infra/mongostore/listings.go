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

type listingRepository struct {
	coll *mongo.Collection
	sc   mongo.SessionContext
}

func (r *listingRepository) Create(ctx context.Context, l model.Listing) error {
	ctx = sessionCtx(ctx, r.sc)
	doc, err := newListingDoc(l)
	if err != nil {
		return err
	}
	_, err = r.coll.InsertOne(ctx, doc)
	return mapErr(err)
}

func (r *listingRepository) FindByID(ctx context.Context, id string) (model.Listing, error) {
	ctx = sessionCtx(ctx, r.sc)

	var d listingDoc
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&d); err != nil {
		return model.Listing{}, mapErr(err)
	}
	return d.toModel(), nil
}

func (r *listingRepository) ListBySeller(ctx context.Context, sellerID string) ([]model.Listing, error) {
	return r.find(ctx, bson.M{"seller_id": sellerID})
}

func (r *listingRepository) List(ctx context.Context, status *model.ListingStatus) ([]model.Listing, error) {
	filter := bson.M{}
	if status != nil {
		filter["status"] = string(*status)
	}
	return r.find(ctx, filter)
}

// 新しい順
func (r *listingRepository) find(ctx context.Context, filter bson.M) ([]model.Listing, error) {
	ctx = sessionCtx(ctx, r.sc)

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return []model.Listing{}, mapErr(err)
	}
	defer cur.Close(ctx)

	var docs []listingDoc
	if err := cur.All(ctx, &docs); err != nil {
		return []model.Listing{}, err
	}

	out := make([]model.Listing, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toModel())
	}
	return out, nil
}

func (r *listingRepository) UpdateStatus(ctx context.Context, id string, status model.ListingStatus, now time.Time) (model.Listing, error) {
	ctx = sessionCtx(ctx, r.sc)

	var d listingDoc
	err := r.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"status": string(status), "updated_at": now}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&d)
	if err != nil {
		return model.Listing{}, mapErr(err)
	}
	return d.toModel(), nil
}

// pool_size - pool_current >= qty のときだけ $inc
func (r *listingRepository) ReservePool(ctx context.Context, id string, qty int64) (bool, error) {
	ctx = sessionCtx(ctx, r.sc)
	if qty <= 0 {
		return false, errors.New("invalid quantity")
	}

	res, err := r.coll.UpdateOne(ctx,
		bson.M{
			"_id": id,
			"$expr": bson.M{"$gte": bson.A{
				bson.M{"$subtract": bson.A{"$pool_size", "$pool_current"}},
				qty,
			}},
		},
		bson.M{"$inc": bson.M{"pool_current": qty}},
	)
	if err != nil {
		return false, mapErr(err)
	}
	return res.ModifiedCount == 1, nil
}

func (r *listingRepository) ReleasePool(ctx context.Context, id string, qty int64) error {
	ctx = sessionCtx(ctx, r.sc)

	// 0未満にしない
	update := mongo.Pipeline{
		{{Key: "$set", Value: bson.M{
			"pool_current": bson.M{"$max": bson.A{
				0,
				bson.M{"$subtract": bson.A{"$pool_current", qty}},
			}},
		}}},
	}
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return mapErr(err)
	}
	if res.MatchedCount == 0 {
		return repo.ErrNotFound
	}
	return nil
}
