package mongostore

import (
	"context"
	"time"

	"marketplace/internal/domain/model"
	repo "marketplace/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type orderRepository struct {
	coll *mongo.Collection
	sc   mongo.SessionContext
}

func (r *orderRepository) Create(ctx context.Context, order model.Order) error {
	ctx = sessionCtx(ctx, r.sc)
	doc, err := newOrderDoc(order)
	if err != nil {
		return err
	}
	_, err = r.coll.InsertOne(ctx, doc)
	return mapErr(err)
}

func (r *orderRepository) FindByID(ctx context.Context, orderID string) (model.Order, error) {
	ctx = sessionCtx(ctx, r.sc)

	var d orderDoc
	if err := r.coll.FindOne(ctx, bson.M{"_id": orderID}).Decode(&d); err != nil {
		return model.Order{}, mapErr(err)
	}
	return d.toModel(), nil
}

func (r *orderRepository) ListByUserID(ctx context.Context, userID string) ([]model.Order, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	return r.find(ctx, bson.M{"user_id": userID}, opts)
}

func (r *orderRepository) ListAll(ctx context.Context) ([]model.Order, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	return r.find(ctx, bson.M{}, opts)
}

func (r *orderRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]model.Order, error) {
	ctx = sessionCtx(ctx, r.sc)

	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return []model.Order{}, mapErr(err)
	}
	defer cur.Close(ctx)

	var docs []orderDoc
	if err := cur.All(ctx, &docs); err != nil {
		return []model.Order{}, err
	}

	out := make([]model.Order, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toModel())
	}
	return out, nil
}

func (r *orderRepository) UpdateStatus(ctx context.Context, orderID string, orderStatus model.OrderStatus, paymentStatus model.PaymentStatus, now time.Time) error {
	ctx = sessionCtx(ctx, r.sc)

	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": orderID}, bson.M{"$set": bson.M{
		"order_status":   string(orderStatus),
		"payment_status": string(paymentStatus),
		"updated_at":     now,
	}})
	if err != nil {
		return mapErr(err)
	}
	if res.MatchedCount == 0 {
		return repo.ErrNotFound
	}
	return nil
}
