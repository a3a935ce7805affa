package mongostore

import (
	"context"

	"marketplace/internal/domain/model"
	repo "marketplace/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type auditLogRepository struct {
	coll *mongo.Collection
	sc   mongo.SessionContext
}

func (r *auditLogRepository) Create(ctx context.Context, log model.AuditLog) error {
	ctx = sessionCtx(ctx, r.sc)
	_, err := r.coll.InsertOne(ctx, log)
	return mapErr(err)
}

func (r *auditLogRepository) List(ctx context.Context, f repo.AuditLogFilter) ([]model.AuditLog, error) {
	ctx = sessionCtx(ctx, r.sc)

	filter := bson.M{}
	if f.ActorUserID != nil {
		filter["actor_user_id"] = *f.ActorUserID
	}
	if f.Action != nil {
		filter["action"] = string(*f.Action)
	}
	if f.ResourceType != nil {
		filter["resource_type"] = string(*f.ResourceType)
	}
	if f.ResourceID != nil {
		filter["resource_id"] = *f.ResourceID
	}
	if f.CreatedFrom != nil || f.CreatedTo != nil {
		rng := bson.M{}
		if f.CreatedFrom != nil {
			rng["$gte"] = *f.CreatedFrom
		}
		if f.CreatedTo != nil {
			rng["$lte"] = *f.CreatedTo
		}
		filter["created_at"] = rng
	}

	limit, offset := f.Limit, f.Offset
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))

	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, mapErr(err)
	}
	defer cur.Close(ctx)

	logs := []model.AuditLog{}
	if err := cur.All(ctx, &logs); err != nil {
		return nil, err
	}
	return logs, nil
}
