// Package mongostore はMongoDB実装のリポジトリ。
package mongostore

import (
	"context"
	"errors"
	"fmt"

	repo "marketplace/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	collUsers     = "users"
	collCarts     = "carts"
	collOrders    = "orders"
	collListings  = "listings"
	collAuditLogs = "audit_logs"
)

type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

func New(client *mongo.Client, db *mongo.Database) *Store {
	return &Store{client: client, db: db}
}

// インデックス作成（起動時に1回）
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := map[string][]mongo.IndexModel{
		collUsers: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		collCarts: {
			{Keys: bson.D{{Key: "user_id", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		collOrders: {
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: 1}}},
		},
		collListings: {
			{Keys: bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: -1}}},
			{Keys: bson.D{{Key: "seller_id", Value: 1}}},
		},
		collAuditLogs: {
			{Keys: bson.D{{Key: "created_at", Value: -1}}},
			{Keys: bson.D{{Key: "resource_type", Value: 1}, {Key: "resource_id", Value: 1}}},
		},
	}
	for coll, models := range indexes {
		if _, err := s.db.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create indexes on %s: %w", coll, err)
		}
	}
	return nil
}

func (s *Store) Users() repo.UserRepository         { return &userRepository{coll: s.db.Collection(collUsers)} }
func (s *Store) Carts() repo.CartRepository         { return &cartRepository{coll: s.db.Collection(collCarts)} }
func (s *Store) Orders() repo.OrderRepository       { return &orderRepository{coll: s.db.Collection(collOrders)} }
func (s *Store) Listings() repo.ListingRepository   { return &listingRepository{coll: s.db.Collection(collListings)} }
func (s *Store) AuditLogs() repo.AuditLogRepository { return &auditLogRepository{coll: s.db.Collection(collAuditLogs)} }
func (s *Store) TxManager() repo.TransactionManager { return &txManager{s: s} }

// セッションに紐づいたリポジトリ
type txRepos struct {
	s  *Store
	sc mongo.SessionContext
}

func (r *txRepos) Orders() repo.OrderRepository {
	return &orderRepository{coll: r.s.db.Collection(collOrders), sc: r.sc}
}
func (r *txRepos) Carts() repo.CartRepository {
	return &cartRepository{coll: r.s.db.Collection(collCarts), sc: r.sc}
}
func (r *txRepos) Listings() repo.ListingRepository {
	return &listingRepository{coll: r.s.db.Collection(collListings), sc: r.sc}
}
func (r *txRepos) AuditLogs() repo.AuditLogRepository {
	return &auditLogRepository{coll: r.s.db.Collection(collAuditLogs), sc: r.sc}
}

type txManager struct {
	s *Store
}

// マルチドキュメントトランザクション。レプリカセットが必要。
func (tm *txManager) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	sess, err := tm.s.client.StartSession()
	if err != nil {
		return err
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(&txRepos{s: tm.s, sc: sc})
	})
	return err
}

// トランザクション中ならセッションのctxを使う
func sessionCtx(ctx context.Context, sc mongo.SessionContext) context.Context {
	if sc != nil {
		return sc
	}
	return ctx
}

func mapErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return repo.ErrNotFound
	}
	if mongo.IsDuplicateKeyError(err) {
		return repo.ErrDuplicate
	}
	return err
}
