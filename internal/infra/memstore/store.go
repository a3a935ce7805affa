// Package memstore はプロセス内メモリのストア。テストとローカル起動用。
package memstore

import (
	"context"
	"sync"

	"marketplace/internal/domain/model"
	repo "marketplace/internal/repository"
)

type state struct {
	users      map[string]model.User
	carts      map[string]model.Cart // key: user_id
	orders     []model.Order         // 作成順
	listings   map[string]model.Listing
	listingSeq []string // 作成順
	audits     []model.AuditLog
}

func newState() *state {
	return &state{
		users:    map[string]model.User{},
		carts:    map[string]model.Cart{},
		listings: map[string]model.Listing{},
	}
}

// ロールバック用のコピー
func (s *state) clone() *state {
	c := newState()
	for k, v := range s.users {
		c.users[k] = v
	}
	for k, v := range s.carts {
		c.carts[k] = copyCart(v)
	}
	c.orders = make([]model.Order, len(s.orders))
	for i, o := range s.orders {
		c.orders[i] = copyOrder(o)
	}
	for k, v := range s.listings {
		c.listings[k] = copyListing(v)
	}
	c.listingSeq = append([]string(nil), s.listingSeq...)
	c.audits = append([]model.AuditLog(nil), s.audits...)
	return c
}

// Store は全リポジトリで共有するデータと排他。
// トランザクション中はmuを保持し続け、失敗したらスナップショットに戻す。
type Store struct {
	mu sync.Mutex
	st *state
}

func New() *Store {
	return &Store{st: newState()}
}

// inTxならロックはWithinTxが持っている
func (s *Store) run(inTx bool, fn func(st *state) error) error {
	if !inTx {
		s.mu.Lock()
		defer s.mu.Unlock()
	}
	return fn(s.st)
}

func (s *Store) Users() repo.UserRepository         { return &userRepository{s: s} }
func (s *Store) Carts() repo.CartRepository         { return &cartRepository{s: s} }
func (s *Store) Orders() repo.OrderRepository       { return &orderRepository{s: s} }
func (s *Store) Listings() repo.ListingRepository   { return &listingRepository{s: s} }
func (s *Store) AuditLogs() repo.AuditLogRepository { return &auditLogRepository{s: s} }
func (s *Store) TxManager() repo.TransactionManager { return &txManager{s: s} }

type txRepos struct {
	s *Store
}

func (r *txRepos) Orders() repo.OrderRepository { return &orderRepository{s: r.s, inTx: true} }
func (r *txRepos) Carts() repo.CartRepository   { return &cartRepository{s: r.s, inTx: true} }
func (r *txRepos) Listings() repo.ListingRepository {
	return &listingRepository{s: r.s, inTx: true}
}
func (r *txRepos) AuditLogs() repo.AuditLogRepository {
	return &auditLogRepository{s: r.s, inTx: true}
}

type txManager struct {
	s *Store
}

// fnの中ではtxRepos以外のリポジトリを使わないこと（デッドロックする）
func (tm *txManager) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	tm.s.mu.Lock()
	defer tm.s.mu.Unlock()

	snapshot := tm.s.st.clone()
	if err := fn(&txRepos{s: tm.s}); err != nil {
		tm.s.st = snapshot
		return err
	}
	return nil
}

func copyCart(c model.Cart) model.Cart {
	items := make([]model.CartItem, len(c.Items))
	copy(items, c.Items)
	c.Items = items
	return c
}

func copyOrder(o model.Order) model.Order {
	items := make([]model.OrderItem, len(o.Items))
	copy(items, o.Items)
	o.Items = items
	return o
}

func copyListing(l model.Listing) model.Listing {
	if l.Images != nil {
		l.Images = append([]string(nil), l.Images...)
	}
	return l
}
