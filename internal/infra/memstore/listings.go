package memstore

import (
	"context"
	"errors"
	"time"

	"marketplace/internal/domain/model"
	repo "marketplace/internal/repository"
)

type listingRepository struct {
	s    *Store
	inTx bool
}

func (r *listingRepository) Create(ctx context.Context, l model.Listing) error {
	return r.s.run(r.inTx, func(st *state) error {
		if _, ok := st.listings[l.ID]; ok {
			return repo.ErrDuplicate
		}
		st.listings[l.ID] = copyListing(l)
		st.listingSeq = append(st.listingSeq, l.ID)
		return nil
	})
}

func (r *listingRepository) FindByID(ctx context.Context, id string) (model.Listing, error) {
	var out model.Listing
	err := r.s.run(r.inTx, func(st *state) error {
		l, ok := st.listings[id]
		if !ok {
			return repo.ErrNotFound
		}
		out = copyListing(l)
		return nil
	})
	return out, err
}

func (r *listingRepository) ListBySeller(ctx context.Context, sellerID string) ([]model.Listing, error) {
	return r.filter(func(l model.Listing) bool { return l.SellerID == sellerID })
}

func (r *listingRepository) List(ctx context.Context, status *model.ListingStatus) ([]model.Listing, error) {
	return r.filter(func(l model.Listing) bool { return status == nil || l.Status == *status })
}

// 新しい順
func (r *listingRepository) filter(keep func(l model.Listing) bool) ([]model.Listing, error) {
	out := []model.Listing{}
	err := r.s.run(r.inTx, func(st *state) error {
		for i := len(st.listingSeq) - 1; i >= 0; i-- {
			l := st.listings[st.listingSeq[i]]
			if keep(l) {
				out = append(out, copyListing(l))
			}
		}
		return nil
	})
	return out, err
}

func (r *listingRepository) UpdateStatus(ctx context.Context, id string, status model.ListingStatus, now time.Time) (model.Listing, error) {
	var out model.Listing
	err := r.s.run(r.inTx, func(st *state) error {
		l, ok := st.listings[id]
		if !ok {
			return repo.ErrNotFound
		}
		l.Status = status
		l.UpdatedAt = now
		st.listings[id] = l
		out = copyListing(l)
		return nil
	})
	return out, err
}

func (r *listingRepository) ReservePool(ctx context.Context, id string, qty int64) (bool, error) {
	if qty <= 0 {
		return false, errors.New("invalid quantity")
	}
	reserved := false
	err := r.s.run(r.inTx, func(st *state) error {
		l, ok := st.listings[id]
		if !ok {
			return nil
		}
		if qty > l.PoolSize-l.PoolCurrent {
			return nil
		}
		l.PoolCurrent += qty
		st.listings[id] = l
		reserved = true
		return nil
	})
	return reserved, err
}

func (r *listingRepository) ReleasePool(ctx context.Context, id string, qty int64) error {
	return r.s.run(r.inTx, func(st *state) error {
		l, ok := st.listings[id]
		if !ok {
			return repo.ErrNotFound
		}
		l.PoolCurrent -= qty
		if l.PoolCurrent < 0 {
			l.PoolCurrent = 0
		}
		st.listings[id] = l
		return nil
	})
}
