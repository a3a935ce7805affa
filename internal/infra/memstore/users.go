package memstore

import (
	"context"

	"marketplace/internal/domain/model"
	repo "marketplace/internal/repository"
)

type userRepository struct {
	s *Store
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	return r.s.run(false, func(st *state) error {
		if _, ok := st.users[user.ID]; ok {
			return repo.ErrDuplicate
		}
		for _, u := range st.users {
			if u.Email == user.Email {
				return repo.ErrDuplicate
			}
		}
		st.users[user.ID] = *user
		return nil
	})
}

func (r *userRepository) FindByID(ctx context.Context, userID string) (*model.User, error) {
	var out *model.User
	err := r.s.run(false, func(st *state) error {
		u, ok := st.users[userID]
		if !ok {
			return repo.ErrNotFound
		}
		out = &u
		return nil
	})
	return out, err
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var out *model.User
	err := r.s.run(false, func(st *state) error {
		for _, u := range st.users {
			if u.Email == email {
				u := u
				out = &u
				return nil
			}
		}
		return repo.ErrNotFound
	})
	return out, err
}

func (r *userRepository) Update(ctx context.Context, user *model.User) error {
	return r.s.run(false, func(st *state) error {
		cur, ok := st.users[user.ID]
		if !ok {
			return repo.ErrNotFound
		}
		for id, u := range st.users {
			if id != user.ID && u.Email == user.Email {
				return repo.ErrDuplicate
			}
		}
		cur.Email = user.Email
		cur.Name = user.Name
		cur.Role = user.Role
		cur.UpdatedAt = user.UpdatedAt
		st.users[user.ID] = cur
		return nil
	})
}
