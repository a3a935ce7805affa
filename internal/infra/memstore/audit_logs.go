package memstore

import (
	"context"

	"marketplace/internal/domain/model"
	repo "marketplace/internal/repository"
)

type auditLogRepository struct {
	s    *Store
	inTx bool
}

func (r *auditLogRepository) Create(ctx context.Context, log model.AuditLog) error {
	return r.s.run(r.inTx, func(st *state) error {
		st.audits = append(st.audits, log)
		return nil
	})
}

// 新しい順
func (r *auditLogRepository) List(ctx context.Context, f repo.AuditLogFilter) ([]model.AuditLog, error) {
	limit, offset := f.Limit, f.Offset
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	out := []model.AuditLog{}
	err := r.s.run(r.inTx, func(st *state) error {
		skipped := 0
		for i := len(st.audits) - 1; i >= 0 && len(out) < limit; i-- {
			l := st.audits[i]
			if !matchAudit(l, f) {
				continue
			}
			if skipped < offset {
				skipped++
				continue
			}
			out = append(out, l)
		}
		return nil
	})
	return out, err
}

func matchAudit(l model.AuditLog, f repo.AuditLogFilter) bool {
	if f.ActorUserID != nil && l.ActorUserID != *f.ActorUserID {
		return false
	}
	if f.Action != nil && l.Action != *f.Action {
		return false
	}
	if f.ResourceType != nil && l.ResourceType != *f.ResourceType {
		return false
	}
	if f.ResourceID != nil && l.ResourceID != *f.ResourceID {
		return false
	}
	if f.CreatedFrom != nil && l.CreatedAt.Before(*f.CreatedFrom) {
		return false
	}
	if f.CreatedTo != nil && l.CreatedAt.After(*f.CreatedTo) {
		return false
	}
	return true
}
