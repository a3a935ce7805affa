package usecase

import (
	"context"
	"strings"
	"time"

	"marketplace/internal/domain/model"
	repo "marketplace/internal/repository"
)

type AuditLogUsecase struct {
	audits repo.AuditLogRepository
}

func NewAuditLogUsecase(audits repo.AuditLogRepository) *AuditLogUsecase {
	return &AuditLogUsecase{audits: audits}
}

// GET /admin/audit-logs のクエリ
type ListAuditLogsInput struct {
	ActorUserID  string
	Action       string
	ResourceType string
	ResourceID   string
	From         string
	To           string
	Limit        int
	Offset       int
}

func (u *AuditLogUsecase) List(ctx context.Context, in ListAuditLogsInput) ([]model.AuditLog, error) {
	if in.Limit == 0 {
		in.Limit = 50
	}
	if in.Limit < 1 || in.Limit > 200 {
		return nil, invalidArgument("invalid limit")
	}
	if in.Offset < 0 {
		return nil, invalidArgument("invalid offset")
	}

	f := repo.AuditLogFilter{Limit: in.Limit, Offset: in.Offset}
	if s := strings.TrimSpace(in.ActorUserID); s != "" {
		f.ActorUserID = &s
	}
	if s := strings.TrimSpace(in.Action); s != "" {
		a := model.AuditAction(s)
		f.Action = &a
	}
	if s := strings.TrimSpace(in.ResourceType); s != "" {
		rt := model.AuditResourceType(s)
		f.ResourceType = &rt
	}
	if s := strings.TrimSpace(in.ResourceID); s != "" {
		f.ResourceID = &s
	}

	// 期間はRFC3339
	var ok bool
	if strings.TrimSpace(in.From) != "" {
		if f.CreatedFrom, ok = parseDateTimeRFC3339(in.From); !ok {
			return nil, invalidArgument("invalid from")
		}
	}
	if strings.TrimSpace(in.To) != "" {
		if f.CreatedTo, ok = parseDateTimeRFC3339(in.To); !ok {
			return nil, invalidArgument("invalid to")
		}
	}

	logs, err := u.audits.List(ctx, f)
	if err != nil {
		return nil, internal(err)
	}
	if logs == nil {
		logs = []model.AuditLog{}
	}
	return logs, nil
}

func parseDateTimeRFC3339(s string) (*time.Time, bool) {
	t, err := time.Parse(time.RFC3339, strings.TrimSpace(s))
	if err != nil {
		return nil, false
	}
	return &t, true
}
