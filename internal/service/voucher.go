package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"cleo_backend/internal/logger"
	"cleo_backend/internal/models"
	"cleo_backend/internal/pagination"
	"cleo_backend/internal/repository"
)

type VoucherParams struct {
	MemberName  string
	VoucherName string
	Balance     float64
}

type VoucherListParams struct {
	Page   pagination.RawParams
	Search string
}

type VoucherService struct {
	repo repository.VoucherRepo
	log  *logger.Logger
	now  func() time.Time
}

func NewVoucherService(repo repository.VoucherRepo, log *logger.Logger) *VoucherService {
	return &VoucherService{repo: repo, log: logger.OrNop(log), now: time.Now}
}

func (s *VoucherService) Create(ctx context.Context, p VoucherParams) (models.MemberVoucher, error) {
	v := models.MemberVoucher{
		MemberName:  strings.TrimSpace(p.MemberName),
		VoucherName: strings.TrimSpace(p.VoucherName),
		Balance:     p.Balance,
		CreatedAt:   models.NewUTCTime(s.now()),
	}
	if v.MemberName == "" || v.VoucherName == "" {
		return models.MemberVoucher{}, invalid(ErrInvalidInput, "member_name and voucher_name are required")
	}
	if v.Balance < 0 {
		return models.MemberVoucher{}, invalid(ErrInvalidInput, "balance must not be negative")
	}
	id, err := s.repo.Create(ctx, &v)
	if err != nil {
		return models.MemberVoucher{}, err
	}
	v.ID = id
	return v, nil
}

// List returns one page. A page number selects offset paging and wins over
// cursors; otherwise after/before cursors page over (created_at, id).
func (s *VoucherService) List(ctx context.Context, p VoucherListParams) (models.MemberVoucherPage, error) {
	params, badCursor, err := pagination.Parse(p.Page)
	if err != nil {
		return models.MemberVoucherPage{}, invalid(ErrInvalidInput, "limit must be 1-100 and page must be positive")
	}
	if badCursor {
		s.log.Warnw("invalid_pagination_cursor", "after", p.Page.After, "before", p.Page.Before)
	}

	q := repository.VoucherQuery{Search: p.Search, Limit: params.Limit + 1}
	switch params.Mode() {
	case pagination.ModeOffset:
		q.Limit, q.Offset = params.Limit, params.Offset()
	case pagination.ModeBefore:
		q.Before = params.Before
	case pagination.ModeAfter:
		q.After = params.After
	}

	rows, err := s.repo.List(ctx, q)
	if err != nil {
		return models.MemberVoucherPage{}, fmt.Errorf("list member vouchers: %w", err)
	}
	rows, extra := pagination.Trim(rows, params.Limit)
	if params.Mode() == pagination.ModeBefore {
		pagination.Reverse(rows)
	}

	total, err := s.repo.Count(ctx, p.Search)
	if err != nil {
		return models.MemberVoucherPage{}, fmt.Errorf("count member vouchers: %w", err)
	}

	return models.MemberVoucherPage{
		Data:     rows,
		PageInfo: pagination.Info(params, rows, extra, total, models.MemberVoucher.Cursor),
	}, nil
}
