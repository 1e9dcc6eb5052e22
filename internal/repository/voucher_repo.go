package repository

import (
	"context"
	"fmt"
	"strings"

	"cleo_backend/internal/models"

	"github.com/jmoiron/sqlx"
)

type VoucherSQL struct {
	db *sqlx.DB
}

func NewVoucherSQL(db *sqlx.DB) *VoucherSQL { return &VoucherSQL{db: db} }

var _ VoucherRepo = (*VoucherSQL)(nil)

const (
	insertVoucherSQL = `
		INSERT INTO member_vouchers (member_name, voucher_name, balance, created_at)
		VALUES (?, ?, ?, ?) RETURNING id
	`
	selectVoucherColumns = `SELECT id, member_name, voucher_name, balance, created_at FROM member_vouchers`
	countVoucherSQL      = `SELECT COUNT(*) FROM member_vouchers`
)

func (r *VoucherSQL) Create(ctx context.Context, v *models.MemberVoucher) (int64, error) {
	var id int64
	err := r.db.QueryRowxContext(ctx, r.db.Rebind(insertVoucherSQL),
		v.MemberName, v.VoucherName, v.Balance, v.CreatedAt.UTC(),
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert member voucher: %w", err)
	}
	return id, nil
}

func searchConds(search string) ([]string, []any) {
	search = strings.ToLower(strings.TrimSpace(search))
	if search == "" {
		return nil, nil
	}
	like := "%" + search + "%"
	return []string{"(LOWER(member_name) LIKE ? OR LOWER(voucher_name) LIKE ?)"}, []any{like, like}
}

func whereClause(conds []string) string {
	if len(conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(conds, " AND ")
}

// List reads one page ordered by (created_at, id) descending. Before-cursor
// pages are read ascending from the cursor and returned in that order.
func (r *VoucherSQL) List(ctx context.Context, q VoucherQuery) ([]models.MemberVoucher, error) {
	conds, args := searchConds(q.Search)
	order := " ORDER BY created_at DESC, id DESC"

	switch {
	case q.Before != nil:
		conds = append(conds, "(created_at > ? OR (created_at = ? AND id > ?))")
		args = append(args, q.Before.CreatedAt.UTC(), q.Before.CreatedAt.UTC(), q.Before.ID)
		order = " ORDER BY created_at ASC, id ASC"
	case q.After != nil:
		conds = append(conds, "(created_at < ? OR (created_at = ? AND id < ?))")
		args = append(args, q.After.CreatedAt.UTC(), q.After.CreatedAt.UTC(), q.After.ID)
	}

	stmt := selectVoucherColumns + whereClause(conds) + order + " LIMIT ?"
	args = append(args, q.Limit)
	if q.Offset > 0 {
		stmt += " OFFSET ?"
		args = append(args, q.Offset)
	}

	out := make([]models.MemberVoucher, 0, q.Limit)
	if err := r.db.SelectContext(ctx, &out, r.db.Rebind(stmt), args...); err != nil {
		return nil, fmt.Errorf("select member vouchers: %w", err)
	}
	return out, nil
}

func (r *VoucherSQL) Count(ctx context.Context, search string) (int, error) {
	conds, args := searchConds(search)
	var n int
	if err := r.db.GetContext(ctx, &n, r.db.Rebind(countVoucherSQL+whereClause(conds)), args...); err != nil {
		return 0, fmt.Errorf("count member vouchers: %w", err)
	}
	return n, nil
}
