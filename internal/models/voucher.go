package models

import "cleo_backend/internal/pagination"

type MemberVoucher struct {
	ID          int64   `json:"member_voucher_id" db:"id"`
	MemberName  string  `json:"member_name" db:"member_name"`
	VoucherName string  `json:"voucher_name" db:"voucher_name"`
	Balance     float64 `json:"balance" db:"balance"`
	CreatedAt   UTCTime `json:"created_at_utc" db:"created_at"`
}

func (v MemberVoucher) Cursor() pagination.Cursor {
	return pagination.Cursor{CreatedAt: v.CreatedAt.Time, ID: v.ID}
}

type MemberVoucherPage struct {
	Data     []MemberVoucher     `json:"data"`
	PageInfo pagination.PageInfo `json:"pageInfo"`
}
