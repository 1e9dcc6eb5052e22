package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"cleo_backend/internal/pagination"

	"github.com/DATA-DOG/go-sqlmock"
)

var voucherColumns = []string{"id", "member_name", "voucher_name", "balance", "created_at"}

func TestVoucherSQL_ListAfterCursorWithSearch(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()

	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	query := selectVoucherColumns +
		" WHERE (LOWER(member_name) LIKE ? OR LOWER(voucher_name) LIKE ?) AND (created_at < ? OR (created_at = ? AND id < ?))" +
		" ORDER BY created_at DESC, id DESC LIMIT ?"

	mock.ExpectQuery(regexp.QuoteMeta(query)).
		WithArgs("%spa%", "%spa%", at, at, int64(9), 3).
		WillReturnRows(sqlmock.NewRows(voucherColumns).
			AddRow(8, "Ann", "Spa Day", 50.0, at).
			AddRow(7, "Ben", "Spa Night", 20.0, at.Add(-time.Minute)))

	got, err := NewVoucherSQL(db).List(context.Background(), VoucherQuery{
		Search: " SPA ",
		Limit:  3,
		After:  &pagination.Cursor{CreatedAt: at, ID: 9},
	})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 2 || got[0].ID != 8 || !got[1].CreatedAt.Equal(at.Add(-time.Minute)) {
		t.Fatalf("unexpected rows %+v", got)
	}
}

func TestVoucherSQL_ListBeforeReadsAscending(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()

	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	query := selectVoucherColumns +
		" WHERE (created_at > ? OR (created_at = ? AND id > ?)) ORDER BY created_at ASC, id ASC LIMIT ?"

	mock.ExpectQuery(regexp.QuoteMeta(query)).
		WithArgs(at, at, int64(2), 11).
		WillReturnRows(sqlmock.NewRows(voucherColumns))

	if _, err := NewVoucherSQL(db).List(context.Background(), VoucherQuery{
		Limit:  11,
		Before: &pagination.Cursor{CreatedAt: at, ID: 2},
	}); err != nil {
		t.Fatalf("List: %v", err)
	}
}

func TestVoucherSQL_ListOffsetAndCount(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta(selectVoucherColumns + " ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?")).
		WithArgs(10, 20).
		WillReturnRows(sqlmock.NewRows(voucherColumns))
	mock.ExpectQuery(regexp.QuoteMeta(countVoucherSQL)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(25))

	repo := NewVoucherSQL(db)
	if _, err := repo.List(context.Background(), VoucherQuery{Limit: 10, Offset: 20}); err != nil {
		t.Fatalf("List: %v", err)
	}
	n, err := repo.Count(context.Background(), "")
	if err != nil || n != 25 {
		t.Fatalf("Count = %d, %v", n, err)
	}
}
