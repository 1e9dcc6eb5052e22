package pagination

import (
	"errors"
	"strconv"
)

const (
	DefaultLimit = 10
	MaxLimit     = 100
)

var ErrInvalidParams = errors.New("invalid pagination parameters")

// Mode says how a page request is resolved.
type Mode int

const (
	ModeFirst Mode = iota
	ModeOffset
	ModeAfter
	ModeBefore
)

// Params is a validated page request. At most one of Page, After and Before
// is in effect; Page wins over cursors.
type Params struct {
	Limit  int
	Page   int
	After  *Cursor
	Before *Cursor
}

// RawParams carries the untrusted query values.
type RawParams struct {
	Limit  string
	Page   string
	After  string
	Before string
}

// Parse validates raw and reports whether any supplied cursor was
// unreadable. Unreadable cursors are dropped rather than rejected.
func Parse(raw RawParams) (p Params, badCursor bool, err error) {
	p.Limit = DefaultLimit
	if raw.Limit != "" {
		n, convErr := strconv.Atoi(raw.Limit)
		if convErr != nil || n <= 0 || n > MaxLimit {
			return Params{}, false, ErrInvalidParams
		}
		p.Limit = n
	}
	if raw.Page != "" {
		n, convErr := strconv.Atoi(raw.Page)
		if convErr != nil || n <= 0 {
			return Params{}, false, ErrInvalidParams
		}
		p.Page = n
		return p, false, nil
	}
	if raw.After != "" {
		if p.After = DecodeCursor(raw.After); p.After == nil {
			badCursor = true
		}
	}
	if raw.Before != "" {
		if p.Before = DecodeCursor(raw.Before); p.Before == nil {
			badCursor = true
		}
	}
	if p.After != nil && p.Before != nil {
		p.Before = nil
	}
	return p, badCursor, nil
}

func (p Params) Mode() Mode {
	switch {
	case p.Page > 0:
		return ModeOffset
	case p.Before != nil:
		return ModeBefore
	case p.After != nil:
		return ModeAfter
	default:
		return ModeFirst
	}
}

// Offset is the row offset for ModeOffset.
func (p Params) Offset() int {
	if p.Page <= 1 {
		return 0
	}
	return (p.Page - 1) * p.Limit
}

// PageInfo describes the returned slice relative to the full result set.
type PageInfo struct {
	StartCursor     *string `json:"startCursor"`
	EndCursor       *string `json:"endCursor"`
	HasNextPage     bool    `json:"hasNextPage"`
	HasPreviousPage bool    `json:"hasPreviousPage"`
	TotalCount      int     `json:"totalCount"`
}

// Trim cuts a keyset fetch of limit+1 rows down to limit and reports
// whether the extra row was present.
func Trim[T any](rows []T, limit int) ([]T, bool) {
	if len(rows) > limit {
		return rows[:limit], true
	}
	return rows, false
}

// Reverse flips rows in place. Before-cursor queries read ascending and are
// reversed back into display order.
func Reverse[T any](rows []T) {
	for i, j := 0, len(rows)-1; i < j; i, j = i+1, j-1 {
		rows[i], rows[j] = rows[j], rows[i]
	}
}

// Info builds PageInfo for rows fetched under p. extra reports whether a
// keyset query returned more than Limit rows. cursor maps a row to its cursor.
func Info[T any](p Params, rows []T, extra bool, total int, cursor func(T) Cursor) PageInfo {
	info := PageInfo{TotalCount: total}
	if len(rows) > 0 {
		first, last := cursor(rows[0]), cursor(rows[len(rows)-1])
		start := EncodeCursor(first.CreatedAt, first.ID)
		end := EncodeCursor(last.CreatedAt, last.ID)
		info.StartCursor, info.EndCursor = &start, &end
	}
	switch p.Mode() {
	case ModeOffset:
		info.HasNextPage = p.Page*p.Limit < total
		info.HasPreviousPage = p.Page > 1
	case ModeBefore:
		info.HasPreviousPage = extra
		info.HasNextPage = len(rows) > 0
	case ModeAfter:
		info.HasNextPage = extra
		info.HasPreviousPage = len(rows) > 0
	default:
		info.HasNextPage = extra
	}
	return info
}
