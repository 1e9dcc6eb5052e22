// Package pagination implements the opaque keyset cursors and hybrid
// offset/cursor page parameters used by list endpoints.
package pagination

import (
	"encoding/base64"
	"strconv"
	"strings"
	"time"
)

// Cursor identifies a row position in a (created_at DESC, id DESC) ordering.
type Cursor struct {
	CreatedAt time.Time
	ID        int64
}

// EncodeCursor returns the standard base64 form of "<createdAt>,<id>".
func EncodeCursor(createdAt time.Time, id int64) string {
	raw := createdAt.UTC().Format(time.RFC3339Nano) + "," + strconv.FormatInt(id, 10)
	return base64.StdEncoding.EncodeToString([]byte(raw))
}

// DecodeCursor reverses EncodeCursor. Any malformed token yields nil.
func DecodeCursor(token string) *Cursor {
	if token == "" {
		return nil
	}
	raw, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return nil
	}
	ts, idStr, ok := strings.Cut(string(raw), ",")
	if !ok {
		return nil
	}
	createdAt, err := time.Parse(time.RFC3339Nano, ts)
	if err != nil {
		return nil
	}
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		return nil
	}
	return &Cursor{CreatedAt: createdAt.UTC(), ID: id}
}
