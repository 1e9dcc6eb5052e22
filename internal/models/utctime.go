package models

import (
	"database/sql/driver"
	"fmt"
	"time"

	"cleo_backend/internal/datetransform"
)

// UTCTime is a timestamp that always crosses the API boundary as a UTC
// ISO-8601 string with millisecond precision.
type UTCTime struct {
	time.Time
}

func NewUTCTime(t time.Time) UTCTime { return UTCTime{Time: t.UTC()} }

// UTCPtr converts an optional time, keeping nil as nil.
func UTCPtr(t *time.Time) *UTCTime {
	if t == nil {
		return nil
	}
	u := NewUTCTime(*t)
	return &u
}

// TimePtr is the inverse of UTCPtr.
func (u *UTCTime) TimePtr() *time.Time {
	if u == nil {
		return nil
	}
	t := u.Time.UTC()
	return &t
}

func (u UTCTime) MarshalJSON() ([]byte, error) {
	return []byte(`"` + datetransform.FormatUTC(u.Time) + `"`), nil
}

func (u *UTCTime) UnmarshalJSON(b []byte) error {
	s := string(b)
	if s == "null" {
		return nil
	}
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return fmt.Errorf("utc time: expected string, got %s", s)
	}
	t, err := datetransform.ParseISO(s[1 : len(s)-1])
	if err != nil {
		return err
	}
	u.Time = t
	return nil
}

// Scan accepts the representations returned by the sqlite and postgres drivers.
func (u *UTCTime) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		u.Time = v.UTC()
	case string:
		return u.scanString(v)
	case []byte:
		return u.scanString(string(v))
	case nil:
		u.Time = time.Time{}
	default:
		return fmt.Errorf("utc time: cannot scan %T", src)
	}
	return nil
}

func (u *UTCTime) scanString(s string) error {
	t, err := datetransform.ParseISO(s)
	if err != nil {
		return err
	}
	u.Time = t
	return nil
}

func (u UTCTime) Value() (driver.Value, error) {
	return u.Time.UTC(), nil
}
