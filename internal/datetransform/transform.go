// Package datetransform rewrites timestamp fields of JSON-shaped payloads
// between a caller's local wall clock and the UTC wire format.
//
// Payloads are the values produced by encoding/json when decoding into any:
// map[string]any, []any and scalars. time.Time values may appear in outgoing
// payloads. Binary payloads ([]byte, json.RawMessage, io.Reader,
// *multipart.FileHeader) are never inspected.
//
// Both directions return deep copies and never fail: a field that cannot be
// converted keeps its original value and the problem is logged.
package datetransform

import (
	"encoding/json"
	"io"
	"mime/multipart"
	"time"

	"cleo_backend/internal/logger"
)

// Transformer applies the request and response rewrites.
type Transformer struct {
	matcher Matcher
	log     *logger.Logger
}

type Option func(*Transformer)

// WithMatcher replaces the suffix convention, e.g. with a FieldSet.
func WithMatcher(m Matcher) Option {
	return func(t *Transformer) {
		if m != nil {
			t.matcher = m
		}
	}
}

func New(log *logger.Logger, opts ...Option) *Transformer {
	t := &Transformer{matcher: SuffixMatcher{}, log: logger.OrNop(log)}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Request converts every timestamp field from a wall clock in tz to a UTC
// wire string.
func (t *Transformer) Request(data any, tz string) any {
	return t.walk(data, func(key string, v any) any {
		if v == nil {
			return v
		}
		utc, err := LocalToUTC(v, tz)
		if err != nil {
			t.log.Warnw("date_transform_request_failed", "field", key, "timezone", tz, "err", err)
			return t.copyOf(v)
		}
		return utc
	})
}

// Response converts every timestamp field from a UTC wire string to a
// time.Time in loc.
func (t *Transformer) Response(data any, loc *time.Location) any {
	return t.walk(data, func(key string, v any) any {
		if v == nil {
			return v
		}
		local, err := UTCToLocal(v, loc)
		if err != nil {
			t.log.Warnw("date_transform_response_failed", "field", key, "err", err)
			return t.copyOf(v)
		}
		return local
	})
}

// walk deep-copies data, replacing matched fields with convert(key, value).
// Matched fields are not descended into.
func (t *Transformer) walk(data any, convert func(key string, v any) any) any {
	switch x := data.(type) {
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, v := range x {
			if t.matcher.Match(k) {
				out[k] = convert(k, v)
				continue
			}
			out[k] = t.walk(v, convert)
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, v := range x {
			out[i] = t.walk(v, convert)
		}
		return out
	case []map[string]any:
		out := make([]map[string]any, len(x))
		for i, v := range x {
			out[i], _ = t.walk(v, convert).(map[string]any)
		}
		return out
	default:
		return data
	}
}

// copyOf deep-copies a value kept unconverted so the output shares no
// containers with the input.
func (t *Transformer) copyOf(v any) any {
	return t.walk(v, func(_ string, x any) any { return t.copyOf(x) })
}

// IsBinary reports whether v is a payload the transforms pass through as-is.
func IsBinary(v any) bool {
	switch v.(type) {
	case []byte, json.RawMessage, io.Reader, *multipart.FileHeader:
		return true
	}
	return false
}
