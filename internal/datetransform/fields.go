package datetransform

import "strings"

// Suffixes that mark a JSON key as holding a UTC timestamp. Matching is
// case-insensitive: "createdAtUtc", "CREATEDATUTC" and "start_date_utc" all match.
const (
	compactSuffix    = "atutc"
	underscoreSuffix = "_utc"
)

// Matcher decides which keys of a payload are UTC timestamp fields.
type Matcher interface {
	Match(key string) bool
}

// SuffixMatcher implements the wire naming convention.
type SuffixMatcher struct{}

func (SuffixMatcher) Match(key string) bool { return IsUTCField(key) }

// IsUTCField reports whether key follows the UTC-marker naming convention.
func IsUTCField(key string) bool {
	lower := strings.ToLower(key)
	return strings.HasSuffix(lower, compactSuffix) || strings.HasSuffix(lower, underscoreSuffix)
}

// FieldSet is an explicit list of timestamp keys for payloads whose schema is
// known. Keys match exactly.
type FieldSet map[string]struct{}

func NewFieldSet(keys ...string) FieldSet {
	fs := make(FieldSet, len(keys))
	for _, k := range keys {
		fs[k] = struct{}{}
	}
	return fs
}

func (fs FieldSet) Match(key string) bool {
	_, ok := fs[key]
	return ok
}
