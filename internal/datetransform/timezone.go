package datetransform

import (
	"os"
	"path/filepath"
	"strings"
	"time"
)

const fallbackTimezone = "UTC"

// ResolveTimezone returns the IANA name of the runtime's local zone, falling
// back to UTC when it cannot be determined.
func ResolveTimezone() string {
	return resolveTimezone(os.Getenv, os.Readlink)
}

func resolveTimezone(getenv func(string) string, readlink func(string) (string, error)) string {
	if tz := strings.TrimPrefix(getenv("TZ"), ":"); tz != "" && tz != "Local" && loadable(tz) {
		return tz
	}
	if name := time.Local.String(); name != "" && name != "Local" && loadable(name) {
		return name
	}
	if target, err := readlink("/etc/localtime"); err == nil {
		if _, after, ok := strings.Cut(filepath.ToSlash(target), "zoneinfo/"); ok && loadable(after) {
			return after
		}
	}
	return fallbackTimezone
}

// LoadLocation loads tz, returning UTC when the name is empty or unknown.
func LoadLocation(tz string) *time.Location {
	if tz == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return time.UTC
	}
	return loc
}

func loadable(tz string) bool {
	_, err := time.LoadLocation(tz)
	return err == nil
}
