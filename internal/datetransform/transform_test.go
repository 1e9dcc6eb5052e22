package datetransform

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testTZ = "Asia/Singapore"

func mustLoc(t *testing.T, name string) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation(name)
	require.NoError(t, err)
	return loc
}

func TestRequestConvertsLocalWallClockToUTC(t *testing.T) {
	tr := New(nil)
	in := map[string]any{
		"createdAtUtc":   "2025-03-10T09:30:00",
		"start_date_utc": "2025-03-10",
		"name":           "2025-03-10T09:30:00",
	}

	out := tr.Request(in, testTZ).(map[string]any)

	assert.Equal(t, "2025-03-10T01:30:00.000Z", out["createdAtUtc"])
	assert.Equal(t, "2025-03-09T16:00:00.000Z", out["start_date_utc"])
	assert.Equal(t, "2025-03-10T09:30:00", out["name"], "unmatched keys are left alone")
}

func TestRequestHonorsExplicitOffset(t *testing.T) {
	out := New(nil).Request(map[string]any{"endAtUtc": "2025-03-10T09:30:00+02:00"}, testTZ).(map[string]any)
	assert.Equal(t, "2025-03-10T07:30:00.000Z", out["endAtUtc"])
}

func TestRequestTimeValueUsesWallClockInZone(t *testing.T) {
	loc := mustLoc(t, testTZ)
	when := time.Date(2025, 7, 1, 8, 15, 30, 250*int(time.Millisecond), loc)

	out := New(nil).Request(map[string]any{"starttime_utc": when}, testTZ).(map[string]any)
	assert.Equal(t, "2025-07-01T00:15:30.250Z", out["starttime_utc"])
}

func TestRoundTripPreservesInstant(t *testing.T) {
	tr := New(nil)
	loc := mustLoc(t, "America/New_York")
	wire := map[string]any{
		"items": []any{
			map[string]any{"createdAtUtc": "2024-11-03T05:30:00.123Z"},
			map[string]any{"createdAtUtc": "2025-06-15T23:59:59.999Z"},
			map[string]any{"createdAtUtc": "2024-11-03T06:30:00.123Z"},
		},
	}

	local := tr.Response(wire, loc)
	back := tr.Request(local, loc.String()).(map[string]any)

	items := back["items"].([]any)
	require.Len(t, items, 3)
	assert.Equal(t, "2024-11-03T05:30:00.123Z", items[0].(map[string]any)["createdAtUtc"])
	assert.Equal(t, "2025-06-15T23:59:59.999Z", items[1].(map[string]any)["createdAtUtc"])
	assert.Equal(t, "2024-11-03T06:30:00.123Z", items[2].(map[string]any)["createdAtUtc"], "second 01:30 of the fall-back hour")
}

func TestRequestKeepsRepeatedHourInstant(t *testing.T) {
	loc := mustLoc(t, "America/New_York")
	first := time.Date(2024, 11, 3, 5, 30, 0, 0, time.UTC).In(loc)
	second := first.Add(time.Hour)
	require.Equal(t, first.Format("15:04"), second.Format("15:04"))

	out := New(nil).Request(map[string]any{"a_utc": first, "b_utc": &second}, loc.String()).(map[string]any)
	assert.Equal(t, "2024-11-03T05:30:00.000Z", out["a_utc"])
	assert.Equal(t, "2024-11-03T06:30:00.000Z", out["b_utc"])
}

func TestResponseParsesIntoLocation(t *testing.T) {
	loc := mustLoc(t, testTZ)
	out := New(nil).Response(map[string]any{"updatedAtUtc": "2025-01-01T00:00:00Z"}, loc).(map[string]any)

	got, ok := out["updatedAtUtc"].(time.Time)
	require.True(t, ok)
	assert.Equal(t, loc, got.Location())
	assert.Equal(t, 8, got.Hour())
	assert.True(t, got.Equal(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)))
}

func TestBinaryPayloadsPassThrough(t *testing.T) {
	tr := New(nil)
	raw := json.RawMessage(`{"createdAtUtc":"2025-01-01T00:00:00"}`)
	blob := []byte("createdAtUtc")
	reader := bytes.NewBufferString("x")
	file := &multipart.FileHeader{Filename: "a.pdf"}
	in := map[string]any{
		"raw":    raw,
		"nested": []any{map[string]any{"blob": blob, "file": file, "reader": reader}},
	}

	for name, out := range map[string]any{
		"request":  tr.Request(in, testTZ),
		"response": tr.Response(in, time.UTC),
	} {
		m := out.(map[string]any)
		assert.Equal(t, raw, m["raw"], name)
		nested := m["nested"].([]any)[0].(map[string]any)
		assert.Equal(t, blob, nested["blob"], name)
		assert.Same(t, file, nested["file"], name)
		assert.Same(t, reader, nested["reader"], name)
	}

	assert.True(t, IsBinary(raw))
	assert.True(t, IsBinary(reader))
	assert.False(t, IsBinary(in))
}

func TestMalformedValuesAreKept(t *testing.T) {
	tr := New(nil)
	in := map[string]any{
		"createdAtUtc": "not-a-date",
		"amountAtUtc":  42.0,
		"deletedAtUtc": nil,
		"end_utc":      "2025-02-01T10:00:00",
	}

	out := tr.Request(in, testTZ).(map[string]any)
	assert.Equal(t, "not-a-date", out["createdAtUtc"])
	assert.Equal(t, 42.0, out["amountAtUtc"])
	assert.Nil(t, out["deletedAtUtc"])
	assert.Equal(t, "2025-02-01T02:00:00.000Z", out["end_utc"], "siblings still convert")

	resp := tr.Response(map[string]any{"createdAtUtc": "garbage", "flag_utc": true}, time.UTC).(map[string]any)
	assert.Equal(t, "garbage", resp["createdAtUtc"])
	assert.Equal(t, true, resp["flag_utc"])
}

func TestUnknownTimezoneKeepsValue(t *testing.T) {
	out := New(nil).Request(map[string]any{"startAtUtc": "2025-01-01T00:00:00"}, "Mars/Olympus").(map[string]any)
	assert.Equal(t, "2025-01-01T00:00:00", out["startAtUtc"])

	_, err := LocalToUTC("2025-01-01", "")
	assert.ErrorIs(t, err, ErrMissingTimezone)
}

func TestInputIsNotMutated(t *testing.T) {
	inner := map[string]any{"createdAtUtc": "2025-01-01T00:00:00"}
	in := map[string]any{"rows": []map[string]any{inner}}

	out := New(nil).Request(in, "UTC").(map[string]any)

	assert.Equal(t, "2025-01-01T00:00:00", inner["createdAtUtc"])
	rows := out["rows"].([]map[string]any)
	assert.Equal(t, "2025-01-01T00:00:00.000Z", rows[0]["createdAtUtc"])
}

func TestMatchedFieldsAreNotDescended(t *testing.T) {
	obj := map[string]any{"createdAtUtc": "2025-01-01T00:00:00"}
	out := New(nil).Request(map[string]any{"window_utc": obj}, "UTC").(map[string]any)
	assert.Equal(t, obj, out["window_utc"])
}

func TestUnconvertedContainersAreCopied(t *testing.T) {
	tr := New(nil)
	obj := map[string]any{"x": "original", "rows": []any{"a"}}
	in := map[string]any{"window_utc": obj}

	for name, out := range map[string]any{
		"request":  tr.Request(in, "UTC"),
		"response": tr.Response(in, time.UTC),
	} {
		kept := out.(map[string]any)["window_utc"].(map[string]any)
		kept["x"] = "mutated"
		kept["rows"].([]any)[0] = "b"
		assert.Equal(t, "original", obj["x"], name)
		assert.Equal(t, "a", obj["rows"].([]any)[0], name)
	}
}

func TestFieldSetMatcher(t *testing.T) {
	tr := New(nil, WithMatcher(NewFieldSet("effective")))
	out := tr.Request(map[string]any{
		"effective":    "2025-01-01T00:00:00",
		"createdAtUtc": "2025-01-01T00:00:00",
	}, "UTC").(map[string]any)

	assert.Equal(t, "2025-01-01T00:00:00.000Z", out["effective"])
	assert.Equal(t, "2025-01-01T00:00:00", out["createdAtUtc"])
}

func TestIsUTCField(t *testing.T) {
	for key, want := range map[string]bool{
		"createdAtUtc":   true,
		"CREATEDATUTC":   true,
		"start_date_utc": true,
		"startDate_UTC":  true,
		"utc":            false,
		"createdAt":      false,
		"utc_offset":     false,
	} {
		assert.Equal(t, want, IsUTCField(key), key)
	}
}
