package timeutil

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToInstantIdempotent(t *testing.T) {
	inputs := []any{
		time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC),
		"2024-03-01T12:30:00Z",
		int64(1709296200000),
		int64(1709296200),
	}

	for _, in := range inputs {
		first, ok := ToInstant(in)
		require.True(t, ok, "input %v should normalize", in)

		second, ok := ToInstant(first)
		require.True(t, ok)
		assert.True(t, first.Equal(second), "normalizing twice must yield an equal instant")
	}
}

func TestToInstantMalformed(t *testing.T) {
	inputs := []any{
		nil,
		"",
		"not-a-date",
		"   ",
		int64(0),
		int64(-42),
		struct{}{},
		map[string]any{"seconds": 12},
	}

	for _, in := range inputs {
		got, ok := ToInstant(in)
		assert.False(t, ok, "input %v must not normalize", in)
		assert.True(t, got.IsZero())
	}
}

func TestToInstantShapes(t *testing.T) {
	want := time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)

	cases := map[string]any{
		"native":        want,
		"pointer":       &want,
		"iso":           "2024-03-01T12:30:00Z",
		"epoch_millis":  int64(1709296200000),
		"epoch_seconds": int64(1709296200),
		"digit_string":  "1709296200000",
		"json_number":   json.Number("1709296200000"),
		"float_millis":  float64(1709296200000),
	}

	for name, in := range cases {
		got, ok := ToInstant(in)
		require.True(t, ok, name)
		assert.True(t, want.Equal(got), "%s: want %v, got %v", name, want, got)
	}
}

func TestToInstantNilPointer(t *testing.T) {
	var tp *time.Time
	_, ok := ToInstant(tp)
	assert.False(t, ok)
}

func TestCoalescePrefersPrimary(t *testing.T) {
	server := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	client := time.Date(2024, 3, 1, 11, 59, 0, 0, time.UTC)

	got, ok := Coalesce(server, client)
	require.True(t, ok)
	assert.True(t, server.Equal(got))

	got, ok = Coalesce(nil, client)
	require.True(t, ok)
	assert.True(t, client.Equal(got))

	_, ok = Coalesce(nil, nil)
	assert.False(t, ok)
}

func TestFormatRelative(t *testing.T) {
	assert.Equal(t, "recently", FormatRelative(time.Time{}))
	assert.Equal(t, "just now", FormatRelative(time.Now().Add(-10*time.Second)))
	assert.Equal(t, "5m ago", FormatRelative(time.Now().Add(-5*time.Minute)))
	assert.Equal(t, "3h ago", FormatRelative(time.Now().Add(-3*time.Hour)))
	assert.Equal(t, "2d ago", FormatRelative(time.Now().Add(-49*time.Hour)))

	old := time.Date(2020, 1, 15, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "Jan 15, 2020", FormatRelative(old))
}
