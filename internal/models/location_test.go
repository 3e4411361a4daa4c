package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeLocationFreeform(t *testing.T) {
	loc, ok := DecodeLocation("Austin, TX")
	require.True(t, ok)
	assert.Equal(t, LocationFreeform, loc.Kind)
	assert.Equal(t, "Austin, TX", loc.Text)

	loc, ok = DecodeLocation("  Brooklyn  ")
	require.True(t, ok)
	assert.Equal(t, "Brooklyn", loc.Text)
}

func TestDecodeLocationStructured(t *testing.T) {
	raw := map[string]any{
		"city":  "Austin",
		"state": "TX",
		"name":  "Rainey Street",
		"coordinates": map[string]any{
			"latitude":  30.26,
			"longitude": -97.73,
		},
	}

	loc, ok := DecodeLocation(raw)
	require.True(t, ok)
	assert.Equal(t, LocationStructured, loc.Kind)
	assert.Equal(t, "Austin", loc.City)
	assert.Equal(t, "TX", loc.State)
	assert.Equal(t, "Rainey Street", loc.Name)
	require.NotNil(t, loc.Coordinates)
	assert.InDelta(t, 30.26, loc.Coordinates.Latitude, 1e-9)
	assert.InDelta(t, -97.73, loc.Coordinates.Longitude, 1e-9)
}

func TestDecodeLocationRejectsEmptyShapes(t *testing.T) {
	inputs := []any{
		nil,
		"",
		"   ",
		map[string]any{},
		map[string]any{"unrelated": "field"},
		42,
		(*Location)(nil),
	}

	for _, in := range inputs {
		_, ok := DecodeLocation(in)
		assert.False(t, ok, "input %#v must not decode", in)
	}
}

func TestDecodeLocationPassesThroughVariant(t *testing.T) {
	orig := Location{Kind: LocationStructured, City: "Denver"}

	loc, ok := DecodeLocation(orig)
	require.True(t, ok)
	assert.Equal(t, orig, loc)

	loc, ok = DecodeLocation(&orig)
	require.True(t, ok)
	assert.Equal(t, orig, loc)
}

func TestStorageValueRoundTrip(t *testing.T) {
	freeform := Location{Kind: LocationFreeform, Text: "Austin, TX"}
	assert.Equal(t, "Austin, TX", freeform.StorageValue())

	structured := Location{
		Kind:        LocationStructured,
		City:        "Austin",
		State:       "TX",
		Coordinates: &GeoPoint{Latitude: 30.26, Longitude: -97.73},
	}
	stored, ok := structured.StorageValue().(map[string]any)
	require.True(t, ok)

	back, ok := DecodeLocation(stored)
	require.True(t, ok)
	assert.Equal(t, structured, back)
}

func TestLocationUnmarshalJSON(t *testing.T) {
	var loc Location
	require.NoError(t, json.Unmarshal([]byte(`"Austin, TX"`), &loc))
	assert.Equal(t, LocationFreeform, loc.Kind)
	assert.Equal(t, "Austin, TX", loc.Text)

	require.NoError(t, json.Unmarshal([]byte(`{"city":"Austin","state":"TX"}`), &loc))
	assert.Equal(t, LocationStructured, loc.Kind)
	assert.Equal(t, "Austin", loc.City)
}

func TestPublicViewOmitsContactFields(t *testing.T) {
	u := &User{
		ID:          "user-1",
		DisplayName: "anon_runner",
		Email:       "secret@example.com",
		Phone:       "+15550100",
		Bio:         "here for the reviews",
		RawLocation: "Austin, TX",
	}

	pub := u.PublicView()
	assert.Equal(t, "user-1", pub.ID)
	assert.Equal(t, "anon_runner", pub.DisplayName)
	require.NotNil(t, pub.Location)
	assert.Equal(t, "Austin, TX", pub.Location.Text)

	data, err := json.Marshal(pub)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "secret@example.com")
	assert.NotContains(t, string(data), "+15550100")
}
