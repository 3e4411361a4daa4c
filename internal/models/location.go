package models

import (
	"encoding/json"
	"strings"
)

type LocationKind string

const (
	LocationFreeform   LocationKind = "freeform"
	LocationStructured LocationKind = "structured"
)

type GeoPoint struct {
	Latitude  float64 `json:"latitude" firestore:"latitude"`
	Longitude float64 `json:"longitude" firestore:"longitude"`
}

// Location is a tagged variant over the two shapes the backend has
// historically stored: a free-form string or a structured object. Consumers
// branch on Kind instead of runtime type checks.
type Location struct {
	Kind        LocationKind `json:"kind"`
	Text        string       `json:"text,omitempty"`
	City        string       `json:"city,omitempty"`
	State       string       `json:"state,omitempty"`
	Name        string       `json:"name,omitempty"`
	Coordinates *GeoPoint    `json:"coordinates,omitempty"`
}

// DecodeLocation normalizes a raw stored location value into the tagged
// variant. Unknown or empty shapes report ok=false.
func DecodeLocation(v any) (Location, bool) {
	switch val := v.(type) {
	case nil:
		return Location{}, false
	case string:
		text := strings.TrimSpace(val)
		if text == "" {
			return Location{}, false
		}
		return Location{Kind: LocationFreeform, Text: text}, true
	case Location:
		if val.Kind == "" {
			return Location{}, false
		}
		return val, true
	case *Location:
		if val == nil || val.Kind == "" {
			return Location{}, false
		}
		return *val, true
	case map[string]any:
		loc := Location{Kind: LocationStructured}
		loc.City = stringField(val, "city")
		loc.State = stringField(val, "state")
		loc.Name = stringField(val, "name")
		if coords, ok := val["coordinates"].(map[string]any); ok {
			gp := GeoPoint{}
			gp.Latitude = floatField(coords, "latitude")
			gp.Longitude = floatField(coords, "longitude")
			loc.Coordinates = &gp
		}
		if loc.City == "" && loc.State == "" && loc.Name == "" && loc.Coordinates == nil {
			return Location{}, false
		}
		return loc, true
	default:
		return Location{}, false
	}
}

// StorageValue returns the shape written back to the backend. Structured
// locations are stored as a map; free-form ones keep the legacy string shape
// so older readers are not broken mid-migration.
func (l Location) StorageValue() any {
	if l.Kind == LocationFreeform {
		return l.Text
	}
	out := map[string]any{}
	if l.City != "" {
		out["city"] = l.City
	}
	if l.State != "" {
		out["state"] = l.State
	}
	if l.Name != "" {
		out["name"] = l.Name
	}
	if l.Coordinates != nil {
		out["coordinates"] = map[string]any{
			"latitude":  l.Coordinates.Latitude,
			"longitude": l.Coordinates.Longitude,
		}
	}
	return out
}

func (l *Location) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if s, ok := raw.(string); ok {
		*l = Location{Kind: LocationFreeform, Text: s}
		return nil
	}
	type alias Location
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	if a.Kind == "" {
		a.Kind = LocationStructured
	}
	*l = Location(a)
	return nil
}

func stringField(m map[string]any, key string) string {
	if v, ok := m[key].(string); ok {
		return strings.TrimSpace(v)
	}
	return ""
}

func floatField(m map[string]any, key string) float64 {
	switch v := m[key].(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	case int:
		return float64(v)
	}
	return 0
}
