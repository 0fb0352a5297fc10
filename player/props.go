package player

import (
	"fmt"
	"strconv"
)

// Helpers for typed property access. JSON transports every number as float64,
// while in-process engines may hand back native integers, so both are accepted.

// GetFloat reads a numeric property.
func GetFloat(h Handle, name string) (float64, error) {
	data, err := h.GetProperty(name)
	if err != nil {
		return 0, err
	}
	return toFloat(name, data)
}

// GetInt reads an integral property.
func GetInt(h Handle, name string) (int64, error) {
	v, err := GetFloat(h, name)
	if err != nil {
		return 0, err
	}
	return int64(v), nil
}

// GetFlag reads a boolean property.
func GetFlag(h Handle, name string) (bool, error) {
	data, err := h.GetProperty(name)
	if err != nil {
		return false, err
	}
	switch v := data.(type) {
	case bool:
		return v, nil
	case string:
		return v == "yes", nil
	default:
		return false, fmt.Errorf("property %s: expected bool, got %T", name, data)
	}
}

// TrackSelector renders a track id the way the engine expects; negative ids disable the track.
func TrackSelector(id int) string {
	if id < 0 {
		return "no"
	}
	return strconv.Itoa(id)
}

func toFloat(name string, data any) (float64, error) {
	switch v := data.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case nil:
		return 0, fmt.Errorf("property %s: %w", name, ErrPropertyUnavailable)
	default:
		return 0, fmt.Errorf("property %s: expected number, got %T", name, data)
	}
}
