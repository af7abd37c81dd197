package cache

import (
	"strings"
)

// Key strategy defaults.
const (
	DefaultPrefix      = "sunspot"
	DefaultDelimiter   = ":"
	DefaultPlaceholder = "unknown"
)

// SunKey is the decoded form of a canonical sun data key.
type SunKey struct {
	City      string
	Latitude  string
	Longitude string
	Date      string
}

// KeyBuilder builds canonical sun data keys and the wildcard patterns used
// by shortcut lookups.
//
// Format: {prefix}:{city}:{lat}:{lon}:{date}
//
// Contract:
//   - Determinism: the same (city, lat, lon, date) tuple always yields the
//     same key regardless of city casing or surrounding whitespace.
//   - Coordinates and dates are expected in canonical form already.
//   - The delimiter never appears inside a city component.
type KeyBuilder struct {
	Prefix      string
	Delimiter   string
	Placeholder string
}

// NewKeyBuilder creates a key builder with the given prefix and default
// delimiter and placeholder.
func NewKeyBuilder(prefix string) *KeyBuilder {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &KeyBuilder{
		Prefix:      prefix,
		Delimiter:   DefaultDelimiter,
		Placeholder: DefaultPlaceholder,
	}
}

// NormalizeCity lowercases and trims a city label for use in a key.
// An empty label becomes the placeholder.
func (k *KeyBuilder) NormalizeCity(city string) string {
	city = strings.ToLower(strings.TrimSpace(city))
	if city == "" {
		return k.placeholder()
	}
	return strings.ReplaceAll(city, k.delim(), "_")
}

// Key returns the canonical key.
func (k *KeyBuilder) Key(city, lat, lon, date string) string {
	return strings.Join([]string{k.Prefix, k.NormalizeCity(city), lat, lon, date}, k.delim())
}

// CityPattern matches any coordinates cached under city for date:
// {prefix}:{city}:*:{date}.
func (k *KeyBuilder) CityPattern(city, date string) string {
	d := k.delim()
	return EscapeGlob(k.Prefix+d+k.NormalizeCity(city)+d) + "*" + EscapeGlob(d+date)
}

// CoordinatePattern matches any city label cached under the coordinates for
// date: {prefix}:*:{lat}:{lon}:{date}.
func (k *KeyBuilder) CoordinatePattern(lat, lon, date string) string {
	d := k.delim()
	return EscapeGlob(k.Prefix+d) + "*" + EscapeGlob(d+lat+d+lon+d+date)
}

// Parse decodes a canonical key. It reports false for keys that do not have
// exactly five components or carry a different prefix.
func (k *KeyBuilder) Parse(key string) (SunKey, bool) {
	parts := strings.Split(key, k.delim())
	if len(parts) != 5 || parts[0] != k.Prefix {
		return SunKey{}, false
	}
	for _, p := range parts[1:] {
		if p == "" {
			return SunKey{}, false
		}
	}
	return SunKey{
		City:      parts[1],
		Latitude:  parts[2],
		Longitude: parts[3],
		Date:      parts[4],
	}, true
}

func (k *KeyBuilder) delim() string {
	if k.Delimiter == "" {
		return DefaultDelimiter
	}
	return k.Delimiter
}

func (k *KeyBuilder) placeholder() string {
	if k.Placeholder == "" {
		return DefaultPlaceholder
	}
	return k.Placeholder
}
