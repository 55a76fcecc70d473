// Package geo holds the shared geographic value types used across the
// location, search and weather components.
package geo

import "fmt"

// Coordinate is an immutable geographic position.
type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Valid reports whether the coordinate lies within the usual WGS84 bounds.
func (c Coordinate) Valid() bool {
	return c.Latitude >= -90 && c.Latitude <= 90 &&
		c.Longitude >= -180 && c.Longitude <= 180
}

// IsZero reports whether the coordinate is the (0,0) sentinel. The scheduler
// treats a zero coordinate as "not configured", never as a real position.
func (c Coordinate) IsZero() bool {
	return c.Latitude == 0 && c.Longitude == 0
}

// Key returns the coordinate at 4-decimal precision. Four decimals are enough
// for a weather forecast and keep the upstream cache key stable across jittery
// fixes.
func (c Coordinate) Key() string {
	return fmt.Sprintf("%.4f,%.4f", c.Latitude, c.Longitude)
}

// Mode says where the active coordinate comes from.
type Mode int

const (
	// ModeAutomatic follows GPS/network fixes with IP fallback.
	ModeAutomatic Mode = iota
	// ModeManual pins the coordinate the user picked from search until reset.
	ModeManual
)

func (m Mode) String() string {
	if m == ModeManual {
		return "manual"
	}
	return "automatic"
}
