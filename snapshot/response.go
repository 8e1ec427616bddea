// Package snapshot decodes a batch of ADS-B Exchange v2 API responses in
// parallel and delivers them to a caller serially, in input order.
//
// The wire schema is treated as mostly opaque: we only model the fields the
// interception core actually consumes (see spec.md §6), plus a handful of
// identifying fields useful for diagnostics.
package snapshot

import (
	"encoding/json"
	"fmt"
	"time"
)

// Response is a single ADS-B Exchange v2 API response: one tick's worth of
// aircraft, all timestamped with the same Now.
type Response struct {
	Now      Time       `json:"now"`      // tick timestamp, RFC 3339 UTC
	Aircraft []Aircraft `json:"aircraft"` // aircraft visible at Now
}

// Time wraps time.Time so the wire format (RFC 3339) is explicit and
// decoupled from time.Time's default JSON encoding.
type Time struct {
	time.Time
}

// UnmarshalJSON implements json.Unmarshaler for RFC 3339 timestamps.
func (t *Time) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("snapshot: decode timestamp: %w", err)
	}
	parsed, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return fmt.Errorf("snapshot: parse timestamp %q: %w", s, err)
	}
	t.Time = parsed.UTC()
	return nil
}

// Aircraft is a single aircraft's entry within a Response. See
// https://www.adsbexchange.com/version-2-api-wip/ for the full wire schema;
// only the fields the interception core consumes are modeled here.
type Aircraft struct {
	Hex                string            `json:"hex"`                 // 24-bit ICAO address, lowercase hex
	Flight             string            `json:"flight,omitempty"`    // callsign, if transmitted
	Lat                *float64          `json:"lat,omitempty"`       // latitude in decimal degrees
	Lon                *float64          `json:"lon,omitempty"`       // longitude in decimal degrees
	GroundSpeedKnots   *float64          `json:"gs,omitempty"`        // ground speed in knots
	GeometricAltitude  *int              `json:"alt_geom,omitempty"`  // geometric altitude in feet
	BarometricAltitude *AltitudeOrGround `json:"alt_baro,omitempty"`  // barometric altitude in feet, or "ground"
	SeenPos            *float64          `json:"seen_pos,omitempty"`  // seconds since position fix, relative to Now
	Seen               float64           `json:"seen,omitempty"`      // seconds since any message, relative to Now
	Squawk             string            `json:"squawk,omitempty"`    // 4-digit octal squawk code
	Messages           int               `json:"messages,omitempty"`  // total Mode-S messages received
}

// AltitudeOrGround models the wire field that is either a numeric altitude
// in feet or the literal string "ground", mirroring the Rust
// AltitudeOrGround enum this schema was originally modeled on.
type AltitudeOrGround struct {
	OnGround bool
	Feet     int
}

// UnmarshalJSON accepts either a JSON number or the string "ground".
func (a *AltitudeOrGround) UnmarshalJSON(data []byte) error {
	var asString string
	if err := json.Unmarshal(data, &asString); err == nil {
		if asString != "ground" {
			return fmt.Errorf("snapshot: unexpected altitude string %q", asString)
		}
		a.OnGround = true
		a.Feet = 0
		return nil
	}
	var asNumber int
	if err := json.Unmarshal(data, &asNumber); err != nil {
		return fmt.Errorf("snapshot: decode altitude: %w", err)
	}
	a.OnGround = false
	a.Feet = asNumber
	return nil
}

// Number returns the altitude as feet, treating OnGround as 0 — the same
// convention the original alt_number helper used.
func (a *AltitudeOrGround) Number() int {
	if a == nil || a.OnGround {
		return 0
	}
	return a.Feet
}
