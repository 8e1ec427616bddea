package intercept

import (
	"time"

	"adsbxintercept/adsberr"
	"adsbxintercept/snapshot"
)

// maxCoordHistory bounds Ac.Coords at roughly 10 minutes of history at the
// typical 15s ADS-B Exchange tick rate (spec.md §3).
const maxCoordHistory = 40

// Coord is one timestamped position in an aircraft's history.
type Coord struct {
	Time time.Time
	Lon  float64
	Lat  float64
}

// Ac is the rolling per-aircraft state the Store maintains, keyed by hex.
// Invariants (spec.md §3): Coords is never empty for the lifetime of an Ac,
// Coords.Time is non-decreasing, len(Coords) <= maxCoordHistory, MaxSpeed is
// monotone non-decreasing, FastCount is monotone non-decreasing.
type Ac struct {
	Hex string

	Coords []Coord

	MaxSpeed float64
	CurSpeed float64
	CurAlt   int
	OnGround bool

	// TimeSeenFast is the time of the most recent tick at which CurSpeed
	// exceeded the interceptor threshold. It is the tick time itself, not
	// back-dated by seen_pos the way Seen is.
	TimeSeenFast *time.Time
	FastCount    uint32

	// Seen is the effective observation time: tick time minus the
	// seen_pos age-offset the snapshot reported for this aircraft.
	Seen time.Time
}

// newAc constructs an Ac from the first tick in which all five required
// fields (lat, lon, ground speed, geometric altitude, seen_pos) are
// present. Callers that can't satisfy that must skip the aircraft for the
// tick instead of calling newAc — there is no partial construction.
func newAc(now time.Time, a *snapshot.Aircraft, thr Thresholds) (*Ac, error) {
	lon, lat, spd, alt, seenPos, err := requiredFields(a)
	if err != nil {
		return nil, err
	}

	seen := now.Add(-time.Duration(seenPos * float64(time.Second)))

	ac := &Ac{
		Hex:      a.Hex,
		Coords:   []Coord{{Time: now, Lon: lon, Lat: lat}},
		MaxSpeed: spd,
		CurSpeed: spd,
		CurAlt:   alt,
		OnGround: isOnGround(a),
		Seen:     seen,
	}
	if spd > thr.InterceptorMinSpeedKts {
		t := now
		ac.TimeSeenFast = &t
		ac.FastCount = 1
	}
	return ac, nil
}

// update applies a subsequent tick's fields to an existing Ac. Missing
// optional fields fall back to last-known values or the documented
// defaults (spec.md §9): geometric altitude is strictly preferred; absent,
// falls back to barometric (treating "ground" as 0 feet); if both are
// absent CurAlt is left unchanged.
func (ac *Ac) update(now time.Time, a *snapshot.Aircraft, thr Thresholds) {
	if a.GroundSpeedKnots != nil {
		ac.CurSpeed = *a.GroundSpeedKnots
		if ac.CurSpeed > ac.MaxSpeed {
			ac.MaxSpeed = ac.CurSpeed
		}
		if ac.CurSpeed > thr.InterceptorMinSpeedKts {
			t := now
			ac.TimeSeenFast = &t
			ac.FastCount++
		}
	}

	switch {
	case a.GeometricAltitude != nil:
		ac.CurAlt = *a.GeometricAltitude
	case a.BarometricAltitude != nil:
		ac.CurAlt = a.BarometricAltitude.Number()
	}

	ac.OnGround = isOnGround(a)

	if a.SeenPos != nil {
		ac.Seen = now.Add(-time.Duration(*a.SeenPos * float64(time.Second)))
	}

	if a.Lon != nil && a.Lat != nil {
		ac.Coords = append(ac.Coords, Coord{Time: now, Lon: *a.Lon, Lat: *a.Lat})
		if len(ac.Coords) > maxCoordHistory {
			ac.Coords = ac.Coords[1:]
		}
	}
}

// CurCoord returns the aircraft's most recent position.
func (ac *Ac) CurCoord() Coord {
	return ac.Coords[len(ac.Coords)-1]
}

// OldestCoord returns the aircraft's oldest retained position.
func (ac *Ac) OldestCoord() Coord {
	return ac.Coords[0]
}

// Snapshot returns a deep value copy of ac suitable for holding in an
// Interception event: the State Store mutates and prunes its entries in
// place, so emitted events must not reach back into live state (spec.md §9).
func (ac *Ac) Snapshot() Ac {
	cp := *ac
	cp.Coords = make([]Coord, len(ac.Coords))
	copy(cp.Coords, ac.Coords)
	if ac.TimeSeenFast != nil {
		t := *ac.TimeSeenFast
		cp.TimeSeenFast = &t
	}
	return cp
}

func isOnGround(a *snapshot.Aircraft) bool {
	if a.BarometricAltitude != nil && a.BarometricAltitude.OnGround {
		return true
	}
	if a.GeometricAltitude != nil && *a.GeometricAltitude < 500 {
		return true
	}
	return false
}

// requiredFields extracts the five fields an Ac cannot be constructed
// without, returning adsberr.ErrAircraftMissingField if any are absent.
func requiredFields(a *snapshot.Aircraft) (lon, lat, spd float64, alt int, seenPos float64, err error) {
	if a.Lon == nil || a.Lat == nil {
		return 0, 0, 0, 0, 0, missingField(a.Hex, "position")
	}
	if a.GroundSpeedKnots == nil {
		return 0, 0, 0, 0, 0, missingField(a.Hex, "ground speed")
	}
	if a.GeometricAltitude == nil {
		return 0, 0, 0, 0, 0, missingField(a.Hex, "geometric altitude")
	}
	if a.SeenPos == nil {
		return 0, 0, 0, 0, 0, missingField(a.Hex, "seen_pos")
	}
	return *a.Lon, *a.Lat, *a.GroundSpeedKnots, *a.GeometricAltitude, *a.SeenPos, nil
}

func missingField(hex, field string) error {
	return &missingFieldError{hex: hex, field: field}
}

type missingFieldError struct {
	hex   string
	field string
}

func (e *missingFieldError) Error() string {
	return "aircraft " + e.hex + " is missing " + e.field
}

func (e *missingFieldError) Unwrap() error {
	return adsberr.ErrAircraftMissingField
}
