package intercept

import "time"

// Thresholds bundles every tunable constant the classifier, spatial index,
// and interception engine use. DefaultThresholds() returns the values
// spec.md fixes; callers that need to tune for testing construct their own.
type Thresholds struct {
	InterceptorMinSpeedKts  float64 // a.k.a. FAST_MOVER / INTERCEPTOR_MIN_SPEED_KTS
	InterceptorMinFastCount uint32  // fast_count must exceed this before interceptor status is granted
	TargetMinSpeedKts       float64
	TargetMaxSpeedKts       float64
	InterceptorTimeout      time.Duration

	MaxDistNM float64 // spatial prefilter radius, nautical miles

	LateralSeparationM   float64 // meters
	SpeedMatchKts        float64 // knots
	AltitudeMatchFt      int     // feet
	TargetRecency        time.Duration
	StartedFarApartMiles float64 // miles

	StaleAfter  time.Duration // State Store eviction window
	DedupWindow time.Duration // same-pair suppression window
}

// DefaultThresholds returns the constants fixed by spec.md §4.3–4.5.
func DefaultThresholds() Thresholds {
	return Thresholds{
		InterceptorMinSpeedKts:  400.0,
		InterceptorMinFastCount: 10,
		TargetMinSpeedKts:       80.0,
		TargetMaxSpeedKts:       350.0,
		InterceptorTimeout:      3 * time.Minute,

		MaxDistNM: 0.5,

		LateralSeparationM:   500.0,
		SpeedMatchKts:        150.0,
		AltitudeMatchFt:      500,
		TargetRecency:        1 * time.Minute,
		StartedFarApartMiles: 10.0,

		StaleAfter:  10 * time.Minute,
		DedupWindow: 10 * time.Minute,
	}
}

// maxDistDeg2 derives the planar prefilter threshold from MaxDistNM, using
// the 60-NM-per-degree-of-latitude rule of thumb (spec.md §4.4). It is a
// loose prefilter only; the precise gate is the Haversine check in the
// engine.
func (t Thresholds) maxDistDeg2() float64 {
	d := t.MaxDistNM / 60.0
	return d * d
}
