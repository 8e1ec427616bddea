package intercept

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"adsbxintercept/snapshot"
)

func tickAt(now time.Time, aircraft ...snapshot.Aircraft) snapshot.Response {
	return snapshot.Response{Now: snapshot.Time{Time: now}, Aircraft: aircraft}
}

// buildup drives an interceptor through enough fast ticks to clear
// InterceptorMinFastCount (sustained fast flight, not a single spike)
// while it's still far from the target, then closes in on the final tick
// so every other gate passes at once. Returns the time of that final tick.
func buildup(eng *Engine, start time.Time) time.Time {
	const fastTicks = 12 // > DefaultThresholds().InterceptorMinFastCount (10)

	var last time.Time
	for i := 0; i < fastTicks; i++ {
		tick := start.Add(time.Duration(i) * 15 * time.Second)
		eng.ProcessResponse(tickAt(tick,
			snapshot.Aircraft{Hex: "int01", Lat: ptr(52.0), Lon: ptr(1.0), GroundSpeedKnots: ptr(450.0), GeometricAltitude: ptr(30000), SeenPos: ptr(0.0)},
			snapshot.Aircraft{Hex: "tgt01", Lat: ptr(51.5), Lon: ptr(-0.1), GroundSpeedKnots: ptr(200.0), GeometricAltitude: ptr(30000), SeenPos: ptr(0.0)},
		))
		last = tick
	}

	// Final tick: interceptor has closed in to within every gate. Speed
	// drops below the interceptor threshold, but TimeSeenFast from the
	// previous tick and the already-accumulated FastCount still carry
	// Interceptor classification through the 3-minute timeout.
	final := last.Add(15 * time.Second)
	eng.ProcessResponse(tickAt(final,
		snapshot.Aircraft{Hex: "int01", Lat: ptr(51.5001), Lon: ptr(-0.1001), GroundSpeedKnots: ptr(210.0), GeometricAltitude: ptr(30100), SeenPos: ptr(0.0)},
		snapshot.Aircraft{Hex: "tgt01", Lat: ptr(51.5), Lon: ptr(-0.1), GroundSpeedKnots: ptr(200.0), GeometricAltitude: ptr(30000), SeenPos: ptr(0.0)},
	))

	return final
}

func TestEngine_DetectsInterception(t *testing.T) {
	eng := NewEngine(DefaultThresholds())
	buildup(eng, time.Now())

	events := eng.Events()
	require.Len(t, events, 1)
	require.Equal(t, "int01", events[0].Interceptor.Hex)
	require.Equal(t, "tgt01", events[0].Target.Hex)
	require.Less(t, events[0].LateralSeparationFt, 500.0*feetPerMeter)
	require.Less(t, events[0].VerticalSeparationFt, 500)

	rec := events[0].OutputRecord()
	require.Equal(t, "int01", rec.InterceptorHex)
	require.Equal(t, "tgt01", rec.TargetHex)
}

func TestEngine_DedupSuppressesRepeatWithinWindow(t *testing.T) {
	eng := NewEngine(DefaultThresholds())
	lastTick := buildup(eng, time.Now())
	require.Len(t, eng.Events(), 1)

	// One more tick, still within the dedup window, still gated-in: must
	// not emit a second event for the same pair.
	again := lastTick.Add(15 * time.Second)
	eng.ProcessResponse(tickAt(again,
		snapshot.Aircraft{Hex: "int01", Lat: ptr(51.5001), Lon: ptr(-0.1001), GroundSpeedKnots: ptr(210.0), GeometricAltitude: ptr(30100), SeenPos: ptr(0.0)},
		snapshot.Aircraft{Hex: "tgt01", Lat: ptr(51.5), Lon: ptr(-0.1), GroundSpeedKnots: ptr(200.0), GeometricAltitude: ptr(30000), SeenPos: ptr(0.0)},
	))

	require.Len(t, eng.Events(), 1, "same pair must be suppressed within the dedup window")
}

func TestEngine_StartedTogetherNeverTriggersInterception(t *testing.T) {
	eng := NewEngine(DefaultThresholds())
	now := time.Now()

	// Both aircraft co-located from the very first tick onward, for long
	// enough that wing01 clears InterceptorMinFastCount: they never
	// started far apart, so this must never count as interception no
	// matter how well every other gate matches.
	for i := 0; i < 12; i++ {
		tick := now.Add(time.Duration(i) * 15 * time.Second)
		eng.ProcessResponse(tickAt(tick,
			snapshot.Aircraft{Hex: "wing01", Lat: ptr(51.5), Lon: ptr(-0.1), GroundSpeedKnots: ptr(420.0), GeometricAltitude: ptr(30000), SeenPos: ptr(0.0)},
			snapshot.Aircraft{Hex: "wing02", Lat: ptr(51.5001), Lon: ptr(-0.1001), GroundSpeedKnots: ptr(300.0), GeometricAltitude: ptr(30000), SeenPos: ptr(0.0)},
		))
	}

	require.Empty(t, eng.Events())
}

func TestEngine_StaleTargetIsNotMatched(t *testing.T) {
	eng := NewEngine(DefaultThresholds())
	now := time.Now()

	const fastTicks = 12
	var last time.Time
	for i := 0; i < fastTicks; i++ {
		tick := now.Add(time.Duration(i) * 15 * time.Second)
		eng.ProcessResponse(tickAt(tick,
			snapshot.Aircraft{Hex: "int02", Lat: ptr(52.0), Lon: ptr(1.0), GroundSpeedKnots: ptr(450.0), GeometricAltitude: ptr(30000), SeenPos: ptr(0.0)},
			snapshot.Aircraft{Hex: "tgt02", Lat: ptr(51.5), Lon: ptr(-0.1), GroundSpeedKnots: ptr(200.0), GeometricAltitude: ptr(30000), SeenPos: ptr(0.0)},
		))
		last = tick
	}

	// Target's position fix is stale (seen_pos beyond TargetRecency) even
	// though the interceptor has now closed to within every other gate.
	later := last.Add(15 * time.Second)
	eng.ProcessResponse(tickAt(later,
		snapshot.Aircraft{Hex: "int02", Lat: ptr(51.5001), Lon: ptr(-0.1001), GroundSpeedKnots: ptr(210.0), GeometricAltitude: ptr(30000), SeenPos: ptr(0.0)},
		snapshot.Aircraft{Hex: "tgt02", Lat: ptr(51.5), Lon: ptr(-0.1), GroundSpeedKnots: ptr(200.0), GeometricAltitude: ptr(30000), SeenPos: ptr(90.0)},
	))

	require.Empty(t, eng.Events())
}

func TestEngine_RecencyBoundaryIsExclusive(t *testing.T) {
	eng := NewEngine(DefaultThresholds())
	thr := DefaultThresholds()
	now := time.Now()

	const fastTicks = 12
	var last time.Time
	for i := 0; i < fastTicks; i++ {
		tick := now.Add(time.Duration(i) * 15 * time.Second)
		eng.ProcessResponse(tickAt(tick,
			snapshot.Aircraft{Hex: "int03", Lat: ptr(52.0), Lon: ptr(1.0), GroundSpeedKnots: ptr(450.0), GeometricAltitude: ptr(30000), SeenPos: ptr(0.0)},
			snapshot.Aircraft{Hex: "tgt03", Lat: ptr(51.5), Lon: ptr(-0.1), GroundSpeedKnots: ptr(200.0), GeometricAltitude: ptr(30000), SeenPos: ptr(0.0)},
		))
		last = tick
	}

	// Target's effective Seen age is exactly TargetRecency: spec.md §4.5
	// requires strictly less than 1 minute, so this must not pass.
	final := last.Add(15 * time.Second)
	eng.ProcessResponse(tickAt(final,
		snapshot.Aircraft{Hex: "int03", Lat: ptr(51.5001), Lon: ptr(-0.1001), GroundSpeedKnots: ptr(210.0), GeometricAltitude: ptr(30000), SeenPos: ptr(0.0)},
		snapshot.Aircraft{Hex: "tgt03", Lat: ptr(51.5), Lon: ptr(-0.1), GroundSpeedKnots: ptr(200.0), GeometricAltitude: ptr(30000), SeenPos: ptr(float64(thr.TargetRecency / time.Second))},
	))

	require.Empty(t, eng.Events())
}

func TestEngine_MissingFieldSkipsAircraftNotWholeTick(t *testing.T) {
	eng := NewEngine(DefaultThresholds())
	now := time.Now()

	resp := tickAt(now,
		snapshot.Aircraft{Hex: "bare01"}, // missing everything
		snapshot.Aircraft{Hex: "good01", Lat: ptr(51.5), Lon: ptr(-0.1), GroundSpeedKnots: ptr(200.0), GeometricAltitude: ptr(30000), SeenPos: ptr(0.0)},
	)
	eng.ProcessResponse(resp)

	require.Equal(t, 1, eng.NumProcessed)
	require.Equal(t, 1, eng.Store.Len())
}

func TestClosestInTime_IndependentPerSideSelection(t *testing.T) {
	base := time.Now()
	at := func(s int) time.Time { return base.Add(time.Duration(s) * time.Second) }

	// I sampled at t={0,15,45,60}, T at t={30,45,60}. t_ref = max(0,30) = 30.
	// I's closest-to-30 entry ties between t=15 and t=45 (both 15s away);
	// earliest-on-tie picks t=15. T's closest-to-30 entry is its own first
	// fix, t=30 (distance 0), not the t=45 coincidence with I.
	as := []Coord{
		{Time: at(0), Lon: 0, Lat: 0},
		{Time: at(15), Lon: 1, Lat: 1},
		{Time: at(45), Lon: 2, Lat: 2},
		{Time: at(60), Lon: 3, Lat: 3},
	}
	bs := []Coord{
		{Time: at(30), Lon: 10, Lat: 10},
		{Time: at(45), Lon: 11, Lat: 11},
		{Time: at(60), Lon: 12, Lat: 12},
	}

	a, b := closestInTime(as, bs)
	require.Equal(t, at(15), a.Time)
	require.Equal(t, at(30), b.Time)
}
