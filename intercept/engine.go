// Package intercept implements the interception-detection core: classifying
// aircraft into roles, indexing Targets spatially, and matching them against
// Interceptors tick by tick.
package intercept

import (
	"fmt"
	"math"
	"time"

	"github.com/patrickmn/go-cache"

	"adsbxintercept/internal/obslog"
	"adsbxintercept/snapshot"
)

const (
	metersPerMile = 1609.344
	feetPerMeter  = 3.28084
)

// Interception is one detected interceptor/target rendezvous event, holding
// value copies of both aircraft's full state at detection time (spec.md
// §3: "Holds value copies of the aircraft states at detection").
type Interception struct {
	Interceptor          Ac
	Target               Ac
	Time                 time.Time
	LateralSeparationFt  float64
	VerticalSeparationFt int
}

// OutputRecord is the external event-stream projection of an Interception
// (spec.md §6): hex identifiers in place of full snapshots, lateral
// separation rounded to the nearest foot.
type OutputRecord struct {
	InterceptorHex       string    `json:"interceptor_hex"`
	TargetHex            string    `json:"target_hex"`
	Time                 time.Time `json:"time"`
	LateralSeparationFt  int       `json:"lateral_separation_ft"`
	VerticalSeparationFt int       `json:"vertical_separation_ft"`
}

// OutputRecord projects ev to its external wire form.
func (ev Interception) OutputRecord() OutputRecord {
	return OutputRecord{
		InterceptorHex:       ev.Interceptor.Hex,
		TargetHex:            ev.Target.Hex,
		Time:                 ev.Time,
		LateralSeparationFt:  int(math.Round(ev.LateralSeparationFt)),
		VerticalSeparationFt: ev.VerticalSeparationFt,
	}
}

// Engine drives one tick at a time: ingest a Response's aircraft into the
// Store, classify them, spatially match Interceptors against Targets, and
// emit deduplicated Interception events. Grounded on
// original_source/src/interception.rs's process_adsbx_response, the single
// function that plays this same role in the Rust implementation.
type Engine struct {
	Store  *Store
	Thr    Thresholds
	events []Interception

	// dedup maps each (interceptor, target) pair to the tick time of its
	// last event; a repeat for the same pair is suppressed while the
	// current tick is less than Thr.DedupWindow past that time. Entries are
	// compared on snapshot time and never expire on the wall clock.
	// Grounded on Regentag-go1090's mode_s.decoder use of
	// patrickmn/go-cache for icao_cache, reused here for pair suppression
	// instead of single-ICAO CRC dedup.
	dedup *cache.Cache

	NumIndexed   int // targets indexed into the spatial index, this run
	NumProcessed int // aircraft upserted into the Store, this run
}

// NewEngine builds an Engine with the given thresholds.
func NewEngine(thr Thresholds) *Engine {
	return &Engine{
		Store: NewStore(),
		Thr:   thr,
		dedup: cache.New(thr.DedupWindow, thr.DedupWindow/2),
	}
}

// ProcessResponse runs one tick: upserts every aircraft in resp into the
// Store, classifies each, builds a fresh spatial index over this tick's
// Targets, and checks every Interceptor against nearby Targets. Returns the
// Interception events newly emitted this tick (also accumulated in
// Engine.Events). Missing-field errors on individual aircraft are logged
// and that aircraft is skipped for the tick; they are never fatal.
func (e *Engine) ProcessResponse(resp snapshot.Response) []Interception {
	now := resp.Now.Time

	var interceptors, targets []*Ac
	for i := range resp.Aircraft {
		a := &resp.Aircraft[i]
		ac, err := e.Store.Upsert(now, a, e.Thr)
		if err != nil {
			obslog.Printf("intercept: skipping %s this tick: %v\n", a.Hex, err)
			continue
		}
		e.NumProcessed++

		switch Classify(ac, now, e.Thr) {
		case Interceptor:
			interceptors = append(interceptors, ac)
		case Target:
			targets = append(targets, ac)
		}
	}
	e.NumIndexed += len(targets)

	idx := newSpatialIndex(targets, e.Thr)

	var fresh []Interception
	for _, in := range interceptors {
		for _, t := range idx.Query(targetPoint{in}.Point()) {
			if ev, ok := e.evaluate(now, in, t); ok {
				fresh = append(fresh, ev)
			}
		}
	}

	e.Store.Prune(now, e.Thr)
	return fresh
}

// evaluate applies the full interception gate sequence of spec.md §4.5 to
// one (interceptor, target) candidate pair already known to be within the
// loose spatial prefilter box.
func (e *Engine) evaluate(now time.Time, in, t *Ac) (Interception, bool) {
	if now.Sub(t.Seen) >= e.Thr.TargetRecency {
		return Interception{}, false
	}

	inCoord, tCoord := in.CurCoord(), t.CurCoord()
	lateral := lateralSeparationMeters(
		pointOf(inCoord), pointOf(tCoord))
	if lateral >= e.Thr.LateralSeparationM {
		return Interception{}, false
	}

	speedDiff := math.Abs(in.CurSpeed - t.CurSpeed)
	if speedDiff >= e.Thr.SpeedMatchKts {
		return Interception{}, false
	}

	altDiff := abs(in.CurAlt - t.CurAlt)
	if altDiff >= e.Thr.AltitudeMatchFt {
		return Interception{}, false
	}

	if !startedFarApart(in, t, e.Thr) {
		return Interception{}, false
	}

	key := pairKey(in.Hex, t.Hex)
	if last, seen := e.dedup.Get(key); seen && now.Sub(last.(time.Time)) < e.Thr.DedupWindow {
		return Interception{}, false
	}
	e.dedup.Set(key, now, cache.NoExpiration)

	lateralFt := lateral * feetPerMeter
	ev := Interception{
		Interceptor:          in.Snapshot(),
		Target:               t.Snapshot(),
		Time:                 now,
		LateralSeparationFt:  lateralFt,
		VerticalSeparationFt: altDiff,
	}
	e.events = append(e.events, ev)
	obslog.Printf("intercept: %s intercepted %s at %s (lateral=%.0fft vertical=%dft)\n",
		in.Hex, t.Hex, now.Format(time.RFC3339), lateralFt, altDiff)
	return ev, true
}

// Events returns every Interception emitted across all ticks processed so
// far by this Engine.
func (e *Engine) Events() []Interception {
	return e.events
}

// startedFarApart implements spec.md §4.5's co-location-guarding predicate: an
// interceptor that has been flying alongside its target the whole time it's
// been tracked isn't "intercepting" it, so we require the pair's positions
// at the point both histories are known to overlap to have been farther
// apart than Thr.StartedFarApartMiles. Grounded on interception.rs's
// started_far_apart: t_ref is fixed as the later of the two histories'
// first-fix times, and each side then independently picks its own entry
// closest to t_ref, rather than searching for the globally closest pair
// across both histories.
func startedFarApart(in, t *Ac, thr Thresholds) bool {
	a, b := closestInTime(in.Coords, t.Coords)
	dist := lateralSeparationMeters(pointOf(a), pointOf(b))
	return dist > thr.StartedFarApartMiles*metersPerMile
}

// closestInTime fixes tRef as the later of as[0].Time and bs[0].Time (the
// first point at which both histories have started), then independently
// returns each history's own entry closest to tRef. Ties are broken toward
// the earlier entry. Both slices are time-ordered.
func closestInTime(as, bs []Coord) (Coord, Coord) {
	tRef := as[0].Time
	if bs[0].Time.After(tRef) {
		tRef = bs[0].Time
	}
	return closestTo(as, tRef), closestTo(bs, tRef)
}

// closestTo returns the entry of a time-ordered Coord slice whose Time is
// nearest tRef, breaking ties toward the earlier entry.
func closestTo(cs []Coord, tRef time.Time) Coord {
	best := cs[0]
	bestDiff := absDuration(best.Time.Sub(tRef))
	for _, c := range cs[1:] {
		diff := absDuration(c.Time.Sub(tRef))
		if diff < bestDiff {
			bestDiff = diff
			best = c
		}
	}
	return best
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}

func pointOf(c Coord) [2]float64 {
	return [2]float64{c.Lon, c.Lat}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func pairKey(interceptorHex, targetHex string) string {
	return fmt.Sprintf("%s>%s", interceptorHex, targetHex)
}
