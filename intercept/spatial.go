package intercept

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"github.com/paulmach/orb/quadtree"
)

// targetPoint adapts an *Ac classified as Target to orb.Pointer so it can
// be indexed by a quadtree.Quadtree. Grounded on aurel42-phileasgo's use of
// paulmach/orb for exactly this kind of point-set spatial index; no example
// repo ships its own R-tree/quadtree, so this is enrichment from the wider
// pack rather than the teacher itself.
type targetPoint struct {
	ac *Ac
}

func (t targetPoint) Point() orb.Point {
	c := t.ac.CurCoord()
	return orb.Point{c.Lon, c.Lat}
}

// spatialIndex is a quadtree over the current tick's Target aircraft,
// rebuilt fresh every tick (spec.md §4.4: "built once per tick over target
// points"). Query does a cheap planar bounding-box prefilter via the
// quadtree, then the caller applies the precise Haversine gate — the
// two-stage pattern spec.md §4.4 calls for.
type spatialIndex struct {
	tree   *quadtree.Quadtree
	thr    Thresholds
	degBuf float64 // half-width, in degrees, of the prefilter bounding box
}

// newSpatialIndex bulk-builds a quadtree over targets. The bound passed to
// quadtree.New must contain every point that will be added.
func newSpatialIndex(targets []*Ac, thr Thresholds) *spatialIndex {
	bound := orb.Bound{Min: orb.Point{180, 90}, Max: orb.Point{-180, -90}} // inverted: empty
	for _, ac := range targets {
		bound = bound.Extend(targetPoint{ac}.Point())
	}
	if bound.Min[0] > bound.Max[0] {
		// No targets: fall back to a degenerate bound around the origin so
		// quadtree.New doesn't choke on an inverted box.
		bound = orb.Bound{Min: orb.Point{0, 0}, Max: orb.Point{0, 0}}
	}

	tree := quadtree.New(bound)
	for _, ac := range targets {
		// Add only fails if the point falls outside bound, which cannot
		// happen here since bound was grown to contain every point added.
		_ = tree.Add(targetPoint{ac})
	}

	return &spatialIndex{
		tree:   tree,
		thr:    thr,
		degBuf: math.Sqrt(thr.maxDistDeg2()),
	}
}

// Query returns every Target within the loose planar prefilter box around
// center. Callers must still apply geo.DistanceHaversine (or an equivalent
// precise check) to each candidate before treating it as a real match: this
// prefilter trades false positives (near the box corners) for cheap
// rejection of everything else on the map.
func (idx *spatialIndex) Query(center orb.Point) []*Ac {
	box := orb.Bound{
		Min: orb.Point{center[0] - idx.degBuf, center[1] - idx.degBuf},
		Max: orb.Point{center[0] + idx.degBuf, center[1] + idx.degBuf},
	}

	candidates := idx.tree.InBound(nil, box)
	out := make([]*Ac, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, c.(targetPoint).ac)
	}
	return out
}

// earthRadiusM is the sphere radius the Haversine gate uses.
const earthRadiusM = 6371000.0

// lateralSeparationMeters is the precise gate that follows every Query: the
// great-circle distance between two points, in meters, on a sphere of radius
// earthRadiusM. geo.DistanceHaversine works on orb.EarthRadius, and the
// Haversine distance is proportional to the radius, so its result is scaled.
func lateralSeparationMeters(a, b orb.Point) float64 {
	return geo.DistanceHaversine(a, b) * (earthRadiusM / orb.EarthRadius)
}
