// Package route computes dependency connector geometry.
//
// A connector runs between two item anchors chosen by the link kind.
// Short or nearly horizontal forward hops are straight segments; longer
// jumps become cubic curves bowed perpendicular to the chord, with the
// arrowhead aligned to the incoming tangent at the destination.
package route

import (
	"math"

	"github.com/gogpu/stave/cache"
	"github.com/gogpu/stave/geom"
	"github.com/gogpu/stave/layout"
	"github.com/gogpu/stave/schedule"
)

// PathKind distinguishes the two connector shapes.
type PathKind uint8

const (
	// PathStraight is a single line segment.
	PathStraight PathKind = iota
	// PathCurved is a cubic with two control points.
	PathCurved
)

var pathKindNames = [...]string{
	PathStraight: "straight",
	PathCurved:   "curved",
}

// String returns the kind's name.
func (k PathKind) String() string {
	if int(k) < len(pathKindNames) {
		return pathKindNames[k]
	}
	return "unknown"
}

// PathSpec is one routed connector.
type PathSpec struct {
	Kind PathKind

	From geom.Point
	To   geom.Point

	// C1 and C2 are the cubic control points, meaningful only when
	// Kind is PathCurved.
	C1 geom.Point
	C2 geom.Point

	// ArrowAngle is the incoming tangent direction at To, in radians.
	ArrowAngle float64
}

// Translate returns the path shifted by an offset. The arrow angle is
// translation invariant.
func (s PathSpec) Translate(off geom.Point) PathSpec {
	s.From = s.From.Add(off)
	s.To = s.To.Add(off)
	s.C1 = s.C1.Add(off)
	s.C2 = s.C2.Add(off)
	return s
}

// ArrowWings returns the two base points of an arrowhead of the given
// length at the destination.
func (s PathSpec) ArrowWings(length float64) (geom.Point, geom.Point) {
	const spread = math.Pi / 7
	a1 := s.ArrowAngle + math.Pi - spread
	a2 := s.ArrowAngle + math.Pi + spread
	return s.To.Add(geom.Pt(math.Cos(a1), math.Sin(a1)).Mul(length)),
		s.To.Add(geom.Pt(math.Cos(a2), math.Sin(a2)).Mul(length))
}

// Params tunes connector shapes.
type Params struct {
	// StraightDist is the anchor distance under which the connector is
	// always a straight segment.
	StraightDist float64

	// FlatDeltaY is the vertical delta under which a forward connector
	// stays straight regardless of length.
	FlatDeltaY float64

	// Curvature scales the perpendicular bow as a fraction of the
	// chord length.
	Curvature float64

	// MaxBow caps the bow in pixels so very long links stay readable.
	MaxBow float64

	// ArrowLen is the arrowhead length used by scene builders.
	ArrowLen float64
}

// DefaultParams returns the standard connector tuning.
func DefaultParams() Params {
	return Params{
		StraightDist: 50,
		FlatDeltaY:   10,
		Curvature:    0.2,
		MaxBow:       48,
		ArrowLen:     8,
	}
}

// Anchors picks the endpoint pair for a link kind: finish maps to the
// source's right edge, start to the left, mirrored for the destination.
func Anchors(src, dst layout.ItemLayout, kind schedule.LinkKind) (geom.Point, geom.Point) {
	switch kind {
	case schedule.StartToStart:
		return src.LeftAnchor, dst.LeftAnchor
	case schedule.FinishToFinish:
		return src.RightAnchor, dst.RightAnchor
	case schedule.StartToFinish:
		return src.LeftAnchor, dst.RightAnchor
	default: // FinishToStart and anything unknown
		return src.RightAnchor, dst.LeftAnchor
	}
}

// Route computes the connector between two anchors.
func Route(from, to geom.Point, p Params) PathSpec {
	d := to.Sub(from)
	dist := d.Length()

	if dist < p.StraightDist || (math.Abs(d.Y) < p.FlatDeltaY && d.X > 0) {
		return PathSpec{
			Kind:       PathStraight,
			From:       from,
			To:         to,
			ArrowAngle: math.Atan2(d.Y, d.X),
		}
	}

	bow := p.Curvature * dist
	if bow > p.MaxBow {
		bow = p.MaxBow
	}
	perp := d.Perp().Normalize().Mul(bow)
	c1 := from.Add(d.Mul(1.0 / 3.0)).Add(perp)
	c2 := from.Add(d.Mul(2.0 / 3.0)).Add(perp)

	return PathSpec{
		Kind:       PathCurved,
		From:       from,
		To:         to,
		C1:         c1,
		C2:         c2,
		ArrowAngle: math.Atan2(to.Y-c2.Y, to.X-c2.X),
	}
}

type memoKey struct {
	dx   int32 // delta in half pixels
	dy   int32
	kind schedule.LinkKind
}

func hashMemoKey(k memoKey) uint64 {
	// Spread the three fields; exactness does not matter, the cache
	// compares full keys.
	return uint64(uint32(k.dx))<<33 ^ uint64(uint32(k.dy))<<2 ^ uint64(k.kind)
}

// Router memoizes connector geometry. Connectors depend only on the
// anchor delta, so paths are cached in local space keyed by the delta
// quantized to half pixels, then translated to the source anchor.
type Router struct {
	params Params
	memo   *cache.Sharded[memoKey, PathSpec]
}

// NewRouter creates a router with its path cache.
func NewRouter(p Params) *Router {
	return &Router{
		params: p,
		memo:   cache.NewSharded[memoKey, PathSpec](cache.DefaultCapacity, hashMemoKey),
	}
}

// Params returns the router's tuning.
func (r *Router) Params() Params {
	return r.params
}

// Route returns the connector between two anchors, using the memoized
// local-space path when one exists.
func (r *Router) Route(from, to geom.Point, kind schedule.LinkKind) PathSpec {
	d := to.Sub(from)
	key := memoKey{
		dx:   int32(math.Round(d.X * 2)),
		dy:   int32(math.Round(d.Y * 2)),
		kind: kind,
	}
	local := r.memo.GetOrCreate(key, func() PathSpec {
		// Build from the quantized delta so every hit of this key gets
		// identical geometry.
		qd := geom.Pt(float64(key.dx)/2, float64(key.dy)/2)
		return Route(geom.Pt(0, 0), qd, r.params)
	})
	return local.Translate(from)
}

// CacheStats exposes the memo's counters.
func (r *Router) CacheStats() cache.Stats {
	return r.memo.Stats()
}
