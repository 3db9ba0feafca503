// Package geom holds the small amount of 2D geometry shared by the worksheet
// draw items: points, axis-aligned boxes and segment distance tests.
package geom

import "math"

// Point is a position in drawing units. Y grows downwards (page coordinates).
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Pt is a shorthand constructor.
func Pt(x, y float64) Point { return Point{X: x, Y: y} }

func (p Point) Add(o Point) Point { return Point{p.X + o.X, p.Y + o.Y} }
func (p Point) Sub(o Point) Point { return Point{p.X - o.X, p.Y - o.Y} }
func (p Point) Mul(f float64) Point { return Point{p.X * f, p.Y * f} }
func (p Point) Dist(o Point) float64 { return math.Hypot(p.X-o.X, p.Y-o.Y) }
func (p Point) Equal(o Point, eps float64) bool {
	return math.Abs(p.X-o.X) <= eps && math.Abs(p.Y-o.Y) <= eps
}

// Rotate rotates p around center by deg degrees, counter-clockwise as seen on
// a page whose Y axis points down.
func Rotate(p, center Point, deg float64) Point {
	if deg == 0 {
		return p
	}
	rad := deg * math.Pi / 180
	s, c := math.Sincos(rad)
	dx, dy := p.X-center.X, p.Y-center.Y
	return Point{
		X: center.X + dx*c + dy*s,
		Y: center.Y - dx*s + dy*c,
	}
}

// Box is an axis-aligned rectangle stored as normalized min/max corners.
// The zero value is a degenerate box at the origin; use EmptyBox for "nothing".
type Box struct {
	Min Point `json:"min"`
	Max Point `json:"max"`
}

// EmptyBox returns a box that contains nothing and intersects nothing.
// Merging a point into it yields a degenerate box at that point.
func EmptyBox() Box {
	return Box{
		Min: Point{X: math.Inf(1), Y: math.Inf(1)},
		Max: Point{X: math.Inf(-1), Y: math.Inf(-1)},
	}
}

// BoxOf returns the normalized box spanning a and b.
func BoxOf(a, b Point) Box {
	return Box{
		Min: Point{X: math.Min(a.X, b.X), Y: math.Min(a.Y, b.Y)},
		Max: Point{X: math.Max(a.X, b.X), Y: math.Max(a.Y, b.Y)},
	}
}

// BoxAt returns the box with top-left corner p and the given size.
func BoxAt(p Point, w, h float64) Box { return BoxOf(p, Point{p.X + w, p.Y + h}) }

func (b Box) IsEmpty() bool { return b.Min.X > b.Max.X || b.Min.Y > b.Max.Y }
func (b Box) Width() float64 { return b.Max.X - b.Min.X }
func (b Box) Height() float64 { return b.Max.Y - b.Min.Y }
func (b Box) Center() Point { return Point{(b.Min.X + b.Max.X) / 2, (b.Min.Y + b.Max.Y) / 2} }

// Corners returns the four corners clockwise from Min.
func (b Box) Corners() [4]Point {
	return [4]Point{b.Min, {b.Max.X, b.Min.Y}, b.Max, {b.Min.X, b.Max.Y}}
}

// Inflate grows the box by d on every side; negative d shrinks it.
func (b Box) Inflate(d float64) Box {
	if b.IsEmpty() {
		return b
	}
	return Box{
		Min: Point{b.Min.X - d, b.Min.Y - d},
		Max: Point{b.Max.X + d, b.Max.Y + d},
	}
}

// Move translates the box by d.
func (b Box) Move(d Point) Box {
	if b.IsEmpty() {
		return b
	}
	return Box{Min: b.Min.Add(d), Max: b.Max.Add(d)}
}

// Merge returns the smallest box holding b and p.
func (b Box) Merge(p Point) Box {
	return Box{
		Min: Point{math.Min(b.Min.X, p.X), math.Min(b.Min.Y, p.Y)},
		Max: Point{math.Max(b.Max.X, p.X), math.Max(b.Max.Y, p.Y)},
	}
}

// Union returns the smallest box holding both boxes.
func (b Box) Union(o Box) Box {
	if o.IsEmpty() {
		return b
	}
	if b.IsEmpty() {
		return o
	}
	return b.Merge(o.Min).Merge(o.Max)
}

// Contains reports whether p lies inside b, edges included.
func (b Box) Contains(p Point) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X && p.Y >= b.Min.Y && p.Y <= b.Max.Y
}

// ContainsBox reports whether o lies entirely inside b. An empty o is never contained.
func (b Box) ContainsBox(o Box) bool {
	if b.IsEmpty() || o.IsEmpty() {
		return false
	}
	return b.Contains(o.Min) && b.Contains(o.Max)
}

// Intersects reports whether the boxes overlap, touching edges included.
func (b Box) Intersects(o Box) bool {
	if b.IsEmpty() || o.IsEmpty() {
		return false
	}
	return b.Min.X <= o.Max.X && b.Max.X >= o.Min.X &&
		b.Min.Y <= o.Max.Y && b.Max.Y >= o.Min.Y
}

// IntersectsSegment reports whether segment a-b touches the box.
func (b Box) IntersectsSegment(a, c Point) bool {
	if b.IsEmpty() {
		return false
	}
	if b.Contains(a) || b.Contains(c) {
		return true
	}
	if !b.Intersects(BoxOf(a, c)) {
		return false
	}
	corners := b.Corners()
	for i := range corners {
		if SegmentsIntersect(a, c, corners[i], corners[(i+1)%4]) {
			return true
		}
	}
	return false
}

// SegmentDistance returns the distance from p to the segment a-b.
func SegmentDistance(p, a, b Point) float64 {
	d := b.Sub(a)
	l2 := d.X*d.X + d.Y*d.Y
	if l2 == 0 {
		return p.Dist(a)
	}
	t := ((p.X-a.X)*d.X + (p.Y-a.Y)*d.Y) / l2
	t = math.Max(0, math.Min(1, t))
	return p.Dist(Point{a.X + t*d.X, a.Y + t*d.Y})
}

// TestSegmentHit reports whether p is within dist of the segment a-b.
func TestSegmentHit(p, a, b Point, dist float64) bool {
	return SegmentDistance(p, a, b) <= dist
}

// SegmentsIntersect reports whether segments p1-p2 and q1-q2 share a point.
func SegmentsIntersect(p1, p2, q1, q2 Point) bool {
	d1 := cross(q1, q2, p1)
	d2 := cross(q1, q2, p2)
	d3 := cross(p1, p2, q1)
	d4 := cross(p1, p2, q2)
	if ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0)) {
		return true
	}
	switch {
	case d1 == 0 && onSegment(q1, q2, p1):
		return true
	case d2 == 0 && onSegment(q1, q2, p2):
		return true
	case d3 == 0 && onSegment(p1, p2, q1):
		return true
	case d4 == 0 && onSegment(p1, p2, q2):
		return true
	}
	return false
}

func cross(a, b, c Point) float64 {
	return (b.X-a.X)*(c.Y-a.Y) - (b.Y-a.Y)*(c.X-a.X)
}

func onSegment(a, b, p Point) bool {
	return math.Min(a.X, b.X) <= p.X && p.X <= math.Max(a.X, b.X) &&
		math.Min(a.Y, b.Y) <= p.Y && p.Y <= math.Max(a.Y, b.Y)
}
