package geom

import (
	"math"
	"testing"
)

func TestBoxOfNormalizes(t *testing.T) {
	b := BoxOf(Pt(10, 20), Pt(2, 4))
	if b.Min != Pt(2, 4) || b.Max != Pt(10, 20) {
		t.Fatalf("box not normalized: %+v", b)
	}
	if b.Width() != 8 || b.Height() != 16 {
		t.Fatalf("unexpected size: %g x %g", b.Width(), b.Height())
	}
}

func TestEmptyBox(t *testing.T) {
	e := EmptyBox()
	if !e.IsEmpty() {
		t.Fatalf("EmptyBox should be empty")
	}
	b := BoxOf(Pt(0, 0), Pt(10, 10))
	if e.Intersects(b) || b.Intersects(e) {
		t.Fatalf("empty box must not intersect anything")
	}
	if b.ContainsBox(e) {
		t.Fatalf("empty box must not be contained")
	}
	m := e.Merge(Pt(3, 4))
	if m.IsEmpty() || m.Min != Pt(3, 4) || m.Max != Pt(3, 4) {
		t.Fatalf("merge into empty box: %+v", m)
	}
	if u := e.Union(b); u != b {
		t.Fatalf("union with empty: %+v", u)
	}
}

func TestBoxContainsAndInflate(t *testing.T) {
	b := BoxOf(Pt(0, 0), Pt(10, 10))
	if !b.Contains(Pt(0, 0)) || !b.Contains(Pt(10, 10)) {
		t.Fatalf("edges should be contained")
	}
	if b.Contains(Pt(10.5, 5)) {
		t.Fatalf("outside point contained")
	}
	if !b.Inflate(1).Contains(Pt(10.5, 5)) {
		t.Fatalf("inflated box should contain point")
	}
	inner := BoxOf(Pt(1, 1), Pt(9, 9))
	if !b.ContainsBox(inner) || inner.ContainsBox(b) {
		t.Fatalf("ContainsBox mismatch")
	}
}

func TestSegmentDistance(t *testing.T) {
	a, b := Pt(0, 0), Pt(10, 0)
	cases := []struct {
		p    Point
		want float64
	}{
		{Pt(5, 3), 3},
		{Pt(-3, 4), 5},
		{Pt(13, 4), 5},
		{Pt(7, 0), 0},
	}
	for _, c := range cases {
		if got := SegmentDistance(c.p, a, b); math.Abs(got-c.want) > 1e-9 {
			t.Fatalf("SegmentDistance(%v) = %g, want %g", c.p, got, c.want)
		}
	}
	if got := SegmentDistance(Pt(3, 4), a, a); math.Abs(got-5) > 1e-9 {
		t.Fatalf("degenerate segment distance = %g", got)
	}
	if !TestSegmentHit(Pt(5, 1), a, b, 1) || TestSegmentHit(Pt(5, 1.01), a, b, 1) {
		t.Fatalf("TestSegmentHit threshold mismatch")
	}
}

func TestIntersectsSegment(t *testing.T) {
	b := BoxOf(Pt(0, 0), Pt(10, 10))
	if !b.IntersectsSegment(Pt(-5, 5), Pt(15, 5)) {
		t.Fatalf("crossing segment should intersect")
	}
	if !b.IntersectsSegment(Pt(5, 5), Pt(50, 50)) {
		t.Fatalf("segment starting inside should intersect")
	}
	if b.IntersectsSegment(Pt(-5, -1), Pt(15, -1)) {
		t.Fatalf("segment above box should not intersect")
	}
	if b.IntersectsSegment(Pt(11, -5), Pt(20, 4)) {
		t.Fatalf("diagonal segment outside the corner should not intersect")
	}
}

func TestRotate(t *testing.T) {
	// 90° CCW on a y-down page: a point to the right of the center moves up.
	got := Rotate(Pt(10, 0), Pt(0, 0), 90)
	if !got.Equal(Pt(0, -10), 1e-9) {
		t.Fatalf("Rotate 90 = %+v", got)
	}
	back := Rotate(got, Pt(0, 0), -90)
	if !back.Equal(Pt(10, 0), 1e-9) {
		t.Fatalf("Rotate round trip = %+v", back)
	}
}
