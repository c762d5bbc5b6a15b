package geo

import (
	"math"
	"testing"
)

func TestDistance(t *testing.T) {
	berlin := LatLon{Lat: 52.52, Lon: 13.405}
	hamburg := LatLon{Lat: 53.551, Lon: 9.993}

	d := berlin.Distance(hamburg)
	if d < 250 || d > 260 {
		t.Errorf("Berlin-Hamburg distance = %f km, expected roughly 255", d)
	}

	if d := berlin.Distance(berlin); d != 0 {
		t.Errorf("distance to itself = %f, expected 0", d)
	}
}

func TestBoundsExtend(t *testing.T) {
	var b Bounds

	if b.Valid() {
		t.Fatal("zero bounds must be invalid")
	}
	if b.Contains(LatLon{}) {
		t.Error("invalid bounds must contain nothing")
	}

	b.Extend(LatLon{Lat: 10, Lon: 20})
	if !b.Valid() {
		t.Fatal("bounds invalid after extend")
	}
	if b.North != 10 || b.South != 10 || b.East != 20 || b.West != 20 {
		t.Errorf("single-point bounds = %+v", b)
	}

	b.Extend(LatLon{Lat: -5, Lon: 25})
	if b.North != 10 || b.South != -5 || b.East != 25 || b.West != 20 {
		t.Errorf("extended bounds = %+v", b)
	}

	if !b.Contains(LatLon{Lat: 0, Lon: 22}) {
		t.Error("interior point not contained")
	}
	if b.Contains(LatLon{Lat: 11, Lon: 22}) {
		t.Error("exterior point contained")
	}
}

func TestBoundsIntersects(t *testing.T) {
	var a, b, c Bounds
	a.Extend(LatLon{Lat: 0, Lon: 0})
	a.Extend(LatLon{Lat: 10, Lon: 10})
	b.Extend(LatLon{Lat: 5, Lon: 5})
	b.Extend(LatLon{Lat: 15, Lon: 15})
	c.Extend(LatLon{Lat: 20, Lon: 20})
	c.Extend(LatLon{Lat: 30, Lon: 30})

	if !a.Intersects(&b) || !b.Intersects(&a) {
		t.Error("overlapping bounds do not intersect")
	}
	if a.Intersects(&c) {
		t.Error("disjoint bounds intersect")
	}

	var invalid Bounds
	if a.Intersects(&invalid) {
		t.Error("intersection with invalid bounds")
	}
}

func TestBoundsContainsBounds(t *testing.T) {
	var outer, inner, partial Bounds
	outer.Extend(LatLon{Lat: 0, Lon: 0})
	outer.Extend(LatLon{Lat: 10, Lon: 10})
	inner.Extend(LatLon{Lat: 2, Lon: 2})
	inner.Extend(LatLon{Lat: 8, Lon: 8})
	partial.Extend(LatLon{Lat: 5, Lon: 5})
	partial.Extend(LatLon{Lat: 15, Lon: 15})

	if !outer.ContainsBounds(&inner) {
		t.Error("inner bounds not contained")
	}
	if outer.ContainsBounds(&partial) {
		t.Error("partially overlapping bounds contained")
	}
	if inner.ContainsBounds(&outer) {
		t.Error("containment is not symmetric")
	}
}

func TestViewportRoundTrip(t *testing.T) {
	v := NewViewport(LatLon{Lat: 48.0, Lon: 11.0}, 1000, 800, 600)

	x, y := v.ToScreen(v.Center)
	if x != 400 || y != 300 {
		t.Errorf("center maps to (%d, %d), expected (400, 300)", x, y)
	}

	p := LatLon{Lat: 48.1, Lon: 11.2}
	x, y = v.ToScreen(p)
	back := v.ToLatLon(x, y)

	if math.Abs(back.Lat-p.Lat) > 1e-3 || math.Abs(back.Lon-p.Lon) > 1e-3 {
		t.Errorf("round trip %+v -> (%d, %d) -> %+v", p, x, y, back)
	}
}

func TestViewportBounds(t *testing.T) {
	v := NewViewport(LatLon{Lat: 0, Lon: 0}, 100, 200, 100)
	b := v.Bounds()

	if !b.Valid() {
		t.Fatal("viewport bounds invalid")
	}
	if !b.Contains(LatLon{Lat: 0.4, Lon: 0.9}) {
		t.Error("point inside viewport not in bounds")
	}
	if b.Contains(LatLon{Lat: 0.6, Lon: 0}) {
		t.Error("point above viewport in bounds")
	}
}
