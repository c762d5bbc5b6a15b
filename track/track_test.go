package track

import (
	"math"
	"testing"

	"gitlab.com/begraf/spur/geo"
)

func testTrack(kind Kind, positions ...geo.LatLon) *Track {
	t := New(kind)
	for _, pos := range positions {
		t.Points = append(t.Points, NewTrackpoint(pos))
	}
	t.CalculateBounds()
	return t
}

// timedTrack builds a track whose points sit one degree apart with the given
// timestamps.
func timedTrack(timestamps ...float64) *Track {
	t := New(KindTrack)
	for i, ts := range timestamps {
		tp := NewTrackpoint(geo.LatLon{Lat: float64(i), Lon: float64(i)})
		tp.Timestamp = ts
		t.Points = append(t.Points, tp)
	}
	t.CalculateBounds()
	return t
}

func TestNewTrackpointUnsetFields(t *testing.T) {
	tp := NewTrackpoint(geo.LatLon{Lat: 1, Lon: 2})

	if tp.HasTimestamp() {
		t.Error("fresh trackpoint has a timestamp")
	}
	if tp.HasAltitude() {
		t.Error("fresh trackpoint has an altitude")
	}
	for name, v := range map[string]float64{
		"speed":  tp.Speed,
		"course": tp.Course,
		"dop":    tp.DOP,
	} {
		if !math.IsNaN(v) {
			t.Errorf("fresh trackpoint %s = %f, expected unset", name, v)
		}
	}
}

func TestInterpolate(t *testing.T) {
	a := NewTrackpoint(geo.LatLon{Lat: 0, Lon: 0})
	a.Altitude = 100
	a.Timestamp = 1000
	b := NewTrackpoint(geo.LatLon{Lat: 2, Lon: 4})
	b.Altitude = 200
	b.Timestamp = 2000

	mid := Interpolate(a, b)

	if mid.Position.Lat != 1 || mid.Position.Lon != 2 {
		t.Errorf("midpoint = %+v", mid.Position)
	}
	if mid.Altitude != 150 {
		t.Errorf("altitude = %f, expected 150", mid.Altitude)
	}
	if mid.Timestamp != 1500 {
		t.Errorf("timestamp = %f, expected 1500", mid.Timestamp)
	}
}

func TestInterpolateUnsetStaysUnset(t *testing.T) {
	a := NewTrackpoint(geo.LatLon{})
	a.Altitude = 100
	b := NewTrackpoint(geo.LatLon{Lat: 2})

	mid := Interpolate(a, b)

	if mid.HasAltitude() {
		t.Error("altitude set although one neighbor is unset")
	}
	if mid.HasTimestamp() {
		t.Error("timestamp set although both neighbors are unset")
	}
}

func TestSegmentCount(t *testing.T) {
	tr := testTrack(KindTrack,
		geo.LatLon{Lat: 0}, geo.LatLon{Lat: 1},
		geo.LatLon{Lat: 2}, geo.LatLon{Lat: 3},
	)

	if n := tr.SegmentCount(); n != 1 {
		t.Fatalf("fresh track has %d segments, expected 1", n)
	}

	tr.Points[2].NewSegment = true
	if n := tr.SegmentCount(); n != 2 {
		t.Fatalf("SegmentCount() = %d, expected 2", n)
	}

	if removed := tr.MergeSegments(); removed != 1 {
		t.Errorf("MergeSegments() removed %d markers, expected 1", removed)
	}
	if n := tr.SegmentCount(); n != 1 {
		t.Errorf("SegmentCount() after merge = %d, expected 1", n)
	}
}

func TestLengthSkipsSegmentGaps(t *testing.T) {
	tr := testTrack(KindTrack,
		geo.LatLon{Lat: 0, Lon: 0}, geo.LatLon{Lat: 0, Lon: 1},
		geo.LatLon{Lat: 0, Lon: 5}, geo.LatLon{Lat: 0, Lon: 6},
	)
	tr.Points[2].NewSegment = true

	short := tr.Length()
	full := tr.LengthIncludingGaps()

	if short >= full {
		t.Errorf("Length() = %f must be shorter than LengthIncludingGaps() = %f", short, full)
	}

	// Two one-degree legs, roughly 111 km each.
	if short < 220 || short > 225 {
		t.Errorf("Length() = %f, expected roughly 222", short)
	}
}

func TestReverse(t *testing.T) {
	tr := timedTrack(1, 2, 3)
	tr.Reverse()

	if tr.Points[0].Timestamp != 3 || tr.Points[2].Timestamp != 1 {
		t.Errorf("reversed order = [%f %f %f]",
			tr.Points[0].Timestamp, tr.Points[1].Timestamp, tr.Points[2].Timestamp)
	}
}

func TestReverseKeepsSegmentBoundaries(t *testing.T) {
	// Boundary between points 1 and 2.
	tr := timedTrack(1, 2, 3, 4)
	tr.Points[2].NewSegment = true

	tr.Reverse()

	if n := tr.SegmentCount(); n != 2 {
		t.Fatalf("%d segments after reverse, expected 2", n)
	}
	// Reversed order is [4 3 2 1]; the boundary must sit in the same gap,
	// now between timestamps 3 and 2.
	if !tr.Points[2].NewSegment {
		t.Error("boundary not between the original pair of points")
	}
	if tr.Points[1].NewSegment {
		t.Error("stale marker left on the wrong point")
	}
	if !tr.Points[0].NewSegment {
		t.Error("new first point does not open a segment")
	}

	// Reversing back restores the original structure.
	tr.Reverse()
	if n := tr.SegmentCount(); n != 2 {
		t.Errorf("%d segments after double reverse, expected 2", n)
	}
	if !tr.Points[2].NewSegment {
		t.Error("double reverse moved the boundary")
	}
}

func TestRemoveDupPoints(t *testing.T) {
	tr := testTrack(KindTrack,
		geo.LatLon{Lat: 0}, geo.LatLon{Lat: 0},
		geo.LatLon{Lat: 1}, geo.LatLon{Lat: 1}, geo.LatLon{Lat: 1},
		geo.LatLon{Lat: 2},
	)

	if n := tr.DupPointCount(); n != 3 {
		t.Errorf("DupPointCount() = %d, expected 3", n)
	}
	if n := tr.RemoveDupPoints(); n != 3 {
		t.Errorf("RemoveDupPoints() = %d, expected 3", n)
	}
	if len(tr.Points) != 3 {
		t.Errorf("%d points remain, expected 3", len(tr.Points))
	}
}

func TestRemoveSameTimePoints(t *testing.T) {
	tr := timedTrack(1, 1, 2, 3, 3)

	if n := tr.RemoveSameTimePoints(); n != 2 {
		t.Errorf("RemoveSameTimePoints() = %d, expected 2", n)
	}
	if len(tr.Points) != 3 {
		t.Errorf("%d points remain, expected 3", len(tr.Points))
	}
}

func TestSortByTimestampStable(t *testing.T) {
	tr := timedTrack(3, 1, 2)
	a := NewTrackpoint(geo.LatLon{Lat: 99})
	a.Timestamp = 2
	tr.Points = append(tr.Points, a)

	tr.SortByTimestamp()

	ts := []float64{tr.Points[0].Timestamp, tr.Points[1].Timestamp, tr.Points[2].Timestamp, tr.Points[3].Timestamp}
	if ts[0] != 1 || ts[1] != 2 || ts[2] != 2 || ts[3] != 3 {
		t.Errorf("sorted timestamps = %v", ts)
	}
	// The pre-existing timestamp-2 point must precede the appended one.
	if tr.Points[1].Position.Lat == 99 {
		t.Error("equal timestamps did not keep their relative order")
	}
}

func TestCopy(t *testing.T) {
	tr := timedTrack(1, 2)
	tr.Name = "orig"

	shallow := tr.Copy(false)
	if len(shallow.Points) != 0 {
		t.Errorf("shallow copy carries %d points", len(shallow.Points))
	}
	if shallow.Name != "orig" {
		t.Errorf("shallow copy name = %q", shallow.Name)
	}

	deep := tr.Copy(true)
	if len(deep.Points) != 2 {
		t.Fatalf("deep copy carries %d points, expected 2", len(deep.Points))
	}
	deep.Points[0].Timestamp = 42
	if tr.Points[0].Timestamp != 1 {
		t.Error("deep copy shares point objects with the original")
	}
}
