package layer

import (
	"gitlab.com/begraf/spur/geo"
	"gitlab.com/begraf/spur/track"
)

// Hit-testing tolerances in screen pixels. Tolerances below the minimum are
// raised to it so zero-size points remain clickable.
const (
	MinTolerance     = 5
	symbolHalfExtent = 8
)

// TrackpointHit identifies the winning trackpoint of a search.
type TrackpointHit struct {
	Track ID
	Index int
	Point *track.Trackpoint
	X, Y  int
}

// WaypointHit identifies the winning waypoint of a search.
type WaypointHit struct {
	Waypoint ID
	Point    *track.Waypoint
	X, Y     int
}

func clampTolerance(tolerance int) int {
	if tolerance < MinTolerance {
		return MinTolerance
	}
	return tolerance
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// ClosestTrackpoint scans all visible tracks and routes for the trackpoint
// closest to the screen position (x, y). Tracks whose bounding box misses
// the viewport are skipped entirely. A candidate within the tolerance box
// replaces the current best only when strictly closer by Manhattan distance,
// so the first of equally distant candidates wins. The scan order is the
// stable id order, which makes identical queries return identical results.
func (l *Layer) ClosestTrackpoint(vp *geo.Viewport, x, y, tolerance int) (TrackpointHit, bool) {
	tolerance = clampTolerance(tolerance)
	viewBounds := vp.Bounds()

	var best TrackpointHit
	found := false

	scan := func(id ID, t *track.Track) {
		if !t.Visible {
			return
		}
		if !t.Bounds().Intersects(viewBounds) {
			return
		}

		for i, tp := range t.Points {
			px, py := vp.ToScreen(tp.Position)
			if abs(px-x) > tolerance || abs(py-y) > tolerance {
				continue
			}

			if found && abs(px-x)+abs(py-y) >= abs(best.X-x)+abs(best.Y-y) {
				continue
			}

			best = TrackpointHit{Track: id, Index: i, Point: tp, X: px, Y: py}
			found = true
		}
	}

	for _, id := range l.TrackIDs() {
		scan(id, l.tracks[id])
	}
	for _, id := range l.RouteIDs() {
		scan(id, l.routes[id])
	}

	return best, found
}

// ClosestWaypoint finds the visible waypoint closest to (x, y). A waypoint
// drawn with an image is hit within the image's half extents; one drawn with
// a symbol glyph within the glyph's; otherwise the tolerance box applies.
// Tie-breaking matches ClosestTrackpoint.
func (l *Layer) ClosestWaypoint(vp *geo.Viewport, x, y, tolerance int) (WaypointHit, bool) {
	tolerance = clampTolerance(tolerance)

	var best WaypointHit
	found := false

	for _, id := range l.WaypointIDs() {
		wp := l.waypoints[id]
		if !wp.Visible {
			continue
		}

		halfW, halfH := tolerance, tolerance
		switch {
		case wp.HasImage() && wp.ImageWidth > 0:
			halfW, halfH = wp.ImageWidth/2, wp.ImageHeight/2
		case wp.Symbol != "":
			halfW, halfH = symbolHalfExtent, symbolHalfExtent
		}

		px, py := vp.ToScreen(wp.Position)
		if abs(px-x) > halfW || abs(py-y) > halfH {
			continue
		}

		if found && abs(px-x)+abs(py-y) >= abs(best.X-x)+abs(best.Y-y) {
			continue
		}

		best = WaypointHit{Waypoint: id, Point: wp, X: px, Y: py}
		found = true
	}

	return best, found
}
