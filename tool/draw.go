package tool

import (
	"gitlab.com/begraf/spur/geo"
	"gitlab.com/begraf/spur/layer"
	"gitlab.com/begraf/spur/track"
)

// DrawTool builds a new track or route point by point from successive
// clicks. It owns no UI; redraws are requested through the Redraw callback
// and all layer mutation happens synchronously on the caller's goroutine.
type DrawTool struct {
	Layer    *layer.Layer
	Viewport *geo.Viewport
	Kind     track.Kind

	// Redraw is invoked after every visible change. May be nil.
	Redraw func()

	current layer.ID
	// The last two click positions, kept to recognize the duplicate point a
	// double click produces.
	x1, y1 int
	x2, y2 int
}

func (d *DrawTool) Building() bool {
	return d.current != 0
}

// CurrentID returns the id of the track being built, or zero.
func (d *DrawTool) CurrentID() layer.ID {
	return d.current
}

func (d *DrawTool) redraw() {
	if d.Redraw != nil {
		d.Redraw()
	}
}

func (d *DrawTool) begin() {
	t := track.New(d.Kind)
	base := "Track"
	if d.Kind == track.KindRoute {
		base = "Route"
	}
	t.Name = d.Layer.NewUniqueName(d.Kind, base)

	if d.Kind == track.KindRoute {
		d.current = d.Layer.AddRoute(t)
	} else {
		d.current = d.Layer.AddTrack(t)
	}
	d.Layer.SetCurrentTrack(d.current)
}

// Click appends a point at the clicked position, starting a new track first
// when none is being built. With snap set, the point position is taken from
// the nearest existing trackpoint when one is in range.
func (d *DrawTool) Click(x, y int, snap bool) {
	if d.current == 0 {
		d.begin()
	}

	pos := d.Viewport.ToLatLon(x, y)
	if snap {
		hit, ok := d.Layer.ClosestTrackpoint(d.Viewport, x, y, layer.MinTolerance)
		if ok && !d.ownLastPoint(hit) {
			pos = hit.Point.Position
		}
	}

	t := d.Layer.TrackOrRoute(d.current)
	t.Points = append(t.Points, track.NewTrackpoint(pos))
	t.CalculateBounds()

	d.x1, d.y1 = d.x2, d.y2
	d.x2, d.y2 = x, y

	d.redraw()
}

// UndoLastPoint removes the most recently added point; one level of undo,
// reachable via right click or Backspace.
func (d *DrawTool) UndoLastPoint() {
	if d.current == 0 {
		return
	}

	t := d.Layer.TrackOrRoute(d.current)
	if len(t.Points) > 0 {
		t.Points = t.Points[:len(t.Points)-1]
		t.CalculateBounds()
	}

	d.redraw()
}

// DoubleClick finalizes the track being built. The preceding single click
// already appended a duplicate point at the same position; it is removed
// before the track is closed out.
func (d *DrawTool) DoubleClick(x, y int) {
	if d.current == 0 {
		return
	}

	t := d.Layer.TrackOrRoute(d.current)
	if len(t.Points) > 0 && d.x1 == d.x2 && d.y1 == d.y2 {
		t.Points = t.Points[:len(t.Points)-1]
		t.CalculateBounds()
	}

	d.finalize()
	d.redraw()
}

// KeyEscape discards a useless in-progress track (one point or fewer) and
// returns to idle; a longer track is kept as-is.
func (d *DrawTool) KeyEscape() {
	if d.current == 0 {
		return
	}

	d.finalize()
	d.redraw()
}

func (d *DrawTool) KeyBackspace() {
	d.UndoLastPoint()
}

// Deactivate is called when the tool is switched away. No in-progress state
// may survive: the usual finalize validity check runs so no orphaned
// single-point track is left behind.
func (d *DrawTool) Deactivate() {
	if d.current == 0 {
		return
	}

	d.finalize()
	d.redraw()
}

// finalize ends the build. A track or route with one point or fewer is
// useless and silently discarded.
func (d *DrawTool) finalize() {
	t := d.Layer.TrackOrRoute(d.current)
	if t != nil && len(t.Points) <= 1 {
		d.Layer.DeleteTrack(d.current)
	}

	d.current = 0
	d.Layer.SetCurrentTrack(0)
	d.x1, d.y1, d.x2, d.y2 = 0, 0, 0, 0
}

// ownLastPoint reports whether the hit is the most recently appended point of
// the track being built. Snapping to it would only produce an exact duplicate
// of the previous click.
func (d *DrawTool) ownLastPoint(hit layer.TrackpointHit) bool {
	if d.current == 0 || hit.Track != d.current {
		return false
	}
	t := d.Layer.TrackOrRoute(d.current)
	return t != nil && hit.Index == len(t.Points)-1
}

// JoinExisting connects the track being built to the clicked trackpoint and
// finalizes it: a closing point at the clicked position is appended and the
// build ends there. Returns false when no point is in range or no build is in
// progress.
func (d *DrawTool) JoinExisting(x, y int) bool {
	if d.current == 0 {
		return false
	}

	hit, ok := d.Layer.ClosestTrackpoint(d.Viewport, x, y, layer.MinTolerance)
	if !ok || d.ownLastPoint(hit) {
		return false
	}

	t := d.Layer.TrackOrRoute(d.current)
	t.Points = append(t.Points, track.NewTrackpoint(hit.Point.Position))
	t.CalculateBounds()

	d.finalize()
	d.redraw()
	return true
}

// ClickExisting splits the clicked track at the clicked point and continues
// building by appending to the newly split-off part. Used when a click with
// the modifier held lands on an existing trackpoint.
func (d *DrawTool) ClickExisting(x, y int) bool {
	hit, ok := d.Layer.ClosestTrackpoint(d.Viewport, x, y, layer.MinTolerance)
	if !ok {
		return false
	}

	d.Layer.SetCurrentPoint(layer.PointRef{Track: hit.Track, Index: hit.Index})
	id, err := d.Layer.SplitAtCurrentPoint()
	if err != nil {
		return false
	}

	d.current = id
	d.Layer.SetCurrentTrack(id)
	d.x2, d.y2 = x, y

	d.redraw()
	return true
}
