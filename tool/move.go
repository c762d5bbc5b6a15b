package tool

import (
	"gitlab.com/begraf/spur/geo"
	"gitlab.com/begraf/spur/layer"
)

// MoveTool selects trackpoints by clicking them and moves the selected one
// with a press-drag-release sequence.
type MoveTool struct {
	Layer     *layer.Layer
	Viewport  *geo.Viewport
	Tolerance int

	// Redraw is invoked after every committed change. May be nil.
	Redraw func()
	// Preview receives the drag marker's previous and next screen positions
	// while dragging. Visual feedback only. May be nil.
	Preview func(oldX, oldY, newX, newY int)

	holding    bool
	oldX, oldY int
}

func (m *MoveTool) Holding() bool {
	return m.holding
}

// Press either begins dragging the currently selected trackpoint (when the
// press lands on it and its track is visible) or selects the closest
// trackpoint within tolerance. Returns whether the press was consumed.
func (m *MoveTool) Press(x, y int) bool {
	if ref, ok := m.Layer.CurrentPoint(); ok {
		t := m.Layer.TrackOrRoute(ref.Track)
		if t != nil && t.Visible && ref.Index < len(t.Points) {
			px, py := m.Viewport.ToScreen(t.Points[ref.Index].Position)
			tol := m.Tolerance
			if tol < layer.MinTolerance {
				tol = layer.MinTolerance
			}
			if abs(px-x) < tol && abs(py-y) < tol {
				m.holding = true
				m.oldX, m.oldY = x, y
				return true
			}
		}
	}

	hit, ok := m.Layer.ClosestTrackpoint(m.Viewport, x, y, m.Tolerance)
	if !ok {
		return false
	}

	m.Layer.SetCurrentPoint(layer.PointRef{Track: hit.Track, Index: hit.Index})
	m.Layer.SetCurrentTrack(hit.Track)

	if m.Redraw != nil {
		m.Redraw()
	}
	return true
}

// Move updates the drag preview. With snap set, the destination sticks to
// the nearest other trackpoint in range.
func (m *MoveTool) Move(x, y int, snap bool) bool {
	if !m.holding {
		return false
	}

	x, y = m.snapScreen(x, y, snap)

	if m.Preview != nil {
		m.Preview(m.oldX, m.oldY, x, y)
	}
	m.oldX, m.oldY = x, y

	return true
}

// Release commits the new coordinate into the selected point.
func (m *MoveTool) Release(x, y int, snap bool) bool {
	if !m.holding {
		return false
	}
	m.holding = false

	x, y = m.snapScreen(x, y, snap)
	if err := m.Layer.MoveCurrentPoint(m.Viewport.ToLatLon(x, y)); err != nil {
		return false
	}

	if m.Redraw != nil {
		m.Redraw()
	}
	return true
}

// Deactivate releases any drag state; switching tools must never leave a
// dangling hold.
func (m *MoveTool) Deactivate() {
	m.holding = false
}

func (m *MoveTool) snapScreen(x, y int, snap bool) (int, int) {
	if !snap {
		return x, y
	}

	ref, _ := m.Layer.CurrentPoint()
	hit, ok := m.Layer.ClosestTrackpoint(m.Viewport, x, y, m.Tolerance)
	if ok && !(hit.Track == ref.Track && hit.Index == ref.Index) {
		return hit.X, hit.Y
	}

	if wpHit, ok := m.Layer.ClosestWaypoint(m.Viewport, x, y, m.Tolerance); ok {
		return wpHit.X, wpHit.Y
	}

	return x, y
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
