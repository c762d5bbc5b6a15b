package track

import (
	"math"
	"sort"

	"gitlab.com/begraf/spur/geo"
)

type Kind int

const (
	KindTrack Kind = iota
	KindRoute
)

func (k Kind) String() string {
	if k == KindRoute {
		return "route"
	}
	return "track"
}

// Track holds an ordered trackpoint list plus metadata. Routes use the same
// struct with Kind set to KindRoute; a route is single-segment and by
// convention carries no meaningful timestamps.
type Track struct {
	Name        string
	Comment     string
	Description string
	Source      string
	Type        string
	Number      int
	Color       string // hex color, empty until assigned
	HasColor    bool
	Visible     bool
	Kind        Kind
	Points      []*Trackpoint

	bounds geo.Bounds
}

func New(kind Kind) *Track {
	return &Track{
		Visible: true,
		Kind:    kind,
	}
}

// Copy duplicates metadata; with deep set, the trackpoints as well.
func (t *Track) Copy(deep bool) *Track {
	cp := *t
	cp.Points = nil

	if deep {
		cp.Points = make([]*Trackpoint, len(t.Points))
		for i, tp := range t.Points {
			cp.Points[i] = tp.Copy()
		}
	}

	return &cp
}

func (t *Track) IsRoute() bool {
	return t.Kind == KindRoute
}

func (t *Track) Empty() bool {
	return len(t.Points) == 0
}

// HasTimestamps reports whether the track's first point carries a timestamp.
func (t *Track) HasTimestamps() bool {
	return len(t.Points) > 0 && t.Points[0].HasTimestamp()
}

func (t *Track) Bounds() *geo.Bounds {
	return &t.bounds
}

// CalculateBounds rescans the point list. Call after any structural change.
func (t *Track) CalculateBounds() {
	t.bounds = geo.Bounds{}
	for _, tp := range t.Points {
		t.bounds.Extend(tp.Position)
	}
}

func (t *Track) SegmentCount() int {
	if len(t.Points) == 0 {
		return 0
	}

	n := 1
	for _, tp := range t.Points[1:] {
		if tp.NewSegment {
			n++
		}
	}

	return n
}

// MergeSegments clears internal segment markers, collapsing the track into a
// single segment. Returns the number of markers removed.
func (t *Track) MergeSegments() int {
	removed := 0
	for _, tp := range t.Points[1:] {
		if tp.NewSegment {
			tp.NewSegment = false
			removed++
		}
	}

	if len(t.Points) > 0 {
		t.Points[0].NewSegment = true
	}

	return removed
}

// Reverse inverts the point order. Segment markers are shifted one point
// forward afterwards so each boundary stays in the same gap between points;
// the old first point loses its marker and the new first point gains one.
func (t *Track) Reverse() {
	for i, j := 0, len(t.Points)-1; i < j; i, j = i+1, j-1 {
		t.Points[i], t.Points[j] = t.Points[j], t.Points[i]
	}

	for i := len(t.Points) - 1; i >= 0; i-- {
		tp := t.Points[i]
		if i == len(t.Points)-1 {
			tp.NewSegment = false
		}
		if i == 0 {
			tp.NewSegment = true
		} else if tp.NewSegment && i < len(t.Points)-1 {
			t.Points[i+1].NewSegment = true
			tp.NewSegment = false
		}
	}
}

// Length in km, not counting jumps across segment boundaries.
func (t *Track) Length() float64 {
	var total float64
	for i := 1; i < len(t.Points); i++ {
		if t.Points[i].NewSegment {
			continue
		}
		total += t.Points[i-1].Position.Distance(t.Points[i].Position)
	}
	return total
}

func (t *Track) LengthIncludingGaps() float64 {
	var total float64
	for i := 1; i < len(t.Points); i++ {
		total += t.Points[i-1].Position.Distance(t.Points[i].Position)
	}
	return total
}

func (t *Track) DupPointCount() int {
	n := 0
	for i := 1; i < len(t.Points); i++ {
		if t.Points[i].Position == t.Points[i-1].Position {
			n++
		}
	}
	return n
}

// RemoveDupPoints drops the later of any adjacent pair sharing a position.
func (t *Track) RemoveDupPoints() int {
	return t.removeAdjacent(func(prev, cur *Trackpoint) bool {
		return prev.Position == cur.Position
	})
}

// RemoveSameTimePoints drops the later of any adjacent pair sharing a
// timestamp.
func (t *Track) RemoveSameTimePoints() int {
	return t.removeAdjacent(func(prev, cur *Trackpoint) bool {
		return prev.HasTimestamp() && cur.HasTimestamp() && prev.Timestamp == cur.Timestamp
	})
}

func (t *Track) removeAdjacent(match func(prev, cur *Trackpoint) bool) int {
	if len(t.Points) < 2 {
		return 0
	}

	out := t.Points[:1]
	removed := 0
	for _, tp := range t.Points[1:] {
		if match(out[len(out)-1], tp) {
			removed++
			continue
		}
		out = append(out, tp)
	}

	t.Points = out
	if removed > 0 {
		t.CalculateBounds()
	}

	return removed
}

// SortByTimestamp stable-sorts the point list; equal timestamps keep their
// relative order.
func (t *Track) SortByTimestamp() {
	sort.SliceStable(t.Points, func(i, j int) bool {
		a, b := t.Points[i].Timestamp, t.Points[j].Timestamp
		if math.IsNaN(a) || math.IsNaN(b) {
			return false
		}
		return a < b
	})
}
