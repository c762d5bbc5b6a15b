package layer

import (
	"errors"
	"fmt"
	"math"

	"gitlab.com/begraf/spur/geo"
	"gitlab.com/begraf/spur/track"
)

var ErrNoSuchTrack = errors.New("no such track")

// addPieces turns point lists carved out of src into new tracks named
// "<src> #1", "<src> #2", ... and registers them.
func (l *Layer) addPieces(src *track.Track, lists [][]*track.Trackpoint) []ID {
	ids := make([]ID, 0, len(lists))
	for i, pts := range lists {
		piece := src.Copy(false)
		piece.Points = pts
		piece.Name = l.NewUniqueName(src.Kind, fmt.Sprintf("%s #%d", src.Name, i+1))
		piece.CalculateBounds()

		if piece.Kind == track.KindRoute {
			ids = append(ids, l.AddRoute(piece))
		} else {
			ids = append(ids, l.AddTrack(piece))
		}
	}
	return ids
}

func (l *Layer) splitByLists(id ID, carve func(*track.Track) ([][]*track.Trackpoint, error)) ([]ID, error) {
	t := l.TrackOrRoute(id)
	if t == nil {
		return nil, ErrNoSuchTrack
	}

	lists, err := carve(t)
	if err != nil {
		return nil, err
	}

	// A single resulting list means no split happened; the original is left
	// untouched and nothing new is created.
	if len(lists) < 2 {
		return nil, nil
	}

	ids := l.addPieces(t, lists)
	l.DeleteTrack(id)

	return ids, nil
}

// SplitByTime splits a track wherever the timestamp gap exceeds threshold
// seconds. Returns the new track ids, or nil when no split occurred.
func (l *Layer) SplitByTime(id ID, threshold float64) ([]ID, error) {
	return l.splitByLists(id, func(t *track.Track) ([][]*track.Trackpoint, error) {
		return t.SplitPointsByTime(threshold)
	})
}

// SplitByN splits a track into pieces of n points each.
func (l *Layer) SplitByN(id ID, n int) ([]ID, error) {
	return l.splitByLists(id, func(t *track.Track) ([][]*track.Trackpoint, error) {
		return t.SplitPointsByN(n)
	})
}

// SplitBySegments splits a track at its segment markers.
func (l *Layer) SplitBySegments(id ID) ([]ID, error) {
	return l.splitByLists(id, func(t *track.Track) ([][]*track.Trackpoint, error) {
		return t.SplitPointsBySegments()
	})
}

// SplitAtCurrentPoint breaks the track owning the current selection in two
// at that point. The selection moves to the first point of the new track.
func (l *Layer) SplitAtCurrentPoint() (ID, error) {
	ref, ok := l.CurrentPoint()
	if !ok {
		return 0, errors.New("no trackpoint selected")
	}

	t := l.TrackOrRoute(ref.Track)
	if t == nil {
		return 0, ErrNoSuchTrack
	}

	rest, err := t.SplitAt(ref.Index)
	if err != nil {
		return 0, err
	}

	rest.Name = l.NewUniqueName(t.Kind, t.Name)

	var id ID
	if rest.Kind == track.KindRoute {
		id = l.AddRoute(rest)
	} else {
		id = l.AddTrack(rest)
	}

	l.SetCurrentPoint(PointRef{Track: id, Index: 0})

	return id, nil
}

// MergeWithTracks splices the given tracks into target and deletes them.
// All participants must agree on timestamp presence; timed tracks are
// re-sorted by timestamp after splicing (stable, so equal timestamps keep
// their order).
func (l *Layer) MergeWithTracks(target ID, others []ID) error {
	t := l.TrackOrRoute(target)
	if t == nil {
		return ErrNoSuchTrack
	}

	timed := t.HasTimestamps()
	for _, id := range others {
		o := l.TrackOrRoute(id)
		if o == nil {
			return ErrNoSuchTrack
		}
		if o.HasTimestamps() != timed {
			return track.ErrMixedTimes
		}
	}

	for _, id := range others {
		o := l.TrackOrRoute(id)
		t.Points = append(t.Points, o.Points...)
		o.Points = nil
		l.DeleteTrack(id)

		if timed {
			t.SortByTimestamp()
		}
	}

	t.CalculateBounds()

	return nil
}

// MergeByTime repeatedly pulls in any other track whose first or last
// timestamp lies within threshold seconds of the target's first or last
// timestamp. A newly merged track can bring further candidates into range,
// hence the fixed-point loop. Returns the number of tracks merged in.
func (l *Layer) MergeByTime(target ID, threshold float64) (int, error) {
	t := l.tracks[target]
	if t == nil {
		return 0, ErrNoSuchTrack
	}
	if !t.HasTimestamps() {
		return 0, track.ErrNoTimestamps
	}

	merged := 0
	for {
		candidate := l.findNearbyTrack(target, threshold)
		if candidate == 0 {
			break
		}

		o := l.tracks[candidate]
		t.Points = append(t.Points, o.Points...)
		o.Points = nil
		l.DeleteTrack(candidate)
		t.SortByTimestamp()
		merged++
	}

	if merged > 0 {
		t.CalculateBounds()
	}

	return merged, nil
}

func (l *Layer) findNearbyTrack(target ID, threshold float64) ID {
	t := l.tracks[target]
	if len(t.Points) == 0 {
		return 0
	}

	t1 := t.Points[0].Timestamp
	t2 := t.Points[len(t.Points)-1].Timestamp

	for _, id := range l.TrackIDs() {
		if id == target {
			continue
		}

		o := l.tracks[id]
		if len(o.Points) == 0 || !o.HasTimestamps() {
			continue
		}

		o1 := o.Points[0].Timestamp
		o2 := o.Points[len(o.Points)-1].Timestamp

		if math.Abs(o1-t2) <= threshold || math.Abs(o2-t1) <= threshold ||
			math.Abs(o1-t1) <= threshold || math.Abs(o2-t2) <= threshold {
			return id
		}
	}

	return 0
}

// AppendTrack splices other onto the end of target unconditionally and
// deletes other.
func (l *Layer) AppendTrack(target, other ID) error {
	t := l.TrackOrRoute(target)
	o := l.TrackOrRoute(other)
	if t == nil || o == nil {
		return ErrNoSuchTrack
	}

	t.Append(o)
	l.DeleteTrack(other)

	return nil
}

// DeleteCurrentPoint removes the selected trackpoint. The selection moves to
// the successor when one exists, else the predecessor; when the track runs
// empty the selection and the current track are cleared entirely.
func (l *Layer) DeleteCurrentPoint() error {
	ref, ok := l.CurrentPoint()
	if !ok {
		return errors.New("no trackpoint selected")
	}

	t := l.TrackOrRoute(ref.Track)
	if t == nil {
		return ErrNoSuchTrack
	}

	if err := t.RemoveAt(ref.Index); err != nil {
		return err
	}

	switch {
	case ref.Index < len(t.Points):
		l.SetCurrentPoint(PointRef{Track: ref.Track, Index: ref.Index})
	case len(t.Points) > 0:
		l.SetCurrentPoint(PointRef{Track: ref.Track, Index: len(t.Points) - 1})
	default:
		l.ClearCurrentPoint()
		l.SetCurrentTrack(0)
	}

	return nil
}

// MoveCurrentPoint commits a new coordinate into the selected trackpoint and
// refreshes the owning track's bounds.
func (l *Layer) MoveCurrentPoint(to geo.LatLon) error {
	ref, ok := l.CurrentPoint()
	if !ok {
		return errors.New("no trackpoint selected")
	}

	t := l.TrackOrRoute(ref.Track)
	if t == nil {
		return ErrNoSuchTrack
	}

	t.Points[ref.Index].Position = to
	t.CalculateBounds()

	return nil
}
