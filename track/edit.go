package track

import (
	"errors"
	"fmt"
)

var (
	ErrSplitAtEnd   = errors.New("cannot split at a track endpoint")
	ErrNoTimestamps = errors.New("track has no timestamps")
	ErrTimestamped  = errors.New("operation not allowed on a timestamped track")
	ErrMixedTimes   = errors.New("tracks disagree on timestamp presence")
	ErrEmptyTrack   = errors.New("track is empty")
)

// OutOfOrderError reports a timestamp smaller than its predecessor's during
// an operation that assumes chronological order. Index points at the
// offending trackpoint so the operator can be taken there.
type OutOfOrderError struct {
	Index int
}

func (e *OutOfOrderError) Error() string {
	return fmt.Sprintf("trackpoint %d is older than its predecessor", e.Index)
}

// SplitAt partitions the track at point index i. The receiver keeps points
// [0,i); the returned track carries the metadata and points [i,len). The
// point objects themselves migrate, they are not copied. Both halves get
// fresh bounds. The split point must have a predecessor and a successor.
func (t *Track) SplitAt(i int) (*Track, error) {
	if i <= 0 || i >= len(t.Points)-1 {
		return nil, ErrSplitAtEnd
	}

	rest := t.Copy(false)
	rest.Points = append(rest.Points, t.Points[i:]...)
	t.Points = t.Points[:i]

	t.CalculateBounds()
	rest.CalculateBounds()

	return rest, nil
}

// SplitPointsByTime partitions the point list wherever the gap to the next
// timestamp exceeds threshold seconds. The original list is untouched; the
// returned lists reference the original point objects. A timestamp running
// backwards is surfaced as an OutOfOrderError.
func (t *Track) SplitPointsByTime(threshold float64) ([][]*Trackpoint, error) {
	if len(t.Points) == 0 {
		return nil, ErrEmptyTrack
	}
	if !t.HasTimestamps() {
		return nil, ErrNoTimestamps
	}

	var lists [][]*Trackpoint
	var open []*Trackpoint

	prev := t.Points[0].Timestamp
	for i, tp := range t.Points {
		ts := tp.Timestamp
		if ts < prev {
			return nil, &OutOfOrderError{Index: i}
		}

		if ts-prev > threshold && len(open) > 0 {
			lists = append(lists, open)
			open = nil
		}

		open = append(open, tp)
		prev = ts
	}

	if len(open) > 0 {
		lists = append(lists, open)
	}

	return lists, nil
}

// SplitPointsByN partitions the point list into chunks of n points; the last
// chunk may be shorter.
func (t *Track) SplitPointsByN(n int) ([][]*Trackpoint, error) {
	if n < 2 {
		return nil, fmt.Errorf("chunk size %d too small", n)
	}
	if len(t.Points) == 0 {
		return nil, ErrEmptyTrack
	}

	var lists [][]*Trackpoint
	for i := 0; i < len(t.Points); i += n {
		end := i + n
		if end > len(t.Points) {
			end = len(t.Points)
		}
		lists = append(lists, t.Points[i:end:end])
	}

	return lists, nil
}

// SplitPointsBySegments partitions the point list at segment markers.
func (t *Track) SplitPointsBySegments() ([][]*Trackpoint, error) {
	if len(t.Points) == 0 {
		return nil, ErrEmptyTrack
	}

	var lists [][]*Trackpoint
	var open []*Trackpoint

	for _, tp := range t.Points {
		if tp.NewSegment && len(open) > 0 {
			lists = append(lists, open)
			open = nil
		}
		open = append(open, tp)
	}

	if len(open) > 0 {
		lists = append(lists, open)
	}

	return lists, nil
}

// Append splices other's points onto the end of t. No timestamp check is
// performed, unlike merging. Routes are collapsed back to a single segment.
func (t *Track) Append(other *Track) {
	t.Points = append(t.Points, other.Points...)
	other.Points = nil

	if t.IsRoute() {
		t.MergeSegments()
	}

	t.CalculateBounds()
}

// InsertAt places tp at index i, shifting later points right.
func (t *Track) InsertAt(i int, tp *Trackpoint) {
	t.Points = append(t.Points, nil)
	copy(t.Points[i+1:], t.Points[i:])
	t.Points[i] = tp
	t.CalculateBounds()
}

// InsertInterpolated synthesizes a point between index i and i+1 and inserts
// it. Both neighbors must exist.
func (t *Track) InsertInterpolated(i int) error {
	if i < 0 || i+1 >= len(t.Points) {
		return ErrSplitAtEnd
	}

	t.InsertAt(i+1, Interpolate(t.Points[i], t.Points[i+1]))
	return nil
}

// RemoveAt deletes the point at index i. When the deleted point opened a
// segment, the marker moves to its successor so the neighboring segments are
// not silently joined.
func (t *Track) RemoveAt(i int) error {
	if i < 0 || i >= len(t.Points) {
		return fmt.Errorf("no trackpoint at index %d", i)
	}

	if t.Points[i].NewSegment && i+1 < len(t.Points) {
		t.Points[i+1].NewSegment = true
	}

	t.Points = append(t.Points[:i], t.Points[i+1:]...)
	t.CalculateBounds()

	return nil
}

// Rotate shifts the start point of a closed, un-timestamped route by n
// positions. Positive n moves the first point to the end. Timestamps forbid
// rotation since it would scramble temporal order.
func (t *Track) Rotate(n int) error {
	if !t.IsRoute() {
		return errors.New("only routes can be rotated")
	}
	if t.HasTimestamps() {
		return ErrTimestamped
	}
	if len(t.Points) < 2 {
		return ErrEmptyTrack
	}

	for ; n > 0; n-- {
		t.Points = append(t.Points[1:], t.Points[0])
	}
	for ; n < 0; n++ {
		last := t.Points[len(t.Points)-1]
		t.Points = append([]*Trackpoint{last}, t.Points[:len(t.Points)-1]...)
	}

	for i, tp := range t.Points {
		tp.NewSegment = i == 0
	}

	return nil
}
