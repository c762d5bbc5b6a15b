package tool

import (
	"context"
	"sync"
	"time"

	"gitlab.com/begraf/spur/geo"
	"gitlab.com/begraf/spur/layer"
	"gitlab.com/begraf/spur/track"
)

// Router computes a route between two coordinates. Implementations are
// expected to block on network I/O; the route finder always calls them off
// the editing goroutine.
type Router interface {
	FindRoute(ctx context.Context, from, to geo.LatLon) ([]geo.LatLon, error)
}

// DefaultDebounce is a typical double-click interval plus a margin.
const DefaultDebounce = 350 * time.Millisecond

// Result of an asynchronous route query. Err is set when the query failed;
// the in-progress route is untouched in that case.
type Result struct {
	Target geo.LatLon
	Points []geo.LatLon
	Err    error
}

// RouteFinder extends a route being built by querying an external routing
// engine for each clicked target. A click is held back for the double-click
// interval so that a double click (which ends the build instead) can
// supersede it. Results arrive on the Results channel and must be applied by
// the goroutine owning the layer.
type RouteFinder struct {
	router   Router
	debounce time.Duration
	results  chan Result

	mu      sync.Mutex
	gen     int
	timer   *time.Timer
	pending bool
}

func NewRouteFinder(router Router, debounce time.Duration) *RouteFinder {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &RouteFinder{
		router:   router,
		debounce: debounce,
		results:  make(chan Result, 1),
	}
}

// Results delivers completed route queries. Drained by the editing loop.
func (rf *RouteFinder) Results() <-chan Result {
	return rf.results
}

// Pending reports whether a click is waiting out its debounce interval or a
// query is in flight. Useful for a busy-cursor indicator.
func (rf *RouteFinder) Pending() bool {
	rf.mu.Lock()
	defer rf.mu.Unlock()
	return rf.pending
}

// Click schedules a route query from the current route end to the clicked
// coordinate. A prior not-yet-dispatched click is superseded.
func (rf *RouteFinder) Click(from, to geo.LatLon) {
	rf.mu.Lock()
	defer rf.mu.Unlock()

	rf.gen++
	gen := rf.gen
	rf.pending = true

	if rf.timer != nil {
		rf.timer.Stop()
	}

	rf.timer = time.AfterFunc(rf.debounce, func() {
		rf.dispatch(gen, from, to)
	})
}

// Cancel withdraws the pending click, typically because a double click
// arrived before the debounce timer fired.
func (rf *RouteFinder) Cancel() {
	rf.mu.Lock()
	defer rf.mu.Unlock()

	rf.gen++
	rf.pending = false
	if rf.timer != nil {
		rf.timer.Stop()
		rf.timer = nil
	}
}

func (rf *RouteFinder) dispatch(gen int, from, to geo.LatLon) {
	rf.mu.Lock()
	if gen != rf.gen {
		rf.mu.Unlock()
		return
	}
	rf.mu.Unlock()

	points, err := rf.router.FindRoute(context.Background(), from, to)

	rf.mu.Lock()
	stale := gen != rf.gen
	if !stale {
		rf.pending = false
	}
	rf.mu.Unlock()

	if stale {
		return
	}

	rf.results <- Result{Target: to, Points: points, Err: err}
}

// Splice appends a successful result's points onto the route being built.
// Must run on the goroutine owning the layer.
func Splice(l *layer.Layer, id layer.ID, res Result) error {
	if res.Err != nil {
		return res.Err
	}

	t := l.TrackOrRoute(id)
	if t == nil {
		return layer.ErrNoSuchTrack
	}

	for _, p := range res.Points {
		t.Points = append(t.Points, track.NewTrackpoint(p))
	}

	if t.IsRoute() {
		t.MergeSegments()
	}
	t.CalculateBounds()

	return nil
}
