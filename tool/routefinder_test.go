package tool

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"gitlab.com/begraf/spur/geo"
	"gitlab.com/begraf/spur/layer"
	"gitlab.com/begraf/spur/track"
)

// fakeRouter answers every query with a straight two-point route and records
// the targets it was asked about.
type fakeRouter struct {
	mu      sync.Mutex
	targets []geo.LatLon
	err     error
}

func (f *fakeRouter) FindRoute(ctx context.Context, from, to geo.LatLon) ([]geo.LatLon, error) {
	f.mu.Lock()
	f.targets = append(f.targets, to)
	f.mu.Unlock()

	if f.err != nil {
		return nil, f.err
	}
	return []geo.LatLon{from, to}, nil
}

func (f *fakeRouter) queried() []geo.LatLon {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]geo.LatLon(nil), f.targets...)
}

func TestRouteFinderDelivers(t *testing.T) {
	router := &fakeRouter{}
	rf := NewRouteFinder(router, 10*time.Millisecond)

	to := geo.LatLon{Lat: 1, Lon: 1}
	rf.Click(geo.LatLon{}, to)

	if !rf.Pending() {
		t.Error("not pending after click")
	}

	select {
	case res := <-rf.Results():
		if res.Err != nil {
			t.Fatal(res.Err)
		}
		if res.Target != to {
			t.Errorf("result target = %+v, expected %+v", res.Target, to)
		}
		if len(res.Points) != 2 {
			t.Errorf("%d points, expected 2", len(res.Points))
		}
	case <-time.After(time.Second):
		t.Fatal("no result within a second")
	}

	if rf.Pending() {
		t.Error("still pending after delivery")
	}
}

func TestRouteFinderSupersedesRapidClicks(t *testing.T) {
	router := &fakeRouter{}
	rf := NewRouteFinder(router, 50*time.Millisecond)

	// Three clicks faster than the debounce interval; only the last may
	// reach the router.
	for i := 1; i <= 3; i++ {
		rf.Click(geo.LatLon{}, geo.LatLon{Lat: float64(i)})
		time.Sleep(5 * time.Millisecond)
	}

	select {
	case res := <-rf.Results():
		if res.Target.Lat != 3 {
			t.Errorf("delivered target lat = %f, expected the last click", res.Target.Lat)
		}
	case <-time.After(time.Second):
		t.Fatal("no result within a second")
	}

	if got := router.queried(); len(got) != 1 {
		t.Errorf("router asked %d times, expected once", len(got))
	}
}

func TestRouteFinderCancel(t *testing.T) {
	router := &fakeRouter{}
	rf := NewRouteFinder(router, 20*time.Millisecond)

	rf.Click(geo.LatLon{}, geo.LatLon{Lat: 1})
	rf.Cancel()

	if rf.Pending() {
		t.Error("pending after cancel")
	}

	select {
	case res := <-rf.Results():
		t.Errorf("canceled click delivered %+v", res)
	case <-time.After(100 * time.Millisecond):
	}

	if got := router.queried(); len(got) != 0 {
		t.Errorf("router asked %d times after cancel", len(got))
	}
}

func TestRouteFinderErrorResult(t *testing.T) {
	router := &fakeRouter{err: errors.New("no route")}
	rf := NewRouteFinder(router, time.Millisecond)

	rf.Click(geo.LatLon{}, geo.LatLon{Lat: 1})

	select {
	case res := <-rf.Results():
		if res.Err == nil {
			t.Error("router error not surfaced")
		}
	case <-time.After(time.Second):
		t.Fatal("no result within a second")
	}
}

func TestSplice(t *testing.T) {
	l := layer.New("test")
	r := track.New(track.KindRoute)
	r.Points = append(r.Points, track.NewTrackpoint(geo.LatLon{}))
	r.Points[0].NewSegment = true
	id := l.AddRoute(r)

	res := Result{
		Target: geo.LatLon{Lat: 2, Lon: 2},
		Points: []geo.LatLon{{Lat: 1, Lon: 1}, {Lat: 2, Lon: 2}},
	}

	if err := Splice(l, id, res); err != nil {
		t.Fatal(err)
	}

	if len(r.Points) != 3 {
		t.Fatalf("%d points after splice, expected 3", len(r.Points))
	}
	if r.SegmentCount() != 1 {
		t.Errorf("route has %d segments, expected 1", r.SegmentCount())
	}
	if !r.Bounds().Contains(geo.LatLon{Lat: 2, Lon: 2}) {
		t.Error("bounds not refreshed after splice")
	}
}

func TestSpliceError(t *testing.T) {
	l := layer.New("test")

	if err := Splice(l, 1, Result{Err: errors.New("boom")}); err == nil {
		t.Error("failed result spliced")
	}
	if err := Splice(l, 99, Result{}); !errors.Is(err, layer.ErrNoSuchTrack) {
		t.Errorf("error = %v, expected ErrNoSuchTrack", err)
	}
}
