package layer

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"

	"github.com/google/uuid"
	"github.com/lucasb-eyer/go-colorful"
	"gitlab.com/begraf/spur/geo"
	"gitlab.com/begraf/spur/track"
)

// ID is a handle for a track, route or waypoint within one layer. Handles
// are allocated from a per-layer monotonic counter and never reused. Zero
// means "none".
type ID int

// PointRef addresses one trackpoint within a layer: the owning track (or
// route) plus its index in the point list.
type PointRef struct {
	Track ID
	Index int
}

// Layer owns three independent id->object collections plus the transient
// editing state that points into them. All mutation must happen on a single
// goroutine; background workers never touch a Layer directly.
type Layer struct {
	GUID uuid.UUID
	Name string

	tracks    map[ID]*track.Track
	routes    map[ID]*track.Track
	waypoints map[ID]*track.Waypoint
	nextID    ID

	waypointBounds geo.Bounds

	currentTrack    ID
	currentPoint    PointRef
	hasCurrentPoint bool
	currentWaypoint ID
}

func New(name string) *Layer {
	return &Layer{
		GUID:      uuid.New(),
		Name:      name,
		tracks:    make(map[ID]*track.Track),
		routes:    make(map[ID]*track.Track),
		waypoints: make(map[ID]*track.Waypoint),
	}
}

func (l *Layer) allocID() ID {
	l.nextID++
	return l.nextID
}

func (l *Layer) AddTrack(t *track.Track) ID {
	if t.Kind != track.KindTrack {
		panic("AddTrack called with a route")
	}
	id := l.allocID()
	l.tracks[id] = t
	return id
}

func (l *Layer) AddRoute(t *track.Track) ID {
	if t.Kind != track.KindRoute {
		panic("AddRoute called with a track")
	}
	id := l.allocID()
	l.routes[id] = t
	return id
}

func (l *Layer) AddWaypoint(wp *track.Waypoint) ID {
	id := l.allocID()
	l.waypoints[id] = wp
	l.CalculateWaypointBounds()
	return id
}

func (l *Layer) Track(id ID) *track.Track {
	return l.tracks[id]
}

func (l *Layer) Route(id ID) *track.Track {
	return l.routes[id]
}

// TrackOrRoute looks id up in both track collections.
func (l *Layer) TrackOrRoute(id ID) *track.Track {
	if t, ok := l.tracks[id]; ok {
		return t
	}
	return l.routes[id]
}

func (l *Layer) Waypoint(id ID) *track.Waypoint {
	return l.waypoints[id]
}

func (l *Layer) TrackCount() int {
	return len(l.tracks)
}

func (l *Layer) RouteCount() int {
	return len(l.routes)
}

func (l *Layer) WaypointCount() int {
	return len(l.waypoints)
}

func sortedIDs[T any](m map[ID]T) []ID {
	ids := make([]ID, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// TrackIDs returns track handles in ascending allocation order.
func (l *Layer) TrackIDs() []ID {
	return sortedIDs(l.tracks)
}

func (l *Layer) RouteIDs() []ID {
	return sortedIDs(l.routes)
}

func (l *Layer) WaypointIDs() []ID {
	return sortedIDs(l.waypoints)
}

// DeleteTrack removes a track or route. Any transient selection into it is
// cleared. The returned flag tells whether the object had been visible, so
// the caller knows whether a redraw is due.
func (l *Layer) DeleteTrack(id ID) bool {
	t := l.TrackOrRoute(id)
	if t == nil {
		return false
	}

	delete(l.tracks, id)
	delete(l.routes, id)

	if l.currentTrack == id {
		l.currentTrack = 0
	}
	if l.hasCurrentPoint && l.currentPoint.Track == id {
		l.hasCurrentPoint = false
	}

	return t.Visible
}

func (l *Layer) DeleteWaypoint(id ID) bool {
	wp, ok := l.waypoints[id]
	if !ok {
		return false
	}

	delete(l.waypoints, id)
	if l.currentWaypoint == id {
		l.currentWaypoint = 0
	}
	l.CalculateWaypointBounds()

	return wp.Visible
}

func (l *Layer) WaypointBounds() *geo.Bounds {
	return &l.waypointBounds
}

// CalculateWaypointBounds rescans all waypoint positions. Invoked after any
// waypoint add, delete or move; not maintained incrementally.
func (l *Layer) CalculateWaypointBounds() {
	l.waypointBounds = geo.Bounds{}
	for _, wp := range l.waypoints {
		l.waypointBounds.Extend(wp.Position)
	}
}

// Transient edit state. At most one current track, one current trackpoint
// and one current waypoint exist per layer.

func (l *Layer) CurrentTrack() ID {
	return l.currentTrack
}

func (l *Layer) SetCurrentTrack(id ID) {
	l.currentTrack = id
}

func (l *Layer) CurrentPoint() (PointRef, bool) {
	return l.currentPoint, l.hasCurrentPoint
}

func (l *Layer) SetCurrentPoint(ref PointRef) {
	l.currentPoint = ref
	l.hasCurrentPoint = true
}

func (l *Layer) ClearCurrentPoint() {
	l.hasCurrentPoint = false
}

func (l *Layer) CurrentWaypoint() ID {
	return l.currentWaypoint
}

func (l *Layer) SetCurrentWaypoint(id ID) {
	l.currentWaypoint = id
}

var nameSuffixPattern = regexp.MustCompile(`^(.*)#(\d+)$`)

// NewUniqueName derives a name not yet used by any object of the given kind.
// A colliding base that already ends in #<N> continues counting from N+1;
// otherwise #2 is appended. This is advisory only: nothing rejects duplicate
// names, and file loading bypasses it entirely.
func (l *Layer) NewUniqueName(kind track.Kind, base string) string {
	return uniqueName(base, func(name string) bool {
		return l.nameExists(kind, name)
	})
}

// NewUniqueWaypointName is NewUniqueName for the waypoint namespace.
func (l *Layer) NewUniqueWaypointName(base string) string {
	return uniqueName(base, func(name string) bool {
		_, wp := l.WaypointByName(name)
		return wp != nil
	})
}

func uniqueName(base string, exists func(string) bool) string {
	name := base
	for exists(name) {
		if m := nameSuffixPattern.FindStringSubmatch(name); m != nil {
			n, err := strconv.Atoi(m[2])
			if err == nil {
				name = fmt.Sprintf("%s#%d", m[1], n+1)
				continue
			}
		}
		name = name + "#2"
	}
	return name
}

func (l *Layer) nameExists(kind track.Kind, name string) bool {
	m := l.tracks
	if kind == track.KindRoute {
		m = l.routes
	}
	for _, t := range m {
		if t.Name == name {
			return true
		}
	}
	return false
}

// WaypointByName returns the first waypoint (in id order) carrying the given
// name, or zero when there is none. Names are not unique, so "first" is by
// allocation order.
func (l *Layer) WaypointByName(name string) (ID, *track.Waypoint) {
	for _, id := range l.WaypointIDs() {
		if wp := l.waypoints[id]; wp.Name == name {
			return id, wp
		}
	}
	return 0, nil
}

// EnsureTrackColor assigns a random pleasant color to a track that has no
// explicit one. The color is stable once assigned.
func (l *Layer) EnsureTrackColor(id ID) string {
	t := l.TrackOrRoute(id)
	if t == nil {
		return ""
	}

	if !t.HasColor {
		t.Color = colorful.HappyColor().Hex()
		t.HasColor = true
	}

	return t.Color
}
