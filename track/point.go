package track

import (
	"math"

	"gitlab.com/begraf/spur/geo"
)

// NoValue marks an unset numeric field (altitude, timestamp, speed, ...).
// Check with math.IsNaN, never with ==.
func NoValue() float64 {
	return math.NaN()
}

type Trackpoint struct {
	Position   geo.LatLon
	Altitude   float64 // NaN when unset
	Timestamp  float64 // seconds since epoch, NaN when unset
	Speed      float64 // NaN when unset
	Course     float64 // degrees, NaN when unset
	DOP        float64 // NaN when unset
	FixMode    int
	Satellites int
	NewSegment bool
	Name       string
}

func NewTrackpoint(pos geo.LatLon) *Trackpoint {
	return &Trackpoint{
		Position:  pos,
		Altitude:  NoValue(),
		Timestamp: NoValue(),
		Speed:     NoValue(),
		Course:    NoValue(),
		DOP:       NoValue(),
	}
}

func (tp *Trackpoint) HasTimestamp() bool {
	return !math.IsNaN(tp.Timestamp)
}

func (tp *Trackpoint) HasAltitude() bool {
	return !math.IsNaN(tp.Altitude)
}

func (tp *Trackpoint) Copy() *Trackpoint {
	cp := *tp
	return &cp
}

// averageOf returns the mean of two optional values, or unset if either is.
func averageOf(a, b float64) float64 {
	if math.IsNaN(a) || math.IsNaN(b) {
		return NoValue()
	}
	return (a + b) / 2
}

// Interpolate synthesizes the point halfway between a and b. Position is the
// flat-earth midpoint, which is fine at the granularity of adjacent
// trackpoints. The course average is a plain arithmetic mean and is wrong
// across the 0/360 wraparound; that matches long-standing behavior and is
// kept unchanged.
func Interpolate(a, b *Trackpoint) *Trackpoint {
	tp := NewTrackpoint(geo.LatLon{
		Lat: (a.Position.Lat + b.Position.Lat) / 2,
		Lon: (a.Position.Lon + b.Position.Lon) / 2,
	})

	tp.Altitude = averageOf(a.Altitude, b.Altitude)
	tp.Timestamp = averageOf(a.Timestamp, b.Timestamp)
	tp.Speed = averageOf(a.Speed, b.Speed)
	tp.Course = averageOf(a.Course, b.Course)

	return tp
}
