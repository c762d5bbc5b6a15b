package track

import (
	"gitlab.com/begraf/spur/geo"
	"gitlab.com/begraf/spur/option"
)

// DirectionRef distinguishes true from magnetic bearings on a waypoint's
// image capture direction.
type DirectionRef int

const (
	DirectionTrue DirectionRef = iota
	DirectionMagnetic
)

type Waypoint struct {
	Position    geo.LatLon
	Altitude    float64 // NaN when unset
	Timestamp   float64 // NaN when unset
	Name        string
	Comment     string
	Description string
	Source      string
	Type        string
	URL         string
	Visible     bool
	Symbol      string

	// Image shown for the waypoint, with pixel dimensions cached once the
	// image has been displayed.
	Image       string
	ImageWidth  int
	ImageHeight int

	ImageDirection    option.Option[float64]
	ImageDirectionRef DirectionRef
}

func NewWaypoint(pos geo.LatLon) *Waypoint {
	return &Waypoint{
		Position:  pos,
		Altitude:  NoValue(),
		Timestamp: NoValue(),
		Visible:   true,
	}
}

func (wp *Waypoint) Copy() *Waypoint {
	cp := *wp
	return &cp
}

func (wp *Waypoint) HasImage() bool {
	return wp.Image != ""
}
