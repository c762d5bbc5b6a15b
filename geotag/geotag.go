// Package geotag assigns track positions to photos by matching photo
// capture timestamps against trackpoint timestamps.
package geotag

import (
	"errors"
	"path/filepath"

	"gitlab.com/begraf/spur/geo"
	"gitlab.com/begraf/spur/layer"
	"gitlab.com/begraf/spur/option"
	"gitlab.com/begraf/spur/track"
)

var (
	ErrNoMatch = errors.New("no trackpoints straddle the photo time")
	ErrHasGPS  = errors.New("image already carries a GPS position")
)

type Options struct {
	// Timezone of the camera clock relative to UTC.
	TimeZoneHours, TimeZoneMins int
	// Flat offset in seconds, correcting a misconfigured camera clock.
	TimeOffset float64

	// Search across segment boundaries.
	InterpolateSegments bool

	CreateWaypoints    bool
	OverwriteWaypoints bool
	WriteEXIF          bool
	OverwriteGPS       bool
	NoChangeMtime      bool

	// Track restricts the search to one track; zero searches all tracks.
	Track layer.ID
}

// Match is a resolved position for one photo.
type Match struct {
	Position geo.LatLon
	Altitude float64
}

// Correlator runs the geotagging batch against one layer. It reads the
// layer's tracks only; waypoint creation is the single mutation and happens
// on the caller's goroutine.
type Correlator struct {
	Layer   *layer.Layer
	Options Options
}

// adjustedTime converts the camera-local capture time to UTC and applies the
// clock-error offset.
func (c *Correlator) adjustedTime(cameraTime float64) float64 {
	zone := float64(c.Options.TimeZoneHours*3600 + c.Options.TimeZoneMins*60)
	return cameraTime - zone + c.Options.TimeOffset
}

// searchTrack finds photoTime on one track: an exact timestamp match wins
// outright; otherwise two adjacent points straddling photoTime yield a
// linear interpolation at the elapsed-time ratio. Segment boundaries are not
// crossed unless configured. Longitude interpolation does not cope with the
// 180th meridian.
func searchTrack(t *track.Track, photoTime float64, interpolateSegments bool) (Match, bool) {
	for i, tp := range t.Points {
		if tp.HasTimestamp() && tp.Timestamp == photoTime {
			return Match{Position: tp.Position, Altitude: tp.Altitude}, true
		}

		if i+1 >= len(t.Points) {
			break
		}
		next := t.Points[i+1]

		if !tp.HasTimestamp() || !next.HasTimestamp() {
			continue
		}
		if tp.Timestamp >= next.Timestamp {
			continue
		}
		if !interpolateSegments && next.NewSegment {
			continue
		}
		if tp.Timestamp > photoTime {
			break
		}

		if photoTime > tp.Timestamp && photoTime < next.Timestamp {
			scale := (photoTime - tp.Timestamp) / (next.Timestamp - tp.Timestamp)

			m := Match{
				Position: geo.LatLon{
					Lat: tp.Position.Lat + (next.Position.Lat-tp.Position.Lat)*scale,
					Lon: tp.Position.Lon + (next.Position.Lon-tp.Position.Lon)*scale,
				},
				Altitude: track.NoValue(),
			}
			if tp.HasAltitude() && next.HasAltitude() {
				m.Altitude = tp.Altitude + (next.Altitude-tp.Altitude)*scale
			}

			return m, true
		}
	}

	return Match{}, false
}

func (c *Correlator) search(photoTime float64) (Match, bool) {
	if c.Options.Track != 0 {
		t := c.Layer.TrackOrRoute(c.Options.Track)
		if t == nil {
			return Match{}, false
		}
		return searchTrack(t, photoTime, c.Options.InterpolateSegments)
	}

	for _, id := range c.Layer.TrackIDs() {
		if m, ok := searchTrack(c.Layer.Track(id), photoTime, c.Options.InterpolateSegments); ok {
			return m, true
		}
	}

	return Match{}, false
}

// placeWaypoint creates (or, when configured, overwrites) the waypoint named
// after the image file.
func (c *Correlator) placeWaypoint(imagePath string, m Match, direction option.Option[float64]) {
	name := filepath.Base(imagePath)

	if c.Options.OverwriteWaypoints {
		if _, wp := c.Layer.WaypointByName(name); wp != nil {
			wp.Position = m.Position
			wp.Altitude = m.Altitude
			wp.Image = imagePath
			wp.ImageDirection = direction
			c.Layer.CalculateWaypointBounds()
			return
		}
	}

	wp := track.NewWaypoint(m.Position)
	wp.Name = name
	wp.Altitude = m.Altitude
	wp.Image = imagePath
	wp.ImageDirection = direction
	c.Layer.AddWaypoint(wp)
}

// ProcessImage correlates a single photo. Returned errors mean the image was
// skipped; the batch carries on regardless.
func (c *Correlator) ProcessImage(path string) error {
	info, err := ReadImageInfo(path)
	if err != nil {
		return err
	}

	// An image that already knows its position is left alone unless
	// overwriting is requested; it may still contribute a waypoint, placed
	// from the embedded position rather than a track search.
	if info.HasGPS && !c.Options.OverwriteGPS {
		if c.Options.CreateWaypoints {
			c.placeWaypoint(path, Match{Position: info.Position, Altitude: info.Altitude}, info.Direction)
			return nil
		}
		return ErrHasGPS
	}

	photoTime := c.adjustedTime(info.Time)

	m, found := c.search(photoTime)
	if !found {
		return ErrNoMatch
	}

	if c.Options.CreateWaypoints {
		c.placeWaypoint(path, m, info.Direction)
	}

	if c.Options.WriteEXIF {
		if err := WriteGPS(path, m.Position, m.Altitude, c.Options.NoChangeMtime); err != nil {
			return err
		}
	}

	return nil
}
