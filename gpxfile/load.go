// Package gpxfile moves layers in and out of GPX files. Format details are
// delegated to tkrajina/gpxgo; this package only maps between the GPX
// document shape and the layer model.
package gpxfile

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/tkrajina/gpxgo/gpx"
	"gitlab.com/begraf/spur/geo"
	"gitlab.com/begraf/spur/layer"
	"gitlab.com/begraf/spur/track"
)

func pointFromGPX(p gpx.GPXPoint) *track.Trackpoint {
	tp := track.NewTrackpoint(geo.LatLon{Lat: p.Latitude, Lon: p.Longitude})

	if p.Elevation.NotNull() {
		tp.Altitude = p.Elevation.Value()
	}
	if !p.Timestamp.IsZero() {
		tp.Timestamp = float64(p.Timestamp.Unix())
	}
	tp.Name = p.Name

	return tp
}

// Load reads a GPX file into a fresh layer named after the file. Loading
// bypasses the unique-name helper on purpose: files may legitimately carry
// duplicate names.
func Load(path string) (*layer.Layer, error) {
	doc, err := gpx.ParseFile(path)
	if err != nil {
		return nil, fmt.Errorf("read GPX file '%s': %w", path, err)
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	l := layer.New(name)

	for _, gt := range doc.Tracks {
		t := track.New(track.KindTrack)
		t.Name = gt.Name
		t.Comment = gt.Comment
		t.Description = gt.Description
		t.Source = gt.Source
		t.Number = gt.Number.Value()

		for si, seg := range gt.Segments {
			for pi, p := range seg.Points {
				tp := pointFromGPX(p)
				tp.NewSegment = si > 0 && pi == 0
				t.Points = append(t.Points, tp)
			}
		}

		t.CalculateBounds()
		l.AddTrack(t)
	}

	for _, gr := range doc.Routes {
		r := track.New(track.KindRoute)
		r.Name = gr.Name
		r.Comment = gr.Comment
		r.Description = gr.Description
		r.Number = gr.Number.Value()

		for _, p := range gr.Points {
			r.Points = append(r.Points, pointFromGPX(p))
		}

		r.CalculateBounds()
		l.AddRoute(r)
	}

	for _, gw := range doc.Waypoints {
		wp := track.NewWaypoint(geo.LatLon{Lat: gw.Latitude, Lon: gw.Longitude})
		wp.Name = gw.Name
		wp.Comment = gw.Comment
		wp.Description = gw.Description
		wp.Source = gw.Source
		wp.Type = gw.Type
		wp.Symbol = gw.Symbol
		if gw.Elevation.NotNull() {
			wp.Altitude = gw.Elevation.Value()
		}
		if !gw.Timestamp.IsZero() {
			wp.Timestamp = float64(gw.Timestamp.Unix())
		}

		l.AddWaypoint(wp)
	}

	return l, nil
}
