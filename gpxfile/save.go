package gpxfile

import (
	"fmt"
	"math"
	"os"
	"time"

	"github.com/tkrajina/gpxgo/gpx"
	"gitlab.com/begraf/spur/layer"
	"gitlab.com/begraf/spur/track"
)

func pointToGPX(tp *track.Trackpoint) gpx.GPXPoint {
	p := gpx.GPXPoint{
		Point: gpx.Point{
			Latitude:  tp.Position.Lat,
			Longitude: tp.Position.Lon,
		},
		Name: tp.Name,
	}

	if tp.HasAltitude() {
		p.Elevation = *gpx.NewNullableFloat64(tp.Altitude)
	}
	if tp.HasTimestamp() {
		p.Timestamp = time.Unix(int64(tp.Timestamp), 0).UTC()
	}

	return p
}

// Save writes the layer to path as GPX 1.1. The file is written to a
// temporary sibling first and renamed into place, so a failed write never
// clobbers an existing file.
func Save(l *layer.Layer, path string) error {
	doc := &gpx.GPX{
		Creator: "spur",
	}

	for _, id := range l.TrackIDs() {
		t := l.Track(id)

		gt := gpx.GPXTrack{
			Name:        t.Name,
			Comment:     t.Comment,
			Description: t.Description,
			Source:      t.Source,
		}

		var seg gpx.GPXTrackSegment
		for i, tp := range t.Points {
			if tp.NewSegment && i > 0 {
				gt.Segments = append(gt.Segments, seg)
				seg = gpx.GPXTrackSegment{}
			}
			seg.Points = append(seg.Points, pointToGPX(tp))
		}
		if len(seg.Points) > 0 || len(gt.Segments) == 0 {
			gt.Segments = append(gt.Segments, seg)
		}

		doc.Tracks = append(doc.Tracks, gt)
	}

	for _, id := range l.RouteIDs() {
		r := l.Route(id)

		gr := gpx.GPXRoute{
			Name:        r.Name,
			Comment:     r.Comment,
			Description: r.Description,
		}
		for _, tp := range r.Points {
			gr.Points = append(gr.Points, pointToGPX(tp))
		}

		doc.Routes = append(doc.Routes, gr)
	}

	for _, id := range l.WaypointIDs() {
		wp := l.Waypoint(id)

		p := gpx.GPXPoint{
			Point: gpx.Point{
				Latitude:  wp.Position.Lat,
				Longitude: wp.Position.Lon,
			},
			Name:        wp.Name,
			Comment:     wp.Comment,
			Description: wp.Description,
			Source:      wp.Source,
			Type:        wp.Type,
			Symbol:      wp.Symbol,
		}
		if !math.IsNaN(wp.Altitude) {
			p.Elevation = *gpx.NewNullableFloat64(wp.Altitude)
		}
		if !math.IsNaN(wp.Timestamp) {
			p.Timestamp = time.Unix(int64(wp.Timestamp), 0).UTC()
		}

		doc.Waypoints = append(doc.Waypoints, p)
	}

	payload, err := doc.ToXml(gpx.ToXmlParams{Version: "1.1", Indent: true})
	if err != nil {
		return fmt.Errorf("serialize GPX: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, payload, 0644); err != nil {
		return fmt.Errorf("write GPX file '%s': %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename GPX file: %w", err)
	}

	return nil
}
