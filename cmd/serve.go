package cmd

import (
	"encoding/json"
	"fmt"
	"html/template"
	"log"
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"gitlab.com/begraf/spur/config"
	"gitlab.com/begraf/spur/gpxfile"
	"gitlab.com/begraf/spur/layer"
	"gitlab.com/begraf/spur/track"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve a GPX file as a browsable map",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("address", "a", "", "Listen address")
}

func runServe(cmd *cobra.Command, args []string) error {
	if !config.HasGPXFile() {
		return fmt.Errorf("no GPX file given, use --gpx or the configuration")
	}

	address, err := cmd.Flags().GetString("address")
	if err != nil {
		panic(err) // Should not happen
	}
	if address == "" {
		address = config.ServeAddress()
	}

	l, err := gpxfile.Load(config.GPXFile())
	if err != nil {
		return err
	}

	r := gin.New()
	r.Use(gin.Recovery())

	api := &serveAPI{layer: l}
	r.GET("/", api.ServeIndex)
	r.GET("/api/layer", api.ServeLayer)
	r.GET("/api/track/:id", api.ServeTrack)

	log.Printf("serving '%s' on http://%s", config.GPXFile(), address)

	if err = r.Run(address); err != nil {
		log.Fatal(err)
	}

	return nil
}

type serveAPI struct {
	layer *layer.Layer
}

// point marshals as a [lat, lon] pair, the shape Leaflet polylines expect.
type point struct {
	lat, lon float64
}

func (p point) MarshalJSON() ([]byte, error) {
	return json.Marshal([]float64{p.lat, p.lon})
}

func trackPoints(t *track.Track) []point {
	points := make([]point, 0, len(t.Points))
	for _, tp := range t.Points {
		points = append(points, point{tp.Position.Lat, tp.Position.Lon})
	}
	return points
}

func (api *serveAPI) ServeLayer(c *gin.Context) {
	type trackEntry struct {
		ID     layer.ID `json:"id"`
		Name   string   `json:"name"`
		Kind   string   `json:"kind"`
		Color  string   `json:"color"`
		Length float64  `json:"length"`
	}
	type waypointEntry struct {
		ID       layer.ID `json:"id"`
		Name     string   `json:"name"`
		LatLng   point    `json:"latlng"`
		Altitude *float64 `json:"altitude"`
	}

	var tracks []trackEntry
	for _, ids := range [][]layer.ID{api.layer.TrackIDs(), api.layer.RouteIDs()} {
		for _, id := range ids {
			t := api.layer.TrackOrRoute(id)
			tracks = append(tracks, trackEntry{
				ID:     id,
				Name:   t.Name,
				Kind:   t.Kind.String(),
				Color:  api.layer.EnsureTrackColor(id),
				Length: t.Length(),
			})
		}
	}

	var waypoints []waypointEntry
	for _, id := range api.layer.WaypointIDs() {
		wp := api.layer.Waypoint(id)
		entry := waypointEntry{
			ID:     id,
			Name:   wp.Name,
			LatLng: point{wp.Position.Lat, wp.Position.Lon},
		}
		if !math.IsNaN(wp.Altitude) {
			alt := wp.Altitude
			entry.Altitude = &alt
		}
		waypoints = append(waypoints, entry)
	}

	c.JSON(http.StatusOK, gin.H{
		"name":      api.layer.Name,
		"tracks":    tracks,
		"waypoints": waypoints,
	})
}

func (api *serveAPI) ServeTrack(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.String(http.StatusNotFound, "not found")
		return
	}

	t := api.layer.TrackOrRoute(layer.ID(id))
	if t == nil {
		c.String(http.StatusNotFound, "not found")
		return
	}

	// One coordinate list per segment, so gaps stay visible on the map.
	var segments [][]point
	start := 0
	for i := 1; i <= len(t.Points); i++ {
		if i == len(t.Points) || t.Points[i].NewSegment {
			segments = append(segments, trackPoints(&track.Track{Points: t.Points[start:i]}))
			start = i
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"name":     t.Name,
		"kind":     t.Kind.String(),
		"color":    api.layer.EnsureTrackColor(layer.ID(id)),
		"segments": segments,
	})
}

func (api *serveAPI) ServeIndex(c *gin.Context) {
	c.Header("Content-Type", "text/html; charset=utf-8")
	if err := indexTemplate.Execute(c.Writer, gin.H{"Title": api.layer.Name}); err != nil {
		_ = c.Error(err)
	}
}

var indexTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <title>{{ .Title }}</title>
  <link rel="stylesheet" href="https://unpkg.com/leaflet@1.9.4/dist/leaflet.css">
  <script src="https://unpkg.com/leaflet@1.9.4/dist/leaflet.js"></script>
  <style>html, body, #map { height: 100%; margin: 0; }</style>
</head>
<body>
  <div id="map"></div>
  <script>
    const map = L.map('map');
    L.tileLayer('https://tile.openstreetmap.org/{z}/{x}/{y}.png', {
      attribution: '&copy; OpenStreetMap contributors'
    }).addTo(map);

    const group = L.featureGroup().addTo(map);

    fetch('/api/layer')
      .then(resp => resp.json())
      .then(layer => {
        for (const wp of layer.waypoints) {
          L.marker(wp.latlng).bindPopup(wp.name).addTo(group);
        }

        const loads = layer.tracks.map(t =>
          fetch('/api/track/' + t.id)
            .then(resp => resp.json())
            .then(data => {
              for (const segment of data.segments) {
                L.polyline(segment, {color: data.color}).bindPopup(t.name).addTo(group);
              }
            }));

        return Promise.all(loads);
      })
      .then(() => {
        const bounds = group.getBounds();
        if (bounds.isValid()) {
          map.fitBounds(bounds);
        } else {
          map.setView([0, 0], 2);
        }
      });
  </script>
</body>
</html>
`))
