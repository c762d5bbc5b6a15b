package cmd

import (
	"fmt"
	"math"
	"time"

	"github.com/goodsign/monday"
	"github.com/spf13/cobra"
	"gitlab.com/begraf/spur/config"
	"gitlab.com/begraf/spur/gpxfile"
	"gitlab.com/begraf/spur/track"
)

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the tracks, routes and waypoints of a GPX file",
	RunE:  runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	if !config.HasGPXFile() {
		return fmt.Errorf("no GPX file given, use --gpx or the configuration")
	}

	l, err := gpxfile.Load(config.GPXFile())
	if err != nil {
		return err
	}

	locale := monday.Locale(config.ListLocale())

	if ids := l.TrackIDs(); len(ids) > 0 {
		fmt.Println("Tracks:")
		for _, id := range ids {
			t := l.Track(id)
			fmt.Printf("  %3d  %-40s %8.2f km  %s\n", id, t.Name, t.Length(), trackDate(t, locale))
		}
	}

	if ids := l.RouteIDs(); len(ids) > 0 {
		fmt.Println("Routes:")
		for _, id := range ids {
			r := l.Route(id)
			fmt.Printf("  %3d  %-40s %8.2f km\n", id, r.Name, r.Length())
		}
	}

	if ids := l.WaypointIDs(); len(ids) > 0 {
		fmt.Println("Waypoints:")
		for _, id := range ids {
			wp := l.Waypoint(id)
			fmt.Printf("  %3d  %-40s %9.5f %9.5f\n", id, wp.Name, wp.Position.Lat, wp.Position.Lon)
		}
	}

	return nil
}

func trackDate(t *track.Track, locale monday.Locale) string {
	if !t.HasTimestamps() {
		return ""
	}

	ts := t.Points[0].Timestamp
	if math.IsNaN(ts) {
		return ""
	}

	return monday.Format(time.Unix(int64(ts), 0).UTC(), "Monday, 2. January 2006", locale)
}
