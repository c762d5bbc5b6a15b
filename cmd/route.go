package cmd

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"gitlab.com/begraf/spur/config"
	"gitlab.com/begraf/spur/geo"
	"gitlab.com/begraf/spur/gpxfile"
	"gitlab.com/begraf/spur/layer"
	"gitlab.com/begraf/spur/routing"
	"gitlab.com/begraf/spur/track"
)

// routeCmd represents the route command
var routeCmd = &cobra.Command{
	Use:   "route LAT,LON LAT,LON...",
	Short: "Plan a route along the given coordinates",
	Long: `Queries the configured routing service for a route passing through
the given coordinates in order and appends it as a new route to the GPX file
given with --gpx, or writes a fresh file when --output is given instead.`,
	RunE: runRoute,
}

func init() {
	rootCmd.AddCommand(routeCmd)

	routeCmd.Flags().StringP("output", "o", "", "Write to this GPX file instead of the input")
	routeCmd.Flags().StringP("name", "n", "", "Name of the new route")
	routeCmd.Flags().String("profile", "foot", "Routing profile")
}

func runRoute(cmd *cobra.Command, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("at least two coordinates required")
	}

	coords := make([]geo.LatLon, 0, len(args))
	for _, arg := range args {
		pos, err := parseLatLon(arg)
		if err != nil {
			return err
		}
		coords = append(coords, pos)
	}

	output, err := cmd.Flags().GetString("output")
	if err != nil {
		panic(err) // Should not happen
	}

	var l *layer.Layer
	switch {
	case config.HasGPXFile():
		if l, err = gpxfile.Load(config.GPXFile()); err != nil {
			return err
		}
		if output == "" {
			output = config.GPXFile()
		}
	case output != "":
		l = layer.New(strings.TrimSuffix(output, ".gpx"))
	default:
		return fmt.Errorf("no GPX file given, use --gpx or --output")
	}

	router := routing.NewOSRM(config.RoutingURL())
	if profile, _ := cmd.Flags().GetString("profile"); profile != "" {
		router.Profile = profile
	}

	r := track.New(track.KindRoute)
	if name, _ := cmd.Flags().GetString("name"); name != "" {
		r.Name = name
	} else {
		r.Name = l.NewUniqueName(track.KindRoute, "Route")
	}

	ctx := context.Background()
	for i := 0; i+1 < len(coords); i++ {
		points, err := router.FindRoute(ctx, coords[i], coords[i+1])
		if err != nil {
			return fmt.Errorf("leg %d: %w", i+1, err)
		}
		for _, pos := range points {
			r.Points = append(r.Points, track.NewTrackpoint(pos))
		}
	}

	r.RemoveDupPoints()
	r.CalculateBounds()
	l.AddRoute(r)

	if err := gpxfile.Save(l, output); err != nil {
		return err
	}

	fmt.Printf("route '%s': %d points, %.2f km, written to '%s'\n", r.Name, len(r.Points), r.Length(), output)

	return nil
}

func parseLatLon(s string) (geo.LatLon, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return geo.LatLon{}, fmt.Errorf("coordinate '%s' not of the form LAT,LON", s)
	}

	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return geo.LatLon{}, fmt.Errorf("coordinate '%s': %w", s, err)
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return geo.LatLon{}, fmt.Errorf("coordinate '%s': %w", s, err)
	}

	return geo.LatLon{Lat: lat, Lon: lon}, nil
}
