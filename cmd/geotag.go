package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"
	"gitlab.com/begraf/spur/config"
	"gitlab.com/begraf/spur/geotag"
	"gitlab.com/begraf/spur/gpxfile"
	"gitlab.com/begraf/spur/layer"
	"gitlab.com/begraf/spur/worker"
)

// geotagCmd represents the geotag command
var geotagCmd = &cobra.Command{
	Use:   "geotag [IMAGES-OR-DIRECTORIES...]",
	Short: "Assign track positions to photos by capture time",
	Long: `Matches the EXIF capture timestamps of the given photos against the
trackpoints of a GPX file and marks each photo's position as a waypoint,
optionally writing the position back into the photo's EXIF data.`,
	RunE: runGeotag,
}

func init() {
	rootCmd.AddCommand(geotagCmd)

	geotagCmd.Flags().StringP("output", "o", "", "Write resulting layer to this GPX file")
	geotagCmd.Flags().StringP("track", "t", "", "Restrict the search to one track or route by name")
	geotagCmd.Flags().Int("tz-hours", 0, "Camera timezone offset to UTC, hours part")
	geotagCmd.Flags().Int("tz-mins", 0, "Camera timezone offset to UTC, minutes part")
	geotagCmd.Flags().Float64("offset", 0, "Camera clock error in seconds")
	geotagCmd.Flags().Bool("interpolate-segments", false, "Interpolate across segment boundaries")
	geotagCmd.Flags().Bool("waypoints", true, "Create a waypoint per matched photo")
	geotagCmd.Flags().Bool("overwrite-waypoints", false, "Update waypoints of the same name instead of adding new ones")
	geotagCmd.Flags().Bool("write-exif", false, "Write matched positions into the photos' EXIF data")
	geotagCmd.Flags().Bool("overwrite-gps", false, "Also tag photos that already carry a GPS position")
	geotagCmd.Flags().Bool("keep-mtime", false, "Restore photo modification times after writing EXIF data")
}

func runGeotag(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("image files or directories required")
	}
	if !config.HasGPXFile() {
		return fmt.Errorf("no GPX file given, use --gpx or the configuration")
	}

	opts := geotag.Options{}
	opts.TimeZoneHours, _ = cmd.Flags().GetInt("tz-hours")
	opts.TimeZoneMins, _ = cmd.Flags().GetInt("tz-mins")
	opts.TimeOffset, _ = cmd.Flags().GetFloat64("offset")
	opts.InterpolateSegments, _ = cmd.Flags().GetBool("interpolate-segments")
	opts.CreateWaypoints, _ = cmd.Flags().GetBool("waypoints")
	opts.OverwriteWaypoints, _ = cmd.Flags().GetBool("overwrite-waypoints")
	opts.WriteEXIF, _ = cmd.Flags().GetBool("write-exif")
	opts.OverwriteGPS, _ = cmd.Flags().GetBool("overwrite-gps")
	keepMtime, _ := cmd.Flags().GetBool("keep-mtime")
	opts.NoChangeMtime = keepMtime

	trackName, err := cmd.Flags().GetString("track")
	if err != nil {
		panic(err) // Should not happen
	}

	output, err := cmd.Flags().GetString("output")
	if err != nil {
		panic(err) // Should not happen
	}

	l, err := gpxfile.Load(config.GPXFile())
	if err != nil {
		return err
	}

	if trackName != "" {
		id := trackOrRouteByName(l, trackName)
		if id == 0 {
			return fmt.Errorf("no track or route named '%s'", trackName)
		}
		opts.Track = id
	}

	files, err := gatherImageFiles(args, []string{".jpeg", ".jpg"})
	if err != nil {
		return fmt.Errorf("scanning files: %w", err)
	} else if len(files) == 0 {
		return fmt.Errorf("no files")
	}

	// Writing EXIF modifies the photos in place, so ask first.
	if opts.WriteEXIF {
		prompt := &survey.Confirm{
			Message: fmt.Sprintf("Write GPS positions into %d photo(s)", len(files)),
			Default: false,
		}

		var shouldContinue bool
		if err := survey.AskOne(prompt, &shouldContinue, nil); err != nil {
			return err
		}
		if !shouldContinue {
			return nil
		}
	}

	correlator := &geotag.Correlator{
		Layer:   l,
		Options: opts,
	}

	batch := worker.Batch[string]{
		Items: files,
		Process: func(path string) error {
			err := correlator.ProcessImage(path)
			switch {
			case errors.Is(err, geotag.ErrNoMatch):
				log.Printf("no match for '%s'", path)
			case errors.Is(err, geotag.ErrHasGPS):
				log.Printf("skipping '%s': already has a position", path)
			case err != nil:
				log.Printf("failed on '%s': %s", path, err)
			}
			return err
		},
		Progress: func(fraction float64) {
			fmt.Fprintf(os.Stderr, "\r%3.0f%%", fraction*100)
		},
		Done: func(processed, failed int) {
			fmt.Fprintln(os.Stderr)
			log.Printf("geotag: %d matched, %d skipped", processed, failed)
		},
	}

	batch.Run(context.Background())

	if output != "" {
		if err := gpxfile.Save(l, output); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		log.Printf("wrote '%s'", output)
	}

	return nil
}

func trackOrRouteByName(l *layer.Layer, name string) layer.ID {
	for _, id := range l.TrackIDs() {
		if l.Track(id).Name == name {
			return id
		}
	}
	for _, id := range l.RouteIDs() {
		if l.Route(id).Name == name {
			return id
		}
	}
	return 0
}
