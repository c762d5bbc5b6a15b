package geotag

import (
	"errors"
	"fmt"
	"math"
	"os"
	"os/exec"
	"time"

	"github.com/rwcarlsen/goexif/exif"
	"gitlab.com/begraf/spur/filesystem"
	"gitlab.com/begraf/spur/geo"
	"gitlab.com/begraf/spur/option"
	"gitlab.com/begraf/spur/track"
)

var ErrNoTimestamp = errors.New("image carries no capture timestamp")

const exifTimeLayout = "2006:01:02 15:04:05"

// ImageInfo is what the correlator needs to know about one photo.
type ImageInfo struct {
	// Time is the capture timestamp as unix seconds of the camera's local
	// clock, i.e. not yet adjusted for timezone or clock error.
	Time float64

	HasGPS   bool
	Position geo.LatLon // valid when HasGPS
	Altitude float64    // NaN when absent

	// Direction the camera pointed at capture time, in degrees.
	Direction option.Option[float64]
}

// ReadImageInfo extracts the capture timestamp and any embedded GPS position
// from an image file's EXIF block.
func ReadImageInfo(path string) (*ImageInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open image '%s': %w", path, err)
	}
	defer f.Close()

	x, err := exif.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("read EXIF of '%s': %w", path, err)
	}

	info := &ImageInfo{
		Time:     track.NoValue(),
		Altitude: track.NoValue(),
	}

	if tag, err := x.Get(exif.DateTimeOriginal); err == nil {
		if s, err := tag.StringVal(); err == nil {
			// Parsed as UTC on purpose; the correlator applies the
			// configured timezone afterwards.
			if t, err := time.Parse(exifTimeLayout, s); err == nil {
				info.Time = float64(t.Unix())
			}
		}
	}

	if lat, lon, err := x.LatLong(); err == nil {
		info.HasGPS = true
		info.Position = geo.LatLon{Lat: lat, Lon: lon}
	}

	if tag, err := x.Get(exif.GPSImgDirection); err == nil {
		if num, den, err := tag.Rat2(0); err == nil && den != 0 {
			info.Direction = option.Some(float64(num) / float64(den))
		}
	}

	if math.IsNaN(info.Time) {
		return nil, ErrNoTimestamp
	}

	return info, nil
}

// WriteGPS writes a position (and optional altitude) into the image's EXIF
// GPS IFD in place, via exiftool. With preserveMtime the file's modification
// time is restored exactly afterwards, so the rewrite stays invisible to
// mtime-based tools.
func WriteGPS(path string, pos geo.LatLon, altitude float64, preserveMtime bool) error {
	var before os.FileInfo
	if preserveMtime {
		var err error
		before, err = os.Stat(path)
		if err != nil {
			return fmt.Errorf("stat '%s': %w", path, err)
		}
	}

	latRef, lonRef := "N", "E"
	if pos.Lat < 0 {
		latRef = "S"
	}
	if pos.Lon < 0 {
		lonRef = "W"
	}

	args := []string{
		"-overwrite_original",
		fmt.Sprintf("-GPSLatitude=%.8f", math.Abs(pos.Lat)),
		"-GPSLatitudeRef=" + latRef,
		fmt.Sprintf("-GPSLongitude=%.8f", math.Abs(pos.Lon)),
		"-GPSLongitudeRef=" + lonRef,
	}
	if !math.IsNaN(altitude) {
		args = append(args,
			fmt.Sprintf("-GPSAltitude=%.3f", math.Abs(altitude)),
			"-GPSAltitudeRef=0",
		)
	}
	args = append(args, path)

	if err := exec.Command("exiftool", args...).Run(); err != nil {
		return fmt.Errorf("exiftool on '%s': %w", path, err)
	}

	if preserveMtime {
		if err := filesystem.RestoreTimes(path, before); err != nil {
			return fmt.Errorf("restore mtime of '%s': %w", path, err)
		}
	}

	return nil
}
