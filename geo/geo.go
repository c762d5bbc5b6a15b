package geo

import "math"

type LatLon struct {
	Lat, Lon float64
}

// Distance in km to another location (only considering lat and lon).
func (p1 LatLon) Distance(p2 LatLon) float64 {
	radlat1 := math.Pi * p1.Lat / 180
	radlat2 := math.Pi * p2.Lat / 180

	theta := p1.Lon - p2.Lon
	radtheta := math.Pi * theta / 180

	dist := math.Sin(radlat1)*math.Sin(radlat2) + math.Cos(radlat1)*math.Cos(radlat2)*math.Cos(radtheta)
	if dist > 1 {
		dist = 1
	}

	dist = math.Acos(dist)
	dist = dist * 180 / math.Pi
	dist = dist * 60 * 1.1515
	dist = dist * 1.609344

	return dist
}

// Bounds is a geographic bounding box. The zero value is empty.
type Bounds struct {
	North, South, East, West float64
	valid                    bool
}

func (b *Bounds) Valid() bool {
	return b.valid
}

func (b *Bounds) Extend(p LatLon) {
	if !b.valid {
		b.North, b.South = p.Lat, p.Lat
		b.East, b.West = p.Lon, p.Lon
		b.valid = true
		return
	}

	if p.Lat > b.North {
		b.North = p.Lat
	}
	if p.Lat < b.South {
		b.South = p.Lat
	}
	if p.Lon > b.East {
		b.East = p.Lon
	}
	if p.Lon < b.West {
		b.West = p.Lon
	}
}

func (b *Bounds) Contains(p LatLon) bool {
	return b.valid &&
		p.Lat <= b.North && p.Lat >= b.South &&
		p.Lon <= b.East && p.Lon >= b.West
}

func (b *Bounds) Intersects(o *Bounds) bool {
	if !b.valid || !o.valid {
		return false
	}

	return b.South <= o.North && o.South <= b.North &&
		b.West <= o.East && o.West <= b.East
}

// ContainsBounds reports whether o lies entirely within b.
func (b *Bounds) ContainsBounds(o *Bounds) bool {
	if !b.valid || !o.valid {
		return false
	}

	return o.North <= b.North && o.South >= b.South &&
		o.East <= b.East && o.West >= b.West
}
