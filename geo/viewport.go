package geo

// Viewport maps geographic coordinates onto a pixel grid using a plain
// equirectangular projection around a center coordinate. It stands in for
// whatever rendering surface drives the hit-testing queries.
type Viewport struct {
	Center          LatLon
	PixelsPerDegree float64
	Width, Height   int
}

func NewViewport(center LatLon, pixelsPerDegree float64, width, height int) *Viewport {
	return &Viewport{
		Center:          center,
		PixelsPerDegree: pixelsPerDegree,
		Width:           width,
		Height:          height,
	}
}

func (v *Viewport) ToScreen(p LatLon) (x, y int) {
	fx := float64(v.Width)/2 + (p.Lon-v.Center.Lon)*v.PixelsPerDegree
	fy := float64(v.Height)/2 - (p.Lat-v.Center.Lat)*v.PixelsPerDegree
	return int(fx + 0.5), int(fy + 0.5)
}

func (v *Viewport) ToLatLon(x, y int) LatLon {
	return LatLon{
		Lat: v.Center.Lat - (float64(y)-float64(v.Height)/2)/v.PixelsPerDegree,
		Lon: v.Center.Lon + (float64(x)-float64(v.Width)/2)/v.PixelsPerDegree,
	}
}

// Bounds returns the geographic extent currently visible.
func (v *Viewport) Bounds() *Bounds {
	var b Bounds
	b.Extend(v.ToLatLon(0, 0))
	b.Extend(v.ToLatLon(v.Width, v.Height))
	return &b
}
