package routing

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"gitlab.com/begraf/spur/geo"
)

// OSRM queries an OSRM-compatible routing service.
type OSRM struct {
	BaseURL string
	Profile string
	Client  *http.Client
}

func NewOSRM(baseURL string) *OSRM {
	return &OSRM{
		BaseURL: baseURL,
		Profile: "foot",
		Client:  &http.Client{Timeout: 30 * time.Second},
	}
}

type osrmResponse struct {
	Code   string `json:"code"`
	Routes []struct {
		Geometry struct {
			Coordinates [][]float64 `json:"coordinates"`
		} `json:"geometry"`
	} `json:"routes"`
}

func (o *OSRM) FindRoute(ctx context.Context, from, to geo.LatLon) ([]geo.LatLon, error) {
	url := fmt.Sprintf(
		"%s/route/v1/%s/%f,%f;%f,%f?overview=full&geometries=geojson",
		o.BaseURL, o.Profile, from.Lon, from.Lat, to.Lon, to.Lat,
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := o.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("route query: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("route query: unexpected status %s", resp.Status)
	}

	var body osrmResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("route response: %w", err)
	}

	if body.Code != "Ok" || len(body.Routes) == 0 {
		return nil, fmt.Errorf("route response: no route (code %q)", body.Code)
	}

	points := make([]geo.LatLon, 0, len(body.Routes[0].Geometry.Coordinates))
	for _, c := range body.Routes[0].Geometry.Coordinates {
		if len(c) < 2 {
			continue
		}
		points = append(points, geo.LatLon{Lat: c[1], Lon: c[0]})
	}

	return points, nil
}
