package geo

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	geom "github.com/peterstace/simplefeatures/geom"

	"github.com/OCAP2/auvplanner/pkg/core"
)

// ErrInvalidWaypoints is returned when the waypoint list is not a list of [lat, lon] pairs.
var ErrInvalidWaypoints = errors.New("invalid waypoints provided")

// ParseWaypoints parses a JSON array of [lat, lon] pairs.
// Input format: "[[lat1,lon1],[lat2,lon2],...]". An empty string is an empty list.
// The number of waypoints is not checked here.
func ParseWaypoints(input string) ([]core.Waypoint, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return []core.Waypoint{}, nil
	}

	var raw []json.RawMessage
	if err := json.Unmarshal([]byte(input), &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidWaypoints, err)
	}

	wps := make([]core.Waypoint, len(raw))
	for i, r := range raw {
		if err := json.Unmarshal(r, &wps[i]); err != nil {
			return nil, fmt.Errorf("%w: waypoint %d: %v", ErrInvalidWaypoints, i, err)
		}
	}
	return wps, nil
}

// RouteLineString builds a LineString in lon/lat (x/y) order from the waypoints.
func RouteLineString(wps []core.Waypoint) (geom.LineString, error) {
	if len(wps) < 2 {
		return geom.LineString{}, fmt.Errorf("route must have at least 2 points, got %d", len(wps))
	}

	// Build coordinate sequence for LineString
	flatCoords := make([]float64, 0, len(wps)*2)
	for _, wp := range wps {
		flatCoords = append(flatCoords, wp.Lon, wp.Lat)
	}

	seq := geom.NewSequence(flatCoords, geom.DimXY)
	ls, err := geom.NewLineString(seq)
	if err != nil {
		return geom.LineString{}, fmt.Errorf("invalid route geometry: %w", err)
	}
	return ls, nil
}

// RouteGeoJSON returns the route as a GeoJSON LineString geometry.
func RouteGeoJSON(wps []core.Waypoint) (json.RawMessage, error) {
	ls, err := RouteLineString(wps)
	if err != nil {
		return nil, err
	}
	data, err := ls.AsGeometry().MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("failed to marshal route: %w", err)
	}
	return data, nil
}
