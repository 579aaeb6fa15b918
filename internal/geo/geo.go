package geo

import (
	"math"

	"github.com/wroge/wgs84"
	"gonum.org/v1/gonum/floats"

	"github.com/OCAP2/auvplanner/pkg/core"
)

// EarthRadius is the mean Earth radius in meters used for great-circle distances.
const EarthRadius = 6371000.0

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}

// Haversine returns the great-circle distance in meters between two positions
// given in decimal degrees, on a sphere of the given radius.
func Haversine(lat1, lon1, lat2, lon2, radius float64) float64 {
	phi1, phi2 := radians(lat1), radians(lat2)
	dPhi := radians(lat2 - lat1)
	dLambda := radians(lon2 - lon1)

	a := math.Pow(math.Sin(dPhi/2), 2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Pow(math.Sin(dLambda/2), 2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return radius * c
}

// SegmentLengths returns the haversine length of each consecutive waypoint pair, in input order.
func SegmentLengths(wps []core.Waypoint, radius float64) []float64 {
	if len(wps) < 2 {
		return nil
	}
	segments := make([]float64, len(wps)-1)
	for i := 0; i < len(wps)-1; i++ {
		segments[i] = Haversine(wps[i].Lat, wps[i].Lon, wps[i+1].Lat, wps[i+1].Lon, radius)
	}
	return segments
}

// PathLength sums the segment lengths of the route.
func PathLength(wps []core.Waypoint, radius float64) float64 {
	segments := SegmentLengths(wps, radius)
	if len(segments) == 0 {
		return 0
	}
	return floats.Sum(segments)
}

// WebMercator projects the waypoints from EPSG:4326 to EPSG:3857 for map clients.
// The result is in [x, y] meters.
func WebMercator(wps []core.Waypoint) [][2]float64 {
	f := wgs84.EPSG().Transform(4326, 3857)
	out := make([][2]float64, len(wps))
	for i, wp := range wps {
		x, y, _ := f(wp.Lon, wp.Lat, 0)
		out[i] = [2]float64{x, y}
	}
	return out
}
