package estimator

import (
	"math"

	"github.com/OCAP2/auvplanner/pkg/core"
)

// minEffectiveSpeed absorbs trigonometric rounding when a current exactly
// cancels the vehicle velocity.
const minEffectiveSpeed = 1e-9

// Kinematics is the velocity decomposition for a mission.
type Kinematics struct {
	Heading        float64      // radians from North
	Vehicle        core.Vector2 // through water
	Current        core.Vector2
	Ground         core.Vector2
	EffectiveSpeed float64 // |Ground|, m/s
}

// InitialHeading returns the bearing from a to b in radians from North, using
// a flat-Earth approximation scaled by the given meters per degree.
func InitialHeading(a, b core.Waypoint, mPerDegLon, mPerDegLat float64) float64 {
	dx := (b.Lon - a.Lon) * mPerDegLon
	dy := (b.Lat - a.Lat) * mPerDegLat
	return math.Atan2(dx, dy)
}

// Decompose computes the ground velocity of the vehicle. The heading is taken
// from the first two waypoints only and applied to the whole mission.
func (e *Estimator) Decompose(in core.MissionInput) (Kinematics, error) {
	if len(in.Waypoints) < 2 {
		return Kinematics{}, NewValidationError(MsgInsufficientRoute)
	}

	heading := InitialHeading(in.Waypoints[0], in.Waypoints[1], e.params.MetersPerDegreeLon, e.params.MetersPerDegreeLat)

	k := Kinematics{
		Heading: heading,
		Vehicle: core.FromBearing(in.Speed, heading),
		Current: core.FromBearing(in.CurrentSpeed, radians(in.CurrentDirectionDeg)),
	}
	k.Ground = k.Vehicle.Add(k.Current)
	k.EffectiveSpeed = k.Ground.Norm()

	if !(k.EffectiveSpeed > minEffectiveSpeed) {
		return Kinematics{}, NewValidationError(MsgNoEffectiveSpeed)
	}
	return k, nil
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}

func degrees(rad float64) float64 {
	return rad * 180 / math.Pi
}
