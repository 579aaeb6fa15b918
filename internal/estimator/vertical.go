package estimator

import (
	"math"

	"github.com/OCAP2/auvplanner/pkg/core"
)

// VerticalProfile computes the total vertical distance travelled on a mission.
type VerticalProfile interface {
	VerticalDistance(in core.MissionInput) float64
}

// VerticalProfileFunc adapts a function to VerticalProfile.
type VerticalProfileFunc func(in core.MissionInput) float64

// VerticalDistance calls f(in).
func (f VerticalProfileFunc) VerticalDistance(in core.MissionInput) float64 {
	return f(in)
}

// DiveAndSurface descends once to the mission depth and ascends once at the end.
// Depth is constant across all waypoints.
type DiveAndSurface struct{}

// VerticalDistance returns 2 x depth.
func (DiveAndSurface) VerticalDistance(in core.MissionInput) float64 {
	return 2 * in.Depth
}

// Vertical holds the dive and ascent estimate.
type Vertical struct {
	BuoyantForce    float64 // N
	EffectiveWeight float64 // N
	DragForce       float64 // N
	PowerKw         float64
	Distance        float64 // m
	DurationHours   float64
	EnergyKwh       float64
}

// BuoyantForce returns the upward force of the displaced volume, zero when no volume is given.
func (e *Estimator) BuoyantForce(volume float64) float64 {
	if volume <= 0 {
		return 0
	}
	return e.params.SeawaterDensity * volume * e.params.Gravity
}

// EstimateVertical computes power, duration and energy for the vertical legs.
func (e *Estimator) EstimateVertical(in core.MissionInput) Vertical {
	p := e.params
	v := Vertical{BuoyantForce: e.BuoyantForce(in.Volume)}
	v.EffectiveWeight = math.Max(in.Weight*p.Gravity-v.BuoyantForce, 0)
	v.DragForce = 0.5 * p.SeawaterDensity * p.VerticalSpeed * p.VerticalSpeed * p.VerticalDragCoeff * p.VerticalFrontalArea
	v.PowerKw = (v.EffectiveWeight + v.DragForce) * p.VerticalSpeed / 1000

	v.Distance = e.profile.VerticalDistance(in)
	v.DurationHours = v.Distance / p.VerticalSpeed / 3600
	v.EnergyKwh = v.PowerKw * v.DurationHours
	return v
}
