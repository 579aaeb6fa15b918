// Package estimator computes distance, duration and battery usage for an AUV
// mission flown at constant depth through a uniform current.
package estimator

import (
	"fmt"
	"math"

	"github.com/OCAP2/auvplanner/internal/geo"
	"github.com/OCAP2/auvplanner/pkg/core"
)

// Option configures an Estimator.
type Option func(*Estimator)

// WithVerticalProfile replaces the default dive-and-surface vertical model.
func WithVerticalProfile(p VerticalProfile) Option {
	return func(e *Estimator) {
		if p != nil {
			e.profile = p
		}
	}
}

// Estimator is stateless after construction and safe for concurrent use.
type Estimator struct {
	params  Params
	profile VerticalProfile
}

// New creates an Estimator with the given constants.
func New(params Params, opts ...Option) (*Estimator, error) {
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("invalid estimator params: %w", err)
	}
	e := &Estimator{
		params:  params,
		profile: DiveAndSurface{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Default returns an Estimator using DefaultParams.
func Default() *Estimator {
	e, err := New(DefaultParams())
	if err != nil {
		panic(err)
	}
	return e
}

// Params returns the constants in use.
func (e *Estimator) Params() Params {
	return e.params
}

// Breakdown is the unrounded intermediate state of an estimate.
type Breakdown struct {
	TotalDistance     float64 // m
	Kinematics        Kinematics
	HorizontalPowerKw float64
	MissionDuration   float64 // h
	Vertical          Vertical
	BatteryUsage      float64 // kWh
	BatteryRemaining  float64 // kWh
	BatteryNeeded     float64 // kWh
}

// Breakdown runs every stage and returns the raw values.
// The first failing stage aborts with a ValidationError.
func (e *Estimator) Breakdown(in core.MissionInput) (Breakdown, error) {
	if err := Validate(in); err != nil {
		return Breakdown{}, err
	}

	var b Breakdown
	b.TotalDistance = geo.PathLength(in.Waypoints, e.params.EarthRadius)

	k, err := e.Decompose(in)
	if err != nil {
		return Breakdown{}, err
	}
	b.Kinematics = k

	// power from speed through water, duration from speed over ground
	b.HorizontalPowerKw = e.HorizontalPowerKw(in.Speed)
	b.MissionDuration = MissionDurationHours(b.TotalDistance, k.EffectiveSpeed)

	b.Vertical = e.EstimateVertical(in)

	b.BatteryUsage = b.HorizontalPowerKw*b.MissionDuration + b.Vertical.EnergyKwh
	b.BatteryRemaining = in.BatteryCapacity - b.BatteryUsage
	b.BatteryNeeded = math.Max(0, -b.BatteryRemaining)
	return b, nil
}

// Estimate returns the presentation result, rounded to 2 decimals.
func (e *Estimator) Estimate(in core.MissionInput) (core.MissionResult, error) {
	b, err := e.Breakdown(in)
	if err != nil {
		return core.MissionResult{}, err
	}
	return b.Result(), nil
}

// Result rounds the breakdown for display.
func (b Breakdown) Result() core.MissionResult {
	return core.MissionResult{
		TotalDistance:         Round2(b.TotalDistance),
		MissionDuration:       Round2(b.MissionDuration),
		HorizontalPowerKw:     Round2(b.HorizontalPowerKw),
		VerticalPowerKw:       Round2(b.Vertical.PowerKw),
		VerticalEnergyKwh:     Round2(b.Vertical.EnergyKwh),
		BatteryUsageKwh:       Round2(b.BatteryUsage),
		BatteryRemainingKwh:   Round2(b.BatteryRemaining),
		BatteryNeededKwh:      Round2(b.BatteryNeeded),
		EffectiveSpeed:        Round2(b.Kinematics.EffectiveSpeed),
		HeadingDeg:            Round2(degrees(b.Kinematics.Heading)),
		VerticalDurationHours: Round2(b.Vertical.DurationHours),
		Feasible:              b.BatteryRemaining >= 0,
	}
}

// Round2 rounds half away from zero to 2 decimals. Negative zero becomes zero.
func Round2(v float64) float64 {
	r := math.Round(v*100) / 100
	if r == 0 {
		return 0
	}
	return r
}
