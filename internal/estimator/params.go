package estimator

import (
	"fmt"
	"math"
)

// Params holds the physical constants of the model.
type Params struct {
	// Seawater density, kg/m^3.
	SeawaterDensity float64 `json:"seawaterDensity" mapstructure:"seawaterDensity"`
	// Horizontal drag coefficient and frontal area (m^2).
	DragCoefficient float64 `json:"dragCoefficient" mapstructure:"dragCoefficient"`
	FrontalArea     float64 `json:"frontalArea" mapstructure:"frontalArea"`
	// Fraction of electrical power turned into thrust, in (0, 1].
	PropulsionEfficiency float64 `json:"propulsionEfficiency" mapstructure:"propulsionEfficiency"`
	// Vertical drag coefficient and frontal area (m^2).
	VerticalDragCoeff   float64 `json:"verticalDragCoefficient" mapstructure:"verticalDragCoefficient"`
	VerticalFrontalArea float64 `json:"verticalFrontalArea" mapstructure:"verticalFrontalArea"`
	Gravity             float64 `json:"gravity" mapstructure:"gravity"`
	// Constant dive and ascent rate, m/s.
	VerticalSpeed float64 `json:"verticalSpeed" mapstructure:"verticalSpeed"`
	EarthRadius   float64 `json:"earthRadius" mapstructure:"earthRadius"`
	// Flat-Earth scale factors used for the initial heading.
	MetersPerDegreeLon float64 `json:"metersPerDegreeLon" mapstructure:"metersPerDegreeLon"`
	MetersPerDegreeLat float64 `json:"metersPerDegreeLat" mapstructure:"metersPerDegreeLat"`
}

// DefaultParams returns the reference constants.
func DefaultParams() Params {
	return Params{
		SeawaterDensity:      1025,
		DragCoefficient:      0.6,
		FrontalArea:          0.2,
		PropulsionEfficiency: 0.5,
		VerticalDragCoeff:    0.7,
		VerticalFrontalArea:  0.15,
		Gravity:              9.81,
		VerticalSpeed:        0.1,
		EarthRadius:          6371000,
		MetersPerDegreeLon:   111320,
		MetersPerDegreeLat:   110540,
	}
}

// Validate checks that every constant is finite and positive, and that
// efficiency does not exceed 1.
func (p Params) Validate() error {
	fields := []struct {
		name  string
		value float64
	}{
		{"seawaterDensity", p.SeawaterDensity},
		{"dragCoefficient", p.DragCoefficient},
		{"frontalArea", p.FrontalArea},
		{"propulsionEfficiency", p.PropulsionEfficiency},
		{"verticalDragCoefficient", p.VerticalDragCoeff},
		{"verticalFrontalArea", p.VerticalFrontalArea},
		{"gravity", p.Gravity},
		{"verticalSpeed", p.VerticalSpeed},
		{"earthRadius", p.EarthRadius},
		{"metersPerDegreeLon", p.MetersPerDegreeLon},
		{"metersPerDegreeLat", p.MetersPerDegreeLat},
	}
	for _, f := range fields {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) || f.value <= 0 {
			return fmt.Errorf("physics parameter %s must be positive, got %v", f.name, f.value)
		}
	}
	if p.PropulsionEfficiency > 1 {
		return fmt.Errorf("physics parameter propulsionEfficiency must not exceed 1, got %v", p.PropulsionEfficiency)
	}
	return nil
}
