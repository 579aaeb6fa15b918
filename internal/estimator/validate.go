package estimator

import (
	"math"

	"github.com/OCAP2/auvplanner/pkg/core"
)

// Validate checks the scalar bounds of in, then the waypoint count.
func Validate(in core.MissionInput) error {
	if err := ValidateScalars(in); err != nil {
		return err
	}
	if len(in.Waypoints) < 2 {
		return NewValidationError(MsgInsufficientRoute)
	}
	return nil
}

// ValidateScalars checks the numeric fields only. They share one guard and
// one message. Waypoints are ignored, so callers decoding raw input run it
// before parsing the route.
func ValidateScalars(in core.MissionInput) error {
	if !finite(in.Depth, in.Speed, in.BatteryCapacity, in.Weight, in.Volume, in.CurrentSpeed, in.CurrentDirectionDeg) ||
		in.Depth < 0 || in.Speed <= 0 || in.BatteryCapacity <= 0 || in.CurrentSpeed < 0 || in.Weight <= 0 {
		return NewValidationError(MsgInvalidInput)
	}
	return nil
}

func finite(values ...float64) bool {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
