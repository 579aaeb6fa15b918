// pkg/core/mission.go
package core

import (
	"encoding/json"
	"fmt"
)

// Waypoint is a geographic position in decimal degrees.
type Waypoint struct {
	Lat float64
	Lon float64
}

// MarshalJSON encodes the waypoint as a [lat, lon] pair.
func (w Waypoint) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]float64{w.Lat, w.Lon})
}

// UnmarshalJSON decodes a [lat, lon] pair. Anything other than exactly two numbers is rejected.
func (w *Waypoint) UnmarshalJSON(data []byte) error {
	var pair []float64
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("waypoint must be a [lat, lon] pair: %w", err)
	}
	if len(pair) != 2 {
		return fmt.Errorf("waypoint must be a [lat, lon] pair, got %d values", len(pair))
	}
	w.Lat, w.Lon = pair[0], pair[1]
	return nil
}

// MissionInput holds the vehicle and environment parameters for one estimate.
// Volume, CurrentSpeed and CurrentDirectionDeg default to zero.
type MissionInput struct {
	Depth               float64    `json:"depth"`            // m
	Speed               float64    `json:"speed"`            // m/s through water
	BatteryCapacity     float64    `json:"batteryCapacity"`  // kWh
	Weight              float64    `json:"weight"`           // kg
	Volume              float64    `json:"volume"`           // m^3
	CurrentSpeed        float64    `json:"currentSpeed"`     // m/s
	CurrentDirectionDeg float64    `json:"currentDirection"` // degrees from North
	Waypoints           []Waypoint `json:"waypoints"`
}

// MissionResult is the outcome of a feasibility estimate.
type MissionResult struct {
	TotalDistance       float64 `json:"totalDistance"`   // m
	MissionDuration     float64 `json:"missionDuration"` // h
	HorizontalPowerKw   float64 `json:"horizontalPowerKw"`
	VerticalPowerKw     float64 `json:"verticalPowerKw"`
	VerticalEnergyKwh   float64 `json:"verticalEnergyKwh"`
	BatteryUsageKwh     float64 `json:"batteryUsageKwh"`
	BatteryRemainingKwh float64 `json:"batteryRemainingKwh"`
	BatteryNeededKwh    float64 `json:"batteryNeededKwh"`

	EffectiveSpeed        float64 `json:"effectiveSpeed"` // m/s over ground
	HeadingDeg            float64 `json:"headingDeg"`
	VerticalDurationHours float64 `json:"verticalDurationHours"`
	Feasible              bool    `json:"feasible"`
}
