package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/cast"

	"github.com/OCAP2/auvplanner/internal/estimator"
	"github.com/OCAP2/auvplanner/internal/geo"
	"github.com/OCAP2/auvplanner/pkg/core"
)

// field maps one numeric mission value to its form and JSON names.
type field struct {
	form     string
	json     string
	required bool
	target   func(*core.MissionInput) *float64
}

var missionFields = []field{
	{"depth", "depth", true, func(in *core.MissionInput) *float64 { return &in.Depth }},
	{"speed", "speed", true, func(in *core.MissionInput) *float64 { return &in.Speed }},
	{"battery_capacity", "batteryCapacity", true, func(in *core.MissionInput) *float64 { return &in.BatteryCapacity }},
	{"weight", "weight", true, func(in *core.MissionInput) *float64 { return &in.Weight }},
	{"volume", "volume", false, func(in *core.MissionInput) *float64 { return &in.Volume }},
	{"current_speed", "currentSpeed", false, func(in *core.MissionInput) *float64 { return &in.CurrentSpeed }},
	{"current_direction", "currentDirection", false, func(in *core.MissionInput) *float64 { return &in.CurrentDirectionDeg }},
}

func missingField(name string) error {
	return estimator.NewValidationError(fmt.Sprintf("Missing required field: %s.", name))
}

func invalidNumber(name string, v any) error {
	return estimator.NewValidationError(fmt.Sprintf("Invalid number for %s: %v.", name, v))
}

// toFloat converts a decimal string or JSON number. ok is false when the
// value is absent or blank.
func toFloat(name string, v any) (f float64, ok bool, err error) {
	switch t := v.(type) {
	case nil:
		return 0, false, nil
	case string:
		t = strings.TrimSpace(t)
		if t == "" {
			return 0, false, nil
		}
		v = t
	case bool:
		return 0, false, invalidNumber(name, t)
	}
	f, err = cast.ToFloat64E(v)
	if err != nil {
		return 0, false, invalidNumber(name, v)
	}
	return f, true, nil
}

// MissionFromForm builds a mission from planner form values. Numbers are
// decimal strings and waypoints a JSON array of [lat, lon] pairs. The numeric
// bounds are checked before the waypoints are parsed.
func MissionFromForm(form url.Values) (core.MissionInput, error) {
	var in core.MissionInput
	for _, f := range missionFields {
		v, ok, err := toFloat(f.form, form.Get(f.form))
		if err != nil {
			return core.MissionInput{}, err
		}
		if !ok && f.required {
			return core.MissionInput{}, missingField(f.form)
		}
		*f.target(&in) = v
	}
	if err := estimator.ValidateScalars(in); err != nil {
		return core.MissionInput{}, err
	}

	wps, err := geo.ParseWaypoints(form.Get("waypoints"))
	if err != nil {
		return core.MissionInput{}, estimator.NewValidationError(estimator.MsgMalformedWaypoints)
	}
	in.Waypoints = wps
	return in, nil
}

// MissionFromJSON decodes an API request body. Numeric fields may be
// numbers or decimal strings. Waypoints may be an array or a string
// holding the JSON array.
func MissionFromJSON(data []byte) (core.MissionInput, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return core.MissionInput{}, estimator.NewValidationError("Request body must be a JSON object.")
	}

	var in core.MissionInput
	for _, f := range missionFields {
		var v any
		if msg, present := raw[f.json]; present {
			if err := json.Unmarshal(msg, &v); err != nil {
				return core.MissionInput{}, invalidNumber(f.json, string(msg))
			}
		}
		n, ok, err := toFloat(f.json, v)
		if err != nil {
			return core.MissionInput{}, err
		}
		if !ok && f.required {
			return core.MissionInput{}, missingField(f.json)
		}
		*f.target(&in) = n
	}
	if err := estimator.ValidateScalars(in); err != nil {
		return core.MissionInput{}, err
	}

	wps, err := waypointsFromJSON(raw["waypoints"])
	if err != nil {
		return core.MissionInput{}, estimator.NewValidationError(estimator.MsgMalformedWaypoints)
	}
	in.Waypoints = wps
	return in, nil
}

func waypointsFromJSON(msg json.RawMessage) ([]core.Waypoint, error) {
	msg = bytes.TrimSpace(msg)
	if len(msg) == 0 || bytes.Equal(msg, []byte("null")) {
		return nil, nil
	}
	if msg[0] == '"' {
		var s string
		if err := json.Unmarshal(msg, &s); err != nil {
			return nil, err
		}
		return geo.ParseWaypoints(s)
	}
	return geo.ParseWaypoints(string(msg))
}
