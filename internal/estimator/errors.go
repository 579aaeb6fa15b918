package estimator

import "errors"

// Messages shown to the user when an estimate is rejected.
const (
	MsgInvalidInput       = "Depth ≥ 0; Speed, Battery Capacity, Current Speed and Weight > 0."
	MsgInsufficientRoute  = "Please add at least two waypoints on the map."
	MsgNoEffectiveSpeed   = "Effective ground speed is zero or negative due to current conditions."
	MsgMalformedWaypoints = "Waypoints must be a list of [latitude, longitude] pairs."
)

// ValidationError rejects an estimate. There is no partial result.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError returns a ValidationError carrying msg.
func NewValidationError(msg string) *ValidationError {
	return &ValidationError{Message: msg}
}

// IsValidationError reports whether err is or wraps a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
