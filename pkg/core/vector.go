package core

import "math"

// Vector2 is a horizontal velocity. X is the east-west component, Y the north-south component.
type Vector2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// FromBearing decomposes a magnitude travelling along a bearing (radians clockwise from North).
func FromBearing(magnitude, bearing float64) Vector2 {
	return Vector2{
		X: magnitude * math.Sin(bearing),
		Y: magnitude * math.Cos(bearing),
	}
}

// Add returns the component-wise sum of v and o.
func (v Vector2) Add(o Vector2) Vector2 {
	return Vector2{X: v.X + o.X, Y: v.Y + o.Y}
}

// Norm returns the magnitude of v.
func (v Vector2) Norm() float64 {
	return math.Hypot(v.X, v.Y)
}
