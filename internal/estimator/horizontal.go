package estimator

// DragForce returns the hydrodynamic drag in newtons at the given speed through water.
func (e *Estimator) DragForce(speed float64) float64 {
	p := e.params
	return 0.5 * p.SeawaterDensity * speed * speed * p.DragCoefficient * p.FrontalArea
}

// HorizontalPowerKw returns the electrical power needed to hold speed through water.
func (e *Estimator) HorizontalPowerKw(speed float64) float64 {
	return e.DragForce(speed) * speed / 1000 / e.params.PropulsionEfficiency
}

// MissionDurationHours returns the transit time. Progress is measured over
// ground, so it uses the effective speed rather than the speed through water.
func MissionDurationHours(totalDistance, effectiveSpeed float64) float64 {
	return totalDistance / effectiveSpeed / 3600
}
