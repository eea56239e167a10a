package orbital

import (
	"fmt"
	"math"
)

// DegenerateVectorError is returned when normalizing a vector whose norm is
// numerically zero.
type DegenerateVectorError struct {
	Norm float64
}

func (e DegenerateVectorError) Error() string {
	return fmt.Sprintf("degenerate vector: norm %g too small to normalize", e.Norm)
}

// DegenerateOrbitError is returned when a trajectory carries no angular
// momentum (rectilinear motion), for which orbital elements are undefined.
type DegenerateOrbitError struct {
	AngularMomentum float64
}

func (e DegenerateOrbitError) Error() string {
	return fmt.Sprintf("degenerate orbit: angular momentum %g m^2/s is numerically zero", e.AngularMomentum)
}

// UnboundOrbitError is returned when Keplerian elements are requested for a
// parabolic or hyperbolic trajectory. Specific energy ξ is in J/kg.
type UnboundOrbitError struct {
	Energy float64
}

func (e UnboundOrbitError) Error() string {
	return fmt.Sprintf("unbound orbit: specific energy %g J/kg is non-negative", e.Energy)
}

// ConvergenceError is returned when an iterative solver exhausts its
// iteration budget.
type ConvergenceError struct {
	Op         string
	Iterations int
}

func (e ConvergenceError) Error() string {
	return fmt.Sprintf("%s did not converge after %d iterations", e.Op, e.Iterations)
}

// InvalidOrbitError is returned for geometrically impossible orbits, such as
// a radius at or below the central body's surface.
type InvalidOrbitError struct {
	Reason string
}

func (e InvalidOrbitError) Error() string {
	return "invalid orbit: " + e.Reason
}

// InvalidParameterError is returned for out-of-domain caller inputs. Reason
// is optional; a NaN Value marks a parameter with no numeric representation.
type InvalidParameterError struct {
	Name   string
	Value  float64
	Reason string
}

func (e InvalidParameterError) Error() string {
	msg := fmt.Sprintf("invalid parameter %s=%g", e.Name, e.Value)
	if math.IsNaN(e.Value) {
		msg = "invalid parameter " + e.Name
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}
