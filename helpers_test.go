package orbital

import (
	"fmt"
	"math"
	"testing"
	"time"

	"gonum.org/v1/gonum/floats/scalar"
)

// valladoEarth uses the gravitational parameter from Vallado's worked examples
// (398600.4418 km^3/s^2) so the textbook results check out to printed precision.
var valladoEarth = func() CelestialBody {
	body := Earth
	body.Mass = 3.986004418e14 / G
	return body
}()

func assertPanic(t *testing.T, f func()) {
	defer func() {
		if r := recover(); r == nil {
			t.Errorf("code did not panic")
		}
	}()
	f()
}

func vectorsEqual(a, b Vector3) bool {
	return scalar.EqualWithinRel(a.X, b.X, 1e-3) && scalar.EqualWithinRel(a.Y, b.Y, 1e-3) && scalar.EqualWithinRel(a.Z, b.Z, 1e-3)
}

// vectorsEqualRel compares the two vectors by the norm of their difference
// relative to the norm of the reference vector a.
func vectorsEqualRel(a, b Vector3, tol float64) bool {
	return a.Sub(b).Norm() <= tol*a.Norm()
}

// anglesEqual returns whether two angles in radians are equal.
func anglesEqual(a, b float64) (bool, error) {
	if anglesEqualWithin(a, b, angleε) {
		return true, nil
	}
	diff := math.Mod(math.Abs(a-b), 2*math.Pi)
	return false, fmt.Errorf("difference of %3.10f degrees", math.Abs(diff/deg2rad))
}

func timesEqual(a, b time.Time, within time.Duration) bool {
	Δ := a.Sub(b)
	if Δ < 0 {
		Δ = -Δ
	}
	return Δ <= within
}
