package orbital

import (
	"errors"
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/floats/scalar"
)

const (
	eccentricityε = 5e-5                         // 0.00005
	angleε        = (5e-3 / 360) * (2 * math.Pi) // 0.005 degrees
	distanceε     = 2e4                          // 20 km
	velocityε     = 1e-3                         // 1 mm/s

	keplerTol     = 1e-10
	keplerMaxIter = 50
)

// OrbitalElements defines a bound orbit via its classical Keplerian elements.
// Lengths are in meters and angles in radians. Equatorial and Circular record
// that RAAN, respectively the argument of periapsis, were undefined for this
// orbit and zeroed by convention.
type OrbitalElements struct {
	SemiMajorAxis float64
	Eccentricity  float64
	Inclination   float64
	RAAN          float64
	ArgPeriapsis  float64
	MeanAnomaly   float64
	Epoch         time.Time
	Equatorial    bool
	Circular      bool
}

// StateVector defines the position and velocity of an orbiting object at a
// given epoch, in an inertial frame centered on the attracting body.
type StateVector struct {
	Position Vector3
	Velocity Vector3
	Epoch    time.Time
}

// Energy returns the specific mechanical energy ξ for the given gravitational
// parameter.
func (o OrbitalElements) Energy(μ float64) float64 {
	return -μ / (2 * o.SemiMajorAxis)
}

// SemiParameter returns the semi-parameter p = a(1-e²).
func (o OrbitalElements) SemiParameter() float64 {
	return o.SemiMajorAxis * (1 - o.Eccentricity*o.Eccentricity)
}

// Apoapsis returns the apoapsis radius.
func (o OrbitalElements) Apoapsis() float64 {
	return o.SemiMajorAxis * (1 + o.Eccentricity)
}

// Periapsis returns the periapsis radius.
func (o OrbitalElements) Periapsis() float64 {
	return o.SemiMajorAxis * (1 - o.Eccentricity)
}

// MeanMotion returns the mean motion n in rad/s.
func (o OrbitalElements) MeanMotion(μ float64) float64 {
	return math.Sqrt(μ / math.Pow(o.SemiMajorAxis, 3))
}

// VAtRadius returns the speed at radius r from the vis-viva relation. The
// radius must lie between the apsides for the result to be meaningful.
func (o OrbitalElements) VAtRadius(r, μ float64) float64 {
	return math.Sqrt(2*μ/r - μ/o.SemiMajorAxis)
}

// Period returns the period of this orbit.
func (o OrbitalElements) Period(μ float64) time.Duration {
	// The time package does not trivially handle fractions of a second, so
	// let's compute this in a convoluted way...
	seconds := 2 * math.Pi * math.Sqrt(math.Pow(o.SemiMajorAxis, 3)/μ)
	duration, _ := time.ParseDuration(fmt.Sprintf("%.6fs", seconds))
	return duration
}

// String implements the Stringer interface.
func (o OrbitalElements) String() string {
	return fmt.Sprintf("a=%.1f e=%.6f i=%.3f Ω=%.3f ω=%.3f M=%.3f",
		o.SemiMajorAxis, o.Eccentricity, Rad2deg(o.Inclination),
		Rad2deg(o.RAAN), Rad2deg(o.ArgPeriapsis), Rad2deg(o.MeanAnomaly))
}

// Equals returns whether two sets of elements describe the same orbit, with
// free anomaly. The degeneracy flags must agree as well.
func (o OrbitalElements) Equals(o1 OrbitalElements) (bool, error) {
	if !scalar.EqualWithinAbs(o.SemiMajorAxis, o1.SemiMajorAxis, distanceε) {
		return false, errors.New("semi major axis invalid")
	}
	if !scalar.EqualWithinAbs(o.Eccentricity, o1.Eccentricity, eccentricityε) {
		return false, errors.New("eccentricity invalid")
	}
	if !scalar.EqualWithinAbs(o.Inclination, o1.Inclination, angleε) {
		return false, errors.New("inclination invalid")
	}
	if o.Equatorial != o1.Equatorial {
		return false, errors.New("equatorial flag invalid")
	}
	if o.Circular != o1.Circular {
		return false, errors.New("circular flag invalid")
	}
	if !o.Equatorial && !anglesEqualWithin(o.RAAN, o1.RAAN, angleε) {
		return false, errors.New("RAAN invalid")
	}
	if !o.Circular && !anglesEqualWithin(o.ArgPeriapsis, o1.ArgPeriapsis, angleε) {
		return false, errors.New("argument of periapsis invalid")
	}
	return true, nil
}

// StrictlyEquals returns whether two sets of elements are identical,
// anomaly included.
func (o OrbitalElements) StrictlyEquals(o1 OrbitalElements) (bool, error) {
	if !anglesEqualWithin(o.MeanAnomaly, o1.MeanAnomaly, angleε) {
		return false, errors.New("mean anomaly invalid")
	}
	return o.Equals(o1)
}

// StateAt returns the state vector of this orbit at the requested time, by
// advancing the mean anomaly at the orbit's mean motion and converting. Pure
// two-body motion.
func (o OrbitalElements) StateAt(dt time.Time, μ float64) (StateVector, error) {
	Δt := dt.Sub(o.Epoch).Seconds()
	prop := o
	prop.MeanAnomaly = normalizeAngle(o.MeanAnomaly + o.MeanMotion(μ)*Δt)
	prop.Epoch = dt
	return ElementsToState(prop, μ)
}

// StateToElements returns the classical orbital elements for the given state
// vector. From Vallado's RV2COE, page 113. Only elliptical orbits carry a
// full set of elements: rectilinear trajectories return a
// DegenerateOrbitError and parabolic or hyperbolic ones an UnboundOrbitError.
func StateToElements(s StateVector, μ float64) (OrbitalElements, error) {
	if μ <= 0 {
		return OrbitalElements{}, InvalidParameterError{Name: "mu", Value: μ}
	}
	R, V := s.Position, s.Velocity
	hVec := R.Cross(V)
	h := hVec.Norm()
	r := R.Norm()
	v := V.Norm()
	if scalar.EqualWithinAbs(h, 0, 1e-6*r*v) || h == 0 {
		return OrbitalElements{}, DegenerateOrbitError{AngularMomentum: h}
	}
	ξ := (v*v)/2 - μ/r
	if ξ >= 0 {
		return OrbitalElements{}, UnboundOrbitError{Energy: ξ}
	}
	a := -μ / (2 * ξ)
	eVec := R.Scale((v*v - μ/r) / μ).Sub(V.Scale(R.Dot(V) / μ))
	e := eVec.Norm()
	if e >= 1 {
		return OrbitalElements{}, UnboundOrbitError{Energy: ξ}
	}

	i := math.Acos(hVec.Z / h)
	nVec := Vector3{-hVec.Y, hVec.X, 0} // node vector k×h
	n := nVec.Norm()

	equatorial := scalar.EqualWithinAbs(i, 0, angleε) || scalar.EqualWithinAbs(i, math.Pi, angleε) || n == 0
	circular := e < eccentricityε

	var Ω, ω, ν float64
	if equatorial {
		Ω = 0
	} else {
		Ω = math.Acos(nVec.X / n)
		if nVec.Y < 0 {
			Ω = 2*math.Pi - Ω
		}
	}
	if circular {
		ω = 0
		// Anomaly measured from the node (argument of latitude), or from
		// the X axis (true longitude) when the node is undefined too.
		if equatorial {
			ν = math.Acos(R.X / r)
			if R.Y < 0 {
				ν = 2*math.Pi - ν
			}
		} else {
			ν = math.Acos(nVec.Dot(R) / (n * r))
			if R.Z < 0 {
				ν = 2*math.Pi - ν
			}
		}
	} else {
		if equatorial {
			ω = math.Acos(eVec.X / e)
			if eVec.Y < 0 {
				ω = 2*math.Pi - ω
			}
		} else {
			ω = math.Acos(nVec.Dot(eVec) / (n * e))
			if eVec.Z < 0 {
				ω = 2*math.Pi - ω
			}
		}
		cosν := eVec.Dot(R) / (e * r)
		if abscosν := math.Abs(cosν); abscosν > 1 && scalar.EqualWithinAbs(abscosν, 1, 1e-12) {
			// Rounding pushes cosν barely outside [-1, 1] near the apsides.
			cosν = sign(cosν)
		}
		ν = math.Acos(cosν)
		if R.Dot(V) < 0 {
			ν = 2*math.Pi - ν
		}
	}

	return OrbitalElements{
		SemiMajorAxis: a,
		Eccentricity:  e,
		Inclination:   math.Mod(i, 2*math.Pi),
		RAAN:          normalizeAngle(Ω),
		ArgPeriapsis:  normalizeAngle(ω),
		MeanAnomaly:   TrueToMeanAnomaly(ν, e),
		Epoch:         s.Epoch,
		Equatorial:    equatorial,
		Circular:      circular,
	}, nil
}

// ElementsToState returns the inertial state vector for the given elements.
// From Vallado's COE2RV, page 118: solve Kepler's equation for the eccentric
// anomaly, build the perifocal state, then rotate through the 3-1-3 sequence.
func ElementsToState(o OrbitalElements, μ float64) (StateVector, error) {
	if μ <= 0 {
		return StateVector{}, InvalidParameterError{Name: "mu", Value: μ}
	}
	if o.SemiMajorAxis <= 0 || o.Eccentricity >= 1 || o.Eccentricity < 0 {
		return StateVector{}, InvalidOrbitError{Reason: fmt.Sprintf("elements a=%g e=%g do not describe an ellipse", o.SemiMajorAxis, o.Eccentricity)}
	}
	E, err := MeanToEccentricAnomaly(o.MeanAnomaly, o.Eccentricity)
	if err != nil {
		return StateVector{}, err
	}
	ν := EccentricToTrueAnomaly(E, o.Eccentricity)
	p := o.SemiParameter()

	sinν, cosν := math.Sincos(ν)
	rPQW := Vector3{p * cosν / (1 + o.Eccentricity*cosν), p * sinν / (1 + o.Eccentricity*cosν), 0}
	vPQW := Vector3{-math.Sqrt(μ/p) * sinν, math.Sqrt(μ/p) * (o.Eccentricity + cosν), 0}

	R := Rot313Vec(-o.ArgPeriapsis, -o.Inclination, -o.RAAN, rPQW)
	V := Rot313Vec(-o.ArgPeriapsis, -o.Inclination, -o.RAAN, vPQW)
	return StateVector{Position: R, Velocity: V, Epoch: o.Epoch}, nil
}

// MeanToEccentricAnomaly solves Kepler's equation M = E - e sin(E) for E via
// Newton-Raphson, to 1e-10 radians within 50 iterations.
func MeanToEccentricAnomaly(M, e float64) (float64, error) {
	M = normalizeAngle(M)
	E := M
	if e > 0.8 {
		E = math.Pi
	}
	for iter := 0; iter < keplerMaxIter; iter++ {
		ΔE := (E - e*math.Sin(E) - M) / (1 - e*math.Cos(E))
		E -= ΔE
		if math.Abs(ΔE) < keplerTol {
			return normalizeAngle(E), nil
		}
	}
	return 0, ConvergenceError{Op: "Kepler solver", Iterations: keplerMaxIter}
}

// EccentricToMeanAnomaly applies Kepler's equation directly.
func EccentricToMeanAnomaly(E, e float64) float64 {
	return normalizeAngle(E - e*math.Sin(E))
}

// EccentricToTrueAnomaly converts via the half-angle relation.
func EccentricToTrueAnomaly(E, e float64) float64 {
	return normalizeAngle(2 * math.Atan2(math.Sqrt(1+e)*math.Sin(E/2), math.Sqrt(1-e)*math.Cos(E/2)))
}

// TrueToEccentricAnomaly converts via the half-angle relation.
func TrueToEccentricAnomaly(ν, e float64) float64 {
	return normalizeAngle(2 * math.Atan2(math.Sqrt(1-e)*math.Sin(ν/2), math.Sqrt(1+e)*math.Cos(ν/2)))
}

// TrueToMeanAnomaly chains the eccentric-anomaly relation with Kepler's
// equation.
func TrueToMeanAnomaly(ν, e float64) float64 {
	return EccentricToMeanAnomaly(TrueToEccentricAnomaly(ν, e), e)
}

// normalizeAngle wraps an angle to [0, 2π).
func normalizeAngle(a float64) float64 {
	a = math.Mod(a, 2*math.Pi)
	if a < 0 {
		a += 2 * math.Pi
	}
	return a
}

// anglesEqualWithin compares two angles modulo 2π.
func anglesEqualWithin(a, b, ε float64) bool {
	diff := math.Abs(normalizeAngle(a) - normalizeAngle(b))
	if diff > math.Pi {
		diff = 2*math.Pi - diff
	}
	return diff <= ε
}

// Radii2ae returns the semi major axis and the eccentricity from the apoapsis
// and periapsis radii.
func Radii2ae(rA, rP float64) (a, e float64, err error) {
	if rA < rP {
		return 0, 0, InvalidOrbitError{Reason: "periapsis cannot be greater than apoapsis"}
	}
	a = (rP + rA) / 2
	e = (rA - rP) / (rA + rP)
	return
}
