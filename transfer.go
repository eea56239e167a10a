package orbital

import (
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/floats/scalar"
)

// TransferType defines the type of Lambert transfer.
type TransferType uint8

// Longway returns whether or not this is the long way.
func (t TransferType) Longway() bool {
	switch t {
	case TType1:
		fallthrough
	case TType3:
		return false
	case TType2:
		fallthrough
	case TType4:
		return true
	default:
		panic(fmt.Errorf("cannot determine whether long or short way for %s", t))
	}
}

// Revs returns the number of revolutions given the type.
func (t TransferType) Revs() float64 {
	switch t {
	case TTypeAuto:
		fallthrough // auto-revs is limited to zero revolutions
	case TType1:
		fallthrough
	case TType2:
		return 0
	case TType3:
		fallthrough
	case TType4:
		return 1
	default:
		panic("unknown transfer type")
	}
}

func (t TransferType) String() string {
	switch t {
	case TTypeAuto:
		return "auto-revs"
	case TType1:
		return "type-1"
	case TType2:
		return "type-2"
	case TType3:
		return "type-3"
	case TType4:
		return "type-4"
	default:
		panic("unknown transfer type")
	}
}

const (
	// TTypeAuto lets the Lambert solver determine the type
	TTypeAuto TransferType = iota + 1
	// TType1 is transfer of type 1 (zero revolution, short way)
	TType1
	// TType2 is transfer of type 2 (zero revolution, long way)
	TType2
	// TType3 is transfer of type 3 (one revolution, short way)
	TType3
	// TType4 is transfer of type 4 (one revolution, long way)
	TType4

	lambertε      = 1e-4                   // General epsilon
	lambertTimeε  = 1e-4                   // Time epsilon, in seconds
	lambertAngleε = (5e-5 / 180) * math.Pi // 0.00005 degrees
	lambertMaxIt  = 10000
)

// HohmannTransfer describes a two-burn transfer between two circular coplanar
// orbits. All lengths in meters, speeds in m/s.
type HohmannTransfer struct {
	InitialRadius         float64
	FinalRadius           float64
	TransferSemiMajorAxis float64
	DeltaV1               float64
	DeltaV2               float64
	TotalDeltaV           float64
	TransferTime          time.Duration
}

// String implements the Stringer interface.
func (h HohmannTransfer) String() string {
	return fmt.Sprintf("Hohmann %.0f->%.0f km: Δv1=%+.1f m/s Δv2=%+.1f m/s total=%.1f m/s in %s",
		h.InitialRadius/1e3, h.FinalRadius/1e3, h.DeltaV1, h.DeltaV2, h.TotalDeltaV, h.TransferTime)
}

// NewHohmannTransfer computes the Hohmann transfer between circular orbits of
// radii r1 and r2 about the given body. The first burn raises (or lowers) the
// apsis at departure, the second circularizes at arrival; transfer time is
// half the period of the transfer ellipse. Radii at or below the body surface
// return an InvalidOrbitError.
func NewHohmannTransfer(r1, r2 float64, body CelestialBody) (HohmannTransfer, error) {
	if r1 <= body.Radius {
		return HohmannTransfer{}, InvalidOrbitError{Reason: fmt.Sprintf("initial radius %g m is at or below the %s surface", r1, body.Name)}
	}
	if r2 <= body.Radius {
		return HohmannTransfer{}, InvalidOrbitError{Reason: fmt.Sprintf("final radius %g m is at or below the %s surface", r2, body.Name)}
	}
	μ := body.GM()
	a := 0.5 * (r1 + r2)
	v1 := math.Sqrt(μ / r1)
	v2 := math.Sqrt(μ / r2)
	vDeparture := math.Sqrt(2*μ/r1 - μ/a)
	vArrival := math.Sqrt(2*μ/r2 - μ/a)
	Δv1 := vDeparture - v1
	Δv2 := v2 - vArrival
	return HohmannTransfer{
		InitialRadius:         r1,
		FinalRadius:           r2,
		TransferSemiMajorAxis: a,
		DeltaV1:               Δv1,
		DeltaV2:               Δv2,
		TotalDeltaV:           math.Abs(Δv1) + math.Abs(Δv2),
		TransferTime:          time.Duration(math.Pi * math.Sqrt(math.Pow(a, 3)/μ) * float64(time.Second)),
	}, nil
}

// Lambert solves the Lambert boundary problem:
// Given the initial and final radii and a central body, it returns the needed
// initial and final velocities along with φ which is the square of the
// difference in eccentric anomaly. Note that the direction of motion is
// computed directly in this function.
func Lambert(Ri, Rf Vector3, Δt0 time.Duration, ttype TransferType, body CelestialBody) (Vi, Vf Vector3, φ float64, err error) {
	if Δt0 <= 0 {
		err = InvalidParameterError{Name: "transfer time", Value: Δt0.Seconds()}
		return
	}
	μ := body.GM()
	Δt0Sec := Δt0.Seconds()
	rI := Ri.Norm()
	rF := Rf.Norm()
	cosΔν := Ri.Dot(Rf) / (rI * rF)
	// Compute the direction of motion
	νI := math.Atan2(Ri.Y, Ri.X)
	νF := math.Atan2(Rf.Y, Rf.X)
	dm := 1.0
	if ttype == TType2 {
		dm = -1.0
	} else if ttype == TTypeAuto {
		Δν := νF - νI
		if Δν > 2*math.Pi {
			Δν -= 2 * math.Pi
		} else if Δν < 0 {
			Δν += 2 * math.Pi
		}
		if Δν > math.Pi {
			dm = -1.0
		} // We don't do the < math.Pi case because that's the initial value anyway.
	}

	A := dm * math.Sqrt(rI*rF*(1+cosΔν))
	if νF-νI < lambertAngleε && scalar.EqualWithinAbs(A, 0, lambertε) {
		err = InvalidOrbitError{Reason: "cannot compute trajectory: Δν ~=0 and A ~=0"}
		return
	}

	φup := 4 * math.Pow(math.Pi, 2) * math.Pow(ttype.Revs()+1, 2)
	φlow := -4 * math.Pi

	if ttype.Revs() > 0 {
		// Sweep φ for the minimum-TOF bound of this revolution branch.
		Δtmin := 4000 * 24 * 3600.0
		φBound := 0.0

		for φP := 15.; φP < φup; φP += 0.1 {
			c2 := (1 - math.Cos(math.Sqrt(φP))) / φP
			c3 := (math.Sqrt(φP) - math.Sin(math.Sqrt(φP))) / math.Sqrt(math.Pow(φP, 3))
			y := rI + rF + A*(φP*c3-1)/math.Sqrt(c2)
			χ := math.Sqrt(y / c2)
			Δt := (math.Pow(χ, 3)*c3 + A*math.Sqrt(y)) / math.Sqrt(μ)
			if Δtmin > Δt {
				Δtmin = Δt
				φBound = φP
			}
		}

		// Determine whether we are going up or down bounds.
		if ttype == TType3 {
			φlow = φup
			φup = φBound
		} else if ttype == TType4 {
			φlow = φBound
		}
	}
	// Initial guesses for c2 and c3
	c2 := 1 / 2.
	c3 := 1 / 6.
	var Δt, y float64
	var iteration uint
	for math.Abs(Δt-Δt0Sec) > lambertTimeε {
		if iteration > lambertMaxIt {
			err = ConvergenceError{Op: "Lambert solver", Iterations: lambertMaxIt}
			return
		}
		iteration++
		y = rI + rF + A*(φ*c3-1)/math.Sqrt(c2)
		if A > 0 && y < 0 {
			tmpIt := 0
			for y < 0 {
				φ += 0.1
				y = rI + rF + A*(φ*c3-1)/math.Sqrt(c2)
				if tmpIt > lambertMaxIt {
					err = ConvergenceError{Op: "Lambert φ bump", Iterations: lambertMaxIt}
					return
				}
				tmpIt++
			}
		}
		χ := math.Sqrt(y / c2)
		Δt = (math.Pow(χ, 3)*c3 + A*math.Sqrt(y)) / math.Sqrt(μ)
		if ttype != TType3 {
			if Δt <= Δt0Sec {
				φlow = φ
			} else {
				φup = φ
			}
		} else {
			if Δt >= Δt0Sec {
				φlow = φ
			} else {
				φup = φ
			}
		}
		φ = (φup + φlow) / 2
		if φ > lambertε {
			sφ := math.Sqrt(φ)
			ssφ, csφ := math.Sincos(sφ)
			c2 = (1 - csφ) / φ
			c3 = (sφ - ssφ) / math.Sqrt(math.Pow(φ, 3))
		} else if φ < -lambertε {
			sφ := math.Sqrt(-φ)
			c2 = (1 - math.Cosh(sφ)) / φ
			c3 = (math.Sinh(sφ) - sφ) / math.Sqrt(math.Pow(-φ, 3))
		} else {
			c2 = 1 / 2.
			c3 = 1 / 6.
		}
	}
	f := 1 - y/rI
	gDot := 1 - y/rF
	g := A * math.Sqrt(y/μ)
	// Compute velocities
	Vi = Rf.Sub(Ri.Scale(f)).Scale(1 / g)
	Vf = Rf.Scale(gDot).Sub(Ri).Scale(1 / g)
	return
}
