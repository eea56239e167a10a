package orbital

import (
	"fmt"
	"math"
	"time"

	"github.com/soniakeys/meeus/v3/base"
	"github.com/soniakeys/meeus/v3/julian"
)

const (
	// leoParkingRadius is the radius of the assumed departure parking orbit
	// (200 km altitude LEO).
	leoParkingRadius = 6.578e6
	// windowHalfWidth bounds the open and close dates about the optimal date.
	windowHalfWidth = 7 * 24 * time.Hour
)

// LaunchWindow describes one Earth-departure opportunity to a target planet.
// Successive windows repeat at the Earth-target synodic period; the energy
// and duration figures are Hohmann-grade estimates, not a trajectory solve.
type LaunchWindow struct {
	OpenDate             time.Time
	OptimalDate          time.Time
	CloseDate            time.Time
	TargetBody           CelestialBody
	CharacteristicEnergy float64 // C3, m^2/s^2
	DepartureDeltaV      float64 // m/s, from the LEO parking orbit
	TransferDuration     time.Duration
	ArrivalDate          time.Time
	PhaseAngle           float64 // rad, signed Earth-target angle at departure
}

// String implements the Stringer interface.
func (w LaunchWindow) String() string {
	return fmt.Sprintf("%s window %s (γ=%+.1f° C3=%.1f km²/s² Δv=%.0f m/s, arrive %s)",
		w.TargetBody.Name, w.OptimalDate.Format("2006-01-02"),
		w.PhaseAngle/deg2rad, w.CharacteristicEnergy/1e6, w.DepartureDeltaV,
		w.ArrivalDate.Format("2006-01-02"))
}

// LaunchWindows returns the next count launch windows to the target planet
// starting at from, in chronological order. The first window anchors on the
// date the Earth-target phase angle matches the transfer's required phase
// angle; later ones repeat at the tabulated synodic period.
func LaunchWindows(target CelestialBody, from time.Time, count int) ([]LaunchWindow, error) {
	if count <= 0 {
		return nil, InvalidParameterError{Name: "count", Value: float64(count)}
	}
	p, ok := windowParamsFor(target)
	if !ok {
		return nil, InvalidParameterError{Name: "target", Value: math.NaN(), Reason: fmt.Sprintf("no window constants for %q", target.Name)}
	}
	// Required phase angle at departure: the target must lead by however far
	// it sweeps during the transfer, short of the 180° transfer arc.
	γReq := wrapTo180(180 - p.meanMotion()*p.transferDays)
	first, err := nextPhaseMatch(p, γReq, from)
	if err != nil {
		return nil, err
	}

	μ := Earth.GM()
	vCirc := math.Sqrt(μ / leoParkingRadius)
	vDep := math.Sqrt(2*μ/leoParkingRadius + p.c3)
	transfer := time.Duration(p.transferDays * 24 * float64(time.Hour))
	synodic := time.Duration(p.synodicDays * 24 * float64(time.Hour))

	windows := make([]LaunchWindow, count)
	for k := range windows {
		optimal := first.Add(time.Duration(k) * synodic)
		windows[k] = LaunchWindow{
			OpenDate:             optimal.Add(-windowHalfWidth),
			OptimalDate:          optimal,
			CloseDate:            optimal.Add(windowHalfWidth),
			TargetBody:           target,
			CharacteristicEnergy: p.c3,
			DepartureDeltaV:      vDep - vCirc,
			TransferDuration:     transfer,
			ArrivalDate:          optimal.Add(transfer),
			PhaseAngle:           γReq * deg2rad,
		}
	}
	return windows, nil
}

// phaseAngleDeg returns the signed heliocentric Earth-target phase angle in
// degrees at t, in (-180, 180]. Positive means the target leads the Earth.
func phaseAngleDeg(p windowParams, t time.Time) float64 {
	T := base.J2000Century(julian.TimeToJD(t.UTC()))
	return wrapTo180(p.meanLong.degAt(T) - earthMeanLongitude.degAt(T))
}

// nextPhaseMatch scans forward from the given date for the first time the
// phase angle reaches γReq. The phase drifts at the synodic rate, so exactly
// one match exists per synodic period; the daily scan brackets it and a
// bisection refines the date.
func nextPhaseMatch(p windowParams, γReq float64, from time.Time) (time.Time, error) {
	const step = 24 * time.Hour
	limit := int(p.synodicDays) + 2
	t := from
	prev := wrapTo180(phaseAngleDeg(p, t) - γReq)
	for d := 0; d < limit; d++ {
		next := t.Add(step)
		cur := wrapTo180(phaseAngleDeg(p, next) - γReq)
		// A sign change smaller than a half-turn is a genuine crossing, not
		// the ±180° wrap of the difference.
		if prev == 0 {
			return t, nil
		}
		if prev*cur <= 0 && math.Abs(cur-prev) < 180 {
			return refinePhaseMatch(p, γReq, t, next), nil
		}
		prev = cur
		t = next
	}
	return time.Time{}, ConvergenceError{Op: "launch window phase match", Iterations: limit}
}

// refinePhaseMatch bisects the bracketing interval down to the minute.
func refinePhaseMatch(p windowParams, γReq float64, lo, hi time.Time) time.Time {
	fLo := wrapTo180(phaseAngleDeg(p, lo) - γReq)
	for hi.Sub(lo) > time.Minute {
		mid := lo.Add(hi.Sub(lo) / 2)
		fMid := wrapTo180(phaseAngleDeg(p, mid) - γReq)
		if fLo*fMid <= 0 {
			hi = mid
		} else {
			lo = mid
			fLo = fMid
		}
	}
	return lo
}

// wrapTo180 wraps an angle in degrees to (-180, 180].
func wrapTo180(d float64) float64 {
	d = math.Mod(d, 360)
	if d > 180 {
		d -= 360
	} else if d <= -180 {
		d += 360
	}
	return d
}
