package orbital

import (
	"fmt"
	"math"
)

// GravityAssist describes the outcome of an unpowered flyby in the assisting
// body's rest frame. The maneuver only bends the velocity: OutgoingSpeed is
// always equal to IncomingSpeed, and DeltaV is the magnitude of the change in
// the velocity vector.
type GravityAssist struct {
	Body              CelestialBody
	IncomingSpeed     float64
	OutgoingSpeed     float64
	TurnAngle         float64
	DeltaV            float64
	PeriapsisAltitude float64
}

// String implements the Stringer interface.
func (g GravityAssist) String() string {
	return fmt.Sprintf("%s flyby at %.0f km: v∞=%.1f m/s turn=%.2f° Δv=%.1f m/s",
		g.Body.Name, g.PeriapsisAltitude/1e3, g.IncomingSpeed, Rad2deg(g.TurnAngle), g.DeltaV)
}

// NewGravityAssist computes the turn angle and equivalent Δv of a flyby about
// the given body, from the hyperbolic excess speed vInf (m/s) and the
// periapsis altitude above the body's surface (m).
func NewGravityAssist(body CelestialBody, vInf, periapsisAltitude float64) (GravityAssist, error) {
	if periapsisAltitude <= 0 {
		return GravityAssist{}, InvalidOrbitError{Reason: fmt.Sprintf("periapsis altitude %g m is not above the %s surface", periapsisAltitude, body.Name)}
	}
	if vInf <= 0 {
		return GravityAssist{}, InvalidParameterError{Name: "vInf", Value: vInf}
	}
	rP := body.Radius + periapsisAltitude
	δ := 2 * math.Asin(1/(1+rP*vInf*vInf/body.GM()))
	return GravityAssist{
		Body:              body,
		IncomingSpeed:     vInf,
		OutgoingSpeed:     vInf,
		TurnAngle:         δ,
		DeltaV:            2 * vInf * math.Sin(δ/2),
		PeriapsisAltitude: periapsisAltitude,
	}, nil
}

// GATurnAngle computes the turn angle about a given body based on the radius
// of periapsis.
func GATurnAngle(vInf, rP float64, body CelestialBody) float64 {
	ρ := math.Acos(1 / (1 + math.Pow(vInf, 2)*(rP/body.GM())))
	return math.Pi - 2*ρ
}

// GAFromVinf computes gravity assist parameters about a given body from the
// V infinity vectors. All angles are in radians!
func GAFromVinf(vInfInVec, vInfOutVec Vector3, body CelestialBody) (ψ, rP, bT, bR, B, θ float64, err error) {
	μ := body.GM()
	vInfIn := vInfInVec.Norm()
	vInfOut := vInfOutVec.Norm()
	if vInfIn == 0 || vInfOut == 0 {
		err = InvalidParameterError{Name: "vInf", Value: 0}
		return
	}
	ψ = vInfInVec.Angle(vInfOutVec)
	rP = (μ / math.Pow(vInfIn, 2)) * (1/math.Cos((math.Pi-ψ)/2) - 1)
	k := Vector3{0, 0, 1}
	sHat, err := vInfInVec.Unit()
	if err != nil {
		return
	}
	tHat, err := sHat.Cross(k).Unit()
	if err != nil {
		return
	}
	rHat, err := sHat.Cross(tHat).Unit()
	if err != nil {
		return
	}
	hHat, herr := vInfInVec.Cross(vInfOutVec).Unit()
	if herr != nil {
		err = InvalidOrbitError{Reason: "v-infinity vectors are parallel, flyby plane undefined"}
		return
	}
	bVec, err := sHat.Cross(hHat).Unit()
	if err != nil {
		return
	}
	bVal := (μ / math.Pow(vInfIn, 2)) * math.Sqrt(math.Pow(1+math.Pow(vInfIn, 2)*(rP/μ), 2)-1)
	bVec = bVec.Scale(bVal)
	bT = bVec.Dot(tHat)
	bR = bVec.Dot(rHat)
	B = bVec.Norm()
	θ = math.Atan2(bT, bR)
	return
}
