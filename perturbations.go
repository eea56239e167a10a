package orbital

import "math"

// Perturbations defines optional accelerations applied on top of the
// point-mass gravity terms during a propagation. Additional gravitating
// bodies are not handled here: they enter the acceleration sum directly as
// BodyStates.
type Perturbations struct {
	Jn        uint8                // Zonal harmonics of the primary to apply (up to 3 supported)
	Arbitrary func(Vector3) Vector3 // Additional arbitrary perturbation, position to acceleration.
}

func (p Perturbations) isEmpty() bool {
	return p.Jn <= 1 && p.Arbitrary == nil
}

// Accel returns the perturbing acceleration at the primary-centered position
// r. Zonal harmonics are ignored about the Sun.
func (p Perturbations) Accel(primary CelestialBody, r Vector3) Vector3 {
	var pert Vector3
	if p.Jn > 1 && !primary.Equals(Sun) {
		x, y, z := r.X, r.Y, r.Z
		z2 := z * z
		z3 := z2 * z
		r2 := x*x + y*y + z2
		r252 := math.Pow(r2, 5/2.)
		r272 := math.Pow(r2, 7/2.)
		// J2 (computed via SageMath)
		accJ2 := (3 / 2.) * primary.J(2) * math.Pow(primary.Radius, 2) * primary.GM()
		pert.X += accJ2 * (5*x*z2/r272 - x/r252)
		pert.Y += accJ2 * (5*y*z2/r272 - y/r252)
		pert.Z += accJ2 * (5*z3/r272 - 3*z/r252)
		if p.Jn >= 3 {
			// J3 (computed via SageMath)
			r292 := math.Pow(r2, 9/2.)
			z4 := z2 * z2
			accJ3 := primary.J(3) * math.Pow(primary.Radius, 3) * primary.GM()
			pert.X += (5 / 2.) * accJ3 * (7*x*z3/r292 - 3*x*z/r272)
			pert.Y += (5 / 2.) * accJ3 * (7*y*z3/r292 - 3*y*z/r272)
			pert.Z += 0.5 * accJ3 * (35*z4/r292 - 30*z2/r272 + 3/r252)
		}
	}
	if p.Arbitrary != nil {
		pert = pert.Add(p.Arbitrary(r))
	}
	return pert
}
