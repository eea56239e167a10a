package orbital

import (
	"errors"
	"math"
	"math/rand"
	"testing"
	"time"

	"gonum.org/v1/gonum/floats/scalar"
)

func TestElementsDerived(t *testing.T) {
	a, e, err := Radii2ae(4e7, 1e7)
	if err != nil {
		t.Fatalf("err = %s", err)
	}
	if a != 2.5e7 {
		t.Fatalf("a=%f", a)
	}
	if e != 0.6 {
		t.Fatalf("e=%f", e)
	}
	o := OrbitalElements{SemiMajorAxis: a, Eccentricity: e}
	μ := Earth.GM()
	if !scalar.EqualWithinRel(o.SemiParameter(), 1.6e7, 1e-12) {
		t.Fatalf("p=%f", o.SemiParameter())
	}
	if !scalar.EqualWithinRel(o.Apoapsis(), 4e7, 1e-12) {
		t.Fatalf("rA=%f", o.Apoapsis())
	}
	if !scalar.EqualWithinRel(o.Periapsis(), 1e7, 1e-12) {
		t.Fatalf("rP=%f", o.Periapsis())
	}
	if !scalar.EqualWithinRel(o.Energy(μ), -μ/(2*a), 1e-12) {
		t.Fatalf("ξ=%f", o.Energy(μ))
	}
	n := math.Sqrt(μ / (a * a * a))
	if !scalar.EqualWithinRel(o.MeanMotion(μ), n, 1e-12) {
		t.Fatalf("n=%f", o.MeanMotion(μ))
	}
	if !scalar.EqualWithinRel(o.Period(μ).Seconds(), 2*math.Pi/n, 1e-9) {
		t.Fatalf("T=%s", o.Period(μ))
	}
	// Momentum balance between the apsides, where velocity is transverse.
	vP, vA := o.VAtRadius(1e7, μ), o.VAtRadius(4e7, μ)
	if !scalar.EqualWithinRel(vP*1e7, vA*4e7, 1e-12) {
		t.Fatalf("h at periapsis %f, at apoapsis %f", vP*1e7, vA*4e7)
	}
	if len(o.String()) == 0 {
		t.Fatal("empty string representation")
	}

	if _, _, err = Radii2ae(1e7, 4e7); err == nil {
		t.Fatal("swapped radii should not define an orbit")
	}
}

// From Vallado's RV2COE example.
func TestStateToElementsVallado(t *testing.T) {
	epoch := time.Date(2026, 3, 14, 15, 9, 26, 0, time.UTC)
	s := StateVector{
		Position: Vector3{6524.834e3, 6862.875e3, 6448.296e3},
		Velocity: Vector3{4901.327, 5533.756, -1976.341},
		Epoch:    epoch,
	}
	o, err := StateToElements(s, valladoEarth.GM())
	if err != nil {
		t.Fatalf("err = %s", err)
	}
	if !scalar.EqualWithinRel(o.SemiMajorAxis, 36127.343e3, 1e-4) {
		t.Fatalf("a=%f", o.SemiMajorAxis)
	}
	if !scalar.EqualWithinAbs(o.Eccentricity, 0.832853, 1e-5) {
		t.Fatalf("e=%f", o.Eccentricity)
	}
	if !anglesEqualWithin(o.Inclination, Deg2rad(87.870), Deg2rad(0.01)) {
		t.Fatalf("i=%f", Rad2deg(o.Inclination))
	}
	if !anglesEqualWithin(o.RAAN, Deg2rad(227.898), Deg2rad(0.01)) {
		t.Fatalf("Ω=%f", Rad2deg(o.RAAN))
	}
	if !anglesEqualWithin(o.ArgPeriapsis, Deg2rad(53.38), Deg2rad(0.01)) {
		t.Fatalf("ω=%f", Rad2deg(o.ArgPeriapsis))
	}
	if !anglesEqualWithin(o.MeanAnomaly, TrueToMeanAnomaly(Deg2rad(92.335), o.Eccentricity), Deg2rad(0.01)) {
		t.Fatalf("M=%f", Rad2deg(o.MeanAnomaly))
	}
	if o.Circular || o.Equatorial {
		t.Fatal("orbit wrongly flagged as degenerate")
	}
	if !o.Epoch.Equal(epoch) {
		t.Fatal("epoch not carried over")
	}
	t.Logf("[OK] %s", o)
}

func TestStateToElementsFlags(t *testing.T) {
	μ := Earth.GM()
	r := 7e6
	vCirc := math.Sqrt(μ / r)

	o, err := StateToElements(StateVector{Position: Vector3{X: r}, Velocity: Vector3{Y: vCirc}}, μ)
	if err != nil {
		t.Fatalf("err = %s", err)
	}
	if !o.Circular || !o.Equatorial {
		t.Fatalf("circular equatorial orbit flagged as %s", o)
	}
	if !scalar.EqualWithinRel(o.SemiMajorAxis, r, 1e-9) {
		t.Fatalf("a=%f", o.SemiMajorAxis)
	}
	if o.RAAN != 0 || o.ArgPeriapsis != 0 {
		t.Fatal("degenerate angles should fold to zero")
	}

	sinI, cosI := math.Sincos(Deg2rad(51.6))
	o, err = StateToElements(StateVector{Position: Vector3{X: r}, Velocity: Vector3{Y: vCirc * cosI, Z: vCirc * sinI}}, μ)
	if err != nil {
		t.Fatalf("err = %s", err)
	}
	if !o.Circular || o.Equatorial {
		t.Fatalf("circular inclined orbit flagged as %s", o)
	}
	if ok, err := anglesEqual(o.Inclination, Deg2rad(51.6)); !ok {
		t.Fatalf("i: %s", err)
	}

	o, err = StateToElements(StateVector{Position: Vector3{X: r}, Velocity: Vector3{Y: 1.1 * vCirc}}, μ)
	if err != nil {
		t.Fatalf("err = %s", err)
	}
	if o.Circular || !o.Equatorial {
		t.Fatalf("elliptical equatorial orbit flagged as %s", o)
	}
	if !scalar.EqualWithinAbs(o.Eccentricity, 0.21, 1e-9) {
		t.Fatalf("e=%f", o.Eccentricity)
	}
	if !anglesEqualWithin(o.MeanAnomaly, 0, 1e-6) {
		t.Fatalf("M=%f at periapsis", o.MeanAnomaly)
	}

	// Retrograde equatorial.
	o, err = StateToElements(StateVector{Position: Vector3{X: r}, Velocity: Vector3{Y: -vCirc}}, μ)
	if err != nil {
		t.Fatalf("err = %s", err)
	}
	if !o.Equatorial {
		t.Fatalf("retrograde equatorial orbit flagged as %s", o)
	}
	if ok, err := anglesEqual(o.Inclination, math.Pi); !ok {
		t.Fatalf("i: %s", err)
	}
}

func TestElementsRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	μ := Earth.GM()
	epoch := time.Date(2026, 3, 14, 15, 9, 26, 0, time.UTC)
	for k := 0; k < 150; k++ {
		o := OrbitalElements{
			SemiMajorAxis: 6.6e6 + rng.Float64()*8.34e7,
			Eccentricity:  0.001 + rng.Float64()*0.849,
			Inclination:   0.01 + rng.Float64()*3.11,
			RAAN:          rng.Float64() * 2 * math.Pi,
			ArgPeriapsis:  rng.Float64() * 2 * math.Pi,
			MeanAnomaly:   rng.Float64() * 2 * math.Pi,
			Epoch:         epoch,
		}
		s, err := ElementsToState(o, μ)
		if err != nil {
			t.Fatalf("case %d: %s", k, err)
		}
		back, err := StateToElements(s, μ)
		if err != nil {
			t.Fatalf("case %d: %s", k, err)
		}
		if ok, err := back.StrictlyEquals(o); !ok {
			t.Fatalf("case %d: %s\n%s\n%s", k, err, o, back)
		}
		s2, err := ElementsToState(back, μ)
		if err != nil {
			t.Fatalf("case %d: %s", k, err)
		}
		if !vectorsEqualRel(s.Position, s2.Position, 1e-6) {
			t.Fatalf("case %d: R=%+v != %+v", k, s.Position, s2.Position)
		}
		if !vectorsEqualRel(s.Velocity, s2.Velocity, 1e-6) {
			t.Fatalf("case %d: V=%+v != %+v", k, s.Velocity, s2.Velocity)
		}
	}
}

func TestStateToElementsErrors(t *testing.T) {
	μ := Earth.GM()
	var invalid InvalidParameterError
	if _, err := StateToElements(StateVector{Position: Vector3{X: 7e6}, Velocity: Vector3{Y: 7e3}}, 0); !errors.As(err, &invalid) {
		t.Fatalf("μ=0 returned %v", err)
	}
	var unbound UnboundOrbitError
	if _, err := StateToElements(StateVector{Position: Vector3{X: 7e6}, Velocity: Vector3{Y: 12e3}}, μ); !errors.As(err, &unbound) {
		t.Fatalf("hyperbolic state returned %v", err)
	}
	var degenerate DegenerateOrbitError
	if _, err := StateToElements(StateVector{Position: Vector3{X: 7e6}, Velocity: Vector3{X: 8e3}}, μ); !errors.As(err, &degenerate) {
		t.Fatalf("rectilinear state returned %v", err)
	}
}

func TestElementsToStateErrors(t *testing.T) {
	μ := Earth.GM()
	var invalid InvalidOrbitError
	if _, err := ElementsToState(OrbitalElements{SemiMajorAxis: -7e6, Eccentricity: 0.1}, μ); !errors.As(err, &invalid) {
		t.Fatalf("a<0 returned %v", err)
	}
	if _, err := ElementsToState(OrbitalElements{SemiMajorAxis: 7e6, Eccentricity: 1.2}, μ); !errors.As(err, &invalid) {
		t.Fatalf("e>1 returned %v", err)
	}
	var param InvalidParameterError
	if _, err := ElementsToState(OrbitalElements{SemiMajorAxis: 7e6, Eccentricity: 0.1}, -1); !errors.As(err, &param) {
		t.Fatalf("μ<0 returned %v", err)
	}
}

func TestKeplerEquation(t *testing.T) {
	for _, e := range []float64{0, 0.1, 0.3, 0.6, 0.8, 0.9, 0.99} {
		for M := 0.05; M < 2*math.Pi; M += 0.1 {
			E, err := MeanToEccentricAnomaly(M, e)
			if err != nil {
				t.Fatalf("M=%f e=%f: %s", M, e, err)
			}
			if !anglesEqualWithin(EccentricToMeanAnomaly(E, e), M, 1e-9) {
				t.Fatalf("M=%f e=%f: E=%f does not invert", M, e, E)
			}
		}
	}
	// Circular orbits have E = M.
	E, err := MeanToEccentricAnomaly(1.234, 0)
	if err != nil {
		t.Fatalf("err = %s", err)
	}
	if E != 1.234 {
		t.Fatalf("E=%f", E)
	}
}

func TestAnomalyConversions(t *testing.T) {
	for _, e := range []float64{0.001, 0.2, 0.5, 0.8, 0.95} {
		for ν := 0.05; ν < 2*math.Pi; ν += 0.1 {
			E := TrueToEccentricAnomaly(ν, e)
			if !anglesEqualWithin(EccentricToTrueAnomaly(E, e), ν, 1e-9) {
				t.Fatalf("ν=%f e=%f does not invert via E", ν, e)
			}
			M := TrueToMeanAnomaly(ν, e)
			E2, err := MeanToEccentricAnomaly(M, e)
			if err != nil {
				t.Fatalf("ν=%f e=%f: %s", ν, e, err)
			}
			if !anglesEqualWithin(EccentricToTrueAnomaly(E2, e), ν, 1e-8) {
				t.Fatalf("ν=%f e=%f does not invert via M", ν, e)
			}
		}
	}
}

func TestStateAtHalfPeriod(t *testing.T) {
	μ := Earth.GM()
	epoch := time.Date(2026, 3, 14, 15, 9, 26, 0, time.UTC)
	o := OrbitalElements{
		SemiMajorAxis: 7e6,
		Inclination:   Deg2rad(51.6),
		RAAN:          Deg2rad(40),
		MeanAnomaly:   Deg2rad(10),
		Epoch:         epoch,
	}
	s0, err := o.StateAt(epoch, μ)
	if err != nil {
		t.Fatalf("err = %s", err)
	}
	s1, err := o.StateAt(epoch.Add(o.Period(μ)/2), μ)
	if err != nil {
		t.Fatalf("err = %s", err)
	}
	// On a circular orbit, half a period later the craft is antipodal.
	if !vectorsEqualRel(s0.Position.Scale(-1), s1.Position, 1e-5) {
		t.Fatalf("R=%+v not antipodal to %+v", s1.Position, s0.Position)
	}
	if !vectorsEqualRel(s0.Velocity.Scale(-1), s1.Velocity, 1e-5) {
		t.Fatalf("V=%+v not antipodal to %+v", s1.Velocity, s0.Velocity)
	}
}

func TestElementsEquals(t *testing.T) {
	o := OrbitalElements{SemiMajorAxis: 2.5e7, Eccentricity: 0.6, Inclination: 0.5, RAAN: 1, ArgPeriapsis: 2, MeanAnomaly: 3}
	o1 := o
	o1.MeanAnomaly = 4
	if ok, err := o.Equals(o1); !ok {
		t.Fatalf("anomaly should be free: %s", err)
	}
	if ok, _ := o.StrictlyEquals(o1); ok {
		t.Fatal("anomaly should not be free")
	}
	o2 := o
	o2.SemiMajorAxis += 1e5
	if ok, _ := o.Equals(o2); ok {
		t.Fatal("semi major axes differ")
	}
	o3 := o
	o3.Circular = true
	if ok, _ := o.Equals(o3); ok {
		t.Fatal("flags differ")
	}
	// The argument of periapsis of a circular orbit is meaningless.
	c := OrbitalElements{SemiMajorAxis: 2.5e7, Inclination: 0.5, RAAN: 1, ArgPeriapsis: 2, Circular: true}
	c1 := c
	c1.ArgPeriapsis = 5
	if ok, err := c.Equals(c1); !ok {
		t.Fatalf("ω should be free on a circular orbit: %s", err)
	}
}
