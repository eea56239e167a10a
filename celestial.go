package orbital

import (
	"fmt"
	"strings"
)

const (
	// G is the universal gravitational constant in m^3/(kg*s^2).
	G = 6.6743e-11
	// AU is one astronomical unit in meters.
	AU = 1.495978707e11
)

// CelestialBody defines a celestial body. Masses are in kg and radii in
// meters; the gravitational parameter is always derived from the mass so the
// two cannot drift apart.
type CelestialBody struct {
	Name   string
	Mass   float64
	Radius float64
	J2     float64
	J3     float64
	J4     float64
}

// GM returns μ = G times the body's mass, in m^3/s^2.
func (c CelestialBody) GM() float64 {
	return G * c.Mass
}

// J returns the zonal harmonic J_n. Only J2 through J4 are tabulated.
func (c CelestialBody) J(n uint8) float64 {
	switch n {
	case 2:
		return c.J2
	case 3:
		return c.J3
	case 4:
		return c.J4
	default:
		return 0.0
	}
}

// String implements the Stringer interface.
func (c CelestialBody) String() string {
	return c.Name + " body"
}

// Equals returns whether the provided celestial body is the same.
func (c *CelestialBody) Equals(b CelestialBody) bool {
	return c.Name == b.Name && c.Mass == b.Mass && c.Radius == b.Radius
}

// CelestialBodyFromString returns the body from its name.
func CelestialBodyFromString(name string) (CelestialBody, error) {
	switch strings.ToLower(name) {
	case "sun":
		return Sun, nil
	case "mercury":
		return Mercury, nil
	case "venus":
		return Venus, nil
	case "earth":
		return Earth, nil
	case "mars":
		return Mars, nil
	case "jupiter":
		return Jupiter, nil
	case "saturn":
		return Saturn, nil
	case "uranus":
		return Uranus, nil
	case "neptune":
		return Neptune, nil
	default:
		return CelestialBody{}, fmt.Errorf("undefined body '%s'", name)
	}
}

/* Definitions */

// Sun is our star.
var Sun = CelestialBody{"Sun", 1.9885e30, 6.957e8, 0, 0, 0}

// Mercury hugs the Sun.
var Mercury = CelestialBody{"Mercury", 3.3011e23, 2.4397e6, 50.3e-6, 0, 0}

// Venus broils under its clouds.
var Venus = CelestialBody{"Venus", 4.8675e24, 6.0518e6, 27e-6, 0, 0}

// Earth is home.
var Earth = CelestialBody{"Earth", 5.97219e24, 6.3781363e6, 1082.6269e-6, -2.5324e-6, -1.6204e-6}

// Mars keeps the rovers busy.
var Mars = CelestialBody{"Mars", 6.4171e23, 3.39619e6, 1964e-6, 36e-6, -18e-6}

// Jupiter outweighs the other planets combined.
var Jupiter = CelestialBody{"Jupiter", 1.8982e27, 7.1492e7, 0.01475, 0, -0.00058}

// Saturn has the best rings.
var Saturn = CelestialBody{"Saturn", 5.6834e26, 6.0268e7, 0.01645, 0, -0.001}

// Uranus spins on its side.
var Uranus = CelestialBody{"Uranus", 8.6810e25, 2.5559e7, 0.012, 0, 0}

// Neptune has the fastest winds.
var Neptune = CelestialBody{"Neptune", 1.02413e26, 2.4622e7, 0.003411, 0, 0}

/* Interplanetary window constants */

// meanLongitude holds the J2000 mean longitude l0 (deg) and its centennial
// rate (deg per Julian century) from the JPL approximate planetary elements,
// valid 1800 AD - 2050 AD.
type meanLongitude struct {
	l0, rate float64
}

// degAt returns the mean longitude in degrees at T Julian centuries past
// J2000, normalized to [0, 360).
func (m meanLongitude) degAt(T float64) float64 {
	l := m.l0 + m.rate*T
	l -= 360 * float64(int(l/360))
	if l < 0 {
		l += 360
	}
	return l
}

var earthMeanLongitude = meanLongitude{100.46457166, 35999.37244981}

// windowParams gathers the per-target constants which drive launch window
// searches: the Earth-target synodic period, a Hohmann-grade characteristic
// energy and transfer duration, and the target's mean longitude polynomial.
type windowParams struct {
	synodicDays  float64
	c3           float64 // m^2/s^2
	transferDays float64
	meanLong     meanLongitude
}

// meanMotion returns the target's mean motion in deg/day.
func (w windowParams) meanMotion() float64 {
	return w.meanLong.rate / 36525
}

var windowTable = map[string]windowParams{
	"Mercury": {115.88, 56.7e6, 105.5, meanLongitude{252.25032350, 149472.67411175}},
	"Venus":   {583.92, 6.25e6, 146.1, meanLongitude{181.97909950, 58517.81538729}},
	"Mars":    {779.94, 8.69e6, 258.9, meanLongitude{-4.55343205, 19140.30268499}},
	"Jupiter": {398.88, 77.3e6, 997.9, meanLongitude{34.39644051, 3034.74612775}},
	"Saturn":  {378.09, 105.9e6, 2223, meanLongitude{49.95424423, 1222.49362201}},
	"Uranus":  {369.66, 127.2e6, 5857, meanLongitude{313.23810451, 428.48202785}},
	"Neptune": {367.49, 135.8e6, 11179, meanLongitude{-55.12002969, 218.45945325}},
}

// windowParamsFor returns the window constants for a target body, if any.
func windowParamsFor(target CelestialBody) (windowParams, bool) {
	p, ok := windowTable[target.Name]
	return p, ok
}
