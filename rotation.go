package orbital

import (
	"math"
	"time"

	"github.com/soniakeys/meeus/v3/julian"
	"github.com/soniakeys/meeus/v3/sidereal"
	"gonum.org/v1/gonum/mat"
)

const (
	// WGS-84 ellipsoid.
	wgs84A  = 6378137.0
	wgs84F  = 1 / 298.257223563
	wgs84E2 = wgs84F * (2 - wgs84F)
)

// Rot313Vec converts a given vector from PQW frame to ECI frame.
func Rot313Vec(θ1, θ2, θ3 float64, v Vector3) Vector3 {
	return MxV33(R3R1R3(θ1, θ2, θ3), v)
}

// R3R1R3 performs a 3-1-3 Euler parameter rotation.
// From Schaub and Junkins (the one in Vallado is wrong... surprinsingly, right? =/)
func R3R1R3(θ1, θ2, θ3 float64) *mat.Dense {
	sθ1, cθ1 := math.Sincos(θ1)
	sθ2, cθ2 := math.Sincos(θ2)
	sθ3, cθ3 := math.Sincos(θ3)
	return mat.NewDense(3, 3, []float64{cθ3*cθ1 - sθ3*cθ2*sθ1, cθ3*sθ1 + sθ3*cθ2*cθ1, sθ3 * sθ2,
		-sθ3*cθ1 - cθ3*cθ2*sθ1, -sθ3*sθ1 + cθ3*cθ2*cθ1, cθ3 * sθ2,
		sθ2 * sθ1, -sθ2 * cθ1, cθ2})
}

// R1 rotation about the 1st axis.
func R1(x float64) *mat.Dense {
	s, c := math.Sincos(x)
	return mat.NewDense(3, 3, []float64{1, 0, 0, 0, c, s, 0, -s, c})
}

// R2 rotation about the 2nd axis.
func R2(x float64) *mat.Dense {
	s, c := math.Sincos(x)
	return mat.NewDense(3, 3, []float64{c, 0, -s, 0, 1, 0, s, 0, c})
}

// R3 rotation about the 3rd axis.
func R3(x float64) *mat.Dense {
	s, c := math.Sincos(x)
	return mat.NewDense(3, 3, []float64{c, s, 0, -s, c, 0, 0, 0, 1})
}

// MxV33 multiplies a 3x3 matrix with a vector. Note that there is no
// dimension check!
func MxV33(m *mat.Dense, v Vector3) Vector3 {
	var r mat.VecDense
	r.MulVec(m, mat.NewVecDense(3, v.slice()))
	return vec3(r.RawVector().Data)
}

// GMST returns the Greenwich mean sidereal time at dt as an angle in radians,
// in [0, 2π).
func GMST(dt time.Time) float64 {
	θ := sidereal.Mean(julian.TimeToJD(dt.UTC())).Angle().Rad()
	θ = math.Mod(θ, 2*math.Pi)
	if θ < 0 {
		θ += 2 * math.Pi
	}
	return θ
}

// GEO2ECEF converts geodetic coordinates (altitude in meters, latitude and
// longitude in radians) to an ECEF position on the WGS-84 ellipsoid.
// Note that the first parameter is the altitude, not the radius from the
// center of the body!
func GEO2ECEF(altitude, latitude, longitude float64) Vector3 {
	sLat, cLat := math.Sincos(latitude)
	sLong, cLong := math.Sincos(longitude)
	n := wgs84A / math.Sqrt(1-wgs84E2*sLat*sLat)
	return Vector3{(n + altitude) * cLat * cLong,
		(n + altitude) * cLat * sLong,
		(n*(1-wgs84E2) + altitude) * sLat}
}

// ECI2ECEF converts the provided ECI vector to ECEF for the θgst given in
// radians.
func ECI2ECEF(R Vector3, θgst float64) Vector3 {
	return MxV33(R3(θgst), R)
}

// ECEF2ECI converts the provided ECEF vector to ECI for the θgst given in
// radians.
func ECEF2ECI(R Vector3, θgst float64) Vector3 {
	return ECI2ECEF(R, -θgst)
}
