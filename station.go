package orbital

import (
	"fmt"
	"math"
)

// ObserverLocation is a ground observer in boundary units: degrees and
// meters. Latitude is positive north, longitude positive east.
type ObserverLocation struct {
	Latitude  float64
	Longitude float64
	Altitude  float64
}

// Station returns the ECEF form of this location.
func (o ObserverLocation) Station(name string) Station {
	return NewStation(name, o.Altitude, o.Latitude, o.Longitude)
}

// Station defines a ground observer with its position precomputed in ECEF on
// the WGS-84 ellipsoid.
type Station struct {
	Name        string
	R           Vector3 // ECEF position
	LatΦ, Longθ float64 // these are stored in radians!
	Altitude    float64
}

// NewStation returns a new station. Angles in degrees, altitude in meters.
func NewStation(name string, altitude, latΦ, longθ float64) Station {
	lat := latΦ * deg2rad
	long := longθ * deg2rad
	return Station{name, GEO2ECEF(altitude, lat, long), lat, long, altitude}
}

// RangeElAz returns the slant vector in the SEZ frame, its range, and the
// elevation and azimuth (in radians) of a given position vector in ECEF.
func (s Station) RangeElAz(rECEF Vector3) (ρSEZ Vector3, ρ, el, az float64) {
	ρECEF := rECEF.Sub(s.R)
	ρ = ρECEF.Norm()
	ρSEZ = MxV33(R2(math.Pi/2-s.LatΦ), MxV33(R3(s.Longθ), ρECEF))
	sinEl := ρSEZ.Z / ρ
	if sinEl > 1 {
		// Rounding can push the ratio barely past one at zenith.
		sinEl = 1
	} else if sinEl < -1 {
		sinEl = -1
	}
	el = math.Asin(sinEl)
	az = normalizeAngle(math.Atan2(ρSEZ.Y, -ρSEZ.X))
	return
}

func (s Station) String() string {
	return fmt.Sprintf("%s (%f,%f); alt = %f m", s.Name, s.LatΦ/deg2rad, s.Longθ/deg2rad, s.Altitude)
}
