package orbital

import (
	"math"

	"gonum.org/v1/gonum/floats/scalar"
)

const deg2rad = math.Pi / 180

// Vector3 is an immutable 3D Cartesian vector. Operations return new values
// and never mutate their receiver.
type Vector3 struct {
	X, Y, Z float64
}

// Add returns v + w.
func (v Vector3) Add(w Vector3) Vector3 {
	return Vector3{v.X + w.X, v.Y + w.Y, v.Z + w.Z}
}

// Sub returns v - w.
func (v Vector3) Sub(w Vector3) Vector3 {
	return Vector3{v.X - w.X, v.Y - w.Y, v.Z - w.Z}
}

// Scale returns k*v.
func (v Vector3) Scale(k float64) Vector3 {
	return Vector3{k * v.X, k * v.Y, k * v.Z}
}

// Dot performs the inner product.
func (v Vector3) Dot(w Vector3) float64 {
	return v.X*w.X + v.Y*w.Y + v.Z*w.Z
}

// Cross performs the cross product.
func (v Vector3) Cross(w Vector3) Vector3 {
	return Vector3{v.Y*w.Z - v.Z*w.Y,
		v.Z*w.X - v.X*w.Z,
		v.X*w.Y - v.Y*w.X}
}

// Norm returns the Euclidean norm of v.
func (v Vector3) Norm() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// Distance returns |v - w|.
func (v Vector3) Distance(w Vector3) float64 {
	return v.Sub(w).Norm()
}

// Unit returns the unit vector of v, or a DegenerateVectorError when the
// norm is numerically zero.
func (v Vector3) Unit() (Vector3, error) {
	n := v.Norm()
	if scalar.EqualWithinAbs(n, 0, 1e-12) {
		return Vector3{}, DegenerateVectorError{Norm: n}
	}
	return v.Scale(1 / n), nil
}

// Angle returns the angle between v and w in radians, in [0, π]. Zero
// vectors yield an angle of zero.
func (v Vector3) Angle(w Vector3) float64 {
	nv, nw := v.Norm(), w.Norm()
	if scalar.EqualWithinAbs(nv*nw, 0, 1e-12) {
		return 0
	}
	cosθ := v.Dot(w) / (nv * nw)
	// Clamp against rounding outside [-1, 1].
	if cosθ > 1 {
		cosθ = 1
	} else if cosθ < -1 {
		cosθ = -1
	}
	return math.Acos(cosθ)
}

func (v Vector3) slice() []float64 {
	return []float64{v.X, v.Y, v.Z}
}

func vec3(s []float64) Vector3 {
	return Vector3{s[0], s[1], s[2]}
}

// sign returns the sign of a given number.
func sign(v float64) float64 {
	if scalar.EqualWithinAbs(v, 0, 1e-12) {
		return 1
	}
	return v / math.Abs(v)
}

// Deg2rad converts degrees to radians, enforcing only positive numbers.
func Deg2rad(a float64) float64 {
	if a < 0 {
		a += 360
	}
	return math.Mod(a*deg2rad, 2*math.Pi)
}

// Rad2deg converts radians to degrees, enforcing only positive numbers.
func Rad2deg(a float64) float64 {
	if a < 0 {
		a += 2 * math.Pi
	}
	return math.Mod(a/deg2rad, 360)
}
