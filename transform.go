package canopy

import (
	"errors"
	"math"
)

// ErrSingularTransform is returned when a matrix with a (near) zero
// determinant has to be inverted, typically because a scale component is 0.
var ErrSingularTransform = errors.New("canopy: transform is not invertible")

// singularEpsilon bounds the determinant below which a matrix is treated as
// singular.
const singularEpsilon = 1e-12

// Matrix is a 2D affine transform stored as [a, b, c, d, tx, ty]:
//
//	| a  c  tx |
//	| b  d  ty |
//	| 0  0   1 |
//
// The bottom row is implicit.
type Matrix [6]float64

// Identity returns the identity matrix.
func Identity() Matrix {
	return Matrix{1, 0, 0, 1, 0, 0}
}

// Translation returns a matrix translating by (x, y).
func Translation(x, y float64) Matrix {
	return Matrix{1, 0, 0, 1, x, y}
}

// Rotation returns a matrix rotating by rad radians (clockwise with Y down).
func Rotation(rad float64) Matrix {
	sin, cos := math.Sincos(rad)
	return Matrix{cos, sin, -sin, cos, 0, 0}
}

// Scaling returns a matrix scaling by (x, y).
func Scaling(x, y float64) Matrix {
	return Matrix{x, 0, 0, y, 0, 0}
}

// Compose builds Translate(t) * Rotate(rad) * Scale(s), the local transform
// of every entity.
func Compose(t Vec2, rad float64, s Vec2) Matrix {
	sin, cos := math.Sincos(rad)
	return Matrix{
		cos * s.X, sin * s.X,
		-sin * s.Y, cos * s.Y,
		t.X, t.Y,
	}
}

// Multiply returns m * o. Composing parent-then-child is parent.Multiply(child).
func (m Matrix) Multiply(o Matrix) Matrix {
	return Matrix{
		m[0]*o[0] + m[2]*o[1],
		m[1]*o[0] + m[3]*o[1],
		m[0]*o[2] + m[2]*o[3],
		m[1]*o[2] + m[3]*o[3],
		m[0]*o[4] + m[2]*o[5] + m[4],
		m[1]*o[4] + m[3]*o[5] + m[5],
	}
}

// Position returns the translation component.
func (m Matrix) Position() Vec2 {
	return Vec2{m[4], m[5]}
}

// RotationAngle returns the rotation component in radians, in (-π, π].
func (m Matrix) RotationAngle() float64 {
	return math.Atan2(m[1], m[0])
}

// ScaleFactors returns the scale component as the norms of the two column
// vectors. A negative determinant (mirrored transform) is reported on Y, so
// Compose(Position, RotationAngle, ScaleFactors) rebuilds an equal matrix.
func (m Matrix) ScaleFactors() Vec2 {
	sx := math.Hypot(m[0], m[1])
	sy := math.Hypot(m[2], m[3])
	if m.Determinant() < 0 {
		sy = -sy
	}
	return Vec2{sx, sy}
}

// Determinant returns the determinant of the linear part.
func (m Matrix) Determinant() float64 {
	return m[0]*m[3] - m[2]*m[1]
}

// Invert returns the inverse of m, or ErrSingularTransform when the
// determinant is (near) zero.
func (m Matrix) Invert() (Matrix, error) {
	det := m.Determinant()
	if det > -singularEpsilon && det < singularEpsilon {
		return Matrix{}, ErrSingularTransform
	}
	invDet := 1.0 / det
	a := m[3] * invDet
	b := -m[1] * invDet
	c := -m[2] * invDet
	d := m[0] * invDet
	return Matrix{
		a, b, c, d,
		-(a*m[4] + c*m[5]),
		-(b*m[4] + d*m[5]),
	}, nil
}

// Apply transforms a point.
func (m Matrix) Apply(p Vec2) Vec2 {
	return Vec2{m[0]*p.X + m[2]*p.Y + m[4], m[1]*p.X + m[3]*p.Y + m[5]}
}

// InverseApply maps a point through the inverse of m.
func (m Matrix) InverseApply(p Vec2) (Vec2, error) {
	inv, err := m.Invert()
	if err != nil {
		return Vec2{}, err
	}
	return inv.Apply(p), nil
}

// IsTranslation reports whether m only translates.
func (m Matrix) IsTranslation() bool {
	return m[0] == 1 && m[1] == 0 && m[2] == 0 && m[3] == 1
}

// degToRad converts degrees to radians.
func degToRad(deg float64) float64 {
	return deg * math.Pi / 180
}
