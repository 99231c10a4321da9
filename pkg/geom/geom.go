// Package geom provides the small amount of 2D vector and affine math the
// scene graph needs.
//
// # Conventions
//
// Points are [Vec2] values in user units (pixels in SVG output). The camera
// is a [Mat23], a 2×3 affine matrix stored column-major as [a b c d e f]:
//
//	x' = a·x + c·y + e
//	y' = b·x + d·y + f
//
// This is the same layout SVG uses for transform="matrix(a b c d e f)" and
// the layout the persisted JSON format uses for its "camera" field.
//
// All types are plain values; nothing here allocates or holds references.
package geom

import "math"

// =============================================================================
// Vec2
// =============================================================================

// Vec2 is a 2D point or vector. It marshals to JSON as [x, y].
type Vec2 [2]float64

// Zero is the origin. Unresolved node references resolve to Zero.
var Zero = Vec2{0, 0}

// V is shorthand for Vec2{x, y}.
func V(x, y float64) Vec2 { return Vec2{x, y} }

// X returns the horizontal component.
func (v Vec2) X() float64 { return v[0] }

// Y returns the vertical component.
func (v Vec2) Y() float64 { return v[1] }

// Add returns v + o.
func (v Vec2) Add(o Vec2) Vec2 { return Vec2{v[0] + o[0], v[1] + o[1]} }

// Sub returns v - o.
func (v Vec2) Sub(o Vec2) Vec2 { return Vec2{v[0] - o[0], v[1] - o[1]} }

// Scale returns v multiplied by s.
func (v Vec2) Scale(s float64) Vec2 { return Vec2{v[0] * s, v[1] * s} }

// Len returns the Euclidean length of v.
func (v Vec2) Len() float64 { return math.Hypot(v[0], v[1]) }

// IsFinite reports whether both components are finite numbers.
func (v Vec2) IsFinite() bool {
	return !math.IsNaN(v[0]) && !math.IsInf(v[0], 0) && !math.IsNaN(v[1]) && !math.IsInf(v[1], 0)
}

// =============================================================================
// Rect
// =============================================================================

// Rect is an axis-aligned rectangle with Min at the top-left corner.
type Rect struct {
	Min, Max Vec2
}

// RectFrom builds a rectangle from a corner and a size.
func RectFrom(pos, size Vec2) Rect {
	return Rect{Min: pos, Max: pos.Add(size)}
}

// Width returns the horizontal span of the rectangle.
func (r Rect) Width() float64 { return r.Max[0] - r.Min[0] }

// Height returns the vertical span of the rectangle.
func (r Rect) Height() float64 { return r.Max[1] - r.Min[1] }

// Contains reports whether p lies inside r. Edges are inclusive.
func (r Rect) Contains(p Vec2) bool {
	return p[0] >= r.Min[0] && p[0] <= r.Max[0] &&
		p[1] >= r.Min[1] && p[1] <= r.Max[1]
}

// Union returns the smallest rectangle containing both r and o.
func (r Rect) Union(o Rect) Rect {
	return Rect{
		Min: Vec2{math.Min(r.Min[0], o.Min[0]), math.Min(r.Min[1], o.Min[1])},
		Max: Vec2{math.Max(r.Max[0], o.Max[0]), math.Max(r.Max[1], o.Max[1])},
	}
}

// =============================================================================
// Mat23
// =============================================================================

// Mat23 is a 2D affine transform in column-major order [a b c d e f].
// It marshals to JSON as a 6-element array.
type Mat23 [6]float64

// Identity is the identity transform.
var Identity = Mat23{1, 0, 0, 1, 0, 0}

// Translate returns a pure translation by t.
func Translate(t Vec2) Mat23 { return Mat23{1, 0, 0, 1, t[0], t[1]} }

// ScaleBy returns a uniform scale about the origin.
func ScaleBy(s float64) Mat23 { return Mat23{s, 0, 0, s, 0, 0} }

// Apply transforms the point p.
func (m Mat23) Apply(p Vec2) Vec2 {
	return Vec2{
		m[0]*p[0] + m[2]*p[1] + m[4],
		m[1]*p[0] + m[3]*p[1] + m[5],
	}
}

// Mul returns m·o, the transform that applies o first and then m.
func (m Mat23) Mul(o Mat23) Mat23 {
	return Mat23{
		m[0]*o[0] + m[2]*o[1],
		m[1]*o[0] + m[3]*o[1],
		m[0]*o[2] + m[2]*o[3],
		m[1]*o[2] + m[3]*o[3],
		m[0]*o[4] + m[2]*o[5] + m[4],
		m[1]*o[4] + m[3]*o[5] + m[5],
	}
}

// Det returns the determinant of the linear part.
func (m Mat23) Det() float64 { return m[0]*m[3] - m[1]*m[2] }

// Invert returns the inverse transform. ok is false when m is singular.
func (m Mat23) Invert() (inv Mat23, ok bool) {
	det := m.Det()
	if det == 0 || math.IsNaN(det) || math.IsInf(det, 0) {
		return Mat23{}, false
	}
	a, b, c, d := m[3]/det, -m[1]/det, -m[2]/det, m[0]/det
	return Mat23{
		a, b, c, d,
		-(a*m[4] + c*m[5]),
		-(b*m[4] + d*m[5]),
	}, true
}

// IsFinite reports whether every component is a finite number.
func (m Mat23) IsFinite() bool {
	for _, v := range m {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
