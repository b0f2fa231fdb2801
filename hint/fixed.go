// Copyright 2012 The Freetype-Go Authors. All rights reserved.
// Use of this source code is governed by your choice of either the
// FreeType License or the GNU General Public License version 2 (or
// any later version), both of which can be found in the LICENSE file.

package hint

import "math"

// F26Dot6 is a 26.6 signed fixed point number: dividing the raw value by 64
// gives the real value. It is the unit that every point coordinate, CVT
// entry and measured distance is expressed in.
type F26Dot6 int32

// F26Dot6FromInt converts a whole-pixel integer to F26Dot6.
func F26Dot6FromInt(n int32) F26Dot6 { return F26Dot6(n << 6) }

// Abs returns the absolute value of x.
func (x F26Dot6) Abs() F26Dot6 {
	if x < 0 {
		return -x
	}
	return x
}

// Mul returns x*y, with the multiply-then-divide-by-64 rounding that keeps
// the result in 26.6 space.
func (x F26Dot6) Mul(y F26Dot6) F26Dot6 {
	return F26Dot6((int64(x)*int64(y) + 1<<5) >> 6)
}

// Div returns x/y in 26.6 space, with rounded division.
func (x F26Dot6) Div(y F26Dot6) F26Dot6 {
	num := int64(x) << 6
	if (num < 0) != (int64(y) < 0) {
		num -= int64(y) / 2
	} else {
		num += int64(y) / 2
	}
	return F26Dot6(num / int64(y))
}

// Floor truncates x down to the nearest whole pixel.
func (x F26Dot6) Floor() F26Dot6 { return x &^ 63 }

// Ceil rounds x up to the nearest whole pixel.
func (x F26Dot6) Ceil() F26Dot6 { return (x + 63) &^ 63 }

// RoundNearest rounds x to the nearest whole pixel, half away from zero.
func (x F26Dot6) RoundNearest() F26Dot6 {
	if x >= 0 {
		return (x + 32) &^ 63
	}
	return -((-x + 32) &^ 63)
}

// ToFloat64 returns x as a floating point number of pixels, for diagnostics.
func (x F26Dot6) ToFloat64() float64 { return float64(x) / 64 }

// F2Dot14 is a 2.14 signed fixed point number, used for the components of
// unit vectors (projection, freedom, dual-projection).
type F2Dot14 int16

// F2Dot14FromFloat64 converts a floating point number to F2Dot14, rounding
// to the nearest representable value.
func F2Dot14FromFloat64(f float64) F2Dot14 {
	return F2Dot14(math.Round(f * 16384))
}

func (x F2Dot14) toFloat64() float64 { return float64(x) / 16384 }

// Vector is a pair of F2Dot14 components that must satisfy x²+y² ≈ 1. Use
// SetVector to assign one; the zero Vector is not a valid vector (it is
// only ever seen as a zero value before first use).
type Vector struct {
	X, Y F2Dot14
}

// SetVector normalizes (x, y) to a unit vector and stores it in v. Assigning
// the zero vector is an error: there is no direction to renormalize.
func SetVector(v *Vector, x, y F2Dot14) error {
	const one = 1 << 14
	sq := int64(x)*int64(x) + int64(y)*int64(y)
	if sq == one*one {
		v.X, v.Y = x, y
		return nil
	}
	fx, fy := x.toFloat64(), y.toFloat64()
	size := math.Sqrt(fx*fx + fy*fy)
	if size == 0 {
		return &Error{Kind: ErrInvalidVector}
	}
	v.X = F2Dot14FromFloat64(fx / size)
	v.Y = F2Dot14FromFloat64(fy / size)
	return nil
}

// dotProduct returns x.y in 26.6 space, where (x, y) is a 26.6 point and v
// is a 2.14 unit vector: project(p, v) = p.x*v.x + p.y*v.y.
func dotProduct(x, y F26Dot6, v Vector) F26Dot6 {
	px, py := int64(x), int64(y)
	vx, vy := int64(v.X), int64(v.Y)
	return F26Dot6((px*vx + py*vy) >> 14)
}

// weightedAverage collapses two per-axis PPEM-like quantities into a single
// scalar along v: ‖(a·v.x, b·v.y)‖ (Euclidean norm), used to pick a single
// PPEM for a CVT entry whose distance is measured along an arbitrary
// projection vector (see CVT scaling in §4.6).
func weightedAverage(a, b F26Dot6, v Vector) F26Dot6 {
	fa := float64(a) * v.X.toFloat64()
	fb := float64(b) * v.Y.toFloat64()
	return F26Dot6(math.Round(math.Sqrt(fa*fa + fb*fb)))
}

func (x F2Dot14) Abs() F2Dot14 {
	if x < 0 {
		return -x
	}
	return x
}
