// Package vecmath provides the float32 vector helpers used by the noise engine.
//
// Vec3 and Vec4 are aliases of the mathgl types so the usual Add/Sub/Mul methods are
// available. The componentwise helpers follow GLSL semantics: Fract is always
// x - floor(x), never the truncating variant.
//
// Every product that feeds a sum is converted to float32 before the addition. Go is
// allowed to fuse x*y+z into a single FMA instruction otherwise, which changes the
// rounding of the result on some architectures.
package vecmath

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

type (
	Vec3 = mgl32.Vec3
	Vec4 = mgl32.Vec4
)

// Splat3 returns a Vec3 with all components set to v.
func Splat3(v float32) Vec3 { return Vec3{v, v, v} }

// Splat4 returns a Vec4 with all components set to v.
func Splat4(v float32) Vec4 { return Vec4{v, v, v, v} }

// Floor returns the largest integer value less than or equal to x.
func Floor(x float32) float32 { return float32(math.Floor(float64(x))) }

// Fract returns x - floor(x), which lies in [0,1) for finite x.
func Fract(x float32) float32 { return x - Floor(x) }

func Floor3(v Vec3) Vec3 { return Vec3{Floor(v[0]), Floor(v[1]), Floor(v[2])} }

func Floor4(v Vec4) Vec4 {
	return Vec4{Floor(v[0]), Floor(v[1]), Floor(v[2]), Floor(v[3])}
}

func Fract3(v Vec3) Vec3 { return v.Sub(Floor3(v)) }

func Fract4(v Vec4) Vec4 { return v.Sub(Floor4(v)) }

func Abs4(v Vec4) Vec4 {
	return Vec4{mgl32.Abs(v[0]), mgl32.Abs(v[1]), mgl32.Abs(v[2]), mgl32.Abs(v[3])}
}

// Min returns the smaller of a and b. If one of them is NaN, the other is returned.
func Min(a, b float32) float32 {
	if a != a || b < a {
		return b
	}
	return a
}

// Clamp01 clamps x to [0,1]. NaN passes through unchanged.
func Clamp01(x float32) float32 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

// Mul3 multiplies two vectors componentwise.
func Mul3(a, b Vec3) Vec3 { return Vec3{a[0] * b[0], a[1] * b[1], a[2] * b[2]} }

// Mul4 multiplies two vectors componentwise.
func Mul4(a, b Vec4) Vec4 {
	return Vec4{a[0] * b[0], a[1] * b[1], a[2] * b[2], a[3] * b[3]}
}

// Div4 divides two vectors componentwise.
func Div4(a, b Vec4) Vec4 {
	return Vec4{a[0] / b[0], a[1] / b[1], a[2] / b[2], a[3] / b[3]}
}

// Dot3 is the sum of the componentwise products, accumulated left to right.
func Dot3(a, b Vec3) float32 {
	return float32(a[0]*b[0]) + float32(a[1]*b[1]) + float32(a[2]*b[2])
}

// Dot4 is the sum of the componentwise products, accumulated left to right.
func Dot4(a, b Vec4) float32 {
	return float32(a[0]*b[0]) + float32(a[1]*b[1]) + float32(a[2]*b[2]) + float32(a[3]*b[3])
}

func mod(x, m float32) float32 {
	return x - float32(m*Floor(x/m))
}

// Mod3 is the GLSL mod: x - m*floor(x/m), componentwise.
func Mod3(x, m Vec3) Vec3 {
	return Vec3{mod(x[0], m[0]), mod(x[1], m[1]), mod(x[2], m[2])}
}

// Mod4 is the GLSL mod: x - m*floor(x/m), componentwise.
func Mod4(x, m Vec4) Vec4 {
	return Vec4{mod(x[0], m[0]), mod(x[1], m[1]), mod(x[2], m[2]), mod(x[3], m[3])}
}

// Select4 picks a[i] where mask[i] is set and b[i] otherwise.
func Select4(mask [4]bool, a, b Vec4) Vec4 {
	var out Vec4
	for i := range out {
		if mask[i] {
			out[i] = a[i]
		} else {
			out[i] = b[i]
		}
	}
	return out
}

// Less4 returns the componentwise mask a < b.
func Less4(a, b Vec4) [4]bool {
	return [4]bool{a[0] < b[0], a[1] < b[1], a[2] < b[2], a[3] < b[3]}
}

// Step4 is the GLSL step: 0 where x < edge, 1 otherwise.
func Step4(edge, x Vec4) Vec4 {
	return Select4(Less4(x, edge), Vec4{}, Splat4(1))
}

// Lerp computes a*(1-t) + b*t.
func Lerp(a, b, t float32) float32 {
	return float32(a*(1-t)) + float32(b*t)
}

// Lerp4 is Lerp applied componentwise with a shared t.
func Lerp4(a, b Vec4, t float32) Vec4 {
	return Vec4{Lerp(a[0], b[0], t), Lerp(a[1], b[1], t), Lerp(a[2], b[2], t), Lerp(a[3], b[3], t)}
}

// TaylorInvSqrt approximates 1/sqrt(x) near x = 1 by the first Taylor term.
// The intermediate arithmetic runs in float64.
func TaylorInvSqrt(x float32) float32 {
	return float32(1.79284291400159 - float64(0.85373472095314*float64(x)))
}

func TaylorInvSqrt4(v Vec4) Vec4 {
	return Vec4{TaylorInvSqrt(v[0]), TaylorInvSqrt(v[1]), TaylorInvSqrt(v[2]), TaylorInvSqrt(v[3])}
}
