// Package noise implements the tileable Perlin and Worley evaluators used to synthesize
// the cloud textures.
//
// Perlin4 is a port of the periodic perlin(p, rep) from GLM's gtc/noise. Worley is a
// 27-neighbour F1 cellular noise whose cell lattice wraps around the cell count. Both are
// pure functions of their arguments: no seeds, no shared state, no validation. Degenerate
// input (zero periods, NaN, Inf) propagates through IEEE-754 arithmetic.
package noise

import (
	"github.com/MeKo-Tech/cloudnoise/internal/vecmath"
)

type (
	Vec3 = vecmath.Vec3
	Vec4 = vecmath.Vec4
)

const (
	perlinScale = 2.2

	// Frequency multiplier between two FBM octaves.
	octaveFrequencyFactor = 2.0
	// Weight of the first FBM octave. Each following weight is the square of the previous one.
	initialOctaveWeight = 0.5
)

// mod289 keeps the permutation polynomial inside exactly representable integers.
func mod289(x Vec4) Vec4 {
	const inv289 float32 = 1.0 / 289.0
	var out Vec4
	for i, v := range x {
		out[i] = v - float32(vecmath.Floor(v*inv289)*289)
	}
	return out
}

func permute(x Vec4) Vec4 {
	var out Vec4
	for i, v := range x {
		out[i] = (float32(v*34) + 1) * v
	}
	return mod289(out)
}

// fade is the quintic t³(t(6t-15)+10).
func fade(t Vec4) Vec4 {
	var out Vec4
	for i, v := range t {
		out[i] = (v * v * v) * (float32(v*(float32(v*6)-15)) + 10)
	}
	return out
}

// gradients derives four pseudo-random 4D gradients from four hashed lattice indices.
// The result is lane-major: gx[i], gy[i], gz[i], gw[i] form the gradient of lane i.
func gradients(ixy Vec4) (gx, gy, gz, gw Vec4) {
	half := vecmath.Splat4(0.5)

	gx = vecmath.Div4(ixy, vecmath.Splat4(7))
	gy = vecmath.Div4(vecmath.Floor4(gx), vecmath.Splat4(7))
	gz = vecmath.Div4(vecmath.Floor4(gy), vecmath.Splat4(6))
	gx = vecmath.Fract4(gx).Sub(half)
	gy = vecmath.Fract4(gy).Sub(half)
	gz = vecmath.Fract4(gz).Sub(half)
	gw = vecmath.Splat4(0.75).Sub(vecmath.Abs4(gx)).Sub(vecmath.Abs4(gy)).Sub(vecmath.Abs4(gz))

	// Fold gradients that fall outside the octahedron back in by flipping x and y.
	sw := vecmath.Step4(gw, Vec4{})
	gx = gx.Sub(vecmath.Mul4(sw, vecmath.Step4(Vec4{}, gx).Sub(half)))
	gy = gy.Sub(vecmath.Mul4(sw, vecmath.Step4(Vec4{}, gy).Sub(half)))
	return gx, gy, gz, gw
}

// contributions returns the dot products of the four xy-corner gradients of one zw-corner
// with their offset vectors. Lanes are ordered (x0,y0), (x1,y0), (x0,y1), (x1,y1).
func contributions(ixy, pf0, pf1 Vec4, zHigh, wHigh bool) Vec4 {
	gx, gy, gz, gw := gradients(ixy)

	var g [4]Vec4
	var dots Vec4
	for i := range g {
		g[i] = Vec4{gx[i], gy[i], gz[i], gw[i]}
		dots[i] = vecmath.Dot4(g[i], g[i])
	}
	norm := vecmath.TaylorInvSqrt4(dots)

	z, w := pf0.Z(), pf0.W()
	if zHigh {
		z = pf1.Z()
	}
	if wHigh {
		w = pf1.W()
	}

	var n Vec4
	for i := range g {
		x, y := pf0.X(), pf0.Y()
		if i&1 != 0 {
			x = pf1.X()
		}
		if i&2 != 0 {
			y = pf1.Y()
		}
		n[i] = vecmath.Dot4(g[i].Mul(norm[i]), Vec4{x, y, z, w})
	}
	return n
}

// Perlin4 evaluates 4D gradient noise that repeats with period rep along each axis.
// The lattice is wrapped modulo rep, so rep components must be at least 1 to be
// meaningful. The output is nominally in [-1,1] and reaches about ±2.2 at worst.
func Perlin4(p, rep Vec4) float32 {
	one := vecmath.Splat4(1)

	pi0 := vecmath.Mod4(vecmath.Floor4(p), rep)
	pi1 := vecmath.Mod4(pi0.Add(one), rep)
	pf0 := vecmath.Fract4(p)
	pf1 := pf0.Sub(one)

	ix := Vec4{pi0.X(), pi1.X(), pi0.X(), pi1.X()}
	iy := Vec4{pi0.Y(), pi0.Y(), pi1.Y(), pi1.Y()}

	ixy := permute(permute(ix).Add(iy))
	ixy0 := permute(ixy.Add(vecmath.Splat4(pi0.Z())))
	ixy1 := permute(ixy.Add(vecmath.Splat4(pi1.Z())))
	w0 := vecmath.Splat4(pi0.W())
	w1 := vecmath.Splat4(pi1.W())

	n00 := contributions(permute(ixy0.Add(w0)), pf0, pf1, false, false)
	n01 := contributions(permute(ixy0.Add(w1)), pf0, pf1, false, true)
	n10 := contributions(permute(ixy1.Add(w0)), pf0, pf1, true, false)
	n11 := contributions(permute(ixy1.Add(w1)), pf0, pf1, true, true)

	f := fade(pf0)
	nz0 := vecmath.Lerp4(n00, n01, f.W())
	nz1 := vecmath.Lerp4(n10, n11, f.W())
	nzw := vecmath.Lerp4(nz0, nz1, f.Z())
	ny0 := vecmath.Lerp(nzw[0], nzw[2], f.Y())
	ny1 := vecmath.Lerp(nzw[1], nzw[3], f.Y())

	return perlinScale * vecmath.Lerp(ny0, ny1, f.X())
}

// PerlinFBM sums octaves of tileable Perlin noise sampled on the 3D slice w = 0.
//
// The first octave uses frequency as both sampling scale and period; each further octave
// doubles it. Octave weights start at 0.5 and are squared after every octave
// (0.5, 0.25, 0.0625, ...). The weighted mean is mapped from [-1,1] to [0,1] and clamped.
// With an integer frequency the result tiles the unit cube.
func PerlinFBM(p Vec3, frequency float32, octaves uint32) float32 {
	var sum, weightSum float32
	weight := float32(initialOctaveWeight)

	for i := uint32(0); i < octaves; i++ {
		point := p.Mul(frequency)
		val := Perlin4(point.Vec4(0), vecmath.Splat4(frequency))

		sum += float32(val * weight)
		weightSum += weight

		weight *= weight
		frequency *= octaveFrequencyFactor
	}

	return vecmath.Clamp01(float32(sum/weightSum*0.5) + 0.5)
}
