package noise

import (
	"math"

	"github.com/MeKo-Tech/cloudnoise/internal/vecmath"
)

// Starting distance of the nearest feature point search.
const farDistance = 1.0e10

// hash maps n to a pseudo-random value in [0,1).
// The fractional part must be floor based: sin is negative for half of the inputs and
// a truncating fract would return values in (-1,0] there.
func hash(n float32) float32 {
	x := float32(float32(math.Sin(float64(n+1.951))) * 43758.547)
	return vecmath.Fract(x)
}

// valueNoise is a smooth value noise over the integer lattice, used to jitter the
// Worley feature points.
func valueNoise(x Vec3) float32 {
	p := vecmath.Floor3(x)
	f := vecmath.Fract3(x)
	for i, v := range f {
		f[i] = (v * v) * (3 - float32(2*v))
	}

	n := p.X() + float32(p.Y()*57) + float32(113*p.Z())

	return vecmath.Lerp(
		vecmath.Lerp(
			vecmath.Lerp(hash(n+0), hash(n+1), f.X()),
			vecmath.Lerp(hash(n+57), hash(n+58), f.X()),
			f.Y(),
		),
		vecmath.Lerp(
			vecmath.Lerp(hash(n+113), hash(n+114), f.X()),
			vecmath.Lerp(hash(n+170), hash(n+171), f.X()),
			f.Y(),
		),
		f.Z(),
	)
}

// Worley returns the squared distance from p to the nearest feature point of a
// cellCount³ grid laid over the unit cube, clamped to [0,1].
//
// Neighbour cells are wrapped modulo cellCount before their feature point is hashed,
// so the result repeats when any coordinate of p moves by 1.
func Worley(p Vec3, cellCount float32) float32 {
	pCell := p.Mul(cellCount)
	base := vecmath.Floor3(pCell)
	period := vecmath.Splat3(cellCount)

	d := float32(farDistance)
	for x := -1; x <= 1; x++ {
		for y := -1; y <= 1; y++ {
			for z := -1; z <= 1; z++ {
				tp := base.Add(Vec3{float32(x), float32(y), float32(z)})
				jitter := valueNoise(vecmath.Mod3(tp, period))
				diff := pCell.Sub(tp).Sub(vecmath.Splat3(jitter))

				d = vecmath.Min(d, vecmath.Dot3(diff, diff))
			}
		}
	}

	return vecmath.Clamp01(d)
}
