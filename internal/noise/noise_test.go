package noise

import (
	"math"
	"math/rand"
	"testing"

	"github.com/MeKo-Tech/cloudnoise/internal/vecmath"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func randomPoints(n int, seed int64) []Vec3 {
	rng := rand.New(rand.NewSource(seed))
	points := make([]Vec3, n)
	for i := range points {
		points[i] = Vec3{rng.Float32(), rng.Float32(), rng.Float32()}
	}
	return points
}

func TestWorleyGolden(t *testing.T) {
	tests := []struct {
		name      string
		p         Vec3
		cellCount float32
		want      float32
	}{
		{"cube center", Vec3{0.5, 0.5, 0.5}, 4, 0.6715545654296875},
		{"off lattice", Vec3{0.1, 0.7, 0.3}, 8, 0.36672621965408325},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Worley(tt.p, tt.cellCount), 1e-5)
		})
	}
}

func TestPerlin4Golden(t *testing.T) {
	tests := []struct {
		name string
		p    Vec4
		rep  float32
		want float32
	}{
		{"w zero", Vec4{0.3, 1.7, 2.2, 0}, 4, -0.25396424531936646},
		{"all axes", Vec4{5.25, 0.5, 7.75, 1.5}, 8, 0.19749832153320312},
		{"lattice point", Vec4{1, 2, 3, 0}, 4, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Perlin4(tt.p, vecmath.Splat4(tt.rep))
			assert.InDelta(t, tt.want, got, 1e-5)
		})
	}
}

func TestPerlinFBMGolden(t *testing.T) {
	assert.InDelta(t, 0.6332730650901794, PerlinFBM(Vec3{0.3, 0.6, 0.9}, 8, 3), 1e-5)
	assert.InDelta(t, 0.20070359110832214, PerlinFBM(Vec3{0.25, 0.5, 0.125}, 4, 1), 1e-5)
}

func TestHashUsesFloorFraction(t *testing.T) {
	// sin(n + 1.951) is negative for these inputs, so a truncating fract would go negative.
	tests := []struct {
		n    float32
		want float32
	}{
		{2, 0.134765625},
		{3, 0.2578125},
		{-0.3, 0.87890625},
		{0, 0.7109375},
	}

	for _, tt := range tests {
		got := hash(tt.n)
		assert.InDelta(t, tt.want, got, 1e-6, "hash(%v)", tt.n)
		assert.GreaterOrEqual(t, got, float32(0))
		assert.Less(t, got, float32(1))
	}

	x := float32(float32(math.Sin(float64(float32(2)+1.951))) * 43758.547)
	require.Less(t, x, float32(0))
	truncated := x - float32(math.Trunc(float64(x)))
	assert.NotEqual(t, truncated, hash(2))
}

func TestValueNoiseOnLatticeIsHash(t *testing.T) {
	for _, p := range []Vec3{{0, 0, 0}, {1, 2, 3}, {3, 0, 1}} {
		n := p.X() + p.Y()*57 + 113*p.Z()
		assert.Equal(t, hash(n), valueNoise(p), "valueNoise(%v)", p)
	}
}

func TestPerlinFBMTiles(t *testing.T) {
	for _, frequency := range []float32{4, 8} {
		for _, p := range randomPoints(64, 7) {
			base := PerlinFBM(p, frequency, 3)
			for axis := 0; axis < 3; axis++ {
				shifted := p
				shifted[axis]++
				assert.InDelta(t, base, PerlinFBM(shifted, frequency, 3), 1e-4,
					"frequency %v point %v axis %d", frequency, p, axis)
			}
		}
	}
}

func TestPerlin4Periodic(t *testing.T) {
	rep := vecmath.Splat4(5)
	for _, p := range randomPoints(32, 11) {
		q := Vec4{p.X() * 5, p.Y() * 5, p.Z() * 5, 0.5}
		base := Perlin4(q, rep)
		for axis := 0; axis < 4; axis++ {
			shifted := q
			shifted[axis] += 5
			assert.InDelta(t, base, Perlin4(shifted, rep), 1e-4)
		}
	}
}

func TestWorleyTiles(t *testing.T) {
	for _, cellCount := range []float32{2, 8, 14} {
		for _, p := range randomPoints(64, 3) {
			base := Worley(p, cellCount)
			shifted := p.Add(vecmath.Splat3(1))
			assert.InDelta(t, base, Worley(shifted, cellCount), 1e-4,
				"cell count %v point %v", cellCount, p)
		}
	}
}

func TestRangeBounds(t *testing.T) {
	for _, p := range randomPoints(500, 42) {
		perlin := PerlinFBM(p, 8, 3)
		require.GreaterOrEqual(t, perlin, float32(0))
		require.LessOrEqual(t, perlin, float32(1))

		for _, cellCount := range []float32{4, 16, 64} {
			w := Worley(p, cellCount)
			require.GreaterOrEqual(t, w, float32(0))
			require.LessOrEqual(t, w, float32(1))
		}
	}
}

func TestPerlinFBMWeightsSquare(t *testing.T) {
	p := Vec3{0.31, 0.77, 0.12}
	const frequency = 4

	octave := func(i int) float32 {
		f := float32(frequency) * float32(math.Pow(2, float64(i)))
		return Perlin4(p.Mul(f).Vec4(0), vecmath.Splat4(f))
	}
	weights := []float32{0.5, 0.25, 0.0625, 0.00390625}

	var sum, weightSum float32
	var prev float32
	prevBound := math.Inf(1)
	for i, w := range weights {
		sum += octave(i) * w
		weightSum += w
		want := vecmath.Clamp01(sum/weightSum*0.5 + 0.5)

		got := PerlinFBM(p, frequency, uint32(i+1))
		assert.InDelta(t, want, got, 1e-5, "octaves=%d", i+1)

		if i > 0 {
			// An added octave moves the weighted mean by at most w/(W+w) times the
			// octave's distance to it, which is below 4.4; the [0,1] mapping halves that.
			bound := 2.2 * float64(w) / float64(weightSum)
			assert.LessOrEqual(t, math.Abs(float64(got-prev)), bound+1e-6, "octaves=%d", i+1)
			assert.Less(t, bound, prevBound)
			prevBound = bound
		}
		prev = got
	}
}

func TestPerlinFBMZeroOctavesIsNaN(t *testing.T) {
	got := PerlinFBM(Vec3{0.5, 0.5, 0.5}, 8, 0)
	assert.True(t, math.IsNaN(float64(got)))
}

func TestDeterministic(t *testing.T) {
	for _, p := range randomPoints(16, 5) {
		assert.Equal(t, math.Float32bits(PerlinFBM(p, 8, 3)), math.Float32bits(PerlinFBM(p, 8, 3)))
		assert.Equal(t, math.Float32bits(Worley(p, 28)), math.Float32bits(Worley(p, 28)))
	}
}

func BenchmarkPerlinFBM(b *testing.B) {
	p := Vec3{0.3, 0.6, 0.9}
	for i := 0; i < b.N; i++ {
		PerlinFBM(p, 8, 3)
	}
}

func BenchmarkWorley(b *testing.B) {
	p := Vec3{0.3, 0.6, 0.9}
	for i := 0; i < b.N; i++ {
		Worley(p, 32)
	}
}
