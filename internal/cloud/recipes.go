package cloud

import (
	"github.com/MeKo-Tech/cloudnoise/internal/noise"
	"github.com/MeKo-Tech/cloudnoise/internal/vecmath"
)

// Recipe describes how every texel of a texture is computed.
type Recipe struct {
	// Texel writes NumChannels bytes for the normalized coordinates in [0,1)³.
	Texel       func(coords vecmath.Vec3, out []byte)
	Name        string
	Channels    []string
	Resolution  uint32
	NumChannels uint32
}

// Fixed frequency schedule. Changing any of these changes the rendered clouds.
const (
	shapeResolution  = 128
	detailResolution = 32

	perlinFrequency = 8
	perlinOctaves   = 3

	shapeCellCount  = 4
	detailCellCount = 2
)

// Cell count multipliers of the Worley FBM that bounds the Perlin noise in the red channel.
var perlinWorleyMultipliers = [3]float32{2, 8, 14}

// ShapeErosion is the 128³ RGBA8 base shape texture.
var ShapeErosion = Recipe{
	Name:        "shape",
	Resolution:  shapeResolution,
	NumChannels: 4,
	Channels: []string{
		"perlin-worley",
		"worley fbm (8, 16, 32 cells)",
		"worley fbm (16, 32, 64 cells)",
		"worley fbm (32, 64 cells)",
	},
	Texel: shapeErosionTexel,
}

// Detail is the 32³ RGBA8 erosion detail texture. Alpha is unused and fixed at 255.
var Detail = Recipe{
	Name:        "detail",
	Resolution:  detailResolution,
	NumChannels: 4,
	Channels: []string{
		"worley fbm (2, 4, 8 cells)",
		"worley fbm (4, 8, 16 cells)",
		"worley fbm (8, 16 cells)",
		"unused",
	},
	Texel: detailTexel,
}

// Recipes lists the known recipes by name.
var Recipes = map[string]Recipe{
	ShapeErosion.Name: ShapeErosion,
	Detail.Name:       Detail,
}

// invWorley is the Worley distance turned into cell-shaped density.
func invWorley(coords vecmath.Vec3, cellCount float32) float32 {
	return 1 - noise.Worley(coords, cellCount)
}

func fbm3(a, b, c float32) float32 {
	return float32(a*0.625) + float32(b*0.25) + float32(c*0.125)
}

func fbm2(a, b float32) float32 {
	return float32(a*0.75) + float32(b*0.25)
}

func shapeErosionTexel(coords vecmath.Vec3, out []byte) {
	perlin := noise.PerlinFBM(coords, perlinFrequency, perlinOctaves)

	worleyFBM := fbm3(
		invWorley(coords, shapeCellCount*perlinWorleyMultipliers[0]),
		invWorley(coords, shapeCellCount*perlinWorleyMultipliers[1]),
		invWorley(coords, shapeCellCount*perlinWorleyMultipliers[2]),
	)

	// Perlin noise dilated by the Worley FBM: the Worley value becomes the floor.
	perlinWorley := Remap(perlin, 0, 1, worleyFBM, 1)

	w1 := invWorley(coords, shapeCellCount*2)
	w2 := invWorley(coords, shapeCellCount*4)
	w3 := invWorley(coords, shapeCellCount*8)
	w4 := invWorley(coords, shapeCellCount*16)

	out[0] = Quantize(perlinWorley)
	out[1] = Quantize(fbm3(w1, w2, w3))
	out[2] = Quantize(fbm3(w2, w3, w4))
	// 128 cells would sample at texel frequency, so the last blend keeps two octaves.
	out[3] = Quantize(fbm2(w3, w4))
}

func detailTexel(coords vecmath.Vec3, out []byte) {
	w0 := invWorley(coords, detailCellCount*1)
	w1 := invWorley(coords, detailCellCount*2)
	w2 := invWorley(coords, detailCellCount*4)
	w3 := invWorley(coords, detailCellCount*8)

	out[0] = Quantize(fbm3(w0, w1, w2))
	out[1] = Quantize(fbm3(w1, w2, w3))
	out[2] = Quantize(fbm2(w2, w3))
	out[3] = 255
}

// Remap linearly maps v from [inMin, inMax] to [outMin, outMax]. v is not clamped.
func Remap(v, inMin, inMax, outMin, outMax float32) float32 {
	return outMin + float32(((v-inMin)/(inMax-inMin))*(outMax-outMin))
}

// Quantize converts a [0,1] value to a byte by truncating v*255.
// Out of range values saturate and NaN maps to 0.
func Quantize(v float32) uint8 {
	x := v * 255
	switch {
	case !(x > 0):
		return 0
	case x >= 255:
		return 255
	}
	return uint8(x)
}
