package export

import (
	"fmt"
	"image"

	"golang.org/x/image/draw"

	"github.com/MeKo-Tech/cloudnoise/internal/cloud"
)

// BuildAtlas lays all slices of tex out as a flipbook, left to right and top to bottom,
// each slice scaled up by an integer factor with nearest neighbour sampling.
// columns <= 0 picks the smallest square grid that fits every slice.
func BuildAtlas(tex *cloud.Texture, columns, scale int) (*image.NRGBA, error) {
	res := int(tex.Resolution)
	if res == 0 {
		return nil, fmt.Errorf("empty texture")
	}
	if scale <= 0 {
		scale = 1
	}
	if columns <= 0 {
		columns = 1
		for columns*columns < res {
			columns++
		}
	}
	rows := (res + columns - 1) / columns
	cell := res * scale

	atlas := image.NewNRGBA(image.Rect(0, 0, columns*cell, rows*cell))
	dstView := asRGBA(atlas)
	for s := 0; s < res; s++ {
		img, err := SliceImage(tex, s)
		if err != nil {
			return nil, err
		}
		srcView := asRGBA(img)

		origin := image.Pt((s%columns)*cell, (s/columns)*cell)
		dst := image.Rectangle{Min: origin, Max: origin.Add(image.Pt(cell, cell))}
		if scale == 1 {
			draw.Copy(dstView, origin, srcView, srcView.Bounds(), draw.Src, nil)
		} else {
			draw.NearestNeighbor.Scale(dstView, dst, srcView, srcView.Bounds(), draw.Src, nil)
		}
	}
	return atlas, nil
}

// asRGBA views the pixels of img as RGBA. Src copies between RGBA images move bytes
// unchanged, so texel channels with low alpha are not premultiplied away.
func asRGBA(img *image.NRGBA) *image.RGBA {
	return &image.RGBA{Pix: img.Pix, Stride: img.Stride, Rect: img.Rect}
}

// WriteAtlas builds the atlas of tex and writes it as a PNG.
func WriteAtlas(path string, tex *cloud.Texture, columns, scale int) error {
	atlas, err := BuildAtlas(tex, columns, scale)
	if err != nil {
		return fmt.Errorf("failed to build atlas: %w", err)
	}
	return writePNG(path, atlas)
}
