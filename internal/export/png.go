// Package export writes cloud textures to image, binary and manifest files for
// inspection and for loading into other tools.
package export

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/MeKo-Tech/cloudnoise/internal/cloud"
)

// SliceImage converts slice s of tex into an NRGBA image. The image x axis is the
// texture's third axis and y its second. Missing channels are 0, missing alpha is 255.
func SliceImage(tex *cloud.Texture, s int) (*image.NRGBA, error) {
	if tex.BytesPerChannel != 1 {
		return nil, fmt.Errorf("unsupported bytes per channel %d", tex.BytesPerChannel)
	}
	if tex.NumChannels == 0 || tex.NumChannels > 4 {
		return nil, fmt.Errorf("unsupported channel count %d", tex.NumChannels)
	}
	res := int(tex.Resolution)
	if s < 0 || s >= res {
		return nil, fmt.Errorf("slice %d out of range [0,%d)", s, res)
	}

	nc := int(tex.NumChannels)
	src := tex.Slice(s)
	img := image.NewNRGBA(image.Rect(0, 0, res, res))
	for i := 0; i < res*res; i++ {
		px := img.Pix[i*4 : i*4+4]
		px[3] = 255
		copy(px, src[i*nc:(i+1)*nc])
	}
	return img, nil
}

// SliceFileName is the file name of slice s of the named texture.
func SliceFileName(name string, s int) string {
	return fmt.Sprintf("%s_s%03d.png", name, s)
}

// WriteSlicesPNG writes every slice of tex as a PNG into dir and returns the paths.
func WriteSlicesPNG(dir, name string, tex *cloud.Texture) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create slice dir: %w", err)
	}

	paths := make([]string, 0, tex.Resolution)
	for s := 0; s < int(tex.Resolution); s++ {
		img, err := SliceImage(tex, s)
		if err != nil {
			return paths, err
		}
		path := filepath.Join(dir, SliceFileName(name, s))
		if err := writePNG(path, img); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// ReadSlicesPNG loads the slices written by WriteSlicesPNG back into a texture with
// numChannels channels. Slices are read in order until the next file is missing; their
// count must equal the image edge length.
func ReadSlicesPNG(dir, name string, numChannels uint32) (*cloud.Texture, error) {
	if numChannels == 0 || numChannels > 4 {
		return nil, fmt.Errorf("unsupported channel count %d", numChannels)
	}

	var slices []image.Image
	for s := 0; ; s++ {
		path := filepath.Join(dir, SliceFileName(name, s))
		file, err := os.Open(path)
		if errors.Is(err, fs.ErrNotExist) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to open slice %s: %w", path, err)
		}

		img, err := png.Decode(file)
		file.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to decode slice %s: %w", path, err)
		}
		slices = append(slices, img)
	}
	if len(slices) == 0 {
		return nil, fmt.Errorf("no slices named %s in %s", name, dir)
	}

	res := len(slices)
	tex := &cloud.Texture{
		Resolution:      uint32(res),
		NumChannels:     numChannels,
		BytesPerChannel: 1,
	}
	tex.Data = make([]byte, tex.Len())
	nc := int(numChannels)

	for s, img := range slices {
		b := img.Bounds()
		if b.Dx() != res || b.Dy() != res {
			return nil, fmt.Errorf("slice %d is %dx%d, want %dx%d", s, b.Dx(), b.Dy(), res, res)
		}
		dst := tex.Slice(s)
		for y := 0; y < res; y++ {
			for x := 0; x < res; x++ {
				c := color.NRGBAModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
				px := [4]uint8{c.R, c.G, c.B, c.A}
				i := (y*res + x) * nc
				copy(dst[i:i+nc], px[:nc])
			}
		}
	}
	return tex, nil
}

func writePNG(path string, img image.Image) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer file.Close()

	if err := png.Encode(file, img); err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	return nil
}
