package export

import (
	"fmt"
	"image"

	"github.com/disintegration/gift"

	"github.com/MeKo-Tech/cloudnoise/internal/cloud"
)

// ChannelPreview renders one channel of one slice as a grayscale image of size×size
// pixels. size <= 0 keeps the texture resolution.
func ChannelPreview(tex *cloud.Texture, slice, channel, size int) (*image.Gray, error) {
	if channel < 0 || channel >= int(tex.NumChannels) {
		return nil, fmt.Errorf("channel %d out of range [0,%d)", channel, tex.NumChannels)
	}
	src, err := SliceImage(tex, slice)
	if err != nil {
		return nil, err
	}

	g := gift.New(gift.ColorFunc(func(r0, g0, b0, a0 float32) (r, g, b, a float32) {
		v := [4]float32{r0, g0, b0, a0}[channel]
		return v, v, v, 1
	}))
	if size > 0 && size != int(tex.Resolution) {
		g.Add(gift.Resize(size, size, gift.NearestNeighborResampling))
	}

	dst := image.NewGray(g.Bounds(src.Bounds()))
	g.Draw(dst, src)
	return dst, nil
}

// PreviewFileName is the file name of the channel preview of the named texture.
func PreviewFileName(name string, channel int) string {
	return fmt.Sprintf("%s_preview_c%d.png", name, channel)
}
