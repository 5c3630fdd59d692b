// Package cloud synthesizes the volumetric noise textures consumed by the cloud renderer.
package cloud

import (
	"fmt"
)

// Texture is a cubic volume of channel-interleaved texels.
//
// Data is laid out slice by slice along the first axis, then row by row along the
// second, then texel by texel along the third. A Texture is written once by Build and
// treated as read-only afterwards.
type Texture struct {
	Data            []byte
	Resolution      uint32
	NumChannels     uint32
	BytesPerChannel uint32
}

// TexelLen is the number of bytes of one texel.
func (t *Texture) TexelLen() int {
	return int(t.NumChannels * t.BytesPerChannel)
}

// SliceLen is the number of bytes of one slice along the first axis.
func (t *Texture) SliceLen() int {
	res := int(t.Resolution)
	return res * res * t.TexelLen()
}

// Len is the expected length of Data.
func (t *Texture) Len() int {
	return int(t.Resolution) * t.SliceLen()
}

// Slice returns the bytes of slice s. The returned slice aliases Data.
func (t *Texture) Slice(s int) []byte {
	n := t.SliceLen()
	return t.Data[s*n : (s+1)*n]
}

// Texel returns the channel bytes at (s, u, v). The returned slice aliases Data.
func (t *Texture) Texel(s, u, v int) []byte {
	res := int(t.Resolution)
	n := t.TexelLen()
	i := ((s*res+u)*res + v) * n
	return t.Data[i : i+n]
}

// Format names the texel format, e.g. rgba8_unorm.
func (t *Texture) Format() string {
	return fmt.Sprintf("%s%d_unorm", "rgba"[:min(t.NumChannels, 4)], 8*t.BytesPerChannel)
}

// Validate checks the buffer length invariant.
func (t *Texture) Validate() error {
	if t.Resolution == 0 || t.NumChannels == 0 || t.BytesPerChannel == 0 {
		return fmt.Errorf("texture has empty geometry: resolution=%d channels=%d bytes_per_channel=%d",
			t.Resolution, t.NumChannels, t.BytesPerChannel)
	}
	if len(t.Data) != t.Len() {
		return fmt.Errorf("texture data has %d bytes, want %d (%d³ × %d × %d)",
			len(t.Data), t.Len(), t.Resolution, t.NumChannels, t.BytesPerChannel)
	}
	return nil
}
