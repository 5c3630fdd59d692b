package export

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/MeKo-Tech/cloudnoise/internal/cloud"
)

var byteorder = binary.LittleEndian

var rawMagic = [4]byte{'C', 'N', 'T', 'X'}

const (
	rawVersion = 1

	// Upper bound accepted when reading, to reject corrupt headers before allocating.
	maxRawResolution = 1024
)

// ErrBadRaw is returned when a raw texture header is not recognised.
var ErrBadRaw = errors.New("not a raw cloud texture")

type rawHeader struct {
	Magic           [4]byte
	Version         uint32
	Resolution      uint32
	NumChannels     uint32
	BytesPerChannel uint32
}

// WriteRaw writes a fixed little-endian header followed by the texel bytes, ready for
// a straight GPU upload.
func WriteRaw(w io.Writer, tex *cloud.Texture) error {
	if err := tex.Validate(); err != nil {
		return err
	}

	hdr := rawHeader{
		Magic:           rawMagic,
		Version:         rawVersion,
		Resolution:      tex.Resolution,
		NumChannels:     tex.NumChannels,
		BytesPerChannel: tex.BytesPerChannel,
	}
	if err := binary.Write(w, byteorder, hdr); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	if _, err := w.Write(tex.Data); err != nil {
		return fmt.Errorf("failed to write texels: %w", err)
	}
	return nil
}

// ReadRaw reads a texture written by WriteRaw.
func ReadRaw(r io.Reader) (*cloud.Texture, error) {
	var hdr rawHeader
	if err := binary.Read(r, byteorder, &hdr); err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	if hdr.Magic != rawMagic {
		return nil, ErrBadRaw
	}
	if hdr.Version != rawVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrBadRaw, hdr.Version)
	}
	if hdr.Resolution == 0 || hdr.Resolution > maxRawResolution ||
		hdr.NumChannels == 0 || hdr.NumChannels > 4 ||
		hdr.BytesPerChannel == 0 || hdr.BytesPerChannel > 4 {
		return nil, fmt.Errorf("%w: bad geometry %d³ × %d × %d",
			ErrBadRaw, hdr.Resolution, hdr.NumChannels, hdr.BytesPerChannel)
	}

	tex := &cloud.Texture{
		Resolution:      hdr.Resolution,
		NumChannels:     hdr.NumChannels,
		BytesPerChannel: hdr.BytesPerChannel,
	}
	tex.Data = make([]byte, tex.Len())
	if _, err := io.ReadFull(r, tex.Data); err != nil {
		return nil, fmt.Errorf("failed to read texels: %w", err)
	}
	return tex, nil
}
