// Package analysis computes value statistics of cloud textures.
package analysis

import (
	"fmt"
	"io"

	"github.com/gocarina/gocsv"
	"gonum.org/v1/gonum/stat"

	"github.com/MeKo-Tech/cloudnoise/internal/cloud"
)

// AllSlices marks a row that covers the whole texture.
const AllSlices = -1

// Row holds the statistics of one channel over a texture or one of its slices.
// Values are normalized to [0,1].
type Row struct {
	Texture string  `csv:"texture"`
	Slice   int     `csv:"slice"`
	Channel int     `csv:"channel"`
	Min     float64 `csv:"min"`
	Max     float64 `csv:"max"`
	Mean    float64 `csv:"mean"`
	StdDev  float64 `csv:"stddev"`
}

// ChannelStats returns one row per channel over the whole texture.
func ChannelStats(name string, tex *cloud.Texture) ([]Row, error) {
	if err := check(tex); err != nil {
		return nil, err
	}
	rows := make([]Row, tex.NumChannels)
	for c := range rows {
		rows[c] = channelRow(name, AllSlices, c, tex.Data, int(tex.NumChannels))
	}
	return rows, nil
}

// SliceStats returns one row per slice and channel, ordered by slice.
func SliceStats(name string, tex *cloud.Texture) ([]Row, error) {
	if err := check(tex); err != nil {
		return nil, err
	}
	nc := int(tex.NumChannels)
	rows := make([]Row, 0, int(tex.Resolution)*nc)
	for s := 0; s < int(tex.Resolution); s++ {
		for c := 0; c < nc; c++ {
			rows = append(rows, channelRow(name, s, c, tex.Slice(s), nc))
		}
	}
	return rows, nil
}

// WriteCSV writes rows with a header line.
func WriteCSV(w io.Writer, rows []Row) error {
	if err := gocsv.Marshal(rows, w); err != nil {
		return fmt.Errorf("failed to write stats csv: %w", err)
	}
	return nil
}

// ReadCSV parses rows written by WriteCSV.
func ReadCSV(r io.Reader) ([]Row, error) {
	var rows []Row
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, fmt.Errorf("failed to read stats csv: %w", err)
	}
	return rows, nil
}

func check(tex *cloud.Texture) error {
	if err := tex.Validate(); err != nil {
		return err
	}
	if tex.BytesPerChannel != 1 {
		return fmt.Errorf("unsupported bytes per channel %d", tex.BytesPerChannel)
	}
	return nil
}

func channelRow(name string, slice, channel int, data []byte, nc int) Row {
	values := make([]float64, 0, len(data)/nc)
	lo, hi := 1.0, 0.0
	for i := channel; i < len(data); i += nc {
		v := float64(data[i]) / 255
		lo = min(lo, v)
		hi = max(hi, v)
		values = append(values, v)
	}
	mean, std := stat.MeanStdDev(values, nil)
	return Row{
		Texture: name,
		Slice:   slice,
		Channel: channel,
		Min:     lo,
		Max:     hi,
		Mean:    mean,
		StdDev:  std,
	}
}
