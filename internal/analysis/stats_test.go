package analysis

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/cloudnoise/internal/cloud"
)

// twoSliceTexture has 2³ texels with channel 0 constant per slice and channel 1 alternating.
func twoSliceTexture() *cloud.Texture {
	tex := &cloud.Texture{Resolution: 2, NumChannels: 2, BytesPerChannel: 1}
	tex.Data = make([]byte, tex.Len())
	for s := 0; s < 2; s++ {
		for u := 0; u < 2; u++ {
			for v := 0; v < 2; v++ {
				texel := tex.Texel(s, u, v)
				texel[0] = byte(s * 255)
				texel[1] = byte(v * 255)
			}
		}
	}
	return tex
}

func TestChannelStats(t *testing.T) {
	rows, err := ChannelStats("test", twoSliceTexture())
	require.NoError(t, err)
	require.Len(t, rows, 2)

	for c, row := range rows {
		assert.Equal(t, "test", row.Texture)
		assert.Equal(t, AllSlices, row.Slice)
		assert.Equal(t, c, row.Channel)
		assert.Equal(t, 0.0, row.Min)
		assert.Equal(t, 1.0, row.Max)
		assert.InDelta(t, 0.5, row.Mean, 1e-12)
		// Sample standard deviation of four 0s and four 1s.
		assert.InDelta(t, 0.5345224838, row.StdDev, 1e-9)
	}
}

func TestSliceStats(t *testing.T) {
	rows, err := SliceStats("test", twoSliceTexture())
	require.NoError(t, err)
	require.Len(t, rows, 4)

	tests := []struct {
		slice, channel int
		mean           float64
		stdDev         float64
	}{
		{0, 0, 0, 0},
		{0, 1, 0.5, 0.5773502692},
		{1, 0, 1, 0},
		{1, 1, 0.5, 0.5773502692},
	}
	for i, tt := range tests {
		assert.Equal(t, tt.slice, rows[i].Slice)
		assert.Equal(t, tt.channel, rows[i].Channel)
		assert.InDelta(t, tt.mean, rows[i].Mean, 1e-12)
		assert.InDelta(t, tt.stdDev, rows[i].StdDev, 1e-9)
	}
}

func TestStats_Errors(t *testing.T) {
	bad := &cloud.Texture{Resolution: 2, NumChannels: 1, BytesPerChannel: 1, Data: make([]byte, 3)}
	_, err := ChannelStats("bad", bad)
	assert.Error(t, err)

	wide := &cloud.Texture{Resolution: 1, NumChannels: 1, BytesPerChannel: 2, Data: make([]byte, 2)}
	_, err = SliceStats("wide", wide)
	assert.Error(t, err)
}

func TestWriteCSV(t *testing.T) {
	rows, err := ChannelStats("test", twoSliceTexture())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, rows))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "texture,slice,channel,min,max,mean,stddev", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "test,-1,0,0,1,0.5,"))

	got, err := ReadCSV(&buf)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, rows[1].Channel, got[1].Channel)
	assert.InDelta(t, rows[1].StdDev, got[1].StdDev, 1e-12)
}
