package export

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/MeKo-Tech/cloudnoise/internal/cloud"
)

// Manifest describes an exported texture.
type Manifest struct {
	Name            string   `yaml:"name"`
	Format          string   `yaml:"format"`
	Layout          string   `yaml:"layout"`
	SHA256          string   `yaml:"sha256"`
	Channels        []string `yaml:"channels"`
	Files           []string `yaml:"files,omitempty"`
	Resolution      uint32   `yaml:"resolution"`
	NumChannels     uint32   `yaml:"num_channels"`
	BytesPerChannel uint32   `yaml:"bytes_per_channel"`
}

// NewManifest describes tex as produced by recipe.
func NewManifest(recipe cloud.Recipe, tex *cloud.Texture) Manifest {
	sum := sha256.Sum256(tex.Data)
	return Manifest{
		Name:            recipe.Name,
		Format:          tex.Format(),
		Layout:          "slice-major, row-major, interleaved channels",
		SHA256:          hex.EncodeToString(sum[:]),
		Channels:        recipe.Channels,
		Resolution:      tex.Resolution,
		NumChannels:     tex.NumChannels,
		BytesPerChannel: tex.BytesPerChannel,
	}
}

// Matches reports whether tex has the geometry and checksum recorded in m.
func (m Manifest) Matches(tex *cloud.Texture) bool {
	if m.Resolution != tex.Resolution || m.NumChannels != tex.NumChannels || m.BytesPerChannel != tex.BytesPerChannel {
		return false
	}
	sum := sha256.Sum256(tex.Data)
	return m.SHA256 == hex.EncodeToString(sum[:])
}

// WriteManifest saves m as YAML.
func WriteManifest(path string, m Manifest) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshaling manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing manifest: %w", err)
	}
	return nil
}

// ReadManifest loads a manifest written by WriteManifest.
func ReadManifest(path string) (Manifest, error) {
	var m Manifest
	data, err := os.ReadFile(path)
	if err != nil {
		return m, fmt.Errorf("reading manifest: %w", err)
	}
	if err := yaml.Unmarshal(data, &m); err != nil {
		return m, fmt.Errorf("parsing manifest: %w", err)
	}
	return m, nil
}
