// Package texstore stores cloud textures in SQLite files, one gzip-compressed blob per slice.
package texstore

import (
	"strconv"
	"strings"

	"github.com/MeKo-Tech/cloudnoise/internal/cloud"
)

// Metadata contains the texture store metadata fields.
type Metadata struct {
	Name            string   // Recipe name
	Format          string   // Texel format, e.g. rgba8_unorm
	Description     string   // Human-readable description
	Version         string   // Version string
	Channels        []string // Per-channel description
	Resolution      uint32
	NumChannels     uint32
	BytesPerChannel uint32
}

// NewMetadata describes tex as produced by recipe.
func NewMetadata(recipe cloud.Recipe, tex *cloud.Texture) Metadata {
	return Metadata{
		Name:            recipe.Name,
		Format:          tex.Format(),
		Channels:        recipe.Channels,
		Resolution:      tex.Resolution,
		NumChannels:     tex.NumChannels,
		BytesPerChannel: tex.BytesPerChannel,
	}
}

// ToMap converts Metadata to a map for database insertion.
func (m Metadata) ToMap() map[string]string {
	result := make(map[string]string)

	if m.Name != "" {
		result["name"] = m.Name
	}
	if m.Format != "" {
		result["format"] = m.Format
	}
	if m.Description != "" {
		result["description"] = m.Description
	}
	if m.Version != "" {
		result["version"] = m.Version
	}
	if len(m.Channels) > 0 {
		result["channels"] = strings.Join(m.Channels, ";")
	}
	if m.Resolution > 0 {
		result["resolution"] = strconv.FormatUint(uint64(m.Resolution), 10)
	}
	if m.NumChannels > 0 {
		result["num_channels"] = strconv.FormatUint(uint64(m.NumChannels), 10)
	}
	if m.BytesPerChannel > 0 {
		result["bytes_per_channel"] = strconv.FormatUint(uint64(m.BytesPerChannel), 10)
	}

	return result
}

// fromMap parses the metadata table. Unparsable numbers are left at zero.
func fromMap(values map[string]string) Metadata {
	meta := Metadata{
		Name:        values["name"],
		Format:      values["format"],
		Description: values["description"],
		Version:     values["version"],
	}
	if v, ok := values["channels"]; ok && v != "" {
		meta.Channels = strings.Split(v, ";")
	}

	parse := func(key string) uint32 {
		v, err := strconv.ParseUint(values[key], 10, 32)
		if err != nil {
			return 0
		}
		return uint32(v)
	}
	meta.Resolution = parse("resolution")
	meta.NumChannels = parse("num_channels")
	meta.BytesPerChannel = parse("bytes_per_channel")

	return meta
}

// sliceLen is the size in bytes of one uncompressed slice.
func (m Metadata) sliceLen() int {
	res := int(m.Resolution)
	return res * res * int(m.NumChannels*m.BytesPerChannel)
}
