package export

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/MeKo-Tech/cloudnoise/internal/cloud"
)

// Format names one kind of export file.
type Format string

const (
	FormatPNG      Format = "png"
	FormatAtlas    Format = "atlas"
	FormatRaw      Format = "raw"
	FormatPreview  Format = "preview"
	FormatManifest Format = "manifest"
)

// Formats lists the formats handled by Write.
var Formats = []Format{FormatPNG, FormatAtlas, FormatRaw, FormatPreview, FormatManifest}

// Options selects what Write produces.
type Options struct {
	Formats      []Format
	AtlasColumns int
	AtlasScale   int
	PreviewSize  int
	Overwrite    bool
}

// WriteResult reports which files were written or skipped.
type WriteResult struct {
	Written []string
	Skipped []string
}

// Write exports tex into dir in every requested format. Existing files are kept unless
// opts.Overwrite is set. The manifest, when requested, is written last and lists every
// other file of the export.
func Write(dir string, recipe cloud.Recipe, tex *cloud.Texture, opts Options) (WriteResult, error) {
	result := WriteResult{}
	if err := tex.Validate(); err != nil {
		return result, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return result, fmt.Errorf("failed to create export dir: %w", err)
	}

	// skip reports whether path exists and must be kept.
	skip := func(path string) bool {
		if opts.Overwrite {
			return false
		}
		if _, err := os.Stat(path); err == nil {
			result.Skipped = append(result.Skipped, path)
			return true
		}
		return false
	}

	manifest := false
	for _, format := range opts.Formats {
		switch format {
		case FormatPNG:
			sliceDir := filepath.Join(dir, recipe.Name)
			if skip(filepath.Join(sliceDir, SliceFileName(recipe.Name, int(tex.Resolution)-1))) {
				continue
			}
			paths, err := WriteSlicesPNG(sliceDir, recipe.Name, tex)
			result.Written = append(result.Written, paths...)
			if err != nil {
				return result, err
			}

		case FormatAtlas:
			path := filepath.Join(dir, recipe.Name+"_atlas.png")
			if skip(path) {
				continue
			}
			if err := WriteAtlas(path, tex, opts.AtlasColumns, opts.AtlasScale); err != nil {
				return result, err
			}
			result.Written = append(result.Written, path)

		case FormatRaw:
			path := filepath.Join(dir, recipe.Name+".bin")
			if skip(path) {
				continue
			}
			if err := writeRawFile(path, tex); err != nil {
				return result, err
			}
			result.Written = append(result.Written, path)

		case FormatPreview:
			for c := 0; c < int(tex.NumChannels); c++ {
				path := filepath.Join(dir, PreviewFileName(recipe.Name, c))
				if skip(path) {
					continue
				}
				img, err := ChannelPreview(tex, 0, c, opts.PreviewSize)
				if err != nil {
					return result, err
				}
				if err := writePNG(path, img); err != nil {
					return result, err
				}
				result.Written = append(result.Written, path)
			}

		case FormatManifest:
			manifest = true

		default:
			return result, fmt.Errorf("unknown export format %q", format)
		}
	}

	if manifest {
		path := filepath.Join(dir, recipe.Name+".yaml")
		if skip(path) {
			return result, nil
		}
		m := NewManifest(recipe, tex)
		for _, p := range append(append([]string{}, result.Written...), result.Skipped...) {
			rel, err := filepath.Rel(dir, p)
			if err != nil {
				rel = p
			}
			m.Files = append(m.Files, filepath.ToSlash(rel))
		}
		if err := WriteManifest(path, m); err != nil {
			return result, err
		}
		result.Written = append(result.Written, path)
	}

	return result, nil
}

func writeRawFile(path string, tex *cloud.Texture) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := WriteRaw(file, tex); err != nil {
		file.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return file.Close()
}

// ReadRawFile reads a texture written in the raw format.
func ReadRawFile(path string) (*cloud.Texture, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return ReadRaw(file)
}
