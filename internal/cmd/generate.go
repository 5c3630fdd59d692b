package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"slices"
	"sort"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/MeKo-Tech/cloudnoise/internal/analysis"
	"github.com/MeKo-Tech/cloudnoise/internal/cloud"
	"github.com/MeKo-Tech/cloudnoise/internal/export"
	"github.com/MeKo-Tech/cloudnoise/internal/texstore"
	"github.com/MeKo-Tech/cloudnoise/internal/worker"
)

// Output formats handled here rather than by the export package.
const (
	formatStore = "store"
	formatStats = "stats"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate cloud noise textures",
	Long: `Generate the shape/erosion (128³) and detail (32³) cloud noise textures and write
them in the selected output formats.

Formats: png (one file per slice), atlas (flipbook), raw (header + texels),
preview (one grayscale image per channel), manifest (YAML with checksum),
store (SQLite texture store), stats (per-slice channel statistics as CSV).`,
	Args: cobra.NoArgs,
	RunE: runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().StringSliceP("textures", "t", []string{"all"}, "Textures to generate: shape, detail or all")
	generateCmd.Flags().StringSliceP("formats", "f", []string{"raw", "manifest"}, "Output formats: png, atlas, raw, preview, manifest, store, stats or all")
	generateCmd.Flags().IntP("workers", "w", 0, "Number of parallel workers (default: number of CPUs)")
	generateCmd.Flags().Bool("progress", true, "Show progress bar while rendering")
	generateCmd.Flags().Bool("force", false, "Overwrite output files that already exist")
	generateCmd.Flags().Int("atlas-columns", 0, "Slices per atlas row (default: square grid)")
	generateCmd.Flags().Int("atlas-scale", 1, "Integer upscale factor of atlas slices")
	generateCmd.Flags().Int("preview-size", 256, "Edge length of channel previews in pixels")

	mustBindFlags(generateCmd, map[string]string{
		"generate.textures":      "textures",
		"generate.formats":       "formats",
		"generate.workers":       "workers",
		"generate.progress":      "progress",
		"generate.force":         "force",
		"generate.atlas_columns": "atlas-columns",
		"generate.atlas_scale":   "atlas-scale",
		"generate.preview_size":  "preview-size",
	})
}

// outputSelection is the parsed --formats value.
type outputSelection struct {
	export []export.Format
	store  bool
	stats  bool
}

func runGenerate(cmd *cobra.Command, args []string) error {
	if logger == nil {
		initLogging()
	}

	outputDir := viper.GetString("output-dir")
	workers := viper.GetInt("generate.workers")
	showProgress := viper.GetBool("generate.progress")
	force := viper.GetBool("generate.force")

	recipes, err := parseTextures(viper.GetStringSlice("generate.textures"))
	if err != nil {
		return err
	}
	outputs, err := parseFormats(viper.GetStringSlice("generate.formats"))
	if err != nil {
		return err
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output dir: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			logger.Info("Received interrupt signal, cancelling...")
			cancel()
		case <-ctx.Done():
		}
	}()

	logger.Info("Starting texture generation",
		"textures", len(recipes),
		"output_dir", outputDir,
		"workers", workers,
	)

	for _, recipe := range recipes {
		progress := worker.NewProgress(int(recipe.Resolution), "slices", showProgress)
		tex, err := cloud.Build(ctx, recipe, cloud.Options{
			Logger:     logger,
			OnProgress: progress.Callback(),
			Workers:    workers,
		})
		progress.Done()
		if err != nil {
			return err
		}
		logger.Info(progress.Summary(), "texture", recipe.Name)

		result, err := export.Write(outputDir, recipe, tex, export.Options{
			Formats:      outputs.export,
			AtlasColumns: viper.GetInt("generate.atlas_columns"),
			AtlasScale:   viper.GetInt("generate.atlas_scale"),
			PreviewSize:  viper.GetInt("generate.preview_size"),
			Overwrite:    force,
		})
		if err != nil {
			return fmt.Errorf("failed to export %s: %w", recipe.Name, err)
		}

		if outputs.store {
			path := filepath.Join(outputDir, recipe.Name+".sqlite")
			written, err := writeStore(path, recipe, tex, force)
			if err != nil {
				return fmt.Errorf("failed to store %s: %w", recipe.Name, err)
			}
			appendResult(&result, path, written)
		}

		if outputs.stats {
			path := filepath.Join(outputDir, recipe.Name+"_stats.csv")
			written, err := writeStats(path, recipe, tex, force)
			if err != nil {
				return fmt.Errorf("failed to write %s stats: %w", recipe.Name, err)
			}
			appendResult(&result, path, written)
		}

		for _, path := range result.Skipped {
			logger.Debug("Output already exists; skipping", "path", path)
		}
		logger.Info("Texture written",
			"texture", recipe.Name,
			"resolution", recipe.Resolution,
			"written", len(result.Written),
			"skipped", len(result.Skipped),
		)
	}

	return nil
}

func appendResult(result *export.WriteResult, path string, written bool) {
	if written {
		result.Written = append(result.Written, path)
	} else {
		result.Skipped = append(result.Skipped, path)
	}
}

// writeStore stores tex at path. An existing store is kept unless force is set.
func writeStore(path string, recipe cloud.Recipe, tex *cloud.Texture, force bool) (bool, error) {
	if exists(path) {
		if !force {
			return false, nil
		}
		// A fresh file drops slices of a previous, larger texture.
		for _, p := range []string{path, path + "-wal", path + "-shm"} {
			if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
				return false, err
			}
		}
	}

	meta := texstore.NewMetadata(recipe, tex)
	meta.Description = strings.Join(recipe.Channels, "; ")
	meta.Version = "1"
	if err := texstore.WriteTexture(path, meta, tex); err != nil {
		return false, err
	}
	return true, nil
}

// writeStats writes the whole-texture and per-slice channel statistics of tex as CSV.
func writeStats(path string, recipe cloud.Recipe, tex *cloud.Texture, force bool) (bool, error) {
	if exists(path) && !force {
		return false, nil
	}

	rows, err := analysis.ChannelStats(recipe.Name, tex)
	if err != nil {
		return false, err
	}
	perSlice, err := analysis.SliceStats(recipe.Name, tex)
	if err != nil {
		return false, err
	}

	file, err := os.Create(path)
	if err != nil {
		return false, err
	}
	if err := analysis.WriteCSV(file, append(rows, perSlice...)); err != nil {
		file.Close()
		return false, err
	}
	return true, file.Close()
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// parseTextures resolves texture names to recipes in a fixed order. "all" selects every
// recipe.
func parseTextures(names []string) ([]cloud.Recipe, error) {
	known := make([]string, 0, len(cloud.Recipes))
	for name := range cloud.Recipes {
		known = append(known, name)
	}
	sort.Strings(known)

	selected := make(map[string]bool)
	for _, raw := range names {
		name := strings.ToLower(strings.TrimSpace(raw))
		switch {
		case name == "all":
			for _, k := range known {
				selected[k] = true
			}
		case cloud.Recipes[name].Name != "":
			selected[name] = true
		default:
			return nil, fmt.Errorf("unknown texture %q (valid: %s, all)", raw, strings.Join(known, ", "))
		}
	}
	if len(selected) == 0 {
		return nil, fmt.Errorf("no textures selected")
	}

	recipes := make([]cloud.Recipe, 0, len(selected))
	for _, name := range known {
		if selected[name] {
			recipes = append(recipes, cloud.Recipes[name])
		}
	}
	return recipes, nil
}

// parseFormats validates output format names. "all" selects every format.
func parseFormats(names []string) (outputSelection, error) {
	var sel outputSelection
	add := func(f export.Format) {
		if !slices.Contains(sel.export, f) {
			sel.export = append(sel.export, f)
		}
	}

	for _, raw := range names {
		name := strings.ToLower(strings.TrimSpace(raw))
		switch {
		case name == "all":
			for _, f := range export.Formats {
				add(f)
			}
			sel.store = true
			sel.stats = true
		case name == formatStore:
			sel.store = true
		case name == formatStats:
			sel.stats = true
		case slices.Contains(export.Formats, export.Format(name)):
			add(export.Format(name))
		default:
			return sel, fmt.Errorf("unknown format %q (valid: png, atlas, raw, preview, manifest, store, stats, all)", raw)
		}
	}
	if len(sel.export) == 0 && !sel.store && !sel.stats {
		return sel, fmt.Errorf("no output formats selected")
	}
	return sel, nil
}
