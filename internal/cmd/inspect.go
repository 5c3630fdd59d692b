package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/MeKo-Tech/cloudnoise/internal/analysis"
	"github.com/MeKo-Tech/cloudnoise/internal/texstore"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <store.sqlite>",
	Short: "Show metadata and channel statistics of a texture store",
	Long: `Open a texture store written by "generate --formats store", print its metadata and
write the per-channel statistics as CSV to stdout.`,
	Args: cobra.ExactArgs(1),
	RunE: runInspect,
}

func init() {
	rootCmd.AddCommand(inspectCmd)

	inspectCmd.Flags().Bool("per-slice", false, "Report statistics for every slice instead of the whole texture")

	mustBindFlags(inspectCmd, map[string]string{
		"inspect.per_slice": "per-slice",
	})
}

func runInspect(cmd *cobra.Command, args []string) error {
	if logger == nil {
		initLogging()
	}

	path := args[0]
	r, err := texstore.OpenReader(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer r.Close()

	meta, err := r.Metadata()
	if err != nil {
		return err
	}
	tex, err := r.ReadTexture()
	if err != nil {
		return err
	}
	logger.Debug("Texture store loaded", "path", path, "bytes", len(tex.Data))

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "name:       %s\n", meta.Name)
	fmt.Fprintf(out, "format:     %s\n", meta.Format)
	fmt.Fprintf(out, "resolution: %d\n", meta.Resolution)
	fmt.Fprintf(out, "channels:   %s\n", strings.Join(meta.Channels, "; "))
	fmt.Fprintln(out)

	stats := analysis.ChannelStats
	if viper.GetBool("inspect.per_slice") {
		stats = analysis.SliceStats
	}
	rows, err := stats(meta.Name, tex)
	if err != nil {
		return err
	}
	return analysis.WriteCSV(out, rows)
}
