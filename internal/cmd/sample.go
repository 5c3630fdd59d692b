package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/MeKo-Tech/cloudnoise/internal/noise"
	"github.com/MeKo-Tech/cloudnoise/internal/vecmath"
)

var sampleCmd = &cobra.Command{
	Use:   "sample perlin|worley",
	Short: "Evaluate a noise function at a point",
	Long: `Evaluate tileable Perlin FBM or Worley noise at a single point and print the value.

Perlin uses --frequency and --octaves, Worley uses --cells. Both tile with period 1.`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"perlin", "worley"},
	RunE:      runSample,
}

func init() {
	rootCmd.AddCommand(sampleCmd)

	sampleCmd.Flags().StringP("point", "p", "0,0,0", "Sample point: x,y,z")
	sampleCmd.Flags().Float32("frequency", 8, "Base frequency of the Perlin FBM")
	sampleCmd.Flags().Uint32("octaves", 3, "Number of Perlin FBM octaves")
	sampleCmd.Flags().Float32("cells", 4, "Worley cells per unit")

	mustBindFlags(sampleCmd, map[string]string{
		"sample.point":     "point",
		"sample.frequency": "frequency",
		"sample.octaves":   "octaves",
		"sample.cells":     "cells",
	})
}

func runSample(cmd *cobra.Command, args []string) error {
	point, err := parsePoint(viper.GetString("sample.point"))
	if err != nil {
		return err
	}

	var value float32
	switch strings.ToLower(args[0]) {
	case "perlin":
		octaves := viper.GetUint32("sample.octaves")
		if octaves == 0 {
			return fmt.Errorf("octaves must be positive")
		}
		value = noise.PerlinFBM(point, float32(viper.GetFloat64("sample.frequency")), octaves)
	case "worley":
		value = noise.Worley(point, float32(viper.GetFloat64("sample.cells")))
	default:
		return fmt.Errorf("unknown noise %q (valid: perlin, worley)", args[0])
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), strconv.FormatFloat(float64(value), 'g', -1, 32))
	return err
}

// parsePoint parses "x,y,z" into a vector.
func parsePoint(s string) (vecmath.Vec3, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return vecmath.Vec3{}, fmt.Errorf("point must have 3 comma-separated values, got %d", len(parts))
	}

	var p vecmath.Vec3
	for i, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 32)
		if err != nil {
			return vecmath.Vec3{}, fmt.Errorf("invalid point coordinate %q: %w", part, err)
		}
		p[i] = float32(v)
	}
	return p, nil
}
