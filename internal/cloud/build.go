package cloud

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"github.com/MeKo-Tech/cloudnoise/internal/vecmath"
	"github.com/MeKo-Tech/cloudnoise/internal/worker"
)

// Options controls how a texture is built. The zero value renders with one worker.
type Options struct {
	Logger     *slog.Logger
	OnProgress worker.ProgressFunc
	Workers    int
}

func (o Options) log() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.Default()
}

// sliceRenderer evaluates a recipe one slice at a time. It holds no mutable state and
// is safe for concurrent use.
type sliceRenderer struct {
	recipe Recipe
}

func (r sliceRenderer) RenderSlice(ctx context.Context, s int) ([]byte, error) {
	res := int(r.recipe.Resolution)
	nc := int(r.recipe.NumChannels)
	norm := 1 / float32(r.recipe.Resolution)

	out := make([]byte, res*res*nc)
	for t := 0; t < res; t++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for u := 0; u < res; u++ {
			coords := vecmath.Vec3{float32(s), float32(t), float32(u)}.Mul(norm)
			i := (t*res + u) * nc
			r.recipe.Texel(coords, out[i:i+nc])
		}
	}
	return out, nil
}

// Build renders every texel of recipe. Slices along the first axis are rendered in
// parallel and copied to their fixed offsets in the output buffer, so the result does
// not depend on the number of workers. The only possible error is a cancelled context.
func Build(ctx context.Context, recipe Recipe, opts Options) (*Texture, error) {
	tex := &Texture{
		Resolution:      recipe.Resolution,
		NumChannels:     recipe.NumChannels,
		BytesPerChannel: 1,
	}
	tex.Data = make([]byte, tex.Len())

	tasks := make([]worker.Task, recipe.Resolution)
	for i := range tasks {
		tasks[i] = worker.Task{Index: i}
	}

	pool := worker.New(worker.Config{
		Workers:    opts.Workers,
		Renderer:   sliceRenderer{recipe: recipe},
		OnProgress: opts.OnProgress,
	})

	start := time.Now()
	results := pool.Run(ctx, tasks)

	for _, res := range results {
		if res.Err != nil {
			return nil, fmt.Errorf("render %s slice %d: %w", recipe.Name, res.Task.Index, res.Err)
		}
		copy(tex.Slice(res.Task.Index), res.Data)
	}
	if len(results) != len(tasks) {
		return nil, fmt.Errorf("render %s: %d of %d slices done: %w", recipe.Name, len(results), len(tasks), ctx.Err())
	}

	opts.log().Debug("Texture built",
		"texture", recipe.Name,
		"resolution", recipe.Resolution,
		"channels", recipe.NumChannels,
		"workers", opts.Workers,
		"elapsed", time.Since(start),
	)
	return tex, nil
}

// ShapeErosionTexture builds the 128³ RGBA8 shape texture with one worker per CPU.
//
// R: Perlin-Worley, G/B/A: Worley FBM at increasing frequencies.
func ShapeErosionTexture() *Texture {
	return mustBuild(ShapeErosion)
}

// DetailTexture builds the 32³ RGBA8 detail texture with one worker per CPU.
//
// R/G/B: Worley FBM at increasing frequencies, A: 255.
func DetailTexture() *Texture {
	return mustBuild(Detail)
}

func mustBuild(recipe Recipe) *Texture {
	tex, err := Build(context.Background(), recipe, Options{Workers: runtime.NumCPU()})
	if err != nil {
		// The background context is never cancelled.
		panic(fmt.Sprintf("cloud: build %s: %v", recipe.Name, err))
	}
	return tex
}
