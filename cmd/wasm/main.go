//go:build js && wasm
// +build js,wasm

package main

import (
	"encoding/json"
	"fmt"
	"syscall/js"

	"github.com/MeKo-Tech/cloudnoise/internal/noise"
	"github.com/MeKo-Tech/cloudnoise/internal/vecmath"
)

// PerlinRequest represents a Perlin FBM evaluation request from JS
type PerlinRequest struct {
	Point     [3]float32 `json:"point"`
	Frequency float32    `json:"frequency"`
	Octaves   uint32     `json:"octaves"`
}

// WorleyRequest represents a Worley evaluation request from JS
type WorleyRequest struct {
	Point [3]float32 `json:"point"`
	Cells float32    `json:"cells"`
}

// evaluate parses the JSON request in args[0] into req and returns eval's value.
func evaluate(args []js.Value, req any, eval func() float32) interface{} {
	if len(args) < 1 {
		return map[string]interface{}{"error": "missing arguments"}
	}
	if err := json.Unmarshal([]byte(args[0].String()), req); err != nil {
		return map[string]interface{}{"error": fmt.Sprintf("failed to parse request: %v", err)}
	}
	return map[string]interface{}{"value": eval()}
}

// perlin is called from JavaScript to evaluate tileable Perlin FBM
func perlin(this js.Value, args []js.Value) interface{} {
	req := PerlinRequest{Frequency: 8, Octaves: 3}
	return evaluate(args, &req, func() float32 {
		return noise.PerlinFBM(vecmath.Vec3(req.Point), req.Frequency, req.Octaves)
	})
}

// worley is called from JavaScript to evaluate tileable Worley noise
func worley(this js.Value, args []js.Value) interface{} {
	req := WorleyRequest{Cells: 4}
	return evaluate(args, &req, func() float32 {
		return noise.Worley(vecmath.Vec3(req.Point), req.Cells)
	})
}

func main() {
	c := make(chan struct{})

	js.Global().Set("cloudnoisePerlin", js.FuncOf(perlin))
	js.Global().Set("cloudnoiseWorley", js.FuncOf(worley))

	fmt.Println("CloudNoise WASM module loaded")
	<-c
}
