//go:build js && wasm

package main

import (
	"context"
	"flag"
	"log"

	"github.com/richinsley/godrays/options"
	"github.com/richinsley/godrays/renderer"
	"github.com/richinsley/godrays/shader"
	"github.com/richinsley/godrays/translator"
	"github.com/richinsley/godrays/webgl"
)

func main() {
	opts := options.Register(flag.CommandLine)
	flag.Parse()

	ctx, err := webgl.New(*opts.Width, *opts.Height)
	if err != nil {
		log.Fatalf("Failed to create WebGL context: %v", err)
	}
	defer ctx.Shutdown()

	dev, err := webgl.NewDevice(ctx.GL())
	if err != nil {
		log.Fatalf("Failed to create WebGL device: %v", err)
	}

	// WebGL2 compiles GLSL ES 3.00 directly.
	r := renderer.NewRenderer(ctx, dev, *opts.TimeUnit)
	if err := r.InitScene(translator.Passthrough{}, shader.GodRays()); err != nil {
		log.Fatalf("Failed to initialize scene: %v", err)
	}
	defer r.Shutdown()

	if err := r.Run(context.Background()); err != nil {
		log.Printf("Render loop ended: %v", err)
	}
}
