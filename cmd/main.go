package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	glfw "github.com/go-gl/glfw/v3.3/glfw"
	"github.com/richinsley/godrays/encoder"
	"github.com/richinsley/godrays/gldevice"
	"github.com/richinsley/godrays/glfwcontext"
	"github.com/richinsley/godrays/graphics"
	"github.com/richinsley/godrays/headless"
	"github.com/richinsley/godrays/options"
	"github.com/richinsley/godrays/rays"
	"github.com/richinsley/godrays/renderer"
	"github.com/richinsley/godrays/shader"
	"github.com/richinsley/godrays/translator"
)

// loadScene creates the device on the current context and loads the god
// rays scene into it.
func loadScene(opts *options.ShaderOptions, ctx graphics.Context) (*renderer.Renderer, error) {
	dev, err := gldevice.New()
	if err != nil {
		return nil, err
	}

	tr, err := translator.GetTranslator()
	if err != nil {
		return nil, err
	}

	r := renderer.NewRenderer(ctx, dev, *opts.TimeUnit)
	if err := r.InitScene(tr, shader.GodRays()); err != nil {
		return nil, err
	}
	return r, nil
}

// offscreenContext prefers a windowless EGL context and falls back to a
// hidden glfw window.
func offscreenContext(opts *options.ShaderOptions) (graphics.Context, func(), error) {
	h, err := headless.New(*opts.Width, *opts.Height)
	if err == nil {
		return h, h.Shutdown, nil
	}
	log.Printf("Headless context unavailable (%v), using a hidden window", err)

	if err := glfwcontext.InitGraphics(); err != nil {
		return nil, nil, err
	}
	w, err := glfwcontext.New(opts, false)
	if err != nil {
		glfwcontext.TerminateGraphics()
		return nil, nil, err
	}
	return w, func() {
		w.Shutdown()
		glfwcontext.TerminateGraphics()
	}, nil
}

func runInteractive(ctx context.Context, opts *options.ShaderOptions) error {
	if err := glfwcontext.InitGraphics(); err != nil {
		return err
	}
	defer glfwcontext.TerminateGraphics()

	win, err := glfwcontext.New(opts, true)
	if err != nil {
		return err
	}
	defer win.Shutdown()

	r, err := loadScene(opts, win)
	if err != nil {
		return err
	}
	defer r.Shutdown()

	win.RegisterKeyCallback(glfw.KeyQ, r.Stop)

	log.Println("Starting interactive render loop...")
	return r.Run(ctx)
}

func runRecord(ctx context.Context, opts *options.ShaderOptions) error {
	var src renderer.FrameSource = rays.CPUSource{}
	if !*opts.CPU {
		surface, release, err := offscreenContext(opts)
		if err != nil {
			return err
		}
		defer release()

		r, err := loadScene(opts, surface)
		if err != nil {
			return err
		}
		defer r.Shutdown()
		src = r
	}

	enc, err := encoder.NewFFmpegEncoder(opts)
	if err != nil {
		return err
	}

	recordErr := renderer.Record(ctx, src, enc, renderer.RecordOptions{
		Width:       *opts.Width,
		Height:      *opts.Height,
		FPS:         *opts.FPS,
		TotalFrames: opts.TotalFrames(),
		TimeUnit:    *opts.TimeUnit,
	})
	closeErr := enc.Close()
	if recordErr != nil {
		return recordErr
	}
	if closeErr != nil {
		return closeErr
	}
	log.Printf("Successfully rendered to %s", *opts.OutputFile)
	return nil
}

func runSnapshot(opts *options.ShaderOptions) error {
	f, err := os.Create(*opts.OutputFile)
	if err != nil {
		return fmt.Errorf("failed to create snapshot: %w", err)
	}
	if err := rays.WritePNG(f, *opts.Width, *opts.Height, float32(*opts.Time)); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	log.Printf("Wrote snapshot at iTime %v to %s", *opts.Time, *opts.OutputFile)
	return nil
}

func init() {
	runtime.LockOSThread()
}

func main() {
	opts := options.Register(flag.CommandLine)
	flag.Parse()

	if *opts.Help {
		fmt.Println("God rays viewer/recorder")
		flag.PrintDefaults()
		return
	}
	if err := opts.Validate(); err != nil {
		log.Fatalf("Invalid options: %v", err)
	}

	if *opts.Mode == options.ModeSnapshot {
		if err := runSnapshot(opts); err != nil {
			log.Fatalf("Snapshot failed: %v", err)
		}
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var err error
	switch *opts.Mode {
	case options.ModeInteractive:
		err = runInteractive(ctx, opts)
	case options.ModeRecord:
		err = runRecord(ctx, opts)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		stop()
		log.Fatalf("Render failed: %v", err)
	}
}
