package renderer

import (
	"context"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"github.com/richinsley/godrays/graphics"
	"github.com/richinsley/godrays/shader"
	"github.com/richinsley/godrays/translator"
)

// State is the lifecycle stage of a Renderer.
type State int32

const (
	StateIdle        State = iota // created, scene not loaded
	StateReady                    // scene loaded, loop not started
	StateRunning                  // frame loop active
	StateStopped                  // loop ended; terminal
	StateUnavailable              // scene setup failed; terminal
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateReady:
		return "ready"
	case StateRunning:
		return "running"
	case StateStopped:
		return "stopped"
	case StateUnavailable:
		return "unavailable"
	}
	return fmt.Sprintf("state(%d)", int32(s))
}

// Renderer drives the god rays program on a surface.
type Renderer struct {
	context  graphics.Context
	device   graphics.Device
	scene    *Scene
	timeUnit time.Duration
	clock    Clock

	state atomic.Int32
	stop  atomic.Bool
}

// NewRenderer creates an idle renderer. timeUnit is the wall-clock span that
// advances iTime by one.
func NewRenderer(ctx graphics.Context, dev graphics.Device, timeUnit time.Duration) *Renderer {
	if timeUnit <= 0 {
		timeUnit = DefaultTimeUnit
	}
	r := &Renderer{
		context:  ctx,
		device:   dev,
		timeUnit: timeUnit,
		clock:    ContextClock{Context: ctx},
	}
	r.state.Store(int32(StateIdle))
	return r
}

// SetClock replaces the clock the frame loop samples. It must be called
// before Run.
func (r *Renderer) SetClock(c Clock) {
	r.clock = c
}

func (r *Renderer) State() State {
	return State(r.state.Load())
}

// InitScene runs the one-time setup. Any failure moves the renderer to
// StateUnavailable, after which Run refuses to start.
func (r *Renderer) InitScene(tr translator.Translator, src shader.Source) error {
	if s := r.State(); s != StateIdle {
		return fmt.Errorf("scene already initialized (state %v)", s)
	}

	scene, err := LoadScene(r.device, tr, src)
	if err != nil {
		r.state.Store(int32(StateUnavailable))
		return fmt.Errorf("failed to initialize scene: %w", err)
	}

	r.scene = scene
	r.state.Store(int32(StateReady))
	return nil
}

// RenderFrame draws one frame at shader time t into a width x height
// viewport. It refuses to draw unless a scene is loaded and no loop is
// running.
func (r *Renderer) RenderFrame(t float32, width, height int) error {
	switch r.State() {
	case StateReady:
	case StateUnavailable:
		return ErrUnavailable
	default:
		return fmt.Errorf("cannot render frame in state %v", r.State())
	}
	r.renderFrame(t, width, height)
	return nil
}

func (r *Renderer) renderFrame(t float32, width, height int) {
	s := r.scene
	r.device.UseProgram(s.Program)
	r.device.Viewport(width, height)
	r.device.Uniform2f(s.Uniforms.Resolution, float32(width), float32(height))
	r.device.Uniform1f(s.Uniforms.Time, t)
	r.device.Clear(0, 0, 0, 1)
	r.device.BindVertices(s.Quad)
	r.device.DrawArrays(graphics.TriangleFan, 0, quadVertexCount)
}

// RenderPixels draws a frame and reads it back. It lets a loaded renderer
// serve as a recording source.
func (r *Renderer) RenderPixels(t float32, width, height int) ([]byte, error) {
	if err := r.RenderFrame(t, width, height); err != nil {
		return nil, err
	}
	return r.device.ReadPixels(width, height)
}

// Run drives the frame loop until ctx is done, Stop is called or the surface
// asks to close. The framebuffer size is sampled every frame, so resizes
// take effect on the next frame. Stop requests are checked after each draw,
// before the frame is presented and the next one scheduled.
func (r *Renderer) Run(ctx context.Context) error {
	if !r.state.CompareAndSwap(int32(StateReady), int32(StateRunning)) {
		if r.State() == StateUnavailable {
			return ErrUnavailable
		}
		return fmt.Errorf("cannot run renderer in state %v", r.State())
	}
	defer r.state.Store(int32(StateStopped))

	start := r.clock.Now()
	var last float32
	var frames int64
	for {
		if done, err := r.stopRequested(ctx, frames); done {
			return err
		}

		width, height := r.context.GetFramebufferSize()
		t := ShaderTime(r.clock.Now()-start, r.timeUnit)
		if t < last {
			t = last
		}
		last = t

		r.renderFrame(t, width, height)
		frames++

		if done, err := r.stopRequested(ctx, frames); done {
			return err
		}
		r.context.EndFrame()
	}
}

func (r *Renderer) stopRequested(ctx context.Context, frames int64) (bool, error) {
	if err := ctx.Err(); err != nil {
		log.Printf("Render loop cancelled after %d frames", frames)
		return true, err
	}
	if r.stop.Load() || r.context.ShouldClose() {
		log.Printf("Render loop stopped after %d frames", frames)
		return true, nil
	}
	return false, nil
}

// Stop asks a running loop to end before its next frame. Safe to call from
// any goroutine.
func (r *Renderer) Stop() {
	r.stop.Store(true)
}

// Shutdown releases device resources. The context itself is shut down by
// its owner. Called while Run is looping it only requests a stop; call it
// again once Run has returned.
func (r *Renderer) Shutdown() {
	for {
		s := r.State()
		if s == StateRunning {
			r.Stop()
			log.Printf("Shutdown while running, stopping the render loop first")
			return
		}
		if s == StateUnavailable || s == StateStopped ||
			r.state.CompareAndSwap(int32(s), int32(StateStopped)) {
			break
		}
	}
	r.scene.Destroy(r.device)
	r.scene = nil
}
