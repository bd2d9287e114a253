package renderer

import (
	"bytes"
	"fmt"
	"log"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/richinsley/godrays/graphics"
)

// fakeDevice is an in-memory graphics.Device. Sources containing
// "syntax error" fail to compile; linking fails when failLink is set.
type fakeDevice struct {
	next     graphics.Handle
	failLink bool
	uniforms map[string]graphics.Location
	attribs  map[string]graphics.Location

	shaders  map[graphics.Handle]graphics.Stage
	programs map[graphics.Handle]bool
	quads    map[graphics.Handle][]float32

	compiled   []graphics.Stage
	links      int
	uploadLoc  graphics.Location
	uploadSize int

	current       graphics.Handle
	boundVertices graphics.Handle
	resolution    [][2]float32
	times         []float32
	viewports     [][2]int
	clears        int
	draws         []draw
}

type draw struct {
	mode         graphics.Primitive
	first, count int
	program      graphics.Handle
	vertices     graphics.Handle
}

func newFakeDevice() *fakeDevice {
	return &fakeDevice{
		uniforms: map[string]graphics.Location{"iResolution": 0, "iTime": 1},
		attribs:  map[string]graphics.Location{"a_position": 0},
		shaders:  make(map[graphics.Handle]graphics.Stage),
		programs: make(map[graphics.Handle]bool),
		quads:    make(map[graphics.Handle][]float32),
	}
}

func (d *fakeDevice) handle() graphics.Handle {
	d.next++
	return d.next
}

func (d *fakeDevice) CompileShader(stage graphics.Stage, source string) (graphics.Handle, error) {
	d.compiled = append(d.compiled, stage)
	if strings.Contains(source, "syntax error") {
		return 0, &graphics.CompileError{Stage: stage, Log: "0:2: 'syntax error' : unexpected token"}
	}
	h := d.handle()
	d.shaders[h] = stage
	return h, nil
}

func (d *fakeDevice) DeleteShader(h graphics.Handle) { delete(d.shaders, h) }

func (d *fakeDevice) LinkProgram(vertex, fragment graphics.Handle) (graphics.Handle, error) {
	d.links++
	if d.failLink {
		return 0, &graphics.LinkError{Log: "vertex and fragment varyings do not match"}
	}
	if d.shaders[vertex] != graphics.VertexStage || d.shaders[fragment] != graphics.FragmentStage {
		return 0, fmt.Errorf("bad stages %d, %d", vertex, fragment)
	}
	h := d.handle()
	d.programs[h] = true
	return h, nil
}

func (d *fakeDevice) DeleteProgram(h graphics.Handle) { delete(d.programs, h) }

func (d *fakeDevice) UseProgram(h graphics.Handle) { d.current = h }

func (d *fakeDevice) AttribLocation(program graphics.Handle, name string) graphics.Location {
	if loc, ok := d.attribs[name]; ok && d.programs[program] {
		return loc
	}
	return graphics.NoLocation
}

func (d *fakeDevice) UniformLocation(program graphics.Handle, name string) graphics.Location {
	if loc, ok := d.uniforms[name]; ok && d.programs[program] {
		return loc
	}
	return graphics.NoLocation
}

func (d *fakeDevice) UploadVertices(loc graphics.Location, size int, data []float32) (graphics.Handle, error) {
	d.uploadLoc, d.uploadSize = loc, size
	h := d.handle()
	d.quads[h] = append([]float32(nil), data...)
	return h, nil
}

func (d *fakeDevice) BindVertices(h graphics.Handle) { d.boundVertices = h }

func (d *fakeDevice) DeleteVertices(h graphics.Handle) { delete(d.quads, h) }

func (d *fakeDevice) Uniform1f(loc graphics.Location, v float32) {
	if loc == d.uniforms["iTime"] {
		d.times = append(d.times, v)
	}
}

func (d *fakeDevice) Uniform2f(loc graphics.Location, x, y float32) {
	if loc == d.uniforms["iResolution"] {
		d.resolution = append(d.resolution, [2]float32{x, y})
	}
}

func (d *fakeDevice) Viewport(w, h int) { d.viewports = append(d.viewports, [2]int{w, h}) }

func (d *fakeDevice) Clear(r, g, b, a float32) { d.clears++ }

func (d *fakeDevice) DrawArrays(mode graphics.Primitive, first, count int) {
	d.draws = append(d.draws, draw{mode, first, count, d.current, d.boundVertices})
}

func (d *fakeDevice) ReadPixels(width, height int) ([]byte, error) {
	pix := make([]byte, width*height*4)
	if len(d.times) > 0 {
		pix[0] = byte(len(d.times))
	}
	return pix, nil
}

// fakeContext scripts framebuffer sizes and times per frame.
type fakeContext struct {
	sizes     [][2]int
	times     []float64
	frames    int
	maxFrames int
	onFrame   func(frame int)
	timeCalls int
}

func (c *fakeContext) MakeCurrent() {}
func (c *fakeContext) Shutdown()    {}

func (c *fakeContext) ShouldClose() bool {
	return c.maxFrames > 0 && c.frames >= c.maxFrames
}

func (c *fakeContext) EndFrame() {
	c.frames++
	if c.onFrame != nil {
		c.onFrame(c.frames)
	}
}

func (c *fakeContext) GetFramebufferSize() (int, int) {
	if len(c.sizes) == 0 {
		return 640, 480
	}
	i := c.frames
	if i >= len(c.sizes) {
		i = len(c.sizes) - 1
	}
	return c.sizes[i][0], c.sizes[i][1]
}

func (c *fakeContext) Time() float64 {
	if len(c.times) == 0 {
		return 0
	}
	i := c.timeCalls
	if i >= len(c.times) {
		i = len(c.times) - 1
	}
	c.timeCalls++
	return c.times[i]
}

// stepClock advances by step on every reading.
type stepClock struct {
	now, step time.Duration
}

func (c *stepClock) Now() time.Duration {
	t := c.now
	c.now += c.step
	return t
}

// captureLog redirects the standard logger for the duration of a test.
func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	flags := log.Flags()
	log.SetOutput(&buf)
	log.SetFlags(0)
	t.Cleanup(func() {
		log.SetOutput(os.Stderr)
		log.SetFlags(flags)
	})
	return &buf
}
