//go:build js && wasm

package webgl

import (
	"fmt"
	"syscall/js"

	"github.com/richinsley/godrays/graphics"
)

type glConsts struct {
	arrayBuffer    int
	staticDraw     int
	floatType      int
	triangles      int
	triangleFan    int
	colorBufferBit int
	compileStatus  int
	linkStatus     int
	vertexShader   int
	fragmentShader int
	rgba           int
	unsignedByte   int
	packAlignment  int
	noError        int
}

type vertexArray struct {
	vao js.Value
	vbo js.Value
}

// Device implements graphics.Device over a WebGL2 rendering context.
// WebGL objects are JS values, so they are kept in tables keyed by the
// integer handles the pipeline sees.
type Device struct {
	gl     js.Value
	consts glConsts

	next     graphics.Handle
	objects  map[graphics.Handle]js.Value // shaders and programs
	arrays   map[graphics.Handle]vertexArray
	uniforms []js.Value // indexed by Location
}

var _ graphics.Device = (*Device)(nil)

// NewDevice wraps gl, which must be a WebGL2RenderingContext.
func NewDevice(gl js.Value) (*Device, error) {
	if gl.IsUndefined() || gl.IsNull() {
		return nil, graphics.ErrContextUnavailable
	}
	d := &Device{
		gl:      gl,
		objects: make(map[graphics.Handle]js.Value),
		arrays:  make(map[graphics.Handle]vertexArray),
	}
	d.consts = glConsts{
		arrayBuffer:    gl.Get("ARRAY_BUFFER").Int(),
		staticDraw:     gl.Get("STATIC_DRAW").Int(),
		floatType:      gl.Get("FLOAT").Int(),
		triangles:      gl.Get("TRIANGLES").Int(),
		triangleFan:    gl.Get("TRIANGLE_FAN").Int(),
		colorBufferBit: gl.Get("COLOR_BUFFER_BIT").Int(),
		compileStatus:  gl.Get("COMPILE_STATUS").Int(),
		linkStatus:     gl.Get("LINK_STATUS").Int(),
		vertexShader:   gl.Get("VERTEX_SHADER").Int(),
		fragmentShader: gl.Get("FRAGMENT_SHADER").Int(),
		rgba:           gl.Get("RGBA").Int(),
		unsignedByte:   gl.Get("UNSIGNED_BYTE").Int(),
		packAlignment:  gl.Get("PACK_ALIGNMENT").Int(),
		noError:        gl.Get("NO_ERROR").Int(),
	}
	return d, nil
}

func (d *Device) store(v js.Value) graphics.Handle {
	d.next++
	d.objects[d.next] = v
	return d.next
}

func (d *Device) object(h graphics.Handle) js.Value {
	if v, ok := d.objects[h]; ok {
		return v
	}
	return js.Null()
}

func (d *Device) CompileShader(stage graphics.Stage, source string) (graphics.Handle, error) {
	var st int
	switch stage {
	case graphics.VertexStage:
		st = d.consts.vertexShader
	case graphics.FragmentStage:
		st = d.consts.fragmentShader
	default:
		return 0, fmt.Errorf("unknown shader stage %v", stage)
	}

	shader := d.gl.Call("createShader", st)
	d.gl.Call("shaderSource", shader, source)
	d.gl.Call("compileShader", shader)
	if !d.gl.Call("getShaderParameter", shader, d.consts.compileStatus).Bool() {
		log := d.gl.Call("getShaderInfoLog", shader).String()
		d.gl.Call("deleteShader", shader)
		return 0, &graphics.CompileError{Stage: stage, Log: log}
	}
	return d.store(shader), nil
}

func (d *Device) DeleteShader(shader graphics.Handle) {
	if v, ok := d.objects[shader]; ok {
		d.gl.Call("deleteShader", v)
		delete(d.objects, shader)
	}
}

func (d *Device) LinkProgram(vertex, fragment graphics.Handle) (graphics.Handle, error) {
	vs, fs := d.object(vertex), d.object(fragment)
	program := d.gl.Call("createProgram")
	d.gl.Call("attachShader", program, vs)
	d.gl.Call("attachShader", program, fs)
	d.gl.Call("linkProgram", program)

	if !d.gl.Call("getProgramParameter", program, d.consts.linkStatus).Bool() {
		log := d.gl.Call("getProgramInfoLog", program).String()
		d.gl.Call("deleteProgram", program)
		return 0, &graphics.LinkError{Log: log}
	}

	d.gl.Call("detachShader", program, vs)
	d.gl.Call("detachShader", program, fs)
	return d.store(program), nil
}

func (d *Device) DeleteProgram(program graphics.Handle) {
	if v, ok := d.objects[program]; ok {
		d.gl.Call("deleteProgram", v)
		delete(d.objects, program)
	}
}

func (d *Device) UseProgram(program graphics.Handle) {
	d.gl.Call("useProgram", d.object(program))
}

func (d *Device) AttribLocation(program graphics.Handle, name string) graphics.Location {
	return graphics.Location(d.gl.Call("getAttribLocation", d.object(program), name).Int())
}

// UniformLocation interns the WebGLUniformLocation object and returns its index.
func (d *Device) UniformLocation(program graphics.Handle, name string) graphics.Location {
	loc := d.gl.Call("getUniformLocation", d.object(program), name)
	if loc.IsNull() || loc.IsUndefined() {
		return graphics.NoLocation
	}
	d.uniforms = append(d.uniforms, loc)
	return graphics.Location(len(d.uniforms) - 1)
}

func (d *Device) uniform(loc graphics.Location) js.Value {
	if loc < 0 || int(loc) >= len(d.uniforms) {
		return js.Null()
	}
	return d.uniforms[loc]
}

func (d *Device) UploadVertices(loc graphics.Location, size int, data []float32) (graphics.Handle, error) {
	if loc < 0 {
		return 0, fmt.Errorf("invalid attribute location %d", loc)
	}
	if len(data) == 0 || size <= 0 || len(data)%size != 0 {
		return 0, fmt.Errorf("vertex data of length %d is not a multiple of %d", len(data), size)
	}

	va := vertexArray{
		vao: d.gl.Call("createVertexArray"),
		vbo: d.gl.Call("createBuffer"),
	}
	d.gl.Call("bindVertexArray", va.vao)
	d.gl.Call("bindBuffer", d.consts.arrayBuffer, va.vbo)
	d.gl.Call("bufferData", d.consts.arrayBuffer, float32Array(data), d.consts.staticDraw)
	d.gl.Call("enableVertexAttribArray", int(loc))
	d.gl.Call("vertexAttribPointer", int(loc), size, d.consts.floatType, false, 0, 0)
	d.gl.Call("bindBuffer", d.consts.arrayBuffer, js.Null())

	d.next++
	d.arrays[d.next] = va
	return d.next, nil
}

func (d *Device) BindVertices(vertices graphics.Handle) {
	if va, ok := d.arrays[vertices]; ok {
		d.gl.Call("bindVertexArray", va.vao)
	}
}

func (d *Device) DeleteVertices(vertices graphics.Handle) {
	if va, ok := d.arrays[vertices]; ok {
		d.gl.Call("deleteBuffer", va.vbo)
		d.gl.Call("deleteVertexArray", va.vao)
		delete(d.arrays, vertices)
	}
}

func (d *Device) Uniform1f(loc graphics.Location, v float32) {
	d.gl.Call("uniform1f", d.uniform(loc), v)
}

func (d *Device) Uniform2f(loc graphics.Location, x, y float32) {
	d.gl.Call("uniform2f", d.uniform(loc), x, y)
}

func (d *Device) Viewport(width, height int) {
	d.gl.Call("viewport", 0, 0, width, height)
}

func (d *Device) Clear(r, g, b, a float32) {
	d.gl.Call("clearColor", r, g, b, a)
	d.gl.Call("clear", d.consts.colorBufferBit)
}

func (d *Device) DrawArrays(mode graphics.Primitive, first, count int) {
	glMode := d.consts.triangles
	if mode == graphics.TriangleFan {
		glMode = d.consts.triangleFan
	}
	d.gl.Call("drawArrays", glMode, first, count)
}

// ReadPixels reads the drawing buffer and flips it so row 0 is the top.
func (d *Device) ReadPixels(width, height int) ([]byte, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid read size %dx%d", width, height)
	}
	stride := width * 4
	view := js.Global().Get("Uint8Array").New(stride * height)
	d.gl.Call("pixelStorei", d.consts.packAlignment, 1)
	d.gl.Call("readPixels", 0, 0, width, height, d.consts.rgba, d.consts.unsignedByte, view)
	if e := d.gl.Call("getError").Int(); e != d.consts.noError {
		return nil, fmt.Errorf("readPixels failed: 0x%x", e)
	}

	pixels := make([]byte, stride*height)
	js.CopyBytesToGo(pixels, view)
	graphics.FlipRows(pixels, stride)
	return pixels, nil
}
