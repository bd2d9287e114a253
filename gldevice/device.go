package gldevice

import (
	"fmt"
	"log"
	"strings"
	"sync"

	gl "github.com/go-gl/gl/v4.1-core/gl"
	"github.com/richinsley/godrays/graphics"
)

var glInitOnce sync.Once

// Device implements graphics.Device on the OpenGL context current on the
// calling thread.
type Device struct {
	vertexArrays map[graphics.Handle]uint32 // VAO -> VBO
}

var _ graphics.Device = (*Device)(nil)

// New initializes the OpenGL function pointers. The caller must have made a
// context current.
func New() (*Device, error) {
	var initErr error
	glInitOnce.Do(func() {
		initErr = gl.Init()
	})
	if initErr != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", initErr)
	}
	log.Printf("OpenGL version %s", gl.GoStr(gl.GetString(gl.VERSION)))

	return &Device{vertexArrays: make(map[graphics.Handle]uint32)}, nil
}

func shaderType(stage graphics.Stage) (uint32, error) {
	switch stage {
	case graphics.VertexStage:
		return gl.VERTEX_SHADER, nil
	case graphics.FragmentStage:
		return gl.FRAGMENT_SHADER, nil
	}
	return 0, fmt.Errorf("unknown shader stage %v", stage)
}

func (d *Device) CompileShader(stage graphics.Stage, source string) (graphics.Handle, error) {
	st, err := shaderType(stage)
	if err != nil {
		return 0, err
	}

	shader := gl.CreateShader(st)
	csources, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csources, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)
		logText := strings.Repeat("\x00", int(logLength+1))
		gl.GetShaderInfoLog(shader, logLength, nil, gl.Str(logText))
		gl.DeleteShader(shader)
		return 0, &graphics.CompileError{Stage: stage, Log: strings.TrimRight(logText, "\x00")}
	}
	return graphics.Handle(shader), nil
}

func (d *Device) DeleteShader(shader graphics.Handle) {
	gl.DeleteShader(uint32(shader))
}

func (d *Device) LinkProgram(vertex, fragment graphics.Handle) (graphics.Handle, error) {
	program := gl.CreateProgram()
	gl.AttachShader(program, uint32(vertex))
	gl.AttachShader(program, uint32(fragment))
	gl.LinkProgram(program)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLength)
		logText := strings.Repeat("\x00", int(logLength+1))
		gl.GetProgramInfoLog(program, logLength, nil, gl.Str(logText))
		gl.DeleteProgram(program)
		return 0, &graphics.LinkError{Log: strings.TrimRight(logText, "\x00")}
	}

	gl.DetachShader(program, uint32(vertex))
	gl.DetachShader(program, uint32(fragment))
	return graphics.Handle(program), nil
}

func (d *Device) DeleteProgram(program graphics.Handle) {
	gl.DeleteProgram(uint32(program))
}

func (d *Device) UseProgram(program graphics.Handle) {
	gl.UseProgram(uint32(program))
}

func (d *Device) AttribLocation(program graphics.Handle, name string) graphics.Location {
	return graphics.Location(gl.GetAttribLocation(uint32(program), gl.Str(name+"\x00")))
}

func (d *Device) UniformLocation(program graphics.Handle, name string) graphics.Location {
	return graphics.Location(gl.GetUniformLocation(uint32(program), gl.Str(name+"\x00")))
}

func (d *Device) UploadVertices(loc graphics.Location, size int, data []float32) (graphics.Handle, error) {
	if loc < 0 {
		return 0, fmt.Errorf("invalid attribute location %d", loc)
	}
	if len(data) == 0 || size <= 0 || len(data)%size != 0 {
		return 0, fmt.Errorf("vertex data of length %d is not a multiple of %d", len(data), size)
	}

	var vao, vbo uint32
	gl.GenVertexArrays(1, &vao)
	gl.GenBuffers(1, &vbo)
	gl.BindVertexArray(vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(data)*4, gl.Ptr(data), gl.STATIC_DRAW)
	gl.EnableVertexAttribArray(uint32(loc))
	gl.VertexAttribPointerWithOffset(uint32(loc), int32(size), gl.FLOAT, false, 0, 0)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)

	d.vertexArrays[graphics.Handle(vao)] = vbo
	return graphics.Handle(vao), nil
}

func (d *Device) BindVertices(vertices graphics.Handle) {
	gl.BindVertexArray(uint32(vertices))
}

func (d *Device) DeleteVertices(vertices graphics.Handle) {
	vao := uint32(vertices)
	if vbo, ok := d.vertexArrays[vertices]; ok {
		gl.DeleteBuffers(1, &vbo)
		delete(d.vertexArrays, vertices)
	}
	gl.DeleteVertexArrays(1, &vao)
}

func (d *Device) Uniform1f(loc graphics.Location, v float32) {
	gl.Uniform1f(int32(loc), v)
}

func (d *Device) Uniform2f(loc graphics.Location, x, y float32) {
	gl.Uniform2f(int32(loc), x, y)
}

func (d *Device) Viewport(width, height int) {
	gl.Viewport(0, 0, int32(width), int32(height))
}

func (d *Device) Clear(r, g, b, a float32) {
	gl.ClearColor(r, g, b, a)
	gl.Clear(gl.COLOR_BUFFER_BIT)
}

func (d *Device) DrawArrays(mode graphics.Primitive, first, count int) {
	var glMode uint32
	switch mode {
	case graphics.TriangleFan:
		glMode = gl.TRIANGLE_FAN
	default:
		glMode = gl.TRIANGLES
	}
	gl.DrawArrays(glMode, int32(first), int32(count))
}

// ReadPixels reads the back buffer and flips it so row 0 is the top.
func (d *Device) ReadPixels(width, height int) ([]byte, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid read size %dx%d", width, height)
	}
	stride := width * 4
	pixels := make([]byte, stride*height)
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadPixels(0, 0, int32(width), int32(height), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pixels))
	if e := gl.GetError(); e != gl.NO_ERROR {
		return nil, fmt.Errorf("glReadPixels failed: 0x%x", e)
	}
	graphics.FlipRows(pixels, stride)
	return pixels, nil
}
