package graphics

import "fmt"

// Stage is a compilable shader unit.
type Stage int

const (
	VertexStage Stage = iota
	FragmentStage
)

func (s Stage) String() string {
	switch s {
	case VertexStage:
		return "vertex"
	case FragmentStage:
		return "fragment"
	}
	return fmt.Sprintf("stage(%d)", int(s))
}

// Handle identifies a device-owned object. Zero is never a valid handle.
type Handle uint32

// Location is a resolved uniform or attribute slot.
type Location int32

// NoLocation marks a name that did not resolve against a program.
const NoLocation Location = -1

// Primitive is a draw topology.
type Primitive int

const (
	Triangles Primitive = iota
	TriangleFan
)

// CompileError carries the diagnostic of a failed stage compilation.
type CompileError struct {
	Stage Stage
	Log   string
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("failed to compile %v shader: %v", e.Stage, e.Log)
}

// LinkError carries the diagnostic of a failed program link.
type LinkError struct {
	Log string
}

func (e *LinkError) Error() string {
	return fmt.Sprintf("failed to link program: %v", e.Log)
}

// Device is the subset of a GL-style API the render pipeline drives.
// All methods must be called from the thread owning the current context.
type Device interface {
	// CompileShader returns a non-zero handle, or a *CompileError.
	CompileShader(stage Stage, source string) (Handle, error)
	DeleteShader(shader Handle)

	// LinkProgram returns a non-zero handle, or a *LinkError.
	LinkProgram(vertex, fragment Handle) (Handle, error)
	DeleteProgram(program Handle)
	UseProgram(program Handle)

	AttribLocation(program Handle, name string) Location
	UniformLocation(program Handle, name string) Location

	// UploadVertices copies data into static storage and binds it to the
	// attribute at loc as tightly packed records of size components.
	UploadVertices(loc Location, size int, data []float32) (Handle, error)
	BindVertices(vertices Handle)
	DeleteVertices(vertices Handle)

	Uniform1f(loc Location, v float32)
	Uniform2f(loc Location, x, y float32)

	Viewport(width, height int)
	Clear(r, g, b, a float32)
	DrawArrays(mode Primitive, first, count int)

	// ReadPixels returns the current framebuffer as top-down RGBA rows.
	ReadPixels(width, height int) ([]byte, error)
}
