package renderer

import (
	"errors"
	"fmt"
	"log"

	"github.com/richinsley/godrays/graphics"
	"github.com/richinsley/godrays/shader"
	"github.com/richinsley/godrays/translator"
)

var (
	ErrMissingStage      = errors.New("program requires a compiled vertex and fragment stage")
	ErrUniformNotFound   = errors.New("uniform not found in program")
	ErrAttributeNotFound = errors.New("attribute not found in program")
	ErrEmptyHandle       = errors.New("device returned an empty handle")
	ErrUnavailable       = errors.New("renderer unavailable: scene setup failed")
)

// QuadVertices is a clip-space square drawn as a triangle fan.
var QuadVertices = []float32{
	-1, -1,
	1, -1,
	1, 1,
	-1, 1,
}

const quadVertexCount = 4

// Stage is a compiled shader stage and the names its translator assigned.
type Stage struct {
	Handle      graphics.Handle
	Translation *translator.Translation
}

// CompileStage translates and compiles one stage. On failure the
// diagnostic is logged and the returned stage is empty.
func CompileStage(dev graphics.Device, tr translator.Translator, stage graphics.Stage, source string) (Stage, error) {
	t, err := tr.Translate(stage, source)
	if err != nil {
		log.Printf("Error translating %v shader: %v", stage, err)
		return Stage{}, err
	}

	h, err := dev.CompileShader(stage, t.Code)
	if err != nil {
		var ce *graphics.CompileError
		if errors.As(err, &ce) {
			log.Printf("Error compiling %v shader: %s", stage, ce.Log)
		} else {
			log.Printf("Error compiling %v shader: %v", stage, err)
		}
		return Stage{}, err
	}
	if h == 0 {
		return Stage{}, fmt.Errorf("%v shader: %w", stage, ErrEmptyHandle)
	}
	return Stage{Handle: h, Translation: t}, nil
}

// LinkProgram links two compiled stages. Both must be non-empty.
func LinkProgram(dev graphics.Device, vertex, fragment Stage) (graphics.Handle, error) {
	if vertex.Handle == 0 || fragment.Handle == 0 {
		return 0, ErrMissingStage
	}

	program, err := dev.LinkProgram(vertex.Handle, fragment.Handle)
	if err != nil {
		var le *graphics.LinkError
		if errors.As(err, &le) {
			log.Printf("Error while linking the program: %s", le.Log)
		} else {
			log.Printf("Error while linking the program: %v", err)
		}
		return 0, err
	}
	if program == 0 {
		return 0, fmt.Errorf("program: %w", ErrEmptyHandle)
	}
	return program, nil
}

// UploadQuad uploads QuadVertices once and binds them to the position
// attribute of program.
func UploadQuad(dev graphics.Device, program graphics.Handle, vertex Stage) (graphics.Handle, error) {
	name := mappedName(vertex, shader.PositionAttribute)
	loc := dev.AttribLocation(program, name)
	if loc == graphics.NoLocation {
		return 0, fmt.Errorf("%w: %s", ErrAttributeNotFound, shader.PositionAttribute)
	}

	quad, err := dev.UploadVertices(loc, 2, QuadVertices)
	if err != nil {
		return 0, fmt.Errorf("failed to upload quad: %w", err)
	}
	return quad, nil
}

// Uniforms are the resolved locations pushed every frame.
type Uniforms struct {
	Resolution graphics.Location
	Time       graphics.Location
}

// BindUniforms resolves the resolution and time uniforms of program.
func BindUniforms(dev graphics.Device, program graphics.Handle, fragment Stage) (Uniforms, error) {
	u := Uniforms{
		Resolution: dev.UniformLocation(program, mappedName(fragment, shader.ResolutionUniform)),
		Time:       dev.UniformLocation(program, mappedName(fragment, shader.TimeUniform)),
	}
	if u.Resolution == graphics.NoLocation {
		return Uniforms{}, fmt.Errorf("%w: %s", ErrUniformNotFound, shader.ResolutionUniform)
	}
	if u.Time == graphics.NoLocation {
		return Uniforms{}, fmt.Errorf("%w: %s", ErrUniformNotFound, shader.TimeUniform)
	}
	return u, nil
}

func mappedName(s Stage, name string) string {
	if s.Translation == nil {
		return name
	}
	return s.Translation.MappedName(name)
}
