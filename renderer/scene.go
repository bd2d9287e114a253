package renderer

import (
	"fmt"
	"log"

	"github.com/richinsley/godrays/graphics"
	"github.com/richinsley/godrays/shader"
	"github.com/richinsley/godrays/translator"
)

// Scene holds the device resources of a linked shader program. A Scene only
// exists once every setup step succeeded.
type Scene struct {
	Program  graphics.Handle
	Quad     graphics.Handle
	Uniforms Uniforms
}

// LoadScene compiles, links and binds src. It stops at the first failing
// step and releases whatever was created before it.
func LoadScene(dev graphics.Device, tr translator.Translator, src shader.Source) (*Scene, error) {
	vertex, err := CompileStage(dev, tr, graphics.VertexStage, src.Vertex)
	if err != nil {
		return nil, fmt.Errorf("vertex stage: %w", err)
	}

	fragment, err := CompileStage(dev, tr, graphics.FragmentStage, src.Fragment)
	if err != nil {
		dev.DeleteShader(vertex.Handle)
		return nil, fmt.Errorf("fragment stage: %w", err)
	}

	program, err := LinkProgram(dev, vertex, fragment)
	dev.DeleteShader(vertex.Handle)
	dev.DeleteShader(fragment.Handle)
	if err != nil {
		return nil, err
	}

	scene := &Scene{Program: program}
	dev.UseProgram(program)

	scene.Quad, err = UploadQuad(dev, program, vertex)
	if err != nil {
		scene.Destroy(dev)
		return nil, err
	}

	scene.Uniforms, err = BindUniforms(dev, program, fragment)
	if err != nil {
		scene.Destroy(dev)
		return nil, err
	}

	log.Printf("Scene loaded: program %d, quad %d", scene.Program, scene.Quad)
	return scene, nil
}

// Destroy releases the scene's device resources.
func (s *Scene) Destroy(dev graphics.Device) {
	if s == nil {
		return
	}
	if s.Quad != 0 {
		dev.DeleteVertices(s.Quad)
		s.Quad = 0
	}
	if s.Program != 0 {
		dev.DeleteProgram(s.Program)
		s.Program = 0
	}
}
