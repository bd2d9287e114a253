package renderer

import (
	"errors"
	"strings"
	"testing"

	"github.com/richinsley/godrays/graphics"
	"github.com/richinsley/godrays/shader"
	"github.com/richinsley/godrays/translator"
)

func TestLoadScene(t *testing.T) {
	dev := newFakeDevice()
	scene, err := LoadScene(dev, translator.Passthrough{}, shader.GodRays())
	if err != nil {
		t.Fatalf("LoadScene: %v", err)
	}

	if !dev.programs[scene.Program] {
		t.Errorf("program %d not live", scene.Program)
	}
	if scene.Uniforms.Resolution == graphics.NoLocation || scene.Uniforms.Time == graphics.NoLocation {
		t.Errorf("uniforms not resolved: %+v", scene.Uniforms)
	}
	if len(dev.shaders) != 0 {
		t.Errorf("%d stage objects left after link", len(dev.shaders))
	}
	if dev.uploadLoc != dev.attribs["a_position"] || dev.uploadSize != 2 {
		t.Errorf("quad bound to location %d with size %d", dev.uploadLoc, dev.uploadSize)
	}

	quad := dev.quads[scene.Quad]
	want := []float32{-1, -1, 1, -1, 1, 1, -1, 1}
	if len(quad) != len(want) {
		t.Fatalf("quad = %v, want %v", quad, want)
	}
	for i := range want {
		if quad[i] != want[i] {
			t.Fatalf("quad = %v, want %v", quad, want)
		}
	}

	scene.Destroy(dev)
	if len(dev.programs) != 0 || len(dev.quads) != 0 {
		t.Errorf("Destroy left programs=%d quads=%d", len(dev.programs), len(dev.quads))
	}
}

func TestQuadSpansClipSpace(t *testing.T) {
	if len(QuadVertices) != 2*quadVertexCount {
		t.Fatalf("quad has %d floats", len(QuadVertices))
	}
	corners := map[[2]float32]bool{}
	for i := 0; i < len(QuadVertices); i += 2 {
		corners[[2]float32{QuadVertices[i], QuadVertices[i+1]}] = true
	}
	for _, c := range [][2]float32{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}} {
		if !corners[c] {
			t.Errorf("missing corner %v", c)
		}
	}
}

func TestVertexCompileFailure(t *testing.T) {
	logs := captureLog(t)
	dev := newFakeDevice()
	src := shader.GodRays()
	src.Vertex = "void main( { syntax error"

	scene, err := LoadScene(dev, translator.Passthrough{}, src)
	if err == nil || scene != nil {
		t.Fatalf("LoadScene succeeded with invalid vertex source")
	}

	var ce *graphics.CompileError
	if !errors.As(err, &ce) || ce.Stage != graphics.VertexStage {
		t.Errorf("error = %v, want vertex CompileError", err)
	}
	if !strings.Contains(logs.String(), "vertex") || !strings.Contains(logs.String(), "unexpected token") {
		t.Errorf("diagnostic not logged: %q", logs.String())
	}
	if dev.links != 0 || len(dev.programs) != 0 {
		t.Errorf("program created after failed compile")
	}
	if len(dev.compiled) != 1 {
		t.Errorf("compiled %v, want only the vertex stage", dev.compiled)
	}
}

func TestCompileStageEmptyHandle(t *testing.T) {
	captureLog(t)
	dev := newFakeDevice()
	stage, err := CompileStage(dev, translator.Passthrough{}, graphics.VertexStage, "syntax error")
	if err == nil {
		t.Fatal("CompileStage succeeded")
	}
	if stage.Handle != 0 || stage.Translation != nil {
		t.Errorf("failed stage = %+v, want empty", stage)
	}
}

func TestFragmentCompileFailure(t *testing.T) {
	captureLog(t)
	dev := newFakeDevice()
	src := shader.GodRays()
	src.Fragment += "\nsyntax error\n"

	if _, err := LoadScene(dev, translator.Passthrough{}, src); err == nil {
		t.Fatal("LoadScene succeeded with invalid fragment source")
	}
	if len(dev.shaders) != 0 {
		t.Errorf("vertex stage leaked after fragment failure")
	}
	if dev.links != 0 {
		t.Errorf("link attempted after fragment failure")
	}
}

func TestLinkFailure(t *testing.T) {
	logs := captureLog(t)
	dev := newFakeDevice()
	dev.failLink = true

	_, err := LoadScene(dev, translator.Passthrough{}, shader.GodRays())
	var le *graphics.LinkError
	if !errors.As(err, &le) {
		t.Fatalf("error = %v, want LinkError", err)
	}
	if !strings.Contains(logs.String(), "varyings do not match") {
		t.Errorf("link diagnostic not logged: %q", logs.String())
	}
	if len(dev.shaders) != 0 || len(dev.programs) != 0 {
		t.Errorf("objects leaked: shaders=%d programs=%d", len(dev.shaders), len(dev.programs))
	}
}

func TestLinkProgramRequiresStages(t *testing.T) {
	dev := newFakeDevice()
	tests := []struct {
		name             string
		vertex, fragment Stage
	}{
		{"no vertex", Stage{}, Stage{Handle: 2}},
		{"no fragment", Stage{Handle: 1}, Stage{}},
		{"neither", Stage{}, Stage{}},
	}
	for _, tt := range tests {
		if _, err := LinkProgram(dev, tt.vertex, tt.fragment); !errors.Is(err, ErrMissingStage) {
			t.Errorf("%s: error = %v, want ErrMissingStage", tt.name, err)
		}
	}
	if dev.links != 0 {
		t.Errorf("device link called %d times", dev.links)
	}
}

func TestMissingBindings(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*fakeDevice)
		want   error
	}{
		{"time uniform", func(d *fakeDevice) { delete(d.uniforms, "iTime") }, ErrUniformNotFound},
		{"resolution uniform", func(d *fakeDevice) { delete(d.uniforms, "iResolution") }, ErrUniformNotFound},
		{"position attribute", func(d *fakeDevice) { delete(d.attribs, "a_position") }, ErrAttributeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dev := newFakeDevice()
			tt.mutate(dev)
			_, err := LoadScene(dev, translator.Passthrough{}, shader.GodRays())
			if !errors.Is(err, tt.want) {
				t.Fatalf("error = %v, want %v", err, tt.want)
			}
			if len(dev.programs) != 0 || len(dev.quads) != 0 {
				t.Errorf("objects leaked: programs=%d quads=%d", len(dev.programs), len(dev.quads))
			}
		})
	}
}

type renamingTranslator struct{}

func (renamingTranslator) Translate(stage graphics.Stage, source string) (*translator.Translation, error) {
	return &translator.Translation{
		Code: source,
		Names: map[string]string{
			"iResolution": "_uiResolution",
			"iTime":       "_uiTime",
			"a_position":  "_ua_position",
		},
	}, nil
}

func TestLoadSceneUsesMappedNames(t *testing.T) {
	dev := newFakeDevice()
	dev.uniforms = map[string]graphics.Location{"_uiResolution": 3, "_uiTime": 4}
	dev.attribs = map[string]graphics.Location{"_ua_position": 1}

	scene, err := LoadScene(dev, renamingTranslator{}, shader.GodRays())
	if err != nil {
		t.Fatalf("LoadScene: %v", err)
	}
	if scene.Uniforms.Resolution != 3 || scene.Uniforms.Time != 4 || dev.uploadLoc != 1 {
		t.Errorf("bindings = %+v, attribute %d", scene.Uniforms, dev.uploadLoc)
	}
}
