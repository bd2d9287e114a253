package translator

import (
	"context"
	"fmt"
	"sync"

	"github.com/richinsley/godrays/graphics"
	gst "github.com/richinsley/goshadertranslator"
)

// Translation is shader code ready for a device plus the names the
// translator assigned to the source's uniforms and attributes.
type Translation struct {
	Code  string
	Names map[string]string
}

// MappedName returns the device-side name of a source identifier.
func (t *Translation) MappedName(name string) string {
	if mapped, ok := t.Names[name]; ok && mapped != "" {
		return mapped
	}
	return name
}

// Translator converts GLSL ES 3.00 stage sources for a device.
type Translator interface {
	Translate(stage graphics.Stage, source string) (*Translation, error)
}

// Passthrough hands sources to the device unchanged. WebGL2 compiles
// GLSL ES 3.00 natively.
type Passthrough struct{}

func (Passthrough) Translate(stage graphics.Stage, source string) (*Translation, error) {
	return &Translation{Code: source}, nil
}

var (
	desktop     *Desktop
	desktopErr  error
	desktopOnce sync.Once
)

// Desktop translates WebGL2 sources into desktop GLSL 4.10.
type Desktop struct {
	translator *gst.ShaderTranslator
}

// GetTranslator returns the process-wide desktop translator.
func GetTranslator() (*Desktop, error) {
	desktopOnce.Do(func() {
		var t *gst.ShaderTranslator
		t, desktopErr = gst.NewShaderTranslator(context.Background())
		if desktopErr == nil {
			desktop = &Desktop{translator: t}
		}
	})
	if desktopErr != nil {
		return nil, fmt.Errorf("failed to create shader translator: %w", desktopErr)
	}
	return desktop, nil
}

func (d *Desktop) Translate(stage graphics.Stage, source string) (*Translation, error) {
	out, err := d.translator.TranslateShader(source, stage.String(), gst.ShaderSpecWebGL2, gst.OutputFormatGLSL410)
	if err != nil {
		return nil, fmt.Errorf("%v shader translation failed: %w", stage, err)
	}

	names := make(map[string]string, len(out.Variables))
	for name, v := range out.Variables {
		names[name] = v.MappedName
	}
	return &Translation{Code: out.Code, Names: names}, nil
}
