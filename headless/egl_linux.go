//go:build linux

package headless

import (
	"fmt"
	"log"
	"time"

	"github.com/richinsley/godrays/graphics"
)

/*
#cgo LDFLAGS: -lEGL
#include <EGL/egl.h>
#include <EGL/eglext.h>

static PFNEGLQUERYDEVICESEXTPROC query_devices_ptr = NULL;
static PFNEGLGETPLATFORMDISPLAYEXTPROC platform_display_ptr = NULL;

static void load_device_extensions() {
    query_devices_ptr = (PFNEGLQUERYDEVICESEXTPROC) eglGetProcAddress("eglQueryDevicesEXT");
    platform_display_ptr = (PFNEGLGETPLATFORMDISPLAYEXTPROC) eglGetProcAddress("eglGetPlatformDisplayEXT");
}

static EGLBoolean query_devices(EGLint max_devices, EGLDeviceEXT *devices, EGLint *num_devices) {
    if (query_devices_ptr) {
        return query_devices_ptr(max_devices, devices, num_devices);
    }
    return EGL_FALSE;
}

static EGLDisplay device_display(EGLDeviceEXT device) {
    if (platform_display_ptr) {
        return platform_display_ptr(EGL_PLATFORM_DEVICE_EXT, device, NULL);
    }
    return EGL_NO_DISPLAY;
}
*/
import "C"

// Context is a windowless desktop OpenGL 4.1 core context drawing into a
// pbuffer of a fixed size.
type Context struct {
	display C.EGLDisplay
	context C.EGLContext
	surface C.EGLSurface
	width   int
	height  int
	start   time.Time
}

var _ graphics.Context = (*Context)(nil)

// openDisplay picks the first GPU device that yields a display, falling
// back to the default display when device enumeration is unsupported.
func openDisplay() (C.EGLDisplay, error) {
	C.load_device_extensions()

	var count C.EGLint
	if C.query_devices(0, nil, &count) == C.EGL_FALSE || count == 0 {
		log.Println("EGL device enumeration unavailable, using the default display")
		display := C.eglGetDisplay(C.EGLNativeDisplayType(C.EGL_DEFAULT_DISPLAY))
		if display == C.EGLDisplay(C.EGL_NO_DISPLAY) {
			return display, fmt.Errorf("no default EGL display")
		}
		return display, nil
	}

	devices := make([]C.EGLDeviceEXT, count)
	if C.query_devices(count, &devices[0], &count) == C.EGL_FALSE {
		return C.EGLDisplay(C.EGL_NO_DISPLAY), fmt.Errorf("failed to query EGL devices")
	}
	for i := 0; i < int(count); i++ {
		display := C.device_display(devices[i])
		if display != C.EGLDisplay(C.EGL_NO_DISPLAY) {
			log.Printf("Using EGL device %d of %d", i, count)
			return display, nil
		}
	}
	return C.EGLDisplay(C.EGL_NO_DISPLAY), fmt.Errorf("no EGL device provides a display")
}

// New creates a headless context and makes it current on the calling thread.
// Errors wrap graphics.ErrContextUnavailable.
func New(width, height int) (*Context, error) {
	c, err := create(width, height)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", graphics.ErrContextUnavailable, err)
	}
	return c, nil
}

func create(width, height int) (*Context, error) {
	display, err := openDisplay()
	if err != nil {
		return nil, err
	}

	var major, minor C.EGLint
	if C.eglInitialize(display, &major, &minor) == C.EGL_FALSE {
		return nil, fmt.Errorf("failed to initialize EGL")
	}
	log.Printf("EGL %d.%d initialized", major, minor)

	c := &Context{
		display: display,
		context: C.EGLContext(C.EGL_NO_CONTEXT),
		surface: C.EGLSurface(C.EGL_NO_SURFACE),
		width:   width,
		height:  height,
	}

	if C.eglBindAPI(C.EGL_OPENGL_API) == C.EGL_FALSE {
		c.Shutdown()
		return nil, fmt.Errorf("desktop OpenGL is not supported by this EGL display")
	}

	configAttribs := []C.EGLint{
		C.EGL_SURFACE_TYPE, C.EGL_PBUFFER_BIT,
		C.EGL_RED_SIZE, 8,
		C.EGL_GREEN_SIZE, 8,
		C.EGL_BLUE_SIZE, 8,
		C.EGL_ALPHA_SIZE, 8,
		C.EGL_RENDERABLE_TYPE, C.EGL_OPENGL_BIT,
		C.EGL_NONE,
	}
	var config C.EGLConfig
	var numConfig C.EGLint
	if C.eglChooseConfig(display, &configAttribs[0], &config, 1, &numConfig) == C.EGL_FALSE || numConfig == 0 {
		c.Shutdown()
		return nil, fmt.Errorf("no RGBA8 pbuffer config")
	}

	pbufferAttribs := []C.EGLint{
		C.EGL_WIDTH, C.EGLint(width),
		C.EGL_HEIGHT, C.EGLint(height),
		C.EGL_NONE,
	}
	c.surface = C.eglCreatePbufferSurface(display, config, &pbufferAttribs[0])
	if c.surface == C.EGLSurface(C.EGL_NO_SURFACE) {
		c.Shutdown()
		return nil, fmt.Errorf("failed to create %dx%d pbuffer", width, height)
	}

	contextAttribs := []C.EGLint{
		C.EGL_CONTEXT_MAJOR_VERSION, 4,
		C.EGL_CONTEXT_MINOR_VERSION, 1,
		C.EGL_CONTEXT_OPENGL_PROFILE_MASK, C.EGL_CONTEXT_OPENGL_CORE_PROFILE_BIT,
		C.EGL_NONE,
	}
	c.context = C.eglCreateContext(display, config, C.EGLContext(C.EGL_NO_CONTEXT), &contextAttribs[0])
	if c.context == C.EGLContext(C.EGL_NO_CONTEXT) {
		c.Shutdown()
		return nil, fmt.Errorf("failed to create an OpenGL 4.1 core context")
	}

	if C.eglMakeCurrent(display, c.surface, c.surface, c.context) == C.EGL_FALSE {
		c.Shutdown()
		return nil, fmt.Errorf("failed to make EGL context current")
	}
	c.start = time.Now()
	return c, nil
}

func (c *Context) MakeCurrent() {
	C.eglMakeCurrent(c.display, c.surface, c.surface, c.context)
}

func (c *Context) Shutdown() {
	if c.display == C.EGLDisplay(C.EGL_NO_DISPLAY) {
		return
	}
	C.eglMakeCurrent(c.display, C.EGLSurface(C.EGL_NO_SURFACE), C.EGLSurface(C.EGL_NO_SURFACE), C.EGLContext(C.EGL_NO_CONTEXT))
	if c.context != C.EGLContext(C.EGL_NO_CONTEXT) {
		C.eglDestroyContext(c.display, c.context)
	}
	if c.surface != C.EGLSurface(C.EGL_NO_SURFACE) {
		C.eglDestroySurface(c.display, c.surface)
	}
	C.eglTerminate(c.display)
	c.display = C.EGLDisplay(C.EGL_NO_DISPLAY)
}

// ShouldClose is always false; a pbuffer has no user to close it.
func (c *Context) ShouldClose() bool {
	return false
}

func (c *Context) EndFrame() {
	C.eglSwapBuffers(c.display, c.surface)
}

func (c *Context) GetFramebufferSize() (int, int) {
	return c.width, c.height
}

func (c *Context) Time() float64 {
	return time.Since(c.start).Seconds()
}
