//go:build js && wasm

package webgl

import (
	"log"
	"syscall/js"

	"github.com/richinsley/godrays/graphics"
)

// Context is a canvas element with a WebGL2 context. EndFrame yields to the
// browser until the next animation frame.
type Context struct {
	canvas js.Value
	gl     js.Value

	frame    chan struct{}
	onFrame  js.Func
	onResize js.Func
	closed   bool
}

var _ graphics.Context = (*Context)(nil)

// New creates a canvas of width x height in the document body that tracks
// the window size, and requests a WebGL2 context from it.
func New(width, height int) (*Context, error) {
	doc := js.Global().Get("document")
	if doc.IsUndefined() {
		return nil, graphics.ErrContextUnavailable
	}
	doc.Set("title", "godrays")

	canvas := doc.Call("createElement", "canvas")
	canvas.Set("width", width)
	canvas.Set("height", height)
	doc.Get("body").Call("appendChild", canvas)

	gl := canvas.Call("getContext", "webgl2")
	if gl.IsNull() || gl.IsUndefined() {
		canvas.Call("remove")
		return nil, graphics.ErrContextUnavailable
	}

	c := &Context{
		canvas: canvas,
		gl:     gl,
		frame:  make(chan struct{}, 1),
	}
	c.onFrame = js.FuncOf(func(this js.Value, args []js.Value) any {
		select {
		case c.frame <- struct{}{}:
		default:
		}
		return nil
	})
	c.onResize = js.FuncOf(func(this js.Value, args []js.Value) any {
		win := js.Global()
		c.canvas.Set("width", win.Get("innerWidth").Int())
		c.canvas.Set("height", win.Get("innerHeight").Int())
		return nil
	})
	js.Global().Call("addEventListener", "resize", c.onResize)

	log.Printf("WebGL %s", gl.Call("getParameter", gl.Get("VERSION")).String())
	return c, nil
}

// GL returns the WebGL2RenderingContext for NewDevice.
func (c *Context) GL() js.Value {
	return c.gl
}

// MakeCurrent is a no-op; a WebGL context is always current.
func (c *Context) MakeCurrent() {}

func (c *Context) Shutdown() {
	if c.closed {
		return
	}
	c.closed = true
	js.Global().Call("removeEventListener", "resize", c.onResize)
	c.onResize.Release()
	c.onFrame.Release()
	c.canvas.Call("remove")
}

func (c *Context) ShouldClose() bool {
	return c.closed || c.gl.Call("isContextLost").Bool()
}

// EndFrame waits for the browser to present the frame.
func (c *Context) EndFrame() {
	js.Global().Call("requestAnimationFrame", c.onFrame)
	<-c.frame
}

func (c *Context) GetFramebufferSize() (int, int) {
	return c.gl.Get("drawingBufferWidth").Int(), c.gl.Get("drawingBufferHeight").Int()
}

// Time reports seconds since page load.
func (c *Context) Time() float64 {
	return js.Global().Get("performance").Call("now").Float() / 1000
}
