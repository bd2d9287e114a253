//go:build !linux

package headless

import (
	"fmt"

	"github.com/richinsley/godrays/graphics"
)

// Context is never created off Linux; its methods do nothing.
type Context struct{}

var _ graphics.Context = (*Context)(nil)

func New(width, height int) (*Context, error) {
	return nil, fmt.Errorf("%w: egl headless rendering is not supported on this platform", graphics.ErrContextUnavailable)
}

func (c *Context) MakeCurrent()                   {}
func (c *Context) Shutdown()                      {}
func (c *Context) ShouldClose() bool              { return true }
func (c *Context) EndFrame()                      {}
func (c *Context) GetFramebufferSize() (int, int) { return 0, 0 }
func (c *Context) Time() float64                  { return 0 }
