package graphics

import "errors"

// ErrContextUnavailable is returned when the host cannot provide a drawing context.
var ErrContextUnavailable = errors.New("graphics context unavailable")

// Context defines the interface for a drawable surface with a current GL context.
type Context interface {
	MakeCurrent()
	Shutdown()
	ShouldClose() bool
	// EndFrame presents the frame and blocks until the next display refresh.
	EndFrame()
	GetFramebufferSize() (int, int)
	Time() float64
}
