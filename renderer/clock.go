package renderer

import (
	"time"

	"github.com/richinsley/godrays/graphics"
)

// DefaultTimeUnit is the wall-clock span that advances iTime by 1.0.
const DefaultTimeUnit = 1500 * time.Millisecond

// Clock reports a monotonic time since an arbitrary origin.
type Clock interface {
	Now() time.Duration
}

// ContextClock reads the surface's timer.
type ContextClock struct {
	Context graphics.Context
}

func (c ContextClock) Now() time.Duration {
	return time.Duration(c.Context.Time() * float64(time.Second))
}

// ShaderTime converts elapsed wall-clock time into iTime units.
func ShaderTime(elapsed, unit time.Duration) float32 {
	if elapsed < 0 || unit <= 0 {
		return 0
	}
	return float32(float64(elapsed) / float64(unit))
}
