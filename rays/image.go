package rays

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"runtime"
	"sync"

	"github.com/go-gl/mathgl/mgl32"
)

// Render shades a width x height frame at shader time t. The frame is
// composited over opaque black, so every pixel is opaque.
func Render(width, height int, t float32) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	if width <= 0 || height <= 0 {
		return img
	}
	resolution := mgl32.Vec2{float32(width), float32(height)}

	workers := runtime.NumCPU()
	if workers > height {
		workers = height
	}
	rows := make(chan int, height)
	for y := 0; y < height; y++ {
		rows <- y
	}
	close(rows)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for y := range rows {
				for x := 0; x < width; x++ {
					c := Shade(mgl32.Vec2{float32(x) + 0.5, float32(y) + 0.5}, resolution, t)
					img.SetRGBA(x, y, toRGBA(c))
				}
			}
		}()
	}
	wg.Wait()
	return img
}

func toRGBA(c mgl32.Vec4) color.RGBA {
	return color.RGBA{
		R: channel(c[0]),
		G: channel(c[1]),
		B: channel(c[2]),
		A: 255,
	}
}

func channel(v float32) uint8 {
	return uint8(mgl32.Clamp(v, 0, 1)*255 + 0.5)
}

// WritePNG renders a frame and encodes it to w.
func WritePNG(w io.Writer, width, height int, t float32) error {
	if err := png.Encode(w, Render(width, height, t)); err != nil {
		return fmt.Errorf("failed to encode png: %w", err)
	}
	return nil
}

// CPUSource renders recorder frames without a graphics context.
type CPUSource struct{}

// RenderPixels returns top-down RGBA rows for shader time t.
func (CPUSource) RenderPixels(t float32, width, height int) ([]byte, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid frame size %dx%d", width, height)
	}
	return Render(width, height, t).Pix, nil
}
