package renderer

import (
	"context"
	"fmt"
	"log"
	"time"
)

// Frame represents a single rendered frame's data, ready for encoding.
type Frame struct {
	Pixels []byte // top-down RGBA rows
	PTS    int64
}

// FrameSource produces top-down RGBA frames at a given shader time.
type FrameSource interface {
	RenderPixels(t float32, width, height int) ([]byte, error)
}

// FrameSink consumes rendered frames in presentation order.
type FrameSink interface {
	WriteFrame(f *Frame) error
}

// RecordOptions describes a fixed-step offline render.
type RecordOptions struct {
	Width       int
	Height      int
	FPS         int
	TotalFrames int
	TimeUnit    time.Duration
}

const numBuffers = 3 // frames in flight between producer and consumer

// Record renders TotalFrames frames at 1/FPS second steps from src and
// hands them to sink on a separate goroutine. It returns the first render
// or sink error, or ctx's error if cancelled.
func Record(ctx context.Context, src FrameSource, sink FrameSink, opts RecordOptions) error {
	if opts.Width <= 0 || opts.Height <= 0 {
		return fmt.Errorf("invalid record size %dx%d", opts.Width, opts.Height)
	}
	if opts.FPS <= 0 {
		return fmt.Errorf("invalid fps %d", opts.FPS)
	}
	unit := opts.TimeUnit
	if unit <= 0 {
		unit = DefaultTimeUnit
	}

	log.Printf("Recording %d frames at %d fps (%dx%d)", opts.TotalFrames, opts.FPS, opts.Width, opts.Height)
	frameChan := make(chan *Frame, numBuffers)
	encoderDoneChan := make(chan error, 1)

	// Consumer. After a sink error it keeps draining so the producer never blocks.
	go func() {
		for frame := range frameChan {
			if err := sink.WriteFrame(frame); err != nil {
				encoderDoneChan <- fmt.Errorf("failed to write frame %d: %w", frame.PTS, err)
				for range frameChan {
				}
				return
			}
		}
		encoderDoneChan <- nil
	}()

	for i := 0; i < opts.TotalFrames; i++ {
		select {
		case err := <-encoderDoneChan:
			close(frameChan)
			return err
		default:
		}
		if err := ctx.Err(); err != nil {
			close(frameChan)
			<-encoderDoneChan
			return err
		}

		elapsed := time.Duration(i) * time.Second / time.Duration(opts.FPS)
		pixels, err := src.RenderPixels(ShaderTime(elapsed, unit), opts.Width, opts.Height)
		if err != nil {
			close(frameChan)
			<-encoderDoneChan
			return fmt.Errorf("failed to render frame %d: %w", i, err)
		}
		if want := opts.Width * opts.Height * 4; len(pixels) != want {
			close(frameChan)
			<-encoderDoneChan
			return fmt.Errorf("frame %d has %d bytes, want %d", i, len(pixels), want)
		}

		frameChan <- &Frame{Pixels: pixels, PTS: int64(i)}
	}

	close(frameChan)
	return <-encoderDoneChan
}
