package options

import (
	"errors"
	"flag"
	"fmt"
	"math"
	"time"

	"github.com/richinsley/godrays/renderer"
)

const (
	ModeInteractive = "interactive"
	ModeRecord      = "record"
	ModeSnapshot    = "snapshot"
)

type ShaderOptions struct {
	Help       *bool
	Mode       *string
	Width      *int
	Height     *int
	Duration   *float64 // seconds to record
	FPS        *int
	OutputFile *string
	FFMPEGPath *string
	Codec      *string
	TimeUnit   *time.Duration
	Time       *float64 // shader time for snapshot mode
	CPU        *bool    // record from the CPU ray source instead of the GPU
	VSync      *bool
}

// Register binds every option to a flag on fs.
func Register(fs *flag.FlagSet) *ShaderOptions {
	return &ShaderOptions{
		Help:       fs.Bool("help", false, "Show help message"),
		Mode:       fs.String("mode", ModeInteractive, "Run mode: interactive, record or snapshot"),
		Width:      fs.Int("width", 1280, "Width of the window or output"),
		Height:     fs.Int("height", 720, "Height of the window or output"),
		Duration:   fs.Float64("duration", 10.0, "Duration to record in seconds"),
		FPS:        fs.Int("fps", 60, "Frames per second for recording"),
		OutputFile: fs.String("output", "", "Output file name (default godrays.mp4 or godrays.png)"),
		FFMPEGPath: fs.String("ffmpeg", "", "Path to ffmpeg executable"),
		Codec:      fs.String("codec", "h264", "Video codec for recording: h264 or hevc"),
		TimeUnit:   fs.Duration("time-unit", renderer.DefaultTimeUnit, "Wall-clock time per unit of iTime"),
		Time:       fs.Float64("time", 0, "Shader time (iTime) rendered in snapshot mode"),
		CPU:        fs.Bool("cpu", false, "Render recorded frames on the CPU"),
		VSync:      fs.Bool("vsync", true, "Synchronize interactive frames to the display refresh"),
	}
}

// Validate checks option values and fills in mode-dependent defaults.
func (o *ShaderOptions) Validate() error {
	switch *o.Mode {
	case ModeInteractive, ModeRecord, ModeSnapshot:
	default:
		return fmt.Errorf("unknown mode %q", *o.Mode)
	}
	if *o.Width <= 0 || *o.Height <= 0 {
		return fmt.Errorf("invalid size %dx%d", *o.Width, *o.Height)
	}
	if *o.TimeUnit <= 0 {
		return errors.New("time-unit must be positive")
	}
	if *o.Time < 0 {
		return errors.New("time must not be negative")
	}

	if *o.Mode == ModeRecord {
		if *o.FPS <= 0 {
			return fmt.Errorf("invalid fps %d", *o.FPS)
		}
		if *o.Duration <= 0 {
			return fmt.Errorf("invalid duration %v", *o.Duration)
		}
		if *o.Codec != "h264" && *o.Codec != "hevc" {
			return fmt.Errorf("unsupported codec %q", *o.Codec)
		}
	}

	if *o.OutputFile == "" {
		switch *o.Mode {
		case ModeRecord:
			*o.OutputFile = "godrays.mp4"
		case ModeSnapshot:
			*o.OutputFile = "godrays.png"
		}
	}
	return nil
}

// TotalFrames is the number of frames a recording of Duration at FPS holds,
// rounded to the nearest frame.
func (o *ShaderOptions) TotalFrames() int {
	return int(math.Round(*o.Duration * float64(*o.FPS)))
}
