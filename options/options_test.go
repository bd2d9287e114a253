package options

import (
	"flag"
	"io"
	"testing"
	"time"
)

func parse(t *testing.T, args ...string) *ShaderOptions {
	t.Helper()
	fs := flag.NewFlagSet("godrays", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	opts := Register(fs)
	if err := fs.Parse(args); err != nil {
		t.Fatalf("parse %v: %v", args, err)
	}
	return opts
}

func TestDefaults(t *testing.T) {
	opts := parse(t)
	if err := opts.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if *opts.Mode != ModeInteractive {
		t.Errorf("mode = %q", *opts.Mode)
	}
	if *opts.TimeUnit != 1500*time.Millisecond {
		t.Errorf("time unit = %v", *opts.TimeUnit)
	}
	if *opts.OutputFile != "" {
		t.Errorf("interactive output file = %q, want empty", *opts.OutputFile)
	}
}

func TestOutputDefaults(t *testing.T) {
	tests := []struct {
		mode string
		want string
	}{
		{ModeRecord, "godrays.mp4"},
		{ModeSnapshot, "godrays.png"},
	}
	for _, tt := range tests {
		opts := parse(t, "-mode", tt.mode)
		if err := opts.Validate(); err != nil {
			t.Fatalf("%s: Validate: %v", tt.mode, err)
		}
		if *opts.OutputFile != tt.want {
			t.Errorf("%s: output = %q, want %q", tt.mode, *opts.OutputFile, tt.want)
		}
	}
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"mode", []string{"-mode", "stream"}},
		{"width", []string{"-width", "0"}},
		{"height", []string{"-height", "-3"}},
		{"time unit", []string{"-time-unit", "0s"}},
		{"negative time", []string{"-mode", "snapshot", "-time", "-1"}},
		{"fps", []string{"-mode", "record", "-fps", "0"}},
		{"duration", []string{"-mode", "record", "-duration", "0"}},
		{"codec", []string{"-mode", "record", "-codec", "vp9"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := parse(t, tt.args...).Validate(); err == nil {
				t.Errorf("Validate(%v) succeeded", tt.args)
			}
		})
	}
}

func TestTotalFrames(t *testing.T) {
	tests := []struct {
		duration, fps string
		want          int
	}{
		{"2.5", "30", 75},
		{"0.29", "100", 29},
		{"1", "60", 60},
	}
	for _, tt := range tests {
		opts := parse(t, "-mode", "record", "-duration", tt.duration, "-fps", tt.fps)
		if got := opts.TotalFrames(); got != tt.want {
			t.Errorf("TotalFrames(%ss at %s fps) = %d, want %d", tt.duration, tt.fps, got, tt.want)
		}
	}
}
