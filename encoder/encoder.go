package encoder

import (
	"errors"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"strings"
	"sync"

	"github.com/richinsley/godrays/options"
	"github.com/richinsley/godrays/renderer"
	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// FFmpegEncoder pipes raw RGBA frames into an ffmpeg process.
type FFmpegEncoder struct {
	pipeWriter *io.PipeWriter
	frameSize  int
	errc       chan error

	closeOnce sync.Once
	closeErr  error
}

// getArgs builds the ffmpeg input and output arguments for a rawvideo RGBA
// stream of the configured size and rate.
func getArgs(opts *options.ShaderOptions) (inputArgs ffmpeg.KwArgs, outputArgs ffmpeg.KwArgs) {
	inputArgs = ffmpeg.KwArgs{
		"f":       "rawvideo",
		"pix_fmt": "rgba",
		"s":       fmt.Sprintf("%dx%d", *opts.Width, *opts.Height),
		"r":       *opts.FPS,
	}

	outputArgs = ffmpeg.KwArgs{
		"pix_fmt": "yuv420p",
		"b:v":     "25M",
	}
	if *opts.Codec == "hevc" {
		outputArgs["c:v"] = "libx265"
		if strings.EqualFold(filepath.Ext(*opts.OutputFile), ".mp4") {
			outputArgs["tag:v"] = "hvc1"
		}
	} else {
		outputArgs["c:v"] = "libx264"
	}
	return
}

// NewFFmpegEncoder starts ffmpeg writing to opts.OutputFile. Frames are
// accepted by WriteFrame until Close.
func NewFFmpegEncoder(opts *options.ShaderOptions) (*FFmpegEncoder, error) {
	if *opts.OutputFile == "" {
		return nil, errors.New("no output file")
	}

	pipeReader, pipeWriter := io.Pipe()
	inputArgs, outputArgs := getArgs(opts)

	ffmpegCmd := ffmpeg.Input("pipe:", inputArgs).
		Output(*opts.OutputFile, outputArgs).
		OverWriteOutput().WithInput(pipeReader).ErrorToStdOut()

	if *opts.FFMPEGPath != "" {
		ffmpegCmd = ffmpegCmd.SetFfmpegPath(*opts.FFMPEGPath)
	}

	e := &FFmpegEncoder{
		pipeWriter: pipeWriter,
		frameSize:  *opts.Width * *opts.Height * 4,
		errc:       make(chan error, 1),
	}

	log.Printf("Encoding %s with %v", *opts.OutputFile, outputArgs["c:v"])
	go func() {
		err := ffmpegCmd.Run()
		// Unblock pending writes if ffmpeg exits early.
		if err != nil {
			pipeReader.CloseWithError(fmt.Errorf("ffmpeg exited: %w", err))
		} else {
			pipeReader.Close()
		}
		e.errc <- err
	}()
	return e, nil
}

// WriteFrame sends one top-down RGBA frame to ffmpeg.
func (e *FFmpegEncoder) WriteFrame(frame *renderer.Frame) error {
	if len(frame.Pixels) != e.frameSize {
		return fmt.Errorf("frame %d has %d bytes, want %d", frame.PTS, len(frame.Pixels), e.frameSize)
	}
	if _, err := e.pipeWriter.Write(frame.Pixels); err != nil {
		return fmt.Errorf("failed to write frame %d to ffmpeg: %w", frame.PTS, err)
	}
	return nil
}

// Close ends the stream and waits for ffmpeg to finish the file.
func (e *FFmpegEncoder) Close() error {
	e.closeOnce.Do(func() {
		e.pipeWriter.Close()
		if err := <-e.errc; err != nil {
			e.closeErr = fmt.Errorf("ffmpeg failed: %w", err)
		}
	})
	return e.closeErr
}
