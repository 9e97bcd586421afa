package camera

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Cyclone1070/genfab/internal/executor"
)

// FFmpeg grabs one frame from an RTSP stream via the ffmpeg CLI.
type FFmpeg struct {
	url     string
	binary  string
	runner  executor.Runner
	timeout time.Duration
}

// NewFFmpeg creates an FFmpeg grabber using "ffmpeg" from PATH.
func NewFFmpeg(url string, runner executor.Runner, timeout time.Duration) *FFmpeg {
	return &FFmpeg{url: url, binary: "ffmpeg", runner: runner, timeout: timeout}
}

// Capture implements Grabber.
func (f *FFmpeg) Capture(ctx context.Context) (Frame, error) {
	dir, err := os.MkdirTemp("", "genfab-frame-")
	if err != nil {
		return Frame{}, fmt.Errorf("failed to create frame dir: %w", err)
	}
	defer os.RemoveAll(dir)

	out := filepath.Join(dir, "frame.jpg")
	argv := []string{
		f.binary,
		"-hide_banner", "-loglevel", "error",
		"-rtsp_transport", "tcp",
		"-i", f.url,
		"-frames:v", "1",
		"-q:v", "2",
		"-y", out,
	}

	if _, err := f.runner.Run(ctx, argv, dir, f.timeout); err != nil {
		return Frame{}, fmt.Errorf("frame capture failed: %w", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		return Frame{}, fmt.Errorf("failed to read captured frame: %w", err)
	}
	if len(data) == 0 {
		return Frame{}, ErrEmptyFrame
	}

	return Frame{Data: data, MIMEType: "image/jpeg"}, nil
}
