// Package camera grabs single frames from the printer camera.
package camera

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/Cyclone1070/genfab/internal/executor"
)

// DefaultTimeout bounds a single capture.
const DefaultTimeout = 10 * time.Second

// Frame is one encoded still image.
type Frame struct {
	Data     []byte
	MIMEType string
}

// Base64 returns the frame encoded for JSON transports.
func (f Frame) Base64() string {
	return base64.StdEncoding.EncodeToString(f.Data)
}

// Grabber captures a frame on demand.
type Grabber interface {
	Capture(ctx context.Context) (Frame, error)
}

// New picks a grabber for rawURL: HTTP snapshots for http(s), ffmpeg for rtsp(s).
func New(rawURL string, runner executor.Runner, timeout time.Duration) (Grabber, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return nil, ErrCameraNotConfigured
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid camera URL: %w", err)
	}

	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		return NewHTTPSnapshot(rawURL, timeout), nil
	case "rtsp", "rtsps":
		return NewFFmpeg(rawURL, runner, timeout), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedScheme, u.Scheme)
	}
}
