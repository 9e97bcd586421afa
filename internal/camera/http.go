package camera

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"
)

const maxSnapshotBytes = 16 << 20

// HTTPSnapshot fetches a still image from a snapshot endpoint.
type HTTPSnapshot struct {
	url     string
	client  *http.Client
	timeout time.Duration
}

// NewHTTPSnapshot creates an HTTPSnapshot grabber.
func NewHTTPSnapshot(url string, timeout time.Duration) *HTTPSnapshot {
	return &HTTPSnapshot{url: url, client: &http.Client{}, timeout: timeout}
}

// Capture implements Grabber.
func (h *HTTPSnapshot) Capture(ctx context.Context) (Frame, error) {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.url, nil)
	if err != nil {
		return Frame{}, fmt.Errorf("failed to create snapshot request: %w", err)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return Frame{}, fmt.Errorf("snapshot request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Frame{}, fmt.Errorf("snapshot request failed: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxSnapshotBytes))
	if err != nil {
		return Frame{}, fmt.Errorf("failed to read snapshot: %w", err)
	}
	if len(data) == 0 {
		return Frame{}, ErrEmptyFrame
	}

	return Frame{Data: data, MIMEType: detectMIME(resp.Header.Get("Content-Type"), data)}, nil
}

// detectMIME trusts an image/* header and sniffs otherwise.
func detectMIME(header string, data []byte) string {
	if mt, _, err := mime.ParseMediaType(header); err == nil && strings.HasPrefix(mt, "image/") {
		return mt
	}
	if sniffed := http.DetectContentType(data); strings.HasPrefix(sniffed, "image/") {
		return sniffed
	}
	return "image/jpeg"
}
