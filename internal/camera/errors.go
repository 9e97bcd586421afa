package camera

import "errors"

var (
	// ErrCameraNotConfigured is returned when no camera URL is set.
	ErrCameraNotConfigured = errors.New("camera URL not configured")

	// ErrUnsupportedScheme is returned for URLs that are neither http(s) nor rtsp.
	ErrUnsupportedScheme = errors.New("unsupported camera URL scheme")

	// ErrEmptyFrame is returned when the camera produced no image data.
	ErrEmptyFrame = errors.New("camera returned an empty frame")
)
