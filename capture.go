package main

import (
	"context"
	"fmt"
	"os/exec"
)

// Capture methods accepted by NewCapturer and the config file.
const (
	CaptureAuto   = "auto"
	CapturePortal = "portal"
	CaptureFFmpeg = "ffmpeg"
	CaptureX11    = "x11"
)

// Capturer grabs the visible content of a display as an encoded raster.
type Capturer interface {
	Capture(ctx context.Context, display int) ([]byte, error)
	Close() error
}

// x11Capturer wraps the kbinani/screenshot-based capture.
type x11Capturer struct{}

func (x11Capturer) Capture(ctx context.Context, display int) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	img, err := CaptureDisplay(display)
	if err != nil {
		return nil, err
	}
	return encodePNG(img)
}

func (x11Capturer) Close() error { return nil }

// NewCapturer returns the capturer for method. For CaptureAuto it tries
// Portal → FFmpeg → X11 and returns the first that works.
func NewCapturer(method string) (Capturer, string, error) {
	switch method {
	case CapturePortal:
		return newPortalCapturer()
	case CaptureFFmpeg:
		return newFFmpegCapturer()
	case CaptureX11:
		return x11Capturer{}, "X11", nil
	case CaptureAuto, "":
	default:
		return nil, "", fmt.Errorf("unknown capture method %q", method)
	}

	c, name, err := newPortalCapturer()
	if err == nil {
		return c, name, nil
	}

	c, name, err = newFFmpegCapturer()
	if err == nil {
		return c, name, nil
	}

	return x11Capturer{}, "X11", nil
}

// hasExecutable reports whether the named program is on PATH.
func hasExecutable(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}
