package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// ffmpegCapturer grabs a single PNG frame per capture through x11grab.
type ffmpegCapturer struct {
	display string // X display name, e.g. ":0"
}

func newFFmpegCapturer() (Capturer, string, error) {
	if !hasExecutable("ffmpeg") {
		return nil, "", fmt.Errorf("ffmpeg not found")
	}

	display := os.Getenv("DISPLAY")
	if display == "" {
		return nil, "", fmt.Errorf("DISPLAY not set")
	}

	return &ffmpegCapturer{display: display}, "FFmpeg", nil
}

func (c *ffmpegCapturer) Capture(ctx context.Context, display int) ([]byte, error) {
	bounds, err := displayBounds(display)
	if err != nil {
		return nil, err
	}

	cmd := exec.CommandContext(ctx, "ffmpeg", ffmpegArgs(c.display, bounds.Min.X, bounds.Min.Y, bounds.Dx(), bounds.Dy())...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return nil, fmt.Errorf("ffmpeg: %w: %s", err, msg)
		}
		return nil, fmt.Errorf("ffmpeg: %w", err)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("ffmpeg: no frame written")
	}
	return out, nil
}

func (c *ffmpegCapturer) Close() error { return nil }

// ffmpegArgs builds a one-frame x11grab invocation writing PNG to stdout.
func ffmpegArgs(display string, x, y, w, h int) []string {
	return []string{
		"-nostdin",
		"-loglevel", "error",
		"-f", "x11grab",
		"-video_size", fmt.Sprintf("%dx%d", w, h),
		"-i", fmt.Sprintf("%s+%d,%d", display, x, y),
		"-frames:v", "1",
		"-f", "image2pipe",
		"-vcodec", "png",
		"pipe:1",
	}
}
