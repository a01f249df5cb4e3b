package main

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"io"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
)

type fakeCapturer struct {
	mu     sync.Mutex
	raster []byte
	err    error
	calls  int
}

func (f *fakeCapturer) Capture(ctx context.Context, display int) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.raster, f.err
}

func (f *fakeCapturer) Close() error { return nil }

type fakePage struct {
	mu          sync.Mutex
	pickers     []PickSurface
	results     []Color
	generations []int
	err         error
}

func (p *fakePage) MountPicker(s PickSurface) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.pickers = append(p.pickers, s)
	return nil
}

func (p *fakePage) MountResult(c Color, generation int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.results = append(p.results, c)
	p.generations = append(p.generations, generation)
	return nil
}

type fakeSink struct {
	shown    []Color
	cleared  int
	clearErr error
}

func (s *fakeSink) Name() string { return "fake" }

func (s *fakeSink) Show(c Color) error {
	s.shown = append(s.shown, c)
	return nil
}

func (s *fakeSink) Clear() error {
	s.cleared++
	return s.clearErr
}

func discardLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// quadImage is the 2x2 raster red, green / blue, yellow in row-major order.
func quadImage() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	img.SetNRGBA(0, 0, color.NRGBA{255, 0, 0, 255})
	img.SetNRGBA(1, 0, color.NRGBA{0, 255, 0, 255})
	img.SetNRGBA(0, 1, color.NRGBA{0, 0, 255, 255})
	img.SetNRGBA(1, 1, color.NRGBA{255, 255, 0, 255})
	return img
}

func pngRaster(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encoding png: %v", err)
	}
	return buf.Bytes()
}

func stubDisplayBounds(t *testing.T, r image.Rectangle, err error) {
	t.Helper()
	orig := displayBounds
	displayBounds = func(int) (image.Rectangle, error) { return r, err }
	t.Cleanup(func() { displayBounds = orig })
}
