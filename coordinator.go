package main

import (
	"context"
	"fmt"
	"image"
	"io"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// PickSurface describes the target a picking overlay maps clicks onto.
type PickSurface struct {
	Width, Height int
	Preview       image.Image // nil when no preview could be captured
}

// Page renders overlays for one target. Implementations run in the page
// context and never capture the screen themselves.
// MountResult carries the generation the page attached to its
// showResultOverlay request, or 0 for requests from outside the page.
type Page interface {
	MountPicker(s PickSurface) error
	MountResult(c Color, generation int) error
}

// ColorSink mirrors the color shown by the result overlay somewhere else.
type ColorSink interface {
	Name() string
	Show(c Color) error
	Clear() error
}

type target struct {
	display int
	page    Page
}

// CoordinatorOptions configures a Coordinator. Zero values are usable.
type CoordinatorOptions struct {
	Preview bool
	Sinks   []ColorSink
	Log     *logrus.Logger
	Metrics *Metrics
}

// Coordinator owns screen capture and mediates between pages and the sampler.
type Coordinator struct {
	capturer Capturer
	preview  bool
	sinks    []ColorSink
	log      *logrus.Logger
	metrics  *Metrics

	mu      sync.RWMutex
	targets map[string]target

	results sync.Mutex // orders ShowResult and DismissResult sink calls
}

// NewCoordinator creates a Coordinator capturing through capturer.
func NewCoordinator(capturer Capturer, opts CoordinatorOptions) *Coordinator {
	log := opts.Log
	if log == nil {
		log = logrus.New()
		log.SetOutput(io.Discard)
	}
	return &Coordinator{
		capturer: capturer,
		preview:  opts.Preview,
		sinks:    opts.Sinks,
		log:      log,
		metrics:  opts.Metrics,
		targets:  make(map[string]target),
	}
}

// Attach registers page under id, bound to display. A nil page is allowed for
// headless use; mounting into it fails with ErrInjectionFailed.
func (c *Coordinator) Attach(id string, display int, page Page) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.targets[id] = target{display: display, page: page}
}

// Detach forgets id.
func (c *Coordinator) Detach(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.targets, id)
}

func (c *Coordinator) lookup(id string) (target, error) {
	if id == "" {
		return target{}, fmt.Errorf("%w: empty target id", ErrNoTarget)
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	t, ok := c.targets[id]
	if !ok {
		return target{}, fmt.Errorf("%w: %q is not attached", ErrNoTarget, id)
	}
	return t, nil
}

// StartPicking mounts a picking overlay in the target's page. Any overlay
// already picking on that page is replaced.
func (c *Coordinator) StartPicking(ctx context.Context, id string) error {
	t, err := c.lookup(id)
	if err != nil {
		c.log.WithError(err).Warn("start picking rejected")
		return err
	}
	log := c.log.WithFields(logrus.Fields{"target": id, "display": t.display})

	surface, err := c.surface(ctx, t.display, log)
	if err != nil {
		log.WithError(err).Error("start picking failed")
		return err
	}

	if err := mount(t.page, func(p Page) error { return p.MountPicker(surface) }); err != nil {
		c.metrics.mounted("picker", err)
		log.WithError(err).Error("mounting picking overlay failed")
		return err
	}
	c.metrics.mounted("picker", nil)
	log.WithFields(logrus.Fields{"width": surface.Width, "height": surface.Height, "preview": surface.Preview != nil}).
		Info("picking overlay mounted")
	return nil
}

// surface sizes the picking overlay, preferring the dimensions of a fresh
// preview capture over the reported display bounds.
func (c *Coordinator) surface(ctx context.Context, display int, log *logrus.Entry) (PickSurface, error) {
	if c.preview {
		img, err := c.captureImage(ctx, display)
		if err == nil {
			b := img.Bounds()
			return PickSurface{Width: b.Dx(), Height: b.Dy(), Preview: img}, nil
		}
		log.WithError(err).Warn("preview capture failed, picking without preview")
	}

	bounds, err := displayBounds(display)
	if err != nil {
		return PickSurface{}, fmt.Errorf("%w: %w", ErrCaptureFailed, err)
	}
	return PickSurface{Width: bounds.Dx(), Height: bounds.Dy()}, nil
}

func (c *Coordinator) captureRaster(ctx context.Context, display int) ([]byte, error) {
	start := time.Now()
	raster, err := c.capturer.Capture(ctx, display)
	c.metrics.captured(time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCaptureFailed, err)
	}
	return raster, nil
}

func (c *Coordinator) captureImage(ctx context.Context, display int) (image.Image, error) {
	raster, err := c.captureRaster(ctx, display)
	if err != nil {
		return nil, err
	}
	return DecodeRaster(raster)
}

// ResolveColor captures the target's display and samples the pixel at p.
func (c *Coordinator) ResolveColor(ctx context.Context, id string, p Point) (Color, error) {
	col, err := c.resolveColor(ctx, id, p)
	c.metrics.picked(err)
	if err != nil {
		c.log.WithFields(logrus.Fields{"target": id, "point": p.String()}).WithError(err).Error("resolving color failed")
		return Color{}, err
	}
	c.log.WithFields(logrus.Fields{"target": id, "point": p.String(), "color": col.Hex()}).Info("color resolved")
	return col, nil
}

func (c *Coordinator) resolveColor(ctx context.Context, id string, p Point) (Color, error) {
	t, err := c.lookup(id)
	if err != nil {
		return Color{}, err
	}
	raster, err := c.captureRaster(ctx, t.display)
	if err != nil {
		return Color{}, err
	}
	return Sample(raster, p)
}

// ShowResult mounts a result overlay for col in the target's page and mirrors
// col to every sink. Sink failures are logged only.
func (c *Coordinator) ShowResult(ctx context.Context, id string, col Color, generation int) error {
	t, err := c.lookup(id)
	if err != nil {
		c.log.WithError(err).Warn("show result rejected")
		return err
	}
	log := c.log.WithFields(logrus.Fields{"target": id, "color": col.Hex()})

	c.results.Lock()
	defer c.results.Unlock()

	if err := mount(t.page, func(p Page) error { return p.MountResult(col, generation) }); err != nil {
		c.metrics.mounted("result", err)
		log.WithError(err).Error("mounting result overlay failed")
		return err
	}
	c.metrics.mounted("result", nil)

	for _, s := range c.sinks {
		if err := s.Show(col); err != nil {
			log.WithField("sink", s.Name()).WithError(err).Warn("sink show failed")
		}
	}
	return nil
}

// DismissResult releases the sinks after a page closed its result overlay.
func (c *Coordinator) DismissResult(ctx context.Context, id string) error {
	if _, err := c.lookup(id); err != nil {
		return err
	}

	c.results.Lock()
	defer c.results.Unlock()

	for _, s := range c.sinks {
		if err := s.Clear(); err != nil {
			c.log.WithFields(logrus.Fields{"target": id, "sink": s.Name()}).WithError(err).Warn("sink clear failed")
		}
	}
	return nil
}

// Send implements Messenger for pages living in the same process.
func (c *Coordinator) Send(ctx context.Context, req Request) Response {
	return c.Handle(ctx, req)
}

// Handle dispatches one protocol request. The target is checked before the
// payload, so a request naming no target always fails with no-target.
func (c *Coordinator) Handle(ctx context.Context, req Request) Response {
	switch req.Action {
	case ActionGetPixelColor, ActionShowResult:
		if _, err := c.lookup(req.TargetID); err != nil {
			if req.Action == ActionGetPixelColor {
				c.metrics.picked(err)
			}
			c.log.WithError(err).Warn("request rejected")
			return errResponse(err)
		}
	}

	switch req.Action {
	case ActionStartPicking:
		if err := c.StartPicking(ctx, req.TargetID); err != nil {
			return errResponse(err)
		}
		return okResponse()

	case ActionGetPixelColor:
		if req.Coordinates == nil {
			return errResponse(fmt.Errorf("%w: coordinates required", ErrBadRequest))
		}
		col, err := c.ResolveColor(ctx, req.TargetID, *req.Coordinates)
		if err != nil {
			return errResponse(err)
		}
		return Response{OK: true, Color: &col}

	case ActionShowResult:
		if req.Color == nil {
			return errResponse(fmt.Errorf("%w: color required", ErrBadRequest))
		}
		if err := c.ShowResult(ctx, req.TargetID, *req.Color, req.Generation); err != nil {
			return errResponse(err)
		}
		return okResponse()

	case ActionResultDismissed:
		if err := c.DismissResult(ctx, req.TargetID); err != nil {
			return errResponse(err)
		}
		return okResponse()
	}

	err := fmt.Errorf("%w: %q", ErrUnknownAction, req.Action)
	c.log.WithError(err).Warn("request rejected")
	return errResponse(err)
}

// Close releases the capturer and clears all sinks.
func (c *Coordinator) Close() error {
	for _, s := range c.sinks {
		if err := s.Clear(); err != nil {
			c.log.WithField("sink", s.Name()).WithError(err).Warn("sink clear failed")
		}
	}
	if err := c.capturer.Close(); err != nil {
		c.log.WithError(err).Warn("closing capturer failed")
		return err
	}
	return nil
}

func mount(p Page, fn func(Page) error) error {
	if p == nil {
		return fmt.Errorf("%w: no page attached", ErrInjectionFailed)
	}
	if err := fn(p); err != nil {
		return fmt.Errorf("%w: %w", ErrInjectionFailed, err)
	}
	return nil
}
