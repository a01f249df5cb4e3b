package main

import (
	"context"
	"fmt"
	"image"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/kbinani/screenshot"
)

const (
	portalDest      = "org.freedesktop.portal.Desktop"
	portalPath      = "/org/freedesktop/portal/desktop"
	screenshotIface = "org.freedesktop.portal.Screenshot"
	requestIface    = "org.freedesktop.portal.Request"

	portalTimeout = 120 * time.Second // the first request may show a permission dialog
)

// portalCapturer takes screenshots through the XDG Desktop Portal, which is
// the only capture path on most Wayland compositors.
type portalCapturer struct {
	conn   *dbus.Conn
	portal dbus.BusObject
	sender string

	mu  sync.Mutex
	seq int
}

func newPortalCapturer() (Capturer, string, error) {
	if os.Getenv("WAYLAND_DISPLAY") == "" && os.Getenv("XDG_SESSION_TYPE") != "wayland" {
		return nil, "", fmt.Errorf("not a wayland session")
	}

	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, "", fmt.Errorf("connecting to session bus: %w", err)
	}

	portal := conn.Object(portalDest, dbus.ObjectPath(portalPath))
	var version uint32
	if err := portal.StoreProperty(screenshotIface+".version", &version); err != nil {
		conn.Close()
		return nil, "", fmt.Errorf("screenshot portal unavailable: %w", err)
	}

	return &portalCapturer{
		conn:   conn,
		portal: portal,
		sender: senderToToken(conn.Names()[0]),
	}, "Portal", nil
}

func (c *portalCapturer) Capture(ctx context.Context, display int) ([]byte, error) {
	c.mu.Lock()
	c.seq++
	reqToken := fmt.Sprintf("pixelpick_shot_%d", c.seq)
	c.mu.Unlock()

	reqPath := dbus.ObjectPath(fmt.Sprintf("/org/freedesktop/portal/desktop/request/%s/%s", c.sender, reqToken))
	sigCh, unsubscribe, err := subscribeSignal(c.conn, reqPath)
	if err != nil {
		return nil, err
	}
	defer unsubscribe()

	call := c.portal.CallWithContext(ctx, screenshotIface+".Screenshot", 0, "", map[string]dbus.Variant{
		"handle_token": dbus.MakeVariant(reqToken),
		"interactive":  dbus.MakeVariant(false),
	})
	if call.Err != nil {
		return nil, fmt.Errorf("Screenshot: %w", call.Err)
	}

	ctx, cancel := context.WithTimeout(ctx, portalTimeout)
	defer cancel()

	resp, err := waitForResponse(ctx, sigCh)
	if err != nil {
		return nil, fmt.Errorf("Screenshot response: %w", err)
	}

	path, err := extractScreenshotPath(resp)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading portal screenshot: %w", err)
	}
	// The portal saves into the user's pictures directory.
	_ = os.Remove(path)

	if screenshot.NumActiveDisplays() <= 1 {
		return data, nil
	}
	return cropToDisplay(data, display)
}

func (c *portalCapturer) Close() error {
	return c.conn.Close()
}

// cropToDisplay cuts one display out of a whole-desktop screenshot.
func cropToDisplay(raster []byte, display int) ([]byte, error) {
	bounds, err := displayBounds(display)
	if err != nil {
		return nil, err
	}
	img, err := DecodeRaster(raster)
	if err != nil {
		return nil, fmt.Errorf("cropping portal screenshot: %w", err)
	}
	sub, ok := img.(interface {
		SubImage(r image.Rectangle) image.Image
	})
	if !ok {
		return nil, fmt.Errorf("cropping portal screenshot: unsupported image type %T", img)
	}
	origin := desktopBounds().Min
	r := bounds.Sub(origin).Add(img.Bounds().Min)
	return encodePNG(sub.SubImage(r))
}

// signalBus is the part of *dbus.Conn used to watch portal responses.
type signalBus interface {
	Signal(ch chan<- *dbus.Signal)
	RemoveSignal(ch chan<- *dbus.Signal)
	AddMatchSignal(options ...dbus.MatchOption) error
	RemoveMatchSignal(options ...dbus.MatchOption) error
}

// subscribeSignal registers a match for the portal Response signal at path and
// returns a channel receiving it. unsubscribe drops both the channel and the
// match rule on the bus.
func subscribeSignal(bus signalBus, path dbus.ObjectPath) (ch chan *dbus.Signal, unsubscribe func(), err error) {
	match := []dbus.MatchOption{
		dbus.WithMatchInterface(requestIface),
		dbus.WithMatchMember("Response"),
		dbus.WithMatchObjectPath(path),
	}
	if err := bus.AddMatchSignal(match...); err != nil {
		return nil, nil, fmt.Errorf("watching portal response: %w", err)
	}
	ch = make(chan *dbus.Signal, 1)
	bus.Signal(ch)
	return ch, func() {
		bus.RemoveSignal(ch)
		_ = bus.RemoveMatchSignal(match...)
	}, nil
}

// waitForResponse waits for a portal Response signal and returns the results map.
// A non-zero response code indicates the user denied or the request failed.
func waitForResponse(ctx context.Context, ch chan *dbus.Signal) (map[string]dbus.Variant, error) {
	for {
		select {
		case sig := <-ch:
			if sig == nil {
				return nil, fmt.Errorf("signal channel closed")
			}
			if len(sig.Body) < 2 {
				continue
			}
			code, ok := sig.Body[0].(uint32)
			if !ok {
				continue
			}
			if code != 0 {
				return nil, fmt.Errorf("portal request denied (code %d)", code)
			}
			results, ok := sig.Body[1].(map[string]dbus.Variant)
			if !ok {
				return nil, fmt.Errorf("unexpected response type")
			}
			return results, nil
		case <-ctx.Done():
			return nil, fmt.Errorf("waiting for portal response: %w", ctx.Err())
		}
	}
}

// senderToToken converts a D-Bus sender name like ":1.42" to "1_42" for use
// in request object paths.
func senderToToken(sender string) string {
	s := strings.TrimPrefix(sender, ":")
	return strings.ReplaceAll(s, ".", "_")
}

// extractScreenshotPath pulls the local file path out of the Screenshot
// response's "uri" entry.
func extractScreenshotPath(resp map[string]dbus.Variant) (string, error) {
	v, ok := resp["uri"]
	if !ok {
		return "", fmt.Errorf("no uri in Screenshot response")
	}
	raw, ok := v.Value().(string)
	if !ok {
		return "", fmt.Errorf("unexpected uri type: %T", v.Value())
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("parsing screenshot uri: %w", err)
	}
	if u.Scheme != "file" {
		return "", fmt.Errorf("unsupported screenshot uri scheme %q", u.Scheme)
	}
	return u.Path, nil
}
