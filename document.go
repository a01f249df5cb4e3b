package main

import tea "github.com/charmbracelet/bubbletea"

// OverlayKind identifies an overlay slot in a Document.
type OverlayKind int

const (
	OverlayPicker OverlayKind = iota
	OverlayResult
)

func (k OverlayKind) String() string {
	switch k {
	case OverlayPicker:
		return "picker"
	case OverlayResult:
		return "result"
	default:
		return "unknown"
	}
}

// IntentType is what an overlay asks the page to do after handling input.
type IntentType int

const (
	IntentNone    IntentType = iota
	IntentDismiss            // remove the overlay
	IntentPick               // a point was picked; remove the overlay
	IntentCopy               // copy Color to the clipboard
	IntentDrill              // show a result overlay for Color
)

// Intent is the outcome of an overlay input event.
type Intent struct {
	Type    IntentType
	Overlay OverlayKind
	Point   Point
	Color   Color
}

// Overlay is a transient layer mounted into a Document.
type Overlay interface {
	Kind() OverlayKind
	SetSize(width, height int)
	HandleKey(msg tea.KeyMsg) Intent
	HandleMouse(msg tea.MouseMsg) Intent
	View() string
}

type keyListener struct {
	kind   OverlayKind
	handle func(tea.KeyMsg) Intent
}

// Document is the page's overlay state: at most one overlay per kind, plus the
// key listeners those overlays registered, kept in mount order.
type Document struct {
	overlays      map[OverlayKind]Overlay
	listeners     []keyListener
	width, height int
}

// NewDocument creates an empty document.
func NewDocument() *Document {
	return &Document{overlays: make(map[OverlayKind]Overlay)}
}

// Mount installs ov, first removing any overlay of the same kind together
// with its listener.
func (d *Document) Mount(ov Overlay) {
	kind := ov.Kind()
	d.Remove(kind)
	ov.SetSize(d.width, d.height)
	d.overlays[kind] = ov
	d.listeners = append(d.listeners, keyListener{kind: kind, handle: ov.HandleKey})
}

// Remove drops the overlay of kind and its listener. It reports whether one
// was mounted.
func (d *Document) Remove(kind OverlayKind) bool {
	if _, ok := d.overlays[kind]; !ok {
		return false
	}
	delete(d.overlays, kind)
	kept := d.listeners[:0]
	for _, l := range d.listeners {
		if l.kind != kind {
			kept = append(kept, l)
		}
	}
	d.listeners = kept
	return true
}

// Get returns the overlay of kind, if mounted.
func (d *Document) Get(kind OverlayKind) (Overlay, bool) {
	ov, ok := d.overlays[kind]
	return ov, ok
}

// Top returns the most recently mounted overlay.
func (d *Document) Top() (Overlay, bool) {
	if len(d.listeners) == 0 {
		return nil, false
	}
	return d.overlays[d.listeners[len(d.listeners)-1].kind], true
}

// Count returns the number of mounted overlays.
func (d *Document) Count() int {
	return len(d.overlays)
}

// ListenerCount returns the number of registered key listeners.
func (d *Document) ListenerCount() int {
	return len(d.listeners)
}

// SetSize resizes the document and every mounted overlay.
func (d *Document) SetSize(width, height int) {
	d.width, d.height = width, height
	for _, ov := range d.overlays {
		ov.SetSize(width, height)
	}
}

// DispatchKey delivers msg to the top-most listener only.
func (d *Document) DispatchKey(msg tea.KeyMsg) Intent {
	if len(d.listeners) == 0 {
		return Intent{}
	}
	l := d.listeners[len(d.listeners)-1]
	in := l.handle(msg)
	in.Overlay = l.kind
	return in
}

// DispatchMouse delivers msg to the top-most overlay.
func (d *Document) DispatchMouse(msg tea.MouseMsg) Intent {
	ov, ok := d.Top()
	if !ok {
		return Intent{}
	}
	in := ov.HandleMouse(msg)
	in.Overlay = ov.Kind()
	return in
}
