package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"
)

// copyToClipboard writes text to the system clipboard. Tests replace it.
var copyToClipboard = clipboard.WriteAll

type mountPickerMsg struct {
	surface PickSurface
}

type mountResultMsg struct {
	color      Color
	generation int
}

type colorResolvedMsg struct {
	resp Response
}

type requestDoneMsg struct {
	action Action
	resp   Response
}

type toastExpiredMsg struct {
	seq int
}

// pageModel is the page renderer: it hosts the overlay document and talks to
// the coordinator only through protocol messages.
type pageModel struct {
	ctx       context.Context
	targetID  string
	messenger Messenger
	log       *logrus.Logger

	doc           *Document
	width, height int
	spinner       spinner.Model
	busy          bool   // a getPixelColor request is in flight
	sampled       *Color // the color resolved by the current pick
	resultGen     int    // bumped whenever the user closes the result overlay

	toast    string
	toastErr bool
	toastSeq int
	toastTTL time.Duration

	pickOnStart bool
}

func newPageModel(ctx context.Context, targetID string, m Messenger, log *logrus.Logger, toastTTL time.Duration) pageModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = titleStyle
	return pageModel{
		ctx:       ctx,
		targetID:  targetID,
		messenger: m,
		log:       log,
		doc:       NewDocument(),
		spinner:   s,
		resultGen: 1,
		toastTTL:  toastTTL,
	}
}

func (m pageModel) Init() tea.Cmd {
	if m.pickOnStart {
		return m.send(Request{Action: ActionStartPicking})
	}
	return nil
}

// send issues req from a command goroutine so that coordinator calls, which
// may mount overlays back into this program, never run inside Update.
func (m pageModel) send(req Request) tea.Cmd {
	req.TargetID = m.targetID
	ctx, messenger := m.ctx, m.messenger
	return func() tea.Msg {
		resp := messenger.Send(ctx, req)
		if req.Action == ActionGetPixelColor {
			return colorResolvedMsg{resp: resp}
		}
		return requestDoneMsg{action: req.Action, resp: resp}
	}
}

func (m pageModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.doc.SetSize(msg.Width, msg.Height)
		return m, nil

	case mountPickerMsg:
		m.doc.Mount(NewPickingOverlay(msg.surface))
		return m, nil

	case mountResultMsg:
		if msg.generation != 0 && msg.generation != m.resultGen {
			return m, m.resyncResult(msg.generation)
		}
		original := msg.color
		if m.sampled != nil {
			original = *m.sampled
		}
		m.doc.Mount(NewResultOverlay(msg.color, original))
		return m, nil

	case colorResolvedMsg:
		m.busy = false
		if !msg.resp.OK || msg.resp.Color == nil {
			return m.showError(fmt.Sprintf("Pick failed: %s", describe(msg.resp)))
		}
		c := *msg.resp.Color
		m.sampled = &c
		return m, m.showResult(c)

	case requestDoneMsg:
		if !msg.resp.OK {
			m.log.WithFields(logrus.Fields{"action": msg.action, "error": msg.resp.Error}).Warn(msg.resp.Message)
			if msg.action != ActionResultDismissed {
				return m.showError(fmt.Sprintf("%s failed: %s", msg.action, describe(msg.resp)))
			}
		}
		return m, nil

	case toastExpiredMsg:
		if msg.seq == m.toastSeq {
			m.toast = ""
		}
		return m, nil

	case spinner.TickMsg:
		if !m.busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.doc.ListenerCount() > 0 {
			return m.handleIntent(m.doc.DispatchKey(msg))
		}
		switch msg.String() {
		case "q":
			return m, tea.Quit
		case "p", " ":
			return m, m.send(Request{Action: ActionStartPicking})
		}

	case tea.MouseMsg:
		return m.handleIntent(m.doc.DispatchMouse(msg))
	}

	return m, nil
}

func (m pageModel) handleIntent(in Intent) (tea.Model, tea.Cmd) {
	switch in.Type {
	case IntentDismiss:
		m.doc.Remove(in.Overlay)
		if in.Overlay == OverlayResult {
			m.sampled = nil
			m.resultGen++
			return m, m.send(Request{Action: ActionResultDismissed})
		}

	case IntentPick:
		m.doc.Remove(OverlayPicker)
		m.busy = true
		p := in.Point
		return m, tea.Batch(m.spinner.Tick, m.send(Request{Action: ActionGetPixelColor, Coordinates: &p}))

	case IntentCopy:
		if err := copyToClipboard(in.Color.Hex()); err != nil {
			m.log.WithError(err).Warn("clipboard write failed")
			return m.showError("Copy failed: " + err.Error())
		}
		return m.showToast("Copied "+in.Color.Hex(), false)

	case IntentDrill:
		return m, m.showResult(in.Color)
	}
	return m, nil
}

func (m pageModel) showResult(c Color) tea.Cmd {
	return m.send(Request{Action: ActionShowResult, Color: &c, Generation: m.resultGen})
}

// resyncResult answers a mount from a closed result overlay. The coordinator
// has already mirrored that color to its sinks, so they are pointed back at
// the overlay that is open now, or released when none is.
func (m pageModel) resyncResult(stale int) tea.Cmd {
	m.log.WithFields(logrus.Fields{"generation": stale, "current": m.resultGen}).Debug("dropping stale result mount")
	if ov, ok := m.doc.Get(OverlayResult); ok {
		return m.showResult(ov.(*ResultOverlay).Color())
	}
	return m.send(Request{Action: ActionResultDismissed})
}

func (m pageModel) showError(text string) (tea.Model, tea.Cmd) {
	return m.showToast(text, true)
}

func (m pageModel) showToast(text string, isErr bool) (tea.Model, tea.Cmd) {
	m.toast = strings.Join(strings.Fields(text), " ") // one row
	m.toastErr = isErr
	m.toastSeq++
	seq := m.toastSeq
	return m, tea.Tick(m.toastTTL, func(time.Time) tea.Msg { return toastExpiredMsg{seq: seq} })
}

func describe(resp Response) string {
	err := resp.Err()
	switch {
	case err == nil:
		return "no color in response"
	case errors.Is(err, ErrNoTarget):
		return "this page is not attached to a display"
	case errors.Is(err, ErrCaptureFailed):
		return "could not capture the screen"
	case errors.Is(err, ErrDecodeFailed):
		return "could not read the screenshot"
	case errors.Is(err, ErrOutOfRange):
		return "that point is outside the screen"
	case errors.Is(err, ErrInjectionFailed):
		return "could not show the overlay"
	}
	if resp.Message != "" {
		return resp.Message
	}
	return err.Error()
}

// View never renders more than height lines: the picking overlay maps mouse
// rows onto the display, so the frame must not scroll. With an overlay
// mounted the toast takes the last row.
func (m pageModel) View() string {
	ov, ok := m.doc.Top()
	if !ok {
		s := m.idleView()
		if m.toast != "" {
			s += "\n" + m.toastView()
		}
		return s
	}

	lines := strings.Split(ov.View(), "\n")
	if m.height > 0 && len(lines) > m.height {
		lines = lines[:m.height]
	}
	if m.toast != "" {
		if m.height > 0 && len(lines) == m.height {
			lines[len(lines)-1] = m.toastView()
		} else {
			lines = append(lines, m.toastView())
		}
	}
	return strings.Join(lines, "\n")
}

func (m pageModel) toastView() string {
	style := okStyle
	if m.toastErr {
		style = errStyle
	}
	return style.Render("  " + m.toast)
}

func (m pageModel) idleView() string {
	s := "\n" + titleStyle.Render("  pixelpick") + helpStyle.Render("  target "+m.targetID) + "\n\n"
	if m.busy {
		s += fmt.Sprintf("  %s %s\n", m.spinner.View(), titleStyle.Render("Sampling pixel..."))
	} else {
		s += itemStyle.Render("Press p to pick a color from the screen.") + "\n"
	}
	s += "\n" + helpStyle.Render("  p pick · q quit") + "\n"
	return s
}

// programPage binds a running bubbletea program to the Page interface.
type programPage struct {
	mu      sync.Mutex
	prog    *tea.Program
	running bool
}

func (p *programPage) MountPicker(s PickSurface) error {
	return p.send(mountPickerMsg{surface: s})
}

func (p *programPage) MountResult(c Color, generation int) error {
	return p.send(mountResultMsg{color: c, generation: generation})
}

func (p *programPage) send(msg tea.Msg) error {
	p.mu.Lock()
	prog, running := p.prog, p.running
	p.mu.Unlock()
	if !running {
		return fmt.Errorf("page is not running")
	}
	prog.Send(msg)
	return nil
}

// run starts prog and blocks until it exits.
func (p *programPage) run(prog *tea.Program) (tea.Model, error) {
	p.mu.Lock()
	p.prog = prog
	p.running = true
	p.mu.Unlock()

	defer func() {
		p.mu.Lock()
		p.running = false
		p.mu.Unlock()
	}()
	return prog.Run()
}
