package main

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	pickFillStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("237"))
	pickHintStyle = lipgloss.NewStyle().Foreground(colorText).Background(colorAccent)
)

// PickingOverlay covers the whole viewport and turns exactly one left click
// into a pixel coordinate on the target.
type PickingOverlay struct {
	surface       PickSurface
	width, height int
	picked        bool

	// rendered preview, valid for cacheW×cacheH
	cache          string
	cacheW, cacheH int
}

// NewPickingOverlay creates a picking overlay for surface.
func NewPickingOverlay(surface PickSurface) *PickingOverlay {
	return &PickingOverlay{surface: surface}
}

func (p *PickingOverlay) Kind() OverlayKind { return OverlayPicker }

func (p *PickingOverlay) SetSize(width, height int) {
	p.width, p.height = width, height
}

// surfaceRows is the number of rows that map onto the target; the last row
// holds the hint when there is room for it.
func (p *PickingOverlay) surfaceRows() int {
	if p.height > 1 {
		return p.height - 1
	}
	return p.height
}

func (p *PickingOverlay) HandleKey(msg tea.KeyMsg) Intent {
	if msg.String() == "esc" {
		return Intent{Type: IntentDismiss}
	}
	return Intent{}
}

func (p *PickingOverlay) HandleMouse(msg tea.MouseMsg) Intent {
	if p.picked || msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
		return Intent{}
	}
	pt, ok := cellToPixel(msg.X, msg.Y, p.width, p.surfaceRows(), p.surface.Width, p.surface.Height)
	if !ok {
		return Intent{}
	}
	p.picked = true
	return Intent{Type: IntentPick, Point: pt}
}

// cellToPixel maps the centre of cell (col, row) in a cols×rows grid onto a
// w×h target.
func cellToPixel(col, row, cols, rows, w, h int) (Point, bool) {
	if cols <= 0 || rows <= 0 || col < 0 || row < 0 || col >= cols || row >= rows {
		return Point{}, false
	}
	return Point{
		X: (2*col + 1) * w / (2 * cols),
		Y: (2*row + 1) * h / (2 * rows),
	}, true
}

func (p *PickingOverlay) View() string {
	rows := p.surfaceRows()
	if p.width <= 0 || rows <= 0 {
		return ""
	}

	var body string
	if p.surface.Preview != nil {
		if p.cacheW != p.width || p.cacheH != rows {
			p.cache = renderThumbnail(p.surface.Preview, p.width, rows)
			p.cacheW, p.cacheH = p.width, rows
		}
		body = p.cache
	} else {
		line := pickFillStyle.Render(strings.Repeat("░", p.width))
		lines := make([]string, rows)
		for i := range lines {
			lines[i] = line
		}
		body = strings.Join(lines, "\n")
	}

	if p.height <= 1 {
		return body
	}
	hint := fmt.Sprintf(" click a pixel · esc cancel · %dx%d", p.surface.Width, p.surface.Height)
	return body + "\n" + pickHintStyle.Width(p.width).MaxHeight(1).Render(hint)
}
