package main

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	swatchWidth  = 8
	swatchHeight = 3
	swatchGap    = 2
)

var resultBoxStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(colorAccent).
	Padding(1, 2)

var (
	resultHexStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorText)
	resultValueStyle = lipgloss.NewStyle().Foreground(colorText)
	swatchLabelStyle = lipgloss.NewStyle().Foreground(colorMuted).Width(swatchWidth).Align(lipgloss.Center)
)

// ResultOverlay is a modal showing a color and its lighter and darker shades.
type ResultOverlay struct {
	color    Color
	original Color // the color first sampled in this pick
	width    int
	height   int
}

// NewResultOverlay shows c. original is the color sampled at the start of the
// drill-down chain; pass c itself for a fresh pick.
func NewResultOverlay(c, original Color) *ResultOverlay {
	return &ResultOverlay{color: c, original: original}
}

func (r *ResultOverlay) Kind() OverlayKind { return OverlayResult }

// Color returns the displayed color.
func (r *ResultOverlay) Color() Color { return r.color }

func (r *ResultOverlay) SetSize(width, height int) {
	r.width, r.height = width, height
}

func (r *ResultOverlay) HandleKey(msg tea.KeyMsg) Intent {
	switch msg.String() {
	case "esc":
		return Intent{Type: IntentDismiss}
	case "enter", "c":
		return Intent{Type: IntentCopy, Color: r.color}
	case "left", "h":
		return Intent{Type: IntentDrill, Color: Lighter(r.color)}
	case "right", "l":
		return Intent{Type: IntentDrill, Color: Darker(r.color)}
	case "r":
		if r.original != r.color {
			return Intent{Type: IntentDrill, Color: r.original}
		}
	}
	return Intent{}
}

func (r *ResultOverlay) HandleMouse(msg tea.MouseMsg) Intent {
	if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
		return Intent{}
	}

	box := r.box()
	w, h := lipgloss.Width(box), lipgloss.Height(box)
	left, top := r.origin(w, h)
	if msg.X < left || msg.X >= left+w || msg.Y < top || msg.Y >= top+h {
		return Intent{Type: IntentDismiss}
	}

	x := msg.X - left - resultBoxStyle.GetBorderLeftSize() - resultBoxStyle.GetPaddingLeft()
	y := msg.Y - top - resultBoxStyle.GetBorderTopSize() - resultBoxStyle.GetPaddingTop()
	if y < 0 || y >= swatchHeight || x < 0 {
		return Intent{}
	}

	switch x / (swatchWidth + swatchGap) {
	case 0:
		if x < swatchWidth {
			return Intent{Type: IntentDrill, Color: Lighter(r.color)}
		}
	case 1:
		if x-(swatchWidth+swatchGap) < swatchWidth {
			return Intent{Type: IntentCopy, Color: r.color}
		}
	case 2:
		if x-2*(swatchWidth+swatchGap) < swatchWidth {
			return Intent{Type: IntentDrill, Color: Darker(r.color)}
		}
	}
	return Intent{}
}

// origin returns the top-left cell of a w×h box centred in the viewport.
func (r *ResultOverlay) origin(w, h int) (int, int) {
	return max((r.width-w)/2, 0), max((r.height-h)/2, 0)
}

func swatch(c Color) string {
	line := strings.Repeat(" ", swatchWidth)
	lines := make([]string, swatchHeight)
	for i := range lines {
		lines[i] = line
	}
	return lipgloss.NewStyle().Background(lipgloss.Color(c.Hex())).Render(strings.Join(lines, "\n"))
}

func (r *ResultOverlay) box() string {
	gap := strings.Repeat(" ", swatchGap)
	swatches := lipgloss.JoinHorizontal(lipgloss.Top,
		swatch(Lighter(r.color)), gap, swatch(r.color), gap, swatch(Darker(r.color)))
	labels := lipgloss.JoinHorizontal(lipgloss.Top,
		swatchLabelStyle.Render("lighter"), gap, swatchLabelStyle.Render("copy"), gap, swatchLabelStyle.Render("darker"))

	hint := "←/h lighter · →/l darker · enter copy · esc close"
	if r.original != r.color {
		hint = "←/h lighter · →/l darker · enter copy · r reset · esc close"
	}

	content := strings.Join([]string{
		swatches,
		labels,
		"",
		resultHexStyle.Render(r.color.Hex()),
		resultValueStyle.Render(r.color.RGB()),
		resultValueStyle.Render(r.color.HSL()),
		"",
		helpStyle.Render(hint),
	}, "\n")
	return resultBoxStyle.Render(content)
}

func (r *ResultOverlay) View() string {
	box := r.box()
	left, top := r.origin(lipgloss.Width(box), lipgloss.Height(box))
	return placeAt(box, left, top)
}

// placeAt offsets s by left columns and top rows.
func placeAt(s string, left, top int) string {
	pad := strings.Repeat(" ", left)
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = pad + l
	}
	return strings.Repeat("\n", top) + strings.Join(lines, "\n")
}
