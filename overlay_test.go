package main

import (
	"image"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

func leftClick(x, y int) tea.MouseMsg {
	return tea.MouseMsg{X: x, Y: y, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft}
}

func TestCellToPixel(t *testing.T) {
	tests := []struct {
		col, row, cols, rows, w, h int
		want                       Point
		ok                         bool
	}{
		{0, 0, 2, 2, 2, 2, Point{0, 0}, true},
		{1, 0, 2, 2, 2, 2, Point{1, 0}, true},
		{0, 1, 2, 2, 2, 2, Point{0, 1}, true},
		{1, 1, 2, 2, 2, 2, Point{1, 1}, true},
		{0, 0, 100, 40, 1000, 400, Point{5, 5}, true},
		{99, 39, 100, 40, 1000, 400, Point{995, 395}, true},
		{2, 0, 2, 2, 2, 2, Point{}, false},
		{0, -1, 2, 2, 2, 2, Point{}, false},
		{0, 0, 0, 2, 2, 2, Point{}, false},
	}
	for _, tt := range tests {
		got, ok := cellToPixel(tt.col, tt.row, tt.cols, tt.rows, tt.w, tt.h)
		if ok != tt.ok || got != tt.want {
			t.Errorf("cellToPixel(%d, %d, %d, %d, %d, %d): expected %s %v, got %s %v",
				tt.col, tt.row, tt.cols, tt.rows, tt.w, tt.h, tt.want, tt.ok, got, ok)
		}
	}
}

func TestCellToPixelStaysInside(t *testing.T) {
	for _, size := range [][4]int{{80, 23, 1920, 1080}, {200, 60, 33, 7}, {3, 3, 1, 1}} {
		cols, rows, w, h := size[0], size[1], size[2], size[3]
		for col := 0; col < cols; col++ {
			for row := 0; row < rows; row++ {
				p, ok := cellToPixel(col, row, cols, rows, w, h)
				if !ok || p.X < 0 || p.X >= w || p.Y < 0 || p.Y >= h {
					t.Fatalf("cell (%d, %d) of %dx%d mapped to %s outside %dx%d", col, row, cols, rows, p, w, h)
				}
			}
		}
	}
}

func TestPickingOverlayPicksOnce(t *testing.T) {
	p := NewPickingOverlay(PickSurface{Width: 2, Height: 2})
	p.SetSize(2, 3) // two surface rows plus the hint row

	in := p.HandleMouse(leftClick(0, 1))
	if in.Type != IntentPick || in.Point != (Point{0, 1}) {
		t.Fatalf("expected pick at (0, 1), got %+v", in)
	}
	if in := p.HandleMouse(leftClick(1, 1)); in.Type != IntentNone {
		t.Errorf("expected second click to be ignored, got %+v", in)
	}
}

func TestPickingOverlayIgnores(t *testing.T) {
	p := NewPickingOverlay(PickSurface{Width: 100, Height: 100})
	p.SetSize(10, 11)

	if in := p.HandleMouse(leftClick(3, 10)); in.Type != IntentNone {
		t.Errorf("expected hint row click to be ignored, got %+v", in)
	}
	right := tea.MouseMsg{X: 1, Y: 1, Action: tea.MouseActionPress, Button: tea.MouseButtonRight}
	if in := p.HandleMouse(right); in.Type != IntentNone {
		t.Errorf("expected right click to be ignored, got %+v", in)
	}
	motion := tea.MouseMsg{X: 1, Y: 1, Action: tea.MouseActionMotion}
	if in := p.HandleMouse(motion); in.Type != IntentNone {
		t.Errorf("expected motion to be ignored, got %+v", in)
	}
	if in := p.HandleKey(tea.KeyMsg{Type: tea.KeyEsc}); in.Type != IntentDismiss {
		t.Errorf("expected esc to dismiss, got %+v", in)
	}
	if in := p.HandleKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")}); in.Type != IntentNone {
		t.Errorf("expected other keys to be ignored, got %+v", in)
	}
}

func TestPickingOverlayView(t *testing.T) {
	p := NewPickingOverlay(PickSurface{Width: 640, Height: 480})
	p.SetSize(60, 6)
	v := p.View()
	if lipgloss.Height(v) != 6 {
		t.Errorf("expected 6 rows, got %d", lipgloss.Height(v))
	}
	if !strings.Contains(v, "640x480") {
		t.Errorf("expected hint with surface size, got %q", v)
	}

	p = NewPickingOverlay(PickSurface{Width: 2, Height: 2, Preview: quadImage()})
	p.SetSize(4, 3)
	if got := lipgloss.Height(p.View()); got != 3 {
		t.Errorf("expected 3 rows with preview, got %d", got)
	}
}

func TestRenderThumbnailSize(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 64, 48))
	s := renderThumbnail(img, 16, 6)
	if lipgloss.Width(s) != 16 || lipgloss.Height(s) != 6 {
		t.Errorf("expected 16x6, got %dx%d", lipgloss.Width(s), lipgloss.Height(s))
	}
}

func TestResultOverlayKeys(t *testing.T) {
	c := NewColor(100, 100, 100, 255)
	r := NewResultOverlay(c, c)

	tests := []struct {
		key  tea.KeyMsg
		want Intent
	}{
		{tea.KeyMsg{Type: tea.KeyEsc}, Intent{Type: IntentDismiss}},
		{tea.KeyMsg{Type: tea.KeyEnter}, Intent{Type: IntentCopy, Color: c}},
		{tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("c")}, Intent{Type: IntentCopy, Color: c}},
		{tea.KeyMsg{Type: tea.KeyLeft}, Intent{Type: IntentDrill, Color: Lighter(c)}},
		{tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("l")}, Intent{Type: IntentDrill, Color: Darker(c)}},
		{tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")}, Intent{}},
	}
	for _, tt := range tests {
		if got := r.HandleKey(tt.key); got != tt.want {
			t.Errorf("key %s: expected %+v, got %+v", tt.key, tt.want, got)
		}
	}

	drilled := NewResultOverlay(Darker(c), c)
	if got := drilled.HandleKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")}); got.Type != IntentDrill || got.Color != c {
		t.Errorf("expected reset to %s, got %+v", c.Hex(), got)
	}
}

func TestResultOverlayMouse(t *testing.T) {
	c := NewColor(100, 150, 200, 255)
	r := NewResultOverlay(c, c)
	r.SetSize(100, 40)

	box := r.box()
	left, top := r.origin(lipgloss.Width(box), lipgloss.Height(box))
	if left == 0 || top == 0 {
		t.Fatalf("expected box to be inset, got origin (%d, %d)", left, top)
	}
	// border and padding put the swatches three columns and two rows in
	sx, sy := left+3, top+2
	step := swatchWidth + swatchGap

	tests := []struct {
		name string
		x, y int
		want Intent
	}{
		{"outside", 0, 0, Intent{Type: IntentDismiss}},
		{"lighter swatch", sx, sy, Intent{Type: IntentDrill, Color: Lighter(c)}},
		{"copy swatch", sx + step + swatchWidth - 1, sy + swatchHeight - 1, Intent{Type: IntentCopy, Color: c}},
		{"darker swatch", sx + 2*step, sy + 1, Intent{Type: IntentDrill, Color: Darker(c)}},
		{"gap", sx + swatchWidth, sy, Intent{}},
		{"text", sx, sy + swatchHeight + 3, Intent{}},
	}
	for _, tt := range tests {
		if got := r.HandleMouse(leftClick(tt.x, tt.y)); got != tt.want {
			t.Errorf("%s: expected %+v, got %+v", tt.name, tt.want, got)
		}
	}
}

func TestResultOverlayView(t *testing.T) {
	c := NewColor(0, 0, 255, 255)
	r := NewResultOverlay(c, c)
	r.SetSize(80, 30)
	v := r.View()
	for _, want := range []string{"#0000ff", "rgb(0, 0, 255)", "hsl(240, 100%, 50%)", "lighter", "darker"} {
		if !strings.Contains(v, want) {
			t.Errorf("expected view to contain %q", want)
		}
	}
}
