package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

const scanTimeout = 5 * time.Second

type hueStage int

const (
	hueScanning hueStage = iota
	hueSelectingBridge
	huePairing
	huePairingWait
	hueFetchingAreas
	hueSelectingArea
	hueDone
)

type bridgesScannedMsg struct {
	bridges []Bridge
	err     error
}

type bridgePairedMsg struct {
	creds BridgeCredentials
	err   error
}

type areasFetchedMsg struct {
	areas []EntertainmentArea
	err   error
}

// hueSetupModel walks the user through discovery, pairing and area selection.
// On success bridge, creds and area are set.
type hueSetupModel struct {
	stage   hueStage
	spinner spinner.Model
	err     error
	notice  string // recoverable problem shown on the pairing screen

	bridges []Bridge
	cursor  int
	bridge  *Bridge
	creds   BridgeCredentials

	areas      []EntertainmentArea
	areaCursor int
	area       *EntertainmentArea
}

func newHueSetupModel() hueSetupModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = titleStyle
	return hueSetupModel{stage: hueScanning, spinner: s}
}

func (m hueSetupModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, scanBridgesCmd())
}

func scanBridgesCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), scanTimeout)
		defer cancel()
		bridges, err := ScanBridges(ctx)
		return bridgesScannedMsg{bridges: bridges, err: err}
	}
}

func pairBridgeCmd(b Bridge) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), scanTimeout)
		defer cancel()
		creds, err := PairBridge(ctx, b.IP)
		return bridgePairedMsg{creds: creds, err: err}
	}
}

func fetchAreasCmd(b Bridge, username string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), scanTimeout)
		defer cancel()
		areas, err := FetchEntertainmentAreas(ctx, b.IP, username)
		return areasFetchedMsg{areas: areas, err: err}
	}
}

func (m hueSetupModel) fail(err error) (tea.Model, tea.Cmd) {
	m.err = err
	m.stage = hueDone
	return m, tea.Quit
}

// useBridge continues with stored credentials when there are any, otherwise
// asks for the link button.
func (m hueSetupModel) useBridge(b Bridge) (tea.Model, tea.Cmd) {
	m.bridge = &b
	if creds, found, _ := LoadCredentials(b.ID); found {
		m.creds = creds
		m.stage = hueFetchingAreas
		return m, fetchAreasCmd(b, creds.Username)
	}
	m.stage = huePairing
	return m, nil
}

func (m hueSetupModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case bridgesScannedMsg:
		switch {
		case msg.err != nil:
			return m.fail(msg.err)
		case len(msg.bridges) == 0:
			return m.fail(fmt.Errorf("no Hue bridges found on the network"))
		case len(msg.bridges) == 1:
			return m.useBridge(msg.bridges[0])
		}
		m.bridges = msg.bridges
		m.stage = hueSelectingBridge
		return m, nil

	case bridgePairedMsg:
		if errors.Is(msg.err, ErrLinkButtonNotPressed) {
			m.notice = "Link button not pressed."
			m.stage = huePairing
			return m, nil
		}
		if msg.err != nil {
			return m.fail(fmt.Errorf("pairing failed: %w", msg.err))
		}
		m.creds = msg.creds
		m.notice = ""
		if err := SaveCredentials(m.bridge.ID, msg.creds); err != nil {
			return m.fail(fmt.Errorf("saving credentials: %w", err))
		}
		m.stage = hueFetchingAreas
		return m, fetchAreasCmd(*m.bridge, m.creds.Username)

	case areasFetchedMsg:
		if errors.Is(msg.err, ErrUnauthorized) {
			_ = DeleteCredentials(m.bridge.ID)
			m.creds = BridgeCredentials{}
			m.notice = "Stored credentials were rejected by the bridge."
			m.stage = huePairing
			return m, nil
		}
		switch {
		case msg.err != nil:
			return m.fail(fmt.Errorf("fetching entertainment areas: %w", msg.err))
		case len(msg.areas) == 0:
			return m.fail(fmt.Errorf("no entertainment areas configured on this bridge"))
		case len(msg.areas) == 1:
			m.area = &msg.areas[0]
			m.stage = hueDone
			return m, tea.Quit
		}
		m.areas = msg.areas
		m.stage = hueSelectingArea
		return m, nil
	}

	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch m.stage {
	case hueSelectingBridge:
		if key.String() == "enter" {
			return m.useBridge(m.bridges[m.cursor])
		}
		m.cursor = moveCursor(key.String(), m.cursor, len(m.bridges))

	case huePairing:
		if key.String() == "enter" {
			m.stage = huePairingWait
			return m, pairBridgeCmd(*m.bridge)
		}

	case hueSelectingArea:
		if key.String() == "enter" {
			m.area = &m.areas[m.areaCursor]
			m.stage = hueDone
			return m, tea.Quit
		}
		m.areaCursor = moveCursor(key.String(), m.areaCursor, len(m.areas))
	}

	return m, nil
}

func moveCursor(key string, cursor, n int) int {
	switch key {
	case "up", "k":
		if cursor > 0 {
			return cursor - 1
		}
	case "down", "j":
		if cursor < n-1 {
			return cursor + 1
		}
	}
	return cursor
}

func renderList(title string, labels []string, cursor int) string {
	var b strings.Builder
	b.WriteString("\n" + titleStyle.Render("  "+title) + "\n\n")
	for i, label := range labels {
		if i == cursor {
			b.WriteString(selectedStyle.Render("▸ "+label) + "\n")
		} else {
			b.WriteString(itemStyle.Render(label) + "\n")
		}
	}
	b.WriteString("\n" + helpStyle.Render("  ↑/k up · ↓/j down · enter select · q quit") + "\n")
	return b.String()
}

func (m hueSetupModel) waiting(text string) string {
	return fmt.Sprintf("\n %s %s\n\n", m.spinner.View(), titleStyle.Render(text))
}

func (m hueSetupModel) View() string {
	switch m.stage {
	case hueScanning:
		return m.waiting("Scanning for Hue bridges...")

	case hueSelectingBridge:
		labels := make([]string, len(m.bridges))
		for i, b := range m.bridges {
			labels[i] = fmt.Sprintf("%s (%s) · %s", b.Name, b.ID, b.IP)
		}
		return renderList("Select a Hue bridge:", labels, m.cursor)

	case huePairing:
		s := "\n"
		if m.notice != "" {
			s += errStyle.Render("  "+m.notice) + "\n\n"
		}
		s += titleStyle.Render("  Press the link button on your Hue bridge, then press Enter.") + "\n\n"
		s += helpStyle.Render("  enter pair · q quit") + "\n"
		return s

	case huePairingWait:
		return m.waiting("Pairing with bridge...")

	case hueFetchingAreas:
		return m.waiting("Fetching entertainment areas...")

	case hueSelectingArea:
		labels := make([]string, len(m.areas))
		for i, a := range m.areas {
			labels[i] = a.String()
		}
		return renderList("Select the entertainment area to mirror picked colors on:", labels, m.areaCursor)

	case hueDone:
		if m.err != nil {
			return "\n" + errStyle.Render("  Error: "+m.err.Error()) + "\n\n"
		}
	}
	return ""
}

// hueConfig returns the Hue section describing the completed setup.
func (m hueSetupModel) hueConfig() (HueConfig, bool) {
	if m.err != nil || m.bridge == nil || m.area == nil {
		return HueConfig{}, false
	}
	return HueConfig{
		Enabled:  true,
		BridgeID: m.bridge.ID,
		BridgeIP: m.bridge.IP.String(),
		AreaID:   m.area.ID,
		Channels: m.area.ChannelIDs,
	}, true
}
