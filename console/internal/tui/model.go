// Package tui is the interactive terminal front end of the console.
package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Krimson/vitals-console/console/internal/app"
	"github.com/Krimson/vitals-console/console/internal/panels"
	"github.com/Krimson/vitals-console/console/internal/render"
	"github.com/Krimson/vitals-console/console/pkg/models"
)

type mode int

const (
	modeNormal mode = iota
	modeSearch
	modeSteps
	modeWallet
)

// wallet form fields in tab order
var walletFields = []string{"Name", "ID", "ICE", "Notes"}

// boardMsg carries the latest board snapshot
type boardMsg render.Snapshot

// actionMsg reports a finished backend action
type actionMsg struct {
	action string
	err    error
}

// Model is the bubbletea model over a wired console
type Model struct {
	console *app.Console
	updates <-chan render.Snapshot
	timeout time.Duration

	board  render.Snapshot
	mode   mode
	cursor int
	search string
	input  string

	walletField int
	walletDraft [4]string

	lastErr string
}

// NewModel subscribes to the console board. Board updates reach the model
// latest-first; intermediate snapshots may be skipped.
func NewModel(c *app.Console) Model {
	updates := make(chan render.Snapshot, 1)
	c.Board.Subscribe(func(s render.Snapshot) {
		for {
			select {
			case updates <- s:
				return
			default:
			}
			select {
			case <-updates:
			default:
			}
		}
	})

	timeout := c.Config.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return Model{
		console: c,
		updates: updates,
		timeout: timeout,
		board:   c.Board.Snapshot(),
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.waitForBoard(), m.run("start", m.console.Start))
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case boardMsg:
		m.board = render.Snapshot(msg)
		m.clampCursor()
		return m, m.waitForBoard()
	case actionMsg:
		m.lastErr = ""
		if msg.err != nil {
			m.lastErr = msg.action + ": " + msg.err.Error()
		}
		return m, nil
	case tea.KeyMsg:
		switch m.mode {
		case modeSearch:
			return m.updateSearch(msg)
		case modeSteps:
			return m.updateSteps(msg)
		case modeWallet:
			return m.updateWallet(msg)
		default:
			return m.updateNormal(msg)
		}
	}
	return m, nil
}

func (m Model) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	page := m.console.Page
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.visiblePatients())-1 {
			m.cursor++
		}
	case "enter":
		visible := m.visiblePatients()
		if !page.Mounts(panels.PanelDashboard) || len(visible) == 0 {
			return m, nil
		}
		id := visible[m.cursor].ID
		return m, m.run("select", func(ctx context.Context) error {
			return m.console.Controller.Select(ctx, id)
		})
	case "r":
		if page.Mounts(panels.PanelDashboard) {
			return m, m.run("refresh", m.console.Controller.Refresh)
		}
	case "a":
		if m.console.Analysis != nil && m.board.PatientID != "" {
			id := m.board.PatientID
			return m, m.run("analyze", func(ctx context.Context) error {
				_, err := m.console.Analysis.Analyze(ctx, id)
				return err
			})
		}
	case "/":
		if page.Mounts(panels.PanelDashboard) {
			m.mode = modeSearch
		}
	case "s":
		if m.console.Civic != nil {
			m.mode = modeSteps
			m.input = ""
		}
	case "w":
		if m.console.Wallet != nil {
			shown := m.console.Wallet.Displayed()
			m.mode = modeWallet
			m.walletField = 0
			m.walletDraft = [4]string{shown.Name, shown.ID, shown.ICE, shown.MedicalNotes}
		}
	}
	return m, nil
}

func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter, tea.KeyEsc:
		m.mode = modeNormal
	default:
		m.search = edit(m.search, msg)
	}
	m.clampCursor()
	return m, nil
}

func (m Model) updateSteps(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.mode = modeNormal
	case tea.KeyEnter:
		m.mode = modeNormal
		topic := m.input
		return m, m.run("steps", func(ctx context.Context) error {
			_, err := m.console.Civic.Lookup(ctx, topic)
			return err
		})
	default:
		m.input = edit(m.input, msg)
	}
	return m, nil
}

func (m Model) updateWallet(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.mode = modeNormal
	case tea.KeyTab, tea.KeyDown:
		m.walletField = (m.walletField + 1) % len(walletFields)
	case tea.KeyShiftTab, tea.KeyUp:
		m.walletField = (m.walletField + len(walletFields) - 1) % len(walletFields)
	case tea.KeyEnter:
		m.mode = modeNormal
		input := models.EmergencyProfile{
			Name:         m.walletDraft[0],
			ID:           m.walletDraft[1],
			ICE:          m.walletDraft[2],
			MedicalNotes: m.walletDraft[3],
		}
		return m, m.run("save wallet", func(ctx context.Context) error {
			_, err := m.console.Wallet.Save(ctx, input)
			return err
		})
	default:
		m.walletDraft[m.walletField] = edit(m.walletDraft[m.walletField], msg)
	}
	return m, nil
}

// run executes fn off the UI loop with the request timeout
func (m Model) run(action string, fn func(ctx context.Context) error) tea.Cmd {
	timeout := m.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return actionMsg{action: action, err: fn(ctx)}
	}
}

func (m Model) waitForBoard() tea.Cmd {
	updates := m.updates
	return func() tea.Msg {
		return boardMsg(<-updates)
	}
}

// visiblePatients is the sidebar list after the search filter
func (m Model) visiblePatients() []models.Patient {
	return render.FilterPatients(m.console.Controller.Patients(), m.search)
}

func (m *Model) clampCursor() {
	n := len(m.visiblePatients())
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// edit applies a text-editing key to s
func edit(s string, msg tea.KeyMsg) string {
	switch msg.Type {
	case tea.KeyBackspace:
		if s == "" {
			return s
		}
		r := []rune(s)
		return string(r[:len(r)-1])
	case tea.KeySpace:
		return s + " "
	case tea.KeyRunes:
		return s + string(msg.Runes)
	}
	return s
}
