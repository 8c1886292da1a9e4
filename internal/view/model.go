package view

import (
	"context"
	"time"

	"EngineMirror/internal/domain/models"
	"EngineMirror/internal/domain/service"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	pollInterval = 250 * time.Millisecond
	logPaneRatio = 0.35
)

// Model is the dashboard. It only ever reads published snapshots; the
// scheduler keeps running whether or not anything is drawn.
type Model struct {
	snaps service.SnapshotReader
	ctl   service.Controller
	now   func() time.Time

	snap    *models.Snapshot
	infos   []service.SourceInfo
	version uint64
	logSeq  uint64

	width  int
	height int
	ready  bool
	follow bool
	// logFocus sends scroll keys to the log pane instead of the panels.
	logFocus bool
	status   string

	panels viewport.Model
	logs   viewport.Model
}

type tickMsg time.Time

type statusesMsg struct {
	infos []service.SourceInfo
	err   error
}

type refreshedMsg struct {
	count int
	err   error
}

func NewModel(snaps service.SnapshotReader, ctl service.Controller) Model {
	return Model{
		snaps:  snaps,
		ctl:    ctl,
		now:    time.Now,
		snap:   snaps.Snapshot(),
		follow: true,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(tickCmd(), fetchStatuses(m.ctl))
}

func tickCmd() tea.Cmd {
	return tea.Tick(pollInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func fetchStatuses(ctl service.Controller) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		infos, err := ctl.Statuses(ctx)
		return statusesMsg{infos: infos, err: err}
	}
}

func refreshAll(ctl service.Controller, infos []service.SourceInfo) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		n := 0
		for _, i := range infos {
			if !i.Enabled {
				continue
			}
			if err := ctl.Refresh(ctx, i.ID); err != nil {
				return refreshedMsg{count: n, err: err}
			}
			n++
		}
		return refreshedMsg{count: n}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	dirty := false

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		logHeight := max(3, int(float64(m.height)*logPaneRatio))
		m.panels = viewport.New(m.width, max(1, m.height-logHeight-2))
		m.logs = viewport.New(m.width, logHeight)
		m.ready = true
		dirty = true

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, keys.Focus):
			m.logFocus = !m.logFocus
		case m.ready && m.logFocus && !key.Matches(msg, keys.Refresh, keys.Follow):
			cmds = append(cmds, m.scrollLogs(msg))
		case m.ready && !key.Matches(msg, keys.Refresh, keys.Follow):
			cmds = append(cmds, m.scrollPanels(msg))
		case key.Matches(msg, keys.Refresh):
			m.status = "refreshing..."
			cmds = append(cmds, refreshAll(m.ctl, m.infos))
		case key.Matches(msg, keys.Follow):
			m.follow = !m.follow
			if m.follow && m.ready {
				m.logs.GotoBottom()
			}
		}

	case tea.MouseMsg:
		if m.ready {
			if msg.Y > m.panels.Height {
				cmds = append(cmds, m.scrollLogs(msg))
			} else {
				cmds = append(cmds, m.scrollPanels(msg))
			}
		}

	case tickMsg:
		if snap := m.snaps.Snapshot(); snap.Version != m.version {
			m.snap = snap
			dirty = true
		}
		cmds = append(cmds, tickCmd(), fetchStatuses(m.ctl))

	case statusesMsg:
		if msg.err == nil {
			m.infos = msg.infos
			dirty = true
		}

	case refreshedMsg:
		if msg.err != nil {
			m.status = "refresh failed: " + msg.err.Error()
		} else {
			m.status = ""
		}
	}

	if m.ready && dirty {
		m.rebuild()
	}
	return m, tea.Batch(cmds...)
}

func (m *Model) scrollPanels(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	m.panels, cmd = m.panels.Update(msg)
	return cmd
}

// scrollLogs moves the log pane. Scrolling away from the bottom pauses
// following; scrolling back down to it resumes.
func (m *Model) scrollLogs(msg tea.Msg) tea.Cmd {
	before := m.logs.YOffset
	var cmd tea.Cmd
	m.logs, cmd = m.logs.Update(msg)
	if m.logs.YOffset != before {
		m.follow = m.logs.AtBottom()
	}
	return cmd
}

// rebuild refreshes viewport content. The log pane sticks to the bottom
// while following and new lines arrived.
func (m *Model) rebuild() {
	m.version = m.snap.Version
	m.panels.SetContent(Render(m.snap, m.infos, m.width, m.now()))

	highest := m.snap.HighestSequence()
	m.logs.SetContent(RenderLogs(m.snap.Logs))
	if m.follow && highest != m.logSeq {
		m.logs.GotoBottom()
	}
	m.logSeq = highest
}

func (m Model) View() string {
	if !m.ready {
		return "\n  Loading..."
	}
	t := DefaultTheme
	follow := "paused"
	if m.follow {
		follow = "following"
	}
	pane := "terminal (" + follow + ")"
	if m.logFocus {
		pane = "> " + pane
	}
	bar := lipgloss.NewStyle().Foreground(t.Muted).Render(
		joinDot([]string{pane, helpLine(), m.status}))
	return lipgloss.JoinVertical(lipgloss.Left, m.panels.View(), bar, m.logs.View())
}
