package view

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"EngineMirror/internal/domain/models"
	"EngineMirror/internal/domain/service"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

type snapshotBox struct {
	p atomic.Pointer[models.Snapshot]
}

func (b *snapshotBox) Snapshot() *models.Snapshot { return b.p.Load() }

type nopController struct{ refreshed int }

func (c *nopController) Refresh(context.Context, models.SourceID) error {
	c.refreshed++
	return nil
}

func (c *nopController) Statuses(context.Context) ([]service.SourceInfo, error) {
	return nil, nil
}

func withLogs(version uint64, n int) *models.Snapshot {
	snap := models.EmptySnapshot()
	snap.Version = version
	for i := 1; i <= n; i++ {
		snap.Logs = append(snap.Logs, models.LogLine{Text: fmt.Sprintf("INFO: line %d", i), Severity: models.SeverityInfo, Sequence: uint64(i)})
	}
	return snap
}

func TestRenderPanels(t *testing.T) {
	snap := models.EmptySnapshot()
	snap.Version = 3
	snap.UpdatedAt = now.Add(-5 * time.Second)
	snap.API = models.APIStatus{State: models.APIOffline}
	snap.Signals = []models.Signal{{Symbol: "GC=F", DisplayName: "Gold", Decision: models.DecisionBuy, Confidence: 72, EntryPrice: 2300}}
	snap.Stats = &models.Stats{TotalTrades: 4, SuccessRate: 75, TotalProfit: decimal.NewFromInt(20)}
	infos := []service.SourceInfo{{
		SourceStatus: models.SourceStatus{ID: models.SourceSignals, State: models.StateError, LastError: "signals: network: refused"},
		Enabled:      true,
	}}

	out := Render(snap, infos, 120, now)
	for _, want := range []string{"ENGINE MIRROR", "OFFLINE", "v3", "5s ago", "Gold", "BUY", "72.0%", "trades 4", "+20.00$", "no open positions", "signals", "refused"} {
		assert.Contains(t, out, want)
	}
}

func TestRenderEmptySnapshot(t *testing.T) {
	out := Render(models.EmptySnapshot(), nil, 80, now)
	assert.Contains(t, out, "CONNECTING")
	assert.Contains(t, out, "no signals yet")
	assert.Contains(t, out, "waiting for stats")
	assert.Contains(t, RenderLogs(nil), "no terminal output yet")
}

func TestModelFollowsLogTail(t *testing.T) {
	box := &snapshotBox{}
	box.p.Store(withLogs(1, 100))
	var m tea.Model = NewModel(box, &nopController{})

	m, _ = m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	model := m.(Model)
	require.True(t, model.ready)
	assert.True(t, model.logs.AtBottom())
	assert.Contains(t, model.View(), "ENGINE MIRROR")

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'f'}})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyUp})
	model = m.(Model)
	assert.False(t, model.follow)

	model.logs.GotoTop()
	box.p.Store(withLogs(2, 150))
	m, _ = model.Update(tickMsg(now))
	model = m.(Model)
	assert.Equal(t, uint64(2), model.version)
	assert.False(t, model.logs.AtBottom(), "paused tail stays put")

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'f'}})
	assert.True(t, m.(Model).logs.AtBottom())
}

func TestModelScrollsFocusedLogPane(t *testing.T) {
	box := &snapshotBox{}
	box.p.Store(withLogs(1, 100))
	var m tea.Model = NewModel(box, &nopController{})
	m, _ = m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyUp})
	model := m.(Model)
	assert.True(t, model.logs.AtBottom(), "panels own the keys until focus moves")
	assert.True(t, model.follow)

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyPgUp})
	model = m.(Model)
	require.True(t, model.logFocus)
	assert.False(t, model.logs.AtBottom())
	assert.False(t, model.follow, "scrolling up pauses the tail")

	box.p.Store(withLogs(2, 120))
	m, _ = m.Update(tickMsg(now))
	assert.False(t, m.(Model).logs.AtBottom(), "paused tail stays put")

	for i := 0; i < 10 && !m.(Model).logs.AtBottom(); i++ {
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyPgDown})
	}
	model = m.(Model)
	assert.True(t, model.logs.AtBottom())
	assert.True(t, model.follow, "reaching the bottom resumes following")
}

func TestModelQuit(t *testing.T) {
	box := &snapshotBox{}
	box.p.Store(models.EmptySnapshot())
	m := NewModel(box, &nopController{})

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestRefreshAllSkipsDisabled(t *testing.T) {
	ctl := &nopController{}
	infos := []service.SourceInfo{
		{SourceStatus: models.SourceStatus{ID: models.SourceSignals}, Enabled: true},
		{SourceStatus: models.SourceStatus{ID: models.SourceNews}},
	}
	msg := refreshAll(ctl, infos)().(refreshedMsg)
	assert.NoError(t, msg.err)
	assert.Equal(t, 1, msg.count)
	assert.Equal(t, 1, ctl.refreshed)
}
