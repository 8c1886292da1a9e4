package view

import (
	"fmt"
	"strings"
	"time"

	"EngineMirror/internal/domain/models"
	"EngineMirror/internal/domain/service"

	"github.com/charmbracelet/lipgloss"
)

// Render draws every panel except the log tail. It reads snap and infos
// only and never blocks.
func Render(snap *models.Snapshot, infos []service.SourceInfo, width int, now time.Time) string {
	if width < 40 {
		width = 40
	}
	inner := width - 4
	return lipgloss.JoinVertical(lipgloss.Left,
		RenderHeader(snap, now),
		"",
		panel("Signals", RenderSignals(snap.Signals), inner),
		panel("Open trades", RenderOpenTrades(snap.OpenTrades), inner),
		panel("Performance", RenderStats(snap.Stats, snap.ClosedTrades), inner),
		panel("News", RenderNews(snap.News, 5), inner),
		panel("Sources", RenderSources(infos, now), inner),
	)
}

func RenderHeader(snap *models.Snapshot, now time.Time) string {
	t := DefaultTheme
	title := lipgloss.NewStyle().Bold(true).Foreground(t.Primary).Render("ENGINE MIRROR")

	var api string
	switch snap.API.State {
	case models.APIOnline:
		api = lipgloss.NewStyle().Foreground(t.Success).Render("● ONLINE")
		if snap.API.Running != nil && !*snap.API.Running {
			api += lipgloss.NewStyle().Foreground(t.Warning).Render(" (engine idle)")
		}
	case models.APIOffline:
		api = lipgloss.NewStyle().Foreground(t.Error).Render("● OFFLINE")
	default:
		api = lipgloss.NewStyle().Foreground(t.Muted).Render("● CONNECTING")
	}

	updated := "never"
	if !snap.UpdatedAt.IsZero() {
		updated = ago(now, snap.UpdatedAt)
	}
	meta := lipgloss.NewStyle().Foreground(t.Muted).Render(fmt.Sprintf("v%d  updated %s", snap.Version, updated))
	return joinDot([]string{title, api, meta})
}

func RenderSignals(signals []models.Signal) string {
	if len(signals) == 0 {
		return muted("no signals yet")
	}
	rows := make([]string, 0, len(signals))
	for _, s := range signals {
		name := s.DisplayName
		if name == "" {
			name = s.Symbol
		}
		line := fmt.Sprintf("%-22s %s %5.1f%%", truncate(name, 22), decision(s.Decision), s.Confidence)
		if s.Actionable() && s.EntryPrice > 0 {
			line += fmt.Sprintf("  @ %.5g  SL %.5g  TP %.5g", s.EntryPrice, s.StopLoss, s.TakeProfit)
		}
		if s.LowConfidence {
			line += muted("  low confidence")
		}
		rows = append(rows, line)
	}
	return strings.Join(rows, "\n")
}

func RenderOpenTrades(trades []models.OpenTrade) string {
	if len(trades) == 0 {
		return muted("no open positions")
	}
	rows := make([]string, 0, len(trades))
	for _, tr := range trades {
		price := "-"
		if tr.CurrentPrice != nil {
			price = fmt.Sprintf("%.5g", *tr.CurrentPrice)
		}
		rows = append(rows, fmt.Sprintf("%-12s %-4s lot %-6g entry %-10.5g now %-10s %s",
			truncate(tr.Symbol, 12), tr.Direction, tr.Lot, tr.EntryPrice, price, money(tr.UnrealizedUSD.InexactFloat64())))
	}
	return strings.Join(rows, "\n")
}

func RenderStats(stats *models.Stats, closed []models.ClosedTrade) string {
	if stats == nil {
		return muted("waiting for stats")
	}
	line := fmt.Sprintf("trades %d  win rate %.1f%%  profit %s  open %d",
		stats.TotalTrades, stats.SuccessRate, money(stats.TotalProfit.InexactFloat64()), stats.OpenCount)
	if !stats.FreeBalance.IsZero() {
		line += fmt.Sprintf("  balance %s", stats.FreeBalance.StringFixed(2))
	}
	if n := len(closed); n > 0 {
		last := closed[n-1]
		line += fmt.Sprintf("\nlast closed %s %s", last.Symbol, money(last.RealizedUSD.InexactFloat64()))
	}
	return line
}

func RenderNews(items []models.NewsItem, limit int) string {
	if len(items) == 0 {
		return muted("no news")
	}
	if len(items) > limit {
		items = items[:limit]
	}
	t := DefaultTheme
	rows := make([]string, 0, len(items))
	for _, n := range items {
		color := t.Muted
		switch n.Impact {
		case models.ImpactHigh:
			color = t.Error
		case models.ImpactMedium:
			color = t.Warning
		}
		impact := lipgloss.NewStyle().Foreground(color).Render(fmt.Sprintf("%-6s", n.Impact))
		rows = append(rows, fmt.Sprintf("%s %+4.0f  %s", impact, n.SentimentScore, truncate(n.Title, 70)))
	}
	return strings.Join(rows, "\n")
}

func RenderSources(infos []service.SourceInfo, now time.Time) string {
	t := DefaultTheme
	rows := make([]string, 0, len(infos))
	for _, i := range infos {
		color := t.Muted
		switch i.State {
		case models.StateOK:
			color = t.Success
		case models.StateError:
			color = t.Error
		case models.StateFetching:
			color = t.Info
		}
		state := lipgloss.NewStyle().Foreground(color).Render(fmt.Sprintf("%-8s", i.State))
		seen := "never"
		if !i.LastSuccessAt.IsZero() {
			seen = ago(now, i.LastSuccessAt)
		}
		line := fmt.Sprintf("%-14s %s gen %-4d ok %s", i.ID, state, i.Generation, seen)
		if i.LastError != "" && i.State == models.StateError {
			line += "  " + lipgloss.NewStyle().Foreground(t.Error).Render(truncate(i.LastError, 60))
		}
		rows = append(rows, line)
	}
	return strings.Join(rows, "\n")
}

// RenderLogs colours each line by severity.
func RenderLogs(lines []models.LogLine) string {
	if len(lines) == 0 {
		return muted("no terminal output yet")
	}
	t := DefaultTheme
	styles := map[models.Severity]lipgloss.Style{
		models.SeverityInfo:  lipgloss.NewStyle().Foreground(t.Text),
		models.SeverityWarn:  lipgloss.NewStyle().Foreground(t.Warning),
		models.SeverityError: lipgloss.NewStyle().Foreground(t.Error),
	}
	var b strings.Builder
	for i, l := range lines {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(styles[l.Severity].Render(l.Text))
	}
	return b.String()
}

func panel(title, body string, width int) string {
	t := DefaultTheme
	head := lipgloss.NewStyle().Bold(true).Foreground(t.Info).Render(title)
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Border).
		Padding(0, 1).
		Width(width).
		Render(head + "\n" + body)
}

func decision(d models.Decision) string {
	t := DefaultTheme
	color := t.Muted
	switch d {
	case models.DecisionBuy:
		color = t.Success
	case models.DecisionSell:
		color = t.Error
	}
	return lipgloss.NewStyle().Foreground(color).Bold(true).Render(fmt.Sprintf("%-7s", d))
}

func money(v float64) string {
	t := DefaultTheme
	s := fmt.Sprintf("%+.2f$", v)
	if v < 0 {
		return lipgloss.NewStyle().Foreground(t.Error).Render(s)
	}
	return lipgloss.NewStyle().Foreground(t.Success).Render(s)
}

func muted(s string) string {
	return lipgloss.NewStyle().Foreground(DefaultTheme.Muted).Render(s)
}

func ago(now, t time.Time) string {
	d := now.Sub(t)
	if d < time.Second {
		return "just now"
	}
	return d.Truncate(time.Second).String() + " ago"
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func joinDot(parts []string) string {
	kept := parts[:0:0]
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, "  ·  ")
}
