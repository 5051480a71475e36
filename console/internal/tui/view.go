package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Krimson/vitals-console/console/internal/panels"
	"github.com/Krimson/vitals-console/console/internal/render"
	"github.com/Krimson/vitals-console/console/pkg/models"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("5"))
	sectionStyle = lipgloss.NewStyle().Bold(true).Underline(true).MarginTop(1)
	statusStyle  = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("3"))
	noticeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color(render.ColorHigh))
	helpStyle    = lipgloss.NewStyle().Faint(true)
	cardStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)

	toneStyles = map[render.Tone]lipgloss.Style{
		render.ToneAction:  lipgloss.NewStyle().Foreground(lipgloss.Color("6")),
		render.ToneAction2: lipgloss.NewStyle().Foreground(lipgloss.Color("5")),
		render.ToneMuted:   lipgloss.NewStyle().Faint(true),
	}

	bucketColors = map[models.RiskBucket]string{
		models.RiskBucketHigh:     render.ColorHigh,
		models.RiskBucketModerate: render.ColorModerate,
		models.RiskBucketLow:      render.ColorLow,
	}
)

var kpiRows = []struct{ slot, label string }{
	{render.SlotKPIHR, "HR"},
	{render.SlotKPISpO2, "SpO₂"},
	{render.SlotKPIBP, "BP"},
	{render.SlotKPIRR, "RR"},
	{render.SlotKPITemp, "Temp"},
}

func (m Model) View() string {
	var b strings.Builder
	page := m.console.Page

	b.WriteString(titleStyle.Render("Vitals Console · " + page.Name))
	b.WriteString("\n")

	if page.Mounts(panels.PanelDashboard) {
		m.viewDashboard(&b)
	}
	if page.Mounts(panels.PanelAnalysis) {
		m.viewAnalysis(&b)
	}
	if page.Mounts(panels.PanelWallet) {
		m.viewWallet(&b)
	}
	if page.Mounts(panels.PanelCivic) {
		m.viewSteps(&b)
	}

	if m.lastErr != "" {
		b.WriteString("\n" + errorStyle.Render(m.lastErr) + "\n")
	}
	b.WriteString("\n" + helpStyle.Render(m.help()) + "\n")
	return b.String()
}

func (m Model) viewDashboard(b *strings.Builder) {
	b.WriteString(sectionStyle.Render("Patients") + "\n")
	if m.mode == modeSearch || m.search != "" {
		b.WriteString("Search: " + m.search + cursorMark(m.mode == modeSearch) + "\n")
	}
	for i, p := range m.visiblePatients() {
		pointer := "  "
		if i == m.cursor {
			pointer = "> "
		}
		dot := lipgloss.NewStyle().Foreground(lipgloss.Color(bucketColors[p.Bucket()])).Render("●")
		line := fmt.Sprintf("%s%s %s  %s", pointer, dot, p.Name, render.PatientSub(p))
		if p.ID == m.board.PatientID {
			line = lipgloss.NewStyle().Bold(true).Render(line)
		}
		b.WriteString(line + "\n")
	}

	if m.board.Status != "" {
		b.WriteString(statusStyle.Render(m.board.Status) + "\n")
	}
	if m.board.PatientID == "" {
		return
	}

	b.WriteString(sectionStyle.Render("Vitals") + "\n")
	for _, row := range kpiRows {
		kpi, ok := m.board.KPIs[row.slot]
		if !ok {
			continue
		}
		delta := toneStyles[kpi.Tone].Render(kpi.Delta)
		b.WriteString(fmt.Sprintf("%-5s %8s  %s\n", row.label, kpi.Value, delta))
	}
	for _, slot := range []string{render.SlotRiskBadge, render.SlotStatusBadge} {
		if badge, ok := m.board.Badges[slot]; ok {
			b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(badge.Color)).Render(badge.Text) + "\n")
		}
	}

	if len(m.board.Ranges) > 0 {
		b.WriteString(sectionStyle.Render("24h range") + "\n")
		for _, r := range m.board.Ranges {
			b.WriteString(fmt.Sprintf("%-8s %8s %8s\n", r.Label, r.Min, r.Max))
		}
	}
	for _, slot := range render.ChartSlots {
		if chart, ok := m.board.Charts[slot]; ok {
			b.WriteString("\n" + chart.Plot + "\n")
		}
	}
}

func (m Model) viewAnalysis(b *strings.Builder) {
	card := m.board.Analysis
	if card.Headline == "" && card.Notice == "" {
		return
	}
	style := cardStyle
	if card.BorderColor != "" {
		style = style.BorderForeground(lipgloss.Color(card.BorderColor))
	}
	body := card.Headline + "\n" + card.Reasons
	if card.Mood != "" {
		body = card.Mood + " " + body
	}
	if card.Notice != "" {
		body += "\n" + noticeStyle.Render(card.Notice)
	}
	b.WriteString(sectionStyle.Render("Analysis") + "\n" + style.Render(body) + "\n")
}

func (m Model) viewWallet(b *strings.Builder) {
	b.WriteString(sectionStyle.Render("Emergency wallet") + "\n")
	if m.mode == modeWallet {
		for i, field := range walletFields {
			b.WriteString(fmt.Sprintf("%-6s %s%s\n", field+":", m.walletDraft[i], cursorMark(i == m.walletField)))
		}
		return
	}

	w := m.board.Wallet
	if !w.Visible {
		b.WriteString(helpStyle.Render("not loaded") + "\n")
		return
	}
	qr := w.QR
	if strings.HasPrefix(qr, "data:") {
		qr = "ready"
	}
	card := fmt.Sprintf("Name:  %s\nID:    %s\nICE:   %s\nNotes: %s\nQR:    %s", w.Name, w.ID, w.ICE, w.Notes, qr)
	if w.Notice != "" {
		card += "\n" + noticeStyle.Render(w.Notice)
	}
	b.WriteString(cardStyle.Render(card) + "\n")
}

func (m Model) viewSteps(b *strings.Builder) {
	b.WriteString(sectionStyle.Render("CivicBot steps") + "\n")
	if m.mode == modeSteps {
		b.WriteString("Topic: " + m.input + cursorMark(true) + "\n")
	}
	steps := m.board.Steps
	if steps.Topic != "" {
		b.WriteString(steps.Topic + "\n")
	}
	for i, step := range steps.Steps {
		b.WriteString(fmt.Sprintf("%d. %s\n", i+1, step))
	}
	if steps.Notice != "" {
		b.WriteString(noticeStyle.Render(steps.Notice) + "\n")
	}
}

func (m Model) help() string {
	switch m.mode {
	case modeSearch:
		return "type to filter · enter/esc done"
	case modeSteps:
		return "type a topic · enter look up · esc cancel"
	case modeWallet:
		return "tab next field · enter save · esc cancel"
	}

	keys := []string{}
	page := m.console.Page
	if page.Mounts(panels.PanelDashboard) {
		keys = append(keys, "↑/↓ move", "enter select", "r refresh", "/ search")
	}
	if m.console.Analysis != nil {
		keys = append(keys, "a analyze")
	}
	if m.console.Civic != nil {
		keys = append(keys, "s steps")
	}
	if m.console.Wallet != nil {
		keys = append(keys, "w edit wallet")
	}
	keys = append(keys, "q quit")
	return strings.Join(keys, " · ")
}

func cursorMark(active bool) string {
	if active {
		return "▏"
	}
	return ""
}
