package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/jask/antani/internal/picker"
	"github.com/jask/antani/internal/transfer"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	var body string
	switch m.screen {
	case screenMenu:
		body = m.renderMainMenu()
	case screenDevice:
		body = m.renderDeviceMenu()
	case screenPicker:
		body = m.renderPicker()
	case screenPrompt:
		body = m.renderPrompt()
	case screenExecuting:
		body = m.renderExecuting()
	case screenResult:
		body = m.renderResult()
	}

	footer := m.renderFooter()
	status := m.renderStatus()
	room := m.height - lipgloss.Height(footer) - lipgloss.Height(status)
	body = clipHeight(body, max(1, room))
	if gap := room - lipgloss.Height(body); gap > 0 {
		body += strings.Repeat("\n", gap)
	}
	return lipgloss.JoinVertical(lipgloss.Left, body, status, footer)
}

func (m Model) renderMainMenu() string {
	lines := []string{titleStyle.Render("antani file manager"), ""}
	for i, item := range mainMenu {
		lines = append(lines, m.menuLine(item.label, i == m.cursor, itemStyle))
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderDeviceMenu() string {
	snap, _ := m.engine.Snapshot()
	role := "source"
	if snap.State == transfer.AwaitingDestination {
		role = "destination"
	}
	lines := []string{
		titleStyle.Render(fmt.Sprintf("Select the %s device", role)),
		subtitleStyle.Render(snap.Mode.String()),
	}
	if snap.Source != "" {
		lines = append(lines, subtitleStyle.Render("source: "+m.truncate(snap.Source.String(), 8)))
	}
	lines = append(lines, "")
	items := m.deviceItems()
	for i, it := range items {
		st := itemStyle
		if i == len(items)-1 {
			st = abortStyle
		} else {
			it += ":/"
		}
		lines = append(lines, m.menuLine(it, i == m.cursor, st))
	}
	return strings.Join(lines, "\n")
}

func (m Model) menuLine(label string, selected bool, st lipgloss.Style) string {
	label = m.truncate(label, 2)
	if selected {
		return cursorStyle.Render("> " + label)
	}
	return st.Render("  " + label)
}

// renderPicker draws the last frame the session pushed, marking the
// cursor row.
func (m Model) renderPicker() string {
	f := m.display.frame
	if len(f.Lines) == 0 {
		return ""
	}
	lines := make([]string, 0, len(f.Lines)+1)
	lines = append(lines, titleStyle.Render(f.Lines[0]))
	if cur := m.pk.Current(); cur != nil {
		lines = append(lines, subtitleStyle.Render(m.truncate(cur.Path.AsDir().String(), 0)))
	} else {
		lines = append(lines, "")
	}
	for i := picker.HeaderLines; i < len(f.Lines); i++ {
		text := m.truncate(strings.TrimPrefix(f.Lines[i], "  "), 2)
		switch {
		case i == m.display.cursor:
			lines = append(lines, cursorStyle.Render("> "+text))
		case strings.HasSuffix(strings.TrimSpace(text), "/"):
			lines = append(lines, dirStyle.Render("  "+text))
		default:
			lines = append(lines, itemStyle.Render("  "+text))
		}
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderPrompt() string {
	p, ok := m.engine.Prompt()
	if !ok {
		return ""
	}
	width := max(20, min(m.width-4, 72))
	text := lipgloss.NewStyle().Width(width).Render(p.Text)
	return promptStyle.Render(text + "\n\n" + subtitleStyle.Render("y: yes    n: no"))
}

func (m Model) renderExecuting() string {
	snap, _ := m.engine.Snapshot()
	return busyStyle.Render(fmt.Sprintf("Working: %s %s ...", snap.Mode, m.truncate(snap.Source.String(), 20)))
}

func (m Model) renderResult() string {
	r := m.report
	var head string
	switch r.Outcome {
	case transfer.Succeeded:
		head = resultOKStyle.Render(r.Summary())
	case transfer.Failed:
		head = resultFailStyle.Render(r.Summary())
	default:
		head = resultInfoStyle.Render(r.Summary())
	}
	lines := []string{head}
	if r.Bytes.Declared > 0 {
		lines = append(lines, subtitleStyle.Render(fmt.Sprintf("%d of %d bytes copied", r.Bytes.Copied, r.Bytes.Declared)))
	}
	for _, e := range r.Entries {
		if e.Outcome != transfer.Failed {
			continue
		}
		lines = append(lines, resultFailStyle.Render(m.truncate(fmt.Sprintf("  %s: %v", e.Name, e.Err), 0)))
	}
	lines = append(lines, "", subtitleStyle.Render("Press enter to return to the main menu."))
	return strings.Join(lines, "\n")
}

func (m Model) renderFooter() string {
	if m.screen == screenExecuting {
		return renderBar(footerStyle, max(1, m.width), "please wait", colorMantle)
	}
	return renderBar(footerStyle, max(1, m.width), m.help.ShortHelpView(m.keys.HelpBindings(m.ActiveScope())), colorMantle)
}

func (m Model) renderStatus() string {
	msg := strings.TrimSpace(m.status)
	if msg == "" {
		msg = "Ready"
	}
	if m.statusErr {
		return renderBar(statusErrBarStyle, max(1, m.width), msg, colorSurface0)
	}
	return renderBar(statusBarStyle, max(1, m.width), msg, colorSurface0)
}

func (m Model) truncate(s string, reserve int) string {
	return ansi.Truncate(s, max(1, m.width-reserve), "…")
}

func renderBar(style lipgloss.Style, width int, text string, bg lipgloss.TerminalColor) string {
	line := strings.ReplaceAll(text, "\n", " ")
	line = ansi.Truncate(line, width, "")
	if w := ansi.StringWidth(line); w < width {
		line += strings.Repeat(" ", width-w)
	}
	return style.
		Background(bg).
		Width(width).
		MaxWidth(width).
		Render(line)
}

func clipHeight(s string, height int) string {
	lines := strings.Split(s, "\n")
	if len(lines) > height {
		lines = lines[:height]
	}
	return strings.Join(lines, "\n")
}
