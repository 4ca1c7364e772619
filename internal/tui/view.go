package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"lustbot-widget/internal/render"
	"lustbot-widget/internal/widget"
)

type styles struct {
	header   lipgloss.Style
	subtitle lipgloss.Style
	user     lipgloss.Style
	bot      lipgloss.Style
	errorMsg lipgloss.Style
	clock    lipgloss.Style
	link     lipgloss.Style
	name     lipgloss.Style
	price    lipgloss.Style
	cta      lipgloss.Style
	typing   lipgloss.Style
	hint     lipgloss.Style
	dialog   lipgloss.Style
	label    lipgloss.Style
}

func defaultStyles() styles {
	pink := lipgloss.Color("#d63384")
	return styles{
		header:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ffffff")).Background(lipgloss.Color("#3b1027")).Padding(0, 1),
		subtitle: lipgloss.NewStyle().Foreground(lipgloss.Color("#b08a9b")),
		user:     lipgloss.NewStyle().Foreground(lipgloss.Color("#ffd1e3")),
		bot:      lipgloss.NewStyle().Foreground(lipgloss.Color("#f4e9ee")),
		errorMsg: lipgloss.NewStyle().Foreground(lipgloss.Color("#ff6b6b")),
		clock:    lipgloss.NewStyle().Faint(true),
		link:     lipgloss.NewStyle().Underline(true).Foreground(lipgloss.Color("#ffb3d1")),
		name:     lipgloss.NewStyle().Bold(true).Foreground(pink),
		price:    lipgloss.NewStyle().Foreground(lipgloss.Color("#ffd27f")),
		cta:      lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ffffff")).Background(pink).Padding(0, 1),
		typing:   lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("#b08a9b")),
		hint:     lipgloss.NewStyle().Faint(true),
		dialog:   lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(pink).Padding(1, 2),
		label:    lipgloss.NewStyle().Foreground(lipgloss.Color("#b08a9b")),
	}
}

func (m Model) View() string {
	if m.notice != "" {
		return m.center(m.styles.dialog.Render(m.notice + "\n\n" + m.styles.hint.Render("Enter to close")))
	}
	if m.leadOpen {
		return m.center(m.renderLeadForm())
	}

	var b strings.Builder
	b.WriteString(m.styles.header.Render("LustBot"))
	b.WriteString(" ")
	b.WriteString(m.styles.subtitle.Render("Your personal shopping assistant"))
	b.WriteString("\n\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	if m.typing {
		b.WriteString(m.spinner.View() + m.styles.typing.Render(" LustBot is typing…"))
	}
	b.WriteString("\n")
	if len(m.messages) == 0 {
		b.WriteString(m.styles.hint.Render("Try: " + strings.Join(widget.QuickActions, " · ")))
	}
	b.WriteString("\n")
	b.WriteString(m.input.View())
	return b.String()
}

func (m Model) center(s string) string {
	if m.width == 0 || m.height == 0 {
		return s
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, s)
}

func (m Model) renderLeadForm() string {
	var b strings.Builder
	b.WriteString(m.styles.name.Render("Get personalized help"))
	b.WriteString("\n")
	for i, ti := range m.leadForm {
		b.WriteString("\n")
		b.WriteString(m.styles.label.Render(ti.Placeholder))
		b.WriteString("\n")
		b.WriteString(ti.View())
		if i == m.leadFocus {
			b.WriteString(" ◂")
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(m.styles.hint.Render("Tab next field · Enter submit · Esc close"))
	return m.styles.dialog.Render(b.String())
}

func (m Model) renderTranscript() string {
	width := m.viewport.Width
	if width <= 0 {
		width = 80
	}
	parts := make([]string, 0, len(m.messages))
	for _, msg := range m.messages {
		parts = append(parts, m.renderMessage(msg, width))
	}
	return strings.Join(parts, "\n\n")
}

func (m Model) renderMessage(msg widget.Message, width int) string {
	who, style := "🤖 LustBot", m.styles.bot
	switch {
	case msg.IsError:
		style = m.styles.errorMsg
	case msg.Sender == widget.SenderUser:
		who, style = "👤 You", m.styles.user
	}
	head := fmt.Sprintf("%s %s", who, m.styles.clock.Render(msg.Clock()))
	body := lipgloss.NewStyle().Width(width - 2).Render(m.renderNodes(msg.Nodes(), style))
	return head + "\n" + body
}

func (m Model) renderNodes(nodes []render.Node, text lipgloss.Style) string {
	var b strings.Builder
	for _, n := range nodes {
		switch n.Kind {
		case render.KindLink:
			b.WriteString(m.styles.link.Render(n.Text))
		case render.KindProductName:
			b.WriteString(m.styles.name.Render(n.Text))
		case render.KindProductPrice:
			b.WriteString(m.styles.price.Render(n.Text))
		case render.KindProductLink:
			b.WriteString(m.styles.cta.Render(render.ProductLinkLabel))
			b.WriteString(" ")
			b.WriteString(m.styles.link.Render(n.URL))
		default:
			b.WriteString(text.Render(n.Text))
		}
	}
	return b.String()
}
