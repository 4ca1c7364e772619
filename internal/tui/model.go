// Package tui hosts the chat widget in a terminal.
package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"lustbot-widget/internal/lead"
	"lustbot-widget/internal/widget"
)

const (
	headerHeight = 2
	footerHeight = 4

	inputPlaceholder = "Type your message... (Enter to send, Tab for suggestions, Ctrl+C to exit)"
)

// Lead form fields, in tab order.
const (
	fieldName = iota
	fieldEmail
	fieldPhone
	fieldProduct
	fieldCount
)

// exchangeDoneMsg is returned by the command that ran a widget call.
type exchangeDoneMsg struct{}

type Model struct {
	ctx    context.Context
	widget *widget.Widget

	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model
	styles   styles

	messages []widget.Message
	typing   bool
	busy     bool

	leadOpen  bool
	leadForm  []textinput.Model
	leadFocus int

	notice string

	quickIdx int
	width    int
	height   int
	ready    bool
}

// NewModel binds w to a terminal UI. w must have been built with the
// Surface that will later be attached to the running program.
func NewModel(ctx context.Context, w *widget.Widget) Model {
	ti := textinput.New()
	ti.Placeholder = inputPlaceholder
	ti.Prompt = "› "
	ti.CharLimit = 2000
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	st := defaultStyles()
	sp.Style = st.typing

	return Model{
		ctx:      ctx,
		widget:   w,
		input:    ti,
		viewport: viewport.New(80, 20),
		spinner:  sp,
		styles:   st,
		leadForm: newLeadForm(),
		quickIdx: -1,
	}
}

func newLeadForm() []textinput.Model {
	labels := [fieldCount]string{"Name *", "Email *", "Phone", "Product interest *"}
	form := make([]textinput.Model, fieldCount)
	for i := range form {
		ti := textinput.New()
		ti.Placeholder = labels[i]
		ti.Prompt = ""
		ti.CharLimit = 200
		form[i] = ti
	}
	return form
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.viewport.Width = msg.Width - 2
		m.viewport.Height = max(msg.Height-headerHeight-footerHeight, 3)
		m.input.Width = msg.Width - 6
		m.ready = true
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		switch {
		case m.notice != "":
			return m.updateNotice(msg)
		case m.leadOpen:
			return m.updateLeadForm(msg)
		}
		return m.updateChat(msg)

	case clearInputMsg:
		m.input.Reset()
		m.quickIdx = -1
		return m, nil

	case typingMsg:
		m.typing = bool(msg)
		if m.typing {
			return m, m.spinner.Tick
		}
		return m, nil

	case appendMsg:
		m.messages = append(m.messages, widget.Message(msg))
		m.refresh()
		return m, nil

	case showLeadMsg:
		m.leadOpen = true
		m.leadFocus = fieldName
		m.input.Blur()
		return m, m.focusLeadField()

	case hideLeadMsg:
		m.leadOpen = false
		m.leadForm = newLeadForm()
		m.leadFocus = fieldName
		return m, m.input.Focus()

	case noticeMsg:
		m.notice = string(msg)
		return m, nil

	case exchangeDoneMsg:
		m.busy = false
		return m, nil

	case spinner.TickMsg:
		if !m.typing {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) updateChat(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		return m, tea.Quit

	case tea.KeyEnter:
		text := m.input.Value()
		if m.busy || !widget.CanSend(text) {
			return m, nil
		}
		m.busy = true
		return m, m.run(func(ctx context.Context) { m.widget.SendMessage(ctx, text) })

	case tea.KeyTab:
		if len(m.messages) == 0 && len(widget.QuickActions) > 0 {
			m.quickIdx = (m.quickIdx + 1) % len(widget.QuickActions)
			m.input.SetValue(widget.QuickActions[m.quickIdx])
			m.input.CursorEnd()
		}
		return m, nil

	case tea.KeyPgUp, tea.KeyPgDown, tea.KeyUp, tea.KeyDown:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) updateLeadForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		return m, m.run(func(context.Context) { m.widget.DismissLead() })

	case tea.KeyTab, tea.KeyDown:
		m.leadFocus = (m.leadFocus + 1) % fieldCount
		return m, m.focusLeadField()

	case tea.KeyShiftTab, tea.KeyUp:
		m.leadFocus = (m.leadFocus + fieldCount - 1) % fieldCount
		return m, m.focusLeadField()

	case tea.KeyEnter:
		if m.busy {
			return m, nil
		}
		m.busy = true
		l := m.lead()
		return m, m.run(func(ctx context.Context) { m.widget.SubmitLead(ctx, l) })
	}

	var cmd tea.Cmd
	m.leadForm[m.leadFocus], cmd = m.leadForm[m.leadFocus].Update(msg)
	return m, cmd
}

func (m Model) updateNotice(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter, tea.KeyEsc, tea.KeySpace:
		m.notice = ""
	}
	return m, nil
}

func (m *Model) focusLeadField() tea.Cmd {
	var cmd tea.Cmd
	for i := range m.leadForm {
		if i == m.leadFocus {
			cmd = m.leadForm[i].Focus()
			continue
		}
		m.leadForm[i].Blur()
	}
	return cmd
}

func (m Model) lead() lead.Lead {
	return lead.Lead{
		Name:    m.leadForm[fieldName].Value(),
		Email:   m.leadForm[fieldEmail].Value(),
		Phone:   m.leadForm[fieldPhone].Value(),
		Product: m.leadForm[fieldProduct].Value(),
	}
}

// run executes a widget call off the event loop. Its surface updates arrive
// as separate messages; exchangeDoneMsg marks the end.
func (m Model) run(call func(ctx context.Context)) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		call(ctx)
		return exchangeDoneMsg{}
	}
}

func (m *Model) refresh() {
	m.viewport.SetContent(m.renderTranscript())
	m.viewport.GotoBottom()
}

// Run starts the terminal UI and blocks until the user quits.
func Run(ctx context.Context, w *widget.Widget, surface *Surface) error {
	p := tea.NewProgram(NewModel(ctx, w), tea.WithAltScreen(), tea.WithContext(ctx))
	surface.Attach(p.Send)
	_, err := p.Run()
	return err
}
