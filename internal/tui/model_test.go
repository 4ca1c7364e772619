package tui

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lustbot-widget/internal/render"
	"lustbot-widget/internal/types"
	"lustbot-widget/internal/widget"
)

type stubBackend struct {
	mu    sync.Mutex
	reply string
	calls []string
}

func (b *stubBackend) Send(_ context.Context, message, _ string) (types.ChatResponse, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls = append(b.calls, message)
	return types.ChatResponse{Reply: b.reply}, nil
}

// harness wires a model to a widget and collects the surface messages a
// running program would deliver.
type harness struct {
	model Model
	be    *stubBackend
	mu    sync.Mutex
	inbox []tea.Msg
}

func newHarness(t *testing.T, reply string) *harness {
	t.Helper()
	h := &harness{be: &stubBackend{reply: reply}}
	surface := NewSurface()
	surface.Attach(func(msg tea.Msg) {
		h.mu.Lock()
		h.inbox = append(h.inbox, msg)
		h.mu.Unlock()
	})
	w, err := widget.New(widget.Options{
		Backend:   h.be,
		Surface:   surface,
		UserID:    "user_tui",
		AfterFunc: func(_ time.Duration, f func()) { f() },
		Now:       func() time.Time { return time.Date(2024, 1, 1, 21, 5, 0, 0, time.UTC) },
		Logger:    zerolog.Nop(),
	})
	require.NoError(t, err)
	h.model = NewModel(context.Background(), w)
	h.update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return h
}

func (h *harness) update(msg tea.Msg) tea.Cmd {
	next, cmd := h.model.Update(msg)
	h.model = next.(Model)
	return cmd
}

// exec runs cmd as the program would, then feeds every surface message and
// the command's own result back into the model.
func (h *harness) exec(t *testing.T, cmd tea.Cmd) {
	t.Helper()
	require.NotNil(t, cmd)
	done := cmd()
	h.mu.Lock()
	pending := h.inbox
	h.inbox = nil
	h.mu.Unlock()
	for _, msg := range pending {
		h.update(msg)
	}
	h.update(done)
}

func (h *harness) typeText(text string) {
	h.update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
}

func TestBlankInputDoesNotSend(t *testing.T) {
	h := newHarness(t, "hi")
	h.typeText("   ")
	assert.Nil(t, h.update(tea.KeyMsg{Type: tea.KeyEnter}))
	assert.Empty(t, h.be.calls)
}

func TestSendMessageRendersExchange(t *testing.T) {
	h := newHarness(t, "Try our **Silk Robe** Price: $49 Link: https://shop.example/robe")
	h.typeText("robes please")

	h.exec(t, h.update(tea.KeyMsg{Type: tea.KeyEnter}))

	assert.Equal(t, []string{"robes please"}, h.be.calls)
	require.Len(t, h.model.messages, 2)
	assert.Empty(t, h.model.input.Value())
	assert.False(t, h.model.typing)
	assert.False(t, h.model.busy)

	content := h.model.renderTranscript()
	assert.Contains(t, content, "robes please")
	assert.Contains(t, content, "Silk Robe")
	assert.Contains(t, content, "$49")
	assert.Contains(t, content, render.ProductLinkLabel)
	assert.Contains(t, content, "https://shop.example/robe")
	assert.Contains(t, content, "21:05")
	assert.NotContains(t, content, "**")
}

func TestTabCyclesQuickActions(t *testing.T) {
	h := newHarness(t, "ok")
	h.update(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, widget.QuickActions[0], h.model.input.Value())
	h.update(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, widget.QuickActions[1], h.model.input.Value())
	assert.Contains(t, h.model.View(), "Try: ")
}

func TestLeadFormFlow(t *testing.T) {
	h := newHarness(t, "Would you like me to contact you by email?")
	h.typeText("help")
	h.exec(t, h.update(tea.KeyMsg{Type: tea.KeyEnter}))
	require.True(t, h.model.leadOpen)
	assert.Contains(t, h.model.View(), "Get personalized help")

	// Only the name: validation fails locally and a notice is shown.
	h.typeText("Ann")
	h.exec(t, h.update(tea.KeyMsg{Type: tea.KeyEnter}))
	assert.Len(t, h.be.calls, 1)
	assert.True(t, h.model.leadOpen)
	assert.Contains(t, h.model.View(), widget.LeadFieldsRequired)

	h.update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Empty(t, h.model.notice)

	h.update(tea.KeyMsg{Type: tea.KeyTab})
	h.typeText("ann@example.com")
	h.update(tea.KeyMsg{Type: tea.KeyTab})
	h.update(tea.KeyMsg{Type: tea.KeyTab})
	h.typeText("Silk Robe")
	h.exec(t, h.update(tea.KeyMsg{Type: tea.KeyEnter}))

	require.Len(t, h.be.calls, 2)
	assert.True(t, strings.HasPrefix(h.be.calls[1], "Please capture this lead: "))
	assert.Contains(t, h.be.calls[1], `"name":"Ann"`)
	assert.False(t, h.model.leadOpen)
	last := h.model.messages[len(h.model.messages)-1]
	assert.Contains(t, last.Text, "Thank you Ann!")
}

func TestLeadFormEscDismisses(t *testing.T) {
	h := newHarness(t, "Shall I connect you with sales?")
	h.typeText("x")
	h.exec(t, h.update(tea.KeyMsg{Type: tea.KeyEnter}))
	require.True(t, h.model.leadOpen)

	h.exec(t, h.update(tea.KeyMsg{Type: tea.KeyEsc}))
	assert.False(t, h.model.leadOpen)
	assert.Len(t, h.be.calls, 1)
}

func TestSurfaceWithoutProgramDropsUpdates(t *testing.T) {
	s := NewSurface()
	assert.NotPanics(t, func() {
		s.AppendMessage(widget.Message{Text: "x"})
		s.Notify("y")
	})
}
