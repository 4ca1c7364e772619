package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"lustbot-widget/internal/widget"
)

type (
	clearInputMsg struct{}
	typingMsg     bool
	appendMsg     widget.Message
	showLeadMsg   struct{}
	hideLeadMsg   struct{}
	noticeMsg     string
)

// Surface turns widget updates into tea messages. Widget calls must run
// inside a tea.Cmd (or a timer), never inside Update: delivering the message
// blocks until the program's event loop receives it.
type Surface struct {
	mu   sync.Mutex
	send func(tea.Msg)
}

func NewSurface() *Surface { return &Surface{} }

// Attach routes updates to send, normally (*tea.Program).Send.
func (s *Surface) Attach(send func(tea.Msg)) {
	s.mu.Lock()
	s.send = send
	s.mu.Unlock()
}

func (s *Surface) emit(msg tea.Msg) {
	s.mu.Lock()
	send := s.send
	s.mu.Unlock()
	if send != nil {
		send(msg)
	}
}

func (s *Surface) ClearInput() {
	s.emit(clearInputMsg{})
}

func (s *Surface) SetTyping(visible bool) {
	s.emit(typingMsg(visible))
}

func (s *Surface) AppendMessage(m widget.Message) {
	s.emit(appendMsg(m))
}

func (s *Surface) ShowLeadForm() {
	s.emit(showLeadMsg{})
}

func (s *Surface) HideLeadForm() {
	s.emit(hideLeadMsg{})
}

func (s *Surface) Notify(text string) {
	s.emit(noticeMsg(text))
}
