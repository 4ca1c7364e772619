package server

import (
	"sync"
	"time"

	"lustbot-widget/internal/lead"
	"lustbot-widget/internal/widget"
)

// webSurface records what the widget asked the UI to show; the page
// template renders it on the next GET.
type webSurface struct {
	mu       sync.Mutex
	messages []widget.Message
	typing   bool
	leadOpen bool
	form     lead.Lead
	notice   string
}

// ClearInput is a no-op: every page render starts with an empty input.
func (s *webSurface) ClearInput() {}

func (s *webSurface) SetTyping(visible bool) {
	s.mu.Lock()
	s.typing = visible
	s.mu.Unlock()
}

func (s *webSurface) AppendMessage(m widget.Message) {
	s.mu.Lock()
	s.messages = append(s.messages, m)
	s.mu.Unlock()
}

func (s *webSurface) ShowLeadForm() {
	s.mu.Lock()
	s.leadOpen = true
	s.mu.Unlock()
}

func (s *webSurface) HideLeadForm() {
	s.mu.Lock()
	s.leadOpen = false
	s.form = lead.Lead{}
	s.mu.Unlock()
}

func (s *webSurface) Notify(text string) {
	s.mu.Lock()
	s.notice = text
	s.mu.Unlock()
}

// keepForm remembers what was typed so a rejected submission can be fixed
// instead of retyped.
func (s *webSurface) keepForm(l lead.Lead) {
	s.mu.Lock()
	s.form = l
	s.mu.Unlock()
}

func (s *webSurface) dismissNotice() {
	s.mu.Lock()
	s.notice = ""
	s.mu.Unlock()
}

type surfaceSnapshot struct {
	Messages []widget.Message
	Typing   bool
	LeadOpen bool
	Form     lead.Lead
	Notice   string
}

func (s *webSurface) snapshot() surfaceSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return surfaceSnapshot{
		Messages: append([]widget.Message(nil), s.messages...),
		Typing:   s.typing,
		LeadOpen: s.leadOpen,
		Form:     s.form,
		Notice:   s.notice,
	}
}

type visitor struct {
	widget   *widget.Widget
	surface  *webSurface
	lastSeen time.Time
}

// visitors holds one widget per browser. Idle visitors are dropped, which
// loses their transcript the same way a page reload does.
type visitors struct {
	mu      sync.Mutex
	byID    map[string]*visitor
	idleTTL time.Duration
	now     func() time.Time
	build   func(userID string, s *webSurface) (*widget.Widget, error)
}

func (v *visitors) get(userID string) (*visitor, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	now := v.now()
	v.sweepLocked(now)
	if vis, ok := v.byID[userID]; ok {
		vis.lastSeen = now
		return vis, nil
	}

	surface := &webSurface{}
	w, err := v.build(userID, surface)
	if err != nil {
		return nil, err
	}
	vis := &visitor{widget: w, surface: surface, lastSeen: now}
	v.byID[userID] = vis
	return vis, nil
}

func (v *visitors) sweepLocked(now time.Time) {
	if v.idleTTL <= 0 {
		return
	}
	for id, vis := range v.byID {
		if now.Sub(vis.lastSeen) > v.idleTTL {
			delete(v.byID, id)
		}
	}
}

func (v *visitors) len() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.byID)
}
