package widget

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"lustbot-widget/internal/backend"
	"lustbot-widget/internal/lead"
)

const (
	FallbackReply         = "Sorry, I didn't understand that."
	TechnicalDifficulties = "Sorry, I'm having technical difficulties. Please try again in a moment."
	LeadFieldsRequired    = "Please fill in all required fields."
	LeadSubmitFailed      = "Sorry, there was an error submitting your information. Please try again."

	DefaultLeadDelay = time.Second
)

// QuickActions are suggested first messages offered by the hosts.
var QuickActions = []string{
	"Show me silk products",
	"I need a romantic gift",
	"What's popular this week?",
	"Help me choose lingerie",
}

var (
	ErrBackendRequired = errors.New("widget: backend is required")
	ErrSurfaceRequired = errors.New("widget: surface is required")
	ErrUserIDRequired  = errors.New("widget: user id is required")
)

type Options struct {
	Backend backend.Exchanger
	Surface Surface
	UserID  string

	// Detector decides when to offer the lead form. Nil uses the default
	// phrase list.
	Detector *lead.Detector
	// LeadDelay is how long after a matching reply the form opens. Zero
	// means DefaultLeadDelay; a negative value opens it immediately.
	LeadDelay time.Duration
	// AfterFunc schedules the lead form. Defaults to time.AfterFunc.
	AfterFunc func(d time.Duration, f func())
	Now       func() time.Time
	Logger    zerolog.Logger
}

// Widget is one chat conversation bound to a Surface.
type Widget struct {
	backend   backend.Exchanger
	surface   Surface
	userID    string
	detector  *lead.Detector
	leadDelay time.Duration
	afterFunc func(time.Duration, func())
	now       func() time.Time
	log       zerolog.Logger

	mu         sync.RWMutex
	transcript []Message
}

func New(opts Options) (*Widget, error) {
	if opts.Backend == nil {
		return nil, ErrBackendRequired
	}
	if opts.Surface == nil {
		return nil, ErrSurfaceRequired
	}
	if strings.TrimSpace(opts.UserID) == "" {
		return nil, ErrUserIDRequired
	}

	w := &Widget{
		backend:   opts.Backend,
		surface:   opts.Surface,
		userID:    opts.UserID,
		detector:  opts.Detector,
		leadDelay: opts.LeadDelay,
		afterFunc: opts.AfterFunc,
		now:       opts.Now,
		log:       opts.Logger.With().Str("component", "widget").Str("user_id", opts.UserID).Logger(),
	}
	if w.detector == nil {
		w.detector = lead.DefaultDetector()
	}
	if w.leadDelay == 0 {
		w.leadDelay = DefaultLeadDelay
	}
	if w.leadDelay < 0 {
		w.leadDelay = 0
	}
	if w.afterFunc == nil {
		w.afterFunc = func(d time.Duration, f func()) { time.AfterFunc(d, f) }
	}
	if w.now == nil {
		w.now = time.Now
	}
	return w, nil
}

func (w *Widget) UserID() string { return w.userID }

// Transcript returns a copy of the messages appended so far.
func (w *Widget) Transcript() []Message {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make([]Message, len(w.transcript))
	copy(out, w.transcript)
	return out
}

// CanSend reports whether the send control should be enabled for input.
func CanSend(input string) bool {
	return strings.TrimSpace(input) != ""
}

// SendMessage posts text to the backend and renders both sides of the
// exchange. Blank input is ignored. Failures never escape: they become an
// error-flagged bot message.
func (w *Widget) SendMessage(ctx context.Context, text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}

	w.appendMessage(Message{Text: text, Sender: SenderUser})
	w.surface.ClearInput()
	w.surface.SetTyping(true)

	resp, err := w.backend.Send(ctx, text, w.userID)
	w.surface.SetTyping(false)
	if err != nil {
		w.log.Error().Err(err).Msg("chat exchange failed")
		w.appendMessage(Message{Text: TechnicalDifficulties, Sender: SenderBot, IsError: true})
		return
	}

	reply := resp.Reply
	if reply == "" {
		reply = FallbackReply
	}
	w.appendMessage(Message{Text: reply, Sender: SenderBot})
	w.offerLeadIfInvited(resp.Reply)
}

func (w *Widget) offerLeadIfInvited(reply string) {
	pattern, ok := w.detector.MatchName(reply)
	if !ok {
		return
	}
	w.log.Debug().Str("pattern", pattern).Dur("delay", w.leadDelay).Msg("reply invites lead capture")
	w.afterFunc(w.leadDelay, w.surface.ShowLeadForm)
}

// SubmitLead validates l and sends it through the chat channel. On success
// the form closes and a confirmation is appended; on any failure the form
// stays open and the user is notified.
func (w *Widget) SubmitLead(ctx context.Context, l lead.Lead) {
	if err := l.Validate(); err != nil {
		w.log.Debug().Err(err).Msg("lead rejected")
		w.surface.Notify(LeadFieldsRequired)
		return
	}

	msg, err := l.Instruction()
	if err != nil {
		w.log.Error().Err(err).Msg("lead serialization failed")
		w.surface.Notify(LeadSubmitFailed)
		return
	}

	if _, err := w.backend.Send(ctx, msg, w.userID); err != nil {
		w.log.Error().Err(err).Msg("lead submission failed")
		w.surface.Notify(LeadSubmitFailed)
		return
	}

	w.log.Info().Str("product", l.Product).Msg("lead submitted")
	w.surface.HideLeadForm()
	w.appendMessage(Message{Text: l.Confirmation(), Sender: SenderBot})
}

// DismissLead closes the lead form without submitting it.
func (w *Widget) DismissLead() {
	w.surface.HideLeadForm()
}

func (w *Widget) appendMessage(m Message) {
	m.Timestamp = w.now()
	w.mu.Lock()
	w.transcript = append(w.transcript, m)
	w.mu.Unlock()
	w.surface.AppendMessage(m)
}
