package widget

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lustbot-widget/internal/backend"
	"lustbot-widget/internal/lead"
	"lustbot-widget/internal/types"
)

// recorder is shared by the fake surface and fake backend so tests can
// assert on the interleaving of UI updates and network calls.
type recorder struct {
	mu     sync.Mutex
	events []string
}

func (r *recorder) add(e string) {
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()
}

func (r *recorder) list() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

type fakeSurface struct {
	rec      *recorder
	mu       sync.Mutex
	messages []Message
	notices  []string
	leadOpen bool
}

func (s *fakeSurface) ClearInput() { s.rec.add("clear") }
func (s *fakeSurface) SetTyping(v bool) {
	if v {
		s.rec.add("typing:on")
	} else {
		s.rec.add("typing:off")
	}
}
func (s *fakeSurface) AppendMessage(m Message) {
	s.mu.Lock()
	s.messages = append(s.messages, m)
	s.mu.Unlock()
	s.rec.add("append:" + string(m.Sender))
}
func (s *fakeSurface) ShowLeadForm() {
	s.mu.Lock()
	s.leadOpen = true
	s.mu.Unlock()
	s.rec.add("lead:show")
}
func (s *fakeSurface) HideLeadForm() {
	s.mu.Lock()
	s.leadOpen = false
	s.mu.Unlock()
	s.rec.add("lead:hide")
}
func (s *fakeSurface) Notify(text string) {
	s.mu.Lock()
	s.notices = append(s.notices, text)
	s.mu.Unlock()
	s.rec.add("notify")
}

type fakeBackend struct {
	rec   *recorder
	reply string
	err   error
	calls []types.ChatRequest
}

func (b *fakeBackend) Send(_ context.Context, message, userID string) (types.ChatResponse, error) {
	b.rec.add("send")
	b.calls = append(b.calls, types.ChatRequest{Message: message, UserID: userID})
	if b.err != nil {
		return types.ChatResponse{}, b.err
	}
	return types.ChatResponse{Reply: b.reply}, nil
}

type scheduled struct {
	delay time.Duration
	fn    func()
}

func newTestWidget(t *testing.T, be *fakeBackend) (*Widget, *fakeSurface, *[]scheduled) {
	t.Helper()
	surface := &fakeSurface{rec: be.rec}
	var pending []scheduled
	w, err := New(Options{
		Backend:   be,
		Surface:   surface,
		UserID:    "user_test",
		AfterFunc: func(d time.Duration, f func()) { pending = append(pending, scheduled{d, f}) },
		Now:       func() time.Time { return time.Date(2024, 5, 1, 9, 7, 0, 0, time.UTC) },
		Logger:    zerolog.Nop(),
	})
	require.NoError(t, err)
	return w, surface, &pending
}

func TestSendMessageOrdering(t *testing.T) {
	rec := &recorder{}
	be := &fakeBackend{rec: rec, reply: "Our silk robe is lovely."}
	w, surface, pending := newTestWidget(t, be)

	w.SendMessage(context.Background(), "  show me robes  ")

	assert.Equal(t, []string{"append:user", "clear", "typing:on", "send", "typing:off", "append:bot"}, rec.list())
	require.Len(t, be.calls, 1)
	assert.Equal(t, types.ChatRequest{Message: "show me robes", UserID: "user_test"}, be.calls[0])

	transcript := w.Transcript()
	require.Len(t, transcript, 2)
	assert.Equal(t, Message{Text: "show me robes", Sender: SenderUser, Timestamp: transcript[0].Timestamp}, transcript[0])
	assert.Equal(t, "Our silk robe is lovely.", transcript[1].Text)
	assert.False(t, transcript[1].IsError)
	assert.Equal(t, "09:07", transcript[1].Clock())
	assert.Equal(t, transcript, surface.messages)
	assert.Empty(t, *pending)
}

func TestSendMessageBlankIsNoop(t *testing.T) {
	for _, in := range []string{"", "   ", "\n\t"} {
		rec := &recorder{}
		be := &fakeBackend{rec: rec, reply: "x"}
		w, _, _ := newTestWidget(t, be)

		w.SendMessage(context.Background(), in)

		assert.Empty(t, rec.list(), "%q", in)
		assert.Empty(t, be.calls)
		assert.Empty(t, w.Transcript())
	}
}

func TestSendMessageTransportFailure(t *testing.T) {
	rec := &recorder{}
	be := &fakeBackend{rec: rec, err: &backend.TransportError{StatusCode: 500, Err: errors.New("boom")}}
	w, _, pending := newTestWidget(t, be)

	w.SendMessage(context.Background(), "hello")

	assert.Equal(t, []string{"append:user", "clear", "typing:on", "send", "typing:off", "append:bot"}, rec.list())
	transcript := w.Transcript()
	require.Len(t, transcript, 2)
	assert.Equal(t, TechnicalDifficulties, transcript[1].Text)
	assert.True(t, transcript[1].IsError)
	assert.Equal(t, SenderBot, transcript[1].Sender)
	assert.Empty(t, *pending)
}

func TestSendMessageEmptyReplyUsesPlaceholder(t *testing.T) {
	rec := &recorder{}
	w, _, pending := newTestWidget(t, &fakeBackend{rec: rec})

	w.SendMessage(context.Background(), "hello")

	transcript := w.Transcript()
	require.Len(t, transcript, 2)
	assert.Equal(t, FallbackReply, transcript[1].Text)
	assert.False(t, transcript[1].IsError)
	assert.Empty(t, *pending)
}

func TestSendMessageSchedulesLeadForm(t *testing.T) {
	rec := &recorder{}
	w, surface, pending := newTestWidget(t, &fakeBackend{rec: rec, reply: "Would you like us to contact you?"})

	w.SendMessage(context.Background(), "I want help")

	require.Len(t, *pending, 1)
	assert.Equal(t, DefaultLeadDelay, (*pending)[0].delay)
	assert.False(t, surface.leadOpen, "form must wait for the delay")

	(*pending)[0].fn()
	assert.True(t, surface.leadOpen)
}

func TestSubmitLeadValidationFailure(t *testing.T) {
	rec := &recorder{}
	be := &fakeBackend{rec: rec, reply: "ok"}
	w, surface, _ := newTestWidget(t, be)
	surface.leadOpen = true

	w.SubmitLead(context.Background(), lead.Lead{Name: "", Email: "a@b.com", Phone: "", Product: "Robe"})

	assert.Empty(t, be.calls)
	assert.True(t, surface.leadOpen)
	assert.Equal(t, []string{LeadFieldsRequired}, surface.notices)
	assert.Empty(t, w.Transcript())
}

func TestSubmitLeadSuccess(t *testing.T) {
	rec := &recorder{}
	be := &fakeBackend{rec: rec, reply: "Lead saved"}
	w, surface, _ := newTestWidget(t, be)
	surface.leadOpen = true

	w.SubmitLead(context.Background(), lead.Lead{Name: "Ann", Email: "a@b.com", Product: "Silk Robe"})

	require.Len(t, be.calls, 1)
	assert.Equal(t, "user_test", be.calls[0].UserID)
	assert.True(t, strings.HasPrefix(be.calls[0].Message, "Please capture this lead: {"))
	assert.Contains(t, be.calls[0].Message, `"product":"Silk Robe"`)

	assert.False(t, surface.leadOpen)
	assert.Equal(t, []string{"send", "lead:hide", "append:bot"}, rec.list())
	transcript := w.Transcript()
	require.Len(t, transcript, 1)
	assert.Equal(t, "Thank you Ann! Your information has been submitted. Our team will contact you soon about Silk Robe.", transcript[0].Text)
}

func TestSubmitLeadTransportFailureKeepsFormOpen(t *testing.T) {
	rec := &recorder{}
	be := &fakeBackend{rec: rec, err: errors.New("offline")}
	w, surface, _ := newTestWidget(t, be)
	surface.leadOpen = true

	w.SubmitLead(context.Background(), lead.Lead{Name: "Ann", Email: "a@b.com", Product: "Robe"})

	assert.Len(t, be.calls, 1)
	assert.True(t, surface.leadOpen)
	assert.Equal(t, []string{LeadSubmitFailed}, surface.notices)
	assert.Empty(t, w.Transcript())
}

func TestDismissLead(t *testing.T) {
	rec := &recorder{}
	w, surface, _ := newTestWidget(t, &fakeBackend{rec: rec})
	surface.leadOpen = true
	w.DismissLead()
	assert.False(t, surface.leadOpen)
}

func TestNewValidatesOptions(t *testing.T) {
	rec := &recorder{}
	_, err := New(Options{Surface: &fakeSurface{rec: rec}, UserID: "u"})
	assert.ErrorIs(t, err, ErrBackendRequired)
	_, err = New(Options{Backend: &fakeBackend{rec: rec}, UserID: "u"})
	assert.ErrorIs(t, err, ErrSurfaceRequired)
	_, err = New(Options{Backend: &fakeBackend{rec: rec}, Surface: &fakeSurface{rec: rec}, UserID: " "})
	assert.ErrorIs(t, err, ErrUserIDRequired)
}

func TestCanSend(t *testing.T) {
	assert.False(t, CanSend(""))
	assert.False(t, CanSend("  \n"))
	assert.True(t, CanSend(" hi "))
}

func TestMessageHTML(t *testing.T) {
	m := Message{Text: "see https://a.example/x", Sender: SenderBot}
	assert.Contains(t, string(m.HTML()), `<a href="https://a.example/x"`)
	assert.Len(t, m.Nodes(), 2)
}
