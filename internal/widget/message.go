package widget

import (
	"html/template"
	"time"

	"lustbot-widget/internal/render"
)

type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

// Message is one transcript entry. Messages are never modified after they
// are appended.
type Message struct {
	Text      string    `json:"text"`
	Sender    Sender    `json:"sender"`
	Timestamp time.Time `json:"timestamp"`
	IsError   bool      `json:"isError,omitempty"`
}

// HTML is the rendered message body.
func (m Message) HTML() template.HTML {
	return render.MessageText(m.Text)
}

// Nodes is the parsed message body, for surfaces that do not speak HTML.
func (m Message) Nodes() []render.Node {
	return render.Parse(m.Text)
}

// Clock formats the timestamp as shown next to the message.
func (m Message) Clock() string {
	return m.Timestamp.Format("15:04")
}
