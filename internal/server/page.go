package server

import (
	"html/template"
	"strings"

	"lustbot-widget/internal/widget"
)

type pageData struct {
	surfaceSnapshot
	QuickActions []string
	LeadDelayMS  int64
}

var pageTmpl = template.Must(template.New("page").Funcs(template.FuncMap{
	"messageClass": func(m widget.Message) string {
		switch {
		case m.IsError:
			return "message bot-message error-message"
		case m.Sender == widget.SenderUser:
			return "message user-message"
		default:
			return "message bot-message"
		}
	},
	"avatar": func(m widget.Message) string {
		if m.Sender == widget.SenderUser {
			return "👤"
		}
		return "🤖"
	},
	"isLast": func(i int, msgs []widget.Message) bool { return i == len(msgs)-1 },
	"trim":   strings.TrimSpace,
}).Parse(pageHTML))

const pageHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>LustBot</title>
<style>
body { margin: 0; font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", sans-serif; background: #1a0f14; color: #f4e9ee; }
.chat { max-width: 640px; margin: 0 auto; min-height: 100vh; display: flex; flex-direction: column; }
.chat-header { padding: 16px; background: #3b1027; font-weight: 600; }
.chat-header small { display: block; font-weight: 400; opacity: .7; }
.messages { flex: 1; padding: 16px; overflow-y: auto; }
.message { display: flex; gap: 8px; margin-bottom: 12px; }
.user-message { flex-direction: row-reverse; }
.message-avatar { font-size: 20px; }
.message-content { max-width: 80%; padding: 10px 14px; border-radius: 14px; background: #2c1a23; }
.user-message .message-content { background: #8e1f4f; }
.error-message .message-content { background: #5a1a1a; border: 1px solid #c0392b; }
.message-time { font-size: 11px; opacity: .6; margin-top: 4px; }
.message-content a { color: #ffb3d1; }
.product-name { font-weight: 700; margin-top: 6px; }
.product-price { color: #ffd27f; }
.product-link { display: inline-block; margin-top: 4px; padding: 4px 10px; border-radius: 8px; background: #d63384; color: #fff !important; text-decoration: none; }
.typing { padding: 0 16px 8px; opacity: .7; font-style: italic; }
.quick-actions { display: flex; flex-wrap: wrap; gap: 6px; padding: 0 16px 8px; }
.quick-actions button { background: #2c1a23; color: inherit; border: 1px solid #8e1f4f; border-radius: 12px; padding: 4px 10px; cursor: pointer; }
.composer { display: flex; gap: 8px; padding: 12px 16px; border-top: 1px solid #3b1027; }
.composer input { flex: 1; padding: 10px; border-radius: 10px; border: none; }
.composer button { padding: 10px 16px; border-radius: 10px; border: none; background: #d63384; color: #fff; }
.composer input:invalid + button { opacity: .5; pointer-events: none; }
.overlay { position: fixed; inset: 0; background: rgba(0,0,0,.6); display: flex; align-items: center; justify-content: center; }
.lead-overlay { opacity: 0; pointer-events: none; animation: reveal 0s forwards; }
@keyframes reveal { to { opacity: 1; pointer-events: auto; } }
.dialog { background: #2c1a23; padding: 20px; border-radius: 14px; width: 320px; }
.dialog label { display: block; margin-top: 8px; font-size: 13px; }
.dialog input { width: 100%; box-sizing: border-box; padding: 8px; border-radius: 8px; border: none; }
.dialog .actions { display: flex; justify-content: space-between; margin-top: 14px; }
</style>
</head>
<body>
<div class="chat">
<div class="chat-header">LustBot<small>Your personal shopping assistant</small></div>
<div class="messages">
{{- range $i, $m := .Messages}}
<div class="{{messageClass $m}}"{{if isLast $i $.Messages}} id="latest"{{end}}>
<div class="message-avatar">{{avatar $m}}</div>
<div><div class="message-content">{{$m.HTML}}</div><div class="message-time">{{$m.Clock}}</div></div>
</div>
{{- end}}
</div>
{{- if .Typing}}
<div class="typing">LustBot is typing…</div>
{{- end}}
{{- if not .Messages}}
<form class="quick-actions" method="post" action="/chat/send">
{{- range .QuickActions}}
<button type="submit" name="message" value="{{.}}">{{.}}</button>
{{- end}}
</form>
{{- end}}
<form class="composer" method="post" action="/chat/send">
<input type="text" name="message" placeholder="Type your message..." autocomplete="off" required pattern=".*\S.*" autofocus>
<button type="submit">Send</button>
</form>
</div>
{{- if .LeadOpen}}
<div class="overlay lead-overlay" style="animation-delay: {{.LeadDelayMS}}ms">
<div class="dialog">
<strong>Get personalized help</strong>
<form method="post" action="/lead">
<label>Name *<input type="text" name="name" value="{{.Form.Name}}" required></label>
<label>Email *<input type="email" name="email" value="{{.Form.Email}}" required></label>
<label>Phone<input type="tel" name="phone" value="{{.Form.Phone}}"></label>
<label>Product interest *<input type="text" name="product" value="{{.Form.Product}}" required></label>
<div class="actions"><button type="submit">Submit</button></div>
</form>
<form method="post" action="/lead/dismiss"><button type="submit">Close</button></form>
</div>
</div>
{{- end}}
{{- if trim .Notice}}
<div class="overlay notice-overlay">
<div class="dialog">
<p>{{.Notice}}</p>
<form method="post" action="/notice/dismiss"><button type="submit">OK</button></form>
</div>
</div>
{{- end}}
</body>
</html>
`
