package render

import (
	"bytes"
	"html/template"
)

// ProductLinkLabel is the call-to-action text of a product card link.
const ProductLinkLabel = "View Product →"

var nodesTmpl = template.Must(template.New("nodes").Parse(`{{range .}}` +
	`{{if eq .Kind "link"}}<a href="{{.URL}}" target="_blank" rel="noopener noreferrer">{{.Text}}</a>` +
	`{{else if eq .Kind "product_name"}}<div class="product-name">{{.Text}}</div>` +
	`{{else if eq .Kind "product_price"}}<div class="product-price">{{.Text}}</div>` +
	`{{else if eq .Kind "product_link"}}<a href="{{.URL}}" target="_blank" rel="noopener noreferrer" class="product-link">` + ProductLinkLabel + `</a>` +
	`{{else}}{{.Text}}{{end}}` +
	`{{end}}`))

// HTML renders nodes as an HTML fragment.
func HTML(nodes []Node) template.HTML {
	var buf bytes.Buffer
	if err := nodesTmpl.Execute(&buf, nodes); err != nil {
		// Only reachable on writer failure; fall back to escaped text.
		var plain bytes.Buffer
		for _, n := range nodes {
			plain.WriteString(n.Text)
		}
		return template.HTML(template.HTMLEscapeString(plain.String()))
	}
	return template.HTML(buf.String())
}

// MessageText is Parse followed by HTML.
func MessageText(raw string) template.HTML {
	return HTML(Parse(raw))
}
