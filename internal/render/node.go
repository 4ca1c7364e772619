// Package render turns bot reply text into a small tree of typed nodes and
// renders that tree as escaped HTML. Text never reaches the output without
// going through html/template.
package render

import (
	"regexp"
	"strings"
	"unicode"
)

type Kind string

const (
	KindText         Kind = "text"
	KindLink         Kind = "link"
	KindProductName  Kind = "product_name"
	KindProductPrice Kind = "product_price"
	KindProductLink  Kind = "product_link"
)

// Node is one run of a rendered message. URL is set for link kinds.
type Node struct {
	Kind Kind   `json:"kind"`
	Text string `json:"text,omitempty"`
	URL  string `json:"url,omitempty"`
}

const (
	emphasisMarker = "**"
	priceMarker    = "Price: "
)

var (
	urlRe      = regexp.MustCompile(`https?://\S+`)
	nameRe     = regexp.MustCompile(`(?s)\*\*(.*?)\*\*`)
	cardLinkRe = regexp.MustCompile(`Link: (https?://\S+)`)
)

// IsProductCard reports whether raw carries product card markup: an
// emphasis marker together with a price label.
func IsProductCard(raw string) bool {
	return strings.Contains(raw, emphasisMarker) && strings.Contains(raw, "Price:")
}

// Parse splits raw into nodes. In a product card, passes run in a fixed
// order (names, prices, card links, bare URLs) and each pass only looks at
// plain text left over by the ones before. Newlines become single spaces
// once all passes have run, so a price still ends at its line.
func Parse(raw string) []Node {
	raw = strings.ReplaceAll(raw, "\r\n", "\n")
	nodes := []Node{text(raw)}
	if IsProductCard(raw) {
		nodes = expand(nodes, splitNames)
		nodes = expand(nodes, splitPrices)
		nodes = expand(nodes, splitCardLinks)
	}
	nodes = expand(nodes, splitURLs)

	out := make([]Node, 0, len(nodes))
	for _, n := range nodes {
		n.Text = strings.ReplaceAll(n.Text, "\n", " ")
		out = appendNode(out, n)
	}
	return out
}

func text(s string) Node { return Node{Kind: KindText, Text: s} }

// appendNode merges neighbouring text runs and drops empty ones.
func appendNode(nodes []Node, n Node) []Node {
	if n.Kind == KindText {
		if n.Text == "" {
			return nodes
		}
		if last := len(nodes) - 1; last >= 0 && nodes[last].Kind == KindText {
			nodes[last].Text += n.Text
			return nodes
		}
	}
	return append(nodes, n)
}

func expand(nodes []Node, split func(string) []Node) []Node {
	out := make([]Node, 0, len(nodes))
	for _, n := range nodes {
		if n.Kind != KindText {
			out = append(out, n)
			continue
		}
		for _, m := range split(n.Text) {
			out = appendNode(out, m)
		}
	}
	return out
}

func splitURLs(s string) []Node {
	return splitRegexp(s, urlRe, func(m []string) Node {
		return Node{Kind: KindLink, Text: m[0], URL: m[0]}
	})
}

func splitNames(s string) []Node {
	return splitRegexp(s, nameRe, func(m []string) Node {
		return Node{Kind: KindProductName, Text: m[1]}
	})
}

func splitCardLinks(s string) []Node {
	return splitRegexp(s, cardLinkRe, func(m []string) Node {
		return Node{Kind: KindProductLink, URL: m[1]}
	})
}

func splitRegexp(s string, re *regexp.Regexp, build func([]string) Node) []Node {
	locs := re.FindAllStringSubmatchIndex(s, -1)
	if locs == nil {
		return []Node{text(s)}
	}
	out := make([]Node, 0, 2*len(locs)+1)
	prev := 0
	for _, loc := range locs {
		out = append(out, text(s[prev:loc[0]]))
		groups := make([]string, 0, len(loc)/2)
		for g := 0; g < len(loc); g += 2 {
			if loc[g] < 0 {
				groups = append(groups, "")
				continue
			}
			groups = append(groups, s[loc[g]:loc[g+1]])
		}
		out = append(out, build(groups))
		prev = loc[1]
	}
	out = append(out, text(s[prev:]))
	return out
}

// splitPrices turns "Price: <value>" into a price node. The value runs to the
// end of its line or up to a following "Link: <url>".
func splitPrices(s string) []Node {
	var out []Node
	for {
		i := strings.Index(s, priceMarker)
		if i < 0 {
			break
		}
		out = append(out, text(s[:i]))
		rest := s[i+len(priceMarker):]
		end := len(rest)
		if nl := strings.IndexByte(rest, '\n'); nl >= 0 {
			end = nl
		}
		if loc := cardLinkRe.FindStringIndex(rest[:end]); loc != nil {
			end = loc[0]
		}
		value := strings.TrimRightFunc(rest[:end], unicode.IsSpace)
		out = append(out, Node{Kind: KindProductPrice, Text: strings.TrimSpace(value)})
		s = rest[len(value):]
	}
	return append(out, text(s))
}
