package htmlsafe

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/forexfactory/site/internal/pkg/slug"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Heading is one entry of a table of contents.
type Heading struct {
	ID    string
	Text  string
	Level int
}

// WithTOC assigns ids to h2/h3 headings that lack one and returns the
// rewritten fragment together with the headings in document order.
func WithTOC(fragment string) (string, []Heading) {
	context := &html.Node{Type: html.ElementNode, Data: "div", DataAtom: atom.Div}
	nodes, err := html.ParseFragment(strings.NewReader(fragment), context)
	if err != nil {
		return fragment, nil
	}

	var headings []Heading
	used := map[string]int{}
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.DataAtom == atom.H2 || n.DataAtom == atom.H3) {
			text := strings.Join(strings.Fields(nodeText(n)), " ")
			if text != "" {
				id := attr(n, "id")
				if id == "" {
					id = uniqueID(slug.Make(text), used)
					n.Attr = append(n.Attr, html.Attribute{Key: "id", Val: id})
				} else {
					used[id]++
				}
				level := 2
				if n.DataAtom == atom.H3 {
					level = 3
				}
				headings = append(headings, Heading{ID: id, Text: text, Level: level})
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	var buf bytes.Buffer
	for _, n := range nodes {
		walk(n)
		if err := html.Render(&buf, n); err != nil {
			return fragment, nil
		}
	}
	return buf.String(), headings
}

func uniqueID(base string, used map[string]int) string {
	if base == "" {
		base = "section"
	}
	used[base]++
	if used[base] == 1 {
		return base
	}
	return base + "-" + strconv.Itoa(used[base])
}

func nodeText(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		b.WriteString(nodeText(c))
		b.WriteByte(' ')
	}
	return b.String()
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
