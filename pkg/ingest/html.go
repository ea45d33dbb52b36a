package ingest

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

var blockTags = map[string]bool{
	"p": true, "div": true, "section": true, "article": true, "main": true,
	"header": true, "footer": true, "blockquote": true, "pre": true,
	"table": true, "tr": true, "ul": true, "ol": true, "br": true,
}

// cellTags sit side by side in a row and need a separator between them.
var cellTags = map[string]bool{"td": true, "th": true}

// FromHTML renders the visible content of an HTML page as markdown-ish text:
// headings become "#" lines, list items "- " lines, blocks are separated by
// blank lines.
func FromHTML(r io.Reader, name string) (Document, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return Document{}, fmt.Errorf("read html: %w", err)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(raw)))
	if err != nil {
		return Document{}, fmt.Errorf("parse html: %w", err)
	}

	title := pageTitle(doc)
	doc.Find("script, style, noscript, template, head").Remove()

	w := &textWriter{}
	doc.Find("body").Each(func(_ int, s *goquery.Selection) {
		for _, n := range s.Nodes {
			w.walk(n)
		}
	})
	if len(doc.Find("body").Nodes) == 0 {
		for _, n := range doc.Nodes {
			w.walk(n)
		}
	}

	return Document{
		Text:  w.String(),
		Title: title,
		Meta:  Meta{Adapter: AdapterHTML, Filename: name, Mime: "text/html", Bytes: len(raw)},
	}, nil
}

func pageTitle(doc *goquery.Document) string {
	if v, ok := doc.Find(`meta[property="og:title"]`).Attr("content"); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return strings.TrimSpace(doc.Find("title").First().Text())
}

// textWriter accumulates blocks of collapsed text.
type textWriter struct {
	blocks []string
	cur    strings.Builder
}

func (w *textWriter) walk(n *html.Node) {
	switch n.Type {
	case html.TextNode:
		// Inline markup joins words only where the source has whitespace.
		w.cur.WriteString(n.Data)
		return
	case html.ElementNode:
		tag := n.Data
		switch {
		case len(tag) == 2 && tag[0] == 'h' && tag[1] >= '1' && tag[1] <= '6':
			w.flush()
			w.walkChildren(n)
			w.flushPrefixed(strings.Repeat("#", int(tag[1]-'0')) + " ")
			return
		case tag == "li":
			w.flush()
			w.walkChildren(n)
			w.flushPrefixed("- ")
			return
		case blockTags[tag]:
			w.flush()
			w.walkChildren(n)
			w.flush()
			return
		case cellTags[tag]:
			w.walkChildren(n)
			w.cur.WriteByte(' ')
			return
		}
	}
	w.walkChildren(n)
}

func (w *textWriter) walkChildren(n *html.Node) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		w.walk(c)
	}
}

func (w *textWriter) flush() { w.flushPrefixed("") }

func (w *textWriter) flushPrefixed(prefix string) {
	text := strings.Join(strings.Fields(w.cur.String()), " ")
	w.cur.Reset()
	if text == "" {
		return
	}
	w.blocks = append(w.blocks, prefix+text)
}

func (w *textWriter) String() string {
	w.flush()
	return strings.Join(w.blocks, "\n\n")
}
