// Package ingest turns local documents and web pages into the plain text the
// extraction service expects in an /extract body.
package ingest

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/samvad-hq/langextract-client/pkg/httpclient"
)

const (
	AdapterText = "text"
	AdapterHTML = "html"
	AdapterURL  = "url"

	maxHTMLBodyBytes = 4 << 20 // 4 MiB
)

// Meta describes where a Document came from.
type Meta struct {
	Adapter  string `json:"adapter"`
	Filename string `json:"filename,omitempty"`
	Mime     string `json:"mime,omitempty"`
	Bytes    int    `json:"bytes"`
}

// Document is normalised text ready for extraction.
type Document struct {
	Text  string `json:"text"`
	Title string `json:"title,omitempty"`
	Meta  Meta   `json:"meta"`
}

// ExtractBody returns the request body /extract accepts.
func (d Document) ExtractBody() map[string]any {
	return map[string]any{"text": d.Text}
}

// FromText wraps plain text or markdown, normalising line endings.
func FromText(data []byte, name string) Document {
	text := strings.ReplaceAll(string(data), "\r\n", "\n")
	return Document{
		Text: strings.TrimSpace(text),
		Meta: Meta{Adapter: AdapterText, Filename: name, Mime: mimeFor(name), Bytes: len(data)},
	}
}

// FromFile reads path and picks the adapter from its extension.
func FromFile(path string) (Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Document{}, fmt.Errorf("read %s: %w", path, err)
	}
	name := filepath.Base(path)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm", ".xhtml":
		return FromHTML(bytes.NewReader(data), name)
	default:
		return FromText(data, name), nil
	}
}

// FromURL downloads url and ingests it as HTML.
func FromURL(ctx context.Context, client httpclient.Client, url string) (Document, error) {
	if client == nil {
		return Document{}, fmt.Errorf("http client is nil")
	}
	resp, err := client.Get(ctx, url, map[string]string{"Accept": "text/html,application/xhtml+xml"})
	if err != nil {
		return Document{}, fmt.Errorf("fetch %s: %w", url, err)
	}
	body := resp.Body()
	if resp.StatusCode() != http.StatusOK {
		return Document{}, fmt.Errorf("fetch %s returned status %d body: %s", url, resp.StatusCode(), responseSnippet(body))
	}
	if len(body) > maxHTMLBodyBytes {
		body = body[:maxHTMLBodyBytes]
	}

	doc, err := FromHTML(bytes.NewReader(body), url)
	if err != nil {
		return Document{}, err
	}
	doc.Meta.Adapter = AdapterURL
	return doc, nil
}

func mimeFor(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".md", ".markdown":
		return "text/markdown"
	case ".html", ".htm", ".xhtml":
		return "text/html"
	case "":
		return ""
	default:
		return "text/plain"
	}
}

func responseSnippet(body []byte) string {
	const maxLen = 512
	s := strings.TrimSpace(string(body))
	if len(s) > maxLen {
		cut := maxLen
		for cut > 0 && !utf8.RuneStart(s[cut]) {
			cut--
		}
		return s[:cut] + "..."
	}
	if s == "" {
		return "<empty>"
	}
	return s
}
