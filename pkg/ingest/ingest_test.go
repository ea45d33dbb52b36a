package ingest

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/google/go-cmp/cmp"
	"github.com/samvad-hq/langextract-client/pkg/httpclient"
)

const samplePage = `
<html>
  <head>
    <title>Fallback</title>
    <meta property="og:title" content="Invoice 42">
    <style>body { color: red }</style>
  </head>
  <body>
    <script>var x = 1;</script>
    <h1>Invoice</h1>
    <p>Total   due:
       <b>$10</b></p>
    <ul><li>Item one</li><li>Item two</li></ul>
  </body>
</html>`

func TestFromHTMLRendersBlocks(t *testing.T) {
	doc, err := FromHTML(strings.NewReader(samplePage), "invoice.html")
	if err != nil {
		t.Fatalf("FromHTML: %v", err)
	}
	want := "# Invoice\n\nTotal due: $10\n\n- Item one\n\n- Item two"
	if diff := cmp.Diff(want, doc.Text); diff != "" {
		t.Fatalf("text mismatch (-want +got):\n%s", diff)
	}
	if doc.Title != "Invoice 42" {
		t.Fatalf("title = %q", doc.Title)
	}
	if doc.Meta.Adapter != AdapterHTML || doc.Meta.Filename != "invoice.html" {
		t.Fatalf("unexpected meta %#v", doc.Meta)
	}
}

func TestFromHTMLInlineMarkupKeepsWordsJoined(t *testing.T) {
	page := `<body><p>Net<b>30</b> terms, <i>un</i>conditional.</p>` +
		`<table><tr><td>Qty</td><td>2</td></tr></table></body>`
	doc, err := FromHTML(strings.NewReader(page), "")
	if err != nil {
		t.Fatalf("FromHTML: %v", err)
	}
	want := "Net30 terms, unconditional.\n\nQty 2"
	if diff := cmp.Diff(want, doc.Text); diff != "" {
		t.Fatalf("text mismatch (-want +got):\n%s", diff)
	}
}

func TestFromHTMLTitleFallback(t *testing.T) {
	doc, err := FromHTML(strings.NewReader(`<html><head><title> Plain </title></head><body>x</body></html>`), "")
	if err != nil {
		t.Fatalf("FromHTML: %v", err)
	}
	if doc.Title != "Plain" || doc.Text != "x" {
		t.Fatalf("unexpected document %#v", doc)
	}
}

func TestFromFileDispatchesOnExtension(t *testing.T) {
	dir := t.TempDir()
	txt := filepath.Join(dir, "notes.md")
	if err := os.WriteFile(txt, []byte("line one\r\nline two\r\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	page := filepath.Join(dir, "page.HTML")
	if err := os.WriteFile(page, []byte(samplePage), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	doc, err := FromFile(txt)
	if err != nil {
		t.Fatalf("FromFile md: %v", err)
	}
	if doc.Text != "line one\nline two" || doc.Meta.Mime != "text/markdown" || doc.Meta.Adapter != AdapterText {
		t.Fatalf("unexpected md document %#v", doc)
	}
	if diff := cmp.Diff(map[string]any{"text": "line one\nline two"}, doc.ExtractBody()); diff != "" {
		t.Fatalf("body mismatch (-want +got):\n%s", diff)
	}

	doc, err = FromFile(page)
	if err != nil {
		t.Fatalf("FromFile html: %v", err)
	}
	if doc.Meta.Adapter != AdapterHTML {
		t.Fatalf("expected html adapter, got %q", doc.Meta.Adapter)
	}

	if _, err := FromFile(filepath.Join(dir, "missing.txt")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

type stubHTTPResponse struct {
	body       []byte
	statusCode int
}

func (s stubHTTPResponse) Body() []byte    { return s.body }
func (s stubHTTPResponse) StatusCode() int { return s.statusCode }

type stubHTTPClient struct {
	resp httpclient.Response
}

func (s stubHTTPClient) Get(_ context.Context, _ string, _ map[string]string) (httpclient.Response, error) {
	return s.resp, nil
}

func (s stubHTTPClient) Do(ctx context.Context, _ string, url string, headers map[string]string, _ []byte) (httpclient.Response, error) {
	return s.Get(ctx, url, headers)
}

func TestFromURL(t *testing.T) {
	client := stubHTTPClient{resp: stubHTTPResponse{body: []byte(samplePage), statusCode: 200}}
	doc, err := FromURL(context.Background(), client, "https://example.com/inv")
	if err != nil {
		t.Fatalf("FromURL: %v", err)
	}
	if doc.Meta.Adapter != AdapterURL || doc.Meta.Filename != "https://example.com/inv" {
		t.Fatalf("unexpected meta %#v", doc.Meta)
	}
	if !strings.HasPrefix(doc.Text, "# Invoice") {
		t.Fatalf("unexpected text %q", doc.Text)
	}
}

func TestFromURLNon200SnippetKeepsRunesWhole(t *testing.T) {
	body := "x" + strings.Repeat("ß", 400)
	client := stubHTTPClient{resp: stubHTTPResponse{body: []byte(body), statusCode: 503}}
	_, err := FromURL(context.Background(), client, "https://example.com/x")
	if err == nil {
		t.Fatalf("expected status error")
	}
	if !utf8.ValidString(err.Error()) || !strings.HasSuffix(err.Error(), "ß...") {
		t.Fatalf("snippet split a rune: %q", err.Error())
	}
}

func TestFromURLNon200(t *testing.T) {
	client := stubHTTPClient{resp: stubHTTPResponse{body: []byte("gone"), statusCode: 410}}
	_, err := FromURL(context.Background(), client, "https://example.com/x")
	if err == nil || !strings.Contains(err.Error(), "410") {
		t.Fatalf("expected status error, got %v", err)
	}
}
