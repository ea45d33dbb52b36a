// Package extractor is a thin JSON client for the extraction service.
//
// Each method maps to one endpoint, sends at most one request and returns the
// decoded JSON value untouched:
//
//	c := extractor.New("http://localhost:8787", os.Getenv("LANGEXTRACT_API_KEY"))
//	accepted, err := c.Extract(ctx, map[string]string{"workflow_id": wfID}, map[string]any{"text": text})
//
// Failures are never retried. A transport error is returned wrapped, a non-2xx
// status as *StatusError and an unparseable body as *DecodeError.
package extractor

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"reflect"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/samvad-hq/langextract-client/pkg/httpclient"
)

// Response is the decoded JSON body: map[string]any, []any or a scalar.
type Response = any

// Logger defines the logging surface the client relies on.
type Logger interface {
	DebugObj(msg, key string, obj interface{})
}

type noopLogger struct{}

func (noopLogger) DebugObj(string, string, interface{}) {}

// Client talks to a single extraction service. It holds no mutable state and
// is safe for concurrent use.
type Client struct {
	baseURL string
	apiKey  string
	http    httpclient.Client
	log     Logger
}

// Option customises a Client at construction time.
type Option func(*Client)

// WithHTTPClient replaces the default resty-backed transport.
func WithHTTPClient(hc httpclient.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithLogger enables debug logging of each request.
func WithLogger(log Logger) Option {
	return func(c *Client) {
		if log != nil {
			c.log = log
		}
	}
}

// New builds a Client. Trailing slashes on baseURL are dropped; an empty
// apiKey means requests carry no Authorization header.
func New(baseURL, apiKey string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		log:     noopLogger{},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.http == nil {
		c.http = httpclient.NewRestyClient(0)
	}
	return c
}

// BaseURL returns the normalised service URL.
func (c *Client) BaseURL() string { return c.baseURL }

// Health calls GET /health.
func (c *Client) Health(ctx context.Context) (Response, error) {
	return c.do(ctx, http.MethodGet, "/health", nil)
}

// CreateOrUpdateWorkflow calls POST /workflows.
func (c *Client) CreateOrUpdateWorkflow(ctx context.Context, body any) (Response, error) {
	return c.do(ctx, http.MethodPost, "/workflows", body)
}

// InferSchema calls POST /infer_schema.
func (c *Client) InferSchema(ctx context.Context, body any) (Response, error) {
	return c.do(ctx, http.MethodPost, "/infer_schema", body)
}

// Extract calls POST /extract with params as the query string.
//
// Values are inserted as given, without URL encoding; callers must escape
// anything that needs it. Keys are emitted in sorted order.
func (c *Client) Extract(ctx context.Context, params map[string]string, body any) (Response, error) {
	return c.do(ctx, http.MethodPost, "/extract?"+rawQuery(params), body)
}

// Job calls GET /jobs/{id}. The id is not escaped.
func (c *Client) Job(ctx context.Context, id string) (Response, error) {
	return c.do(ctx, http.MethodGet, "/jobs/"+id, nil)
}

// Validate calls POST /validate.
func (c *Client) Validate(ctx context.Context, body any) (Response, error) {
	return c.do(ctx, http.MethodPost, "/validate", body)
}

func (c *Client) headers() map[string]string {
	h := map[string]string{"Content-Type": "application/json"}
	if c.apiKey != "" {
		h["Authorization"] = "Bearer " + c.apiKey
	}
	return h
}

// do is the single request primitive every endpoint goes through.
func (c *Client) do(ctx context.Context, method, path string, body any) (Response, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	var payload []byte
	if !isNilBody(body) {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode %s %s body: %w", method, path, err)
		}
		payload = raw
	}

	url := c.baseURL + path
	start := time.Now()
	resp, err := c.http.Do(ctx, method, url, c.headers(), payload)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, url, err)
	}
	c.log.DebugObj("extractor request", "request_meta", map[string]any{
		"method":     method,
		"path":       path,
		"status":     resp.StatusCode(),
		"elapsed_ms": time.Since(start).Milliseconds(),
	})

	if code := resp.StatusCode(); code < 200 || code > 299 {
		return nil, &StatusError{Method: method, URL: url, StatusCode: code, Body: bodySnippet(resp.Body())}
	}
	return decode(url, resp.Body())
}

// isNilBody treats a nil map, slice or pointer like an untyped nil so that no
// "null" payload is sent.
func isNilBody(body any) bool {
	if body == nil {
		return true
	}
	switch v := reflect.ValueOf(body); v.Kind() {
	case reflect.Map, reflect.Slice, reflect.Pointer:
		return v.IsNil()
	default:
		return false
	}
}

func decode(url string, raw []byte) (Response, error) {
	if !utf8.Valid(raw) {
		return nil, &DecodeError{URL: url, Err: errInvalidUTF8}
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, &DecodeError{URL: url, Err: err}
	}
	return out, nil
}

func rawQuery(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+params[k])
	}
	return strings.Join(pairs, "&")
}
