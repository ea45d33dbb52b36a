package sinks

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"
	"github.com/samvad-hq/langextract-client/pkg/httpclient"
)

const webhookSnippetLen = 512

func newHTTPSink(_ context.Context, cfg SinkConfig, log Logger) (Sink, error) {
	if cfg.HTTP == nil {
		return nil, fmt.Errorf("http block is missing")
	}
	hc := *cfg.HTTP
	if hc.Method == "" {
		hc.Method = defaultHTTPMethod
	}
	client := httpclient.NewRestyHTTPClient(hc.timeout())
	return &sink{
		id:   cfg.ID,
		kind: KindHTTP,
		send: webhookSender(client, hc),
		log:  orNop(log),
	}, nil
}

// webhookSender sends the event as the request body. The job status is
// mirrored in X-Job-Status so receivers can route without decoding.
func webhookSender(client *resty.Client, cfg HTTPSinkConfig) sendFunc {
	return func(ctx context.Context, payload []byte, attrs map[string]string) (string, error) {
		req := client.R().
			SetContext(ctx).
			SetHeaders(cfg.Headers).
			SetHeader("Content-Type", "application/json").
			SetBody(payload)
		if status := attrs["job_status"]; status != "" {
			req.SetHeader("X-Job-Status", status)
		}

		resp, err := req.Execute(cfg.Method, cfg.URL)
		if err != nil {
			return "", fmt.Errorf("%s %s: %w", cfg.Method, cfg.URL, err)
		}
		if code := resp.StatusCode(); code < 200 || code > 299 {
			return "", fmt.Errorf("%s %s: status %d: %s", cfg.Method, cfg.URL, code, clip(resp.Body(), webhookSnippetLen))
		}
		return "", nil
	}
}
