package sinks

import (
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strings"
	"time"

	"google.golang.org/api/option"
)

const (
	defaultHTTPMethod  = "POST"
	defaultHTTPTimeout = 5
)

// SinkConfig is one entry of a sinks file. Exactly the block named by Type is used.
type SinkConfig struct {
	ID      string            `json:"id" yaml:"id"`
	Type    string            `json:"type" yaml:"type"`
	Enabled *bool             `json:"enabled" yaml:"enabled"`
	HTTP    *HTTPSinkConfig   `json:"http" yaml:"http"`
	SQS     *SQSSinkConfig    `json:"sqs" yaml:"sqs"`
	SNS     *SNSSinkConfig    `json:"sns" yaml:"sns"`
	PubSub  *PubSubSinkConfig `json:"pubsub" yaml:"pubsub"`
}

// IsEnabled treats a missing flag as enabled.
func (c SinkConfig) IsEnabled() bool {
	return c.Enabled == nil || *c.Enabled
}

// HTTPSinkConfig posts events to a webhook.
type HTTPSinkConfig struct {
	URL            string            `json:"url" yaml:"url"`
	Method         string            `json:"method" yaml:"method"`
	Headers        map[string]string `json:"headers" yaml:"headers"`
	TimeoutSeconds int               `json:"timeout_seconds" yaml:"timeout_seconds"`
}

// AWSCredentials pins static keys; when empty the default AWS chain is used.
type AWSCredentials struct {
	AccessKeyID     string `json:"access_key_id" yaml:"access_key_id"`
	SecretAccessKey string `json:"secret_access_key" yaml:"secret_access_key"`
	SessionToken    string `json:"session_token" yaml:"session_token"`
}

// SQSSinkConfig sends events to a queue.
type SQSSinkConfig struct {
	QueueURL    string         `json:"uri" yaml:"uri"`
	Region      string         `json:"region" yaml:"region"`
	Credentials AWSCredentials `json:"credentials" yaml:"credentials"`
}

// SNSSinkConfig publishes events to a topic.
type SNSSinkConfig struct {
	TopicARN    string         `json:"topic_arn" yaml:"topic_arn"`
	Region      string         `json:"region" yaml:"region"`
	Credentials AWSCredentials `json:"credentials" yaml:"credentials"`
}

// PubSubSinkConfig publishes events to a Google Cloud Pub/Sub topic.
type PubSubSinkConfig struct {
	ProjectID       string `json:"project_id" yaml:"project_id"`
	Topic           string `json:"topic" yaml:"topic"`
	CredentialsFile string `json:"credentials_file" yaml:"credentials_file"`
	Endpoint        string `json:"endpoint" yaml:"endpoint"`
}

// settings is implemented by every per-kind block.
type settings interface {
	normalize()
	check() error
}

// settings returns the block selected by Type, or nil when it is absent.
func (c *SinkConfig) settings() settings {
	switch c.Type {
	case KindHTTP:
		if c.HTTP != nil {
			return c.HTTP
		}
	case KindSQS:
		if c.SQS != nil {
			return c.SQS
		}
	case KindSNS:
		if c.SNS != nil {
			return c.SNS
		}
	case KindPubSub:
		if c.PubSub != nil {
			return c.PubSub
		}
	}
	return nil
}

// prepare normalizes c in place and reports the first problem with it.
func (c *SinkConfig) prepare() error {
	c.ID = strings.TrimSpace(c.ID)
	c.Type = strings.ToLower(strings.TrimSpace(c.Type))

	if c.ID == "" {
		return errors.New("missing id")
	}
	switch c.Type {
	case "":
		return fmt.Errorf("sink %q: missing type", c.ID)
	case KindHTTP, KindSQS, KindSNS, KindPubSub:
	default:
		return fmt.Errorf("sink %q: type %q is not supported", c.ID, c.Type)
	}

	s := c.settings()
	if s == nil {
		return fmt.Errorf("sink %q: %s block is missing", c.ID, c.Type)
	}
	s.normalize()
	if err := s.check(); err != nil {
		return fmt.Errorf("sink %q: %w", c.ID, err)
	}
	return nil
}

func (h *HTTPSinkConfig) normalize() {
	h.URL = strings.TrimSpace(h.URL)
	h.Method = strings.ToUpper(strings.TrimSpace(h.Method))
	if h.Method == "" {
		h.Method = defaultHTTPMethod
	}
	if h.TimeoutSeconds <= 0 {
		h.TimeoutSeconds = defaultHTTPTimeout
	}
	headers := make(map[string]string, len(h.Headers))
	for k, v := range h.Headers {
		if k, v = strings.TrimSpace(k), strings.TrimSpace(v); k != "" && v != "" {
			headers[k] = v
		}
	}
	h.Headers = headers
}

func (h *HTTPSinkConfig) check() error {
	u, err := url.Parse(h.URL)
	if err != nil || h.URL == "" {
		return fmt.Errorf("http.url %q is not a valid URL", h.URL)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("http.url %q must be an absolute http(s) URL", h.URL)
	}
	switch h.Method {
	case "POST", "PUT", "PATCH":
		return nil
	default:
		return fmt.Errorf("http.method %s cannot carry an event body", h.Method)
	}
}

func (h HTTPSinkConfig) timeout() time.Duration {
	return time.Duration(h.TimeoutSeconds) * time.Second
}

func (q *SQSSinkConfig) normalize() {
	q.QueueURL = strings.TrimSpace(q.QueueURL)
	q.Region = strings.TrimSpace(q.Region)
}

func (q *SQSSinkConfig) check() error {
	return requireFields(map[string]string{"sqs.uri": q.QueueURL, "sqs.region": q.Region})
}

func (t *SNSSinkConfig) normalize() {
	t.TopicARN = strings.TrimSpace(t.TopicARN)
	t.Region = strings.TrimSpace(t.Region)
}

func (t *SNSSinkConfig) check() error {
	if err := requireFields(map[string]string{"sns.topic_arn": t.TopicARN, "sns.region": t.Region}); err != nil {
		return err
	}
	if !strings.HasPrefix(t.TopicARN, "arn:") {
		return fmt.Errorf("sns.topic_arn %q is not an ARN", t.TopicARN)
	}
	return nil
}

func (p *PubSubSinkConfig) normalize() {
	p.ProjectID = strings.TrimSpace(p.ProjectID)
	p.Topic = strings.TrimSpace(p.Topic)
	p.CredentialsFile = strings.TrimSpace(p.CredentialsFile)
	p.Endpoint = strings.TrimSpace(p.Endpoint)
}

func (p *PubSubSinkConfig) check() error {
	return requireFields(map[string]string{"pubsub.project_id": p.ProjectID, "pubsub.topic": p.Topic})
}

func (p PubSubSinkConfig) clientOptions() []option.ClientOption {
	var opts []option.ClientOption
	if p.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(p.CredentialsFile))
	}
	if p.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(p.Endpoint))
	}
	return opts
}

// requireFields names every empty field, in a stable order.
func requireFields(fields map[string]string) error {
	var missing []string
	for name, v := range fields {
		if v == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	slices.Sort(missing)
	return fmt.Errorf("%s required", strings.Join(missing, ", "))
}
