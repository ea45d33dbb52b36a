package sinks

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeSinksFile(t *testing.T, name, raw string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	return path
}

func TestLoadFileNormalizesAndFiltersEnabled(t *testing.T) {
	path := writeSinksFile(t, "sinks.yaml", `
sinks:
  - id: hook
    type: http
    enabled: false
    http:
      url: https://example.com/jobs
      headers:
        " X-Team ": " extraction "
        "X-Empty": ""
  - id: " queue "
    type: SQS
    sqs:
      uri: " https://sqs.ap-south-1.amazonaws.com/1/jobs "
      region: ap-south-1
`)

	f, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	enabled := f.Enabled()
	if len(enabled) != 1 || enabled[0].ID != "queue" {
		t.Fatalf("expected only queue enabled, got %#v", enabled)
	}
	if enabled[0].Type != KindSQS || enabled[0].SQS.QueueURL != "https://sqs.ap-south-1.amazonaws.com/1/jobs" {
		t.Fatalf("entry not normalized: %#v", enabled[0].SQS)
	}

	hook, ok := f.Lookup("hook")
	if !ok {
		t.Fatalf("hook not found")
	}
	if hook.HTTP.Method != defaultHTTPMethod || hook.HTTP.TimeoutSeconds != defaultHTTPTimeout {
		t.Fatalf("http defaults not applied: %#v", hook.HTTP)
	}
	if len(hook.HTTP.Headers) != 1 || hook.HTTP.Headers["X-Team"] != "extraction" {
		t.Fatalf("headers not cleaned: %#v", hook.HTTP.Headers)
	}
	if _, ok := f.Lookup("missing"); ok {
		t.Fatalf("unexpected lookup hit")
	}
}

func TestLoadFileJSON(t *testing.T) {
	path := writeSinksFile(t, "sinks.json", `{"sinks":[{"id":"t","type":"sns","sns":{"topic_arn":"arn:aws:sns:us-east-1:1:t","region":"us-east-1"}}]}`)
	f, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if len(f.Sinks) != 1 || f.Sinks[0].SNS.Region != "us-east-1" {
		t.Fatalf("unexpected sinks %#v", f.Sinks)
	}
}

func TestLoadFileRejectsDuplicateIDs(t *testing.T) {
	path := writeSinksFile(t, "sinks.yml", `
sinks:
  - id: a
    type: http
    http: {url: "https://x.example"}
  - id: a
    type: http
    http: {url: "https://y.example"}
`)
	_, err := LoadFile(path)
	if err == nil || !strings.Contains(err.Error(), "already used by entry 0") {
		t.Fatalf("expected duplicate id error, got %v", err)
	}
}

func TestLoadFileMissingPath(t *testing.T) {
	if _, err := LoadFile(" "); err == nil {
		t.Fatalf("expected error for empty path")
	}
	if _, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestPrepareRejectsInvalidEntries(t *testing.T) {
	cases := map[string]SinkConfig{
		"missing id":         {Type: KindHTTP, HTTP: &HTTPSinkConfig{URL: "https://x.example"}},
		"missing type":       {ID: "x"},
		"unknown type":       {ID: "k1", Type: "kafka"},
		"missing block":      {ID: "h1", Type: KindHTTP},
		"relative url":       {ID: "h2", Type: KindHTTP, HTTP: &HTTPSinkConfig{URL: "/hooks"}},
		"bodiless method":    {ID: "h3", Type: KindHTTP, HTTP: &HTTPSinkConfig{URL: "https://x.example", Method: "get"}},
		"sqs without region": {ID: "q1", Type: KindSQS, SQS: &SQSSinkConfig{QueueURL: "https://sqs/q"}},
		"sns without region": {ID: "s1", Type: KindSNS, SNS: &SNSSinkConfig{TopicARN: "arn:aws:sns:::t"}},
		"sns bad arn":        {ID: "s2", Type: KindSNS, SNS: &SNSSinkConfig{TopicARN: "topic", Region: "us-east-1"}},
		"pubsub no topic":    {ID: "p1", Type: KindPubSub, PubSub: &PubSubSinkConfig{ProjectID: "p"}},
	}
	for name, cfg := range cases {
		if err := cfg.prepare(); err == nil {
			t.Fatalf("%s: expected validation error for %#v", name, cfg)
		}
	}
}

func TestRequireFieldsListsEveryMissingField(t *testing.T) {
	err := requireFields(map[string]string{"b": "", "a": "", "c": "set"})
	if err == nil || err.Error() != "a, b required" {
		t.Fatalf("unexpected error %v", err)
	}
}
