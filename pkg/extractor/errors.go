package extractor

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

var errInvalidUTF8 = errors.New("response body is not valid UTF-8")

// StatusError reports a response outside the 2xx range.
type StatusError struct {
	Method     string
	URL        string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s %s: http response status %d", e.Method, e.URL, e.StatusCode)
	}
	return fmt.Sprintf("%s %s: http response status %d: %s", e.Method, e.URL, e.StatusCode, e.Body)
}

// DecodeError reports a response body that is not valid UTF-8 JSON.
type DecodeError struct {
	URL string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode response from %s: %v", e.URL, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

func bodySnippet(body []byte) string {
	const maxLen = 512
	s := strings.TrimSpace(string(body))
	if len(s) <= maxLen {
		return s
	}
	cut := maxLen
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
