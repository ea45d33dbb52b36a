package extractor

import (
	"encoding/json"
	"fmt"
)

// JobStatus is the lifecycle state the service reports for a job.
type JobStatus string

const (
	JobQueued     JobStatus = "queued"
	JobProcessing JobStatus = "processing"
	JobDone       JobStatus = "done"
	JobFailed     JobStatus = "failed"
)

// Terminal reports whether the job will not change state again.
func (s JobStatus) Terminal() bool { return s == JobDone || s == JobFailed }

// Accepted is the reply to Extract.
type Accepted struct {
	JobID string `json:"job_id"`
}

// JobRecord is the reply to Job.
type JobRecord struct {
	ID     string    `json:"id"`
	Status JobStatus `json:"status"`
	Result any       `json:"result,omitempty"`
	Error  string    `json:"error,omitempty"`
}

// As re-decodes a generic response into T.
func As[T any](resp Response) (T, error) {
	var out T
	raw, err := json.Marshal(resp)
	if err != nil {
		return out, fmt.Errorf("re-encode response: %w", err)
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("decode response as %T: %w", out, err)
	}
	return out, nil
}
