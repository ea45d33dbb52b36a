package sinks

import "time"

// Event is the payload sinks receive once a job reaches a terminal state.
type Event struct {
	JobID      string    `json:"job_id"`
	WorkflowID string    `json:"workflow_id,omitempty"`
	Status     string    `json:"status"`
	Result     any       `json:"result,omitempty"`
	Error      string    `json:"error,omitempty"`
	ObservedAt time.Time `json:"observed_at"`
}

// NewEvent stamps a job outcome with the current time.
func NewEvent(jobID, workflowID, status string, result any, errMsg string) Event {
	return Event{
		JobID:      jobID,
		WorkflowID: workflowID,
		Status:     status,
		Result:     result,
		Error:      errMsg,
		ObservedAt: time.Now().UTC(),
	}
}

// attributes are routing hints carried next to the payload. Empty values are left out.
func (e Event) attributes() map[string]string {
	attrs := make(map[string]string, 3)
	for k, v := range map[string]string{
		"job_id":      e.JobID,
		"job_status":  e.Status,
		"workflow_id": e.WorkflowID,
	} {
		if v != "" {
			attrs[k] = v
		}
	}
	return attrs
}

// convertAttributes maps string attributes onto a backend's attribute type.
func convertAttributes[V any](attrs map[string]string, conv func(string) V) map[string]V {
	out := make(map[string]V, len(attrs))
	for k, v := range attrs {
		out[k] = conv(v)
	}
	return out
}
