package domain

import "time"

// JobEntry is a ledger record for a job submitted through this client.
type JobEntry struct {
	ID          string    `json:"id"`
	WorkflowID  string    `json:"workflow_id,omitempty"`
	Status      string    `json:"status"`
	SubmittedAt time.Time `json:"submitted_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	// Delivered is set once a terminal status has been forwarded to the sinks.
	Delivered bool `json:"delivered,omitempty"`
}
