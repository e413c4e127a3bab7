package jobs

import "time"

type Status string

const (
	StatusPending Status = "pending"
	StatusRunning Status = "running"
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
)

// WarmJob pre-resolves the UI string set for one target language so
// interactive requests hit the cache instead of the remote engine.
type WarmJob struct {
	ID        string    `json:"id"`
	Language  string    `json:"language"`
	Status    Status    `json:"status"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
