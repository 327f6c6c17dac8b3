// Package jobs owns the job queue: persistence, the single-consumer worker
// loop and progress tracking.
package jobs

import (
	"crypto/rand"
	"encoding/json"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/Ansarii/autopromo-video/internal/config"
)

// Job statuses.
const (
	StatusQueued     = "queued"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// Job is one video generation request and its lifecycle state.
type Job struct {
	ID        string          `json:"id"`
	ClientID  string          `json:"clientId"`
	Request   config.Request  `json:"request"`
	Status    string          `json:"status"`
	Progress  int             `json:"progress"`
	Error     string          `json:"error,omitempty"`
	VideoURL  string          `json:"videoUrl,omitempty"`
	PosterURL string          `json:"posterUrl,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
	Meta      json.RawMessage `json:"meta,omitempty"`
}

// NewJob creates a queued job with a fresh ULID. ULIDs sort by creation
// time, which keeps job listings chronological for free.
func NewJob(clientID string, req config.Request) *Job {
	now := time.Now().UTC()
	return &Job{
		ID:        ulid.MustNew(ulid.Timestamp(now), rand.Reader).String(),
		ClientID:  clientID,
		Request:   req,
		Status:    StatusQueued,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// AdvanceProgress raises progress to p. Progress is monotonic: a stage that
// reports less than an earlier stage is ignored, so the UI bar never moves
// backwards.
func (j *Job) AdvanceProgress(p int) {
	if p > 100 {
		p = 100
	}
	if p > j.Progress {
		j.Progress = p
		j.UpdatedAt = time.Now().UTC()
	}
}

// MarkProcessing transitions a queued job to processing.
func (j *Job) MarkProcessing() {
	j.Status = StatusProcessing
	j.UpdatedAt = time.Now().UTC()
}

// MarkCompleted finalizes a successful job.
func (j *Job) MarkCompleted(videoURL, posterURL string) {
	j.Status = StatusCompleted
	j.VideoURL = videoURL
	j.PosterURL = posterURL
	j.Progress = 100
	j.UpdatedAt = time.Now().UTC()
}

// MarkFailed finalizes a failed job with its error message.
func (j *Job) MarkFailed(err error) {
	j.Status = StatusFailed
	if err != nil {
		j.Error = err.Error()
	}
	j.UpdatedAt = time.Now().UTC()
}

// Redacted returns a copy safe for read surfaces: credentials are write-only,
// so the password is masked while the stored job keeps it for login.
func (j *Job) Redacted() Job {
	out := *j
	if j.Request.Credentials != nil {
		creds := *j.Request.Credentials
		creds.Password = "[redacted]"
		out.Request.Credentials = &creds
	}
	return out
}

// Encode serializes the job for storage.
func (j *Job) Encode() (string, error) {
	data, err := json.Marshal(j)
	if err != nil {
		return "", fmt.Errorf("encode job %s: %w", j.ID, err)
	}
	return string(data), nil
}

// DecodeJob deserializes a stored job.
func DecodeJob(data string) (*Job, error) {
	var j Job
	if err := json.Unmarshal([]byte(data), &j); err != nil {
		return nil, fmt.Errorf("decode job: %w", err)
	}
	return &j, nil
}
