package stt

import "context"

// Job statuses reported by the transcription provider.
const (
	StatusQueued     = "queued"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusError      = "error"
)

// Job is a snapshot of a transcription job at the provider.
type Job struct {
	ID     string
	Status string
	Text   string
	Error  string
}

// Terminal reports whether the job has reached a final status.
func (j Job) Terminal() bool {
	return j.Status == StatusCompleted || j.Status == StatusError
}

// Client abstracts the three-endpoint speech-to-text provider contract:
// upload raw bytes, submit a transcription job, poll its status.
type Client interface {
	Upload(ctx context.Context, audio []byte) (audioURL string, err error)
	Submit(ctx context.Context, audioURL string) (jobID string, err error)
	Poll(ctx context.Context, jobID string) (Job, error)
}
