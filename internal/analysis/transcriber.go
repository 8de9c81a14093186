package analysis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"wellness-backend/internal/shared/metrics"
	"wellness-backend/internal/shared/telemetry"
	"wellness-backend/internal/stt"
)

// JobState tracks a transcription job through its lifecycle.
type JobState string

const (
	JobSubmitted JobState = "submitted"
	JobPolling   JobState = "polling"
	JobCompleted JobState = "completed"
	JobFailed    JobState = "failed"
)

const (
	defaultPollInterval = 2 * time.Second
	defaultPollTimeout  = 120 * time.Second
)

// TranscriptionJob is the driver-side view of an external speech-to-text
// job. Transitions are driven only by polling the provider; the job
// terminates on JobCompleted or JobFailed and is never retried.
type TranscriptionJob struct {
	ID    string
	State JobState
	Text  string
	Polls int
}

// Transcriber drives an external transcription job to completion:
// upload, submit, then poll at a fixed interval until a terminal status
// or the configured deadline.
type Transcriber struct {
	Client       stt.Client
	PollInterval time.Duration
	PollTimeout  time.Duration
}

// NewTranscriber constructs a Transcriber with defaults applied.
func NewTranscriber(client stt.Client, pollInterval, pollTimeout time.Duration) *Transcriber {
	if pollInterval <= 0 {
		pollInterval = defaultPollInterval
	}
	if pollTimeout <= 0 {
		pollTimeout = defaultPollTimeout
	}
	return &Transcriber{
		Client:       client,
		PollInterval: pollInterval,
		PollTimeout:  pollTimeout,
	}
}

// Transcribe runs the full upload/submit/poll lifecycle and returns the
// transcript text. It blocks the caller for up to PollTimeout and is
// cancellable through ctx.
func (t *Transcriber) Transcribe(ctx context.Context, audio []byte) (string, error) {
	if t.Client == nil {
		return "", fmt.Errorf("%w: transcription provider not configured", ErrProviderUnavailable)
	}
	if len(audio) == 0 {
		return "", fmt.Errorf("%w: no audio data", ErrEmptyInput)
	}

	audioURL, err := t.Client.Upload(ctx, audio)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}

	jobID, err := t.Client.Submit(ctx, audioURL)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSubmissionFailed, err)
	}

	job := TranscriptionJob{ID: jobID, State: JobSubmitted}
	telemetry.Info("transcription.submitted", map[string]any{"job_id": job.ID})

	return t.poll(ctx, &job)
}

func (t *Transcriber) poll(ctx context.Context, job *TranscriptionJob) (string, error) {
	pollCtx, cancel := context.WithTimeout(ctx, t.PollTimeout)
	defer cancel()

	job.State = JobPolling
	ticker := time.NewTicker(t.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-pollCtx.Done():
			job.State = JobFailed
			// Distinguish caller cancellation from the poll deadline.
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			telemetry.Error("transcription.timeout", map[string]any{"job_id": job.ID, "polls": job.Polls})
			return "", fmt.Errorf("%w: no terminal status after %s", ErrTranscriptionTimeout, t.PollTimeout)
		case <-ticker.C:
			status, err := t.Client.Poll(pollCtx, job.ID)
			if err != nil {
				if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
					continue
				}
				job.State = JobFailed
				return "", fmt.Errorf("%w: poll: %v", ErrProviderUnavailable, err)
			}
			job.Polls++
			metrics.IncTranscriptionPoll(status.Status)

			if !status.Terminal() {
				continue
			}
			if status.Status == stt.StatusError {
				job.State = JobFailed
				reason := status.Error
				if reason == "" {
					reason = "provider reported failure"
				}
				telemetry.Error("transcription.failed", map[string]any{"job_id": job.ID, "reason": reason})
				return "", fmt.Errorf("%w: %s", ErrTranscriptionFailed, reason)
			}

			job.State = JobCompleted
			job.Text = status.Text
			telemetry.Info("transcription.completed", map[string]any{"job_id": job.ID, "polls": job.Polls})
			return status.Text, nil
		}
	}
}
