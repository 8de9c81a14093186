package analysis

import (
	"context"
	"errors"
	"testing"
	"time"

	"wellness-backend/internal/stt"
)

// scriptedSTT replays a fixed sequence of poll results after accepting
// the upload and submit calls.
type scriptedSTT struct {
	uploadErr error
	submitErr error
	polls     []stt.Job
	pollErr   error
	pollCalls int
}

func (s *scriptedSTT) Upload(ctx context.Context, audio []byte) (string, error) {
	if s.uploadErr != nil {
		return "", s.uploadErr
	}
	return "https://upload.example/audio-1", nil
}

func (s *scriptedSTT) Submit(ctx context.Context, audioURL string) (string, error) {
	if s.submitErr != nil {
		return "", s.submitErr
	}
	return "job-1", nil
}

func (s *scriptedSTT) Poll(ctx context.Context, jobID string) (stt.Job, error) {
	if s.pollErr != nil {
		return stt.Job{}, s.pollErr
	}
	idx := s.pollCalls
	if idx >= len(s.polls) {
		idx = len(s.polls) - 1
	}
	s.pollCalls++
	return s.polls[idx], nil
}

func TestTranscribeCompletesAfterPolling(t *testing.T) {
	client := &scriptedSTT{polls: []stt.Job{
		{ID: "job-1", Status: stt.StatusQueued},
		{ID: "job-1", Status: stt.StatusProcessing},
		{ID: "job-1", Status: stt.StatusCompleted, Text: "I feel fine"},
	}}
	tr := NewTranscriber(client, time.Millisecond, time.Second)

	text, err := tr.Transcribe(context.Background(), []byte("audio"))
	if err != nil {
		t.Fatalf("Transcribe returned error: %v", err)
	}
	if text != "I feel fine" {
		t.Errorf("text = %q, want %q", text, "I feel fine")
	}
	if client.pollCalls != 3 {
		t.Errorf("poll calls = %d, want 3", client.pollCalls)
	}
}

func TestTranscribeProviderReportsFailure(t *testing.T) {
	client := &scriptedSTT{polls: []stt.Job{
		{ID: "job-1", Status: stt.StatusError, Error: "audio unreadable"},
	}}
	tr := NewTranscriber(client, time.Millisecond, time.Second)

	_, err := tr.Transcribe(context.Background(), []byte("audio"))
	if !errors.Is(err, ErrTranscriptionFailed) {
		t.Fatalf("error = %v, want ErrTranscriptionFailed", err)
	}
}

func TestTranscribeTimesOutWhenNeverTerminal(t *testing.T) {
	client := &scriptedSTT{polls: []stt.Job{
		{ID: "job-1", Status: stt.StatusProcessing},
	}}
	tr := NewTranscriber(client, time.Millisecond, 20*time.Millisecond)

	_, err := tr.Transcribe(context.Background(), []byte("audio"))
	if !errors.Is(err, ErrTranscriptionTimeout) {
		t.Fatalf("error = %v, want ErrTranscriptionTimeout", err)
	}
}

func TestTranscribeCallerCancellation(t *testing.T) {
	client := &scriptedSTT{polls: []stt.Job{
		{ID: "job-1", Status: stt.StatusProcessing},
	}}
	tr := NewTranscriber(client, time.Millisecond, time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	_, err := tr.Transcribe(ctx, []byte("audio"))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}
}

func TestTranscribeUploadFailure(t *testing.T) {
	client := &scriptedSTT{uploadErr: errors.New("connection refused")}
	tr := NewTranscriber(client, time.Millisecond, time.Second)

	_, err := tr.Transcribe(context.Background(), []byte("audio"))
	if !errors.Is(err, ErrUploadFailed) {
		t.Fatalf("error = %v, want ErrUploadFailed", err)
	}
}

func TestTranscribeSubmitFailure(t *testing.T) {
	client := &scriptedSTT{submitErr: errors.New("bad request")}
	tr := NewTranscriber(client, time.Millisecond, time.Second)

	_, err := tr.Transcribe(context.Background(), []byte("audio"))
	if !errors.Is(err, ErrSubmissionFailed) {
		t.Fatalf("error = %v, want ErrSubmissionFailed", err)
	}
}

func TestTranscribeEmptyAudio(t *testing.T) {
	tr := NewTranscriber(&scriptedSTT{}, time.Millisecond, time.Second)

	_, err := tr.Transcribe(context.Background(), nil)
	if !errors.Is(err, ErrEmptyInput) {
		t.Fatalf("error = %v, want ErrEmptyInput", err)
	}
}

func TestTranscribePollErrorSurfacesProviderUnavailable(t *testing.T) {
	client := &scriptedSTT{pollErr: errors.New("boom"), polls: []stt.Job{{}}}
	tr := NewTranscriber(client, time.Millisecond, time.Second)

	_, err := tr.Transcribe(context.Background(), []byte("audio"))
	if !errors.Is(err, ErrProviderUnavailable) {
		t.Fatalf("error = %v, want ErrProviderUnavailable", err)
	}
}

func TestNewTranscriberDefaults(t *testing.T) {
	tr := NewTranscriber(&scriptedSTT{}, 0, 0)
	if tr.PollInterval != defaultPollInterval {
		t.Errorf("PollInterval = %v, want %v", tr.PollInterval, defaultPollInterval)
	}
	if tr.PollTimeout != defaultPollTimeout {
		t.Errorf("PollTimeout = %v, want %v", tr.PollTimeout, defaultPollTimeout)
	}
}
