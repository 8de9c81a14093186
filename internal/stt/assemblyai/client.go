package assemblyai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"wellness-backend/internal/stt"
)

const defaultBaseURL = "https://api.assemblyai.com/v2"

// Client implements stt.Client against the AssemblyAI REST API.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewClient constructs a new AssemblyAI client.
func NewClient(apiKey, baseURL string, timeout time.Duration) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("ASSEMBLYAI_API_KEY is required")
	}
	if strings.TrimSpace(baseURL) == "" {
		baseURL = defaultBaseURL
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

type uploadResponse struct {
	UploadURL string `json:"upload_url"`
}

type transcriptRequest struct {
	AudioURL string `json:"audio_url"`
}

type transcriptResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Text   string `json:"text"`
	Error  string `json:"error"`
}

// Upload sends raw audio bytes and returns an opaque audio URL.
func (c *Client) Upload(ctx context.Context, audio []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/upload", bytes.NewReader(audio))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", c.apiKey)
	req.Header.Set("Content-Type", "application/octet-stream")

	body, err := c.do(req)
	if err != nil {
		return "", fmt.Errorf("audio upload: %w", err)
	}

	var parsed uploadResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("audio upload parse: %w", err)
	}
	if parsed.UploadURL == "" {
		return "", fmt.Errorf("audio upload: missing upload_url")
	}
	return parsed.UploadURL, nil
}

// Submit requests transcription of an uploaded audio URL and returns the job ID.
func (c *Client) Submit(ctx context.Context, audioURL string) (string, error) {
	payload, err := json.Marshal(transcriptRequest{AudioURL: audioURL})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/transcript", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	body, err := c.do(req)
	if err != nil {
		return "", fmt.Errorf("transcript submit: %w", err)
	}

	var parsed transcriptResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("transcript submit parse: %w", err)
	}
	if parsed.ID == "" {
		return "", fmt.Errorf("transcript submit: missing job id")
	}
	return parsed.ID, nil
}

// Poll fetches the current status of a transcription job.
func (c *Client) Poll(ctx context.Context, jobID string) (stt.Job, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/transcript/"+jobID, nil)
	if err != nil {
		return stt.Job{}, err
	}
	req.Header.Set("Authorization", c.apiKey)

	body, err := c.do(req)
	if err != nil {
		return stt.Job{}, fmt.Errorf("transcript poll: %w", err)
	}

	var parsed transcriptResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return stt.Job{}, fmt.Errorf("transcript poll parse: %w", err)
	}
	return stt.Job{
		ID:     parsed.ID,
		Status: normalizeStatus(parsed.Status),
		Text:   parsed.Text,
		Error:  parsed.Error,
	}, nil
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || strings.Contains(err.Error(), "Client.Timeout") {
			return nil, fmt.Errorf("request timeout: %w", err)
		}
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("http status %d: %s", resp.StatusCode, truncate(string(body), 200))
	}
	return body, nil
}

func normalizeStatus(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "completed":
		return stt.StatusCompleted
	case "error", "failed":
		return stt.StatusError
	case "processing":
		return stt.StatusProcessing
	default:
		return stt.StatusQueued
	}
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit]
}

var _ stt.Client = (*Client)(nil)
