package huggingface

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

	"wellness-backend/internal/vision"
)

const defaultBaseURL = "https://api-inference.huggingface.co/models"

// Client implements vision.Client using a HuggingFace image
// classification model for facial expressions.
type Client struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

// NewClient constructs a new HuggingFace inference client.
func NewClient(apiKey, baseURL, model string, timeout time.Duration) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("HF_API_KEY is required")
	}
	if strings.TrimSpace(model) == "" {
		return nil, fmt.Errorf("HF_FACE_MODEL is required")
	}
	if strings.TrimSpace(baseURL) == "" {
		baseURL = defaultBaseURL
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		apiKey:  apiKey,
		model:   model,
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

type classification struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// DetectExpression classifies the image and returns the highest-scoring
// expression label. An empty detection list maps to UnknownExpression.
func (c *Client) DetectExpression(ctx context.Context, image []byte) (string, error) {
	url := c.baseURL + "/" + c.model
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(image))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || strings.Contains(err.Error(), "Client.Timeout") {
			return "", fmt.Errorf("huggingface request timeout: %w", err)
		}
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("huggingface http status %d: %s", resp.StatusCode, truncate(string(body), 200))
	}

	var detections []classification
	if err := json.Unmarshal(body, &detections); err != nil {
		// Some models nest results one level deeper.
		var nested [][]classification
		if nestedErr := json.Unmarshal(body, &nested); nestedErr != nil {
			return "", fmt.Errorf("huggingface response parse: %w", err)
		}
		if len(nested) > 0 {
			detections = nested[0]
		}
	}
	if len(detections) == 0 {
		return vision.UnknownExpression, nil
	}

	best := detections[0]
	for _, d := range detections[1:] {
		if d.Score > best.Score {
			best = d
		}
	}
	label := strings.ToLower(strings.TrimSpace(best.Label))
	if label == "" {
		return vision.UnknownExpression, nil
	}
	return label, nil
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit]
}

var _ vision.Client = (*Client)(nil)
