package huggingface

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"wellness-backend/internal/vision"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client, err := NewClient("test-key", srv.URL, "face-model", 5*time.Second)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return client
}

func TestDetectExpressionPicksHighestScore(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/face-model" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`[{"label":"Neutral","score":0.2},{"label":"Sad","score":0.7},{"label":"Happy","score":0.1}]`))
	})

	label, err := client.DetectExpression(context.Background(), []byte("img"))
	if err != nil {
		t.Fatalf("DetectExpression: %v", err)
	}
	if label != "sad" {
		t.Fatalf("label = %q, want sad", label)
	}
}

func TestDetectExpressionNestedResponse(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[[{"label":"angry","score":0.9}]]`))
	})

	label, err := client.DetectExpression(context.Background(), []byte("img"))
	if err != nil {
		t.Fatalf("DetectExpression: %v", err)
	}
	if label != "angry" {
		t.Fatalf("label = %q, want angry", label)
	}
}

func TestDetectExpressionNoFaces(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	})

	label, err := client.DetectExpression(context.Background(), []byte("img"))
	if err != nil {
		t.Fatalf("DetectExpression: %v", err)
	}
	if label != vision.UnknownExpression {
		t.Fatalf("label = %q, want %q", label, vision.UnknownExpression)
	}
}

func TestDetectExpressionProviderError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error":"model loading"}`))
	})

	_, err := client.DetectExpression(context.Background(), []byte("img"))
	if err == nil || !strings.Contains(err.Error(), "http status 503") {
		t.Fatalf("expected status error, got %v", err)
	}
}
