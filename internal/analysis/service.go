package analysis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"wellness-backend/internal/llm"
	"wellness-backend/internal/shared/metrics"
	"wellness-backend/internal/shared/telemetry"
	"wellness-backend/internal/vision"
)

// facePromptPrefix turns a detected expression label into a unit of
// text the scoring provider can handle.
const facePromptPrefix = "Face emotion: "

// Service orchestrates the three modality pipelines. Every modality
// converges on the text-understanding provider so the scoring rubric
// and output schema stay single-sourced.
type Service struct {
	LLM         llm.Client
	Vision      vision.Client
	Transcriber *Transcriber
}

// AnalyzeText scores a unit of user text.
func (s *Service) AnalyzeText(ctx context.Context, text string) (Result, error) {
	return s.analyze(ctx, text, ModalityText)
}

// AnalyzeVoice transcribes the audio, scores the transcript tagged as
// voice and attaches the transcript to the result.
func (s *Service) AnalyzeVoice(ctx context.Context, audio []byte) (Result, error) {
	if s.Transcriber == nil {
		return Result{}, fmt.Errorf("%w: transcription provider not configured", ErrProviderUnavailable)
	}
	started := time.Now()
	metrics.IncAnalysisStarted(string(ModalityVoice))

	transcript, err := s.Transcriber.Transcribe(ctx, audio)
	if err != nil {
		metrics.IncAnalysisFailed(string(ModalityVoice))
		return Result{}, err
	}
	if strings.TrimSpace(transcript) == "" {
		metrics.IncAnalysisFailed(string(ModalityVoice))
		return Result{}, fmt.Errorf("%w: audio contained no recognizable speech", ErrEmptyInput)
	}

	result, err := s.score(ctx, transcript, ModalityVoice)
	if err != nil {
		metrics.IncAnalysisFailed(string(ModalityVoice))
		return Result{}, err
	}
	result.Transcription = transcript

	s.complete(ModalityVoice, started)
	return result, nil
}

// AnalyzeFace detects the dominant facial expression and scores a
// synthetic prompt carrying the label, tagged as face.
func (s *Service) AnalyzeFace(ctx context.Context, image []byte) (Result, error) {
	if s.Vision == nil {
		return Result{}, fmt.Errorf("%w: facial-expression provider not configured", ErrProviderUnavailable)
	}
	if len(image) == 0 {
		return Result{}, fmt.Errorf("%w: no image data", ErrEmptyInput)
	}
	started := time.Now()
	metrics.IncAnalysisStarted(string(ModalityFace))

	label, err := s.Vision.DetectExpression(ctx, image)
	if err != nil {
		metrics.IncAnalysisFailed(string(ModalityFace))
		return Result{}, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	if strings.TrimSpace(label) == "" {
		label = vision.UnknownExpression
	}

	result, err := s.score(ctx, facePromptPrefix+label, ModalityFace)
	if err != nil {
		metrics.IncAnalysisFailed(string(ModalityFace))
		return Result{}, err
	}

	s.complete(ModalityFace, started)
	return result, nil
}

func (s *Service) analyze(ctx context.Context, text string, modality Modality) (Result, error) {
	started := time.Now()
	metrics.IncAnalysisStarted(string(modality))

	result, err := s.score(ctx, text, modality)
	if err != nil {
		metrics.IncAnalysisFailed(string(modality))
		return Result{}, err
	}

	s.complete(modality, started)
	return result, nil
}

// score is the shared text-understanding step used by all modalities.
func (s *Service) score(ctx context.Context, text string, modality Modality) (Result, error) {
	if strings.TrimSpace(text) == "" {
		return Result{}, ErrEmptyInput
	}
	if s.LLM == nil {
		return Result{}, fmt.Errorf("%w: text-understanding provider not configured", ErrProviderUnavailable)
	}

	raw, err := s.LLM.Analyze(ctx, llm.AnalyzeInput{Text: text, Modality: string(modality)})
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}

	result, err := Normalize(raw, modality)
	if err != nil {
		telemetry.Error("analysis.normalize_failed", map[string]any{
			"modality": string(modality),
			"error":    err.Error(),
		})
		return Result{}, err
	}
	return result, nil
}

func (s *Service) complete(modality Modality, started time.Time) {
	duration := float64(time.Since(started).Microseconds()) / 1000.0
	metrics.IncAnalysisCompleted(string(modality))
	metrics.ObserveAnalysisDurationMs(duration)
	telemetry.Info("analysis.completed", map[string]any{
		"modality":    string(modality),
		"duration_ms": duration,
	})
}
