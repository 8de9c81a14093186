package analysis

import (
	"encoding/json"
	"fmt"
	"strings"
)

// rawResult mirrors the provider payload. Pointer fields distinguish
// absent values from zero values; provider output is never trusted to
// be complete or well typed.
type rawResult struct {
	StressScore    *float64 `json:"stressScore"`
	StressLevel    string   `json:"stressLevel"`
	PrimaryEmotion string   `json:"primaryEmotion"`
	Confidence     *float64 `json:"confidence"`
	TextEmotion    string   `json:"textEmotion"`
	FaceEmotion    string   `json:"faceEmotion"`
	VoiceEmotion   string   `json:"voiceEmotion"`
	Tips           []string `json:"tips"`
	Quote          string   `json:"quote"`
}

// emotionPriority is the ordered resolution table for each modality's
// emotion field. The face and voice pathways reuse the text provider's
// output shape, which only natively carries textEmotion, so both fall
// back through textEmotion and primaryEmotion before "unknown".
var emotionPriority = map[Modality][]string{
	ModalityText:  {"textEmotion", "primaryEmotion"},
	ModalityVoice: {"voiceEmotion", "textEmotion", "primaryEmotion"},
	ModalityFace:  {"faceEmotion", "textEmotion", "primaryEmotion"},
}

// Normalize coerces a raw provider payload into the canonical Result.
// It accepts an object or a JSON-in-string payload, clamps numeric
// fields, recomputes the stress level from the clamped score and
// back-fills every emotion field. It is a pure transform.
func Normalize(raw json.RawMessage, modality Modality) (Result, error) {
	payload, err := unwrapPayload(raw)
	if err != nil {
		return Result{}, err
	}

	var parsed rawResult
	if err := json.Unmarshal(payload, &parsed); err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	if parsed.StressScore == nil {
		return Result{}, fmt.Errorf("%w: stressScore", ErrMissingRequiredField)
	}

	score := clamp(*parsed.StressScore, 0, 10)
	confidence := 0.0
	if parsed.Confidence != nil {
		confidence = clamp(*parsed.Confidence, 0, 100)
	}

	out := Result{
		StressScore:    score,
		StressLevel:    LevelForScore(score),
		PrimaryEmotion: fallback(parsed.PrimaryEmotion, UnknownEmotion),
		Confidence:     confidence,
		TextEmotion:    parsed.TextEmotion,
		FaceEmotion:    parsed.FaceEmotion,
		VoiceEmotion:   parsed.VoiceEmotion,
		Tips:           ensureTips(parsed.Tips),
		Quote:          strings.TrimSpace(parsed.Quote),
	}

	resolved := resolveEmotion(parsed, modality)
	switch modality {
	case ModalityVoice:
		out.VoiceEmotion = resolved
	case ModalityFace:
		out.FaceEmotion = resolved
	default:
		out.TextEmotion = resolved
	}

	out.TextEmotion = fallback(out.TextEmotion, UnknownEmotion)
	out.FaceEmotion = fallback(out.FaceEmotion, UnknownEmotion)
	out.VoiceEmotion = fallback(out.VoiceEmotion, UnknownEmotion)

	return out, nil
}

// unwrapPayload strips markdown code fences and unquotes JSON-in-string
// payloads, returning bytes that should parse as an object.
func unwrapPayload(raw json.RawMessage) (json.RawMessage, error) {
	text := strings.TrimSpace(string(raw))
	if text == "" {
		return nil, fmt.Errorf("%w: empty payload", ErrMalformedResponse)
	}

	if strings.HasPrefix(text, `"`) {
		var inner string
		if err := json.Unmarshal([]byte(text), &inner); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
		}
		text = strings.TrimSpace(inner)
	}

	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```")
		text = strings.TrimSuffix(strings.TrimSpace(text), "```")
		text = strings.TrimSpace(text)
	}

	if !strings.HasPrefix(text, "{") {
		return nil, fmt.Errorf("%w: expected JSON object", ErrMalformedResponse)
	}
	return json.RawMessage(text), nil
}

func resolveEmotion(parsed rawResult, modality Modality) string {
	fields := map[string]string{
		"textEmotion":    parsed.TextEmotion,
		"faceEmotion":    parsed.FaceEmotion,
		"voiceEmotion":   parsed.VoiceEmotion,
		"primaryEmotion": parsed.PrimaryEmotion,
	}
	priority, ok := emotionPriority[modality]
	if !ok {
		priority = emotionPriority[ModalityText]
	}
	for _, name := range priority {
		if value := strings.TrimSpace(fields[name]); value != "" && value != UnknownEmotion {
			return value
		}
	}
	return UnknownEmotion
}

func ensureTips(tips []string) []string {
	out := make([]string, 0, len(tips))
	for _, tip := range tips {
		if trimmed := strings.TrimSpace(tip); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func fallback(value, def string) string {
	if strings.TrimSpace(value) == "" {
		return def
	}
	return strings.TrimSpace(value)
}

func clamp(value, lo, hi float64) float64 {
	if value < lo {
		return lo
	}
	if value > hi {
		return hi
	}
	return value
}
