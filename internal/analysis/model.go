package analysis

// Modality identifies the kind of raw input supplied by the caller.
type Modality string

const (
	ModalityText  Modality = "text"
	ModalityVoice Modality = "voice"
	ModalityFace  Modality = "face"
)

// Valid reports whether the modality is one of the known kinds.
func (m Modality) Valid() bool {
	switch m {
	case ModalityText, ModalityVoice, ModalityFace:
		return true
	}
	return false
}

// Stress levels derived from the stress score.
const (
	LevelLow    = "low"
	LevelMedium = "medium"
	LevelHigh   = "high"
)

// UnknownEmotion is the fallback label when no emotion field resolves.
const UnknownEmotion = "unknown"

// Result is the canonical analysis output. Every Result surfaced to a
// client or persisted has all required fields populated.
type Result struct {
	StressScore    float64  `json:"stressScore"`
	StressLevel    string   `json:"stressLevel"`
	PrimaryEmotion string   `json:"primaryEmotion"`
	Confidence     float64  `json:"confidence"`
	TextEmotion    string   `json:"textEmotion"`
	FaceEmotion    string   `json:"faceEmotion"`
	VoiceEmotion   string   `json:"voiceEmotion"`
	Tips           []string `json:"tips"`
	Quote          string   `json:"quote"`
	Transcription  string   `json:"transcription,omitempty"`
}

// LevelForScore maps a stress score to its level: <4 low, [4,7) medium, >=7 high.
func LevelForScore(score float64) string {
	switch {
	case score < 4:
		return LevelLow
	case score < 7:
		return LevelMedium
	default:
		return LevelHigh
	}
}

// emotionFor returns the resolved emotion field for a modality.
func (r Result) emotionFor(modality Modality) string {
	switch modality {
	case ModalityVoice:
		return r.VoiceEmotion
	case ModalityFace:
		return r.FaceEmotion
	default:
		return r.TextEmotion
	}
}
