package analysis

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"wellness-backend/internal/shared/server/middleware"
	"wellness-backend/internal/shared/server/respond"
	"wellness-backend/internal/shared/storage/object"
	"wellness-backend/internal/shared/telemetry"
)

const (
	maxAudioBytes = 10 << 20
	maxImageBytes = 5 << 20
)

// Handler exposes the analysis endpoints. Store is optional; when set,
// raw voice and face inputs are persisted and the storage key is
// returned alongside the result so the client can attach it to a
// session.
type Handler struct {
	Service *Service
	Store   object.ObjectStore
}

// Register mounts the analysis routes on the given group.
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.POST("/text/analyze", h.analyzeText)
	rg.POST("/voice/analyze", h.analyzeVoice)
	rg.POST("/face/analyze", h.analyzeFace)
}

type textAnalyzeRequest struct {
	Text string `json:"text"`
}

func (h *Handler) analyzeText(c *gin.Context) {
	var req textAnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, ErrorCodeValidation, "invalid request body", nil)
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		respond.Error(c, http.StatusBadRequest, ErrorCodeValidation, "text is required", nil)
		return
	}

	result, err := h.Service.AnalyzeText(c.Request.Context(), req.Text)
	if err != nil {
		h.writeError(c, ModalityText, err)
		return
	}
	respond.OK(c, gin.H{"result": result})
}

func (h *Handler) analyzeVoice(c *gin.Context) {
	data, fileName, ok := h.readUpload(c, "audio", maxAudioBytes)
	if !ok {
		return
	}

	inputKey := h.storeInput(c, fileName, data)

	result, err := h.Service.AnalyzeVoice(c.Request.Context(), data)
	if err != nil {
		h.writeError(c, ModalityVoice, err)
		return
	}

	payload := gin.H{"result": result}
	if inputKey != "" {
		payload["inputKey"] = inputKey
	}
	respond.OK(c, payload)
}

func (h *Handler) analyzeFace(c *gin.Context) {
	data, fileName, ok := h.readUpload(c, "image", maxImageBytes)
	if !ok {
		return
	}

	inputKey := h.storeInput(c, fileName, data)

	result, err := h.Service.AnalyzeFace(c.Request.Context(), data)
	if err != nil {
		h.writeError(c, ModalityFace, err)
		return
	}

	payload := gin.H{"result": result}
	if inputKey != "" {
		payload["inputKey"] = inputKey
	}
	respond.OK(c, payload)
}

// readUpload reads a multipart form file into memory, enforcing the
// size limit for the field.
func (h *Handler) readUpload(c *gin.Context, field string, maxBytes int64) ([]byte, string, bool) {
	fileHeader, err := c.FormFile(field)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, ErrorCodeValidation, field+" file is required", nil)
		return nil, "", false
	}
	if fileHeader.Size > maxBytes {
		respond.Error(c, http.StatusRequestEntityTooLarge, ErrorCodeValidation, field+" file exceeds size limit", nil)
		return nil, "", false
	}

	f, err := fileHeader.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, ErrorCodeValidation, "could not read "+field+" file", nil)
		return nil, "", false
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxBytes+1))
	if err != nil {
		respond.Error(c, http.StatusBadRequest, ErrorCodeValidation, "could not read "+field+" file", nil)
		return nil, "", false
	}
	if int64(len(data)) > maxBytes {
		respond.Error(c, http.StatusRequestEntityTooLarge, ErrorCodeValidation, field+" file exceeds size limit", nil)
		return nil, "", false
	}
	if len(data) == 0 {
		respond.Error(c, http.StatusBadRequest, ErrorCodeValidation, field+" file is empty", nil)
		return nil, "", false
	}
	return data, fileHeader.Filename, true
}

// storeInput persists the raw upload when a store is configured. A
// storage failure is logged but never fails the analysis.
func (h *Handler) storeInput(c *gin.Context, fileName string, data []byte) string {
	if h.Store == nil {
		return ""
	}
	userID := middleware.UserIDFromContext(c)
	key, _, _, err := h.Store.Save(context.WithoutCancel(c.Request.Context()), userID, fileName, bytes.NewReader(data))
	if err != nil {
		telemetry.Error("analysis.store_input_failed", map[string]any{
			"user_id": userID,
			"error":   err.Error(),
		})
		return ""
	}
	return key
}

func (h *Handler) writeError(c *gin.Context, modality Modality, err error) {
	switch {
	case errors.Is(err, ErrEmptyInput):
		respond.Error(c, http.StatusBadRequest, ErrorCodeValidation, err.Error(), nil)
	case errors.Is(err, ErrTranscriptionTimeout):
		respond.Error(c, http.StatusGatewayTimeout, ErrorCodeTimeout, "transcription did not finish in time", nil)
	case errors.Is(err, ErrUploadFailed), errors.Is(err, ErrSubmissionFailed), errors.Is(err, ErrTranscriptionFailed):
		respond.Error(c, http.StatusInternalServerError, ErrorCodeTranscription, err.Error(), nil)
	case errors.Is(err, ErrMalformedResponse), errors.Is(err, ErrMissingRequiredField):
		respond.Error(c, http.StatusInternalServerError, ErrorCodeSchemaMismatch, "provider returned an unexpected response", nil)
	case errors.Is(err, ErrProviderUnavailable):
		respond.Error(c, http.StatusInternalServerError, ErrorCodeProviderUnavailable, "analysis provider is unavailable", nil)
	case errors.Is(err, context.Canceled):
		respond.Error(c, http.StatusBadRequest, ErrorCodeValidation, "request cancelled", nil)
	default:
		telemetry.Error("analysis.unexpected_error", map[string]any{
			"modality": string(modality),
			"error":    err.Error(),
		})
		respond.Error(c, http.StatusInternalServerError, ErrorCodeInternal, "analysis failed", nil)
	}
}
