package sessions

import (
	"errors"
	"io"
	"net/http"
	"path"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"wellness-backend/internal/analysis"
	"wellness-backend/internal/shared/server/middleware"
	"wellness-backend/internal/shared/server/respond"
	"wellness-backend/internal/shared/storage/object"
)

const (
	errorCodeValidation = "VALIDATION_ERROR"
	errorCodeNotFound   = "NOT_FOUND"
	errorCodeStorage    = "STORAGE_UNAVAILABLE"
	maxNotesLength      = 4000
	maxListLimitParam   = 100
)

// Handler exposes the session history endpoints.
type Handler struct {
	Service *Service
	Store   object.ObjectStore
}

// Register mounts the session routes on the given group.
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.POST("/sessions", h.create)
	rg.GET("/sessions", h.list)
	rg.GET("/sessions/trend", h.trend)
	rg.GET("/sessions/:id", h.get)
	rg.GET("/sessions/:id/input", h.downloadInput)
	rg.PATCH("/sessions/:id/notes", h.updateNotes)
}

type createSessionRequest struct {
	Type     string          `json:"type"`
	InputKey string          `json:"inputKey"`
	Analysis analysis.Result `json:"analysis"`
	Notes    string          `json:"notes"`
}

func (h *Handler) create(c *gin.Context) {
	var req createSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, errorCodeValidation, "invalid request body", nil)
		return
	}
	if len(req.Notes) > maxNotesLength {
		respond.Error(c, http.StatusBadRequest, errorCodeValidation, "notes too long", nil)
		return
	}

	record, err := h.Service.Save(c.Request.Context(), SaveInput{
		UserID:   middleware.UserIDFromContext(c),
		Type:     req.Type,
		InputKey: req.InputKey,
		Analysis: req.Analysis,
		Notes:    req.Notes,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	respond.Success(c, http.StatusCreated, gin.H{"session": record})
}

func (h *Handler) list(c *gin.Context) {
	limit := intQuery(c, "limit", 20)
	offset := intQuery(c, "offset", 0)
	if limit > maxListLimitParam {
		limit = maxListLimitParam
	}

	records, err := h.Service.List(c.Request.Context(), middleware.UserIDFromContext(c), limit, offset)
	if err != nil {
		h.writeError(c, err)
		return
	}
	respond.OK(c, gin.H{"sessions": records})
}

func (h *Handler) get(c *gin.Context) {
	record, err := h.Service.Get(c.Request.Context(), c.Param("id"), middleware.UserIDFromContext(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	respond.OK(c, gin.H{"session": record})
}

// downloadInput streams the raw upload that produced a session's
// analysis. Sessions recorded without a stored input have no file to
// serve and report not found.
func (h *Handler) downloadInput(c *gin.Context) {
	record, err := h.Service.Get(c.Request.Context(), c.Param("id"), middleware.UserIDFromContext(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	if record.InputKey == "" || h.Store == nil {
		respond.Error(c, http.StatusNotFound, errorCodeNotFound, "no stored input for this session", nil)
		return
	}

	reader, err := h.Store.Open(c.Request.Context(), record.InputKey)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, errorCodeStorage, "failed to load stored input", nil)
		return
	}
	defer reader.Close()

	c.Header("Content-Type", "application/octet-stream")
	c.Header("Content-Disposition", "attachment; filename=\""+path.Base(record.InputKey)+"\"")
	c.Status(http.StatusOK)
	_, _ = io.Copy(c.Writer, reader)
}

func (h *Handler) trend(c *gin.Context) {
	limit := intQuery(c, "limit", 0)

	points, err := h.Service.Trend(c.Request.Context(), middleware.UserIDFromContext(c), limit)
	if err != nil {
		h.writeError(c, err)
		return
	}
	respond.OK(c, gin.H{"trend": points})
}

type updateNotesRequest struct {
	Notes string `json:"notes"`
}

func (h *Handler) updateNotes(c *gin.Context) {
	var req updateNotesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, errorCodeValidation, "invalid request body", nil)
		return
	}
	if len(req.Notes) > maxNotesLength {
		respond.Error(c, http.StatusBadRequest, errorCodeValidation, "notes too long", nil)
		return
	}

	err := h.Service.UpdateNotes(c.Request.Context(), c.Param("id"), middleware.UserIDFromContext(c), req.Notes)
	if err != nil {
		h.writeError(c, err)
		return
	}
	respond.OK(c, gin.H{"updated": true})
}

func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrInvalidRecord):
		respond.Error(c, http.StatusBadRequest, errorCodeValidation, err.Error(), nil)
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, errorCodeNotFound, "session not found", nil)
	case errors.Is(err, ErrStorageUnavailable):
		respond.Error(c, http.StatusInternalServerError, errorCodeStorage, "session storage is unavailable", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "request failed", nil)
	}
}

func intQuery(c *gin.Context, name string, def int) int {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return def
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return value
}
