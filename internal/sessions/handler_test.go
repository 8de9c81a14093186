package sessions

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"wellness-backend/internal/analysis"
	"wellness-backend/internal/shared/server/middleware"
)

func newTestRouter(h *Handler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.Identity())
	h.Register(r.Group("/api"))
	return r
}

func TestCreateAndListSessions(t *testing.T) {
	router := newTestRouter(&Handler{Service: NewService(NewMemoryRepo())})

	body := `{
		"type": "text",
		"analysis": {"stressScore": 7, "stressLevel": "high", "textEmotion": "worried"},
		"notes": "exam week"
	}`
	req := httptest.NewRequest(http.MethodPost, "/api/sessions", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-Id", "user-1")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body = %s", w.Code, w.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/api/sessions", nil)
	req.Header.Set("X-User-Id", "user-1")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("list status = %d, body = %s", w.Code, w.Body.String())
	}
	var envelope struct {
		Data struct {
			Sessions []SessionRecord `json:"sessions"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(envelope.Data.Sessions) != 1 {
		t.Fatalf("len(sessions) = %d, want 1", len(envelope.Data.Sessions))
	}
	got := envelope.Data.Sessions[0]
	if got.Notes != "exam week" {
		t.Errorf("Notes = %q, want %q", got.Notes, "exam week")
	}
	if got.Analysis.StressLevel != "high" {
		t.Errorf("StressLevel = %q, want high", got.Analysis.StressLevel)
	}
}

func TestListSessionsScopedToIdentity(t *testing.T) {
	repo := NewMemoryRepo()
	svc := NewService(repo)
	if _, err := svc.Save(context.Background(), SaveInput{
		UserID:   "user-1",
		Type:     "text",
		Analysis: analysis.Result{StressScore: 2, StressLevel: "low"},
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	router := newTestRouter(&Handler{Service: svc})

	req := httptest.NewRequest(http.MethodGet, "/api/sessions", nil)
	req.Header.Set("X-User-Id", "user-2")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var envelope struct {
		Data struct {
			Sessions []SessionRecord `json:"sessions"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(envelope.Data.Sessions) != 0 {
		t.Errorf("user-2 sees %d sessions, want 0", len(envelope.Data.Sessions))
	}
}

func TestTrendEndpointAscending(t *testing.T) {
	repo := NewMemoryRepo()
	base := time.Now().UTC()
	for i, score := range []float64{8, 2, 5} {
		_ = repo.Create(context.Background(), SessionRecord{
			ID:        string(rune('a' + i)),
			UserID:    "user-1",
			Type:      "text",
			Analysis:  analysis.Result{StressScore: score, StressLevel: analysis.LevelForScore(score)},
			CreatedAt: base.Add(time.Duration(2-i) * time.Hour),
		})
	}
	router := newTestRouter(&Handler{Service: NewService(repo)})

	req := httptest.NewRequest(http.MethodGet, "/api/sessions/trend", nil)
	req.Header.Set("X-User-Id", "user-1")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var envelope struct {
		Data struct {
			Trend []StressTrendPoint `json:"trend"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	points := envelope.Data.Trend
	if len(points) != 3 {
		t.Fatalf("len(trend) = %d, want 3", len(points))
	}
	for i := 1; i < len(points); i++ {
		if points[i].Timestamp.Before(points[i-1].Timestamp) {
			t.Errorf("trend not ascending at index %d", i)
		}
	}
}

func TestCreateSessionRejectsUnknownType(t *testing.T) {
	router := newTestRouter(&Handler{Service: NewService(NewMemoryRepo())})

	body := `{"type": "dream", "analysis": {"stressScore": 1, "stressLevel": "low"}}`
	req := httptest.NewRequest(http.MethodPost, "/api/sessions", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-Id", "user-1")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestUpdateNotesEndpoint(t *testing.T) {
	repo := NewMemoryRepo()
	svc := NewService(repo)
	record, err := svc.Save(context.Background(), SaveInput{
		UserID:   "user-1",
		Type:     "voice",
		Analysis: analysis.Result{StressScore: 5, StressLevel: "medium"},
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	router := newTestRouter(&Handler{Service: svc})

	req := httptest.NewRequest(http.MethodPatch, "/api/sessions/"+record.ID+"/notes", strings.NewReader(`{"notes": "feeling better"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-Id", "user-1")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	got, err := repo.GetByID(context.Background(), record.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Notes != "feeling better" {
		t.Errorf("Notes = %q, want %q", got.Notes, "feeling better")
	}
}

func TestUpdateNotesWrongOwner(t *testing.T) {
	svc := NewService(NewMemoryRepo())
	record, err := svc.Save(context.Background(), SaveInput{
		UserID:   "user-1",
		Type:     "text",
		Analysis: analysis.Result{StressScore: 5, StressLevel: "medium"},
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	router := newTestRouter(&Handler{Service: svc})

	req := httptest.NewRequest(http.MethodPatch, "/api/sessions/"+record.ID+"/notes", strings.NewReader(`{"notes": "hijack"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-Id", "user-2")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}

type fakeStore struct {
	objects map[string][]byte
}

func (s *fakeStore) Save(ctx context.Context, userID, fileName string, r io.Reader) (string, int64, string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", 0, "", err
	}
	key := userID + "/" + fileName
	if s.objects == nil {
		s.objects = map[string][]byte{}
	}
	s.objects[key] = data
	return key, int64(len(data)), "application/octet-stream", nil
}

func (s *fakeStore) Open(ctx context.Context, storageKey string) (io.ReadCloser, error) {
	data, ok := s.objects[storageKey]
	if !ok {
		return nil, errors.New("object not found")
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func TestDownloadSessionInput(t *testing.T) {
	store := &fakeStore{objects: map[string][]byte{"user-1/clip.wav": []byte("fake-audio")}}
	svc := NewService(NewMemoryRepo())
	record, err := svc.Save(context.Background(), SaveInput{
		UserID:   "user-1",
		Type:     "voice",
		InputKey: "user-1/clip.wav",
		Analysis: analysis.Result{StressScore: 2, StressLevel: "low"},
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	router := newTestRouter(&Handler{Service: svc, Store: store})

	req := httptest.NewRequest(http.MethodGet, "/api/sessions/"+record.ID+"/input", nil)
	req.Header.Set("X-User-Id", "user-1")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if w.Body.String() != "fake-audio" {
		t.Errorf("body = %q, want %q", w.Body.String(), "fake-audio")
	}
	if got := w.Header().Get("Content-Disposition"); !strings.Contains(got, "clip.wav") {
		t.Errorf("Content-Disposition = %q, want filename clip.wav", got)
	}
}

func TestDownloadSessionInputNotStored(t *testing.T) {
	svc := NewService(NewMemoryRepo())
	record, err := svc.Save(context.Background(), SaveInput{
		UserID:   "user-1",
		Type:     "text",
		Analysis: analysis.Result{StressScore: 2, StressLevel: "low"},
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	router := newTestRouter(&Handler{Service: svc, Store: &fakeStore{}})

	req := httptest.NewRequest(http.MethodGet, "/api/sessions/"+record.ID+"/input", nil)
	req.Header.Set("X-User-Id", "user-1")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}

func TestDownloadSessionInputWrongOwner(t *testing.T) {
	store := &fakeStore{objects: map[string][]byte{"user-1/clip.wav": []byte("fake-audio")}}
	svc := NewService(NewMemoryRepo())
	record, err := svc.Save(context.Background(), SaveInput{
		UserID:   "user-1",
		Type:     "voice",
		InputKey: "user-1/clip.wav",
		Analysis: analysis.Result{StressScore: 2, StressLevel: "low"},
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	router := newTestRouter(&Handler{Service: svc, Store: store})

	req := httptest.NewRequest(http.MethodGet, "/api/sessions/"+record.ID+"/input", nil)
	req.Header.Set("X-User-Id", "user-2")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}
