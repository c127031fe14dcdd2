package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"quiz_adaptive_backend/internal/config"
	"quiz_adaptive_backend/internal/model"
	"quiz_adaptive_backend/internal/recommend"
	"quiz_adaptive_backend/internal/service"
	"quiz_adaptive_backend/internal/util"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
	if err := util.RegisterValidators(); err != nil {
		panic(err)
	}
}

type stubHistory struct {
	history map[string][]model.AnswerRecord
	err     error
}

func (s *stubHistory) FetchHistory(ctx context.Context, userID uint, category string, limit int) ([]model.AnswerRecord, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.history[category], nil
}

func (s *stubHistory) Summarize(ctx context.Context, userID uint, category string) (*model.AnswerSummary, error) {
	return nil, s.err
}

func (s *stubHistory) Categories(ctx context.Context, userID uint) ([]string, error) {
	if s.err != nil {
		return nil, s.err
	}
	out := make([]string, 0, len(s.history))
	for k := range s.history {
		out = append(out, k)
	}
	return out, nil
}

type stubWriter struct {
	records []*model.AnswerRecord
}

func (s *stubWriter) Create(ctx context.Context, record *model.AnswerRecord) error {
	s.records = append(s.records, record)
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		Recommendation: config.RecommendationConfig{RecentWindow: 10, BucketSize: 10, MaxParallel: 2},
		Breaker:        config.BreakerConfig{FailureThreshold: 100, Timeout: time.Minute},
	}
}

func correctHistory(category string, n int) []model.AnswerRecord {
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	out := make([]model.AnswerRecord, n)
	for i := range out {
		ok, rt, at := true, 20.0, base.Add(time.Duration(i)*time.Minute)
		out[i] = model.AnswerRecord{Category: category, Correct: &ok, ResponseTime: &rt, AnsweredAt: &at}
	}
	return out
}

// withUser 模拟 AuthMiddleware 写入的用户信息
func withUser(id uint, role model.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user", &util.Claims{UserID: id, Role: role})
		c.Next()
	}
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func do(t *testing.T, r *gin.Engine, method, path string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
	return w, env
}

func newRecommendationRouter(store service.HistoryStore) *gin.Engine {
	taxonomy := recommend.NewStaticTaxonomy(recommend.DefaultSeeds())
	recSvc := service.NewRecommendationService(store, taxonomy, nil, testConfig())
	tipsSvc := service.NewStudyTipsService(recSvc, taxonomy, nil, nil, config.AIConfig{})
	c := NewRecommendationController(recSvc, tipsSvc)

	r := gin.New()
	api := r.Group("/api", withUser(1, model.Student))
	api.GET("/recommendations", c.GetRecommendations)
	api.GET("/recommendations/next-question", c.GetNextQuestion)
	api.GET("/recommendations/performance", c.GetPerformance)
	api.GET("/recommendations/study-tips", c.GetStudyTips)
	r.GET("/api/admin/users/:userId/recommendations", c.GetUserRecommendations)
	return r
}

func TestRecommendationController_Recommendations(t *testing.T) {
	r := newRecommendationRouter(&stubHistory{history: map[string][]model.AnswerRecord{
		"PSPO1": correctHistory("PSPO1", 12),
	}})

	w, env := do(t, r, http.MethodGet, "/api/recommendations", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	var resp model.RecommendationResponse
	if err := json.Unmarshal(env.Data, &resp); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if resp.UserID != 1 || len(resp.Recommendations) != 1 || resp.Recommendations[0].Category != "PSPO1" {
		t.Errorf("unexpected response %+v", resp)
	}

	w, _ = do(t, r, http.MethodGet, "/api/admin/users/abc/recommendations", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("invalid user id: status = %d", w.Code)
	}
}

func TestRecommendationController_UpstreamFailure(t *testing.T) {
	r := newRecommendationRouter(&stubHistory{err: errors.New("db down")})

	tests := []struct {
		path string
		want int
	}{
		{"/api/recommendations", http.StatusServiceUnavailable},
		{"/api/recommendations?category=PSPO1", http.StatusServiceUnavailable},
		{"/api/recommendations/next-question?category=PSPO1", http.StatusServiceUnavailable},
		{"/api/recommendations/performance?category=PSPO1", http.StatusServiceUnavailable},
		// 学习建议从不失败
		{"/api/recommendations/study-tips?category=PSPO1", http.StatusOK},
	}
	for _, tt := range tests {
		if w, _ := do(t, r, http.MethodGet, tt.path, nil); w.Code != tt.want {
			t.Errorf("GET %s: status = %d, want %d", tt.path, w.Code, tt.want)
		}
	}
}

func TestRecommendationController_NextQuestion(t *testing.T) {
	r := newRecommendationRouter(&stubHistory{history: map[string][]model.AnswerRecord{}})

	tests := []struct {
		name  string
		query string
		want  int
	}{
		{"defaults without history", "?category=PSPO1", http.StatusOK},
		{"with session", "?category=PSPO1&correct=2&total=4", http.StatusOK},
		{"missing category", "", http.StatusBadRequest},
		{"negative total", "?category=PSPO1&total=-1", http.StatusBadRequest},
		{"correct above total", "?category=PSPO1&correct=5&total=4", http.StatusBadRequest},
		{"not a number", "?category=PSPO1&correct=x", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, env := do(t, r, http.MethodGet, "/api/recommendations/next-question"+tt.query, nil)
			if w.Code != tt.want {
				t.Fatalf("status = %d, want %d (%s)", w.Code, tt.want, w.Body.String())
			}
			if tt.want != http.StatusOK {
				return
			}
			var resp model.NextQuestionResponse
			if err := json.Unmarshal(env.Data, &resp); err != nil {
				t.Fatalf("decode data: %v", err)
			}
			if resp.Category != "PSPO1" || resp.Difficulty != recommend.DefaultNextQuestion().Difficulty {
				t.Errorf("unexpected params %+v", resp)
			}
		})
	}
}

func TestRecommendationController_PerformanceNoData(t *testing.T) {
	r := newRecommendationRouter(&stubHistory{history: map[string][]model.AnswerRecord{}})

	w, _ := do(t, r, http.MethodGet, "/api/recommendations/performance?category=PSPO1", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestRecommendationController_StudyTips(t *testing.T) {
	r := newRecommendationRouter(&stubHistory{history: map[string][]model.AnswerRecord{}})

	w, env := do(t, r, http.MethodGet, "/api/recommendations/study-tips?category=PSPO1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp model.StudyTipsResponse
	if err := json.Unmarshal(env.Data, &resp); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if resp.Source != "default" || len(resp.Tips) != 5 || len(resp.WeakTopics) == 0 {
		t.Errorf("unexpected tips %+v", resp)
	}
}

func TestAnswerController_RecordAnswer(t *testing.T) {
	writer := &stubWriter{}
	recSvc := service.NewRecommendationService(&stubHistory{}, recommend.NewStaticTaxonomy(nil), nil, testConfig())
	c := NewAnswerController(service.NewAnswerService(writer, recSvc))

	r := gin.New()
	r.POST("/api/answers", withUser(5, model.Student), c.RecordAnswer)

	tests := []struct {
		name string
		body map[string]any
		want int
	}{
		{"valid", map[string]any{"category": "PSPO1", "correct": false, "responseTime": 31.5, "topic": "Sprint Planning"}, http.StatusCreated},
		{"missing correct", map[string]any{"category": "PSPO1", "responseTime": 3}, http.StatusBadRequest},
		{"negative response time", map[string]any{"category": "PSPO1", "correct": true, "responseTime": -1}, http.StatusBadRequest},
		{"response time over a day", map[string]any{"category": "PSPO1", "correct": true, "responseTime": 1e300}, http.StatusBadRequest},
		{"response time of a day", map[string]any{"category": "PSPO1", "correct": true, "responseTime": 86400}, http.StatusCreated},
		{"blank category", map[string]any{"category": "  ", "correct": true, "responseTime": 3}, http.StatusBadRequest},
		{"control character", map[string]any{"category": "PS\tPO", "correct": true, "responseTime": 3}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, _ := do(t, r, http.MethodPost, "/api/answers", tt.body)
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d (%s)", w.Code, tt.want, w.Body.String())
			}
		})
	}

	if len(writer.records) != 2 {
		t.Fatalf("expected two stored records, got %d", len(writer.records))
	}
	rec := writer.records[0]
	if rec.UserID != 5 || rec.Correct == nil || *rec.Correct || rec.AnsweredAt == nil {
		t.Errorf("unexpected stored record %+v", rec)
	}
}
