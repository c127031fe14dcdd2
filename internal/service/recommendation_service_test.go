package service

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"quiz_adaptive_backend/internal/config"
	"quiz_adaptive_backend/internal/model"
	"quiz_adaptive_backend/internal/recommend"

	"github.com/sony/gobreaker/v2"
)

func TestRecommendationService_ForUser(t *testing.T) {
	store := &fakeHistoryStore{
		categories: []string{"PSPO1", "empty", "broken"},
		history: map[string][]model.AnswerRecord{
			"PSPO1": records("PSPO1", append(repeat(true, 15), repeat(false, 10)...)...),
		},
		errs: map[string]error{"broken": errors.New("connection reset")},
	}
	svc := NewRecommendationService(store, recommend.NewStaticTaxonomy(recommend.DefaultSeeds()), nil, testConfig())

	resp, err := svc.ForUser(context.Background(), 1, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if resp.UserID != 1 {
		t.Errorf("UserID = %d, want 1", resp.UserID)
	}
	if len(resp.Recommendations) != 1 || resp.Recommendations[0].Action != recommend.ActionReview {
		t.Fatalf("expected a single review recommendation, got %+v", resp.Recommendations)
	}
	if !reflect.DeepEqual(resp.NoData, []string{"empty"}) {
		t.Errorf("NoData = %v, want [empty]", resp.NoData)
	}
	if len(resp.Unavailable) != 1 || resp.Unavailable[0].Category != "broken" {
		t.Fatalf("expected broken to be unavailable, got %+v", resp.Unavailable)
	}
	// 底层错误信息不能透传给前端
	if resp.Unavailable[0].Reason != recommend.ErrUpstreamUnavailable.Error() {
		t.Errorf("Reason = %q", resp.Unavailable[0].Reason)
	}
	if store.lastLimit != 500 {
		t.Errorf("history limit = %d, want 500", store.lastLimit)
	}
}

func TestRecommendationService_ForUserAllFailed(t *testing.T) {
	storeErr := errors.New("db down")
	store := &fakeHistoryStore{
		categories: []string{"a"},
		errs:       map[string]error{"a": storeErr},
	}
	svc := NewRecommendationService(store, recommend.NewStaticTaxonomy(nil), nil, testConfig())

	_, err := svc.ForUser(context.Background(), 1, "")
	if !errors.Is(err, recommend.ErrUpstreamUnavailable) {
		t.Fatalf("expected ErrUpstreamUnavailable, got %v", err)
	}

	_, err = svc.ForUser(context.Background(), 1, "a")
	if !errors.Is(err, recommend.ErrUpstreamUnavailable) {
		t.Fatalf("single category: expected ErrUpstreamUnavailable, got %v", err)
	}
}

func TestRecommendationService_ForUserNoHistory(t *testing.T) {
	svc := NewRecommendationService(&fakeHistoryStore{}, recommend.NewStaticTaxonomy(nil), nil, testConfig())

	resp, err := svc.ForUser(context.Background(), 7, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(resp.Recommendations) != 0 || len(resp.NoData) != 0 || len(resp.Unavailable) != 0 {
		t.Errorf("expected an empty response, got %+v", resp)
	}
	if resp.NoData == nil || resp.Unavailable == nil {
		t.Error("empty lists must serialize as [] rather than null")
	}
}

func TestRecommendationService_CategoryListingFails(t *testing.T) {
	store := &fakeHistoryStore{categoryErr: errors.New("timeout")}
	svc := NewRecommendationService(store, recommend.NewStaticTaxonomy(nil), nil, testConfig())

	if _, err := svc.ForUser(context.Background(), 1, ""); !errors.Is(err, recommend.ErrUpstreamUnavailable) {
		t.Fatalf("expected ErrUpstreamUnavailable, got %v", err)
	}
}

func TestRecommendationService_NextQuestion(t *testing.T) {
	store := &fakeHistoryStore{errs: map[string]error{"broken": errors.New("db down")}}
	svc := NewRecommendationService(store, recommend.NewStaticTaxonomy(nil), nil, testConfig())

	resp, err := svc.NextQuestion(context.Background(), 1, "PSPO1", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Category != "PSPO1" || !reflect.DeepEqual(resp.NextQuestionParams, recommend.DefaultNextQuestion()) {
		t.Errorf("expected defaults for PSPO1, got %+v", resp)
	}

	if _, err := svc.NextQuestion(context.Background(), 1, "broken", nil); !errors.Is(err, recommend.ErrUpstreamUnavailable) {
		t.Errorf("expected ErrUpstreamUnavailable, got %v", err)
	}
}

func TestRecommendationService_CappedHistory(t *testing.T) {
	// 最早 20 条全对，最近 10 条全错；只读最近 10 条
	rows := records("PSPO1", append(repeat(true, 20), repeat(false, 10)...)...)
	store := &fakeHistoryStore{history: map[string][]model.AnswerRecord{"PSPO1": rows}}
	cfg := testConfig()
	cfg.Recommendation.HistoryLimit = 10
	svc := NewRecommendationService(store, recommend.NewStaticTaxonomy(nil), nil, cfg)

	rec, err := svc.Profile(context.Background(), 1, "PSPO1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.lastLimit != 10 || store.summaries != 1 {
		t.Errorf("limit = %d, summaries = %d", store.lastLimit, store.summaries)
	}
	if rec.TotalAttempts != 30 || rec.CorrectAttempts != 20 {
		t.Errorf("counts = %d/%d, want 20/30", rec.CorrectAttempts, rec.TotalAttempts)
	}
	if rec.RecentAccuracy != 0 {
		t.Errorf("RecentAccuracy = %v, want 0 from the newest rows", rec.RecentAccuracy)
	}

	// 30 attempts with recent accuracy 0 -> review
	resp, err := svc.ForUser(context.Background(), 1, "PSPO1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(resp.Recommendations) != 1 || resp.Recommendations[0].Action != recommend.ActionReview {
		t.Errorf("expected review, got %+v", resp.Recommendations)
	}
}

func TestRecommendationService_ShortHistorySkipsSummary(t *testing.T) {
	store := &fakeHistoryStore{history: map[string][]model.AnswerRecord{"PSPO1": records("PSPO1", repeat(true, 9)...)}}
	cfg := testConfig()
	cfg.Recommendation.HistoryLimit = 10
	svc := NewRecommendationService(store, recommend.NewStaticTaxonomy(nil), nil, cfg)

	rec, err := svc.Profile(context.Background(), 1, "PSPO1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.summaries != 0 || rec.TotalAttempts != 9 {
		t.Errorf("summaries = %d, TotalAttempts = %d", store.summaries, rec.TotalAttempts)
	}
}

func TestRecommendationService_SummaryFailure(t *testing.T) {
	store := &fakeHistoryStore{
		history:    map[string][]model.AnswerRecord{"PSPO1": records("PSPO1", repeat(true, 10)...)},
		summaryErr: errors.New("db down"),
	}
	cfg := testConfig()
	cfg.Recommendation.HistoryLimit = 10
	svc := NewRecommendationService(store, recommend.NewStaticTaxonomy(nil), nil, cfg)

	if _, err := svc.Profile(context.Background(), 1, "PSPO1"); !errors.Is(err, recommend.ErrUpstreamUnavailable) {
		t.Errorf("expected ErrUpstreamUnavailable, got %v", err)
	}
}

func TestRecommendationService_ProfileCache(t *testing.T) {
	store := &fakeHistoryStore{
		history: map[string][]model.AnswerRecord{"PSPO1": records("PSPO1", repeat(true, 12)...)},
	}
	cache := recommend.NewMemoryCache(time.Minute)
	svc := NewRecommendationService(store, recommend.NewStaticTaxonomy(nil), cache, testConfig())
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		rec, err := svc.Profile(ctx, 1, "PSPO1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if rec.TotalAttempts != 12 {
			t.Fatalf("TotalAttempts = %d, want 12", rec.TotalAttempts)
		}
	}
	if store.callCount() != 1 {
		t.Errorf("expected one fetch with a warm cache, got %d", store.callCount())
	}

	if err := svc.Invalidate(ctx, 1, "PSPO1"); err != nil {
		t.Fatalf("Invalidate: %v", err)
	}
	if _, err := svc.Profile(ctx, 1, "PSPO1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.callCount() != 2 {
		t.Errorf("expected a refetch after invalidation, got %d fetches", store.callCount())
	}

	if _, err := svc.Profile(ctx, 1, "other"); !errors.Is(err, recommend.ErrNoData) {
		t.Errorf("expected ErrNoData, got %v", err)
	}
}

func TestHistorySource_BreakerOpens(t *testing.T) {
	store := &fakeHistoryStore{errs: map[string]error{"a": errors.New("db down")}}
	src := &historySource{
		store:   store,
		breaker: newHistoryBreaker(config.BreakerConfig{FailureThreshold: 2, Timeout: time.Minute}),
		timeout: time.Second,
	}
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, err := src.FetchHistory(ctx, "1", "a"); err == nil {
			t.Fatal("expected store error")
		}
	}

	_, err := src.FetchHistory(ctx, "1", "a")
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Fatalf("expected open breaker, got %v", err)
	}
	if got := upstreamReason(err); got != "breaker_open" {
		t.Errorf("upstreamReason = %q, want breaker_open", got)
	}
	if store.callCount() != 2 {
		t.Errorf("open breaker must not reach the store, got %d calls", store.callCount())
	}
}

func TestHistorySource_CanceledDoesNotTrip(t *testing.T) {
	store := &fakeHistoryStore{errs: map[string]error{"a": context.Canceled}}
	src := &historySource{
		store:   store,
		breaker: newHistoryBreaker(config.BreakerConfig{FailureThreshold: 1, Timeout: time.Minute}),
	}

	for i := 0; i < 3; i++ {
		if _, err := src.FetchHistory(context.Background(), "1", "a"); !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	}
	if state := src.breaker.State(); state != gobreaker.StateClosed {
		t.Errorf("breaker state = %s, want closed", state)
	}
}

func TestHistorySource_InvalidUserID(t *testing.T) {
	src := &historySource{
		store:   &fakeHistoryStore{},
		breaker: newHistoryBreaker(config.BreakerConfig{}),
	}
	if _, err := src.FetchHistory(context.Background(), "abc", "a"); err == nil {
		t.Error("expected parse error")
	}
	if _, err := src.Categories(context.Background(), "-1"); err == nil {
		t.Error("expected parse error")
	}
}

func TestUpstreamReason(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{gobreaker.ErrOpenState, "breaker_open"},
		{gobreaker.ErrTooManyRequests, "breaker_open"},
		{context.DeadlineExceeded, "timeout"},
		{context.Canceled, "canceled"},
		{errors.New("boom"), "error"},
	}
	for _, tt := range tests {
		if got := upstreamReason(tt.err); got != tt.want {
			t.Errorf("upstreamReason(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}
