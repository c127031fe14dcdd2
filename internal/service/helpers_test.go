package service

import (
	"context"
	"sync"
	"time"

	"quiz_adaptive_backend/internal/config"
	"quiz_adaptive_backend/internal/model"
)

var baseTime = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func boolPtr(b bool) *bool { return &b }
func floatPtr(f float64) *float64 { return &f }
func timePtr(t time.Time) *time.Time { return &t }

// records 按顺序生成某分类的答题记录
func records(category string, outcomes ...bool) []model.AnswerRecord {
	out := make([]model.AnswerRecord, len(outcomes))
	for i, ok := range outcomes {
		out[i] = model.AnswerRecord{
			UserID:       1,
			Category:     category,
			Correct:      boolPtr(ok),
			ResponseTime: floatPtr(25),
			AnsweredAt:   timePtr(baseTime.Add(time.Duration(i) * time.Minute)),
		}
	}
	return out
}

func repeat(v bool, n int) []bool {
	out := make([]bool, n)
	for i := range out {
		out[i] = v
	}
	return out
}

type fakeHistoryStore struct {
	mu          sync.Mutex
	history     map[string][]model.AnswerRecord
	errs        map[string]error
	categories  []string
	categoryErr error
	summaryErr  error
	calls       int
	summaries   int
	lastLimit   int
}

// FetchHistory 和仓库一样只返回最近 limit 条
func (f *fakeHistoryStore) FetchHistory(ctx context.Context, userID uint, category string, limit int) ([]model.AnswerRecord, error) {
	f.mu.Lock()
	f.calls++
	f.lastLimit = limit
	f.mu.Unlock()

	if err := f.errs[category]; err != nil {
		return nil, err
	}
	rows := f.history[category]
	if limit > 0 && len(rows) > limit {
		rows = rows[len(rows)-limit:]
	}
	return rows, nil
}

func (f *fakeHistoryStore) Summarize(ctx context.Context, userID uint, category string) (*model.AnswerSummary, error) {
	f.mu.Lock()
	f.summaries++
	f.mu.Unlock()

	if err := f.summaryErr; err != nil {
		return nil, err
	}
	out := &model.AnswerSummary{}
	topics := make(map[string]*model.TopicSummary)
	var totalTime float64
	for _, r := range f.history[category] {
		if r.Correct == nil || r.ResponseTime == nil || r.AnsweredAt == nil {
			continue
		}
		out.TotalAttempts++
		totalTime += *r.ResponseTime
		if *r.Correct {
			out.CorrectAttempts++
		}
		if r.Topic == "" {
			continue
		}
		ts, ok := topics[r.Topic]
		if !ok {
			ts = &model.TopicSummary{Topic: r.Topic}
			topics[r.Topic] = ts
		}
		ts.Attempts++
		if *r.Correct {
			ts.Correct++
		}
	}
	if out.TotalAttempts > 0 {
		out.AverageResponseTime = totalTime / float64(out.TotalAttempts)
	}
	for _, ts := range topics {
		out.Topics = append(out.Topics, *ts)
	}
	return out, nil
}

func (f *fakeHistoryStore) Categories(ctx context.Context, userID uint) ([]string, error) {
	if f.categoryErr != nil {
		return nil, f.categoryErr
	}
	return f.categories, nil
}

func (f *fakeHistoryStore) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func testConfig() *config.Config {
	return &config.Config{
		Recommendation: config.RecommendationConfig{
			RecentWindow: 10,
			BucketSize:   10,
			HistoryLimit: 500,
			MaxParallel:  4,
			FetchTimeout: time.Second,
		},
		Breaker: config.BreakerConfig{
			MaxRequests:      1,
			Timeout:          time.Minute,
			FailureThreshold: 2,
		},
	}
}
