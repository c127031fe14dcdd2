package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"quiz_adaptive_backend/internal/config"
	"quiz_adaptive_backend/internal/model"
	"quiz_adaptive_backend/internal/recommend"
	"quiz_adaptive_backend/internal/util"
	"quiz_adaptive_backend/pkg/logger"
	"quiz_adaptive_backend/pkg/monitoring"
	"quiz_adaptive_backend/pkg/tracing"

	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

const defaultFailureThreshold = 5

// HistoryStore 答题历史存储，repository.AnswerRepository 实现了它
type HistoryStore interface {
	FetchHistory(ctx context.Context, userID uint, category string, limit int) ([]model.AnswerRecord, error)
	// Summarize 统计全部有效答题，读取被 limit 截断时使用
	Summarize(ctx context.Context, userID uint, category string) (*model.AnswerSummary, error)
	Categories(ctx context.Context, userID uint) ([]string, error)
}

func newHistoryBreaker(cfg config.BreakerConfig) *gobreaker.CircuitBreaker[any] {
	threshold := cfg.FailureThreshold
	if threshold == 0 {
		threshold = defaultFailureThreshold
	}

	settings := gobreaker.Settings{
		Name:        "answer-history",
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Log.Warn("circuit breaker state changed",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
		// 调用方主动取消不算存储故障
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
	}
	return gobreaker.NewCircuitBreaker[any](settings)
}

func execute[T any](cb *gobreaker.CircuitBreaker[any], fn func() (T, error)) (T, error) {
	var zero T
	out, err := cb.Execute(func() (any, error) {
		return fn()
	})
	if err != nil {
		return zero, err
	}
	return out.(T), nil
}

func upstreamReason(err error) string {
	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return "breaker_open"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	default:
		return "error"
	}
}

// historySource 把 HistoryStore 适配成引擎的 HistorySource，每次读取都经过熔断器和超时控制
type historySource struct {
	store   HistoryStore
	breaker *gobreaker.CircuitBreaker[any]
	timeout time.Duration
	limit   int
}

func (h *historySource) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if h.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, h.timeout)
}

func (h *historySource) FetchHistory(ctx context.Context, userID, category string) (recommend.History, error) {
	id, err := strconv.ParseUint(userID, 10, 64)
	if err != nil {
		return recommend.History{}, fmt.Errorf("parse user id %q: %w", userID, err)
	}

	ctx, cancel := h.withTimeout(ctx)
	defer cancel()

	start := time.Now()
	history, err := h.fetch(ctx, uint(id), category)
	monitoring.HistoryFetchDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		monitoring.UpstreamFailures.WithLabelValues(upstreamReason(err)).Inc()
		return recommend.History{}, err
	}
	return history, nil
}

func (h *historySource) fetch(ctx context.Context, userID uint, category string) (recommend.History, error) {
	records, err := execute(h.breaker, func() ([]model.AnswerRecord, error) {
		return h.store.FetchHistory(ctx, userID, category, h.limit)
	})
	if err != nil {
		return recommend.History{}, err
	}
	history := recommend.History{Events: events(records)}
	if h.limit <= 0 || len(records) < h.limit {
		return history, nil
	}

	// 只读到了最近的 limit 条，总数和正确数用聚合查询补齐
	summary, err := execute(h.breaker, func() (*model.AnswerSummary, error) {
		return h.store.Summarize(ctx, userID, category)
	})
	if err != nil {
		return recommend.History{}, err
	}
	history.Summary = summary.Engine()
	return history, nil
}

func events(records []model.AnswerRecord) []recommend.AnswerEvent {
	out := make([]recommend.AnswerEvent, len(records))
	for i := range records {
		out[i] = records[i].Event()
	}
	return out
}

func (h *historySource) Categories(ctx context.Context, userID string) ([]string, error) {
	id, err := strconv.ParseUint(userID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("parse user id %q: %w", userID, err)
	}

	ctx, cancel := h.withTimeout(ctx)
	defer cancel()

	categories, err := execute(h.breaker, func() ([]string, error) {
		return h.store.Categories(ctx, uint(id))
	})
	if err != nil {
		monitoring.UpstreamFailures.WithLabelValues(upstreamReason(err)).Inc()
		return nil, err
	}
	return categories, nil
}

// meteredCache 统计画像缓存命中率
type meteredCache struct {
	inner recommend.ProfileCache
}

func (m *meteredCache) Get(ctx context.Context, userID, category string) (*recommend.PerformanceRecord, bool) {
	rec, ok := m.inner.Get(ctx, userID, category)
	if ok {
		monitoring.ProfileCacheCounter.WithLabelValues("hit").Inc()
	} else {
		monitoring.ProfileCacheCounter.WithLabelValues("miss").Inc()
	}
	return rec, ok
}

func (m *meteredCache) Generation(ctx context.Context, userID, category string) (uint64, error) {
	return m.inner.Generation(ctx, userID, category)
}

func (m *meteredCache) Set(ctx context.Context, rec *recommend.PerformanceRecord, gen uint64) error {
	err := m.inner.Set(ctx, rec, gen)
	if errors.Is(err, recommend.ErrStaleProfile) {
		monitoring.ProfileCacheCounter.WithLabelValues("stale").Inc()
	}
	return err
}

func (m *meteredCache) Invalidate(ctx context.Context, userID, category string) error {
	return m.inner.Invalidate(ctx, userID, category)
}

type RecommendationService struct {
	Engine *recommend.Engine
	logger *zap.Logger
}

// NewRecommendationService cache 为 nil 时不缓存画像
func NewRecommendationService(store HistoryStore, taxonomy recommend.Taxonomy, cache recommend.ProfileCache, cfg *config.Config) *RecommendationService {
	source := &historySource{
		store:   store,
		breaker: newHistoryBreaker(cfg.Breaker),
		timeout: cfg.Recommendation.FetchTimeout,
		limit:   cfg.Recommendation.HistoryLimit,
	}
	if cache != nil {
		cache = &meteredCache{inner: cache}
	}

	engine := recommend.NewEngine(source, taxonomy, cache, recommend.Config{
		RecentWindow:     cfg.Recommendation.RecentWindow,
		BucketSize:       cfg.Recommendation.BucketSize,
		MinTopicAttempts: cfg.Recommendation.MinTopicAttempts,
		MaxParallel:      cfg.Recommendation.MaxParallel,
	}, logger.Log)

	return &RecommendationService{
		Engine: engine,
		logger: logger.Named("recommendation"),
	}
}

// ForUser 生成推荐；category 为空时覆盖用户答过的所有分类
// 部分分类失败会在 Unavailable 中说明，全部失败才返回 ErrUpstreamUnavailable
func (s *RecommendationService) ForUser(ctx context.Context, userID uint, category string) (resp *model.RecommendationResponse, err error) {
	ctx, span := tracing.StartSpan(ctx, "RecommendationService.ForUser",
		attribute.Int64("user.id", int64(userID)),
		attribute.String("category", category),
	)
	defer func() { tracing.EndSpan(span, err) }()

	set, err := s.Engine.Recommendations(ctx, util.FormatUint(userID), category)
	if err != nil {
		return nil, err
	}

	if len(set.Items) == 0 && len(set.NoData) == 0 && len(set.Unavailable) > 0 {
		return nil, fmt.Errorf("%w: %d categories failed", recommend.ErrUpstreamUnavailable, len(set.Unavailable))
	}

	resp = &model.RecommendationResponse{
		UserID:          userID,
		Recommendations: set.Items,
		NoData:          set.NoData,
		Unavailable:     make([]model.UnavailableCategory, 0, len(set.Unavailable)),
	}
	if resp.NoData == nil {
		resp.NoData = []string{}
	}
	// 具体错误只写日志，不返回给前端
	for cat := range set.Unavailable {
		resp.Unavailable = append(resp.Unavailable, model.UnavailableCategory{
			Category: cat,
			Reason:   recommend.ErrUpstreamUnavailable.Error(),
		})
	}
	sort.Slice(resp.Unavailable, func(i, j int) bool {
		return resp.Unavailable[i].Category < resp.Unavailable[j].Category
	})

	for _, item := range set.Items {
		monitoring.RecommendationCounter.WithLabelValues(string(item.Action)).Inc()
	}

	s.logger.Debug("recommendations generated",
		zap.Uint("user_id", userID),
		zap.Int("items", len(set.Items)),
		zap.Int("no_data", len(set.NoData)),
		zap.Int("unavailable", len(set.Unavailable)),
	)
	return resp, nil
}

func (s *RecommendationService) NextQuestion(ctx context.Context, userID uint, category string, session *recommend.SessionState) (resp *model.NextQuestionResponse, err error) {
	ctx, span := tracing.StartSpan(ctx, "RecommendationService.NextQuestion",
		attribute.Int64("user.id", int64(userID)),
		attribute.String("category", category),
	)
	defer func() { tracing.EndSpan(span, err) }()

	params, err := s.Engine.NextQuestionParams(ctx, util.FormatUint(userID), category, session)
	if err != nil {
		return nil, err
	}
	return &model.NextQuestionResponse{Category: category, NextQuestionParams: params}, nil
}

// Profile 单个分类的学习画像，没有历史时返回 recommend.ErrNoData
func (s *RecommendationService) Profile(ctx context.Context, userID uint, category string) (rec *recommend.PerformanceRecord, err error) {
	ctx, span := tracing.StartSpan(ctx, "RecommendationService.Profile",
		attribute.Int64("user.id", int64(userID)),
		attribute.String("category", category),
	)
	defer func() {
		if errors.Is(err, recommend.ErrNoData) {
			tracing.EndSpan(span, nil)
			return
		}
		tracing.EndSpan(span, err)
	}()

	return s.Engine.Profile(ctx, util.FormatUint(userID), category)
}

func (s *RecommendationService) Invalidate(ctx context.Context, userID uint, category string) error {
	return s.Engine.Invalidate(ctx, util.FormatUint(userID), category)
}
