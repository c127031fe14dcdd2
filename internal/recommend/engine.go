package recommend

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const defaultMaxParallel = 4

// HistorySource is the storage collaborator the engine reads answer history from.
type HistorySource interface {
	// FetchHistory returns the user's answers in a category, oldest first.
	// No events means no history.
	FetchHistory(ctx context.Context, userID, category string) (History, error)
	// Categories lists every category the user has answered in.
	Categories(ctx context.Context, userID string) ([]string, error)
}

type Config struct {
	RecentWindow     int
	BucketSize       int
	MinTopicAttempts int
	MaxParallel      int
}

// Engine runs extractor -> analyzer -> synthesizer per category. It keeps no state
// of its own besides the injected cache, so one Engine serves all requests.
type Engine struct {
	source   HistorySource
	taxonomy Taxonomy
	cache    ProfileCache
	cfg      Config
	logger   *zap.Logger
}

// NewEngine wires an engine. cache and logger may be nil.
func NewEngine(source HistorySource, taxonomy Taxonomy, cache ProfileCache, cfg Config, logger *zap.Logger) *Engine {
	if cfg.MaxParallel <= 0 {
		cfg.MaxParallel = defaultMaxParallel
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		source:   source,
		taxonomy: taxonomy,
		cache:    cache,
		cfg:      cfg,
		logger:   logger.Named("recommend"),
	}
}

// Profile returns the analyzed record of one user+category.
func (e *Engine) Profile(ctx context.Context, userID, category string) (*PerformanceRecord, error) {
	var (
		gen       uint64
		cacheable bool
	)
	if e.cache != nil {
		if rec, ok := e.cache.Get(ctx, userID, category); ok {
			return rec, nil
		}
		// 代数必须在读取历史之前取得
		g, err := e.cache.Generation(ctx, userID, category)
		if err != nil {
			e.logger.Warn("profile cache generation unavailable, result will not be cached",
				zap.String("category", category), zap.Error(err))
		} else {
			gen, cacheable = g, true
		}
	}

	history, err := e.source.FetchHistory(ctx, userID, category)
	if err != nil {
		return nil, upstream(err)
	}

	raw, err := Extract(userID, category, history.Events, ExtractOptions{
		RecentWindow: e.cfg.RecentWindow,
		BucketSize:   e.cfg.BucketSize,
	})
	if err != nil {
		return nil, err
	}
	if raw.SkippedRecords > 0 {
		e.logger.Debug("skipped malformed history records",
			zap.String("user_id", userID),
			zap.String("category", category),
			zap.Int("skipped", raw.SkippedRecords),
		)
	}
	applySummary(raw, history.Summary)

	rec := Analyze(raw, e.taxonomy, AnalyzeOptions{MinTopicAttempts: e.cfg.MinTopicAttempts})

	if cacheable {
		switch err := e.cache.Set(ctx, rec, gen); {
		case errors.Is(err, ErrStaleProfile):
			e.logger.Debug("new answers arrived during analysis, profile not cached",
				zap.String("user_id", userID), zap.String("category", category))
		case err != nil:
			e.logger.Warn("failed to cache performance record", zap.String("category", category), zap.Error(err))
		}
	}
	return rec, nil
}

// Recommendations builds one recommendation per category. An empty category means
// every category the user has history in. Per-category failures never abort the
// siblings; they are reported in the returned set.
func (e *Engine) Recommendations(ctx context.Context, userID, category string) (*RecommendationSet, error) {
	var categories []string
	if category != "" {
		categories = []string{category}
	} else {
		listed, err := e.source.Categories(ctx, userID)
		if err != nil {
			return nil, upstream(err)
		}
		categories = append(categories, listed...)
	}
	sort.Strings(categories)

	type outcome struct {
		rec Recommendation
		err error
	}
	results := make([]outcome, len(categories))

	var g errgroup.Group
	g.SetLimit(e.cfg.MaxParallel)
	for i, cat := range categories {
		i, cat := i, cat
		g.Go(func() error {
			profile, err := e.Profile(ctx, userID, cat)
			if err != nil {
				results[i].err = err
				return nil
			}
			results[i].rec = Recommend(profile)
			return nil
		})
	}
	_ = g.Wait()

	set := &RecommendationSet{
		Items:       make([]Recommendation, 0, len(categories)),
		Unavailable: make(map[string]error),
	}
	for i, cat := range categories {
		switch err := results[i].err; {
		case err == nil:
			set.Items = append(set.Items, results[i].rec)
		case errors.Is(err, ErrNoData):
			set.NoData = append(set.NoData, cat)
		default:
			e.logger.Warn("recommendation failed for category",
				zap.String("user_id", userID),
				zap.String("category", cat),
				zap.Error(err),
			)
			set.Unavailable[cat] = err
		}
	}
	return set, nil
}

// NextQuestionParams tunes the next question. A user with no history gets the
// defaults; a failing history store is reported, not papered over.
func (e *Engine) NextQuestionParams(ctx context.Context, userID, category string, session *SessionState) (NextQuestionParams, error) {
	profile, err := e.Profile(ctx, userID, category)
	if errors.Is(err, ErrNoData) {
		return NextQuestion(nil, session), nil
	}
	if err != nil {
		return NextQuestionParams{}, err
	}
	return NextQuestion(profile, session), nil
}

// Invalidate drops the cached profile of user+category.
func (e *Engine) Invalidate(ctx context.Context, userID, category string) error {
	if e.cache == nil {
		return nil
	}
	return e.cache.Invalidate(ctx, userID, category)
}

func upstream(err error) error {
	if errors.Is(err, ErrUpstreamUnavailable) || errors.Is(err, ErrNoData) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrUpstreamUnavailable, err)
}
