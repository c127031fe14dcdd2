package repository

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"quiz_adaptive_backend/internal/util"
	"quiz_adaptive_backend/pkg/logger"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

type StudyTipsCacheRepository struct {
	Redis *redis.Client
}

func NewStudyTipsCacheRepository(rdb *redis.Client) *StudyTipsCacheRepository {
	return &StudyTipsCacheRepository{Redis: rdb}
}

// 同一分类、同一组薄弱主题共享一份建议
func tipsKey(category string, weakTopics []string) string {
	return util.StudyTipsKeyPrefix + category + ":" + strings.Join(weakTopics, "|")
}

func (r *StudyTipsCacheRepository) Get(ctx context.Context, category string, weakTopics []string) ([]string, bool) {
	val, err := r.Redis.Get(ctx, tipsKey(category, weakTopics)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logger.Log.Warn("study tips cache get failed", zap.String("category", category), zap.Error(err))
		}
		return nil, false
	}

	var tips []string
	if err := json.Unmarshal(val, &tips); err != nil || len(tips) == 0 {
		return nil, false
	}
	return tips, true
}

func (r *StudyTipsCacheRepository) Set(ctx context.Context, category string, weakTopics []string, tips []string, ttl time.Duration) error {
	data, err := json.Marshal(tips)
	if err != nil {
		return err
	}
	return r.Redis.Set(ctx, tipsKey(category, weakTopics), data, ttl).Err()
}
