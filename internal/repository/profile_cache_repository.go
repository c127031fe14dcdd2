package repository

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"quiz_adaptive_backend/internal/recommend"
	"quiz_adaptive_backend/internal/util"
	"quiz_adaptive_backend/pkg/logger"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// setIfGeneration 代数未变时才写入画像
// KEYS[1] 代数 key, KEYS[2] 画像 key; ARGV[1] 读取历史前的代数, ARGV[2] 画像, ARGV[3] 过期毫秒
var setIfGeneration = redis.NewScript(`
local cur = redis.call('GET', KEYS[1])
if (cur or '0') ~= ARGV[1] then
	return 0
end
redis.call('SET', KEYS[2], ARGV[2], 'PX', ARGV[3])
return 1
`)

// bumpGeneration 取全局序号作为新代数并删除画像，代数 key 过期后也不会复用旧值
// KEYS[1] 全局序号, KEYS[2] 代数 key, KEYS[3] 画像 key; ARGV[1] 代数保留毫秒
var bumpGeneration = redis.NewScript(`
local seq = redis.call('INCR', KEYS[1])
redis.call('SET', KEYS[2], tostring(seq), 'PX', ARGV[1])
redis.call('DEL', KEYS[3])
return seq
`)

// ProfileCacheRepository 把分析后的学习画像缓存在 Redis，多实例共享
type ProfileCacheRepository struct {
	Redis *redis.Client
	TTL   time.Duration
}

func NewProfileCacheRepository(rdb *redis.Client, ttl time.Duration) *ProfileCacheRepository {
	return &ProfileCacheRepository{Redis: rdb, TTL: ttl}
}

func profileKey(userID, category string) string {
	return util.ProfileCacheKeyPrefix + userID + ":" + category
}

func generationKey(userID, category string) string {
	return util.ProfileGenerationKeyPrefix + userID + ":" + category
}

// Get Redis 出错时按未命中处理
func (r *ProfileCacheRepository) Get(ctx context.Context, userID, category string) (*recommend.PerformanceRecord, bool) {
	val, err := r.Redis.Get(ctx, profileKey(userID, category)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logger.Log.Warn("profile cache get failed", zap.String("user_id", userID), zap.Error(err))
		}
		return nil, false
	}

	var rec recommend.PerformanceRecord
	if err := json.Unmarshal(val, &rec); err != nil {
		logger.Log.Warn("profile cache entry corrupted", zap.String("user_id", userID), zap.Error(err))
		r.Redis.Del(ctx, profileKey(userID, category))
		return nil, false
	}
	return &rec, true
}

// Generation 从未失效过的组合为 0
func (r *ProfileCacheRepository) Generation(ctx context.Context, userID, category string) (uint64, error) {
	val, err := r.Redis.Get(ctx, generationKey(userID, category)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return strconv.ParseUint(val, 10, 64)
}

func (r *ProfileCacheRepository) Set(ctx context.Context, rec *recommend.PerformanceRecord, gen uint64) error {
	if r.TTL <= 0 {
		return nil
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}

	stored, err := setIfGeneration.Run(ctx, r.Redis,
		[]string{generationKey(rec.UserID, rec.Category), profileKey(rec.UserID, rec.Category)},
		strconv.FormatUint(gen, 10), data, r.TTL.Milliseconds(),
	).Int()
	if err != nil {
		return err
	}
	if stored == 0 {
		return recommend.ErrStaleProfile
	}
	return nil
}

func (r *ProfileCacheRepository) Invalidate(ctx context.Context, userID, category string) error {
	return bumpGeneration.Run(ctx, r.Redis,
		[]string{util.ProfileSequenceKey, generationKey(userID, category), profileKey(userID, category)},
		recommend.GenerationRetention.Milliseconds(),
	).Err()
}
