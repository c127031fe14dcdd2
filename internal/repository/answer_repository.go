package repository

import (
	"context"

	"quiz_adaptive_backend/internal/model"

	"gorm.io/gorm"
)

type AnswerRepository struct {
	DB *gorm.DB
}

func NewAnswerRepository(db *gorm.DB) *AnswerRepository {
	return &AnswerRepository{DB: db}
}

func (r *AnswerRepository) Create(ctx context.Context, record *model.AnswerRecord) error {
	return r.DB.WithContext(ctx).Create(record).Error
}

// FetchHistory 取某用户某分类最近 limit 条答题记录，按答题时间正序返回
// limit <= 0 表示不限制
func (r *AnswerRepository) FetchHistory(ctx context.Context, userID uint, category string, limit int) ([]model.AnswerRecord, error) {
	var records []model.AnswerRecord

	// answered_at 为空的记录排在最后，mysql 和 postgres 对 NULL 的默认排序不同
	q := r.DB.WithContext(ctx).
		Where("user_id = ? AND category = ?", userID, category).
		Order("answered_at IS NULL").
		Order("answered_at DESC").
		Order("id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&records).Error; err != nil {
		return nil, err
	}

	for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
		records[i], records[j] = records[j], records[i]
	}
	return records, nil
}

// validRows 引擎能使用的记录，与 recommend 的逐条校验保持一致
func (r *AnswerRepository) validRows(ctx context.Context, userID uint, category string) *gorm.DB {
	return r.DB.WithContext(ctx).
		Model(&model.AnswerRecord{}).
		Where("user_id = ? AND category = ?", userID, category).
		Where("correct IS NOT NULL AND response_time IS NOT NULL AND response_time >= 0 AND answered_at IS NOT NULL")
}

// Summarize 统计全部有效答题的总数、正确数、平均用时和各主题计数
func (r *AnswerRepository) Summarize(ctx context.Context, userID uint, category string) (*model.AnswerSummary, error) {
	var summary model.AnswerSummary
	err := r.validRows(ctx, userID, category).
		Select("COUNT(*) AS total_attempts, " +
			"COALESCE(SUM(CASE WHEN correct THEN 1 ELSE 0 END), 0) AS correct_attempts, " +
			"COALESCE(AVG(response_time), 0) AS average_response_time").
		Scan(&summary).Error
	if err != nil {
		return nil, err
	}

	err = r.validRows(ctx, userID, category).
		Where("topic <> ''").
		Select("topic, COUNT(*) AS attempts, COALESCE(SUM(CASE WHEN correct THEN 1 ELSE 0 END), 0) AS correct").
		Group("topic").
		Order("topic").
		Scan(&summary.Topics).Error
	if err != nil {
		return nil, err
	}
	return &summary, nil
}

// Categories 用户答过题的全部分类
func (r *AnswerRepository) Categories(ctx context.Context, userID uint) ([]string, error) {
	var categories []string
	err := r.DB.WithContext(ctx).
		Model(&model.AnswerRecord{}).
		Where("user_id = ?", userID).
		Distinct("category").
		Order("category").
		Pluck("category", &categories).
		Error
	return categories, err
}
