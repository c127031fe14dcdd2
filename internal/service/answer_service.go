package service

import (
	"context"
	"strings"
	"time"

	"quiz_adaptive_backend/internal/model"
	"quiz_adaptive_backend/pkg/logger"

	"go.uber.org/zap"
)

type AnswerWriter interface {
	Create(ctx context.Context, record *model.AnswerRecord) error
}

// ProfileInvalidator 新答题后让缓存的画像失效
type ProfileInvalidator interface {
	Invalidate(ctx context.Context, userID uint, category string) error
}

type AnswerService struct {
	AnswerRepo  AnswerWriter
	Invalidator ProfileInvalidator
	now         func() time.Time
}

func NewAnswerService(answerRepo AnswerWriter, invalidator ProfileInvalidator) *AnswerService {
	return &AnswerService{
		AnswerRepo:  answerRepo,
		Invalidator: invalidator,
		now:         time.Now,
	}
}

// Record 保存答题记录，答题时间取服务端时间
func (s *AnswerService) Record(ctx context.Context, userID uint, req *model.RecordAnswerRequest) (*model.AnswerRecord, error) {
	answeredAt := s.now().UTC()
	record := &model.AnswerRecord{
		UserID:       userID,
		Category:     strings.TrimSpace(req.Category),
		QuestionID:   req.QuestionID,
		Topic:        strings.TrimSpace(req.Topic),
		Correct:      req.Correct,
		ResponseTime: req.ResponseTime,
		AnsweredAt:   &answeredAt,
	}

	if err := s.AnswerRepo.Create(ctx, record); err != nil {
		return nil, err
	}

	// 失效失败只记日志，缓存 TTL 到期后也会刷新
	if err := s.Invalidator.Invalidate(ctx, userID, record.Category); err != nil {
		logger.Log.Warn("invalidate profile cache failed",
			zap.Uint("user_id", userID),
			zap.String("category", record.Category),
			zap.Error(err),
		)
	}
	return record, nil
}
