package model

import (
	"time"

	"quiz_adaptive_backend/internal/recommend"
)

// AnswerRecord 一次答题记录，推荐引擎的原始输入
// correct / response_time / answered_at 允许为空，旧数据导入时可能缺失，分析时会被跳过
type AnswerRecord struct {
	BaseModel
	UserID       uint       `gorm:"not null;index:idx_answer_user_category_time,priority:1" json:"userId"`
	Category     string     `gorm:"size:100;not null;index:idx_answer_user_category_time,priority:2" json:"category"`
	QuestionID   string     `gorm:"size:64" json:"questionId"`
	Topic        string     `gorm:"size:100" json:"topic"`
	Correct      *bool      `json:"correct"`
	ResponseTime *float64   `json:"responseTime"` // 秒
	AnsweredAt   *time.Time `gorm:"index:idx_answer_user_category_time,priority:3" json:"answeredAt"`
}

func (AnswerRecord) TableName() string {
	return "answer_records"
}

// Event 转成引擎使用的答题事件
func (r *AnswerRecord) Event() recommend.AnswerEvent {
	ev := recommend.AnswerEvent{
		Correct:      r.Correct,
		ResponseTime: r.ResponseTime,
		Topic:        r.Topic,
	}
	if r.AnsweredAt != nil {
		ev.Timestamp = *r.AnsweredAt
	}
	return ev
}

// AnswerSummary 某用户某分类全部有效答题的聚合
type AnswerSummary struct {
	TotalAttempts       int64
	CorrectAttempts     int64
	AverageResponseTime float64
	Topics              []TopicSummary `gorm:"-"`
}

type TopicSummary struct {
	Topic    string
	Attempts int64
	Correct  int64
}

// Engine 转成引擎使用的历史汇总
func (s *AnswerSummary) Engine() *recommend.HistorySummary {
	if s == nil {
		return nil
	}
	out := &recommend.HistorySummary{
		TotalAttempts:       int(s.TotalAttempts),
		CorrectAttempts:     int(s.CorrectAttempts),
		AverageResponseTime: s.AverageResponseTime,
	}
	for _, t := range s.Topics {
		out.TopicStats = append(out.TopicStats, recommend.TopicStat{
			Topic:    t.Topic,
			Attempts: int(t.Attempts),
			Correct:  int(t.Correct),
		})
	}
	return out
}
