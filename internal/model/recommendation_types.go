package model

import "quiz_adaptive_backend/internal/recommend"

// RecordAnswerRequest 提交一次答题
type RecordAnswerRequest struct {
	Category     string   `json:"category" binding:"required,category"`
	QuestionID   string   `json:"questionId" binding:"omitempty,max=64"`
	Topic        string   `json:"topic" binding:"omitempty,max=100"`
	Correct      *bool    `json:"correct" binding:"required"`
	ResponseTime *float64 `json:"responseTime" binding:"required,gte=0,lte=86400"` // 与 recommend.MaxResponseSeconds 一致
}

type UnavailableCategory struct {
	Category string `json:"category"`
	Reason   string `json:"reason"`
}

// RecommendationResponse 推荐接口返回
type RecommendationResponse struct {
	UserID          uint                       `json:"userId"`
	Recommendations []recommend.Recommendation `json:"recommendations"`
	NoData          []string                   `json:"noData"`
	Unavailable     []UnavailableCategory      `json:"unavailable"`
}

type NextQuestionResponse struct {
	Category string `json:"category"`
	recommend.NextQuestionParams
}

type StudyTipsResponse struct {
	Category   string   `json:"category"`
	WeakTopics []string `json:"weakTopics"`
	Tips       []string `json:"tips"`
	Source     string   `json:"source"` // ai | default | cache
}

// TaxonomyRequest 设置分类的主题种子
type TaxonomyRequest struct {
	WeakTopics   []string `json:"weakTopics" binding:"max=10,dive,required,max=100"`
	StrongTopics []string `json:"strongTopics" binding:"max=10,dive,required,max=100"`
}

type TaxonomyResponse struct {
	Category     string   `json:"category"`
	WeakTopics   []string `json:"weakTopics"`
	StrongTopics []string `json:"strongTopics"`
	Source       string   `json:"source"` // database | config
}
