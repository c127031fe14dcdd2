package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"quiz_adaptive_backend/internal/config"
	"quiz_adaptive_backend/internal/model"
	"quiz_adaptive_backend/internal/recommend"
	"quiz_adaptive_backend/pkg/logger"
	"quiz_adaptive_backend/pkg/monitoring"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

const (
	tipsSourceAI      = "ai"
	tipsSourceCache   = "cache"
	tipsSourceDefault = "default"

	maxTipsFocusTopics = 3
	maxTips            = 5
)

// TipsGenerator 根据分类和薄弱主题生成学习建议
type TipsGenerator interface {
	GenerateTips(ctx context.Context, category string, weakTopics []string) ([]string, error)
}

type TipsCache interface {
	Get(ctx context.Context, category string, weakTopics []string) ([]string, bool)
	Set(ctx context.Context, category string, weakTopics []string, tips []string, ttl time.Duration) error
}

type ProfileProvider interface {
	Profile(ctx context.Context, userID uint, category string) (*recommend.PerformanceRecord, error)
}

// OpenAITipsGenerator 兼容 OpenAI 协议的大模型
type OpenAITipsGenerator struct {
	client *openai.Client
	model  string
}

func NewOpenAITipsGenerator(cfg config.AIConfig) *OpenAITipsGenerator {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}
	model := cfg.Model
	if model == "" {
		model = openai.GPT4oMini
	}

	return &OpenAITipsGenerator{
		client: openai.NewClientWithConfig(clientConfig),
		model:  model,
	}
}

func tipsPrompt(category string, weakTopics []string) string {
	focus := "the topics the student finds hardest"
	if len(weakTopics) > 0 {
		focus = strings.Join(weakTopics, ", ")
	}
	return fmt.Sprintf(`Provide 3-5 specific study tips for improving in %s, focusing on these weak areas: %s.

Make the tips actionable, specific to the subject matter, encouraging and suitable for self-study.
Format as a numbered list, one tip per line.`, category, focus)
}

func (g *OpenAITipsGenerator) GenerateTips(ctx context.Context, category string, weakTopics []string) ([]string, error) {
	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: tipsPrompt(category, weakTopics),
			},
		},
		Temperature: 0.7,
		MaxTokens:   400,
	})
	if err != nil {
		return nil, fmt.Errorf("openai generate tips: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("openai returned no choices")
	}

	tips := ParseTipsList(resp.Choices[0].Message.Content)
	if len(tips) == 0 {
		return nil, errors.New("openai returned no usable tips")
	}
	return tips, nil
}

var listMarker = regexp.MustCompile(`^\s*(?:\d+[.)]|[-*•])\s+`)

// ParseTipsList 把编号列表拆成单条建议，去掉序号和空行
func ParseTipsList(text string) []string {
	var tips []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(listMarker.ReplaceAllString(line, ""))
		line = strings.Trim(line, "*")
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		tips = append(tips, line)
		if len(tips) == maxTips {
			break
		}
	}
	return tips
}

// DefaultStudyTips AI 不可用时的固定建议
func DefaultStudyTips(weakTopics []string) []string {
	focus := "the topics you find hardest"
	if len(weakTopics) > 0 {
		n := len(weakTopics)
		if n > maxTipsFocusTopics {
			n = maxTipsFocusTopics
		}
		focus = strings.Join(weakTopics[:n], ", ")
	}
	return []string{
		"Review fundamentals before tackling complex topics",
		"Practice regularly with short, focused sessions",
		"Take notes on concepts you find challenging",
		"Focus extra attention on: " + focus,
		"Try explaining concepts out loud to test understanding",
	}
}

type StudyTipsService struct {
	Profiles  ProfileProvider
	Taxonomy  recommend.Taxonomy
	Generator TipsGenerator // AI 关闭时为 nil
	Cache     TipsCache     // 可为 nil
	timeout   time.Duration
	ttl       time.Duration
}

func NewStudyTipsService(profiles ProfileProvider, taxonomy recommend.Taxonomy, generator TipsGenerator, cache TipsCache, cfg config.AIConfig) *StudyTipsService {
	return &StudyTipsService{
		Profiles:  profiles,
		Taxonomy:  taxonomy,
		Generator: generator,
		Cache:     cache,
		timeout:   cfg.Timeout,
		ttl:       cfg.TipsCacheTTL,
	}
}

// weakTopics 优先用学习画像，没有历史或历史不可用时退回分类种子
func (s *StudyTipsService) weakTopics(ctx context.Context, userID uint, category string) []string {
	profile, err := s.Profiles.Profile(ctx, userID, category)
	if err == nil {
		return profile.WeakTopics
	}
	if !errors.Is(err, recommend.ErrNoData) {
		logger.Log.Warn("load profile for study tips failed",
			zap.Uint("user_id", userID),
			zap.String("category", category),
			zap.Error(err),
		)
	}
	if s.Taxonomy == nil {
		return nil
	}
	weak, _ := s.Taxonomy.TopicSeed(category)
	return weak
}

// GetTips 从不返回错误，任何失败都退回默认建议
func (s *StudyTipsService) GetTips(ctx context.Context, userID uint, category string) *model.StudyTipsResponse {
	weak := s.weakTopics(ctx, userID, category)
	if weak == nil {
		weak = []string{}
	}
	resp := &model.StudyTipsResponse{Category: category, WeakTopics: weak}

	if s.Cache != nil {
		if tips, ok := s.Cache.Get(ctx, category, weak); ok {
			resp.Tips, resp.Source = tips, tipsSourceCache
			monitoring.StudyTipsCounter.WithLabelValues(tipsSourceCache).Inc()
			return resp
		}
	}

	if s.Generator != nil {
		genCtx, cancel := ctx, context.CancelFunc(func() {})
		if s.timeout > 0 {
			genCtx, cancel = context.WithTimeout(ctx, s.timeout)
		}
		tips, err := s.Generator.GenerateTips(genCtx, category, weak)
		cancel()

		if err == nil {
			if s.Cache != nil && s.ttl > 0 {
				if err := s.Cache.Set(ctx, category, weak, tips, s.ttl); err != nil {
					logger.Log.Warn("cache study tips failed", zap.Error(err))
				}
			}
			resp.Tips, resp.Source = tips, tipsSourceAI
			monitoring.StudyTipsCounter.WithLabelValues(tipsSourceAI).Inc()
			return resp
		}
		logger.Log.Error("Error generating study tips", zap.String("category", category), zap.Error(err))
	}

	resp.Tips, resp.Source = DefaultStudyTips(weak), tipsSourceDefault
	monitoring.StudyTipsCounter.WithLabelValues(tipsSourceDefault).Inc()
	return resp
}
