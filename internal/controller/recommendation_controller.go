package controller

import (
	"errors"
	"net/http"
	"strings"

	"quiz_adaptive_backend/internal/recommend"
	"quiz_adaptive_backend/internal/service"
	"quiz_adaptive_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type RecommendationController struct {
	RecommendationService *service.RecommendationService
	StudyTipsService      *service.StudyTipsService
}

func NewRecommendationController(recommendationService *service.RecommendationService, studyTipsService *service.StudyTipsService) *RecommendationController {
	return &RecommendationController{
		RecommendationService: recommendationService,
		StudyTipsService:      studyTipsService,
	}
}

// categoryQuery 读取 category 参数；required 为 false 时允许为空
func categoryQuery(ctx *gin.Context, required bool) (string, bool) {
	category := strings.TrimSpace(ctx.Query("category"))
	if category == "" && !required {
		return "", true
	}
	if !util.ValidCategory(category) {
		util.BadRequest(ctx, "invalid category")
		return "", false
	}
	return category, true
}

func respondRecommendError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, recommend.ErrNoData):
		util.Error(ctx, http.StatusNotFound, "no answer history for this category")
	case errors.Is(err, recommend.ErrUpstreamUnavailable):
		util.ServiceUnavailable(ctx, "answer history temporarily unavailable")
	default:
		util.LogInternalError(ctx, err)
	}
}

// GetRecommendations godoc
// @Summary 获取个性化学习推荐
// @Description 每个分类一条推荐；不传 category 时覆盖所有答过题的分类
// @Tags 推荐
// @Produce json
// @Security ApiKeyAuth
// @Param category query string false "分类"
// @Success 200 {object} util.Response{data=model.RecommendationResponse}
// @Failure 503 {object} util.Response "答题历史暂不可用"
// @Router /api/recommendations [get]
func (c *RecommendationController) GetRecommendations(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	category, ok := categoryQuery(ctx, false)
	if !ok {
		return
	}

	resp, err := c.RecommendationService.ForUser(ctx.Request.Context(), user.UserID, category)
	if err != nil {
		respondRecommendError(ctx, err)
		return
	}
	util.Success(ctx, resp)
}

// GetUserRecommendations godoc
// @Summary 查看指定学生的推荐
// @Tags 推荐
// @Produce json
// @Security ApiKeyAuth
// @Param userId path int true "用户ID"
// @Param category query string false "分类"
// @Success 200 {object} util.Response{data=model.RecommendationResponse}
// @Router /api/admin/users/{userId}/recommendations [get]
func (c *RecommendationController) GetUserRecommendations(ctx *gin.Context) {
	userID := util.MustParseUint(ctx.Param("userId"))
	if userID == 0 {
		util.BadRequest(ctx, "invalid user id")
		return
	}

	category, ok := categoryQuery(ctx, false)
	if !ok {
		return
	}

	resp, err := c.RecommendationService.ForUser(ctx.Request.Context(), userID, category)
	if err != nil {
		respondRecommendError(ctx, err)
		return
	}
	util.Success(ctx, resp)
}

// GetNextQuestion godoc
// @Summary 下一题参数
// @Description 结合长期画像和本轮答题情况给出下一题的难度、主题和预计用时
// @Tags 推荐
// @Produce json
// @Security ApiKeyAuth
// @Param category query string true "分类"
// @Param correct query int false "本轮答对数"
// @Param total query int false "本轮已答数"
// @Success 200 {object} util.Response{data=model.NextQuestionResponse}
// @Router /api/recommendations/next-question [get]
func (c *RecommendationController) GetNextQuestion(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	category, ok := categoryQuery(ctx, true)
	if !ok {
		return
	}

	correct, okCorrect := util.ParseNonNegativeInt(ctx.Query("correct"))
	total, okTotal := util.ParseNonNegativeInt(ctx.Query("total"))
	if !okCorrect || !okTotal || correct > total {
		util.BadRequest(ctx, "correct and total must be non-negative with correct <= total")
		return
	}

	var session *recommend.SessionState
	if total > 0 {
		session = &recommend.SessionState{Correct: correct, Total: total}
	}

	resp, err := c.RecommendationService.NextQuestion(ctx.Request.Context(), user.UserID, category, session)
	if err != nil {
		respondRecommendError(ctx, err)
		return
	}
	util.Success(ctx, resp)
}

// GetPerformance godoc
// @Summary 学习画像
// @Description 某分类的正确率、趋势、薄弱/优势主题和建议难度
// @Tags 推荐
// @Produce json
// @Security ApiKeyAuth
// @Param category query string true "分类"
// @Success 200 {object} util.Response{data=recommend.PerformanceRecord}
// @Failure 404 {object} util.Response "没有答题记录"
// @Router /api/recommendations/performance [get]
func (c *RecommendationController) GetPerformance(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	category, ok := categoryQuery(ctx, true)
	if !ok {
		return
	}

	profile, err := c.RecommendationService.Profile(ctx.Request.Context(), user.UserID, category)
	if err != nil {
		respondRecommendError(ctx, err)
		return
	}
	util.Success(ctx, profile)
}

// GetStudyTips godoc
// @Summary 学习建议
// @Description 根据薄弱主题生成学习建议，AI 不可用时返回默认建议
// @Tags 推荐
// @Produce json
// @Security ApiKeyAuth
// @Param category query string true "分类"
// @Success 200 {object} util.Response{data=model.StudyTipsResponse}
// @Router /api/recommendations/study-tips [get]
func (c *RecommendationController) GetStudyTips(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	category, ok := categoryQuery(ctx, true)
	if !ok {
		return
	}

	util.Success(ctx, c.StudyTipsService.GetTips(ctx.Request.Context(), user.UserID, category))
}
