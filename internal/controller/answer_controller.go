package controller

import (
	"quiz_adaptive_backend/internal/model"
	"quiz_adaptive_backend/internal/service"
	"quiz_adaptive_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AnswerController struct {
	AnswerService *service.AnswerService
}

func NewAnswerController(answerService *service.AnswerService) *AnswerController {
	return &AnswerController{AnswerService: answerService}
}

// RecordAnswer godoc
// @Summary 提交答题记录
// @Description 记录一次答题，并让该分类缓存的学习画像失效
// @Tags 答题
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body model.RecordAnswerRequest true "答题结果"
// @Success 201 {object} util.Response{data=model.AnswerRecord}
// @Failure 400 {object} util.Response "请求参数错误"
// @Router /api/answers [post]
func (c *AnswerController) RecordAnswer(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req model.RecordAnswerRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	record, err := c.AnswerService.Record(ctx.Request.Context(), user.UserID, &req)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Created(ctx, record)
}
