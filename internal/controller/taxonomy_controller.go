package controller

import (
	"errors"
	"strings"

	"quiz_adaptive_backend/internal/model"
	"quiz_adaptive_backend/internal/service"
	"quiz_adaptive_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type TaxonomyController struct {
	TaxonomyService *service.TaxonomyService
}

func NewTaxonomyController(taxonomyService *service.TaxonomyService) *TaxonomyController {
	return &TaxonomyController{TaxonomyService: taxonomyService}
}

func categoryParam(ctx *gin.Context) (string, bool) {
	category := strings.TrimSpace(ctx.Param("category"))
	if !util.ValidCategory(category) {
		util.BadRequest(ctx, "invalid category")
		return "", false
	}
	return category, true
}

// ListTaxonomies godoc
// @Summary 分类主题种子列表
// @Tags 分类管理
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]model.TaxonomyResponse}
// @Router /api/admin/taxonomies [get]
func (c *TaxonomyController) ListTaxonomies(ctx *gin.Context) {
	list, err := c.TaxonomyService.List(ctx.Request.Context())
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, list)
}

// GetTaxonomy godoc
// @Summary 查看分类主题种子
// @Tags 分类管理
// @Produce json
// @Security ApiKeyAuth
// @Param category path string true "分类"
// @Success 200 {object} util.Response{data=model.TaxonomyResponse}
// @Failure 404 {object} util.Response
// @Router /api/admin/taxonomies/{category} [get]
func (c *TaxonomyController) GetTaxonomy(ctx *gin.Context) {
	category, ok := categoryParam(ctx)
	if !ok {
		return
	}

	resp, err := c.TaxonomyService.Get(ctx.Request.Context(), category)
	if errors.Is(err, util.ErrTaxonomyNotFound) {
		util.NotFound(ctx)
		return
	}
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, resp)
}

// PutTaxonomy godoc
// @Summary 设置分类主题种子
// @Description 覆盖配置文件中的默认值，对之后未缓存的分析生效
// @Tags 分类管理
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param category path string true "分类"
// @Param body body model.TaxonomyRequest true "薄弱/优势主题"
// @Success 200 {object} util.Response{data=model.TaxonomyResponse}
// @Router /api/admin/taxonomies/{category} [put]
func (c *TaxonomyController) PutTaxonomy(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	category, ok := categoryParam(ctx)
	if !ok {
		return
	}

	var req model.TaxonomyRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	resp, err := c.TaxonomyService.Put(ctx.Request.Context(), category, &req, user.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, resp)
}

// DeleteTaxonomy godoc
// @Summary 删除分类主题覆盖项
// @Tags 分类管理
// @Produce json
// @Security ApiKeyAuth
// @Param category path string true "分类"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/admin/taxonomies/{category} [delete]
func (c *TaxonomyController) DeleteTaxonomy(ctx *gin.Context) {
	category, ok := categoryParam(ctx)
	if !ok {
		return
	}

	err := c.TaxonomyService.Delete(ctx.Request.Context(), category)
	if errors.Is(err, util.ErrTaxonomyNotFound) {
		util.NotFound(ctx)
		return
	}
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"category": category})
}
