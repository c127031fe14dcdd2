package service

import (
	"context"
	"errors"
	"sort"

	"quiz_adaptive_backend/internal/config"
	"quiz_adaptive_backend/internal/model"
	"quiz_adaptive_backend/internal/recommend"
	"quiz_adaptive_backend/internal/util"
	"quiz_adaptive_backend/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	taxonomySourceDatabase = "database"
	taxonomySourceConfig   = "config"
)

type TaxonomyStore interface {
	FindByCategory(ctx context.Context, category string) (*model.CategoryTaxonomy, error)
	List(ctx context.Context) ([]model.CategoryTaxonomy, error)
	Upsert(ctx context.Context, t *model.CategoryTaxonomy) error
	Delete(ctx context.Context, category string) (bool, error)
}

// SeedsFromConfig 配置里没有任何分类时使用内置默认值
func SeedsFromConfig(list []config.TopicSeedConfig) map[string]recommend.TopicSeed {
	if len(list) == 0 {
		return recommend.DefaultSeeds()
	}
	seeds := make(map[string]recommend.TopicSeed, len(list))
	for _, t := range list {
		seeds[t.Category] = recommend.TopicSeed{Weak: t.Weak, Strong: t.Strong}
	}
	return seeds
}

// TaxonomyService 管理分类主题种子：数据库中的覆盖项优先，其次是配置文件
type TaxonomyService struct {
	Repo      TaxonomyStore
	static    *recommend.StaticTaxonomy
	overrides *recommend.StaticTaxonomy
}

func NewTaxonomyService(repo TaxonomyStore, seeds []config.TopicSeedConfig) *TaxonomyService {
	return &TaxonomyService{
		Repo:      repo,
		static:    recommend.NewStaticTaxonomy(SeedsFromConfig(seeds)),
		overrides: recommend.NewStaticTaxonomy(nil),
	}
}

// Taxonomy 供推荐引擎使用
func (s *TaxonomyService) Taxonomy() recommend.Taxonomy {
	return recommend.ChainTaxonomy{
		Sources:  []recommend.SeedLookup{s.overrides},
		Fallback: s.static,
	}
}

// ReloadStatic 配置热更新回调
func (s *TaxonomyService) ReloadStatic(seeds []config.TopicSeedConfig) {
	s.static.Replace(SeedsFromConfig(seeds))
}

// Refresh 从数据库重新加载覆盖项
func (s *TaxonomyService) Refresh(ctx context.Context) error {
	list, err := s.Repo.List(ctx)
	if err != nil {
		return err
	}

	seeds := make(map[string]recommend.TopicSeed, len(list))
	for i := range list {
		seed, err := list[i].Seed()
		if err != nil {
			logger.Log.Warn("skip corrupted taxonomy row", zap.String("category", list[i].Category), zap.Error(err))
			continue
		}
		seeds[list[i].Category] = seed
	}
	s.overrides.Replace(seeds)
	return nil
}

func toTaxonomyResponse(category string, seed recommend.TopicSeed, source string) model.TaxonomyResponse {
	resp := model.TaxonomyResponse{
		Category:     category,
		WeakTopics:   seed.Weak,
		StrongTopics: seed.Strong,
		Source:       source,
	}
	if resp.WeakTopics == nil {
		resp.WeakTopics = []string{}
	}
	if resp.StrongTopics == nil {
		resp.StrongTopics = []string{}
	}
	return resp
}

func (s *TaxonomyService) Get(ctx context.Context, category string) (*model.TaxonomyResponse, error) {
	t, err := s.Repo.FindByCategory(ctx, category)
	if err == nil {
		seed, err := t.Seed()
		if err != nil {
			return nil, err
		}
		resp := toTaxonomyResponse(category, seed, taxonomySourceDatabase)
		return &resp, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	seed, ok := s.static.Lookup(category)
	if !ok {
		return nil, util.ErrTaxonomyNotFound
	}
	resp := toTaxonomyResponse(category, seed, taxonomySourceConfig)
	return &resp, nil
}

// List 数据库和配置合并后的全部分类
func (s *TaxonomyService) List(ctx context.Context) ([]model.TaxonomyResponse, error) {
	list, err := s.Repo.List(ctx)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(list))
	configured := s.static.Categories()
	out := make([]model.TaxonomyResponse, 0, len(list)+len(configured))
	for i := range list {
		seed, err := list[i].Seed()
		if err != nil {
			logger.Log.Warn("skip corrupted taxonomy row", zap.String("category", list[i].Category), zap.Error(err))
			continue
		}
		seen[list[i].Category] = true
		out = append(out, toTaxonomyResponse(list[i].Category, seed, taxonomySourceDatabase))
	}
	for _, category := range configured {
		if seen[category] {
			continue
		}
		if seed, ok := s.static.Lookup(category); ok {
			out = append(out, toTaxonomyResponse(category, seed, taxonomySourceConfig))
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Category < out[j].Category })
	return out, nil
}

func (s *TaxonomyService) Put(ctx context.Context, category string, req *model.TaxonomyRequest, updatedBy uint) (*model.TaxonomyResponse, error) {
	t := &model.CategoryTaxonomy{Category: category, UpdatedBy: updatedBy}
	if err := t.SetSeed(req.WeakTopics, req.StrongTopics); err != nil {
		return nil, err
	}
	if err := s.Repo.Upsert(ctx, t); err != nil {
		return nil, err
	}
	if err := s.Refresh(ctx); err != nil {
		logger.Log.Warn("refresh taxonomy overrides failed", zap.Error(err))
	}

	seed, _ := t.Seed()
	resp := toTaxonomyResponse(category, seed, taxonomySourceDatabase)
	return &resp, nil
}

// Delete 删除数据库覆盖项，之后回落到配置文件
func (s *TaxonomyService) Delete(ctx context.Context, category string) error {
	deleted, err := s.Repo.Delete(ctx, category)
	if err != nil {
		return err
	}
	if !deleted {
		return util.ErrTaxonomyNotFound
	}
	if err := s.Refresh(ctx); err != nil {
		logger.Log.Warn("refresh taxonomy overrides failed", zap.Error(err))
	}
	return nil
}
