package repository

import (
	"context"

	"quiz_adaptive_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TaxonomyRepository struct {
	DB *gorm.DB
}

func NewTaxonomyRepository(db *gorm.DB) *TaxonomyRepository {
	return &TaxonomyRepository{DB: db}
}

func (r *TaxonomyRepository) FindByCategory(ctx context.Context, category string) (*model.CategoryTaxonomy, error) {
	var t model.CategoryTaxonomy
	err := r.DB.WithContext(ctx).Where("category = ?", category).First(&t).Error
	return &t, err
}

func (r *TaxonomyRepository) List(ctx context.Context) ([]model.CategoryTaxonomy, error) {
	var list []model.CategoryTaxonomy
	err := r.DB.WithContext(ctx).Order("category").Find(&list).Error
	return list, err
}

// Upsert 按分类写入，已存在则覆盖主题列表
func (r *TaxonomyRepository) Upsert(ctx context.Context, t *model.CategoryTaxonomy) error {
	return r.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "category"}},
		DoUpdates: clause.AssignmentColumns([]string{"weak_topics", "strong_topics", "updated_by", "updated_at", "deleted_at"}),
	}).Create(t).Error
}

// Delete 物理删除，category 上有唯一索引
func (r *TaxonomyRepository) Delete(ctx context.Context, category string) (bool, error) {
	res := r.DB.WithContext(ctx).Unscoped().Where("category = ?", category).Delete(&model.CategoryTaxonomy{})
	return res.RowsAffected > 0, res.Error
}
