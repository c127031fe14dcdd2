package model

import (
	"encoding/json"

	"quiz_adaptive_backend/internal/recommend"

	"gorm.io/datatypes"
)

// CategoryTaxonomy 管理员维护的分类主题种子，优先于配置文件中的默认值
type CategoryTaxonomy struct {
	BaseModel
	Category     string         `gorm:"size:100;uniqueIndex;not null" json:"category"`
	WeakTopics   datatypes.JSON `json:"weakTopics"`   // []string
	StrongTopics datatypes.JSON `json:"strongTopics"` // []string
	UpdatedBy    uint           `json:"updatedBy"`
}

func (CategoryTaxonomy) TableName() string {
	return "category_taxonomies"
}

func (t *CategoryTaxonomy) Seed() (recommend.TopicSeed, error) {
	var seed recommend.TopicSeed
	if len(t.WeakTopics) > 0 {
		if err := json.Unmarshal(t.WeakTopics, &seed.Weak); err != nil {
			return seed, err
		}
	}
	if len(t.StrongTopics) > 0 {
		if err := json.Unmarshal(t.StrongTopics, &seed.Strong); err != nil {
			return seed, err
		}
	}
	return seed, nil
}

func (t *CategoryTaxonomy) SetSeed(weak, strong []string) error {
	if weak == nil {
		weak = []string{}
	}
	if strong == nil {
		strong = []string{}
	}
	w, err := json.Marshal(weak)
	if err != nil {
		return err
	}
	s, err := json.Marshal(strong)
	if err != nil {
		return err
	}
	t.WeakTopics = datatypes.JSON(w)
	t.StrongTopics = datatypes.JSON(s)
	return nil
}
