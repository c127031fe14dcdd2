package util

// 分类名称的长度上限，与 answer_records.category 列一致
const MaxCategoryLength = 100

// Redis key 前缀
const (
	ProfileCacheKeyPrefix      = "rec:profile:"
	ProfileGenerationKeyPrefix = "rec:profile-gen:"
	ProfileSequenceKey         = "rec:profile-seq"
	StudyTipsKeyPrefix         = "rec:tips:"
)
