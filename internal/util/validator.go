package util

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// ValidCategory 分类名不能为空、不能含控制字符，长度不超过列宽
func ValidCategory(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" || utf8.RuneCountInString(s) > MaxCategoryLength {
		return false
	}
	for _, r := range s {
		if unicode.IsControl(r) {
			return false
		}
	}
	return true
}

func validateCategory(fl validator.FieldLevel) bool {
	return ValidCategory(fl.Field().String())
}

// RegisterValidators 给 gin 的 validator 注册自定义 tag
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	return v.RegisterValidation("category", validateCategory)
}
