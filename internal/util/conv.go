package util

import (
	"strconv"
)

// MustParseUint 将字符串转换为无符号整数，解析失败时返回 0
func MustParseUint(s string) uint {
	id, _ := strconv.ParseUint(s, 10, 32)
	return uint(id)
}

// FormatUint 用户ID转成引擎使用的字符串ID
func FormatUint(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

// ParseNonNegativeInt 解析可选的非负整数参数，空串返回 0
func ParseNonNegativeInt(s string) (int, bool) {
	if s == "" {
		return 0, true
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
