package util

import (
	"strconv"

	"github.com/google/uuid"
)

// ParseIntDefault 解析失败时返回默认值
func ParseIntDefault(s string, def int) int {
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}

// IsUUID 用于路径参数的快速校验
func IsUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
