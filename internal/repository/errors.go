package repository

import (
	"compliance_edu_backend/internal/util"
	"errors"

	"gorm.io/gorm"
)

// translate 把 gorm 的 not found 转为领域错误，其余原样返回
func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return util.ErrNotFound
	}
	return err
}

func pageOffset(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return (page - 1) * limit, limit
}
