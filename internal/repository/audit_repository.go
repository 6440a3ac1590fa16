package repository

import (
	"compliance_edu_backend/internal/model"

	"gorm.io/gorm"
)

type AuditRepository struct {
	DB *gorm.DB
}

func NewAuditRepository(db *gorm.DB) *AuditRepository {
	return &AuditRepository{DB: db}
}

func (r *AuditRepository) Create(l *model.AuditLog) error {
	return r.DB.Create(l).Error
}

func (r *AuditRepository) List(page, limit int) ([]model.AuditLog, int64, error) {
	var logs []model.AuditLog
	var total int64
	query := r.DB.Model(&model.AuditLog{})
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	offset, limit := pageOffset(page, limit)
	err := query.Order("created_at desc").Offset(offset).Limit(limit).Find(&logs).Error
	return logs, total, err
}
