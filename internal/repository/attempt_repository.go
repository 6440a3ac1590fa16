package repository

import (
	"compliance_edu_backend/internal/model"

	"gorm.io/gorm"
)

type AttemptRepository struct {
	DB *gorm.DB
}

func NewAttemptRepository(db *gorm.DB) *AttemptRepository {
	return &AttemptRepository{DB: db}
}

// CreateWithCertificate 先写作答记录，通过时再写证书，两者在同一事务内。
// cert 为 nil 表示无需签发。
func (r *AttemptRepository) CreateWithCertificate(attempt *model.Attempt, cert *model.Certificate) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(attempt).Error; err != nil {
			return err
		}
		if cert == nil {
			return nil
		}
		cert.AttemptID = &attempt.ID
		return tx.Create(cert).Error
	})
}

func (r *AttemptRepository) FindByID(id string) (*model.Attempt, error) {
	var a model.Attempt
	if err := r.DB.First(&a, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &a, nil
}

func (r *AttemptRepository) ListByUser(userID string) ([]model.Attempt, error) {
	var as []model.Attempt
	err := r.DB.Where("user_id = ?", userID).Order("completed_at desc").Find(&as).Error
	return as, err
}

func (r *AttemptRepository) CountByUser(userID string) (int64, error) {
	var total int64
	err := r.DB.Model(&model.Attempt{}).Where("user_id = ?", userID).Count(&total).Error
	return total, err
}

type PassCounts struct {
	Total  int64 `json:"total"`
	Passed int64 `json:"passed"`
}

func (r *AttemptRepository) PassCounts() (PassCounts, error) {
	var pc PassCounts
	if err := r.DB.Model(&model.Attempt{}).Count(&pc.Total).Error; err != nil {
		return pc, err
	}
	err := r.DB.Model(&model.Attempt{}).Where("passed = ?", true).Count(&pc.Passed).Error
	return pc, err
}
