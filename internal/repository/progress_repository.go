package repository

import (
	"compliance_edu_backend/internal/model"

	"gorm.io/gorm"
)

type ProgressRepository struct {
	DB *gorm.DB
}

func NewProgressRepository(db *gorm.DB) *ProgressRepository {
	return &ProgressRepository{DB: db}
}

func (r *ProgressRepository) FindByUserAndModule(userID, moduleID string) (*model.ModuleProgress, error) {
	var p model.ModuleProgress
	err := r.DB.Where("user_id = ? AND module_id = ?", userID, moduleID).First(&p).Error
	if err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

// Save 新建或更新进度书签
func (r *ProgressRepository) Save(p *model.ModuleProgress) error {
	if p.ID == "" {
		return r.DB.Create(p).Error
	}
	return r.DB.Save(p).Error
}

func (r *ProgressRepository) ListByUser(userID string) ([]model.ModuleProgress, error) {
	var ps []model.ModuleProgress
	err := r.DB.Preload("Module").Where("user_id = ?", userID).Find(&ps).Error
	return ps, err
}

type StatusCount struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
}

func (r *ProgressRepository) StatusCounts() ([]StatusCount, error) {
	var rows []StatusCount
	err := r.DB.Model(&model.ModuleProgress{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	return rows, err
}
