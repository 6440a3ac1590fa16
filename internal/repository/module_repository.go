package repository

import (
	"compliance_edu_backend/internal/model"

	"gorm.io/gorm"
)

type ModuleRepository struct {
	DB *gorm.DB
}

func NewModuleRepository(db *gorm.DB) *ModuleRepository {
	return &ModuleRepository{DB: db}
}

func (r *ModuleRepository) Create(m *model.TrainingModule) error {
	return r.DB.Create(m).Error
}

func (r *ModuleRepository) Update(m *model.TrainingModule) error {
	return r.DB.Save(m).Error
}

func (r *ModuleRepository) FindByID(id string) (*model.TrainingModule, error) {
	var m model.TrainingModule
	if err := r.DB.First(&m, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &m, nil
}

func (r *ModuleRepository) List() ([]model.TrainingModule, error) {
	var ms []model.TrainingModule
	err := r.DB.Order("created_at desc").Find(&ms).Error
	return ms, err
}

func (r *ModuleRepository) ListMandatory() ([]model.TrainingModule, error) {
	var ms []model.TrainingModule
	err := r.DB.Where("is_mandatory = ?", true).Order("created_at asc").Find(&ms).Error
	return ms, err
}

func (r *ModuleRepository) Delete(id string) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("module_id = ?", id).Delete(&model.ModuleProgress{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&model.TrainingModule{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return translate(gorm.ErrRecordNotFound)
		}
		return nil
	})
}

func (r *ModuleRepository) Count() (int64, error) {
	var total int64
	err := r.DB.Model(&model.TrainingModule{}).Count(&total).Error
	return total, err
}
