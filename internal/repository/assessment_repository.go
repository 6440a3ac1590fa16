package repository

import (
	"compliance_edu_backend/internal/model"

	"gorm.io/gorm"
)

type AssessmentRepository struct {
	DB *gorm.DB
}

func NewAssessmentRepository(db *gorm.DB) *AssessmentRepository {
	return &AssessmentRepository{DB: db}
}

func (r *AssessmentRepository) CreateWithQuestions(a *model.Assessment, questions []model.Question) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		a.QuestionCount = len(questions)
		if err := tx.Create(a).Error; err != nil {
			return err
		}
		if len(questions) == 0 {
			return nil
		}
		for i := range questions {
			questions[i].AssessmentID = a.ID
		}
		return tx.Create(&questions).Error
	})
}

func (r *AssessmentRepository) FindByID(id string) (*model.Assessment, error) {
	var a model.Assessment
	if err := r.DB.Preload("Module").First(&a, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &a, nil
}

func (r *AssessmentRepository) List() ([]model.Assessment, error) {
	var as []model.Assessment
	err := r.DB.Preload("Module").Order("created_at desc").Find(&as).Error
	return as, err
}

// ListQuestions 按 sort_order 返回题目
func (r *AssessmentRepository) ListQuestions(assessmentID string) ([]model.Question, error) {
	var qs []model.Question
	err := r.DB.Where("assessment_id = ?", assessmentID).
		Order("sort_order asc").
		Find(&qs).Error
	return qs, err
}

func (r *AssessmentRepository) Delete(id string) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("assessment_id = ?", id).Delete(&model.Question{}).Error; err != nil {
			return err
		}
		if err := tx.Where("assessment_id = ?", id).Delete(&model.Attempt{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&model.Assessment{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return translate(gorm.ErrRecordNotFound)
		}
		return nil
	})
}
