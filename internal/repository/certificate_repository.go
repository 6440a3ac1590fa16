package repository

import (
	"compliance_edu_backend/internal/model"

	"gorm.io/gorm"
)

type CertificateRepository struct {
	DB *gorm.DB
}

func NewCertificateRepository(db *gorm.DB) *CertificateRepository {
	return &CertificateRepository{DB: db}
}

func (r *CertificateRepository) Create(c *model.Certificate) error {
	return r.DB.Create(c).Error
}

func (r *CertificateRepository) FindByID(id string) (*model.Certificate, error) {
	var c model.Certificate
	if err := r.DB.Preload("Module").First(&c, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (r *CertificateRepository) ListByUser(userID string) ([]model.Certificate, error) {
	var cs []model.Certificate
	err := r.DB.Preload("Module").Where("user_id = ?", userID).Order("issued_at desc").Find(&cs).Error
	return cs, err
}

// ListExpiringByUser 按到期时间升序，用于仪表盘提醒
func (r *CertificateRepository) ListExpiringByUser(userID string, limit int) ([]model.Certificate, error) {
	var cs []model.Certificate
	err := r.DB.Preload("Module").Where("user_id = ?", userID).
		Order("valid_until asc").Limit(limit).Find(&cs).Error
	return cs, err
}

func (r *CertificateRepository) CountByUser(userID string) (int64, error) {
	var total int64
	err := r.DB.Model(&model.Certificate{}).Where("user_id = ?", userID).Count(&total).Error
	return total, err
}

func (r *CertificateRepository) Count() (int64, error) {
	var total int64
	err := r.DB.Model(&model.Certificate{}).Count(&total).Error
	return total, err
}

type ModuleCount struct {
	Title string `json:"name"`
	Count int64  `json:"certifications"`
}

func (r *CertificateRepository) CountByModule() ([]ModuleCount, error) {
	var rows []ModuleCount
	err := r.DB.Table("certificates").
		Select("COALESCE(training_modules.title, 'Unknown') AS title, COUNT(*) AS count").
		Joins("LEFT JOIN training_modules ON training_modules.id = certificates.module_id").
		Where("certificates.deleted_at IS NULL").
		Group("COALESCE(training_modules.title, 'Unknown')").
		Order("count desc").
		Scan(&rows).Error
	return rows, err
}

// PendingCertificate 已通过、测评关联了模块、但还没有证书的作答
type PendingCertificate struct {
	AttemptID string
	UserID    string
	ModuleID  string
}

func (r *CertificateRepository) ListPending(limit int) ([]PendingCertificate, error) {
	var rows []PendingCertificate
	err := r.DB.Table("attempts").
		Select("attempts.id AS attempt_id, attempts.user_id AS user_id, assessments.module_id AS module_id").
		Joins("JOIN assessments ON assessments.id = attempts.assessment_id AND assessments.deleted_at IS NULL").
		Joins("LEFT JOIN certificates ON certificates.attempt_id = attempts.id").
		Where("attempts.passed = ? AND attempts.deleted_at IS NULL", true).
		Where("assessments.module_id IS NOT NULL AND assessments.module_id <> '' AND certificates.id IS NULL").
		Order("attempts.completed_at asc").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}
