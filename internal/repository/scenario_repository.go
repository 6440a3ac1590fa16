package repository

import (
	"compliance_edu_backend/internal/model"

	"gorm.io/gorm"
)

type ScenarioRepository struct {
	DB *gorm.DB
}

func NewScenarioRepository(db *gorm.DB) *ScenarioRepository {
	return &ScenarioRepository{DB: db}
}

// CreateWithNodes 在同一事务中写入情景和全部节点。
// 调用方需要事先为节点分配好 ID，以便 ParentNodeID 可以直接引用。
func (r *ScenarioRepository) CreateWithNodes(s *model.Scenario, nodes []model.ScenarioNode) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(s).Error; err != nil {
			return err
		}
		if len(nodes) == 0 {
			return nil
		}
		for i := range nodes {
			nodes[i].ScenarioID = s.ID
		}
		return tx.Create(&nodes).Error
	})
}

func (r *ScenarioRepository) FindByID(id string) (*model.Scenario, error) {
	var s model.Scenario
	if err := r.DB.Preload("Module").First(&s, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &s, nil
}

func (r *ScenarioRepository) List() ([]model.Scenario, error) {
	var ss []model.Scenario
	err := r.DB.Preload("Module").Order("created_at desc").Find(&ss).Error
	return ss, err
}

// ListNodes 返回情景下全部节点，顺序不作保证
func (r *ScenarioRepository) ListNodes(scenarioID string) ([]model.ScenarioNode, error) {
	var nodes []model.ScenarioNode
	err := r.DB.Where("scenario_id = ?", scenarioID).Order("sort_order asc").Find(&nodes).Error
	return nodes, err
}

func (r *ScenarioRepository) Delete(id string) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("scenario_id = ?", id).Delete(&model.ScenarioNode{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&model.Scenario{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return translate(gorm.ErrRecordNotFound)
		}
		return nil
	})
}

func (r *ScenarioRepository) Count() (int64, error) {
	var total int64
	err := r.DB.Model(&model.Scenario{}).Count(&total).Error
	return total, err
}
