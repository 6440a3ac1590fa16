package model

// swagger:model Scenario
type Scenario struct {
	UUIDBase
	Title       string          `gorm:"size:255;not null" json:"title"`
	Description string          `gorm:"type:text" json:"description"`
	ModuleID    *string         `gorm:"type:varchar(36);index" json:"moduleId,omitempty"`
	Module      *TrainingModule `gorm:"foreignKey:ModuleID" json:"module,omitempty"`
}

func (Scenario) TableName() string {
	return "scenarios"
}

// ScenarioNode 决策树节点。IsCompliant 只在叶子节点上有意义
// swagger:model ScenarioNode
type ScenarioNode struct {
	UUIDBase
	ScenarioID   string  `gorm:"type:varchar(36);index;not null" json:"scenarioId"`
	ParentNodeID *string `gorm:"type:varchar(36);index" json:"parentNodeId"`
	IsRoot       bool    `gorm:"default:false" json:"isRoot"`
	NodeText     string  `gorm:"type:text;not null" json:"nodeText"`
	IsCompliant  *bool   `json:"isCompliant"`
	Explanation  string  `gorm:"type:text" json:"explanation,omitempty"`
	SortOrder    int     `gorm:"default:0" json:"sortOrder"`
}

func (ScenarioNode) TableName() string {
	return "scenario_nodes"
}
