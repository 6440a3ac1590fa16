package model

import (
	"time"

	"gorm.io/datatypes"
)

// swagger:model TrainingModule
type TrainingModule struct {
	UUIDBase
	Title           string                     `gorm:"size:255;not null" json:"title"`
	Description     string                     `gorm:"type:text" json:"description"`
	Content         string                     `gorm:"type:text" json:"content"` // markdown，按 "## " 切分章节
	DPDPSection     string                     `gorm:"size:64;not null" json:"dpdpSection"`
	DurationMinutes int                        `gorm:"default:30" json:"durationMinutes"`
	IsMandatory     bool                       `gorm:"default:false" json:"isMandatory"`
	Objectives      datatypes.JSONSlice[string] `gorm:"type:json" json:"objectives"`
	Version         string                     `gorm:"size:32;default:'1.0'" json:"version"`
	CreatedBy       *string                    `gorm:"type:varchar(36)" json:"createdBy,omitempty"`
}

func (TrainingModule) TableName() string {
	return "training_modules"
}

const (
	ProgressInProgress = "in_progress"
	ProgressCompleted  = "completed"
)

// ModuleProgress 学习进度书签，每个 (user, module) 一条
type ModuleProgress struct {
	UUIDBase
	UserID          string          `gorm:"type:varchar(36);uniqueIndex:idx_progress_user_module" json:"userId"`
	ModuleID        string          `gorm:"type:varchar(36);uniqueIndex:idx_progress_user_module" json:"moduleId"`
	Module          *TrainingModule `gorm:"foreignKey:ModuleID" json:"module,omitempty"`
	ProgressPercent int             `gorm:"default:0" json:"progressPercent"`
	LastSection     string          `gorm:"size:255" json:"lastSection"`
	Status          string          `gorm:"size:20;default:'in_progress'" json:"status"`
	StartedAt       time.Time       `json:"startedAt"`
	CompletedAt     *time.Time      `json:"completedAt,omitempty"`
}

func (ModuleProgress) TableName() string {
	return "module_progress"
}
