package model

import (
	"time"

	"gorm.io/datatypes"
)

// swagger:model Assessment
type Assessment struct {
	UUIDBase
	Title             string          `gorm:"size:255;not null" json:"title"`
	ModuleID          *string         `gorm:"type:varchar(36);index" json:"moduleId,omitempty"`
	Module            *TrainingModule `gorm:"foreignKey:ModuleID" json:"module,omitempty"`
	PassThreshold     int             `gorm:"default:70" json:"passThreshold"` // 百分比 0-100
	QuestionCount     int             `gorm:"default:0" json:"questionCount"`
	ImmediateFeedback bool            `gorm:"default:false" json:"immediateFeedback"`
}

func (Assessment) TableName() string {
	return "assessments"
}

// swagger:model Question
type Question struct {
	UUIDBase
	AssessmentID  string                     `gorm:"type:varchar(36);index;not null" json:"assessmentId"`
	QuestionText  string                     `gorm:"type:text;not null" json:"questionText"`
	Options       datatypes.JSONSlice[string] `gorm:"type:json" json:"options"`
	CorrectOption int                        `json:"correctOption"` // options 的下标，从 0 开始
	Explanation   string                     `gorm:"type:text" json:"explanation,omitempty"`
	SortOrder     int                        `gorm:"default:0" json:"sortOrder"`
}

func (Question) TableName() string {
	return "questions"
}

type AttemptAnswer struct {
	QuestionID string `json:"question_id"`
	Selected   int    `json:"selected"`
}

// swagger:model Attempt
type Attempt struct {
	UUIDBase
	UserID         string                            `gorm:"type:varchar(36);index;not null" json:"userId"`
	AssessmentID   string                            `gorm:"type:varchar(36);index;not null" json:"assessmentId"`
	Score          int                               `json:"score"`
	TotalQuestions int                               `json:"totalQuestions"`
	Percentage     int                               `json:"percentage"`
	Passed         bool                              `gorm:"index" json:"passed"`
	Answers        datatypes.JSONSlice[AttemptAnswer] `gorm:"type:json" json:"answers"`
	CompletedAt    time.Time                         `json:"completedAt"`
}

func (Attempt) TableName() string {
	return "attempts"
}
