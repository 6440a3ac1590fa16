package model

import (
	"math"
	"time"
)

// swagger:model Certificate
type Certificate struct {
	UUIDBase
	UserID            string          `gorm:"type:varchar(36);index;not null" json:"userId"`
	ModuleID          string          `gorm:"type:varchar(36);index;not null" json:"moduleId"`
	Module            *TrainingModule `gorm:"foreignKey:ModuleID" json:"module,omitempty"`
	AttemptID         *string         `gorm:"type:varchar(36);uniqueIndex" json:"attemptId,omitempty"`
	CertificateNumber string          `gorm:"size:64;uniqueIndex;not null" json:"certificateNumber"`
	IssuedAt          time.Time       `json:"issuedAt"`
	ValidUntil        time.Time       `gorm:"index" json:"validUntil"`
}

func (Certificate) TableName() string {
	return "certificates"
}

func (c *Certificate) IsValid(now time.Time) bool {
	return c.ValidUntil.After(now)
}

// DaysLeft 向上取整，过期后为负数
func (c *Certificate) DaysLeft(now time.Time) int {
	return int(math.Ceil(c.ValidUntil.Sub(now).Hours() / 24))
}
