package model

import "gorm.io/datatypes"

const (
	AuditLogin             = "login"
	AuditAttemptSubmitted  = "attempt.submitted"
	AuditCertificateIssued = "certificate.issued"
	AuditScenarioCompleted = "scenario.completed"
	AuditModuleSaved       = "module.saved"
	AuditModuleDeleted     = "module.deleted"
	AuditScenarioSaved     = "scenario.saved"
	AuditScenarioDeleted   = "scenario.deleted"
	AuditAssessmentSaved   = "assessment.saved"
	AuditAssessmentDeleted = "assessment.deleted"
	AuditRoleChanged       = "user.role_changed"
)

type AuditLog struct {
	UUIDBase
	UserID     *string           `gorm:"type:varchar(36);index" json:"userId,omitempty"`
	Action     string            `gorm:"size:64;index;not null" json:"action"`
	EntityType string            `gorm:"size:64" json:"entityType,omitempty"`
	EntityID   string            `gorm:"size:36" json:"entityId,omitempty"`
	IPAddress  string            `gorm:"size:64" json:"ipAddress,omitempty"`
	Details    datatypes.JSONMap `gorm:"type:json" json:"details,omitempty"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}
