package service

import (
	"compliance_edu_backend/internal/model"
	"compliance_edu_backend/pkg/logger"

	"go.uber.org/zap"
)

type AuditStore interface {
	Create(l *model.AuditLog) error
	List(page, limit int) ([]model.AuditLog, int64, error)
}

type AuditEntry struct {
	UserID     string
	Action     string
	EntityType string
	EntityID   string
	IP         string
	Details    map[string]interface{}
}

type AuditService struct {
	Repo AuditStore
}

func NewAuditService(repo AuditStore) *AuditService {
	return &AuditService{Repo: repo}
}

// Record 尽力写入审计日志，失败只记录日志，不影响主流程
func (s *AuditService) Record(e AuditEntry) {
	if s == nil || s.Repo == nil {
		return
	}
	l := &model.AuditLog{
		Action:     e.Action,
		EntityType: e.EntityType,
		EntityID:   e.EntityID,
		IPAddress:  e.IP,
		Details:    e.Details,
	}
	if e.UserID != "" {
		uid := e.UserID
		l.UserID = &uid
	}
	if err := s.Repo.Create(l); err != nil {
		logger.Log.Warn("audit log write failed",
			zap.String("action", e.Action),
			zap.String("entity", e.EntityID),
			zap.Error(err),
		)
	}
}

func (s *AuditService) List(page, limit int) ([]model.AuditLog, int64, error) {
	return s.Repo.List(page, limit)
}
