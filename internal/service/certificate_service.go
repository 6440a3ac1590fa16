package service

import (
	"bytes"
	"compliance_edu_backend/internal/config"
	"compliance_edu_backend/internal/model"
	"compliance_edu_backend/internal/repository"
	"compliance_edu_backend/internal/util"
	"compliance_edu_backend/pkg/logger"
	"compliance_edu_backend/pkg/monitoring"
	"compliance_edu_backend/pkg/tracing"
	"context"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type CertificateStore interface {
	Create(c *model.Certificate) error
	FindByID(id string) (*model.Certificate, error)
	ListByUser(userID string) ([]model.Certificate, error)
	ListPending(limit int) ([]repository.PendingCertificate, error)
}

type UserFinder interface {
	FindByID(id string) (*model.User, error)
}

type CertificateService struct {
	Repo    CertificateStore
	Users   UserFinder
	Storage *StorageService
	Audit   *AuditService
	Cfg     config.CertificateConfig
	Now     func() time.Time
}

func NewCertificateService(repo CertificateStore, users UserFinder, storage *StorageService, audit *AuditService, cfg config.CertificateConfig) *CertificateService {
	return &CertificateService{
		Repo:    repo,
		Users:   users,
		Storage: storage,
		Audit:   audit,
		Cfg:     cfg,
		Now:     time.Now,
	}
}

// NewCertificate 生成一张待写入的证书，编号形如 CERT-20260101-1A2B3C4D
func (s *CertificateService) NewCertificate(userID, moduleID string) *model.Certificate {
	now := s.Now()
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:8])
	return &model.Certificate{
		UserID:            userID,
		ModuleID:          moduleID,
		CertificateNumber: fmt.Sprintf("%s-%s-%s", s.Cfg.NumberPrefix, now.Format("20060102"), suffix),
		IssuedAt:          now,
		ValidUntil:        now.AddDate(0, 0, s.Cfg.ValidityDays),
	}
}

type CertificateView struct {
	model.Certificate
	Valid    bool `json:"valid"`
	DaysLeft int  `json:"daysLeft"`
}

func (s *CertificateService) view(c model.Certificate) CertificateView {
	now := s.Now()
	return CertificateView{Certificate: c, Valid: c.IsValid(now), DaysLeft: c.DaysLeft(now)}
}

func (s *CertificateService) ListForUser(userID string) ([]CertificateView, error) {
	cs, err := s.Repo.ListByUser(userID)
	if err != nil {
		return nil, err
	}
	out := make([]CertificateView, len(cs))
	for i, c := range cs {
		out[i] = s.view(c)
	}
	return out, nil
}

// Get 本人或管理员、合规官可以查看
func (s *CertificateService) Get(claims *util.Claims, id string) (*CertificateView, error) {
	c, err := s.Repo.FindByID(id)
	if err != nil {
		return nil, err
	}
	if c.UserID != claims.UserID && !claims.HasRole(model.Admin, model.ComplianceOfficer) {
		return nil, util.ErrPermissionDenied
	}
	v := s.view(*c)
	return &v, nil
}

// Reconcile 为已通过但缺少证书的作答补发证书，返回补发数量
func (s *CertificateService) Reconcile(ctx context.Context) (int, error) {
	ctx, span := tracing.Start(ctx, "certificate.reconcile")
	defer span.End()

	pending, err := s.Repo.ListPending(100)
	if err != nil {
		return 0, fmt.Errorf("list pending certificates: %w", err)
	}

	issued := 0
	for _, p := range pending {
		if ctx.Err() != nil {
			return issued, ctx.Err()
		}
		cert := s.NewCertificate(p.UserID, p.ModuleID)
		attemptID := p.AttemptID
		cert.AttemptID = &attemptID
		if err := s.Repo.Create(cert); err != nil {
			logger.Log.Error("reconcile certificate failed",
				zap.String("attempt_id", p.AttemptID),
				zap.Error(err),
			)
			continue
		}
		issued++
		monitoring.ObserveCertificate("reconcile")
		s.Audit.Record(AuditEntry{
			UserID:     p.UserID,
			Action:     model.AuditCertificateIssued,
			EntityType: "certificate",
			EntityID:   cert.ID,
			Details:    map[string]interface{}{"attempt_id": p.AttemptID, "source": "reconcile"},
		})
	}
	if issued > 0 {
		logger.Log.Info("certificates reconciled", zap.Int("issued", issued), zap.Int("pending", len(pending)))
	}
	return issued, nil
}

var certificateTemplate = template.Must(template.New("certificate").Parse(`<!DOCTYPE html>
<html lang="en">
<head><meta charset="utf-8"><title>Certificate {{.Number}}</title></head>
<body>
<h1>Certificate of Completion</h1>
<p>This certifies that <strong>{{.Holder}}</strong> has completed</p>
<h2>{{.Module}}</h2>
{{if .Section}}<p>{{.Section}}</p>{{end}}
<p>Certificate No. {{.Number}}</p>
<p>Issued {{.IssuedAt}} &middot; Valid until {{.ValidUntil}}</p>
</body>
</html>
`))

type certificateDoc struct {
	Holder     string
	Module     string
	Section    string
	Number     string
	IssuedAt   string
	ValidUntil string
}

// RenderDocument 渲染证书 HTML 并存入对象存储，返回访问地址
func (s *CertificateService) RenderDocument(ctx context.Context, claims *util.Claims, id string) (string, error) {
	v, err := s.Get(claims, id)
	if err != nil {
		return "", err
	}
	holder, err := s.Users.FindByID(v.UserID)
	if err != nil {
		return "", fmt.Errorf("certificate holder %s: %w", v.UserID, err)
	}

	doc := certificateDoc{
		Holder:     holder.FullName,
		Module:     "Training module",
		Number:     v.CertificateNumber,
		IssuedAt:   v.IssuedAt.Format(util.DateFormat),
		ValidUntil: v.ValidUntil.Format(util.DateFormat),
	}
	if v.Module != nil {
		doc.Module = v.Module.Title
		doc.Section = v.Module.DPDPSection
	}

	var buf bytes.Buffer
	if err := certificateTemplate.Execute(&buf, doc); err != nil {
		return "", err
	}
	name := fmt.Sprintf("certificates/%s.html", v.ID)
	return s.Storage.Upload(ctx, name, bytes.NewReader(buf.Bytes()), int64(buf.Len()), util.MimeHTML)
}
