package service

import (
	"compliance_edu_backend/internal/repository"
)

type ReportAttemptStore interface {
	PassCounts() (repository.PassCounts, error)
}

type ReportCertificateStore interface {
	Count() (int64, error)
	CountByModule() ([]repository.ModuleCount, error)
}

type ReportService struct {
	Attempts     ReportAttemptStore
	Certificates ReportCertificateStore
}

func NewReportService(attempts ReportAttemptStore, certificates ReportCertificateStore) *ReportService {
	return &ReportService{Attempts: attempts, Certificates: certificates}
}

type ComplianceReport struct {
	TotalAttempts      int64                    `json:"totalAttempts"`
	Passed             int64                    `json:"passed"`
	Failed             int64                    `json:"failed"`
	PassRate           int                      `json:"passRate"` // 百分比，无作答时为 0
	CertificatesIssued int64                    `json:"certificatesIssued"`
	ByModule           []repository.ModuleCount `json:"certificationsByModule"`
}

func (s *ReportService) Compliance() (*ComplianceReport, error) {
	pc, err := s.Attempts.PassCounts()
	if err != nil {
		return nil, err
	}
	issued, err := s.Certificates.Count()
	if err != nil {
		return nil, err
	}
	byModule, err := s.Certificates.CountByModule()
	if err != nil {
		return nil, err
	}
	if byModule == nil {
		byModule = []repository.ModuleCount{}
	}

	return &ComplianceReport{
		TotalAttempts:      pc.Total,
		Passed:             pc.Passed,
		Failed:             pc.Total - pc.Passed,
		PassRate:           percentOf(pc.Passed, pc.Total),
		CertificatesIssued: issued,
		ByModule:           byModule,
	}, nil
}

// percentOf round(part/total*100)，total 为 0 时返回 0
func percentOf(part, total int64) int {
	if total <= 0 {
		return 0
	}
	return int((part*200 + total) / (2 * total))
}
