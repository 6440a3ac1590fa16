package service

import (
	"compliance_edu_backend/internal/model"
	"compliance_edu_backend/internal/repository"
	"time"
)

type DashboardModuleStore interface {
	Count() (int64, error)
	ListMandatory() ([]model.TrainingModule, error)
}

type DashboardProgressStore interface {
	ListByUser(userID string) ([]model.ModuleProgress, error)
	StatusCounts() ([]repository.StatusCount, error)
}

type DashboardCertificateStore interface {
	CountByUser(userID string) (int64, error)
	ListExpiringByUser(userID string, limit int) ([]model.Certificate, error)
}

type DashboardAttemptStore interface {
	CountByUser(userID string) (int64, error)
	PassCounts() (repository.PassCounts, error)
}

type DashboardUserStore interface {
	Count() (int64, error)
	RoleCounts() ([]repository.RoleCount, error)
}

type DashboardScenarioStore interface {
	Count() (int64, error)
}

type DashboardService struct {
	Modules      DashboardModuleStore
	Progress     DashboardProgressStore
	Certificates DashboardCertificateStore
	Attempts     DashboardAttemptStore
	Users        DashboardUserStore
	Scenarios    DashboardScenarioStore
	Now          func() time.Time
}

func NewDashboardService(
	modules DashboardModuleStore,
	progress DashboardProgressStore,
	certificates DashboardCertificateStore,
	attempts DashboardAttemptStore,
	users DashboardUserStore,
	scenarios DashboardScenarioStore,
) *DashboardService {
	return &DashboardService{
		Modules:      modules,
		Progress:     progress,
		Certificates: certificates,
		Attempts:     attempts,
		Users:        users,
		Scenarios:    scenarios,
		Now:          time.Now,
	}
}

type MandatoryModule struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
}

type EmployeeDashboard struct {
	ModuleCount      int64                  `json:"moduleCount"`
	CertificateCount int64                  `json:"certificateCount"`
	AttemptCount     int64                  `json:"attemptCount"`
	ScenarioCount    int64                  `json:"scenarioCount"`
	Progress         []model.ModuleProgress `json:"progress"`
	Mandatory        []MandatoryModule      `json:"mandatoryModules"`
	Certificates     []CertificateView      `json:"certificates"`
}

func (s *DashboardService) Employee(userID string) (*EmployeeDashboard, error) {
	d := &EmployeeDashboard{}
	var err error

	if d.ModuleCount, err = s.Modules.Count(); err != nil {
		return nil, err
	}
	if d.CertificateCount, err = s.Certificates.CountByUser(userID); err != nil {
		return nil, err
	}
	if d.AttemptCount, err = s.Attempts.CountByUser(userID); err != nil {
		return nil, err
	}
	if d.ScenarioCount, err = s.Scenarios.Count(); err != nil {
		return nil, err
	}

	progress, err := s.Progress.ListByUser(userID)
	if err != nil {
		return nil, err
	}
	d.Progress = progress
	completed := make(map[string]bool, len(progress))
	for _, p := range progress {
		if p.Status == model.ProgressCompleted {
			completed[p.ModuleID] = true
		}
	}

	mandatory, err := s.Modules.ListMandatory()
	if err != nil {
		return nil, err
	}
	d.Mandatory = make([]MandatoryModule, 0, len(mandatory))
	for _, m := range mandatory {
		d.Mandatory = append(d.Mandatory, MandatoryModule{ID: m.ID, Title: m.Title, Completed: completed[m.ID]})
	}

	certs, err := s.Certificates.ListExpiringByUser(userID, 5)
	if err != nil {
		return nil, err
	}
	now := s.Now()
	d.Certificates = make([]CertificateView, 0, len(certs))
	for _, c := range certs {
		d.Certificates = append(d.Certificates, CertificateView{Certificate: c, Valid: c.IsValid(now), DaysLeft: c.DaysLeft(now)})
	}
	return d, nil
}

type AdminDashboard struct {
	UserCount        int64                    `json:"userCount"`
	CompletionStatus []repository.StatusCount `json:"completionStatus"`
	Passed           int64                    `json:"passed"`
	Failed           int64                    `json:"failed"`
	Roles            []repository.RoleCount   `json:"roles"`
}

func (s *DashboardService) Admin() (*AdminDashboard, error) {
	d := &AdminDashboard{}
	var err error

	if d.UserCount, err = s.Users.Count(); err != nil {
		return nil, err
	}
	if d.CompletionStatus, err = s.Progress.StatusCounts(); err != nil {
		return nil, err
	}
	pc, err := s.Attempts.PassCounts()
	if err != nil {
		return nil, err
	}
	d.Passed = pc.Passed
	d.Failed = pc.Total - pc.Passed
	if d.Roles, err = s.Users.RoleCounts(); err != nil {
		return nil, err
	}
	return d, nil
}
