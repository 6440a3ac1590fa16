package service

import (
	"compliance_edu_backend/internal/config"
	"compliance_edu_backend/internal/model"
	"compliance_edu_backend/internal/testkit"
	"compliance_edu_backend/internal/util"
	"testing"
	"time"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

type fixture struct {
	cfg   *config.Config
	clock *fakeClock

	users       *testkit.UserStore
	modules     *testkit.ModuleStore
	progress    *testkit.ProgressStore
	scenarios   *testkit.ScenarioStore
	assessments *testkit.AssessmentStore
	attempts    *testkit.AttemptStore
	certs       *testkit.CertificateStore
	audits      *testkit.AuditStore
	sessions    *testkit.SessionStore

	audit       *AuditService
	storage     *StorageService
	auth        *AuthService
	user        *UserService
	module      *ModuleService
	scenario    *ScenarioService
	certificate *CertificateService
	assessment  *AssessmentService
	report      *ReportService
	dashboard   *DashboardService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	cfg := &config.Config{
		Server:      config.ServerConfig{Mode: "test"},
		JWT:         config.JWTConfig{Secret: "test-secret", ExpireTime: time.Hour},
		Storage:     config.StorageConfig{Type: util.StorageLocal, LocalPath: t.TempDir()},
		Certificate: config.CertificateConfig{ValidityDays: 365, NumberPrefix: "CERT"},
		Assessment:  config.AssessmentConfig{DefaultPassThreshold: 70, FeedbackWindow: 1500 * time.Millisecond},
		Session:     config.SessionConfig{TTL: time.Hour},
	}

	f := &fixture{
		cfg:         cfg,
		clock:       &fakeClock{now: time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)},
		users:       testkit.NewUserStore(),
		modules:     testkit.NewModuleStore(),
		progress:    testkit.NewProgressStore(),
		scenarios:   testkit.NewScenarioStore(),
		assessments: testkit.NewAssessmentStore(),
		certs:       testkit.NewCertificateStore(),
		audits:      testkit.NewAuditStore(),
		sessions:    testkit.NewSessionStore(),
	}
	f.attempts = testkit.NewAttemptStore(f.certs)
	f.certs.Attempts = f.attempts
	f.certs.Assessments = f.assessments
	f.certs.Modules = f.modules

	f.audit = NewAuditService(f.audits)
	f.storage = NewStorageService(cfg)
	f.auth = NewAuthService(f.users, f.audit, cfg)
	f.user = NewUserService(f.users, f.audit)
	f.module = NewModuleService(f.modules, f.progress, f.audit)
	f.module.Now = f.clock.Now
	f.scenario = NewScenarioService(f.scenarios, f.sessions, f.audit, cfg.Session.TTL)
	f.certificate = NewCertificateService(f.certs, f.users, f.storage, f.audit, cfg.Certificate)
	f.certificate.Now = f.clock.Now
	f.assessment = NewAssessmentService(f.assessments, f.modules, f.attempts, f.sessions, f.certificate, f.audit, cfg)
	f.assessment.Now = f.clock.Now
	f.report = NewReportService(f.attempts, f.certs)
	f.dashboard = NewDashboardService(f.modules, f.progress, f.certs, f.attempts, f.users, f.scenarios)
	f.dashboard.Now = f.clock.Now
	return f
}

func (f *fixture) addUser(t *testing.T, name string, role model.UserRole) *util.Claims {
	t.Helper()
	u := &model.User{FullName: name, Email: name + "@example.com", Password: "x", Role: role}
	if err := f.users.Create(u); err != nil {
		t.Fatalf("create user: %v", err)
	}
	return &util.Claims{UserID: u.ID, Role: role, Email: u.Email}
}

func (f *fixture) addModule(t *testing.T, title string, mandatory bool) *model.TrainingModule {
	t.Helper()
	m := &model.TrainingModule{
		Title:       title,
		DPDPSection: "Section 8",
		Content:     "## Intro\nWhy it matters\n## Consent\nAsk first\n## Breach\nReport within 72h",
		IsMandatory: mandatory,
	}
	if err := f.modules.Create(m); err != nil {
		t.Fatalf("create module: %v", err)
	}
	return m
}

func boolPtr(b bool) *bool {
	return &b
}

func strPtr(s string) *string {
	return &s
}
