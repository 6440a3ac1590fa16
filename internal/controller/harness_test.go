package controller

import (
	"bytes"
	"compliance_edu_backend/internal/config"
	"compliance_edu_backend/internal/middleware"
	"compliance_edu_backend/internal/model"
	"compliance_edu_backend/internal/service"
	"compliance_edu_backend/internal/testkit"
	"compliance_edu_backend/internal/util"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

type harness struct {
	cfg    *config.Config
	router *gin.Engine
	users  *testkit.UserStore
	audits *testkit.AuditStore
	mods   *testkit.ModuleStore
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		JWT:         config.JWTConfig{Secret: "controller-secret", ExpireTime: time.Hour},
		Storage:     config.StorageConfig{Type: util.StorageLocal, LocalPath: t.TempDir()},
		Certificate: config.CertificateConfig{ValidityDays: 365, NumberPrefix: "CERT"},
		Assessment:  config.AssessmentConfig{DefaultPassThreshold: 70},
		Session:     config.SessionConfig{TTL: time.Hour},
	}

	users := testkit.NewUserStore()
	modules := testkit.NewModuleStore()
	progress := testkit.NewProgressStore()
	scenarios := testkit.NewScenarioStore()
	assessments := testkit.NewAssessmentStore()
	certs := testkit.NewCertificateStore()
	attempts := testkit.NewAttemptStore(certs)
	certs.Attempts, certs.Assessments, certs.Modules = attempts, assessments, modules
	audits := testkit.NewAuditStore()
	sessions := testkit.NewSessionStore()

	audit := service.NewAuditService(audits)
	storage := service.NewStorageService(cfg)
	certSvc := service.NewCertificateService(certs, users, storage, audit, cfg.Certificate)

	authC := NewAuthController(service.NewAuthService(users, audit, cfg))
	userC := NewUserController(service.NewUserService(users, audit))
	moduleC := NewModuleController(service.NewModuleService(modules, progress, audit))
	scenarioC := NewScenarioController(service.NewScenarioService(scenarios, sessions, audit, cfg.Session.TTL))
	assessmentC := NewAssessmentController(service.NewAssessmentService(assessments, modules, attempts, sessions, certSvc, audit, cfg))
	certC := NewCertificateController(certSvc)
	reportC := NewReportController(
		service.NewReportService(attempts, certs),
		service.NewDashboardService(modules, progress, certs, attempts, users, scenarios),
		audit,
	)

	r := gin.New()
	r.POST("/api/register", authC.Register)
	r.POST("/api/login", authC.Login)

	api := r.Group("/api", middleware.AuthMiddleware(cfg))
	api.GET("/profile", userC.GetProfile)
	api.PUT("/profile", userC.UpdateProfile)
	api.GET("/navigation", userC.Navigation)
	api.GET("/dashboard", reportC.EmployeeDashboard)
	api.GET("/modules/:id", moduleC.Get)
	api.PUT("/modules/:id/progress", moduleC.UpdateProgress)
	api.POST("/scenarios/:id/sessions", scenarioC.StartSession)
	api.POST("/scenario-sessions/:sessionId/choose", scenarioC.Choose)
	api.POST("/assessments/:id/sessions", assessmentC.StartSession)
	api.PUT("/quiz-sessions/:sessionId/answers", assessmentC.Answer)
	api.POST("/quiz-sessions/:sessionId/next", assessmentC.Next)
	api.POST("/quiz-sessions/:sessionId/submit", assessmentC.Submit)
	api.GET("/attempts/:id/review", assessmentC.Review)
	api.GET("/certificates", certC.List)
	api.GET("/certificates/:id/document", certC.Document)
	api.GET("/reports/compliance", reportC.Compliance)

	content := r.Group("/api/admin", middleware.AuthMiddleware(cfg), middleware.RoleMiddleware(model.ComplianceOfficer))
	content.POST("/modules", moduleC.Create)
	content.POST("/scenarios", scenarioC.Create)
	content.POST("/assessments", assessmentC.Create)

	admin := r.Group("/api/admin", middleware.AuthMiddleware(cfg), middleware.RoleMiddleware(model.Admin))
	admin.GET("/users", userC.ListUsers)
	admin.PUT("/users/:id/role", userC.SetRole)
	admin.GET("/audit-logs", reportC.AuditLogs)

	return &harness{cfg: cfg, router: r, users: users, audits: audits, mods: modules}
}

// login 直接写入用户并签发 token，绕过注册接口
func (h *harness) login(t *testing.T, name string, role model.UserRole) string {
	t.Helper()
	u := &model.User{FullName: name, Email: name + "@example.com", Password: "x", Role: role}
	if err := h.users.Create(u); err != nil {
		t.Fatalf("create user: %v", err)
	}
	tok, err := util.GenerateJWT(u, h.cfg.JWT.Secret, time.Hour)
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	return tok
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (h *harness) do(t *testing.T, method, path, token string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)

	var env envelope
	if w.Code != http.StatusFound {
		if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
			t.Fatalf("%s %s: decode body %q: %v", method, path, w.Body.String(), err)
		}
	}
	return w, env
}

func decode(t *testing.T, env envelope, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(env.Data, v); err != nil {
		t.Fatalf("decode data %s: %v", env.Data, err)
	}
}

func expectStatus(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()
	if w.Code != want {
		t.Fatalf("status = %d, want %d, body = %s", w.Code, want, w.Body.String())
	}
}
