package app

import (
	"compliance_edu_backend/internal/config"
	"compliance_edu_backend/internal/controller"
	"compliance_edu_backend/internal/model"
	"compliance_edu_backend/internal/service"
	"compliance_edu_backend/internal/testkit"
	"compliance_edu_backend/internal/util"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func testRouter(t *testing.T) (*gin.Engine, *config.Config, *testkit.UserStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		JWT:         config.JWTConfig{Secret: "router-secret", ExpireTime: time.Hour},
		Storage:     config.StorageConfig{Type: util.StorageLocal, LocalPath: t.TempDir()},
		Certificate: config.CertificateConfig{ValidityDays: 365, NumberPrefix: "CERT"},
		Session:     config.SessionConfig{TTL: time.Hour},
		RateLimit:   config.RateLimitConfig{MaxRequests: 1000, WindowMinutes: 1},
	}

	users := testkit.NewUserStore()
	modules := testkit.NewModuleStore()
	progress := testkit.NewProgressStore()
	scenarios := testkit.NewScenarioStore()
	assessments := testkit.NewAssessmentStore()
	certs := testkit.NewCertificateStore()
	attempts := testkit.NewAttemptStore(certs)
	sessions := testkit.NewSessionStore()

	audit := service.NewAuditService(testkit.NewAuditStore())
	certSvc := service.NewCertificateService(certs, users, service.NewStorageService(cfg), audit, cfg.Certificate)
	c := &controllers{
		auth:        controller.NewAuthController(service.NewAuthService(users, audit, cfg)),
		user:        controller.NewUserController(service.NewUserService(users, audit)),
		module:      controller.NewModuleController(service.NewModuleService(modules, progress, audit)),
		scenario:    controller.NewScenarioController(service.NewScenarioService(scenarios, sessions, audit, cfg.Session.TTL)),
		assessment:  controller.NewAssessmentController(service.NewAssessmentService(assessments, modules, attempts, sessions, certSvc, audit, cfg)),
		certificate: controller.NewCertificateController(certSvc),
		report: controller.NewReportController(
			service.NewReportService(attempts, certs),
			service.NewDashboardService(modules, progress, certs, attempts, users, scenarios),
			audit,
		),
		health: controller.NewHealthController(nil, nil),
	}

	a := &App{Config: cfg}
	r := gin.New()
	a.setupMiddlewares(r, cfg)
	a.registerRoutes(r, c, cfg)
	return r, cfg, users
}

func TestRouteAccessByRole(t *testing.T) {
	r, cfg, users := testRouter(t)

	tokens := map[model.UserRole]string{}
	for _, role := range []model.UserRole{model.Admin, model.ComplianceOfficer, model.Employee} {
		u := &model.User{FullName: string(role), Email: string(role) + "@example.com", Role: role}
		if err := users.Create(u); err != nil {
			t.Fatal(err)
		}
		tok, err := util.GenerateJWT(u, cfg.JWT.Secret, time.Hour)
		if err != nil {
			t.Fatal(err)
		}
		tokens[role] = tok
	}

	tests := []struct {
		name   string
		method string
		path   string
		role   model.UserRole
		want   int
	}{
		{name: "anonymous modules", method: http.MethodGet, path: "/api/modules", want: http.StatusUnauthorized},
		{name: "employee modules", method: http.MethodGet, path: "/api/modules", role: model.Employee, want: http.StatusOK},
		{name: "employee dashboard", method: http.MethodGet, path: "/api/dashboard", role: model.Employee, want: http.StatusOK},
		{name: "employee reports", method: http.MethodGet, path: "/api/reports/compliance", role: model.Employee, want: http.StatusForbidden},
		{name: "officer reports", method: http.MethodGet, path: "/api/reports/compliance", role: model.ComplianceOfficer, want: http.StatusOK},
		{name: "admin reports", method: http.MethodGet, path: "/api/reports/compliance", role: model.Admin, want: http.StatusOK},
		{name: "officer users", method: http.MethodGet, path: "/api/admin/users", role: model.ComplianceOfficer, want: http.StatusForbidden},
		{name: "admin users", method: http.MethodGet, path: "/api/admin/users", role: model.Admin, want: http.StatusOK},
		{name: "admin dashboard", method: http.MethodGet, path: "/api/admin/dashboard", role: model.Admin, want: http.StatusOK},
		{name: "employee delete module", method: http.MethodDelete, path: "/api/admin/modules/x", role: model.Employee, want: http.StatusForbidden},
		{name: "officer delete missing module", method: http.MethodDelete, path: "/api/admin/modules/x", role: model.ComplianceOfficer, want: http.StatusNotFound},
		{name: "metrics", method: http.MethodGet, path: "/metrics", want: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.role != "" {
				req.Header.Set("Authorization", "Bearer "+tokens[tt.role])
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			if w.Code != tt.want {
				t.Fatalf("%s %s as %q = %d, want %d", tt.method, tt.path, tt.role, w.Code, tt.want)
			}
		})
	}
}

func TestSecurityHeaders(t *testing.T) {
	r, _, _ := testRouter(t)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/modules", nil))
	if w.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Fatalf("missing nosniff header: %v", w.Header())
	}
}
