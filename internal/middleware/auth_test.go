package middleware

import (
	"compliance_edu_backend/internal/config"
	"compliance_edu_backend/internal/model"
	"compliance_edu_backend/internal/util"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func newRouter(cfg *config.Config) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/me", AuthMiddleware(cfg), func(c *gin.Context) {
		util.Success(c, util.GetUserFromContext(c).UserID)
	})
	r.GET("/reports", AuthMiddleware(cfg), RoleMiddleware(model.ComplianceOfficer), func(c *gin.Context) {
		util.Success(c, "ok")
	})
	return r
}

func token(t *testing.T, cfg *config.Config, role model.UserRole) string {
	t.Helper()
	u := &model.User{Email: "u@example.com", Role: role}
	u.ID = "user-1"
	tok, err := util.GenerateJWT(u, cfg.JWT.Secret, time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	return tok
}

func do(r *gin.Engine, path, header string) int {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w.Code
}

func TestAuthMiddleware(t *testing.T) {
	cfg := &config.Config{JWT: config.JWTConfig{Secret: "secret"}}
	r := newRouter(cfg)
	tok := token(t, cfg, model.Employee)

	tests := []struct {
		name   string
		path   string
		header string
		want   int
	}{
		{name: "missing token", path: "/me", want: http.StatusUnauthorized},
		{name: "bearer header", path: "/me", header: "Bearer " + tok, want: http.StatusOK},
		{name: "query token", path: "/me?token=" + tok, want: http.StatusOK},
		{name: "garbage token", path: "/me", header: "Bearer nope", want: http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := do(r, tt.path, tt.header); got != tt.want {
				t.Fatalf("status = %d, want %d", got, tt.want)
			}
		})
	}

	other := &config.Config{JWT: config.JWTConfig{Secret: "other"}}
	if got := do(r, "/me", "Bearer "+token(t, other, model.Employee)); got != http.StatusUnauthorized {
		t.Fatalf("foreign token status = %d", got)
	}
}

func TestRoleMiddleware(t *testing.T) {
	cfg := &config.Config{JWT: config.JWTConfig{Secret: "secret"}}
	r := newRouter(cfg)

	tests := []struct {
		role model.UserRole
		want int
	}{
		{model.Employee, http.StatusForbidden},
		{model.ComplianceOfficer, http.StatusOK},
		{model.Admin, http.StatusOK},
	}
	for _, tt := range tests {
		if got := do(r, "/reports", "Bearer "+token(t, cfg, tt.role)); got != tt.want {
			t.Fatalf("role %s: status = %d, want %d", tt.role, got, tt.want)
		}
	}
}
