package controller

import (
	"compliance_edu_backend/internal/model"
	"compliance_edu_backend/internal/service"
	"net/http"
	"testing"
)

func TestRegisterAndLogin(t *testing.T) {
	h := newHarness(t)

	w, _ := h.do(t, http.MethodPost, "/api/register", "", RegisterRequest{
		FullName: "Asha", Email: "Asha@Example.com", Password: "correct-horse",
	})
	expectStatus(t, w, http.StatusCreated)

	w, _ = h.do(t, http.MethodPost, "/api/register", "", RegisterRequest{
		FullName: "Asha", Email: "asha@example.com", Password: "correct-horse",
	})
	expectStatus(t, w, http.StatusConflict)

	w, _ = h.do(t, http.MethodPost, "/api/login", "", LoginRequest{Email: "asha@example.com", Password: "wrong"})
	expectStatus(t, w, http.StatusUnauthorized)

	w, env := h.do(t, http.MethodPost, "/api/login", "", LoginRequest{Email: "asha@example.com", Password: "correct-horse"})
	expectStatus(t, w, http.StatusOK)
	var res service.LoginResult
	decode(t, env, &res)
	if res.Token == "" || res.User.Role != model.Employee {
		t.Fatalf("unexpected login result %+v", res)
	}

	w, _ = h.do(t, http.MethodGet, "/api/profile", res.Token, nil)
	expectStatus(t, w, http.StatusOK)
}

func TestRegisterValidation(t *testing.T) {
	h := newHarness(t)

	tests := []struct {
		name string
		req  RegisterRequest
	}{
		{name: "short password", req: RegisterRequest{FullName: "A", Email: "a@example.com", Password: "short"}},
		{name: "bad email", req: RegisterRequest{FullName: "A", Email: "not-an-email", Password: "long-enough"}},
		{name: "missing name", req: RegisterRequest{Email: "a@example.com", Password: "long-enough"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, _ := h.do(t, http.MethodPost, "/api/register", "", tt.req)
			expectStatus(t, w, http.StatusBadRequest)
		})
	}
}

func TestNavigationAndRoleGates(t *testing.T) {
	h := newHarness(t)
	emp := h.login(t, "emp", model.Employee)
	officer := h.login(t, "officer", model.ComplianceOfficer)
	admin := h.login(t, "admin", model.Admin)

	w, env := h.do(t, http.MethodGet, "/api/navigation", emp, nil)
	expectStatus(t, w, http.StatusOK)
	var items []service.NavItem
	decode(t, env, &items)
	for _, it := range items {
		if it.Key == "reports" || it.Key == "users" {
			t.Fatalf("employee should not see %q", it.Key)
		}
	}

	w, _ = h.do(t, http.MethodGet, "/api/admin/users", emp, nil)
	expectStatus(t, w, http.StatusForbidden)

	w, _ = h.do(t, http.MethodGet, "/api/admin/users", officer, nil)
	expectStatus(t, w, http.StatusForbidden)

	w, env = h.do(t, http.MethodGet, "/api/admin/users", admin, nil)
	expectStatus(t, w, http.StatusOK)
	var page PageResult
	decode(t, env, &page)
	if page.Total != 3 {
		t.Fatalf("total users = %d, want 3", page.Total)
	}

	w, _ = h.do(t, http.MethodGet, "/api/profile", "", nil)
	expectStatus(t, w, http.StatusUnauthorized)
}

func TestUpdateProfileRejectsUnknownDepartment(t *testing.T) {
	h := newHarness(t)
	emp := h.login(t, "emp", model.Employee)

	dept := "legal"
	w, _ := h.do(t, http.MethodPut, "/api/profile", emp, service.ProfileUpdate{Department: &dept})
	expectStatus(t, w, http.StatusBadRequest)

	dept = "hr"
	w, env := h.do(t, http.MethodPut, "/api/profile", emp, service.ProfileUpdate{Department: &dept})
	expectStatus(t, w, http.StatusOK)
	var u model.User
	decode(t, env, &u)
	if u.Department == nil || string(*u.Department) != "hr" {
		t.Fatalf("department = %v", u.Department)
	}
}
