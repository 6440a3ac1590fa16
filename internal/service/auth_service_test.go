package service

import (
	"compliance_edu_backend/internal/model"
	"compliance_edu_backend/internal/util"
	"errors"
	"testing"
)

func TestRegisterAndLogin(t *testing.T) {
	f := newFixture(t)

	u := &model.User{FullName: "Asha", Email: " Asha@Example.com ", Password: "s3cret-pass", Role: model.Admin}
	if err := f.auth.Register(u); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if u.Password == "s3cret-pass" {
		t.Fatal("password stored in plain text")
	}
	if u.Role != model.Employee || u.Email != "asha@example.com" {
		t.Fatalf("registered user = %+v", u)
	}

	dup := &model.User{FullName: "Other", Email: "asha@example.com", Password: "x"}
	if err := f.auth.Register(dup); !errors.Is(err, util.ErrEmailRegistered) {
		t.Fatalf("err = %v, want ErrEmailRegistered", err)
	}

	res, err := f.auth.Login("ASHA@example.com", "s3cret-pass", "10.0.0.1")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	claims, err := util.ParseJWT(res.Token, f.cfg.JWT.Secret)
	if err != nil {
		t.Fatalf("ParseJWT: %v", err)
	}
	if claims.UserID != u.ID || claims.Role != model.Employee {
		t.Fatalf("claims = %+v", claims)
	}
	if res.User.LastLogin == nil {
		t.Fatal("last login not updated")
	}
	if !f.audits.HasAction(model.AuditLogin) {
		t.Fatal("login not audited")
	}
	if f.audits.Logs[0].IPAddress != "10.0.0.1" {
		t.Fatalf("ip = %q", f.audits.Logs[0].IPAddress)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	f := newFixture(t)
	if err := f.auth.Register(&model.User{FullName: "A", Email: "a@example.com", Password: "right"}); err != nil {
		t.Fatal(err)
	}
	if _, err := f.auth.Login("a@example.com", "wrong", ""); !errors.Is(err, util.ErrInvalidCredential) {
		t.Fatalf("wrong password: err = %v", err)
	}
	if _, err := f.auth.Login("nobody@example.com", "right", ""); !errors.Is(err, util.ErrInvalidCredential) {
		t.Fatalf("unknown email: err = %v", err)
	}
}

func TestUpdateProfile(t *testing.T) {
	f := newFixture(t)
	emp := f.addUser(t, "emp", model.Employee)

	u, err := f.user.UpdateProfile(emp.UserID, ProfileUpdate{Department: strPtr("finance"), FullName: strPtr(" Emp One ")})
	if err != nil {
		t.Fatal(err)
	}
	if u.Department == nil || *u.Department != model.DepartmentFinance || u.FullName != "Emp One" {
		t.Fatalf("profile = %+v", u)
	}

	if _, err := f.user.UpdateProfile(emp.UserID, ProfileUpdate{Department: strPtr("legal")}); !errors.Is(err, util.ErrInvalidProfile) {
		t.Fatalf("err = %v, want ErrInvalidProfile", err)
	}

	u, err = f.user.UpdateProfile(emp.UserID, ProfileUpdate{Department: strPtr("")})
	if err != nil || u.Department != nil {
		t.Fatalf("clearing department: %+v err=%v", u, err)
	}
}

func TestSetRole(t *testing.T) {
	f := newFixture(t)
	admin := f.addUser(t, "admin", model.Admin)
	emp := f.addUser(t, "emp", model.Employee)

	if err := f.user.SetRole(admin, emp.UserID, model.ComplianceOfficer, ""); err != nil {
		t.Fatalf("SetRole: %v", err)
	}
	u, _ := f.users.FindByID(emp.UserID)
	if u.Role != model.ComplianceOfficer {
		t.Fatalf("role = %s", u.Role)
	}
	if !f.audits.HasAction(model.AuditRoleChanged) {
		t.Fatal("role change not audited")
	}

	if err := f.user.SetRole(admin, emp.UserID, "superuser", ""); !errors.Is(err, util.ErrInvalidRole) {
		t.Fatalf("err = %v, want ErrInvalidRole", err)
	}
	if err := f.user.SetRole(admin, admin.UserID, model.Employee, ""); !errors.Is(err, util.ErrPermissionDenied) {
		t.Fatalf("self demotion: err = %v", err)
	}
	if err := f.user.SetRole(admin, "missing", model.Employee, ""); !errors.Is(err, util.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestNavItems(t *testing.T) {
	keys := func(items []NavItem) map[string]bool {
		m := map[string]bool{}
		for _, it := range items {
			m[it.Key] = true
		}
		return m
	}

	emp := keys(NavItems(model.Employee))
	if emp["reports"] || emp["users"] || !emp["dashboard"] || !emp["certificates"] {
		t.Fatalf("employee nav = %v", emp)
	}
	officer := keys(NavItems(model.ComplianceOfficer))
	if !officer["reports"] || officer["users"] {
		t.Fatalf("officer nav = %v", officer)
	}
	admin := keys(NavItems(model.Admin))
	if !admin["reports"] || !admin["users"] || len(admin) != len(navigation) {
		t.Fatalf("admin nav = %v", admin)
	}
}

func TestAuditRecordIsBestEffort(t *testing.T) {
	var nilSvc *AuditService
	nilSvc.Record(AuditEntry{Action: "x"})

	f := newFixture(t)
	f.audits.CreateErr = errors.New("disk full")
	f.audit.Record(AuditEntry{Action: model.AuditLogin})
	if len(f.audits.Logs) != 0 {
		t.Fatal("failed write should not be stored")
	}
}
