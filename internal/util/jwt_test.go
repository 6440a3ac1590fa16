package util

import (
	"testing"
	"time"

	"compliance_edu_backend/internal/model"
)

func TestGenerateAndParseJWT(t *testing.T) {
	user := &model.User{Email: "a@example.com", Role: model.ComplianceOfficer}
	user.ID = "2f9c1c8e-1111-4d7a-9a3b-0a0a0a0a0a0a"

	token, err := GenerateJWT(user, "secret", time.Hour)
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}

	claims, err := ParseJWT(token, "secret")
	if err != nil {
		t.Fatalf("ParseJWT: %v", err)
	}
	if claims.UserID != user.ID || claims.Role != model.ComplianceOfficer {
		t.Fatalf("claims = %+v", claims)
	}
	if !claims.HasRole(model.Admin, model.ComplianceOfficer) {
		t.Fatal("HasRole should match compliance officer")
	}
	if claims.HasRole(model.Admin) {
		t.Fatal("HasRole should not match admin")
	}
}

func TestParseJWTRejectsWrongSecretAndExpired(t *testing.T) {
	user := &model.User{Role: model.Employee}
	user.ID = "u1"

	token, _ := GenerateJWT(user, "secret", time.Hour)
	if _, err := ParseJWT(token, "other"); err == nil {
		t.Fatal("expected signature error")
	}

	expired, _ := GenerateJWT(user, "secret", -time.Minute)
	if _, err := ParseJWT(expired, "secret"); err == nil {
		t.Fatal("expected expiry error")
	}
}
