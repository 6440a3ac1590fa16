package service

import (
	"compliance_edu_backend/internal/model"
	"compliance_edu_backend/internal/util"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func (f *fixture) issue(t *testing.T, userID, moduleID string, issuedAt time.Time, validDays int) *model.Certificate {
	t.Helper()
	c := &model.Certificate{
		UserID:            userID,
		ModuleID:          moduleID,
		CertificateNumber: "CERT-" + model.GenerateUUID(),
		IssuedAt:          issuedAt,
		ValidUntil:        issuedAt.AddDate(0, 0, validDays),
	}
	if err := f.certs.Create(c); err != nil {
		t.Fatal(err)
	}
	return c
}

func TestListForUserValidityAndDaysLeft(t *testing.T) {
	f := newFixture(t)
	emp := f.addUser(t, "emp", model.Employee)
	m := f.addModule(t, "Consent", true)
	now := f.clock.now

	old := f.issue(t, emp.UserID, m.ID, now.AddDate(0, 0, -400), 365)
	fresh := f.issue(t, emp.UserID, m.ID, now.Add(-12*time.Hour), 10)

	views, err := f.certificate.ListForUser(emp.UserID)
	if err != nil {
		t.Fatal(err)
	}
	if len(views) != 2 || views[0].ID != fresh.ID || views[1].ID != old.ID {
		t.Fatalf("expected newest first, got %+v", views)
	}
	if !views[0].Valid || views[0].DaysLeft != 10 {
		t.Fatalf("fresh: valid=%v daysLeft=%d", views[0].Valid, views[0].DaysLeft)
	}
	if views[1].Valid || views[1].DaysLeft >= 0 {
		t.Fatalf("old: valid=%v daysLeft=%d", views[1].Valid, views[1].DaysLeft)
	}
}

func TestReconcileIssuesMissingCertificates(t *testing.T) {
	f := newFixture(t)
	emp := f.addUser(t, "emp", model.Employee)
	m := f.addModule(t, "Consent", true)

	linked := &model.Assessment{Title: "linked", ModuleID: &m.ID, PassThreshold: 70}
	unlinked := &model.Assessment{Title: "unlinked", PassThreshold: 70}
	blank := &model.Assessment{Title: "blank module", ModuleID: strPtr(""), PassThreshold: 70}
	f.assessments.CreateWithQuestions(linked, nil)
	f.assessments.CreateWithQuestions(unlinked, nil)
	f.assessments.CreateWithQuestions(blank, nil)

	// 模拟旧客户端：只写了作答记录
	for _, a := range []*model.Attempt{
		{UserID: emp.UserID, AssessmentID: linked.ID, Passed: true, CompletedAt: f.clock.now},
		{UserID: emp.UserID, AssessmentID: linked.ID, Passed: false, CompletedAt: f.clock.now},
		{UserID: emp.UserID, AssessmentID: unlinked.ID, Passed: true, CompletedAt: f.clock.now},
		{UserID: emp.UserID, AssessmentID: blank.ID, Passed: true, CompletedAt: f.clock.now},
	} {
		if err := f.attempts.CreateWithCertificate(a, nil); err != nil {
			t.Fatal(err)
		}
	}

	issued, err := f.certificate.Reconcile(context.Background())
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if issued != 1 {
		t.Fatalf("issued = %d, want 1", issued)
	}
	for _, c := range f.certs.Certs {
		if c.ModuleID != m.ID || c.AttemptID == nil {
			t.Fatalf("unexpected certificate %+v", c)
		}
	}

	issued, err = f.certificate.Reconcile(context.Background())
	if err != nil || issued != 0 {
		t.Fatalf("second run: issued=%d err=%v", issued, err)
	}
}

func TestReconcileSkipsFailedWrites(t *testing.T) {
	f := newFixture(t)
	emp := f.addUser(t, "emp", model.Employee)
	m := f.addModule(t, "Consent", true)
	a := &model.Assessment{Title: "linked", ModuleID: &m.ID}
	f.assessments.CreateWithQuestions(a, nil)
	f.attempts.CreateWithCertificate(&model.Attempt{UserID: emp.UserID, AssessmentID: a.ID, Passed: true}, nil)

	f.certs.CreateErr = errors.New("duplicate key")
	issued, err := f.certificate.Reconcile(context.Background())
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if issued != 0 {
		t.Fatalf("issued = %d, want 0", issued)
	}
}

func TestRenderDocument(t *testing.T) {
	f := newFixture(t)
	emp := f.addUser(t, "emp", model.Employee)
	other := f.addUser(t, "other", model.Employee)
	officer := f.addUser(t, "officer", model.ComplianceOfficer)
	m := f.addModule(t, "Consent <basics>", true)

	u, _ := f.users.FindByID(emp.UserID)
	u.FullName = "Asha <script>"
	f.users.Update(u)

	c := f.issue(t, emp.UserID, m.ID, f.clock.now, 365)

	url, err := f.certificate.RenderDocument(context.Background(), officer, c.ID)
	if err != nil {
		t.Fatalf("RenderDocument: %v", err)
	}
	if url != "/uploads/certificates/"+c.ID+".html" {
		t.Fatalf("url = %q", url)
	}
	data, err := os.ReadFile(filepath.Join(f.cfg.Storage.LocalPath, "certificates", c.ID+".html"))
	if err != nil {
		t.Fatalf("read document: %v", err)
	}
	html := string(data)
	if !strings.Contains(html, "Asha &lt;script&gt;") || strings.Contains(html, "<script>") {
		t.Fatalf("holder not escaped:\n%s", html)
	}
	if !strings.Contains(html, c.CertificateNumber) || !strings.Contains(html, "Section 8") {
		t.Fatalf("document missing fields:\n%s", html)
	}

	if _, err := f.certificate.RenderDocument(context.Background(), other, c.ID); !errors.Is(err, util.ErrPermissionDenied) {
		t.Fatalf("err = %v, want ErrPermissionDenied", err)
	}
}
