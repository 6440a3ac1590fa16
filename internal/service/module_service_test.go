package service

import (
	"compliance_edu_backend/internal/model"
	"compliance_edu_backend/internal/util"
	"errors"
	"reflect"
	"testing"
)

func TestParseSections(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []Section
	}{
		{name: "empty", content: "", want: []Section{}},
		{
			name:    "preamble and sections",
			content: "# Data Protection\nOverview\n## Consent\nAsk first.\n\n## Breach\nReport it.",
			want: []Section{
				{Title: "Data Protection", Body: "Overview"},
				{Title: "Consent", Body: "Ask first."},
				{Title: "Breach", Body: "Report it."},
			},
		},
		{
			name:    "empty parts dropped",
			content: "## One\n\n##  \n## Two\nbody",
			want: []Section{
				{Title: "One", Body: ""},
				{Title: "Two", Body: "body"},
			},
		},
		{
			name:    "h3 stays in body",
			content: "## One\n### Detail\ntext",
			want:    []Section{{Title: "One", Body: "### Detail\ntext"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseSections(tt.content)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("ParseSections() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestSectionPercent(t *testing.T) {
	tests := []struct{ idx, n, want int }{
		{0, 3, 33},
		{1, 3, 67},
		{2, 3, 100},
		{0, 8, 13}, // 12.5 向上
		{0, 1, 100},
	}
	for _, tt := range tests {
		if got := sectionPercent(tt.idx, tt.n); got != tt.want {
			t.Fatalf("sectionPercent(%d, %d) = %d, want %d", tt.idx, tt.n, got, tt.want)
		}
	}
}

func TestUpdateProgress(t *testing.T) {
	f := newFixture(t)
	emp := f.addUser(t, "emp", model.Employee)
	m := f.addModule(t, "Consent", true)

	v, err := f.module.UpdateProgress(emp.UserID, m.ID, 1, false)
	if err != nil {
		t.Fatalf("UpdateProgress: %v", err)
	}
	if v.Progress.ProgressPercent != 67 || v.Progress.Status != model.ProgressInProgress || v.Progress.LastSection != "Consent" {
		t.Fatalf("progress = %+v", v.Progress)
	}
	if !v.Progress.StartedAt.Equal(f.clock.now) {
		t.Fatalf("started at = %v", v.Progress.StartedAt)
	}

	got, err := f.module.GetProgress(emp.UserID, m.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.SectionIndex != 1 || got.SectionCount != 3 {
		t.Fatalf("restored index = %d of %d", got.SectionIndex, got.SectionCount)
	}

	v, err = f.module.UpdateProgress(emp.UserID, m.ID, 2, true)
	if err != nil {
		t.Fatal(err)
	}
	if v.Progress.Status != model.ProgressCompleted || v.Progress.ProgressPercent != 100 || v.Progress.CompletedAt == nil {
		t.Fatalf("completed progress = %+v", v.Progress)
	}

	// 回看前面的章节不会把已完成改回进行中
	v, err = f.module.UpdateProgress(emp.UserID, m.ID, 0, false)
	if err != nil {
		t.Fatal(err)
	}
	if v.Progress.Status != model.ProgressCompleted || v.Progress.ProgressPercent != 100 || v.Progress.LastSection != "Intro" {
		t.Fatalf("completed module was downgraded: %+v", v.Progress)
	}
	if len(f.progress.Rows) != 1 {
		t.Fatalf("progress rows = %d, want 1", len(f.progress.Rows))
	}
}

func TestUpdateProgressErrors(t *testing.T) {
	f := newFixture(t)
	emp := f.addUser(t, "emp", model.Employee)
	m := f.addModule(t, "Consent", true)
	empty := &model.TrainingModule{Title: "Empty", DPDPSection: "S1"}
	f.modules.Create(empty)

	if _, err := f.module.UpdateProgress(emp.UserID, m.ID, 3, false); !errors.Is(err, util.ErrInvalidSection) {
		t.Fatalf("err = %v, want ErrInvalidSection", err)
	}
	if _, err := f.module.UpdateProgress(emp.UserID, empty.ID, 0, false); !errors.Is(err, util.ErrNoSections) {
		t.Fatalf("err = %v, want ErrNoSections", err)
	}
	if _, err := f.module.UpdateProgress(emp.UserID, "missing", 0, false); !errors.Is(err, util.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}

	v, err := f.module.GetProgress(emp.UserID, m.ID)
	if err != nil || v.Progress != nil || v.SectionIndex != 0 {
		t.Fatalf("no bookmark yet: %+v err=%v", v, err)
	}
}

func TestModuleCRUD(t *testing.T) {
	f := newFixture(t)
	admin := f.addUser(t, "admin", model.Admin)

	m, err := f.module.Create(admin, ModuleInput{Title: " Consent ", DPDPSection: "Section 6", Objectives: []string{"Know consent"}})
	if err != nil {
		t.Fatal(err)
	}
	if m.Title != "Consent" || m.Version != "1.0" || m.DurationMinutes != 30 || m.CreatedBy == nil || *m.CreatedBy != admin.UserID {
		t.Fatalf("defaults not applied: %+v", m)
	}

	m, err = f.module.Update(admin, m.ID, ModuleInput{Title: "Consent v2", DPDPSection: "Section 6", Version: "2.0", Content: "## A\nx"})
	if err != nil {
		t.Fatal(err)
	}
	detail, err := f.module.Get(m.ID)
	if err != nil {
		t.Fatal(err)
	}
	if detail.Title != "Consent v2" || len(detail.Sections) != 1 {
		t.Fatalf("detail = %+v", detail)
	}

	if err := f.module.Delete(admin, m.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := f.module.Get(m.ID); !errors.Is(err, util.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if got := f.audits.Actions(); len(got) != 3 {
		t.Fatalf("audit actions = %v", got)
	}
}
