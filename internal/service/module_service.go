package service

import (
	"compliance_edu_backend/internal/model"
	"compliance_edu_backend/internal/util"
	"errors"
	"strings"
	"time"
)

type ModuleStore interface {
	Create(m *model.TrainingModule) error
	Update(m *model.TrainingModule) error
	FindByID(id string) (*model.TrainingModule, error)
	List() ([]model.TrainingModule, error)
	Delete(id string) error
}

type ProgressStore interface {
	FindByUserAndModule(userID, moduleID string) (*model.ModuleProgress, error)
	Save(p *model.ModuleProgress) error
	ListByUser(userID string) ([]model.ModuleProgress, error)
}

type ModuleService struct {
	Repo     ModuleStore
	Progress ProgressStore
	Audit    *AuditService
	Now      func() time.Time
}

func NewModuleService(repo ModuleStore, progress ProgressStore, audit *AuditService) *ModuleService {
	return &ModuleService{
		Repo:     repo,
		Progress: progress,
		Audit:    audit,
		Now:      time.Now,
	}
}

type Section struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// ParseSections 按 "## " 开头的行切分 markdown，每段首行去掉 # 后作为标题
func ParseSections(content string) []Section {
	var parts []string
	var cur strings.Builder
	for _, line := range strings.Split(content, "\n") {
		if strings.HasPrefix(line, "## ") {
			parts = append(parts, cur.String())
			cur.Reset()
			line = strings.TrimPrefix(line, "## ")
		}
		cur.WriteString(line)
		cur.WriteByte('\n')
	}
	parts = append(parts, cur.String())

	sections := make([]Section, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		title, body, _ := strings.Cut(part, "\n")
		sections = append(sections, Section{
			Title: strings.TrimSpace(strings.TrimLeft(title, "#")),
			Body:  strings.TrimSpace(body),
		})
	}
	return sections
}

type ModuleInput struct {
	Title           string   `json:"title" binding:"required,max=255"`
	Description     string   `json:"description"`
	Content         string   `json:"content"`
	DPDPSection     string   `json:"dpdpSection" binding:"required,max=64"`
	DurationMinutes int      `json:"durationMinutes" binding:"omitempty,min=1"`
	IsMandatory     bool     `json:"isMandatory"`
	Objectives      []string `json:"objectives"`
	Version         string   `json:"version" binding:"max=32"`
}

func (in ModuleInput) apply(m *model.TrainingModule) {
	m.Title = strings.TrimSpace(in.Title)
	m.Description = in.Description
	m.Content = in.Content
	m.DPDPSection = strings.TrimSpace(in.DPDPSection)
	m.DurationMinutes = in.DurationMinutes
	if m.DurationMinutes == 0 {
		m.DurationMinutes = 30
	}
	m.IsMandatory = in.IsMandatory
	m.Objectives = in.Objectives
	m.Version = in.Version
	if m.Version == "" {
		m.Version = "1.0"
	}
}

func (s *ModuleService) List() ([]model.TrainingModule, error) {
	return s.Repo.List()
}

type ModuleDetail struct {
	*model.TrainingModule
	Sections []Section `json:"sections"`
}

func (s *ModuleService) Get(id string) (*ModuleDetail, error) {
	m, err := s.Repo.FindByID(id)
	if err != nil {
		return nil, err
	}
	return &ModuleDetail{TrainingModule: m, Sections: ParseSections(m.Content)}, nil
}

func (s *ModuleService) Create(actor *util.Claims, in ModuleInput) (*model.TrainingModule, error) {
	m := &model.TrainingModule{}
	in.apply(m)
	creator := actor.UserID
	m.CreatedBy = &creator
	if err := s.Repo.Create(m); err != nil {
		return nil, err
	}
	s.audit(actor, model.AuditModuleSaved, m.ID)
	return m, nil
}

func (s *ModuleService) Update(actor *util.Claims, id string, in ModuleInput) (*model.TrainingModule, error) {
	m, err := s.Repo.FindByID(id)
	if err != nil {
		return nil, err
	}
	in.apply(m)
	if err := s.Repo.Update(m); err != nil {
		return nil, err
	}
	s.audit(actor, model.AuditModuleSaved, m.ID)
	return m, nil
}

func (s *ModuleService) Delete(actor *util.Claims, id string) error {
	if err := s.Repo.Delete(id); err != nil {
		return err
	}
	s.audit(actor, model.AuditModuleDeleted, id)
	return nil
}

func (s *ModuleService) audit(actor *util.Claims, action, id string) {
	s.Audit.Record(AuditEntry{
		UserID:     actor.UserID,
		Action:     action,
		EntityType: "module",
		EntityID:   id,
	})
}

type ProgressView struct {
	Progress     *model.ModuleProgress `json:"progress"`
	SectionIndex int                   `json:"sectionIndex"`
	SectionCount int                   `json:"sectionCount"`
}

// GetProgress 根据 last_section 恢复章节下标，没有记录时从 0 开始
func (s *ModuleService) GetProgress(userID, moduleID string) (*ProgressView, error) {
	m, err := s.Repo.FindByID(moduleID)
	if err != nil {
		return nil, err
	}
	sections := ParseSections(m.Content)
	view := &ProgressView{SectionCount: len(sections)}

	p, err := s.Progress.FindByUserAndModule(userID, moduleID)
	if errors.Is(err, util.ErrNotFound) {
		return view, nil
	}
	if err != nil {
		return nil, err
	}
	view.Progress = p
	for i, sec := range sections {
		if sec.Title == p.LastSection {
			view.SectionIndex = i
			break
		}
	}
	return view, nil
}

// UpdateProgress 记录阅读到的章节。已完成的模块不会退回 in_progress
func (s *ModuleService) UpdateProgress(userID, moduleID string, sectionIndex int, completed bool) (*ProgressView, error) {
	m, err := s.Repo.FindByID(moduleID)
	if err != nil {
		return nil, err
	}
	sections := ParseSections(m.Content)
	n := len(sections)
	if n == 0 {
		return nil, util.ErrNoSections
	}
	if sectionIndex < 0 || sectionIndex >= n {
		return nil, util.ErrInvalidSection
	}

	now := s.Now()
	p, err := s.Progress.FindByUserAndModule(userID, moduleID)
	if errors.Is(err, util.ErrNotFound) {
		p = &model.ModuleProgress{
			UserID:    userID,
			ModuleID:  moduleID,
			Status:    model.ProgressInProgress,
			StartedAt: now,
		}
	} else if err != nil {
		return nil, err
	}

	p.LastSection = sections[sectionIndex].Title
	switch {
	case completed || p.Status == model.ProgressCompleted:
		p.ProgressPercent = 100
		if p.Status != model.ProgressCompleted {
			p.Status = model.ProgressCompleted
			p.CompletedAt = &now
		}
	default:
		p.ProgressPercent = sectionPercent(sectionIndex, n)
		p.Status = model.ProgressInProgress
	}

	if err := s.Progress.Save(p); err != nil {
		return nil, err
	}
	return &ProgressView{Progress: p, SectionIndex: sectionIndex, SectionCount: n}, nil
}

func (s *ModuleService) ListProgress(userID string) ([]model.ModuleProgress, error) {
	return s.Progress.ListByUser(userID)
}

// sectionPercent round((idx+1)/n*100)，四舍五入
func sectionPercent(idx, n int) int {
	return ((idx+1)*200 + n) / (2 * n)
}
