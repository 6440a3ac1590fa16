// Package testkit 提供仓储接口的内存实现，供 service 和 controller 测试使用。
package testkit

import (
	"compliance_edu_backend/internal/model"
	"compliance_edu_backend/internal/repository"
	"compliance_edu_backend/internal/util"
	"sort"
	"time"
)

func ensureID(b *model.UUIDBase) {
	if b.ID == "" {
		b.ID = model.GenerateUUID()
	}
	now := time.Now()
	if b.CreatedAt.IsZero() {
		b.CreatedAt = now
	}
	b.UpdatedAt = now
}

// UserStore 内存用户表
type UserStore struct {
	Users map[string]*model.User
	order []string
}

func NewUserStore() *UserStore {
	return &UserStore{Users: make(map[string]*model.User)}
}

func (s *UserStore) Create(u *model.User) error {
	ensureID(&u.UUIDBase)
	for _, existing := range s.Users {
		if existing.Email == u.Email {
			return util.ErrEmailRegistered
		}
	}
	cp := *u
	s.Users[u.ID] = &cp
	s.order = append(s.order, u.ID)
	return nil
}

func (s *UserStore) FindByID(id string) (*model.User, error) {
	u, ok := s.Users[id]
	if !ok {
		return nil, util.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *UserStore) FindByEmail(email string) (*model.User, error) {
	for _, u := range s.Users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, util.ErrNotFound
}

func (s *UserStore) Update(u *model.User) error {
	if _, ok := s.Users[u.ID]; !ok {
		return util.ErrNotFound
	}
	cp := *u
	s.Users[u.ID] = &cp
	return nil
}

func (s *UserStore) UpdateRole(userID string, role model.UserRole) error {
	u, ok := s.Users[userID]
	if !ok {
		return util.ErrNotFound
	}
	u.Role = role
	return nil
}

func (s *UserStore) UpdateLastLogin(userID string, at time.Time) error {
	u, ok := s.Users[userID]
	if !ok {
		return util.ErrNotFound
	}
	u.LastLogin = &at
	return nil
}

func (s *UserStore) List(page, limit int) ([]model.User, int64, error) {
	all := make([]model.User, 0, len(s.order))
	for _, id := range s.order {
		all = append(all, *s.Users[id])
	}
	return paginate(all, page, limit), int64(len(all)), nil
}

func (s *UserStore) Count() (int64, error) {
	return int64(len(s.Users)), nil
}

func (s *UserStore) RoleCounts() ([]repository.RoleCount, error) {
	counts := map[model.UserRole]int64{}
	for _, u := range s.Users {
		counts[u.Role]++
	}
	rows := make([]repository.RoleCount, 0, len(counts))
	for role, n := range counts {
		rows = append(rows, repository.RoleCount{Role: role, Count: n})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Role < rows[j].Role })
	return rows, nil
}

func paginate[T any](all []T, page, limit int) []T {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	start := (page - 1) * limit
	if start >= len(all) {
		return []T{}
	}
	end := start + limit
	if end > len(all) {
		end = len(all)
	}
	return all[start:end]
}

// ModuleStore 内存培训模块表
type ModuleStore struct {
	Modules map[string]*model.TrainingModule
	order   []string
}

func NewModuleStore() *ModuleStore {
	return &ModuleStore{Modules: make(map[string]*model.TrainingModule)}
}

func (s *ModuleStore) Create(m *model.TrainingModule) error {
	ensureID(&m.UUIDBase)
	cp := *m
	s.Modules[m.ID] = &cp
	s.order = append(s.order, m.ID)
	return nil
}

func (s *ModuleStore) Update(m *model.TrainingModule) error {
	if _, ok := s.Modules[m.ID]; !ok {
		return util.ErrNotFound
	}
	cp := *m
	s.Modules[m.ID] = &cp
	return nil
}

func (s *ModuleStore) FindByID(id string) (*model.TrainingModule, error) {
	m, ok := s.Modules[id]
	if !ok {
		return nil, util.ErrNotFound
	}
	cp := *m
	return &cp, nil
}

func (s *ModuleStore) List() ([]model.TrainingModule, error) {
	out := make([]model.TrainingModule, 0, len(s.order))
	for _, id := range s.order {
		if m, ok := s.Modules[id]; ok {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (s *ModuleStore) ListMandatory() ([]model.TrainingModule, error) {
	all, _ := s.List()
	out := make([]model.TrainingModule, 0, len(all))
	for _, m := range all {
		if m.IsMandatory {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *ModuleStore) Delete(id string) error {
	if _, ok := s.Modules[id]; !ok {
		return util.ErrNotFound
	}
	delete(s.Modules, id)
	return nil
}

func (s *ModuleStore) Count() (int64, error) {
	return int64(len(s.Modules)), nil
}

// ProgressStore 内存学习进度表
type ProgressStore struct {
	Rows map[string]*model.ModuleProgress
}

func NewProgressStore() *ProgressStore {
	return &ProgressStore{Rows: make(map[string]*model.ModuleProgress)}
}

func progressKey(userID, moduleID string) string {
	return userID + ":" + moduleID
}

func (s *ProgressStore) FindByUserAndModule(userID, moduleID string) (*model.ModuleProgress, error) {
	p, ok := s.Rows[progressKey(userID, moduleID)]
	if !ok {
		return nil, util.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *ProgressStore) Save(p *model.ModuleProgress) error {
	ensureID(&p.UUIDBase)
	cp := *p
	s.Rows[progressKey(p.UserID, p.ModuleID)] = &cp
	return nil
}

func (s *ProgressStore) ListByUser(userID string) ([]model.ModuleProgress, error) {
	out := []model.ModuleProgress{}
	for _, p := range s.Rows {
		if p.UserID == userID {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ModuleID < out[j].ModuleID })
	return out, nil
}

func (s *ProgressStore) StatusCounts() ([]repository.StatusCount, error) {
	counts := map[string]int64{}
	for _, p := range s.Rows {
		counts[p.Status]++
	}
	rows := make([]repository.StatusCount, 0, len(counts))
	for status, n := range counts {
		rows = append(rows, repository.StatusCount{Status: status, Count: n})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Status < rows[j].Status })
	return rows, nil
}

// ScenarioStore 内存情景及节点表
type ScenarioStore struct {
	Scenarios map[string]*model.Scenario
	Nodes     map[string][]model.ScenarioNode
	order     []string
}

func NewScenarioStore() *ScenarioStore {
	return &ScenarioStore{
		Scenarios: make(map[string]*model.Scenario),
		Nodes:     make(map[string][]model.ScenarioNode),
	}
}

func (s *ScenarioStore) CreateWithNodes(sc *model.Scenario, nodes []model.ScenarioNode) error {
	ensureID(&sc.UUIDBase)
	cp := *sc
	s.Scenarios[sc.ID] = &cp
	s.order = append(s.order, sc.ID)
	stored := make([]model.ScenarioNode, len(nodes))
	for i := range nodes {
		nodes[i].ScenarioID = sc.ID
		ensureID(&nodes[i].UUIDBase)
		stored[i] = nodes[i]
	}
	s.Nodes[sc.ID] = stored
	return nil
}

func (s *ScenarioStore) FindByID(id string) (*model.Scenario, error) {
	sc, ok := s.Scenarios[id]
	if !ok {
		return nil, util.ErrNotFound
	}
	cp := *sc
	return &cp, nil
}

func (s *ScenarioStore) List() ([]model.Scenario, error) {
	out := make([]model.Scenario, 0, len(s.order))
	for _, id := range s.order {
		if sc, ok := s.Scenarios[id]; ok {
			out = append(out, *sc)
		}
	}
	return out, nil
}

func (s *ScenarioStore) ListNodes(scenarioID string) ([]model.ScenarioNode, error) {
	nodes := s.Nodes[scenarioID]
	out := make([]model.ScenarioNode, len(nodes))
	copy(out, nodes)
	return out, nil
}

func (s *ScenarioStore) Delete(id string) error {
	if _, ok := s.Scenarios[id]; !ok {
		return util.ErrNotFound
	}
	delete(s.Scenarios, id)
	delete(s.Nodes, id)
	return nil
}

func (s *ScenarioStore) Count() (int64, error) {
	return int64(len(s.Scenarios)), nil
}

// AssessmentStore 内存测评及题目表
type AssessmentStore struct {
	Assessments map[string]*model.Assessment
	Questions   map[string][]model.Question
	order       []string
}

func NewAssessmentStore() *AssessmentStore {
	return &AssessmentStore{
		Assessments: make(map[string]*model.Assessment),
		Questions:   make(map[string][]model.Question),
	}
}

func (s *AssessmentStore) CreateWithQuestions(a *model.Assessment, questions []model.Question) error {
	ensureID(&a.UUIDBase)
	a.QuestionCount = len(questions)
	cp := *a
	s.Assessments[a.ID] = &cp
	s.order = append(s.order, a.ID)
	stored := make([]model.Question, len(questions))
	for i := range questions {
		questions[i].AssessmentID = a.ID
		ensureID(&questions[i].UUIDBase)
		stored[i] = questions[i]
	}
	s.Questions[a.ID] = stored
	return nil
}

func (s *AssessmentStore) FindByID(id string) (*model.Assessment, error) {
	a, ok := s.Assessments[id]
	if !ok {
		return nil, util.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (s *AssessmentStore) List() ([]model.Assessment, error) {
	out := make([]model.Assessment, 0, len(s.order))
	for _, id := range s.order {
		if a, ok := s.Assessments[id]; ok {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (s *AssessmentStore) ListQuestions(assessmentID string) ([]model.Question, error) {
	qs := s.Questions[assessmentID]
	out := make([]model.Question, len(qs))
	copy(out, qs)
	sort.SliceStable(out, func(i, j int) bool { return out[i].SortOrder < out[j].SortOrder })
	return out, nil
}

func (s *AssessmentStore) Delete(id string) error {
	if _, ok := s.Assessments[id]; !ok {
		return util.ErrNotFound
	}
	delete(s.Assessments, id)
	delete(s.Questions, id)
	return nil
}

// CertificateStore 内存证书表。Attempts/Assessments/Modules 用于模拟联表查询
type CertificateStore struct {
	Certs       map[string]*model.Certificate
	Attempts    *AttemptStore
	Assessments *AssessmentStore
	Modules     *ModuleStore
	CreateErr   error
}

func NewCertificateStore() *CertificateStore {
	return &CertificateStore{Certs: make(map[string]*model.Certificate)}
}

func (s *CertificateStore) Create(c *model.Certificate) error {
	if s.CreateErr != nil {
		return s.CreateErr
	}
	ensureID(&c.UUIDBase)
	cp := *c
	s.Certs[c.ID] = &cp
	return nil
}

func (s *CertificateStore) withModule(c model.Certificate) model.Certificate {
	if s.Modules != nil {
		if m, ok := s.Modules.Modules[c.ModuleID]; ok {
			mc := *m
			c.Module = &mc
		}
	}
	return c
}

func (s *CertificateStore) FindByID(id string) (*model.Certificate, error) {
	c, ok := s.Certs[id]
	if !ok {
		return nil, util.ErrNotFound
	}
	cp := s.withModule(*c)
	return &cp, nil
}

func (s *CertificateStore) byUser(userID string) []model.Certificate {
	out := []model.Certificate{}
	for _, c := range s.Certs {
		if c.UserID == userID {
			out = append(out, s.withModule(*c))
		}
	}
	return out
}

func (s *CertificateStore) ListByUser(userID string) ([]model.Certificate, error) {
	out := s.byUser(userID)
	sort.Slice(out, func(i, j int) bool { return out[i].IssuedAt.After(out[j].IssuedAt) })
	return out, nil
}

func (s *CertificateStore) ListExpiringByUser(userID string, limit int) ([]model.Certificate, error) {
	out := s.byUser(userID)
	sort.Slice(out, func(i, j int) bool { return out[i].ValidUntil.Before(out[j].ValidUntil) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *CertificateStore) CountByUser(userID string) (int64, error) {
	return int64(len(s.byUser(userID))), nil
}

func (s *CertificateStore) Count() (int64, error) {
	return int64(len(s.Certs)), nil
}

func (s *CertificateStore) CountByModule() ([]repository.ModuleCount, error) {
	counts := map[string]int64{}
	for _, c := range s.Certs {
		title := "Unknown"
		if s.Modules != nil {
			if m, ok := s.Modules.Modules[c.ModuleID]; ok {
				title = m.Title
			}
		}
		counts[title]++
	}
	rows := make([]repository.ModuleCount, 0, len(counts))
	for title, n := range counts {
		rows = append(rows, repository.ModuleCount{Title: title, Count: n})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Count != rows[j].Count {
			return rows[i].Count > rows[j].Count
		}
		return rows[i].Title < rows[j].Title
	})
	return rows, nil
}

func (s *CertificateStore) ListPending(limit int) ([]repository.PendingCertificate, error) {
	if s.Attempts == nil || s.Assessments == nil {
		return nil, nil
	}
	issued := map[string]bool{}
	for _, c := range s.Certs {
		if c.AttemptID != nil {
			issued[*c.AttemptID] = true
		}
	}
	attempts := make([]*model.Attempt, 0, len(s.Attempts.Attempts))
	for _, a := range s.Attempts.Attempts {
		attempts = append(attempts, a)
	}
	sort.Slice(attempts, func(i, j int) bool { return attempts[i].CompletedAt.Before(attempts[j].CompletedAt) })

	var rows []repository.PendingCertificate
	for _, a := range attempts {
		if !a.Passed || issued[a.ID] {
			continue
		}
		as, ok := s.Assessments.Assessments[a.AssessmentID]
		// 与 SQL 条件一致：module_id IS NOT NULL AND module_id <> ''
		if !ok || as.ModuleID == nil || *as.ModuleID == "" {
			continue
		}
		rows = append(rows, repository.PendingCertificate{AttemptID: a.ID, UserID: a.UserID, ModuleID: *as.ModuleID})
		if limit > 0 && len(rows) == limit {
			break
		}
	}
	return rows, nil
}

// AttemptStore 内存作答表，证书写入 Certificates 以模拟事务
type AttemptStore struct {
	Attempts     map[string]*model.Attempt
	Certificates *CertificateStore
	// CreateErr 非空时 CreateWithCertificate 直接失败且不写入任何数据
	CreateErr error
}

func NewAttemptStore(certs *CertificateStore) *AttemptStore {
	return &AttemptStore{Attempts: make(map[string]*model.Attempt), Certificates: certs}
}

func (s *AttemptStore) CreateWithCertificate(attempt *model.Attempt, cert *model.Certificate) error {
	if s.CreateErr != nil {
		return s.CreateErr
	}
	ensureID(&attempt.UUIDBase)
	if cert != nil {
		cert.AttemptID = &attempt.ID
		if err := s.Certificates.Create(cert); err != nil {
			return err
		}
	}
	cp := *attempt
	s.Attempts[attempt.ID] = &cp
	return nil
}

func (s *AttemptStore) FindByID(id string) (*model.Attempt, error) {
	a, ok := s.Attempts[id]
	if !ok {
		return nil, util.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (s *AttemptStore) ListByUser(userID string) ([]model.Attempt, error) {
	out := []model.Attempt{}
	for _, a := range s.Attempts {
		if a.UserID == userID {
			out = append(out, *a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CompletedAt.After(out[j].CompletedAt) })
	return out, nil
}

func (s *AttemptStore) CountByUser(userID string) (int64, error) {
	out, _ := s.ListByUser(userID)
	return int64(len(out)), nil
}

func (s *AttemptStore) PassCounts() (repository.PassCounts, error) {
	var pc repository.PassCounts
	for _, a := range s.Attempts {
		pc.Total++
		if a.Passed {
			pc.Passed++
		}
	}
	return pc, nil
}

// AuditStore 内存审计日志
type AuditStore struct {
	Logs      []model.AuditLog
	CreateErr error
}

func NewAuditStore() *AuditStore {
	return &AuditStore{}
}

func (s *AuditStore) Create(l *model.AuditLog) error {
	if s.CreateErr != nil {
		return s.CreateErr
	}
	ensureID(&l.UUIDBase)
	s.Logs = append(s.Logs, *l)
	return nil
}

func (s *AuditStore) List(page, limit int) ([]model.AuditLog, int64, error) {
	out := make([]model.AuditLog, len(s.Logs))
	for i, l := range s.Logs {
		out[len(s.Logs)-1-i] = l
	}
	return paginate(out, page, limit), int64(len(out)), nil
}

// Actions 按写入顺序返回 action，便于断言
func (s *AuditStore) Actions() []string {
	out := make([]string, 0, len(s.Logs))
	for _, l := range s.Logs {
		out = append(out, l.Action)
	}
	return out
}

// HasAction 判断是否记录过某个 action
func (s *AuditStore) HasAction(action string) bool {
	for _, l := range s.Logs {
		if l.Action == action {
			return true
		}
	}
	return false
}
