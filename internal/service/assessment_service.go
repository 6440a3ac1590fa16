package service

import (
	"compliance_edu_backend/internal/config"
	"compliance_edu_backend/internal/model"
	"compliance_edu_backend/internal/quiz"
	"compliance_edu_backend/internal/util"
	"compliance_edu_backend/pkg/logger"
	"compliance_edu_backend/pkg/monitoring"
	"compliance_edu_backend/pkg/tracing"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

type AssessmentStore interface {
	CreateWithQuestions(a *model.Assessment, questions []model.Question) error
	FindByID(id string) (*model.Assessment, error)
	List() ([]model.Assessment, error)
	ListQuestions(assessmentID string) ([]model.Question, error)
	Delete(id string) error
}

type ModuleLookup interface {
	FindByID(id string) (*model.TrainingModule, error)
}

type AttemptStore interface {
	// CreateWithCertificate 在同一事务里写入作答和证书，cert 可以为 nil
	CreateWithCertificate(attempt *model.Attempt, cert *model.Certificate) error
	FindByID(id string) (*model.Attempt, error)
	ListByUser(userID string) ([]model.Attempt, error)
}

type AssessmentService struct {
	Repo         AssessmentStore
	Modules      ModuleLookup
	Attempts     AttemptStore
	Sessions     SessionStore
	Certificates *CertificateService
	Audit        *AuditService
	Cfg          config.AssessmentConfig
	TTL          time.Duration
	Now          func() time.Time
}

func NewAssessmentService(
	repo AssessmentStore,
	modules ModuleLookup,
	attempts AttemptStore,
	sessions SessionStore,
	certificates *CertificateService,
	audit *AuditService,
	cfg *config.Config,
) *AssessmentService {
	return &AssessmentService{
		Repo:         repo,
		Modules:      modules,
		Attempts:     attempts,
		Sessions:     sessions,
		Certificates: certificates,
		Audit:        audit,
		Cfg:          cfg.Assessment,
		TTL:          cfg.Session.TTL,
		Now:          time.Now,
	}
}

type quizSession struct {
	ID                string           `json:"id"`
	UserID            string           `json:"userId"`
	AssessmentID      string           `json:"assessmentId"`
	ModuleID          *string          `json:"moduleId,omitempty"`
	Title             string           `json:"title"`
	PassThreshold     int              `json:"passThreshold"`
	ImmediateFeedback bool             `json:"immediateFeedback"`
	Questions         []model.Question `json:"questions"`
	State             quiz.State       `json:"state"`
	AttemptID         string           `json:"attemptId,omitempty"` // 提交成功后设置
	StartedAt         time.Time        `json:"startedAt"`
}

type QuestionView struct {
	ID           string         `json:"id"`
	QuestionText string         `json:"questionText"`
	Options      []string       `json:"options"`
	Selected     *int           `json:"selected,omitempty"`
	Feedback     *quiz.Feedback `json:"feedback,omitempty"`
}

// QuizView 提交前不会包含正确答案（即时反馈模式下已揭晓的题目除外）
type QuizView struct {
	SessionID         string         `json:"sessionId"`
	AssessmentID      string         `json:"assessmentId"`
	Title             string         `json:"title"`
	Index             int            `json:"index"`
	Total             int            `json:"total"`
	Question          QuestionView   `json:"question"`
	Answered          []bool         `json:"answered"`
	AnsweredCount     int            `json:"answeredCount"`
	CanAdvance        bool           `json:"canAdvance"`
	CanSubmit         bool           `json:"canSubmit"`
	ImmediateFeedback bool           `json:"immediateFeedback"`
	PassThreshold     int            `json:"passThreshold"`
	AttemptID         string         `json:"attemptId,omitempty"`
	LastFeedback      *quiz.Feedback `json:"lastFeedback,omitempty"`
}

type SubmitResult struct {
	Attempt     *model.Attempt     `json:"attempt"`
	Result      quiz.Result        `json:"result"`
	Review      []quiz.ReviewItem  `json:"review"`
	Certificate *model.Certificate `json:"certificate,omitempty"`
}

func (s *AssessmentService) options(sess *quizSession) quiz.Options {
	return quiz.Options{
		PassThreshold:     sess.PassThreshold,
		ImmediateFeedback: sess.ImmediateFeedback,
		FeedbackWindow:    s.Cfg.FeedbackWindow,
		Now:               s.Now,
	}
}

func (s *AssessmentService) List() ([]model.Assessment, error) {
	return s.Repo.List()
}

func (s *AssessmentService) Get(id string) (*model.Assessment, error) {
	return s.Repo.FindByID(id)
}

// Start 读取测评和题目快照，创建作答会话
func (s *AssessmentService) Start(ctx context.Context, claims *util.Claims, assessmentID string) (*QuizView, error) {
	a, err := s.Repo.FindByID(assessmentID)
	if err != nil {
		return nil, err
	}
	questions, err := s.Repo.ListQuestions(assessmentID)
	if err != nil {
		return nil, err
	}

	sess := &quizSession{
		ID:                uuid.New().String(),
		UserID:            claims.UserID,
		AssessmentID:      a.ID,
		ModuleID:          a.ModuleID,
		Title:             a.Title,
		PassThreshold:     a.PassThreshold,
		ImmediateFeedback: a.ImmediateFeedback,
		StartedAt:         s.Now(),
	}
	engine, err := quiz.New(questions, s.options(sess))
	if err != nil {
		return nil, err
	}
	sess.Questions = engine.Questions()

	if err := s.save(ctx, sess, engine); err != nil {
		return nil, err
	}
	return s.view(sess, engine), nil
}

func (s *AssessmentService) GetSession(ctx context.Context, claims *util.Claims, sessionID string) (*QuizView, error) {
	sess, engine, err := s.load(ctx, claims, sessionID)
	if err != nil {
		return nil, err
	}
	return s.view(sess, engine), nil
}

func (s *AssessmentService) SelectAnswer(ctx context.Context, claims *util.Claims, sessionID, questionID string, optionIndex int) (*QuizView, error) {
	sess, engine, err := s.openForWrite(ctx, claims, sessionID)
	if err != nil {
		return nil, err
	}
	fb, err := engine.SelectAnswer(questionID, optionIndex)
	if err != nil {
		return nil, err
	}
	if err := s.save(ctx, sess, engine); err != nil {
		return nil, err
	}
	v := s.view(sess, engine)
	if fb.Revealed {
		v.LastFeedback = &fb
	}
	return v, nil
}

func (s *AssessmentService) Next(ctx context.Context, claims *util.Claims, sessionID string) (*QuizView, error) {
	sess, engine, err := s.openForWrite(ctx, claims, sessionID)
	if err != nil {
		return nil, err
	}
	if err := engine.Next(); err != nil {
		return nil, err
	}
	if err := s.save(ctx, sess, engine); err != nil {
		return nil, err
	}
	return s.view(sess, engine), nil
}

func (s *AssessmentService) Prev(ctx context.Context, claims *util.Claims, sessionID string) (*QuizView, error) {
	sess, engine, err := s.openForWrite(ctx, claims, sessionID)
	if err != nil {
		return nil, err
	}
	engine.Prev()
	if err := s.save(ctx, sess, engine); err != nil {
		return nil, err
	}
	return s.view(sess, engine), nil
}

// Submit 计算成绩并在一个事务里写入作答记录和证书。
// 写入前先占用会话的提交标记；写入失败时释放标记并保留会话，用户可以重试。
func (s *AssessmentService) Submit(ctx context.Context, claims *util.Claims, sessionID, ip string) (*SubmitResult, error) {
	ctx, span := tracing.Start(ctx, "assessment.submit")
	defer span.End()

	sess, engine, err := s.openForWrite(ctx, claims, sessionID)
	if err != nil {
		return nil, err
	}
	result, err := engine.Result()
	if err != nil {
		return nil, err
	}

	attempt := &model.Attempt{
		UserID:         claims.UserID,
		AssessmentID:   sess.AssessmentID,
		Score:          result.Score,
		TotalQuestions: result.Total,
		Percentage:     result.Percentage,
		Passed:         result.Passed,
		Answers:        result.Answers,
		CompletedAt:    s.Now(),
	}

	var cert *model.Certificate
	if result.Passed && sess.ModuleID != nil && *sess.ModuleID != "" {
		cert = s.Certificates.NewCertificate(claims.UserID, *sess.ModuleID)
	}

	span.SetAttributes(
		attribute.String("assessment.id", sess.AssessmentID),
		attribute.Int("assessment.percentage", result.Percentage),
		attribute.Bool("assessment.passed", result.Passed),
	)

	// 先占用提交标记，并发的第二次提交在这里返回 409
	claimed, err := s.Sessions.Claim(ctx, quizSubmitKey(sess.ID), s.TTL)
	if err != nil {
		return nil, fmt.Errorf("claim quiz session: %w", err)
	}
	if !claimed {
		return nil, util.ErrAlreadySubmitted
	}

	if err := s.Attempts.CreateWithCertificate(attempt, cert); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "persist attempt")
		if derr := s.Sessions.Delete(ctx, quizSubmitKey(sess.ID)); derr != nil {
			logger.Log.Warn("release quiz submit claim failed", zap.String("session_id", sess.ID), zap.Error(derr))
		}
		return nil, fmt.Errorf("save attempt: %w", err)
	}

	monitoring.ObserveAttempt(result.Passed)
	s.Audit.Record(AuditEntry{
		UserID:     claims.UserID,
		Action:     model.AuditAttemptSubmitted,
		EntityType: "attempt",
		EntityID:   attempt.ID,
		IP:         ip,
		Details: map[string]interface{}{
			"assessment_id": sess.AssessmentID,
			"percentage":    result.Percentage,
			"passed":        result.Passed,
		},
	})
	if cert != nil {
		monitoring.ObserveCertificate("submit")
		s.Audit.Record(AuditEntry{
			UserID:     claims.UserID,
			Action:     model.AuditCertificateIssued,
			EntityType: "certificate",
			EntityID:   cert.ID,
			IP:         ip,
			Details:    map[string]interface{}{"attempt_id": attempt.ID, "source": "submit"},
		})
	}

	// 标记已提交，重复提交返回 409
	sess.AttemptID = attempt.ID
	if err := s.save(ctx, sess, engine); err != nil {
		logger.Log.Warn("mark quiz session submitted failed", zap.String("session_id", sess.ID), zap.Error(err))
	}

	return &SubmitResult{
		Attempt:     attempt,
		Result:      result,
		Review:      engine.Review(),
		Certificate: cert,
	}, nil
}

type AttemptReview struct {
	Attempt *model.Attempt    `json:"attempt"`
	Review  []quiz.ReviewItem `json:"review"`
}

// ReviewAttempt 本人或管理员、合规官可查看答题回顾
func (s *AssessmentService) ReviewAttempt(claims *util.Claims, attemptID string) (*AttemptReview, error) {
	attempt, err := s.Attempts.FindByID(attemptID)
	if err != nil {
		return nil, err
	}
	if attempt.UserID != claims.UserID && !claims.HasRole(model.Admin, model.ComplianceOfficer) {
		return nil, util.ErrPermissionDenied
	}
	questions, err := s.Repo.ListQuestions(attempt.AssessmentID)
	if err != nil {
		return nil, err
	}
	return &AttemptReview{Attempt: attempt, Review: quiz.BuildReview(questions, attempt.Answers)}, nil
}

func (s *AssessmentService) ListAttempts(userID string) ([]model.Attempt, error) {
	return s.Attempts.ListByUser(userID)
}

func (s *AssessmentService) load(ctx context.Context, claims *util.Claims, sessionID string) (*quizSession, *quiz.Engine, error) {
	var sess quizSession
	if err := s.Sessions.Load(ctx, quizSessionKey(sessionID), &sess); err != nil {
		return nil, nil, err
	}
	if sess.UserID != claims.UserID {
		return nil, nil, util.ErrSessionNotFound
	}
	engine, err := quiz.Resume(sess.Questions, s.options(&sess), sess.State)
	if err != nil {
		return nil, nil, fmt.Errorf("resume quiz session %s: %w", sessionID, err)
	}
	return &sess, engine, nil
}

func (s *AssessmentService) openForWrite(ctx context.Context, claims *util.Claims, sessionID string) (*quizSession, *quiz.Engine, error) {
	sess, engine, err := s.load(ctx, claims, sessionID)
	if err != nil {
		return nil, nil, err
	}
	if sess.AttemptID != "" {
		return nil, nil, util.ErrAlreadySubmitted
	}
	return sess, engine, nil
}

func (s *AssessmentService) save(ctx context.Context, sess *quizSession, engine *quiz.Engine) error {
	sess.State = engine.State()
	return s.Sessions.Save(ctx, quizSessionKey(sess.ID), sess, s.TTL)
}

func (s *AssessmentService) view(sess *quizSession, engine *quiz.Engine) *QuizView {
	questions := engine.Questions()
	cur := engine.CurrentQuestion()
	state := engine.State()

	v := &QuizView{
		SessionID:         sess.ID,
		AssessmentID:      sess.AssessmentID,
		Title:             sess.Title,
		Index:             engine.Current(),
		Total:             engine.Total(),
		Answered:          make([]bool, len(questions)),
		AnsweredCount:     engine.AnsweredCount(),
		CanAdvance:        engine.CanAdvance(engine.Current()),
		CanSubmit:         engine.Complete() && sess.AttemptID == "",
		ImmediateFeedback: sess.ImmediateFeedback,
		PassThreshold:     sess.PassThreshold,
		AttemptID:         sess.AttemptID,
		Question: QuestionView{
			ID:           cur.ID,
			QuestionText: cur.QuestionText,
			Options:      cur.Options,
		},
	}
	for i, q := range questions {
		_, v.Answered[i] = engine.Answer(q.ID)
	}
	if sel, ok := engine.Answer(cur.ID); ok {
		v.Question.Selected = &sel
		if at, revealed := state.RevealedAt[cur.ID]; revealed {
			v.Question.Feedback = &quiz.Feedback{
				Revealed:      true,
				Correct:       sel == cur.CorrectOption,
				CorrectOption: cur.CorrectOption,
				RevealUntil:   at.Add(s.Cfg.FeedbackWindow),
			}
		}
	}
	return v
}

type QuestionInput struct {
	QuestionText  string   `json:"questionText" binding:"required"`
	Options       []string `json:"options" binding:"required,min=2"`
	CorrectOption int      `json:"correctOption" binding:"min=0"`
	Explanation   string   `json:"explanation"`
}

type AssessmentInput struct {
	Title             string          `json:"title" binding:"required,max=255"`
	ModuleID          *string         `json:"moduleId"`
	PassThreshold     *int            `json:"passThreshold" binding:"omitempty,min=0,max=100"`
	ImmediateFeedback bool            `json:"immediateFeedback"`
	Questions         []QuestionInput `json:"questions" binding:"required,min=1,dive"`
}

// BuildQuestions 按提交顺序设置 sort_order 并逐题校验
func BuildQuestions(in []QuestionInput) ([]model.Question, error) {
	questions := make([]model.Question, 0, len(in))
	for i, q := range in {
		mq := model.Question{
			QuestionText:  strings.TrimSpace(q.QuestionText),
			Options:       q.Options,
			CorrectOption: q.CorrectOption,
			Explanation:   q.Explanation,
			SortOrder:     i,
		}
		if err := quiz.ValidateQuestion(mq); err != nil {
			return nil, fmt.Errorf("question %d: %w", i+1, err)
		}
		questions = append(questions, mq)
	}
	return questions, nil
}

func (s *AssessmentService) Create(actor *util.Claims, in AssessmentInput) (*model.Assessment, error) {
	questions, err := BuildQuestions(in.Questions)
	if err != nil {
		return nil, err
	}
	threshold := s.Cfg.DefaultPassThreshold
	if in.PassThreshold != nil {
		threshold = *in.PassThreshold
	}
	if threshold < 0 || threshold > 100 {
		return nil, fmt.Errorf("%w: pass threshold %d", util.ErrInvalidQuestion, threshold)
	}

	moduleID, err := s.resolveModule(in.ModuleID)
	if err != nil {
		return nil, err
	}

	a := &model.Assessment{
		Title:             strings.TrimSpace(in.Title),
		ModuleID:          moduleID,
		PassThreshold:     threshold,
		ImmediateFeedback: in.ImmediateFeedback,
	}
	if err := s.Repo.CreateWithQuestions(a, questions); err != nil {
		return nil, err
	}
	s.Audit.Record(AuditEntry{
		UserID:     actor.UserID,
		Action:     model.AuditAssessmentSaved,
		EntityType: "assessment",
		EntityID:   a.ID,
		Details:    map[string]interface{}{"questions": len(questions)},
	})
	return a, nil
}

// resolveModule 空白 moduleId 视为不关联模块，非空时模块必须存在
func (s *AssessmentService) resolveModule(id *string) (*string, error) {
	if id == nil || strings.TrimSpace(*id) == "" {
		return nil, nil
	}
	trimmed := strings.TrimSpace(*id)
	if _, err := s.Modules.FindByID(trimmed); err != nil {
		if errors.Is(err, util.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", util.ErrUnknownModule, trimmed)
		}
		return nil, err
	}
	return &trimmed, nil
}

func (s *AssessmentService) Delete(actor *util.Claims, id string) error {
	if err := s.Repo.Delete(id); err != nil {
		return err
	}
	s.Audit.Record(AuditEntry{
		UserID:     actor.UserID,
		Action:     model.AuditAssessmentDeleted,
		EntityType: "assessment",
		EntityID:   id,
	})
	return nil
}
