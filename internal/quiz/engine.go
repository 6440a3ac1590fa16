// Package quiz 是单选题测评的状态机：记录作答、计算得分、判定是否通过。
package quiz

import (
	"compliance_edu_backend/internal/model"
	"compliance_edu_backend/internal/util"
	"fmt"
	"sort"
	"strings"
	"time"
)

type Options struct {
	PassThreshold int
	// ImmediateFeedback 打开时，作答后立即揭晓对错并锁定答案，
	// FeedbackWindow 内不允许进入下一题
	ImmediateFeedback bool
	FeedbackWindow    time.Duration
	Now               func() time.Time
}

// State 是可序列化的作答状态
type State struct {
	Answers    map[string]int       `json:"answers"`
	Current    int                  `json:"current"`
	RevealedAt map[string]time.Time `json:"revealedAt,omitempty"`
}

type Feedback struct {
	Revealed      bool      `json:"revealed"`
	Correct       bool      `json:"correct"`
	CorrectOption int       `json:"correctOption"`
	RevealUntil   time.Time `json:"revealUntil"`
}

type Result struct {
	Score      int                   `json:"score"`
	Total      int                   `json:"total"`
	Percentage int                   `json:"percentage"`
	Passed     bool                  `json:"passed"`
	Answers    []model.AttemptAnswer `json:"answers"`
}

type Engine struct {
	questions []model.Question
	index     map[string]int
	opts      Options
	state     State
}

// ValidateQuestion 校验从数据库读出的弱类型题目
func ValidateQuestion(q model.Question) error {
	if strings.TrimSpace(q.QuestionText) == "" {
		return fmt.Errorf("%w: empty question text", util.ErrInvalidQuestion)
	}
	if len(q.Options) < 2 {
		return fmt.Errorf("%w: question %q needs at least 2 options", util.ErrInvalidQuestion, q.QuestionText)
	}
	if q.CorrectOption < 0 || q.CorrectOption >= len(q.Options) {
		return fmt.Errorf("%w: correct option %d out of range for %q", util.ErrInvalidQuestion, q.CorrectOption, q.QuestionText)
	}
	return nil
}

func New(questions []model.Question, opts Options) (*Engine, error) {
	return Resume(questions, opts, State{})
}

func Resume(questions []model.Question, opts Options, st State) (*Engine, error) {
	if len(questions) == 0 {
		return nil, util.ErrNoQuestions
	}
	if opts.PassThreshold < 0 || opts.PassThreshold > 100 {
		return nil, fmt.Errorf("pass threshold %d out of range", opts.PassThreshold)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	qs := make([]model.Question, len(questions))
	copy(qs, questions)
	sort.SliceStable(qs, func(i, j int) bool { return qs[i].SortOrder < qs[j].SortOrder })

	e := &Engine{
		questions: qs,
		index:     make(map[string]int, len(qs)),
		opts:      opts,
		state: State{
			Answers:    make(map[string]int, len(st.Answers)),
			RevealedAt: make(map[string]time.Time, len(st.RevealedAt)),
		},
	}
	for i, q := range qs {
		if err := ValidateQuestion(q); err != nil {
			return nil, err
		}
		e.index[q.ID] = i
	}

	for id, opt := range st.Answers {
		i, ok := e.index[id]
		if !ok || opt < 0 || opt >= len(qs[i].Options) {
			continue
		}
		e.state.Answers[id] = opt
	}
	for id, at := range st.RevealedAt {
		if _, ok := e.state.Answers[id]; ok {
			e.state.RevealedAt[id] = at
		}
	}
	if st.Current >= 0 && st.Current < len(qs) {
		e.state.Current = st.Current
	}
	return e, nil
}

func (e *Engine) Questions() []model.Question {
	return e.questions
}

func (e *Engine) Total() int {
	return len(e.questions)
}

func (e *Engine) Current() int {
	return e.state.Current
}

func (e *Engine) CurrentQuestion() model.Question {
	return e.questions[e.state.Current]
}

func (e *Engine) Answer(questionID string) (int, bool) {
	v, ok := e.state.Answers[questionID]
	return v, ok
}

func (e *Engine) AnsweredCount() int {
	return len(e.state.Answers)
}

func (e *Engine) Complete() bool {
	return len(e.state.Answers) == len(e.questions)
}

// SelectAnswer 记录或覆盖某题的答案。即时反馈模式下答案揭晓后不可再改。
func (e *Engine) SelectAnswer(questionID string, optionIndex int) (Feedback, error) {
	i, ok := e.index[questionID]
	if !ok {
		return Feedback{}, fmt.Errorf("question %s: %w", questionID, util.ErrNotFound)
	}
	q := e.questions[i]
	if optionIndex < 0 || optionIndex >= len(q.Options) {
		return Feedback{}, fmt.Errorf("question %s option %d: %w", questionID, optionIndex, util.ErrInvalidAnswer)
	}

	if !e.opts.ImmediateFeedback {
		e.state.Answers[questionID] = optionIndex
		return Feedback{}, nil
	}

	if _, revealed := e.state.RevealedAt[questionID]; revealed {
		return Feedback{}, util.ErrAnswerLocked
	}
	now := e.opts.Now()
	e.state.Answers[questionID] = optionIndex
	e.state.RevealedAt[questionID] = now
	return Feedback{
		Revealed:      true,
		Correct:       optionIndex == q.CorrectOption,
		CorrectOption: q.CorrectOption,
		RevealUntil:   now.Add(e.opts.FeedbackWindow),
	}, nil
}

// CanAdvance 当前题已作答（即时反馈模式下还需等待展示窗口结束）才能进入下一题
func (e *Engine) CanAdvance(questionIndex int) bool {
	if questionIndex < 0 || questionIndex >= len(e.questions) {
		return false
	}
	id := e.questions[questionIndex].ID
	if _, ok := e.state.Answers[id]; !ok {
		return false
	}
	if e.opts.ImmediateFeedback {
		at, ok := e.state.RevealedAt[id]
		if ok && e.opts.Now().Before(at.Add(e.opts.FeedbackWindow)) {
			return false
		}
	}
	return true
}

func (e *Engine) Next() error {
	if e.state.Current >= len(e.questions)-1 {
		return util.ErrNoNextQuestion
	}
	if !e.CanAdvance(e.state.Current) {
		return fmt.Errorf("question %d: %w", e.state.Current+1, util.ErrIncompleteAnswers)
	}
	e.state.Current++
	return nil
}

// Prev 不要求重新作答
func (e *Engine) Prev() {
	if e.state.Current > 0 {
		e.state.Current--
	}
}

func (e *Engine) Score() int {
	score := 0
	for _, q := range e.questions {
		if v, ok := e.state.Answers[q.ID]; ok && v == q.CorrectOption {
			score++
		}
	}
	return score
}

func (e *Engine) Percentage() int {
	return Percentage(e.Score(), len(e.questions))
}

func (e *Engine) Passed() bool {
	return e.Percentage() >= e.opts.PassThreshold
}

// Result 要求每道题都已作答
func (e *Engine) Result() (Result, error) {
	if !e.Complete() {
		return Result{}, fmt.Errorf("%d of %d answered: %w", len(e.state.Answers), len(e.questions), util.ErrIncompleteAnswers)
	}
	answers := make([]model.AttemptAnswer, 0, len(e.questions))
	for _, q := range e.questions {
		answers = append(answers, model.AttemptAnswer{QuestionID: q.ID, Selected: e.state.Answers[q.ID]})
	}
	pct := e.Percentage()
	return Result{
		Score:      e.Score(),
		Total:      len(e.questions),
		Percentage: pct,
		Passed:     pct >= e.opts.PassThreshold,
		Answers:    answers,
	}, nil
}

func (e *Engine) State() State {
	st := State{
		Answers:    make(map[string]int, len(e.state.Answers)),
		Current:    e.state.Current,
		RevealedAt: make(map[string]time.Time, len(e.state.RevealedAt)),
	}
	for k, v := range e.state.Answers {
		st.Answers[k] = v
	}
	for k, v := range e.state.RevealedAt {
		st.RevealedAt[k] = v
	}
	return st
}

// Percentage 四舍五入（.5 向上）到整数百分比
func Percentage(score, total int) int {
	if total <= 0 {
		return 0
	}
	return (score*200 + total) / (2 * total)
}
