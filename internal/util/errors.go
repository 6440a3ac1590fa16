package util

import (
	"errors"
	"net/http"
)

var (
	ErrNotFound          = errors.New("resource not found")
	ErrUserNotFound      = errors.New("user not found")
	ErrEmailRegistered   = errors.New("email already registered")
	ErrInvalidCredential = errors.New("invalid credentials")
	ErrPermissionDenied  = errors.New("permission denied")
	ErrInvalidRole       = errors.New("invalid role")
	ErrInvalidProfile    = errors.New("invalid profile field")

	// 情景决策树
	ErrNoDecisionTree = errors.New("no decision tree configured for this scenario")
	ErrMalformedTree  = errors.New("malformed decision tree")
	ErrInvalidChoice  = errors.New("choice is not a child of the current node")

	// 测评
	ErrNoQuestions       = errors.New("no questions configured for this assessment")
	ErrUnknownModule     = errors.New("referenced training module does not exist")
	ErrInvalidQuestion   = errors.New("invalid question")
	ErrInvalidAnswer     = errors.New("option index out of range")
	ErrIncompleteAnswers = errors.New("all questions must be answered before submitting")
	ErrAnswerLocked      = errors.New("answer already revealed and cannot be changed")
	ErrAlreadySubmitted  = errors.New("assessment already submitted")
	ErrNoNextQuestion    = errors.New("already at the last question")

	ErrSessionNotFound = errors.New("session not found or expired")
	ErrNoSections      = errors.New("module has no content sections")
	ErrInvalidSection  = errors.New("section index out of range")
)

// errorStatus 按顺序匹配，错误链同时包含多个领域错误时取靠前的一项
var errorStatus = []struct {
	err    error
	status int
}{
	{ErrNotFound, http.StatusNotFound},
	{ErrUserNotFound, http.StatusNotFound},
	{ErrSessionNotFound, http.StatusNotFound},
	{ErrNoDecisionTree, http.StatusNotFound},
	{ErrNoQuestions, http.StatusNotFound},
	{ErrEmailRegistered, http.StatusConflict},
	{ErrAlreadySubmitted, http.StatusConflict},
	{ErrInvalidCredential, http.StatusUnauthorized},
	{ErrPermissionDenied, http.StatusForbidden},
	{ErrInvalidRole, http.StatusBadRequest},
	{ErrInvalidProfile, http.StatusBadRequest},
	{ErrInvalidQuestion, http.StatusBadRequest},
	{ErrUnknownModule, http.StatusBadRequest},
	{ErrInvalidAnswer, http.StatusBadRequest},
	{ErrNoSections, http.StatusBadRequest},
	{ErrInvalidSection, http.StatusBadRequest},
	{ErrMalformedTree, http.StatusUnprocessableEntity},
	{ErrInvalidChoice, http.StatusUnprocessableEntity},
	{ErrIncompleteAnswers, http.StatusUnprocessableEntity},
	{ErrAnswerLocked, http.StatusUnprocessableEntity},
	{ErrNoNextQuestion, http.StatusUnprocessableEntity},
}

// StatusFor 按 errorStatus 的顺序返回第一个匹配的领域错误对应的状态码
func StatusFor(err error) (int, bool) {
	for _, e := range errorStatus {
		if errors.Is(err, e.err) {
			return e.status, true
		}
	}
	return 0, false
}
