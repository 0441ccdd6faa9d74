package util

import (
	"errors"
	"fmt"
)

var (
	ErrEmailRegistered       = errors.New("该邮箱已被注册")
	ErrInvalidCredentials    = errors.New("invalid credentials")
	ErrPermissionDenied      = errors.New("permission denied")
	ErrAttemptAlreadyActive  = errors.New("an attempt for this quiz is already active")
	ErrInvalidAttemptState   = errors.New("invalid attempt state")
	ErrIncompleteAttempt     = errors.New("attempt has unanswered questions")
	ErrUnknownQuestion       = errors.New("question does not belong to this quiz")
	ErrInvalidQuizDefinition = errors.New("quiz has no questions")
	ErrAttemptNotFound       = errors.New("attempt not found")
	ErrQuizNotFound          = errors.New("quiz not found")
	ErrCourseNotFound        = errors.New("course not found")
	ErrCertificateNotFound   = errors.New("certificate not found")
	ErrStandingNotFound      = errors.New("no standing recorded for this course")
	ErrConcurrentConflict    = errors.New("lost a concurrent update race, retry once")
)

// StateError 带上下文的状态错误：客户端需要 attempt id 与期望/实际状态
// 才能渲染准确提示。errors.Is 匹配 ErrInvalidAttemptState。
type StateError struct {
	AttemptID uint
	Expected  string
	Actual    string
}

func (e *StateError) Error() string {
	return fmt.Sprintf("attempt %d: expected state %s, got %s", e.AttemptID, e.Expected, e.Actual)
}

func (e *StateError) Unwrap() error {
	return ErrInvalidAttemptState
}

func NewStateError(attemptID uint, expected, actual string) error {
	return &StateError{AttemptID: attemptID, Expected: expected, Actual: actual}
}
