package model

import "time"

type AttemptStatus string

const (
	AttemptStarted    AttemptStatus = "started"
	AttemptInProgress AttemptStatus = "in_progress"
	AttemptSubmitted  AttemptStatus = "submitted"
	AttemptScored     AttemptStatus = "scored"
	AttemptAbandoned  AttemptStatus = "abandoned"
)

// IsTerminal 终态：不再接受任何写入
func (s AttemptStatus) IsTerminal() bool {
	return s == AttemptScored || s == AttemptAbandoned
}

// IsOpen 可作答状态
func (s AttemptStatus) IsOpen() bool {
	return s == AttemptStarted || s == AttemptInProgress
}

// swagger:model QuizAttempt
type QuizAttempt struct {
	BaseModel
	UserID   uint          `gorm:"index;type:bigint unsigned" json:"userId"`
	QuizID   uint          `gorm:"index;type:bigint unsigned" json:"quizId"`
	CourseID uint          `gorm:"index;type:bigint unsigned" json:"courseId"`
	Status   AttemptStatus `gorm:"size:20;default:'started'" json:"status"`

	// QuizSnapshot 开始时冻结的题目快照（含正确性标记），之后的内容编辑不影响判分
	QuizSnapshot string `gorm:"type:json" json:"-"`

	Score       int        `json:"score"` // percent, valid once scored
	Passed      bool       `gorm:"default:false" json:"passed"`
	StartedAt   time.Time  `json:"startedAt"`
	SubmittedAt *time.Time `json:"submittedAt,omitempty"`
	ScoredAt    *time.Time `json:"scoredAt,omitempty"`

	// ActiveKey "userID:quizID" while the attempt is open, NULL once terminal.
	// The unique index is the storage-level guarantee of one active attempt
	// per (learner, quiz) across processes.
	ActiveKey *string `gorm:"size:64;uniqueIndex" json:"-"`
}

func (QuizAttempt) TableName() string {
	return "quiz_attempts"
}

// swagger:model AttemptAnswer
type AttemptAnswer struct {
	BaseModel
	AttemptID  uint `gorm:"uniqueIndex:idx_attempt_question;type:bigint unsigned" json:"attemptId"`
	QuestionID uint `gorm:"uniqueIndex:idx_attempt_question;type:bigint unsigned" json:"questionId"`

	SelectedOptions string    `gorm:"type:json" json:"selectedOptions"` // JSON array of option ids
	IsCorrect       bool      `gorm:"default:false" json:"isCorrect"`   // computed at submit, frozen
	AnsweredAt      time.Time `json:"answeredAt"`
}

func (AttemptAnswer) TableName() string {
	return "attempt_answers"
}
