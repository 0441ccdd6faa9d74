package model

type ProficiencyLevel string

const (
	LevelBeginner     ProficiencyLevel = "beginner"
	LevelIntermediate ProficiencyLevel = "intermediate"
	LevelAdvanced     ProficiencyLevel = "advanced"
)

// swagger:model CourseStanding
type CourseStanding struct {
	BaseModel
	UserID   uint `gorm:"uniqueIndex:idx_user_course;type:bigint unsigned" json:"userId"`
	CourseID uint `gorm:"uniqueIndex:idx_user_course;type:bigint unsigned" json:"courseId"`

	// QuizScores 每个必修测验的最佳及格分（JSON: quizId -> percent）
	QuizScores        string           `gorm:"type:json" json:"quizScores"`
	CompletionPercent int              `json:"completionPercent"`
	WeightedAverage   int              `json:"weightedAverage"`
	Level             ProficiencyLevel `gorm:"size:20;default:'beginner'" json:"level"`
	Completed         bool             `gorm:"default:false" json:"completed"`
}

func (CourseStanding) TableName() string {
	return "course_standings"
}
