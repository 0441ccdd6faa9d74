package model

// 选择模式：single 单选（恰好一个正确选项），multi 多选（严格集合匹配判分）
const (
	SelectModeSingle = "single"
	SelectModeMulti  = "multi"
)

// swagger:model Quiz
type Quiz struct {
	BaseModel
	LessonID        uint   `gorm:"index;type:bigint unsigned" json:"lessonId"`
	CourseID        uint   `gorm:"index;type:bigint unsigned" json:"courseId"` // denormalized for course aggregation
	Title           string `gorm:"size:255;not null" json:"title"`
	MinPassingScore int    `gorm:"default:60" json:"minPassingScore"` // percent
	Weight          int    `gorm:"default:1" json:"weight"`           // proficiency aggregation weight
	IsPublished     bool   `gorm:"default:false" json:"isPublished"`
}

func (Quiz) TableName() string {
	return "quizzes"
}

// swagger:model QuizQuestion
type QuizQuestion struct {
	BaseModel
	QuizID      uint   `gorm:"index;type:bigint unsigned" json:"quizId"`
	Prompt      string `gorm:"type:text;not null" json:"prompt"`
	MediaURL    string `gorm:"size:255" json:"mediaUrl"`
	SelectMode  string `gorm:"size:10;default:'single'" json:"selectMode"`
	Order       int    `gorm:"default:0" json:"order"`
	Explanation string `gorm:"type:text" json:"explanation"`
}

func (QuizQuestion) TableName() string {
	return "quiz_questions"
}

// swagger:model QuestionOption
type QuestionOption struct {
	BaseModel
	QuestionID uint   `gorm:"index;type:bigint unsigned" json:"questionId"`
	Text       string `gorm:"type:text;not null" json:"text"`
	MediaURL   string `gorm:"size:255" json:"mediaUrl"`
	IsCorrect  bool   `gorm:"default:false" json:"-"`
	Order      int    `gorm:"default:0" json:"order"`
}

func (QuestionOption) TableName() string {
	return "question_options"
}
