package model

// QuizSnapshot 为一次操作物化的测验定义视图：引用图在加载时解析完毕，
// 评测逻辑不再触达持久层。
type QuizSnapshot struct {
	QuizID          uint               `json:"quizId"`
	CourseID        uint               `json:"courseId"`
	Title           string             `json:"title"`
	MinPassingScore int                `json:"minPassingScore"`
	Questions       []QuestionSnapshot `json:"questions"`
}

type QuestionSnapshot struct {
	ID         uint             `json:"id"`
	Prompt     string           `json:"prompt"`
	SelectMode string           `json:"selectMode"`
	Order      int              `json:"order"`
	Options    []OptionSnapshot `json:"options"`
}

type OptionSnapshot struct {
	ID        uint   `json:"id"`
	Text      string `json:"text"`
	IsCorrect bool   `json:"isCorrect"`
}

// QuestionByID 按题目ID查找快照中的题目
func (s *QuizSnapshot) QuestionByID(id uint) (*QuestionSnapshot, bool) {
	for i := range s.Questions {
		if s.Questions[i].ID == id {
			return &s.Questions[i], true
		}
	}
	return nil, false
}
