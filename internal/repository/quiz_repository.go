package repository

import (
	"lingua_backend/internal/model"

	"gorm.io/gorm"
)

type QuizRepository struct {
	DB *gorm.DB
}

func NewQuizRepository(db *gorm.DB) *QuizRepository {
	return &QuizRepository{DB: db}
}

func (r *QuizRepository) Create(quiz *model.Quiz) error {
	return r.DB.Create(quiz).Error
}

func (r *QuizRepository) Update(quiz *model.Quiz) error {
	return r.DB.Save(quiz).Error
}

func (r *QuizRepository) Delete(id uint) error {
	return r.DB.Delete(&model.Quiz{}, id).Error
}

func (r *QuizRepository) FindByID(id uint) (*model.Quiz, error) {
	var q model.Quiz
	if err := r.DB.First(&q, id).Error; err != nil {
		return nil, err
	}
	return &q, nil
}

func (r *QuizRepository) ListByLesson(lessonID uint) ([]model.Quiz, error) {
	var quizzes []model.Quiz
	err := r.DB.Where("lesson_id = ?", lessonID).Order("id").Find(&quizzes).Error
	return quizzes, err
}

func (r *QuizRepository) CreateQuestion(q *model.QuizQuestion) error {
	return r.DB.Create(q).Error
}

func (r *QuizRepository) UpdateQuestion(q *model.QuizQuestion) error {
	return r.DB.Save(q).Error
}

func (r *QuizRepository) DeleteQuestion(id uint) error {
	return r.DB.Delete(&model.QuizQuestion{}, id).Error
}

func (r *QuizRepository) FindQuestionByID(id uint) (*model.QuizQuestion, error) {
	var q model.QuizQuestion
	if err := r.DB.First(&q, id).Error; err != nil {
		return nil, err
	}
	return &q, nil
}

func (r *QuizRepository) ListQuestions(quizID uint) ([]model.QuizQuestion, error) {
	var questions []model.QuizQuestion
	err := r.DB.Where("quiz_id = ?", quizID).Order("`order`").Find(&questions).Error
	return questions, err
}

func (r *QuizRepository) CreateOption(o *model.QuestionOption) error {
	return r.DB.Create(o).Error
}

func (r *QuizRepository) UpdateOption(o *model.QuestionOption) error {
	return r.DB.Save(o).Error
}

func (r *QuizRepository) DeleteOption(id uint) error {
	return r.DB.Delete(&model.QuestionOption{}, id).Error
}

func (r *QuizRepository) FindOptionByID(id uint) (*model.QuestionOption, error) {
	var o model.QuestionOption
	if err := r.DB.First(&o, id).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *QuizRepository) ListOptions(questionID uint) ([]model.QuestionOption, error) {
	var options []model.QuestionOption
	err := r.DB.Where("question_id = ?", questionID).Order("`order`").Find(&options).Error
	return options, err
}

// LoadSnapshot 一次性解析 quiz -> questions -> options 引用图，
// 返回物化的测验定义快照。
func (r *QuizRepository) LoadSnapshot(quizID uint) (*model.QuizSnapshot, error) {
	quiz, err := r.FindByID(quizID)
	if err != nil {
		return nil, err
	}

	questions, err := r.ListQuestions(quizID)
	if err != nil {
		return nil, err
	}

	snap := &model.QuizSnapshot{
		QuizID:          quiz.ID,
		CourseID:        quiz.CourseID,
		Title:           quiz.Title,
		MinPassingScore: quiz.MinPassingScore,
	}
	for _, q := range questions {
		options, err := r.ListOptions(q.ID)
		if err != nil {
			return nil, err
		}
		qs := model.QuestionSnapshot{
			ID:         q.ID,
			Prompt:     q.Prompt,
			SelectMode: q.SelectMode,
			Order:      q.Order,
		}
		for _, o := range options {
			qs.Options = append(qs.Options, model.OptionSnapshot{
				ID:        o.ID,
				Text:      o.Text,
				IsCorrect: o.IsCorrect,
			})
		}
		snap.Questions = append(snap.Questions, qs)
	}
	return snap, nil
}
