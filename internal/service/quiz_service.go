package service

import (
	"errors"

	"lingua_backend/internal/model"
	"lingua_backend/internal/repository"
	"lingua_backend/internal/util"

	"gorm.io/gorm"
)

// QuizService 测验内容的创作维护。内容编辑只影响后续开始的挑战：
// 已开始的挑战持有冻结快照，历史判分不被改写。
type QuizService struct {
	QuizRepo   *repository.QuizRepository
	CourseRepo *repository.CourseRepository
}

func NewQuizService(quizRepo *repository.QuizRepository, courseRepo *repository.CourseRepository) *QuizService {
	return &QuizService{QuizRepo: quizRepo, CourseRepo: courseRepo}
}

type QuizRequest struct {
	LessonID        uint   `json:"lessonId" binding:"required"`
	Title           string `json:"title" binding:"required"`
	MinPassingScore int    `json:"minPassingScore"`
	Weight          int    `json:"weight"`
	IsPublished     bool   `json:"isPublished"`
}

type QuestionRequest struct {
	Prompt      string          `json:"prompt" binding:"required"`
	MediaURL    string          `json:"mediaUrl"`
	SelectMode  string          `json:"selectMode"`
	Order       int             `json:"order"`
	Explanation string          `json:"explanation"`
	Options     []OptionRequest `json:"options"`
}

type OptionRequest struct {
	Text      string `json:"text" binding:"required"`
	MediaURL  string `json:"mediaUrl"`
	IsCorrect bool   `json:"isCorrect"`
	Order     int    `json:"order"`
}

func (s *QuizService) CreateQuiz(req QuizRequest) (*model.Quiz, error) {
	lesson, err := s.CourseRepo.FindLessonByID(req.LessonID)
	if err != nil {
		return nil, err
	}

	if req.MinPassingScore < 0 || req.MinPassingScore > 100 {
		return nil, errors.New("minPassingScore must be within [0,100]")
	}
	minScore := req.MinPassingScore
	if minScore == 0 {
		minScore = 60
	}
	weight := req.Weight
	if weight <= 0 {
		weight = 1
	}

	quiz := &model.Quiz{
		LessonID:        lesson.ID,
		CourseID:        lesson.CourseID,
		Title:           req.Title,
		MinPassingScore: minScore,
		Weight:          weight,
		IsPublished:     req.IsPublished,
	}
	if err := s.QuizRepo.Create(quiz); err != nil {
		return nil, err
	}
	return quiz, nil
}

func (s *QuizService) UpdateQuiz(quizID uint, req QuizRequest) (*model.Quiz, error) {
	quiz, err := s.QuizRepo.FindByID(quizID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrQuizNotFound
		}
		return nil, err
	}
	quiz.Title = req.Title
	if req.MinPassingScore > 0 && req.MinPassingScore <= 100 {
		quiz.MinPassingScore = req.MinPassingScore
	}
	if req.Weight > 0 {
		quiz.Weight = req.Weight
	}
	quiz.IsPublished = req.IsPublished
	if err := s.QuizRepo.Update(quiz); err != nil {
		return nil, err
	}
	return quiz, nil
}

func (s *QuizService) DeleteQuiz(quizID uint) error {
	return s.QuizRepo.Delete(quizID)
}

// AddQuestion 单选题必须恰好一个正确选项，多选题至少一个
func (s *QuizService) AddQuestion(quizID uint, req QuestionRequest) (*model.QuizQuestion, error) {
	if _, err := s.QuizRepo.FindByID(quizID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrQuizNotFound
		}
		return nil, err
	}

	mode := req.SelectMode
	if mode == "" {
		mode = model.SelectModeSingle
	}
	if mode != model.SelectModeSingle && mode != model.SelectModeMulti {
		return nil, errors.New("selectMode must be 'single' or 'multi'")
	}

	correctCount := 0
	for _, o := range req.Options {
		if o.IsCorrect {
			correctCount++
		}
	}
	if mode == model.SelectModeSingle && correctCount != 1 {
		return nil, errors.New("single-select question must have exactly one correct option")
	}
	if mode == model.SelectModeMulti && correctCount == 0 {
		return nil, errors.New("multi-select question must have at least one correct option")
	}

	question := &model.QuizQuestion{
		QuizID:      quizID,
		Prompt:      req.Prompt,
		MediaURL:    req.MediaURL,
		SelectMode:  mode,
		Order:       req.Order,
		Explanation: req.Explanation,
	}
	if err := s.QuizRepo.CreateQuestion(question); err != nil {
		return nil, err
	}

	for idx, o := range req.Options {
		order := o.Order
		if order == 0 {
			order = idx + 1
		}
		option := &model.QuestionOption{
			QuestionID: question.ID,
			Text:       o.Text,
			MediaURL:   o.MediaURL,
			IsCorrect:  o.IsCorrect,
			Order:      order,
		}
		if err := s.QuizRepo.CreateOption(option); err != nil {
			return nil, err
		}
	}
	return question, nil
}

func (s *QuizService) DeleteQuestion(quizID, questionID uint) error {
	q, err := s.QuizRepo.FindQuestionByID(questionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrUnknownQuestion
		}
		return err
	}
	if q.QuizID != quizID {
		return util.ErrUnknownQuestion
	}
	return s.QuizRepo.DeleteQuestion(questionID)
}

// QuizView 学习者视角的测验详情：选项不携带正确性标记
type QuizView struct {
	ID              uint           `json:"id"`
	Title           string         `json:"title"`
	MinPassingScore int            `json:"minPassingScore"`
	Questions       []QuestionView `json:"questions"`
}

type QuestionView struct {
	ID         uint         `json:"id"`
	Prompt     string       `json:"prompt"`
	MediaURL   string       `json:"mediaUrl"`
	SelectMode string       `json:"selectMode"`
	Options    []OptionView `json:"options"`
}

type OptionView struct {
	ID       uint   `json:"id"`
	Text     string `json:"text"`
	MediaURL string `json:"mediaUrl"`
}

// GetQuizForLearner 学习者获取测验详情（隐藏答案）
func (s *QuizService) GetQuizForLearner(quizID uint) (*QuizView, error) {
	quiz, err := s.QuizRepo.FindByID(quizID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrQuizNotFound
		}
		return nil, err
	}
	if !quiz.IsPublished {
		return nil, util.ErrQuizNotFound
	}

	questions, err := s.QuizRepo.ListQuestions(quizID)
	if err != nil {
		return nil, err
	}

	view := &QuizView{
		ID:              quiz.ID,
		Title:           quiz.Title,
		MinPassingScore: quiz.MinPassingScore,
	}
	for _, q := range questions {
		options, err := s.QuizRepo.ListOptions(q.ID)
		if err != nil {
			return nil, err
		}
		qv := QuestionView{
			ID:         q.ID,
			Prompt:     q.Prompt,
			MediaURL:   q.MediaURL,
			SelectMode: q.SelectMode,
		}
		for _, o := range options {
			qv.Options = append(qv.Options, OptionView{ID: o.ID, Text: o.Text, MediaURL: o.MediaURL})
		}
		view.Questions = append(view.Questions, qv)
	}
	return view, nil
}

// GetQuizForTeacher 创作视角：含正确性标记
func (s *QuizService) GetQuizForTeacher(quizID uint) (*model.QuizSnapshot, error) {
	snap, err := s.QuizRepo.LoadSnapshot(quizID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrQuizNotFound
		}
		return nil, err
	}
	return snap, nil
}
