package service

import (
	"errors"
	"time"

	"lingua_backend/internal/model"
	"lingua_backend/internal/repository"
	"lingua_backend/internal/util"

	"gorm.io/gorm"
)

type CourseService struct {
	CourseRepo *repository.CourseRepository
	QuizRepo   *repository.QuizRepository
}

func NewCourseService(courseRepo *repository.CourseRepository, quizRepo *repository.QuizRepository) *CourseService {
	return &CourseService{CourseRepo: courseRepo, QuizRepo: quizRepo}
}

type CourseRequest struct {
	LanguageID  uint   `json:"languageId" binding:"required"`
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	CoverURL    string `json:"coverUrl"`
	IsPublished bool   `json:"isPublished"`
}

type LessonRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	Order       int    `json:"order"`
}

func (s *CourseService) ListLanguages() ([]model.Language, error) {
	return s.CourseRepo.ListLanguages()
}

func (s *CourseService) CreateCourse(creatorID uint, req CourseRequest) (*model.Course, error) {
	if _, err := s.CourseRepo.FindLanguageByID(req.LanguageID); err != nil {
		return nil, errors.New("unknown language")
	}

	course := &model.Course{
		LanguageID:  req.LanguageID,
		CreatorID:   creatorID,
		Title:       req.Title,
		Description: req.Description,
		CoverURL:    req.CoverURL,
		IsPublished: req.IsPublished,
	}
	if course.IsPublished {
		now := time.Now()
		course.PublishedAt = &now
	}
	if err := s.CourseRepo.Create(course); err != nil {
		return nil, err
	}
	return course, nil
}

func (s *CourseService) UpdateCourse(courseID uint, req CourseRequest) (*model.Course, error) {
	course, err := s.CourseRepo.FindByID(courseID)
	if err != nil {
		return nil, err
	}
	course.Title = req.Title
	course.Description = req.Description
	course.CoverURL = req.CoverURL
	if req.IsPublished && !course.IsPublished {
		now := time.Now()
		course.PublishedAt = &now
	}
	course.IsPublished = req.IsPublished
	if err := s.CourseRepo.Update(course); err != nil {
		return nil, err
	}
	return course, nil
}

func (s *CourseService) DeleteCourse(courseID uint) error {
	return s.CourseRepo.Delete(courseID)
}

func (s *CourseService) ListCourses(page, limit int, publishedOnly bool) ([]model.Course, int64, error) {
	return s.CourseRepo.List(page, limit, publishedOnly)
}

// CourseDetail 课程详情：课时列表与各课时的测验
type CourseDetail struct {
	Course  model.Course   `json:"course"`
	Lessons []LessonDetail `json:"lessons"`
}

type LessonDetail struct {
	Lesson  model.Lesson `json:"lesson"`
	Quizzes []model.Quiz `json:"quizzes"`
}

func (s *CourseService) GetCourseDetail(courseID uint, publishedOnly bool) (*CourseDetail, error) {
	course, err := s.CourseRepo.FindByID(courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrCourseNotFound
		}
		return nil, err
	}
	if publishedOnly && !course.IsPublished {
		return nil, util.ErrCourseNotFound
	}

	lessons, err := s.CourseRepo.ListLessons(courseID)
	if err != nil {
		return nil, err
	}

	detail := &CourseDetail{Course: *course}
	for _, lesson := range lessons {
		quizzes, err := s.QuizRepo.ListByLesson(lesson.ID)
		if err != nil {
			return nil, err
		}
		if publishedOnly {
			filtered := quizzes[:0]
			for _, q := range quizzes {
				if q.IsPublished {
					filtered = append(filtered, q)
				}
			}
			quizzes = filtered
		}
		detail.Lessons = append(detail.Lessons, LessonDetail{Lesson: lesson, Quizzes: quizzes})
	}
	return detail, nil
}

func (s *CourseService) AddLesson(courseID uint, req LessonRequest) (*model.Lesson, error) {
	if _, err := s.CourseRepo.FindByID(courseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrCourseNotFound
		}
		return nil, err
	}

	lesson := &model.Lesson{
		CourseID:    courseID,
		Title:       req.Title,
		Description: req.Description,
		Order:       req.Order,
	}
	if err := s.CourseRepo.CreateLesson(lesson); err != nil {
		return nil, err
	}
	return lesson, nil
}

func (s *CourseService) DeleteLesson(courseID, lessonID uint) error {
	lesson, err := s.CourseRepo.FindLessonByID(lessonID)
	if err != nil {
		return err
	}
	if lesson.CourseID != courseID {
		return util.ErrCourseNotFound
	}
	return s.CourseRepo.DeleteLesson(lessonID)
}
