package service

import (
	"fmt"
	"os"
	"strings"
	"testing"

	"lingua_backend/internal/config"
	"lingua_backend/internal/model"
	"lingua_backend/internal/repository"
	"lingua_backend/pkg/database"
	"lingua_backend/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func TestMain(m *testing.M) {
	logger.Log = zap.NewNop()
	os.Exit(m.Run())
}

// newTestDB 每个测试独立的内存库，结构与生产迁移一致
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

type testEnv struct {
	db *gorm.DB

	userRepo     *repository.UserRepository
	courseRepo   *repository.CourseRepository
	quizRepo     *repository.QuizRepository
	attemptRepo  *repository.AttemptRepository
	standingRepo *repository.StandingRepository
	certRepo     *repository.CertificateRepository

	attempts     *AttemptService
	progress     *ProgressService
	certificates *CertificateService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := newTestDB(t)
	env := &testEnv{
		db:           db,
		userRepo:     repository.NewUserRepository(db),
		courseRepo:   repository.NewCourseRepository(db),
		quizRepo:     repository.NewQuizRepository(db),
		attemptRepo:  repository.NewAttemptRepository(db),
		standingRepo: repository.NewStandingRepository(db),
		certRepo:     repository.NewCertificateRepository(db),
	}

	cfg := &config.Config{
		Assessment: config.AssessmentConfig{
			AdvancedThreshold:     85,
			IntermediateThreshold: 60,
		},
	}

	env.certificates = NewCertificateService(
		env.certRepo, env.userRepo, env.courseRepo, env.standingRepo,
		nil, nil, cfg, db,
	)
	env.progress = NewProgressService(
		env.standingRepo, env.attemptRepo, env.courseRepo,
		env.certificates, cfg.Assessment,
	)
	env.attempts = NewAttemptService(env.attemptRepo, env.quizRepo, env.progress, db)
	return env
}

func (e *testEnv) seedUser(t *testing.T, name string) *model.User {
	t.Helper()
	user := &model.User{Name: name, Email: name + "@example.com", Password: "x", Role: model.Learner}
	if err := e.db.Create(user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

func (e *testEnv) seedCourse(t *testing.T) (*model.Course, *model.Lesson) {
	t.Helper()
	lang := &model.Language{Code: "es", Name: "Spanish", NativeName: "Español", Enabled: true}
	if err := e.db.Create(lang).Error; err != nil {
		t.Fatalf("seed language: %v", err)
	}
	course := &model.Course{LanguageID: lang.ID, Title: "Spanish A1", IsPublished: true}
	if err := e.db.Create(course).Error; err != nil {
		t.Fatalf("seed course: %v", err)
	}
	lesson := &model.Lesson{CourseID: course.ID, Title: "Greetings"}
	if err := e.db.Create(lesson).Error; err != nil {
		t.Fatalf("seed lesson: %v", err)
	}
	return course, lesson
}

func (e *testEnv) seedQuiz(t *testing.T, courseID, lessonID uint, minScore, weight int, published bool) *model.Quiz {
	t.Helper()
	quiz := &model.Quiz{
		LessonID:        lessonID,
		CourseID:        courseID,
		Title:           "Vocabulary check",
		MinPassingScore: minScore,
		Weight:          weight,
		IsPublished:     published,
	}
	if err := e.db.Create(quiz).Error; err != nil {
		t.Fatalf("seed quiz: %v", err)
	}
	return quiz
}

// seedQuestion 按 correct 掩码生成选项，返回题目ID与各选项ID
func (e *testEnv) seedQuestion(t *testing.T, quizID uint, mode string, correct []bool) (uint, []uint) {
	t.Helper()
	q := &model.QuizQuestion{QuizID: quizID, Prompt: "pick", SelectMode: mode}
	if err := e.db.Create(q).Error; err != nil {
		t.Fatalf("seed question: %v", err)
	}
	optionIDs := make([]uint, 0, len(correct))
	for i, c := range correct {
		o := &model.QuestionOption{QuestionID: q.ID, Text: fmt.Sprintf("option %d", i), IsCorrect: c, Order: i}
		if err := e.db.Create(o).Error; err != nil {
			t.Fatalf("seed option: %v", err)
		}
		optionIDs = append(optionIDs, o.ID)
	}
	return q.ID, optionIDs
}
