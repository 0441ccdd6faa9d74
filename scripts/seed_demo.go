// 种入一套演示数据：一门西语课程、两节课时与带题目的测验。
//
// 用于本地联调或演示环境的首次初始化，生产环境不要执行。
//
// 用法: go run scripts/seed_demo.go

package main

import (
	"log"

	"lingua_backend/internal/config"
	"lingua_backend/internal/model"
	"lingua_backend/internal/repository"
	"lingua_backend/internal/service"
	"lingua_backend/pkg/database"
	"lingua_backend/pkg/logger"
)

func main() {
	cfg, err := config.LoadConfig("configs")
	if err != nil {
		log.Fatalf("无法读取配置文件: %v", err)
	}

	logger.InitLogger(cfg.Server.Mode)

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		log.Fatalf("数据库连接失败: %v", err)
	}

	courseRepo := repository.NewCourseRepository(db)
	quizRepo := repository.NewQuizRepository(db)
	courses := service.NewCourseService(courseRepo, quizRepo)
	quizzes := service.NewQuizService(quizRepo, courseRepo)

	languages, err := courses.ListLanguages()
	if err != nil || len(languages) == 0 {
		log.Fatalf("语言表为空，先启动一次主程序完成迁移: %v", err)
	}
	var spanish model.Language
	for _, l := range languages {
		if l.Code == "es" {
			spanish = l
			break
		}
	}
	if spanish.ID == 0 {
		log.Fatal("缺少西语语言记录")
	}

	course, err := courses.CreateCourse(1, service.CourseRequest{
		LanguageID:  spanish.ID,
		Title:       "Spanish for Beginners",
		Description: "Greetings, numbers and everyday basics.",
		IsPublished: true,
	})
	if err != nil {
		log.Fatalf("创建课程失败: %v", err)
	}

	lesson, err := courses.AddLesson(course.ID, service.LessonRequest{Title: "Greetings", Order: 1})
	if err != nil {
		log.Fatalf("创建课时失败: %v", err)
	}

	quiz, err := quizzes.CreateQuiz(service.QuizRequest{
		LessonID:        lesson.ID,
		Title:           "Greetings check",
		MinPassingScore: 60,
		Weight:          1,
		IsPublished:     true,
	})
	if err != nil {
		log.Fatalf("创建测验失败: %v", err)
	}

	questions := []service.QuestionRequest{
		{
			Prompt:     `How do you say "hello"?`,
			SelectMode: model.SelectModeSingle,
			Order:      1,
			Options: []service.OptionRequest{
				{Text: "Hola", IsCorrect: true},
				{Text: "Adiós"},
				{Text: "Gracias"},
			},
		},
		{
			Prompt:     "Select all greetings",
			SelectMode: model.SelectModeMulti,
			Order:      2,
			Options: []service.OptionRequest{
				{Text: "Buenos días", IsCorrect: true},
				{Text: "Buenas noches", IsCorrect: true},
				{Text: "Por favor"},
			},
		},
	}
	for _, q := range questions {
		if _, err := quizzes.AddQuestion(quiz.ID, q); err != nil {
			log.Fatalf("创建题目失败: %v", err)
		}
	}

	log.Printf("演示数据就绪: course=%d lesson=%d quiz=%d", course.ID, lesson.ID, quiz.ID)
}
