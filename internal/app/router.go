package app

import (
	"lingua_backend/docs"
	"lingua_backend/internal/config"
	"lingua_backend/internal/middleware"
	"lingua_backend/internal/model"
	"lingua_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api/v1"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. 公共路由(无需登录)
	a.registerPublicRoutes(router, c)

	// 2. 需要授权的路由
	authGroup := router.Group("/api/v1")
	authGroup.Use(middleware.AuthMiddleware(cfg))
	{
		// 学习者/通用 授权接口
		a.registerLearnerRoutes(authGroup, c)

		// 教师相关接口
		a.registerTeacherRoutes(authGroup, c)
	}
}

func (a *App) registerPublicRoutes(router *gin.Engine, c *controllers) {
	public := router.Group("/api/v1")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)
		public.GET("/languages", c.course.ListLanguages)

		// 证书公开验证：雇主等第三方凭证书编号查询，无需账号
		public.GET("/certificates/:certificateId/verify", c.certificate.Verify)
	}
}

func (a *App) registerLearnerRoutes(rg *gin.RouterGroup, c *controllers) {
	rg.GET("/profile", c.auth.GetProfile)

	// 课程目录
	rg.GET("/courses", c.course.ListCourses)
	rg.GET("/courses/:id", c.course.GetCourse)

	// 测验内容（不含答案）
	rg.GET("/quizzes/:id", c.quiz.GetQuiz)

	// 作答生命周期
	rg.POST("/attempts", c.attempt.StartAttempt)
	rg.GET("/attempts", c.attempt.ListAttempts)
	rg.GET("/attempts/:id", c.attempt.GetAttempt)
	rg.PUT("/attempts/:id/answers", c.attempt.RecordAnswer)
	rg.POST("/attempts/:id/submit", c.attempt.SubmitAttempt)
	rg.POST("/attempts/:id/abandon", c.attempt.AbandonAttempt)

	// 课程进度与水平
	rg.GET("/courses/:id/standing", c.progress.GetStanding)
	rg.POST("/courses/:id/standing/recompute", c.progress.RecomputeStanding)

	// 证书
	rg.GET("/courses/:id/certificate", c.certificate.GetCurrent)
	rg.GET("/courses/:id/certificate/history", c.certificate.ListHistory)
}

func (a *App) registerTeacherRoutes(rg *gin.RouterGroup, c *controllers) {
	teacher := rg.Group("/teacher")
	teacher.Use(middleware.RoleMiddleware(model.Teacher))
	{
		teacher.POST("/courses", c.course.CreateCourse)
		teacher.PUT("/courses/:id", c.course.UpdateCourse)
		teacher.DELETE("/courses/:id", c.course.DeleteCourse)
		teacher.POST("/courses/:id/lessons", c.course.AddLesson)
		teacher.DELETE("/courses/:id/lessons/:lessonId", c.course.DeleteLesson)

		teacher.GET("/quizzes/:id", c.quiz.GetQuizWithAnswers)
		teacher.POST("/quizzes", c.quiz.CreateQuiz)
		teacher.PUT("/quizzes/:id", c.quiz.UpdateQuiz)
		teacher.DELETE("/quizzes/:id", c.quiz.DeleteQuiz)
		teacher.POST("/quizzes/:id/questions", c.quiz.AddQuestion)
		teacher.DELETE("/quizzes/:id/questions/:questionId", c.quiz.DeleteQuestion)
	}
}
