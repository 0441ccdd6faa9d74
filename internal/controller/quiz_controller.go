package controller

import (
	"errors"

	"lingua_backend/internal/service"
	"lingua_backend/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type QuizController struct {
	QuizService *service.QuizService
}

func NewQuizController(quizService *service.QuizService) *QuizController {
	return &QuizController{QuizService: quizService}
}

// GetQuiz 获取测验
// @Summary 学习者获取测验内容，不含答案
// @Tags 测验
// @Produce json
// @Param id path int true "测验ID"
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/v1/quizzes/{id} [get]
func (ctrl *QuizController) GetQuiz(c *gin.Context) {
	quizID := util.MustParseUint(c.Param("id"))

	view, err := ctrl.QuizService.GetQuizForLearner(quizID)
	if err != nil {
		util.DomainError(c, err)
		return
	}
	util.Success(c, view)
}

// GetQuizWithAnswers 教师获取测验
// @Summary 教师获取测验完整定义，含正确答案
// @Tags 测验管理
// @Produce json
// @Param id path int true "测验ID"
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/v1/teacher/quizzes/{id} [get]
func (ctrl *QuizController) GetQuizWithAnswers(c *gin.Context) {
	quizID := util.MustParseUint(c.Param("id"))

	snapshot, err := ctrl.QuizService.GetQuizForTeacher(quizID)
	if err != nil {
		util.DomainError(c, err)
		return
	}
	util.Success(c, snapshot)
}

// CreateQuiz 创建测验
// @Summary 创建测验
// @Tags 测验管理
// @Accept json
// @Produce json
// @Param request body service.QuizRequest true "测验信息"
// @Security BearerAuth
// @Success 201 {object} util.Response
// @Failure 400 {object} util.Response
// @Router /api/v1/teacher/quizzes [post]
func (ctrl *QuizController) CreateQuiz(c *gin.Context) {
	var req service.QuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.BadRequest(c, err.Error())
		return
	}

	quiz, err := ctrl.QuizService.CreateQuiz(req)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.NotFound(c)
			return
		}
		util.BadRequest(c, err.Error())
		return
	}
	util.Created(c, quiz)
}

// UpdateQuiz 更新测验
// @Summary 更新测验，不影响已评分的历史记录
// @Tags 测验管理
// @Accept json
// @Produce json
// @Param id path int true "测验ID"
// @Param request body service.QuizRequest true "测验信息"
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/v1/teacher/quizzes/{id} [put]
func (ctrl *QuizController) UpdateQuiz(c *gin.Context) {
	quizID := util.MustParseUint(c.Param("id"))

	var req service.QuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.BadRequest(c, err.Error())
		return
	}

	quiz, err := ctrl.QuizService.UpdateQuiz(quizID, req)
	if err != nil {
		util.DomainError(c, err)
		return
	}
	util.Success(c, quiz)
}

// DeleteQuiz 删除测验
// @Summary 删除测验
// @Tags 测验管理
// @Param id path int true "测验ID"
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/v1/teacher/quizzes/{id} [delete]
func (ctrl *QuizController) DeleteQuiz(c *gin.Context) {
	quizID := util.MustParseUint(c.Param("id"))
	if err := ctrl.QuizService.DeleteQuiz(quizID); err != nil {
		util.DomainError(c, err)
		return
	}
	util.Success(c, nil)
}

// AddQuestion 添加题目
// @Summary 向测验添加题目
// @Tags 测验管理
// @Accept json
// @Produce json
// @Param id path int true "测验ID"
// @Param request body service.QuestionRequest true "题目信息"
// @Security BearerAuth
// @Success 201 {object} util.Response
// @Failure 400 {object} util.Response
// @Router /api/v1/teacher/quizzes/{id}/questions [post]
func (ctrl *QuizController) AddQuestion(c *gin.Context) {
	quizID := util.MustParseUint(c.Param("id"))

	var req service.QuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.BadRequest(c, err.Error())
		return
	}

	question, err := ctrl.QuizService.AddQuestion(quizID, req)
	if err != nil {
		if errors.Is(err, util.ErrQuizNotFound) {
			util.NotFound(c)
			return
		}
		util.BadRequest(c, err.Error())
		return
	}
	util.Created(c, question)
}

// DeleteQuestion 删除题目
// @Summary 删除题目
// @Tags 测验管理
// @Param id path int true "测验ID"
// @Param questionId path int true "题目ID"
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/v1/teacher/quizzes/{id}/questions/{questionId} [delete]
func (ctrl *QuizController) DeleteQuestion(c *gin.Context) {
	quizID := util.MustParseUint(c.Param("id"))
	questionID := util.MustParseUint(c.Param("questionId"))

	if err := ctrl.QuizService.DeleteQuestion(quizID, questionID); err != nil {
		util.DomainError(c, err)
		return
	}
	util.Success(c, nil)
}
