package controller

import (
	"time"

	"lingua_backend/internal/model"
	"lingua_backend/internal/service"
	"lingua_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AttemptController struct {
	AttemptService *service.AttemptService
}

func NewAttemptController(attemptService *service.AttemptService) *AttemptController {
	return &AttemptController{AttemptService: attemptService}
}

type startAttemptRequest struct {
	QuizID uint `json:"quizId" binding:"required"`
}

type recordAnswerRequest struct {
	QuestionID      uint   `json:"questionId" binding:"required"`
	SelectedOptions []uint `json:"selectedOptions"`
}

// attemptView 作答记录响应，评分前不暴露得分字段
type attemptView struct {
	ID          uint                `json:"id"`
	QuizID      uint                `json:"quizId"`
	CourseID    uint                `json:"courseId"`
	Status      model.AttemptStatus `json:"status"`
	Score       *int                `json:"score,omitempty"`
	Passed      *bool               `json:"passed,omitempty"`
	StartedAt   string              `json:"startedAt"`
	SubmittedAt *string             `json:"submittedAt,omitempty"`
	ScoredAt    *string             `json:"scoredAt,omitempty"`
}

func newAttemptView(a *model.QuizAttempt) attemptView {
	v := attemptView{
		ID:        a.ID,
		QuizID:    a.QuizID,
		CourseID:  a.CourseID,
		Status:    a.Status,
		StartedAt: a.StartedAt.Format(time.RFC3339),
	}
	if a.Status == model.AttemptScored {
		score := a.Score
		passed := a.Passed
		v.Score = &score
		v.Passed = &passed
	}
	if a.SubmittedAt != nil {
		t := a.SubmittedAt.Format(time.RFC3339)
		v.SubmittedAt = &t
	}
	if a.ScoredAt != nil {
		t := a.ScoredAt.Format(time.RFC3339)
		v.ScoredAt = &t
	}
	return v
}

// StartAttempt 开始作答
// @Summary 开始一次测验作答
// @Tags 作答
// @Accept json
// @Produce json
// @Param request body startAttemptRequest true "测验ID"
// @Security BearerAuth
// @Success 201 {object} util.Response
// @Failure 404 {object} util.Response
// @Failure 409 {object} util.Response
// @Failure 422 {object} util.Response
// @Router /api/v1/attempts [post]
func (ctrl *AttemptController) StartAttempt(c *gin.Context) {
	var req startAttemptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.BadRequest(c, err.Error())
		return
	}

	claims := util.GetUserFromContext(c)
	if claims == nil {
		util.Unauthorized(c)
		return
	}

	attempt, err := ctrl.AttemptService.StartAttempt(claims.UserID, req.QuizID)
	if err != nil {
		util.DomainError(c, err)
		return
	}
	util.Created(c, newAttemptView(attempt))
}

// RecordAnswer 记录答案
// @Summary 记录或替换某题的答案
// @Tags 作答
// @Accept json
// @Produce json
// @Param id path int true "作答ID"
// @Param request body recordAnswerRequest true "题目与所选选项"
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response
// @Failure 409 {object} util.Response
// @Failure 422 {object} util.Response
// @Router /api/v1/attempts/{id}/answers [put]
func (ctrl *AttemptController) RecordAnswer(c *gin.Context) {
	attemptID := util.MustParseUint(c.Param("id"))

	var req recordAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.BadRequest(c, err.Error())
		return
	}

	claims := util.GetUserFromContext(c)
	if claims == nil {
		util.Unauthorized(c)
		return
	}

	attempt, err := ctrl.AttemptService.RecordAnswer(claims.UserID, attemptID, req.QuestionID, req.SelectedOptions)
	if err != nil {
		util.DomainError(c, err)
		return
	}
	util.Success(c, newAttemptView(attempt))
}

// SubmitAttempt 提交作答
// @Summary 提交作答并评分
// @Tags 作答
// @Produce json
// @Param id path int true "作答ID"
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response
// @Failure 409 {object} util.Response
// @Failure 422 {object} util.Response
// @Router /api/v1/attempts/{id}/submit [post]
func (ctrl *AttemptController) SubmitAttempt(c *gin.Context) {
	attemptID := util.MustParseUint(c.Param("id"))

	claims := util.GetUserFromContext(c)
	if claims == nil {
		util.Unauthorized(c)
		return
	}

	attempt, result, err := ctrl.AttemptService.Submit(claims.UserID, attemptID)
	if err != nil {
		util.DomainError(c, err)
		return
	}
	util.Success(c, gin.H{
		"attempt": newAttemptView(attempt),
		"result":  result,
	})
}

// AbandonAttempt 放弃作答
// @Summary 放弃未提交的作答
// @Tags 作答
// @Produce json
// @Param id path int true "作答ID"
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response
// @Failure 409 {object} util.Response
// @Router /api/v1/attempts/{id}/abandon [post]
func (ctrl *AttemptController) AbandonAttempt(c *gin.Context) {
	attemptID := util.MustParseUint(c.Param("id"))

	claims := util.GetUserFromContext(c)
	if claims == nil {
		util.Unauthorized(c)
		return
	}

	attempt, err := ctrl.AttemptService.Abandon(claims.UserID, attemptID)
	if err != nil {
		util.DomainError(c, err)
		return
	}
	util.Success(c, newAttemptView(attempt))
}

// GetAttempt 查询作答
// @Summary 查询作答详情，含已记录的答案
// @Tags 作答
// @Produce json
// @Param id path int true "作答ID"
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/v1/attempts/{id} [get]
func (ctrl *AttemptController) GetAttempt(c *gin.Context) {
	attemptID := util.MustParseUint(c.Param("id"))

	claims := util.GetUserFromContext(c)
	if claims == nil {
		util.Unauthorized(c)
		return
	}

	attempt, err := ctrl.AttemptService.GetAttempt(claims.UserID, attemptID)
	if err != nil {
		util.DomainError(c, err)
		return
	}
	answers, err := ctrl.AttemptService.GetAnswers(claims.UserID, attemptID)
	if err != nil {
		util.DomainError(c, err)
		return
	}
	util.Success(c, gin.H{
		"attempt": newAttemptView(attempt),
		"answers": answers,
	})
}

// ListAttempts 作答历史
// @Summary 查询当前用户在某测验下的作答历史
// @Tags 作答
// @Produce json
// @Param quizId query int true "测验ID"
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/v1/attempts [get]
func (ctrl *AttemptController) ListAttempts(c *gin.Context) {
	quizID := util.MustParseUint(c.Query("quizId"))
	if quizID == 0 {
		util.BadRequest(c, "quizId is required")
		return
	}

	claims := util.GetUserFromContext(c)
	if claims == nil {
		util.Unauthorized(c)
		return
	}

	attempts, err := ctrl.AttemptService.ListHistory(claims.UserID, quizID)
	if err != nil {
		util.LogInternalError(c, err)
		return
	}
	views := make([]attemptView, 0, len(attempts))
	for i := range attempts {
		views = append(views, newAttemptView(&attempts[i]))
	}
	util.Success(c, views)
}
