package controller

import (
	"errors"
	"strconv"

	"lingua_backend/internal/model"
	"lingua_backend/internal/service"
	"lingua_backend/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type CourseController struct {
	CourseService *service.CourseService
}

func NewCourseController(courseService *service.CourseService) *CourseController {
	return &CourseController{CourseService: courseService}
}

// ListLanguages 语言列表
// @Summary 获取支持的语言列表
// @Tags 课程
// @Produce json
// @Success 200 {object} util.Response
// @Router /api/v1/languages [get]
func (ctrl *CourseController) ListLanguages(c *gin.Context) {
	languages, err := ctrl.CourseService.ListLanguages()
	if err != nil {
		util.LogInternalError(c, err)
		return
	}
	util.Success(c, languages)
}

// ListCourses 课程列表
// @Summary 分页获取课程列表
// @Tags 课程
// @Produce json
// @Param page query int false "页码" default(1)
// @Param limit query int false "每页数量" default(10)
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/v1/courses [get]
func (ctrl *CourseController) ListCourses(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	// 学习者只看到已发布课程
	claims := util.GetUserFromContext(c)
	publishedOnly := claims == nil || claims.Role == model.Learner

	courses, total, err := ctrl.CourseService.ListCourses(page, limit, publishedOnly)
	if err != nil {
		util.LogInternalError(c, err)
		return
	}
	util.Success(c, util.PageResponse{List: courses, Total: total, Page: page, Limit: limit})
}

// GetCourse 课程详情
// @Summary 获取课程详情，含课时与测验
// @Tags 课程
// @Produce json
// @Param id path int true "课程ID"
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/v1/courses/{id} [get]
func (ctrl *CourseController) GetCourse(c *gin.Context) {
	courseID := util.MustParseUint(c.Param("id"))

	claims := util.GetUserFromContext(c)
	publishedOnly := claims == nil || claims.Role == model.Learner

	detail, err := ctrl.CourseService.GetCourseDetail(courseID, publishedOnly)
	if err != nil {
		util.DomainError(c, err)
		return
	}
	util.Success(c, detail)
}

// CreateCourse 创建课程
// @Summary 创建课程
// @Tags 课程管理
// @Accept json
// @Produce json
// @Param request body service.CourseRequest true "课程信息"
// @Security BearerAuth
// @Success 201 {object} util.Response
// @Failure 400 {object} util.Response
// @Router /api/v1/teacher/courses [post]
func (ctrl *CourseController) CreateCourse(c *gin.Context) {
	var req service.CourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.BadRequest(c, err.Error())
		return
	}

	claims := util.GetUserFromContext(c)
	if claims == nil {
		util.Unauthorized(c)
		return
	}

	course, err := ctrl.CourseService.CreateCourse(claims.UserID, req)
	if err != nil {
		util.BadRequest(c, err.Error())
		return
	}
	util.Created(c, course)
}

// UpdateCourse 更新课程
// @Summary 更新课程
// @Tags 课程管理
// @Accept json
// @Produce json
// @Param id path int true "课程ID"
// @Param request body service.CourseRequest true "课程信息"
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/v1/teacher/courses/{id} [put]
func (ctrl *CourseController) UpdateCourse(c *gin.Context) {
	courseID := util.MustParseUint(c.Param("id"))

	var req service.CourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.BadRequest(c, err.Error())
		return
	}

	course, err := ctrl.CourseService.UpdateCourse(courseID, req)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.NotFound(c)
			return
		}
		util.LogInternalError(c, err)
		return
	}
	util.Success(c, course)
}

// DeleteCourse 删除课程
// @Summary 删除课程
// @Tags 课程管理
// @Param id path int true "课程ID"
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/v1/teacher/courses/{id} [delete]
func (ctrl *CourseController) DeleteCourse(c *gin.Context) {
	courseID := util.MustParseUint(c.Param("id"))
	if err := ctrl.CourseService.DeleteCourse(courseID); err != nil {
		util.LogInternalError(c, err)
		return
	}
	util.Success(c, nil)
}

// AddLesson 添加课时
// @Summary 向课程添加课时
// @Tags 课程管理
// @Accept json
// @Produce json
// @Param id path int true "课程ID"
// @Param request body service.LessonRequest true "课时信息"
// @Security BearerAuth
// @Success 201 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/v1/teacher/courses/{id}/lessons [post]
func (ctrl *CourseController) AddLesson(c *gin.Context) {
	courseID := util.MustParseUint(c.Param("id"))

	var req service.LessonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.BadRequest(c, err.Error())
		return
	}

	lesson, err := ctrl.CourseService.AddLesson(courseID, req)
	if err != nil {
		util.DomainError(c, err)
		return
	}
	util.Created(c, lesson)
}

// DeleteLesson 删除课时
// @Summary 删除课时
// @Tags 课程管理
// @Param id path int true "课程ID"
// @Param lessonId path int true "课时ID"
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/v1/teacher/courses/{id}/lessons/{lessonId} [delete]
func (ctrl *CourseController) DeleteLesson(c *gin.Context) {
	courseID := util.MustParseUint(c.Param("id"))
	lessonID := util.MustParseUint(c.Param("lessonId"))

	if err := ctrl.CourseService.DeleteLesson(courseID, lessonID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.NotFound(c)
			return
		}
		util.DomainError(c, err)
		return
	}
	util.Success(c, nil)
}
