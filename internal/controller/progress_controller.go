package controller

import (
	"lingua_backend/internal/service"
	"lingua_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ProgressController struct {
	ProgressService *service.ProgressService
}

func NewProgressController(progressService *service.ProgressService) *ProgressController {
	return &ProgressController{ProgressService: progressService}
}

// GetStanding 课程进度
// @Summary 查询当前用户在某课程的进度与水平
// @Tags 进度
// @Produce json
// @Param id path int true "课程ID"
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/v1/courses/{id}/standing [get]
func (ctrl *ProgressController) GetStanding(c *gin.Context) {
	courseID := util.MustParseUint(c.Param("id"))

	claims := util.GetUserFromContext(c)
	if claims == nil {
		util.Unauthorized(c)
		return
	}

	standing, err := ctrl.ProgressService.GetStanding(claims.UserID, courseID)
	if err != nil {
		util.LogInternalError(c, err)
		return
	}
	util.Success(c, standing)
}

// RecomputeStanding 重算进度
// @Summary 根据已评分的作答重算课程进度
// @Tags 进度
// @Produce json
// @Param id path int true "课程ID"
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/v1/courses/{id}/standing/recompute [post]
func (ctrl *ProgressController) RecomputeStanding(c *gin.Context) {
	courseID := util.MustParseUint(c.Param("id"))

	claims := util.GetUserFromContext(c)
	if claims == nil {
		util.Unauthorized(c)
		return
	}

	standing, err := ctrl.ProgressService.Recompute(claims.UserID, courseID)
	if err != nil {
		util.DomainError(c, err)
		return
	}
	util.Success(c, standing)
}
