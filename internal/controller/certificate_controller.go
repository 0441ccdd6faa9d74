package controller

import (
	"lingua_backend/internal/service"
	"lingua_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type CertificateController struct {
	CertificateService *service.CertificateService
}

func NewCertificateController(certificateService *service.CertificateService) *CertificateController {
	return &CertificateController{CertificateService: certificateService}
}

// GetCurrent 当前证书
// @Summary 查询当前用户在某课程的有效证书
// @Tags 证书
// @Produce json
// @Param id path int true "课程ID"
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/v1/courses/{id}/certificate [get]
func (ctrl *CertificateController) GetCurrent(c *gin.Context) {
	courseID := util.MustParseUint(c.Param("id"))

	claims := util.GetUserFromContext(c)
	if claims == nil {
		util.Unauthorized(c)
		return
	}

	cert, err := ctrl.CertificateService.GetCurrent(claims.UserID, courseID)
	if err != nil {
		util.DomainError(c, err)
		return
	}
	util.Success(c, cert)
}

// ListHistory 证书历史
// @Summary 查询当前用户在某课程的证书历史，含被替换的证书
// @Tags 证书
// @Produce json
// @Param id path int true "课程ID"
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/v1/courses/{id}/certificate/history [get]
func (ctrl *CertificateController) ListHistory(c *gin.Context) {
	courseID := util.MustParseUint(c.Param("id"))

	claims := util.GetUserFromContext(c)
	if claims == nil {
		util.Unauthorized(c)
		return
	}

	certs, err := ctrl.CertificateService.ListHistory(claims.UserID, courseID)
	if err != nil {
		util.LogInternalError(c, err)
		return
	}
	util.Success(c, certs)
}

// Verify 公开验证
// @Summary 通过证书编号公开验证证书，无需登录
// @Tags 证书
// @Produce json
// @Param certificateId path string true "证书编号"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/v1/certificates/{certificateId}/verify [get]
func (ctrl *CertificateController) Verify(c *gin.Context) {
	certificateID := c.Param("certificateId")
	if certificateID == "" {
		util.BadRequest(c, "certificateId is required")
		return
	}

	view, err := ctrl.CertificateService.Verify(c.Request.Context(), certificateID)
	if err != nil {
		util.DomainError(c, err)
		return
	}
	util.Success(c, view)
}
