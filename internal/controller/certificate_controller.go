package controller

import (
	"net/http"

	"compliance_edu_backend/internal/service"
	"compliance_edu_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type CertificateController struct {
	Service *service.CertificateService
}

func NewCertificateController(svc *service.CertificateService) *CertificateController {
	return &CertificateController{Service: svc}
}

// @Summary 我的证书
// @Tags 证书
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]service.CertificateView}
// @Router /api/certificates [get]
func (c *CertificateController) List(ctx *gin.Context) {
	claims, ok := currentUser(ctx)
	if !ok {
		return
	}
	list, err := c.Service.ListForUser(claims.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, list)
}

// @Summary 证书详情
// @Tags 证书
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "证书ID"
// @Success 200 {object} util.Response{data=service.CertificateView}
// @Failure 403 {object} util.Response
// @Router /api/certificates/{id} [get]
func (c *CertificateController) Get(ctx *gin.Context) {
	claims, ok := currentUser(ctx)
	if !ok {
		return
	}
	v, err := c.Service.Get(claims, ctx.Param("id"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, v)
}

// @Summary 下载证书文档
// @Description 渲染证书 HTML 并重定向到存储地址
// @Tags 证书
// @Security ApiKeyAuth
// @Param id path string true "证书ID"
// @Success 302 {string} string "跳转到证书地址"
// @Router /api/certificates/{id}/document [get]
func (c *CertificateController) Document(ctx *gin.Context) {
	claims, ok := currentUser(ctx)
	if !ok {
		return
	}
	url, err := c.Service.RenderDocument(ctx.Request.Context(), claims, ctx.Param("id"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	ctx.Redirect(http.StatusFound, url)
}
