package controller

import (
	"compliance_edu_backend/internal/service"
	"compliance_edu_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ReportController struct {
	Reports   *service.ReportService
	Dashboard *service.DashboardService
	Audit     *service.AuditService
}

func NewReportController(reports *service.ReportService, dashboard *service.DashboardService, audit *service.AuditService) *ReportController {
	return &ReportController{Reports: reports, Dashboard: dashboard, Audit: audit}
}

// @Summary 合规报表
// @Description 通过率与按模块统计的证书数量
// @Tags 报表
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=service.ComplianceReport}
// @Router /api/reports/compliance [get]
func (c *ReportController) Compliance(ctx *gin.Context) {
	r, err := c.Reports.Compliance()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, r)
}

// @Summary 员工首页
// @Tags 首页
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=service.EmployeeDashboard}
// @Router /api/dashboard [get]
func (c *ReportController) EmployeeDashboard(ctx *gin.Context) {
	claims, ok := currentUser(ctx)
	if !ok {
		return
	}
	d, err := c.Dashboard.Employee(claims.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, d)
}

// @Summary 管理员首页
// @Tags 首页
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=service.AdminDashboard}
// @Router /api/admin/dashboard [get]
func (c *ReportController) AdminDashboard(ctx *gin.Context) {
	d, err := c.Dashboard.Admin()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, d)
}

// @Summary 审计日志
// @Tags 报表
// @Produce json
// @Security ApiKeyAuth
// @Param page query int false "页码"
// @Param limit query int false "每页数量"
// @Success 200 {object} util.Response{data=PageResult}
// @Router /api/admin/audit-logs [get]
func (c *ReportController) AuditLogs(ctx *gin.Context) {
	page, limit := pageParams(ctx)
	logs, total, err := c.Audit.List(page, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, PageResult{Items: logs, Total: total, Page: page, Limit: limit})
}
