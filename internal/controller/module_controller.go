package controller

import (
	"compliance_edu_backend/internal/service"
	"compliance_edu_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ModuleController struct {
	Service *service.ModuleService
}

func NewModuleController(svc *service.ModuleService) *ModuleController {
	return &ModuleController{Service: svc}
}

// @Summary 培训模块列表
// @Tags 培训模块
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]model.TrainingModule}
// @Router /api/modules [get]
func (c *ModuleController) List(ctx *gin.Context) {
	modules, err := c.Service.List()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, modules)
}

// @Summary 培训模块详情（含章节）
// @Tags 培训模块
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "模块ID"
// @Success 200 {object} util.Response{data=service.ModuleDetail}
// @Failure 404 {object} util.Response
// @Router /api/modules/{id} [get]
func (c *ModuleController) Get(ctx *gin.Context) {
	detail, err := c.Service.Get(ctx.Param("id"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, detail)
}

// @Summary 创建培训模块
// @Tags 培训模块管理
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body service.ModuleInput true "模块信息"
// @Success 201 {object} util.Response{data=model.TrainingModule}
// @Router /api/admin/modules [post]
func (c *ModuleController) Create(ctx *gin.Context) {
	claims, ok := currentUser(ctx)
	if !ok {
		return
	}
	var req service.ModuleInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	m, err := c.Service.Create(claims, req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, m)
}

// @Summary 更新培训模块
// @Tags 培训模块管理
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "模块ID"
// @Param body body service.ModuleInput true "模块信息"
// @Success 200 {object} util.Response{data=model.TrainingModule}
// @Router /api/admin/modules/{id} [put]
func (c *ModuleController) Update(ctx *gin.Context) {
	claims, ok := currentUser(ctx)
	if !ok {
		return
	}
	var req service.ModuleInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	m, err := c.Service.Update(claims, ctx.Param("id"), req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, m)
}

// @Summary 删除培训模块
// @Tags 培训模块管理
// @Security ApiKeyAuth
// @Param id path string true "模块ID"
// @Success 200 {object} util.Response
// @Router /api/admin/modules/{id} [delete]
func (c *ModuleController) Delete(ctx *gin.Context) {
	claims, ok := currentUser(ctx)
	if !ok {
		return
	}
	if err := c.Service.Delete(claims, ctx.Param("id")); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// @Summary 获取学习进度书签
// @Tags 培训模块
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "模块ID"
// @Success 200 {object} util.Response{data=service.ProgressView}
// @Router /api/modules/{id}/progress [get]
func (c *ModuleController) GetProgress(ctx *gin.Context) {
	claims, ok := currentUser(ctx)
	if !ok {
		return
	}
	v, err := c.Service.GetProgress(claims.UserID, ctx.Param("id"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, v)
}

type ProgressRequest struct {
	SectionIndex *int `json:"sectionIndex" binding:"required,min=0"`
	Completed    bool `json:"completed"`
}

// @Summary 保存学习进度书签
// @Tags 培训模块
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "模块ID"
// @Param body body ProgressRequest true "当前章节"
// @Success 200 {object} util.Response{data=service.ProgressView}
// @Failure 400 {object} util.Response
// @Router /api/modules/{id}/progress [put]
func (c *ModuleController) UpdateProgress(ctx *gin.Context) {
	claims, ok := currentUser(ctx)
	if !ok {
		return
	}
	var req ProgressRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	v, err := c.Service.UpdateProgress(claims.UserID, ctx.Param("id"), *req.SectionIndex, req.Completed)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, v)
}

// @Summary 我的学习进度
// @Tags 培训模块
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]model.ModuleProgress}
// @Router /api/progress [get]
func (c *ModuleController) MyProgress(ctx *gin.Context) {
	claims, ok := currentUser(ctx)
	if !ok {
		return
	}
	ps, err := c.Service.ListProgress(claims.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, ps)
}
