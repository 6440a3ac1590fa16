package controller

import (
	"compliance_edu_backend/internal/service"
	"compliance_edu_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ScenarioController struct {
	Service *service.ScenarioService
}

func NewScenarioController(svc *service.ScenarioService) *ScenarioController {
	return &ScenarioController{Service: svc}
}

// @Summary 情景模拟列表
// @Tags 情景模拟
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]model.Scenario}
// @Router /api/scenarios [get]
func (c *ScenarioController) List(ctx *gin.Context) {
	list, err := c.Service.List()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, list)
}

// @Summary 情景模拟详情
// @Tags 情景模拟
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "情景ID"
// @Success 200 {object} util.Response{data=model.Scenario}
// @Failure 404 {object} util.Response
// @Router /api/scenarios/{id} [get]
func (c *ScenarioController) Get(ctx *gin.Context) {
	s, err := c.Service.Get(ctx.Param("id"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, s)
}

// @Summary 开始情景模拟
// @Description 返回会话ID与根节点
// @Tags 情景模拟
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "情景ID"
// @Success 201 {object} util.Response{data=service.ScenarioView}
// @Failure 422 {object} util.Response "情景树结构错误"
// @Router /api/scenarios/{id}/sessions [post]
func (c *ScenarioController) StartSession(ctx *gin.Context) {
	claims, ok := currentUser(ctx)
	if !ok {
		return
	}
	v, err := c.Service.Start(ctx.Request.Context(), claims, ctx.Param("id"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, v)
}

// @Summary 获取情景会话当前状态
// @Tags 情景模拟
// @Produce json
// @Security ApiKeyAuth
// @Param sessionId path string true "会话ID"
// @Success 200 {object} util.Response{data=service.ScenarioView}
// @Failure 404 {object} util.Response "会话不存在或已过期"
// @Router /api/scenario-sessions/{sessionId} [get]
func (c *ScenarioController) GetSession(ctx *gin.Context) {
	claims, ok := currentUser(ctx)
	if !ok {
		return
	}
	v, err := c.Service.GetSession(ctx.Request.Context(), claims, ctx.Param("sessionId"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, v)
}

type ChooseRequest struct {
	NodeID string `json:"nodeId" binding:"required"`
}

// @Summary 选择一个分支
// @Tags 情景模拟
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param sessionId path string true "会话ID"
// @Param body body ChooseRequest true "子节点ID"
// @Success 200 {object} util.Response{data=service.ScenarioView}
// @Failure 422 {object} util.Response "非当前节点的子节点"
// @Router /api/scenario-sessions/{sessionId}/choose [post]
func (c *ScenarioController) Choose(ctx *gin.Context) {
	claims, ok := currentUser(ctx)
	if !ok {
		return
	}
	var req ChooseRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	v, err := c.Service.Choose(ctx.Request.Context(), claims, ctx.Param("sessionId"), req.NodeID, ctx.ClientIP())
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, v)
}

// @Summary 重新开始情景
// @Tags 情景模拟
// @Produce json
// @Security ApiKeyAuth
// @Param sessionId path string true "会话ID"
// @Success 200 {object} util.Response{data=service.ScenarioView}
// @Router /api/scenario-sessions/{sessionId}/restart [post]
func (c *ScenarioController) Restart(ctx *gin.Context) {
	claims, ok := currentUser(ctx)
	if !ok {
		return
	}
	v, err := c.Service.Restart(ctx.Request.Context(), claims, ctx.Param("sessionId"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, v)
}

// @Summary 创建情景模拟
// @Description 节点用 key/parentKey 描述树结构，必须恰好一个根节点
// @Tags 情景模拟管理
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body service.ScenarioInput true "情景树"
// @Success 201 {object} util.Response{data=model.Scenario}
// @Failure 422 {object} util.Response
// @Router /api/admin/scenarios [post]
func (c *ScenarioController) Create(ctx *gin.Context) {
	claims, ok := currentUser(ctx)
	if !ok {
		return
	}
	var req service.ScenarioInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	s, err := c.Service.Create(claims, req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, s)
}

// @Summary 删除情景模拟
// @Tags 情景模拟管理
// @Security ApiKeyAuth
// @Param id path string true "情景ID"
// @Success 200 {object} util.Response
// @Router /api/admin/scenarios/{id} [delete]
func (c *ScenarioController) Delete(ctx *gin.Context) {
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
