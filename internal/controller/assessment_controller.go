package controller

import (
	"compliance_edu_backend/internal/service"
	"compliance_edu_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AssessmentController struct {
	Service *service.AssessmentService
}

func NewAssessmentController(svc *service.AssessmentService) *AssessmentController {
	return &AssessmentController{Service: svc}
}

// @Summary 测评列表
// @Tags 测评
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]model.Assessment}
// @Router /api/assessments [get]
func (c *AssessmentController) List(ctx *gin.Context) {
	list, err := c.Service.List()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, list)
}

// @Summary 测评详情
// @Tags 测评
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "测评ID"
// @Success 200 {object} util.Response{data=model.Assessment}
// @Router /api/assessments/{id} [get]
func (c *AssessmentController) Get(ctx *gin.Context) {
	a, err := c.Service.Get(ctx.Param("id"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, a)
}

// @Summary 开始测评
// @Tags 测评
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "测评ID"
// @Success 201 {object} util.Response{data=service.QuizView}
// @Failure 404 {object} util.Response "测评没有题目"
// @Router /api/assessments/{id}/sessions [post]
func (c *AssessmentController) StartSession(ctx *gin.Context) {
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

// @Summary 获取答题会话
// @Tags 测评
// @Produce json
// @Security ApiKeyAuth
// @Param sessionId path string true "会话ID"
// @Success 200 {object} util.Response{data=service.QuizView}
// @Router /api/quiz-sessions/{sessionId} [get]
func (c *AssessmentController) GetSession(ctx *gin.Context) {
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

type AnswerRequest struct {
	QuestionID  string `json:"questionId" binding:"required"`
	OptionIndex *int   `json:"optionIndex" binding:"required"`
}

// @Summary 选择答案
// @Description 再次选择同一题会覆盖之前的答案；即时反馈模式下答案锁定
// @Tags 测评
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param sessionId path string true "会话ID"
// @Param body body AnswerRequest true "答案"
// @Success 200 {object} util.Response{data=service.QuizView}
// @Failure 400 {object} util.Response
// @Failure 409 {object} util.Response "已提交"
// @Router /api/quiz-sessions/{sessionId}/answers [put]
func (c *AssessmentController) Answer(ctx *gin.Context) {
	claims, ok := currentUser(ctx)
	if !ok {
		return
	}
	var req AnswerRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	v, err := c.Service.SelectAnswer(ctx.Request.Context(), claims, ctx.Param("sessionId"), req.QuestionID, *req.OptionIndex)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, v)
}

// @Summary 下一题
// @Tags 测评
// @Produce json
// @Security ApiKeyAuth
// @Param sessionId path string true "会话ID"
// @Success 200 {object} util.Response{data=service.QuizView}
// @Router /api/quiz-sessions/{sessionId}/next [post]
func (c *AssessmentController) Next(ctx *gin.Context) {
	claims, ok := currentUser(ctx)
	if !ok {
		return
	}
	v, err := c.Service.Next(ctx.Request.Context(), claims, ctx.Param("sessionId"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, v)
}

// @Summary 上一题
// @Tags 测评
// @Produce json
// @Security ApiKeyAuth
// @Param sessionId path string true "会话ID"
// @Success 200 {object} util.Response{data=service.QuizView}
// @Router /api/quiz-sessions/{sessionId}/prev [post]
func (c *AssessmentController) Prev(ctx *gin.Context) {
	claims, ok := currentUser(ctx)
	if !ok {
		return
	}
	v, err := c.Service.Prev(ctx.Request.Context(), claims, ctx.Param("sessionId"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, v)
}

// @Summary 提交测评
// @Description 所有题目都作答后才能提交，通过且关联模块时签发证书
// @Tags 测评
// @Produce json
// @Security ApiKeyAuth
// @Param sessionId path string true "会话ID"
// @Success 200 {object} util.Response{data=service.SubmitResult}
// @Failure 422 {object} util.Response "存在未作答题目"
// @Failure 409 {object} util.Response "重复提交"
// @Router /api/quiz-sessions/{sessionId}/submit [post]
func (c *AssessmentController) Submit(ctx *gin.Context) {
	claims, ok := currentUser(ctx)
	if !ok {
		return
	}
	res, err := c.Service.Submit(ctx.Request.Context(), claims, ctx.Param("sessionId"), ctx.ClientIP())
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, res)
}

// @Summary 查看答题回顾
// @Tags 测评
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "答题记录ID"
// @Success 200 {object} util.Response{data=service.AttemptReview}
// @Failure 403 {object} util.Response
// @Router /api/attempts/{id}/review [get]
func (c *AssessmentController) Review(ctx *gin.Context) {
	claims, ok := currentUser(ctx)
	if !ok {
		return
	}
	r, err := c.Service.ReviewAttempt(claims, ctx.Param("id"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, r)
}

// @Summary 我的答题记录
// @Tags 测评
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]model.Attempt}
// @Router /api/attempts [get]
func (c *AssessmentController) MyAttempts(ctx *gin.Context) {
	claims, ok := currentUser(ctx)
	if !ok {
		return
	}
	list, err := c.Service.ListAttempts(claims.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, list)
}

// @Summary 创建测评
// @Tags 测评管理
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body service.AssessmentInput true "测评与题目"
// @Success 201 {object} util.Response{data=model.Assessment}
// @Failure 400 {object} util.Response "题目不合法或模块不存在"
// @Router /api/admin/assessments [post]
func (c *AssessmentController) Create(ctx *gin.Context) {
	claims, ok := currentUser(ctx)
	if !ok {
		return
	}
	var req service.AssessmentInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	a, err := c.Service.Create(claims, req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, a)
}

// @Summary 删除测评
// @Tags 测评管理
// @Security ApiKeyAuth
// @Param id path string true "测评ID"
// @Success 200 {object} util.Response
// @Router /api/admin/assessments/{id} [delete]
func (c *AssessmentController) Delete(ctx *gin.Context) {
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
