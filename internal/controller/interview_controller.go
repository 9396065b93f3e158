package controller

import (
	"interview_coach_backend/internal/service"
	"interview_coach_backend/internal/util"
	"strconv"

	"github.com/gin-gonic/gin"
)

type InterviewController struct {
	interviewService *service.InterviewService
	bankService      *service.QuestionBankService
}

func NewInterviewController(interviewService *service.InterviewService, bankService *service.QuestionBankService) *InterviewController {
	return &InterviewController{
		interviewService: interviewService,
		bankService:      bankService,
	}
}

// @Summary 创建面试会话
// @Description 创建一个 PENDING 状态的面试会话，启动后才会生成题目
// @Tags 面试
// @Accept json
// @Produce json
// @Param request body service.CreateSessionRequest true "会话参数"
// @Success 201 {object} util.Response
// @Security ApiKeyAuth
// @Router /interviews [post]
func (c *InterviewController) CreateSession(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.CreateSessionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	session, err := c.interviewService.CreateSession(user.UserID, req)
	if err != nil {
		handleServiceError(ctx, err)
		return
	}
	util.Created(ctx, session)
}

// @Summary 会话列表
// @Description 当前用户的面试会话，按创建时间倒序
// @Tags 面试
// @Produce json
// @Param page query int false "页码"
// @Param limit query int false "每页数量"
// @Success 200 {object} util.Response
// @Security ApiKeyAuth
// @Router /interviews [get]
func (c *InterviewController) ListSessions(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "10"))

	sessions, total, err := c.interviewService.ListSessions(user.UserID, page, limit)
	if err != nil {
		handleServiceError(ctx, err)
		return
	}
	util.Success(ctx, util.PageResponse{List: sessions, Total: total, Page: page, Limit: limit})
}

// @Summary 会话详情
// @Description 会话及其按序号排列的题目
// @Tags 面试
// @Produce json
// @Param id path string true "会话ID"
// @Success 200 {object} util.Response
// @Security ApiKeyAuth
// @Router /interviews/{id} [get]
func (c *InterviewController) GetSession(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	session, err := c.interviewService.GetSession(ctx.Param("id"), user.UserID)
	if err != nil {
		handleServiceError(ctx, err)
		return
	}
	util.Success(ctx, session)
}

// @Summary 启动面试
// @Description 生成题目并把会话推进到 IN_PROGRESS
// @Tags 面试
// @Produce json
// @Param id path string true "会话ID"
// @Success 200 {object} util.Response
// @Security ApiKeyAuth
// @Router /interviews/{id}/start [post]
func (c *InterviewController) StartSession(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	session, err := c.interviewService.StartSession(ctx.Request.Context(), ctx.Param("id"), user.UserID)
	if err != nil {
		handleServiceError(ctx, err)
		return
	}
	util.Success(ctx, session)
}

type submitAnswerRequest struct {
	QuestionID string `json:"questionId" binding:"required"`
	Answer     string `json:"answer"`
}

// @Summary 提交答案
// @Description 评估答案并返回下一道未作答题目；重复提交会覆盖旧答案
// @Tags 面试
// @Accept json
// @Produce json
// @Param id path string true "会话ID"
// @Param request body submitAnswerRequest true "答案"
// @Success 200 {object} util.Response
// @Security ApiKeyAuth
// @Router /interviews/{id}/answers [post]
func (c *InterviewController) SubmitAnswer(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req submitAnswerRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.interviewService.SubmitAnswer(ctx.Request.Context(), ctx.Param("id"), req.QuestionID, user.UserID, req.Answer)
	if err != nil {
		handleServiceError(ctx, err)
		return
	}
	util.Success(ctx, result)
}

// @Summary 结束面试
// @Description 计算总分（已作答题目均值）、生成总结反馈并把会话推进到 COMPLETED；重复调用按当前答题状态重算
// @Tags 面试
// @Produce json
// @Param id path string true "会话ID"
// @Success 200 {object} util.Response
// @Security ApiKeyAuth
// @Router /interviews/{id}/complete [post]
func (c *InterviewController) CompleteSession(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	session, err := c.interviewService.CompleteSession(ctx.Request.Context(), ctx.Param("id"), user.UserID)
	if err != nil {
		handleServiceError(ctx, err)
		return
	}
	util.Success(ctx, session)
}

// @Summary 答题提示
// @Description 针对某道题的答题思路提示
// @Tags 面试
// @Produce json
// @Param id path string true "会话ID"
// @Param questionId path string true "题目ID"
// @Success 200 {object} util.Response
// @Security ApiKeyAuth
// @Router /interviews/{id}/questions/{questionId}/hint [get]
func (c *InterviewController) QuestionHint(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	hint, keyPoints, err := c.interviewService.QuestionHint(ctx.Request.Context(), ctx.Param("id"), ctx.Param("questionId"), user.UserID)
	if err != nil {
		handleServiceError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"hint": hint, "keyPoints": keyPoints})
}

// @Summary 练习总结
// @Description 刷题练习会话的 Markdown 总结报告
// @Tags 面试
// @Produce json
// @Param id path string true "会话ID"
// @Success 200 {object} util.Response
// @Security ApiKeyAuth
// @Router /interviews/{id}/summary [get]
func (c *InterviewController) PracticeSummary(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	summary, err := c.interviewService.PracticeSummary(ctx.Param("id"), user.UserID)
	if err != nil {
		handleServiceError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"summary": summary})
}

// @Summary 岗位列表
// @Description 可选择的面试岗位
// @Tags 面试
// @Produce json
// @Success 200 {object} util.Response
// @Security ApiKeyAuth
// @Router /interviews/roles [get]
func (c *InterviewController) ListRoles(ctx *gin.Context) {
	roles, err := c.bankService.ListRoles()
	if err != nil {
		handleServiceError(ctx, err)
		return
	}
	util.Success(ctx, roles)
}
