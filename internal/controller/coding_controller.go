package controller

import (
	"interview_coach_backend/internal/service"
	"interview_coach_backend/internal/util"
	"strconv"

	"github.com/gin-gonic/gin"
)

type CodingController struct {
	codingService *service.CodingService
}

func NewCodingController(codingService *service.CodingService) *CodingController {
	return &CodingController{codingService: codingService}
}

// @Summary 编程题列表
// @Description 按难度/分类筛选，附带当前用户的最佳提交
// @Tags 编程题
// @Produce json
// @Param difficulty query string false "难度"
// @Param category query string false "分类"
// @Param page query int false "页码"
// @Param limit query int false "每页数量"
// @Success 200 {object} util.Response
// @Security ApiKeyAuth
// @Router /coding/challenges [get]
func (c *CodingController) ListChallenges(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "10"))

	challenges, total, err := c.codingService.ListChallenges(
		user.UserID, ctx.Query("difficulty"), ctx.Query("category"), page, limit)
	if err != nil {
		handleServiceError(ctx, err)
		return
	}
	util.Success(ctx, util.PageResponse{List: challenges, Total: total, Page: page, Limit: limit})
}

// @Summary 编程题详情
// @Description 题目描述与测试用例，隐藏用例已脱敏
// @Tags 编程题
// @Produce json
// @Param id path string true "题目ID"
// @Success 200 {object} util.Response
// @Security ApiKeyAuth
// @Router /coding/challenges/{id} [get]
func (c *CodingController) GetChallenge(ctx *gin.Context) {
	challenge, err := c.codingService.GetChallenge(ctx.Param("id"))
	if err != nil {
		handleServiceError(ctx, err)
		return
	}
	util.Success(ctx, challenge)
}

type codeRequest struct {
	Language string `json:"language" binding:"required"`
	Code     string `json:"code" binding:"required"`
}

// @Summary 试运行代码
// @Description 只跑可见用例，不产生提交记录
// @Tags 编程题
// @Accept json
// @Produce json
// @Param id path string true "题目ID"
// @Param request body codeRequest true "代码"
// @Success 200 {object} util.Response
// @Security ApiKeyAuth
// @Router /coding/challenges/{id}/run [post]
func (c *CodingController) RunCode(ctx *gin.Context) {
	var req codeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	results, elapsedMs, err := c.codingService.RunCode(ctx.Request.Context(), ctx.Param("id"), req.Language, req.Code)
	if err != nil {
		handleServiceError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"results": results, "executionTimeMs": elapsedMs})
}

// @Summary 提交代码
// @Description 跑全部用例并生成不可变的提交记录
// @Tags 编程题
// @Accept json
// @Produce json
// @Param id path string true "题目ID"
// @Param request body codeRequest true "代码"
// @Success 201 {object} util.Response
// @Security ApiKeyAuth
// @Router /coding/challenges/{id}/submit [post]
func (c *CodingController) SubmitCode(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req codeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	submission, err := c.codingService.SubmitCode(ctx.Request.Context(), user.UserID, ctx.Param("id"), req.Language, req.Code)
	if err != nil {
		handleServiceError(ctx, err)
		return
	}
	util.Created(ctx, submission)
}

// @Summary 提交记录列表
// @Description 当前用户的提交记录，可按题目过滤
// @Tags 编程题
// @Produce json
// @Param challengeId query string false "题目ID"
// @Param page query int false "页码"
// @Param limit query int false "每页数量"
// @Success 200 {object} util.Response
// @Security ApiKeyAuth
// @Router /coding/submissions [get]
func (c *CodingController) ListSubmissions(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "10"))

	submissions, total, err := c.codingService.ListSubmissions(user.UserID, ctx.Query("challengeId"), page, limit)
	if err != nil {
		handleServiceError(ctx, err)
		return
	}
	util.Success(ctx, util.PageResponse{List: submissions, Total: total, Page: page, Limit: limit})
}

// @Summary 提交记录详情
// @Tags 编程题
// @Produce json
// @Param id path string true "提交ID"
// @Success 200 {object} util.Response
// @Security ApiKeyAuth
// @Router /coding/submissions/{id} [get]
func (c *CodingController) GetSubmission(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	submission, err := c.codingService.GetSubmission(ctx.Param("id"), user.UserID)
	if err != nil {
		handleServiceError(ctx, err)
		return
	}
	util.Success(ctx, submission)
}
