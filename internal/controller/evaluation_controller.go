package controller

import (
	"interview_coach_backend/internal/model"
	"interview_coach_backend/internal/service"
	"interview_coach_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type EvaluationController struct {
	evaluationService *service.EvaluationService
}

func NewEvaluationController(evaluationService *service.EvaluationService) *EvaluationController {
	return &EvaluationController{evaluationService: evaluationService}
}

type reportRequest struct {
	RequiredSkills []string                `json:"requiredSkills"`
	Weights        *model.DimensionWeights `json:"weights"`
}

// @Summary 评估报告
// @Description 会话级聚合评估：维度分、加权总分、录用建议与深度洞察
// @Tags 评估
// @Accept json
// @Produce json
// @Param id path string true "会话ID"
// @Param request body reportRequest false "考察技能"
// @Success 200 {object} util.Response
// @Security ApiKeyAuth
// @Router /evaluations/{id}/report [post]
func (c *EvaluationController) BuildReport(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req reportRequest
	// 请求体可选
	_ = ctx.ShouldBindJSON(&req)

	report, err := c.evaluationService.BuildReport(ctx.Request.Context(), ctx.Param("id"), user.UserID, req.RequiredSkills, req.Weights)
	if err != nil {
		handleServiceError(ctx, err)
		return
	}
	util.Success(ctx, report)
}

type jdQuestionsRequest struct {
	JobDescription string `json:"jobDescription" binding:"required"`
	Count          int    `json:"count"`
}

// @Summary 按职位描述出题
// @Description 招聘方根据职位描述生成面试题组
// @Tags 评估
// @Accept json
// @Produce json
// @Param request body jdQuestionsRequest true "职位描述"
// @Success 200 {object} util.Response
// @Security ApiKeyAuth
// @Router /evaluations/questions-from-jd [post]
func (c *EvaluationController) QuestionsFromJD(ctx *gin.Context) {
	var req jdQuestionsRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	questions := c.evaluationService.QuestionsFromJD(ctx.Request.Context(), req.JobDescription, req.Count)
	util.Success(ctx, gin.H{"questions": questions})
}
