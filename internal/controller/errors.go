package controller

import (
	"errors"
	"interview_coach_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// handleServiceError 统一把业务错误映射为 HTTP 状态码
func handleServiceError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, util.ErrSessionNotFound),
		errors.Is(err, util.ErrQuestionNotFound),
		errors.Is(err, util.ErrRoleNotFound),
		errors.Is(err, util.ErrChallengeNotFound),
		errors.Is(err, util.ErrSubmissionNotFound):
		util.NotFound(ctx)
	case errors.Is(err, util.ErrPermissionDenied):
		util.Forbidden(ctx)
	case errors.Is(err, util.ErrInvalidSessionState):
		util.Conflict(ctx, err.Error())
	case errors.Is(err, util.ErrUnsupportedOperation),
		errors.Is(err, util.ErrInsufficientBankQuestions),
		errors.Is(err, util.ErrUnsupportedLanguage),
		errors.Is(err, util.ErrInvalidWeights):
		util.BadRequest(ctx, err.Error())
	case errors.Is(err, util.ErrExternalServiceUnavailable):
		util.ServiceUnavailable(ctx, err.Error())
	default:
		util.LogInternalError(ctx, err)
	}
}
