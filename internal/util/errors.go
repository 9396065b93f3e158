package util

import "errors"

var (
	ErrSessionNotFound            = errors.New("会话不存在")
	ErrQuestionNotFound           = errors.New("题目不存在")
	ErrRoleNotFound               = errors.New("岗位不存在")
	ErrChallengeNotFound          = errors.New("编程题不存在")
	ErrSubmissionNotFound         = errors.New("提交记录不存在")
	ErrPermissionDenied           = errors.New("permission denied")
	ErrInvalidSessionState        = errors.New("session state does not allow this operation")
	ErrUnsupportedOperation       = errors.New("operation not supported in this session mode")
	ErrInsufficientBankQuestions  = errors.New("not enough bank questions for a practice session")
	ErrUnsupportedLanguage        = errors.New("unsupported execution language")
	ErrInvalidWeights             = errors.New("dimension weights must sum to 100")
	ErrExternalServiceUnavailable = errors.New("external service unavailable")
)
