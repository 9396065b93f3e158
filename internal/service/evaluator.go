package service

import (
	"context"
	"interview_coach_backend/internal/model"
)

// AnswerEvaluator 单题评估策略。模拟面试使用生成式评估，
// 刷题练习使用与题库参考答案比对的启发式评估
type AnswerEvaluator interface {
	Evaluate(ctx context.Context, question *model.InterviewQuestion, answer string) *model.AnswerEvaluation
}

// GenerativeEvaluator 调用模型评估，带中性回退
type GenerativeEvaluator struct {
	ai *AIService
}

func NewGenerativeEvaluator(ai *AIService) *GenerativeEvaluator {
	return &GenerativeEvaluator{ai: ai}
}

func (e *GenerativeEvaluator) Evaluate(ctx context.Context, question *model.InterviewQuestion, answer string) *model.AnswerEvaluation {
	return e.ai.EvaluateAnswer(ctx, question.QuestionText, answer)
}
