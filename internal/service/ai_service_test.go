package service

import (
	"context"
	"interview_coach_backend/internal/config"
	"interview_coach_backend/internal/model"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanJSONResponse(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", `{"a":1}`, `{"a":1}`},
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"bare fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"whitespace", "  {\"a\":1}  ", `{"a":1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cleanJSONResponse(tt.in))
		})
	}
}

func TestEvaluateAnswer_Fallbacks(t *testing.T) {
	ai := NewAIService(config.AIConfig{})

	empty := ai.EvaluateAnswer(context.Background(), "What is Go?", "  ")
	assert.Equal(t, 0, empty.Score)
	assert.Equal(t, "No answer provided.", empty.Feedback)

	neutral := ai.EvaluateAnswer(context.Background(), "What is Go?", "Go is a compiled language.")
	assert.Equal(t, 70, neutral.Score)
	assert.NotEmpty(t, neutral.Feedback)
}

func TestGenerateQuestions_FallbackSet(t *testing.T) {
	ai := NewAIService(config.AIConfig{})

	qs := ai.GenerateQuestions(context.Background(), "Backend Engineer", model.QuestionTechnical, model.DifficultyHard, 10)
	require.Len(t, qs, 10)
	for _, q := range qs {
		assert.Equal(t, model.QuestionTechnical, q.QuestionType)
		assert.NotEmpty(t, q.QuestionText)
	}

	// 兜底题组不足时循环复用，数量仍然保证
	qs = ai.GenerateQuestions(context.Background(), "Backend Engineer", model.QuestionHR, model.DifficultyHard, 10)
	assert.Len(t, qs, 10)
}

func TestGenerateSessionFeedback_Fallback(t *testing.T) {
	ai := NewAIService(config.AIConfig{})

	fb := ai.GenerateSessionFeedback(context.Background(), "Backend Engineer", "Q: q\nA: a\n", 72)
	assert.Contains(t, fb, "Overall score: 72/100")
	assert.Contains(t, fb, "Good answer")
}

func TestGenerateQuestionHint_Fallback(t *testing.T) {
	ai := NewAIService(config.AIConfig{})

	hint, keyPoints := ai.GenerateQuestionHint(context.Background(), "Explain CAP theorem.")
	assert.NotEmpty(t, hint)
	assert.NotEmpty(t, keyPoints)
}

func TestAnalyzeCode_NilWhenUnconfigured(t *testing.T) {
	ai := NewAIService(config.AIConfig{})
	assert.Nil(t, ai.AnalyzeCode(context.Background(), "desc", "code", "python"))
}

func TestBasicFeedbackTiers(t *testing.T) {
	assert.Contains(t, basicFeedback(90), "Excellent")
	assert.Contains(t, basicFeedback(75), "Good")
	assert.Contains(t, basicFeedback(60), "Fair")
	assert.Contains(t, basicFeedback(30), "needs work")
}
