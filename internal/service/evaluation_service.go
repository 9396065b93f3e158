package service

import (
	"context"
	"encoding/json"
	"fmt"
	"interview_coach_backend/internal/model"
	"interview_coach_backend/internal/util"
	"interview_coach_backend/pkg/logger"
	"strings"

	"go.uber.org/zap"
)

// 默认维度权重，总和 100
var defaultWeights = model.DimensionWeights{
	Technical:      40,
	Communication:  25,
	ProblemSolving: 25,
	CulturalFit:    10,
}

// EvaluationService 会话级评估聚合：把单题分数折算成四个维度，
// 加权得到总分和录用建议
type EvaluationService struct {
	interviewService *InterviewService
	aiService        *AIService
}

func NewEvaluationService(interviewService *InterviewService, aiService *AIService) *EvaluationService {
	return &EvaluationService{
		interviewService: interviewService,
		aiService:        aiService,
	}
}

// BuildReport 生成评估报告。各维度分数在单题均分基础上偏移并收敛到 [0,100]。
// customWeights 为空时用默认权重，非空时要求合计为 100
func (s *EvaluationService) BuildReport(ctx context.Context, sessionID, userID string, requiredSkills []string, customWeights *model.DimensionWeights) (*model.EvaluationReport, error) {
	weights := defaultWeights
	if customWeights != nil {
		if customWeights.Sum() != 100 {
			return nil, util.ErrInvalidWeights
		}
		weights = *customWeights
	}

	session, err := s.interviewService.GetSession(sessionID, userID)
	if err != nil {
		return nil, err
	}

	sum, answered := 0, 0
	for _, q := range session.Questions {
		if q.Answered() && q.Score != nil {
			sum += *q.Score
			answered++
		}
	}
	avg := 0.0
	if answered > 0 {
		avg = float64(sum) / float64(answered)
	}

	isTechnical := session.QuestionType == model.QuestionTechnical ||
		session.QuestionType == model.QuestionMixed

	dims := model.DimensionScores{
		Communication: util.ClampScore(util.RoundScore(avg - 5)),
		CulturalFit:   util.ClampScore(util.RoundScore(avg + 10)),
	}
	if isTechnical {
		dims.Technical = util.ClampScore(util.RoundScore(avg + 5))
		dims.ProblemSolving = util.ClampScore(util.RoundScore(avg))
	} else {
		dims.Technical = util.ClampScore(util.RoundScore(avg - 10))
		dims.ProblemSolving = util.ClampScore(util.RoundScore(avg - 8))
	}

	overall := util.RoundScore(
		(float64(dims.Technical)*float64(weights.Technical) +
			float64(dims.Communication)*float64(weights.Communication) +
			float64(dims.ProblemSolving)*float64(weights.ProblemSolving) +
			float64(dims.CulturalFit)*float64(weights.CulturalFit)) / 100)

	report := &model.EvaluationReport{
		SessionID:      session.ID,
		Dimensions:     dims,
		Weights:        weights,
		OverallScore:   overall,
		Recommendation: recommend(overall),
		Questions:      questionEvaluations(session),
		AnsweredCount:  answered,
		QuestionCount:  len(session.Questions),
	}

	report.Insights = s.deepInsights(ctx, session, requiredSkills, overall)
	return report, nil
}

// questionEvaluations 从落盘的单题评估记录还原报告明细，只收录已答题目
func questionEvaluations(session *model.InterviewSession) []model.QuestionEvaluation {
	var out []model.QuestionEvaluation
	for _, q := range session.Questions {
		if !q.Answered() {
			continue
		}
		entry := model.QuestionEvaluation{
			QuestionID:   q.ID,
			QuestionText: q.QuestionText,
		}
		if q.Score != nil {
			entry.Score = *q.Score
		}
		if len(q.Evaluation) > 0 {
			var eval model.AnswerEvaluation
			if err := json.Unmarshal(q.Evaluation, &eval); err == nil {
				entry.Feedback = eval.Feedback
				entry.CoveredKeyPoints = eval.MatchedKeywords
				entry.MissedKeyPoints = eval.MissedKeywords
				entry.Suggestions = eval.Suggestions
				entry.EvidenceSnippets = eval.EvidenceSnippets
				entry.RiskFlags = eval.RiskFlags
				entry.BiasFlags = eval.BiasFlags
			}
		}
		out = append(out, entry)
	}
	return out
}

// deepInsights 模型洞察，失败时回退为确定性模板
func (s *EvaluationService) deepInsights(ctx context.Context, session *model.InterviewSession, requiredSkills []string, overall int) model.DeepInsights {
	roleName := session.TargetRole
	if roleName == "" {
		roleName = "the target role"
	}

	insights, err := s.aiService.GenerateDeepInsights(ctx, roleName, transcript(session), requiredSkills)
	if err == nil && insights != nil {
		return *insights
	}
	if err != util.ErrExternalServiceUnavailable {
		logger.Log.Warn("deep insights generation failed, using template fallback", zap.Error(err))
	}

	skills := make([]model.SkillAssessment, 0, len(requiredSkills))
	for _, skill := range requiredSkills {
		skills = append(skills, model.SkillAssessment{Skill: skill, Score: overall})
	}
	return model.DeepInsights{
		Summary: fmt.Sprintf(
			"The candidate completed the interview with an overall score of %d. "+
				"See the per-question feedback for details.", overall),
		Confidence: 75,
		Skills:     skills,
	}
}

func transcript(session *model.InterviewSession) string {
	var sb strings.Builder
	for _, q := range session.Questions {
		fmt.Fprintf(&sb, "Q: %s\n", q.QuestionText)
		if q.Answered() {
			fmt.Fprintf(&sb, "A: %s\n", *q.Answer)
		} else {
			sb.WriteString("A: (no answer)\n")
		}
		if q.Score != nil {
			fmt.Fprintf(&sb, "Score: %d\n", *q.Score)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func recommend(overall int) string {
	switch {
	case overall >= 85:
		return model.RecommendStrongHire
	case overall >= 70:
		return model.RecommendHire
	case overall >= 55:
		return model.RecommendMaybe
	default:
		return model.RecommendNoHire
	}
}

// QuestionsFromJD 招聘方从职位描述生成面试题组
func (s *EvaluationService) QuestionsFromJD(ctx context.Context, jobDescription string, count int) []GeneratedQuestion {
	if count <= 0 {
		count = 8
	}
	return s.aiService.GenerateQuestionsFromJD(ctx, jobDescription, count)
}
