package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"interview_coach_backend/internal/config"
	"interview_coach_backend/internal/model"
	"interview_coach_backend/internal/util"
	"interview_coach_backend/pkg/logger"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// AIService 封装 OpenAI 兼容的 chat/completions 接口。
// 所有高层方法都带确定性回退：模型不可用时返回可预期的默认结果而不是报错。
type AIService struct {
	config config.AIConfig
	client *http.Client
}

func NewAIService(cfg config.AIConfig) *AIService {
	return &AIService{
		config: cfg,
		client: &http.Client{Timeout: 60 * time.Second},
	}
}

// Configured 是否配置了可用的模型凭证
func (s *AIService) Configured() bool {
	return s.config.APIKey != "" && s.config.BaseURL != ""
}

type AIChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatCompletionRequest struct {
	Model    string          `json:"model"`
	Messages []AIChatMessage `json:"messages"`
}

type ChatCompletionResponse struct {
	Choices []struct {
		Message AIChatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (s *AIService) Chat(ctx context.Context, system, prompt string) (string, error) {
	if !s.Configured() {
		return "", util.ErrExternalServiceUnavailable
	}

	messages := []AIChatMessage{}
	if system != "" {
		messages = append(messages, AIChatMessage{Role: "system", Content: system})
	}
	messages = append(messages, AIChatMessage{Role: "user", Content: prompt})

	reqBody := ChatCompletionRequest{
		Model:    s.config.Model,
		Messages: messages,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", s.config.BaseURL+"/chat/completions", bytes.NewBuffer(jsonData))
	if err != nil {
		return "", err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.config.APIKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("AI API error (status %d): %s", resp.StatusCode, string(body))
	}

	var result ChatCompletionResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", err
	}

	if len(result.Choices) > 0 {
		return result.Choices[0].Message.Content, nil
	}

	return "", fmt.Errorf("AI returned no choices")
}

// chatJSON 请求模型输出 JSON 并反序列化到 out
func (s *AIService) chatJSON(ctx context.Context, system, prompt string, out interface{}) error {
	raw, err := s.Chat(ctx, system, prompt)
	if err != nil {
		return err
	}
	return json.Unmarshal([]byte(cleanJSONResponse(raw)), out)
}

// cleanJSONResponse 剥掉模型习惯性包裹的 ```json 围栏
func cleanJSONResponse(raw string) string {
	cleaned := strings.TrimSpace(raw)
	if strings.HasPrefix(cleaned, "```") {
		cleaned = strings.TrimPrefix(cleaned, "```json")
		cleaned = strings.TrimPrefix(cleaned, "```")
		if idx := strings.LastIndex(cleaned, "```"); idx >= 0 {
			cleaned = cleaned[:idx]
		}
	}
	return strings.TrimSpace(cleaned)
}

// GeneratedQuestion 模型生成的面试题
type GeneratedQuestion struct {
	QuestionText string `json:"questionText"`
	QuestionType string `json:"questionType"`
}

// GenerateQuestions 按岗位/类型/难度生成整组面试题；模型不可用或输出不合法时
// 回退到内置题组
func (s *AIService) GenerateQuestions(ctx context.Context, roleName, questionType, difficulty string, count int) []GeneratedQuestion {
	if s.Configured() {
		system := "You are an expert technical interviewer. Respond with JSON only."
		prompt := fmt.Sprintf(
			"Generate %d %s interview questions for a %s position at %s difficulty. "+
				"Respond with a JSON array of objects: [{\"questionText\": \"...\", \"questionType\": \"%s\"}]. "+
				"No explanations, JSON only.",
			count, strings.ToLower(questionType), roleName, strings.ToLower(difficulty), questionType)

		var out []GeneratedQuestion
		if err := s.chatJSON(ctx, system, prompt, &out); err == nil && len(out) > 0 {
			for i := range out {
				if out[i].QuestionType == "" {
					out[i].QuestionType = questionType
				}
			}
			if len(out) > count {
				out = out[:count]
			}
			return out
		} else if err != nil {
			logger.Log.Warn("question generation failed, using fallback set", zap.Error(err))
		}
	}

	return fallbackQuestions(questionType, count)
}

// GenerateQuestionsFromJD 从职位描述生成面试题组
func (s *AIService) GenerateQuestionsFromJD(ctx context.Context, jobDescription string, count int) []GeneratedQuestion {
	if s.Configured() {
		system := "You are an expert recruiter designing interview loops. Respond with JSON only."
		prompt := fmt.Sprintf(
			"Based on the following job description, generate %d interview questions that probe the "+
				"core skills it requires. Mix technical and behavioral questions. Respond with a JSON array: "+
				"[{\"questionText\": \"...\", \"questionType\": \"TECHNICAL|BEHAVIORAL\"}].\n\nJob description:\n%s",
			count, jobDescription)

		var out []GeneratedQuestion
		if err := s.chatJSON(ctx, system, prompt, &out); err == nil && len(out) > 0 {
			if len(out) > count {
				out = out[:count]
			}
			return out
		} else if err != nil {
			logger.Log.Warn("JD question generation failed, using fallback set", zap.Error(err))
		}
	}

	half := count / 2
	qs := fallbackQuestions(model.QuestionTechnical, count-half)
	qs = append(qs, fallbackQuestions(model.QuestionBehavioral, half)...)
	return qs
}

// EvaluateAnswer 模拟面试的单题生成式评估。
// 空答案固定 0 分；模型不可用或失败时回退 70 分的中性评估。
func (s *AIService) EvaluateAnswer(ctx context.Context, questionText, answer string) *model.AnswerEvaluation {
	if strings.TrimSpace(answer) == "" {
		return &model.AnswerEvaluation{
			Score:    0,
			Feedback: "No answer provided.",
		}
	}

	if s.Configured() {
		system := "You are an experienced interviewer grading a candidate answer. Respond with JSON only."
		prompt := fmt.Sprintf(
			"Question: %s\n\nCandidate answer: %s\n\n"+
				"Grade the answer from 0 to 100 and respond with JSON: "+
				"{\"score\": 0-100, \"feedback\": \"...\", "+
				"\"metrics\": {\"clarity\": 0-100, \"relevance\": 0-100, \"completeness\": 0-100}, "+
				"\"matchedKeywords\": [\"...\"], \"missedKeywords\": [\"...\"], "+
				"\"suggestions\": [\"...\"], \"evidenceSnippets\": [\"...\"], "+
				"\"riskFlags\": [\"...\"], \"biasFlags\": [\"...\"], "+
				"\"improvedAnswer\": \"...\", \"needsFollowUp\": true|false, \"followUpText\": \"...\"}",
			questionText, answer)

		var out model.AnswerEvaluation
		if err := s.chatJSON(ctx, system, prompt, &out); err == nil {
			out.Score = util.ClampScore(out.Score)
			if out.Feedback == "" {
				out.Feedback = basicFeedback(out.Score)
			}
			return &out
		} else {
			logger.Log.Warn("answer evaluation failed, using neutral fallback", zap.Error(err))
		}
	}

	return &model.AnswerEvaluation{
		Score:    70,
		Feedback: basicFeedback(70),
		Metrics:  model.AnswerMetrics{Clarity: 70, Relevance: 70, Completeness: 70},
	}
}

// AnalyzeCode 代码质量分析；失败时返回 nil，调用方回退为用例通过率计分
func (s *AIService) AnalyzeCode(ctx context.Context, description, code, language string) *model.CodeAnalysis {
	if !s.Configured() {
		return nil
	}

	system := "You are a senior engineer reviewing an interview coding submission. Respond with JSON only."
	prompt := fmt.Sprintf(
		"Problem:\n%s\n\nLanguage: %s\n\nSubmission:\n%s\n\n"+
			"Assess correctness, readability and efficiency. Respond with JSON: "+
			"{\"score\": 0-100, \"feedback\": \"...\", \"suggestions\": [\"...\"]}",
		description, language, code)

	var out model.CodeAnalysis
	if err := s.chatJSON(ctx, system, prompt, &out); err != nil {
		logger.Log.Warn("code analysis failed, falling back to pass-rate score", zap.Error(err))
		return nil
	}
	out.Score = util.ClampScore(out.Score)
	return &out
}

// GenerateQuestionHint 答题提示；模型不可用时给通用提示
func (s *AIService) GenerateQuestionHint(ctx context.Context, questionText string) (string, []string) {
	if s.Configured() {
		system := "You are an interview coach. Respond with JSON only."
		prompt := fmt.Sprintf(
			"Question: %s\n\nGive the candidate a strategic hint for answering, without revealing a full answer. "+
				"Respond with JSON: {\"hint\": \"...\", \"keyPoints\": [\"...\", \"...\"]}",
			questionText)

		var out struct {
			Hint      string   `json:"hint"`
			KeyPoints []string `json:"keyPoints"`
		}
		if err := s.chatJSON(ctx, system, prompt, &out); err == nil && out.Hint != "" {
			return out.Hint, out.KeyPoints
		}
	}

	return "Structure your answer: restate the problem, outline your approach, then walk through a concrete example.",
		[]string{"Address the question directly", "Use a specific example", "Summarize the outcome"}
}

// GenerateSessionFeedback 模拟面试结束时的会话级总结反馈。
// 模型不可用或失败时回退为按总分生成的确定性文案
func (s *AIService) GenerateSessionFeedback(ctx context.Context, targetRole, transcript string, overall int) string {
	if s.Configured() {
		system := "You are an experienced interviewer writing closing feedback for a candidate."
		role := targetRole
		if role == "" {
			role = "the target role"
		}
		prompt := fmt.Sprintf(
			"The candidate interviewed for %s and scored %d/100 overall.\n\n"+
				"Interview transcript:\n%s\n\n"+
				"Write 2-3 short paragraphs of overall feedback: what went well, what to improve, "+
				"and one concrete next step. Plain text, no markdown.",
			role, overall, transcript)

		if out, err := s.Chat(ctx, system, prompt); err == nil && strings.TrimSpace(out) != "" {
			return strings.TrimSpace(out)
		} else if err != nil {
			logger.Log.Warn("session feedback generation failed, using fallback text", zap.Error(err))
		}
	}

	return fmt.Sprintf("Overall score: %d/100. %s", overall, basicFeedback(overall))
}

// GenerateDeepInsights 会话级深度洞察；失败时由调用方套用模板回退
func (s *AIService) GenerateDeepInsights(ctx context.Context, roleName string, transcript string, requiredSkills []string) (*model.DeepInsights, error) {
	if !s.Configured() {
		return nil, util.ErrExternalServiceUnavailable
	}

	system := "You are a hiring committee member writing a candidate assessment. Respond with JSON only."
	prompt := fmt.Sprintf(
		"Role: %s\nRequired skills: %s\n\nInterview transcript:\n%s\n\n"+
			"Respond with JSON: {\"summary\": \"...\", \"strengths\": [\"...\"], \"weaknesses\": [\"...\"], "+
			"\"confidence\": 0-100, \"skills\": [{\"skill\": \"...\", \"score\": 0-100}]}",
		roleName, strings.Join(requiredSkills, ", "), transcript)

	var out model.DeepInsights
	if err := s.chatJSON(ctx, system, prompt, &out); err != nil {
		return nil, err
	}
	out.Confidence = util.ClampScore(out.Confidence)
	return &out, nil
}

// basicFeedback 按分数段生成兜底反馈
func basicFeedback(score int) string {
	switch {
	case score >= 85:
		return "Excellent answer. Clear, well structured and directly on point."
	case score >= 70:
		return "Good answer. Solid content, though a concrete example would make it stronger."
	case score >= 55:
		return "Fair answer. It touches the topic but lacks depth and structure."
	default:
		return "This answer needs work. Focus on addressing the question directly and supporting your points with examples."
	}
}

var fallbackTechnical = []string{
	"Explain the difference between a process and a thread.",
	"How would you design a URL shortening service?",
	"What happens when you type a URL into a browser and press enter?",
	"Describe how a hash table works and when collisions become a problem.",
	"What is the difference between optimistic and pessimistic locking?",
	"How do database indexes speed up queries, and what do they cost?",
	"Explain the CAP theorem and its practical consequences.",
	"What is a race condition? Give an example and a way to prevent it.",
	"How would you debug a service whose latency suddenly doubled?",
	"Describe the trade-offs between SQL and NoSQL storage for a new product.",
}

var fallbackBehavioral = []string{
	"Tell me about a time you disagreed with a technical decision. What did you do?",
	"Describe a project where you had to learn a new technology quickly.",
	"Tell me about a time you missed a deadline. What happened?",
	"Give an example of receiving difficult feedback. How did you respond?",
	"Describe a situation where you had to influence someone without authority.",
	"Tell me about the most complex problem you have solved at work.",
	"Describe a time you improved a process that was slowing your team down.",
	"Tell me about a time you had to make a decision with incomplete information.",
}

var fallbackHR = []string{
	"Tell me about yourself and your background.",
	"Why are you interested in this position?",
	"Where do you see yourself in five years?",
	"What are your greatest strengths and weaknesses?",
	"Why are you leaving your current role?",
	"What kind of work environment helps you do your best work?",
	"How do you handle stress and tight deadlines?",
	"What questions do you have for us?",
}

func fallbackQuestions(questionType string, count int) []GeneratedQuestion {
	var pool []string
	switch questionType {
	case model.QuestionBehavioral:
		pool = fallbackBehavioral
	case model.QuestionHR:
		pool = fallbackHR
	default:
		pool = fallbackTechnical
	}

	out := make([]GeneratedQuestion, 0, count)
	for i := 0; i < count; i++ {
		out = append(out, GeneratedQuestion{
			QuestionText: pool[i%len(pool)],
			QuestionType: questionType,
		})
	}
	return out
}
